// Package tui renders a live bot status table fed by a running server's
// command channel.
package tui

import (
	"fmt"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/table"
	tea "github.com/charmbracelet/bubbletea"

	"botd/internal/client"
)

const pollInterval = 2 * time.Second

// row mirrors the /api/status snapshot entries.
type row struct {
	Name    string `json:"name"`
	Account string `json:"account"`
	Status  string `json:"status"`
	Uptime  string `json:"uptime"`
	Error   string `json:"error"`
}

type statusMsg []row
type statusErrMsg struct{ err error }
type tickMsg time.Time

// Model is the bubbletea model behind `botd status --watch`.
type Model struct {
	addr  string
	token string

	table   table.Model
	spin    spinner.Model
	err     error
	fetched time.Time
}

// NewModel creates the watcher for the server at addr.
func NewModel(addr, token string) Model {
	t := table.New(
		table.WithColumns([]table.Column{
			{Title: "Bot", Width: 16},
			{Title: "Account", Width: 16},
			{Title: "Status", Width: 10},
			{Title: "Uptime", Width: 10},
			{Title: "Last error", Width: 30},
		}),
		table.WithFocused(true),
		table.WithHeight(12),
	)
	t.SetStyles(tableStyles())

	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = spinnerStyle

	return Model{addr: addr, token: token, table: t, spin: sp}
}

func (m Model) fetch() tea.Msg {
	var rows []row
	if err := client.Status(m.addr, m.token, &rows); err != nil {
		return statusErrMsg{err: err}
	}
	return statusMsg(rows)
}

func tick() tea.Cmd {
	return tea.Tick(pollInterval, func(t time.Time) tea.Msg { return tickMsg(t) })
}

func (m Model) Init() tea.Cmd {
	return tea.Batch(m.spin.Tick, m.fetch, tick())
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c", "esc":
			return m, tea.Quit
		}

	case tickMsg:
		return m, tea.Batch(m.fetch, tick())

	case statusMsg:
		m.err = nil
		m.fetched = time.Now()
		rows := make([]table.Row, 0, len(msg))
		for _, r := range msg {
			rows = append(rows, table.Row{r.Name, r.Account, r.Status, r.Uptime, r.Error})
		}
		m.table.SetRows(rows)
		return m, nil

	case statusErrMsg:
		m.err = msg.err
		return m, nil

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spin, cmd = m.spin.Update(msg)
		return m, cmd
	}

	var cmd tea.Cmd
	m.table, cmd = m.table.Update(msg)
	return m, cmd
}

func (m Model) View() string {
	header := titleStyle.Render("botd " + m.addr)
	if m.err != nil {
		return fmt.Sprintf("%s\n\n%s\n\n%s\n", header,
			errStyle.Render("server unreachable: "+m.err.Error()),
			helpStyle.Render("q to quit"))
	}

	status := m.spin.View() + " live"
	if !m.fetched.IsZero() {
		status += helpStyle.Render("  (updated " + m.fetched.Format("15:04:05") + ")")
	}
	return fmt.Sprintf("%s\n%s\n\n%s\n\n%s\n", header, status, m.table.View(),
		helpStyle.Render("q to quit"))
}

// Run starts the watcher and blocks until the user quits.
func Run(addr, token string) error {
	_, err := tea.NewProgram(NewModel(addr, token)).Run()
	return err
}
