// Package console serializes interactive prompting. Several bots may need
// credentials around the same time; one mutual-exclusion region makes sure
// two prompts never interleave on the terminal.
package console

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"
	"sync"

	"golang.org/x/term"

	"botd/internal/logging"
)

// Session owns the terminal for interactive input.
type Session struct {
	mu  sync.Mutex
	in  *bufio.Reader
	out *os.File
}

// NewSession creates a session reading stdin and writing stderr, so
// prompts stay visible when stdout is piped.
func NewSession() *Session {
	return &Session{
		in:  bufio.NewReader(os.Stdin),
		out: os.Stderr,
	}
}

// ReadLine prompts and reads one trimmed line. Concurrent callers queue.
// Console log output is muted while the prompt owns the terminal; lines
// still reach the file sink and subscribers.
func (s *Session) ReadLine(prompt string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	prev := logging.SetConsole(io.Discard)
	defer logging.SetConsole(prev)

	fmt.Fprint(s.out, prompt)
	line, err := s.in.ReadString('\n')
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(line), nil
}

// ReadPassword prompts and reads input without echo when stdin is a
// terminal, falling back to a plain line read otherwise (tests, pipes).
func (s *Session) ReadPassword(prompt string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	prev := logging.SetConsole(io.Discard)
	defer logging.SetConsole(prev)

	fmt.Fprint(s.out, prompt)
	fd := int(os.Stdin.Fd())
	if term.IsTerminal(fd) {
		data, err := term.ReadPassword(fd)
		fmt.Fprintln(s.out)
		if err != nil {
			return "", err
		}
		return string(data), nil
	}

	line, err := s.in.ReadString('\n')
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(line), nil
}

// Password satisfies the bot package's credential source.
func (s *Session) Password(account string) (string, error) {
	return s.ReadPassword(fmt.Sprintf("Password for %s: ", account))
}
