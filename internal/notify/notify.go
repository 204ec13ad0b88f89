// Package notify pushes lifecycle events (updates applied, unrecoverable
// failures) to an operator-configured webhook.
package notify

// Notification is one operator-facing event.
type Notification struct {
	Title   string
	Message string
}

// Notifier sends notifications.
type Notifier interface {
	Send(n Notification) error
	Name() string
}

// MultiNotifier fans one notification out to several notifiers. It
// attempts all of them and returns the first error encountered.
type MultiNotifier struct {
	notifiers []Notifier
}

func NewMultiNotifier(ns ...Notifier) *MultiNotifier {
	return &MultiNotifier{notifiers: ns}
}

func (m *MultiNotifier) Send(n Notification) error {
	var firstErr error
	for _, notifier := range m.notifiers {
		if err := notifier.Send(n); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}

func (m *MultiNotifier) Name() string { return "multi" }
