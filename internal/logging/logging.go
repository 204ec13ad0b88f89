// Package logging wraps the standard logger with levels, an optional file
// sink and a subscriber feed used by the command server's live log stream.
package logging

import (
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"sync"
)

const fileName = "botd.log"

var (
	mu       sync.Mutex
	file     *os.File
	subs     = make(map[chan string]struct{})
	console  io.Writer = os.Stderr
	fileMode           = true
)

// The standard logger holds its own mutex across Write, so nothing in
// this package may call back into the log package while holding mu. The
// logger's output is therefore set exactly once, to a writer that
// resolves the active sinks per write.
func init() {
	log.SetOutput(sinkWriter{})
}

// SetConsole redirects console output, e.g. away from the terminal while
// a prompt owns it. Pass nil for stderr. Returns the previous writer so
// callers can restore it.
func SetConsole(w io.Writer) io.Writer {
	mu.Lock()
	defer mu.Unlock()
	prev := console
	if w == nil {
		w = os.Stderr
	}
	console = w
	return prev
}

// EnableFile turns the file sink on or off. Client-mode instances run with
// it off so a one-shot invocation does not touch the server's log file.
func EnableFile(on bool) {
	mu.Lock()
	defer mu.Unlock()
	fileMode = on
	if !on && file != nil {
		file.Close()
		file = nil
	}
}

// Init opens the log file next to the config directory when the file sink
// is enabled. Safe to call more than once.
func Init(dir string) error {
	mu.Lock()
	defer mu.Unlock()
	if !fileMode || file != nil {
		return nil
	}
	if err := os.MkdirAll(dir, 0755); err != nil {
		return err
	}
	f, err := os.OpenFile(filepath.Join(dir, fileName), os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		return err
	}
	file = f
	return nil
}

// Close releases the file sink.
func Close() {
	mu.Lock()
	defer mu.Unlock()
	if file != nil {
		file.Close()
		file = nil
	}
}

// Subscribe registers a listener for log lines. The returned cancel func
// must be called when the listener goes away; slow listeners drop lines
// rather than block logging.
func Subscribe() (<-chan string, func()) {
	ch := make(chan string, 64)
	mu.Lock()
	subs[ch] = struct{}{}
	mu.Unlock()
	return ch, func() {
		mu.Lock()
		delete(subs, ch)
		mu.Unlock()
	}
}

// sinkWriter is the standard logger's permanent output: console, the file
// when enabled, and a non-blocking fan-out to subscribers.
type sinkWriter struct{}

func (sinkWriter) Write(p []byte) (int, error) {
	mu.Lock()
	defer mu.Unlock()

	console.Write(p)
	if fileMode && file != nil {
		file.Write(p)
	}

	line := string(p)
	for ch := range subs {
		select {
		case ch <- line:
		default:
		}
	}
	return len(p), nil
}

func Info(component, format string, args ...interface{}) {
	log.Printf("[%s] %s", component, fmt.Sprintf(format, args...))
}

func Warn(component, format string, args ...interface{}) {
	log.Printf("[%s] warning: %s", component, fmt.Sprintf(format, args...))
}

func Error(component, format string, args ...interface{}) {
	log.Printf("[%s] error: %s", component, fmt.Sprintf(format, args...))
}

// Severe is reserved for conditions no automated recovery can fix, such as
// a failed rollback that may have left the binary unbootable.
func Severe(component, format string, args ...interface{}) {
	log.Printf("[%s] SEVERE: %s", component, fmt.Sprintf(format, args...))
}
