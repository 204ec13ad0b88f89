// Package output renders command results as human-readable text or,
// when the --json flag is set, as a machine-readable JSON envelope.
package output

import (
	"encoding/json"
	"fmt"
	"os"
)

// JSON switches all command output to the JSON envelope format.
var JSON bool

type envelope struct {
	OK    bool        `json:"ok"`
	Data  interface{} `json:"data,omitempty"`
	Error string      `json:"error,omitempty"`
}

// Emit prints a successful result. In JSON mode data is wrapped in the
// envelope; otherwise textFn renders it for humans.
func Emit(data interface{}, textFn func()) {
	if JSON {
		out, err := json.MarshalIndent(envelope{OK: true, Data: data}, "", "  ")
		if err != nil {
			Fail(err)
			return
		}
		fmt.Println(string(out))
		return
	}
	textFn()
}

// Fail prints an error result and exits with status 1.
func Fail(err error) {
	if JSON {
		out, _ := json.MarshalIndent(envelope{OK: false, Error: err.Error()}, "", "  ")
		fmt.Println(string(out))
		os.Exit(1)
	}
	fmt.Fprintf(os.Stderr, "Error: %v\n", err)
	os.Exit(1)
}
