package mcpserver

import "errors"

var errMissingCommand = errors.New("command is required")
