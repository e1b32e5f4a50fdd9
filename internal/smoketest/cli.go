package smoketest

import (
	"fmt"
	"io"
	"os"

	"github.com/okian/todos/pkg/logger"
)

// File permission constants.
const (
	logFilePermission = 0600
)

// SetupLogging initializes the logger to write to stdout and, when logFile
// is set, to that file as well.
func SetupLogging(logFile string, verbose bool) error {
	var out io.Writer = os.Stdout
	if logFile != "" {
		file, err := os.OpenFile(logFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, logFilePermission)
		if err != nil {
			return fmt.Errorf("failed to create log file: %w", err)
		}
		out = io.MultiWriter(os.Stdout, file)
	}

	if err := logger.Init(logger.WithOutput(out)); err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}
	if verbose {
		_ = logger.SetLevelString("debug")
	}
	return nil
}

// ShowHelp prints usage information for the smoke test tool.
func ShowHelp() {
	os.Stdout.WriteString(`Todos Smoke Test Tool
=====================

Creates todos concurrently against a running service, checks each one
round-trips, completes and deletes them, and confirms they are gone.

Usage:
  go run ./cmd/todo-smoke [options]

Options:
  -url string
        Base URL of the service (default "http://localhost:8000")
  -todos int
        Number of todos to create (default 100)
  -workers int
        Number of concurrent workers (default CPU cores * 2)
  -timeout duration
        HTTP request timeout (default 10s)
  -output string
        Write the created todos as JSON to this file
  -log string
        Also write log output to this file
  -verbose
        Enable verbose logging
  -help
        Show this help message

Examples:
  # Test with default settings
  go run ./cmd/todo-smoke

  # Test with more load against another address
  go run ./cmd/todo-smoke -todos 5000 -workers 32 -url http://localhost:8080
`)
}
