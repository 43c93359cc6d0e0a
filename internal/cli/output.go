package cli

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"

	"github.com/roach88/profiledir/internal/directory"
)

// Exit codes for CLI commands.
const (
	ExitSuccess      = 0 // Successful execution
	ExitFailure      = 1 // Domain failure (duplicate username, invalid username, integrity error, etc.)
	ExitCommandError = 2 // Command error (bad config, database unavailable, missing key, etc.)
)

// Error codes for failures that are not directory errors.
const (
	ErrCodeConfig   = "CONFIG"
	ErrCodeStorage  = "STORAGE"
	ErrCodeIdentity = "IDENTITY"
	ErrCodeUsage    = "USAGE"
)

// ExitError represents an error with a specific exit code.
// Use this to return errors with meaningful exit codes from CLI commands.
type ExitError struct {
	Code    int    // Exit code (use ExitFailure or ExitCommandError)
	Message string // Error message
	Err     error  // Underlying error (optional)
}

func (e *ExitError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *ExitError) Unwrap() error {
	return e.Err
}

// NewExitError creates a new ExitError with the given code and message.
func NewExitError(code int, message string) *ExitError {
	return &ExitError{Code: code, Message: message}
}

// WrapExitError wraps an existing error with an exit code.
func WrapExitError(code int, message string, err error) *ExitError {
	return &ExitError{Code: code, Message: message, Err: err}
}

// GetExitCode extracts the exit code from an error.
// Returns ExitFailure (1) if the error is not an ExitError.
func GetExitCode(err error) int {
	var exitErr *ExitError
	if errors.As(err, &exitErr) {
		return exitErr.Code
	}
	return ExitFailure
}

// OutputFormatter handles JSON vs text output for CLI commands.
type OutputFormatter struct {
	Format    string
	Writer    io.Writer
	ErrWriter io.Writer // Separate writer for verbose/diagnostic output (defaults to Writer)
	Verbose   bool
}

// CLIResponse is the standard JSON response format for CLI output.
type CLIResponse struct {
	Status string      `json:"status"`          // "ok" or "error"
	Data   interface{} `json:"data,omitempty"`  // success payload
	Error  *CLIError   `json:"error,omitempty"` // error details
}

// CLIError is the error structure for CLI responses.
type CLIError struct {
	Code    string      `json:"code"`              // "DUPLICATE_USERNAME", "CONFIG", etc.
	Message string      `json:"message"`           // human-readable message
	Details interface{} `json:"details,omitempty"` // additional context
}

// Success outputs a successful result in the configured format.
func (f *OutputFormatter) Success(data interface{}) error {
	if f.Format == "json" {
		return json.NewEncoder(f.Writer).Encode(CLIResponse{
			Status: "ok",
			Data:   data,
		})
	}

	// Human-readable text output
	fmt.Fprintln(f.Writer, data)
	return nil
}

// Error outputs an error in the configured format.
func (f *OutputFormatter) Error(code, message string, details interface{}) error {
	if f.Format == "json" {
		return json.NewEncoder(f.Writer).Encode(CLIResponse{
			Status: "error",
			Error: &CLIError{
				Code:    code,
				Message: message,
				Details: details,
			},
		})
	}

	// Human-readable error
	fmt.Fprintf(f.Writer, "Error [%s]: %s\n", code, message)
	if f.Verbose && details != nil {
		fmt.Fprintf(f.Writer, "Details: %v\n", details)
	}
	return nil
}

// VerboseLog outputs a message only if verbose mode is enabled.
// Uses ErrWriter if set, otherwise falls back to Writer.
// When format is JSON, verbose logs go to ErrWriter to avoid corrupting JSON output.
func (f *OutputFormatter) VerboseLog(format string, args ...interface{}) {
	if !f.Verbose {
		return
	}
	fmt.Fprintf(f.GetErrWriter(), format+"\n", args...)
}

// GetErrWriter returns the appropriate writer for diagnostic output.
// Returns ErrWriter if set, otherwise Writer.
func (f *OutputFormatter) GetErrWriter() io.Writer {
	if f.ErrWriter != nil {
		return f.ErrWriter
	}
	return f.Writer
}

// Fail reports err through the formatter and returns the matching ExitError.
// Directory errors keep their code and exit with ExitFailure; an ExitError
// keeps its exit code; anything else is a storage fault.
func (f *OutputFormatter) Fail(err error) error {
	var de *directory.Error
	if errors.As(err, &de) {
		details := map[string]string{}
		if de.Username != "" {
			details["username"] = de.Username
		}
		if de.Address != "" {
			details["address"] = string(de.Address)
		}
		if len(details) == 0 {
			details = nil
		}
		_ = f.Error(string(de.Code), de.Message, details)
		return WrapExitError(ExitFailure, string(de.Code), err)
	}

	var exitErr *ExitError
	if errors.As(err, &exitErr) {
		_ = f.Error(exitCodeName(exitErr), exitErr.Error(), nil)
		return exitErr
	}

	_ = f.Error(ErrCodeStorage, err.Error(), nil)
	return WrapExitError(ExitCommandError, ErrCodeStorage, err)
}

// exitCodeName labels an ExitError for CLIError.Code.
func exitCodeName(e *ExitError) string {
	var coded *codedError
	if errors.As(e.Err, &coded) {
		return coded.code
	}
	if e.Code == ExitCommandError {
		return ErrCodeUsage
	}
	return "FAILURE"
}

// codedError tags a command error with a CLIError code.
type codedError struct {
	code string
	err  error
}

func (e *codedError) Error() string {
	if e.err == nil {
		return e.code
	}
	return e.err.Error()
}

func (e *codedError) Unwrap() error { return e.err }

// commandError builds an ExitCommandError carrying a CLIError code.
func commandError(code, message string, err error) *ExitError {
	return WrapExitError(ExitCommandError, message, &codedError{code: code, err: err})
}
