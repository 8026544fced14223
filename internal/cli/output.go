package cli

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"

	"github.com/roach88/tabledao/internal/condition"
	"github.com/roach88/tabledao/internal/config"
	"github.com/roach88/tabledao/internal/dao"
	"github.com/roach88/tabledao/internal/harness"
	"github.com/roach88/tabledao/internal/record"
	"github.com/roach88/tabledao/internal/registry"
	"github.com/roach88/tabledao/internal/store"
)

// Exit codes for CLI commands.
const (
	ExitSuccess      = 0 // Successful execution
	ExitFailure      = 1 // Test failure (scenarios failed)
	ExitCommandError = 2 // Command error (unknown table, bad condition, database error, etc.)
)

// ExitError represents an error with a specific exit code.
// Use this to return errors with meaningful exit codes from CLI commands.
type ExitError struct {
	Code    int    // Exit code (use ExitFailure or ExitCommandError)
	Message string // Error message
	Err     error  // Underlying error (optional)

	// Reported is true when the error was already written to the output.
	Reported bool
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
	RunID  string      `json:"run_id,omitempty"`
}

// CLIError is the error structure for CLI responses.
type CLIError struct {
	Code    string      `json:"code"`              // "E_HANDLER_NOT_FOUND", etc.
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
	w := f.ErrWriter
	if w == nil {
		w = f.Writer
	}
	fmt.Fprintf(w, format+"\n", args...)
}

// GetErrWriter returns the appropriate writer for diagnostic output.
// Returns ErrWriter if set, otherwise Writer.
func (f *OutputFormatter) GetErrWriter() io.Writer {
	if f.ErrWriter != nil {
		return f.ErrWriter
	}
	return f.Writer
}

// Error codes reported for command errors.
const (
	CodeHandlerNotFound = "E_HANDLER_NOT_FOUND"
	CodeField           = "E_FIELD"
	CodeInvalidInput    = "E_INVALID_INPUT"
	CodeUpdate          = "E_UPDATE"
	CodeConfig          = "E_CONFIG"
	CodeIdentifier      = "E_IDENTIFIER"
	CodeScenario        = "E_SCENARIO"
	CodeInternal        = "E_INTERNAL"
)

// errorCode maps typed errors from the library packages to CLI codes.
func errorCode(err error) string {
	var accessErr *record.AccessError
	var cfgErr *config.Error
	switch {
	case registry.IsHandlerNotFound(err):
		return CodeHandlerNotFound
	case errors.As(err, &accessErr):
		return CodeField
	case condition.IsInvalidInput(err):
		return CodeInvalidInput
	case dao.IsIDMissing(err), dao.IsUpdateTargetMissing(err):
		return CodeUpdate
	case errors.As(err, &cfgErr):
		return CodeConfig
	case errors.Is(err, store.ErrInvalidIdentifier):
		return CodeIdentifier
	case harness.IsAssertion(err), harness.IsTimeout(err):
		return CodeScenario
	default:
		return CodeInternal
	}
}

// Fail reports err in the configured format and returns it as a command
// error. The returned error has already been shown to the user.
func (f *OutputFormatter) Fail(err error) error {
	code := errorCode(err)
	if werr := f.Error(code, err.Error(), nil); werr != nil {
		return WrapExitError(ExitCommandError, code, werr)
	}
	return &ExitError{Code: ExitCommandError, Message: code, Err: err, Reported: true}
}
