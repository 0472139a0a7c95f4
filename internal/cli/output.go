package cli

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
)

// Exit codes for CLI commands.
const (
	ExitSuccess      = 0 // Successful execution
	ExitFailure      = 1 // A document failed to render or validate
	ExitCommandError = 2 // Command error (bad flags, unreadable config, journal not found, etc.)
)

// ExitError carries the process exit code for a failed command.
type ExitError struct {
	Code    int    // ExitFailure or ExitCommandError
	Message string
	Err     error // optional
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

// NewExitError creates an ExitError with the given code and message.
func NewExitError(code int, message string) *ExitError {
	return &ExitError{Code: code, Message: message}
}

// WrapExitError wraps err with an exit code.
func WrapExitError(code int, message string, err error) *ExitError {
	return &ExitError{Code: code, Message: message, Err: err}
}

// GetExitCode extracts the exit code from an error. Nil is ExitSuccess and any
// error that is not an ExitError is ExitFailure.
func GetExitCode(err error) int {
	if err == nil {
		return ExitSuccess
	}
	var exitErr *ExitError
	if errors.As(err, &exitErr) {
		return exitErr.Code
	}
	return ExitFailure
}

// OutputFormatter writes command results as text or JSON.
type OutputFormatter struct {
	Format    string
	Writer    io.Writer
	ErrWriter io.Writer // diagnostics; defaults to Writer
	Verbose   bool
}

// newFormatter builds a formatter for opts writing to w and ew.
func newFormatter(opts *RootOptions, w, ew io.Writer) *OutputFormatter {
	return &OutputFormatter{Format: opts.Format, Writer: w, ErrWriter: ew, Verbose: opts.Verbose}
}

// Response is the JSON envelope of every command.
type Response struct {
	Status string         `json:"status"`          // "ok" or "error"
	Data   any            `json:"data,omitempty"`  // success payload, or partial results on error
	Error  *ResponseError `json:"error,omitempty"`
}

// ResponseError is the error part of a Response.
type ResponseError struct {
	Code    string `json:"code"` // "E001", "E010", etc.
	Message string `json:"message"`
	Details any    `json:"details,omitempty"`
}

// texter is implemented by payloads with their own text rendering.
type texter interface {
	WriteText(w io.Writer) error
}

// Success writes a successful result.
func (f *OutputFormatter) Success(data any) error {
	if f.Format == "json" {
		return f.encode(Response{Status: "ok", Data: data})
	}
	if t, ok := data.(texter); ok {
		return t.WriteText(f.Writer)
	}
	_, err := fmt.Fprintln(f.Writer, data)
	return err
}

// Error writes err with its classified code.
func (f *OutputFormatter) Error(err error, details any) error {
	return f.Fail(errorCode(err), err.Error(), details)
}

// Fail writes an error with an explicit code. In JSON mode details becomes
// the error details; in text mode it is printed only when verbose.
func (f *OutputFormatter) Fail(code, message string, details any) error {
	if f.Format == "json" {
		return f.encode(Response{
			Status: "error",
			Error:  &ResponseError{Code: code, Message: message, Details: details},
		})
	}

	fmt.Fprintf(f.Writer, "Error [%s]: %s\n", code, message)
	if f.Verbose && details != nil {
		fmt.Fprintf(f.Writer, "Details: %v\n", details)
	}
	return nil
}

// Partial writes results alongside the first failure. Text output prints
// the results followed by every failure.
func (f *OutputFormatter) Partial(data any, failures []Failure) error {
	if f.Format == "json" {
		first := failures[0]
		return f.encode(Response{
			Status: "error",
			Data:   data,
			Error:  &ResponseError{Code: first.Code, Message: first.Message, Details: failures},
		})
	}
	if t, ok := data.(texter); ok {
		if err := t.WriteText(f.Writer); err != nil {
			return err
		}
	}
	for _, fl := range failures {
		fmt.Fprintf(f.Writer, "Error [%s]: %s\n", fl.Code, fl.Message)
	}
	return nil
}

// VerboseLog writes a diagnostic line in verbose mode. It goes to ErrWriter
// so JSON output stays parseable.
func (f *OutputFormatter) VerboseLog(format string, args ...any) {
	if !f.Verbose {
		return
	}
	fmt.Fprintf(f.GetErrWriter(), format+"\n", args...)
}

// GetErrWriter returns ErrWriter when set, otherwise Writer.
func (f *OutputFormatter) GetErrWriter() io.Writer {
	if f.ErrWriter != nil {
		return f.ErrWriter
	}
	return f.Writer
}

func (f *OutputFormatter) encode(resp Response) error {
	encoder := json.NewEncoder(f.Writer)
	encoder.SetIndent("", "  ")
	return encoder.Encode(resp)
}
