package cli

import (
	"errors"
	"fmt"
	"io/fs"

	"github.com/roach88/graphq/internal/config"
	"github.com/roach88/graphq/internal/dialect"
	"github.com/roach88/graphq/internal/expr"
	"github.com/roach88/graphq/internal/querydoc"
	"github.com/roach88/graphq/internal/store"
	"github.com/roach88/graphq/internal/traversal"
	"github.com/roach88/graphq/internal/value"
)

// Stable error codes reported in command output.
const (
	ErrGeneric             = "E001"
	ErrConfig              = "E002"
	ErrDocument            = "E003"
	ErrDescriptor          = "E004"
	ErrNotFound            = "E005"
	ErrUnknownDialect      = "E010"
	ErrMissingTemplate     = "E011"
	ErrUnsupportedOperator = "E012"
	ErrUnsupportedFunction = "E013"
	ErrReference           = "E014"
	ErrRegistry            = "E015"
	ErrInvalidChain        = "E020"
	ErrInvalidSelection    = "E021"
	ErrInvalidPage         = "E022"
	ErrBinding             = "E023"
	ErrInvalidTraversal    = "E024"
	ErrValue               = "E025"
	ErrJournal             = "E030"
)

// configError marks a failure to load the runtime configuration.
type configError struct {
	err error
}

func (e *configError) Error() string { return e.err.Error() }
func (e *configError) Unwrap() error { return e.err }

// journalError marks a statement journal failure.
type journalError struct {
	err error
}

func (e *journalError) Error() string { return e.err.Error() }
func (e *journalError) Unwrap() error { return e.err }

// DocumentError locates a failure in an input file.
type DocumentError struct {
	Source string
	Index  int
	Name   string
	Err    error
}

func (e *DocumentError) Error() string {
	loc := fmt.Sprintf("%s[%d]", e.Source, e.Index)
	if e.Name != "" {
		loc += " " + e.Name
	}
	return loc + ": " + e.Err.Error()
}

func (e *DocumentError) Unwrap() error {
	return e.Err
}

// Failure is one reported document failure.
type Failure struct {
	Source  string `json:"source"`
	Index   int    `json:"index"`
	Name    string `json:"name,omitempty"`
	Code    string `json:"code"`
	Message string `json:"message"`
}

func newFailure(source string, err error) Failure {
	f := Failure{Source: source, Index: -1, Code: errorCode(err), Message: err.Error()}
	var de *DocumentError
	if errors.As(err, &de) {
		f.Source, f.Index, f.Name = de.Source, de.Index, de.Name
	}
	return f
}

// errorCode maps an error to its stable code. The most specific kind in the
// chain wins, so a document error caused by an unknown dialect reports
// ErrUnknownDialect.
func errorCode(err error) string {
	var (
		unknown   *dialect.UnknownDialectError
		missing   *dialect.MissingDialectTemplateError
		operator  *dialect.UnsupportedOperatorError
		function  *dialect.UnsupportedFunctionError
		reference *dialect.ReferenceError
		registry  *dialect.RegistryError
		template  *dialect.TemplateError
		chain     *expr.InvalidChainError
		selection *expr.InvalidSelectionError
		page      *expr.InvalidPageError
		binding   *expr.BindingError
		trav      *traversal.InvalidTraversalError
		format    *value.FormatError
		load      *config.LoadError
		decode    *querydoc.DecodeError
		cfg       *configError
		journal   *journalError
	)

	switch {
	case errors.As(err, &unknown):
		return ErrUnknownDialect
	case errors.As(err, &missing):
		return ErrMissingTemplate
	case errors.As(err, &operator):
		return ErrUnsupportedOperator
	case errors.As(err, &function):
		return ErrUnsupportedFunction
	case errors.As(err, &reference):
		return ErrReference
	case errors.As(err, &registry), errors.As(err, &template):
		return ErrRegistry
	case errors.As(err, &chain):
		return ErrInvalidChain
	case errors.As(err, &selection):
		return ErrInvalidSelection
	case errors.As(err, &page):
		return ErrInvalidPage
	case errors.As(err, &binding):
		return ErrBinding
	case errors.As(err, &trav):
		return ErrInvalidTraversal
	case errors.As(err, &format):
		return ErrValue
	case errors.As(err, &load):
		return ErrDescriptor
	case errors.As(err, &journal):
		if errors.Is(err, store.ErrNotFound) || errors.Is(err, fs.ErrNotExist) {
			return ErrNotFound
		}
		return ErrJournal
	case errors.As(err, &cfg):
		return ErrConfig
	case errors.Is(err, fs.ErrNotExist):
		return ErrNotFound
	case errors.As(err, &decode):
		return ErrDocument
	default:
		return ErrGeneric
	}
}
