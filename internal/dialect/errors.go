package dialect

import (
	"fmt"

	"github.com/roach88/graphq/internal/expr"
)

// UnsupportedOperatorError reports an operator or connective the dialect has
// no mapping for.
type UnsupportedOperatorError struct {
	Dialect string
	Op      expr.Op
}

func (e *UnsupportedOperatorError) Error() string {
	return fmt.Sprintf("dialect %s: unsupported operator %s", e.Dialect, e.Op)
}

// UnsupportedFunctionError reports an aggregate function the dialect has no
// mapping for.
type UnsupportedFunctionError struct {
	Dialect string
	Func    expr.Func
}

func (e *UnsupportedFunctionError) Error() string {
	return fmt.Sprintf("dialect %s: unsupported function %s", e.Dialect, e.Func)
}

// MissingDialectTemplateError reports a named template the dialect does not
// define, or a required placeholder with no rendered fragment.
type MissingDialectTemplateError struct {
	Dialect     string
	Template    string
	Placeholder string // empty when the template itself is missing
}

func (e *MissingDialectTemplateError) Error() string {
	if e.Placeholder == "" {
		return fmt.Sprintf("dialect %s: no template %q", e.Dialect, e.Template)
	}
	return fmt.Sprintf("dialect %s: template %q: no fragment for placeholder {%s}", e.Dialect, e.Template, e.Placeholder)
}

// UnknownDialectError reports a lookup that matched no registered dialect.
type UnknownDialectError struct {
	Name    string
	Version string
}

func (e *UnknownDialectError) Error() string {
	if e.Version == "" {
		return fmt.Sprintf("unknown dialect %q", e.Name)
	}
	return fmt.Sprintf("unknown dialect %q version %q", e.Name, e.Version)
}

// RegistryError reports a rejected registration.
type RegistryError struct {
	Name    string
	Version string
	Reason  string
	Err     error
}

func (e *RegistryError) Error() string {
	msg := fmt.Sprintf("register dialect %s@%s: %s", e.Name, e.Version, e.Reason)
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *RegistryError) Unwrap() error {
	return e.Err
}

// ReferenceError reports a column that cannot be referenced in a scope, such
// as an edge endpoint on a vertex.
type ReferenceError struct {
	Dialect string
	Scope   ScopeKind
	Column  string
	Reason  string
}

func (e *ReferenceError) Error() string {
	return fmt.Sprintf("dialect %s: cannot reference %s on %s: %s", e.Dialect, e.Column, e.Scope, e.Reason)
}

// TemplateError reports a malformed template text.
type TemplateError struct {
	Template string
	Offset   int
	Reason   string
}

func (e *TemplateError) Error() string {
	return fmt.Sprintf("template %q: offset %d: %s", e.Template, e.Offset, e.Reason)
}
