package expr

import "fmt"

// InvalidChainError reports a malformed predicate composition: a
// non-connective used to join terms, a null check carrying a value, a
// membership test without a collection, or a term without a column.
type InvalidChainError struct {
	Op     Op
	Column string
	Reason string
}

func (e *InvalidChainError) Error() string {
	if e.Column != "" {
		return fmt.Sprintf("invalid chain: %s %s: %s", e.Column, e.Op, e.Reason)
	}
	if e.Op.Valid() {
		return fmt.Sprintf("invalid chain: %s: %s", e.Op, e.Reason)
	}
	return "invalid chain: " + e.Reason
}

// InvalidSelectionError reports a malformed projection, such as a blank
// alias or an aggregate missing its column.
type InvalidSelectionError struct {
	Column string
	Reason string
}

func (e *InvalidSelectionError) Error() string {
	if e.Column != "" {
		return fmt.Sprintf("invalid selection: %s: %s", e.Column, e.Reason)
	}
	return "invalid selection: " + e.Reason
}

// InvalidPageError reports a negative skip or a non-positive limit.
type InvalidPageError struct {
	Skip, Limit int
}

func (e *InvalidPageError) Error() string {
	return fmt.Sprintf("invalid page: skip=%d limit=%d (skip must be >= 0, limit > 0)", e.Skip, e.Limit)
}

// BindingError reports that a typed property reference could not be resolved
// to a backend column, or a type could not be resolved to a label.
type BindingError struct {
	Property string
	Reason   string
	Err      error
}

func (e *BindingError) Error() string {
	msg := "binding " + e.Property
	if e.Reason != "" {
		msg += ": " + e.Reason
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *BindingError) Unwrap() error {
	return e.Err
}
