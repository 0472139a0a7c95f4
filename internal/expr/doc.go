// Package expr provides the backend-agnostic expression model used to build
// graph queries: the operator vocabulary, predicate chains, selections,
// aggregate projections, ordering and pagination.
//
// The package contains no dialect knowledge. Values built here are rendered
// by the dialect packages, which translate each term into backend text.
//
// # Predicate Chains
//
// A Chain is an immutable, slice-backed sequence of terms joined by the
// connectives AND, OR and XOR. Composition always returns a new Chain, so a
// sub-chain can be reused in two places without aliasing:
//
//	young := expr.LT("age", 30)
//	names := expr.HasPrefix("name", "bo").Or(expr.HasPrefix("name", "zh"))
//	where := young.And(expr.Group(names)).Or(expr.GT("age", 50))
//
// The chain is flat. Terms are rendered in the order they were joined and are
// never re-associated; the only parenthesization is an explicit Group.
//
// Every constructor has a guarded variant (EQIf, LTIf, ...) that returns the
// empty chain when its guard is false. Joining with the empty chain is the
// identity, which makes optional filters composable without branching:
//
//	where := expr.EQIf(name != "", "name", name).And(expr.GTIf(min > 0, "age", min))
//
// # Column References
//
// Columns are either raw names or typed Property references. A Property is
// resolved to a backend (label, column) pair by a Binder at render time.
// Reserved pseudo-columns (ColumnID, ColumnLabel, ColumnSrc, ColumnDst,
// ColumnRank) are mapped by each dialect to its built-in accessors.
//
// # Errors
//
// Builders never return errors. Invalid input (for example IN with a scalar
// value, or a blank alias) is recorded on the value and reported by Err, and
// renderers refuse to emit text for a value that carries an error.
//
// # Concurrency
//
// Chains and Selections are immutable once built and may be rendered
// concurrently and repeatedly, including against different dialects.
package expr
