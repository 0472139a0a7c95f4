package expr

import (
	"errors"
	"reflect"
	"strings"
)

// Reserved pseudo-columns. Dialects translate these to built-in accessors
// instead of property access.
const (
	ColumnID    = "@id"
	ColumnLabel = "@label"
	ColumnSrc   = "@src"
	ColumnDst   = "@dst"
	ColumnRank  = "@rank"
)

// IsReserved reports whether name is a reserved pseudo-column.
func IsReserved(name string) bool {
	switch name {
	case ColumnID, ColumnLabel, ColumnSrc, ColumnDst, ColumnRank:
		return true
	}
	return false
}

// Column is a resolved column reference. Owner is the backend label of the
// type that declared the column; it is empty for raw column names.
type Column struct {
	Owner string
	Name  string
}

// Reserved reports whether the column is a reserved pseudo-column.
func (c Column) Reserved() bool {
	return IsReserved(c.Name)
}

// DefaultAlias is the output alias used when none is given. Reserved
// pseudo-columns drop their '@' marker.
func (c Column) DefaultAlias() string {
	return strings.TrimPrefix(c.Name, "@")
}

// Property is a typed reference to a field of a Go type registered with a
// Binder.
type Property struct {
	Type  reflect.Type
	Field string
}

// Prop returns a typed property reference to field of T.
//
//	var PlayerAge = expr.Prop[Player]("Age")
func Prop[T any](field string) Property {
	return Property{Type: reflect.TypeFor[T](), Field: field}
}

func (p Property) String() string {
	if p.Type == nil {
		return "<nil>." + p.Field
	}
	return p.Type.Name() + "." + p.Field
}

// Binder resolves typed references to backend names.
type Binder interface {
	// ResolveProperty returns the owning label and column of p.
	ResolveProperty(p Property) (Column, error)
	// ResolveLabel returns the backend label of t.
	ResolveLabel(t reflect.Type) (string, error)
}

// ColumnRef is the set of types accepted wherever a column is expected: raw
// names (any string type) or typed property references.
type ColumnRef interface {
	~string | Property
}

// Ref is an unresolved column reference.
type Ref struct {
	name string
	prop *Property
}

// RefOf converts a raw name or Property into a Ref.
func RefOf[C ColumnRef](c C) Ref {
	if p, ok := any(c).(Property); ok {
		return Ref{prop: &p}
	}
	return Ref{name: reflect.ValueOf(c).String()}
}

// IsZero reports whether the reference names nothing.
func (r Ref) IsZero() bool {
	return r.prop == nil && r.name == ""
}

// Property returns the typed reference, if any.
func (r Ref) Property() (Property, bool) {
	if r.prop == nil {
		return Property{}, false
	}
	return *r.prop, true
}

func (r Ref) String() string {
	if r.prop != nil {
		return r.prop.String()
	}
	return r.name
}

// Resolve returns the backend column. Raw names resolve to themselves; typed
// references are resolved through b.
func (r Ref) Resolve(b Binder) (Column, error) {
	if r.prop == nil {
		return Column{Name: r.name}, nil
	}
	if b == nil {
		return Column{}, &BindingError{Property: r.prop.String(), Reason: "no binder configured"}
	}
	col, err := b.ResolveProperty(*r.prop)
	if err != nil {
		var be *BindingError
		if errors.As(err, &be) {
			return Column{}, err
		}
		return Column{}, &BindingError{Property: r.prop.String(), Err: err}
	}
	return col, nil
}

// Order is one ordering key.
type Order struct {
	Col  Ref
	Desc bool
}

// Asc orders by col ascending.
func Asc[C ColumnRef](col C) Order {
	return Order{Col: RefOf(col)}
}

// Desc orders by col descending.
func Desc[C ColumnRef](col C) Order {
	return Order{Col: RefOf(col), Desc: true}
}

// Page is a skip/limit pagination clause.
type Page struct {
	Skip  int
	Limit int
}

// Validate rejects negative skips and non-positive limits.
func (p Page) Validate() error {
	if p.Skip < 0 || p.Limit <= 0 {
		return &InvalidPageError{Skip: p.Skip, Limit: p.Limit}
	}
	return nil
}
