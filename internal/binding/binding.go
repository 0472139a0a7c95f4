// Package binding resolves typed property references to backend labels and
// columns.
//
// Types are registered once, usually at program start:
//
//	type Player struct {
//		ID   string `graph:"@id"`
//		Name string
//		Age  int    `graph:"age"`
//		Temp string `graph:"-"`
//	}
//
//	reg := binding.NewRegistry()
//	binding.Register[Player](reg)
//
// The label of a type is the value of its Label() string method when it has
// one, otherwise the underscored type name ("PlayerStat" -> "player_stat").
// Columns default to the underscored field name. Registration is safe for
// concurrent use with resolution.
package binding

import (
	"fmt"
	"reflect"
	"strings"
	"sync"

	"github.com/go-openapi/inflect"

	"github.com/roach88/graphq/internal/expr"
)

// TagName is the struct tag consulted for column names.
const TagName = "graph"

// Labeler is implemented by types that choose their own backend label.
type Labeler interface {
	Label() string
}

type entity struct {
	label   string
	columns map[string]string
}

// Registry maps registered Go types to their backend label and columns. It
// implements expr.Binder.
type Registry struct {
	mu       sync.RWMutex
	entities map[reflect.Type]*entity
}

var _ expr.Binder = (*Registry)(nil)

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{entities: make(map[reflect.Type]*entity)}
}

// Register adds T to r.
func Register[T any](r *Registry) error {
	var zero T
	return r.Add(zero)
}

// Add registers the type of sample. sample may be a struct value or a pointer
// to one. Registering a type twice replaces the earlier entry.
func (r *Registry) Add(sample any) error {
	t := reflect.TypeOf(sample)
	for t != nil && t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	if t == nil || t.Kind() != reflect.Struct {
		return &expr.BindingError{Property: fmt.Sprint(t), Reason: "only struct types can be registered"}
	}

	e := &entity{label: labelOf(t), columns: make(map[string]string)}
	for i := 0; i < t.NumField(); i++ {
		f := t.Field(i)
		if !f.IsExported() {
			continue
		}
		col, ok := columnOf(f)
		if !ok {
			continue
		}
		e.columns[f.Name] = col
	}

	r.mu.Lock()
	r.entities[t] = e
	r.mu.Unlock()
	return nil
}

// ResolveProperty returns the label of the owning type and the column bound
// to the field.
func (r *Registry) ResolveProperty(p expr.Property) (expr.Column, error) {
	e, err := r.lookup(p.Type)
	if err != nil {
		return expr.Column{}, &expr.BindingError{Property: p.String(), Err: err}
	}
	col, ok := e.columns[p.Field]
	if !ok {
		return expr.Column{}, &expr.BindingError{Property: p.String(), Reason: "field not found"}
	}
	return expr.Column{Owner: e.label, Name: col}, nil
}

// ResolveLabel returns the backend label of t.
func (r *Registry) ResolveLabel(t reflect.Type) (string, error) {
	e, err := r.lookup(t)
	if err != nil {
		return "", &expr.BindingError{Property: fmt.Sprint(t), Err: err}
	}
	return e.label, nil
}

// Label is ResolveLabel for a type parameter.
func Label[T any](r *Registry) (string, error) {
	return r.ResolveLabel(reflect.TypeFor[T]())
}

func (r *Registry) lookup(t reflect.Type) (*entity, error) {
	for t != nil && t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	if t == nil {
		return nil, fmt.Errorf("nil type")
	}
	r.mu.RLock()
	e, ok := r.entities[t]
	r.mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("type %s is not registered", t)
	}
	return e, nil
}

func labelOf(t reflect.Type) string {
	if l, ok := reflect.New(t).Elem().Interface().(Labeler); ok {
		return l.Label()
	}
	if l, ok := reflect.New(t).Interface().(Labeler); ok {
		return l.Label()
	}
	return inflect.Underscore(t.Name())
}

func columnOf(f reflect.StructField) (string, bool) {
	tag, ok := f.Tag.Lookup(TagName)
	if !ok {
		return inflect.Underscore(f.Name), true
	}
	name, _, _ := strings.Cut(tag, ",")
	switch name {
	case "-":
		return "", false
	case "":
		return inflect.Underscore(f.Name), true
	}
	return name, true
}
