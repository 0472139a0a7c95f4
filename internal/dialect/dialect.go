// Package dialect defines the contracts a backend query language implements
// and the machinery shared by all of them: statement templates, the dialect
// registry, and the Renderer that walks expression values.
//
// A dialect is described by a Descriptor holding four renderer roles and a
// set of named templates:
//
//   - PredicateRenderer maps column references, operators and connectives.
//   - SelectionRenderer maps projections, whole-entity selection, ordering
//     keys and declares whether aggregates are inline or a piped stage.
//   - FunctionRenderer maps aggregate calls.
//   - TraversalRenderer assembles multi-hop traversals.
//
// Descriptors are registered once, typically from the init function of the
// dialect package, and looked up by name and version. The registry freezes on
// first lookup; later registrations fail.
package dialect

import (
	"fmt"
	"sort"

	"github.com/roach88/graphq/internal/expr"
	"github.com/roach88/graphq/internal/traversal"
	"github.com/roach88/graphq/internal/value"
)

// ScopeKind is the kind of entity a reference is evaluated against.
type ScopeKind int

const (
	Vertex ScopeKind = iota + 1
	Edge
	Source      // source vertex of a traversal hop
	Destination // destination vertex of a traversal hop
)

func (k ScopeKind) String() string {
	switch k {
	case Vertex:
		return "vertex"
	case Edge:
		return "edge"
	case Source:
		return "source vertex"
	case Destination:
		return "destination vertex"
	}
	return fmt.Sprintf("ScopeKind(%d)", int(k))
}

// Scope is the context a column is rendered in. Binding is the statement
// variable for the entity, when the dialect uses one. Label is the backend
// label or edge type. Multi marks a variable-length edge bound to a list.
type Scope struct {
	Kind    ScopeKind
	Binding string
	Label   string
	Multi   bool
}

// OperatorFunc renders one condition from its rendered reference and value.
// For null checks value is empty.
type OperatorFunc func(ref, value string) string

// Infix returns an OperatorFunc rendering "ref tok value".
func Infix(tok string) OperatorFunc {
	return func(ref, value string) string { return ref + " " + tok + " " + value }
}

// Postfix returns an OperatorFunc rendering "ref tok".
func Postfix(tok string) OperatorFunc {
	return func(ref, _ string) string { return ref + " " + tok }
}

// PredicateRenderer translates the parts of a condition term.
type PredicateRenderer interface {
	Reference(s Scope, c expr.Column) (string, error)
	Operator(op expr.Op) (OperatorFunc, bool)
	Connective(op expr.Op) (string, bool)
}

// AggregateStage says where aggregate projections go.
type AggregateStage int

const (
	// StageInline places aggregates in the same projection as columns.
	StageInline AggregateStage = iota + 1
	// StagePiped places aggregates in a following statement stage that reads
	// the first stage's output.
	StagePiped
)

// SelectionRenderer translates projections. OrderReference receives the name
// the ordered column is yielded under, for dialects whose ordering reads the
// previous stage's output.
type SelectionRenderer interface {
	Reference(s Scope, c expr.Column) (string, error)
	Project(ref, alias string) string
	SelectAll(s Scope, alias string) string
	FieldSeparator() string
	DefaultAlias(k ScopeKind) string
	AggregateStage() AggregateStage
	OrderReference(s Scope, c expr.Column, output string) (string, error)
}

// FunctionRenderer translates aggregate calls. Call receives "*" for the
// zero-argument count. Argument receives the first-stage name of the column
// when aggregates are piped, and the empty string otherwise.
type FunctionRenderer interface {
	Call(fn expr.Func, arg string) (string, bool)
	Argument(source string, s Scope, c expr.Column, input string) (string, error)
}

// TraversalRenderer assembles a traversal statement.
type TraversalRenderer interface {
	RenderTraversal(r *Renderer, p traversal.Plan) (string, error)
}

// Descriptor identifies a dialect and owns its renderers and templates.
type Descriptor struct {
	Name      string
	Version   string
	Predicate PredicateRenderer
	Selection SelectionRenderer
	Function  FunctionRenderer
	Traversal TraversalRenderer
	Templates map[string]string
	Values    value.Style
}

// Dialect is a registered, immutable descriptor with parsed templates.
type Dialect struct {
	desc      Descriptor
	templates map[string]*Template
	values    value.Formatter
}

func newDialect(d Descriptor) (*Dialect, error) {
	switch {
	case d.Predicate == nil:
		return nil, fmt.Errorf("no predicate renderer")
	case d.Selection == nil:
		return nil, fmt.Errorf("no selection renderer")
	case d.Function == nil:
		return nil, fmt.Errorf("no function renderer")
	case d.Traversal == nil:
		return nil, fmt.Errorf("no traversal renderer")
	}
	out := &Dialect{
		desc:      d,
		templates: make(map[string]*Template, len(d.Templates)),
		values:    value.New(d.Values),
	}
	out.desc.Templates = make(map[string]string, len(d.Templates))
	for name, text := range d.Templates {
		t, err := ParseTemplate(name, text)
		if err != nil {
			return nil, err
		}
		t.dialect = d.Name
		out.templates[name] = t
		out.desc.Templates[name] = text
	}
	return out, nil
}

// Name returns the dialect identifier.
func (d *Dialect) Name() string { return d.desc.Name }

// Version returns the dialect version.
func (d *Dialect) Version() string { return d.desc.Version }

func (d *Dialect) String() string { return d.desc.Name + "@" + d.desc.Version }

// Descriptor returns a copy of the descriptor the dialect was registered
// with.
func (d *Dialect) Descriptor() Descriptor {
	out := d.desc
	out.Templates = make(map[string]string, len(d.desc.Templates))
	for k, v := range d.desc.Templates {
		out.Templates[k] = v
	}
	return out
}

func (d *Dialect) Predicate() PredicateRenderer { return d.desc.Predicate }
func (d *Dialect) Selection() SelectionRenderer { return d.desc.Selection }
func (d *Dialect) Function() FunctionRenderer   { return d.desc.Function }
func (d *Dialect) Traversal() TraversalRenderer { return d.desc.Traversal }

// Values returns the dialect's literal formatter.
func (d *Dialect) Values() value.Formatter { return d.values }

// Template returns the named template.
func (d *Dialect) Template(name string) (*Template, error) {
	t, ok := d.templates[name]
	if !ok {
		return nil, &MissingDialectTemplateError{Dialect: d.desc.Name, Template: name}
	}
	return t, nil
}

// HasTemplate reports whether the dialect defines the named template.
func (d *Dialect) HasTemplate(name string) bool {
	_, ok := d.templates[name]
	return ok
}

// TemplateNames returns the defined template names, sorted.
func (d *Dialect) TemplateNames() []string {
	names := make([]string, 0, len(d.templates))
	for name := range d.templates {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Execute renders the named template with f.
func (d *Dialect) Execute(name string, f Fragments) (string, error) {
	t, err := d.Template(name)
	if err != nil {
		return "", err
	}
	return t.Execute(f)
}
