package dialect

import (
	"slices"
	"strconv"
	"strings"

	"github.com/roach88/graphq/internal/expr"
	"github.com/roach88/graphq/internal/traversal"
	"github.com/roach88/graphq/internal/value"
)

// Renderer walks expression values for one dialect. It holds no mutable
// state and may be shared.
type Renderer struct {
	dialect *Dialect
	binder  expr.Binder
	values  value.Formatter
}

// NewRenderer returns a renderer for d. binder resolves typed property
// references and may be nil when only raw column names are used.
func NewRenderer(d *Dialect, binder expr.Binder) *Renderer {
	return &Renderer{dialect: d, binder: binder, values: d.Values()}
}

// WithValues returns a copy of r that formats literals with f.
func (r *Renderer) WithValues(f value.Formatter) *Renderer {
	cp := *r
	cp.values = f
	return &cp
}

func (r *Renderer) Dialect() *Dialect       { return r.dialect }
func (r *Renderer) Binder() expr.Binder     { return r.binder }
func (r *Renderer) Values() value.Formatter { return r.values }

// Execute renders the named dialect template.
func (r *Renderer) Execute(name string, f Fragments) (string, error) {
	return r.dialect.Execute(name, f)
}

// Clause renders body through the named template under key, or returns the
// empty string when body is empty.
func (r *Renderer) Clause(name, key, body string) (string, error) {
	if body == "" {
		return "", nil
	}
	return r.Execute(name, Fragments{key: body})
}

// Value formats a literal.
func (r *Renderer) Value(v any) (string, error) {
	return r.values.Format(v)
}

// Column resolves a reference through the binder.
func (r *Renderer) Column(ref expr.Ref) (expr.Column, error) {
	return ref.Resolve(r.binder)
}

// Predicate renders c in scope s. Terms are emitted in chain order; groups
// are parenthesized; nothing is re-associated.
func (r *Renderer) Predicate(s Scope, c expr.Chain) (string, error) {
	if err := c.Err(); err != nil {
		return "", err
	}
	var b strings.Builder
	if err := r.chain(&b, s, c); err != nil {
		return "", err
	}
	return b.String(), nil
}

func (r *Renderer) chain(b *strings.Builder, s Scope, c expr.Chain) error {
	pr := r.dialect.Predicate()
	for _, t := range c.Terms() {
		switch {
		case t.Group != nil:
			b.WriteByte('(')
			if err := r.chain(b, s, *t.Group); err != nil {
				return err
			}
			b.WriteByte(')')
		case t.Cond != nil:
			term, err := r.term(s, t.Cond)
			if err != nil {
				return err
			}
			b.WriteString(term)
		}
		if t.Conn != 0 {
			tok, ok := pr.Connective(t.Conn)
			if !ok {
				return &UnsupportedOperatorError{Dialect: r.dialect.Name(), Op: t.Conn}
			}
			b.WriteByte(' ')
			b.WriteString(tok)
			b.WriteByte(' ')
		}
	}
	return nil
}

func (r *Renderer) term(s Scope, c *expr.Cond) (string, error) {
	pr := r.dialect.Predicate()
	fn, ok := pr.Operator(c.Op)
	if !ok {
		return "", &UnsupportedOperatorError{Dialect: r.dialect.Name(), Op: c.Op}
	}
	col, err := r.Column(c.Col)
	if err != nil {
		return "", err
	}
	ref, err := pr.Reference(s, col)
	if err != nil {
		return "", err
	}
	var val string
	if !c.Op.IsNullCheck() {
		if val, err = r.values.Format(c.Value); err != nil {
			return "", err
		}
	}
	return fn(ref, val), nil
}

// Scoped is a predicate bound to the scope it is evaluated in. Wrap, when
// set, transforms the rendered text into a single atomic condition.
type Scoped struct {
	Scope Scope
	Chain expr.Chain
	Wrap  func(string) string
}

// Conjunction renders each non-empty part and joins them with AND. When more
// than one part is present, parts with several terms are parenthesized so
// that each part keeps its own grouping.
func (r *Renderer) Conjunction(parts ...Scoped) (string, error) {
	var present []Scoped
	for _, p := range parts {
		if err := p.Chain.Err(); err != nil {
			return "", err
		}
		if !p.Chain.IsEmpty() {
			present = append(present, p)
		}
	}
	if len(present) == 0 {
		return "", nil
	}
	and, ok := r.dialect.Predicate().Connective(expr.OpAnd)
	if !ok {
		return "", &UnsupportedOperatorError{Dialect: r.dialect.Name(), Op: expr.OpAnd}
	}
	out := make([]string, 0, len(present))
	for _, p := range present {
		text, err := r.Predicate(p.Scope, p.Chain)
		if err != nil {
			return "", err
		}
		switch {
		case p.Wrap != nil:
			text = p.Wrap(text)
		case len(present) > 1 && p.Chain.Len() > 1:
			text = "(" + text + ")"
		}
		out = append(out, text)
	}
	return strings.Join(out, " "+and+" "), nil
}

// Items renders the column part of sel: the whole-entity marker or each
// column with its alias. An empty selection yields no items.
func (r *Renderer) Items(s Scope, sel expr.Selection) ([]string, error) {
	if err := sel.Err(); err != nil {
		return nil, err
	}
	sr := r.dialect.Selection()
	if alias, ok := sel.Whole(); ok {
		return []string{sr.SelectAll(s, alias)}, nil
	}
	cols, err := r.columns(s, sel)
	if err != nil {
		return nil, err
	}
	out := make([]string, 0, len(cols))
	for _, c := range cols {
		out = append(out, sr.Project(c.ref, c.alias))
	}
	return out, nil
}

// column is a rendered column reference and the name it is projected under.
type column struct {
	ref   string
	alias string
}

func (r *Renderer) columns(s Scope, sel expr.Selection) ([]column, error) {
	sr := r.dialect.Selection()
	items := sel.Items()
	out := make([]column, 0, len(items))
	for _, it := range items {
		col, err := r.Column(it.Col)
		if err != nil {
			return nil, err
		}
		ref, err := sr.Reference(s, col)
		if err != nil {
			return nil, err
		}
		alias := it.Alias
		if alias == "" {
			alias = col.DefaultAlias()
		}
		out = append(out, column{ref: ref, alias: alias})
	}
	return out, nil
}

// Aggregates renders each aggregate projection. Piped dialects read each
// column back under its default alias.
func (r *Renderer) Aggregates(s Scope, aggs []expr.Aggregate) ([]string, error) {
	return r.aggregates(s, aggs, nil)
}

// aggregates renders aggs. inputs, when set, holds the first-stage name each
// aggregate reads its column from.
func (r *Renderer) aggregates(s Scope, aggs []expr.Aggregate, inputs []string) ([]string, error) {
	sr := r.dialect.Selection()
	fr := r.dialect.Function()
	out := make([]string, 0, len(aggs))
	for i, a := range aggs {
		if err := a.Validate(); err != nil {
			return nil, err
		}
		arg := "*"
		if !a.Col.IsZero() {
			col, err := r.Column(a.Col)
			if err != nil {
				return nil, err
			}
			var input string
			if inputs != nil {
				input = inputs[i]
			}
			if arg, err = fr.Argument(a.Source, s, col, input); err != nil {
				return nil, err
			}
		}
		call, ok := fr.Call(a.Func, arg)
		if !ok {
			return nil, &UnsupportedFunctionError{Dialect: r.dialect.Name(), Func: a.Func}
		}
		out = append(out, sr.Project(call, a.Alias))
	}
	return out, nil
}

// Projection is a rendered selection. Return is the column projection and
// Aggregates the rendered aggregate stage when the dialect pipes aggregates.
// Items and Calls hold the unjoined parts of each.
type Projection struct {
	Return     string
	Aggregates string
	Items      []string
	Calls      []string

	refs       map[string]string // rendered reference -> output name
	names      map[string]bool
	aggregated []string
}

func (p *Projection) yield(ref, name string) {
	if p.names == nil {
		p.refs = make(map[string]string)
		p.names = make(map[string]bool)
	}
	if _, ok := p.refs[ref]; ref != "" && !ok {
		p.refs[ref] = name
	}
	p.names[name] = true
}

// feed returns the output name of ref, first adding ref to the items under
// want, or under want prefixed with underscores if another item took it.
func (p *Projection) feed(sr SelectionRenderer, ref, want string) string {
	if name, ok := p.refs[ref]; ok {
		return name
	}
	name := want
	for p.names[name] {
		name = "_" + name
	}
	p.yield(ref, name)
	p.Items = append(p.Items, sr.Project(ref, name))
	return name
}

// Projection renders sel in scope s. An empty selection projects the whole
// entity under defaultAlias. For dialects that pipe aggregates, columns read
// by aggregates are added to the first stage when not already projected.
func (r *Renderer) Projection(s Scope, sel expr.Selection, defaultAlias string) (Projection, error) {
	if err := sel.Err(); err != nil {
		return Projection{}, err
	}
	sr := r.dialect.Selection()
	sep := sr.FieldSeparator()

	var p Projection
	if alias, ok := sel.Whole(); ok {
		p.Items = []string{sr.SelectAll(s, alias)}
		p.yield("", alias)
	}
	cols, err := r.columns(s, sel)
	if err != nil {
		return Projection{}, err
	}
	for _, c := range cols {
		p.Items = append(p.Items, sr.Project(c.ref, c.alias))
		p.yield(c.ref, c.alias)
	}
	aggs := sel.Aggregates()
	if len(p.Items) == 0 && len(aggs) == 0 {
		p.Items = []string{sr.SelectAll(s, defaultAlias)}
		p.yield("", defaultAlias)
	}

	if sr.AggregateStage() != StagePiped || len(aggs) == 0 {
		calls, err := r.aggregates(s, aggs, nil)
		if err != nil {
			return Projection{}, err
		}
		p.Items = append(p.Items, calls...)
		p.Return = strings.Join(p.Items, sep)
		return p, nil
	}

	inputs, err := r.feedAggregates(s, aggs, &p)
	if err != nil {
		return Projection{}, err
	}
	if len(p.Items) == 0 {
		p.Items = []string{sr.SelectAll(s, defaultAlias)}
		p.yield("", defaultAlias)
	}
	if p.Calls, err = r.aggregates(s, aggs, inputs); err != nil {
		return Projection{}, err
	}
	if p.Aggregates, err = r.Execute("aggregate_stage", Fragments{"aggregates": strings.Join(p.Calls, sep)}); err != nil {
		return Projection{}, err
	}
	for _, a := range aggs {
		p.aggregated = append(p.aggregated, a.Alias)
	}
	p.Return = strings.Join(p.Items, sep)
	return p, nil
}

// Aliases returns the output names of the column part of sel, in order. An
// empty selection is the whole entity under defaultAlias.
func (r *Renderer) Aliases(sel expr.Selection, defaultAlias string) ([]string, error) {
	if alias, ok := sel.Whole(); ok {
		return []string{alias}, nil
	}
	items := sel.Items()
	if len(items) == 0 && len(sel.Aggregates()) == 0 {
		return []string{defaultAlias}, nil
	}
	out := make([]string, 0, len(items))
	for _, it := range items {
		if it.Alias != "" {
			out = append(out, it.Alias)
			continue
		}
		col, err := r.Column(it.Col)
		if err != nil {
			return nil, err
		}
		out = append(out, col.DefaultAlias())
	}
	return out, nil
}

// feedAggregates adds the columns read by aggs to the first stage of p and
// returns the name each aggregate reads. A column read from a named source
// is fed as <source>_<column>; the source must be the binding of s.
func (r *Renderer) feedAggregates(s Scope, aggs []expr.Aggregate, p *Projection) ([]string, error) {
	sr := r.dialect.Selection()
	inputs := make([]string, len(aggs))
	for i, a := range aggs {
		if err := a.Validate(); err != nil {
			return nil, err
		}
		if a.Col.IsZero() {
			continue
		}
		col, err := r.Column(a.Col)
		if err != nil {
			return nil, err
		}
		want := col.DefaultAlias()
		if a.Source != "" {
			if a.Source != s.Binding {
				return nil, &ReferenceError{
					Dialect: r.dialect.Name(),
					Scope:   s.Kind,
					Column:  col.Name,
					Reason:  "aggregate source " + strconv.Quote(a.Source) + " is not bound here",
				}
			}
			want = a.Source + "_" + want
		}
		ref, err := sr.Reference(s, col)
		if err != nil {
			return nil, err
		}
		inputs[i] = p.feed(sr, ref, want)
	}
	return inputs, nil
}

// Order renders ordering keys joined by the field separator. Piped dialects
// read each key under its default alias; use Ordering when the projection is
// known.
func (r *Renderer) Order(s Scope, keys []expr.Order) (string, error) {
	return r.order(s, keys, nil)
}

// Ordering renders ordering keys for a statement projecting p. In a dialect
// that pipes, keys read the output of the stage before them: a column p does
// not yield is added to p's items, and after an aggregate stage a key must
// name an aggregate alias.
func (r *Renderer) Ordering(s Scope, keys []expr.Order, p *Projection) (string, error) {
	n := len(p.Items)
	out, err := r.order(s, keys, p)
	if err != nil {
		return "", err
	}
	if len(p.Items) != n {
		p.Return = strings.Join(p.Items, r.dialect.Selection().FieldSeparator())
	}
	return out, nil
}

func (r *Renderer) order(s Scope, keys []expr.Order, p *Projection) (string, error) {
	if len(keys) == 0 {
		return "", nil
	}
	sr := r.dialect.Selection()
	piped := p != nil && sr.AggregateStage() == StagePiped
	out := make([]string, 0, len(keys))
	for _, k := range keys {
		col, err := r.Column(k.Col)
		if err != nil {
			return "", err
		}
		output := col.DefaultAlias()
		switch {
		case !piped:
		case len(p.Calls) > 0:
			if !slices.Contains(p.aggregated, output) {
				return "", &ReferenceError{
					Dialect: r.dialect.Name(),
					Scope:   s.Kind,
					Column:  col.Name,
					Reason:  "ordering after an aggregate stage must name an aggregate alias",
				}
			}
		default:
			ref, err := sr.Reference(s, col)
			if err != nil {
				return "", err
			}
			output = p.feed(sr, ref, output)
		}
		ref, err := sr.OrderReference(s, col, output)
		if err != nil {
			return "", err
		}
		if k.Desc {
			ref += " DESC"
		}
		out = append(out, ref)
	}
	return strings.Join(out, sr.FieldSeparator()), nil
}

// OrderClause renders keys through the "order" template.
func (r *Renderer) OrderClause(s Scope, keys []expr.Order) (string, error) {
	body, err := r.Order(s, keys)
	if err != nil {
		return "", err
	}
	return r.Clause("order", "keys", body)
}

// Page renders p through the "page" template, or the empty string for nil.
func (r *Renderer) Page(p *expr.Page) (string, error) {
	if p == nil {
		return "", nil
	}
	if err := p.Validate(); err != nil {
		return "", err
	}
	return r.Execute("page", Fragments{
		"skip":  strconv.Itoa(p.Skip),
		"limit": strconv.Itoa(p.Limit),
	})
}

// Traversal renders a traversal plan with the dialect's traversal renderer.
func (r *Renderer) Traversal(p traversal.Planner) (string, error) {
	plan, err := p.Plan()
	if err != nil {
		return "", err
	}
	return r.dialect.Traversal().RenderTraversal(r, plan)
}
