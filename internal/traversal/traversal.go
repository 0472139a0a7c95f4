// Package traversal describes multi-hop graph traversals: a start set of
// vertex ids followed by an ordered list of steps, each with a direction, an
// inclusive hop range and an optional edge-type filter. Every step may carry
// sub-queries scoped to its destination vertex, its source vertex or the edge
// itself.
//
// A Graph is built by a single caller and then rendered by a dialect. The
// only terminal transition is Paginate, which returns a Paged value that has
// no step methods.
package traversal

import (
	"fmt"
	"strings"

	"github.com/roach88/graphq/internal/expr"
)

// Direction is the edge direction followed by a step.
type Direction int

const (
	Out Direction = iota + 1
	In
	Both
)

func (d Direction) String() string {
	switch d {
	case Out:
		return "OUT"
	case In:
		return "IN"
	case Both:
		return "BOTH"
	}
	return fmt.Sprintf("Direction(%d)", int(d))
}

// ParseDirection parses OUT, IN or BOTH, case-insensitively.
func ParseDirection(s string) (Direction, error) {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "OUT", "":
		return Out, nil
	case "IN":
		return In, nil
	case "BOTH":
		return Both, nil
	}
	return 0, &InvalidTraversalError{Step: -1, Reason: fmt.Sprintf("unknown direction %q", s)}
}

// InvalidTraversalError reports a malformed step or graph.
type InvalidTraversalError struct {
	Step   int // index of the offending step, -1 when not step-specific
	Reason string
}

func (e *InvalidTraversalError) Error() string {
	if e.Step >= 0 {
		return fmt.Sprintf("invalid traversal: step %d: %s", e.Step, e.Reason)
	}
	return "invalid traversal: " + e.Reason
}

// Step is one hop specification. The hop range From..To is inclusive.
type Step struct {
	Direction Direction
	From, To  int
	EdgeTypes []string // empty means every edge type
}

// NewStep validates and returns a step.
func NewStep(dir Direction, from, to int, edgeTypes ...string) (Step, error) {
	s := Step{Direction: dir, From: from, To: to, EdgeTypes: append([]string(nil), edgeTypes...)}
	if err := s.Validate(); err != nil {
		return Step{}, err
	}
	return s, nil
}

// Hop returns a single-hop step.
func Hop(dir Direction, edgeTypes ...string) (Step, error) {
	return NewStep(dir, 1, 1, edgeTypes...)
}

// Validate checks the direction, the hop range and the edge-type entries.
func (s Step) Validate() error {
	switch {
	case s.Direction < Out || s.Direction > Both:
		return &InvalidTraversalError{Step: -1, Reason: "unknown direction " + s.Direction.String()}
	case s.From < 0 || s.To < 0:
		return &InvalidTraversalError{Step: -1, Reason: fmt.Sprintf("negative hop count %d..%d", s.From, s.To)}
	case s.To < s.From:
		return &InvalidTraversalError{Step: -1, Reason: fmt.Sprintf("hop range %d..%d ends before it starts", s.From, s.To)}
	}
	for i, et := range s.EdgeTypes {
		if strings.TrimSpace(et) == "" {
			return &InvalidTraversalError{Step: -1, Reason: fmt.Sprintf("edge type %d is empty", i)}
		}
	}
	return nil
}

// Fixed reports whether the step covers exactly one hop count.
func (s Step) Fixed() bool {
	return s.From == s.To
}

// Scope says which part of a step a sub-query applies to.
type Scope int

const (
	DestinationVertex Scope = iota + 1
	SourceVertex
	EdgeScope
)

// Sub is a sub-query attached to one hop.
type Sub struct {
	Alias      string
	Label      string
	Predicate  expr.Chain
	Selection  expr.Selection
	Ordering   []expr.Order
	Pagination *expr.Page

	none bool
	err  error
}

// Where AND-combines c with the existing predicate.
func (s *Sub) Where(c expr.Chain) *Sub {
	s.Predicate = s.Predicate.And(c)
	return s
}

// Select appends to the projection.
func (s *Sub) Select(sel expr.Selection) *Sub {
	s.Selection = s.Selection.Also(sel)
	s.none = false
	return s
}

// AllSelect forces whole-entity projection, discarding prior selections.
func (s *Sub) AllSelect() *Sub {
	s.Selection = expr.All(s.Alias)
	s.none = false
	return s
}

// NoneSelect forces an empty projection: the sub-query filters but projects
// nothing.
func (s *Sub) NoneSelect() *Sub {
	s.Selection = expr.Nothing()
	s.none = true
	return s
}

// Projects reports whether the sub-query contributes to the projection.
func (s *Sub) Projects() bool {
	return !s.none
}

// OrderBy appends ordering keys.
func (s *Sub) OrderBy(keys ...expr.Order) *Sub {
	s.Ordering = append(s.Ordering, keys...)
	return s
}

// Page sets the per-hop pagination. It may be called once.
func (s *Sub) Page(skip, limit int) *Sub {
	if s.Pagination != nil {
		s.err = &InvalidTraversalError{Step: -1, Reason: "sub-query " + s.Alias + " paginated twice"}
		return s
	}
	p := expr.Page{Skip: skip, Limit: limit}
	if err := p.Validate(); err != nil {
		s.err = err
	}
	s.Pagination = &p
	return s
}

// Err returns the first error recorded on the sub-query or its parts.
func (s *Sub) Err() error {
	if s.err != nil {
		return s.err
	}
	if err := s.Predicate.Err(); err != nil {
		return err
	}
	return s.Selection.Err()
}

// HopQuery is one appended step with its sub-queries.
type HopQuery struct {
	Step Step
	Dst  *Sub
	Src  *Sub
	Rel  *Sub
}

// OutV attaches a sub-query scoped to the destination vertex of the hop. A
// blank alias defaults to "dst"; InV and Edge default to "src" and "edge".
func (h *HopQuery) OutV(alias, label string, configure func(*Sub)) *HopQuery {
	h.Dst = newSub(alias, "dst", label, configure)
	return h
}

// InV attaches a sub-query scoped to the source vertex of the hop.
func (h *HopQuery) InV(alias, label string, configure func(*Sub)) *HopQuery {
	h.Src = newSub(alias, "src", label, configure)
	return h
}

// Edge attaches a sub-query scoped to the edge of the hop.
func (h *HopQuery) Edge(alias, label string, configure func(*Sub)) *HopQuery {
	h.Rel = newSub(alias, "edge", label, configure)
	return h
}

// Subs returns the attached sub-queries in scope order: edge, source,
// destination. Absent scopes are skipped.
func (h *HopQuery) Subs() []ScopedSub {
	var out []ScopedSub
	if h.Rel != nil {
		out = append(out, ScopedSub{Scope: EdgeScope, Sub: h.Rel})
	}
	if h.Src != nil {
		out = append(out, ScopedSub{Scope: SourceVertex, Sub: h.Src})
	}
	if h.Dst != nil {
		out = append(out, ScopedSub{Scope: DestinationVertex, Sub: h.Dst})
	}
	return out
}

// ScopedSub pairs a sub-query with the part of the hop it applies to.
type ScopedSub struct {
	Scope Scope
	Sub   *Sub
}

func newSub(alias, fallback, label string, configure func(*Sub)) *Sub {
	if strings.TrimSpace(alias) == "" {
		alias = fallback
	}
	s := &Sub{Alias: alias, Label: label}
	if configure != nil {
		configure(s)
	}
	return s
}

// Graph is a traversal under construction.
type Graph struct {
	start []any
	hops  []*HopQuery
	err   error
}

// From starts a traversal at the vertices with the given ids.
func From(ids ...any) *Graph {
	return &Graph{start: append([]any(nil), ids...)}
}

// Step appends s and applies configure to the new hop.
func (g *Graph) Step(s Step, configure ...func(*HopQuery)) *Graph {
	if err := s.Validate(); err != nil {
		g.record(err, len(g.hops))
	}
	h := &HopQuery{Step: s}
	for _, fn := range configure {
		fn(h)
	}
	g.hops = append(g.hops, h)
	return g
}

// AddStep builds a step from its parts and appends it. A construction error
// is kept on the graph and reported by Plan.
func (g *Graph) AddStep(dir Direction, from, to int, edgeTypes []string, configure ...func(*HopQuery)) *Graph {
	s := Step{Direction: dir, From: from, To: to, EdgeTypes: append([]string(nil), edgeTypes...)}
	return g.Step(s, configure...)
}

func (g *Graph) record(err error, step int) {
	if g.err != nil {
		return
	}
	if te, ok := err.(*InvalidTraversalError); ok {
		cp := *te
		cp.Step = step
		err = &cp
	}
	g.err = err
}

// Paginate ends the traversal with a final skip/limit.
func (g *Graph) Paginate(skip, limit int) Paged {
	p := expr.Page{Skip: skip, Limit: limit}
	return Paged{graph: g, page: p}
}

// Plan returns a read-only snapshot for rendering.
func (g *Graph) Plan() (Plan, error) {
	return g.plan(nil)
}

func (g *Graph) plan(page *expr.Page) (Plan, error) {
	if g.err != nil {
		return Plan{}, g.err
	}
	if len(g.start) == 0 {
		return Plan{}, &InvalidTraversalError{Step: -1, Reason: "no start vertices"}
	}
	if page != nil {
		if err := page.Validate(); err != nil {
			return Plan{}, err
		}
	}
	for i, h := range g.hops {
		paged := 0
		for _, ss := range h.Subs() {
			if err := ss.Sub.Err(); err != nil {
				return Plan{}, fmt.Errorf("step %d: %w", i, err)
			}
			if ss.Sub.Pagination != nil {
				paged++
			}
		}
		if paged > 1 {
			return Plan{}, &InvalidTraversalError{Step: i, Reason: "more than one sub-query is paginated"}
		}
	}
	hops := make([]HopQuery, len(g.hops))
	for i, h := range g.hops {
		hops[i] = *h
	}
	return Plan{Start: append([]any(nil), g.start...), Hops: hops, Page: page}, nil
}

// Paged is a traversal with its terminal pagination applied.
type Paged struct {
	graph *Graph
	page  expr.Page
}

// Plan returns a read-only snapshot for rendering.
func (p Paged) Plan() (Plan, error) {
	if p.graph == nil {
		return Plan{}, &InvalidTraversalError{Step: -1, Reason: "no graph"}
	}
	page := p.page
	return p.graph.plan(&page)
}

// Plan is the rendered form of a traversal: start ids, hops and the optional
// final page.
type Plan struct {
	Start []any
	Hops  []HopQuery
	Page  *expr.Page
}

// Planner is implemented by *Graph and Paged.
type Planner interface {
	Plan() (Plan, error)
}

var (
	_ Planner = (*Graph)(nil)
	_ Planner = Paged{}
)
