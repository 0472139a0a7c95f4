package cypher

import (
	"strconv"
	"strings"

	"github.com/roach88/graphq/internal/dialect"
	"github.com/roach88/graphq/internal/expr"
	"github.com/roach88/graphq/internal/traversal"
)

// traversalRenderer renders a traversal as one MATCH path. Vertices are bound
// to v0..vn and edges to e1..en. A hop with its own ordering or page closes
// the current MATCH with a WITH clause and the path continues from its
// destination vertex in a new MATCH.
type traversalRenderer struct{}

func vertexVar(i int) string { return "v" + strconv.Itoa(i) }
func edgeVar(i int) string   { return "e" + strconv.Itoa(i+1) }

func (traversalRenderer) RenderTraversal(r *dialect.Renderer, p traversal.Plan) (string, error) {
	n := len(p.Hops)
	labels := nodeLabels(p)

	var (
		segments []string
		returns  []string
		vars     = []string{vertexVar(0)}
		preds    = []dialect.Scoped{{
			Scope: dialect.Scope{Kind: dialect.Vertex, Binding: vertexVar(0)},
			Chain: expr.In(expr.ColumnID, p.Start),
		}}
		finalOrder string
		finalPage  *expr.Page
	)

	pattern, err := node(r, vertexVar(0), labels[0])
	if err != nil {
		return "", err
	}
	pending := 0

	for i, h := range p.Hops {
		step, err := stepPattern(r, i, h, labels[i+1])
		if err != nil {
			return "", err
		}
		pattern += step
		pending++
		vars = append(vars, edgeVar(i), vertexVar(i+1))

		var keys []string
		var page *expr.Page
		for _, ss := range h.Subs() {
			scope := subScope(i, h, ss)
			sub := ss.Sub
			if !sub.Predicate.IsEmpty() {
				preds = append(preds, subPredicate(scope, sub.Predicate))
			}
			if sub.Projects() {
				proj, err := r.Projection(scope, sub.Selection, sub.Alias)
				if err != nil {
					return "", err
				}
				returns = append(returns, proj.Return)
			}
			order, err := r.Order(scope, sub.Ordering)
			if err != nil {
				return "", err
			}
			if order != "" {
				keys = append(keys, order)
			}
			if sub.Pagination != nil {
				page = sub.Pagination
			}
		}
		order := strings.Join(keys, ", ")

		last := i == n-1
		if last && (page == nil || p.Page == nil) {
			finalOrder, finalPage = order, page
			break
		}
		if order == "" && page == nil {
			continue
		}

		seg, err := segment(r, pattern, preds)
		if err != nil {
			return "", err
		}
		with, err := withClause(r, vars, order, page)
		if err != nil {
			return "", err
		}
		segments = append(segments, seg, with)
		pattern, err = node(r, vertexVar(i+1), "")
		if err != nil {
			return "", err
		}
		preds, pending = nil, 0
	}

	frags := dialect.Fragments{}
	if n > 0 {
		if pending > 0 {
			seg, err := segment(r, pattern, preds)
			if err != nil {
				return "", err
			}
			segments = append(segments, seg)
		}
		frags["steps"] = strings.Join(segments, " ")
	}

	if len(returns) == 0 {
		returns = []string{vertexVar(n)}
	}
	frags["return"] = strings.Join(returns, ", ")

	if frags["order"], err = r.Clause("order", "keys", finalOrder); err != nil {
		return "", err
	}
	page := p.Page
	if page == nil {
		page = finalPage
	}
	if frags["page"], err = r.Page(page); err != nil {
		return "", err
	}
	return r.Execute("traversal", frags)
}

// nodeLabels returns the label of each vertex on the path, taken from the
// destination sub-query of the hop entering it or the source sub-query of
// the hop leaving it.
func nodeLabels(p traversal.Plan) []string {
	labels := make([]string, len(p.Hops)+1)
	for i, h := range p.Hops {
		if h.Src != nil && h.Src.Label != "" && labels[i] == "" {
			labels[i] = h.Src.Label
		}
		if h.Dst != nil && h.Dst.Label != "" {
			labels[i+1] = h.Dst.Label
		}
	}
	return labels
}

func node(r *dialect.Renderer, binding, label string) (string, error) {
	f := dialect.Fragments{"binding": binding}
	if label != "" {
		l, err := r.Execute("label", dialect.Fragments{"name": quote(label)})
		if err != nil {
			return "", err
		}
		f["label"] = l
	}
	return r.Execute("node", f)
}

func stepPattern(r *dialect.Renderer, i int, h traversal.HopQuery, label string) (string, error) {
	dst, err := node(r, vertexVar(i+1), label)
	if err != nil {
		return "", err
	}
	types := h.Step.EdgeTypes
	if len(types) == 0 && h.Rel != nil && h.Rel.Label != "" {
		types = []string{h.Rel.Label}
	}
	edgeTypes := ""
	if len(types) > 0 {
		quoted := make([]string, len(types))
		for j, t := range types {
			quoted[j] = quote(t)
		}
		edgeTypes = ":" + strings.Join(quoted, "|")
	}

	name := "step_out"
	switch h.Step.Direction {
	case traversal.In:
		name = "step_in"
	case traversal.Both:
		name = "step_both"
	}
	return r.Execute(name, dialect.Fragments{
		"binding":    edgeVar(i),
		"edge_types": edgeTypes,
		"step_range": hopRange(h.Step),
		"node":       dst,
	})
}

func hopRange(s traversal.Step) string {
	switch {
	case s.From == 1 && s.To == 1:
		return ""
	case s.Fixed():
		return "*" + strconv.Itoa(s.From)
	}
	return "*" + strconv.Itoa(s.From) + ".." + strconv.Itoa(s.To)
}

func multi(s traversal.Step) bool {
	return !(s.From == 1 && s.To == 1)
}

func subScope(i int, h traversal.HopQuery, ss traversal.ScopedSub) dialect.Scope {
	switch ss.Scope {
	case traversal.SourceVertex:
		return dialect.Scope{Kind: dialect.Source, Binding: vertexVar(i), Label: ss.Sub.Label}
	case traversal.EdgeScope:
		return dialect.Scope{Kind: dialect.Edge, Binding: edgeVar(i), Label: ss.Sub.Label, Multi: multi(h.Step)}
	}
	return dialect.Scope{Kind: dialect.Destination, Binding: vertexVar(i + 1), Label: ss.Sub.Label}
}

// subPredicate scopes a sub-query predicate. Conditions on a variable-length
// edge must hold for every edge of the path.
func subPredicate(s dialect.Scope, c expr.Chain) dialect.Scoped {
	if !s.Multi {
		return dialect.Scoped{Scope: s, Chain: c}
	}
	list := s.Binding
	s.Binding, s.Multi = "r", false
	return dialect.Scoped{
		Scope: s,
		Chain: c,
		Wrap:  func(text string) string { return "ALL(r IN " + list + " WHERE " + text + ")" },
	}
}

func segment(r *dialect.Renderer, pattern string, preds []dialect.Scoped) (string, error) {
	where, err := r.Conjunction(preds...)
	if err != nil {
		return "", err
	}
	if where, err = r.Clause("where", "predicate", where); err != nil {
		return "", err
	}
	return r.Execute("segment", dialect.Fragments{"pattern": pattern, "where": where})
}

func withClause(r *dialect.Renderer, vars []string, order string, page *expr.Page) (string, error) {
	o, err := r.Clause("order", "keys", order)
	if err != nil {
		return "", err
	}
	pg, err := r.Page(page)
	if err != nil {
		return "", err
	}
	return r.Execute("with", dialect.Fragments{"vars": strings.Join(vars, ", "), "order": o, "page": pg})
}
