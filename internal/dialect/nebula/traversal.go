package nebula

import (
	"strconv"
	"strings"

	"github.com/roach88/graphq/internal/dialect"
	"github.com/roach88/graphq/internal/expr"
	"github.com/roach88/graphq/internal/traversal"
)

// vidColumn carries destination ids from one GO stage to the next.
const vidColumn = "_vid"

// traversalRenderer renders each hop as a GO stage joined by pipes. Every
// stage except the last also yields the destination id, which the next
// stage starts from; columns projected by earlier stages are carried forward
// through $-. Ordering keys and aggregates read the stage's own yields.
type traversalRenderer struct{}

func (traversalRenderer) RenderTraversal(r *dialect.Renderer, p traversal.Plan) (string, error) {
	sr := r.Dialect().Selection()
	n := len(p.Hops)

	ids := make([]string, len(p.Start))
	for i, id := range p.Start {
		v, err := r.Value(id)
		if err != nil {
			return "", err
		}
		ids[i] = v
	}

	var (
		stages    []string
		carried   []string
		projected bool
	)
	for i, h := range p.Hops {
		last := i == n-1

		var yields []string
		if !last {
			yields = append(yields, "dst(edge) AS "+vidColumn)
		}
		for _, a := range carried {
			yields = append(yields, "$-."+quote(a)+" AS "+quote(a))
		}

		var (
			preds []dialect.Scoped
			calls []string
			keys  []string
			page  *expr.Page
		)
		for _, ss := range h.Subs() {
			scope := subScope(h, ss)
			sub := ss.Sub
			preds = append(preds, dialect.Scoped{Scope: scope, Chain: sub.Predicate})
			var proj dialect.Projection
			if sub.Projects() {
				projected = true
				var err error
				if proj, err = r.Projection(scope, sub.Selection, sub.Alias); err != nil {
					return "", err
				}
				if len(proj.Calls) > 0 && !last {
					return "", &traversal.InvalidTraversalError{Step: i, Reason: "aggregates are only supported on the last step"}
				}
				aliases, err := r.Aliases(sub.Selection, sub.Alias)
				if err != nil {
					return "", err
				}
				carried = append(carried, aliases...)
			}
			// Ordering columns not projected are yielded by this stage only.
			order, err := r.Ordering(scope, sub.Ordering, &proj)
			if err != nil {
				return "", err
			}
			yields = append(yields, proj.Items...)
			calls = append(calls, proj.Calls...)
			if order != "" {
				keys = append(keys, order)
			}
			if sub.Pagination != nil {
				page = sub.Pagination
			}
		}
		if last && !projected {
			yields = append(yields, sr.SelectAll(dialect.Scope{Kind: dialect.Destination}, sr.DefaultAlias(dialect.Destination)))
		}

		from := strings.Join(ids, ", ")
		if i > 0 {
			from = "$-." + vidColumn
		}
		stage, err := step(r, h.Step, from, yields, preds, calls, keys, page)
		if err != nil {
			return "", err
		}
		stages = append(stages, stage)
	}

	frags := dialect.Fragments{}
	if n > 0 {
		frags["steps"] = strings.Join(stages, " | ")
	}
	pg, err := r.Page(p.Page)
	if err != nil {
		return "", err
	}
	frags["page"] = pg
	return r.Execute("traversal", frags)
}

func step(r *dialect.Renderer, s traversal.Step, from string, yields []string, preds []dialect.Scoped, calls, keys []string, page *expr.Page) (string, error) {
	sep := r.Dialect().Selection().FieldSeparator()

	where, err := r.Conjunction(preds...)
	if err != nil {
		return "", err
	}
	if where, err = r.Clause("where", "predicate", where); err != nil {
		return "", err
	}
	agg, err := r.Clause("aggregate_stage", "aggregates", strings.Join(calls, sep))
	if err != nil {
		return "", err
	}
	order, err := r.Clause("order", "keys", strings.Join(keys, sep))
	if err != nil {
		return "", err
	}
	pg, err := r.Page(page)
	if err != nil {
		return "", err
	}

	return r.Execute("step", dialect.Fragments{
		"step_range": stepRange(s),
		"from":       from,
		"edge_types": edgeTypes(s.EdgeTypes),
		"direction":  direction(s.Direction),
		"where":      where,
		"yield":      strings.Join(yields, sep),
		"aggregate":  agg,
		"order":      order,
		"page":       pg,
	})
}

func stepRange(s traversal.Step) string {
	if s.Fixed() {
		return strconv.Itoa(s.To) + " STEPS"
	}
	return strconv.Itoa(s.From) + " TO " + strconv.Itoa(s.To) + " STEPS"
}

func edgeTypes(types []string) string {
	if len(types) == 0 {
		return "*"
	}
	quoted := make([]string, len(types))
	for i, t := range types {
		quoted[i] = quote(t)
	}
	return strings.Join(quoted, ",")
}

func direction(d traversal.Direction) string {
	switch d {
	case traversal.In:
		return " REVERSELY"
	case traversal.Both:
		return " BIDIRECT"
	}
	return ""
}

// subScope binds a sub-query's scope to its alias.
func subScope(h traversal.HopQuery, ss traversal.ScopedSub) dialect.Scope {
	label, alias := ss.Sub.Label, ss.Sub.Alias
	switch ss.Scope {
	case traversal.SourceVertex:
		return dialect.Scope{Kind: dialect.Source, Binding: alias, Label: label}
	case traversal.EdgeScope:
		if label == "" && len(h.Step.EdgeTypes) == 1 {
			label = h.Step.EdgeTypes[0]
		}
		return dialect.Scope{Kind: dialect.Edge, Binding: alias, Label: label}
	}
	return dialect.Scope{Kind: dialect.Destination, Binding: alias, Label: label}
}
