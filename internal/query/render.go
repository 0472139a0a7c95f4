package query

import (
	"fmt"
	"strings"

	"github.com/roach88/graphq/internal/dialect"
	"github.com/roach88/graphq/internal/expr"
	"github.com/roach88/graphq/internal/traversal"
	"github.com/roach88/graphq/internal/value"
)

// Config selects the dialect a statement is rendered for.
type Config struct {
	Dialect  string
	Version  string
	Binder   expr.Binder
	Values   value.Formatter   // overrides the dialect's literal formatter
	Registry *dialect.Registry // dialect.Default when nil
}

// Renderer resolves the configured dialect and returns a renderer for it.
func (c Config) Renderer() (*dialect.Renderer, error) {
	reg := c.Registry
	if reg == nil {
		reg = dialect.Default
	}
	d, err := reg.Lookup(c.Dialect, c.Version)
	if err != nil {
		return nil, err
	}
	r := dialect.NewRenderer(d, c.Binder)
	if c.Values != nil {
		r = r.WithValues(c.Values)
	}
	return r, nil
}

// Render renders stmt for the dialect selected by cfg. stmt is a
// *VertexQuery, *EdgeQuery, *traversal.Graph or traversal.Paged. An unknown
// dialect fails with dialect.UnknownDialectError.
func Render(stmt any, cfg Config) (string, error) {
	r, err := cfg.Renderer()
	if err != nil {
		return "", err
	}
	return RenderWith(r, stmt)
}

// RenderWith renders stmt with an already resolved renderer.
func RenderWith(r *dialect.Renderer, stmt any) (string, error) {
	switch s := stmt.(type) {
	case *VertexQuery:
		return renderVertex(r, s)
	case *EdgeQuery:
		return renderEdge(r, s)
	case traversal.Planner:
		return r.Traversal(s)
	case nil:
		return "", fmt.Errorf("render: nil statement")
	default:
		return "", fmt.Errorf("render: unsupported statement type %T", stmt)
	}
}

func renderVertex(r *dialect.Renderer, q *VertexQuery) (string, error) {
	label, err := resolveLabel(r, &q.fetch)
	if err != nil {
		return "", err
	}
	scope := dialect.Scope{Kind: dialect.Vertex, Label: label}
	if len(q.ids) == 0 {
		return renderFetch(r, "vertex_query", scope, &q.fetch, expr.Chain{}, nil)
	}
	if q.where.IsEmpty() && r.Dialect().HasTemplate("vertex_ids_query") {
		ids, err := idList(r, q.ids)
		if err != nil {
			return "", err
		}
		return renderFetch(r, "vertex_ids_query", scope, &q.fetch, expr.Chain{}, dialect.Fragments{"ids": ids})
	}
	return renderFetch(r, "vertex_query", scope, &q.fetch, expr.In(expr.ColumnID, q.ids), nil)
}

// idList renders vertex ids for a dialect that fetches by id directly.
func idList(r *dialect.Renderer, ids []any) (string, error) {
	out := make([]string, len(ids))
	for i, id := range ids {
		v, err := r.Value(id)
		if err != nil {
			return "", err
		}
		out[i] = v
	}
	return strings.Join(out, ", "), nil
}

func renderEdge(r *dialect.Renderer, q *EdgeQuery) (string, error) {
	label, err := resolveLabel(r, &q.fetch)
	if err != nil {
		return "", err
	}
	return renderFetch(r, "edge_query", dialect.Scope{Kind: dialect.Edge, Label: label}, &q.fetch, expr.Chain{}, nil)
}

func resolveLabel(r *dialect.Renderer, f *fetch) (string, error) {
	if f.labelType == nil {
		return f.label, nil
	}
	if r.Binder() == nil {
		return "", &expr.BindingError{Property: f.labelType.String(), Reason: "no binder configured"}
	}
	return r.Binder().ResolveLabel(f.labelType)
}

// renderFetch renders f through template. extra fragments are passed to the
// template as they are.
func renderFetch(r *dialect.Renderer, template string, scope dialect.Scope, f *fetch, ids expr.Chain, extra dialect.Fragments) (string, error) {
	sr := r.Dialect().Selection()
	alias := f.alias
	if alias == "" {
		alias = sr.DefaultAlias(scope.Kind)
	}
	scope.Binding = alias

	frags := dialect.Fragments{"binding": alias}
	for k, v := range extra {
		frags[k] = v
	}
	if scope.Label != "" {
		l, err := r.Execute("label", dialect.Fragments{"name": scope.Label})
		if err != nil {
			return "", err
		}
		frags["label"] = l
	}

	where, err := r.Conjunction(
		dialect.Scoped{Scope: scope, Chain: ids},
		dialect.Scoped{Scope: scope, Chain: f.where},
	)
	if err != nil {
		return "", err
	}
	if frags["where"], err = r.Clause("where", "predicate", where); err != nil {
		return "", err
	}

	proj, err := r.Projection(scope, f.selection, alias)
	if err != nil {
		return "", err
	}
	order, err := r.Ordering(scope, f.order, &proj)
	if err != nil {
		return "", err
	}
	if frags["order"], err = r.Clause("order", "keys", order); err != nil {
		return "", err
	}
	frags["return"] = proj.Return
	frags["aggregate"] = proj.Aggregates
	if frags["page"], err = r.Page(f.page); err != nil {
		return "", err
	}
	return r.Execute(template, frags)
}
