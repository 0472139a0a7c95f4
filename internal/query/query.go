// Package query builds vertex and edge fetch statements and renders any
// statement, including traversals, for a configured dialect.
//
//	q := query.Vertex("player").
//		Where(expr.GT("age", 30)).
//		Select(expr.Select("name")).
//		OrderBy(expr.Desc("age")).
//		Page(0, 10)
//
//	text, err := query.Render(q, query.Config{Dialect: "nebula"})
//
// Render is pure: it performs no I/O and returns either the full statement
// or an error, never partial text.
package query

import (
	"reflect"

	"github.com/roach88/graphq/internal/expr"
)

type fetch struct {
	label     string
	labelType reflect.Type
	alias     string
	where     expr.Chain
	selection expr.Selection
	order     []expr.Order
	page      *expr.Page
}

func (f *fetch) setPage(skip, limit int) {
	f.page = &expr.Page{Skip: skip, Limit: limit}
}

// VertexQuery fetches vertices of one label.
type VertexQuery struct {
	fetch
	ids []any
}

// Vertex starts a vertex query on label. An empty label matches any vertex
// in dialects that allow it.
func Vertex(label string) *VertexQuery {
	return &VertexQuery{fetch: fetch{label: label}}
}

// VertexOf starts a vertex query on the label bound to T.
func VertexOf[T any]() *VertexQuery {
	return &VertexQuery{fetch: fetch{labelType: reflect.TypeFor[T]()}}
}

// As names the statement variable and whole-entity alias.
func (q *VertexQuery) As(alias string) *VertexQuery {
	q.alias = alias
	return q
}

// IDs restricts the query to vertices with the given ids.
func (q *VertexQuery) IDs(ids ...any) *VertexQuery {
	q.ids = append(q.ids, ids...)
	return q
}

// Where AND-combines c with the existing predicate.
func (q *VertexQuery) Where(c expr.Chain) *VertexQuery {
	q.where = q.where.And(c)
	return q
}

// Select appends to the projection.
func (q *VertexQuery) Select(sel expr.Selection) *VertexQuery {
	q.selection = q.selection.Also(sel)
	return q
}

// Aggregate appends aggregate projections.
func (q *VertexQuery) Aggregate(aggs ...expr.Aggregate) *VertexQuery {
	q.selection = q.selection.Aggregate(aggs...)
	return q
}

// OrderBy appends ordering keys.
func (q *VertexQuery) OrderBy(keys ...expr.Order) *VertexQuery {
	q.order = append(q.order, keys...)
	return q
}

// Page sets skip and limit, replacing an earlier page.
func (q *VertexQuery) Page(skip, limit int) *VertexQuery {
	q.setPage(skip, limit)
	return q
}

// EdgeQuery fetches edges of one type.
type EdgeQuery struct {
	fetch
}

// Edge starts an edge query on the edge type label.
func Edge(label string) *EdgeQuery {
	return &EdgeQuery{fetch: fetch{label: label}}
}

// EdgeOf starts an edge query on the label bound to T.
func EdgeOf[T any]() *EdgeQuery {
	return &EdgeQuery{fetch: fetch{labelType: reflect.TypeFor[T]()}}
}

// As names the statement variable and whole-entity alias.
func (q *EdgeQuery) As(alias string) *EdgeQuery {
	q.alias = alias
	return q
}

// Where AND-combines c with the existing predicate.
func (q *EdgeQuery) Where(c expr.Chain) *EdgeQuery {
	q.where = q.where.And(c)
	return q
}

// Select appends to the projection.
func (q *EdgeQuery) Select(sel expr.Selection) *EdgeQuery {
	q.selection = q.selection.Also(sel)
	return q
}

// Aggregate appends aggregate projections.
func (q *EdgeQuery) Aggregate(aggs ...expr.Aggregate) *EdgeQuery {
	q.selection = q.selection.Aggregate(aggs...)
	return q
}

// OrderBy appends ordering keys.
func (q *EdgeQuery) OrderBy(keys ...expr.Order) *EdgeQuery {
	q.order = append(q.order, keys...)
	return q
}

// Page sets skip and limit, replacing an earlier page.
func (q *EdgeQuery) Page(skip, limit int) *EdgeQuery {
	q.setPage(skip, limit)
	return q
}
