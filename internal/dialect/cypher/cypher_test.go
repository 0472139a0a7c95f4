package cypher_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/graphq/internal/dialect"
	"github.com/roach88/graphq/internal/dialect/cypher"
	"github.com/roach88/graphq/internal/expr"
	"github.com/roach88/graphq/internal/traversal"
)

func renderer(t *testing.T) *dialect.Renderer {
	t.Helper()
	reg := dialect.NewRegistry()
	require.NoError(t, reg.Register(cypher.Descriptor()))
	d, err := reg.Lookup(cypher.Name, "")
	require.NoError(t, err)
	return dialect.NewRenderer(d, nil)
}

func step(t *testing.T, s traversal.Step, err error) traversal.Step {
	t.Helper()
	require.NoError(t, err)
	return s
}

func TestTraversal(t *testing.T) {
	testCases := []struct {
		name   string
		graph  func(t *testing.T) traversal.Planner
		expect string
	}{
		{
			name: "default return",
			graph: func(t *testing.T) traversal.Planner {
				return traversal.From("a").Step(step(t, traversal.Hop(traversal.Out)))
			},
			expect: "MATCH (v0)-[e1]->(v1) WHERE id(v0) IN ['a'] RETURN v1",
		},
		{
			name: "reverse step typed by edge sub-query",
			graph: func(t *testing.T) traversal.Planner {
				return traversal.From(1).Step(step(t, traversal.Hop(traversal.In)), func(h *traversal.HopQuery) {
					h.Edge("", "serve", func(s *traversal.Sub) { s.Select(expr.Select("start_year")) })
					h.InV("", "team", nil)
				})
			},
			expect: "MATCH (v0:team)<-[e1:serve]-(v1) WHERE id(v0) IN [1] RETURN e1.start_year AS start_year, v0 AS src",
		},
		{
			name: "variable length edge columns map over the path",
			graph: func(t *testing.T) traversal.Planner {
				return traversal.From("a").Step(step(t, traversal.NewStep(traversal.Both, 2, 2, "follow", "like")), func(h *traversal.HopQuery) {
					h.Edge("rel", "", func(s *traversal.Sub) { s.Select(expr.Select("degree")) })
				})
			},
			expect: "MATCH (v0)-[e1:follow|like*2]-(v1) WHERE id(v0) IN ['a'] RETURN [r IN e1 | r.degree] AS degree",
		},
		{
			name: "variable length range",
			graph: func(t *testing.T) traversal.Planner {
				return traversal.From("a").Step(step(t, traversal.NewStep(traversal.Out, 0, 4, "follow")))
			},
			expect: "MATCH (v0)-[e1:follow*0..4]->(v1) WHERE id(v0) IN ['a'] RETURN v1",
		},
		{
			name: "hop page and final page",
			graph: func(t *testing.T) traversal.Planner {
				return traversal.From("a").
					Step(step(t, traversal.Hop(traversal.Out, "follow")), func(h *traversal.HopQuery) {
						h.OutV("", "", func(s *traversal.Sub) { s.OrderBy(expr.Desc("age")).Page(0, 3) })
					}).
					Paginate(10, 20)
			},
			expect: "MATCH (v0)-[e1:follow]->(v1) WHERE id(v0) IN ['a'] WITH v0, e1, v1 ORDER BY v1.age DESC SKIP 0 LIMIT 3 RETURN v1 AS dst SKIP 10 LIMIT 20",
		},
		{
			name: "last hop order feeds the return",
			graph: func(t *testing.T) traversal.Planner {
				return traversal.From("a").
					Step(step(t, traversal.Hop(traversal.Out, "follow")), func(h *traversal.HopQuery) {
						h.OutV("friend", "player", func(s *traversal.Sub) {
							s.Where(expr.NotNull("name")).Select(expr.Select("name")).OrderBy(expr.Asc("name")).Page(5, 5)
						})
					})
			},
			expect: "MATCH (v0)-[e1:follow]->(v1:player) WHERE id(v0) IN ['a'] AND v1.name IS NOT NULL RETURN v1.name AS name ORDER BY v1.name SKIP 5 LIMIT 5",
		},
		{
			name: "grouped sub-query predicate keeps its parentheses",
			graph: func(t *testing.T) traversal.Planner {
				return traversal.From("a").
					Step(step(t, traversal.Hop(traversal.Out, "follow")), func(h *traversal.HopQuery) {
						h.OutV("", "", func(s *traversal.Sub) {
							s.Where(expr.GT("age", 30).Or(expr.LT("age", 20))).NoneSelect()
						})
					})
			},
			expect: "MATCH (v0)-[e1:follow]->(v1) WHERE id(v0) IN ['a'] AND (v1.age > 30 OR v1.age < 20) RETURN v1",
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := renderer(t).Traversal(tc.graph(t))
			require.NoError(t, err)
			assert.Equal(t, tc.expect, got)
		})
	}
}

func TestReference(t *testing.T) {
	r := renderer(t)
	vertex := dialect.Scope{Kind: dialect.Vertex, Binding: "n"}
	edge := dialect.Scope{Kind: dialect.Edge, Binding: "e"}

	testCases := []struct {
		name   string
		scope  dialect.Scope
		chain  expr.Chain
		expect string
	}{
		{"property", vertex, expr.EQ("name", "Tim"), "n.name = 'Tim'"},
		{"quoted property", vertex, expr.EQ("first name", "Tim"), "n.`first name` = 'Tim'"},
		{"vertex labels", vertex, expr.Contains(expr.ColumnLabel, "player"), "labels(n) CONTAINS 'player'"},
		{"edge type", edge, expr.EQ(expr.ColumnLabel, "follow"), "type(e) = 'follow'"},
		{"edge endpoints", edge, expr.EQ(expr.ColumnSrc, 1).And(expr.EQ(expr.ColumnDst, 2)), "id(startNode(e)) = 1 AND id(endNode(e)) = 2"},
		{"negated prefix", vertex, expr.NotHasPrefix("name", "T"), "NOT n.name STARTS WITH 'T'"},
		{"not in", vertex, expr.NotIn("age", []int{1, 2}), "NOT n.age IN [1, 2]"},
		{"unbound property", dialect.Scope{Kind: dialect.Vertex}, expr.EQ("name", "x"), "name = 'x'"},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := r.Predicate(tc.scope, tc.chain)
			require.NoError(t, err)
			assert.Equal(t, tc.expect, got)
		})
	}
}

func TestReference_Errors(t *testing.T) {
	r := renderer(t)

	testCases := []struct {
		name  string
		scope dialect.Scope
		col   string
	}{
		{"rank", dialect.Scope{Kind: dialect.Edge, Binding: "e"}, expr.ColumnRank},
		{"src on vertex", dialect.Scope{Kind: dialect.Vertex, Binding: "n"}, expr.ColumnSrc},
		{"unbound id", dialect.Scope{Kind: dialect.Vertex}, expr.ColumnID},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := r.Predicate(tc.scope, expr.EQ(tc.col, 1))
			var re *dialect.ReferenceError
			require.ErrorAs(t, err, &re)
			assert.Equal(t, cypher.Name, re.Dialect)
		})
	}
}

func TestAssignUnsupported(t *testing.T) {
	_, err := renderer(t).Predicate(dialect.Scope{Kind: dialect.Vertex, Binding: "n"}, expr.Assign("age", 3))
	var unsupported *dialect.UnsupportedOperatorError
	require.ErrorAs(t, err, &unsupported)
	assert.Equal(t, expr.OpAssign, unsupported.Op)
}

func TestAggregateWithSource(t *testing.T) {
	r := renderer(t)
	sel := expr.Nothing().Aggregate(expr.Sum("age", "total_age").From("m"))

	proj, err := r.Projection(dialect.Scope{Kind: dialect.Vertex, Binding: "n"}, sel, "n")
	require.NoError(t, err)
	assert.Equal(t, "SUM(m.age) AS total_age", proj.Return)
	assert.Empty(t, proj.Aggregates)
}
