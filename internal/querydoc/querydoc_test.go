package querydoc

import (
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/graphq/internal/dialect"
	"github.com/roach88/graphq/internal/dialect/cypher"
	"github.com/roach88/graphq/internal/dialect/nebula"
	"github.com/roach88/graphq/internal/expr"
	"github.com/roach88/graphq/internal/query"
	"github.com/roach88/graphq/internal/traversal"
)

func render(t *testing.T, d Document, name string) string {
	t.Helper()
	reg := dialect.NewRegistry()
	require.NoError(t, reg.Register(cypher.Descriptor()))
	require.NoError(t, reg.Register(nebula.Descriptor()))

	stmt, err := d.Statement()
	require.NoError(t, err)
	out, err := query.Render(stmt, query.Config{Dialect: name, Registry: reg})
	require.NoError(t, err)
	return out
}

func TestLoadFile(t *testing.T) {
	docs, err := LoadFile(filepath.Join("testdata", "queries.yaml"))
	require.NoError(t, err)
	require.Len(t, docs, 3)

	assert.Equal(t, "adults", docs[0].Name)
	assert.Equal(t, 2, docs[2].Index())
	assert.Equal(t, "nebula", docs[2].Dialect)
	assert.Equal(t, []Item{{Col: "name"}, {Col: "age", As: "years"}}, docs[0].Select)

	assert.Equal(t,
		"MATCH (n:player) WHERE n.age > 30 OR (n.name STARTS WITH 'Tim' AND id(n) IN ['player100']) RETURN n.name AS name, n.age AS years ORDER BY n.age DESC SKIP 0 LIMIT 10",
		render(t, docs[0], cypher.Name))
	assert.Equal(t,
		"MATCH (v0)-[e1:follow]->(v1:player) WHERE id(v0) IN ['player100'] RETURN v1.name AS name SKIP 0 LIMIT 5",
		render(t, docs[1], cypher.Name))
	assert.Equal(t,
		"LOOKUP ON follow YIELD follow.degree AS degree | YIELD COUNT(*) AS total,AVG($-.degree) AS avg_degree",
		render(t, docs[2], nebula.Name))
}

func TestStatement_Kinds(t *testing.T) {
	docs, err := Decode(strings.NewReader("kind: vertex\nlabel: player\n---\nkind: edge\nlabel: follow\n---\nkind: traversal\nfrom: [1]\nsteps: [{}]\n"))
	require.NoError(t, err)
	require.Len(t, docs, 3)

	v, err := docs[0].Statement()
	require.NoError(t, err)
	assert.IsType(t, &query.VertexQuery{}, v)

	e, err := docs[1].Statement()
	require.NoError(t, err)
	assert.IsType(t, &query.EdgeQuery{}, e)

	g, err := docs[2].Statement()
	require.NoError(t, err)
	plan, err := g.(traversal.Planner).Plan()
	require.NoError(t, err)
	require.Len(t, plan.Hops, 1)
	assert.Equal(t, traversal.Out, plan.Hops[0].Step.Direction)
	assert.Equal(t, 1, plan.Hops[0].Step.From)
	assert.Equal(t, 1, plan.Hops[0].Step.To)
}

func TestStatement_StepRangeAndSubs(t *testing.T) {
	src := `
kind: traversal
from: [a]
steps:
  - direction: both
    min: 2
    max: 4
    edges: [follow, like]
    edge: {none: true, where: [{col: degree, op: GE, value: 1}]}
    src: {alias: me, all: me}
    dst: {alias: friend, order: [{col: age}], page: {skip: 1, limit: 2}}
`
	docs, err := Decode(strings.NewReader(src))
	require.NoError(t, err)
	stmt, err := docs[0].Statement()
	require.NoError(t, err)

	plan, err := stmt.(traversal.Planner).Plan()
	require.NoError(t, err)
	h := plan.Hops[0]
	assert.Equal(t, traversal.Step{Direction: traversal.Both, From: 2, To: 4, EdgeTypes: []string{"follow", "like"}}, h.Step)
	assert.False(t, h.Rel.Projects())
	assert.Equal(t, 1, h.Rel.Predicate.Len())

	alias, ok := h.Src.Selection.Whole()
	assert.True(t, ok)
	assert.Equal(t, "me", alias)

	assert.Equal(t, "friend", h.Dst.Alias)
	assert.Equal(t, []expr.Order{expr.Asc("age")}, h.Dst.Ordering)
	assert.Equal(t, &expr.Page{Skip: 1, Limit: 2}, h.Dst.Pagination)
}

func TestChain_Connectives(t *testing.T) {
	testCases := []struct {
		name  string
		terms []Term
		conns []expr.Op
	}{
		{"default and", []Term{{Col: "a", Op: "EQ", Value: 1}, {Col: "b", Op: "EQ", Value: 2}}, []expr.Op{expr.OpAnd, 0}},
		{"explicit xor", []Term{{Col: "a", Op: "EQ", Value: 1, Next: "xor"}, {Col: "b", Op: "isnull"}}, []expr.Op{expr.OpXor, 0}},
		{"single", []Term{{Col: "a", Op: "not null"}}, []expr.Op{0}},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			c, err := chain(tc.terms)
			require.NoError(t, err)
			var conns []expr.Op
			for _, term := range c.Terms() {
				conns = append(conns, term.Conn)
			}
			assert.Equal(t, tc.conns, conns)
		})
	}
}

func TestDecode_Errors(t *testing.T) {
	testCases := []struct {
		name  string
		src   string
		field string
	}{
		{"unknown field", "kind: vertex\nlabl: player\n", ""},
		{"missing kind", "label: player\n", "kind"},
		{"unknown kind", "kind: path\n", "kind"},
		{"steps on vertex", "kind: vertex\nsteps: [{}]\n", "kind"},
		{"ids on edge", "kind: edge\nids: [1]\n", "ids"},
		{"none on vertex", "kind: vertex\nnone: true\n", "none"},
		{"traversal projection", "kind: traversal\nfrom: [1]\nselect: [name]\n", "kind"},
		{"empty input", "", ""},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := Decode(strings.NewReader(tc.src))
			var de *DecodeError
			require.ErrorAs(t, err, &de)
			assert.Equal(t, tc.field, de.Field)
		})
	}
}

func TestStatement_Errors(t *testing.T) {
	testCases := []struct {
		name  string
		src   string
		field string
	}{
		{"unknown operator", "kind: vertex\nwhere: [{col: a, op: LIKE, value: 1}]\n", "where"},
		{"bad connective", "kind: vertex\nwhere: [{col: a, op: EQ, value: 1, next: EQ}, {col: b, op: EQ, value: 2}]\n", "where"},
		{"null check with value", "kind: vertex\nwhere: [{col: a, op: ISNULL, value: 1}]\n", "where"},
		{"group with column", "kind: vertex\nwhere: [{col: a, group: [{col: b, op: EQ, value: 1}]}]\n", "where"},
		{"unknown function", "kind: edge\naggregates: [{func: median, col: a, as: m}]\n", "aggregates[0]"},
		{"aggregate without alias", "kind: edge\naggregates: [{func: sum, col: a}]\n", "aggregates[0]"},
		{"blank alias", "kind: vertex\nselect: [{col: a, as: \" \"}]\n", "select"},
		{"bad direction", "kind: traversal\nfrom: [1]\nsteps: [{direction: up}]\n", "steps[0].direction"},
		{"none with select", "kind: traversal\nfrom: [1]\nsteps: [{dst: {none: true, select: [a]}}]\n", "steps[0].dst.none"},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			docs, err := Decode(strings.NewReader(tc.src))
			require.NoError(t, err)
			_, err = docs[0].Statement()
			var de *DecodeError
			require.ErrorAs(t, err, &de)
			assert.Equal(t, tc.field, de.Field)
		})
	}
}
