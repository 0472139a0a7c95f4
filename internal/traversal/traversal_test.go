package traversal

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/graphq/internal/expr"
)

func TestNewStep_Validation(t *testing.T) {
	testCases := []struct {
		name     string
		from, to int
		edges    []string
		wantErr  bool
	}{
		{"single hop", 1, 1, []string{"follow"}, false},
		{"range", 1, 3, nil, false},
		{"zero hops", 0, 0, nil, false},
		{"negative from", -1, 2, nil, true},
		{"negative to", 0, -1, nil, true},
		{"to before from", 3, 2, nil, true},
		{"empty edge type", 1, 1, []string{"follow", ""}, true},
		{"blank edge type", 1, 1, []string{"  "}, true},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			s, err := NewStep(Out, tc.from, tc.to, tc.edges...)
			if tc.wantErr {
				var te *InvalidTraversalError
				require.ErrorAs(t, err, &te)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tc.from, s.From)
			assert.Equal(t, tc.to, s.To)
		})
	}
}

func TestNewStep_UnknownDirection(t *testing.T) {
	_, err := NewStep(Direction(9), 1, 1)
	var te *InvalidTraversalError
	require.ErrorAs(t, err, &te)
	assert.Contains(t, err.Error(), "unknown direction")
}

func TestNewStep_CopiesEdgeTypes(t *testing.T) {
	edges := []string{"a", "b"}
	s, err := NewStep(Both, 1, 2, edges...)
	require.NoError(t, err)
	edges[0] = "z"
	assert.Equal(t, []string{"a", "b"}, s.EdgeTypes)
}

func TestParseDirection(t *testing.T) {
	for in, want := range map[string]Direction{"out": Out, "IN": In, " both ": Both, "": Out} {
		got, err := ParseDirection(in)
		require.NoError(t, err)
		assert.Equal(t, want, got)
	}
	_, err := ParseDirection("sideways")
	assert.Error(t, err)
}

func TestGraph_Plan(t *testing.T) {
	step, err := Hop(Out, "follow")
	require.NoError(t, err)

	g := From("player100").Step(step, func(h *HopQuery) {
		h.OutV("p", "player", func(s *Sub) {
			s.Where(expr.GT("age", 30)).Select(expr.Select("name"))
		})
	})

	plan, err := g.Plan()
	require.NoError(t, err)
	assert.Equal(t, []any{"player100"}, plan.Start)
	require.Len(t, plan.Hops, 1)
	assert.Nil(t, plan.Page)

	dst := plan.Hops[0].Dst
	require.NotNil(t, dst)
	assert.Equal(t, "p", dst.Alias)
	assert.Equal(t, "player", dst.Label)
	assert.Equal(t, 1, dst.Predicate.Len())
	assert.Len(t, dst.Selection.Items(), 1)
}

func TestGraph_DeferredStepError(t *testing.T) {
	g := From(1).
		AddStep(Out, 1, 1, []string{"follow"}).
		AddStep(In, 3, 1, nil)

	_, err := g.Plan()
	var te *InvalidTraversalError
	require.ErrorAs(t, err, &te)
	assert.Equal(t, 1, te.Step)
	assert.Contains(t, err.Error(), "step 1")
}

func TestGraph_NoStartVertices(t *testing.T) {
	_, err := From().AddStep(Out, 1, 1, nil).Plan()
	var te *InvalidTraversalError
	require.ErrorAs(t, err, &te)
}

func TestGraph_Paginate(t *testing.T) {
	paged := From(1).AddStep(Out, 1, 2, nil).Paginate(5, 10)

	plan, err := paged.Plan()
	require.NoError(t, err)
	require.NotNil(t, plan.Page)
	assert.Equal(t, expr.Page{Skip: 5, Limit: 10}, *plan.Page)

	_, err = From(1).Paginate(0, 0).Plan()
	var pe *expr.InvalidPageError
	require.ErrorAs(t, err, &pe)

	_, err = Paged{}.Plan()
	assert.Error(t, err)
}

func TestSub_SelectionOverrides(t *testing.T) {
	g := From(1).AddStep(Out, 1, 1, nil, func(h *HopQuery) {
		h.Edge("", "follow", func(s *Sub) {
			s.Select(expr.Select("degree")).AllSelect()
		})
		h.InV("", "", func(s *Sub) {
			s.Select(expr.Select("name")).NoneSelect()
		})
	})

	plan, err := g.Plan()
	require.NoError(t, err)
	hop := plan.Hops[0]

	alias, all := hop.Rel.Selection.Whole()
	assert.True(t, all)
	assert.Equal(t, "edge", alias)
	assert.True(t, hop.Rel.Projects())

	assert.Equal(t, "src", hop.Src.Alias)
	assert.False(t, hop.Src.Projects())
	assert.True(t, hop.Src.Selection.IsEmpty())

	subs := hop.Subs()
	require.Len(t, subs, 2)
	assert.Equal(t, EdgeScope, subs[0].Scope)
	assert.Equal(t, SourceVertex, subs[1].Scope)
}

func TestSub_PageOnce(t *testing.T) {
	g := From(1).AddStep(Out, 1, 1, nil, func(h *HopQuery) {
		h.OutV("v", "", func(s *Sub) {
			s.Page(0, 5).Page(5, 5)
		})
	})

	_, err := g.Plan()
	var te *InvalidTraversalError
	require.ErrorAs(t, err, &te)
	assert.Contains(t, err.Error(), "paginated twice")
}

func TestSub_InvalidPredicateSurfaces(t *testing.T) {
	g := From(1).AddStep(Out, 1, 1, nil, func(h *HopQuery) {
		h.OutV("v", "", func(s *Sub) {
			s.Where(expr.In("age", 3))
		})
	})

	_, err := g.Plan()
	var ce *expr.InvalidChainError
	require.ErrorAs(t, err, &ce)
}
