package binding

import (
	"reflect"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/graphq/internal/expr"
)

type PlayerStat struct {
	ID        string `graph:"@id"`
	FirstName string
	Age       int    `graph:"age_years"`
	Scratch   string `graph:"-"`
	Score     int    `graph:",omitempty"`
	hidden    int
}

type Team struct {
	Name string
}

func (Team) Label() string { return "squad" }

func TestRegistry_ResolveProperty(t *testing.T) {
	reg := NewRegistry()
	require.NoError(t, Register[PlayerStat](reg))

	testCases := []struct {
		field string
		want  expr.Column
	}{
		{"ID", expr.Column{Owner: "player_stat", Name: expr.ColumnID}},
		{"FirstName", expr.Column{Owner: "player_stat", Name: "first_name"}},
		{"Age", expr.Column{Owner: "player_stat", Name: "age_years"}},
		{"Score", expr.Column{Owner: "player_stat", Name: "score"}},
	}

	for _, tc := range testCases {
		t.Run(tc.field, func(t *testing.T) {
			col, err := reg.ResolveProperty(expr.Prop[PlayerStat](tc.field))
			require.NoError(t, err)
			assert.Equal(t, tc.want, col)
		})
	}
}

func TestRegistry_SkippedFields(t *testing.T) {
	reg := NewRegistry()
	require.NoError(t, Register[PlayerStat](reg))

	for _, field := range []string{"Scratch", "hidden", "Missing"} {
		_, err := reg.ResolveProperty(expr.Prop[PlayerStat](field))
		var be *expr.BindingError
		require.ErrorAs(t, err, &be, field)
		assert.Equal(t, "field not found", be.Reason)
	}
}

func TestRegistry_LabelMethod(t *testing.T) {
	reg := NewRegistry()
	require.NoError(t, reg.Add(&Team{}))

	label, err := Label[Team](reg)
	require.NoError(t, err)
	assert.Equal(t, "squad", label)

	col, err := reg.ResolveProperty(expr.Prop[Team]("Name"))
	require.NoError(t, err)
	assert.Equal(t, expr.Column{Owner: "squad", Name: "name"}, col)
}

func TestRegistry_Unregistered(t *testing.T) {
	reg := NewRegistry()

	_, err := reg.ResolveLabel(reflect.TypeFor[Team]())
	var be *expr.BindingError
	require.ErrorAs(t, err, &be)
	assert.Contains(t, err.Error(), "not registered")

	_, err = reg.ResolveProperty(expr.Prop[Team]("Name"))
	require.ErrorAs(t, err, &be)
}

func TestRegistry_RejectsNonStruct(t *testing.T) {
	reg := NewRegistry()
	var be *expr.BindingError
	require.ErrorAs(t, reg.Add(42), &be)
	require.ErrorAs(t, reg.Add(nil), &be)
}

func TestRegistry_ResolvesThroughRef(t *testing.T) {
	reg := NewRegistry()
	require.NoError(t, Register[PlayerStat](reg))

	col, err := expr.RefOf(expr.Prop[PlayerStat]("FirstName")).Resolve(reg)
	require.NoError(t, err)
	assert.Equal(t, "first_name", col.Name)
}
