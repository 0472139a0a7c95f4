package dialect

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTemplate_Execute(t *testing.T) {
	testCases := []struct {
		name   string
		text   string
		frags  Fragments
		expect string
	}{
		{"literal", "RETURN 1", nil, "RETURN 1"},
		{"required", "MATCH ({binding})", Fragments{"binding": "n"}, "MATCH (n)"},
		{"empty fragment is valid", "MATCH (n){where}", Fragments{"where": ""}, "MATCH (n)"},
		{"optional absent", "({binding}{label?})", Fragments{"binding": "n"}, "(n)"},
		{"optional present", "({binding}{label?})", Fragments{"binding": "n", "label": ":player"}, "(n:player)"},
		{"escaped braces", "{{a: {v}}}", Fragments{"v": "1"}, "{a: 1}"},
		{"repeated placeholder", "{x}-{x}", Fragments{"x": "y"}, "y-y"},
		{"unused fragments ignored", "A", Fragments{"x": "y"}, "A"},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			tpl, err := ParseTemplate(tc.name, tc.text)
			require.NoError(t, err)
			got, err := tpl.Execute(tc.frags)
			require.NoError(t, err)
			assert.Equal(t, tc.expect, got)
		})
	}
}

func TestTemplate_MissingPlaceholder(t *testing.T) {
	tpl, err := ParseTemplate("step", "GO {step_range} FROM {from}")
	require.NoError(t, err)
	tpl.dialect = "test"

	_, err = tpl.Execute(Fragments{"from": "1"})
	var missing *MissingDialectTemplateError
	require.ErrorAs(t, err, &missing)
	assert.Equal(t, "test", missing.Dialect)
	assert.Equal(t, "step", missing.Template)
	assert.Equal(t, "step_range", missing.Placeholder)
}

func TestTemplate_ParseErrors(t *testing.T) {
	for _, text := range []string{"{open", "close}", "{}", "{Bad}", "{a-b}", "{?}"} {
		_, err := ParseTemplate("t", text)
		var te *TemplateError
		assert.ErrorAs(t, err, &te, text)
	}
}

func TestTemplate_Placeholders(t *testing.T) {
	tpl, err := ParseTemplate("q", "MATCH ({binding}{label?}){where} RETURN {return}")
	require.NoError(t, err)
	assert.Equal(t, []string{"binding", "label", "where", "return"}, tpl.Placeholders())
	assert.True(t, tpl.Has("label"))
	assert.False(t, tpl.Has("page"))
	assert.Equal(t, "MATCH ({binding}{label?}){where} RETURN {return}", tpl.Source())
}
