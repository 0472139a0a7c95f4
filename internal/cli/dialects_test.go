package cli

import (
	"bytes"
	"encoding/json"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/graphq/internal/config"
)

type dialectsResponse struct {
	Status string      `json:"status"`
	Data   DialectList `json:"data"`
}

func TestDialects_Text(t *testing.T) {
	out, err := execute(t, "dialects")
	require.NoError(t, err)
	assert.Contains(t, out, "* cypher@5  ")
	assert.Contains(t, out, "  nebula@3.6  ")
	assert.Contains(t, out, "vertex_query")
}

func TestDialects_JSON(t *testing.T) {
	out, err := execute(t, "--format", "json", "dialects")
	require.NoError(t, err)

	var resp dialectsResponse
	require.NoError(t, json.Unmarshal([]byte(out), &resp))
	assert.Equal(t, "ok", resp.Status)

	var names []string
	for _, d := range resp.Data.Dialects {
		names = append(names, d.Name+"@"+d.Version)
		assert.Contains(t, d.Templates, "vertex_query")
	}
	assert.Equal(t, []string{"cypher@5", "nebula@3.6"}, names)
	assert.True(t, resp.Data.Dialects[0].Default)
	assert.False(t, resp.Data.Dialects[1].Default)
}

func TestDialects_Overlays(t *testing.T) {
	out, err := execute(t, "--format", "json", "--config", filepath.Join("testdata", "graphq.yaml"), "dialects")
	require.NoError(t, err)

	var resp dialectsResponse
	require.NoError(t, json.Unmarshal([]byte(out), &resp))
	require.Len(t, resp.Data.Dialects, 3)

	strict := resp.Data.Dialects[1]
	assert.Equal(t, "cypher-strict", strict.Name)
	assert.Equal(t, "1.0.0", strict.Version)
	assert.True(t, strict.Default)
	assert.False(t, resp.Data.Dialects[0].Default)
}

func TestDialects_DescriptorFlag(t *testing.T) {
	out, err := execute(t, "dialects", "--descriptors", filepath.Join("testdata", "dialects"))
	require.NoError(t, err)
	assert.Contains(t, out, "  cypher-strict@1.0.0  ")
	assert.Contains(t, out, "* cypher@5  ")
}

func TestDialects_BadDescriptors(t *testing.T) {
	out, err := execute(t, "dialects", "--descriptors", filepath.Join("testdata", "missing"))
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
	assert.Contains(t, out, "Error [E004]")
}

func TestDialects_UnknownConfiguredDialect(t *testing.T) {
	t.Setenv(config.EnvDialect, "gremlin")
	t.Setenv(config.EnvVersion, "")

	cmd := NewRootCommand()
	out := &bytes.Buffer{}
	cmd.SetOut(out)
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetArgs([]string{"--format", "json", "dialects"})
	require.NoError(t, cmd.Execute())

	var resp dialectsResponse
	require.NoError(t, json.Unmarshal(out.Bytes(), &resp))
	require.Len(t, resp.Data.Dialects, 2)
	for _, d := range resp.Data.Dialects {
		assert.False(t, d.Default)
	}
}
