package cli

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type journalResponse struct {
	Status string         `json:"status"`
	Data   JournalResult  `json:"data"`
	Error  *ResponseError `json:"error"`
}

// journaled renders testdata/queries.yaml into a fresh journal.
func journaled(t *testing.T) string {
	t.Helper()
	db := filepath.Join(t.TempDir(), "journal.db")
	_, err := execute(t, "render", "--journal", db, queriesFile)
	require.NoError(t, err)
	return db
}

func listJournal(t *testing.T, args ...string) journalResponse {
	t.Helper()
	out, err := execute(t, append([]string{"--format", "json", "journal"}, args...)...)
	require.NoError(t, err)
	var resp journalResponse
	require.NoError(t, json.Unmarshal([]byte(out), &resp), out)
	return resp
}

func TestJournal_List(t *testing.T) {
	db := journaled(t)

	resp := listJournal(t, db)
	assert.Equal(t, "ok", resp.Status)
	require.Len(t, resp.Data.Entries, 3)
	for i, e := range resp.Data.Entries {
		assert.Equal(t, int64(i+1), e.Seq)
		assert.Equal(t, queriesRendered[i], e.Statement)
	}
}

func TestJournal_Filters(t *testing.T) {
	db := journaled(t)
	all := listJournal(t, db).Data.Entries
	require.Len(t, all, 3)

	nebula := listJournal(t, db, "--dialect", "nebula").Data.Entries
	require.Len(t, nebula, 1)
	assert.Equal(t, queriesRendered[2], nebula[0].Statement)

	limited := listJournal(t, db, "--limit", "2").Data.Entries
	assert.Len(t, limited, 2)

	byFingerprint := listJournal(t, db, "--fingerprint", all[1].Fingerprint).Data.Entries
	require.Len(t, byFingerprint, 1)
	assert.Equal(t, all[1].ID, byFingerprint[0].ID)

	byID := listJournal(t, db, "--id", all[0].ID).Data.Entries
	require.Len(t, byID, 1)
	assert.Equal(t, queriesRendered[0], byID[0].Statement)
}

func TestJournal_Text(t *testing.T) {
	db := journaled(t)

	out, err := execute(t, "journal", db, "--dialect", "nebula")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(out, "3 "), out)
	assert.Contains(t, out, " nebula@3.6 ")
	assert.True(t, strings.HasSuffix(out, queriesRendered[2]+"\n"))

	out, err = execute(t, "journal", db, "--dialect", "gremlin")
	require.NoError(t, err)
	assert.Equal(t, "no statements\n", out)
}

func TestJournal_FromConfig(t *testing.T) {
	dir := t.TempDir()
	cfg := filepath.Join(dir, "graphq.yaml")
	require.NoError(t, os.WriteFile(cfg, []byte("dialect: cypher\njournal: statements.db\n"), 0o644))

	_, err := execute(t, "--config", cfg, "render", queriesFile)
	require.NoError(t, err)
	_, err = os.Stat(filepath.Join(dir, "statements.db"))
	require.NoError(t, err, "journal path is relative to the config file")

	resp := listJournal(t, "--config", cfg)
	assert.Len(t, resp.Data.Entries, 3)
}

func TestJournal_Errors(t *testing.T) {
	out, err := execute(t, "journal", filepath.Join(t.TempDir(), "missing.db"))
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
	assert.Contains(t, out, "Error [E005]")

	out, err = execute(t, "journal")
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
	assert.Contains(t, out, "Error [E002]: no journal database given")

	db := journaled(t)
	out, err = execute(t, "journal", db, "--id", "nope")
	require.Error(t, err)
	assert.Contains(t, out, "Error [E005]")
}
