package cli

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/graphq/internal/config"
	"github.com/roach88/graphq/internal/dialect"
	"github.com/roach88/graphq/internal/expr"
	"github.com/roach88/graphq/internal/querydoc"
	"github.com/roach88/graphq/internal/store"
	"github.com/roach88/graphq/internal/traversal"
)

func TestOutputFormatter_JSONSuccess(t *testing.T) {
	buf := &bytes.Buffer{}
	formatter := &OutputFormatter{Format: "json", Writer: buf}

	require.NoError(t, formatter.Success(map[string]string{"result": "success"}))

	var resp Response
	require.NoError(t, json.Unmarshal(buf.Bytes(), &resp))
	assert.Equal(t, "ok", resp.Status)
	assert.NotNil(t, resp.Data)
	assert.Nil(t, resp.Error)
}

func TestOutputFormatter_JSONError(t *testing.T) {
	buf := &bytes.Buffer{}
	formatter := &OutputFormatter{Format: "json", Writer: buf}

	err := &dialect.UnknownDialectError{Name: "gremlin"}
	require.NoError(t, formatter.Error(err, map[string]string{"source": "q.yaml"}))

	var resp Response
	require.NoError(t, json.Unmarshal(buf.Bytes(), &resp))
	assert.Equal(t, "error", resp.Status)
	require.NotNil(t, resp.Error)
	assert.Equal(t, ErrUnknownDialect, resp.Error.Code)
	assert.Equal(t, `unknown dialect "gremlin"`, resp.Error.Message)
	assert.NotNil(t, resp.Error.Details)
}

type lines []string

func (l lines) WriteText(w io.Writer) error {
	for _, s := range l {
		fmt.Fprintln(w, s)
	}
	return nil
}

func TestOutputFormatter_TextSuccess(t *testing.T) {
	buf := &bytes.Buffer{}
	formatter := &OutputFormatter{Format: "text", Writer: buf}

	require.NoError(t, formatter.Success("done"))
	assert.Equal(t, "done\n", buf.String())

	buf.Reset()
	require.NoError(t, formatter.Success(lines{"a", "b"}))
	assert.Equal(t, "a\nb\n", buf.String())
}

func TestOutputFormatter_TextError(t *testing.T) {
	testCases := []struct {
		name        string
		verbose     bool
		wantDetails bool
	}{
		{"quiet", false, false},
		{"verbose", true, true},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			buf := &bytes.Buffer{}
			formatter := &OutputFormatter{Format: "text", Writer: buf, Verbose: tc.verbose}

			require.NoError(t, formatter.Fail(ErrConfig, "dialect is required", "graphq.yaml"))
			assert.Contains(t, buf.String(), "Error [E002]: dialect is required")
			if tc.wantDetails {
				assert.Contains(t, buf.String(), "Details: graphq.yaml")
			} else {
				assert.NotContains(t, buf.String(), "Details:")
			}
		})
	}
}

func TestOutputFormatter_Partial(t *testing.T) {
	failures := []Failure{
		{Source: "q.yaml", Index: 1, Code: ErrUnknownDialect, Message: "first"},
		{Source: "q.yaml", Index: 2, Code: ErrInvalidPage, Message: "second"},
	}

	buf := &bytes.Buffer{}
	formatter := &OutputFormatter{Format: "text", Writer: buf}
	require.NoError(t, formatter.Partial(lines{"MATCH (n) RETURN n"}, failures))
	assert.Equal(t, "MATCH (n) RETURN n\nError [E010]: first\nError [E022]: second\n", buf.String())

	buf.Reset()
	formatter.Format = "json"
	require.NoError(t, formatter.Partial(lines{"MATCH (n) RETURN n"}, failures))
	var resp Response
	require.NoError(t, json.Unmarshal(buf.Bytes(), &resp))
	assert.Equal(t, "error", resp.Status)
	assert.Equal(t, ErrUnknownDialect, resp.Error.Code)
	assert.Equal(t, []any{"MATCH (n) RETURN n"}, resp.Data)
}

func TestOutputFormatter_VerboseLog(t *testing.T) {
	tests := []struct {
		name    string
		verbose bool
		wantLog bool
	}{
		{"verbose_enabled", true, true},
		{"verbose_disabled", false, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out := &bytes.Buffer{}
			diag := &bytes.Buffer{}
			formatter := &OutputFormatter{Format: "json", Writer: out, ErrWriter: diag, Verbose: tt.verbose}

			formatter.VerboseLog("rendering %s", "q.yaml")

			assert.Empty(t, out.String())
			if tt.wantLog {
				assert.Equal(t, "rendering q.yaml\n", diag.String())
			} else {
				assert.Empty(t, diag.String())
			}
		})
	}
}

func TestGetExitCode(t *testing.T) {
	assert.Equal(t, ExitSuccess, GetExitCode(nil))
	assert.Equal(t, ExitFailure, GetExitCode(errors.New("boom")))
	assert.Equal(t, ExitCommandError, GetExitCode(NewExitError(ExitCommandError, "bad flags")))

	wrapped := fmt.Errorf("run: %w", WrapExitError(ExitFailure, "render failed", errors.New("boom")))
	assert.Equal(t, ExitFailure, GetExitCode(wrapped))
	assert.Equal(t, "run: render failed: boom", wrapped.Error())
}

func TestErrorCode(t *testing.T) {
	testCases := []struct {
		name string
		err  error
		code string
	}{
		{"generic", errors.New("boom"), ErrGeneric},
		{"unknown dialect", &dialect.UnknownDialectError{Name: "x"}, ErrUnknownDialect},
		{"missing template", &dialect.MissingDialectTemplateError{Dialect: "x", Template: "t"}, ErrMissingTemplate},
		{"unsupported operator", &dialect.UnsupportedOperatorError{Dialect: "x", Op: expr.OpAssign}, ErrUnsupportedOperator},
		{"reference", &dialect.ReferenceError{Dialect: "x", Column: "@src"}, ErrReference},
		{"invalid page", &expr.InvalidPageError{Skip: -1, Limit: 1}, ErrInvalidPage},
		{"invalid traversal", &traversal.InvalidTraversalError{Step: 0, Reason: "r"}, ErrInvalidTraversal},
		{"descriptor", &config.LoadError{Field: "dialect", Message: "m"}, ErrDescriptor},
		{"config", &configError{err: errors.New("bad")}, ErrConfig},
		{"journal", &journalError{err: errors.New("locked")}, ErrJournal},
		{"journal not found", &journalError{err: store.ErrNotFound}, ErrNotFound},
		{"decode", &querydoc.DecodeError{Reason: "no documents"}, ErrDocument},
		{
			"most specific wins",
			&DocumentError{Source: "q.yaml", Err: &querydoc.DecodeError{Err: &expr.InvalidChainError{Reason: "r"}}},
			ErrInvalidChain,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.code, errorCode(tc.err))
		})
	}
}
