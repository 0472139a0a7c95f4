package cli

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/roach88/graphq/internal/query"
	"github.com/roach88/graphq/internal/querydoc"
	"github.com/roach88/graphq/internal/store"
)

// maxParallelFiles bounds concurrent document loading and rendering.
const maxParallelFiles = 8

// RenderOptions holds flags for the render command.
type RenderOptions struct {
	*RootOptions
	Dialect     string
	Version     string
	Descriptors string
	Journal     string
}

// RenderedStatement is one rendered document.
type RenderedStatement struct {
	Source      string `json:"source"`
	Index       int    `json:"index"`
	Name        string `json:"name,omitempty"`
	Dialect     string `json:"dialect"`
	Version     string `json:"version"`
	Statement   string `json:"statement"`
	Fingerprint string `json:"fingerprint"`
	ID          string `json:"id,omitempty"`  // journal entry id
	Seq         int64  `json:"seq,omitempty"` // journal sequence
}

// RenderResult is the render command payload.
type RenderResult struct {
	Statements []RenderedStatement `json:"statements"`
}

// WriteText prints one statement per line.
func (r RenderResult) WriteText(w io.Writer) error {
	for _, s := range r.Statements {
		if _, err := fmt.Fprintln(w, s.Statement); err != nil {
			return err
		}
	}
	return nil
}

// NewRenderCommand creates the render command.
func NewRenderCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &RenderOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "render <file>...",
		Short: "Render query documents",
		Long: `Render every document of the given YAML files for the configured dialect.

A document may name its own dialect and version; otherwise --dialect and
--version, the config file and GRAPHQ_DIALECT/GRAPHQ_VERSION apply in that
order. With --journal every rendered statement is recorded in a SQLite
statement journal.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runRender(cmd, opts, args)
		},
	}

	cmd.Flags().StringVarP(&opts.Dialect, "dialect", "d", "", "dialect name")
	cmd.Flags().StringVar(&opts.Version, "version", "", "dialect version (default highest registered)")
	cmd.Flags().StringVar(&opts.Descriptors, "descriptors", "", "directory of CUE dialect overlays")
	cmd.Flags().StringVar(&opts.Journal, "journal", "", "record statements in this SQLite journal")

	return cmd
}

func runRender(cmd *cobra.Command, opts *RenderOptions, paths []string) error {
	formatter := newFormatter(opts.RootOptions, cmd.OutOrStdout(), cmd.ErrOrStderr())

	env, err := loadEnvironment(opts.RootOptions, overrides{
		Dialect:     opts.Dialect,
		Version:     opts.Version,
		Descriptors: opts.Descriptors,
		Journal:     opts.Journal,
	})
	if err != nil {
		_ = formatter.Error(err, nil)
		return WrapExitError(ExitCommandError, "failed to load environment", err)
	}

	stmts, failures := renderFiles(cmd.Context(), env, paths)
	if len(failures) > 0 {
		_ = formatter.Partial(RenderResult{Statements: stmts}, failures)
		return NewExitError(ExitFailure, fmt.Sprintf("render failed with %d error(s)", len(failures)))
	}

	if env.cfg.Journal != "" {
		if err := journalStatements(cmd.Context(), env.cfg.Journal, stmts); err != nil {
			_ = formatter.Error(err, nil)
			return WrapExitError(ExitCommandError, "failed to journal statements", err)
		}
		formatter.VerboseLog("journaled %d statement(s) in %s", len(stmts), env.cfg.Journal)
	}

	return formatter.Success(RenderResult{Statements: stmts})
}

// renderFiles renders every document of paths concurrently. Statements keep
// file and document order. A file that cannot be loaded is one failure; its
// documents are skipped.
func renderFiles(ctx context.Context, env *environment, paths []string) ([]RenderedStatement, []Failure) {
	type fileResult struct {
		stmts    []RenderedStatement
		failures []Failure
	}
	results := make([]fileResult, len(paths))

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(maxParallelFiles)
	for i, path := range paths {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			docs, err := querydoc.LoadFile(path)
			if err != nil {
				results[i].failures = append(results[i].failures, newFailure(path, fmt.Errorf("%s: %w", path, err)))
				return nil
			}
			for _, doc := range docs {
				s, err := env.render(path, doc)
				if err != nil {
					results[i].failures = append(results[i].failures, newFailure(path, err))
					continue
				}
				results[i].stmts = append(results[i].stmts, s)
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, []Failure{newFailure("", err)}
	}

	var stmts []RenderedStatement
	var failures []Failure
	for _, r := range results {
		stmts = append(stmts, r.stmts...)
		failures = append(failures, r.failures...)
	}
	return stmts, failures
}

// render renders one document. A document dialect replaces the configured
// dialect and version; a document version alone replaces only the version.
func (e *environment) render(source string, doc querydoc.Document) (RenderedStatement, error) {
	fail := func(err error) error {
		return &DocumentError{Source: source, Index: doc.Index(), Name: doc.Name, Err: err}
	}

	qc := query.Config{Dialect: e.cfg.Dialect, Version: e.cfg.Version, Registry: e.registry}
	if doc.Dialect != "" {
		qc.Dialect, qc.Version = doc.Dialect, doc.Version
	} else if doc.Version != "" {
		qc.Version = doc.Version
	}

	r, err := qc.Renderer()
	if err != nil {
		return RenderedStatement{}, fail(err)
	}
	stmt, err := doc.Statement()
	if err != nil {
		return RenderedStatement{}, fail(err)
	}
	text, err := query.RenderWith(r, stmt)
	if err != nil {
		return RenderedStatement{}, fail(err)
	}

	d := r.Dialect()
	slog.Debug("document rendered", "source", source, "index", doc.Index(), "dialect", d.String())
	return RenderedStatement{
		Source:      source,
		Index:       doc.Index(),
		Name:        doc.Name,
		Dialect:     d.Name(),
		Version:     d.Version(),
		Statement:   text,
		Fingerprint: store.Fingerprint(text),
	}, nil
}

// journalStatements records stmts in order and fills in their entry ids.
func journalStatements(ctx context.Context, path string, stmts []RenderedStatement) error {
	j, err := store.Open(path)
	if err != nil {
		return &journalError{err: err}
	}
	defer j.Close()

	var exec store.Executor = j
	for i := range stmts {
		s := &stmts[i]
		entry, err := exec.Execute(ctx, store.Statement{
			Dialect: s.Dialect,
			Version: s.Version,
			Text:    s.Statement,
			Source:  s.Source,
		})
		if err != nil {
			return &journalError{err: err}
		}
		s.ID, s.Seq = entry.ID, entry.Seq
	}
	return nil
}
