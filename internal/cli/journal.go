package cli

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/roach88/graphq/internal/store"
)

// JournalOptions holds flags for the journal command.
type JournalOptions struct {
	*RootOptions
	Dialect     string
	Limit       int
	Fingerprint string
	ID          string
}

// JournalResult is the journal command payload.
type JournalResult struct {
	Entries []store.Entry `json:"entries"`
}

// WriteText prints one entry per line in journal order.
func (r JournalResult) WriteText(w io.Writer) error {
	if len(r.Entries) == 0 {
		_, err := fmt.Fprintln(w, "no statements")
		return err
	}
	for _, e := range r.Entries {
		if _, err := fmt.Fprintf(w, "%d %s %s@%s %s %s\n", e.Seq, e.ID, e.Dialect, e.Version, e.Fingerprint, e.Statement); err != nil {
			return err
		}
	}
	return nil
}

// NewJournalCommand creates the journal command.
func NewJournalCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &JournalOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "journal [db]",
		Short: "List journaled statements",
		Long: `List the statements recorded by "graphq render --journal" in sequence order.

The database defaults to the journal path of the config file.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runJournal(cmd, opts, args)
		},
	}

	cmd.Flags().StringVarP(&opts.Dialect, "dialect", "d", "", "only statements for this dialect")
	cmd.Flags().IntVarP(&opts.Limit, "limit", "n", 0, "maximum number of statements (0 for all)")
	cmd.Flags().StringVar(&opts.Fingerprint, "fingerprint", "", "only statements with this fingerprint")
	cmd.Flags().StringVar(&opts.ID, "id", "", "show a single statement by id")

	return cmd
}

func runJournal(cmd *cobra.Command, opts *JournalOptions, args []string) error {
	formatter := newFormatter(opts.RootOptions, cmd.OutOrStdout(), cmd.ErrOrStderr())

	path := ""
	if len(args) == 1 {
		path = args[0]
	} else {
		env, err := loadEnvironment(opts.RootOptions, overrides{})
		if err != nil {
			_ = formatter.Error(err, nil)
			return WrapExitError(ExitCommandError, "failed to load environment", err)
		}
		path = env.cfg.Journal
	}
	if path == "" {
		_ = formatter.Fail(ErrConfig, "no journal database given", nil)
		return NewExitError(ExitCommandError, "no journal database given")
	}

	// Opening would create a missing database.
	if _, err := os.Stat(path); err != nil {
		err = &journalError{err: fmt.Errorf("journal database: %w", err)}
		_ = formatter.Error(err, nil)
		return WrapExitError(ExitCommandError, "journal not found", err)
	}

	j, err := store.Open(path)
	if err != nil {
		err = &journalError{err: err}
		_ = formatter.Error(err, nil)
		return WrapExitError(ExitCommandError, "failed to open journal", err)
	}
	defer j.Close()

	ctx := cmd.Context()
	var entries []store.Entry
	switch {
	case opts.ID != "":
		var e store.Entry
		if e, err = j.Get(ctx, opts.ID); err == nil {
			entries = []store.Entry{e}
		}
	case opts.Fingerprint != "":
		entries, err = j.ByFingerprint(ctx, opts.Fingerprint)
	default:
		entries, err = j.List(ctx, store.Filter{Dialect: opts.Dialect, Limit: opts.Limit})
	}
	if err != nil {
		err = &journalError{err: err}
		_ = formatter.Error(err, nil)
		return WrapExitError(ExitCommandError, "failed to read journal", err)
	}

	formatter.VerboseLog("%d statement(s) in %s", len(entries), path)
	return formatter.Success(JournalResult{Entries: entries})
}
