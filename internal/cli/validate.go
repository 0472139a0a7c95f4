package cli

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"
)

// ValidateOptions holds flags for the validate command.
type ValidateOptions struct {
	*RootOptions
	Dialect     string
	Version     string
	Descriptors string
}

// ValidationResult is the validate command payload.
type ValidationResult struct {
	Valid     bool      `json:"valid"`
	Documents int       `json:"documents"`
	Errors    []Failure `json:"errors,omitempty"`
}

// WriteText prints a summary followed by every failure.
func (r ValidationResult) WriteText(w io.Writer) error {
	if r.Valid {
		_, err := fmt.Fprintf(w, "✓ %d document(s) valid\n", r.Documents)
		return err
	}
	fmt.Fprintln(w, "✗ Validation failed")
	fmt.Fprintln(w)
	for _, f := range r.Errors {
		if f.Index >= 0 {
			fmt.Fprintf(w, "%s document %d\n", f.Source, f.Index)
		} else {
			fmt.Fprintf(w, "%s\n", f.Source)
		}
		fmt.Fprintf(w, "  %s: %s\n\n", f.Code, f.Message)
	}
	return nil
}

// NewValidateCommand creates the validate command.
func NewValidateCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &ValidateOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "validate <file>...",
		Short: "Validate query documents",
		Long: `Decode, build and render every document of the given YAML files
without printing or journaling statements.

Each document is rendered for its own dialect when it names one, so a dialect
that cannot express a query is reported as a validation error.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runValidate(cmd, opts, args)
		},
	}

	cmd.Flags().StringVarP(&opts.Dialect, "dialect", "d", "", "dialect name")
	cmd.Flags().StringVar(&opts.Version, "version", "", "dialect version (default highest registered)")
	cmd.Flags().StringVar(&opts.Descriptors, "descriptors", "", "directory of CUE dialect overlays")

	return cmd
}

func runValidate(cmd *cobra.Command, opts *ValidateOptions, paths []string) error {
	formatter := newFormatter(opts.RootOptions, cmd.OutOrStdout(), cmd.ErrOrStderr())

	env, err := loadEnvironment(opts.RootOptions, overrides{
		Dialect:     opts.Dialect,
		Version:     opts.Version,
		Descriptors: opts.Descriptors,
	})
	if err != nil {
		_ = formatter.Error(err, nil)
		return WrapExitError(ExitCommandError, "failed to load environment", err)
	}

	stmts, failures := renderFiles(cmd.Context(), env, paths)
	result := ValidationResult{
		Valid:     len(failures) == 0,
		Documents: len(stmts) + len(failures),
		Errors:    failures,
	}
	for _, s := range stmts {
		formatter.VerboseLog("%s document %d: ok (%s@%s)", s.Source, s.Index, s.Dialect, s.Version)
	}

	if result.Valid {
		return formatter.Success(result)
	}

	if formatter.Format == "json" {
		first := failures[0]
		_ = formatter.encode(Response{
			Status: "error",
			Data:   result,
			Error:  &ResponseError{Code: first.Code, Message: first.Message},
		})
	} else {
		_ = result.WriteText(formatter.Writer)
	}
	return NewExitError(ExitFailure, fmt.Sprintf("validation failed with %d error(s)", len(failures)))
}
