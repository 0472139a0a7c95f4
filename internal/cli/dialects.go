package cli

import (
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"
)

// DialectsOptions holds flags for the dialects command.
type DialectsOptions struct {
	*RootOptions
	Descriptors string
}

// DialectInfo describes one registered dialect.
type DialectInfo struct {
	Name      string   `json:"name"`
	Version   string   `json:"version"`
	Templates []string `json:"templates"`
	Default   bool     `json:"default,omitempty"` // selected by the current configuration
}

// DialectList is the dialects command payload.
type DialectList struct {
	Dialects []DialectInfo `json:"dialects"`
}

// WriteText prints one dialect per line, marking the configured default.
func (l DialectList) WriteText(w io.Writer) error {
	for _, d := range l.Dialects {
		mark := " "
		if d.Default {
			mark = "*"
		}
		if _, err := fmt.Fprintf(w, "%s %s@%s  %s\n", mark, d.Name, d.Version, strings.Join(d.Templates, ",")); err != nil {
			return err
		}
	}
	return nil
}

// NewDialectsCommand creates the dialects command.
func NewDialectsCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &DialectsOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "dialects",
		Short: "List registered dialects",
		Long: `List the built-in dialects and every overlay derived from the descriptor
directory, with the templates each one defines. The dialect the current
configuration selects is marked with "*".`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runDialects(cmd, opts)
		},
	}

	cmd.Flags().StringVar(&opts.Descriptors, "descriptors", "", "directory of CUE dialect overlays")

	return cmd
}

func runDialects(cmd *cobra.Command, opts *DialectsOptions) error {
	formatter := newFormatter(opts.RootOptions, cmd.OutOrStdout(), cmd.ErrOrStderr())

	env, err := loadEnvironment(opts.RootOptions, overrides{Descriptors: opts.Descriptors})
	if err != nil {
		_ = formatter.Error(err, nil)
		return WrapExitError(ExitCommandError, "failed to load environment", err)
	}

	// An unknown configured dialect still lists the registry.
	selected := ""
	if d, err := env.registry.Lookup(env.cfg.Dialect, env.cfg.Version); err == nil {
		selected = d.String()
	} else {
		formatter.VerboseLog("configured dialect: %v", err)
	}

	var list DialectList
	for _, d := range env.registry.Dialects() {
		list.Dialects = append(list.Dialects, DialectInfo{
			Name:      d.Name(),
			Version:   d.Version(),
			Templates: d.TemplateNames(),
			Default:   d.String() == selected,
		})
	}
	return formatter.Success(list)
}
