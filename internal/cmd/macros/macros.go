// Package macros provides the macros command.
package macros

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/Ickli/gostdocx/internal/config"
	"github.com/Ickli/gostdocx/internal/view"
	"github.com/Ickli/gostdocx/pkg/macro"
)

type macrosOptions struct {
	configPath string
	output     string
	noColor    bool
	out        io.Writer
}

// NewCmdMacros creates the macros command.
func NewCmdMacros() *cobra.Command {
	opts := &macrosOptions{}

	cmd := &cobra.Command{
		Use:   "macros",
		Short: "List the available macros",
		Long: `List every macro the converter understands together with its arguments.

The usage column is shown with the macro delimiters from your
configuration, so it can be pasted into a document as is.`,
		Example: `  # List macros
  gostdocx macros

  # Names only, one per line
  gostdocx macros -o plain | cut -f1`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			opts.configPath, _ = cmd.Flags().GetString("config")
			opts.output, _ = cmd.Flags().GetString("output")
			opts.noColor, _ = cmd.Flags().GetBool("no-color")
			opts.out = cmd.OutOrStdout()
			return runMacros(opts)
		},
	}

	return cmd
}

func runMacros(opts *macrosOptions) error {
	if err := view.ValidateFormat(opts.output); err != nil {
		return err
	}

	path := opts.configPath
	if path == "" {
		path = config.DefaultConfigPath()
	}
	cfg, err := config.LoadWithEnv(path)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	syn := cfg.Syntax()

	reg, err := macro.NewRegistry()
	if err != nil {
		return err
	}

	var rows [][]string
	for _, name := range reg.Names() {
		usage := macro.Usage(name)
		if usage == "" {
			usage = name
		}
		rows = append(rows, []string{name, syn.Open + usage + syn.Close})
	}

	renderer := view.NewRenderer(view.Format(opts.output), opts.noColor)
	renderer.SetWriter(opts.out)
	renderer.RenderTable([]string{"MACRO", "USAGE"}, rows)
	return nil
}
