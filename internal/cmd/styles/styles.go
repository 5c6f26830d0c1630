// Package styles provides the styles command.
package styles

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/Ickli/gostdocx/internal/pipeline"
	"github.com/Ickli/gostdocx/internal/view"
	"github.com/Ickli/gostdocx/pkg/style"
)

type stylesOptions struct {
	sheet      string
	configPath string
	output     string
	noColor    bool
	out        io.Writer
}

// NewCmdStyles creates the styles command.
func NewCmdStyles() *cobra.Command {
	opts := &stylesOptions{}

	cmd := &cobra.Command{
		Use:   "styles",
		Short: "List the styles documents can use",
		Long: `List the built-in styles, overlaid with the configured style sheet
or the one given by --styles, with inherited formatting resolved.`,
		Example: `  # Built-in and configured styles
  gostdocx styles

  # Check a style sheet before converting with it
  gostdocx styles --styles corporate.yaml`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			opts.configPath, _ = cmd.Flags().GetString("config")
			opts.output, _ = cmd.Flags().GetString("output")
			opts.noColor, _ = cmd.Flags().GetBool("no-color")
			opts.out = cmd.OutOrStdout()
			return runStyles(opts)
		},
	}

	cmd.Flags().StringVar(&opts.sheet, "styles", "", "style sheet overlaid on the built-in styles")

	return cmd
}

func runStyles(opts *stylesOptions) error {
	if err := view.ValidateFormat(opts.output); err != nil {
		return err
	}

	cfg, err := pipeline.LoadConfig(opts.configPath)
	if err != nil {
		return err
	}
	if opts.sheet != "" {
		cfg.Styles = opts.sheet
	}

	sheet, err := pipeline.LoadStyles(cfg.Styles)
	if err != nil {
		return err
	}

	var rows [][]string
	for _, name := range sheet.Names() {
		st, err := sheet.Resolve(name)
		if err != nil {
			return err
		}
		rows = append(rows, []string{name, kind(st), st.BaseStyle, font(st.Font)})
	}

	renderer := view.NewRenderer(view.Format(opts.output), opts.noColor)
	renderer.SetWriter(opts.out)
	renderer.RenderTable([]string{"NAME", "KIND", "BASE", "FONT"}, rows)
	return nil
}

func kind(st style.Style) string {
	switch {
	case st.HeadingLevel > 0:
		return "heading " + strconv.Itoa(st.HeadingLevel)
	case st.Paragraph:
		return "paragraph"
	}
	return "character"
}

func font(f style.Font) string {
	var parts []string
	if f.Name != "" {
		parts = append(parts, f.Name)
	}
	if f.Size > 0 {
		parts = append(parts, fmt.Sprintf("%gpt", f.Size))
	}
	if style.IsSet(f.Bold) {
		parts = append(parts, "bold")
	}
	if style.IsSet(f.Italic) {
		parts = append(parts, "italic")
	}
	return strings.Join(parts, " ")
}
