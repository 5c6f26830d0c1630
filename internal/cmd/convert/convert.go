// Package convert provides the convert command.
package convert

import (
	"fmt"
	"io"

	"github.com/google/renameio"
	"github.com/spf13/cobra"

	"github.com/Ickli/gostdocx/internal/config"
	"github.com/Ickli/gostdocx/internal/pipeline"
	"github.com/Ickli/gostdocx/internal/view"
)

// EngineFlags are the conversion flags shared by convert and publish.
type EngineFlags struct {
	Styles           string
	Dir              string
	Header           string
	MaxDepth         int
	NoStripIndent    bool
	KeepEmpty        bool
	SeparateCaptions bool
}

// Register adds the engine flags to cmd.
func (f *EngineFlags) Register(cmd *cobra.Command) {
	cmd.Flags().StringVar(&f.Styles, "styles", "", "style sheet overlaid on the built-in styles")
	cmd.Flags().StringVar(&f.Dir, "dir", "", "resource directory (default: directory of the input file)")
	cmd.Flags().StringVar(&f.Header, "header", "", "marker that starts a title line, e.g. \"=\"")
	cmd.Flags().IntVar(&f.MaxDepth, "max-depth", 0, "maximum macro nesting depth")
	cmd.Flags().BoolVar(&f.NoStripIndent, "no-strip-indent", false, "keep indentation of nested content")
	cmd.Flags().BoolVar(&f.KeepEmpty, "keep-empty", false, "pass empty lines to macros instead of skipping them")
	cmd.Flags().BoolVar(&f.SeparateCaptions, "separate-captions", false, "put image captions in their own paragraph")
	_ = cmd.MarkFlagFilename("styles", "yaml", "yml")
	_ = cmd.MarkFlagDirname("dir")
}

// Apply overrides cfg with the flags that were set.
func (f *EngineFlags) Apply(cfg *config.Config) {
	no := false
	if f.Styles != "" {
		cfg.Styles = f.Styles
	}
	if f.Header != "" {
		cfg.Header = f.Header
	}
	if f.MaxDepth > 0 {
		cfg.MaxDepth = f.MaxDepth
	}
	if f.NoStripIndent {
		cfg.StripIndent = &no
	}
	if f.KeepEmpty {
		cfg.SkipEmpty = &no
	}
	if f.SeparateCaptions {
		cfg.StickCaptions = &no
	}
}

type convertOptions struct {
	engine     EngineFlags
	input      string
	dest       string
	format     string
	configPath string
	output     string
	noColor    bool

	stdin  io.Reader
	stdout io.Writer
	stderr io.Writer
}

// NewCmdConvert creates the convert command.
func NewCmdConvert() *cobra.Command {
	opts := &convertOptions{}

	cmd := &cobra.Command{
		Use:   "convert [FILE]",
		Short: "Convert macro markup to a Confluence document",
		Long: `Convert a macro markup file into a Confluence document.

The input is read from FILE, or from standard input when FILE is omitted
or "-". Images, JSON data, style sheets and appended documents are
resolved relative to the input file's directory unless --dir is given.

Output formats:
  storage   Confluence storage format (XHTML), the default
  adf       Atlassian Document Format (JSON)
  markdown  Markdown

Warnings are printed to standard error. Any error aborts the conversion
and nothing is written.`,
		Example: `  # Convert to storage format on stdout
  gostdocx convert report.txt

  # Write ADF to a file
  gostdocx convert report.txt --format adf --dest report.json

  # Read from stdin with a custom style sheet
  cat report.txt | gostdocx convert --styles corporate.yaml`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) > 0 {
				opts.input = args[0]
			}
			opts.configPath, _ = cmd.Flags().GetString("config")
			opts.output, _ = cmd.Flags().GetString("output")
			opts.noColor, _ = cmd.Flags().GetBool("no-color")
			opts.stdin = cmd.InOrStdin()
			opts.stdout = cmd.OutOrStdout()
			opts.stderr = cmd.ErrOrStderr()
			return runConvert(opts)
		},
	}

	cmd.Flags().StringVarP(&opts.format, "format", "F", "", "document format: storage, adf, markdown (default from config)")
	cmd.Flags().StringVarP(&opts.dest, "dest", "d", "", "write the document to this file instead of stdout")
	opts.engine.Register(cmd)
	_ = cmd.RegisterFlagCompletionFunc("format", cobra.FixedCompletions(
		[]string{config.FormatStorage, config.FormatADF, config.FormatMarkdown}, cobra.ShellCompDirectiveNoFileComp))

	return cmd
}

// summary is the json status output of a conversion written to a file.
type summary struct {
	Path      string   `json:"path"`
	Format    string   `json:"format"`
	Documents int      `json:"documents"`
	Warnings  []string `json:"warnings"`
}

func runConvert(opts *convertOptions) error {
	if err := view.ValidateFormat(opts.output); err != nil {
		return err
	}

	cfg, err := pipeline.LoadConfig(opts.configPath)
	if err != nil {
		return err
	}
	opts.engine.Apply(cfg)
	if opts.format != "" {
		cfg.OutputFormat = opts.format
	}

	res, err := pipeline.Convert(cfg, pipeline.Input{
		Path:   opts.input,
		Reader: opts.stdin,
		Dir:    opts.engine.Dir,
		Echo:   opts.stderr,
	})
	if err != nil {
		return err
	}

	data, err := pipeline.Render(res.Document, cfg.Format())
	if err != nil {
		return fmt.Errorf("failed to render %s: %w", cfg.Format(), err)
	}

	renderer := view.NewRenderer(view.Format(opts.output), opts.noColor)
	renderer.SetWriter(opts.stdout)
	renderer.SetErrWriter(opts.stderr)

	warnings := make([]string, 0, len(res.Warnings))
	for _, w := range res.Warnings {
		warnings = append(warnings, w.String())
		renderer.Warning(w.String())
	}

	if opts.dest == "" {
		_, err := opts.stdout.Write(data)
		return err
	}

	if err := renameio.WriteFile(opts.dest, data, 0o644); err != nil {
		return fmt.Errorf("failed to write %s: %w", opts.dest, err)
	}

	if opts.output == string(view.FormatJSON) {
		return renderer.RenderJSON(summary{
			Path:      opts.dest,
			Format:    cfg.Format(),
			Documents: res.Documents,
			Warnings:  warnings,
		})
	}
	renderer.Success(fmt.Sprintf("Wrote %s", opts.dest))
	renderer.RenderKeyValue("Format", cfg.Format())
	renderer.RenderKeyValue("Documents", fmt.Sprint(res.Documents))
	return nil
}
