package configcmd

import (
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/Ickli/gostdocx/internal/config"
)

// NewCmdShow creates the config show command.
func NewCmdShow() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "show",
		Short: "Display current configuration",
		Long:  `Display the effective gostdocx configuration with the source of each value.`,
		Example: `  # Show current config
  gostdocx config show`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			noColor, _ := cmd.Flags().GetBool("no-color")
			return runShow(configPath(cmd), noColor, cmd.OutOrStdout())
		},
	}

	return cmd
}

func runShow(path string, noColor bool, out io.Writer) error {
	if noColor {
		color.NoColor = true
	}

	fileCfg, fileErr := config.Load(path)
	if fileErr != nil {
		fileCfg = config.Defaults()
	}
	cfg, err := config.LoadWithEnv(path)
	if err != nil {
		return err
	}

	bold := color.New(color.Bold)
	dim := color.New(color.Faint)

	printField := func(label, value, fileValue string, envVars ...string) {
		_, _ = bold.Fprintf(out, "%-16s", label+":")
		if value == "" {
			_, _ = dim.Fprintln(out, "-")
			return
		}

		display := value
		if strings.Contains(strings.ToLower(label), "token") && len(value) > 8 {
			display = value[:4] + strings.Repeat("*", len(value)-8) + value[len(value)-4:]
		}
		fmt.Fprintf(out, "%q", display)

		source := "config"
		if fileErr != nil {
			source = "default"
		}
		for _, envVar := range envVars {
			if v := os.Getenv(envVar); v != "" && v == value {
				source = envVar
				break
			}
		}
		if fileValue != value && (source == "config" || source == "default") {
			source = "-"
		}
		_, _ = dim.Fprintf(out, "  (source: %s)\n", source)
	}
	boolField := func(label string, value, fileValue *bool) {
		printField(label, strconv.FormatBool(value != nil && *value), strconv.FormatBool(fileValue != nil && *fileValue))
	}

	syn := cfg.Syntax()
	fileSyn := fileCfg.Syntax()
	printField("Macro open", syn.Open, fileSyn.Open)
	printField("Macro close", syn.Close, fileSyn.Close)
	printField("Comment", syn.Comment, fileSyn.Comment)
	printField("Header", syn.Header, fileSyn.Header)
	printField("Escape", syn.Escape, fileSyn.Escape)
	printField("Indent", syn.Indent, fileSyn.Indent)
	boolField("Strip indent", cfg.StripIndent, fileCfg.StripIndent)
	boolField("Skip empty", cfg.SkipEmpty, fileCfg.SkipEmpty)
	boolField("Stick captions", cfg.StickCaptions, fileCfg.StickCaptions)
	printField("Max depth", strconv.Itoa(cfg.MaxDepth), strconv.Itoa(fileCfg.MaxDepth), "GOSTDOCX_MAX_DEPTH")
	printField("Styles", cfg.Styles, fileCfg.Styles, "GOSTDOCX_STYLES")
	printField("Format", cfg.Format(), fileCfg.Format(), "GOSTDOCX_OUTPUT_FORMAT")

	fmt.Fprintln(out)
	printField("URL", cfg.URL, fileCfg.URL, "GOSTDOCX_URL", "ATLASSIAN_URL")
	printField("Email", cfg.Email, fileCfg.Email, "GOSTDOCX_EMAIL", "ATLASSIAN_EMAIL")
	printField("API Token", cfg.APIToken, fileCfg.APIToken, "GOSTDOCX_API_TOKEN", "ATLASSIAN_API_TOKEN")
	printField("Space", cfg.DefaultSpace, fileCfg.DefaultSpace, "GOSTDOCX_DEFAULT_SPACE")

	fmt.Fprintln(out)
	_, _ = dim.Fprintf(out, "Config file: %s\n", path)
	if fileErr != nil {
		_, _ = dim.Fprintln(out, "(file not found)")
	}

	return nil
}
