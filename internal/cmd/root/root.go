// Package root provides the root command for the gostdocx CLI.
package root

import (
	"github.com/spf13/cobra"

	"github.com/Ickli/gostdocx/internal/cmd/completion"
	"github.com/Ickli/gostdocx/internal/cmd/configcmd"
	"github.com/Ickli/gostdocx/internal/cmd/convert"
	initcmd "github.com/Ickli/gostdocx/internal/cmd/init"
	"github.com/Ickli/gostdocx/internal/cmd/macros"
	"github.com/Ickli/gostdocx/internal/cmd/publish"
	"github.com/Ickli/gostdocx/internal/cmd/styles"
	"github.com/Ickli/gostdocx/internal/version"
)

// NewCmdRoot creates the root command for gostdocx.
func NewCmdRoot() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "gostdocx",
		Short: "Turn macro-annotated text into styled documents",
		Long: `gostdocx converts plain text annotated with (macro ...) lines into
styled documents: Confluence storage XHTML, Atlassian Document Format
or Markdown. Converted documents can be published to Confluence Cloud.

Get started by running: gostdocx init`,
		SilenceUsage:  true,
		SilenceErrors: true,
		Version:       version.Version,
	}

	// Global flags
	cmd.PersistentFlags().StringP("config", "c", "", "config file (default: ~/.config/gostdocx/config.yml)")
	cmd.PersistentFlags().StringP("output", "o", "table", "status output format: table, json, plain")
	cmd.PersistentFlags().Bool("no-color", false, "disable colored output")

	cmd.SetVersionTemplate("gostdocx version {{.Version}} (commit: " + version.Commit + ", built: " + version.Date + ")\n")

	cmd.AddCommand(initcmd.NewCmdInit())
	cmd.AddCommand(convert.NewCmdConvert())
	cmd.AddCommand(publish.NewCmdPublish())
	cmd.AddCommand(macros.NewCmdMacros())
	cmd.AddCommand(styles.NewCmdStyles())
	cmd.AddCommand(configcmd.NewCmdConfig())
	cmd.AddCommand(completion.NewCmdCompletion())

	return cmd
}
