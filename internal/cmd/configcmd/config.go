// Package configcmd provides config management commands.
package configcmd

import (
	"github.com/spf13/cobra"

	"github.com/Ickli/gostdocx/internal/config"
)

// NewCmdConfig creates the config command.
func NewCmdConfig() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Manage gostdocx configuration",
		Long:  `Commands for viewing, testing, and clearing gostdocx configuration.`,
	}

	cmd.AddCommand(NewCmdShow())
	cmd.AddCommand(NewCmdTest())
	cmd.AddCommand(NewCmdClear())

	return cmd
}

func configPath(cmd *cobra.Command) string {
	if p, _ := cmd.Flags().GetString("config"); p != "" {
		return p
	}
	return config.DefaultConfigPath()
}

// envVars lists the variables that override the config file.
var envVars = []string{
	"GOSTDOCX_URL", "GOSTDOCX_EMAIL", "GOSTDOCX_API_TOKEN", "GOSTDOCX_DEFAULT_SPACE",
	"GOSTDOCX_STYLES", "GOSTDOCX_OUTPUT_FORMAT", "GOSTDOCX_MAX_DEPTH",
	"ATLASSIAN_URL", "ATLASSIAN_EMAIL", "ATLASSIAN_API_TOKEN",
}
