package configcmd

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/Ickli/gostdocx/api"
	"github.com/Ickli/gostdocx/internal/config"
)

// NewCmdTest creates the config test command.
func NewCmdTest() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "test",
		Short: "Test connectivity with configured credentials",
		Long:  `Test that gostdocx can reach your Confluence instance with the current configuration.`,
		Example: `  # Test connection
  gostdocx config test`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			noColor, _ := cmd.Flags().GetBool("no-color")
			cfg, err := config.LoadWithEnv(configPath(cmd))
			if err != nil {
				return fmt.Errorf("failed to load config: %w (run 'gostdocx init' to configure)", err)
			}
			if err := cfg.ValidateCredentials(); err != nil {
				return fmt.Errorf("invalid config: %w (run 'gostdocx init' to configure)", err)
			}
			return runTest(cmd.Context(), cfg, noColor, cmd.OutOrStdout())
		},
	}

	return cmd
}

func runTest(ctx context.Context, cfg *config.Config, noColor bool, out io.Writer) error {
	if noColor {
		color.NoColor = true
	}
	if ctx == nil {
		ctx = context.Background()
	}
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	green := color.New(color.FgGreen)
	red := color.New(color.FgRed)

	fmt.Fprintf(out, "Testing connection to %s...\n", cfg.URL)

	err := api.NewClient(cfg.URL, cfg.Email, cfg.APIToken).Ping(ctx)
	if err != nil {
		_, _ = red.Fprintln(out, "✗ Connection failed:", err)
		fmt.Fprintln(out, "\nCheck your settings with: gostdocx config show")
		fmt.Fprintln(out, "Reconfigure with: gostdocx init")
		return fmt.Errorf("connection failed: %w", err)
	}

	_, _ = green.Fprintln(out, "✓ Authentication successful")
	fmt.Fprintf(out, "\nAuthenticated as: %s\n", cfg.Email)
	return nil
}
