// Package init provides the init command for gostdocx.
package init

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/charmbracelet/huh"
	"github.com/spf13/cobra"

	"github.com/Ickli/gostdocx/api"
	"github.com/Ickli/gostdocx/internal/config"
)

type initOptions struct {
	configPath string
	url        string
	email      string
	noVerify   bool
	out        io.Writer
}

// NewCmdInit creates the init command.
func NewCmdInit() *cobra.Command {
	opts := &initOptions{}

	cmd := &cobra.Command{
		Use:   "init",
		Short: "Initialize gostdocx configuration",
		Long: `Initialize gostdocx with conversion defaults and, optionally, your
Confluence Cloud credentials for 'gostdocx publish'.

The configuration is saved to ~/.config/gostdocx/config.yml unless
--config names another file.

To generate an API token:
  1. Go to https://id.atlassian.com/manage-profile/security/api-tokens
  2. Click "Create API token"
  3. Copy the token (it won't be shown again)`,
		Example: `  # Interactive setup
  gostdocx init

  # Pre-populate URL
  gostdocx init --url https://mycompany.atlassian.net`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			opts.configPath, _ = cmd.Flags().GetString("config")
			opts.out = cmd.OutOrStdout()
			return runInit(opts)
		},
	}

	cmd.Flags().StringVar(&opts.url, "url", "", "Confluence URL (e.g., https://mycompany.atlassian.net)")
	cmd.Flags().StringVar(&opts.email, "email", "", "Your Atlassian account email")
	cmd.Flags().BoolVar(&opts.noVerify, "no-verify", false, "Skip connection verification")

	return cmd
}

func runInit(opts *initOptions) error {
	configPath := opts.configPath
	if configPath == "" {
		configPath = config.DefaultConfigPath()
	}

	if _, err := os.Stat(configPath); err == nil {
		var overwrite bool
		err := huh.NewConfirm().
			Title("Configuration already exists").
			Description(fmt.Sprintf("Overwrite %s?", configPath)).
			Value(&overwrite).
			Run()
		if err != nil {
			return err
		}
		if !overwrite {
			fmt.Fprintln(opts.out, "Initialization cancelled.")
			return nil
		}
	}

	cfg := config.Defaults()
	cfg.URL = opts.url
	cfg.Email = opts.email
	var publish bool

	form := huh.NewForm(
		huh.NewGroup(
			huh.NewSelect[string]().
				Title("Output format").
				Description("Format 'gostdocx convert' writes by default").
				Options(
					huh.NewOption("Confluence storage (XHTML)", config.FormatStorage),
					huh.NewOption("Atlassian Document Format (JSON)", config.FormatADF),
					huh.NewOption("Markdown", config.FormatMarkdown),
				).
				Value(&cfg.OutputFormat),

			huh.NewInput().
				Title("Style sheet (optional)").
				Description("YAML style sheet overlaid on the built-in styles").
				Placeholder("~/styles/corporate.yaml").
				Value(&cfg.Styles),

			huh.NewInput().
				Title("Header marker (optional)").
				Description("Lines starting with this marker become titles").
				Placeholder("=").
				Value(&cfg.Header),

			huh.NewConfirm().
				Title("Configure Confluence publishing?").
				Value(&publish),
		),
		huh.NewGroup(
			huh.NewInput().
				Title("Confluence URL").
				Description("Your Confluence Cloud instance URL").
				Placeholder("https://mycompany.atlassian.net").
				Value(&cfg.URL).
				Validate(required("URL")),

			huh.NewInput().
				Title("Email").
				Description("Your Atlassian account email").
				Placeholder("you@example.com").
				Value(&cfg.Email).
				Validate(required("email")),

			huh.NewInput().
				Title("API Token").
				Description("Generate at: id.atlassian.com/manage-profile/security/api-tokens").
				EchoMode(huh.EchoModePassword).
				Value(&cfg.APIToken).
				Validate(required("API token")),

			huh.NewInput().
				Title("Default Space (optional)").
				Description("Space key 'gostdocx publish' uses by default").
				Placeholder("MYSPACE").
				Value(&cfg.DefaultSpace),
		).WithHideFunc(func() bool { return !publish }),
	)

	if err := form.Run(); err != nil {
		return err
	}

	return finish(cfg, configPath, publish && !opts.noVerify, opts.out)
}

func required(what string) func(string) error {
	return func(s string) error {
		if s == "" {
			return fmt.Errorf("%s is required", what)
		}
		return nil
	}
}

// finish validates, optionally verifies and saves the collected settings.
func finish(cfg *config.Config, configPath string, verify bool, out io.Writer) error {
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}
	if cfg.URL != "" {
		cfg.NormalizeURL()
		if err := cfg.ValidateCredentials(); err != nil {
			return fmt.Errorf("invalid configuration: %w", err)
		}
	}

	if verify {
		fmt.Fprint(out, "Verifying connection... ")
		if err := verifyConnection(cfg); err != nil {
			fmt.Fprintln(out, "failed!")
			return fmt.Errorf("connection verification failed: %w", err)
		}
		fmt.Fprintln(out, "success!")
	}

	if err := cfg.Save(configPath); err != nil {
		return err
	}

	fmt.Fprintf(out, "\nConfiguration saved to %s\n", configPath)
	fmt.Fprintln(out, "\nYou're all set! Try running:")
	fmt.Fprintln(out, "  gostdocx macros")
	fmt.Fprintln(out, "  gostdocx convert <FILE>")
	return nil
}

func verifyConnection(cfg *config.Config) error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	err := api.NewClient(cfg.URL, cfg.Email, cfg.APIToken).Ping(ctx)
	var apiErr *api.ErrorResponse
	if errors.As(err, &apiErr) {
		switch apiErr.StatusCode {
		case 401:
			return fmt.Errorf("authentication failed - check your email and API token")
		case 403:
			return fmt.Errorf("access denied - check your permissions")
		}
		return fmt.Errorf("unexpected status code: %d", apiErr.StatusCode)
	}
	return err
}
