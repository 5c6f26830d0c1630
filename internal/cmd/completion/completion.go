// Package completion provides shell completion generation commands.
package completion

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"
)

type shell struct {
	name    string
	install string
	gen     func(root *cobra.Command, w io.Writer) error
}

var shells = []shell{
	{
		name: "bash",
		install: `  # current session
  source <(gostdocx completion bash)

  # every session (Linux)
  gostdocx completion bash > /etc/bash_completion.d/gostdocx`,
		gen: func(root *cobra.Command, w io.Writer) error { return root.GenBashCompletionV2(w, true) },
	},
	{
		name: "zsh",
		install: `  # requires "autoload -U compinit; compinit" in ~/.zshrc
  gostdocx completion zsh > "${fpath[1]}/_gostdocx"`,
		gen: func(root *cobra.Command, w io.Writer) error { return root.GenZshCompletion(w) },
	},
	{
		name: "fish",
		install: `  gostdocx completion fish > ~/.config/fish/completions/gostdocx.fish`,
		gen:     func(root *cobra.Command, w io.Writer) error { return root.GenFishCompletion(w, true) },
	},
	{
		name: "powershell",
		install: `  gostdocx completion powershell | Out-String | Invoke-Expression`,
		gen:     func(root *cobra.Command, w io.Writer) error { return root.GenPowerShellCompletionWithDesc(w) },
	},
}

// NewCmdCompletion creates the completion command.
func NewCmdCompletion() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "completion",
		Short: "Generate shell completion scripts",
		Long: `Generate shell completion scripts for gostdocx.

These scripts enable tab-completion for commands, flags, and arguments,
including document formats and style names.`,
	}

	for _, sh := range shells {
		cmd.AddCommand(newShellCmd(sh))
	}
	return cmd
}

func newShellCmd(sh shell) *cobra.Command {
	return &cobra.Command{
		Use:     sh.name,
		Short:   fmt.Sprintf("Generate %s completion script", sh.name),
		Long:    fmt.Sprintf("Generate the %s completion script for gostdocx.\n\nTo install:\n\n%s", sh.name, sh.install),
		Args:    cobra.NoArgs,
		Example: sh.install,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return sh.gen(cmd.Root(), cmd.OutOrStdout())
		},
	}
}
