package completion

import (
	"bytes"
	"testing"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestRoot() *cobra.Command {
	root := &cobra.Command{Use: "gostdocx"}
	root.AddCommand(&cobra.Command{Use: "convert", Run: func(*cobra.Command, []string) {}})
	root.AddCommand(NewCmdCompletion())
	return root
}

func TestCompletion_Shells(t *testing.T) {
	tests := []struct {
		shell  string
		marker string
	}{
		{"bash", "bash completion V2 for gostdocx"},
		{"zsh", "compdef"},
		{"fish", "complete -c gostdocx"},
		{"powershell", "Register-ArgumentCompleter"},
	}

	for _, tt := range tests {
		t.Run(tt.shell, func(t *testing.T) {
			root := newTestRoot()
			var buf bytes.Buffer
			root.SetOut(&buf)
			root.SetArgs([]string{"completion", tt.shell})

			require.NoError(t, root.Execute())
			assert.Contains(t, buf.String(), tt.marker)
		})
	}
}

func TestCompletion_Subcommands(t *testing.T) {
	cmd := NewCmdCompletion()
	var names []string
	for _, sub := range cmd.Commands() {
		names = append(names, sub.Name())
		assert.Contains(t, sub.Long, "gostdocx completion "+sub.Name())
	}
	assert.ElementsMatch(t, []string{"bash", "zsh", "fish", "powershell"}, names)
}

func TestCompletion_RejectsExtraArgs(t *testing.T) {
	for _, sh := range shells {
		t.Run(sh.name, func(t *testing.T) {
			root := newTestRoot()
			root.SetOut(new(bytes.Buffer))
			root.SetErr(new(bytes.Buffer))
			root.SetArgs([]string{"completion", sh.name, "unexpected-arg"})

			err := root.Execute()
			require.Error(t, err)
			assert.Contains(t, err.Error(), "unknown command")
		})
	}
}
