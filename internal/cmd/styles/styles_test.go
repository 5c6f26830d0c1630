package styles

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func run(t *testing.T, opts *stylesOptions) (string, error) {
	t.Helper()
	var out bytes.Buffer
	opts.out = &out
	opts.noColor = true
	if opts.configPath == "" {
		opts.configPath = filepath.Join(t.TempDir(), "missing.yml")
	}
	err := runStyles(opts)
	return out.String(), err
}

func TestRunStyles_Defaults(t *testing.T) {
	t.Setenv("GOSTDOCX_STYLES", "")
	s, err := run(t, &stylesOptions{output: "plain"})
	require.NoError(t, err)

	assert.Contains(t, s, "heading-3\theading 3\theading-2\tTimes New Roman 14pt bold italic\n")
	assert.Contains(t, s, "bold\tcharacter\t\tbold\n")
	assert.Contains(t, s, "code\tparagraph\tnormal\tCourier New 12pt\n")
}

func TestRunStyles_Overlay(t *testing.T) {
	t.Setenv("GOSTDOCX_STYLES", "")
	sheet := filepath.Join(t.TempDir(), "corp.yaml")
	require.NoError(t, os.WriteFile(sheet, []byte(`
quote:
  is_paragraph: true
  base_style: normal
  font:
    italic: true
code:
  is_paragraph: true
  base_style: normal
  font:
    name: Consolas
`), 0o644))

	s, err := run(t, &stylesOptions{sheet: sheet, output: "plain"})
	require.NoError(t, err)
	assert.Contains(t, s, "quote\tparagraph\tnormal\tTimes New Roman 14pt italic\n")
	assert.Contains(t, s, "code\tparagraph\tnormal\tConsolas 14pt\n")
}

func TestRunStyles_Errors(t *testing.T) {
	t.Setenv("GOSTDOCX_STYLES", "")
	sheet := filepath.Join(t.TempDir(), "bad.yaml")
	require.NoError(t, os.WriteFile(sheet, []byte("orphan:\n  is_paragraph: true\n  base_style: nowhere\n"), 0o644))

	_, err := run(t, &stylesOptions{sheet: sheet})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "nowhere")

	_, err = run(t, &stylesOptions{output: "xml"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid output format")
}
