package macro

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClassify(t *testing.T) {
	syn := DefaultSyntax()
	syn.Header = "="

	tests := []struct {
		name  string
		raw   string
		depth int
		want  Line
	}{
		{
			name: "plain",
			raw:  "hello\n",
			want: Line{Raw: "hello", Text: "hello", Kind: PlainText},
		},
		{
			name: "empty",
			raw:  "\n",
			want: Line{Kind: PlainText, Empty: true},
		},
		{
			name: "crlf",
			raw:  "hello\r\n",
			want: Line{Raw: "hello", Text: "hello", Kind: PlainText},
		},
		{
			name: "open",
			raw:  "(paragraph-styled normal",
			want: Line{Raw: "(paragraph-styled normal", Text: "(paragraph-styled normal", Kind: Macro, Form: Open},
		},
		{
			name: "one line",
			raw:  "(page-break)  ",
			want: Line{Raw: "(page-break)  ", Text: "(page-break)  ", Kind: Macro, Form: OneLine},
		},
		{
			name:  "close with indent",
			raw:   "    )",
			depth: 1,
			want:  Line{Raw: "    )", Text: ")", Kind: Macro, Form: Close},
		},
		{
			name: "comment",
			raw:  "# note",
			want: Line{Raw: "# note", Text: "# note", Kind: Comment},
		},
		{
			name: "header",
			raw:  "= Title",
			want: Line{Raw: "= Title", Text: "= Title", Kind: Header},
		},
		{
			name: "escaped open",
			raw:  `\(not a macro)`,
			want: Line{Raw: `\(not a macro)`, Text: "(not a macro)", Kind: PlainText, Escaped: true},
		},
		{
			name: "escaped close",
			raw:  `\)`,
			want: Line{Raw: `\)`, Text: ")", Kind: PlainText, Escaped: true},
		},
		{
			name: "escaped empty is not empty",
			raw:  `\`,
			want: Line{Raw: `\`, Kind: PlainText, Escaped: true},
		},
		{
			name:  "dedent only up to depth",
			raw:   "            deep",
			depth: 2,
			want:  Line{Raw: "            deep", Text: "    deep", Kind: PlainText},
		},
		{
			name:  "escape after indent",
			raw:   `    \# hash`,
			depth: 1,
			want:  Line{Raw: `    \# hash`, Text: "# hash", Kind: PlainText, Escaped: true},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := syn.Classify(tt.raw, tt.depth, true)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestClassify_NoStrip(t *testing.T) {
	got := DefaultSyntax().Classify("    )", 1, false)
	assert.Equal(t, PlainText, got.Kind)
	assert.Equal(t, "    )", got.Text)
}

func TestClassify_HeaderDisabled(t *testing.T) {
	got := DefaultSyntax().Classify("= Title", 0, true)
	assert.Equal(t, PlainText, got.Kind)
}

func TestParseArgs(t *testing.T) {
	syn := DefaultSyntax()

	tests := []struct {
		name string
		text string
		want []string
	}{
		{name: "name only", text: "(page-break", want: []string{"page-break"}},
		{name: "one line", text: "(page-break)", want: []string{"page-break"}},
		{name: "tabs and vtabs", text: "(image\ta.png\v2 \t 3", want: []string{"image", "a.png", "2", "3"}},
		{name: "quoted", text: `(paragraph-styled "my style")`, want: []string{"paragraph-styled", "my style"}},
		{name: "empty quoted", text: `(echo "")`, want: []string{"echo", ""}},
		{name: "concatenated", text: `(echo a"b c"d)`, want: []string{"echo", "ab cd"}},
		{name: "close inside quotes", text: `(echo "x)"`, want: []string{"echo", "x)"}},
		{name: "trailing space", text: "(toc)   ", want: []string{"toc"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := syn.ParseArgs(tt.text)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestParseArgs_Errors(t *testing.T) {
	syn := DefaultSyntax()

	_, err := syn.ParseArgs(`(echo "open`)
	assert.ErrorIs(t, err, ErrSyntax)
	assert.ErrorContains(t, err, "unterminated quoted argument")

	_, err = syn.ParseArgs("()")
	assert.ErrorIs(t, err, ErrSyntax)

	_, err = syn.ParseArgs("(   ")
	assert.ErrorIs(t, err, ErrSyntax)
}

func TestSyntax_Validate(t *testing.T) {
	assert.NoError(t, DefaultSyntax().Validate())

	bad := DefaultSyntax()
	bad.Close = bad.Open
	assert.Error(t, bad.Validate())

	bad = DefaultSyntax()
	bad.Indent = "ab"
	assert.Error(t, bad.Validate())

	bad = DefaultSyntax()
	bad.Comment = "("
	assert.Error(t, bad.Validate())
}

func TestSyntax_Custom(t *testing.T) {
	syn := Syntax{Open: "[[", Close: "]]", Comment: "//", Escape: "!", Indent: "\t"}
	require.NoError(t, syn.Validate())

	l := syn.Classify("\t[[toc]]", 1, true)
	assert.Equal(t, Macro, l.Kind)
	assert.Equal(t, OneLine, l.Form)

	args, err := syn.ParseArgs(l.Text)
	require.NoError(t, err)
	assert.Equal(t, []string{"toc"}, args)

	assert.Equal(t, Comment, syn.Classify("// note", 0, true).Kind)
	assert.Equal(t, PlainText, syn.Classify("![[x", 0, true).Kind)
}
