package doc

import (
	"errors"
	"testing"
	"testing/fstest"

	"github.com/Ickli/gostdocx/pkg/style"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDocument_AddParagraph(t *testing.T) {
	d := New(style.Default())

	p, err := d.AddParagraph("hello", "normal")
	require.NoError(t, err)
	assert.Equal(t, "hello", p.Text())
	assert.Equal(t, "normal", p.Style)
	assert.Len(t, d.Paragraphs(), 1)

	_, err = d.AddParagraph("x", "no-such-style")
	assert.True(t, errors.Is(err, ErrUnknownStyle))
	assert.Len(t, d.Paragraphs(), 1)
}

func TestDocument_AddParagraphEmpty(t *testing.T) {
	d := New(style.Default())
	p, err := d.AddParagraph("", "normal")
	require.NoError(t, err)
	assert.Empty(t, p.Runs)
}

func TestDocument_AddRun(t *testing.T) {
	d := New(style.Default())

	_, err := d.AddRun("orphan", "")
	assert.ErrorIs(t, err, ErrNoParagraph)

	_, err = d.AddParagraph("first", "normal")
	require.NoError(t, err)

	r, err := d.AddRun(" more", "bold")
	require.NoError(t, err)
	assert.Equal(t, "bold", r.Style)
	assert.Equal(t, "first more", d.Paragraphs()[0].Text())

	d.AddPageBreak()
	_, err = d.AddRun(" late", "")
	assert.ErrorIs(t, err, ErrNoParagraph)

	_, err = d.AddParagraph("second", "normal")
	require.NoError(t, err)
	_, err = d.AddTable(1, 1, "")
	require.NoError(t, err)
	_, err = d.AddRun(" late", "")
	assert.ErrorIs(t, err, ErrNoParagraph)
	assert.Equal(t, "second", d.Paragraphs()[1].Text())
}

func TestDocument_HeadingsAndTOC(t *testing.T) {
	d := New(nil)
	assert.False(t, d.HasTOC())
	d.AddHeading("Intro", 0)
	d.AddTOC()
	assert.True(t, d.HasTOC())
	assert.Len(t, d.Blocks, 2)
}

func TestTable_Cells(t *testing.T) {
	d := New(style.Default())

	_, err := d.AddTable(0, 2, "")
	assert.Error(t, err)

	tbl, err := d.AddTable(2, 3, "table")
	require.NoError(t, err)

	c, err := tbl.Cell(1, 2)
	require.NoError(t, err)
	_, err = c.AddRun("x", "")
	assert.ErrorIs(t, err, ErrNoParagraph)

	_, err = c.AddParagraph("value", "table-text")
	require.NoError(t, err)
	_, err = c.AddRun("!", "")
	require.NoError(t, err)
	assert.Equal(t, "value!", c.Paragraphs()[0].Text())

	_, err = tbl.Cell(2, 0)
	assert.Error(t, err)
	_, err = tbl.Cell(0, -1)
	assert.Error(t, err)

	// Cell paragraphs are not top-level paragraphs.
	assert.Empty(t, d.Paragraphs())
}

func TestParseLength(t *testing.T) {
	tests := []struct {
		in      string
		want    Length
		wantErr bool
	}{
		{in: "2", want: 2 * Centimetre},
		{in: "2.5cm", want: 900000},
		{in: "10mm", want: Centimetre},
		{in: "1in", want: Inch},
		{in: "12pt", want: 12 * Point},
		{in: "96px", want: Inch},
		{in: "500emu", want: 500},
		{in: "None", want: 0},
		{in: "", want: 0},
		{in: "wide", wantErr: true},
		{in: "-3", wantErr: true},
		{in: "0", wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseLength(tt.in)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestLength_Pixels(t *testing.T) {
	assert.Equal(t, 96, Inch.Pixels())
	assert.Equal(t, 38, Centimetre.Pixels())
}

func TestCompose(t *testing.T) {
	a := New(style.Default())
	_, _ = a.AddParagraph("one", "normal")
	b := New(nil)
	b.AddHeading("two", 1)
	c := New(nil)
	_, _ = c.AddParagraph("three", "")

	out := Compose(a, nil, b, c)
	require.Len(t, out.Blocks, 5)
	assert.IsType(t, &Paragraph{}, out.Blocks[0])
	assert.IsType(t, &PageBreak{}, out.Blocks[1])
	assert.IsType(t, &Heading{}, out.Blocks[2])
	assert.IsType(t, &PageBreak{}, out.Blocks[3])
	assert.IsType(t, &Paragraph{}, out.Blocks[4])
	assert.Same(t, a.Styles, out.Styles)

	assert.True(t, Compose().Empty())
}

func TestLoadFile(t *testing.T) {
	fsys := fstest.MapFS{
		"notes.md":  {Data: []byte("# Notes\n\nSome *text*.\n")},
		"page.json": {Data: []byte(`{"type":"doc","version":1,"content":[{"type":"paragraph","content":[{"type":"text","text":"hi"}]}]}`)},
		"bad.json":  {Data: []byte(`{"type":"paragraph"}`)},
		"data.txt":  {Data: []byte("plain")},
	}
	sheet := style.Default()

	d, err := LoadFile(fsys, "notes.md", sheet)
	require.NoError(t, err)
	require.Len(t, d.Blocks, 2)
	assert.Equal(t, &Heading{Text: "Notes", Level: 1}, d.Blocks[0])

	d, err = LoadFile(fsys, "page.json", sheet)
	require.NoError(t, err)
	require.Len(t, d.Paragraphs(), 1)
	assert.Equal(t, "hi", d.Paragraphs()[0].Text())

	_, err = LoadFile(fsys, "bad.json", sheet)
	assert.ErrorContains(t, err, `root node is "paragraph"`)

	_, err = LoadFile(fsys, "data.txt", sheet)
	assert.ErrorContains(t, err, "unsupported document type")

	_, err = LoadFile(fsys, "missing.md", sheet)
	assert.Error(t, err)
}
