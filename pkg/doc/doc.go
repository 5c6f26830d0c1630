// Package doc is the in-memory rich document produced by the macro engine.
//
// A Document is a flat sequence of blocks (paragraphs, headings, tables,
// page breaks and table-of-contents markers). Paragraphs are made of runs,
// each carrying text or an image and an optional character style.
package doc

import (
	"errors"
	"fmt"
	"strings"

	"github.com/Ickli/gostdocx/pkg/style"
)

// Errors returned by document operations.
var (
	ErrUnknownStyle = errors.New("unknown style")
	ErrNoParagraph  = errors.New("no paragraph to attach to")
)

// Block is one top-level element of a document.
type Block interface {
	block()
}

// Document is an ordered list of blocks rendered with a style sheet.
type Document struct {
	Styles *style.Sheet
	Blocks []Block
}

// New creates an empty document. A nil sheet accepts any style name.
func New(sheet *style.Sheet) *Document {
	return &Document{Styles: sheet}
}

// Paragraph is a styled sequence of runs.
type Paragraph struct {
	Style string
	Runs  []*Run
}

// Run is a piece of text, or an image, within a paragraph.
type Run struct {
	Text  string
	Style string
	Image *Image
}

// Heading is a document heading. Level 0 is the title.
type Heading struct {
	Text  string
	Level int
}

// PageBreak starts a new page.
type PageBreak struct{}

// TOC marks where an auto-generated table of contents goes.
type TOC struct{}

func (*Paragraph) block() {}
func (*Heading) block()   {}
func (*Table) block()     {}
func (*PageBreak) block() {}
func (*TOC) block()       {}

// Text returns the concatenated text of all runs.
func (p *Paragraph) Text() string {
	var b strings.Builder
	for _, r := range p.Runs {
		b.WriteString(r.Text)
	}
	return b.String()
}

// AddRun appends a text run.
func (p *Paragraph) AddRun(text, style string) *Run {
	r := &Run{Text: text, Style: style}
	p.Runs = append(p.Runs, r)
	return r
}

// AddImage appends an image run.
func (p *Paragraph) AddImage(img *Image) *Run {
	r := &Run{Image: img}
	p.Runs = append(p.Runs, r)
	return r
}

func checkStyle(sheet *style.Sheet, name string) error {
	if sheet == nil || name == "" || sheet.Has(name) {
		return nil
	}
	return fmt.Errorf("%w %q", ErrUnknownStyle, name)
}

func newParagraph(sheet *style.Sheet, text, styleName string) (*Paragraph, error) {
	if err := checkStyle(sheet, styleName); err != nil {
		return nil, err
	}
	p := &Paragraph{Style: styleName}
	if text != "" {
		p.AddRun(text, "")
	}
	return p, nil
}

func addRun(sheet *style.Sheet, last *Paragraph, text, styleName string) (*Run, error) {
	if last == nil {
		return nil, ErrNoParagraph
	}
	if err := checkStyle(sheet, styleName); err != nil {
		return nil, err
	}
	return last.AddRun(text, styleName), nil
}

// AddParagraph appends a paragraph holding text in the given style.
func (d *Document) AddParagraph(text, styleName string) (*Paragraph, error) {
	p, err := newParagraph(d.Styles, text, styleName)
	if err != nil {
		return nil, err
	}
	d.Blocks = append(d.Blocks, p)
	return p, nil
}

// AddRun appends a run to the last block, which must be a paragraph.
func (d *Document) AddRun(text, styleName string) (*Run, error) {
	return addRun(d.Styles, d.lastParagraph(), text, styleName)
}

// Paragraphs returns the top-level paragraphs in order.
func (d *Document) Paragraphs() []*Paragraph {
	var ps []*Paragraph
	for _, b := range d.Blocks {
		if p, ok := b.(*Paragraph); ok {
			ps = append(ps, p)
		}
	}
	return ps
}

func (d *Document) lastParagraph() *Paragraph {
	if n := len(d.Blocks); n > 0 {
		p, _ := d.Blocks[n-1].(*Paragraph)
		return p
	}
	return nil
}

// AddHeading appends a heading.
func (d *Document) AddHeading(text string, level int) *Heading {
	h := &Heading{Text: text, Level: level}
	d.Blocks = append(d.Blocks, h)
	return h
}

// AddTable appends an empty rows x cols table.
func (d *Document) AddTable(rows, cols int, styleName string) (*Table, error) {
	if rows < 1 || cols < 1 {
		return nil, fmt.Errorf("table must have at least one row and column, got %dx%d", rows, cols)
	}
	if err := checkStyle(d.Styles, styleName); err != nil {
		return nil, err
	}
	t := &Table{Rows: rows, Cols: cols, Style: styleName, cells: make([][]*Cell, rows)}
	for i := range t.cells {
		t.cells[i] = make([]*Cell, cols)
		for j := range t.cells[i] {
			t.cells[i][j] = &Cell{styles: d.Styles}
		}
	}
	d.Blocks = append(d.Blocks, t)
	return t, nil
}

// AddPageBreak appends a page break.
func (d *Document) AddPageBreak() {
	d.Blocks = append(d.Blocks, &PageBreak{})
}

// AddTOC appends a table-of-contents marker.
func (d *Document) AddTOC() {
	d.Blocks = append(d.Blocks, &TOC{})
}

// HasTOC reports whether the document contains a table of contents.
func (d *Document) HasTOC() bool {
	for _, b := range d.Blocks {
		if _, ok := b.(*TOC); ok {
			return true
		}
	}
	return false
}

// Empty reports whether the document has no blocks.
func (d *Document) Empty() bool {
	return len(d.Blocks) == 0
}

// Table is a fixed-size grid of cells.
type Table struct {
	Rows, Cols int
	Style      string
	cells      [][]*Cell
}

// Cell returns the cell at the zero-based row and column.
func (t *Table) Cell(row, col int) (*Cell, error) {
	if row < 0 || row >= t.Rows || col < 0 || col >= t.Cols {
		return nil, fmt.Errorf("cell (%d, %d) outside %dx%d table", row, col, t.Rows, t.Cols)
	}
	return t.cells[row][col], nil
}

// Cell holds the paragraphs of one table cell.
type Cell struct {
	styles *style.Sheet
	paras  []*Paragraph
}

// AddParagraph appends a paragraph to the cell.
func (c *Cell) AddParagraph(text, styleName string) (*Paragraph, error) {
	p, err := newParagraph(c.styles, text, styleName)
	if err != nil {
		return nil, err
	}
	c.paras = append(c.paras, p)
	return p, nil
}

// AddRun appends a run to the cell's last paragraph.
func (c *Cell) AddRun(text, styleName string) (*Run, error) {
	var last *Paragraph
	if n := len(c.paras); n > 0 {
		last = c.paras[n-1]
	}
	return addRun(c.styles, last, text, styleName)
}

// Paragraphs returns the cell's paragraphs.
func (c *Cell) Paragraphs() []*Paragraph {
	return c.paras
}
