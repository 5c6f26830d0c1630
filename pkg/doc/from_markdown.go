package doc

import (
	"log"
	"strconv"
	"strings"

	"github.com/Ickli/gostdocx/pkg/style"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/extension"
	extast "github.com/yuin/goldmark/extension/ast"
	"github.com/yuin/goldmark/text"
)

// Style names the importers map markdown and ADF constructs onto. Names the
// sheet does not declare fall back to the default paragraph style.
const (
	StyleNormal        = "normal"
	StyleUnorderedList = "unordered-list"
	StyleOrderedList   = "ordered-list"
	StyleImage         = "image"
	StyleTableText     = "table-text"
	StyleCode          = "code"
	StyleBold          = "bold"
	StyleItalic        = "italic"
	StyleStrike        = "strike"
	StyleUnderline     = "underline"
)

var mdParser = goldmark.New(
	goldmark.WithExtensions(
		extension.Table,
		extension.Strikethrough,
	),
)

// FromMarkdown builds a document from markdown source.
func FromMarkdown(src []byte, sheet *style.Sheet) *Document {
	d := New(sheet)
	if len(src) == 0 {
		return d
	}
	root := mdParser.Parser().Parse(text.NewReader(src))
	c := &mdConverter{source: src, doc: d}
	c.blocks(root)
	return d
}

type mdConverter struct {
	source []byte
	doc    *Document
}

// pick returns name if the sheet knows it, else the default style.
func (c *mdConverter) pick(name string) string {
	return pickStyle(c.doc.Styles, name)
}

func pickStyle(sheet *style.Sheet, name string) string {
	if sheet == nil || sheet.Has(name) {
		return name
	}
	if sheet.Has(StyleNormal) {
		return StyleNormal
	}
	return ""
}

func (c *mdConverter) blocks(n ast.Node) {
	for child := n.FirstChild(); child != nil; child = child.NextSibling() {
		c.block(child)
	}
}

func (c *mdConverter) block(n ast.Node) {
	switch node := n.(type) {
	case *ast.Paragraph, *ast.TextBlock:
		if p := c.paragraph(node, StyleNormal, ""); p != nil {
			c.doc.Blocks = append(c.doc.Blocks, p)
		}
	case *ast.Heading:
		var b strings.Builder
		for _, r := range c.inline(node, "") {
			b.WriteString(r.Text)
		}
		c.doc.AddHeading(b.String(), node.Level)
	case *ast.List:
		c.list(node, 0)
	case *ast.FencedCodeBlock, *ast.CodeBlock:
		c.doc.Blocks = append(c.doc.Blocks, &Paragraph{
			Style: c.pick(StyleCode),
			Runs:  []*Run{{Text: c.lines(node)}},
		})
	case *ast.Blockquote:
		c.blocks(node)
	case *ast.ThematicBreak:
		c.doc.AddPageBreak()
	case *extast.Table:
		c.table(node)
	default:
		log.Printf("WARN: skipping unsupported markdown block %s", n.Kind())
	}
}

// paragraph converts inline content, returning nil when there is none.
func (c *mdConverter) paragraph(n ast.Node, styleName, prefix string) *Paragraph {
	runs := c.inline(n, "")
	if len(runs) == 0 {
		return nil
	}
	if prefix != "" {
		runs = append([]*Run{{Text: prefix}}, runs...)
	}
	return &Paragraph{Style: c.pick(styleName), Runs: runs}
}

func (c *mdConverter) list(n *ast.List, depth int) {
	styleName := StyleUnorderedList
	if n.IsOrdered() {
		styleName = StyleOrderedList
	}
	num := n.Start
	indent := strings.Repeat("  ", depth)

	for item := n.FirstChild(); item != nil; item = item.NextSibling() {
		prefix := indent + "• "
		if c.doc.Styles != nil && c.doc.Styles.BulletPrefix != "" {
			prefix = indent + c.doc.Styles.BulletPrefix
		}
		if n.IsOrdered() {
			prefix = indent + strconv.Itoa(num) + ". "
			num++
		}

		for child := item.FirstChild(); child != nil; child = child.NextSibling() {
			switch ch := child.(type) {
			case *ast.List:
				c.list(ch, depth+1)
			case *ast.Paragraph, *ast.TextBlock:
				if p := c.paragraph(ch, styleName, prefix); p != nil {
					c.doc.Blocks = append(c.doc.Blocks, p)
					prefix = indent
				}
			default:
				c.block(child)
			}
		}
	}
}

func (c *mdConverter) table(n *extast.Table) {
	var rows [][]ast.Node
	cols := 0
	for row := n.FirstChild(); row != nil; row = row.NextSibling() {
		var cells []ast.Node
		for cell := row.FirstChild(); cell != nil; cell = cell.NextSibling() {
			cells = append(cells, cell)
		}
		if len(cells) > cols {
			cols = len(cells)
		}
		rows = append(rows, cells)
	}
	if len(rows) == 0 || cols == 0 {
		return
	}

	t, err := c.doc.AddTable(len(rows), cols, "")
	if err != nil {
		return
	}
	for i, cells := range rows {
		for j, cell := range cells {
			target, _ := t.Cell(i, j)
			if p := c.paragraph(cell, StyleTableText, ""); p != nil {
				target.paras = append(target.paras, p)
			}
		}
	}
}

func (c *mdConverter) lines(n ast.Node) string {
	var b strings.Builder
	lines := n.Lines()
	for i := 0; i < lines.Len(); i++ {
		line := lines.At(i)
		b.Write(line.Value(c.source))
	}
	return strings.TrimSuffix(b.String(), "\n")
}

func (c *mdConverter) inline(n ast.Node, styleName string) []*Run {
	var runs []*Run
	for child := n.FirstChild(); child != nil; child = child.NextSibling() {
		runs = append(runs, c.inlineNode(child, styleName)...)
	}
	return runs
}

func (c *mdConverter) inlineNode(n ast.Node, styleName string) []*Run {
	switch node := n.(type) {
	case *ast.Text:
		t := string(node.Segment.Value(c.source))
		if node.SoftLineBreak() || node.HardLineBreak() {
			t += "\n"
		}
		if t == "" {
			return nil
		}
		return []*Run{{Text: t, Style: styleName}}

	case *ast.String:
		if len(node.Value) == 0 {
			return nil
		}
		return []*Run{{Text: string(node.Value), Style: styleName}}

	case *ast.Emphasis:
		s := StyleItalic
		if node.Level == 2 {
			s = StyleBold
		}
		return c.inline(node, c.runStyle(s))

	case *extast.Strikethrough:
		return c.inline(node, c.runStyle(StyleStrike))

	case *ast.CodeSpan:
		var b strings.Builder
		for child := node.FirstChild(); child != nil; child = child.NextSibling() {
			if t, ok := child.(*ast.Text); ok {
				b.Write(t.Segment.Value(c.source))
			}
		}
		return []*Run{{Text: b.String(), Style: styleName}}

	case *ast.AutoLink:
		return []*Run{{Text: string(node.URL(c.source)), Style: styleName}}

	case *ast.RawHTML:
		return nil

	case *ast.Image:
		return []*Run{{Image: &Image{Path: string(node.Destination)}}}

	default:
		return c.inline(n, styleName)
	}
}

// runStyle keeps character styles the sheet does not declare out of runs.
func (c *mdConverter) runStyle(name string) string {
	if c.doc.Styles == nil || c.doc.Styles.Has(name) {
		return name
	}
	return ""
}
