package doc

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/Ickli/gostdocx/pkg/style"
)

// ADFDocument represents an Atlassian Document Format document.
type ADFDocument struct {
	Type    string     `json:"type"`
	Version int        `json:"version"`
	Content []*ADFNode `json:"content"`
}

// ADFNode represents a node in an ADF document.
type ADFNode struct {
	Type    string         `json:"type"`
	Attrs   map[string]any `json:"attrs,omitempty"`
	Content []*ADFNode     `json:"content,omitempty"`
	Text    string         `json:"text,omitempty"`
	Marks   []*ADFMark     `json:"marks,omitempty"`
}

// ADFMark represents a text mark (formatting) in ADF.
type ADFMark struct {
	Type  string         `json:"type"`
	Attrs map[string]any `json:"attrs,omitempty"`
}

// ToADF converts d to an ADF tree.
func ToADF(d *Document) *ADFDocument {
	r := &adfRenderer{sheet: d.Styles}
	out := &ADFDocument{Type: "doc", Version: 1, Content: []*ADFNode{}}
	for _, b := range d.Blocks {
		out.Content = append(out.Content, r.block(b)...)
	}
	return out
}

// RenderADF converts d to JSON-encoded ADF.
func RenderADF(d *Document) ([]byte, error) {
	return json.Marshal(ToADF(d))
}

type adfRenderer struct {
	sheet *style.Sheet
}

// resolve returns the flattened style, or the zero style when unknown.
func resolve(sheet *style.Sheet, name string) style.Style {
	if sheet == nil || name == "" {
		return style.Style{}
	}
	st, err := sheet.Resolve(name)
	if err != nil {
		return style.Style{}
	}
	return st
}

func (r *adfRenderer) block(b Block) []*ADFNode {
	switch b := b.(type) {
	case *Paragraph:
		return r.paragraph(b)
	case *Heading:
		return []*ADFNode{{
			Type:    "heading",
			Attrs:   map[string]any{"level": headingLevel(b.Level)},
			Content: splitText(b.Text, nil),
		}}
	case *Table:
		return []*ADFNode{r.table(b)}
	case *PageBreak:
		return []*ADFNode{{Type: "rule"}}
	case *TOC:
		return []*ADFNode{{
			Type: "extension",
			Attrs: map[string]any{
				"extensionType": "com.atlassian.confluence.macro.core",
				"extensionKey":  "toc",
			},
		}}
	}
	return nil
}

func headingLevel(level int) int {
	switch {
	case level < 1:
		return 1
	case level > 6:
		return 6
	}
	return level
}

// paragraph emits images as mediaSingle nodes ahead of the paragraph that
// holds the remaining text.
func (r *adfRenderer) paragraph(p *Paragraph) []*ADFNode {
	ps := resolve(r.sheet, p.Style)

	var nodes, inline []*ADFNode
	for _, run := range p.Runs {
		if run.Image != nil {
			nodes = append(nodes, adfMedia(run.Image))
			continue
		}
		inline = append(inline, splitText(run.Text, adfMarks(resolve(r.sheet, run.Style).Font))...)
	}
	if len(inline) == 0 && len(nodes) > 0 {
		return nodes
	}

	node := &ADFNode{Type: "paragraph", Content: inline}
	if ps.HeadingLevel > 0 {
		node.Type = "heading"
		node.Attrs = map[string]any{"level": headingLevel(ps.HeadingLevel)}
	}
	if align := adfAlign(ps.Alignment); align != "" {
		node.Marks = []*ADFMark{{Type: "alignment", Attrs: map[string]any{"align": align}}}
	}
	return append(nodes, node)
}

func adfAlign(a style.Alignment) string {
	switch a {
	case style.AlignCenter:
		return "center"
	case style.AlignRight:
		return "end"
	}
	return ""
}

func adfMedia(img *Image) *ADFNode {
	attrs := map[string]any{"type": "external", "url": img.Path}
	if a := img.Attachment; a != nil && a.FileID != "" {
		attrs = map[string]any{"type": "file", "id": a.FileID, "collection": a.Collection}
	}
	if img.Width > 0 {
		attrs["width"] = img.Width.Pixels()
	}
	if img.Height > 0 {
		attrs["height"] = img.Height.Pixels()
	}
	return &ADFNode{
		Type:    "mediaSingle",
		Attrs:   map[string]any{"layout": "center"},
		Content: []*ADFNode{{Type: "media", Attrs: attrs}},
	}
}

func adfMarks(f style.Font) []*ADFMark {
	var marks []*ADFMark
	if style.IsSet(f.Bold) {
		marks = append(marks, &ADFMark{Type: "strong"})
	}
	if style.IsSet(f.Italic) {
		marks = append(marks, &ADFMark{Type: "em"})
	}
	if style.IsSet(f.Underline) {
		marks = append(marks, &ADFMark{Type: "underline"})
	}
	if style.IsSet(f.Strike) {
		marks = append(marks, &ADFMark{Type: "strike"})
	}
	if f.Color != "" && !strings.EqualFold(f.Color, "000000") {
		marks = append(marks, &ADFMark{Type: "textColor", Attrs: map[string]any{"color": "#" + strings.ToLower(f.Color)}})
	}
	return marks
}

// splitText turns embedded newlines into hardBreak nodes.
func splitText(s string, marks []*ADFMark) []*ADFNode {
	var nodes []*ADFNode
	for i, part := range strings.Split(s, "\n") {
		if i > 0 {
			nodes = append(nodes, &ADFNode{Type: "hardBreak"})
		}
		if part != "" {
			nodes = append(nodes, &ADFNode{Type: "text", Text: part, Marks: marks})
		}
	}
	return nodes
}

func (r *adfRenderer) table(t *Table) *ADFNode {
	table := &ADFNode{Type: "table", Attrs: map[string]any{"layout": "default"}}
	for i := 0; i < t.Rows; i++ {
		row := &ADFNode{Type: "tableRow"}
		for j := 0; j < t.Cols; j++ {
			cell, _ := t.Cell(i, j)
			var content []*ADFNode
			for _, p := range cell.Paragraphs() {
				content = append(content, r.paragraph(p)...)
			}
			if len(content) == 0 {
				content = []*ADFNode{{Type: "paragraph"}}
			}
			row.Content = append(row.Content, &ADFNode{
				Type:    "tableCell",
				Attrs:   map[string]any{"colspan": 1, "rowspan": 1},
				Content: content,
			})
		}
		table.Content = append(table.Content, row)
	}
	return table
}

// FromADF builds a document from JSON-encoded ADF.
func FromADF(data []byte, sheet *style.Sheet) (*Document, error) {
	var in ADFDocument
	if err := json.Unmarshal(data, &in); err != nil {
		return nil, fmt.Errorf("decoding ADF: %w", err)
	}
	if in.Type != "doc" {
		return nil, fmt.Errorf("decoding ADF: root node is %q, want \"doc\"", in.Type)
	}
	c := &adfImporter{doc: New(sheet)}
	for _, n := range in.Content {
		c.block(n, "")
	}
	return c.doc, nil
}

type adfImporter struct {
	doc *Document
}

func (c *adfImporter) block(n *ADFNode, prefix string) {
	switch n.Type {
	case "paragraph":
		if p := c.paragraph(n, StyleNormal, prefix); p != nil {
			c.doc.Blocks = append(c.doc.Blocks, p)
		}
	case "heading":
		var b strings.Builder
		for _, run := range c.inline(n.Content) {
			b.WriteString(run.Text)
		}
		c.doc.AddHeading(b.String(), attrInt(n.Attrs, "level", 1))
	case "bulletList", "orderedList":
		c.list(n, prefix)
	case "codeBlock":
		var b strings.Builder
		for _, t := range n.Content {
			b.WriteString(t.Text)
		}
		c.doc.Blocks = append(c.doc.Blocks, &Paragraph{
			Style: pickStyle(c.doc.Styles, StyleCode),
			Runs:  []*Run{{Text: b.String()}},
		})
	case "blockquote", "panel", "expand":
		for _, ch := range n.Content {
			c.block(ch, prefix)
		}
	case "rule":
		c.doc.AddPageBreak()
	case "mediaSingle", "mediaGroup":
		for _, m := range n.Content {
			if img := adfImage(m); img != nil {
				p := &Paragraph{Style: pickStyle(c.doc.Styles, StyleImage)}
				p.AddImage(img)
				c.doc.Blocks = append(c.doc.Blocks, p)
			}
		}
	case "table":
		c.table(n)
	case "extension", "bodiedExtension":
		if attrString(n.Attrs, "extensionKey") == "toc" {
			c.doc.AddTOC()
		}
	}
}

func (c *adfImporter) paragraph(n *ADFNode, styleName, prefix string) *Paragraph {
	runs := c.inline(n.Content)
	if len(runs) == 0 {
		return nil
	}
	if prefix != "" {
		runs = append([]*Run{{Text: prefix}}, runs...)
	}
	return &Paragraph{Style: pickStyle(c.doc.Styles, styleName), Runs: runs}
}

func (c *adfImporter) list(n *ADFNode, indent string) {
	ordered := n.Type == "orderedList"
	styleName := StyleUnorderedList
	if ordered {
		styleName = StyleOrderedList
	}
	num := attrInt(n.Attrs, "order", 1)
	bullet := "• "
	if c.doc.Styles != nil && c.doc.Styles.BulletPrefix != "" {
		bullet = c.doc.Styles.BulletPrefix
	}

	for _, item := range n.Content {
		prefix := indent + bullet
		if ordered {
			prefix = indent + strconv.Itoa(num) + ". "
			num++
		}
		for _, ch := range item.Content {
			switch ch.Type {
			case "paragraph":
				if p := c.paragraph(ch, styleName, prefix); p != nil {
					c.doc.Blocks = append(c.doc.Blocks, p)
					prefix = indent
				}
			case "bulletList", "orderedList":
				c.list(ch, indent+"  ")
			default:
				c.block(ch, "")
			}
		}
	}
}

func (c *adfImporter) table(n *ADFNode) {
	rows := len(n.Content)
	cols := 0
	for _, row := range n.Content {
		if len(row.Content) > cols {
			cols = len(row.Content)
		}
	}
	if rows == 0 || cols == 0 {
		return
	}
	t, err := c.doc.AddTable(rows, cols, "")
	if err != nil {
		return
	}
	for i, row := range n.Content {
		for j, cell := range row.Content {
			target, _ := t.Cell(i, j)
			for _, ch := range cell.Content {
				if p := c.paragraph(ch, StyleTableText, ""); p != nil {
					target.paras = append(target.paras, p)
				}
			}
		}
	}
}

func (c *adfImporter) inline(nodes []*ADFNode) []*Run {
	var runs []*Run
	for _, n := range nodes {
		switch n.Type {
		case "text":
			runs = append(runs, &Run{Text: n.Text, Style: c.markStyle(n.Marks)})
		case "hardBreak":
			runs = append(runs, &Run{Text: "\n"})
		case "mention", "emoji", "status":
			if t := attrString(n.Attrs, "text"); t != "" {
				runs = append(runs, &Run{Text: t})
			}
		case "inlineCard":
			runs = append(runs, &Run{Text: attrString(n.Attrs, "url")})
		case "mediaInline":
			if img := adfImage(n); img != nil {
				runs = append(runs, &Run{Image: img})
			}
		}
	}
	return runs
}

// markStyle maps the first recognised mark onto a character style.
func (c *adfImporter) markStyle(marks []*ADFMark) string {
	for _, m := range marks {
		var name string
		switch m.Type {
		case "strong":
			name = StyleBold
		case "em":
			name = StyleItalic
		case "strike":
			name = StyleStrike
		case "underline":
			name = StyleUnderline
		default:
			continue
		}
		if c.doc.Styles == nil || c.doc.Styles.Has(name) {
			return name
		}
	}
	return ""
}

func adfImage(n *ADFNode) *Image {
	if n.Type != "media" && n.Type != "mediaInline" {
		return nil
	}
	path := attrString(n.Attrs, "url")
	if path == "" {
		path = attrString(n.Attrs, "id")
	}
	if path == "" {
		return nil
	}
	return &Image{
		Path:   path,
		Width:  Length(attrInt(n.Attrs, "width", 0)) * Pixel,
		Height: Length(attrInt(n.Attrs, "height", 0)) * Pixel,
	}
}

func attrString(attrs map[string]any, key string) string {
	s, _ := attrs[key].(string)
	return s
}

// attrInt reads a numeric attribute; JSON numbers decode as float64.
func attrInt(attrs map[string]any, key string, def int) int {
	switch v := attrs[key].(type) {
	case float64:
		return int(v)
	case int:
		return v
	}
	return def
}
