package doc

import (
	"fmt"
	"strings"

	"github.com/Ickli/gostdocx/pkg/style"
)

// RenderStorage converts d to Confluence storage format (XHTML).
func RenderStorage(d *Document) string {
	r := &storageRenderer{sheet: d.Styles}
	for _, b := range d.Blocks {
		r.block(b)
	}
	return r.sb.String()
}

type storageRenderer struct {
	sheet *style.Sheet
	sb    strings.Builder
}

func (r *storageRenderer) block(b Block) {
	switch b := b.(type) {
	case *Paragraph:
		r.paragraph(b)
	case *Heading:
		lvl := headingLevel(b.Level)
		fmt.Fprintf(&r.sb, "<h%d>%s</h%d>", lvl, escapeLines(b.Text), lvl)
	case *Table:
		r.table(b)
	case *PageBreak:
		r.sb.WriteString("<hr />")
	case *TOC:
		r.sb.WriteString(renderMacro("toc", [][2]string{{"maxLevel", "6"}}))
	}
}

func (r *storageRenderer) paragraph(p *Paragraph) {
	ps := resolve(r.sheet, p.Style)

	tag := "p"
	if ps.HeadingLevel > 0 {
		tag = fmt.Sprintf("h%d", headingLevel(ps.HeadingLevel))
	}
	r.sb.WriteString("<" + tag)
	if align := storageAlign(ps.Alignment); align != "" {
		r.sb.WriteString(` style="text-align: ` + align + `;"`)
	}
	r.sb.WriteString(">")

	for _, run := range p.Runs {
		if run.Image != nil {
			r.image(run.Image)
			continue
		}
		font := resolve(r.sheet, run.Style).Font
		r.run(run.Text, font)
	}
	r.sb.WriteString("</" + tag + ">")
}

func storageAlign(a style.Alignment) string {
	switch a {
	case style.AlignCenter:
		return "center"
	case style.AlignRight:
		return "right"
	case style.AlignJustify:
		return "justify"
	}
	return ""
}

// run writes text wrapped in the tags its character style asks for.
func (r *storageRenderer) run(text string, f style.Font) {
	var open, close []string
	wrap := func(tag, attrs string) {
		open = append(open, "<"+tag+attrs+">")
		close = append([]string{"</" + tag + ">"}, close...)
	}
	if style.IsSet(f.Bold) {
		wrap("strong", "")
	}
	if style.IsSet(f.Italic) {
		wrap("em", "")
	}
	if style.IsSet(f.Underline) {
		wrap("u", "")
	}
	if style.IsSet(f.Strike) {
		wrap("s", "")
	}
	if f.Color != "" {
		wrap("span", ` style="color: #`+strings.ToLower(f.Color)+`;"`)
	}

	r.sb.WriteString(strings.Join(open, ""))
	r.sb.WriteString(escapeLines(text))
	r.sb.WriteString(strings.Join(close, ""))
}

func (r *storageRenderer) image(img *Image) {
	r.sb.WriteString("<ac:image")
	if img.Width > 0 {
		fmt.Fprintf(&r.sb, ` ac:width="%d"`, img.Width.Pixels())
	}
	if img.Height > 0 {
		fmt.Fprintf(&r.sb, ` ac:height="%d"`, img.Height.Pixels())
	}
	if img.Attachment != nil {
		r.sb.WriteString(`><ri:attachment ri:filename="` + escapeXML(img.Attachment.Name) + `" /></ac:image>`)
		return
	}
	r.sb.WriteString(`><ri:url ri:value="` + escapeXML(img.Path) + `" /></ac:image>`)
}

func (r *storageRenderer) table(t *Table) {
	r.sb.WriteString("<table><tbody>")
	for i := 0; i < t.Rows; i++ {
		r.sb.WriteString("<tr>")
		for j := 0; j < t.Cols; j++ {
			cell, _ := t.Cell(i, j)
			r.sb.WriteString("<td>")
			for _, p := range cell.Paragraphs() {
				r.paragraph(p)
			}
			r.sb.WriteString("</td>")
		}
		r.sb.WriteString("</tr>")
	}
	r.sb.WriteString("</tbody></table>")
}

// renderMacro writes a structured macro with sorted parameters.
func renderMacro(name string, params [][2]string) string {
	var sb strings.Builder
	sb.WriteString(`<ac:structured-macro ac:name="`)
	sb.WriteString(name)
	sb.WriteString(`" ac:schema-version="1">`)
	for _, p := range params {
		sb.WriteString(`<ac:parameter ac:name="`)
		sb.WriteString(p[0])
		sb.WriteString(`">`)
		sb.WriteString(escapeXML(p[1]))
		sb.WriteString(`</ac:parameter>`)
	}
	sb.WriteString(`</ac:structured-macro>`)
	return sb.String()
}

// escapeLines escapes text and turns newlines into line breaks.
func escapeLines(s string) string {
	return strings.ReplaceAll(escapeXML(s), "\n", "<br />")
}

// escapeXML escapes special XML characters in a string.
func escapeXML(s string) string {
	s = strings.ReplaceAll(s, "&", "&amp;")
	s = strings.ReplaceAll(s, "<", "&lt;")
	s = strings.ReplaceAll(s, ">", "&gt;")
	s = strings.ReplaceAll(s, "\"", "&quot;")
	return s
}
