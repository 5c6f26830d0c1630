package doc

// Compose concatenates docs into one document, starting each after the
// first on a new page. The result uses the style sheet of the first
// document. Nil documents are skipped.
func Compose(docs ...*Document) *Document {
	var out *Document
	for _, d := range docs {
		if d == nil {
			continue
		}
		if out == nil {
			out = New(d.Styles)
			out.Blocks = append(out.Blocks, d.Blocks...)
			continue
		}
		out.AddPageBreak()
		out.Blocks = append(out.Blocks, d.Blocks...)
	}
	if out == nil {
		out = New(nil)
	}
	return out
}
