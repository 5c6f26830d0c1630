package macro

import (
	"strings"

	"github.com/Ickli/gostdocx/pkg/doc"
)

// Built-in macro names.
const (
	NameDocument          = "document"
	NameEcho              = "echo"
	NameParagraphStyled   = "paragraph-styled"
	NameRunStyled         = "run-styled"
	NameUnorderedList     = "unordered-list"
	NameUnorderedListItem = "unordered-list-item"
	NameOrderedList       = "ordered-list"
	NameOrderedListItem   = "ordered-list-item"
	NameImage             = "image"
	NameImageCaption      = "image-caption"
	NameTable             = "table"
	NameTableCell         = "table-cell"
	NameJSONReader        = "json-reader"
	NameJSONField         = "json-field"
	NameNumbered          = "numbered"
	NameNumberingErase    = "numbering-erase"
	NamePageBreak         = "page-break"
	NamePageAppend        = "page-append"
	NameTOC               = "toc"
	NameLoadStyle         = "load-style"
	NameChdir             = "chdir"
)

// Style names the built-in handlers write with.
const (
	StyleNormal        = doc.StyleNormal
	StyleUnorderedList = doc.StyleUnorderedList
	StyleOrderedList   = doc.StyleOrderedList
	StyleImage         = doc.StyleImage
	StyleImageCaption  = "image-caption"
	StyleTable         = "table"
	StyleTableText     = doc.StyleTableText
)

// Builtins returns the built-in macro definitions.
func Builtins() []Definition {
	return []Definition{
		{NameEcho, newEcho},
		{NameParagraphStyled, newParagraphStyled},
		{NameRunStyled, newRunStyled},
		{NameUnorderedList, newUnorderedList},
		{NameUnorderedListItem, newUnorderedListItem},
		{NameOrderedList, newOrderedList},
		{NameOrderedListItem, newOrderedListItem},
		{NameImage, newImage},
		{NameImageCaption, newImageCaption},
		{NameTable, newTable},
		{NameTableCell, newTableCell},
		{NameJSONReader, newJSONReader},
		{NameJSONField, newJSONField},
		{NameNumbered, newNumbered},
		{NameNumberingErase, newNumberingErase},
		{NamePageBreak, newPageBreak},
		{NamePageAppend, newPageAppend},
		{NameTOC, newTOC},
		{NameLoadStyle, newLoadStyle},
		{NameChdir, newChdir},
	}
}

var usages = map[string]string{
	NameEcho:              "echo ARGS...",
	NameParagraphStyled:   "paragraph-styled STYLE",
	NameRunStyled:         "run-styled STYLE",
	NameUnorderedList:     "unordered-list",
	NameUnorderedListItem: "unordered-list-item",
	NameOrderedList:       "ordered-list",
	NameOrderedListItem:   "ordered-list-item",
	NameImage:             "image PATH [WIDTH [HEIGHT]]",
	NameImageCaption:      "image-caption [stick|separate]",
	NameTable:             "table ROWS COLS [STYLE]",
	NameTableCell:         "table-cell ROW COL [STYLE]",
	NameJSONReader:        "json-reader PATH",
	NameJSONField:         "json-field KEY [STYLE]",
	NameNumbered:          "numbered STYLE LABEL...",
	NameNumberingErase:    "numbering-erase LABEL...",
	NamePageBreak:         "page-break",
	NamePageAppend:        "page-append PATH",
	NameTOC:               "toc",
	NameLoadStyle:         "load-style PATH",
	NameChdir:             "chdir DIR",
}

// Usage returns the argument synopsis of a built-in macro, or "" for
// names that are not built in.
func Usage(name string) string {
	return usages[name]
}

// paragraphBuilder gathers content lines into one paragraph.
//
// The first flush with content creates the paragraph; later flushes
// continue it with a run starting on a new line. In batch mode every
// flush starts a new paragraph instead.
type paragraphBuilder struct {
	style  string
	prefix string // written before the first line only
	always bool   // create the paragraph even without content
	batch  bool

	lines   []string
	para    *doc.Paragraph
	started bool
}

func (b *paragraphBuilder) add(text string) {
	if !b.started {
		text = b.prefix + text
		b.started = true
	}
	b.lines = append(b.lines, text)
}

func (b *paragraphBuilder) flush(r Receiver) error {
	pending := len(b.lines) > 0
	text := strings.Join(b.lines, "\n")
	b.lines = nil

	if b.para == nil || b.batch {
		if !pending && !(b.always && b.para == nil) {
			return nil
		}
		if !pending && b.prefix != "" && !b.started {
			text = b.prefix
			b.started = true
		}
		p, err := r.AddParagraph(text, b.style)
		if err != nil {
			return err
		}
		b.para = p
		return nil
	}
	if pending {
		b.para.AddRun("\n"+text, "")
	}
	return nil
}

// bare is embedded by handlers that take no content. Empty lines are
// tolerated so blank spacing inside a block is not an error.
type bare struct {
	name string
}

func (b bare) Name() string { return b.name }

func (b bare) Consume(line Line) error {
	if line.Empty {
		return nil
	}
	return errorf(ErrUsage, "%s takes no content, got %q", b.name, line.Text)
}

func (bare) Finalize() error { return nil }
