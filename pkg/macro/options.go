package macro

import (
	"io"
	"io/fs"
	"os"

	"github.com/Ickli/gostdocx/pkg/style"
)

// DefaultMaxDepth bounds macro nesting.
const DefaultMaxDepth = 64

// DefaultAutoFlush lists the handlers flushed before a nested macro opens.
var DefaultAutoFlush = []string{
	NameDocument,
	NameParagraphStyled,
	NameUnorderedListItem,
	NameOrderedListItem,
	NameTableCell,
	NameJSONReader,
	NameNumbered,
}

// Options configures a conversion.
type Options struct {
	Syntax      Syntax
	StripIndent bool // remove one indent step per nesting level
	SkipEmpty   bool // drop empty plain lines
	// StickCaptions makes image-caption default to appending to the
	// preceding paragraph instead of starting its own.
	StickCaptions bool
	MaxDepth      int
	AutoFlush     []string
	Extensions    []Definition

	// FS is where images, JSON, style sheets and appended documents are
	// read from; Dir is the starting directory within it.
	FS  fs.FS
	Dir string

	Styles *style.Sheet
	Stdout io.Writer // echo output
}

// DefaultOptions returns the standard configuration reading from the
// working directory.
func DefaultOptions() Options {
	return Options{
		Syntax:        DefaultSyntax(),
		StripIndent:   true,
		SkipEmpty:     true,
		StickCaptions: true,
		MaxDepth:      DefaultMaxDepth,
		AutoFlush:     DefaultAutoFlush,
		FS:            os.DirFS("."),
		Dir:           ".",
		Stdout:        os.Stdout,
	}
}

// withDefaults fills unset fields.
func (o Options) withDefaults() Options {
	if o.Syntax == (Syntax{}) {
		o.Syntax = DefaultSyntax()
	}
	if o.MaxDepth <= 0 {
		o.MaxDepth = DefaultMaxDepth
	}
	if o.AutoFlush == nil {
		o.AutoFlush = DefaultAutoFlush
	}
	if o.FS == nil {
		o.FS = os.DirFS(".")
	}
	if o.Dir == "" {
		o.Dir = "."
	}
	if o.Styles == nil {
		o.Styles = style.Default()
	}
	if o.Stdout == nil {
		o.Stdout = io.Discard
	}
	return o
}
