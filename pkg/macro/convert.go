package macro

import (
	"bufio"
	"io"
	"io/fs"
	"strings"

	"github.com/Ickli/gostdocx/pkg/doc"
)

// Result is the outcome of a conversion.
type Result struct {
	Document  *doc.Document // all parts composed, one page boundary apart
	Documents int           // documents composed, counting appended files
	Warnings  []Warning
	// Resources is the file system image sources and other resources
	// were read from.
	Resources fs.FS
}

// Convert interprets the markup read from r and builds a document.
//
// A page-append ends the document being built; the referenced file is
// loaded as a document of its own and interpretation resumes with a fresh
// document. All parts share one set of counters and one style sheet.
func Convert(r io.Reader, opts Options) (*Result, error) {
	opts = opts.withDefaults()
	if err := opts.Syntax.Validate(); err != nil {
		return nil, wrap(ErrUsage, err)
	}
	registry, err := NewRegistry(opts.Extensions...)
	if err != nil {
		return nil, wrap(ErrUsage, err)
	}

	s := &session{
		opts:      opts,
		registry:  registry,
		autoFlush: make(map[string]bool),
		src:       &lineReader{r: bufio.NewReader(r)},
		counters:  NewCounters(),
		sheet:     opts.Styles.Clone(),
		dir:       opts.Dir,
	}
	for _, name := range opts.AutoFlush {
		s.autoFlush[name] = true
	}

	var parts []*doc.Document
	for {
		d := doc.New(s.sheet)
		in := newInterpreter(s, d)
		if err := in.run(); err != nil {
			return nil, err
		}
		if !d.Empty() {
			parts = append(parts, d)
		}
		if in.appendPath == "" {
			break
		}

		appended, err := doc.LoadFile(opts.FS, in.appendPath, s.sheet)
		if err != nil {
			return nil, &Error{Kind: ErrResource, Line: in.appendLine, Macro: NamePageAppend, Err: err}
		}
		parts = append(parts, appended)
	}

	if len(parts) == 0 {
		parts = append(parts, doc.New(s.sheet))
	}
	if s.headingLine > 0 && !s.toc {
		s.warnings = append(s.warnings, Warning{
			Line:    s.headingLine,
			Message: "heading used without a table of contents; add (toc) to generate one",
		})
	}
	return &Result{
		Document:  doc.Compose(parts...),
		Documents: len(parts),
		Warnings:  s.warnings,
		Resources: opts.FS,
	}, nil
}

// ConvertString is Convert over a string.
func ConvertString(src string, opts Options) (*Result, error) {
	return Convert(strings.NewReader(src), opts)
}
