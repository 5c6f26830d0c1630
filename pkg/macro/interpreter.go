package macro

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"path"
	"strings"

	"github.com/Ickli/gostdocx/pkg/doc"
	"github.com/Ickli/gostdocx/pkg/style"
)

// Warning is a non-fatal diagnostic.
type Warning struct {
	Line    int
	Message string
}

func (w Warning) String() string {
	return fmt.Sprintf("WARNING: line %d: %s", w.Line, w.Message)
}

// lineReader reads input lines and counts them across documents.
type lineReader struct {
	r    *bufio.Reader
	line int
}

func (lr *lineReader) next() (string, error) {
	s, err := lr.r.ReadString('\n')
	if s == "" && err != nil {
		return "", err
	}
	lr.line++
	return s, nil
}

// session is the state shared by all interpreters of one conversion.
type session struct {
	opts      Options
	registry  *Registry
	autoFlush map[string]bool
	src       *lineReader
	counters  *Counters
	sheet     *style.Sheet
	dir       string
	warnings  []Warning

	// Scopes unwound by page-append whose close lines are still ahead.
	// Later lines are classified as if nested that deep.
	dangling int

	headingLine int
	toc         bool
}

// Interpreter drives handlers over the input for one document.
type Interpreter struct {
	s         *session
	doc       *doc.Document
	depth     int
	handler   Handler
	receivers []Receiver

	appendPath string
	appendLine int
	unwinding  bool
}

func newInterpreter(s *session, d *doc.Document) *Interpreter {
	return &Interpreter{s: s, doc: d, receivers: []Receiver{d}}
}

// Handler returns the active handler. During a factory call this is the
// parent of the handler being built.
func (in *Interpreter) Handler() Handler { return in.handler }

// Document returns the document being built.
func (in *Interpreter) Document() *doc.Document { return in.doc }

// Styles returns the style sheet of the run.
func (in *Interpreter) Styles() *style.Sheet { return in.s.sheet }

// Counters returns the counters shared across documents.
func (in *Interpreter) Counters() *Counters { return in.s.counters }

// Options returns the conversion options.
func (in *Interpreter) Options() Options { return in.s.opts }

// Depth returns the current nesting depth; zero is the document level.
func (in *Interpreter) Depth() int { return in.depth }

// Line returns the number of the last line read.
func (in *Interpreter) Line() int { return in.s.src.line }

// Stdout is where echo writes.
func (in *Interpreter) Stdout() io.Writer { return in.s.opts.Stdout }

// Warn records a warning at the current line.
func (in *Interpreter) Warn(format string, args ...any) {
	in.s.warnings = append(in.s.warnings, Warning{Line: in.Line(), Message: fmt.Sprintf(format, args...)})
}

// Receiver returns the current write target.
func (in *Interpreter) Receiver() Receiver {
	return in.receivers[len(in.receivers)-1]
}

// PushReceiver installs r as the write target.
func (in *Interpreter) PushReceiver(r Receiver) {
	in.receivers = append(in.receivers, r)
}

// PopReceiver removes r, which must be the current write target.
func (in *Interpreter) PopReceiver(r Receiver) error {
	if len(in.receivers) < 2 || in.Receiver() != r {
		return errorf(ErrState, "receiver substitution is unbalanced")
	}
	in.receivers = in.receivers[:len(in.receivers)-1]
	return nil
}

// Resolve maps a path from the input onto the file system. Absolute paths
// are taken from the file system root, others from the current directory.
func (in *Interpreter) Resolve(name string) string {
	if path.IsAbs(name) {
		if p := strings.TrimPrefix(path.Clean(name), "/"); p != "" {
			return p
		}
		return "."
	}
	return path.Join(in.s.dir, name)
}

// resource resolves name and checks it stays inside the file system.
func (in *Interpreter) resource(name string) (string, error) {
	p := in.Resolve(name)
	if !fs.ValidPath(p) {
		return "", errorf(ErrResource, "%s is outside the resource file system", name)
	}
	return p, nil
}

// Stat checks that name exists.
func (in *Interpreter) Stat(name string) (fs.FileInfo, error) {
	p, err := in.resource(name)
	if err != nil {
		return nil, err
	}
	fi, err := fs.Stat(in.s.opts.FS, p)
	if err != nil {
		return nil, wrap(ErrResource, err)
	}
	return fi, nil
}

// ReadFile reads name from the file system.
func (in *Interpreter) ReadFile(name string) ([]byte, error) {
	p, err := in.resource(name)
	if err != nil {
		return nil, err
	}
	data, err := fs.ReadFile(in.s.opts.FS, p)
	if err != nil {
		return nil, wrap(ErrResource, err)
	}
	return data, nil
}

// Chdir changes the directory relative paths resolve against.
func (in *Interpreter) Chdir(dir string) error {
	fi, err := in.Stat(dir)
	if err != nil {
		return err
	}
	if !fi.IsDir() {
		return errorf(ErrResource, "%s is not a directory", dir)
	}
	in.s.dir = in.Resolve(dir)
	return nil
}

// RequestAppend ends the current document after the active handler
// finalizes; the file at name is appended and a new document begins.
func (in *Interpreter) RequestAppend(name string) {
	in.appendPath = in.Resolve(name)
	in.appendLine = in.Line()
	in.unwinding = true
	// Every open ancestor except the document still has a close line ahead.
	in.s.dangling += in.depth - 1
}

// run interprets input until it ends or a page-append unwinds the stack.
func (in *Interpreter) run() error {
	root := newDocumentHandler(in)
	in.handler = root
	if err := in.consume(root); err != nil {
		return err
	}
	if err := root.Finalize(); err != nil {
		return stamp(err, in.Line(), root.Name())
	}
	if len(in.receivers) != 1 {
		return &Error{Kind: ErrState, Line: in.Line(), Err: errors.New("receiver substitution left unbalanced")}
	}
	return nil
}

// consume feeds lines to h until its close line or the end of input.
func (in *Interpreter) consume(h Handler) error {
	syn := in.s.opts.Syntax
	for {
		raw, err := in.s.src.next()
		if errors.Is(err, io.EOF) {
			if open := in.depth + in.s.dangling; open > 0 {
				return &Error{Kind: ErrSyntax, Line: in.Line(), Macro: h.Name(), Err: fmt.Errorf("input ended with %d unclosed macro(s)", open)}
			}
			return nil
		}
		if err != nil {
			return wrap(ErrResource, err)
		}

		depth := in.depth + in.s.dangling
		line := syn.Classify(raw, depth, in.s.opts.StripIndent)
		line.Number = in.Line()

		switch line.Kind {
		case Comment:
			continue

		case Header:
			if depth > 0 {
				return &Error{Kind: ErrContext, Line: line.Number, Macro: h.Name(), Err: errors.New("header line inside a macro")}
			}
			if err := in.header(h, line); err != nil {
				return err
			}

		case PlainText:
			if line.Empty && in.s.opts.SkipEmpty {
				continue
			}
			if err := h.Consume(line); err != nil {
				return stamp(err, line.Number, h.Name())
			}

		case Macro:
			if line.Form == Close {
				if rest := strings.TrimSpace(line.Text[len(syn.Close):]); rest != "" {
					return &Error{Kind: ErrSyntax, Line: line.Number, Err: fmt.Errorf("unexpected text %q after macro close", rest)}
				}
				if in.depth > 0 {
					return nil
				}
				if in.s.dangling > 0 && in.closesDangling(line) {
					in.s.dangling--
					if f, ok := h.(Flusher); ok {
						if err := f.Flush(); err != nil {
							return stamp(err, line.Number, h.Name())
						}
					}
					continue
				}
				return &Error{Kind: ErrSyntax, Line: line.Number, Err: errors.New("macro close without matching open")}
			}
			if err := in.open(h, line); err != nil {
				return err
			}
			if in.unwinding {
				return nil
			}
		}
	}
}

// closesDangling reports whether a close line at document level ends the
// innermost unwound scope. With indentation stripping the line must sit at
// that scope's indentation.
func (in *Interpreter) closesDangling(line Line) bool {
	syn := in.s.opts.Syntax
	if !in.s.opts.StripIndent || syn.Indent == "" {
		return true
	}
	steps := 0
	for rest := line.Raw; strings.HasPrefix(rest, syn.Indent); rest = rest[len(syn.Indent):] {
		steps++
	}
	return steps == in.s.dangling-1
}

// open constructs the handler for a macro line, runs its body and
// finalizes it.
func (in *Interpreter) open(parent Handler, line Line) error {
	args, err := in.s.opts.Syntax.ParseArgs(line.Text)
	if err != nil {
		return stamp(err, line.Number, "")
	}
	name := args[0]
	factory, err := in.s.registry.Resolve(name)
	if err != nil {
		return stamp(err, line.Number, name)
	}
	if in.depth+in.s.dangling >= in.s.opts.MaxDepth {
		return &Error{Kind: ErrContext, Line: line.Number, Macro: name, Err: fmt.Errorf("nesting deeper than %d", in.s.opts.MaxDepth)}
	}

	if f, ok := parent.(Flusher); ok && in.s.autoFlush[parent.Name()] {
		if err := f.Flush(); err != nil {
			return stamp(err, line.Number, parent.Name())
		}
	}

	child, err := factory(in, args[1:])
	if err != nil {
		return stamp(err, line.Number, name)
	}

	in.depth++
	in.handler = child
	defer func() {
		in.depth--
		in.handler = parent
	}()

	if line.Form == Open {
		if err := in.consume(child); err != nil {
			return err
		}
	}
	if err := child.Finalize(); err != nil {
		return stamp(err, in.Line(), name)
	}
	return nil
}

// header adds a document title.
func (in *Interpreter) header(root Handler, line Line) error {
	if f, ok := root.(Flusher); ok {
		if err := f.Flush(); err != nil {
			return stamp(err, line.Number, root.Name())
		}
	}
	in.doc.AddHeading(in.s.opts.Syntax.HeaderText(line), 0)
	if in.s.headingLine == 0 {
		in.s.headingLine = line.Number
	}
	return nil
}
