package macro

import (
	"github.com/Ickli/gostdocx/pkg/style"
)

type pageBreak struct {
	bare
	in *Interpreter
}

func newPageBreak(in *Interpreter, args []string) (Handler, error) {
	return &pageBreak{bare: bare{NamePageBreak}, in: in}, nil
}

func (h *pageBreak) Finalize() error {
	h.in.Document().AddPageBreak()
	return nil
}

// pageAppend ends the current document and splices in another file.
type pageAppend struct {
	bare
	in   *Interpreter
	path string
}

func newPageAppend(in *Interpreter, args []string) (Handler, error) {
	if err := requireArgs(args, 1, "page-append PATH"); err != nil {
		return nil, err
	}
	if _, err := in.Stat(args[0]); err != nil {
		return nil, err
	}
	return &pageAppend{bare: bare{NamePageAppend}, in: in, path: args[0]}, nil
}

func (h *pageAppend) Finalize() error {
	h.in.RequestAppend(h.path)
	return nil
}

type toc struct {
	bare
	in *Interpreter
}

func newTOC(in *Interpreter, args []string) (Handler, error) {
	return &toc{bare: bare{NameTOC}, in: in}, nil
}

func (h *toc) Finalize() error {
	h.in.Document().AddTOC()
	h.in.s.toc = true
	return nil
}

// loadStyle merges a style sheet into the run's sheet. Redefining an
// existing style is an error.
type loadStyle struct{ bare }

func newLoadStyle(in *Interpreter, args []string) (Handler, error) {
	if err := requireArgs(args, 1, "load-style PATH"); err != nil {
		return nil, err
	}
	data, err := in.ReadFile(args[0])
	if err != nil {
		return nil, err
	}
	sheet, err := style.Parse(data)
	if err != nil {
		return nil, errorf(ErrResource, "%s: %v", args[0], err)
	}
	if err := in.Styles().Merge(sheet, false); err != nil {
		return nil, wrap(ErrUsage, err)
	}
	return &loadStyle{bare{NameLoadStyle}}, nil
}

type chdir struct{ bare }

func newChdir(in *Interpreter, args []string) (Handler, error) {
	if err := requireArgs(args, 1, "chdir DIR"); err != nil {
		return nil, err
	}
	if err := in.Chdir(args[0]); err != nil {
		return nil, err
	}
	return &chdir{bare{NameChdir}}, nil
}
