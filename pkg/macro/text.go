package macro

import (
	"fmt"
	"strings"
)

// documentHandler is the implicit top-level handler. Each run of plain
// lines between macros becomes one paragraph in the default style.
type documentHandler struct {
	in *Interpreter
	b  paragraphBuilder
}

func newDocumentHandler(in *Interpreter) *documentHandler {
	return &documentHandler{in: in, b: paragraphBuilder{style: StyleNormal, batch: true}}
}

func (h *documentHandler) Name() string { return NameDocument }

func (h *documentHandler) Consume(line Line) error {
	h.b.add(line.Text)
	return nil
}

func (h *documentHandler) Flush() error { return h.b.flush(h.in.Receiver()) }

func (h *documentHandler) Finalize() error { return h.Flush() }

// echo prints its arguments; useful for tracing a conversion.
type echo struct{ bare }

func newEcho(in *Interpreter, args []string) (Handler, error) {
	fmt.Fprintf(in.Stdout(), "line %d: %s\n", in.Line(), strings.Join(args, " "))
	return &echo{bare{NameEcho}}, nil
}

// paragraphStyled writes its content as one paragraph in the given style.
type paragraphStyled struct {
	in *Interpreter
	b  paragraphBuilder
}

func newParagraphStyled(in *Interpreter, args []string) (Handler, error) {
	if err := requireArgs(args, 1, "paragraph-styled STYLE"); err != nil {
		return nil, err
	}
	return &paragraphStyled{in: in, b: paragraphBuilder{style: args[0], always: true}}, nil
}

func (h *paragraphStyled) Name() string { return NameParagraphStyled }

func (h *paragraphStyled) Consume(line Line) error {
	h.b.add(line.Text)
	return nil
}

func (h *paragraphStyled) Flush() error { return h.b.flush(h.in.Receiver()) }

func (h *paragraphStyled) Finalize() error { return h.Flush() }

// runStyled appends its content to the last paragraph as a styled run.
type runStyled struct {
	in    *Interpreter
	style string
	lines []string
}

func newRunStyled(in *Interpreter, args []string) (Handler, error) {
	if err := requireArgs(args, 1, "run-styled STYLE"); err != nil {
		return nil, err
	}
	return &runStyled{in: in, style: args[0]}, nil
}

func (h *runStyled) Name() string { return NameRunStyled }

func (h *runStyled) Consume(line Line) error {
	h.lines = append(h.lines, line.Text)
	return nil
}

func (h *runStyled) Finalize() error {
	if len(h.lines) == 0 {
		return nil
	}
	_, err := h.in.Receiver().AddRun(strings.Join(h.lines, "\n"), h.style)
	return err
}
