package macro

// numbered writes a paragraph prefixed with a hierarchical number.
type numbered struct {
	in *Interpreter
	b  paragraphBuilder
}

func newNumbered(in *Interpreter, args []string) (Handler, error) {
	if err := requireArgs(args, 2, "numbered STYLE LABEL..."); err != nil {
		return nil, err
	}
	label, err := in.Counters().Numbering.Next(args[1:])
	if err != nil {
		return nil, wrap(ErrUsage, err)
	}
	return &numbered{in: in, b: paragraphBuilder{style: args[0], prefix: label + " ", always: true}}, nil
}

func (h *numbered) Name() string { return NameNumbered }

func (h *numbered) Consume(line Line) error {
	h.b.add(line.Text)
	return nil
}

func (h *numbered) Flush() error { return h.b.flush(h.in.Receiver()) }

func (h *numbered) Finalize() error { return h.Flush() }

type numberingErase struct{ bare }

func newNumberingErase(in *Interpreter, args []string) (Handler, error) {
	if err := requireArgs(args, 1, "numbering-erase LABEL..."); err != nil {
		return nil, err
	}
	if err := in.Counters().Numbering.Erase(args); err != nil {
		return nil, wrap(ErrUsage, err)
	}
	return &numberingErase{bare{NameNumberingErase}}, nil
}

// Consume rejects every line, blank ones included.
func (h *numberingErase) Consume(line Line) error {
	return errorf(ErrUsage, "%s takes no content", NameNumberingErase)
}
