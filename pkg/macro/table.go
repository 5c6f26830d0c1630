package macro

import (
	"strconv"

	"github.com/Ickli/gostdocx/pkg/doc"
)

// table adds a fixed-size grid. Only table-cell may appear inside.
type table struct {
	container
	t *doc.Table
}

func newTable(in *Interpreter, args []string) (Handler, error) {
	const usage = "table ROWS COLS [STYLE]"
	if err := requireArgs(args, 2, usage); err != nil {
		return nil, err
	}
	rows, err := positive(args[0], "row count")
	if err != nil {
		return nil, err
	}
	cols, err := positive(args[1], "column count")
	if err != nil {
		return nil, err
	}
	styleName := StyleTable
	if len(args) > 2 {
		styleName = args[2]
	}
	if _, ok := in.Receiver().(*doc.Document); !ok {
		return nil, errorf(ErrContext, "%s can only be added to the document, not inside another table or reader", NameTable)
	}

	t, err := in.Document().AddTable(rows, cols, styleName)
	if err != nil {
		return nil, err
	}
	return &table{container: container{in: in, name: NameTable}, t: t}, nil
}

func positive(s, what string) (int, error) {
	n, err := strconv.Atoi(s)
	if err != nil || n < 1 {
		return 0, errorf(ErrUsage, "%s must be a positive integer, got %q", what, s)
	}
	return n, nil
}

// tableCell redirects writes into one cell while its body runs.
type tableCell struct {
	in   *Interpreter
	cell *doc.Cell
	b    paragraphBuilder
}

func newTableCell(in *Interpreter, args []string) (Handler, error) {
	const usage = "table-cell ROW COL [STYLE]"
	parent, ok := in.Handler().(*table)
	if !ok {
		return nil, errorf(ErrContext, "%s must be placed directly inside %s, not %s",
			NameTableCell, NameTable, in.Handler().Name())
	}
	if err := requireArgs(args, 2, usage); err != nil {
		return nil, err
	}
	row, err := strconv.Atoi(args[0])
	if err != nil {
		return nil, errorf(ErrUsage, "row must be an integer, got %q", args[0])
	}
	col, err := strconv.Atoi(args[1])
	if err != nil {
		return nil, errorf(ErrUsage, "column must be an integer, got %q", args[1])
	}
	t := parent.t
	if row < 1 || row > t.Rows {
		return nil, errorf(ErrRange, "row %d out of range [1, %d]", row, t.Rows)
	}
	if col < 1 || col > t.Cols {
		return nil, errorf(ErrRange, "column %d out of range [1, %d]", col, t.Cols)
	}
	styleName := StyleTableText
	if len(args) > 2 {
		styleName = args[2]
	}

	cell, err := t.Cell(row-1, col-1)
	if err != nil {
		return nil, wrap(ErrRange, err)
	}
	parent.items++
	in.PushReceiver(cell)
	return &tableCell{in: in, cell: cell, b: paragraphBuilder{style: styleName}}, nil
}

func (h *tableCell) Name() string { return NameTableCell }

func (h *tableCell) Consume(line Line) error {
	h.b.add(line.Text)
	return nil
}

func (h *tableCell) Flush() error { return h.b.flush(h.cell) }

func (h *tableCell) Finalize() error {
	if err := h.Flush(); err != nil {
		return err
	}
	return h.in.PopReceiver(h.cell)
}
