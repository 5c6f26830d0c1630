package macro

import "strconv"

// container holds items only; stray text is an error.
type container struct {
	in    *Interpreter
	name  string
	items int
}

func (c *container) Name() string { return c.name }

func (c *container) Consume(line Line) error {
	if line.Empty {
		return nil
	}
	return errorf(ErrUsage, "text inside %s must be wrapped in an item macro", c.name)
}

func (c *container) Finalize() error {
	if c.items == 0 {
		c.in.Warn("%s has no items", c.name)
	}
	return nil
}

type unorderedList struct{ container }

func newUnorderedList(in *Interpreter, args []string) (Handler, error) {
	return &unorderedList{container{in: in, name: NameUnorderedList}}, nil
}

type orderedList struct {
	container
	next int
}

func newOrderedList(in *Interpreter, args []string) (Handler, error) {
	return &orderedList{container: container{in: in, name: NameOrderedList}, next: 1}, nil
}

// listItem is one paragraph of a list. Its content continues on new lines
// of the same paragraph when interrupted by nested macros.
type listItem struct {
	in   *Interpreter
	name string
	b    paragraphBuilder
}

func (h *listItem) Name() string { return h.name }

func (h *listItem) Consume(line Line) error {
	h.b.add(line.Text)
	return nil
}

func (h *listItem) Flush() error { return h.b.flush(h.in.Receiver()) }

func (h *listItem) Finalize() error { return h.Flush() }

func newUnorderedListItem(in *Interpreter, args []string) (Handler, error) {
	switch p := in.Handler().(type) {
	case *orderedList:
		return nil, errorf(ErrContext, "%s cannot be placed inside %s", NameUnorderedListItem, NameOrderedList)
	case *unorderedList:
		p.items++
	}
	return &listItem{
		in:   in,
		name: NameUnorderedListItem,
		b: paragraphBuilder{
			style:  StyleUnorderedList,
			prefix: in.Styles().BulletPrefix,
			always: true,
		},
	}, nil
}

func newOrderedListItem(in *Interpreter, args []string) (Handler, error) {
	list, ok := in.Handler().(*orderedList)
	if !ok {
		return nil, errorf(ErrContext, "%s must be placed directly inside %s, not %s",
			NameOrderedListItem, NameOrderedList, in.Handler().Name())
	}
	n := list.next
	list.next++
	list.items++
	return &listItem{
		in:   in,
		name: NameOrderedListItem,
		b: paragraphBuilder{
			style:  StyleOrderedList,
			prefix: strconv.Itoa(n) + ". ",
			always: true,
		},
	}, nil
}
