package macro

import (
	"fmt"
	"sort"

	"github.com/Ickli/gostdocx/pkg/doc"
)

// Handler is the behaviour behind one macro invocation.
//
// The interpreter constructs a handler when its macro opens, passes it every
// content line of its body, and calls Finalize exactly once when the body
// closes. One-line invocations are finalized without any Consume calls.
type Handler interface {
	Name() string
	Consume(line Line) error
	Finalize() error
}

// Flusher is implemented by handlers that buffer content. Flush commits
// the buffer; the interpreter calls it before a nested macro opens when the
// handler's name is in the auto-flush set.
type Flusher interface {
	Flush() error
}

// Factory constructs a handler. in.Handler() is the parent handler at the
// time of the call; args excludes the macro name.
type Factory func(in *Interpreter, args []string) (Handler, error)

// Definition names a factory.
type Definition struct {
	Name string
	New  Factory
}

// Receiver is the destination paragraphs and runs are written to: the
// document itself, a table cell, or a proxy installed by a handler.
type Receiver interface {
	AddParagraph(text, style string) (*doc.Paragraph, error)
	AddRun(text, style string) (*doc.Run, error)
	Paragraphs() []*doc.Paragraph
}

// Registry maps macro names to factories.
type Registry struct {
	factories map[string]Factory
}

// NewRegistry returns the built-in macros overlaid with extensions.
// Extensions shadow built-ins of the same name; supplying the same
// extension name twice is an error.
func NewRegistry(extensions ...Definition) (*Registry, error) {
	r := &Registry{factories: make(map[string]Factory)}
	for _, d := range Builtins() {
		r.factories[d.Name] = d.New
	}
	seen := make(map[string]bool)
	for _, d := range extensions {
		if d.Name == "" || d.New == nil {
			return nil, fmt.Errorf("extension macro needs a name and a factory")
		}
		if seen[d.Name] {
			return nil, fmt.Errorf("extension macro %q supplied twice", d.Name)
		}
		seen[d.Name] = true
		r.factories[d.Name] = d.New
	}
	return r, nil
}

// Register adds a macro. Names already present are rejected.
func (r *Registry) Register(name string, f Factory) error {
	if _, ok := r.factories[name]; ok {
		return fmt.Errorf("macro %q already registered", name)
	}
	r.factories[name] = f
	return nil
}

// Lookup returns the factory for name.
func (r *Registry) Lookup(name string) (Factory, bool) {
	f, ok := r.factories[name]
	return f, ok
}

// Resolve is Lookup with an error for unknown names.
func (r *Registry) Resolve(name string) (Factory, error) {
	f, ok := r.factories[name]
	if !ok {
		return nil, &Error{Kind: ErrSyntax, Macro: name, Err: fmt.Errorf("unknown macro %q", name)}
	}
	return f, nil
}

// Names returns the registered macro names in sorted order.
func (r *Registry) Names() []string {
	names := make([]string, 0, len(r.factories))
	for n := range r.factories {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}
