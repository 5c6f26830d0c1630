package macro

import (
	"errors"
	"fmt"

	"github.com/Ickli/gostdocx/pkg/doc"
)

// Error kinds. Every conversion failure wraps exactly one of these.
var (
	ErrSyntax   = errors.New("syntax error")
	ErrContext  = errors.New("context error")
	ErrArity    = errors.New("arity error")
	ErrUsage    = errors.New("usage error")
	ErrRange    = errors.New("range error")
	ErrResource = errors.New("resource error")
	ErrState    = errors.New("state error")
)

// Error is a conversion failure with its location.
type Error struct {
	Kind  error  // one of the Err* kinds
	Line  int    // 1-indexed input line, 0 if unknown
	Macro string // enclosing or offending macro, if any
	Err   error
}

func (e *Error) Error() string {
	msg := e.Kind.Error() + ": " + e.Err.Error()
	if e.Macro != "" {
		msg = e.Macro + ": " + msg
	}
	if e.Line > 0 {
		msg = fmt.Sprintf("line %d: %s", e.Line, msg)
	}
	return msg
}

// Unwrap exposes both the kind and the cause to errors.Is.
func (e *Error) Unwrap() []error {
	return []error{e.Kind, e.Err}
}

func errorf(kind error, format string, args ...any) *Error {
	return &Error{Kind: kind, Err: fmt.Errorf(format, args...)}
}

// wrap classifies a foreign error without formatting it.
func wrap(kind, err error) *Error {
	return &Error{Kind: kind, Err: err}
}

// stamp fills in the location of err. Errors that are not an *Error are
// classified: unknown styles are usage errors, anything else a state error.
func stamp(err error, line int, macro string) error {
	var e *Error
	if !errors.As(err, &e) {
		kind := ErrState
		if errors.Is(err, doc.ErrUnknownStyle) {
			kind = ErrUsage
		}
		return &Error{Kind: kind, Line: line, Macro: macro, Err: err}
	}
	if e.Line == 0 {
		e.Line = line
	}
	if e.Macro == "" {
		e.Macro = macro
	}
	return err
}

// requireArgs fails with an arity error when fewer than n arguments are given.
func requireArgs(args []string, n int, usage string) error {
	if len(args) < n {
		return errorf(ErrArity, "usage: %s", usage)
	}
	return nil
}
