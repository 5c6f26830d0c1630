package macro

import (
	"errors"
	"strings"
	"unicode"
)

// Kind is the classification of an input line.
type Kind int

const (
	PlainText Kind = iota
	Macro
	Comment
	Header
)

func (k Kind) String() string {
	switch k {
	case PlainText:
		return "plain"
	case Macro:
		return "macro"
	case Comment:
		return "comment"
	case Header:
		return "header"
	}
	return "unknown"
}

// Form is the shape of a macro line.
type Form int

const (
	NotMacro Form = iota
	Open          // opens a block closed by a later close line
	Close         // closes the innermost open block
	OneLine       // opens and closes on the same line
)

// Line is one classified input line.
type Line struct {
	Number  int
	Raw     string // as read, without the line terminator
	Text    string // after indent stripping and escape removal
	Kind    Kind
	Form    Form
	Escaped bool
	Empty   bool // plain, unescaped and empty after stripping
}

// Syntax holds the markers recognised by the classifier.
type Syntax struct {
	Open    string
	Close   string
	Comment string
	Header  string // empty disables header lines
	Escape  string
	Indent  string // one indentation step
}

// DefaultSyntax returns the standard markers.
func DefaultSyntax() Syntax {
	return Syntax{
		Open:    "(",
		Close:   ")",
		Comment: "#",
		Escape:  `\`,
		Indent:  "    ",
	}
}

// Validate checks the markers are usable together.
func (s Syntax) Validate() error {
	switch {
	case s.Open == "" || s.Close == "":
		return errors.New("macro open and close markers must not be empty")
	case s.Open == s.Close:
		return errors.New("macro open and close markers must differ")
	case s.Escape == "":
		return errors.New("escape marker must not be empty")
	case strings.TrimLeftFunc(s.Indent, unicode.IsSpace) != "":
		return errors.New("indent must be whitespace")
	}
	for _, m := range []string{s.Comment, s.Header} {
		if m != "" && (m == s.Open || m == s.Close || m == s.Escape) {
			return errors.New("comment and header markers must differ from the macro markers")
		}
	}
	return nil
}

// Dedent removes up to depth leading indentation steps.
func (s Syntax) Dedent(line string, depth int) string {
	if s.Indent == "" {
		return line
	}
	for ; depth > 0 && strings.HasPrefix(line, s.Indent); depth-- {
		line = line[len(s.Indent):]
	}
	return line
}

// Classify determines the kind of raw at the given nesting depth.
// The escape check comes first so an escaped marker is plain text.
func (s Syntax) Classify(raw string, depth int, strip bool) Line {
	raw = strings.TrimSuffix(raw, "\n")
	raw = strings.TrimSuffix(raw, "\r")

	l := Line{Raw: raw, Text: raw}
	if strip {
		l.Text = s.Dedent(raw, depth)
	}

	switch {
	case s.Escape != "" && strings.HasPrefix(l.Text, s.Escape):
		l.Text = l.Text[len(s.Escape):]
		l.Escaped = true
	case strings.HasPrefix(l.Text, s.Open):
		l.Kind, l.Form = Macro, Open
		body := strings.TrimRightFunc(l.Text, unicode.IsSpace)
		if len(body) >= len(s.Open)+len(s.Close) && strings.HasSuffix(body, s.Close) {
			l.Form = OneLine
		}
	case strings.HasPrefix(l.Text, s.Close):
		l.Kind, l.Form = Macro, Close
	case s.Comment != "" && strings.HasPrefix(l.Text, s.Comment):
		l.Kind = Comment
	case s.Header != "" && strings.HasPrefix(l.Text, s.Header):
		l.Kind = Header
	default:
		l.Empty = l.Text == ""
	}
	return l
}

// HeaderText returns the title carried by a header line.
func (s Syntax) HeaderText(l Line) string {
	return strings.TrimSpace(strings.TrimPrefix(l.Text, s.Header))
}

// ParseArgs splits a macro line into its arguments; the first is the macro
// name. Arguments are separated by spaces, tabs or vertical tabs. A double
// quote toggles quoting; quote characters are dropped and adjacent quoted
// and unquoted pieces join into one argument.
func (s Syntax) ParseArgs(text string) ([]string, error) {
	body := strings.TrimPrefix(text, s.Open)
	trimmed := strings.TrimRightFunc(body, unicode.IsSpace)
	if strings.HasSuffix(trimmed, s.Close) {
		body = strings.TrimSuffix(trimmed, s.Close)
	}

	args, err := splitArgs(body)
	if err != nil {
		return nil, err
	}
	if len(args) == 0 || args[0] == "" {
		return nil, errorf(ErrSyntax, "macro name missing")
	}
	return args, nil
}

func splitArgs(s string) ([]string, error) {
	var (
		args    []string
		cur     strings.Builder
		inArg   bool
		inQuote bool
	)
	for _, r := range s {
		switch {
		case r == '"':
			inQuote = !inQuote
			inArg = true
		case !inQuote && isArgSpace(r):
			if inArg {
				args = append(args, cur.String())
				cur.Reset()
				inArg = false
			}
		default:
			cur.WriteRune(r)
			inArg = true
		}
	}
	if inQuote {
		return nil, errorf(ErrSyntax, "unterminated quoted argument in %q", s)
	}
	if inArg {
		args = append(args, cur.String())
	}
	return args, nil
}

func isArgSpace(r rune) bool {
	return r == ' ' || r == '\t' || r == '\v'
}
