// Package style loads and resolves style sheets.
//
// A sheet maps style names to paragraph or character styles. Sheets are
// written in YAML (JSON is accepted as well, being a subset), with three
// reserved top-level keys holding the list and caption text constants.
package style

import (
	_ "embed"
	"fmt"
	"io/fs"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"
)

//go:embed default.yaml
var defaultSheet []byte

// Reserved top-level keys of a style sheet.
const (
	KeyBulletPrefix  = "unordered_list_prefix"
	KeyCaptionPrefix = "image_caption_prefix"
	KeyCaptionInfix  = "image_caption_infix"
)

// Alignment is a paragraph alignment.
type Alignment string

const (
	AlignLeft    Alignment = "LEFT"
	AlignCenter  Alignment = "CENTER"
	AlignRight   Alignment = "RIGHT"
	AlignJustify Alignment = "JUSTIFY"
)

// Valid reports whether a is a known alignment. The empty alignment is valid
// and means "inherit".
func (a Alignment) Valid() bool {
	switch a {
	case "", AlignLeft, AlignCenter, AlignRight, AlignJustify:
		return true
	}
	return false
}

// Font holds character formatting. Unset fields inherit from the base style.
type Font struct {
	Name      string  `yaml:"name,omitempty"`
	Size      float64 `yaml:"size,omitempty"`
	Color     string  `yaml:"color,omitempty"`
	Highlight string  `yaml:"highlight_color,omitempty"`
	Bold      *bool   `yaml:"bold,omitempty"`
	Italic    *bool   `yaml:"italic,omitempty"`
	Underline *bool   `yaml:"underline,omitempty"`
	Strike    *bool   `yaml:"strike,omitempty"`
	AllCaps   *bool   `yaml:"all_caps,omitempty"`
}

// Style is a named paragraph or character style. Indents and spacing are
// centimetres, line spacing is a multiple of the font height.
type Style struct {
	Name            string    `yaml:"-"`
	Paragraph       bool      `yaml:"is_paragraph"`
	BaseStyle       string    `yaml:"base_style,omitempty"`
	HeadingLevel    int       `yaml:"heading_level,omitempty"`
	Alignment       Alignment `yaml:"alignment,omitempty"`
	FirstLineIndent *float64  `yaml:"first_line_indent,omitempty"`
	LeftIndent      *float64  `yaml:"left_indent,omitempty"`
	RightIndent     *float64  `yaml:"right_indent,omitempty"`
	SpaceBefore     *float64  `yaml:"space_before,omitempty"`
	SpaceAfter      *float64  `yaml:"space_after,omitempty"`
	LineSpacing     *float64  `yaml:"line_spacing,omitempty"`
	Font            Font      `yaml:"font,omitempty"`
}

// Validate checks a single style in isolation.
func (s *Style) Validate() error {
	if !s.Alignment.Valid() {
		return fmt.Errorf("style %q: invalid alignment %q", s.Name, s.Alignment)
	}
	if s.HeadingLevel < 0 || s.HeadingLevel > 6 {
		return fmt.Errorf("style %q: heading_level must be between 0 and 6", s.Name)
	}
	if c := s.Font.Color; c != "" && !isHexColor(c) {
		return fmt.Errorf("style %q: font color %q is not RRGGBB", s.Name, c)
	}
	if c := s.Font.Highlight; c != "" && !isHexColor(c) {
		return fmt.Errorf("style %q: highlight color %q is not RRGGBB", s.Name, c)
	}
	if s.Paragraph {
		return nil
	}
	// Character styles only carry font settings.
	if s.BaseStyle != "" || s.HeadingLevel != 0 || s.Alignment != "" ||
		s.FirstLineIndent != nil || s.LeftIndent != nil || s.RightIndent != nil ||
		s.SpaceBefore != nil || s.SpaceAfter != nil || s.LineSpacing != nil {
		return fmt.Errorf("style %q: character style may only set font", s.Name)
	}
	return nil
}

func isHexColor(s string) bool {
	if len(s) != 6 {
		return false
	}
	for _, r := range strings.ToLower(s) {
		if (r < '0' || r > '9') && (r < 'a' || r > 'f') {
			return false
		}
	}
	return true
}

// Sheet is a set of named styles plus the list and caption constants.
type Sheet struct {
	styles map[string]*Style

	BulletPrefix  string
	CaptionPrefix string
	CaptionInfix  string
}

// New returns an empty sheet.
func New() *Sheet {
	return &Sheet{styles: make(map[string]*Style)}
}

// Default returns a fresh copy of the built-in sheet.
func Default() *Sheet {
	s, err := Parse(defaultSheet)
	if err == nil {
		err = s.Check()
	}
	if err != nil {
		panic("style: embedded default sheet: " + err.Error())
	}
	return s
}

// Load reads and parses the self-contained sheet at name in fsys.
func Load(fsys fs.FS, name string) (*Sheet, error) {
	data, err := fs.ReadFile(fsys, name)
	if err != nil {
		return nil, fmt.Errorf("reading style sheet: %w", err)
	}
	s, err := Parse(data)
	if err == nil {
		err = s.Check()
	}
	if err != nil {
		return nil, fmt.Errorf("parsing style sheet %s: %w", name, err)
	}
	return s, nil
}

// Parse decodes a sheet. A style name appearing twice is an error. Base
// styles are not checked: a parsed sheet may extend styles of the sheet it
// is later merged into.
func Parse(data []byte) (*Sheet, error) {
	var root yaml.Node
	if err := yaml.Unmarshal(data, &root); err != nil {
		return nil, err
	}
	s := New()
	if len(root.Content) == 0 {
		return s, nil
	}
	top := root.Content[0]
	if top.Kind != yaml.MappingNode {
		return nil, fmt.Errorf("line %d: style sheet must be a mapping", top.Line)
	}

	for i := 0; i+1 < len(top.Content); i += 2 {
		key, val := top.Content[i], top.Content[i+1]
		name := key.Value

		switch name {
		case KeyBulletPrefix:
			if err := val.Decode(&s.BulletPrefix); err != nil {
				return nil, err
			}
			continue
		case KeyCaptionPrefix:
			if err := val.Decode(&s.CaptionPrefix); err != nil {
				return nil, err
			}
			continue
		case KeyCaptionInfix:
			if err := val.Decode(&s.CaptionInfix); err != nil {
				return nil, err
			}
			continue
		}

		if _, dup := s.styles[name]; dup {
			return nil, fmt.Errorf("line %d: style %q encountered twice", key.Line, name)
		}
		if val.Kind != yaml.MappingNode {
			return nil, fmt.Errorf("line %d: style %q must be a mapping", val.Line, name)
		}
		if !hasKey(val, "is_paragraph") {
			return nil, fmt.Errorf("line %d: style %q: is_paragraph is required", val.Line, name)
		}

		st := &Style{}
		if err := val.Decode(st); err != nil {
			return nil, fmt.Errorf("style %q: %w", name, err)
		}
		st.Name = name
		if err := st.Validate(); err != nil {
			return nil, err
		}
		s.styles[name] = st
	}
	return s, nil
}

func hasKey(n *yaml.Node, key string) bool {
	for i := 0; i+1 < len(n.Content); i += 2 {
		if n.Content[i].Value == key {
			return true
		}
	}
	return false
}

// Check verifies every base style exists, is a paragraph style, and that
// base chains do not loop.
func (s *Sheet) Check() error {
	for _, name := range s.Names() {
		if _, err := s.Resolve(name); err != nil {
			return err
		}
	}
	return nil
}

// Lookup returns the style as declared, without inheritance applied.
func (s *Sheet) Lookup(name string) (*Style, bool) {
	st, ok := s.styles[name]
	return st, ok
}

// Has reports whether the sheet declares name.
func (s *Sheet) Has(name string) bool {
	_, ok := s.styles[name]
	return ok
}

// Names returns the declared style names in sorted order.
func (s *Sheet) Names() []string {
	names := make([]string, 0, len(s.styles))
	for n := range s.styles {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

// Add declares a style. It fails if the name is already taken.
func (s *Sheet) Add(st *Style) error {
	if err := st.Validate(); err != nil {
		return err
	}
	if _, dup := s.styles[st.Name]; dup {
		return fmt.Errorf("style %q encountered twice", st.Name)
	}
	s.styles[st.Name] = st
	return nil
}

// Merge copies the styles of other into s. Unless override is set, a name
// declared in both sheets is an error. Non-empty constants of other replace
// those of s. On error s is left unchanged.
func (s *Sheet) Merge(other *Sheet, override bool) error {
	if !override {
		for _, name := range other.Names() {
			if _, dup := s.styles[name]; dup {
				return fmt.Errorf("style %q encountered twice", name)
			}
		}
	}
	merged := s.Clone()
	for name, st := range other.styles {
		cp := *st
		merged.styles[name] = &cp
	}
	if other.BulletPrefix != "" {
		merged.BulletPrefix = other.BulletPrefix
	}
	if other.CaptionPrefix != "" {
		merged.CaptionPrefix = other.CaptionPrefix
	}
	if other.CaptionInfix != "" {
		merged.CaptionInfix = other.CaptionInfix
	}
	if err := merged.Check(); err != nil {
		return err
	}
	*s = *merged
	return nil
}

// Clone returns a deep copy of s.
func (s *Sheet) Clone() *Sheet {
	c := New()
	c.BulletPrefix = s.BulletPrefix
	c.CaptionPrefix = s.CaptionPrefix
	c.CaptionInfix = s.CaptionInfix
	for name, st := range s.styles {
		cp := *st
		c.styles[name] = &cp
	}
	return c
}

// Resolve returns the named style with its base chain flattened into it.
func (s *Sheet) Resolve(name string) (Style, error) {
	st, ok := s.styles[name]
	if !ok {
		return Style{}, fmt.Errorf("unknown style %q", name)
	}

	chain := []*Style{st}
	seen := map[string]bool{name: true}
	for cur := st; cur.BaseStyle != ""; {
		base, ok := s.styles[cur.BaseStyle]
		if !ok {
			return Style{}, fmt.Errorf("style %q: unknown base style %q", cur.Name, cur.BaseStyle)
		}
		if !base.Paragraph {
			return Style{}, fmt.Errorf("style %q: base style %q is not a paragraph style", cur.Name, base.Name)
		}
		if seen[base.Name] {
			return Style{}, fmt.Errorf("style %q: base style cycle through %q", name, base.Name)
		}
		seen[base.Name] = true
		chain = append(chain, base)
		cur = base
	}

	var out Style
	for i := len(chain) - 1; i >= 0; i-- {
		out.inherit(chain[i])
	}
	out.Name = st.Name
	out.Paragraph = st.Paragraph
	out.BaseStyle = st.BaseStyle
	return out, nil
}

// inherit overlays the set fields of src onto s.
func (s *Style) inherit(src *Style) {
	if src.HeadingLevel != 0 {
		s.HeadingLevel = src.HeadingLevel
	}
	if src.Alignment != "" {
		s.Alignment = src.Alignment
	}
	overlay(&s.FirstLineIndent, src.FirstLineIndent)
	overlay(&s.LeftIndent, src.LeftIndent)
	overlay(&s.RightIndent, src.RightIndent)
	overlay(&s.SpaceBefore, src.SpaceBefore)
	overlay(&s.SpaceAfter, src.SpaceAfter)
	overlay(&s.LineSpacing, src.LineSpacing)
	s.Font.Overlay(src.Font)
}

// Overlay replaces the fields of f that are set in src.
func (f *Font) Overlay(src Font) {
	if src.Name != "" {
		f.Name = src.Name
	}
	if src.Size != 0 {
		f.Size = src.Size
	}
	if src.Color != "" {
		f.Color = src.Color
	}
	if src.Highlight != "" {
		f.Highlight = src.Highlight
	}
	overlay(&f.Bold, src.Bold)
	overlay(&f.Italic, src.Italic)
	overlay(&f.Underline, src.Underline)
	overlay(&f.Strike, src.Strike)
	overlay(&f.AllCaps, src.AllCaps)
}

func overlay[T any](dst **T, src *T) {
	if src != nil {
		v := *src
		*dst = &v
	}
}

// IsSet reports whether p is non-nil and true.
func IsSet(p *bool) bool {
	return p != nil && *p
}
