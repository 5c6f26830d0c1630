// Package pipeline runs the macro engine the way the commands need it:
// configuration and style sheet loading, conversion, then rendering.
package pipeline

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/Ickli/gostdocx/internal/config"
	"github.com/Ickli/gostdocx/pkg/doc"
	"github.com/Ickli/gostdocx/pkg/macro"
	"github.com/Ickli/gostdocx/pkg/style"
)

// Input names the markup to convert.
type Input struct {
	// Path of the markup file. Empty or "-" reads Reader instead.
	Path   string
	Reader io.Reader
	// Dir resolves images, JSON data, style sheets and appended documents.
	// Defaults to the directory of Path, or the working directory.
	Dir string
	// Echo receives output of the echo macro. Nil discards it.
	Echo io.Writer
}

// LoadConfig reads the configuration at path (the default path if empty)
// with environment overrides applied.
func LoadConfig(path string) (*config.Config, error) {
	if path == "" {
		path = config.DefaultConfigPath()
	}
	cfg, err := config.LoadWithEnv(path)
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	return cfg, nil
}

// LoadStyles returns the default sheet overlaid with the sheet at path.
// Styles in the file replace default styles of the same name.
func LoadStyles(path string) (*style.Sheet, error) {
	sheet := style.Default()
	if path == "" {
		return sheet, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read style sheet: %w", err)
	}
	user, err := style.Parse(data)
	if err != nil {
		return nil, fmt.Errorf("style sheet %s: %w", path, err)
	}
	if err := sheet.Merge(user, true); err != nil {
		return nil, fmt.Errorf("style sheet %s: %w", path, err)
	}
	return sheet, nil
}

// Convert runs the macro engine over in with the settings of cfg.
func Convert(cfg *config.Config, in Input) (*macro.Result, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	r, dir := in.Reader, in.Dir
	if in.Path != "" && in.Path != "-" {
		f, err := os.Open(in.Path)
		if err != nil {
			return nil, fmt.Errorf("failed to open input: %w", err)
		}
		defer f.Close()
		r = f
		if dir == "" {
			dir = filepath.Dir(in.Path)
		}
	}
	if r == nil {
		return nil, fmt.Errorf("no input given")
	}
	if dir == "" {
		dir = "."
	}

	sheet, err := LoadStyles(cfg.Styles)
	if err != nil {
		return nil, err
	}

	opts, err := cfg.Options(dir)
	if err != nil {
		return nil, err
	}
	opts.Styles = sheet
	opts.Stdout = in.Echo
	return macro.Convert(r, opts)
}

// Render serializes d in one of the config.Format* formats.
func Render(d *doc.Document, format string) ([]byte, error) {
	switch format {
	case config.FormatStorage, "":
		return []byte(doc.RenderStorage(d) + "\n"), nil
	case config.FormatADF:
		data, err := doc.RenderADF(d)
		if err != nil {
			return nil, err
		}
		return append(data, '\n'), nil
	case config.FormatMarkdown:
		md, err := doc.RenderMarkdown(d)
		if err != nil {
			return nil, err
		}
		return []byte(md + "\n"), nil
	}
	return nil, fmt.Errorf("unknown format %q", format)
}

// Title picks a page title: the first heading of d, else the input's base
// name without extension.
func Title(d *doc.Document, path string) string {
	for _, b := range d.Blocks {
		if h, ok := b.(*doc.Heading); ok && h.Text != "" {
			return h.Text
		}
	}
	if path == "" || path == "-" {
		return "Untitled"
	}
	base := filepath.Base(path)
	return base[:len(base)-len(filepath.Ext(base))]
}
