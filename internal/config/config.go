// Package config provides configuration management for gostdocx.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/Ickli/gostdocx/pkg/macro"
)

// Output formats accepted by output_format and --format.
const (
	FormatADF      = "adf"
	FormatStorage  = "storage"
	FormatMarkdown = "markdown"
)

// Config holds the gostdocx configuration: markup syntax, engine behaviour
// and the Confluence credentials used by publish.
type Config struct {
	MacroOpen     string `yaml:"macro_open,omitempty"`
	MacroClose    string `yaml:"macro_close,omitempty"`
	Comment       string `yaml:"comment,omitempty"`
	Header        string `yaml:"header,omitempty"`
	Escape        string `yaml:"escape,omitempty"`
	IndentChar    string `yaml:"indent_char,omitempty"`
	IndentLength  int    `yaml:"indent_length,omitempty"`
	StripIndent   *bool  `yaml:"strip_indent,omitempty"`
	SkipEmpty     *bool  `yaml:"skip_empty,omitempty"`
	StickCaptions *bool  `yaml:"stick_captions,omitempty"`
	MaxDepth      int    `yaml:"max_depth,omitempty"`
	Styles        string `yaml:"styles,omitempty"`
	OutputFormat  string `yaml:"output_format,omitempty"`

	URL          string `yaml:"url,omitempty"`
	Email        string `yaml:"email,omitempty"`
	APIToken     string `yaml:"api_token,omitempty"`
	DefaultSpace string `yaml:"default_space,omitempty"`
}

// Defaults returns a configuration with the engine defaults filled in.
func Defaults() *Config {
	syn := macro.DefaultSyntax()
	yes := true
	return &Config{
		MacroOpen:     syn.Open,
		MacroClose:    syn.Close,
		Comment:       syn.Comment,
		Escape:        syn.Escape,
		IndentChar:    " ",
		IndentLength:  4,
		StripIndent:   &yes,
		SkipEmpty:     &yes,
		StickCaptions: &yes,
		MaxDepth:      macro.DefaultMaxDepth,
		OutputFormat:  FormatStorage,
	}
}

// Validate checks the engine settings.
func (c *Config) Validate() error {
	if c.IndentLength < 0 {
		return errors.New("indent_length must not be negative")
	}
	if c.MaxDepth < 0 {
		return errors.New("max_depth must not be negative")
	}
	if len([]rune(c.IndentChar)) > 1 {
		return fmt.Errorf("indent_char must be a single character, got %q", c.IndentChar)
	}
	switch c.OutputFormat {
	case "", FormatADF, FormatStorage, FormatMarkdown:
	default:
		return fmt.Errorf("unknown output_format %q (want adf, storage or markdown)", c.OutputFormat)
	}
	if err := c.Syntax().Validate(); err != nil {
		return fmt.Errorf("invalid markup syntax: %w", err)
	}
	return nil
}

// ValidateCredentials checks that all fields needed to talk to Confluence
// are present and valid.
func (c *Config) ValidateCredentials() error {
	if c.URL == "" {
		return errors.New("url is required")
	}
	if c.Email == "" {
		return errors.New("email is required")
	}
	if c.APIToken == "" {
		return errors.New("api_token is required")
	}
	if !strings.HasPrefix(c.URL, "https://") {
		return errors.New("url must use https")
	}
	return nil
}

// NormalizeURL ensures the URL has the /wiki suffix for Confluence Cloud.
func (c *Config) NormalizeURL() {
	c.URL = strings.TrimSuffix(c.URL, "/")
	if !strings.HasSuffix(c.URL, "/wiki") {
		c.URL = c.URL + "/wiki"
	}
}

// Syntax projects the markup settings onto the engine syntax. Unset fields
// keep the engine defaults; an empty indent_char falls back to a space.
func (c *Config) Syntax() macro.Syntax {
	syn := macro.DefaultSyntax()
	if c.MacroOpen != "" {
		syn.Open = c.MacroOpen
	}
	if c.MacroClose != "" {
		syn.Close = c.MacroClose
	}
	if c.Comment != "" {
		syn.Comment = c.Comment
	}
	if c.Escape != "" {
		syn.Escape = c.Escape
	}
	syn.Header = c.Header
	if c.IndentChar != "" || c.IndentLength > 0 {
		ch, n := c.IndentChar, c.IndentLength
		if ch == "" {
			ch = " "
		}
		if n == 0 {
			n = 4
		}
		syn.Indent = strings.Repeat(ch, n)
	}
	return syn
}

// Options projects the configuration onto engine options for a document
// in dir. Resources resolve on the real file system: the engine's file
// system is the volume root and dir, made absolute, is where relative
// paths start. The style sheet named by styles is not loaded here.
func (c *Config) Options(dir string) (macro.Options, error) {
	abs, err := filepath.Abs(dir)
	if err != nil {
		return macro.Options{}, fmt.Errorf("resolving %s: %w", dir, err)
	}
	vol := filepath.VolumeName(abs)
	rel := strings.TrimLeft(filepath.ToSlash(abs[len(vol):]), "/")
	if rel == "" {
		rel = "."
	}

	opts := macro.DefaultOptions()
	opts.Syntax = c.Syntax()
	opts.FS = os.DirFS(vol + string(filepath.Separator))
	opts.Dir = rel
	if c.StripIndent != nil {
		opts.StripIndent = *c.StripIndent
	}
	if c.SkipEmpty != nil {
		opts.SkipEmpty = *c.SkipEmpty
	}
	if c.StickCaptions != nil {
		opts.StickCaptions = *c.StickCaptions
	}
	if c.MaxDepth > 0 {
		opts.MaxDepth = c.MaxDepth
	}
	return opts, nil
}

// Format returns the configured output format, storage if unset.
func (c *Config) Format() string {
	if c.OutputFormat == "" {
		return FormatStorage
	}
	return c.OutputFormat
}

// LoadFromEnv loads configuration from environment variables.
// Environment variables override existing values only if set and non-empty.
// Precedence: GOSTDOCX_* → ATLASSIAN_* → existing config value
func (c *Config) LoadFromEnv() {
	if url := getEnvWithFallback("GOSTDOCX_URL", "ATLASSIAN_URL"); url != "" {
		c.URL = url
	}
	if email := getEnvWithFallback("GOSTDOCX_EMAIL", "ATLASSIAN_EMAIL"); email != "" {
		c.Email = email
	}
	if token := getEnvWithFallback("GOSTDOCX_API_TOKEN", "ATLASSIAN_API_TOKEN"); token != "" {
		c.APIToken = token
	}
	if space := os.Getenv("GOSTDOCX_DEFAULT_SPACE"); space != "" {
		c.DefaultSpace = space
	}
	if styles := os.Getenv("GOSTDOCX_STYLES"); styles != "" {
		c.Styles = styles
	}
	if format := os.Getenv("GOSTDOCX_OUTPUT_FORMAT"); format != "" {
		c.OutputFormat = format
	}
	if depth, err := strconv.Atoi(os.Getenv("GOSTDOCX_MAX_DEPTH")); err == nil && depth > 0 {
		c.MaxDepth = depth
	}
}

// getEnvWithFallback returns the value of the primary env var, or the fallback if primary is empty.
func getEnvWithFallback(primary, fallback string) string {
	if v := os.Getenv(primary); v != "" {
		return v
	}
	return os.Getenv(fallback)
}

// DefaultConfigPath returns the default configuration file path.
func DefaultConfigPath() string {
	if xdgConfig := os.Getenv("XDG_CONFIG_HOME"); xdgConfig != "" {
		return filepath.Join(xdgConfig, "gostdocx", "config.yml")
	}

	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(".", ".gostdocx", "config.yml")
	}

	return filepath.Join(home, ".config", "gostdocx", "config.yml")
}

// Save writes the configuration to the specified path.
func (c *Config) Save(path string) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	// The file may hold an API token.
	if err := os.WriteFile(path, data, 0600); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// Load reads the configuration from the specified path on top of the
// defaults.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	cfg := Defaults()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	return cfg, nil
}

// LoadWithEnv loads configuration from file and overrides with environment
// variables. A missing file yields the defaults; a malformed one is an error.
func LoadWithEnv(path string) (*Config, error) {
	cfg, err := Load(path)
	if err != nil {
		if !errors.Is(err, os.ErrNotExist) {
			return nil, err
		}
		cfg = Defaults()
	}

	cfg.LoadFromEnv()
	return cfg, nil
}
