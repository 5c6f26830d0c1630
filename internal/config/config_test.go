package config

import (
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// clearEnv unsets every variable LoadFromEnv reads for the test's duration.
func clearEnv(t *testing.T) {
	t.Helper()
	for _, k := range []string{
		"GOSTDOCX_URL", "ATLASSIAN_URL",
		"GOSTDOCX_EMAIL", "ATLASSIAN_EMAIL",
		"GOSTDOCX_API_TOKEN", "ATLASSIAN_API_TOKEN",
		"GOSTDOCX_DEFAULT_SPACE", "GOSTDOCX_STYLES",
		"GOSTDOCX_OUTPUT_FORMAT", "GOSTDOCX_MAX_DEPTH",
	} {
		t.Setenv(k, "")
	}
}

func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name    string
		modify  func(c *Config)
		wantErr bool
		errMsg  string
	}{
		{
			name:   "defaults",
			modify: func(c *Config) {},
		},
		{
			name:    "negative indent",
			modify:  func(c *Config) { c.IndentLength = -1 },
			wantErr: true,
			errMsg:  "indent_length",
		},
		{
			name:    "wide indent char",
			modify:  func(c *Config) { c.IndentChar = "ab" },
			wantErr: true,
			errMsg:  "indent_char",
		},
		{
			name:    "unknown format",
			modify:  func(c *Config) { c.OutputFormat = "docx" },
			wantErr: true,
			errMsg:  "unknown output_format",
		},
		{
			name:    "clashing delimiters",
			modify:  func(c *Config) { c.MacroClose = c.MacroOpen },
			wantErr: true,
			errMsg:  "invalid markup syntax",
		},
		{
			name:   "tab indent",
			modify: func(c *Config) { c.IndentChar, c.IndentLength = "\t", 1 },
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Defaults()
			tt.modify(cfg)
			err := cfg.Validate()
			if tt.wantErr {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.errMsg)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestConfig_ValidateCredentials(t *testing.T) {
	tests := []struct {
		name    string
		config  Config
		wantErr bool
		errMsg  string
	}{
		{
			name: "valid config",
			config: Config{
				URL:      "https://example.atlassian.net",
				Email:    "user@example.com",
				APIToken: "token123",
			},
		},
		{
			name:    "missing URL",
			config:  Config{Email: "user@example.com", APIToken: "token123"},
			wantErr: true,
			errMsg:  "url is required",
		},
		{
			name:    "missing email",
			config:  Config{URL: "https://example.atlassian.net", APIToken: "token123"},
			wantErr: true,
			errMsg:  "email is required",
		},
		{
			name:    "missing API token",
			config:  Config{URL: "https://example.atlassian.net", Email: "user@example.com"},
			wantErr: true,
			errMsg:  "api_token is required",
		},
		{
			name: "invalid URL scheme",
			config: Config{
				URL:      "ftp://example.atlassian.net",
				Email:    "user@example.com",
				APIToken: "token123",
			},
			wantErr: true,
			errMsg:  "url must use https",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.config.ValidateCredentials()
			if tt.wantErr {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.errMsg)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestConfig_NormalizeURL(t *testing.T) {
	tests := []struct {
		inputURL string
		expected string
	}{
		{"https://example.atlassian.net/wiki", "https://example.atlassian.net/wiki"},
		{"https://example.atlassian.net", "https://example.atlassian.net/wiki"},
		{"https://example.atlassian.net/", "https://example.atlassian.net/wiki"},
		{"https://example.atlassian.net/wiki/", "https://example.atlassian.net/wiki"},
	}

	for _, tt := range tests {
		t.Run(tt.inputURL, func(t *testing.T) {
			cfg := Config{URL: tt.inputURL}
			cfg.NormalizeURL()
			assert.Equal(t, tt.expected, cfg.URL)
		})
	}
}

func TestConfig_Syntax(t *testing.T) {
	t.Run("defaults", func(t *testing.T) {
		syn := Defaults().Syntax()
		assert.Equal(t, "(", syn.Open)
		assert.Equal(t, ")", syn.Close)
		assert.Equal(t, "    ", syn.Indent)
		assert.Empty(t, syn.Header)
	})

	t.Run("custom", func(t *testing.T) {
		cfg := &Config{
			MacroOpen:    "[[",
			MacroClose:   "]]",
			Header:       "=",
			IndentChar:   "\t",
			IndentLength: 1,
		}
		syn := cfg.Syntax()
		assert.Equal(t, "[[", syn.Open)
		assert.Equal(t, "]]", syn.Close)
		assert.Equal(t, "=", syn.Header)
		assert.Equal(t, "\t", syn.Indent)
		assert.Equal(t, "#", syn.Comment)
	})

	t.Run("indent length only", func(t *testing.T) {
		syn := (&Config{IndentLength: 2}).Syntax()
		assert.Equal(t, "  ", syn.Indent)
	})
}

func TestConfig_Options(t *testing.T) {
	no := false
	cfg := Defaults()
	cfg.SkipEmpty = &no
	cfg.MaxDepth = 8

	dir := t.TempDir()
	opts, err := cfg.Options(dir)
	require.NoError(t, err)
	assert.False(t, opts.SkipEmpty)
	assert.True(t, opts.StripIndent)
	assert.True(t, opts.StickCaptions)
	assert.Equal(t, 8, opts.MaxDepth)

	// The file system is the volume root; Dir leads back to dir.
	require.NoError(t, os.WriteFile(filepath.Join(dir, "marker.txt"), []byte("x"), 0o644))
	data, err := fs.ReadFile(opts.FS, path.Join(opts.Dir, "marker.txt"))
	require.NoError(t, err)
	assert.Equal(t, "x", string(data))
	assert.False(t, path.IsAbs(opts.Dir))
}

func TestConfig_LoadFromEnv(t *testing.T) {
	t.Run("loads all env vars", func(t *testing.T) {
		clearEnv(t)
		t.Setenv("GOSTDOCX_URL", "https://env.atlassian.net")
		t.Setenv("GOSTDOCX_EMAIL", "env@example.com")
		t.Setenv("GOSTDOCX_API_TOKEN", "env-token")
		t.Setenv("GOSTDOCX_DEFAULT_SPACE", "ENV")
		t.Setenv("GOSTDOCX_STYLES", "styles.yaml")
		t.Setenv("GOSTDOCX_OUTPUT_FORMAT", "adf")
		t.Setenv("GOSTDOCX_MAX_DEPTH", "12")

		cfg := &Config{}
		cfg.LoadFromEnv()

		assert.Equal(t, "https://env.atlassian.net", cfg.URL)
		assert.Equal(t, "env@example.com", cfg.Email)
		assert.Equal(t, "env-token", cfg.APIToken)
		assert.Equal(t, "ENV", cfg.DefaultSpace)
		assert.Equal(t, "styles.yaml", cfg.Styles)
		assert.Equal(t, "adf", cfg.OutputFormat)
		assert.Equal(t, 12, cfg.MaxDepth)
	})

	t.Run("unset vars keep existing values", func(t *testing.T) {
		clearEnv(t)
		cfg := &Config{URL: "https://file.atlassian.net", MaxDepth: 3}
		cfg.LoadFromEnv()

		assert.Equal(t, "https://file.atlassian.net", cfg.URL)
		assert.Equal(t, 3, cfg.MaxDepth)
	})

	t.Run("falls back to ATLASSIAN vars", func(t *testing.T) {
		clearEnv(t)
		t.Setenv("ATLASSIAN_URL", "https://shared.atlassian.net")
		t.Setenv("ATLASSIAN_EMAIL", "shared@example.com")
		t.Setenv("ATLASSIAN_API_TOKEN", "shared-token")

		cfg := &Config{}
		cfg.LoadFromEnv()

		assert.Equal(t, "https://shared.atlassian.net", cfg.URL)
		assert.Equal(t, "shared@example.com", cfg.Email)
		assert.Equal(t, "shared-token", cfg.APIToken)
	})

	t.Run("GOSTDOCX vars take precedence", func(t *testing.T) {
		clearEnv(t)
		t.Setenv("GOSTDOCX_URL", "https://primary.atlassian.net")
		t.Setenv("ATLASSIAN_URL", "https://shared.atlassian.net")

		cfg := &Config{}
		cfg.LoadFromEnv()

		assert.Equal(t, "https://primary.atlassian.net", cfg.URL)
	})

	t.Run("ignores bad max depth", func(t *testing.T) {
		clearEnv(t)
		t.Setenv("GOSTDOCX_MAX_DEPTH", "deep")

		cfg := &Config{MaxDepth: 5}
		cfg.LoadFromEnv()
		assert.Equal(t, 5, cfg.MaxDepth)
	})
}

func TestConfig_SaveAndLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sub", "config.yml")

	cfg := Defaults()
	cfg.Header = "="
	cfg.URL = "https://example.atlassian.net/wiki"
	cfg.APIToken = "secret"
	require.NoError(t, cfg.Save(path))

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0600), info.Mode().Perm())

	loaded, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, cfg, loaded)
}

func TestLoad_PartialFileKeepsDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yml")
	require.NoError(t, os.WriteFile(path, []byte("header: \"=\"\nskip_empty: false\n"), 0600))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "=", cfg.Header)
	assert.False(t, *cfg.SkipEmpty)
	assert.True(t, *cfg.StripIndent)
	assert.Equal(t, "(", cfg.MacroOpen)
}

func TestLoad_Errors(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.yml"))
	assert.ErrorIs(t, err, os.ErrNotExist)

	path := filepath.Join(t.TempDir(), "bad.yml")
	require.NoError(t, os.WriteFile(path, []byte("macro_open: [unclosed"), 0600))
	_, err = Load(path)
	assert.ErrorContains(t, err, "failed to parse config file")
}

func TestLoadWithEnv(t *testing.T) {
	clearEnv(t)
	t.Setenv("GOSTDOCX_DEFAULT_SPACE", "DOCS")

	cfg, err := LoadWithEnv(filepath.Join(t.TempDir(), "missing.yml"))
	require.NoError(t, err)
	assert.Equal(t, "DOCS", cfg.DefaultSpace)
	assert.Equal(t, FormatStorage, cfg.Format())

	path := filepath.Join(t.TempDir(), "bad.yml")
	require.NoError(t, os.WriteFile(path, []byte(":\n\t- nope"), 0600))
	_, err = LoadWithEnv(path)
	assert.Error(t, err)
}

func TestDefaultConfigPath(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", "/tmp/xdg")
	assert.Equal(t, filepath.Join("/tmp/xdg", "gostdocx", "config.yml"), DefaultConfigPath())

	t.Setenv("XDG_CONFIG_HOME", "")
	home, err := os.UserHomeDir()
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(home, ".config", "gostdocx", "config.yml"), DefaultConfigPath())
}
