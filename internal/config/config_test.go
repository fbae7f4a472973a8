package config_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/pelletier/go-toml/v2"

	"tagdeck/internal/config"
	"tagdeck/internal/pathlimits"
)

func TestLoadDefaultConfigExpandsPaths(t *testing.T) {
	tempHome := t.TempDir()
	t.Setenv("HOME", tempHome)
	t.Setenv("XDG_STATE_HOME", "")
	t.Setenv("TAGDECK_FETCH_API_KEY", "env-key")
	t.Chdir(t.TempDir())

	cfg, resolved, exists, err := config.Load("")
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if resolved == "" {
		t.Fatal("expected resolved path")
	}
	if exists {
		t.Fatal("expected config file to be absent in temp HOME")
	}

	wantState := filepath.Join(tempHome, ".local", "state", "tagdeck")
	if cfg.Paths.StateDir != wantState {
		t.Fatalf("unexpected state dir: got %q want %q", cfg.Paths.StateDir, wantState)
	}
	if cfg.Paths.CachePath != filepath.Join(tempHome, ".cache", "tagdeck", "fetch.db") {
		t.Fatalf("unexpected cache path: %q", cfg.Paths.CachePath)
	}
	if cfg.TagFiles.OverridingFilename != "tags.txt" {
		t.Fatalf("unexpected overriding filename: %q", cfg.TagFiles.OverridingFilename)
	}
	if cfg.TagFiles.AppendingFilename != "tags.append.txt" {
		t.Fatalf("unexpected appending filename: %q", cfg.TagFiles.AppendingFilename)
	}
	if cfg.TagFiles.MaxSearchDepth != config.Default().TagFiles.MaxSearchDepth {
		t.Fatalf("unexpected search depth: %d", cfg.TagFiles.MaxSearchDepth)
	}
	if cfg.Fetch.Enabled {
		t.Fatal("expected fetch disabled by default")
	}
	if cfg.Fetch.APIKey != "env-key" {
		t.Fatalf("expected fetch api key from env, got %q", cfg.Fetch.APIKey)
	}
	if cfg.PathLimits() != pathlimits.Host() {
		t.Fatalf("expected host limits, got %+v", cfg.PathLimits())
	}

	if err := cfg.EnsureDirectories(); err != nil {
		t.Fatalf("EnsureDirectories failed: %v", err)
	}
	for _, dir := range []string{cfg.Paths.StateDir, cfg.Paths.LogDir, filepath.Dir(cfg.Paths.CachePath)} {
		info, err := os.Stat(dir)
		if err != nil {
			t.Fatalf("expected directory %q to exist: %v", dir, err)
		}
		if !info.IsDir() {
			t.Fatalf("expected %q to be directory", dir)
		}
	}
}

func TestLoadCustomPath(t *testing.T) {
	tempDir := t.TempDir()
	configPath := filepath.Join(tempDir, "tagdeck.toml")

	type payload struct {
		TagFiles struct {
			AppendingFilename  string `toml:"appending_filename"`
			OverridingFilename string `toml:"overriding_filename"`
			MaxSearchDepth     int    `toml:"max_search_depth"`
		} `toml:"tag_files"`
		Limits struct {
			MaxPathLen int `toml:"max_path_len"`
		} `toml:"limits"`
		Logging struct {
			Format string `toml:"format"`
		} `toml:"logging"`
	}
	custom := payload{}
	custom.TagFiles.AppendingFilename = " extra.tags "
	custom.TagFiles.OverridingFilename = "only.tags"
	custom.TagFiles.MaxSearchDepth = 3
	custom.Limits.MaxPathLen = 259
	custom.Logging.Format = "JSON"

	data, err := toml.Marshal(custom)
	if err != nil {
		t.Fatalf("marshal config: %v", err)
	}
	if err := os.WriteFile(configPath, data, 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	cfg, resolved, exists, err := config.Load(configPath)
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if !exists || resolved != configPath {
		t.Fatalf("expected config at %q, got %q (exists=%v)", configPath, resolved, exists)
	}
	if cfg.TagFiles.AppendingFilename != "extra.tags" {
		t.Fatalf("expected trimmed appending filename, got %q", cfg.TagFiles.AppendingFilename)
	}
	if cfg.TagFiles.OverridingFilename != "only.tags" {
		t.Fatalf("unexpected overriding filename: %q", cfg.TagFiles.OverridingFilename)
	}
	if cfg.TagFiles.MaxSearchDepth != 3 {
		t.Fatalf("unexpected depth: %d", cfg.TagFiles.MaxSearchDepth)
	}
	if cfg.PathLimits().MaxPathLen != 259 {
		t.Fatalf("expected path limit override, got %d", cfg.PathLimits().MaxPathLen)
	}
	if cfg.Logging.Format != "json" {
		t.Fatalf("expected normalized json format, got %q", cfg.Logging.Format)
	}
}

func TestLoadRejectsUnknownKeys(t *testing.T) {
	configPath := filepath.Join(t.TempDir(), "tagdeck.toml")
	if err := os.WriteFile(configPath, []byte("[tag_files]\nbogus = 1\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, _, _, err := config.Load(configPath); err == nil {
		t.Fatal("expected unknown key to fail parsing")
	}
}

func TestValidateErrors(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*config.Config)
		want   string
	}{
		{
			name:   "same tag file names",
			mutate: func(c *config.Config) { c.TagFiles.AppendingFilename = "TAGS.txt" },
			want:   "must differ",
		},
		{
			name:   "tag file with directory",
			mutate: func(c *config.Config) { c.TagFiles.OverridingFilename = "sub/tags.txt" },
			want:   "tag_files.overriding_filename",
		},
		{
			name:   "negative depth",
			mutate: func(c *config.Config) { c.TagFiles.MaxSearchDepth = -1 },
			want:   "max_search_depth",
		},
		{
			name:   "author first without author",
			mutate: func(c *config.Config) { c.Naming.AuthorFirst = true },
			want:   "naming.author_tag",
		},
		{
			name: "name longer than path",
			mutate: func(c *config.Config) {
				c.Limits.MaxNameLen = 300
				c.Limits.MaxPathLen = 259
			},
			want: "limits.max_name_len",
		},
		{
			name: "fetch bad scheme",
			mutate: func(c *config.Config) {
				c.Fetch.Enabled = true
				c.Fetch.BaseURL = "ftp://example.com"
			},
			want: "fetch.base_url",
		},
		{
			name:   "bad log level",
			mutate: func(c *config.Config) { c.Logging.Level = "loud" },
			want:   "logging.level",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := config.Default()
			tt.mutate(&cfg)
			err := cfg.Validate()
			if err == nil {
				t.Fatalf("expected validation error containing %q", tt.want)
			}
			if !strings.Contains(err.Error(), tt.want) {
				t.Fatalf("expected error containing %q, got %v", tt.want, err)
			}
		})
	}
}

func TestCreateSampleLoads(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	path := filepath.Join(t.TempDir(), "nested", "config.toml")
	if err := config.CreateSample(path); err != nil {
		t.Fatalf("CreateSample failed: %v", err)
	}
	cfg, _, exists, err := config.Load(path)
	if err != nil {
		t.Fatalf("sample config should load: %v", err)
	}
	if !exists {
		t.Fatal("expected sample config to exist")
	}
	if cfg.TagFiles.OverridingFilename != "tags.txt" {
		t.Fatalf("unexpected overriding filename from sample: %q", cfg.TagFiles.OverridingFilename)
	}
}
