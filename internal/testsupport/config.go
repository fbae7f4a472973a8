package testsupport

import (
	"path/filepath"
	"testing"

	"tagdeck/internal/config"
)

// ConfigOption allows callers to customize the generated test configuration.
type ConfigOption func(*configBuilder)

type configBuilder struct {
	t       testing.TB
	baseDir string
	cfg     *config.Config
}

// NewConfig produces a config seeded with unique temp directories per test.
// It defaults common fields and applies any provided options.
func NewConfig(t testing.TB, opts ...ConfigOption) *config.Config {
	t.Helper()

	base := t.TempDir()
	cfgVal := config.Default()
	cfgVal.Paths.StateDir = filepath.Join(base, "state")
	cfgVal.Paths.LogDir = filepath.Join(base, "logs")
	cfgVal.Paths.CachePath = filepath.Join(base, "cache", "fetch.db")

	builder := &configBuilder{
		t:       t,
		baseDir: base,
		cfg:     &cfgVal,
	}

	for _, opt := range opts {
		opt(builder)
	}

	return builder.cfg
}

// WithSearchDepth overrides the tag file search ceiling.
func WithSearchDepth(depth int) ConfigOption {
	return func(b *configBuilder) {
		b.cfg.TagFiles.MaxSearchDepth = depth
	}
}

// WithFetchServer enables remote fetch against baseURL.
func WithFetchServer(baseURL string) ConfigOption {
	return func(b *configBuilder) {
		b.cfg.Fetch.Enabled = true
		b.cfg.Fetch.BaseURL = baseURL
	}
}

// WithLimits overrides the filename ceilings.
func WithLimits(maxName, maxPath int) ConfigOption {
	return func(b *configBuilder) {
		b.cfg.Limits.MaxNameLen = maxName
		b.cfg.Limits.MaxPathLen = maxPath
	}
}

// BaseDir returns the root temp directory backing the generated config.
func BaseDir(cfg *config.Config) string {
	return filepath.Dir(cfg.Paths.StateDir)
}
