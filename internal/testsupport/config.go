package testsupport

import (
	"path/filepath"
	"testing"

	"coursepack/internal/config"
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
	cfgVal.Paths.MediaDB = filepath.Join(base, "media.db")
	cfgVal.Paths.MediaDir = filepath.Join(base, "media")
	cfgVal.Paths.OutputDir = filepath.Join(base, "out")
	cfgVal.Paths.LogDir = filepath.Join(base, "logs")

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

// WithBackend selects the media store backend on the test config.
func WithBackend(backend string) ConfigOption {
	return func(b *configBuilder) {
		b.cfg.Store.Backend = backend
	}
}

// WithPassMark sets the default assessment pass mark.
func WithPassMark(mark int) ConfigOption {
	return func(b *configBuilder) {
		b.cfg.Package.PassMark = mark
	}
}

// WithNavigationMode sets the default navigation mode.
func WithNavigationMode(mode string) ConfigOption {
	return func(b *configBuilder) {
		b.cfg.Package.NavigationMode = mode
	}
}

// BaseDir returns the root temp directory backing the generated config.
func BaseDir(cfg *config.Config) string {
	return filepath.Dir(cfg.Paths.MediaDB)
}
