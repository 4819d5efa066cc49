package testsupport

import (
	"os"
	"path/filepath"
	"testing"

	"animeapi/internal/config"
)

// ConfigOption allows callers to customize the generated test configuration.
type ConfigOption func(*configBuilder)

type configBuilder struct {
	t       testing.TB
	baseDir string
	cfg     *config.Config
}

// NewConfig produces a config rooted in a per-test temp directory. Every
// configured directory exists on return.
func NewConfig(t testing.TB, opts ...ConfigOption) *config.Config {
	t.Helper()

	base := t.TempDir()
	cfgVal := config.Default()
	cfgVal.Paths.DataDir = filepath.Join(base, "data")
	cfgVal.Paths.ManualDir = filepath.Join(base, "manual")
	cfgVal.Paths.OutputDir = filepath.Join(base, "output")
	cfgVal.Paths.StateDir = filepath.Join(base, "state")
	cfgVal.Store.Path = filepath.Join(base, "state", "animeapi.db")
	cfgVal.Matching.Workers = 2
	cfgVal.Logging.Format = "json"

	builder := &configBuilder{t: t, baseDir: base, cfg: &cfgVal}
	for _, opt := range opts {
		opt(builder)
	}

	for _, dir := range []string{cfgVal.Paths.DataDir, cfgVal.Paths.ManualDir, cfgVal.Paths.OutputDir, cfgVal.Paths.StateDir} {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			t.Fatalf("mkdir %s: %v", dir, err)
		}
	}
	return builder.cfg
}

// WithThreshold overrides the fuzzy threshold of one platform.
func WithThreshold(platform string, value int) ConfigOption {
	return func(b *configBuilder) {
		b.cfg.Matching.Thresholds[platform] = value
	}
}

// WithKV enables the KV sync against the given URL.
func WithKV(url string) ConfigOption {
	return func(b *configBuilder) {
		b.cfg.KV.Enabled = true
		b.cfg.KV.RedisURL = url
	}
}

// WithMetricsTextfile points the metrics export into the temp directory.
func WithMetricsTextfile(name string) ConfigOption {
	return func(b *configBuilder) {
		b.cfg.Metrics.Textfile = filepath.Join(b.baseDir, name)
	}
}

// BaseDir returns the root temp directory backing the generated config.
func BaseDir(cfg *config.Config) string {
	return filepath.Dir(cfg.Paths.DataDir)
}
