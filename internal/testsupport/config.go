package testsupport

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"prunarr/internal/config"
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
	cfgVal.Radarr.URL = "http://127.0.0.1:7878"
	cfgVal.Radarr.APIKey = "test-key"
	cfgVal.Radarr.RequestsPerSecond = 0
	cfgVal.Paths.RequestsFile = filepath.Join(base, "data", "movies_to_delete.csv")
	cfgVal.Paths.ResultsDir = filepath.Join(base, "results")
	cfgVal.Paths.LogDir = filepath.Join(base, "logs")
	cfgVal.Paths.StateDir = filepath.Join(base, "state")

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

// WithRadarr points the config at a (usually fake) Radarr instance.
func WithRadarr(url, apiKey string) ConfigOption {
	return func(b *configBuilder) {
		b.cfg.Radarr.URL = url
		b.cfg.Radarr.APIKey = apiKey
	}
}

// WithRequests writes the given titles as a one-column CSV at the configured
// requests path.
func WithRequests(titles ...string) ConfigOption {
	return func(b *configBuilder) {
		WriteRequests(b.t, b.cfg.Paths.RequestsFile, titles...)
	}
}

// WriteRequests writes a one-column CSV of titles to path.
func WriteRequests(t testing.TB, path string, titles ...string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("mkdir for %s: %v", path, err)
	}
	var b strings.Builder
	for _, title := range titles {
		if strings.ContainsAny(title, ",\"\n") {
			title = `"` + strings.ReplaceAll(title, `"`, `""`) + `"`
		}
		b.WriteString(title)
		b.WriteByte('\n')
	}
	if err := os.WriteFile(path, []byte(b.String()), 0o644); err != nil {
		t.Fatalf("write %s: %v", path, err)
	}
}

// BaseDir returns the root temp directory backing the generated config.
func BaseDir(cfg *config.Config) string {
	return filepath.Dir(cfg.Paths.ResultsDir)
}
