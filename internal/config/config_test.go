package config_test

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/pelletier/go-toml/v2"

	"prunarr/internal/config"
	"prunarr/internal/services"
)

func TestLoadDefaultConfigUsesEnvKeyAndExpandsPaths(t *testing.T) {
	t.Setenv("RADARR_API_KEY", "  env-key  ")
	t.Setenv("RADARR_URL", "")
	t.Setenv("PRUNARR_NTFY_TOPIC", "")
	tempHome := t.TempDir()
	t.Setenv("HOME", tempHome)
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

	wantState := filepath.Join(tempHome, ".local", "share", "prunarr")
	if cfg.Paths.StateDir != wantState {
		t.Fatalf("unexpected state dir: got %q want %q", cfg.Paths.StateDir, wantState)
	}
	if !filepath.IsAbs(cfg.Paths.ResultsDir) || filepath.Base(cfg.Paths.ResultsDir) != "results" {
		t.Fatalf("unexpected results dir: %q", cfg.Paths.ResultsDir)
	}
	if !strings.HasSuffix(cfg.Paths.RequestsFile, filepath.Join("data", "movies_to_delete.csv")) {
		t.Fatalf("unexpected requests file: %q", cfg.Paths.RequestsFile)
	}
	if cfg.Radarr.APIKey != "env-key" {
		t.Fatalf("expected trimmed Radarr key from env, got %q", cfg.Radarr.APIKey)
	}
	if cfg.Radarr.URL != config.Default().Radarr.URL {
		t.Fatalf("unexpected Radarr url: %q", cfg.Radarr.URL)
	}
	if !cfg.History.Enabled {
		t.Fatal("expected history enabled by default")
	}
	if cfg.LockPath() != filepath.Join(wantState, "prunarr.lock") {
		t.Fatalf("unexpected lock path: %q", cfg.LockPath())
	}
	if err := cfg.EnsureDirectories(); err != nil {
		t.Fatalf("EnsureDirectories failed: %v", err)
	}
	for _, dir := range []string{cfg.Paths.ResultsDir, cfg.Paths.LogDir, cfg.Paths.StateDir} {
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
	t.Setenv("RADARR_API_KEY", "")
	t.Setenv("RADARR_URL", "")
	tempDir := t.TempDir()
	configPath := filepath.Join(tempDir, "prunarr.toml")

	type payload struct {
		Paths struct {
			ResultsDir string `toml:"results_dir"`
		} `toml:"paths"`
		Radarr struct {
			URL               string  `toml:"url"`
			APIKey            string  `toml:"api_key"`
			RequestsPerSecond float64 `toml:"requests_per_second"`
		} `toml:"radarr"`
		Logging struct {
			Format string `toml:"format"`
		} `toml:"logging"`
	}
	custom := payload{}
	custom.Paths.ResultsDir = filepath.Join(tempDir, "out")
	custom.Radarr.URL = "http://radarr.lan:7878/"
	custom.Radarr.APIKey = "file-key"
	custom.Radarr.RequestsPerSecond = 2
	custom.Logging.Format = "JSON"

	data, err := toml.Marshal(custom)
	if err != nil {
		t.Fatalf("marshal payload: %v", err)
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
	if cfg.Radarr.URL != "http://radarr.lan:7878" {
		t.Fatalf("expected trailing slash trimmed, got %q", cfg.Radarr.URL)
	}
	if cfg.Radarr.APIKey != "file-key" {
		t.Fatalf("unexpected api key %q", cfg.Radarr.APIKey)
	}
	if cfg.Radarr.RequestsPerSecond != 2 {
		t.Fatalf("unexpected pacing %v", cfg.Radarr.RequestsPerSecond)
	}
	if cfg.Paths.ResultsDir != filepath.Join(tempDir, "out") {
		t.Fatalf("unexpected results dir %q", cfg.Paths.ResultsDir)
	}
	if cfg.Logging.Format != "json" {
		t.Fatalf("expected json format, got %q", cfg.Logging.Format)
	}
}

func TestFileKeyWinsOverEnv(t *testing.T) {
	t.Setenv("RADARR_API_KEY", "env-key")
	configPath := filepath.Join(t.TempDir(), "prunarr.toml")
	if err := os.WriteFile(configPath, []byte("[radarr]\napi_key = \"file-key\"\n"), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	cfg, _, _, err := config.Load(configPath)
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if cfg.Radarr.APIKey != "file-key" {
		t.Fatalf("expected file key to win, got %q", cfg.Radarr.APIKey)
	}
}

func TestValidateRejectsBadValues(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*config.Config)
		want   string
	}{
		{"bad radarr scheme", func(c *config.Config) { c.Radarr.URL = "ftp://radarr" }, "radarr"},
		{"missing host", func(c *config.Config) { c.Radarr.URL = "http://" }, "radarr"},
		{"negative pacing", func(c *config.Config) { c.Radarr.RequestsPerSecond = -1 }, "radarr"},
		{"bad log level", func(c *config.Config) { c.Logging.Level = "verbose" }, "logging"},
		{"bad ntfy topic", func(c *config.Config) { c.Notifications.NtfyTopic = "my-topic" }, "notifications"},
		{"empty results dir", func(c *config.Config) { c.Paths.ResultsDir = "" }, "paths"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			cfg := config.Default()
			tc.mutate(&cfg)
			err := cfg.Validate()
			if err == nil {
				t.Fatal("expected validation error")
			}
			if !strings.HasPrefix(err.Error(), tc.want) {
				t.Fatalf("expected %q section in error, got %v", tc.want, err)
			}
		})
	}
}

func TestRequireAPIKey(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	cfg := config.Default()
	err := cfg.RequireAPIKey()
	if err == nil {
		t.Fatal("expected error for missing api key")
	}
	if !strings.Contains(err.Error(), "RADARR_API_KEY") {
		t.Fatalf("expected env hint in error, got %v", err)
	}
	if !errors.Is(err, services.ErrConfiguration) {
		t.Fatalf("expected configuration marker, got %v", err)
	}
	cfg.Radarr.APIKey = "set"
	if err := cfg.RequireAPIKey(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestCreateSampleOmitsCredentials(t *testing.T) {
	target := filepath.Join(t.TempDir(), "nested", "config.toml")
	if err := config.CreateSample(target); err != nil {
		t.Fatalf("CreateSample failed: %v", err)
	}
	data, err := os.ReadFile(target)
	if err != nil {
		t.Fatalf("read sample: %v", err)
	}
	if !strings.Contains(string(data), `api_key = ""`) {
		t.Fatalf("expected blank api key in sample, got:\n%s", data)
	}

	var decoded config.Config
	if err := toml.Unmarshal(data, &decoded); err != nil {
		t.Fatalf("sample config does not parse: %v", err)
	}
	if decoded.Radarr.RequestTimeout != config.Default().Radarr.RequestTimeout {
		t.Fatalf("sample timeout drifted from defaults: %d", decoded.Radarr.RequestTimeout)
	}
}
