package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/pelletier/go-toml/v2"

	"prunarr/internal/config"
	"prunarr/internal/services/radarr"
	"prunarr/internal/testsupport"
)

type cliTestEnv struct {
	cfg        *config.Config
	radarr     *testsupport.RadarrServer
	configPath string
}

func setupCLITestEnv(t *testing.T, movies ...radarr.Movie) *cliTestEnv {
	t.Helper()

	home := t.TempDir()
	t.Setenv("HOME", home)
	t.Setenv("RADARR_API_KEY", "")
	t.Setenv("RADARR_URL", "")
	t.Setenv("PRUNARR_NTFY_TOPIC", "")

	srv := testsupport.NewRadarrServer(t, "cli-key", movies...)
	cfg := testsupport.NewConfig(t, testsupport.WithRadarr(srv.URL, "cli-key"))
	configPath := filepath.Join(testsupport.BaseDir(cfg), "prunarr.toml")
	writeTestConfig(t, configPath, cfg)

	return &cliTestEnv{cfg: cfg, radarr: srv, configPath: configPath}
}

func (e *cliTestEnv) writeRequests(t *testing.T, titles ...string) {
	t.Helper()
	testsupport.WriteRequests(t, e.cfg.Paths.RequestsFile, titles...)
}

func runCLI(t *testing.T, args []string, configPath string) (string, string, error) {
	t.Helper()
	cmd := newRootCommand()
	var stdout, stderr bytes.Buffer
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)
	var flags []string
	if configPath != "" {
		flags = append(flags, "--config", configPath)
	}
	cmd.SetArgs(append(flags, args...))
	err := cmd.Execute()
	return stdout.String(), stderr.String(), err
}

func writeTestConfig(t *testing.T, path string, cfg *config.Config) {
	t.Helper()
	data, err := toml.Marshal(cfg)
	if err != nil {
		t.Fatalf("marshal config: %v", err)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("mkdir config dir: %v", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
}

func requireContains(t *testing.T, output, substr string) {
	t.Helper()
	if !strings.Contains(output, substr) {
		t.Fatalf("expected %q to contain %q", output, substr)
	}
}
