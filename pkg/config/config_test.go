package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/nsanches/depcheck/pkg/errors"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.toml")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("writing config: %v", err)
	}
	return path
}

func TestLoadMissingDefaultIsNotAnError(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg != Default() {
		t.Errorf("Load() = %+v, want defaults", cfg)
	}
}

func TestLoadMissingExplicitPath(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.toml"))
	if err == nil {
		t.Fatal("Load() error = nil, want file-not-found")
	}
	if code := errors.GetCode(err); code != errors.ErrCodeFileNotFound {
		t.Errorf("GetCode() = %q, want %q", code, errors.ErrCodeFileNotFound)
	}
}

func TestLoadOverridesDefaults(t *testing.T) {
	path := writeConfig(t, `
[nvd]
results_per_page = 10
request_delay_ms = 100
retry_attempts = 3

[audit]
timeout_seconds = 5

[server]
addr = ":9090"
`)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.NVD.ResultsPerPage != 10 {
		t.Errorf("ResultsPerPage = %d, want 10", cfg.NVD.ResultsPerPage)
	}
	if got := cfg.NVD.RequestDelay(); got != 100*time.Millisecond {
		t.Errorf("RequestDelay() = %v, want 100ms", got)
	}
	if cfg.NVD.RetryAttempts != 3 {
		t.Errorf("RetryAttempts = %d, want 3", cfg.NVD.RetryAttempts)
	}
	if got := cfg.Audit.Timeout(); got != 5*time.Second {
		t.Errorf("Audit.Timeout() = %v, want 5s", got)
	}
	if cfg.Server.Addr != ":9090" {
		t.Errorf("Server.Addr = %q, want :9090", cfg.Server.Addr)
	}

	// Untouched fields keep their defaults.
	if cfg.NVD.TimeoutSeconds != 10 {
		t.Errorf("TimeoutSeconds = %d, want default 10", cfg.NVD.TimeoutSeconds)
	}
}

func TestLoadMalformedFile(t *testing.T) {
	path := writeConfig(t, "[nvd\nbroken")

	_, err := Load(path)
	if err == nil {
		t.Fatal("Load() error = nil, want parse error")
	}
	if code := errors.GetCode(err); code != errors.ErrCodeInvalidConfig {
		t.Errorf("GetCode() = %q, want %q", code, errors.ErrCodeInvalidConfig)
	}
}
