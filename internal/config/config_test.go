package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

func TestLoadAppliesDefaults(t *testing.T) {
	path := writeConfig(t, `
env: dev
storage_path: storage/students.json
http_server:
  address: localhost:8082
`)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	if cfg.StorageDriver != DriverJSON {
		t.Errorf("StorageDriver = %q, want %q", cfg.StorageDriver, DriverJSON)
	}
	if cfg.HTTPServer.Addr != "localhost:8082" {
		t.Errorf("Addr = %q", cfg.HTTPServer.Addr)
	}
	if cfg.ReadTimeout != 10*time.Second || cfg.ShutdownTimeout != 5*time.Second {
		t.Errorf("unexpected timeouts: read %s shutdown %s", cfg.ReadTimeout, cfg.ShutdownTimeout)
	}
	if cfg.RateLimit != 0 {
		t.Errorf("rate limit should default to disabled, got %v", cfg.RateLimit)
	}
	if len(cfg.CORS.AllowedOrigins) != 1 || cfg.CORS.AllowedOrigins[0] != "*" {
		t.Errorf("AllowedOrigins = %v", cfg.CORS.AllowedOrigins)
	}
}

func TestLoadReadsEveryKey(t *testing.T) {
	path := writeConfig(t, `
env: prod
storage_driver: sqlite
storage_path: storage/students.db
http_server:
  address: 0.0.0.0:9000
  read_timeout: 3s
  rate_limit: 50
  rate_burst: 100
cors:
  allowed_origins:
    - https://school.example.com
`)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	if cfg.StorageDriver != DriverSQLite || cfg.StoragePath != "storage/students.db" {
		t.Errorf("storage = %q %q", cfg.StorageDriver, cfg.StoragePath)
	}
	if cfg.ReadTimeout != 3*time.Second {
		t.Errorf("ReadTimeout = %s", cfg.ReadTimeout)
	}
	if cfg.RateLimit != 50 || cfg.RateBurst != 100 {
		t.Errorf("rate = %v/%d", cfg.RateLimit, cfg.RateBurst)
	}
	if len(cfg.CORS.AllowedOrigins) != 1 || cfg.CORS.AllowedOrigins[0] != "https://school.example.com" {
		t.Errorf("AllowedOrigins = %v", cfg.CORS.AllowedOrigins)
	}
}

func TestLoadErrors(t *testing.T) {
	t.Run("empty path", func(t *testing.T) {
		if _, err := Load(""); err == nil {
			t.Fatal("expected error")
		}
	})

	t.Run("missing file", func(t *testing.T) {
		_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
		if err == nil || !strings.Contains(err.Error(), "does not exist") {
			t.Fatalf("unexpected error: %v", err)
		}
	})

	t.Run("unknown driver", func(t *testing.T) {
		path := writeConfig(t, `
env: dev
storage_driver: postgres
storage_path: x
http_server:
  address: localhost:8082
`)
		if _, err := Load(path); err == nil {
			t.Fatal("expected validation error for unknown driver")
		}
	})

	t.Run("missing required key", func(t *testing.T) {
		path := writeConfig(t, `
env: dev
http_server:
  address: localhost:8082
`)
		if _, err := Load(path); err == nil {
			t.Fatal("expected error for missing storage_path")
		}
	})
}
