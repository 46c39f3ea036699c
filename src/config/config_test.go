package config

import (
	"testing"
	"time"
)

func TestLoad_Defaults(t *testing.T) {
	cfg := Load()

	if cfg.Port != 8080 {
		t.Errorf("expected default port 8080, got %d", cfg.Port)
	}
	if cfg.APIKey != "" {
		t.Errorf("expected empty default API key, got %q", cfg.APIKey)
	}
	if cfg.MaxUploadSize != 10*1024*1024 {
		t.Errorf("expected default upload limit 10MiB, got %d", cfg.MaxUploadSize)
	}
	if cfg.BackendTimeout != 60*time.Second {
		t.Errorf("expected default backend timeout 60s, got %s", cfg.BackendTimeout)
	}
	if cfg.TLSEnabled() {
		t.Error("TLS must be disabled by default")
	}
}

func TestLoad_EnvOverrides(t *testing.T) {
	t.Setenv("PORT", "9090")
	t.Setenv("API_KEY", "frontend-api-key-12345")
	t.Setenv("MAX_UPLOAD_SIZE", "1048576")
	t.Setenv("BACKEND_TIMEOUT", "15")
	t.Setenv("CORS_ORIGINS", "https://app.example.com, https://admin.example.com")

	cfg := Load()

	if cfg.Port != 9090 {
		t.Errorf("expected port 9090, got %d", cfg.Port)
	}
	if cfg.APIKey != "frontend-api-key-12345" {
		t.Errorf("unexpected API key %q", cfg.APIKey)
	}
	if cfg.MaxUploadSize != 1048576 {
		t.Errorf("expected upload limit 1048576, got %d", cfg.MaxUploadSize)
	}
	if cfg.BackendTimeout != 15*time.Second {
		t.Errorf("expected backend timeout 15s, got %s", cfg.BackendTimeout)
	}
	if len(cfg.AllowedOrigins) != 2 || cfg.AllowedOrigins[0] != "https://app.example.com" {
		t.Errorf("unexpected origins %v", cfg.AllowedOrigins)
	}
}

func TestLoad_InvalidIntFallsBackToDefault(t *testing.T) {
	t.Setenv("PORT", "not-a-number")

	cfg := Load()
	if cfg.Port != 8080 {
		t.Errorf("expected fallback to 8080, got %d", cfg.Port)
	}
}

func TestTLSEnabled_RequiresBothPaths(t *testing.T) {
	cfg := &Config{TLSCertFile: "server.crt"}
	if cfg.TLSEnabled() {
		t.Error("certificate without key must not enable TLS")
	}

	cfg.TLSKeyFile = "server.key"
	if !cfg.TLSEnabled() {
		t.Error("certificate plus key must enable TLS")
	}
}
