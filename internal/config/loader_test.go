package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoad_WritesDefaultConfigWhenMissing(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "config.yaml")

	cfg, resolved, err := Load(nil, path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if resolved != path {
		t.Fatalf("expected path %s, got %s", path, resolved)
	}
	if _, err := os.Stat(path); err != nil {
		t.Fatalf("expected default config to be written: %v", err)
	}
	if cfg.Addr != ":8080" || cfg.JWTTTL != 24*time.Hour || !cfg.AutoMigrate || cfg.ScopeReadReceipts {
		t.Fatalf("unexpected defaults: %+v", cfg)
	}
}

func TestLoad_FileThenEnvPrecedence(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	data := []byte("addr: \":9000\"\nsend_buffer_size: 8\nscope_read_receipts: true\njwt_ttl: 2h\n")
	if err := os.WriteFile(path, data, 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}
	t.Setenv("RENTLINE_ADDR", ":9100")
	t.Setenv("RENTLINE_ALLOWED_ORIGINS", "app.example.com,admin.example.com")

	cfg, _, err := Load(nil, path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Addr != ":9100" {
		t.Errorf("env should override file, got addr %q", cfg.Addr)
	}
	if cfg.SendBufferSize != 8 || !cfg.ScopeReadReceipts || cfg.JWTTTL != 2*time.Hour {
		t.Errorf("file values not applied: %+v", cfg)
	}
	if len(cfg.AllowedOrigins) != 2 || cfg.AllowedOrigins[1] != "admin.example.com" {
		t.Errorf("unexpected origins: %v", cfg.AllowedOrigins)
	}
	if cfg.LogLevel != "info" {
		t.Errorf("default log level lost: %q", cfg.LogLevel)
	}
}

func TestUpdateFromAndValidate(t *testing.T) {
	cfg := Default()
	cfg.UpdateFrom(Config{Addr: ":1234", LogLevel: "debug"})
	if cfg.Addr != ":1234" || cfg.LogLevel != "debug" || cfg.DatabasePath != "rentline.db" {
		t.Fatalf("unexpected merge result: %+v", cfg)
	}
	if err := cfg.Validate(); err != nil {
		t.Fatalf("defaults should validate: %v", err)
	}

	cfg.JWTSecret = "short"
	cfg.SendBufferSize = 0
	if err := cfg.Validate(); err == nil {
		t.Fatalf("expected validation error")
	}
}
