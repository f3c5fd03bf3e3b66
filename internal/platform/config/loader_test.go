package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoaderLoadFile(t *testing.T) {
	tempDir := t.TempDir()
	configFile := filepath.Join(tempDir, "config.yaml")

	configContent := `
log:
  log_level: "DEBUG"
adapter:
  type: "coap"
  request_timeout: 5s
transport:
  dgram:
    enabled: true
    ip: "127.0.0.1"
    port: 15684
registry:
  store:
    driver: "sqlite"
    sqlite:
      dsn: "file:test.db"
  cache:
    tenant:
      min_capacity: 4
      max_capacity: 8
downstream:
  credit_window: 2
`
	if err := os.WriteFile(configFile, []byte(configContent), 0o644); err != nil {
		t.Fatalf("failed to write config file: %v", err)
	}

	res, err := NewLoader().WithDotEnv(false).WithPath(configFile).Load()
	if err != nil {
		t.Fatalf("failed to load config: %v", err)
	}
	cfg := res.Config

	if cfg.Log.Level != "DEBUG" {
		t.Errorf("expected log level DEBUG, got %s", cfg.Log.Level)
	}
	if cfg.Adapter.RequestTimeout != 5*time.Second {
		t.Errorf("expected 5s request timeout, got %s", cfg.Adapter.RequestTimeout)
	}
	if cfg.Transport.Dgram.Port != 15684 {
		t.Errorf("expected port 15684, got %d", cfg.Transport.Dgram.Port)
	}
	if cfg.Registry.Store.Driver != "sqlite" {
		t.Errorf("expected sqlite driver, got %s", cfg.Registry.Store.Driver)
	}
	if cfg.Registry.Cache.Tenant.MaxCapacity != 8 {
		t.Errorf("expected tenant cache max 8, got %d", cfg.Registry.Cache.Tenant.MaxCapacity)
	}
	if cfg.Downstream.CreditWindow != 2 {
		t.Errorf("expected credit window 2, got %d", cfg.Downstream.CreditWindow)
	}

	// Defaults survive for untouched sections.
	if cfg.Web.Port != 8080 {
		t.Errorf("expected default web port, got %d", cfg.Web.Port)
	}
	if cfg.Transport.Dgram.MaxPacketSize != 1400 {
		t.Errorf("expected default max packet size, got %d", cfg.Transport.Dgram.MaxPacketSize)
	}
}

func TestLoaderDefaultsWithoutFile(t *testing.T) {
	oldWd, _ := os.Getwd()
	if err := os.Chdir(t.TempDir()); err != nil {
		t.Fatalf("chdir: %v", err)
	}
	defer os.Chdir(oldWd)

	res, err := NewLoader().WithDotEnv(false).Load()
	if err != nil {
		t.Fatalf("failed to load defaults: %v", err)
	}
	if res.Path != "" {
		t.Errorf("expected no config path, got %s", res.Path)
	}
	if res.Config.Registry.Store.Driver != "memory" {
		t.Errorf("expected memory driver default, got %s", res.Config.Registry.Store.Driver)
	}
}

func TestLoaderEnvOverrides(t *testing.T) {
	t.Setenv("COAP_ADAPTER_STORE_DRIVER", "redis")
	t.Setenv("COAP_ADAPTER_REDIS_ADDR", "127.0.0.1:16379")

	oldWd, _ := os.Getwd()
	if err := os.Chdir(t.TempDir()); err != nil {
		t.Fatalf("chdir: %v", err)
	}
	defer os.Chdir(oldWd)

	res, err := NewLoader().WithDotEnv(false).Load()
	if err != nil {
		t.Fatalf("failed to load config: %v", err)
	}
	if res.Config.Registry.Store.Driver != "redis" {
		t.Errorf("expected redis driver, got %s", res.Config.Registry.Store.Driver)
	}
	if res.Config.Registry.Store.Redis.Addr != "127.0.0.1:16379" {
		t.Errorf("unexpected redis addr: %s", res.Config.Registry.Store.Redis.Addr)
	}
}
