// Package testing carries shared helpers for package tests.
package testing

import (
	"testing"

	"coap-adapter-go/internal/platform/config"
	"coap-adapter-go/internal/platform/logging"
)

// SetupTestConfig returns a config suitable for tests: default values with
// loopback listeners and the in-memory store driver.
func SetupTestConfig(t *testing.T) *config.Config {
	t.Helper()

	cfg := config.DefaultConfig()
	cfg.Transport.Dgram.IP = "127.0.0.1"
	cfg.Web.IP = "127.0.0.1"
	cfg.Registry.Store.Driver = "memory"
	cfg.Log.Dir = t.TempDir()
	return cfg
}

// SetupTestLogger builds a logger writing into the test's temp dir.
func SetupTestLogger(t *testing.T) *logging.Logger {
	t.Helper()

	cfg := SetupTestConfig(t)
	logger, err := logging.New(logging.Config{
		Level:    cfg.Log.Level,
		Dir:      cfg.Log.Dir,
		Filename: cfg.Log.File,
	})
	if err != nil {
		t.Fatalf("failed to create test logger: %v", err)
	}
	t.Cleanup(func() { logger.Close() })
	return logger
}

func AssertNoError(t *testing.T, err error) {
	t.Helper()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func AssertError(t *testing.T, err error) {
	t.Helper()
	if err == nil {
		t.Fatal("expected error but got nil")
	}
}

func AssertEqual(t *testing.T, expected, actual interface{}) {
	t.Helper()
	if expected != actual {
		t.Fatalf("expected %v, got %v", expected, actual)
	}
}
