package config

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// EnvConfigPath overrides the configuration file location when set.
const EnvConfigPath = "COAP_ADAPTER_CONFIG"

var defaultSearchPaths = []string{"config.yaml", ".config.yaml"}

// Loader reads the adapter configuration from a yaml file, with defaults
// applied for everything the file does not mention.
type Loader struct {
	useDotEnv bool
	path      string
}

func NewLoader() *Loader {
	return &Loader{useDotEnv: true}
}

// WithDotEnv toggles loading variables from a .env file before reading config.
func (l *Loader) WithDotEnv(enabled bool) *Loader {
	l.useDotEnv = enabled
	return l
}

// WithPath pins the loader to a specific file instead of the search paths.
func (l *Loader) WithPath(path string) *Loader {
	l.path = path
	return l
}

// Result captures the loaded configuration and its origin path. Path is empty
// when only defaults were used.
type Result struct {
	Config *Config
	Path   string
}

func (l *Loader) Load() (*Result, error) {
	if l.useDotEnv {
		_ = godotenv.Load()
	}

	cfg := DefaultConfig()

	path := l.path
	if path == "" {
		path = os.Getenv(EnvConfigPath)
	}
	if path == "" {
		for _, candidate := range defaultSearchPaths {
			if _, err := os.Stat(candidate); err == nil {
				path = candidate
				break
			}
		}
	}

	if path != "" {
		raw, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read config %s: %w", path, err)
		}
		if err := yaml.Unmarshal(raw, cfg); err != nil {
			return nil, fmt.Errorf("parse config %s: %w", path, err)
		}
	}

	applyEnvOverrides(cfg)

	return &Result{Config: cfg, Path: path}, nil
}

// applyEnvOverrides lets deployments swap the store backend without touching
// the config file.
func applyEnvOverrides(cfg *Config) {
	if driver := os.Getenv("COAP_ADAPTER_STORE_DRIVER"); driver != "" {
		cfg.Registry.Store.Driver = driver
	}
	if addr := os.Getenv("COAP_ADAPTER_REDIS_ADDR"); addr != "" {
		cfg.Registry.Store.Redis.Addr = addr
	}
	if dsn := os.Getenv("COAP_ADAPTER_SQLITE_DSN"); dsn != "" {
		cfg.Registry.Store.SQLite.DSN = dsn
	}
}
