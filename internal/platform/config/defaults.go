package config

import "time"

// DefaultConfig returns the configuration used when no file overrides are
// present.
func DefaultConfig() *Config {
	return &Config{
		Log: LogConfig{
			Level: "INFO",
			Dir:   "",
			File:  "adapter.log",
		},
		Adapter: AdapterConfig{
			Type:           "coap",
			RequestTimeout: 10 * time.Second,
		},
		Transport: TransportConfig{
			Dgram: DgramConfig{
				Enabled:       true,
				IP:            "0.0.0.0",
				Port:          5684,
				MaxPacketSize: 1400,
				Insecure: InsecureConfig{
					Enabled: false,
					Port:    5683,
				},
			},
		},
		Web: WebConfig{
			Enabled: true,
			IP:      "0.0.0.0",
			Port:    8080,
		},
		Registry: RegistryConfig{
			Store: StoreConfig{
				Driver: "memory",
				SQLite: SQLiteStoreConfig{
					DSN: "data/registry.db",
				},
			},
			Cache: CacheConfig{
				Tenant:     CacheBounds{MinCapacity: 16, MaxCapacity: 256},
				Device:     CacheBounds{MinCapacity: 64, MaxCapacity: 4096},
				Credential: CacheBounds{MinCapacity: 64, MaxCapacity: 4096},
			},
		},
		Downstream: DownstreamConfig{
			CreditWindow: 64,
			Topic:        "telemetry",
		},
	}
}
