package config

import (
	"time"
)

type Config struct {
	Log        LogConfig        `yaml:"log"`
	Adapter    AdapterConfig    `yaml:"adapter"`
	Transport  TransportConfig  `yaml:"transport"`
	Web        WebConfig        `yaml:"web"`
	Registry   RegistryConfig   `yaml:"registry"`
	Downstream DownstreamConfig `yaml:"downstream"`
}

type LogConfig struct {
	Level string `yaml:"log_level"`
	Dir   string `yaml:"log_dir"`
	File  string `yaml:"log_file"`
}

// AdapterConfig identifies this protocol adapter instance. Type is the key
// tenants use to enable or disable the adapter.
type AdapterConfig struct {
	Type           string        `yaml:"type"`
	RequestTimeout time.Duration `yaml:"request_timeout"`
}

type TransportConfig struct {
	Dgram DgramConfig `yaml:"dgram"`
}

// DgramConfig configures the datagram front-end. The secured listener speaks
// DTLS-PSK; the insecure listener accepts anonymous uploads when enabled.
type DgramConfig struct {
	Enabled       bool           `yaml:"enabled"`
	IP            string         `yaml:"ip"`
	Port          int            `yaml:"port"`
	MaxPacketSize int            `yaml:"max_packet_size"`
	Insecure      InsecureConfig `yaml:"insecure"`
}

type InsecureConfig struct {
	Enabled bool `yaml:"enabled"`
	Port    int  `yaml:"port"`
}

// WebConfig configures the provisioning HTTP API.
type WebConfig struct {
	Enabled bool   `yaml:"enabled"`
	IP      string `yaml:"ip"`
	Port    int    `yaml:"port"`
}

type RegistryConfig struct {
	Store StoreConfig `yaml:"store"`
	Cache CacheConfig `yaml:"cache"`
}

type StoreConfig struct {
	Driver string            `yaml:"driver"`
	SQLite SQLiteStoreConfig `yaml:"sqlite,omitempty"`
	Redis  RedisStoreConfig  `yaml:"redis,omitempty"`
}

type SQLiteStoreConfig struct {
	DSN string `yaml:"dsn,omitempty"`
}

type RedisStoreConfig struct {
	Addr     string `yaml:"addr"`
	Username string `yaml:"username,omitempty"`
	Password string `yaml:"password,omitempty"`
	DB       int    `yaml:"db,omitempty"`
	Prefix   string `yaml:"prefix,omitempty"`
}

// CacheConfig carries the capacity bounds for each lookup cache. A max
// capacity of zero or below disables that cache.
type CacheConfig struct {
	Tenant     CacheBounds `yaml:"tenant"`
	Device     CacheBounds `yaml:"device"`
	Credential CacheBounds `yaml:"credential"`
}

type CacheBounds struct {
	MinCapacity int `yaml:"min_capacity"`
	MaxCapacity int `yaml:"max_capacity"`
}

// DownstreamConfig bounds the credit window of the downstream send channel.
type DownstreamConfig struct {
	CreditWindow int    `yaml:"credit_window"`
	Topic        string `yaml:"topic"`
}
