package store

import (
	"context"

	"coap-adapter-go/internal/domain/registry/model"
)

// Store is the identity store boundary. Read lookups classify their failures
// through the platform error kinds: a missing record is KindNotFound, an
// unreachable or failing backend is KindUnavailable. Creating an existing key
// is KindConflict; updating or deleting a missing record is KindNotFound,
// never a silent no-op.
type Store interface {
	GetTenant(ctx context.Context, tenantID string) (model.TenantRecord, error)
	GetDevice(ctx context.Context, key model.DeviceKey) (model.DeviceRecord, error)
	GetCredential(ctx context.Context, key model.CredentialKey) (model.CredentialRecord, error)

	CreateTenant(ctx context.Context, tenant model.TenantRecord) error
	UpdateTenant(ctx context.Context, tenant model.TenantRecord) error
	DeleteTenant(ctx context.Context, tenantID string) error

	CreateDevice(ctx context.Context, device model.DeviceRecord) error
	UpdateDevice(ctx context.Context, device model.DeviceRecord) error
	DeleteDevice(ctx context.Context, key model.DeviceKey) error

	CreateCredential(ctx context.Context, credential model.CredentialRecord) error
	UpdateCredential(ctx context.Context, credential model.CredentialRecord) error
	DeleteCredential(ctx context.Context, key model.CredentialKey) error

	Stats(ctx context.Context) (map[string]any, error)
	Close(ctx context.Context) error
}

// Config describes the high level store selection parameters.
type Config struct {
	Driver string
	Redis  *RedisConfig
	SQLite *SQLiteConfig
}

// SQLiteConfig provides the database location.
type SQLiteConfig struct {
	DSN string
}

// RedisConfig captures connection options.
type RedisConfig struct {
	Addr     string
	Username string
	Password string
	DB       int
	Prefix   string
}
