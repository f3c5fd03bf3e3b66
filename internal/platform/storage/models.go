package storage

import "time"

// Tenant is the relational row backing a tenant record. The per-adapter
// enablement map is stored as JSON.
type Tenant struct {
	ID        uint   `gorm:"primaryKey"`
	TenantID  string `gorm:"uniqueIndex;not null"`
	Enabled   bool   `gorm:"not null;default:true"`
	Adapters  []byte `gorm:"type:text"`
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Device is keyed by (tenant_id, device_id). Via holds the JSON-encoded set
// of gateway identifiers authorized to upload on the device's behalf.
type Device struct {
	ID        uint   `gorm:"primaryKey"`
	TenantID  string `gorm:"uniqueIndex:idx_device_key;not null"`
	DeviceID  string `gorm:"uniqueIndex:idx_device_key;not null"`
	Enabled   bool   `gorm:"not null;default:true"`
	Via       []byte `gorm:"type:text"`
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Credential is keyed by (tenant_id, type, auth_id). Secrets holds the
// JSON-encoded secret entries in their at-rest encoding.
type Credential struct {
	ID        uint   `gorm:"primaryKey"`
	TenantID  string `gorm:"uniqueIndex:idx_credential_key;not null"`
	Type      string `gorm:"uniqueIndex:idx_credential_key;not null"`
	AuthID    string `gorm:"uniqueIndex:idx_credential_key;not null"`
	DeviceID  string `gorm:"index"`
	Enabled   bool   `gorm:"not null;default:true"`
	Secrets   []byte `gorm:"type:text"`
	CreatedAt time.Time
	UpdatedAt time.Time
}
