package store

import (
	"context"
	"encoding/json"
	stderrors "errors"

	"gorm.io/gorm"

	"coap-adapter-go/internal/domain/registry/model"
	"coap-adapter-go/internal/platform/errors"
	"coap-adapter-go/internal/platform/storage"
)

type sqliteStore struct {
	db *gorm.DB
}

// NewSQLite builds a relational registry store on top of an opened database
// handle.
func NewSQLite(db *gorm.DB) (Store, error) {
	if db == nil {
		return nil, errors.New(errors.KindConfig, "store.sqlite.new", "sqlite store requires database handle")
	}
	return &sqliteStore{db: db}, nil
}

func (s *sqliteStore) GetTenant(ctx context.Context, tenantID string) (model.TenantRecord, error) {
	var row storage.Tenant
	err := s.db.WithContext(ctx).Where("tenant_id = ?", tenantID).First(&row).Error
	if err != nil {
		return model.TenantRecord{}, classifyRead("store.tenant.get", err)
	}
	return tenantFromRow(row), nil
}

func (s *sqliteStore) GetDevice(ctx context.Context, key model.DeviceKey) (model.DeviceRecord, error) {
	var row storage.Device
	err := s.db.WithContext(ctx).
		Where("tenant_id = ? AND device_id = ?", key.TenantID, key.DeviceID).
		First(&row).Error
	if err != nil {
		return model.DeviceRecord{}, classifyRead("store.device.get", err)
	}
	return deviceFromRow(row), nil
}

func (s *sqliteStore) GetCredential(ctx context.Context, key model.CredentialKey) (model.CredentialRecord, error) {
	var row storage.Credential
	err := s.db.WithContext(ctx).
		Where("tenant_id = ? AND type = ? AND auth_id = ?", key.TenantID, key.Type, key.AuthID).
		First(&row).Error
	if err != nil {
		return model.CredentialRecord{}, classifyRead("store.credential.get", err)
	}
	return credentialFromRow(row), nil
}

func (s *sqliteStore) CreateTenant(ctx context.Context, tenant model.TenantRecord) error {
	if tenant.TenantID == "" {
		return errors.New(errors.KindBadRequest, "store.tenant.create", "tenant id required")
	}
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var count int64
		if err := tx.Model(&storage.Tenant{}).Where("tenant_id = ?", tenant.TenantID).Count(&count).Error; err != nil {
			return errors.Wrap(errors.KindUnavailable, "store.tenant.create", "backend error", err)
		}
		if count > 0 {
			return errors.New(errors.KindConflict, "store.tenant.create", "tenant already exists")
		}
		if err := tx.Create(tenantToRow(tenant)).Error; err != nil {
			return errors.Wrap(errors.KindUnavailable, "store.tenant.create", "backend error", err)
		}
		return nil
	})
}

func (s *sqliteStore) UpdateTenant(ctx context.Context, tenant model.TenantRecord) error {
	row := tenantToRow(tenant)
	res := s.db.WithContext(ctx).Model(&storage.Tenant{}).
		Where("tenant_id = ?", tenant.TenantID).
		Updates(map[string]any{"enabled": row.Enabled, "adapters": row.Adapters})
	return classifyWrite("store.tenant.update", res)
}

func (s *sqliteStore) DeleteTenant(ctx context.Context, tenantID string) error {
	res := s.db.WithContext(ctx).Where("tenant_id = ?", tenantID).Delete(&storage.Tenant{})
	return classifyWrite("store.tenant.delete", res)
}

func (s *sqliteStore) CreateDevice(ctx context.Context, device model.DeviceRecord) error {
	if device.TenantID == "" || device.DeviceID == "" {
		return errors.New(errors.KindBadRequest, "store.device.create", "tenant and device id required")
	}
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var count int64
		if err := tx.Model(&storage.Device{}).
			Where("tenant_id = ? AND device_id = ?", device.TenantID, device.DeviceID).
			Count(&count).Error; err != nil {
			return errors.Wrap(errors.KindUnavailable, "store.device.create", "backend error", err)
		}
		if count > 0 {
			return errors.New(errors.KindConflict, "store.device.create", "device already registered")
		}
		if err := tx.Create(deviceToRow(device)).Error; err != nil {
			return errors.Wrap(errors.KindUnavailable, "store.device.create", "backend error", err)
		}
		return nil
	})
}

func (s *sqliteStore) UpdateDevice(ctx context.Context, device model.DeviceRecord) error {
	row := deviceToRow(device)
	res := s.db.WithContext(ctx).Model(&storage.Device{}).
		Where("tenant_id = ? AND device_id = ?", device.TenantID, device.DeviceID).
		Updates(map[string]any{"enabled": row.Enabled, "via": row.Via})
	return classifyWrite("store.device.update", res)
}

func (s *sqliteStore) DeleteDevice(ctx context.Context, key model.DeviceKey) error {
	res := s.db.WithContext(ctx).
		Where("tenant_id = ? AND device_id = ?", key.TenantID, key.DeviceID).
		Delete(&storage.Device{})
	return classifyWrite("store.device.delete", res)
}

func (s *sqliteStore) CreateCredential(ctx context.Context, credential model.CredentialRecord) error {
	if credential.TenantID == "" || credential.AuthID == "" || credential.Type == "" {
		return errors.New(errors.KindBadRequest, "store.credential.create", "tenant, auth id and type required")
	}
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var count int64
		if err := tx.Model(&storage.Credential{}).
			Where("tenant_id = ? AND type = ? AND auth_id = ?", credential.TenantID, credential.Type, credential.AuthID).
			Count(&count).Error; err != nil {
			return errors.Wrap(errors.KindUnavailable, "store.credential.create", "backend error", err)
		}
		if count > 0 {
			return errors.New(errors.KindConflict, "store.credential.create", "credential already exists")
		}
		if err := tx.Create(credentialToRow(credential)).Error; err != nil {
			return errors.Wrap(errors.KindUnavailable, "store.credential.create", "backend error", err)
		}
		return nil
	})
}

func (s *sqliteStore) UpdateCredential(ctx context.Context, credential model.CredentialRecord) error {
	row := credentialToRow(credential)
	res := s.db.WithContext(ctx).Model(&storage.Credential{}).
		Where("tenant_id = ? AND type = ? AND auth_id = ?", credential.TenantID, credential.Type, credential.AuthID).
		Updates(map[string]any{
			"device_id": row.DeviceID,
			"enabled":   row.Enabled,
			"secrets":   row.Secrets,
		})
	return classifyWrite("store.credential.update", res)
}

func (s *sqliteStore) DeleteCredential(ctx context.Context, key model.CredentialKey) error {
	res := s.db.WithContext(ctx).
		Where("tenant_id = ? AND type = ? AND auth_id = ?", key.TenantID, key.Type, key.AuthID).
		Delete(&storage.Credential{})
	return classifyWrite("store.credential.delete", res)
}

func (s *sqliteStore) Stats(ctx context.Context) (map[string]any, error) {
	var tenants, devices, credentials int64
	db := s.db.WithContext(ctx)
	if err := db.Model(&storage.Tenant{}).Count(&tenants).Error; err != nil {
		return nil, errors.Wrap(errors.KindUnavailable, "store.stats", "backend error", err)
	}
	if err := db.Model(&storage.Device{}).Count(&devices).Error; err != nil {
		return nil, errors.Wrap(errors.KindUnavailable, "store.stats", "backend error", err)
	}
	if err := db.Model(&storage.Credential{}).Count(&credentials).Error; err != nil {
		return nil, errors.Wrap(errors.KindUnavailable, "store.stats", "backend error", err)
	}
	return map[string]any{
		"type":        "sqlite",
		"tenants":     tenants,
		"devices":     devices,
		"credentials": credentials,
	}, nil
}

func (s *sqliteStore) Close(context.Context) error {
	return nil
}

func classifyRead(op string, err error) error {
	if stderrors.Is(err, gorm.ErrRecordNotFound) {
		return errors.New(errors.KindNotFound, op, "record not found")
	}
	return errors.Wrap(errors.KindUnavailable, op, "backend error", err)
}

func classifyWrite(op string, res *gorm.DB) error {
	if res.Error != nil {
		return errors.Wrap(errors.KindUnavailable, op, "backend error", res.Error)
	}
	if res.RowsAffected == 0 {
		return errors.New(errors.KindNotFound, op, "record not found")
	}
	return nil
}

func tenantToRow(tenant model.TenantRecord) *storage.Tenant {
	adapters, _ := json.Marshal(tenant.Adapters)
	return &storage.Tenant{
		TenantID: tenant.TenantID,
		Enabled:  tenant.Enabled,
		Adapters: adapters,
	}
}

func tenantFromRow(row storage.Tenant) model.TenantRecord {
	tenant := model.TenantRecord{
		TenantID: row.TenantID,
		Enabled:  row.Enabled,
	}
	if len(row.Adapters) > 0 {
		_ = json.Unmarshal(row.Adapters, &tenant.Adapters)
	}
	return tenant
}

func deviceToRow(device model.DeviceRecord) *storage.Device {
	via, _ := json.Marshal(device.Via)
	return &storage.Device{
		TenantID: device.TenantID,
		DeviceID: device.DeviceID,
		Enabled:  device.Enabled,
		Via:      via,
	}
}

func deviceFromRow(row storage.Device) model.DeviceRecord {
	device := model.DeviceRecord{
		TenantID: row.TenantID,
		DeviceID: row.DeviceID,
		Enabled:  row.Enabled,
	}
	if len(row.Via) > 0 {
		_ = json.Unmarshal(row.Via, &device.Via)
	}
	return device
}

func credentialToRow(credential model.CredentialRecord) *storage.Credential {
	secrets, _ := json.Marshal(credential.Secrets)
	return &storage.Credential{
		TenantID: credential.TenantID,
		Type:     credential.Type,
		AuthID:   credential.AuthID,
		DeviceID: credential.DeviceID,
		Enabled:  credential.Enabled,
		Secrets:  secrets,
	}
}

func credentialFromRow(row storage.Credential) model.CredentialRecord {
	credential := model.CredentialRecord{
		TenantID: row.TenantID,
		Type:     row.Type,
		AuthID:   row.AuthID,
		DeviceID: row.DeviceID,
		Enabled:  row.Enabled,
	}
	if len(row.Secrets) > 0 {
		_ = json.Unmarshal(row.Secrets, &credential.Secrets)
	}
	return credential
}
