package store

import (
	"context"
	"sync"

	"coap-adapter-go/internal/domain/registry/model"
	"coap-adapter-go/internal/platform/errors"
)

type memoryStore struct {
	mutex       sync.RWMutex
	tenants     map[string]model.TenantRecord
	devices     map[model.DeviceKey]model.DeviceRecord
	credentials map[model.CredentialKey]model.CredentialRecord
}

// NewMemory builds an in-memory registry store, used for tests and
// single-node deployments.
func NewMemory() Store {
	return &memoryStore{
		tenants:     make(map[string]model.TenantRecord),
		devices:     make(map[model.DeviceKey]model.DeviceRecord),
		credentials: make(map[model.CredentialKey]model.CredentialRecord),
	}
}

func (s *memoryStore) GetTenant(_ context.Context, tenantID string) (model.TenantRecord, error) {
	s.mutex.RLock()
	tenant, ok := s.tenants[tenantID]
	s.mutex.RUnlock()
	if !ok {
		return model.TenantRecord{}, errors.New(errors.KindNotFound, "store.tenant.get", "no such tenant")
	}
	return tenant, nil
}

func (s *memoryStore) GetDevice(_ context.Context, key model.DeviceKey) (model.DeviceRecord, error) {
	s.mutex.RLock()
	device, ok := s.devices[key]
	s.mutex.RUnlock()
	if !ok {
		return model.DeviceRecord{}, errors.New(errors.KindNotFound, "store.device.get", "no such device")
	}
	return device, nil
}

func (s *memoryStore) GetCredential(_ context.Context, key model.CredentialKey) (model.CredentialRecord, error) {
	s.mutex.RLock()
	credential, ok := s.credentials[key]
	s.mutex.RUnlock()
	if !ok {
		return model.CredentialRecord{}, errors.New(errors.KindNotFound, "store.credential.get", "no such credential")
	}
	return credential, nil
}

func (s *memoryStore) CreateTenant(_ context.Context, tenant model.TenantRecord) error {
	if tenant.TenantID == "" {
		return errors.New(errors.KindBadRequest, "store.tenant.create", "tenant id required")
	}
	s.mutex.Lock()
	defer s.mutex.Unlock()
	if _, exists := s.tenants[tenant.TenantID]; exists {
		return errors.New(errors.KindConflict, "store.tenant.create", "tenant already exists")
	}
	s.tenants[tenant.TenantID] = tenant
	return nil
}

func (s *memoryStore) UpdateTenant(_ context.Context, tenant model.TenantRecord) error {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	if _, exists := s.tenants[tenant.TenantID]; !exists {
		return errors.New(errors.KindNotFound, "store.tenant.update", "no such tenant")
	}
	s.tenants[tenant.TenantID] = tenant
	return nil
}

func (s *memoryStore) DeleteTenant(_ context.Context, tenantID string) error {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	if _, exists := s.tenants[tenantID]; !exists {
		return errors.New(errors.KindNotFound, "store.tenant.delete", "no such tenant")
	}
	delete(s.tenants, tenantID)
	return nil
}

func (s *memoryStore) CreateDevice(_ context.Context, device model.DeviceRecord) error {
	if device.TenantID == "" || device.DeviceID == "" {
		return errors.New(errors.KindBadRequest, "store.device.create", "tenant and device id required")
	}
	key := model.DeviceKey{TenantID: device.TenantID, DeviceID: device.DeviceID}
	s.mutex.Lock()
	defer s.mutex.Unlock()
	if _, exists := s.devices[key]; exists {
		return errors.New(errors.KindConflict, "store.device.create", "device already registered")
	}
	s.devices[key] = device
	return nil
}

func (s *memoryStore) UpdateDevice(_ context.Context, device model.DeviceRecord) error {
	key := model.DeviceKey{TenantID: device.TenantID, DeviceID: device.DeviceID}
	s.mutex.Lock()
	defer s.mutex.Unlock()
	if _, exists := s.devices[key]; !exists {
		return errors.New(errors.KindNotFound, "store.device.update", "no such device")
	}
	s.devices[key] = device
	return nil
}

func (s *memoryStore) DeleteDevice(_ context.Context, key model.DeviceKey) error {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	if _, exists := s.devices[key]; !exists {
		return errors.New(errors.KindNotFound, "store.device.delete", "no such device")
	}
	delete(s.devices, key)
	return nil
}

func (s *memoryStore) CreateCredential(_ context.Context, credential model.CredentialRecord) error {
	if credential.TenantID == "" || credential.AuthID == "" || credential.Type == "" {
		return errors.New(errors.KindBadRequest, "store.credential.create", "tenant, auth id and type required")
	}
	key := credential.Key()
	s.mutex.Lock()
	defer s.mutex.Unlock()
	if _, exists := s.credentials[key]; exists {
		return errors.New(errors.KindConflict, "store.credential.create", "credential already exists")
	}
	s.credentials[key] = credential
	return nil
}

func (s *memoryStore) UpdateCredential(_ context.Context, credential model.CredentialRecord) error {
	key := credential.Key()
	s.mutex.Lock()
	defer s.mutex.Unlock()
	if _, exists := s.credentials[key]; !exists {
		return errors.New(errors.KindNotFound, "store.credential.update", "no such credential")
	}
	s.credentials[key] = credential
	return nil
}

func (s *memoryStore) DeleteCredential(_ context.Context, key model.CredentialKey) error {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	if _, exists := s.credentials[key]; !exists {
		return errors.New(errors.KindNotFound, "store.credential.delete", "no such credential")
	}
	delete(s.credentials, key)
	return nil
}

func (s *memoryStore) Stats(_ context.Context) (map[string]any, error) {
	s.mutex.RLock()
	defer s.mutex.RUnlock()
	return map[string]any{
		"type":        "memory",
		"tenants":     len(s.tenants),
		"devices":     len(s.devices),
		"credentials": len(s.credentials),
	}, nil
}

func (s *memoryStore) Close(context.Context) error {
	return nil
}
