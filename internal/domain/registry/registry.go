package registry

import (
	"context"

	"coap-adapter-go/internal/domain/registry/cache"
	"coap-adapter-go/internal/domain/registry/model"
	"coap-adapter-go/internal/domain/registry/store"
	"coap-adapter-go/internal/platform/errors"
)

// CacheBounds mirrors the per-lookup cache capacity configuration.
type CacheBounds struct {
	MinCapacity int
	MaxCapacity int
}

// CacheConfig bounds the three lookup caches independently.
type CacheConfig struct {
	Tenant     CacheBounds
	Device     CacheBounds
	Credential CacheBounds
}

// Registry is the cache-fronted read facade over the identity store. Only
// definite results are cached: positive hits and not-found markers. A lookup
// failing with KindUnavailable leaves the cache untouched so the next request
// retries the backend.
type Registry struct {
	store       store.Store
	tenants     *cache.Cache[string, model.TenantRecord]
	devices     *cache.Cache[model.DeviceKey, model.DeviceRecord]
	credentials *cache.Cache[model.CredentialKey, model.CredentialRecord]
}

// New builds a registry facade over the given store.
func New(st store.Store, cfg CacheConfig) *Registry {
	return &Registry{
		store:       st,
		tenants:     cache.New[string, model.TenantRecord](cfg.Tenant.MinCapacity, cfg.Tenant.MaxCapacity),
		devices:     cache.New[model.DeviceKey, model.DeviceRecord](cfg.Device.MinCapacity, cfg.Device.MaxCapacity),
		credentials: cache.New[model.CredentialKey, model.CredentialRecord](cfg.Credential.MinCapacity, cfg.Credential.MaxCapacity),
	}
}

// Store exposes the backing store for the provisioning write path.
func (r *Registry) Store() store.Store {
	return r.store
}

// TenantExists looks up a tenant, consulting the tenant cache first.
func (r *Registry) TenantExists(ctx context.Context, tenantID string) (model.TenantRecord, error) {
	if tenant, present, ok := r.tenants.Get(tenantID); ok {
		if !present {
			return model.TenantRecord{}, errors.New(errors.KindNotFound, "registry.tenant", "no such tenant")
		}
		return tenant, nil
	}

	tenant, err := r.store.GetTenant(ctx, tenantID)
	if err != nil {
		if errors.IsKind(err, errors.KindNotFound) {
			r.tenants.PutAbsent(tenantID)
		}
		return model.TenantRecord{}, err
	}
	r.tenants.Put(tenantID, tenant)
	return tenant, nil
}

// GetDevice looks up a device registration, consulting the device cache first.
func (r *Registry) GetDevice(ctx context.Context, key model.DeviceKey) (model.DeviceRecord, error) {
	if device, present, ok := r.devices.Get(key); ok {
		if !present {
			return model.DeviceRecord{}, errors.New(errors.KindNotFound, "registry.device", "no such device")
		}
		return device, nil
	}

	device, err := r.store.GetDevice(ctx, key)
	if err != nil {
		if errors.IsKind(err, errors.KindNotFound) {
			r.devices.PutAbsent(key)
		}
		return model.DeviceRecord{}, err
	}
	r.devices.Put(key, device)
	return device, nil
}

// GetCredentials looks up a credential record, consulting the credential
// cache first.
func (r *Registry) GetCredentials(ctx context.Context, key model.CredentialKey) (model.CredentialRecord, error) {
	if credential, present, ok := r.credentials.Get(key); ok {
		if !present {
			return model.CredentialRecord{}, errors.New(errors.KindNotFound, "registry.credential", "no such credential")
		}
		return credential, nil
	}

	credential, err := r.store.GetCredential(ctx, key)
	if err != nil {
		if errors.IsKind(err, errors.KindNotFound) {
			r.credentials.PutAbsent(key)
		}
		return model.CredentialRecord{}, err
	}
	r.credentials.Put(key, credential)
	return credential, nil
}
