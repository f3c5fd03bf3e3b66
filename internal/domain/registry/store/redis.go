package store

import (
	"context"
	"encoding/json"

	"github.com/redis/go-redis/v9"

	"coap-adapter-go/internal/domain/registry/model"
	"coap-adapter-go/internal/platform/errors"
)

type redisStore struct {
	client *redis.Client
	prefix string
}

// NewRedis constructs a redis-backed registry store. Records are stored as
// JSON under per-kind key prefixes.
func NewRedis(cfg Config) (Store, error) {
	if cfg.Redis == nil {
		return nil, errors.New(errors.KindConfig, "store.redis.new", "redis configuration missing")
	}
	if cfg.Redis.Addr == "" {
		return nil, errors.New(errors.KindConfig, "store.redis.new", "redis address required")
	}

	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Addr,
		Username: cfg.Redis.Username,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	if err := client.Ping(context.Background()).Err(); err != nil {
		return nil, errors.Wrap(errors.KindUnavailable, "store.redis.new", "redis ping failed", err)
	}

	prefix := cfg.Redis.Prefix
	if prefix == "" {
		prefix = "registry:"
	}
	return &redisStore{client: client, prefix: prefix}, nil
}

func (s *redisStore) tenantKey(tenantID string) string {
	return s.prefix + "tenant:" + tenantID
}

func (s *redisStore) deviceKey(key model.DeviceKey) string {
	return s.prefix + "device:" + key.TenantID + "/" + key.DeviceID
}

func (s *redisStore) credentialKey(key model.CredentialKey) string {
	return s.prefix + "credential:" + key.TenantID + "/" + key.Type + "/" + key.AuthID
}

func (s *redisStore) get(ctx context.Context, op, key string, out any) error {
	raw, err := s.client.Get(ctx, key).Bytes()
	if err == redis.Nil {
		return errors.New(errors.KindNotFound, op, "record not found")
	}
	if err != nil {
		return errors.Wrap(errors.KindUnavailable, op, "backend error", err)
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return errors.Wrap(errors.KindUnavailable, op, "corrupt record", err)
	}
	return nil
}

func (s *redisStore) create(ctx context.Context, op, key string, record any) error {
	raw, err := json.Marshal(record)
	if err != nil {
		return errors.Wrap(errors.KindUnavailable, op, "encode record", err)
	}
	created, err := s.client.SetNX(ctx, key, raw, 0).Result()
	if err != nil {
		return errors.Wrap(errors.KindUnavailable, op, "backend error", err)
	}
	if !created {
		return errors.New(errors.KindConflict, op, "record already exists")
	}
	return nil
}

func (s *redisStore) update(ctx context.Context, op, key string, record any) error {
	raw, err := json.Marshal(record)
	if err != nil {
		return errors.Wrap(errors.KindUnavailable, op, "encode record", err)
	}
	updated, err := s.client.SetXX(ctx, key, raw, 0).Result()
	if err != nil {
		return errors.Wrap(errors.KindUnavailable, op, "backend error", err)
	}
	if !updated {
		return errors.New(errors.KindNotFound, op, "record not found")
	}
	return nil
}

func (s *redisStore) delete(ctx context.Context, op, key string) error {
	removed, err := s.client.Del(ctx, key).Result()
	if err != nil {
		return errors.Wrap(errors.KindUnavailable, op, "backend error", err)
	}
	if removed == 0 {
		return errors.New(errors.KindNotFound, op, "record not found")
	}
	return nil
}

func (s *redisStore) GetTenant(ctx context.Context, tenantID string) (model.TenantRecord, error) {
	var tenant model.TenantRecord
	if err := s.get(ctx, "store.tenant.get", s.tenantKey(tenantID), &tenant); err != nil {
		return model.TenantRecord{}, err
	}
	return tenant, nil
}

func (s *redisStore) GetDevice(ctx context.Context, key model.DeviceKey) (model.DeviceRecord, error) {
	var device model.DeviceRecord
	if err := s.get(ctx, "store.device.get", s.deviceKey(key), &device); err != nil {
		return model.DeviceRecord{}, err
	}
	return device, nil
}

func (s *redisStore) GetCredential(ctx context.Context, key model.CredentialKey) (model.CredentialRecord, error) {
	var credential model.CredentialRecord
	if err := s.get(ctx, "store.credential.get", s.credentialKey(key), &credential); err != nil {
		return model.CredentialRecord{}, err
	}
	return credential, nil
}

func (s *redisStore) CreateTenant(ctx context.Context, tenant model.TenantRecord) error {
	if tenant.TenantID == "" {
		return errors.New(errors.KindBadRequest, "store.tenant.create", "tenant id required")
	}
	return s.create(ctx, "store.tenant.create", s.tenantKey(tenant.TenantID), tenant)
}

func (s *redisStore) UpdateTenant(ctx context.Context, tenant model.TenantRecord) error {
	return s.update(ctx, "store.tenant.update", s.tenantKey(tenant.TenantID), tenant)
}

func (s *redisStore) DeleteTenant(ctx context.Context, tenantID string) error {
	return s.delete(ctx, "store.tenant.delete", s.tenantKey(tenantID))
}

func (s *redisStore) CreateDevice(ctx context.Context, device model.DeviceRecord) error {
	if device.TenantID == "" || device.DeviceID == "" {
		return errors.New(errors.KindBadRequest, "store.device.create", "tenant and device id required")
	}
	key := model.DeviceKey{TenantID: device.TenantID, DeviceID: device.DeviceID}
	return s.create(ctx, "store.device.create", s.deviceKey(key), device)
}

func (s *redisStore) UpdateDevice(ctx context.Context, device model.DeviceRecord) error {
	key := model.DeviceKey{TenantID: device.TenantID, DeviceID: device.DeviceID}
	return s.update(ctx, "store.device.update", s.deviceKey(key), device)
}

func (s *redisStore) DeleteDevice(ctx context.Context, key model.DeviceKey) error {
	return s.delete(ctx, "store.device.delete", s.deviceKey(key))
}

func (s *redisStore) CreateCredential(ctx context.Context, credential model.CredentialRecord) error {
	if credential.TenantID == "" || credential.AuthID == "" || credential.Type == "" {
		return errors.New(errors.KindBadRequest, "store.credential.create", "tenant, auth id and type required")
	}
	return s.create(ctx, "store.credential.create", s.credentialKey(credential.Key()), credential)
}

func (s *redisStore) UpdateCredential(ctx context.Context, credential model.CredentialRecord) error {
	return s.update(ctx, "store.credential.update", s.credentialKey(credential.Key()), credential)
}

func (s *redisStore) DeleteCredential(ctx context.Context, key model.CredentialKey) error {
	return s.delete(ctx, "store.credential.delete", s.credentialKey(key))
}

func (s *redisStore) Stats(ctx context.Context) (map[string]any, error) {
	stats := map[string]any{"type": "redis"}
	for _, kind := range []string{"tenant", "device", "credential"} {
		var cursor uint64
		count := 0
		for {
			keys, next, err := s.client.Scan(ctx, cursor, s.prefix+kind+":*", 100).Result()
			if err != nil {
				return nil, errors.Wrap(errors.KindUnavailable, "store.stats", "backend error", err)
			}
			count += len(keys)
			cursor = next
			if cursor == 0 {
				break
			}
		}
		stats[kind+"s"] = count
	}
	return stats, nil
}

func (s *redisStore) Close(context.Context) error {
	return s.client.Close()
}
