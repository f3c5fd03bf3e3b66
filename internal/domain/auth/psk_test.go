package auth

import (
	"bytes"
	"context"
	"encoding/base64"
	"testing"

	"coap-adapter-go/internal/domain/registry"
	"coap-adapter-go/internal/domain/registry/model"
	"coap-adapter-go/internal/domain/registry/store"
	"coap-adapter-go/internal/platform/logging"
)

func newTestPSKProvider(t *testing.T) *PSKProvider {
	t.Helper()
	ctx := context.Background()
	backing := store.NewMemory()

	if err := backing.CreateTenant(ctx, model.TenantRecord{TenantID: "t1", Enabled: true}); err != nil {
		t.Fatalf("seed tenant: %v", err)
	}

	key := base64.StdEncoding.EncodeToString([]byte("shared-secret"))
	credentials := []model.CredentialRecord{
		{
			TenantID: "t1", Type: model.CredentialTypePSK, AuthID: "d1",
			DeviceID: "d1", Enabled: true,
			Secrets: []model.Secret{{Key: key}},
		},
		{
			TenantID: "t1", Type: model.CredentialTypePSK, AuthID: "d-off",
			DeviceID: "d-off", Enabled: false,
			Secrets: []model.Secret{{Key: key}},
		},
		{
			TenantID: "t1", Type: model.CredentialTypePSK, AuthID: "d-corrupt",
			DeviceID: "d-corrupt", Enabled: true,
			Secrets: []model.Secret{{Key: "%%not-base64%%"}},
		},
		{
			TenantID: "t1", Type: model.CredentialTypePSK, AuthID: "d-empty",
			DeviceID: "d-empty", Enabled: true,
			Secrets: []model.Secret{{PasswordHash: "irrelevant"}},
		},
	}
	for _, c := range credentials {
		if err := backing.CreateCredential(ctx, c); err != nil {
			t.Fatalf("seed credential %s: %v", c.AuthID, err)
		}
	}

	logger, err := logging.New(logging.Config{Level: "error"})
	if err != nil {
		t.Fatalf("logging.New: %v", err)
	}
	t.Cleanup(func() { logger.Close() })

	reg := registry.New(backing, registry.CacheConfig{})
	return NewPSKProvider(reg, logger)
}

func TestSecretForKnownIdentity(t *testing.T) {
	provider := newTestPSKProvider(t)

	secret, err := provider.SecretFor([]byte("d1@t1"))
	if err != nil {
		t.Fatalf("SecretFor error: %v", err)
	}
	if !bytes.Equal(secret, []byte("shared-secret")) {
		t.Fatalf("unexpected secret: %q", secret)
	}
}

func TestSecretForFailuresAreUniform(t *testing.T) {
	provider := newTestPSKProvider(t)

	// A handshake observer must not be able to tell these apart.
	hints := map[string][]byte{
		"unknown auth-id":      []byte("ghost@t1"),
		"unknown tenant":       []byte("d1@ghost"),
		"malformed hint":       []byte("no-separator"),
		"empty hint":           nil,
		"disabled credential":  []byte("d-off@t1"),
		"corrupt key material": []byte("d-corrupt@t1"),
		"no psk secret":        []byte("d-empty@t1"),
	}

	for name, hint := range hints {
		secret, err := provider.SecretFor(hint)
		if err == nil {
			t.Fatalf("%s: expected failure, got secret %q", name, secret)
		}
		if err != errNoSecret {
			t.Fatalf("%s: expected the uniform failure, got %v", name, err)
		}
	}
}
