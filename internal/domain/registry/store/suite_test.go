package store

import (
	"context"
	"testing"

	"coap-adapter-go/internal/domain/registry/model"
	"coap-adapter-go/internal/platform/errors"
)

// runStoreSuite exercises the behaviour every backend must share.
func runStoreSuite(t *testing.T, s Store) {
	t.Helper()
	ctx := context.Background()
	t.Cleanup(func() {
		_ = s.Close(ctx)
	})

	tenant := model.TenantRecord{
		TenantID: "acme",
		Enabled:  true,
		Adapters: map[string]bool{"coap": true},
	}
	device := model.DeviceRecord{
		TenantID: "acme",
		DeviceID: "sensor-1",
		Enabled:  true,
		Via:      []string{"gw-1"},
	}
	credential := model.CredentialRecord{
		TenantID: "acme",
		Type:     model.CredentialTypePSK,
		AuthID:   "sensor-1",
		DeviceID: "sensor-1",
		Enabled:  true,
		Secrets:  []model.Secret{{Key: "c2VjcmV0"}},
	}

	// Reads before any write classify as not-found.
	if _, err := s.GetTenant(ctx, "acme"); !errors.IsKind(err, errors.KindNotFound) {
		t.Fatalf("expected not-found for missing tenant, got %v", err)
	}

	if err := s.CreateTenant(ctx, tenant); err != nil {
		t.Fatalf("CreateTenant error: %v", err)
	}
	if err := s.CreateDevice(ctx, device); err != nil {
		t.Fatalf("CreateDevice error: %v", err)
	}
	if err := s.CreateCredential(ctx, credential); err != nil {
		t.Fatalf("CreateCredential error: %v", err)
	}

	gotTenant, err := s.GetTenant(ctx, "acme")
	if err != nil {
		t.Fatalf("GetTenant error: %v", err)
	}
	if !gotTenant.Enabled || !gotTenant.AdapterEnabled("coap") {
		t.Fatalf("unexpected tenant: %+v", gotTenant)
	}

	gotDevice, err := s.GetDevice(ctx, model.DeviceKey{TenantID: "acme", DeviceID: "sensor-1"})
	if err != nil {
		t.Fatalf("GetDevice error: %v", err)
	}
	if !gotDevice.AuthorizedGateway("gw-1") || gotDevice.AuthorizedGateway("gw-2") {
		t.Fatalf("unexpected via set: %+v", gotDevice.Via)
	}

	credentialKey := model.CredentialKey{TenantID: "acme", Type: model.CredentialTypePSK, AuthID: "sensor-1"}
	gotCredential, err := s.GetCredential(ctx, credentialKey)
	if err != nil {
		t.Fatalf("GetCredential error: %v", err)
	}
	if len(gotCredential.Secrets) != 1 || gotCredential.Secrets[0].Key != "c2VjcmV0" {
		t.Fatalf("unexpected secrets: %+v", gotCredential.Secrets)
	}
	if gotCredential.DeviceID != "sensor-1" {
		t.Fatalf("unexpected linked device: %s", gotCredential.DeviceID)
	}

	// Duplicate creates conflict and leave the stored record untouched.
	dupe := credential
	dupe.Secrets = []model.Secret{{Key: "b3RoZXI="}}
	if err := s.CreateCredential(ctx, dupe); !errors.IsKind(err, errors.KindConflict) {
		t.Fatalf("expected conflict on duplicate credential, got %v", err)
	}
	unchanged, err := s.GetCredential(ctx, credentialKey)
	if err != nil {
		t.Fatalf("GetCredential after conflict: %v", err)
	}
	if unchanged.Secrets[0].Key != "c2VjcmV0" {
		t.Fatalf("conflicting create must not alter the stored record: %+v", unchanged.Secrets)
	}
	if err := s.CreateTenant(ctx, tenant); !errors.IsKind(err, errors.KindConflict) {
		t.Fatalf("expected conflict on duplicate tenant, got %v", err)
	}
	if err := s.CreateDevice(ctx, device); !errors.IsKind(err, errors.KindConflict) {
		t.Fatalf("expected conflict on duplicate device, got %v", err)
	}

	// Updates rewrite the record.
	device.Enabled = false
	if err := s.UpdateDevice(ctx, device); err != nil {
		t.Fatalf("UpdateDevice error: %v", err)
	}
	gotDevice, err = s.GetDevice(ctx, model.DeviceKey{TenantID: "acme", DeviceID: "sensor-1"})
	if err != nil {
		t.Fatalf("GetDevice after update: %v", err)
	}
	if gotDevice.Enabled {
		t.Fatalf("expected device to be disabled after update")
	}

	// Updates and deletes of missing records are not silent no-ops.
	missingDevice := model.DeviceRecord{TenantID: "acme", DeviceID: "ghost", Enabled: true}
	if err := s.UpdateDevice(ctx, missingDevice); !errors.IsKind(err, errors.KindNotFound) {
		t.Fatalf("expected not-found updating missing device, got %v", err)
	}
	if err := s.DeleteDevice(ctx, model.DeviceKey{TenantID: "acme", DeviceID: "ghost"}); !errors.IsKind(err, errors.KindNotFound) {
		t.Fatalf("expected not-found deleting missing device, got %v", err)
	}
	if err := s.UpdateCredential(ctx, model.CredentialRecord{TenantID: "acme", Type: model.CredentialTypePSK, AuthID: "ghost"}); !errors.IsKind(err, errors.KindNotFound) {
		t.Fatalf("expected not-found updating missing credential, got %v", err)
	}

	// Deletes remove the record.
	if err := s.DeleteCredential(ctx, credentialKey); err != nil {
		t.Fatalf("DeleteCredential error: %v", err)
	}
	if _, err := s.GetCredential(ctx, credentialKey); !errors.IsKind(err, errors.KindNotFound) {
		t.Fatalf("expected not-found after delete, got %v", err)
	}

	stats, err := s.Stats(ctx)
	if err != nil {
		t.Fatalf("Stats error: %v", err)
	}
	if stats["type"] == nil {
		t.Fatalf("stats missing type: %v", stats)
	}
}
