package webapi

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"

	"coap-adapter-go/internal/domain/registry/store"
)

func newTestRouter(t *testing.T) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)

	service, err := NewService(store.NewMemory(), nil)
	if err != nil {
		t.Fatalf("NewService: %v", err)
	}

	engine := gin.New()
	service.Register(engine.Group("/api/v1"))
	return engine
}

func doJSON(t *testing.T, engine *gin.Engine, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var reader *bytes.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("marshal body: %v", err)
		}
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	engine.ServeHTTP(rec, req)
	return rec
}

func TestTenantLifecycle(t *testing.T) {
	engine := newTestRouter(t)
	tenant := map[string]any{"tenantId": "t1", "enabled": true}

	if rec := doJSON(t, engine, http.MethodPost, "/api/v1/tenants", tenant); rec.Code != http.StatusCreated {
		t.Fatalf("create: got %d: %s", rec.Code, rec.Body)
	}
	if rec := doJSON(t, engine, http.MethodPost, "/api/v1/tenants", tenant); rec.Code != http.StatusConflict {
		t.Fatalf("duplicate create: got %d, want 409", rec.Code)
	}
	if rec := doJSON(t, engine, http.MethodGet, "/api/v1/tenants/t1", nil); rec.Code != http.StatusOK {
		t.Fatalf("get: got %d", rec.Code)
	}
	if rec := doJSON(t, engine, http.MethodPut, "/api/v1/tenants/t1", map[string]any{"enabled": false}); rec.Code != http.StatusOK {
		t.Fatalf("update: got %d", rec.Code)
	}
	if rec := doJSON(t, engine, http.MethodDelete, "/api/v1/tenants/t1", nil); rec.Code != http.StatusOK {
		t.Fatalf("delete: got %d", rec.Code)
	}
	if rec := doJSON(t, engine, http.MethodGet, "/api/v1/tenants/t1", nil); rec.Code != http.StatusNotFound {
		t.Fatalf("get after delete: got %d, want 404", rec.Code)
	}
}

func TestDeviceEndpoints(t *testing.T) {
	engine := newTestRouter(t)

	doJSON(t, engine, http.MethodPost, "/api/v1/tenants", map[string]any{"tenantId": "t1", "enabled": true})

	device := map[string]any{"deviceId": "d1", "enabled": true, "via": []string{"g1"}}
	if rec := doJSON(t, engine, http.MethodPost, "/api/v1/tenants/t1/devices", device); rec.Code != http.StatusCreated {
		t.Fatalf("create device: got %d: %s", rec.Code, rec.Body)
	}

	rec := doJSON(t, engine, http.MethodGet, "/api/v1/tenants/t1/devices/d1", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("get device: got %d", rec.Code)
	}
	var envelope struct {
		Data struct {
			Via []string `json:"via"`
		} `json:"data"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &envelope); err != nil {
		t.Fatalf("decode envelope: %v", err)
	}
	if len(envelope.Data.Via) != 1 || envelope.Data.Via[0] != "g1" {
		t.Fatalf("via not preserved: %+v", envelope.Data)
	}

	if rec := doJSON(t, engine, http.MethodDelete, "/api/v1/tenants/t1/devices/ghost", nil); rec.Code != http.StatusNotFound {
		t.Fatalf("delete missing device: got %d, want 404", rec.Code)
	}
	if rec := doJSON(t, engine, http.MethodPost, "/api/v1/tenants/t1/devices", map[string]any{"enabled": true}); rec.Code != http.StatusBadRequest {
		t.Fatalf("create without id: got %d, want 400", rec.Code)
	}
}

func TestCredentialEndpoints(t *testing.T) {
	engine := newTestRouter(t)

	doJSON(t, engine, http.MethodPost, "/api/v1/tenants", map[string]any{"tenantId": "t1", "enabled": true})

	credential := map[string]any{
		"type":     "psk",
		"authId":   "d1",
		"deviceId": "d1",
		"enabled":  true,
		"secrets":  []map[string]any{{"key": "c2VjcmV0"}},
	}
	if rec := doJSON(t, engine, http.MethodPost, "/api/v1/tenants/t1/credentials", credential); rec.Code != http.StatusCreated {
		t.Fatalf("create credential: got %d: %s", rec.Code, rec.Body)
	}

	if rec := doJSON(t, engine, http.MethodGet, "/api/v1/tenants/t1/credentials?type=psk&auth-id=d1", nil); rec.Code != http.StatusOK {
		t.Fatalf("get credential: got %d", rec.Code)
	}
	if rec := doJSON(t, engine, http.MethodGet, "/api/v1/tenants/t1/credentials?type=psk", nil); rec.Code != http.StatusBadRequest {
		t.Fatalf("get without auth-id: got %d, want 400", rec.Code)
	}
	if rec := doJSON(t, engine, http.MethodDelete, "/api/v1/tenants/t1/credentials?type=psk&auth-id=d1", nil); rec.Code != http.StatusOK {
		t.Fatalf("delete credential: got %d", rec.Code)
	}
	if rec := doJSON(t, engine, http.MethodGet, "/api/v1/tenants/t1/credentials?type=psk&auth-id=d1", nil); rec.Code != http.StatusNotFound {
		t.Fatalf("get after delete: got %d, want 404", rec.Code)
	}
}
