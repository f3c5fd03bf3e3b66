// Package webapi exposes the device registry management API used to
// provision tenants, devices and credentials.
package webapi

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"coap-adapter-go/internal/domain/registry/model"
	"coap-adapter-go/internal/domain/registry/store"
	httptransport "coap-adapter-go/internal/transport/http"
	"coap-adapter-go/internal/platform/errors"
	"coap-adapter-go/internal/platform/logging"
)

// Service is the HTTP transport of the registry management API.
type Service struct {
	store  store.Store
	logger *logging.Logger
}

// NewService creates the management API service.
func NewService(st store.Store, logger *logging.Logger) (*Service, error) {
	if st == nil {
		return nil, errors.New(errors.KindConfig, "webapi.new", "store is required")
	}
	return &Service{store: st, logger: logger}, nil
}

// Register mounts the management routes on the given group.
func (s *Service) Register(router *gin.RouterGroup) {
	router.POST("/tenants", s.handleTenantCreate)
	router.GET("/tenants/:tenant", s.handleTenantGet)
	router.PUT("/tenants/:tenant", s.handleTenantUpdate)
	router.DELETE("/tenants/:tenant", s.handleTenantDelete)

	router.POST("/tenants/:tenant/devices", s.handleDeviceCreate)
	router.GET("/tenants/:tenant/devices/:device", s.handleDeviceGet)
	router.PUT("/tenants/:tenant/devices/:device", s.handleDeviceUpdate)
	router.DELETE("/tenants/:tenant/devices/:device", s.handleDeviceDelete)

	router.POST("/tenants/:tenant/credentials", s.handleCredentialCreate)
	router.GET("/tenants/:tenant/credentials", s.handleCredentialGet)
	router.PUT("/tenants/:tenant/credentials", s.handleCredentialUpdate)
	router.DELETE("/tenants/:tenant/credentials", s.handleCredentialDelete)

	router.GET("/stats", s.handleStats)

	if s.logger != nil {
		s.logger.InfoTag("HTTP", "registry management routes registered")
	}
}

func (s *Service) handleTenantCreate(c *gin.Context) {
	var tenant model.TenantRecord
	if err := c.ShouldBindJSON(&tenant); err != nil || tenant.TenantID == "" {
		httptransport.RespondError(c, http.StatusBadRequest, "invalid tenant payload", nil)
		return
	}
	if err := s.store.CreateTenant(c.Request.Context(), tenant); err != nil {
		s.respondStoreError(c, err)
		return
	}
	httptransport.RespondSuccess(c, http.StatusCreated, tenant, "tenant created")
}

func (s *Service) handleTenantGet(c *gin.Context) {
	tenant, err := s.store.GetTenant(c.Request.Context(), c.Param("tenant"))
	if err != nil {
		s.respondStoreError(c, err)
		return
	}
	httptransport.RespondSuccess(c, http.StatusOK, tenant, "")
}

func (s *Service) handleTenantUpdate(c *gin.Context) {
	var tenant model.TenantRecord
	if err := c.ShouldBindJSON(&tenant); err != nil {
		httptransport.RespondError(c, http.StatusBadRequest, "invalid tenant payload", nil)
		return
	}
	tenant.TenantID = c.Param("tenant")
	if err := s.store.UpdateTenant(c.Request.Context(), tenant); err != nil {
		s.respondStoreError(c, err)
		return
	}
	httptransport.RespondSuccess(c, http.StatusOK, tenant, "tenant updated")
}

func (s *Service) handleTenantDelete(c *gin.Context) {
	if err := s.store.DeleteTenant(c.Request.Context(), c.Param("tenant")); err != nil {
		s.respondStoreError(c, err)
		return
	}
	httptransport.RespondSuccess(c, http.StatusOK, nil, "tenant deleted")
}

func (s *Service) handleDeviceCreate(c *gin.Context) {
	var device model.DeviceRecord
	if err := c.ShouldBindJSON(&device); err != nil || device.DeviceID == "" {
		httptransport.RespondError(c, http.StatusBadRequest, "invalid device payload", nil)
		return
	}
	device.TenantID = c.Param("tenant")
	if err := s.store.CreateDevice(c.Request.Context(), device); err != nil {
		s.respondStoreError(c, err)
		return
	}
	httptransport.RespondSuccess(c, http.StatusCreated, device, "device created")
}

func (s *Service) handleDeviceGet(c *gin.Context) {
	key := model.DeviceKey{TenantID: c.Param("tenant"), DeviceID: c.Param("device")}
	device, err := s.store.GetDevice(c.Request.Context(), key)
	if err != nil {
		s.respondStoreError(c, err)
		return
	}
	httptransport.RespondSuccess(c, http.StatusOK, device, "")
}

func (s *Service) handleDeviceUpdate(c *gin.Context) {
	var device model.DeviceRecord
	if err := c.ShouldBindJSON(&device); err != nil {
		httptransport.RespondError(c, http.StatusBadRequest, "invalid device payload", nil)
		return
	}
	device.TenantID = c.Param("tenant")
	device.DeviceID = c.Param("device")
	if err := s.store.UpdateDevice(c.Request.Context(), device); err != nil {
		s.respondStoreError(c, err)
		return
	}
	httptransport.RespondSuccess(c, http.StatusOK, device, "device updated")
}

func (s *Service) handleDeviceDelete(c *gin.Context) {
	key := model.DeviceKey{TenantID: c.Param("tenant"), DeviceID: c.Param("device")}
	if err := s.store.DeleteDevice(c.Request.Context(), key); err != nil {
		s.respondStoreError(c, err)
		return
	}
	httptransport.RespondSuccess(c, http.StatusOK, nil, "device deleted")
}

func (s *Service) handleCredentialCreate(c *gin.Context) {
	var credential model.CredentialRecord
	if err := c.ShouldBindJSON(&credential); err != nil || credential.AuthID == "" || credential.Type == "" {
		httptransport.RespondError(c, http.StatusBadRequest, "invalid credential payload", nil)
		return
	}
	credential.TenantID = c.Param("tenant")
	if err := s.store.CreateCredential(c.Request.Context(), credential); err != nil {
		s.respondStoreError(c, err)
		return
	}
	httptransport.RespondSuccess(c, http.StatusCreated, credential, "credential created")
}

func (s *Service) handleCredentialGet(c *gin.Context) {
	key, ok := s.credentialKey(c)
	if !ok {
		return
	}
	credential, err := s.store.GetCredential(c.Request.Context(), key)
	if err != nil {
		s.respondStoreError(c, err)
		return
	}
	httptransport.RespondSuccess(c, http.StatusOK, credential, "")
}

func (s *Service) handleCredentialUpdate(c *gin.Context) {
	var credential model.CredentialRecord
	if err := c.ShouldBindJSON(&credential); err != nil || credential.AuthID == "" || credential.Type == "" {
		httptransport.RespondError(c, http.StatusBadRequest, "invalid credential payload", nil)
		return
	}
	credential.TenantID = c.Param("tenant")
	if err := s.store.UpdateCredential(c.Request.Context(), credential); err != nil {
		s.respondStoreError(c, err)
		return
	}
	httptransport.RespondSuccess(c, http.StatusOK, credential, "credential updated")
}

func (s *Service) handleCredentialDelete(c *gin.Context) {
	key, ok := s.credentialKey(c)
	if !ok {
		return
	}
	if err := s.store.DeleteCredential(c.Request.Context(), key); err != nil {
		s.respondStoreError(c, err)
		return
	}
	httptransport.RespondSuccess(c, http.StatusOK, nil, "credential deleted")
}

func (s *Service) handleStats(c *gin.Context) {
	stats, err := s.store.Stats(c.Request.Context())
	if err != nil {
		s.respondStoreError(c, err)
		return
	}
	httptransport.RespondSuccess(c, http.StatusOK, stats, "")
}

// credentialKey extracts the type+authId credential selector from the query.
func (s *Service) credentialKey(c *gin.Context) (model.CredentialKey, bool) {
	key := model.CredentialKey{
		TenantID: c.Param("tenant"),
		Type:     c.Query("type"),
		AuthID:   c.Query("auth-id"),
	}
	if key.Type == "" || key.AuthID == "" {
		httptransport.RespondError(c, http.StatusBadRequest, "type and auth-id query parameters are required", nil)
		return model.CredentialKey{}, false
	}
	return key, true
}

func (s *Service) respondStoreError(c *gin.Context, err error) {
	status := http.StatusInternalServerError
	switch errors.KindOf(err) {
	case errors.KindConflict:
		status = http.StatusConflict
	case errors.KindNotFound:
		status = http.StatusNotFound
	case errors.KindBadRequest:
		status = http.StatusBadRequest
	case errors.KindUnavailable:
		status = http.StatusServiceUnavailable
	}
	if s.logger != nil && status >= 500 {
		s.logger.ErrorTag("HTTP", "registry operation failed: %v", err)
	}
	httptransport.RespondError(c, status, errors.Message(err), nil)
}
