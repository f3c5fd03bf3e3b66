package auth

import (
	"context"

	"coap-adapter-go/internal/domain/registry"
	"coap-adapter-go/internal/domain/registry/model"
	"coap-adapter-go/internal/platform/errors"
)

// Target is the authorized attribution of an inbound payload: the device it
// belongs to and, when relayed, the gateway that uploaded it.
type Target struct {
	TenantID string
	DeviceID string
	Via      string
}

// Resolver walks the tenant, device and gateway chain to decide whether a
// peer may upload for a target device.
//
// Disabled devices are reported as not-found so callers cannot distinguish a
// disabled principal from a nonexistent one. Disabled tenants map to
// forbidden instead; tenant existence is not considered sensitive.
type Resolver struct {
	registry    *registry.Registry
	adapterType string
}

// NewResolver builds a resolver for one protocol adapter type.
func NewResolver(reg *registry.Registry, adapterType string) *Resolver {
	return &Resolver{
		registry:    reg,
		adapterType: adapterType,
	}
}

// Resolve authorizes an upload addressed to (tenantID, deviceID) by the given
// peer identity. Anonymous peers are treated as the target device itself:
// the device must still exist and be enabled, but no gateway relationship is
// possible.
func (r *Resolver) Resolve(ctx context.Context, identity Identity, tenantID, deviceID string) (Target, error) {
	authID := identity.AuthID
	if identity.IsAnonymous() {
		authID = deviceID
	} else if identity.TenantID != tenantID {
		// Identities are tenant scoped; an upload across tenants is never
		// authorized.
		return Target{}, errors.New(errors.KindForbidden, "auth.resolve", "identity not scoped to tenant")
	}

	tenant, err := r.registry.TenantExists(ctx, tenantID)
	if err != nil {
		return Target{}, err
	}
	if !tenant.Enabled || !tenant.AdapterEnabled(r.adapterType) {
		return Target{}, errors.New(errors.KindForbidden, "auth.resolve", "tenant disabled for this adapter")
	}

	authDevice, err := r.registry.GetDevice(ctx, model.DeviceKey{TenantID: tenantID, DeviceID: authID})
	if err != nil {
		return Target{}, err
	}
	if !authDevice.Enabled {
		return Target{}, errors.New(errors.KindNotFound, "auth.resolve", "no such device")
	}

	if authID == deviceID {
		return Target{TenantID: tenantID, DeviceID: deviceID}, nil
	}

	// The authenticated identity is acting as a gateway for the target
	// device. The target must exist and be enabled before the relationship
	// can be evaluated.
	targetDevice, err := r.registry.GetDevice(ctx, model.DeviceKey{TenantID: tenantID, DeviceID: deviceID})
	if err != nil {
		return Target{}, err
	}
	if !targetDevice.Enabled {
		return Target{}, errors.New(errors.KindNotFound, "auth.resolve", "no such device")
	}
	if !targetDevice.AuthorizedGateway(authID) {
		return Target{}, errors.New(errors.KindForbidden, "auth.resolve", "gateway not authorized for device")
	}

	return Target{TenantID: tenantID, DeviceID: deviceID, Via: authID}, nil
}
