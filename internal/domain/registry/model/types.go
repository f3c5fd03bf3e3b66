package model

// Credential types understood by the registry. Only PSK credentials are
// consumed on the ingestion path; the others exist for provisioning parity.
const (
	CredentialTypePSK            = "psk"
	CredentialTypeHashedPassword = "hashed-password"
	CredentialTypeX509           = "x509"
)

// TenantRecord is an immutable snapshot of a tenant as returned by a lookup.
type TenantRecord struct {
	TenantID string          `json:"tenantId"`
	Enabled  bool            `json:"enabled"`
	Adapters map[string]bool `json:"adapters,omitempty"`
}

// AdapterEnabled reports whether the given protocol adapter type may serve
// this tenant. An empty map means no per-adapter restriction.
func (t TenantRecord) AdapterEnabled(adapterType string) bool {
	if len(t.Adapters) == 0 {
		return true
	}
	return t.Adapters[adapterType]
}

// DeviceKey is the composite lookup key for device registrations.
type DeviceKey struct {
	TenantID string
	DeviceID string
}

// DeviceRecord is a device registration. Via lists the gateway identifiers
// authorized to upload on the device's behalf; an empty set means the device
// uploads directly and no gateway is permitted.
type DeviceRecord struct {
	TenantID string   `json:"tenantId"`
	DeviceID string   `json:"deviceId"`
	Enabled  bool     `json:"enabled"`
	Via      []string `json:"via,omitempty"`
}

// AuthorizedGateway reports whether gatewayID may act on this device's behalf.
func (d DeviceRecord) AuthorizedGateway(gatewayID string) bool {
	for _, id := range d.Via {
		if id == gatewayID {
			return true
		}
	}
	return false
}

// CredentialKey is the composite lookup key for credentials.
type CredentialKey struct {
	TenantID string
	Type     string
	AuthID   string
}

// Secret is a single secret entry. Key carries the base64-encoded raw key
// material for PSK credentials; PasswordHash the hash for hashed-password
// ones. The at-rest encoding is preserved as stored.
type Secret struct {
	Key          string `json:"key,omitempty"`
	PasswordHash string `json:"pwd-hash,omitempty"`
}

// CredentialRecord holds the secrets registered under one credential key and
// the device identity they authenticate.
type CredentialRecord struct {
	TenantID string   `json:"tenantId"`
	Type     string   `json:"type"`
	AuthID   string   `json:"authId"`
	DeviceID string   `json:"deviceId"`
	Enabled  bool     `json:"enabled"`
	Secrets  []Secret `json:"secrets,omitempty"`
}

// Key returns the composite lookup key of the credential.
func (c CredentialRecord) Key() CredentialKey {
	return CredentialKey{TenantID: c.TenantID, Type: c.Type, AuthID: c.AuthID}
}
