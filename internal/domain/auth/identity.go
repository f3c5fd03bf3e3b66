package auth

import (
	"strings"

	"coap-adapter-go/internal/platform/errors"
)

// Identity is the authenticated peer identity produced by a completed
// handshake. The zero value is the anonymous identity of an unsecured
// channel.
type Identity struct {
	TenantID string
	AuthID   string
}

// Anonymous returns the identity of an unauthenticated peer.
func Anonymous() Identity {
	return Identity{}
}

// IsAnonymous reports whether the identity carries no authenticated peer.
func (i Identity) IsAnonymous() bool {
	return i.TenantID == "" && i.AuthID == ""
}

func (i Identity) String() string {
	if i.IsAnonymous() {
		return "anonymous"
	}
	return i.AuthID + "@" + i.TenantID
}

// ParseIdentityHint parses the opaque PSK identity presented during the
// handshake, formatted as authId@tenantId.
func ParseIdentityHint(hint string) (Identity, error) {
	sep := strings.LastIndex(hint, "@")
	if sep <= 0 || sep == len(hint)-1 {
		return Identity{}, errors.New(errors.KindBadRequest, "auth.identity", "malformed identity hint")
	}
	return Identity{
		AuthID:   hint[:sep],
		TenantID: hint[sep+1:],
	}, nil
}
