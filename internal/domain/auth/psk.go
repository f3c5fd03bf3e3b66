package auth

import (
	"context"
	"encoding/base64"
	stderrors "errors"
	"time"

	"coap-adapter-go/internal/domain/registry"
	"coap-adapter-go/internal/domain/registry/model"
	"coap-adapter-go/internal/platform/logging"
)

// errNoSecret is the single failure every unsuccessful secret lookup maps
// to. A malformed hint, a missing credential, a disabled record and corrupt
// key material must all be indistinguishable to the peer: the handshake just
// fails.
var errNoSecret = stderrors.New("no matching pre-shared key")

const defaultHandshakeTimeout = 5 * time.Second

// PSKProvider supplies pre-shared key material to the secure transport
// during handshakes.
type PSKProvider struct {
	registry *registry.Registry
	logger   *logging.Logger
	timeout  time.Duration
}

// NewPSKProvider builds a provider reading PSK credentials from the
// registry.
func NewPSKProvider(reg *registry.Registry, logger *logging.Logger) *PSKProvider {
	return &PSKProvider{
		registry: reg,
		logger:   logger,
		timeout:  defaultHandshakeTimeout,
	}
}

// SecretFor resolves the raw key material for the PSK identity presented by
// a connecting peer. Lookup details are logged locally; the returned error
// carries no cause.
func (p *PSKProvider) SecretFor(hint []byte) ([]byte, error) {
	identity, err := ParseIdentityHint(string(hint))
	if err != nil {
		p.logger.Debug("psk: unparseable identity hint")
		return nil, errNoSecret
	}

	ctx, cancel := context.WithTimeout(context.Background(), p.timeout)
	defer cancel()

	credential, err := p.registry.GetCredentials(ctx, model.CredentialKey{
		TenantID: identity.TenantID,
		Type:     model.CredentialTypePSK,
		AuthID:   identity.AuthID,
	})
	if err != nil {
		p.logger.Debug("psk: no credentials for %s: %v", identity, err)
		return nil, errNoSecret
	}
	if !credential.Enabled {
		p.logger.Debug("psk: credentials disabled for %s", identity)
		return nil, errNoSecret
	}

	for _, secret := range credential.Secrets {
		if secret.Key == "" {
			continue
		}
		key, err := base64.StdEncoding.DecodeString(secret.Key)
		if err != nil {
			// Corrupt at-rest material fails exactly like a wrong key.
			p.logger.Warn("psk: malformed key material for %s", identity)
			return nil, errNoSecret
		}
		return key, nil
	}

	p.logger.Debug("psk: no usable secret for %s", identity)
	return nil, errNoSecret
}
