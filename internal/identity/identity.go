// Package identity derives the arbiter's public address from its private
// identity. The private form never leaves this package; only the address is
// embedded in role messages for clients that want to verify it out-of-band.
package identity

import (
	"crypto/sha256"
	"encoding/hex"
	"errors"
)

// ErrMissingKey is returned when the arbiter private key is not configured.
var ErrMissingKey = errors.New("arbiter private key not configured")

// Identity holds the arbiter's key material.
type Identity struct {
	privateKey string

	// Address is the public form sent to clients.
	Address string
}

// New derives an Identity from the private key. The derivation happens once
// at startup; nothing in the match path touches the private form.
func New(privateKey string) (*Identity, error) {
	if privateKey == "" {
		return nil, ErrMissingKey
	}
	return &Identity{
		privateKey: privateKey,
		Address:    deriveAddress(privateKey),
	}, nil
}

func deriveAddress(privateKey string) string {
	sum := sha256.Sum256([]byte(privateKey))
	return "arb1" + hex.EncodeToString(sum[:20])
}
