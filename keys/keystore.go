package keys

import (
	"context"
	"crypto/ed25519"
	"errors"
)

// Handle is an opaque reference to signing key material held by a
// [KeyStore]. It is safe to persist and carries no key material itself.
type Handle string

// ErrUnavailable is returned when the key facility cannot be reached or is
// locked.
var ErrUnavailable = errors.New("keys: key facility unavailable")

// ErrUnknownHandle is returned when a handle does not resolve to key
// material.
var ErrUnknownHandle = errors.New("keys: unknown key handle")

// KeyStore is the platform key capability the engine is built against.
//
// Generate creates fresh asymmetric key material bound to userID and
// returns its handle together with the public half; the private half never
// leaves the store. Sign must be deterministic for the same handle and
// input. Implementations must be safe for concurrent use.
type KeyStore interface {
	Generate(ctx context.Context, userID string) (Handle, ed25519.PublicKey, error)
	Sign(ctx context.Context, handle Handle, data []byte) ([]byte, error)
	Public(ctx context.Context, handle Handle) (ed25519.PublicKey, error)
	Remove(ctx context.Context, handle Handle) error
}
