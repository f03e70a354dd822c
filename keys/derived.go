package keys

import (
	"context"
	"crypto/ed25519"
	"crypto/rand"
	"crypto/sha256"
	"errors"
	"fmt"
	"io"

	"github.com/google/uuid"
	"golang.org/x/crypto/hkdf"

	"github.com/kaeso/goKeyless/store"
)

const (
	derivedKeyPrefix        = "dk"
	derivedRecordVersion1   = 1
	derivedSecretSize       = 32
	derivedSaltSize         = 16
	derivedRecordSize       = 1 + derivedSecretSize + derivedSaltSize
	derivedSigningInfoLabel = "goKeyless/device-signing/v1"
)

// DerivedStore is the default [KeyStore]. Key material is a random device
// secret plus salt kept in the secure store; the Ed25519 signing key is
// derived with HKDF-SHA256 on demand and discarded after use, so no private
// key is ever written to storage.
type DerivedStore struct {
	store store.SecureStore
}

// NewDerivedStore creates a DerivedStore persisting into st.
func NewDerivedStore(st store.SecureStore) *DerivedStore {
	return &DerivedStore{store: st}
}

func derivedKey(handle Handle) string {
	return derivedKeyPrefix + ":" + string(handle)
}

// Generate describes the generate operation and its observable behavior.
//
// Generate creates a fresh device secret and derivation salt, persists them
// under a new handle, and returns the handle with the derived public key.
// It wraps [ErrUnavailable] when entropy or storage is unavailable.
func (d *DerivedStore) Generate(ctx context.Context, userID string) (Handle, ed25519.PublicKey, error) {
	record := make([]byte, derivedRecordSize)
	record[0] = derivedRecordVersion1
	if _, err := rand.Read(record[1:]); err != nil {
		return "", nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}

	private, err := deriveSigningKey(record)
	if err != nil {
		return "", nil, err
	}

	handle := Handle(uuid.NewString())
	if err := d.store.Put(ctx, derivedKey(handle), record); err != nil {
		return "", nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}

	public := private.Public().(ed25519.PublicKey)
	return handle, public, nil
}

// Sign describes the sign operation and its observable behavior.
//
// Sign is deterministic: the same handle and input always produce the same
// signature.
func (d *DerivedStore) Sign(ctx context.Context, handle Handle, data []byte) ([]byte, error) {
	private, err := d.load(ctx, handle)
	if err != nil {
		return nil, err
	}
	return ed25519.Sign(private, data), nil
}

// Public returns the public half of the key behind handle.
func (d *DerivedStore) Public(ctx context.Context, handle Handle) (ed25519.PublicKey, error) {
	private, err := d.load(ctx, handle)
	if err != nil {
		return nil, err
	}
	return private.Public().(ed25519.PublicKey), nil
}

// Remove destroys the key material behind handle. Removing an unknown
// handle is not an error.
func (d *DerivedStore) Remove(ctx context.Context, handle Handle) error {
	if err := d.store.Delete(ctx, derivedKey(handle)); err != nil {
		return fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	return nil
}

func (d *DerivedStore) load(ctx context.Context, handle Handle) (ed25519.PrivateKey, error) {
	record, err := d.store.Get(ctx, derivedKey(handle))
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, ErrUnknownHandle
		}
		return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	return deriveSigningKey(record)
}

func deriveSigningKey(record []byte) (ed25519.PrivateKey, error) {
	if len(record) != derivedRecordSize || record[0] != derivedRecordVersion1 {
		return nil, fmt.Errorf("%w: corrupt key record", ErrUnavailable)
	}

	secret := record[1 : 1+derivedSecretSize]
	salt := record[1+derivedSecretSize:]

	seed := make([]byte, ed25519.SeedSize)
	reader := hkdf.New(sha256.New, secret, salt, []byte(derivedSigningInfoLabel))
	if _, err := io.ReadFull(reader, seed); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}

	return ed25519.NewKeyFromSeed(seed), nil
}
