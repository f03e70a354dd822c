package goKeyless

import (
	"bytes"
	"context"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/kaeso/goKeyless/keys"
	"github.com/kaeso/goKeyless/store"
)

const (
	credentialKeyPrefix      = "dc"
	credentialRecordVersion1 = 1

	lastLoggedInUserKey = "llu"
)

var (
	errCredentialNotFound = errors.New("device credential not found")
	errCredentialCorrupt  = errors.New("device credential record corrupt")
	errCredentialBackend  = errors.New("credential backend unavailable")
)

// credentialStore owns persisted DeviceCredential records and the
// process-wide last-logged-in-user slot. It is the only component allowed
// to mutate that state; everything else works on copies.
type credentialStore struct {
	store store.SecureStore
}

func newCredentialStore(st store.SecureStore) *credentialStore {
	return &credentialStore{store: st}
}

func credentialKey(userID string) string {
	return credentialKeyPrefix + ":" + userID
}

func (s *credentialStore) Get(ctx context.Context, userID string) (*DeviceCredential, error) {
	data, err := s.store.Get(ctx, credentialKey(userID))
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, errCredentialNotFound
		}
		return nil, fmt.Errorf("%w: %v", errCredentialBackend, err)
	}
	return decodeCredential(data)
}

// Put atomically replaces the user's credential; at most one active
// credential exists per user on this device.
func (s *credentialStore) Put(ctx context.Context, userID string, cred *DeviceCredential) error {
	encoded, err := encodeCredential(cred)
	if err != nil {
		return err
	}
	if err := s.store.Put(ctx, credentialKey(userID), encoded); err != nil {
		return fmt.Errorf("%w: %v", errCredentialBackend, err)
	}
	return nil
}

func (s *credentialStore) Delete(ctx context.Context, userID string) error {
	if err := s.store.Delete(ctx, credentialKey(userID)); err != nil {
		return fmt.Errorf("%w: %v", errCredentialBackend, err)
	}
	return nil
}

func (s *credentialStore) SetLastLoggedInUser(ctx context.Context, userID string) error {
	if err := s.store.Put(ctx, lastLoggedInUserKey, []byte(userID)); err != nil {
		return fmt.Errorf("%w: %v", errCredentialBackend, err)
	}
	return nil
}

func (s *credentialStore) LastLoggedInUser(ctx context.Context) string {
	data, err := s.store.Get(ctx, lastLoggedInUserKey)
	if err != nil {
		return ""
	}
	return string(data)
}

func (s *credentialStore) ClearLastLoggedInUser(ctx context.Context) error {
	if err := s.store.Delete(ctx, lastLoggedInUserKey); err != nil {
		return fmt.Errorf("%w: %v", errCredentialBackend, err)
	}
	return nil
}

func encodeCredential(cred *DeviceCredential) ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte(credentialRecordVersion1)

	fields := [][]byte{
		[]byte(cred.DeviceID),
		[]byte(cred.KeyHandle),
		cred.PublicKey,
	}
	for _, field := range fields {
		if len(field) > 65535 {
			return nil, errors.New("credential field length exceeded")
		}
		if err := binary.Write(&buf, binary.BigEndian, uint16(len(field))); err != nil {
			return nil, err
		}
		buf.Write(field)
	}

	buf.WriteByte(cred.ProtocolVersion)
	if err := binary.Write(&buf, binary.BigEndian, cred.CreatedAt.Unix()); err != nil {
		return nil, err
	}

	return buf.Bytes(), nil
}

func decodeCredential(data []byte) (*DeviceCredential, error) {
	reader := bytes.NewReader(data)

	version, err := reader.ReadByte()
	if err != nil || version != credentialRecordVersion1 {
		return nil, errCredentialCorrupt
	}

	readField := func() ([]byte, error) {
		var length uint16
		if err := binary.Read(reader, binary.BigEndian, &length); err != nil {
			return nil, errCredentialCorrupt
		}
		field := make([]byte, length)
		if _, err := io.ReadFull(reader, field); err != nil {
			return nil, errCredentialCorrupt
		}
		return field, nil
	}

	deviceID, err := readField()
	if err != nil {
		return nil, err
	}
	handle, err := readField()
	if err != nil {
		return nil, err
	}
	publicKey, err := readField()
	if err != nil {
		return nil, err
	}

	protocolVersion, err := reader.ReadByte()
	if err != nil {
		return nil, errCredentialCorrupt
	}
	var createdAt int64
	if err := binary.Read(reader, binary.BigEndian, &createdAt); err != nil {
		return nil, errCredentialCorrupt
	}

	return &DeviceCredential{
		DeviceID:        string(deviceID),
		KeyHandle:       keys.Handle(handle),
		PublicKey:       publicKey,
		ProtocolVersion: protocolVersion,
		CreatedAt:       time.Unix(createdAt, 0).UTC(),
	}, nil
}
