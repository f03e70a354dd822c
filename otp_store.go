package goKeyless

import (
	"bytes"
	"context"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/kaeso/goKeyless/store"
)

const (
	otpKeyPrefix      = "otp"
	otpRecordVersion1 = 1
)

var (
	errOtpChallengeNotFound = errors.New("otp challenge not found")
	errOtpChallengeExpired  = errors.New("otp challenge expired")
	errOtpChallengeExceeded = errors.New("otp challenge attempts exceeded")
	errOtpChallengeMismatch = errors.New("otp challenge code mismatch")
	errOtpChallengeBackend  = errors.New("otp challenge backend unavailable")
)

// otpChallenge is the persisted record of one in-flight out-of-band
// verification. At most one lives per user; issuing a new one replaces it.
type otpChallenge struct {
	ChallengeID       string
	DeviceID          string
	ExpiresAt         int64
	AttemptsRemaining uint16
}

type otpChallengeStore struct {
	store store.SecureStore
	now   func() time.Time
}

func newOtpChallengeStore(st store.SecureStore, now func() time.Time) *otpChallengeStore {
	return &otpChallengeStore{store: st, now: now}
}

func otpKey(userID string) string {
	return otpKeyPrefix + ":" + userID
}

// Issue creates the user's live challenge, invalidating any prior one.
func (s *otpChallengeStore) Issue(ctx context.Context, userID, challengeID, deviceID string, ttl time.Duration, maxAttempts int) (*otpChallenge, error) {
	record := &otpChallenge{
		ChallengeID:       challengeID,
		DeviceID:          deviceID,
		ExpiresAt:         s.now().Add(ttl).Unix(),
		AttemptsRemaining: uint16(maxAttempts),
	}

	encoded, err := encodeOtpChallenge(record)
	if err != nil {
		return nil, err
	}
	if err := s.store.Put(ctx, otpKey(userID), encoded); err != nil {
		return nil, fmt.Errorf("%w: %v", errOtpChallengeBackend, err)
	}
	return record, nil
}

// Pending returns the user's live challenge without consuming budget.
func (s *otpChallengeStore) Pending(ctx context.Context, userID string) (*otpChallenge, error) {
	data, err := s.store.Get(ctx, otpKey(userID))
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, errOtpChallengeNotFound
		}
		return nil, fmt.Errorf("%w: %v", errOtpChallengeBackend, err)
	}
	return decodeOtpChallenge(data)
}

// Verify enforces the challenge's expiry and attempt budget around check,
// which performs the actual code comparison (a server round trip).
//
// Expiry and exhaustion are decided before check runs, so an expired
// challenge fails even with a correct code and a spent budget fails
// regardless of the code supplied. A mismatch decrements the budget;
// budget reaching zero consumes the challenge. Success consumes the
// challenge. check errors leave the challenge untouched.
func (s *otpChallengeStore) Verify(ctx context.Context, userID, code string, check func(ctx context.Context, code string) (bool, error)) error {
	record, err := s.Pending(ctx, userID)
	if err != nil {
		return err
	}

	if s.now().Unix() > record.ExpiresAt {
		_ = s.Clear(ctx, userID)
		return errOtpChallengeExpired
	}
	if record.AttemptsRemaining == 0 {
		_ = s.Clear(ctx, userID)
		return errOtpChallengeExceeded
	}

	verified, err := check(ctx, code)
	if err != nil {
		return err
	}

	if !verified {
		record.AttemptsRemaining--
		if record.AttemptsRemaining == 0 {
			_ = s.Clear(ctx, userID)
			return errOtpChallengeExceeded
		}
		encoded, encErr := encodeOtpChallenge(record)
		if encErr != nil {
			return encErr
		}
		if putErr := s.store.Put(ctx, otpKey(userID), encoded); putErr != nil {
			return fmt.Errorf("%w: %v", errOtpChallengeBackend, putErr)
		}
		return errOtpChallengeMismatch
	}

	if err := s.Clear(ctx, userID); err != nil {
		return err
	}
	return nil
}

// Clear removes the user's live challenge, if any.
func (s *otpChallengeStore) Clear(ctx context.Context, userID string) error {
	if err := s.store.Delete(ctx, otpKey(userID)); err != nil {
		return fmt.Errorf("%w: %v", errOtpChallengeBackend, err)
	}
	return nil
}

func encodeOtpChallenge(record *otpChallenge) ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte(otpRecordVersion1)

	if err := binary.Write(&buf, binary.BigEndian, record.AttemptsRemaining); err != nil {
		return nil, err
	}
	if err := binary.Write(&buf, binary.BigEndian, record.ExpiresAt); err != nil {
		return nil, err
	}

	for _, field := range []string{record.ChallengeID, record.DeviceID} {
		if len(field) > 65535 {
			return nil, errors.New("otp challenge id length exceeded")
		}
		if err := binary.Write(&buf, binary.BigEndian, uint16(len(field))); err != nil {
			return nil, err
		}
		buf.WriteString(field)
	}

	return buf.Bytes(), nil
}

func decodeOtpChallenge(data []byte) (*otpChallenge, error) {
	reader := bytes.NewReader(data)

	version, err := reader.ReadByte()
	if err != nil || version != otpRecordVersion1 {
		return nil, errors.New("invalid otp challenge version")
	}

	record := &otpChallenge{}
	if err := binary.Read(reader, binary.BigEndian, &record.AttemptsRemaining); err != nil {
		return nil, err
	}
	if err := binary.Read(reader, binary.BigEndian, &record.ExpiresAt); err != nil {
		return nil, err
	}

	for _, field := range []*string{&record.ChallengeID, &record.DeviceID} {
		var length uint16
		if err := binary.Read(reader, binary.BigEndian, &length); err != nil {
			return nil, err
		}
		raw := make([]byte, length)
		if _, err := io.ReadFull(reader, raw); err != nil {
			return nil, err
		}
		*field = string(raw)
	}

	return record, nil
}
