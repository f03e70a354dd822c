package session

import (
	"errors"
	"testing"
)

func TestEncodeDecodeRoundTrip(t *testing.T) {
	want := &Session{
		UserID:       "alice@example.com",
		AccessToken:  "at-1",
		RefreshToken: "rt-1",
		IssuedAt:     1756500000,
		ExpiresAt:    1756503600,
	}

	blob, err := Encode(want)
	if err != nil {
		t.Fatalf("Encode failed: %v", err)
	}
	got, err := Decode(blob)
	if err != nil {
		t.Fatalf("Decode failed: %v", err)
	}
	if *got != *want {
		t.Fatalf("round trip mismatch: %+v != %+v", got, want)
	}
}

func TestDecodeRejectsUnknownVersion(t *testing.T) {
	blob, err := Encode(&Session{UserID: "u"})
	if err != nil {
		t.Fatalf("Encode failed: %v", err)
	}
	blob[0] = 0x42

	if _, err := Decode(blob); !errors.Is(err, ErrCorrupt) {
		t.Fatalf("expected ErrCorrupt, got %v", err)
	}
}

func TestDecodeRejectsTruncatedBlob(t *testing.T) {
	blob, err := Encode(&Session{
		UserID:       "alice@example.com",
		AccessToken:  "at-1",
		RefreshToken: "rt-1",
	})
	if err != nil {
		t.Fatalf("Encode failed: %v", err)
	}

	for cut := 1; cut < len(blob); cut++ {
		if _, err := Decode(blob[:cut]); !errors.Is(err, ErrCorrupt) {
			t.Fatalf("expected ErrCorrupt at cut %d, got %v", cut, err)
		}
	}
}

func TestDecodeRejectsTrailingBytes(t *testing.T) {
	blob, err := Encode(&Session{UserID: "u"})
	if err != nil {
		t.Fatalf("Encode failed: %v", err)
	}
	blob = append(blob, 0x00)

	if _, err := Decode(blob); !errors.Is(err, ErrCorrupt) {
		t.Fatalf("expected ErrCorrupt, got %v", err)
	}
}

func TestDecodeEmptyBlob(t *testing.T) {
	if _, err := Decode(nil); !errors.Is(err, ErrCorrupt) {
		t.Fatalf("expected ErrCorrupt, got %v", err)
	}
}
