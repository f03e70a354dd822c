package goKeyless

import (
	"io"
	"time"

	internalaudit "github.com/kaeso/goKeyless/internal/audit"
	"github.com/kaeso/goKeyless/keys"
	"github.com/kaeso/goKeyless/protocol"
	"github.com/kaeso/goKeyless/store"
)

// AuthStatus tags the variant carried by an [AuthResult].
type AuthStatus uint8

const (
	// StatusOtpRequired is an exported constant or variable used by the authentication engine.
	StatusOtpRequired AuthStatus = iota
	// StatusSuccess is an exported constant or variable used by the authentication engine.
	StatusSuccess
	// StatusFailure is an exported constant or variable used by the authentication engine.
	StatusFailure
)

// Tokens carries the access/refresh token pair minted on successful
// authentication.
type Tokens struct {
	AccessToken  string
	RefreshToken string
}

// AuthResult is the single tagged result type delivered once per
// authentication operation. Exactly one variant applies:
//
//   - StatusOtpRequired: the server requires out-of-band verification;
//     the caller must follow up with [Engine.SubmitOtp].
//   - StatusSuccess: Tokens is populated and IsLoginFlow reports whether
//     the operation was a plain login (true) or completed a registration
//     (false).
//   - StatusFailure: Err wraps exactly one package-level sentinel error.
type AuthResult struct {
	Status      AuthStatus
	UserID      string
	Tokens      Tokens
	IsLoginFlow bool
	Err         error
}

// DeviceCredential identifies one device's authorization to act as a given
// user. Private key material never appears here: KeyHandle is an opaque
// reference into the engine's [KeyStore], and PublicKey is the raw public
// half used during provisioning.
type DeviceCredential struct {
	DeviceID        string
	KeyHandle       keys.Handle
	PublicKey       []byte
	ProtocolVersion uint8
	CreatedAt       time.Time
}

// SessionInfo is a read-only view of a stored session, returned by
// [Engine.CurrentSession]. Refresh-token material is deliberately omitted.
type SessionInfo struct {
	UserID      string
	AccessToken string
	IssuedAt    time.Time
	ExpiresAt   time.Time
}

// WebLoginResult is returned by [Engine.WebLogin]. ApprovalToken must be
// presented to [Engine.WebApprove] from an already-authenticated device
// before ExpiresAt.
type WebLoginResult struct {
	ApprovalToken string
	ExpiresAt     time.Time
}

// SecureStore is the injected at-rest-encrypted key/value capability the
// engine persists credentials and sessions into. See the store package for
// the in-memory and Redis-backed implementations.
type SecureStore = store.SecureStore

// KeyStore is the injected platform key capability. See [keys.KeyStore].
type KeyStore = keys.KeyStore

// Transport executes wire requests built by the active protocol adapter.
// See [protocol.Transport].
type Transport = protocol.Transport

// Generation selects the wire-protocol generation an engine speaks.
type Generation = protocol.Generation

const (
	// GenerationLegacy is an exported constant or variable used by the authentication engine.
	GenerationLegacy = protocol.GenerationLegacy
	// GenerationOAuth is an exported constant or variable used by the authentication engine.
	GenerationOAuth = protocol.GenerationOAuth
)

// AuditEvent is a structured audit record emitted by the engine.
type AuditEvent = internalaudit.Event

// AuditSink receives [AuditEvent] values from the engine's audit dispatcher.
type AuditSink = internalaudit.Sink

// NoOpSink is an [AuditSink] that silently discards all events.
type NoOpSink = internalaudit.NoOpSink

// ChannelSink is a buffered channel-based [AuditSink].
type ChannelSink = internalaudit.ChannelSink

// JSONWriterSink is an [AuditSink] that writes JSON-encoded events to an
// [io.Writer].
type JSONWriterSink = internalaudit.JSONWriterSink

// NewChannelSink creates a [ChannelSink] with the given buffer capacity.
func NewChannelSink(buffer int) *ChannelSink {
	return internalaudit.NewChannelSink(buffer)
}

// NewJSONWriterSink creates a [JSONWriterSink] that writes to w.
func NewJSONWriterSink(w io.Writer) *JSONWriterSink {
	return internalaudit.NewJSONWriterSink(w)
}

// resultChannel wraps a blocking engine call into the single-delivery
// asynchronous shape: exactly one AuthResult per invocation.
func resultChannel(userID string, run func() (*AuthResult, error)) <-chan AuthResult {
	out := make(chan AuthResult, 1)
	go func() {
		defer close(out)
		result, err := run()
		if err != nil {
			out <- AuthResult{Status: StatusFailure, UserID: userID, Err: err}
			return
		}
		out <- *result
	}()
	return out
}
