package protocol

import (
	"context"
	"errors"
	"time"
)

// Generation identifies a wire-protocol generation.
type Generation uint8

const (
	// GenerationLegacy is the original challenge/response generation
	// (/hc_reg, /hc_auth, /ha_login endpoints).
	GenerationLegacy Generation = iota
	// GenerationOAuth is the OAuth-backed generation: registration and
	// challenge issuance stay on the legacy endpoints, but tokens are
	// minted by a dedicated token endpoint and verified as JWTs.
	GenerationOAuth
)

// String describes the string operation and its observable behavior.
func (g Generation) String() string {
	switch g {
	case GenerationLegacy:
		return "legacy"
	case GenerationOAuth:
		return "oauth"
	default:
		return "unknown"
	}
}

var (
	// ErrTransport wraps connection-level failures. Retryable by the caller.
	ErrTransport = errors.New("protocol: transport failure")
	// ErrChallengeRejected is returned when the server refuses a signed
	// challenge or device signature.
	ErrChallengeRejected = errors.New("protocol: challenge rejected")
	// ErrRefreshRejected is returned when the server refuses a refresh
	// token.
	ErrRefreshRejected = errors.New("protocol: refresh token rejected")
	// ErrApprovalExpired is returned when a web approval token is past its
	// server-side expiry.
	ErrApprovalExpired = errors.New("protocol: approval token expired")
	// ErrAlreadyApproved is returned when a web approval token was already
	// consumed by an earlier approval.
	ErrAlreadyApproved = errors.New("protocol: approval token already approved")
	// ErrPinRejected is returned when the server refuses a web login PIN.
	ErrPinRejected = errors.New("protocol: pin rejected")
	// ErrTokenInvalid is returned when a minted access token fails
	// verification against the server public key.
	ErrTokenInvalid = errors.New("protocol: access token invalid")
	// ErrRemote is returned for any other server-side rejection.
	ErrRemote = errors.New("protocol: server rejected request")
)

// RegistrationInput starts provisioning of a device for a user.
type RegistrationInput struct {
	UserID   string
	DeviceID string
}

// RegistrationOutcome reports how the server wants provisioning to proceed.
// ExistingUser distinguishes the add-device path from first registration;
// both target the same OTP verification step.
type RegistrationOutcome struct {
	ChallengeID  string
	OtpRequired  bool
	ExistingUser bool
}

// OtpInput submits an out-of-band code together with the public key being
// provisioned.
type OtpInput struct {
	ChallengeID string
	Code        string
	PublicKey   []byte
}

// ChallengeInput requests a login nonce for an already-provisioned device.
type ChallengeInput struct {
	UserID   string
	DeviceID string
}

// Challenge is a server-issued nonce the device must sign.
type Challenge struct {
	ChallengeID string
	Nonce       []byte
}

// LoginInput completes a login by returning the signed nonce.
type LoginInput struct {
	ChallengeID string
	Signature   []byte
}

// TokenSet is a minted access/refresh token pair. ExpiresAt is absolute.
type TokenSet struct {
	AccessToken  string
	RefreshToken string
	IssuedAt     time.Time
	ExpiresAt    time.Time
}

// WebApproval is the server-side record of a submitted web login PIN.
type WebApproval struct {
	ApprovalToken string
	ExpiresAt     time.Time
}

// Adapter is the strategy interface over protocol generations. Every method
// maps exactly one abstract intent onto the active generation's wire shape
// and translates server failures into this package's sentinel errors.
type Adapter interface {
	Generation() Generation

	StartRegistration(ctx context.Context, in RegistrationInput) (*RegistrationOutcome, error)
	// VerifyOtp returns (false, nil) on a code mismatch; the attempt
	// budget is the caller's concern.
	VerifyOtp(ctx context.Context, in OtpInput) (bool, error)
	RequestChallenge(ctx context.Context, in ChallengeInput) (*Challenge, error)
	CompleteLogin(ctx context.Context, in LoginInput) (*TokenSet, error)
	Refresh(ctx context.Context, refreshToken string) (*TokenSet, error)
	SubmitWebPin(ctx context.Context, pin string) (*WebApproval, error)
	ApproveWebLogin(ctx context.Context, approvalToken, accessToken string) error
}
