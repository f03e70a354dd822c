package protocol

import (
	"context"
	"crypto/ed25519"
	"encoding/base64"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// OAuthAdapterConfig configures an [OAuthAdapter].
type OAuthAdapterConfig struct {
	Host            string
	APIKey          string
	TokenEndpoint   string
	ClientID        string
	ServerPublicKey []byte
}

// OAuthAdapter speaks the OAuth-backed generation. Registration, OTP
// verification, challenge issuance, and web approval reuse the legacy
// endpoints; login completion and refresh are token-endpoint grants whose
// access tokens are JWTs verified against the server's Ed25519 public key.
type OAuthAdapter struct {
	legacy    *LegacyAdapter
	config    OAuthAdapterConfig
	serverKey ed25519.PublicKey
	transport Transport
	now       func() time.Time
}

// NewOAuthAdapter creates an adapter bound to transport. It fails when the
// server public key is not a valid Ed25519 public key.
func NewOAuthAdapter(cfg OAuthAdapterConfig, transport Transport) (*OAuthAdapter, error) {
	if len(cfg.ServerPublicKey) != ed25519.PublicKeySize {
		return nil, errors.New("protocol: server public key must be a raw ed25519 public key")
	}
	return &OAuthAdapter{
		legacy: NewLegacyAdapter(LegacyConfig{
			Host:   cfg.Host,
			APIKey: cfg.APIKey,
		}, transport),
		config:    cfg,
		serverKey: ed25519.PublicKey(append([]byte(nil), cfg.ServerPublicKey...)),
		transport: transport,
		now:       time.Now,
	}, nil
}

// Generation describes the generation operation and its observable behavior.
func (a *OAuthAdapter) Generation() Generation {
	return GenerationOAuth
}

// StartRegistration describes the startregistration operation and its observable behavior.
func (a *OAuthAdapter) StartRegistration(ctx context.Context, in RegistrationInput) (*RegistrationOutcome, error) {
	return a.legacy.StartRegistration(ctx, in)
}

// VerifyOtp describes the verifyotp operation and its observable behavior.
func (a *OAuthAdapter) VerifyOtp(ctx context.Context, in OtpInput) (bool, error) {
	return a.legacy.VerifyOtp(ctx, in)
}

// RequestChallenge describes the requestchallenge operation and its observable behavior.
func (a *OAuthAdapter) RequestChallenge(ctx context.Context, in ChallengeInput) (*Challenge, error) {
	return a.legacy.RequestChallenge(ctx, in)
}

// SubmitWebPin describes the submitwebpin operation and its observable behavior.
func (a *OAuthAdapter) SubmitWebPin(ctx context.Context, pin string) (*WebApproval, error) {
	return a.legacy.SubmitWebPin(ctx, pin)
}

// ApproveWebLogin describes the approveweblogin operation and its observable behavior.
func (a *OAuthAdapter) ApproveWebLogin(ctx context.Context, approvalToken, accessToken string) error {
	return a.legacy.ApproveWebLogin(ctx, approvalToken, accessToken)
}

// CompleteLogin exchanges a signed challenge for tokens at the token
// endpoint via the device_signature grant. It returns
// [ErrChallengeRejected] when the grant is refused.
func (a *OAuthAdapter) CompleteLogin(ctx context.Context, in LoginInput) (*TokenSet, error) {
	form := url.Values{
		"grant_type":   {"device_signature"},
		"client_id":    {a.config.ClientID},
		"challenge_id": {in.ChallengeID},
		"signature":    {base64.RawURLEncoding.EncodeToString(in.Signature)},
	}
	return a.tokenGrant(ctx, form, ErrChallengeRejected)
}

// Refresh exchanges a refresh token via the refresh_token grant. It returns
// [ErrRefreshRejected] when the grant is refused.
func (a *OAuthAdapter) Refresh(ctx context.Context, refreshToken string) (*TokenSet, error) {
	form := url.Values{
		"grant_type":    {"refresh_token"},
		"client_id":     {a.config.ClientID},
		"refresh_token": {refreshToken},
	}
	return a.tokenGrant(ctx, form, ErrRefreshRejected)
}

func (a *OAuthAdapter) tokenGrant(ctx context.Context, form url.Values, rejection error) (*TokenSet, error) {
	resp, err := a.transport.Do(ctx, &Request{
		Method:      http.MethodPost,
		URL:         a.config.TokenEndpoint,
		ContentType: "application/x-www-form-urlencoded",
		Body:        []byte(form.Encode()),
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrTransport, err)
	}
	if resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusBadRequest {
		return nil, rejection
	}
	if resp.StatusCode != http.StatusOK {
		return nil, remoteError(resp)
	}

	var payload struct {
		AccessToken  string `json:"access_token"`
		RefreshToken string `json:"refresh_token"`
		TokenType    string `json:"token_type"`
		ExpiresIn    int64  `json:"expires_in"`
	}
	if err := decodeBody(resp, &payload); err != nil {
		return nil, err
	}
	if payload.AccessToken == "" || payload.RefreshToken == "" {
		return nil, fmt.Errorf("%w: incomplete token response", ErrRemote)
	}

	expiresAt, err := a.verifyAccessToken(payload.AccessToken)
	if err != nil {
		return nil, err
	}

	issued := a.now()
	if expiresAt.IsZero() {
		expiresAt = issued.Add(time.Duration(payload.ExpiresIn) * time.Second)
	}

	return &TokenSet{
		AccessToken:  payload.AccessToken,
		RefreshToken: payload.RefreshToken,
		IssuedAt:     issued,
		ExpiresAt:    expiresAt,
	}, nil
}

// verifyAccessToken checks the EdDSA signature and extracts the expiry
// claim. Tokens signed by anything but the configured server key are
// rejected before a session can be committed.
func (a *OAuthAdapter) verifyAccessToken(token string) (time.Time, error) {
	parsed, err := jwt.Parse(token, func(*jwt.Token) (any, error) {
		return a.serverKey, nil
	}, jwt.WithValidMethods([]string{"EdDSA"}))
	if err != nil || !parsed.Valid {
		return time.Time{}, fmt.Errorf("%w: %v", ErrTokenInvalid, err)
	}

	exp, err := parsed.Claims.GetExpirationTime()
	if err != nil || exp == nil {
		return time.Time{}, nil
	}
	return exp.Time, nil
}
