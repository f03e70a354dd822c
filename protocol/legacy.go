package protocol

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"
)

const (
	pathRegister   = "/hc_reg"
	pathRegOtp     = "/hc_reg/otp"
	pathChallenge  = "/hc_auth"
	pathLogin      = "/ha_login"
	pathRefresh    = "/hc_auth/refresh"
	pathWebPin     = "/hc_auth/web"
	pathWebApprove = "/hc_auth/web/approve"
)

// LegacyConfig configures a [LegacyAdapter].
type LegacyConfig struct {
	Host   string
	APIKey string
}

// LegacyAdapter speaks the original challenge/response generation: all
// operations are JSON posts against the tenant host, and tokens are opaque
// strings minted by /ha_login.
type LegacyAdapter struct {
	config    LegacyConfig
	transport Transport
	now       func() time.Time
}

// NewLegacyAdapter creates an adapter bound to transport.
func NewLegacyAdapter(cfg LegacyConfig, transport Transport) *LegacyAdapter {
	cfg.Host = strings.TrimRight(cfg.Host, "/")
	return &LegacyAdapter{
		config:    cfg,
		transport: transport,
		now:       time.Now,
	}
}

// Generation describes the generation operation and its observable behavior.
func (a *LegacyAdapter) Generation() Generation {
	return GenerationLegacy
}

type serverError struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}

func postJSON(ctx context.Context, transport Transport, url string, payload any, header http.Header) (*Response, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrRemote, err)
	}

	resp, err := transport.Do(ctx, &Request{
		Method:      http.MethodPost,
		URL:         url,
		ContentType: "application/json",
		Header:      header,
		Body:        body,
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrTransport, err)
	}
	return resp, nil
}

func decodeBody(resp *Response, out any) error {
	if err := json.Unmarshal(resp.Body, out); err != nil {
		return fmt.Errorf("%w: malformed response: %v", ErrRemote, err)
	}
	return nil
}

func remoteError(resp *Response) error {
	var se serverError
	if json.Unmarshal(resp.Body, &se) == nil && se.Message != "" {
		return fmt.Errorf("%w: %s", ErrRemote, se.Message)
	}
	return fmt.Errorf("%w: status %d", ErrRemote, resp.StatusCode)
}

// StartRegistration describes the startregistration operation and its observable behavior.
//
// StartRegistration may return an error when input validation, dependency calls, or server-side checks fail.
func (a *LegacyAdapter) StartRegistration(ctx context.Context, in RegistrationInput) (*RegistrationOutcome, error) {
	resp, err := postJSON(ctx, a.transport, a.config.Host+pathRegister, map[string]string{
		"api_key":   a.config.APIKey,
		"user_id":   in.UserID,
		"device_id": in.DeviceID,
	}, nil)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode != http.StatusOK {
		return nil, remoteError(resp)
	}

	var payload struct {
		ChallengeID  string `json:"challenge_id"`
		OtpRequired  bool   `json:"otp_required"`
		ExistingUser bool   `json:"existing_user"`
	}
	if err := decodeBody(resp, &payload); err != nil {
		return nil, err
	}
	if payload.ChallengeID == "" {
		return nil, fmt.Errorf("%w: missing challenge id", ErrRemote)
	}

	return &RegistrationOutcome{
		ChallengeID:  payload.ChallengeID,
		OtpRequired:  payload.OtpRequired,
		ExistingUser: payload.ExistingUser,
	}, nil
}

// VerifyOtp describes the verifyotp operation and its observable behavior.
//
// VerifyOtp returns (false, nil) when the server reports a code mismatch.
func (a *LegacyAdapter) VerifyOtp(ctx context.Context, in OtpInput) (bool, error) {
	resp, err := postJSON(ctx, a.transport, a.config.Host+pathRegOtp, map[string]string{
		"api_key":      a.config.APIKey,
		"challenge_id": in.ChallengeID,
		"code":         in.Code,
		"public_key":   base64.StdEncoding.EncodeToString(in.PublicKey),
	}, nil)
	if err != nil {
		return false, err
	}
	if resp.StatusCode != http.StatusOK {
		return false, remoteError(resp)
	}

	var payload struct {
		Verified bool `json:"verified"`
	}
	if err := decodeBody(resp, &payload); err != nil {
		return false, err
	}
	return payload.Verified, nil
}

// RequestChallenge describes the requestchallenge operation and its observable behavior.
//
// RequestChallenge may return an error when input validation, dependency calls, or server-side checks fail.
func (a *LegacyAdapter) RequestChallenge(ctx context.Context, in ChallengeInput) (*Challenge, error) {
	resp, err := postJSON(ctx, a.transport, a.config.Host+pathChallenge, map[string]string{
		"api_key":   a.config.APIKey,
		"user_id":   in.UserID,
		"device_id": in.DeviceID,
	}, nil)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode != http.StatusOK {
		return nil, remoteError(resp)
	}

	var payload struct {
		ChallengeID string `json:"challenge_id"`
		Nonce       string `json:"nonce"`
	}
	if err := decodeBody(resp, &payload); err != nil {
		return nil, err
	}

	nonce, err := base64.StdEncoding.DecodeString(payload.Nonce)
	if err != nil || len(nonce) == 0 {
		return nil, fmt.Errorf("%w: malformed nonce", ErrRemote)
	}

	return &Challenge{
		ChallengeID: payload.ChallengeID,
		Nonce:       nonce,
	}, nil
}

// CompleteLogin describes the completelogin operation and its observable behavior.
//
// CompleteLogin returns [ErrChallengeRejected] when the server refuses the
// signature.
func (a *LegacyAdapter) CompleteLogin(ctx context.Context, in LoginInput) (*TokenSet, error) {
	resp, err := postJSON(ctx, a.transport, a.config.Host+pathLogin, map[string]string{
		"api_key":      a.config.APIKey,
		"challenge_id": in.ChallengeID,
		"signature":    base64.StdEncoding.EncodeToString(in.Signature),
	}, nil)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode == http.StatusUnauthorized {
		return nil, ErrChallengeRejected
	}
	if resp.StatusCode != http.StatusOK {
		return nil, remoteError(resp)
	}
	return a.decodeTokenPair(resp)
}

// Refresh describes the refresh operation and its observable behavior.
//
// Refresh returns [ErrRefreshRejected] when the server refuses the refresh
// token.
func (a *LegacyAdapter) Refresh(ctx context.Context, refreshToken string) (*TokenSet, error) {
	resp, err := postJSON(ctx, a.transport, a.config.Host+pathRefresh, map[string]string{
		"api_key":       a.config.APIKey,
		"refresh_token": refreshToken,
	}, nil)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode == http.StatusUnauthorized {
		return nil, ErrRefreshRejected
	}
	if resp.StatusCode != http.StatusOK {
		return nil, remoteError(resp)
	}
	return a.decodeTokenPair(resp)
}

// SubmitWebPin describes the submitwebpin operation and its observable behavior.
//
// SubmitWebPin may return an error when input validation, dependency calls, or server-side checks fail.
func (a *LegacyAdapter) SubmitWebPin(ctx context.Context, pin string) (*WebApproval, error) {
	resp, err := postJSON(ctx, a.transport, a.config.Host+pathWebPin, map[string]string{
		"api_key": a.config.APIKey,
		"pin":     pin,
	}, nil)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode == http.StatusBadRequest || resp.StatusCode == http.StatusUnauthorized {
		return nil, ErrPinRejected
	}
	if resp.StatusCode != http.StatusOK {
		return nil, remoteError(resp)
	}

	var payload struct {
		ApprovalToken string `json:"approval_token"`
		ExpiresIn     int64  `json:"expires_in"`
	}
	if err := decodeBody(resp, &payload); err != nil {
		return nil, err
	}
	if payload.ApprovalToken == "" {
		return nil, fmt.Errorf("%w: missing approval token", ErrRemote)
	}

	return &WebApproval{
		ApprovalToken: payload.ApprovalToken,
		ExpiresAt:     a.now().Add(time.Duration(payload.ExpiresIn) * time.Second),
	}, nil
}

// ApproveWebLogin describes the approveweblogin operation and its observable behavior.
//
// ApproveWebLogin returns [ErrAlreadyApproved] or [ErrApprovalExpired] when
// the server reports the corresponding terminal state.
func (a *LegacyAdapter) ApproveWebLogin(ctx context.Context, approvalToken, accessToken string) error {
	resp, err := postJSON(ctx, a.transport, a.config.Host+pathWebApprove, map[string]string{
		"api_key":        a.config.APIKey,
		"approval_token": approvalToken,
		"access_token":   accessToken,
	}, nil)
	if err != nil {
		return err
	}
	switch resp.StatusCode {
	case http.StatusOK:
		return nil
	case http.StatusConflict:
		return ErrAlreadyApproved
	case http.StatusGone:
		return ErrApprovalExpired
	default:
		return remoteError(resp)
	}
}

func (a *LegacyAdapter) decodeTokenPair(resp *Response) (*TokenSet, error) {
	var payload struct {
		AccessToken  string `json:"access_token"`
		RefreshToken string `json:"refresh_token"`
		ExpiresIn    int64  `json:"expires_in"`
	}
	if err := decodeBody(resp, &payload); err != nil {
		return nil, err
	}
	if payload.AccessToken == "" || payload.RefreshToken == "" {
		return nil, fmt.Errorf("%w: incomplete token pair", ErrRemote)
	}

	issued := a.now()
	return &TokenSet{
		AccessToken:  payload.AccessToken,
		RefreshToken: payload.RefreshToken,
		IssuedAt:     issued,
		ExpiresAt:    issued.Add(time.Duration(payload.ExpiresIn) * time.Second),
	}, nil
}
