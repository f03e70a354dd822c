package goKeyless

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/kaeso/goKeyless/protocol"
	"github.com/kaeso/goKeyless/session"
)

// Authenticate drives one full authentication attempt for userID.
//
// With a stored device credential the engine performs the login path: it
// requests a server challenge, signs it, and exchanges the signature for a
// session. Without one it starts registration and returns
// [StatusOtpRequired]; the caller must continue with [Engine.SubmitOtp].
// The add-device case (user exists server-side, this device does not) takes
// the same registration path.
//
// Exactly one terminal outcome is produced per invocation. Cancelling ctx
// mid-flight aborts without partial credential or session writes, and the
// operation is safely retryable from the top. A second call for the same
// user while one is pending fails with [ErrInternalState].
func (e *Engine) Authenticate(ctx context.Context, userID string) (*AuthResult, error) {
	if e == nil || e.adapter == nil {
		return nil, ErrEngineNotReady
	}
	ctx = contextOrBackground(ctx)

	userID = normalizeUserID(userID)
	if userID == "" {
		return nil, fmt.Errorf("%w: user identifier required", ErrInternalState)
	}

	if err := e.acquireFlight(userID); err != nil {
		e.metricInc(MetricStateConflict)
		return nil, err
	}
	defer e.releaseFlight(userID)

	start := time.Now()
	defer e.observeLatency(MetricAuthLatency, start)

	cred, err := e.credentials.Get(ctx, userID)
	switch {
	case err == nil:
		return e.loginLeg(ctx, userID, cred, true)
	case errors.Is(err, errCredentialNotFound):
		return e.registrationLeg(ctx, userID)
	default:
		mapped := mapStorageError(err)
		e.metricInc(MetricAuthFailure)
		e.emitAudit(ctx, auditEventAuthFailure, false, userID, "", mapped, nil)
		return nil, mapped
	}
}

// AuthenticateAsync is the channel-delivery form of [Engine.Authenticate]:
// exactly one [AuthResult] arrives on the returned channel, with failures
// carried as [StatusFailure].
func (e *Engine) AuthenticateAsync(ctx context.Context, userID string) <-chan AuthResult {
	return resultChannel(normalizeUserID(userID), func() (*AuthResult, error) {
		return e.Authenticate(ctx, userID)
	})
}

// registrationLeg starts device provisioning. Both first registration and
// existing-user-new-device end in the same OtpRequired state; the stored
// challenge keeps the pending device identity until SubmitOtp completes it.
func (e *Engine) registrationLeg(ctx context.Context, userID string) (*AuthResult, error) {
	deviceID := uuid.NewString()

	outcome, err := e.adapter.StartRegistration(ctx, protocol.RegistrationInput{
		UserID:   userID,
		DeviceID: deviceID,
	})
	if err != nil {
		mapped := mapProtocolError(err)
		e.metricInc(MetricAuthFailure)
		e.metricInc(MetricNetworkError)
		e.emitAudit(ctx, auditEventAuthFailure, false, userID, deviceID, mapped, nil)
		return nil, mapped
	}

	if _, err := e.otp.Issue(ctx, userID, outcome.ChallengeID, deviceID, e.config.Otp.TTL, e.config.Otp.MaxAttempts); err != nil {
		mapped := mapStorageError(err)
		e.metricInc(MetricAuthFailure)
		e.emitAudit(ctx, auditEventAuthFailure, false, userID, deviceID, mapped, nil)
		return nil, mapped
	}

	e.metricInc(MetricRegistrationStarted)
	e.metricInc(MetricOtpIssued)
	e.emitAudit(ctx, auditEventRegistration, true, userID, deviceID, nil, func() map[string]string {
		return map[string]string{
			"existing_user": fmt.Sprintf("%t", outcome.ExistingUser),
		}
	})

	return &AuthResult{
		Status: StatusOtpRequired,
		UserID: userID,
	}, nil
}

// loginLeg performs challenge/sign/exchange for a provisioned device and
// commits the resulting session. isLoginFlow is false when the leg runs as
// the mandatory auto-login after registration.
func (e *Engine) loginLeg(ctx context.Context, userID string, cred *DeviceCredential, isLoginFlow bool) (*AuthResult, error) {
	challenge, err := e.adapter.RequestChallenge(ctx, protocol.ChallengeInput{
		UserID:   userID,
		DeviceID: cred.DeviceID,
	})
	if err != nil {
		return nil, e.failAuth(ctx, userID, cred.DeviceID, mapProtocolError(err))
	}

	signature, err := e.keyStore.Sign(ctx, cred.KeyHandle, challenge.Nonce)
	if err != nil {
		return nil, e.failAuth(ctx, userID, cred.DeviceID, mapKeyError(err))
	}

	tokens, err := e.adapter.CompleteLogin(ctx, protocol.LoginInput{
		ChallengeID: challenge.ChallengeID,
		Signature:   signature,
	})
	if err != nil {
		mapped := mapProtocolError(err)
		if errors.Is(mapped, ErrDeviceVerificationFailed) {
			e.metricInc(MetricChallengeRejected)
		}
		return nil, e.failAuth(ctx, userID, cred.DeviceID, mapped)
	}

	if err := e.commitSession(ctx, userID, tokens); err != nil {
		return nil, e.failAuth(ctx, userID, cred.DeviceID, err)
	}

	e.metricInc(MetricAuthSuccess)
	e.emitAudit(ctx, auditEventAuthSuccess, true, userID, cred.DeviceID, nil, func() map[string]string {
		return map[string]string{
			"login_flow": fmt.Sprintf("%t", isLoginFlow),
		}
	})

	return &AuthResult{
		Status: StatusSuccess,
		UserID: userID,
		Tokens: Tokens{
			AccessToken:  tokens.AccessToken,
			RefreshToken: tokens.RefreshToken,
		},
		IsLoginFlow: isLoginFlow,
	}, nil
}

// commitSession persists the minted session and the last-logged-in-user
// pointer. This is the only place a login leg writes state, keeping the
// whole leg all-or-nothing up to this point.
func (e *Engine) commitSession(ctx context.Context, userID string, tokens *protocol.TokenSet) error {
	err := e.sessions.Store(ctx, &session.Session{
		UserID:       userID,
		AccessToken:  tokens.AccessToken,
		RefreshToken: tokens.RefreshToken,
		IssuedAt:     tokens.IssuedAt.Unix(),
		ExpiresAt:    tokens.ExpiresAt.Unix(),
	})
	if err != nil {
		return mapStorageError(err)
	}
	if err := e.credentials.SetLastLoggedInUser(ctx, userID); err != nil {
		return mapStorageError(err)
	}
	return nil
}

func (e *Engine) failAuth(ctx context.Context, userID, deviceID string, mapped error) error {
	e.metricInc(MetricAuthFailure)
	if errors.Is(mapped, ErrNetwork) {
		e.metricInc(MetricNetworkError)
	}
	e.emitAudit(ctx, auditEventAuthFailure, false, userID, deviceID, mapped, nil)
	return mapped
}
