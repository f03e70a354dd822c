package goKeyless

import (
	"context"
	"errors"
	"fmt"

	"github.com/kaeso/goKeyless/protocol"
)

// SubmitOtp continues a registration that stopped in [StatusOtpRequired].
//
// The pending challenge's expiry and attempt budget are enforced before the
// code reaches the server: an expired challenge fails with [ErrOtpExpired]
// even when the code is correct, and a spent budget fails with
// [ErrOtpExhausted] regardless of the code. A mismatch decrements the
// budget and leaves the flow in OtpRequired while attempts remain.
//
// On success the device credential is committed and the engine immediately
// performs the login leg; the returned result carries the minted tokens
// with IsLoginFlow=false. Auto-login after registration is a post-condition,
// not an option.
//
// Calling SubmitOtp with no pending challenge fails with
// [ErrInternalState].
func (e *Engine) SubmitOtp(ctx context.Context, userID, code string) (*AuthResult, error) {
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

	pending, err := e.otp.Pending(ctx, userID)
	if err != nil {
		return nil, e.failOtp(ctx, userID, "", e.mapOtpError(err))
	}

	// Key material is minted before the server round trip because the
	// verification payload carries the public key being provisioned. A
	// failed verification removes it again, so no orphan keys survive.
	handle, publicKey, err := e.keyStore.Generate(ctx, userID)
	if err != nil {
		return nil, e.failOtp(ctx, userID, pending.DeviceID, mapKeyError(err))
	}

	verifyErr := e.otp.Verify(ctx, userID, code, func(ctx context.Context, code string) (bool, error) {
		return e.adapter.VerifyOtp(ctx, protocol.OtpInput{
			ChallengeID: pending.ChallengeID,
			Code:        code,
			PublicKey:   publicKey,
		})
	})
	if verifyErr != nil {
		_ = e.keyStore.Remove(ctx, handle)
		return nil, e.failOtp(ctx, userID, pending.DeviceID, e.mapOtpError(verifyErr))
	}

	cred := &DeviceCredential{
		DeviceID:        pending.DeviceID,
		KeyHandle:       handle,
		PublicKey:       publicKey,
		ProtocolVersion: e.config.Protocol.Version,
		CreatedAt:       e.now(),
	}
	if err := e.credentials.Put(ctx, userID, cred); err != nil {
		_ = e.keyStore.Remove(ctx, handle)
		return nil, e.failOtp(ctx, userID, pending.DeviceID, mapStorageError(err))
	}

	e.metricInc(MetricOtpSuccess)
	e.emitAudit(ctx, auditEventOtpSuccess, true, userID, pending.DeviceID, nil, nil)

	return e.loginLeg(ctx, userID, cred, false)
}

// SubmitOtpAsync is the channel-delivery form of [Engine.SubmitOtp].
func (e *Engine) SubmitOtpAsync(ctx context.Context, userID, code string) <-chan AuthResult {
	return resultChannel(normalizeUserID(userID), func() (*AuthResult, error) {
		return e.SubmitOtp(ctx, userID, code)
	})
}

// mapOtpError translates coordinator failures into public error kinds.
func (e *Engine) mapOtpError(err error) error {
	switch {
	case errors.Is(err, errOtpChallengeNotFound):
		return fmt.Errorf("%w: no pending otp challenge", ErrInternalState)
	case errors.Is(err, errOtpChallengeExpired):
		e.metricInc(MetricOtpExpired)
		return fmt.Errorf("%w: %v", ErrOtpExpired, err)
	case errors.Is(err, errOtpChallengeExceeded):
		e.metricInc(MetricOtpExhausted)
		return fmt.Errorf("%w: %v", ErrOtpExhausted, err)
	case errors.Is(err, errOtpChallengeMismatch):
		e.metricInc(MetricOtpMismatch)
		return fmt.Errorf("%w: %v", ErrOtpMismatch, err)
	case errors.Is(err, errOtpChallengeBackend):
		return fmt.Errorf("%w: %v", ErrCredentialStore, err)
	default:
		return mapProtocolError(err)
	}
}

func (e *Engine) failOtp(ctx context.Context, userID, deviceID string, mapped error) error {
	eventType := auditEventOtpFailure
	if errors.Is(mapped, ErrOtpExhausted) {
		eventType = auditEventOtpExhausted
	}
	if errors.Is(mapped, ErrNetwork) {
		e.metricInc(MetricNetworkError)
	}
	e.emitAudit(ctx, eventType, false, userID, deviceID, mapped, nil)
	return mapped
}
