package goKeyless

import (
	"context"
	"errors"
	"fmt"
)

// WebLogin submits a PIN displayed on another surface (a browser login
// page) and registers the intent to log in there. The returned approval
// token must be confirmed with [Engine.WebApprove] from this device before
// it expires.
func (e *Engine) WebLogin(ctx context.Context, pin string) (*WebLoginResult, error) {
	if e == nil || e.adapter == nil {
		return nil, ErrEngineNotReady
	}
	ctx = contextOrBackground(ctx)

	if pin == "" {
		return nil, fmt.Errorf("%w: empty pin", ErrWebLoginRejected)
	}

	approval, err := e.adapter.SubmitWebPin(ctx, pin)
	if err != nil {
		mapped := mapProtocolError(err)
		e.metricInc(MetricWebLoginRejected)
		e.emitAudit(ctx, auditEventWebRejected, false, "", "", mapped, nil)
		return nil, mapped
	}

	expiresAt := approval.ExpiresAt
	if !expiresAt.After(e.now()) {
		// Server omitted an expiry; fall back to the configured window.
		expiresAt = e.now().Add(e.config.WebLogin.TTL)
	}

	e.webLogins.Track(approval.ApprovalToken, expiresAt)
	e.metricInc(MetricWebLoginSubmitted)
	e.emitAudit(ctx, auditEventWebSubmitted, true, "", "", nil, nil)

	return &WebLoginResult{
		ApprovalToken: approval.ApprovalToken,
		ExpiresAt:     expiresAt,
	}, nil
}

// WebApprove confirms a pending web login from this already-authenticated
// device. The first approval wins: repeat calls fail with
// [ErrWebLoginAlreadyApproved], and calls after the request's expiry fail
// with [ErrWebLoginExpired]. Requests submitted on this device are checked
// locally first; requests from other devices go straight to the server.
func (e *Engine) WebApprove(ctx context.Context, approvalToken string) error {
	if e == nil || e.adapter == nil {
		return ErrEngineNotReady
	}
	ctx = contextOrBackground(ctx)

	if approvalToken == "" {
		return fmt.Errorf("%w: empty approval token", ErrWebLoginRejected)
	}

	if err := e.webLogins.Check(approvalToken); err != nil && !errors.Is(err, errWebLoginNotTracked) {
		mapped := e.mapWebLoginError(err)
		e.metricInc(MetricWebLoginRejected)
		e.emitAudit(ctx, auditEventWebRejected, false, "", "", mapped, nil)
		return mapped
	}

	userID := e.credentials.LastLoggedInUser(ctx)
	if userID == "" {
		return fmt.Errorf("%w: approval requires an authenticated device", ErrInternalState)
	}
	info, err := e.CurrentSession(ctx, userID)
	if err != nil {
		return err
	}

	if err := e.adapter.ApproveWebLogin(ctx, approvalToken, info.AccessToken); err != nil {
		mapped := mapProtocolError(err)
		e.metricInc(MetricWebLoginRejected)
		e.emitAudit(ctx, auditEventWebRejected, false, userID, "", mapped, nil)
		return mapped
	}

	e.webLogins.MarkApproved(approvalToken)
	e.metricInc(MetricWebLoginApproved)
	e.emitAudit(ctx, auditEventWebApproved, true, userID, "", nil, nil)
	return nil
}

func (e *Engine) mapWebLoginError(err error) error {
	switch {
	case errors.Is(err, errWebLoginAlreadyApproved):
		return fmt.Errorf("%w: %v", ErrWebLoginAlreadyApproved, err)
	case errors.Is(err, errWebLoginExpired):
		return fmt.Errorf("%w: %v", ErrWebLoginExpired, err)
	default:
		return fmt.Errorf("%w: %v", ErrWebLoginRejected, err)
	}
}
