package goKeyless

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/kaeso/goKeyless/session"
)

// ClearSession removes the user's session only — the "logout" operation.
// The device credential survives, so the next Authenticate performs a
// login, not a registration.
func (e *Engine) ClearSession(ctx context.Context, userID string) error {
	if e == nil {
		return ErrEngineNotReady
	}
	ctx = contextOrBackground(ctx)
	userID = normalizeUserID(userID)

	if err := e.sessions.Delete(ctx, userID); err != nil {
		return mapStorageError(err)
	}

	e.metricInc(MetricSessionCleared)
	e.emitAudit(ctx, auditEventSessionCleared, true, userID, "", nil, nil)
	return nil
}

// ClearAllCredentials removes the device credential, its key material, the
// session, and any pending OTP challenge — the "forget device" operation.
// The next Authenticate for this user always takes the registration path.
func (e *Engine) ClearAllCredentials(ctx context.Context, userID string) error {
	if e == nil {
		return ErrEngineNotReady
	}
	ctx = contextOrBackground(ctx)
	userID = normalizeUserID(userID)

	cred, err := e.credentials.Get(ctx, userID)
	if err != nil && !errors.Is(err, errCredentialNotFound) {
		return mapStorageError(err)
	}

	if err := e.sessions.Delete(ctx, userID); err != nil {
		return mapStorageError(err)
	}
	if err := e.otp.Clear(ctx, userID); err != nil {
		return mapStorageError(err)
	}
	if err := e.credentials.Delete(ctx, userID); err != nil {
		return mapStorageError(err)
	}
	if cred != nil {
		if err := e.keyStore.Remove(ctx, cred.KeyHandle); err != nil {
			return mapKeyError(err)
		}
	}
	if e.credentials.LastLoggedInUser(ctx) == userID {
		if err := e.credentials.ClearLastLoggedInUser(ctx); err != nil {
			return mapStorageError(err)
		}
	}

	e.metricInc(MetricCredentialsWiped)
	e.emitAudit(ctx, auditEventCredentialsWiped, true, userID, "", nil, nil)
	return nil
}

// GetLastLoggedInUser returns the UI pre-fill pointer: the identifier of
// the user that last completed a login on this device, or "" when none.
func (e *Engine) GetLastLoggedInUser() string {
	if e == nil {
		return ""
	}
	return e.credentials.LastLoggedInUser(context.Background())
}

// ClearLastLoggedInUser clears the UI pre-fill pointer.
func (e *Engine) ClearLastLoggedInUser() error {
	if e == nil {
		return ErrEngineNotReady
	}
	return mapStorageError(e.credentials.ClearLastLoggedInUser(context.Background()))
}

// CurrentSession returns a read-only view of the user's session. An
// expired session is refreshed first when [SessionConfig.AutoRefresh] is
// set; otherwise it fails with [ErrSessionExpired].
func (e *Engine) CurrentSession(ctx context.Context, userID string) (*SessionInfo, error) {
	if e == nil {
		return nil, ErrEngineNotReady
	}
	ctx = contextOrBackground(ctx)
	userID = normalizeUserID(userID)

	current, err := e.sessions.Current(ctx, userID)
	if err != nil {
		return nil, e.mapSessionError(err)
	}

	if e.sessions.IsExpired(current) {
		if !e.config.Session.AutoRefresh {
			return nil, fmt.Errorf("%w: access token past expiry", ErrSessionExpired)
		}
		return e.RefreshSession(ctx, userID)
	}

	return sessionInfo(current), nil
}

// RefreshSession exchanges the stored refresh token for a new session,
// superseding the old one. A server-side rejection surfaces as
// [ErrSessionExpired] and forces a full re-authentication.
func (e *Engine) RefreshSession(ctx context.Context, userID string) (*SessionInfo, error) {
	if e == nil || e.adapter == nil {
		return nil, ErrEngineNotReady
	}
	ctx = contextOrBackground(ctx)
	userID = normalizeUserID(userID)

	current, err := e.sessions.Current(ctx, userID)
	if err != nil {
		return nil, e.mapSessionError(err)
	}

	tokens, err := e.adapter.Refresh(ctx, current.RefreshToken)
	if err != nil {
		mapped := mapProtocolError(err)
		e.metricInc(MetricRefreshFailure)
		e.emitAudit(ctx, auditEventRefreshFailure, false, userID, "", mapped, nil)
		return nil, mapped
	}

	refreshed := &session.Session{
		UserID:       userID,
		AccessToken:  tokens.AccessToken,
		RefreshToken: tokens.RefreshToken,
		IssuedAt:     tokens.IssuedAt.Unix(),
		ExpiresAt:    tokens.ExpiresAt.Unix(),
	}
	if err := e.sessions.Store(ctx, refreshed); err != nil {
		return nil, mapStorageError(err)
	}

	e.metricInc(MetricRefreshSuccess)
	e.emitAudit(ctx, auditEventRefreshSuccess, true, userID, "", nil, nil)
	return sessionInfo(refreshed), nil
}

func (e *Engine) mapSessionError(err error) error {
	switch {
	case errors.Is(err, session.ErrNotFound):
		return fmt.Errorf("%w: no session stored", ErrSessionNotFound)
	case errors.Is(err, session.ErrCorrupt):
		return fmt.Errorf("%w: %v", ErrCredentialStore, err)
	default:
		return mapStorageError(err)
	}
}

func sessionInfo(s *session.Session) *SessionInfo {
	return &SessionInfo{
		UserID:      s.UserID,
		AccessToken: s.AccessToken,
		IssuedAt:    time.Unix(s.IssuedAt, 0).UTC(),
		ExpiresAt:   time.Unix(s.ExpiresAt, 0).UTC(),
	}
}
