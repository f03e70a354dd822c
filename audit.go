package goKeyless

import (
	"context"

	internalaudit "github.com/kaeso/goKeyless/internal/audit"
)

const (
	auditEventAuthSuccess      = "auth.success"
	auditEventAuthFailure      = "auth.failure"
	auditEventRegistration     = "auth.registration_started"
	auditEventOtpSuccess       = "otp.success"
	auditEventOtpFailure       = "otp.failure"
	auditEventOtpExhausted     = "otp.exhausted"
	auditEventRefreshSuccess   = "session.refresh"
	auditEventRefreshFailure   = "session.refresh_failed"
	auditEventSessionCleared   = "session.cleared"
	auditEventCredentialsWiped = "credentials.wiped"
	auditEventWebSubmitted     = "web.submitted"
	auditEventWebApproved      = "web.approved"
	auditEventWebRejected      = "web.rejected"
)

// emitAudit forwards an event to the dispatcher. metadata is lazily built
// so disabled audit costs nothing beyond the nil check.
func (e *Engine) emitAudit(
	ctx context.Context,
	eventType string,
	success bool,
	userID, deviceID string,
	opErr error,
	metadata func() map[string]string,
) {
	if e == nil || e.audit == nil {
		return
	}

	event := internalaudit.Event{
		Timestamp: e.now(),
		EventType: eventType,
		UserID:    userID,
		DeviceID:  deviceID,
		Success:   success,
	}
	if opErr != nil {
		event.Error = opErr.Error()
	}
	if cid := correlationIDFromContext(ctx); cid != "" {
		if metadata == nil {
			event.Metadata = map[string]string{"correlation_id": cid}
		} else {
			meta := metadata()
			meta["correlation_id"] = cid
			event.Metadata = meta
		}
	} else if metadata != nil {
		event.Metadata = metadata()
	}

	e.audit.Emit(contextOrBackground(ctx), event)
}
