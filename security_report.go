package goKeyless

import "time"

// SecurityReport is a read-only snapshot of the engine's configuration
// posture, returned by [Engine.SecurityReport].
type SecurityReport struct {
	Generation         Generation
	ProtocolVersion    uint8
	OtpTTL             time.Duration
	OtpMaxAttempts     int
	SessionClockSkew   time.Duration
	SessionAutoRefresh bool
	WebLoginTTL        time.Duration
	AuditEnabled       bool
	MetricsEnabled     bool
}

// SecurityReport describes the securityreport operation and its observable behavior.
//
// SecurityReport does not mutate shared global state and can be used concurrently.
func (e *Engine) SecurityReport() SecurityReport {
	if e == nil {
		return SecurityReport{}
	}

	return SecurityReport{
		Generation:         e.config.Protocol.Generation,
		ProtocolVersion:    e.config.Protocol.Version,
		OtpTTL:             e.config.Otp.TTL,
		OtpMaxAttempts:     e.config.Otp.MaxAttempts,
		SessionClockSkew:   e.config.Session.ClockSkew,
		SessionAutoRefresh: e.config.Session.AutoRefresh,
		WebLoginTTL:        e.config.WebLogin.TTL,
		AuditEnabled:       e.config.Audit.Enabled,
		MetricsEnabled:     e.config.Metrics.Enabled,
	}
}
