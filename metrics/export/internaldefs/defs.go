package internaldefs

import (
	goKeyless "github.com/kaeso/goKeyless"
)

// CounterDef defines a public type used by goKeyless APIs.
//
// CounterDef instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type CounterDef struct {
	ID   goKeyless.MetricID
	Name string
	Help string
}

// HistogramDef defines a public type used by goKeyless APIs.
//
// HistogramDef instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type HistogramDef struct {
	ID   goKeyless.MetricID
	Name string
	Help string
}

// CounterDefs is an exported constant or variable used by the authentication engine.
var CounterDefs = []CounterDef{
	{ID: goKeyless.MetricAuthSuccess, Name: "gokeyless_auth_success_total", Help: "Successful authentication flows."},
	{ID: goKeyless.MetricAuthFailure, Name: "gokeyless_auth_failure_total", Help: "Failed authentication flows."},
	{ID: goKeyless.MetricRegistrationStarted, Name: "gokeyless_registration_started_total", Help: "Registration flows started for unprovisioned devices."},
	{ID: goKeyless.MetricOtpIssued, Name: "gokeyless_otp_issued_total", Help: "Issued OTP challenges."},
	{ID: goKeyless.MetricOtpSuccess, Name: "gokeyless_otp_success_total", Help: "Successful OTP verifications."},
	{ID: goKeyless.MetricOtpMismatch, Name: "gokeyless_otp_mismatch_total", Help: "OTP submissions rejected for code mismatch."},
	{ID: goKeyless.MetricOtpExpired, Name: "gokeyless_otp_expired_total", Help: "OTP submissions rejected after challenge expiry."},
	{ID: goKeyless.MetricOtpExhausted, Name: "gokeyless_otp_exhausted_total", Help: "OTP challenges invalidated due to attempt cap."},
	{ID: goKeyless.MetricChallengeRejected, Name: "gokeyless_challenge_rejected_total", Help: "Login challenge signatures rejected by the server."},
	{ID: goKeyless.MetricRefreshSuccess, Name: "gokeyless_refresh_success_total", Help: "Successful token refresh operations."},
	{ID: goKeyless.MetricRefreshFailure, Name: "gokeyless_refresh_failure_total", Help: "Failed token refresh operations."},
	{ID: goKeyless.MetricSessionCleared, Name: "gokeyless_session_cleared_total", Help: "Session clear operations."},
	{ID: goKeyless.MetricCredentialsWiped, Name: "gokeyless_credentials_wiped_total", Help: "Device credential wipe operations."},
	{ID: goKeyless.MetricWebLoginSubmitted, Name: "gokeyless_web_login_submitted_total", Help: "Submitted web login PIN requests."},
	{ID: goKeyless.MetricWebLoginApproved, Name: "gokeyless_web_login_approved_total", Help: "Approved web login requests."},
	{ID: goKeyless.MetricWebLoginRejected, Name: "gokeyless_web_login_rejected_total", Help: "Rejected web login requests."},
	{ID: goKeyless.MetricNetworkError, Name: "gokeyless_network_error_total", Help: "Operations that failed on transport errors."},
	{ID: goKeyless.MetricStateConflict, Name: "gokeyless_state_conflict_total", Help: "Operations rejected because another flow held the per-user gate."},
}

// HistogramDefs is an exported constant or variable used by the authentication engine.
var HistogramDefs = []HistogramDef{
	{ID: goKeyless.MetricAuthLatency, Name: "gokeyless_auth_latency_seconds", Help: "End-to-end authentication latency histogram."},
}

// HistogramBounds is an exported constant or variable used by the authentication engine.
var HistogramBounds = []string{
	"0.005",
	"0.01",
	"0.025",
	"0.05",
	"0.1",
	"0.25",
	"1",
	"+Inf",
}

// HistogramBoundSuffix is an exported constant or variable used by the authentication engine.
var HistogramBoundSuffix = []string{
	"0_005",
	"0_01",
	"0_025",
	"0_05",
	"0_1",
	"0_25",
	"1",
	"inf",
}

// NormalizeBuckets describes the normalizebuckets operation and its observable behavior.
//
// NormalizeBuckets does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func NormalizeBuckets(raw []uint64) [8]uint64 {
	var out [8]uint64
	for i := 0; i < len(out) && i < len(raw); i++ {
		out[i] = raw[i]
	}
	return out
}

// CumulativeBuckets describes the cumulativebuckets operation and its observable behavior.
//
// CumulativeBuckets does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func CumulativeBuckets(raw [8]uint64) [8]uint64 {
	var out [8]uint64
	var running uint64
	for i := 0; i < len(raw); i++ {
		running += raw[i]
		out[i] = running
	}
	return out
}
