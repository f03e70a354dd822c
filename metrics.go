package goKeyless

import (
	internalmetrics "github.com/kaeso/goKeyless/internal/metrics"
)

// MetricID identifies a specific counter or histogram bucket in the
// in-process metrics system.
type MetricID = internalmetrics.MetricID

const (
	// MetricAuthSuccess is an exported constant or variable used by the authentication engine.
	MetricAuthSuccess = internalmetrics.MetricAuthSuccess
	// MetricAuthFailure is an exported constant or variable used by the authentication engine.
	MetricAuthFailure = internalmetrics.MetricAuthFailure
	// MetricRegistrationStarted is an exported constant or variable used by the authentication engine.
	MetricRegistrationStarted = internalmetrics.MetricRegistrationStarted
	// MetricOtpIssued is an exported constant or variable used by the authentication engine.
	MetricOtpIssued = internalmetrics.MetricOtpIssued
	// MetricOtpSuccess is an exported constant or variable used by the authentication engine.
	MetricOtpSuccess = internalmetrics.MetricOtpSuccess
	// MetricOtpMismatch is an exported constant or variable used by the authentication engine.
	MetricOtpMismatch = internalmetrics.MetricOtpMismatch
	// MetricOtpExpired is an exported constant or variable used by the authentication engine.
	MetricOtpExpired = internalmetrics.MetricOtpExpired
	// MetricOtpExhausted is an exported constant or variable used by the authentication engine.
	MetricOtpExhausted = internalmetrics.MetricOtpExhausted
	// MetricChallengeRejected is an exported constant or variable used by the authentication engine.
	MetricChallengeRejected = internalmetrics.MetricChallengeRejected
	// MetricRefreshSuccess is an exported constant or variable used by the authentication engine.
	MetricRefreshSuccess = internalmetrics.MetricRefreshSuccess
	// MetricRefreshFailure is an exported constant or variable used by the authentication engine.
	MetricRefreshFailure = internalmetrics.MetricRefreshFailure
	// MetricSessionCleared is an exported constant or variable used by the authentication engine.
	MetricSessionCleared = internalmetrics.MetricSessionCleared
	// MetricCredentialsWiped is an exported constant or variable used by the authentication engine.
	MetricCredentialsWiped = internalmetrics.MetricCredentialsWiped
	// MetricWebLoginSubmitted is an exported constant or variable used by the authentication engine.
	MetricWebLoginSubmitted = internalmetrics.MetricWebLoginSubmitted
	// MetricWebLoginApproved is an exported constant or variable used by the authentication engine.
	MetricWebLoginApproved = internalmetrics.MetricWebLoginApproved
	// MetricWebLoginRejected is an exported constant or variable used by the authentication engine.
	MetricWebLoginRejected = internalmetrics.MetricWebLoginRejected
	// MetricNetworkError is an exported constant or variable used by the authentication engine.
	MetricNetworkError = internalmetrics.MetricNetworkError
	// MetricStateConflict is an exported constant or variable used by the authentication engine.
	MetricStateConflict = internalmetrics.MetricStateConflict
	// MetricAuthLatency is an exported constant or variable used by the authentication engine.
	MetricAuthLatency = internalmetrics.MetricAuthLatency
)

// Metrics holds atomic counters and optional latency histograms.
type Metrics = internalmetrics.Metrics

// MetricsSnapshot is a point-in-time deep copy of all metrics.
type MetricsSnapshot = internalmetrics.Snapshot

// NewMetrics creates a new [Metrics] instance configured by the given
// [MetricsConfig]. When Enabled is false, all operations are no-ops.
func NewMetrics(cfg MetricsConfig) *Metrics {
	return internalmetrics.New(internalmetrics.Config{
		Enabled:       cfg.Enabled,
		EnableLatency: cfg.EnableLatencyHistograms,
	})
}
