package goKeyless

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	internalaudit "github.com/kaeso/goKeyless/internal/audit"
	internalmetrics "github.com/kaeso/goKeyless/internal/metrics"
	"github.com/kaeso/goKeyless/protocol"
	"github.com/kaeso/goKeyless/session"
)

// Engine defines a public type used by goKeyless APIs.
//
// Engine instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type Engine struct {
	config      Config
	secureStore SecureStore
	keyStore    KeyStore
	adapter     protocol.Adapter
	credentials *credentialStore
	otp         *otpChallengeStore
	webLogins   *webLoginStore
	sessions    *session.Manager
	audit       *internalaudit.Dispatcher
	metrics     *internalmetrics.Metrics
	now         func() time.Time

	// inflight enforces one operation per user at a time. Guarded by mu.
	mu       sync.Mutex
	inflight map[string]struct{}
}

// Close drains the audit dispatcher. The engine must not be used after
// Close.
func (e *Engine) Close() {
	if e == nil {
		return
	}
	if e.audit != nil {
		e.audit.Close()
	}
}

// AuditDropped reports how many audit events were dropped because the
// dispatch buffer was full.
func (e *Engine) AuditDropped() uint64 {
	if e == nil || e.audit == nil {
		return 0
	}
	return e.audit.Dropped()
}

// MetricsSnapshot returns a point-in-time deep copy of all engine metrics.
func (e *Engine) MetricsSnapshot() MetricsSnapshot {
	if e == nil || e.metrics == nil {
		return MetricsSnapshot{
			Counters:   map[MetricID]uint64{},
			Histograms: map[MetricID][]uint64{},
		}
	}
	return e.metrics.Snapshot()
}

func (e *Engine) metricInc(id MetricID) {
	if e == nil || e.metrics == nil {
		return
	}
	e.metrics.Inc(id)
}

func (e *Engine) observeLatency(id MetricID, start time.Time) {
	if e == nil || e.metrics == nil {
		return
	}
	e.metrics.Observe(id, time.Since(start))
}

// acquireFlight admits one in-flight operation per userID. A second call
// while one is pending fails immediately instead of queuing so the state
// machine never sees divergent concurrent transitions.
func (e *Engine) acquireFlight(userID string) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if _, busy := e.inflight[userID]; busy {
		return fmt.Errorf("%w: operation already in flight for user", ErrInternalState)
	}
	e.inflight[userID] = struct{}{}
	return nil
}

func (e *Engine) releaseFlight(userID string) {
	e.mu.Lock()
	defer e.mu.Unlock()
	delete(e.inflight, userID)
}

// normalizeUserID case-normalizes the identity used as the storage key.
func normalizeUserID(userID string) string {
	return strings.ToLower(strings.TrimSpace(userID))
}

// mapProtocolError translates adapter failures into the engine's public
// error kinds. No protocol sentinel crosses the Engine boundary.
func mapProtocolError(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, protocol.ErrChallengeRejected),
		errors.Is(err, protocol.ErrTokenInvalid):
		return fmt.Errorf("%w: %v", ErrDeviceVerificationFailed, err)
	case errors.Is(err, protocol.ErrRefreshRejected):
		return fmt.Errorf("%w: %v", ErrSessionExpired, err)
	case errors.Is(err, protocol.ErrAlreadyApproved):
		return fmt.Errorf("%w: %v", ErrWebLoginAlreadyApproved, err)
	case errors.Is(err, protocol.ErrApprovalExpired):
		return fmt.Errorf("%w: %v", ErrWebLoginExpired, err)
	case errors.Is(err, protocol.ErrPinRejected):
		return fmt.Errorf("%w: %v", ErrWebLoginRejected, err)
	default:
		return fmt.Errorf("%w: %v", ErrNetwork, err)
	}
}

// mapStorageError translates store/session failures into the engine's
// public error kinds.
func mapStorageError(err error) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%w: %v", ErrCredentialStore, err)
}

// mapKeyError translates key-facility failures into the engine's public
// error kinds.
func mapKeyError(err error) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%w: %v", ErrCrypto, err)
}

func contextOrBackground(ctx context.Context) context.Context {
	if ctx == nil {
		return context.Background()
	}
	return ctx
}
