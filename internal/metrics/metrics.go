package metrics

import (
	"sync/atomic"
	"time"
)

// MetricID identifies a specific counter or histogram bucket.
type MetricID uint16

const (
	// MetricAuthSuccess is an exported constant used by the authentication engine.
	MetricAuthSuccess MetricID = iota
	// MetricAuthFailure is an exported constant used by the authentication engine.
	MetricAuthFailure
	// MetricRegistrationStarted is an exported constant used by the authentication engine.
	MetricRegistrationStarted
	// MetricOtpIssued is an exported constant used by the authentication engine.
	MetricOtpIssued
	// MetricOtpSuccess is an exported constant used by the authentication engine.
	MetricOtpSuccess
	// MetricOtpMismatch is an exported constant used by the authentication engine.
	MetricOtpMismatch
	// MetricOtpExpired is an exported constant used by the authentication engine.
	MetricOtpExpired
	// MetricOtpExhausted is an exported constant used by the authentication engine.
	MetricOtpExhausted
	// MetricChallengeRejected is an exported constant used by the authentication engine.
	MetricChallengeRejected
	// MetricRefreshSuccess is an exported constant used by the authentication engine.
	MetricRefreshSuccess
	// MetricRefreshFailure is an exported constant used by the authentication engine.
	MetricRefreshFailure
	// MetricSessionCleared is an exported constant used by the authentication engine.
	MetricSessionCleared
	// MetricCredentialsWiped is an exported constant used by the authentication engine.
	MetricCredentialsWiped
	// MetricWebLoginSubmitted is an exported constant used by the authentication engine.
	MetricWebLoginSubmitted
	// MetricWebLoginApproved is an exported constant used by the authentication engine.
	MetricWebLoginApproved
	// MetricWebLoginRejected is an exported constant used by the authentication engine.
	MetricWebLoginRejected
	// MetricNetworkError is an exported constant used by the authentication engine.
	MetricNetworkError
	// MetricStateConflict is an exported constant used by the authentication engine.
	MetricStateConflict
	// MetricAuthLatency is an exported constant used by the authentication engine.
	MetricAuthLatency

	// MetricIDCount is the number of defined metric IDs.
	MetricIDCount
)

const (
	histBucketCount = 8
	cacheLineSize   = 64
)

// Histogram bucket upper bounds. The last bucket is +Inf.
var histBounds = [histBucketCount - 1]time.Duration{
	5 * time.Millisecond,
	10 * time.Millisecond,
	25 * time.Millisecond,
	50 * time.Millisecond,
	100 * time.Millisecond,
	250 * time.Millisecond,
	time.Second,
}

type paddedCounter struct {
	value uint64
	_     [cacheLineSize - 8]byte
}

type histogram struct {
	buckets [histBucketCount]uint64
}

// Config controls which collection paths are active.
type Config struct {
	Enabled       bool
	EnableLatency bool
}

// Metrics holds atomic counters and optional latency histograms. All write
// paths are allocation-free; a nil *Metrics is a valid no-op receiver.
type Metrics struct {
	counters   [MetricIDCount]paddedCounter
	histograms [MetricIDCount]histogram
	latency    bool
}

// New creates a Metrics instance. When cfg.Enabled is false it returns nil,
// which all methods treat as a no-op.
func New(cfg Config) *Metrics {
	if !cfg.Enabled {
		return nil
	}
	return &Metrics{latency: cfg.EnableLatency}
}

// Inc atomically increments the counter behind id.
func (m *Metrics) Inc(id MetricID) {
	if m == nil || id >= MetricIDCount {
		return
	}
	atomic.AddUint64(&m.counters[id].value, 1)
}

// Observe records a latency observation for id when histograms are enabled.
func (m *Metrics) Observe(id MetricID, d time.Duration) {
	if m == nil || !m.latency || id >= MetricIDCount {
		return
	}
	bucket := histBucketCount - 1
	for i, bound := range histBounds {
		if d <= bound {
			bucket = i
			break
		}
	}
	atomic.AddUint64(&m.histograms[id].buckets[bucket], 1)
}

// Snapshot is a point-in-time deep copy of all metrics.
type Snapshot struct {
	Counters   map[MetricID]uint64
	Histograms map[MetricID][]uint64
}

// Snapshot copies every non-zero counter and histogram.
func (m *Metrics) Snapshot() Snapshot {
	snap := Snapshot{
		Counters:   map[MetricID]uint64{},
		Histograms: map[MetricID][]uint64{},
	}
	if m == nil {
		return snap
	}

	for id := MetricID(0); id < MetricIDCount; id++ {
		if v := atomic.LoadUint64(&m.counters[id].value); v != 0 {
			snap.Counters[id] = v
		}
		if !m.latency {
			continue
		}
		var buckets []uint64
		for b := 0; b < histBucketCount; b++ {
			if v := atomic.LoadUint64(&m.histograms[id].buckets[b]); v != 0 {
				if buckets == nil {
					buckets = make([]uint64, histBucketCount)
				}
				buckets[b] = v
			}
		}
		if buckets != nil {
			snap.Histograms[id] = buckets
		}
	}
	return snap
}
