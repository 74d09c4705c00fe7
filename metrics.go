package authgate

import (
	"sync/atomic"
	"time"
)

// MetricID identifies a specific counter or histogram bucket in the
// in-process metrics system.
type MetricID uint16

const (
	// MetricRequestBypassed counts requests short-circuited by route bypass.
	MetricRequestBypassed MetricID = iota
	// MetricRequestAllowed counts requests passed through the gate.
	MetricRequestAllowed
	// MetricRequestRedirected counts redirects to the login page.
	MetricRequestRedirected
	// MetricRequestRejected counts 403 rejections.
	MetricRequestRejected
	// MetricCsrfRejected counts CSRF validation failures.
	MetricCsrfRejected
	// MetricCsrfIssued counts CSRF cookies issued or refreshed.
	MetricCsrfIssued
	// MetricTokenExpired counts expired access tokens.
	MetricTokenExpired
	// MetricTokenInvalid counts malformed or cryptographically invalid tokens.
	MetricTokenInvalid
	// MetricTokenRevoked counts structurally valid but revoked tokens.
	MetricTokenRevoked
	// MetricIdleTimeout counts sessions expired by the idle window.
	MetricIdleTimeout
	// MetricRoleDenied counts authenticated sessions lacking a required role.
	MetricRoleDenied
	// MetricRefreshSuccess counts successful refresh rotations.
	MetricRefreshSuccess
	// MetricRefreshFailure counts failed refresh attempts.
	MetricRefreshFailure
	// MetricRefreshReuseDetected counts consumed refresh tokens presented again.
	MetricRefreshReuseDetected
	// MetricFamilyRevoked counts whole-family revocations triggered by reuse.
	MetricFamilyRevoked
	// MetricLogout counts single-session logouts.
	MetricLogout
	// MetricLogoutAll counts user-wide logouts.
	MetricLogoutAll
	// MetricStoreUnavailable counts revocation-store infrastructure faults.
	// Alert on this; it is never a client error.
	MetricStoreUnavailable
	// MetricFailOpenAllowed counts tokens accepted under the fail-open policy
	// while the store was unreachable.
	MetricFailOpenAllowed
	// MetricEvaluateLatency is the Evaluate latency histogram.
	MetricEvaluateLatency
	metricIDCount
)

const (
	histBucketCount = 8
	cacheLineSize   = 64
)

type metricHistogram struct {
	buckets [histBucketCount]uint64
}

type paddedCounter struct {
	value uint64
	_     [cacheLineSize - 8]byte
}

// Metrics holds atomic counters and optional latency histograms. Padding
// keeps hot counters on separate cache lines.
type Metrics struct {
	enabled       bool
	enableLatency bool
	counters      [metricIDCount]paddedCounter
	histograms    [metricIDCount]metricHistogram
}

// MetricsSnapshot is a point-in-time deep copy of all metrics.
type MetricsSnapshot struct {
	Counters   map[MetricID]uint64
	Histograms map[MetricID][]uint64
}

// NewMetrics creates a Metrics instance. When cfg.Enabled is false, all
// operations are no-ops.
func NewMetrics(cfg MetricsConfig) *Metrics {
	return &Metrics{
		enabled:       cfg.Enabled,
		enableLatency: cfg.Enabled && cfg.EnableLatencyHistograms,
	}
}

// Enabled reports whether metric collection is active.
func (m *Metrics) Enabled() bool {
	return m != nil && m.enabled
}

// LatencyEnabled reports whether latency histograms are active.
func (m *Metrics) LatencyEnabled() bool {
	return m != nil && m.enableLatency
}

// Inc increments the counter for id.
func (m *Metrics) Inc(id MetricID) {
	if m == nil || !m.enabled || id >= metricIDCount {
		return
	}
	atomic.AddUint64(&m.counters[id].value, 1)
}

// Observe records a latency sample for the Evaluate histogram.
func (m *Metrics) Observe(id MetricID, d time.Duration) {
	if m == nil || !m.enabled || !m.enableLatency || id >= metricIDCount {
		return
	}
	if id != MetricEvaluateLatency {
		return
	}

	b := bucketIndex(d)
	atomic.AddUint64(&m.histograms[id].buckets[b], 1)
}

// Value returns the current counter value for id.
func (m *Metrics) Value(id MetricID) uint64 {
	if m == nil || id >= metricIDCount {
		return 0
	}
	return atomic.LoadUint64(&m.counters[id].value)
}

// Snapshot returns a deep copy of all counters and histograms.
func (m *Metrics) Snapshot() MetricsSnapshot {
	if m == nil || !m.enabled {
		return MetricsSnapshot{
			Counters:   map[MetricID]uint64{},
			Histograms: map[MetricID][]uint64{},
		}
	}

	s := MetricsSnapshot{
		Counters:   make(map[MetricID]uint64, int(metricIDCount)),
		Histograms: make(map[MetricID][]uint64, 1),
	}

	for id := MetricID(0); id < metricIDCount; id++ {
		s.Counters[id] = atomic.LoadUint64(&m.counters[id].value)
	}

	if m.enableLatency {
		buckets := make([]uint64, histBucketCount)
		for i := 0; i < histBucketCount; i++ {
			buckets[i] = atomic.LoadUint64(&m.histograms[MetricEvaluateLatency].buckets[i])
		}
		s.Histograms[MetricEvaluateLatency] = buckets
	}

	return s
}

func bucketIndex(d time.Duration) int {
	ms := d.Milliseconds()

	switch {
	case ms <= 5:
		return 0
	case ms <= 10:
		return 1
	case ms <= 25:
		return 2
	case ms <= 50:
		return 3
	case ms <= 100:
		return 4
	case ms <= 250:
		return 5
	case ms <= 500:
		return 6
	default:
		return 7
	}
}
