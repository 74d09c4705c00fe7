package internaldefs

import (
	authgate "github.com/croplane/authgate"
)

// CounterDef binds a gate MetricID to its stable exported name.
type CounterDef struct {
	ID   authgate.MetricID
	Name string
	Help string
}

// HistogramDef binds a gate histogram MetricID to its stable exported name.
type HistogramDef struct {
	ID   authgate.MetricID
	Name string
	Help string
}

// CounterDefs enumerates every exported counter.
var CounterDefs = []CounterDef{
	{ID: authgate.MetricRequestBypassed, Name: "authgate_request_bypassed_total", Help: "Requests short-circuited by route bypass."},
	{ID: authgate.MetricRequestAllowed, Name: "authgate_request_allowed_total", Help: "Requests passed through the gate."},
	{ID: authgate.MetricRequestRedirected, Name: "authgate_request_redirected_total", Help: "Requests redirected to login."},
	{ID: authgate.MetricRequestRejected, Name: "authgate_request_rejected_total", Help: "Requests rejected with 403."},
	{ID: authgate.MetricCsrfRejected, Name: "authgate_csrf_rejected_total", Help: "CSRF validation failures."},
	{ID: authgate.MetricCsrfIssued, Name: "authgate_csrf_issued_total", Help: "CSRF cookies issued or refreshed."},
	{ID: authgate.MetricTokenExpired, Name: "authgate_token_expired_total", Help: "Expired access tokens."},
	{ID: authgate.MetricTokenInvalid, Name: "authgate_token_invalid_total", Help: "Malformed or cryptographically invalid tokens."},
	{ID: authgate.MetricTokenRevoked, Name: "authgate_token_revoked_total", Help: "Structurally valid but revoked tokens."},
	{ID: authgate.MetricIdleTimeout, Name: "authgate_idle_timeout_total", Help: "Sessions expired by the idle window."},
	{ID: authgate.MetricRoleDenied, Name: "authgate_role_denied_total", Help: "Authenticated sessions lacking a required role."},
	{ID: authgate.MetricRefreshSuccess, Name: "authgate_refresh_success_total", Help: "Successful refresh rotations."},
	{ID: authgate.MetricRefreshFailure, Name: "authgate_refresh_failure_total", Help: "Failed refresh attempts."},
	{ID: authgate.MetricRefreshReuseDetected, Name: "authgate_refresh_reuse_detected_total", Help: "Consumed refresh tokens presented again."},
	{ID: authgate.MetricFamilyRevoked, Name: "authgate_family_revoked_total", Help: "Whole-family revocations triggered by reuse."},
	{ID: authgate.MetricLogout, Name: "authgate_logout_total", Help: "Single-session logout operations."},
	{ID: authgate.MetricLogoutAll, Name: "authgate_logout_all_total", Help: "User-wide logout operations."},
	{ID: authgate.MetricStoreUnavailable, Name: "authgate_store_unavailable_total", Help: "Revocation store infrastructure faults."},
	{ID: authgate.MetricFailOpenAllowed, Name: "authgate_fail_open_allowed_total", Help: "Tokens accepted under fail-open while the store was down."},
}

// HistogramDefs enumerates every exported histogram.
var HistogramDefs = []HistogramDef{
	{ID: authgate.MetricEvaluateLatency, Name: "authgate_evaluate_latency_seconds", Help: "Evaluate latency histogram."},
}

// HistogramBounds are the upper bucket boundaries in seconds.
var HistogramBounds = []string{
	"0.005",
	"0.01",
	"0.025",
	"0.05",
	"0.1",
	"0.25",
	"0.5",
	"+Inf",
}

// HistogramBoundSuffix are metric-name-safe renderings of HistogramBounds.
var HistogramBoundSuffix = []string{
	"0_005",
	"0_01",
	"0_025",
	"0_05",
	"0_1",
	"0_25",
	"0_5",
	"inf",
}

// NormalizeBuckets pads or truncates raw snapshot buckets to the canonical
// bucket count.
func NormalizeBuckets(raw []uint64) [8]uint64 {
	var out [8]uint64
	for i := 0; i < len(out) && i < len(raw); i++ {
		out[i] = raw[i]
	}
	return out
}

// CumulativeBuckets converts per-bucket counts into cumulative counts as
// exposition formats expect.
func CumulativeBuckets(raw [8]uint64) [8]uint64 {
	var out [8]uint64
	var running uint64
	for i := 0; i < len(raw); i++ {
		running += raw[i]
		out[i] = running
	}
	return out
}
