package authgate

import (
	"context"
	"errors"
	"log"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/croplane/authgate/csrf"
	"github.com/croplane/authgate/headers"
	"github.com/croplane/authgate/internal"
	"github.com/croplane/authgate/jwt"
	"github.com/croplane/authgate/redirect"
	"github.com/croplane/authgate/revocation"
	"github.com/croplane/authgate/routes"
)

// Gate is the request-gate orchestrator. It composes the route classifier,
// CSRF validator, token verifier, revocation store, and security-header
// builder into a single per-request decision.
//
// Gate instances are intended to be configured during initialization through
// [Builder.Build] and then treated as immutable.
type Gate struct {
	config     Config
	classifier *routes.Classifier
	csrf       *csrf.Validator
	headers    *headers.Builder
	jwt        *jwt.Manager
	store      *revocation.Store
	audit      auditDispatcherHandle
	metrics    *Metrics
	ready      bool
}

// Close drains the audit pipeline. Safe to call twice.
func (g *Gate) Close() {
	if g == nil {
		return
	}
	if g.audit != nil {
		g.audit.Close()
	}
}

// AuditDropped reports how many audit events were discarded under buffer
// pressure.
func (g *Gate) AuditDropped() uint64 {
	if g == nil || g.audit == nil {
		return 0
	}
	return g.audit.Dropped()
}

// MetricsSnapshot returns a point-in-time copy of all gate metrics.
func (g *Gate) MetricsSnapshot() MetricsSnapshot {
	if g == nil || g.metrics == nil {
		return MetricsSnapshot{
			Counters:   map[MetricID]uint64{},
			Histograms: map[MetricID][]uint64{},
		}
	}
	return g.metrics.Snapshot()
}

func (g *Gate) metricInc(id MetricID) {
	if g == nil || g.metrics == nil {
		return
	}
	g.metrics.Inc(id)
}

// Evaluate runs the gate state machine for one inbound request:
//
//	Start → ClassifyRoute → {Bypass, CsrfCheck → {Reject, AuthCheck → {Redirect, Allow}}}
//
// CSRF validation runs before authentication so a forged cross-site request
// from an authenticated victim dies at the CSRF stage without reaching token
// verification. Every error kind is converted locally into a decision; none
// propagate to the caller.
func (g *Gate) Evaluate(ctx context.Context, r *http.Request) *Decision {
	if g == nil || !g.ready {
		return &Decision{
			Kind:   DecisionReject,
			Status: http.StatusServiceUnavailable,
			Reason: reasonInternal,
		}
	}

	start := time.Now()
	defer func() {
		g.metrics.Observe(MetricEvaluateLatency, time.Since(start))
	}()

	cls := g.classifier.Classify(r.URL.Path)
	if cls.Kind == routes.KindBypass {
		g.metricInc(MetricRequestBypassed)
		return &Decision{Kind: DecisionBypass}
	}

	nonce, err := internal.NewNonce()
	if err != nil {
		// Entropy exhaustion: nothing sane to serve.
		log.Printf("authgate: nonce generation failed: %v", err)
		return &Decision{
			Kind:   DecisionReject,
			Status: http.StatusInternalServerError,
			Reason: reasonInternal,
		}
	}
	hdrs := g.headers.Build(nonce)

	if err := g.csrf.Validate(r); err != nil {
		kind, label := mapCsrfError(err)
		g.metricInc(MetricCsrfRejected)
		return g.reject(ctx, r, hdrs, nonce, kind, label)
	}

	if cls.Kind == routes.KindPublic {
		return g.allow(ctx, r, hdrs, nonce, nil)
	}

	// Protected: authenticate.
	cookie, err := r.Cookie(g.config.Cookies.AccessName)
	if err != nil || cookie.Value == "" {
		return g.redirectLogin(ctx, r, hdrs, nonce, nil, reasonSessionMissing)
	}

	claims, err := g.jwt.Parse(cookie.Value, jwt.UseAccess)
	if err != nil {
		kind, label := mapTokenError(err)
		if errors.Is(kind, ErrTokenExpired) {
			g.metricInc(MetricTokenExpired)
		} else {
			g.metricInc(MetricTokenInvalid)
		}
		return g.redirectLogin(ctx, r, hdrs, nonce, kind, label)
	}

	if d := g.checkRevocation(ctx, r, hdrs, nonce, claims); d != nil {
		return d
	}

	if len(cls.Roles) > 0 && !hasAnyRole(claims.Roles, cls.Roles) {
		g.metricInc(MetricRoleDenied)
		return g.reject(ctx, r, hdrs, nonce, ErrPermissionDenied, reasonRoleDenied)
	}

	if d := g.checkIdle(ctx, r, hdrs, nonce); d != nil {
		return d
	}

	return g.allow(ctx, r, hdrs, nonce, claims)
}

// checkRevocation consults the store and applies the configured outage
// policy. Returns nil when the request may proceed.
func (g *Gate) checkRevocation(ctx context.Context, r *http.Request, hdrs http.Header, nonce string, claims *jwt.Claims) *Decision {
	check := revocation.Check{
		JTI:      claims.JTI(),
		FamilyID: claims.FamilyID,
		Subject:  claims.Subject,
		TenantID: claims.TenantID,
	}
	if claims.IssuedAt != nil {
		check.IssuedAt = claims.IssuedAt.Time
	}

	rec, err := g.store.IsRevoked(ctx, check)
	if err != nil {
		g.metricInc(MetricStoreUnavailable)
		log.Printf("authgate: revocation store unavailable: %v", err)
		g.auditEmit(ctx, AuditEvent{
			Timestamp: time.Now(),
			EventType: AuditStoreUnavailable,
			Subject:   claims.Subject,
			TenantID:  claims.TenantID,
			Method:    r.Method,
			Path:      r.URL.Path,
			Error:     err.Error(),
		})
		if g.config.Security.FailClosed {
			return g.redirectLogin(ctx, r, hdrs, nonce, ErrRevocationStoreUnavailable, reasonStoreDown)
		}
		// Fail-open: accept the token, but loudly. Alerting hangs off this
		// event and MetricFailOpenAllowed.
		g.metricInc(MetricFailOpenAllowed)
		g.auditEmit(ctx, AuditEvent{
			Timestamp: time.Now(),
			EventType: AuditFailOpenAllow,
			Subject:   claims.Subject,
			TenantID:  claims.TenantID,
			JTI:       claims.JTI(),
			Method:    r.Method,
			Path:      r.URL.Path,
			Success:   true,
		})
		return nil
	}
	if rec != nil {
		g.metricInc(MetricTokenRevoked)
		g.auditEmit(ctx, AuditEvent{
			Timestamp: time.Now(),
			EventType: AuditDecision,
			Subject:   claims.Subject,
			TenantID:  claims.TenantID,
			JTI:       claims.JTI(),
			Method:    r.Method,
			Path:      r.URL.Path,
			Decision:  DecisionRedirect.String(),
			Error:     string(rec.Scope) + " revoked: " + rec.Reason,
		})
		return g.redirectLogin(ctx, r, hdrs, nonce, ErrTokenRevoked, reasonTokenRevoked)
	}
	return nil
}

// checkIdle enforces the idle-timeout window from the last_activity cookie.
// An absent or unreadable cookie counts as fresh activity: staleness can only
// shorten a session, never extend it past the token's own expiry.
func (g *Gate) checkIdle(ctx context.Context, r *http.Request, hdrs http.Header, nonce string) *Decision {
	if g.config.Session.IdleTimeout <= 0 {
		return nil
	}
	cookie, err := r.Cookie(g.config.Cookies.LastActivityName)
	if err != nil || cookie.Value == "" {
		return nil
	}
	last, err := strconv.ParseInt(cookie.Value, 10, 64)
	if err != nil {
		return nil
	}
	if time.Since(time.Unix(last, 0)) > g.config.Session.IdleTimeout {
		g.metricInc(MetricIdleTimeout)
		return g.redirectLogin(ctx, r, hdrs, nonce, ErrTokenExpired, reasonIdleTimeout)
	}
	return nil
}

// allow finalizes a pass-through: stamp activity, ensure a CSRF cookie
// exists, attach headers.
func (g *Gate) allow(ctx context.Context, r *http.Request, hdrs http.Header, nonce string, claims *jwt.Claims) *Decision {
	d := &Decision{
		Kind:    DecisionAllow,
		Status:  http.StatusOK,
		Nonce:   nonce,
		Claims:  claims,
		Headers: hdrs,
	}

	if _, err := r.Cookie(g.config.CSRF.CookieName); err != nil {
		value, genErr := internal.NewCSRFSecret()
		if genErr == nil {
			d.Cookies = append(d.Cookies, g.csrfCookie(value))
			g.metricInc(MetricCsrfIssued)
		} else {
			log.Printf("authgate: csrf secret generation failed: %v", genErr)
		}
	}
	if claims != nil && g.config.Session.IdleTimeout > 0 {
		d.Cookies = append(d.Cookies, g.lastActivityCookie(time.Now()))
	}

	g.metricInc(MetricRequestAllowed)
	return d
}

func (g *Gate) redirectLogin(ctx context.Context, r *http.Request, hdrs http.Header, nonce string, kind error, label string) *Decision {
	g.metricInc(MetricRequestRedirected)

	query := url.Values{}
	if target, ok := redirect.Sanitize(r.URL.RequestURI(), g.config.Security.BaseOrigin); ok && target != g.config.Security.LoginPath {
		query.Set("returnTo", target)
	}
	if !g.config.Security.ProductionMode && label != "" {
		query.Set("reason", label)
	}
	location := g.config.Security.LoginPath
	if encoded := query.Encode(); encoded != "" {
		location += "?" + encoded
	}

	d := &Decision{
		Kind:     DecisionRedirect,
		Status:   http.StatusFound,
		Location: location,
		Reason:   label,
		Nonce:    nonce,
		Headers:  hdrs,
	}
	if !g.config.Security.ProductionMode && label != "" {
		d.Headers.Set(DebugReasonHeader, label)
	}

	g.auditDecision(ctx, r, d, kind)
	return d
}

func (g *Gate) reject(ctx context.Context, r *http.Request, hdrs http.Header, nonce string, kind error, label string) *Decision {
	g.metricInc(MetricRequestRejected)

	d := &Decision{
		Kind:    DecisionReject,
		Status:  http.StatusForbidden,
		Reason:  label,
		Nonce:   nonce,
		Headers: hdrs,
	}
	if !g.config.Security.ProductionMode && label != "" {
		d.Headers.Set(DebugReasonHeader, label)
	}

	g.auditDecision(ctx, r, d, kind)
	return d
}

func (g *Gate) auditDecision(ctx context.Context, r *http.Request, d *Decision, kind error) {
	event := AuditEvent{
		Timestamp: time.Now(),
		EventType: AuditDecision,
		Method:    r.Method,
		Path:      r.URL.Path,
		Decision:  d.Kind.String(),
	}
	if kind != nil {
		event.Error = kind.Error()
	}
	g.auditEmit(ctx, event)
}

func hasAnyRole(have, want []string) bool {
	for _, w := range want {
		for _, h := range have {
			if h == w {
				return true
			}
		}
	}
	return false
}
