package authgate

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/croplane/authgate/csrf"
	"github.com/croplane/authgate/jwt"
)

// DecisionKind is the terminal state of the gate's state machine.
type DecisionKind uint8

const (
	// DecisionBypass forwards the request untouched; no headers are added.
	DecisionBypass DecisionKind = iota
	// DecisionAllow forwards the request with security headers and cookie
	// refreshes attached.
	DecisionAllow
	// DecisionRedirect sends the client to the login page.
	DecisionRedirect
	// DecisionReject terminates the request with a 403.
	DecisionReject
)

func (k DecisionKind) String() string {
	switch k {
	case DecisionAllow:
		return "allow"
	case DecisionRedirect:
		return "redirect"
	case DecisionReject:
		return "reject"
	default:
		return "bypass"
	}
}

// DebugReasonHeader carries the decision reason in non-production builds.
// Production responses never include it.
const DebugReasonHeader = "X-Authgate-Reason"

// Decision is the gate's verdict for one request plus everything the HTTP
// layer needs to materialize it. Ephemeral: created per request, never stored.
type Decision struct {
	Kind     DecisionKind
	Status   int
	Location string
	// Reason is a stable machine label for the failure kind. It is surfaced
	// to clients only in non-production mode; it always reaches audit/logs.
	Reason string
	// Nonce is the per-request CSP nonce. The rendering layer must echo this
	// exact value into every inline script/style tag of the response.
	Nonce   string
	Claims  *jwt.Claims
	Headers http.Header
	Cookies []*http.Cookie
}

// Write materializes the decision onto w. It returns true when the response
// is complete (redirect/reject) and false when the request should continue to
// the downstream handler (bypass/allow).
func (d *Decision) Write(w http.ResponseWriter, r *http.Request) bool {
	for name, values := range d.Headers {
		for _, v := range values {
			w.Header().Add(name, v)
		}
	}
	for _, c := range d.Cookies {
		http.SetCookie(w, c)
	}

	switch d.Kind {
	case DecisionRedirect:
		http.Redirect(w, r, d.Location, d.Status)
		return true
	case DecisionReject:
		// Generic body: never reflects token values, secrets, or stack
		// detail. The specific kind lives in logs and the debug header.
		http.Error(w, "request rejected", d.Status)
		return true
	default:
		return false
	}
}

// Stable reason labels, one per error kind.
const (
	reasonSessionMissing   = "session_missing"
	reasonTokenMalformed   = "token_malformed"
	reasonTokenSignature   = "token_signature_invalid"
	reasonTokenExpired     = "token_expired"
	reasonTokenNotYetValid = "token_not_yet_valid"
	reasonTokenIssuer      = "token_issuer_mismatch"
	reasonTokenAudience    = "token_audience_mismatch"
	reasonTokenClaim       = "token_missing_claim"
	reasonTokenRevoked     = "token_revoked"
	reasonCsrfCookie       = "csrf_cookie_missing"
	reasonCsrfHeader       = "csrf_header_missing"
	reasonCsrfMismatch     = "csrf_mismatch"
	reasonIdleTimeout      = "idle_timeout"
	reasonRoleDenied       = "role_denied"
	reasonStoreDown        = "store_unavailable"
	reasonInternal         = "internal"
)

// mapTokenError lifts jwt package kinds into the root taxonomy.
func mapTokenError(err error) (error, string) {
	switch {
	case errors.Is(err, jwt.ErrExpired):
		return ErrTokenExpired, reasonTokenExpired
	case errors.Is(err, jwt.ErrNotYetValid):
		return ErrTokenNotYetValid, reasonTokenNotYetValid
	case errors.Is(err, jwt.ErrIssuerMismatch):
		return ErrTokenIssuerMismatch, reasonTokenIssuer
	case errors.Is(err, jwt.ErrAudienceMismatch):
		return ErrTokenAudienceMismatch, reasonTokenAudience
	case errors.Is(err, jwt.ErrMissingClaim), errors.Is(err, jwt.ErrWrongUse):
		return ErrTokenMissingClaim, reasonTokenClaim
	case errors.Is(err, jwt.ErrMalformed):
		return ErrTokenMalformed, reasonTokenMalformed
	default:
		return ErrTokenSignatureInvalid, reasonTokenSignature
	}
}

// mapCsrfError lifts csrf package kinds into the root taxonomy.
func mapCsrfError(err error) (error, string) {
	switch {
	case errors.Is(err, csrf.ErrCookieMissing):
		return ErrCsrfCookieMissing, reasonCsrfCookie
	case errors.Is(err, csrf.ErrHeaderMissing):
		return ErrCsrfHeaderMissing, reasonCsrfHeader
	default:
		return ErrCsrfMismatch, reasonCsrfMismatch
	}
}

/*
====================================
COOKIE CONSTRUCTION
====================================
*/

func (g *Gate) baseCookie(name, value string, ttl time.Duration, httpOnly bool) *http.Cookie {
	return &http.Cookie{
		Name:     name,
		Value:    value,
		Path:     g.config.Cookies.Path,
		Domain:   g.config.Cookies.Domain,
		MaxAge:   int(ttl / time.Second),
		Secure:   g.config.Cookies.Secure,
		HttpOnly: httpOnly,
		SameSite: g.config.Cookies.SameSite,
	}
}

func (g *Gate) accessCookie(token string) *http.Cookie {
	return g.baseCookie(g.config.Cookies.AccessName, token, g.config.JWT.AccessTTL, true)
}

func (g *Gate) refreshCookie(token string) *http.Cookie {
	return g.baseCookie(g.config.Cookies.RefreshName, token, g.config.JWT.RefreshTTL, true)
}

// csrfCookie is deliberately not httpOnly: the double-submit contract requires
// client script to read it back into the request header.
func (g *Gate) csrfCookie(value string) *http.Cookie {
	return g.baseCookie(g.config.CSRF.CookieName, value, g.config.CSRF.TokenTTL, false)
}

func (g *Gate) lastActivityCookie(now time.Time) *http.Cookie {
	return g.baseCookie(
		g.config.Cookies.LastActivityName,
		strconv.FormatInt(now.Unix(), 10),
		g.config.Session.IdleTimeout,
		true,
	)
}

func (g *Gate) clearCookie(name string, httpOnly bool) *http.Cookie {
	c := g.baseCookie(name, "", 0, httpOnly)
	c.MaxAge = -1
	return c
}

// ClearSessionCookies returns expired cookies for every session cookie the
// gate owns; used by logout handlers.
func (g *Gate) ClearSessionCookies() []*http.Cookie {
	return []*http.Cookie{
		g.clearCookie(g.config.Cookies.AccessName, true),
		g.clearCookie(g.config.Cookies.RefreshName, true),
		g.clearCookie(g.config.CSRF.CookieName, false),
		g.clearCookie(g.config.Cookies.LastActivityName, true),
	}
}
