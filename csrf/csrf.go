package csrf

import (
	"crypto/subtle"
	"errors"
	"net/http"
	"strings"
)

// Validation error kinds, matched with errors.Is.
var (
	ErrCookieMissing = errors.New("csrf cookie missing")
	ErrHeaderMissing = errors.New("csrf header missing")
	ErrMismatch      = errors.New("csrf token mismatch")
)

// Default wire names. Overridable through Config.
const (
	DefaultCookieName = "csrf_token"
	DefaultHeaderName = "X-CSRF-Token"
)

// Config holds validator parameters.
//
// Config instances are intended to be configured during initialization and then
// treated as immutable.
type Config struct {
	CookieName string
	HeaderName string
	// ExemptPaths are prefix-matched paths that legitimately lack an
	// established CSRF cookie (initial login, registration, webhooks).
	ExemptPaths []string
}

// Validator checks the double-submit contract on inbound requests.
type Validator struct {
	cookieName string
	headerName string
	exempt     []string
}

// NewValidator returns a Validator with defaults applied.
func NewValidator(cfg Config) *Validator {
	if cfg.CookieName == "" {
		cfg.CookieName = DefaultCookieName
	}
	if cfg.HeaderName == "" {
		cfg.HeaderName = DefaultHeaderName
	}
	exempt := make([]string, len(cfg.ExemptPaths))
	copy(exempt, cfg.ExemptPaths)
	return &Validator{
		cookieName: cfg.CookieName,
		headerName: cfg.HeaderName,
		exempt:     exempt,
	}
}

// CookieName reports the configured cookie name.
func (v *Validator) CookieName() string { return v.cookieName }

// HeaderName reports the configured header name.
func (v *Validator) HeaderName() string { return v.headerName }

// Required reports whether the request's method is subject to CSRF checks.
// GET, HEAD and OPTIONS always pass.
func Required(method string) bool {
	switch method {
	case http.MethodPost, http.MethodPut, http.MethodPatch, http.MethodDelete:
		return true
	default:
		return false
	}
}

// Exempt reports whether the request path is on the exempt allow-list.
func (v *Validator) Exempt(path string) bool {
	for _, prefix := range v.exempt {
		if strings.HasPrefix(path, prefix) {
			return true
		}
	}
	return false
}

// Validate applies the double-submit check to r. Safe methods and exempt
// paths pass unconditionally. Read-only; never mutates the request.
func (v *Validator) Validate(r *http.Request) error {
	if !Required(r.Method) {
		return nil
	}
	if v.Exempt(r.URL.Path) {
		return nil
	}

	cookie, err := r.Cookie(v.cookieName)
	if err != nil || cookie.Value == "" {
		return ErrCookieMissing
	}
	header := r.Header.Get(v.headerName)
	if header == "" {
		return ErrHeaderMissing
	}

	if subtle.ConstantTimeCompare([]byte(cookie.Value), []byte(header)) != 1 {
		return ErrMismatch
	}
	return nil
}
