package headers

import (
	"errors"
	"net/http"
	"strconv"
	"strings"
)

// Header names emitted by the builder.
const (
	HeaderCSP               = "Content-Security-Policy"
	HeaderHSTS              = "Strict-Transport-Security"
	HeaderFrameOptions      = "X-Frame-Options"
	HeaderContentTypeOpts   = "X-Content-Type-Options"
	HeaderReferrerPolicy    = "Referrer-Policy"
	HeaderPermissionsPolicy = "Permissions-Policy"
)

// Config holds the static header policy.
//
// Config instances are intended to be configured during initialization and then
// treated as immutable.
type Config struct {
	// Production tightens the CSP (no unsafe-eval) and enables HSTS.
	Production bool
	// ConnectHosts are third-party origins allowed in connect-src, e.g. map
	// tile providers the farmer dashboard talks to directly.
	ConnectHosts []string
	// ImageHosts are third-party origins allowed in img-src, e.g. satellite
	// imagery CDNs.
	ImageHosts []string
	// HSTSMaxAge overrides the Strict-Transport-Security max-age in seconds.
	// Zero selects the default of two years.
	HSTSMaxAge int
}

// Builder assembles the security header set. The static prefix and suffix of
// the CSP are precomputed; Build only splices the nonce.
type Builder struct {
	production bool
	cspPre     string // up to and including "'nonce-"
	cspMid     string // between script and style nonce slots
	cspPost    string
	hsts       string
	static     map[string]string
}

// NewBuilder validates cfg and precomputes header values.
func NewBuilder(cfg Config) (*Builder, error) {
	for _, h := range append(append([]string{}, cfg.ConnectHosts...), cfg.ImageHosts...) {
		if strings.ContainsAny(h, " ;'\"") || h == "" {
			return nil, errors.New("invalid trusted host in header config: " + h)
		}
	}

	maxAge := cfg.HSTSMaxAge
	if maxAge == 0 {
		maxAge = 63072000
	}
	if maxAge < 0 {
		return nil, errors.New("invalid HSTS max-age")
	}

	connect := "'self'"
	if len(cfg.ConnectHosts) > 0 {
		connect += " " + strings.Join(cfg.ConnectHosts, " ")
	}
	img := "'self' data:"
	if len(cfg.ImageHosts) > 0 {
		img += " " + strings.Join(cfg.ImageHosts, " ")
	}

	scriptExtra := ""
	if !cfg.Production {
		// Dev tooling (hot reload) needs eval; production never gets it.
		scriptExtra = " 'unsafe-eval'"
	}

	b := &Builder{
		production: cfg.Production,
		cspPre:     "default-src 'self'; script-src 'self'" + scriptExtra + " 'nonce-",
		cspMid:     "'; style-src 'self' 'nonce-",
		cspPost: "'; img-src " + img +
			"; connect-src " + connect +
			"; font-src 'self'; object-src 'none'; base-uri 'self'; " +
			"form-action 'self'; frame-ancestors 'none'",
		hsts: "max-age=" + strconv.Itoa(maxAge) + "; includeSubDomains; preload",
		static: map[string]string{
			HeaderFrameOptions:      "DENY",
			HeaderContentTypeOpts:   "nosniff",
			HeaderReferrerPolicy:    "strict-origin-when-cross-origin",
			HeaderPermissionsPolicy: "camera=(), microphone=(), geolocation=(self), payment=()",
		},
	}
	return b, nil
}

// Build returns the full header set for one response. The nonce must be the
// same value threaded to any inline script or style rendered for the request;
// a mismatch silently breaks the page, so nonce propagation is a hard
// contract with the rendering layer.
func (b *Builder) Build(nonce string) http.Header {
	h := make(http.Header, len(b.static)+2)
	b.Apply(h, nonce)
	return h
}

// Apply writes the header set into an existing header map.
func (b *Builder) Apply(h http.Header, nonce string) {
	h.Set(HeaderCSP, b.cspPre+nonce+b.cspMid+nonce+b.cspPost)
	for name, value := range b.static {
		h.Set(name, value)
	}
	if b.production {
		h.Set(HeaderHSTS, b.hsts)
	}
}
