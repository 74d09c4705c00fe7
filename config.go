package authgate

import (
	"errors"
	"net/http"
	"net/url"
	"os"
	"strings"
	"time"

	"github.com/croplane/authgate/routes"
)

// Config is the root configuration tree for the gate.
//
// Config instances are intended to be configured during initialization and then
// treated as immutable. No component reads environment variables internally;
// use [ConfigFromEnv] once at process start when env-driven config is wanted.
type Config struct {
	JWT        JWTConfig
	CSRF       CSRFConfig
	Cookies    CookieConfig
	Routes     []routes.Rule
	Headers    HeadersConfig
	Session    SessionConfig
	Revocation RevocationConfig
	Audit      AuditConfig
	Metrics    MetricsConfig
	Security   SecurityConfig
}

/*
====================================
JWT CONFIG
====================================
*/

// JWTConfig carries token signing and verification parameters.
type JWTConfig struct {
	AccessTTL     time.Duration
	RefreshTTL    time.Duration
	SigningMethod string // "ed25519" (default), "hs256" optional
	PrivateKey    []byte
	PublicKey     []byte
	Issuer        string
	Audience      string
	Leeway        time.Duration
	KeyID         string
	VerifyKeys    map[string][]byte
}

/*
====================================
CSRF CONFIG
====================================
*/

// CSRFConfig carries double-submit validation parameters.
type CSRFConfig struct {
	CookieName  string
	HeaderName  string
	TokenTTL    time.Duration
	ExemptPaths []string
}

/*
====================================
COOKIE CONFIG
====================================
*/

// CookieConfig names the session cookies and their shared attributes.
type CookieConfig struct {
	AccessName       string
	RefreshName      string
	LastActivityName string
	Path             string
	Domain           string
	Secure           bool
	SameSite         http.SameSite
}

/*
====================================
SESSION CONFIG
====================================
*/

// SessionConfig carries session lifecycle parameters enforced by the gate.
type SessionConfig struct {
	// IdleTimeout bounds the gap between consecutive requests before the
	// session is treated as abandoned. Zero disables idle tracking.
	IdleTimeout time.Duration
}

/*
====================================
REVOCATION CONFIG
====================================
*/

// RevocationConfig carries revocation store parameters.
type RevocationConfig struct {
	RedisPrefix string
	// OpTimeout caps every store round-trip on the request path.
	OpTimeout time.Duration
}

/*
====================================
HEADERS CONFIG
====================================
*/

// HeadersConfig carries the static security-header policy.
type HeadersConfig struct {
	ConnectHosts []string
	ImageHosts   []string
	HSTSMaxAge   int
}

// AuditConfig controls the async audit pipeline.
type AuditConfig struct {
	Enabled    bool
	BufferSize int
	DropIfFull bool
}

// MetricsConfig controls in-process metrics collection.
type MetricsConfig struct {
	Enabled                 bool
	EnableLatencyHistograms bool
}

/*
====================================
SECURITY CONFIG
====================================
*/

// SecurityConfig carries deployment posture and the store-outage policy.
type SecurityConfig struct {
	ProductionMode bool
	// FailClosed selects the revocation-store outage policy for access-token
	// checks: true redirects to login, false accepts the token and alerts.
	// Refresh rotation always fails closed; single-use cannot be enforced
	// without the store.
	FailClosed bool
	// BaseOrigin is the canonical origin ("https://app.croplane.io") used
	// for redirect sanitization.
	BaseOrigin string
	// LoginPath receives unauthenticated redirects.
	LoginPath string
}

/*
====================================
DEFAULT CONFIG
====================================
*/

func defaultConfig() Config {
	return Config{
		JWT: JWTConfig{
			AccessTTL:     15 * time.Minute,
			RefreshTTL:    7 * 24 * time.Hour,
			SigningMethod: "ed25519",
			Leeway:        30 * time.Second,
		},
		CSRF: CSRFConfig{
			CookieName: "csrf_token",
			HeaderName: "X-CSRF-Token",
			TokenTTL:   24 * time.Hour,
			ExemptPaths: []string{
				"/login",
				"/register",
				"/password-reset",
				"/webhooks/",
			},
		},
		Cookies: CookieConfig{
			AccessName:       "access_token",
			RefreshName:      "refresh_token",
			LastActivityName: "last_activity",
			Path:             "/",
			Secure:           true,
			SameSite:         http.SameSiteStrictMode,
		},
		// Bypass is reserved for health and static-asset surfaces. API
		// prefixes stay under the gate; delegating one to another guard is
		// a per-deployment opt-in, never a default.
		Routes: []routes.Rule{
			{Prefix: "/", Kind: routes.KindPublic},
			{Prefix: "/login", Kind: routes.KindPublic},
			{Prefix: "/register", Kind: routes.KindPublic},
			{Prefix: "/password-reset", Kind: routes.KindPublic},
			{Prefix: "/healthz", Kind: routes.KindBypass},
			{Prefix: "/static/", Kind: routes.KindBypass},
			{Prefix: "/assets/", Kind: routes.KindBypass},
			{Prefix: "/admin", Kind: routes.KindProtected, Roles: []string{"admin"}},
		},
		Headers: HeadersConfig{},
		Session: SessionConfig{
			IdleTimeout: 30 * time.Minute,
		},
		Revocation: RevocationConfig{
			RedisPrefix: "ag",
			OpTimeout:   50 * time.Millisecond,
		},
		Audit: AuditConfig{
			Enabled:    false,
			BufferSize: 1024,
			DropIfFull: true,
		},
		Metrics: MetricsConfig{
			Enabled:                 false,
			EnableLatencyHistograms: false,
		},
		Security: SecurityConfig{
			ProductionMode: false,
			FailClosed:     false,
			BaseOrigin:     "http://localhost:3000",
			LoginPath:      "/login",
		},
	}
}

// DefaultConfig returns the documented defaults. Callers mutate the copy
// before handing it to [Builder.WithConfig].
func DefaultConfig() Config {
	return defaultConfig()
}

// ConfigFromEnv overlays the documented environment variables onto the
// defaults: AUTHGATE_SIGNING_SECRET, AUTHGATE_ISSUER, AUTHGATE_AUDIENCE,
// AUTHGATE_ENV, AUTHGATE_BASE_ORIGIN. Redis connection strings belong to the
// caller constructing the client, not to this package.
func ConfigFromEnv() Config {
	cfg := defaultConfig()
	if secret := os.Getenv("AUTHGATE_SIGNING_SECRET"); secret != "" {
		cfg.JWT.SigningMethod = "hs256"
		cfg.JWT.PrivateKey = []byte(secret)
	}
	if issuer := os.Getenv("AUTHGATE_ISSUER"); issuer != "" {
		cfg.JWT.Issuer = issuer
	}
	if audience := os.Getenv("AUTHGATE_AUDIENCE"); audience != "" {
		cfg.JWT.Audience = audience
	}
	if env := os.Getenv("AUTHGATE_ENV"); env == "production" || env == "prod" {
		cfg.Security.ProductionMode = true
	}
	if origin := os.Getenv("AUTHGATE_BASE_ORIGIN"); origin != "" {
		cfg.Security.BaseOrigin = origin
	}
	return cfg
}

/*
====================================
VALIDATION
====================================
*/

// Validate checks structural invariants and, in production mode, refuses
// configurations that weaken the deployed posture. It runs once at startup;
// per-request code assumes a valid config.
func (c *Config) Validate() error {
	if c.JWT.AccessTTL <= 0 || c.JWT.RefreshTTL <= 0 {
		return errors.New("JWT TTLs must be positive")
	}
	if c.JWT.RefreshTTL < c.JWT.AccessTTL {
		return errors.New("refresh TTL must not be shorter than access TTL")
	}
	if c.JWT.Leeway < 0 || c.JWT.Leeway > 2*time.Minute {
		return errors.New("JWT leeway out of range")
	}
	if strings.TrimSpace(c.JWT.Issuer) == "" || strings.TrimSpace(c.JWT.Audience) == "" {
		return errors.New("JWT issuer and audience are required")
	}

	if c.CSRF.TokenTTL <= 0 {
		return errors.New("CSRF token TTL must be positive")
	}
	for _, p := range c.CSRF.ExemptPaths {
		if !strings.HasPrefix(p, "/") {
			return errors.New("CSRF exempt path must start with /: " + p)
		}
	}

	if c.Session.IdleTimeout < 0 {
		return errors.New("idle timeout must not be negative")
	}
	if c.Revocation.OpTimeout < 0 || c.Revocation.OpTimeout > time.Second {
		return errors.New("revocation op timeout out of range")
	}

	if !strings.HasPrefix(c.Security.LoginPath, "/") {
		return errors.New("login path must start with /")
	}
	origin, err := url.Parse(c.Security.BaseOrigin)
	if err != nil || origin.Scheme == "" || origin.Host == "" {
		return errors.New("base origin must be an absolute URL")
	}

	if c.Security.ProductionMode {
		if c.JWT.SigningMethod == "hs256" && len(c.JWT.PrivateKey) < 32 {
			return errors.New("production hs256 secret must be at least 32 bytes")
		}
		if !c.Cookies.Secure {
			return errors.New("production requires Secure cookies")
		}
		if origin.Scheme != "https" {
			return errors.New("production base origin must be https")
		}
		if !c.Security.FailClosed && !c.Audit.Enabled {
			// Fail-open is only acceptable when paired with alerting.
			return errors.New("production fail-open requires audit to be enabled")
		}
	}

	return nil
}

func cloneConfig(cfg Config) Config {
	out := cfg

	out.JWT.PrivateKey = append([]byte(nil), cfg.JWT.PrivateKey...)
	out.JWT.PublicKey = append([]byte(nil), cfg.JWT.PublicKey...)
	if cfg.JWT.VerifyKeys != nil {
		out.JWT.VerifyKeys = make(map[string][]byte, len(cfg.JWT.VerifyKeys))
		for kid, key := range cfg.JWT.VerifyKeys {
			out.JWT.VerifyKeys[kid] = append([]byte(nil), key...)
		}
	}

	out.CSRF.ExemptPaths = append([]string(nil), cfg.CSRF.ExemptPaths...)
	out.Headers.ConnectHosts = append([]string(nil), cfg.Headers.ConnectHosts...)
	out.Headers.ImageHosts = append([]string(nil), cfg.Headers.ImageHosts...)

	if cfg.Routes != nil {
		out.Routes = make([]routes.Rule, len(cfg.Routes))
		for i, r := range cfg.Routes {
			out.Routes[i] = routes.Rule{
				Prefix: r.Prefix,
				Kind:   r.Kind,
				Roles:  append([]string(nil), r.Roles...),
			}
		}
	}

	return out
}
