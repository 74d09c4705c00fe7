package authgate

import (
	"net/http"
	"testing"
	"time"
)

func validTestConfig() Config {
	cfg := DefaultConfig()
	cfg.JWT.SigningMethod = "hs256"
	cfg.JWT.PrivateKey = []byte("0123456789abcdef0123456789abcdef")
	cfg.JWT.Issuer = "authgate-test"
	cfg.JWT.Audience = "app-test"
	return cfg
}

func TestDefaultConfigValues(t *testing.T) {
	cfg := DefaultConfig()

	if cfg.JWT.AccessTTL != 15*time.Minute {
		t.Fatalf("access TTL = %v, want 15m", cfg.JWT.AccessTTL)
	}
	if cfg.JWT.RefreshTTL != 7*24*time.Hour {
		t.Fatalf("refresh TTL = %v, want 168h", cfg.JWT.RefreshTTL)
	}
	if cfg.CSRF.CookieName != "csrf_token" || cfg.CSRF.HeaderName != "X-CSRF-Token" {
		t.Fatalf("unexpected CSRF wire names: %q %q", cfg.CSRF.CookieName, cfg.CSRF.HeaderName)
	}
	if !cfg.Cookies.Secure || cfg.Cookies.SameSite != http.SameSiteStrictMode {
		t.Fatal("cookies must default to Secure + SameSite=Strict")
	}
	if cfg.Session.IdleTimeout != 30*time.Minute {
		t.Fatalf("idle timeout = %v, want 30m", cfg.Session.IdleTimeout)
	}
	if cfg.Revocation.OpTimeout != 50*time.Millisecond {
		t.Fatalf("op timeout = %v, want 50ms", cfg.Revocation.OpTimeout)
	}
	if cfg.Security.LoginPath != "/login" {
		t.Fatalf("login path = %q, want /login", cfg.Security.LoginPath)
	}
	if cfg.Security.FailClosed {
		t.Fatal("access checks default to fail-open")
	}
}

func TestValidateAcceptsDefaultsWithSecret(t *testing.T) {
	cfg := validTestConfig()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("expected valid config, got %v", err)
	}
}

func TestValidateRejectsStructuralErrors(t *testing.T) {
	mutations := map[string]func(*Config){
		"zero access TTL":      func(c *Config) { c.JWT.AccessTTL = 0 },
		"refresh < access":     func(c *Config) { c.JWT.RefreshTTL = time.Minute; c.JWT.AccessTTL = time.Hour },
		"excessive leeway":     func(c *Config) { c.JWT.Leeway = 5 * time.Minute },
		"missing issuer":       func(c *Config) { c.JWT.Issuer = " " },
		"missing audience":     func(c *Config) { c.JWT.Audience = "" },
		"zero csrf TTL":        func(c *Config) { c.CSRF.TokenTTL = 0 },
		"bad exempt path":      func(c *Config) { c.CSRF.ExemptPaths = []string{"login"} },
		"negative idle":        func(c *Config) { c.Session.IdleTimeout = -time.Minute },
		"huge op timeout":      func(c *Config) { c.Revocation.OpTimeout = 2 * time.Second },
		"relative login path":  func(c *Config) { c.Security.LoginPath = "login" },
		"relative base origin": func(c *Config) { c.Security.BaseOrigin = "app.test" },
	}

	for name, mutate := range mutations {
		cfg := validTestConfig()
		mutate(&cfg)
		if err := cfg.Validate(); err == nil {
			t.Fatalf("%s: expected validation error", name)
		}
	}
}

func TestConfigFromEnv(t *testing.T) {
	t.Setenv("AUTHGATE_SIGNING_SECRET", "env-secret-0123456789abcdef012345")
	t.Setenv("AUTHGATE_ISSUER", "env-issuer")
	t.Setenv("AUTHGATE_AUDIENCE", "env-audience")
	t.Setenv("AUTHGATE_ENV", "production")
	t.Setenv("AUTHGATE_BASE_ORIGIN", "https://app.env.example")

	cfg := ConfigFromEnv()
	if cfg.JWT.SigningMethod != "hs256" {
		t.Fatalf("signing method = %q, want hs256", cfg.JWT.SigningMethod)
	}
	if string(cfg.JWT.PrivateKey) != "env-secret-0123456789abcdef012345" {
		t.Fatal("secret not taken from environment")
	}
	if cfg.JWT.Issuer != "env-issuer" || cfg.JWT.Audience != "env-audience" {
		t.Fatal("issuer/audience not taken from environment")
	}
	if !cfg.Security.ProductionMode {
		t.Fatal("AUTHGATE_ENV=production must enable production mode")
	}
	if cfg.Security.BaseOrigin != "https://app.env.example" {
		t.Fatalf("base origin = %q", cfg.Security.BaseOrigin)
	}
}

func TestCloneConfigIsolation(t *testing.T) {
	cfg := validTestConfig()
	cfg.Routes[0].Roles = []string{"role-a"}
	cfg.JWT.VerifyKeys = map[string][]byte{"k1": []byte("key-bytes")}

	clone := cloneConfig(cfg)

	cfg.JWT.PrivateKey[0] = 'X'
	cfg.JWT.VerifyKeys["k1"][0] = 'X'
	cfg.CSRF.ExemptPaths[0] = "/mutated"
	cfg.Routes[0].Roles[0] = "mutated"

	if clone.JWT.PrivateKey[0] == 'X' {
		t.Fatal("private key must be copied")
	}
	if clone.JWT.VerifyKeys["k1"][0] == 'X' {
		t.Fatal("verify keys must be copied")
	}
	if clone.CSRF.ExemptPaths[0] == "/mutated" {
		t.Fatal("exempt paths must be copied")
	}
	if clone.Routes[0].Roles[0] == "mutated" {
		t.Fatal("route roles must be copied")
	}
}
