package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"

	authgate "github.com/croplane/authgate"
)

func newGuardedGate(t *testing.T) *authgate.Gate {
	t.Helper()
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("miniredis run failed: %v", err)
	}
	t.Cleanup(mr.Close)

	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })

	cfg := authgate.DefaultConfig()
	cfg.JWT.SigningMethod = "hs256"
	cfg.JWT.PrivateKey = []byte("0123456789abcdef0123456789abcdef")
	cfg.JWT.Issuer = "guard-test"
	cfg.JWT.Audience = "app-test"
	cfg.Cookies.Secure = false
	cfg.Security.BaseOrigin = "http://app.test"

	gate, err := authgate.New().WithConfig(cfg).WithRedis(rdb).Build()
	if err != nil {
		t.Fatalf("gate build failed: %v", err)
	}
	t.Cleanup(gate.Close)
	return gate
}

func TestGuardRedirectTerminatesChain(t *testing.T) {
	gate := newGuardedGate(t)

	reached := false
	handler := Guard(gate)(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
		reached = true
	}))

	w := httptest.NewRecorder()
	handler.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/dashboard", nil))

	if reached {
		t.Fatal("downstream handler must not run on redirect")
	}
	if w.Code != http.StatusFound {
		t.Fatalf("status = %d, want 302", w.Code)
	}
	if w.Header().Get("Location") == "" {
		t.Fatal("redirect must carry a Location header")
	}
}

func TestGuardRejectTerminatesChain(t *testing.T) {
	gate := newGuardedGate(t)

	reached := false
	handler := Guard(gate)(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
		reached = true
	}))

	w := httptest.NewRecorder()
	handler.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/settings", nil))

	if reached {
		t.Fatal("downstream handler must not run on reject")
	}
	if w.Code != http.StatusForbidden {
		t.Fatalf("status = %d, want 403", w.Code)
	}
}

func TestGuardAllowInjectsContext(t *testing.T) {
	gate := newGuardedGate(t)

	_, cookies, err := gate.EstablishSession(context.Background(), "user-1", "tenant-1", []string{"member"})
	if err != nil {
		t.Fatalf("establish session: %v", err)
	}

	var gotSubject, gotNonce string
	handler := Guard(gate)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if claims, ok := authgate.ClaimsFromContext(r.Context()); ok {
			gotSubject = claims.Subject
		}
		if nonce, ok := authgate.NonceFromContext(r.Context()); ok {
			gotNonce = nonce
		}
		w.WriteHeader(http.StatusOK)
	}))

	r := httptest.NewRequest(http.MethodGet, "/dashboard", nil)
	for _, c := range cookies {
		r.AddCookie(c)
	}
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, r)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", w.Code)
	}
	if gotSubject != "user-1" {
		t.Fatalf("subject = %q, want user-1", gotSubject)
	}
	if gotNonce == "" {
		t.Fatal("nonce must reach the downstream handler")
	}
	if w.Header().Get("Content-Security-Policy") == "" {
		t.Fatal("security headers must be written on allow")
	}
}

func TestGuardBypassSkipsHeaders(t *testing.T) {
	gate := newGuardedGate(t)

	handler := Guard(gate)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if _, ok := authgate.NonceFromContext(r.Context()); ok {
			t.Error("bypass requests must not carry a nonce")
		}
		w.WriteHeader(http.StatusOK)
	}))

	w := httptest.NewRecorder()
	handler.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/healthz", nil))

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", w.Code)
	}
	if w.Header().Get("Content-Security-Policy") != "" {
		t.Fatal("bypass responses must not carry security headers")
	}
}

func TestGuardNilGateFailsClosed(t *testing.T) {
	handler := Guard(nil)(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
		t.Error("downstream handler must not run without a gate")
	}))

	w := httptest.NewRecorder()
	handler.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))

	if w.Code != http.StatusServiceUnavailable {
		t.Fatalf("status = %d, want 503", w.Code)
	}
}
