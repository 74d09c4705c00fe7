package jwt

import (
	"errors"
	"testing"
	"time"

	gjwt "github.com/golang-jwt/jwt/v5"
)

func signWith(t *testing.T, method gjwt.SigningMethod, key interface{}, claims Claims) string {
	t.Helper()
	token, err := gjwt.NewWithClaims(method, claims).SignedString(key)
	if err != nil {
		t.Fatalf("sign token: %v", err)
	}
	return token
}

func baseClaims(use string) Claims {
	return Claims{
		TenantID: "tenant-1",
		Use:      use,
		RegisteredClaims: gjwt.RegisteredClaims{
			Subject:   "user-1",
			ID:        "jti-1",
			Issuer:    "authgate",
			Audience:  gjwt.ClaimStrings{"app"},
			ExpiresAt: gjwt.NewNumericDate(time.Now().Add(time.Minute)),
			IssuedAt:  gjwt.NewNumericDate(time.Now()),
		},
	}
}

func TestParseRejectsWrongAlgorithm(t *testing.T) {
	m := newTestManager(t)

	token := signWith(t, gjwt.SigningMethodHS256, []byte("secret-secret-secret-secret"), baseClaims(UseAccess))
	if _, err := m.Parse(token, UseAccess); err == nil {
		t.Fatal("expected HS256 token to be rejected by ed25519 manager")
	}
}

func TestParseRejectsForeignKey(t *testing.T) {
	m := newTestManager(t)
	_, otherPriv := newEdKeys(t)

	token := signWith(t, gjwt.SigningMethodEdDSA, otherPriv, baseClaims(UseAccess))
	if _, err := m.Parse(token, UseAccess); !errors.Is(err, ErrSignatureInvalid) {
		t.Fatalf("expected ErrSignatureInvalid for foreign key, got %v", err)
	}
}

func TestParseRejectsExpiredBeyondLeeway(t *testing.T) {
	pub, priv := newEdKeys(t)
	m, err := NewManager(Config{
		AccessTTL:     time.Minute,
		RefreshTTL:    time.Hour,
		SigningMethod: MethodEd25519,
		PrivateKey:    priv,
		PublicKey:     pub,
		Issuer:        "authgate",
		Audience:      "app",
		Leeway:        30 * time.Second,
	})
	if err != nil {
		t.Fatalf("new manager: %v", err)
	}

	claims := baseClaims(UseAccess)
	claims.ExpiresAt = gjwt.NewNumericDate(time.Now().Add(-15 * time.Second))
	claims.IssuedAt = gjwt.NewNumericDate(time.Now().Add(-time.Minute))
	within := signWith(t, gjwt.SigningMethodEdDSA, priv, claims)
	if _, err := m.Parse(within, UseAccess); err != nil {
		t.Fatalf("expected token within leeway to pass: %v", err)
	}

	claims.ExpiresAt = gjwt.NewNumericDate(time.Now().Add(-2 * time.Minute))
	claims.IssuedAt = gjwt.NewNumericDate(time.Now().Add(-3 * time.Minute))
	expired := signWith(t, gjwt.SigningMethodEdDSA, priv, claims)
	if _, err := m.Parse(expired, UseAccess); !errors.Is(err, ErrExpired) {
		t.Fatalf("expected ErrExpired, got %v", err)
	}
}

func TestParseRejectsIssuerAndAudienceMismatch(t *testing.T) {
	pub, priv := newEdKeys(t)
	m, err := NewManager(Config{
		AccessTTL:     time.Minute,
		RefreshTTL:    time.Hour,
		SigningMethod: MethodEd25519,
		PrivateKey:    priv,
		PublicKey:     pub,
		Issuer:        "authgate",
		Audience:      "app",
	})
	if err != nil {
		t.Fatalf("new manager: %v", err)
	}

	claims := baseClaims(UseAccess)
	claims.Issuer = "other"
	badIssuer := signWith(t, gjwt.SigningMethodEdDSA, priv, claims)
	if _, err := m.Parse(badIssuer, UseAccess); !errors.Is(err, ErrIssuerMismatch) {
		t.Fatalf("expected ErrIssuerMismatch, got %v", err)
	}

	claims = baseClaims(UseAccess)
	claims.Audience = gjwt.ClaimStrings{"other-app"}
	badAudience := signWith(t, gjwt.SigningMethodEdDSA, priv, claims)
	if _, err := m.Parse(badAudience, UseAccess); !errors.Is(err, ErrAudienceMismatch) {
		t.Fatalf("expected ErrAudienceMismatch, got %v", err)
	}
}

func TestParseRejectsMissingIdentityClaims(t *testing.T) {
	pub, priv := newEdKeys(t)
	m, err := NewManager(Config{
		AccessTTL:     time.Minute,
		RefreshTTL:    time.Hour,
		SigningMethod: MethodEd25519,
		PrivateKey:    priv,
		PublicKey:     pub,
		Issuer:        "authgate",
		Audience:      "app",
	})
	if err != nil {
		t.Fatalf("new manager: %v", err)
	}

	claims := baseClaims(UseAccess)
	claims.Subject = ""
	noSubject := signWith(t, gjwt.SigningMethodEdDSA, priv, claims)
	if _, err := m.Parse(noSubject, UseAccess); !errors.Is(err, ErrMissingClaim) {
		t.Fatalf("expected ErrMissingClaim for missing subject, got %v", err)
	}

	claims = baseClaims(UseAccess)
	claims.TenantID = ""
	noTenant := signWith(t, gjwt.SigningMethodEdDSA, priv, claims)
	if _, err := m.Parse(noTenant, UseAccess); !errors.Is(err, ErrMissingClaim) {
		t.Fatalf("expected ErrMissingClaim for missing tenant, got %v", err)
	}

	claims = baseClaims(UseRefresh)
	claims.FamilyID = ""
	noFamily := signWith(t, gjwt.SigningMethodEdDSA, priv, claims)
	if _, err := m.Parse(noFamily, UseRefresh); !errors.Is(err, ErrMissingClaim) {
		t.Fatalf("expected ErrMissingClaim for refresh without family, got %v", err)
	}
}

func TestParseRejectsFarFutureIAT(t *testing.T) {
	pub, priv := newEdKeys(t)
	m, err := NewManager(Config{
		AccessTTL:     time.Minute,
		RefreshTTL:    time.Hour,
		SigningMethod: MethodEd25519,
		PrivateKey:    priv,
		PublicKey:     pub,
		Issuer:        "authgate",
		Audience:      "app",
		MaxFutureIAT:  time.Minute,
	})
	if err != nil {
		t.Fatalf("new manager: %v", err)
	}

	claims := baseClaims(UseAccess)
	claims.IssuedAt = gjwt.NewNumericDate(time.Now().Add(time.Hour))
	claims.ExpiresAt = gjwt.NewNumericDate(time.Now().Add(2 * time.Hour))
	token := signWith(t, gjwt.SigningMethodEdDSA, priv, claims)
	if _, err := m.Parse(token, UseAccess); !errors.Is(err, ErrNotYetValid) {
		t.Fatalf("expected ErrNotYetValid for far-future iat, got %v", err)
	}
}

func TestParseUnknownKidFails(t *testing.T) {
	pub1, priv1 := newEdKeys(t)
	pub2, _ := newEdKeys(t)
	m, err := NewManager(Config{
		AccessTTL:     time.Minute,
		RefreshTTL:    time.Hour,
		SigningMethod: MethodEd25519,
		PrivateKey:    priv1,
		PublicKey:     pub1,
		Issuer:        "authgate",
		Audience:      "app",
		KeyID:         "k1",
		VerifyKeys: map[string][]byte{
			"k1": pub1,
		},
	})
	if err != nil {
		t.Fatalf("new manager: %v", err)
	}

	tok := gjwt.NewWithClaims(gjwt.SigningMethodEdDSA, baseClaims(UseAccess))
	tok.Header["kid"] = "k2"
	unknown, err := tok.SignedString(priv1)
	if err != nil {
		t.Fatalf("sign token: %v", err)
	}
	if _, err := m.Parse(unknown, UseAccess); err == nil {
		t.Fatal("expected unknown kid failure")
	}

	tok2 := gjwt.NewWithClaims(gjwt.SigningMethodEdDSA, baseClaims(UseAccess))
	tok2.Header["kid"] = "k1"
	good, _ := tok2.SignedString(priv1)
	if _, err := m.Parse(good, UseAccess); err != nil {
		t.Fatalf("expected known kid token to pass: %v", err)
	}

	m2, err := NewManager(Config{
		AccessTTL:     time.Minute,
		RefreshTTL:    time.Hour,
		SigningMethod: MethodEd25519,
		PublicKey:     pub2,
		Issuer:        "authgate",
		Audience:      "app",
		VerifyKeys:    map[string][]byte{"k2": pub2},
	})
	if err != nil {
		t.Fatalf("new manager: %v", err)
	}
	if _, err := m2.Parse(good, UseAccess); err == nil {
		t.Fatal("expected parse failure with mismatched key set")
	}
}

func TestManagerRejectsVerifyKeyWithoutKid(t *testing.T) {
	pub, _ := newEdKeys(t)
	if _, err := NewManager(Config{
		AccessTTL:     time.Minute,
		RefreshTTL:    time.Hour,
		SigningMethod: MethodEd25519,
		PublicKey:     pub,
		Issuer:        "authgate",
		Audience:      "app",
		VerifyKeys:    map[string][]byte{" ": pub},
	}); err == nil {
		t.Fatal("expected empty kid in verify key set to be rejected")
	}
}
