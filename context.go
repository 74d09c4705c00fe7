package authgate

import (
	"context"

	"github.com/croplane/authgate/jwt"
)

type claimsContextKey struct{}
type nonceContextKey struct{}

// WithClaims attaches validated session claims to ctx. The middleware adapter
// does this on every allowed protected request so downstream handlers can
// read the subject, tenant, and roles without re-parsing the token.
func WithClaims(ctx context.Context, claims *jwt.Claims) context.Context {
	return context.WithValue(ctx, claimsContextKey{}, claims)
}

// ClaimsFromContext returns the claims attached by [WithClaims], if any.
func ClaimsFromContext(ctx context.Context) (*jwt.Claims, bool) {
	if ctx == nil {
		return nil, false
	}
	claims, ok := ctx.Value(claimsContextKey{}).(*jwt.Claims)
	return claims, ok
}

// WithNonce attaches the per-request CSP nonce to ctx. The rendering layer is
// contractually required to echo this exact value into every inline script
// and style tag of the response it produces for the request.
func WithNonce(ctx context.Context, nonce string) context.Context {
	return context.WithValue(ctx, nonceContextKey{}, nonce)
}

// NonceFromContext returns the nonce attached by [WithNonce].
func NonceFromContext(ctx context.Context) (string, bool) {
	if ctx == nil {
		return "", false
	}
	nonce, ok := ctx.Value(nonceContextKey{}).(string)
	return nonce, ok && nonce != ""
}
