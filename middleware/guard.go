package middleware

import (
	"net/http"

	authgate "github.com/croplane/authgate"
)

// Guard returns middleware that gates every request through gate.Evaluate.
// Redirects and rejections terminate here; allowed requests continue with
// claims and the CSP nonce attached to the context.
func Guard(gate *authgate.Gate) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if gate == nil {
				http.Error(w, "request rejected", http.StatusServiceUnavailable)
				return
			}

			decision := gate.Evaluate(r.Context(), r)
			if decision.Write(w, r) {
				return
			}

			ctx := r.Context()
			if decision.Nonce != "" {
				ctx = authgate.WithNonce(ctx, decision.Nonce)
			}
			if decision.Claims != nil {
				ctx = authgate.WithClaims(ctx, decision.Claims)
			}
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
