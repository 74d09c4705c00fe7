package authgate

import "errors"

var (
	// ErrTokenMalformed reports a structurally invalid token.
	ErrTokenMalformed = errors.New("token malformed")
	// ErrTokenSignatureInvalid reports a bad signature, disallowed algorithm, or unknown key.
	ErrTokenSignatureInvalid = errors.New("token signature invalid")
	// ErrTokenExpired reports an exp claim in the past beyond configured leeway.
	ErrTokenExpired = errors.New("token expired")
	// ErrTokenNotYetValid reports an nbf or iat claim in the future.
	ErrTokenNotYetValid = errors.New("token not yet valid")
	// ErrTokenIssuerMismatch reports an unexpected iss claim.
	ErrTokenIssuerMismatch = errors.New("token issuer mismatch")
	// ErrTokenAudienceMismatch reports an unexpected aud claim.
	ErrTokenAudienceMismatch = errors.New("token audience mismatch")
	// ErrTokenMissingClaim reports an absent required claim (subject, tenant, jti).
	ErrTokenMissingClaim = errors.New("token missing required claim")
	// ErrTokenRevoked reports a structurally valid token condemned by the
	// revocation store. Logged distinctly from cryptographic failures.
	ErrTokenRevoked = errors.New("token revoked")
	// ErrCsrfCookieMissing reports an absent CSRF cookie on a state-changing request.
	ErrCsrfCookieMissing = errors.New("csrf cookie missing")
	// ErrCsrfHeaderMissing reports an absent CSRF header on a state-changing request.
	ErrCsrfHeaderMissing = errors.New("csrf header missing")
	// ErrCsrfMismatch reports cookie/header CSRF values that do not match.
	ErrCsrfMismatch = errors.New("csrf token mismatch")
	// ErrRefreshReuse reports presentation of an already-consumed refresh
	// token; the whole family is condemned when this fires.
	ErrRefreshReuse = errors.New("refresh token reuse detected")
	// ErrRevocationStoreUnavailable reports an unreachable revocation
	// backend. An infrastructure fault: alert on it, never bucket it with
	// client-caused rejections.
	ErrRevocationStoreUnavailable = errors.New("revocation store unavailable")
	// ErrRedirectTargetInvalid reports a returnTo candidate that failed
	// same-origin sanitization.
	ErrRedirectTargetInvalid = errors.New("redirect target invalid")
	// ErrPermissionDenied reports an authenticated session lacking a route's
	// required role.
	ErrPermissionDenied = errors.New("permission denied")
	// ErrGateNotReady reports use of a Gate that was not built via Builder.
	ErrGateNotReady = errors.New("gate not initialized")
)
