// Package headers builds the per-request security header set: CSP with a fresh
// nonce, HSTS, X-Frame-Options, X-Content-Type-Options, Referrer-Policy, and
// Permissions-Policy.
//
// The static parts of every header are assembled once at startup; per request
// only the nonce is spliced in. Misconfiguration fails loudly in NewBuilder,
// never per-request.
package headers
