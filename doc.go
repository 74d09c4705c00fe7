// Package authgate provides the authentication request gate for the croplane
// farm-management platform: per-request JWT verification with Redis-backed
// revocation, CSRF double-submit validation, route classification, security
// header injection (CSP nonces, HSTS), and open-redirect-safe login redirects.
//
// The package is designed for concurrent server workloads: Gate methods are
// safe to call from multiple goroutines after initialization through
// [Builder.Build]. All per-request state (nonce, decision) is request-scoped;
// the only cross-request state lives in the external revocation store.
//
// # Architecture boundaries
//
// authgate is the public surface. It exposes [Gate], [Builder], [Config],
// [Decision], and value types (MetricsSnapshot, SecurityReport). Component
// logic lives in the jwt, csrf, routes, headers, redirect, and revocation
// subpackages; async plumbing lives under internal/ and is never exported.
//
// # What this package must NOT do
//
//   - Render responses. Evaluate produces a [Decision]; the HTTP adapter in
//     middleware/ (or the caller) materializes it.
//   - Reveal validation detail to clients in production. Error kinds are
//     logged and audited server-side only.
//   - Retry revocation-store calls inline. A failed lookup follows the
//     configured fail-open or fail-closed policy exactly once.
//
// # Performance contract
//
// Evaluate is the hot path. Verification, CSRF comparison, and header
// construction are bounded-time and allocation-light; the single network
// round-trip is the revocation lookup, capped by Revocation.OpTimeout.
package authgate
