// Package middleware exposes an HTTP adapter that runs every inbound request
// through the authgate decision machine.
//
// [Guard] calls Gate.Evaluate, materializes redirect/reject decisions, and on
// pass-through injects the validated claims and the CSP nonce into the request
// context for downstream handlers and the rendering layer.
//
// # Architecture boundaries
//
// This package translates HTTP semantics into Gate calls. It does NOT implement
// authentication logic itself — all decisions are delegated to Gate.Evaluate.
//
// # What this package must NOT do
//
//   - Parse or create JWTs directly (delegates to Gate).
//   - Access Redis (Gate handles I/O).
//   - Make authorization decisions beyond materializing the Decision.
package middleware
