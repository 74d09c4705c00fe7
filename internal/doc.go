// Package internal contains helper utilities that are intentionally private to authgate,
// including secure random generation for CSP nonces, CSRF secrets, and token identifiers.
//
// # Sub-packages
//
//   - audit — async event dispatch (Dispatcher + Sink implementations)
//   - metrics — lock-free counters and latency histograms
//
// # What this package must NOT do
//
//   - Export types that appear in the public authgate API.
//   - Be imported by any package outside the authgate module.
package internal
