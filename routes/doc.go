// Package routes classifies inbound request paths as bypassed, public, or protected.
//
// Classification is longest-prefix match over a small ordered table built once at
// startup. Anything the table does not name is Protected: new routes are gated by
// default and must be opted out explicitly.
//
// # What this package must NOT do
//
//   - Inspect methods, cookies, or headers; the path is the whole input.
//   - Grow per-request state; the table is immutable after construction.
package routes
