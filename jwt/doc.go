// Package jwt manages session-token issuance and verification using configured signing keys
// and strict validation semantics suitable for low-latency request-gate paths.
//
// Verification is a pure function of (token, config, clock): it never touches the network.
// Revocation lookups are layered on top by the gate, which maps a structurally valid but
// revoked token to its own distinct error kind.
package jwt
