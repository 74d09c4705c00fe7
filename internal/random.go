package internal

import (
	"crypto/rand"
	"encoding/base64"
)

const (
	// NonceSize is the raw byte length of a CSP nonce before encoding.
	NonceSize = 16
	// CSRFSecretSize is the raw byte length of a CSRF double-submit secret.
	CSRFSecretSize = 32
)

// NewNonce returns a fresh base64url-encoded CSP nonce.
func NewNonce() (string, error) {
	var raw [NonceSize]byte
	if _, err := rand.Read(raw[:]); err != nil {
		return "", err
	}
	return base64.RawURLEncoding.EncodeToString(raw[:]), nil
}

// NewCSRFSecret returns a fresh base64url-encoded CSRF token value.
func NewCSRFSecret() (string, error) {
	var raw [CSRFSecretSize]byte
	if _, err := rand.Read(raw[:]); err != nil {
		return "", err
	}
	return base64.RawURLEncoding.EncodeToString(raw[:]), nil
}
