// Package webhook implements HMAC-SHA256 signing of outbound delivery
// payloads, the same primitive the service's inbound webhook verification
// used before this system's webhook surface was flipped outbound-only.
package webhook

import (
	"crypto/hmac"
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
)

const alphanumeric = "ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz0123456789"

// GenerateSecret returns a random 32-character alphanumeric string prefixed
// "whsec_", the format a registered webhook endpoint's signing secret is
// generated and returned in once.
func GenerateSecret() (string, error) {
	raw, err := randomAlphanumeric(32)
	if err != nil {
		return "", err
	}
	return "whsec_" + raw, nil
}

func randomAlphanumeric(n int) (string, error) {
	buf := make([]byte, n)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	out := make([]byte, n)
	for i, b := range buf {
		out[i] = alphanumeric[int(b)%len(alphanumeric)]
	}
	return string(out), nil
}

// Sign returns the lowercase hex HMAC-SHA256 digest of payload keyed by
// secret.
func Sign(secret string, payload []byte) string {
	h := hmac.New(sha256.New, []byte(secret))
	h.Write(payload)
	return hex.EncodeToString(h.Sum(nil))
}

// Verify reports whether signature is the correct HMAC-SHA256 digest of
// payload under secret, using a constant-time comparison so a receiver
// checking signatures on inbound requests from this system can't learn
// anything about the secret from comparison timing.
func Verify(secret string, payload []byte, signature string) bool {
	expected := Sign(secret, payload)
	return hmac.Equal([]byte(expected), []byte(signature))
}
