// Package secret normalizes pasted or decoded shared secrets.
package secret

import (
	"encoding/hex"
	"strings"

	"golang.org/x/crypto/blake2b"

	"github.com/bashhack/otpimport/internal/failure"
)

// Sanitize drops every character outside [0-9A-Za-z], keeping case.
// Spaces, dashes and padding that authenticator sites sprinkle into displayed
// keys all disappear. An empty result is an InvalidSecret failure.
func Sanitize(s string) (string, error) {
	clean := Strip(s)
	if clean == "" {
		return "", failure.New(failure.InvalidSecret, "The secret code is not valid")
	}
	return clean, nil
}

// Strip is Sanitize without the emptiness check
func Strip(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for i := 0; i < len(s); i++ {
		if isAlnum(s[i]) {
			b.WriteByte(s[i])
		}
	}
	return b.String()
}

// IsClean reports whether s is non-empty and already sanitized
func IsClean(s string) bool {
	if s == "" {
		return false
	}
	for i := 0; i < len(s); i++ {
		if !isAlnum(s[i]) {
			return false
		}
	}
	return true
}

func isAlnum(c byte) bool {
	return (c >= '0' && c <= '9') || (c >= 'A' && c <= 'Z') || (c >= 'a' && c <= 'z')
}

// Fingerprint returns a short, non-reversible identifier for a secret so logs
// can correlate resolutions without ever carrying the key itself.
func Fingerprint(s string) string {
	if s == "" {
		return ""
	}
	sum := blake2b.Sum256([]byte(s))
	return hex.EncodeToString(sum[:6])
}
