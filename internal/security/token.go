package security

import (
	"crypto/rand"
	"encoding/base64"
	"fmt"
)

// sessionTokenBytes is 128 bits of entropy, enough to make collisions a
// non-concern for an in-memory session store.
const sessionTokenBytes = 16

// NewSessionToken returns an opaque, URL-safe session token.
func NewSessionToken() (string, error) {
	buf := make([]byte, sessionTokenBytes)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("generate session token: %w", err)
	}
	return base64.RawURLEncoding.EncodeToString(buf), nil
}
