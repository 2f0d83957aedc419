package utils

import (
	"crypto/rand"
	"encoding/hex"
)

// NewOneTimeToken returns an opaque token used for email verification and
// password reset links. 32 random bytes hex-encoded give 64 characters,
// enough that guessing is infeasible while still fitting in a URL path
// segment.
func NewOneTimeToken() (string, error) {
	buf := make([]byte, 32)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return hex.EncodeToString(buf), nil
}
