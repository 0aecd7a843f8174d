package utils

import (
	"crypto/rand"
	"encoding/hex"
)

// MagicTokenLength is the character length of a magic-link token.
const MagicTokenLength = 64

// GenerateMagicToken returns a cryptographically random 64-character token
// for a magic link.
func GenerateMagicToken() (string, error) {
	token := make([]byte, MagicTokenLength/2)
	if _, err := rand.Read(token); err != nil {
		return "", err
	}
	return hex.EncodeToString(token), nil
}
