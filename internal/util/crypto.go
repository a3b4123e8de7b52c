package util

import (
	"crypto/rand"
	"encoding/base64"
	"encoding/hex"
)

// inviteTokenBytes gives invite tokens 256 bits of entropy.
const inviteTokenBytes = 32

// CryptoRandomBytes generates cryptographically secure random bytes
func CryptoRandomBytes(length int) ([]byte, error) {
	buf := make([]byte, length)
	_, err := rand.Read(buf)
	return buf, err
}

// CryptoRandomString generates a random hex string
func CryptoRandomString(length int) (string, error) {
	bytes, err := CryptoRandomBytes((length + 1) / 2)
	if err != nil {
		return "", err
	}
	return hex.EncodeToString(bytes)[:length], nil
}

// NewInviteToken generates a URL-safe secret suitable for use as an invite
// token. Collisions are caught by the store's unique index, but with 256
// bits of entropy they do not occur in practice.
func NewInviteToken() (string, error) {
	bytes, err := CryptoRandomBytes(inviteTokenBytes)
	if err != nil {
		return "", err
	}
	return base64.RawURLEncoding.EncodeToString(bytes), nil
}
