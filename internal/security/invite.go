package security

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"strings"

	"golang.org/x/crypto/blake2b"
)

const inviteCodeBytes = 16

// GenerateInviteCode returns a random 32 character hex code
func GenerateInviteCode() (string, error) {
	return randomHex(inviteCodeBytes)
}

// HashInviteCode digests an invite code for storage. Codes are compared
// case-insensitively since they are hex.
func HashInviteCode(code string) string {
	sum := blake2b.Sum256([]byte(strings.ToLower(strings.TrimSpace(code))))
	return hex.EncodeToString(sum[:])
}

// GenerateObjectName returns a random 32 character hex name for uploads
func GenerateObjectName() (string, error) {
	return randomHex(16)
}

func randomHex(n int) (string, error) {
	b := make([]byte, n)
	if _, err := rand.Read(b); err != nil {
		return "", fmt.Errorf("failed to read random bytes: %w", err)
	}
	return hex.EncodeToString(b), nil
}

// GenerateState returns a random value for OAuth state parameters
func GenerateState() (string, error) {
	return randomHex(16)
}
