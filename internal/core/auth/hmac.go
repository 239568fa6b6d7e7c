package auth

import (
	"crypto/hmac"
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"strings"
)

const keyPrefix = "pk"

// ParseAPIKey splits pk-v1-<secret_id>-<random_data> into its parts.
// secret_id is 32 hex chars and random_data 64 hex chars.
func ParseAPIKey(key string) (secretID, randomData string, err error) {
	parts := strings.Split(key, "-")
	if len(parts) != 4 || parts[0] != keyPrefix || parts[1] != "v1" {
		return "", "", ErrInvalidKeyFormat
	}

	secretID, randomData = parts[2], parts[3]
	if len(secretID) != 32 || len(randomData) != 64 {
		return "", "", ErrInvalidKeyFormat
	}
	if !isLowerHex(secretID) || !isLowerHex(randomData) {
		return "", "", ErrInvalidKeyFormat
	}
	return secretID, randomData, nil
}

func isLowerHex(s string) bool {
	for _, c := range s {
		if !((c >= '0' && c <= '9') || (c >= 'a' && c <= 'f')) {
			return false
		}
	}
	return true
}

// ComputeHMAC returns the hex HMAC-SHA256 of apiKey under secret. Only this
// digest is stored.
func ComputeHMAC(secret []byte, apiKey string) string {
	h := hmac.New(sha256.New, secret)
	h.Write([]byte(apiKey))
	return hex.EncodeToString(h.Sum(nil))
}

// FormatAPIKey builds a key from its parts.
func FormatAPIKey(secretID, randomData string) string {
	return fmt.Sprintf("%s-v1-%s-%s", keyPrefix, secretID, randomData)
}

// GenerateAPIKey returns a fresh key bound to secretID with 256 random bits.
func GenerateAPIKey(secretID string) (string, error) {
	buf := make([]byte, 32)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("failed to read random bytes: %w", err)
	}
	return FormatAPIKey(secretID, hex.EncodeToString(buf)), nil
}
