package utils

import (
	"crypto/rand"
	"encoding/base64"
	"strings"

	"github.com/google/uuid"
)

// RedemptionCodeLength is the length of generated redemption codes.
const RedemptionCodeLength = 8

// GenerateRedemptionCode returns a short, human-presentable redemption
// code: the first 8 characters of a UUIDv4, uppercased. Uniqueness is
// enforced by the storage layer's unique index; on collision the caller
// generates a fresh code and retries.
func GenerateRedemptionCode() string {
	return strings.ToUpper(uuid.NewString()[:RedemptionCodeLength])
}

// GenerateRandomString generates a URL-safe random string of the
// specified length.
func GenerateRandomString(length int) (string, error) {
	b := make([]byte, length)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return base64.URLEncoding.EncodeToString(b)[:length], nil
}
