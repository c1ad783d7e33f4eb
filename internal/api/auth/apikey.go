package auth

import (
	"crypto/rand"
	"encoding/hex"
	"strings"

	"golang.org/x/crypto/bcrypt"
)

const apiKeyBytes = 24

// GenerateAPIKey returns a random key and its bcrypt hash for APP_API_KEY_HASH.
func GenerateAPIKey() (key string, hash string, err error) {
	buf := make([]byte, apiKeyBytes)
	if _, err := rand.Read(buf); err != nil {
		return "", "", err
	}
	key = "tf_" + hex.EncodeToString(buf)
	hash, err = HashAPIKey(key)
	if err != nil {
		return "", "", err
	}
	return key, hash, nil
}

// HashAPIKey wraps bcrypt.GenerateFromPassword for API key storage.
func HashAPIKey(key string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(key), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}

// VerifyAPIKey wraps bcrypt.CompareHashAndPassword for API key checks.
func VerifyAPIKey(hash, key string) bool {
	if key == "" {
		return false
	}
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(key)) == nil
}

// APIKeyFromHeaders reads the key from "Authorization: Bearer" or X-API-Key.
func APIKeyFromHeaders(authorization, apiKeyHeader string) string {
	if key := strings.TrimSpace(apiKeyHeader); key != "" {
		return key
	}
	scheme, token, ok := strings.Cut(strings.TrimSpace(authorization), " ")
	if !ok || !strings.EqualFold(scheme, "Bearer") {
		return ""
	}
	return strings.TrimSpace(token)
}
