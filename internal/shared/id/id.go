// Package id generates opaque identifiers: prefixed short IDs for orders and
// sessions, and hex access keys.
package id

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"math/big"
	"strings"
)

const (
	// Base62 alphabet: 0-9, A-Z, a-z
	alphabet = "0123456789ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz"

	// DefaultLength is the default length for generated short IDs.
	DefaultLength = 12

	// AccessKeyBytes is the entropy of an access key; keys render as
	// 2*AccessKeyBytes hex characters.
	AccessKeyBytes = 16
)

// Prefixes for different entity types (Stripe-style).
const (
	PrefixOrder   = "ord"
	PrefixSession = "sess"
)

// Generate creates a random Base62 short ID of the given length.
func Generate(length int) (string, error) {
	if length <= 0 {
		length = DefaultLength
	}

	result := make([]byte, length)
	alphabetLen := big.NewInt(int64(len(alphabet)))

	for i := 0; i < length; i++ {
		num, err := rand.Int(rand.Reader, alphabetLen)
		if err != nil {
			return "", fmt.Errorf("failed to generate random number: %w", err)
		}
		result[i] = alphabet[num.Int64()]
	}

	return string(result), nil
}

// GenerateWithPrefix creates a prefixed ID in the format "prefix_randomstring".
func GenerateWithPrefix(prefix string, length int) (string, error) {
	id, err := Generate(length)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%s_%s", prefix, id), nil
}

// ParsePrefixedID extracts the prefix and short ID from a prefixed ID string.
func ParsePrefixedID(prefixedID string) (prefix, shortID string, err error) {
	parts := strings.SplitN(prefixedID, "_", 2)
	if len(parts) != 2 {
		return "", "", fmt.Errorf("invalid prefixed ID format: %s", prefixedID)
	}
	return parts[0], parts[1], nil
}

// ValidatePrefix checks if the prefixed ID has the expected prefix.
func ValidatePrefix(prefixedID, expectedPrefix string) error {
	prefix, _, err := ParsePrefixedID(prefixedID)
	if err != nil {
		return err
	}
	if prefix != expectedPrefix {
		return fmt.Errorf("invalid prefix: expected %s, got %s", expectedPrefix, prefix)
	}
	return nil
}

// NewOrderID generates a new order ID.
func NewOrderID() (string, error) {
	return GenerateWithPrefix(PrefixOrder, DefaultLength)
}

// NewSessionID generates a new session ID.
func NewSessionID() (string, error) {
	return GenerateWithPrefix(PrefixSession, DefaultLength)
}

// NewAccessKey generates a new access key as lowercase hex.
func NewAccessKey() (string, error) {
	buf := make([]byte, AccessKeyBytes)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("failed to generate access key: %w", err)
	}
	return hex.EncodeToString(buf), nil
}

// MaskKey renders a key safe for listings and logs: first 8 chars plus "...".
func MaskKey(key string) string {
	if len(key) <= 8 {
		return key
	}
	return key[:8] + "..."
}
