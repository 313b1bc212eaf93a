// Package sanitize normalizes researcher-supplied identifiers and validates
// filesystem paths before they reach the state store.
//
// Case, wave, code, and document identifiers must match ^[a-z0-9_]{1,64}$ so
// they stay safe as JSON map keys and journal references.
package sanitize

import (
	"crypto/sha256"
	"encoding/hex"
	"strings"
)

const (
	// MaxIdentifierLength bounds sanitized identifiers.
	MaxIdentifierLength = 64

	// hashSuffixLength is "_" plus eight hex characters.
	hashSuffixLength = 9

	// DefaultIdentifier is used when sanitization produces an empty result.
	DefaultIdentifier = "default"
)

// Identifier normalizes a free-form name into a stable identifier.
//
// Rules applied:
//   - lowercases
//   - replaces invalid characters with underscores
//   - collapses runs of underscores and trims the ends
//   - truncates over-long results with a hash suffix to keep uniqueness
//   - returns DefaultIdentifier when nothing survives
//
// Examples:
//
//	"Hospital A / Wave 2" -> "hospital_a_wave_2"
//	"Coping (adaptive)"   -> "coping_adaptive"
//	"" or "!!!"           -> "default"
func Identifier(s string) string {
	if s == "" {
		return DefaultIdentifier
	}

	s = strings.ToLower(s)
	var b strings.Builder
	b.Grow(len(s))
	for _, r := range s {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') || r == '_' {
			b.WriteRune(r)
		} else {
			b.WriteRune('_')
		}
	}

	sanitized := b.String()
	for strings.Contains(sanitized, "__") {
		sanitized = strings.ReplaceAll(sanitized, "__", "_")
	}
	sanitized = strings.Trim(sanitized, "_")

	if sanitized == "" {
		return DefaultIdentifier
	}
	if len(sanitized) > MaxIdentifierLength {
		sanitized = truncateWithHash(sanitized)
	}
	return sanitized
}

// truncateWithHash shortens s to MaxIdentifierLength, appending an 8-char
// hash of the original so distinct long names stay distinct.
func truncateWithHash(s string) string {
	hash := sha256.Sum256([]byte(s))
	suffix := "_" + hex.EncodeToString(hash[:])[:8]
	truncated := strings.TrimRight(s[:MaxIdentifierLength-hashSuffixLength], "_")
	return truncated + suffix
}
