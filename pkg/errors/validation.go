package errors

import (
	"regexp"
	"strings"
	"unicode"
)

// symbolRegex matches archetype and crew symbols as used by the game API
// (lowercase words joined by underscores, optional rarity suffix digits).
var symbolRegex = regexp.MustCompile(`^[a-z0-9][a-z0-9_]*$`)

// ValidateSymbol validates an archetype or crew symbol supplied by a user.
// Symbols end up in cache keys and request URLs, so the rules are strict:
//   - No empty symbols
//   - Maximum length of 128 characters
//   - Lowercase letters, digits and underscores only
func ValidateSymbol(symbol string) error {
	if symbol == "" {
		return New(ErrCodeInvalidSymbol, "symbol cannot be empty")
	}
	if len(symbol) > 128 {
		return New(ErrCodeInvalidSymbol, "symbol too long (max 128 characters)")
	}
	if !symbolRegex.MatchString(symbol) {
		return New(ErrCodeInvalidSymbol, "invalid symbol: %q", symbol)
	}
	return nil
}

// ValidateDigest validates a recipe tree digest before it is used as a
// cache key. Digests are opaque strings issued by the server; only control
// characters, path separators and excessive length are rejected.
func ValidateDigest(digest string) error {
	if digest == "" {
		return New(ErrCodeInvalidDigest, "digest cannot be empty")
	}
	if len(digest) > 256 {
		return New(ErrCodeInvalidDigest, "digest too long (max 256 characters)")
	}
	for _, r := range digest {
		if unicode.IsControl(r) {
			return New(ErrCodeInvalidDigest, "digest contains control characters")
		}
	}
	if strings.ContainsAny(digest, "/\\") || strings.Contains(digest, "..") {
		return New(ErrCodeInvalidDigest, "digest contains path characters")
	}
	return nil
}

// ValidateURL validates a URL string for safety.
// It ensures the URL has a safe scheme (http or https).
func ValidateURL(rawURL string) error {
	if rawURL == "" {
		return New(ErrCodeInvalidInput, "URL cannot be empty")
	}

	if !strings.HasPrefix(rawURL, "http://") && !strings.HasPrefix(rawURL, "https://") {
		return New(ErrCodeInvalidInput, "URL must use http or https scheme")
	}

	return nil
}
