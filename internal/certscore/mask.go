package certscore

import "strings"

// unknownValue is the sentinel shown wherever a feature could not be
// extracted.
const unknownValue = "Unknown"

// MaskIdentifier formats a sensitive identifier for display, preserving a
// short prefix and suffix and masking the interior. Short identifiers (six
// characters or fewer) show only the first and last character around a fixed
// three-star mask; longer ones keep three leading characters, two or three
// trailing ones depending on length, and at most six stars in between.
func MaskIdentifier(identifier string) string {
	number := strings.TrimSpace(identifier)
	if number == "" {
		return unknownValue
	}

	if len(number) <= 6 {
		return number[:1] + "***" + number[len(number)-1:]
	}

	prefixLen := 3
	suffixLen := 2
	if len(number) >= 12 {
		suffixLen = 3
	}

	maskedLen := len(number) - prefixLen - suffixLen
	if maskedLen > 6 {
		maskedLen = 6
	}
	return number[:prefixLen] + strings.Repeat("*", maskedLen) + number[len(number)-suffixLen:]
}
