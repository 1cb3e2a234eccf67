// Package phone holds the one canonical phone normalization routine.
// Ingestion and lookup must both go through Normalize so that stored
// keys and query keys always agree.
package phone

import "strings"

const countryPrefix = "62"

// Normalize strips every non-digit character and forces the Indonesian
// country prefix: a leading "0" is replaced with "62", and anything not
// already starting with "62" gets it prepended. Empty input normalizes
// to the empty string.
func Normalize(raw string) string {
	var b strings.Builder

	for _, r := range raw {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}

	clean := b.String()
	if clean == "" {
		return ""
	}

	switch {
	case strings.HasPrefix(clean, "0"):
		return countryPrefix + clean[1:]
	case !strings.HasPrefix(clean, countryPrefix):
		return countryPrefix + clean
	}

	return clean
}
