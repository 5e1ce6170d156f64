package model

import "strings"

// NormalizeFlavor canonicalizes a display title into a flavor key:
// lowercased, trimmed, runs of spaces and punctuation collapsed to hyphens.
// "Caramel Cashew" -> "caramel-cashew".
func NormalizeFlavor(title string) string {
	var b strings.Builder
	b.Grow(len(title))
	lastHyphen := true // suppress a leading hyphen
	for _, r := range strings.ToLower(strings.TrimSpace(title)) {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			b.WriteRune(r)
			lastHyphen = false
		default:
			if !lastHyphen {
				b.WriteByte('-')
				lastHyphen = true
			}
		}
	}
	return strings.TrimSuffix(b.String(), "-")
}
