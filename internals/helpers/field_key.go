package helper

import (
	"strings"

	"github.com/google/uuid"
)

// FieldKey turns a field label into its stable join key: ASCII-only,
// lower-case, runs of anything that is not [a-z0-9] collapsed to a single
// underscore, trimmed at both ends. Labels written entirely in a non-Latin
// script (the districts label fields in Devanagari) slug to nothing, so an
// empty result falls back to a random key.
//
// The key is derived once at field creation and never regenerated on label
// edits; ValueEntry rows join on it by string equality.
func FieldKey(label string) string {
	base := strings.ToLower(strings.TrimSpace(label))

	var b strings.Builder
	lastUnderscore := false
	for _, r := range base {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			b.WriteRune(r)
			lastUnderscore = false
		case r > 127:
			// non-ASCII (Devanagari etc.) is stripped outright, not
			// transliterated, and does not produce a separator
		default:
			if !lastUnderscore {
				b.WriteByte('_')
				lastUnderscore = true
			}
		}
	}

	key := strings.Trim(b.String(), "_")
	if key == "" {
		key = "field_" + RandomKeySuffix(6)
	}
	return key
}

// RandomKeySuffix returns n hex characters for key fallbacks and
// collision-retry suffixes.
func RandomKeySuffix(n int) string {
	s := strings.ReplaceAll(uuid.NewString(), "-", "")
	if n > len(s) {
		n = len(s)
	}
	return s[:n]
}
