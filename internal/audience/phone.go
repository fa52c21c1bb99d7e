package audience

import "strings"

// MinPhoneDigits is the shortest digit-only phone number accepted for dispatch.
const MinPhoneDigits = 10

// NormalizePhone strips every non-digit character from raw.
func NormalizePhone(raw string) string {
	var b strings.Builder
	b.Grow(len(raw))
	for _, r := range raw {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// IsValidPhone reports whether raw has at least MinPhoneDigits digits once normalized.
func IsValidPhone(raw string) bool {
	return len(NormalizePhone(raw)) >= MinPhoneDigits
}
