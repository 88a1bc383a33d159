// Package phone turns free-form phone strings into dialable digit strings.
package phone

import "strings"

// CountryCode is prepended to numbers that do not already start with it (Brazil).
const CountryCode = "55"

// Normalize strips every non-digit and enforces the country code prefix.
//
// A local number that happens to start with "55" is taken as already prefixed and left
// alone. There is no length validation; malformed numbers are rejected, if at all, by
// the messaging provider.
func Normalize(raw string) string {
	var b strings.Builder
	b.Grow(len(raw) + len(CountryCode))
	for _, r := range raw {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}

	digits := b.String()
	if strings.HasPrefix(digits, CountryCode) {
		return digits
	}
	return CountryCode + digits
}
