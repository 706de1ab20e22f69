// Package normalize canonicalizes raw phone numbers for contact matching.
package normalize

import "strings"

const countryPrefix = "+33"

// PhoneNumber maps a raw sender address to the canonical comparable form: a
// literal +33 prefix becomes a single leading 0, anything else passes through
// unchanged. This is deliberately not E.164 normalization; contact matching
// depends on the stored numbers being written the same narrow way.
func PhoneNumber(raw string) string {
	if strings.HasPrefix(raw, countryPrefix) {
		return "0" + raw[len(countryPrefix):]
	}
	return raw
}

// ForDisplay groups a number with a space every three digits for UI surfaces.
func ForDisplay(number string) string {
	var sb strings.Builder
	for i, r := range number {
		if i > 0 && i%3 == 0 {
			sb.WriteByte(' ')
		}
		sb.WriteRune(r)
	}
	return sb.String()
}
