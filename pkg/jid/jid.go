// Package jid canonicalizes the heterogeneous chat identifiers that
// arrive from spreadsheet exports and webhook payloads. Phone-based
// contacts end in the individual suffix, group chats in the group
// suffix; everything the normalizer cannot classify passes through
// unchanged.
package jid

import (
	"strings"
	"unicode"
)

const (
	// GroupSuffix marks a group chat identifier.
	GroupSuffix = "@g.us"
	// ContactSuffix marks an individual contact identifier.
	ContactSuffix = "@c.us"

	// minPhoneDigits is the minimum digit count for a value to be
	// treated as a phone number.
	minPhoneDigits = 10
)

// ExpandScientificNotation rewrites an `e+` scientific-notation string
// into the literal digit sequence it represents. Spreadsheet exports
// render long numeric IDs this way, and parsing them as floats loses
// precision, so the expansion works purely on the digit strings.
func ExpandScientificNotation(s string) string {
	lower := strings.ToLower(s)
	idx := strings.Index(lower, "e+")
	if idx < 0 {
		return s
	}

	mantissa := s[:idx]
	exponent := 0
	for _, r := range lower[idx+2:] {
		if !unicode.IsDigit(r) {
			return s
		}
		exponent = exponent*10 + int(r-'0')
	}

	integerPart, fractionalPart, _ := strings.Cut(mantissa, ".")
	digits := integerPart + fractionalPart
	shift := exponent - len(fractionalPart)

	if shift >= 0 {
		return digits + strings.Repeat("0", shift)
	}

	// A decimal result never happens for phone IDs but keep the math exact.
	split := len(digits) + shift
	if split < 0 {
		split = 0
	}
	return digits[:split] + "." + digits[split:]
}

// Normalize converts an arbitrary identifier value into its canonical
// messaging form. The empty string return means the input was invalid
// and the record should be dropped.
//
// Inputs that fail every rule are returned unchanged. When the same
// contact shows up in two raw formats (one bare, one suffixed) this
// fallback can yield two distinct identifiers for one real contact;
// that lossy behavior is accepted rather than guessed around.
func Normalize(id string) string {
	idString := strings.TrimSpace(id)
	if idString == "" {
		return ""
	}

	idString = ExpandScientificNotation(idString)

	if strings.HasSuffix(idString, GroupSuffix) {
		return idString
	}
	if strings.HasSuffix(idString, ContactSuffix) {
		return idString
	}

	numberPart, _, _ := strings.Cut(idString, "@")
	cleaned := DigitsOnly(numberPart)
	if len(cleaned) >= minPhoneDigits {
		return cleaned + ContactSuffix
	}

	if strings.Contains(idString, "-") && !strings.Contains(idString, "@") {
		return idString + GroupSuffix
	}

	return idString
}

// IsGroup reports whether a normalized identifier addresses a group chat.
func IsGroup(id string) bool {
	return strings.Contains(id, GroupSuffix)
}

// PhonePart returns the portion of an identifier before any suffix.
func PhonePart(id string) string {
	part, _, _ := strings.Cut(id, "@")
	return part
}

// DigitsOnly strips everything but decimal digits from a phone-like value.
func DigitsOnly(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for _, r := range s {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	return b.String()
}
