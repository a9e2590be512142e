package intake

import (
	"regexp"
	"strings"
)

// Australian mobile phone contract: a fixed "+61 " country prefix followed
// by up to 9 digits, displayed in blocks of 3. A leading national trunk "0"
// is stripped so "0412 345 678" and "412 345 678" normalize identically.

const phonePrefix = "+61 "

var (
	nonDigitRe   = regexp.MustCompile(`\D`)
	phoneGroupRe = regexp.MustCompile(`(\d{3})(\d{3})(\d{3})?`)
)

// FormatPhone renders an already-complete number into the canonical
// "+61 4XX XXX XXX" shape. Inputs that are not a full Australian mobile
// (61 4 plus 8 more digits) are returned unchanged, or as the bare prefix
// when empty.
func FormatPhone(raw string) string {
	digits := nonDigitRe.ReplaceAllString(raw, "")
	if digits == "" {
		return phonePrefix
	}
	if !strings.HasPrefix(digits, "614") || len(digits) < 11 {
		if raw == "" {
			return phonePrefix
		}
		return raw
	}
	return phonePrefix + digits[2:5] + " " + digits[5:8] + " " + digits[8:11]
}

// NormalizePhoneInput applies the keystroke-level input contract: force the
// prefix, keep digits only, strip a leading trunk zero, cap at 9 digits and
// group in threes. Grouping only kicks in once six digits are present.
func NormalizePhoneInput(input string) string {
	if !strings.HasPrefix(input, phonePrefix) {
		return phonePrefix
	}
	number := nonDigitRe.ReplaceAllString(input[len(phonePrefix):], "")
	if strings.HasPrefix(number, "0") && len(number) > 1 {
		number = number[1:]
	}
	if len(number) > 9 {
		number = number[:9]
	}
	number = strings.TrimSpace(phoneGroupRe.ReplaceAllString(number, "$1 $2 $3"))
	return phonePrefix + number
}

// validatePhone returns the user-facing error for an intake phone value, or
// empty when the value passes.
func validatePhone(phone string) string {
	if phone == "" || phone == phonePrefix {
		return "Phone number is required"
	}
	if !strings.HasPrefix(phone, phonePrefix+"4") {
		return "Phone number must start with 4 or 04."
	}
	if len(strings.ReplaceAll(phone, " ", "")) < 12 {
		return "Invalid Phone number"
	}
	return ""
}
