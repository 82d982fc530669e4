package match

import (
	"regexp"
	"strings"

	"github.com/kollektivet/rentmatch/internal/models"
)

// defaultCountryCode rewrites local-format numbers for comparison.
// The bank feed and the roster both carry Swedish numbers.
const defaultCountryCode = "46"

// phonePattern tolerates the formats seen in payment descriptions: an
// optional international prefix, then at least eight digits with spaces,
// dashes or parentheses mixed in. The feed's canonical form is
// "from: +46702894437 ...", but manually typed local numbers like
// "070-289 44 37" appear too.
var phonePattern = regexp.MustCompile(`\+?\d[\d\s\-()]{6,}\d`)

const (
	phoneDigitsMin  = 8  // shortest digit run accepted as a phone
	phoneDigitsFull = 10 // a complete local Swedish number
	phoneDigitsMax  = 15 // E.164 upper bound
)

// ExtractPhone pulls the first phone-number-looking token out of a payment
// description. Returns "" when none is found.
func ExtractPhone(description string) string {
	for _, candidate := range phonePattern.FindAllString(description, -1) {
		if phone := trimToPhone(candidate); phone != "" {
			return phone
		}
	}
	return ""
}

// trimToPhone cuts a matched digit run down to one plausible phone number.
// Feed descriptions glue the sender number and a long payment reference into
// one run ("+46702894437 1806326367017854"); once enough digits have
// accumulated, whatever follows the next separator is not part of the number.
func trimToPhone(candidate string) string {
	digits, end := 0, 0
	for i := 0; i < len(candidate); i++ {
		c := candidate[i]
		if c >= '0' && c <= '9' {
			digits++
			end = i + 1
			continue
		}
		if digits >= phoneDigitsFull {
			break
		}
	}
	if digits < phoneDigitsMin || digits > phoneDigitsMax {
		return ""
	}
	return candidate[:end]
}

// PhoneMatches reports whether a phone number extracted from the
// transaction's description normalizes to the tenant's stored number.
func PhoneMatches(tx *models.BankTransaction, tenant *models.Tenant) bool {
	if tenant.Phone == "" {
		return false
	}
	phone := ExtractPhone(tx.Description)
	if phone == "" {
		return false
	}
	return NormalizePhone(phone) == NormalizePhone(tenant.Phone)
}

// NormalizePhone reduces a phone number to bare digits in international
// form: formatting characters stripped, "00" international prefix dropped,
// a single leading "0" (local format) replaced by the country code.
func NormalizePhone(phone string) string {
	var b strings.Builder
	for _, r := range phone {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	digits := b.String()

	switch {
	case strings.HasPrefix(digits, "00"):
		return digits[2:]
	case strings.HasPrefix(digits, "0") && len(digits) > 1:
		return defaultCountryCode + digits[1:]
	default:
		return digits
	}
}
