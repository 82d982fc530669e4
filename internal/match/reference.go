package match

import (
	"fmt"
	"strings"

	"github.com/kollektivet/rentmatch/internal/models"
)

// minRefLen is the shortest tenant-ID fragment accepted as a reference.
// Shorter fragments collide with ordinary words and feed noise too easily.
const minRefLen = 8

// BuildReferenceCode constructs the token tenants are asked to put in their
// payment message: KK{YYYYMM}{FirstName}{idFragment}, no separators (phone
// keyboards mangle dashes). Only the id fragment is discriminating during
// matching; the rest is for human readability.
func BuildReferenceCode(tenant *models.Tenant, period models.Period) string {
	fragment := tenant.ID
	if len(fragment) > 9 {
		fragment = fragment[:9]
	}
	return fmt.Sprintf("KK%04d%02d%s%s", period.Year, int(period.Month), tenant.FirstName(), fragment)
}

// HasReferenceCode reports whether the transaction's description embeds a
// fragment of the tenant's ID at least minRefLen characters long. Both sides
// are reduced to lowercase alphanumerics first, so casing and separators in
// the message don't matter. Checking the minRefLen-character prefix and
// suffix covers every longer fragment too: any description containing a
// longer prefix necessarily contains the shorter one.
func HasReferenceCode(tx *models.BankTransaction, tenant *models.Tenant) bool {
	id := normalizeToken(tenant.ID)
	if len(id) < minRefLen {
		return false
	}
	desc := normalizeToken(tx.Description)
	if desc == "" {
		return false
	}
	return strings.Contains(desc, id[:minRefLen]) ||
		strings.Contains(desc, id[len(id)-minRefLen:])
}

// normalizeToken lowercases and strips everything but letters and digits.
func normalizeToken(s string) string {
	var b strings.Builder
	for _, r := range strings.ToLower(s) {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') {
			b.WriteRune(r)
		}
	}
	return b.String()
}
