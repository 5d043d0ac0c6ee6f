package reconcile

import (
	"strings"
	"time"

	"sitebooks/internal/models"
)

// matchWindow is the widest date gap between a receipt and a transaction that
// still counts as a match (3 days inclusive).
const matchWindow = 3 * 24 * time.Hour

// FindMatches returns the receipts that look like duplicates of the given
// transaction: same amount within a cent, dated within three days, and a
// fuzzy vendor-name overlap. The result is advisory; nothing is assigned
// until a user confirms the match.
func FindMatches(txn models.CardTransaction, receipts []models.Receipt) []models.Receipt {
	var matches []models.Receipt
	txnDate := txn.DateOnly()
	for _, r := range receipts {
		if r.Amount.Sub(txn.Amount).Abs().GreaterThanOrEqual(amountEpsilon) {
			continue
		}
		gap := r.DateOnly().Sub(txnDate)
		if gap < 0 {
			gap = -gap
		}
		if gap > matchWindow {
			continue
		}
		if !vendorNamesOverlap(r.VendorName, txn.Description) {
			continue
		}
		matches = append(matches, r)
	}
	return matches
}

// vendorNamesOverlap is deliberately loose: either name containing the first
// five characters of the other counts, so truncated merchant strings still
// match. Strings shorter than five characters are used whole.
func vendorNamesOverlap(vendor, merchant string) bool {
	v := strings.ToLower(strings.TrimSpace(vendor))
	m := strings.ToLower(strings.TrimSpace(merchant))
	if v == "" || m == "" {
		return false
	}
	return strings.Contains(v, prefix(m)) || strings.Contains(m, prefix(v))
}

func prefix(s string) string {
	if len(s) > 5 {
		return s[:5]
	}
	return s
}
