package reconcile

import (
	"sort"

	"github.com/shopspring/decimal"

	"sitebooks/internal/models"
)

// RunningBalances folds the transactions in date order into a per-transaction
// account balance. Payments and negative amounts reduce the carried balance,
// everything else (charges, fees) increases it. The fold always runs over a
// date-ascending copy — ties keep their original relative order — so the
// result is independent of however the caller has the list sorted for
// display. Balances are keyed by transaction id.
func RunningBalances(txns []models.CardTransaction) map[int]decimal.Decimal {
	sorted := make([]models.CardTransaction, len(txns))
	copy(sorted, txns)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].DateOnly().Before(sorted[j].DateOnly())
	})

	balances := make(map[int]decimal.Decimal, len(sorted))
	balance := decimal.Zero
	for _, t := range sorted {
		amt := t.Amount.Abs()
		if t.TransactionKind == models.KindPayment || t.Amount.IsNegative() {
			balance = balance.Sub(amt)
		} else {
			balance = balance.Add(amt)
		}
		balances[t.ID] = balance
	}
	return balances
}
