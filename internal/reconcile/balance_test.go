package reconcile

import (
	"testing"

	"sitebooks/internal/models"
)

func TestRunningBalances(t *testing.T) {
	charge1 := models.CardTransaction{ID: 1, TransactionDate: "2025-01-01", Amount: dec("100"), TransactionKind: models.KindCharge}
	payment := models.CardTransaction{ID: 2, TransactionDate: "2025-01-02", Amount: dec("40"), TransactionKind: models.KindPayment}
	charge2 := models.CardTransaction{ID: 3, TransactionDate: "2025-01-03", Amount: dec("10"), TransactionKind: models.KindCharge}

	want := map[int]string{1: "100", 2: "60", 3: "70"}

	// The fold must be independent of input order.
	orders := [][]models.CardTransaction{
		{charge1, payment, charge2},
		{charge2, charge1, payment},
		{payment, charge2, charge1},
	}
	for _, txns := range orders {
		got := RunningBalances(txns)
		for id, w := range want {
			if !got[id].Equal(dec(w)) {
				t.Fatalf("balance[%d] = %s, want %s", id, got[id], w)
			}
		}
	}
}

func TestRunningBalancesNegativeAmountSubtracts(t *testing.T) {
	txns := []models.CardTransaction{
		{ID: 1, TransactionDate: "2025-01-01", Amount: dec("200"), TransactionKind: models.KindCharge},
		{ID: 2, TransactionDate: "2025-01-02", Amount: dec("-50"), TransactionKind: models.KindRefund},
	}
	got := RunningBalances(txns)
	if !got[2].Equal(dec("150")) {
		t.Fatalf("negative refund should subtract, balance = %s", got[2])
	}
}

func TestRunningBalancesSameDayKeepsInputOrder(t *testing.T) {
	txns := []models.CardTransaction{
		{ID: 1, TransactionDate: "2025-01-05", Amount: dec("30"), TransactionKind: models.KindCharge},
		{ID: 2, TransactionDate: "2025-01-05", Amount: dec("20"), TransactionKind: models.KindPayment},
	}
	got := RunningBalances(txns)
	if !got[1].Equal(dec("30")) || !got[2].Equal(dec("10")) {
		t.Fatalf("stable sort should keep same-day order: got %s then %s", got[1], got[2])
	}
}

func TestRunningBalancesEmpty(t *testing.T) {
	if got := RunningBalances(nil); len(got) != 0 {
		t.Fatalf("expected empty map, got %d entries", len(got))
	}
}
