package reconcile

import (
	"database/sql"
	"testing"

	"github.com/shopspring/decimal"

	"sitebooks/internal/models"
)

func nullInt(v int64) sql.NullInt64 {
	return sql.NullInt64{Int64: v, Valid: true}
}

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func testTemplates() *TemplateIndex {
	return NewTemplateIndex([]models.CostCodeTemplate{
		{ID: 1, Code: "01-100", AttachmentRequired: nullBool(true)},
		{ID: 2, Code: "01-200", AttachmentRequired: nullBool(false)},
		{ID: 3, Code: "4510"}, // unspecified, defaults to required
	})
}

func TestIsCodedPersistedStatusShortCircuits(t *testing.T) {
	// No vendor, no references: structurally uncoded, but the persisted
	// status is the source of truth.
	txn := models.CardTransaction{ID: 1, Amount: dec("50"), CodingStatus: nullStr(models.CodingStatusCoded)}

	if !IsCoded(txn, nil, testTemplates()) {
		t.Fatal("persisted coded status must win regardless of field contents")
	}
	if InferCoded(txn, nil, testTemplates()) {
		t.Fatal("structural inference should still say uncoded")
	}
}

func TestIsCodedUnknownStatusFallsThrough(t *testing.T) {
	txn := models.CardTransaction{
		ID:             1,
		Amount:         dec("50"),
		VendorID:       nullInt(7),
		ChartAccountID: nullInt(2), // 01-200, attachment waived
		CodingStatus:   nullStr("migrating"),
	}
	if !IsCoded(txn, nil, testTemplates()) {
		t.Fatal("legacy status value should fall through to structural inference")
	}
}

func TestSingleCoded(t *testing.T) {
	idx := testTemplates()
	tests := []struct {
		name string
		txn  models.CardTransaction
		want bool
	}{
		{
			"job and cost code with attachment",
			models.CardTransaction{Amount: dec("120.50"), VendorID: nullInt(1), JobID: nullInt(4), CostCodeID: nullInt(1), AttachmentID: nullInt(9)},
			true,
		},
		{
			"attachment required but missing",
			models.CardTransaction{Amount: dec("120.50"), VendorID: nullInt(1), JobID: nullInt(4), CostCodeID: nullInt(1)},
			false,
		},
		{
			"attachment waived by template",
			models.CardTransaction{Amount: dec("120.50"), VendorID: nullInt(1), ChartAccountID: nullInt(2)},
			true,
		},
		{
			"bypass flag waives missing attachment",
			models.CardTransaction{Amount: dec("120.50"), VendorID: nullInt(1), JobID: nullInt(4), CostCodeID: nullInt(1), BypassAttachment: true},
			true,
		},
		{
			"no vendor",
			models.CardTransaction{Amount: dec("120.50"), ChartAccountID: nullInt(2)},
			false,
		},
		{
			"job without cost code and no account",
			models.CardTransaction{Amount: dec("120.50"), VendorID: nullInt(1), JobID: nullInt(4)},
			false,
		},
		{
			"deleted template defaults to required",
			models.CardTransaction{Amount: dec("120.50"), VendorID: nullInt(1), ChartAccountID: nullInt(99)},
			false,
		},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if got := IsCoded(tc.txn, nil, idx); got != tc.want {
				t.Fatalf("IsCoded() = %v, want %v", got, tc.want)
			}
		})
	}
}

func TestSplitCoded(t *testing.T) {
	idx := testTemplates()
	base := models.CardTransaction{Amount: dec("-100.00"), VendorID: nullInt(1), AttachmentID: nullInt(5)}

	lines := func(amounts ...string) []models.Distribution {
		var out []models.Distribution
		for i, a := range amounts {
			out = append(out, models.Distribution{
				ID:         i + 1,
				JobID:      nullInt(int64(10 + i)),
				CostCodeID: nullInt(2),
				Amount:     dec(a),
			})
		}
		return out
	}

	t.Run("sum matches abs amount", func(t *testing.T) {
		if !IsCoded(base, lines("60.00", "40.00"), idx) {
			t.Fatal("expected coded")
		}
	})

	t.Run("sum off by 0.02 fails", func(t *testing.T) {
		if IsCoded(base, lines("60.00", "40.02"), idx) {
			t.Fatal("epsilon violation must classify as uncoded")
		}
	})

	t.Run("sum off by exactly 0.01 passes", func(t *testing.T) {
		if !IsCoded(base, lines("60.00", "40.01"), idx) {
			t.Fatal("a one-cent rounding difference is within tolerance")
		}
	})

	t.Run("line missing job", func(t *testing.T) {
		ds := lines("60.00", "40.00")
		ds[1].JobID = sql.NullInt64{}
		if IsCoded(base, ds, idx) {
			t.Fatal("expected uncoded")
		}
	})

	t.Run("zero amount line", func(t *testing.T) {
		ds := lines("100.00", "0.00")
		if IsCoded(base, ds, idx) {
			t.Fatal("expected uncoded")
		}
	})

	t.Run("deleted cost code classifies uncoded", func(t *testing.T) {
		ds := lines("60.00", "40.00")
		ds[0].CostCodeID = nullInt(404)
		if IsCoded(base, ds, idx) {
			t.Fatal("expected uncoded, not a panic or error")
		}
	})

	t.Run("any line requiring attachment is enough", func(t *testing.T) {
		txn := base
		txn.AttachmentID = sql.NullInt64{}
		ds := lines("60.00", "40.00")
		// Second line switches to a code that requires an attachment; one
		// requiring line forces the attachment even though the first waives it.
		ds[1].CostCodeID = nullInt(1)
		if IsCoded(txn, ds, idx) {
			t.Fatal("one requiring line must force the attachment")
		}
		if !IsCoded(base, ds, idx) {
			t.Fatal("with the attachment present the split is coded")
		}
	})

	t.Run("no requiring lines, no attachment needed", func(t *testing.T) {
		txn := base
		txn.AttachmentID = sql.NullInt64{}
		if !IsCoded(txn, lines("60.00", "40.00"), idx) {
			t.Fatal("all lines waived, attachment should not be demanded")
		}
	})

	t.Run("missing vendor", func(t *testing.T) {
		txn := base
		txn.VendorID = sql.NullInt64{}
		if IsCoded(txn, lines("60.00", "40.00"), idx) {
			t.Fatal("expected uncoded")
		}
	})
}
