package reconcile

import (
	"database/sql"

	"github.com/shopspring/decimal"

	"sitebooks/internal/models"
)

// amountEpsilon is the tolerance for comparing a transaction amount against
// the sum of its distribution lines.
var amountEpsilon = decimal.NewFromFloat(0.01)

// IsCoded reports whether a transaction carries enough metadata to be posted
// to the ledger. The persisted coding status is the source of truth: when it
// says coded, that wins regardless of field contents. Otherwise coding is
// inferred structurally from the current field values. IsCoded is a total
// predicate: malformed or partially migrated rows classify as uncoded, they
// never error.
func IsCoded(txn models.CardTransaction, dists []models.Distribution, idx *TemplateIndex) bool {
	if txn.CodingStatus.Valid && txn.CodingStatus.String == models.CodingStatusCoded {
		return true
	}
	return InferCoded(txn, dists, idx)
}

// InferCoded is the structural fallback behind IsCoded, exposed separately so
// the fast path and the inference path stay testable in isolation.
func InferCoded(txn models.CardTransaction, dists []models.Distribution, idx *TemplateIndex) bool {
	if len(dists) > 0 {
		return splitCoded(txn, dists, idx)
	}
	return singleCoded(txn, idx)
}

func splitCoded(txn models.CardTransaction, dists []models.Distribution, idx *TemplateIndex) bool {
	if !txn.VendorID.Valid {
		return false
	}

	sum := decimal.Zero
	attachmentNeeded := false
	for _, d := range dists {
		if !d.JobID.Valid || !d.CostCodeID.Valid || !d.Amount.IsPositive() {
			return false
		}
		tmpl, ok := idx.ByID(int(d.CostCodeID.Int64))
		if !ok {
			// Line references a deleted cost code; legacy data, not an error.
			return false
		}
		sum = sum.Add(d.Amount)
		if idx.AttachmentRequired(lineRef(txn, tmpl)) {
			attachmentNeeded = true
		}
	}

	if sum.Sub(txn.Amount.Abs()).Abs().GreaterThan(amountEpsilon) {
		return false
	}
	if attachmentNeeded && !txn.AttachmentID.Valid {
		return false
	}
	return true
}

func singleCoded(txn models.CardTransaction, idx *TemplateIndex) bool {
	if !txn.VendorID.Valid {
		return false
	}

	var refID int
	switch {
	case txn.JobID.Valid && txn.CostCodeID.Valid:
		refID = int(txn.CostCodeID.Int64)
	case txn.ChartAccountID.Valid:
		refID = int(txn.ChartAccountID.Int64)
	default:
		return false
	}

	var ref LineRef
	if tmpl, ok := idx.ByID(refID); ok {
		ref = lineRef(txn, tmpl)
	} else {
		// Deleted template: resolver falls through to the line's own flag.
		ref = LineRef{AttachmentFlag: bypassFlag(txn)}
	}

	if idx.AttachmentRequired(ref) && !txn.AttachmentID.Valid {
		return false
	}
	return true
}

func lineRef(txn models.CardTransaction, tmpl models.CostCodeTemplate) LineRef {
	ref := LineRef{Code: tmpl.Code, AttachmentFlag: bypassFlag(txn)}
	if tmpl.TypeTag.Valid {
		ref.TypeTag = tmpl.TypeTag.String
	}
	return ref
}

// bypassFlag maps the transaction's bypass checkbox onto the tri-state line
// flag: checked means explicitly not required, unchecked says nothing.
func bypassFlag(txn models.CardTransaction) sql.NullBool {
	if txn.BypassAttachment {
		return sql.NullBool{Bool: false, Valid: true}
	}
	return sql.NullBool{}
}
