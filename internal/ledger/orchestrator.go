package ledger

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"sitebooks/internal/models"
	"sitebooks/internal/reconcile"
	"sitebooks/pkg/utils"
)

// PostOutcome is the tagged result for one transaction id in a batch. Every
// id handed to PostBatch comes back as exactly one outcome, posted or failed.
type PostOutcome struct {
	TransactionID  int    `json:"transaction_id"`
	Posted         bool   `json:"posted"`
	JournalEntryID int64  `json:"journal_entry_id,omitempty"`
	Error          string `json:"error,omitempty"`
}

type BatchResult struct {
	Results []PostOutcome `json:"results"`
}

func (r BatchResult) PostedCount() int {
	n := 0
	for _, o := range r.Results {
		if o.Posted {
			n++
		}
	}
	return n
}

func (r BatchResult) FailedCount() int {
	return len(r.Results) - r.PostedCount()
}

// Errors returns the failure messages in input order, for display.
func (r BatchResult) Errors() []string {
	var msgs []string
	for _, o := range r.Results {
		if !o.Posted {
			msgs = append(msgs, o.Error)
		}
	}
	return msgs
}

// Orchestrator posts batches of coded transactions to the general ledger.
// Each transaction is its own unit of work: one rejection never aborts its
// siblings.
type Orchestrator struct {
	store       Store
	poster      Poster
	postTimeout time.Duration
}

func NewOrchestrator(store Store, poster Poster) *Orchestrator {
	return &Orchestrator{
		store:       store,
		poster:      poster,
		postTimeout: 20 * time.Second,
	}
}

// PostBatch re-validates every id as coded-and-unposted, submits the eligible
// ones to the ledger independently, and aggregates the outcomes. Ineligible
// ids are reported as failures, never silently dropped.
func (o *Orchestrator) PostBatch(ctx context.Context, companyID int, ids []int) BatchResult {
	result := BatchResult{Results: make([]PostOutcome, 0, len(ids))}

	templates, err := o.store.Templates(ctx, companyID)
	if err != nil {
		// Without the template snapshot the classifier would misjudge
		// attachment requirements, so the whole batch aborts.
		utils.Logger.Errorf("failed to load cost code templates for company %d: %v", companyID, err)
		for _, id := range ids {
			result.Results = append(result.Results, failed(id, "failed to load cost code templates"))
		}
		return result
	}
	idx := reconcile.NewTemplateIndex(templates)

	for _, id := range ids {
		result.Results = append(result.Results, o.postOne(ctx, idx, id))
	}

	utils.Logger.Infof("posted %d of %d transactions for company %d", result.PostedCount(), len(ids), companyID)
	return result
}

func (o *Orchestrator) postOne(ctx context.Context, idx *reconcile.TemplateIndex, id int) PostOutcome {
	txn, err := o.store.Transaction(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return failed(id, "transaction not found")
		}
		utils.Logger.Errorf("failed to load transaction %d: %v", id, err)
		return failed(id, "failed to load transaction")
	}

	if txn.Posted() {
		return failed(id, "transaction is already posted")
	}

	dists, err := o.store.Distributions(ctx, id)
	if err != nil {
		utils.Logger.Errorf("failed to load distributions for transaction %d: %v", id, err)
		return failed(id, "failed to load distributions")
	}

	if !reconcile.IsCoded(txn, dists, idx) {
		return failed(id, "transaction is not fully coded")
	}

	postCtx, cancel := context.WithTimeout(ctx, o.postTimeout)
	defer cancel()

	journalID, err := o.poster.PostEntry(postCtx, buildEntry(txn, dists))
	if err != nil {
		utils.Logger.Errorf("ledger rejected transaction %d: %v", id, err)
		return failed(id, err.Error())
	}

	updated, err := o.store.MarkPosted(ctx, id, journalID)
	if err != nil {
		utils.Logger.Errorf("failed to record journal entry %d on transaction %d: %v", journalID, id, err)
		return failed(id, "failed to record journal reference")
	}
	if !updated {
		// A concurrent caller won the conditional update; journal entry
		// journalID is orphaned on the ledger side and needs manual review.
		utils.Logger.Warnf("transaction %d posted concurrently, journal entry %d orphaned", id, journalID)
		return failed(id, "transaction is already posted")
	}

	return PostOutcome{TransactionID: id, Posted: true, JournalEntryID: journalID}
}

func buildEntry(txn models.CardTransaction, dists []models.Distribution) JournalEntry {
	entry := JournalEntry{
		Reference:   GenerateReference("cc"),
		EntryDate:   txn.TransactionDate,
		Amount:      txn.Amount,
		Description: txn.Description,
	}
	if txn.VendorID.Valid {
		entry.VendorID = txn.VendorID.Int64
	}
	if len(dists) > 0 {
		for _, d := range dists {
			entry.Lines = append(entry.Lines, JournalLine{
				JobID:      d.JobID.Int64,
				CostCodeID: d.CostCodeID.Int64,
				Amount:     d.Amount,
			})
		}
		return entry
	}
	if txn.JobID.Valid {
		entry.JobID = txn.JobID.Int64
	}
	if txn.CostCodeID.Valid {
		entry.CostCodeID = txn.CostCodeID.Int64
	}
	if txn.ChartAccountID.Valid {
		entry.ChartAccountID = txn.ChartAccountID.Int64
	}
	return entry
}

func failed(id int, reason string) PostOutcome {
	return PostOutcome{TransactionID: id, Error: reason}
}
