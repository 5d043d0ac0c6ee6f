package ledger

import (
	"context"
	"database/sql"

	"sitebooks/internal/models"
)

// Store is the slice of persistence the posting orchestrator needs.
type Store interface {
	Transaction(ctx context.Context, id int) (models.CardTransaction, error)
	Distributions(ctx context.Context, transactionID int) ([]models.Distribution, error)
	Templates(ctx context.Context, companyID int) ([]models.CostCodeTemplate, error)
	// MarkPosted stores the journal reference only if the transaction has not
	// been posted meanwhile. Returns false when another writer got there first.
	MarkPosted(ctx context.Context, transactionID int, journalEntryID int64) (bool, error)
}

type SQLStore struct {
	DB *sql.DB
}

func NewSQLStore(db *sql.DB) *SQLStore {
	return &SQLStore{DB: db}
}

func (s *SQLStore) Transaction(ctx context.Context, id int) (models.CardTransaction, error) {
	var t models.CardTransaction
	err := s.DB.QueryRowContext(ctx, `
		SELECT id, card_id, company_id, transaction_date, amount, description, transaction_kind,
		       vendor_id, job_id, cost_code_id, chart_account_id, attachment_id,
		       bypass_attachment, match_confirmed, reconciled, journal_entry_id,
		       coding_requested_from, coding_status, created_at, updated_at
		FROM card_transactions
		WHERE id = ?
	`, id).Scan(
		&t.ID, &t.CardID, &t.CompanyID, &t.TransactionDate, &t.Amount, &t.Description, &t.TransactionKind,
		&t.VendorID, &t.JobID, &t.CostCodeID, &t.ChartAccountID, &t.AttachmentID,
		&t.BypassAttachment, &t.MatchConfirmed, &t.Reconciled, &t.JournalEntryID,
		&t.CodingRequestedFrom, &t.CodingStatus, &t.CreatedAt, &t.UpdatedAt,
	)
	return t, err
}

func (s *SQLStore) Distributions(ctx context.Context, transactionID int) ([]models.Distribution, error) {
	rows, err := s.DB.QueryContext(ctx, `
		SELECT id, transaction_id, job_id, cost_code_id, amount, percentage, created_at
		FROM distributions
		WHERE transaction_id = ?
		ORDER BY id
	`, transactionID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var dists []models.Distribution
	for rows.Next() {
		var d models.Distribution
		if err := rows.Scan(&d.ID, &d.TransactionID, &d.JobID, &d.CostCodeID, &d.Amount, &d.Percentage, &d.CreatedAt); err != nil {
			return nil, err
		}
		dists = append(dists, d)
	}
	return dists, rows.Err()
}

func (s *SQLStore) Templates(ctx context.Context, companyID int) ([]models.CostCodeTemplate, error) {
	rows, err := s.DB.QueryContext(ctx, `
		SELECT id, company_id, code, description, type_tag, attachment_required, created_at, updated_at
		FROM cost_code_templates
		WHERE company_id = ?
		ORDER BY id
	`, companyID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var templates []models.CostCodeTemplate
	for rows.Next() {
		var t models.CostCodeTemplate
		if err := rows.Scan(&t.ID, &t.CompanyID, &t.Code, &t.Description, &t.TypeTag, &t.AttachmentRequired, &t.CreatedAt, &t.UpdatedAt); err != nil {
			return nil, err
		}
		templates = append(templates, t)
	}
	return templates, rows.Err()
}

func (s *SQLStore) MarkPosted(ctx context.Context, transactionID int, journalEntryID int64) (bool, error) {
	res, err := s.DB.ExecContext(ctx, `
		UPDATE card_transactions
		SET journal_entry_id = ?, coding_status = ?
		WHERE id = ? AND journal_entry_id IS NULL
	`, journalEntryID, models.CodingStatusCoded, transactionID)
	if err != nil {
		return false, err
	}
	rows, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return rows > 0, nil
}
