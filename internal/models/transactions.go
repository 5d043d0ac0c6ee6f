package models

import (
	"database/sql"
	"time"

	"github.com/shopspring/decimal"
)

const (
	KindCharge  = "charge"
	KindPayment = "payment"
	KindCredit  = "credit"
	KindRefund  = "refund"
)

const (
	CodingStatusUncoded = "uncoded"
	CodingStatusCoded   = "coded"
)

type CardTransaction struct {
	ID                  int             `json:"id,omitempty" db:"id,omitempty"`
	CardID              int             `json:"card_id,omitempty" db:"card_id,omitempty"`
	CompanyID           int             `json:"company_id,omitempty" db:"company_id,omitempty"`
	TransactionDate     string          `json:"transaction_date,omitempty" db:"transaction_date,omitempty"`
	Amount              decimal.Decimal `json:"amount,omitempty" db:"amount,omitempty"`
	Description         string          `json:"description,omitempty" db:"description,omitempty"`
	TransactionKind     string          `json:"transaction_kind,omitempty" db:"transaction_kind,omitempty"`
	VendorID            sql.NullInt64   `json:"vendor_id,omitempty" db:"vendor_id,omitempty"`
	JobID               sql.NullInt64   `json:"job_id,omitempty" db:"job_id,omitempty"`
	CostCodeID          sql.NullInt64   `json:"cost_code_id,omitempty" db:"cost_code_id,omitempty"`
	ChartAccountID      sql.NullInt64   `json:"chart_account_id,omitempty" db:"chart_account_id,omitempty"`
	AttachmentID        sql.NullInt64   `json:"attachment_id,omitempty" db:"attachment_id,omitempty"`
	BypassAttachment    bool            `json:"bypass_attachment,omitempty" db:"bypass_attachment,omitempty"`
	MatchConfirmed      bool            `json:"match_confirmed,omitempty" db:"match_confirmed,omitempty"`
	Reconciled          bool            `json:"reconciled,omitempty" db:"reconciled,omitempty"`
	JournalEntryID      sql.NullInt64   `json:"journal_entry_id,omitempty" db:"journal_entry_id,omitempty"`
	CodingRequestedFrom sql.NullInt64   `json:"coding_requested_from,omitempty" db:"coding_requested_from,omitempty"`
	CodingStatus        sql.NullString  `json:"coding_status,omitempty" db:"coding_status,omitempty"`
	CreatedAt           sql.NullString  `json:"created_at,omitempty" db:"created_at,omitempty"`
	UpdatedAt           sql.NullString  `json:"updated_at,omitempty" db:"updated_at,omitempty"`
}

// Posted reports whether the transaction has been posted to the general
// ledger. Posted transactions are frozen with respect to coding fields.
func (t CardTransaction) Posted() bool {
	return t.JournalEntryID.Valid
}

// DateOnly parses the transaction date (stored as YYYY-MM-DD). Malformed
// dates come back as the zero time so callers never deal with an error.
func (t CardTransaction) DateOnly() time.Time {
	d, err := time.Parse("2006-01-02", t.TransactionDate)
	if err != nil {
		return time.Time{}
	}
	return d
}

type Distribution struct {
	ID            int                 `json:"id,omitempty" db:"id,omitempty"`
	TransactionID int                 `json:"transaction_id,omitempty" db:"transaction_id,omitempty"`
	JobID         sql.NullInt64       `json:"job_id,omitempty" db:"job_id,omitempty"`
	CostCodeID    sql.NullInt64       `json:"cost_code_id,omitempty" db:"cost_code_id,omitempty"`
	Amount        decimal.Decimal     `json:"amount,omitempty" db:"amount,omitempty"`
	Percentage    decimal.NullDecimal `json:"percentage,omitempty" db:"percentage,omitempty"`
	CreatedAt     sql.NullString      `json:"created_at,omitempty" db:"created_at,omitempty"`
}
