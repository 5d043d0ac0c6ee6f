package models

import (
	"database/sql"
	"time"

	"github.com/shopspring/decimal"
)

type Receipt struct {
	ID          int             `json:"id,omitempty" db:"id,omitempty"`
	CompanyID   int             `json:"company_id,omitempty" db:"company_id,omitempty"`
	VendorName  string          `json:"vendor_name,omitempty" db:"vendor_name,omitempty"`
	Amount      decimal.Decimal `json:"amount,omitempty" db:"amount,omitempty"`
	ReceiptDate string          `json:"receipt_date,omitempty" db:"receipt_date,omitempty"`
	PreviewURL  sql.NullString  `json:"preview_url,omitempty" db:"preview_url,omitempty"`
	UploadedBy  sql.NullInt64   `json:"uploaded_by,omitempty" db:"uploaded_by,omitempty"`
	CreatedAt   sql.NullString  `json:"created_at,omitempty" db:"created_at,omitempty"`
}

// DateOnly parses the receipt date (stored as YYYY-MM-DD), zero time on
// malformed input.
func (r Receipt) DateOnly() time.Time {
	d, err := time.Parse("2006-01-02", r.ReceiptDate)
	if err != nil {
		return time.Time{}
	}
	return d
}
