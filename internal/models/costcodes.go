package models

import "database/sql"

// CostCodeTemplate is a company-level cost-code or chart-account template.
// AttachmentRequired is tri-state: an explicit TRUE/FALSE, or NULL meaning
// unspecified (which defaults to required at resolution time). Several
// templates may share the same normalized code; the type tag disambiguates.
type CostCodeTemplate struct {
	ID                 int            `json:"id,omitempty" db:"id,omitempty"`
	CompanyID          int            `json:"company_id,omitempty" db:"company_id,omitempty"`
	Code               string         `json:"code,omitempty" db:"code,omitempty"`
	Description        string         `json:"description,omitempty" db:"description,omitempty"`
	TypeTag            sql.NullString `json:"type_tag,omitempty" db:"type_tag,omitempty"`
	AttachmentRequired sql.NullBool   `json:"attachment_required,omitempty" db:"attachment_required,omitempty"`
	CreatedAt          sql.NullString `json:"created_at,omitempty" db:"created_at,omitempty"`
	UpdatedAt          sql.NullString `json:"updated_at,omitempty" db:"updated_at,omitempty"`
}
