package models

import "database/sql"

type CreditCard struct {
	ID         int            `json:"id,omitempty" db:"id,omitempty"`
	CompanyID  int            `json:"company_id,omitempty" db:"company_id,omitempty"`
	CardName   string         `json:"card_name,omitempty" db:"card_name,omitempty"`
	LastFour   string         `json:"last_four,omitempty" db:"last_four,omitempty"`
	HolderName string         `json:"holder_name,omitempty" db:"holder_name,omitempty"`
	CreatedAt  sql.NullString `json:"created_at,omitempty" db:"created_at,omitempty"`
}
