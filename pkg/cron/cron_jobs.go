package cron

import (
	"context"
	"database/sql"
	"fmt"
	"sync"
	"time"

	"github.com/robfig/cron/v3"

	"sitebooks/internal/models"
	"sitebooks/internal/reconcile"
	"sitebooks/pkg/utils"
)

func StartCronJob(db *sql.DB) *cron.Cron {
	c := cron.New()

	// Runs daily at midnight — sweep unconfirmed transactions for receipt matches
	_, err := c.AddFunc("0 0 * * *", func() {
		err := SweepReceiptMatches(db)
		if err != nil {
			utils.Logger.Errorf("Cron job failed to sweep receipt matches: %v", err)
		}
	})
	if err != nil {
		utils.Logger.Errorf("Failed to schedule receipt match sweep: %v", err)
	}

	// Runs every 6 hours — remind users with stale coding requests
	_, err = c.AddFunc("0 */6 * * *", func() {
		err := SendCodingRequestReminders(db)
		if err != nil {
			utils.Logger.Errorf("Cron job failed to send coding request reminders: %v", err)
		}
	})
	if err != nil {
		utils.Logger.Errorf("Failed to schedule coding request reminder job: %v", err)
	}

	c.Start()
	utils.Logger.Info("Cron jobs started (receipt match sweep daily at midnight, coding reminders every 6h)")
	return c
}

// -------------------------------------------------------------
// Sweep unconfirmed transactions for receipt match candidates
// -------------------------------------------------------------
func SweepReceiptMatches(db *sql.DB) error {
	ctx, cancel := context.WithTimeout(context.Background(), 45*time.Second)
	defer cancel()

	companyRows, err := db.QueryContext(ctx, "SELECT DISTINCT company_id FROM card_transactions WHERE match_confirmed = FALSE AND journal_entry_id IS NULL")
	if err != nil {
		return err
	}
	defer companyRows.Close()

	var companyIDs []int
	for companyRows.Next() {
		var id int
		if err := companyRows.Scan(&id); err != nil {
			return err
		}
		companyIDs = append(companyIDs, id)
	}
	if err := companyRows.Err(); err != nil {
		return err
	}

	totalWithMatches := 0
	for _, companyID := range companyIDs {
		txns, err := loadUnconfirmedTransactions(ctx, db, companyID)
		if err != nil {
			utils.Logger.Errorf("Failed to load unconfirmed transactions for company %d: %v", companyID, err)
			continue
		}

		receipts, err := loadCompanyReceipts(ctx, db, companyID)
		if err != nil {
			utils.Logger.Errorf("Failed to load receipts for company %d: %v", companyID, err)
			continue
		}

		withMatches := 0
		for _, t := range txns {
			if len(reconcile.FindMatches(t, receipts)) > 0 {
				withMatches++
			}
		}

		if withMatches > 0 {
			utils.Logger.Infof("Company %d: %d of %d unconfirmed transactions have receipt match candidates", companyID, withMatches, len(txns))
		}
		totalWithMatches += withMatches
	}

	utils.Logger.Infof("Receipt match sweep finished: %d transactions with candidates across %d companies", totalWithMatches, len(companyIDs))
	return nil
}

// -------------------------------------------------------------
// Remind users sitting on coding requests older than 3 days
// -------------------------------------------------------------
func SendCodingRequestReminders(db *sql.DB) error {
	ctx, cancel := context.WithTimeout(context.Background(), 45*time.Second)
	defer cancel()

	cutoff := time.Now().AddDate(0, 0, -3).Format("2006-01-02 15:04:05")

	rows, err := db.QueryContext(ctx, `
		SELECT t.id, t.description, t.amount, t.transaction_date, u.email, u.first_name
		FROM card_transactions t
		JOIN users u ON t.coding_requested_from = u.id
		WHERE t.coding_requested_from IS NOT NULL
		  AND (t.coding_status IS NULL OR t.coding_status != 'coded')
		  AND t.journal_entry_id IS NULL
		  AND t.updated_at < ?
	`, cutoff)
	if err != nil {
		return err
	}
	defer rows.Close()

	var wg sync.WaitGroup
	errChan := make(chan error, 10)

	for rows.Next() {
		var txn models.CardTransaction
		var email, firstName string

		if err := rows.Scan(&txn.ID, &txn.Description, &txn.Amount, &txn.TransactionDate, &email, &firstName); err != nil {
			utils.Logger.Errorf("Failed to scan coding reminder row: %v", err)
			continue
		}

		wg.Add(1)
		go func(txn models.CardTransaction, email, firstName string) {
			defer wg.Done()

			if err := utils.SendCodingRequestEmail(
				email,
				firstName,
				"the back office team",
				txn.Description,
				txn.Amount.Abs().StringFixed(2),
				txn.DateOnly(),
			); err != nil {
				errChan <- fmt.Errorf("failed to send coding reminder to %s: %v", email, err)
				return
			}

			utils.Logger.Infof("Sent coding reminder to %s (%s) for transaction %d", firstName, email, txn.ID)
		}(txn, email, firstName)
	}

	wg.Wait()
	close(errChan)

	for e := range errChan {
		utils.Logger.Error(e)
	}

	if err := rows.Err(); err != nil {
		utils.Logger.Errorf("Error iterating coding reminder rows: %v", err)
		return err
	}

	return nil
}

func loadUnconfirmedTransactions(ctx context.Context, db *sql.DB, companyID int) ([]models.CardTransaction, error) {
	rows, err := db.QueryContext(ctx, `
		SELECT id, company_id, transaction_date, amount, description, transaction_kind
		FROM card_transactions
		WHERE company_id = ? AND match_confirmed = FALSE AND journal_entry_id IS NULL
	`, companyID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var txns []models.CardTransaction
	for rows.Next() {
		var t models.CardTransaction
		if err := rows.Scan(&t.ID, &t.CompanyID, &t.TransactionDate, &t.Amount, &t.Description, &t.TransactionKind); err != nil {
			return nil, err
		}
		txns = append(txns, t)
	}
	return txns, rows.Err()
}

func loadCompanyReceipts(ctx context.Context, db *sql.DB, companyID int) ([]models.Receipt, error) {
	rows, err := db.QueryContext(ctx, `
		SELECT id, company_id, vendor_name, amount, receipt_date
		FROM receipts
		WHERE company_id = ?
	`, companyID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var receipts []models.Receipt
	for rows.Next() {
		var rec models.Receipt
		if err := rows.Scan(&rec.ID, &rec.CompanyID, &rec.VendorName, &rec.Amount, &rec.ReceiptDate); err != nil {
			return nil, err
		}
		receipts = append(receipts, rec)
	}
	return receipts, rows.Err()
}
