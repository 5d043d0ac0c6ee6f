package transactions

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"sitebooks/internal/ledger"
	"sitebooks/internal/repositories/sqlconnect"
	"sitebooks/pkg/utils"
)

// FUNC TO POST A BATCH OF CODED TRANSACTIONS TO THE GENERAL LEDGER
func PostBatchHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		utils.WriteError(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	db := sqlconnect.DB
	if db == nil {
		utils.Logger.Error("DB is not initialized")
		utils.WriteError(w, "internal server error", http.StatusInternalServerError)
		return
	}

	idFloat, ok := r.Context().Value(utils.ContextKey("userId")).(float64)
	if !ok {
		utils.WriteError(w, "unauthorized", http.StatusUnauthorized)
		return
	}
	userID := int(idFloat)

	type request struct {
		CompanyID      int   `json:"company_id"`
		TransactionIDs []int `json:"transaction_ids"`
	}

	var req request
	decoder := json.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(&req); err != nil {
		utils.WriteError(w, "invalid request body", http.StatusBadRequest)
		return
	}
	defer r.Body.Close()

	if len(req.TransactionIDs) == 0 {
		utils.WriteError(w, "no transaction ids provided", http.StatusBadRequest)
		return
	}
	if req.CompanyID == 0 {
		utils.WriteError(w, "company_id is required", http.StatusBadRequest)
		return
	}

	glClient, err := ledger.NewGLClient()
	if err != nil {
		utils.Logger.Errorf("failed to create ledger client: %v", err)
		utils.WriteError(w, "ledger connection is not configured", http.StatusInternalServerError)
		return
	}

	// Long enough for every per-transaction post timeout to play out.
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Minute)
	defer cancel()

	orch := ledger.NewOrchestrator(ledger.NewSQLStore(db), glClient)
	result := orch.PostBatch(ctx, req.CompanyID, req.TransactionIDs)

	var email, firstName string
	if err := db.QueryRowContext(ctx, "SELECT email, first_name FROM users WHERE id = ?", userID).Scan(&email, &firstName); err == nil {
		posted, failedCount, errs := result.PostedCount(), result.FailedCount(), result.Errors()
		go func() {
			if err := utils.SendPostingSummaryEmail(email, firstName, posted, failedCount, errs); err != nil {
				utils.Logger.Errorf("failed to send posting summary email to %s: %v", email, err)
			}
		}()
	}

	utils.WriteJSON(w, map[string]interface{}{
		"status":  "success",
		"message": "batch posting finished",
		"data": map[string]interface{}{
			"posted":  result.PostedCount(),
			"failed":  result.FailedCount(),
			"results": result.Results,
		},
	})
}

// FUNC TO BULK DELETE UNPOSTED TRANSACTIONS
func BulkDeleteTransactionsHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodDelete {
		utils.WriteError(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	db := sqlconnect.DB
	if db == nil {
		utils.WriteError(w, "internal server error", http.StatusInternalServerError)
		return
	}

	type request struct {
		TransactionIDs []int `json:"transaction_ids"`
	}

	var req request
	decoder := json.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(&req); err != nil {
		utils.WriteError(w, "invalid request body", http.StatusBadRequest)
		return
	}
	defer r.Body.Close()

	if len(req.TransactionIDs) == 0 {
		utils.WriteError(w, "no transaction ids provided", http.StatusBadRequest)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	placeholders := strings.TrimSuffix(strings.Repeat("?,", len(req.TransactionIDs)), ",")
	args := make([]interface{}, 0, len(req.TransactionIDs))
	for _, id := range req.TransactionIDs {
		args = append(args, id)
	}

	// Posted transactions are immutable; they are skipped and reported, not
	// silently dropped.
	rows, err := db.QueryContext(ctx, "SELECT id FROM card_transactions WHERE id IN ("+placeholders+") AND journal_entry_id IS NOT NULL", args...)
	if err != nil {
		utils.WriteError(w, "failed to check posted transactions", http.StatusInternalServerError)
		return
	}
	defer rows.Close()

	var skipped []int
	for rows.Next() {
		var id int
		if err := rows.Scan(&id); err == nil {
			skipped = append(skipped, id)
		}
	}

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		utils.Logger.Errorf("failed to start transaction: %v", err)
		utils.WriteError(w, "internal server error", http.StatusInternalServerError)
		return
	}

	_, err = tx.ExecContext(ctx, `
		DELETE FROM distributions
		WHERE transaction_id IN (`+placeholders+`)
		  AND transaction_id NOT IN (SELECT id FROM card_transactions WHERE journal_entry_id IS NOT NULL)
	`, args...)
	if err != nil {
		tx.Rollback()
		utils.WriteError(w, "failed to delete distributions", http.StatusInternalServerError)
		return
	}

	res, err := tx.ExecContext(ctx, "DELETE FROM card_transactions WHERE id IN ("+placeholders+") AND journal_entry_id IS NULL", args...)
	if err != nil {
		tx.Rollback()
		utils.WriteError(w, "failed to delete transactions", http.StatusInternalServerError)
		return
	}

	if err := tx.Commit(); err != nil {
		utils.WriteError(w, "failed to commit transaction", http.StatusInternalServerError)
		return
	}

	deleted, _ := res.RowsAffected()

	utils.WriteJSON(w, map[string]interface{}{
		"status":  "success",
		"message": "transactions deleted",
		"data": map[string]interface{}{
			"deleted":        deleted,
			"skipped_posted": skipped,
		},
	})
}
