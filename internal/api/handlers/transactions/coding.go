package transactions

import (
	"context"
	"database/sql"
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/shopspring/decimal"

	"sitebooks/internal/models"
	"sitebooks/internal/reconcile"
	"sitebooks/internal/repositories/sqlconnect"
	"sitebooks/pkg/utils"
)

type distributionInput struct {
	JobID      int64               `json:"job_id"`
	CostCodeID int64               `json:"cost_code_id"`
	Amount     decimal.Decimal     `json:"amount"`
	Percentage decimal.NullDecimal `json:"percentage"`
}

// FUNC TO SAVE CODING FIELDS AND REPLACE DISTRIBUTIONS
func SaveCodingHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPatch {
		utils.WriteError(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	db := sqlconnect.DB
	if db == nil {
		utils.Logger.Error("DB is not initialized")
		utils.WriteError(w, "internal server error", http.StatusInternalServerError)
		return
	}

	idStr := r.PathValue("id")
	transactionID, err := strconv.Atoi(idStr)
	if err != nil {
		utils.WriteError(w, "invalid transaction ID", http.StatusBadRequest)
		return
	}

	type request struct {
		VendorID         *int64              `json:"vendor_id"`
		JobID            *int64              `json:"job_id"`
		CostCodeID       *int64              `json:"cost_code_id"`
		ChartAccountID   *int64              `json:"chart_account_id"`
		AttachmentID     *int64              `json:"attachment_id"`
		BypassAttachment bool                `json:"bypass_attachment"`
		Distributions    []distributionInput `json:"distributions"`
	}

	var req request
	decoder := json.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(&req); err != nil {
		utils.WriteError(w, "invalid request body", http.StatusBadRequest)
		return
	}
	defer r.Body.Close()

	for _, d := range req.Distributions {
		if !d.Amount.IsPositive() {
			utils.WriteError(w, "distribution amounts must be greater than 0", http.StatusBadRequest)
			return
		}
	}

	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	txn, err := loadTransaction(ctx, db, transactionID)
	if err != nil {
		if err == sql.ErrNoRows {
			utils.WriteError(w, "transaction not found", http.StatusNotFound)
			return
		}
		utils.WriteError(w, "failed to retrieve transaction", http.StatusInternalServerError)
		return
	}

	if txn.Posted() {
		utils.WriteError(w, "posted transactions cannot be recoded", http.StatusConflict)
		return
	}

	templates, err := loadTemplates(ctx, db, txn.CompanyID)
	if err != nil {
		utils.Logger.Errorf("error fetching cost code templates: %v", err)
		utils.WriteError(w, "error fetching cost code templates", http.StatusInternalServerError)
		return
	}

	txn.VendorID = toNullInt(req.VendorID)
	txn.JobID = toNullInt(req.JobID)
	txn.CostCodeID = toNullInt(req.CostCodeID)
	txn.ChartAccountID = toNullInt(req.ChartAccountID)
	txn.AttachmentID = toNullInt(req.AttachmentID)
	txn.BypassAttachment = req.BypassAttachment

	dists := make([]models.Distribution, 0, len(req.Distributions))
	for _, d := range req.Distributions {
		dists = append(dists, models.Distribution{
			TransactionID: transactionID,
			JobID:         sql.NullInt64{Int64: d.JobID, Valid: d.JobID != 0},
			CostCodeID:    sql.NullInt64{Int64: d.CostCodeID, Valid: d.CostCodeID != 0},
			Amount:        d.Amount,
			Percentage:    d.Percentage,
		})
	}

	codingStatus := models.CodingStatusUncoded
	if reconcile.InferCoded(txn, dists, reconcile.NewTemplateIndex(templates)) {
		codingStatus = models.CodingStatusCoded
	}

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		utils.Logger.Errorf("failed to start transaction: %v", err)
		utils.WriteError(w, "internal server error", http.StatusInternalServerError)
		return
	}

	_, err = tx.ExecContext(ctx, `
		UPDATE card_transactions
		SET vendor_id = ?, job_id = ?, cost_code_id = ?, chart_account_id = ?,
		    attachment_id = ?, bypass_attachment = ?, coding_status = ?, updated_at = ?
		WHERE id = ?
	`, txn.VendorID, txn.JobID, txn.CostCodeID, txn.ChartAccountID,
		txn.AttachmentID, txn.BypassAttachment, codingStatus,
		time.Now().Format("2006-01-02 15:04:05"), transactionID)
	if err != nil {
		tx.Rollback()
		utils.WriteError(w, "error updating transaction", http.StatusInternalServerError)
		return
	}

	// Distributions are replaced wholesale on every save, never patched.
	_, err = tx.ExecContext(ctx, "DELETE FROM distributions WHERE transaction_id = ?", transactionID)
	if err != nil {
		tx.Rollback()
		utils.WriteError(w, "failed to reset distributions", http.StatusInternalServerError)
		return
	}

	if len(dists) > 0 {
		stmt, err := tx.PrepareContext(ctx, `INSERT INTO distributions (transaction_id, job_id, cost_code_id, amount, percentage) VALUES (?, ?, ?, ?, ?)`)
		if err != nil {
			tx.Rollback()
			utils.Logger.Errorf("failed to prepare statement: %v", err)
			utils.WriteError(w, "internal server error", http.StatusInternalServerError)
			return
		}
		defer stmt.Close()

		for _, d := range dists {
			if _, err := stmt.ExecContext(ctx, d.TransactionID, d.JobID, d.CostCodeID, d.Amount, d.Percentage); err != nil {
				tx.Rollback()
				utils.Logger.Errorf("failed to insert distribution: %v", err)
				utils.WriteError(w, "failed to save distributions", http.StatusInternalServerError)
				return
			}
		}
	}

	if err := tx.Commit(); err != nil {
		utils.WriteError(w, "failed to commit transaction", http.StatusInternalServerError)
		return
	}

	utils.WriteJSON(w, map[string]interface{}{
		"status":  "success",
		"message": "coding saved",
		"data": map[string]interface{}{
			"transaction_id": transactionID,
			"coding_status":  codingStatus,
			"is_coded":       codingStatus == models.CodingStatusCoded,
		},
	})
}

// FUNC TO CONFIRM A RECEIPT MATCH
func ConfirmMatchHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		utils.WriteError(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	db := sqlconnect.DB
	if db == nil {
		utils.WriteError(w, "internal server error", http.StatusInternalServerError)
		return
	}

	idStr := r.PathValue("id")
	transactionID, err := strconv.Atoi(idStr)
	if err != nil {
		utils.WriteError(w, "invalid transaction ID", http.StatusBadRequest)
		return
	}

	type request struct {
		ReceiptID int `json:"receipt_id"`
	}

	var req request
	decoder := json.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(&req); err != nil {
		utils.WriteError(w, "invalid request body", http.StatusBadRequest)
		return
	}
	defer r.Body.Close()

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	txn, err := loadTransaction(ctx, db, transactionID)
	if err != nil {
		if err == sql.ErrNoRows {
			utils.WriteError(w, "transaction not found", http.StatusNotFound)
			return
		}
		utils.WriteError(w, "failed to retrieve transaction", http.StatusInternalServerError)
		return
	}

	if txn.Posted() {
		utils.WriteError(w, "posted transactions cannot be recoded", http.StatusConflict)
		return
	}

	var receiptExists bool
	err = db.QueryRowContext(ctx, "SELECT EXISTS(SELECT 1 FROM receipts WHERE id = ? AND company_id = ?)", req.ReceiptID, txn.CompanyID).Scan(&receiptExists)
	if err != nil {
		utils.WriteError(w, "failed to verify receipt", http.StatusInternalServerError)
		return
	}
	if !receiptExists {
		utils.WriteError(w, "receipt not found", http.StatusNotFound)
		return
	}

	_, err = db.ExecContext(ctx, `
		UPDATE card_transactions
		SET match_confirmed = TRUE, attachment_id = ?, updated_at = ?
		WHERE id = ?
	`, req.ReceiptID, time.Now().Format("2006-01-02 15:04:05"), transactionID)
	if err != nil {
		utils.Logger.Errorf("failed to confirm match: %v", err)
		utils.WriteError(w, "failed to confirm match", http.StatusInternalServerError)
		return
	}

	utils.WriteJSON(w, map[string]interface{}{
		"status":  "success",
		"message": "receipt match confirmed",
	})
}

// FUNC TO REQUEST CODING FROM ANOTHER USER
func RequestCodingHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		utils.WriteError(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	db := sqlconnect.DB
	if db == nil {
		utils.WriteError(w, "internal server error", http.StatusInternalServerError)
		return
	}

	username, _ := r.Context().Value(utils.ContextKey("username")).(string)

	idStr := r.PathValue("id")
	transactionID, err := strconv.Atoi(idStr)
	if err != nil {
		utils.WriteError(w, "invalid transaction ID", http.StatusBadRequest)
		return
	}

	type request struct {
		UserID int `json:"user_id"`
	}

	var req request
	decoder := json.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(&req); err != nil {
		utils.WriteError(w, "invalid request body", http.StatusBadRequest)
		return
	}
	defer r.Body.Close()

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	txn, err := loadTransaction(ctx, db, transactionID)
	if err != nil {
		if err == sql.ErrNoRows {
			utils.WriteError(w, "transaction not found", http.StatusNotFound)
			return
		}
		utils.WriteError(w, "failed to retrieve transaction", http.StatusInternalServerError)
		return
	}

	if txn.Posted() {
		utils.WriteError(w, "posted transactions cannot be recoded", http.StatusConflict)
		return
	}

	var email, firstName string
	err = db.QueryRowContext(ctx, "SELECT email, first_name FROM users WHERE id = ?", req.UserID).Scan(&email, &firstName)
	if err != nil {
		if err == sql.ErrNoRows {
			utils.WriteError(w, "user not found", http.StatusNotFound)
			return
		}
		utils.WriteError(w, "failed to retrieve user", http.StatusInternalServerError)
		return
	}

	_, err = db.ExecContext(ctx, `
		UPDATE card_transactions
		SET coding_requested_from = ?, updated_at = ?
		WHERE id = ?
	`, req.UserID, time.Now().Format("2006-01-02 15:04:05"), transactionID)
	if err != nil {
		utils.Logger.Errorf("failed to record coding request: %v", err)
		utils.WriteError(w, "failed to record coding request", http.StatusInternalServerError)
		return
	}

	go func() {
		if err := utils.SendCodingRequestEmail(email, firstName, username, txn.Description, txn.Amount.Abs().StringFixed(2), txn.DateOnly()); err != nil {
			utils.Logger.Errorf("failed to send coding request email to %s: %v", email, err)
		}
	}()

	utils.WriteJSON(w, map[string]interface{}{
		"status":  "success",
		"message": "coding requested",
	})
}

// FUNC TO SET THE RECONCILED FLAG ON A PAYMENT
func SetReconciledHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		utils.WriteError(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	db := sqlconnect.DB
	if db == nil {
		utils.WriteError(w, "internal server error", http.StatusInternalServerError)
		return
	}

	idStr := r.PathValue("id")
	transactionID, err := strconv.Atoi(idStr)
	if err != nil {
		utils.WriteError(w, "invalid transaction ID", http.StatusBadRequest)
		return
	}

	type request struct {
		Reconciled bool `json:"reconciled"`
	}

	var req request
	decoder := json.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(&req); err != nil {
		utils.WriteError(w, "invalid request body", http.StatusBadRequest)
		return
	}
	defer r.Body.Close()

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	txn, err := loadTransaction(ctx, db, transactionID)
	if err != nil {
		if err == sql.ErrNoRows {
			utils.WriteError(w, "transaction not found", http.StatusNotFound)
			return
		}
		utils.WriteError(w, "failed to retrieve transaction", http.StatusInternalServerError)
		return
	}

	if txn.TransactionKind != models.KindPayment {
		utils.WriteError(w, "only payment transactions can be reconciled", http.StatusBadRequest)
		return
	}

	_, err = db.ExecContext(ctx, `
		UPDATE card_transactions
		SET reconciled = ?, updated_at = ?
		WHERE id = ?
	`, req.Reconciled, time.Now().Format("2006-01-02 15:04:05"), transactionID)
	if err != nil {
		utils.Logger.Errorf("failed to update reconciled flag: %v", err)
		utils.WriteError(w, "failed to update reconciled flag", http.StatusInternalServerError)
		return
	}

	utils.WriteJSON(w, map[string]interface{}{
		"status":  "success",
		"message": "reconciled flag updated",
		"data": map[string]interface{}{
			"transaction_id": transactionID,
			"reconciled":     req.Reconciled,
		},
	})
}

func toNullInt(v *int64) sql.NullInt64 {
	if v == nil {
		return sql.NullInt64{}
	}
	return sql.NullInt64{Int64: *v, Valid: true}
}
