package receipts

import (
	"context"
	"database/sql"
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/shopspring/decimal"

	"sitebooks/internal/models"
	"sitebooks/internal/repositories/sqlconnect"
	"sitebooks/pkg/utils"
)

// FUNC TO GET ALL RECEIPTS FOR A COMPANY
func GetReceiptsHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		utils.WriteError(w, "Method Not Allowed", http.StatusMethodNotAllowed)
		return
	}

	db := sqlconnect.DB
	if db == nil {
		utils.Logger.Error("DB is not initialized")
		utils.WriteError(w, "internal server error", http.StatusInternalServerError)
		return
	}

	idStr := r.PathValue("company_id")
	companyID, err := strconv.Atoi(idStr)
	if err != nil {
		utils.WriteError(w, "invalid company ID", http.StatusBadRequest)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	page, limit := utils.GetPaginationParams(r)
	offset := (page - 1) * limit

	query := `
		SELECT id, company_id, vendor_name, amount, receipt_date, preview_url, uploaded_by, created_at
		FROM receipts
		WHERE company_id = ?
	`
	query = utils.AddSorting(r, query, "receipt_date", "amount", "vendor_name")
	query += " LIMIT ? OFFSET ?"

	rows, err := db.QueryContext(ctx, query, companyID, limit, offset)
	if err != nil {
		utils.Logger.Errorf("error fetching receipts: %v", err)
		utils.WriteError(w, "error fetching receipts", http.StatusInternalServerError)
		return
	}
	defer rows.Close()

	var receipts []models.Receipt
	for rows.Next() {
		var rec models.Receipt
		err = rows.Scan(&rec.ID, &rec.CompanyID, &rec.VendorName, &rec.Amount, &rec.ReceiptDate, &rec.PreviewURL, &rec.UploadedBy, &rec.CreatedAt)
		if err != nil {
			utils.Logger.Errorf("error reading receipts: %v", err)
			utils.WriteError(w, "error reading receipts", http.StatusInternalServerError)
			return
		}
		receipts = append(receipts, rec)
	}

	if err = rows.Err(); err != nil {
		utils.WriteError(w, "error finalizing receipts read", http.StatusInternalServerError)
		return
	}

	response := struct {
		Status   string           `json:"status"`
		Count    int              `json:"count"`
		Page     int              `json:"page"`
		PageSize int              `json:"page_size"`
		Data     []models.Receipt `json:"data"`
	}{
		Status:   "success",
		Count:    len(receipts),
		Page:     page,
		PageSize: limit,
		Data:     receipts,
	}

	utils.WriteJSON(w, response)
}

// FUNC TO CREATE A RECEIPT
func CreateReceiptHandler(w http.ResponseWriter, r *http.Request) {
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
		CompanyID   int             `json:"company_id"`
		VendorName  string          `json:"vendor_name"`
		Amount      decimal.Decimal `json:"amount"`
		ReceiptDate string          `json:"receipt_date"`
		PreviewURL  string          `json:"preview_url"`
	}

	var req request
	decoder := json.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(&req); err != nil {
		utils.WriteError(w, "invalid request body", http.StatusBadRequest)
		return
	}
	defer r.Body.Close()

	if req.CompanyID == 0 || req.VendorName == "" || req.ReceiptDate == "" {
		utils.WriteError(w, "missing required fields", http.StatusBadRequest)
		return
	}
	if req.Amount.LessThanOrEqual(decimal.Zero) {
		utils.WriteError(w, "amount must be greater than 0", http.StatusBadRequest)
		return
	}
	if _, err := time.Parse("2006-01-02", req.ReceiptDate); err != nil {
		utils.WriteError(w, "receipt_date must be YYYY-MM-DD", http.StatusBadRequest)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	previewURL := sql.NullString{String: req.PreviewURL, Valid: req.PreviewURL != ""}

	res, err := db.ExecContext(ctx, `
		INSERT INTO receipts (company_id, vendor_name, amount, receipt_date, preview_url, uploaded_by, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`, req.CompanyID, req.VendorName, req.Amount, req.ReceiptDate, previewURL, userID, time.Now().Format("2006-01-02 15:04:05"))
	if err != nil {
		utils.Logger.Errorf("failed to create receipt: %v", err)
		utils.WriteError(w, "failed to create receipt", http.StatusInternalServerError)
		return
	}

	receiptID, _ := res.LastInsertId()

	utils.WriteJSON(w, map[string]interface{}{
		"status":  "success",
		"message": "receipt created",
		"data": map[string]interface{}{
			"receipt_id": receiptID,
		},
	})
}

// FUNC TO DELETE A RECEIPT
func DeleteReceiptHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodDelete {
		utils.WriteError(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	db := sqlconnect.DB
	if db == nil {
		utils.WriteError(w, "internal server error", http.StatusInternalServerError)
		return
	}

	idStr := r.PathValue("id")
	receiptID, err := strconv.Atoi(idStr)
	if err != nil {
		utils.WriteError(w, "invalid receipt ID", http.StatusBadRequest)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	res, err := db.ExecContext(ctx, "DELETE FROM receipts WHERE id = ?", receiptID)
	if err != nil {
		utils.Logger.Errorf("error deleting receipt: %v", err)
		utils.WriteError(w, "error deleting receipt", http.StatusInternalServerError)
		return
	}

	rowsAffected, _ := res.RowsAffected()
	if rowsAffected == 0 {
		utils.WriteError(w, "receipt not found or already deleted", http.StatusNotFound)
		return
	}

	utils.WriteJSON(w, map[string]interface{}{
		"status":  "success",
		"message": "receipt deleted successfully",
	})
}
