package transactions

import (
	"context"
	"database/sql"
	"net/http"
	"strconv"
	"time"

	"github.com/shopspring/decimal"

	"sitebooks/internal/models"
	"sitebooks/internal/reconcile"
	"sitebooks/internal/repositories/sqlconnect"
	"sitebooks/pkg/utils"
)

// TransactionRow is one row of the coding screen: the transaction plus its
// derived coded badge, match count and running balance.
type TransactionRow struct {
	models.CardTransaction
	IsCoded        bool            `json:"is_coded"`
	MatchesFound   int             `json:"matches_found"`
	RunningBalance decimal.Decimal `json:"running_balance"`
}

// FUNC TO GET ALL TRANSACTIONS FOR A CARD
func GetCardTransactionsHandler(w http.ResponseWriter, r *http.Request) {
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

	idStr := r.PathValue("card_id")
	cardID, err := strconv.Atoi(idStr)
	if err != nil {
		utils.WriteError(w, "invalid card ID", http.StatusBadRequest)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	var card models.CreditCard
	err = db.QueryRowContext(ctx, "SELECT id, company_id, card_name, last_four, holder_name FROM credit_cards WHERE id = ?", cardID).
		Scan(&card.ID, &card.CompanyID, &card.CardName, &card.LastFour, &card.HolderName)
	if err != nil {
		if err == sql.ErrNoRows {
			utils.WriteError(w, "card not found", http.StatusNotFound)
			return
		}
		utils.Logger.Errorf("error fetching card: %v", err)
		utils.WriteError(w, "error fetching card", http.StatusInternalServerError)
		return
	}

	// The whole statement is loaded in one snapshot: running balances need
	// the full date-ascending fold, so there is no LIMIT here.
	txns, err := loadCardTransactions(ctx, db, cardID)
	if err != nil {
		utils.Logger.Errorf("error fetching transactions: %v", err)
		utils.WriteError(w, "error fetching transactions", http.StatusInternalServerError)
		return
	}

	distsByTxn, err := loadDistributionsForCard(ctx, db, cardID)
	if err != nil {
		utils.Logger.Errorf("error fetching distributions: %v", err)
		utils.WriteError(w, "error fetching distributions", http.StatusInternalServerError)
		return
	}

	templates, err := loadTemplates(ctx, db, card.CompanyID)
	if err != nil {
		utils.Logger.Errorf("error fetching cost code templates: %v", err)
		utils.WriteError(w, "error fetching cost code templates", http.StatusInternalServerError)
		return
	}

	receipts, err := loadReceipts(ctx, db, card.CompanyID)
	if err != nil {
		utils.Logger.Errorf("error fetching receipts: %v", err)
		utils.WriteError(w, "error fetching receipts", http.StatusInternalServerError)
		return
	}

	idx := reconcile.NewTemplateIndex(templates)
	balances := reconcile.RunningBalances(txns)

	rows := make([]TransactionRow, 0, len(txns))
	for _, t := range txns {
		row := TransactionRow{
			CardTransaction: t,
			IsCoded:         reconcile.IsCoded(t, distsByTxn[t.ID], idx),
			RunningBalance:  balances[t.ID],
		}
		if !t.MatchConfirmed {
			row.MatchesFound = len(reconcile.FindMatches(t, receipts))
		}
		rows = append(rows, row)
	}

	response := struct {
		Status string            `json:"status"`
		Count  int               `json:"count"`
		Card   models.CreditCard `json:"card"`
		Data   []TransactionRow  `json:"data"`
	}{
		Status: "success",
		Count:  len(rows),
		Card:   card,
		Data:   rows,
	}

	utils.WriteJSON(w, response)
}

// FUNC TO GET ONE TRANSACTION WITH DISTRIBUTIONS AND MATCH SUGGESTIONS
func GetTransactionByIdHandler(w http.ResponseWriter, r *http.Request) {
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

	idStr := r.PathValue("id")
	transactionID, err := strconv.Atoi(idStr)
	if err != nil {
		utils.WriteError(w, "invalid transaction ID", http.StatusBadRequest)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	txn, err := loadTransaction(ctx, db, transactionID)
	if err != nil {
		if err == sql.ErrNoRows {
			utils.WriteError(w, "no transaction found", http.StatusNotFound)
			return
		}
		utils.Logger.Errorf("error fetching transaction: %v", err)
		utils.WriteError(w, "error fetching transaction", http.StatusInternalServerError)
		return
	}

	dists, err := loadDistributions(ctx, db, transactionID)
	if err != nil {
		utils.Logger.Errorf("error fetching distributions: %v", err)
		utils.WriteError(w, "error fetching distributions", http.StatusInternalServerError)
		return
	}

	templates, err := loadTemplates(ctx, db, txn.CompanyID)
	if err != nil {
		utils.Logger.Errorf("error fetching cost code templates: %v", err)
		utils.WriteError(w, "error fetching cost code templates", http.StatusInternalServerError)
		return
	}

	receipts, err := loadReceipts(ctx, db, txn.CompanyID)
	if err != nil {
		utils.Logger.Errorf("error fetching receipts: %v", err)
		utils.WriteError(w, "error fetching receipts", http.StatusInternalServerError)
		return
	}

	idx := reconcile.NewTemplateIndex(templates)

	response := map[string]interface{}{
		"status": "success",
		"data": map[string]interface{}{
			"transaction":   txn,
			"distributions": dists,
			"is_coded":      reconcile.IsCoded(txn, dists, idx),
			"matches":       reconcile.FindMatches(txn, receipts),
		},
	}

	utils.WriteJSON(w, response)
}

const transactionColumns = `id, card_id, company_id, transaction_date, amount, description, transaction_kind,
	vendor_id, job_id, cost_code_id, chart_account_id, attachment_id,
	bypass_attachment, match_confirmed, reconciled, journal_entry_id,
	coding_requested_from, coding_status, created_at, updated_at`

func scanTransaction(scanner interface{ Scan(...interface{}) error }) (models.CardTransaction, error) {
	var t models.CardTransaction
	err := scanner.Scan(
		&t.ID, &t.CardID, &t.CompanyID, &t.TransactionDate, &t.Amount, &t.Description, &t.TransactionKind,
		&t.VendorID, &t.JobID, &t.CostCodeID, &t.ChartAccountID, &t.AttachmentID,
		&t.BypassAttachment, &t.MatchConfirmed, &t.Reconciled, &t.JournalEntryID,
		&t.CodingRequestedFrom, &t.CodingStatus, &t.CreatedAt, &t.UpdatedAt,
	)
	return t, err
}

func loadTransaction(ctx context.Context, db *sql.DB, id int) (models.CardTransaction, error) {
	row := db.QueryRowContext(ctx, "SELECT "+transactionColumns+" FROM card_transactions WHERE id = ?", id)
	return scanTransaction(row)
}

func loadCardTransactions(ctx context.Context, db *sql.DB, cardID int) ([]models.CardTransaction, error) {
	rows, err := db.QueryContext(ctx, "SELECT "+transactionColumns+" FROM card_transactions WHERE card_id = ? ORDER BY transaction_date DESC, id DESC", cardID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var txns []models.CardTransaction
	for rows.Next() {
		t, err := scanTransaction(rows)
		if err != nil {
			return nil, err
		}
		txns = append(txns, t)
	}
	return txns, rows.Err()
}

func loadDistributions(ctx context.Context, db *sql.DB, transactionID int) ([]models.Distribution, error) {
	rows, err := db.QueryContext(ctx, `
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

func loadDistributionsForCard(ctx context.Context, db *sql.DB, cardID int) (map[int][]models.Distribution, error) {
	rows, err := db.QueryContext(ctx, `
		SELECT d.id, d.transaction_id, d.job_id, d.cost_code_id, d.amount, d.percentage, d.created_at
		FROM distributions d
		JOIN card_transactions t ON d.transaction_id = t.id
		WHERE t.card_id = ?
		ORDER BY d.id
	`, cardID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	byTxn := make(map[int][]models.Distribution)
	for rows.Next() {
		var d models.Distribution
		if err := rows.Scan(&d.ID, &d.TransactionID, &d.JobID, &d.CostCodeID, &d.Amount, &d.Percentage, &d.CreatedAt); err != nil {
			return nil, err
		}
		byTxn[d.TransactionID] = append(byTxn[d.TransactionID], d)
	}
	return byTxn, rows.Err()
}

func loadTemplates(ctx context.Context, db *sql.DB, companyID int) ([]models.CostCodeTemplate, error) {
	rows, err := db.QueryContext(ctx, `
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

func loadReceipts(ctx context.Context, db *sql.DB, companyID int) ([]models.Receipt, error) {
	rows, err := db.QueryContext(ctx, `
		SELECT id, company_id, vendor_name, amount, receipt_date, preview_url, uploaded_by, created_at
		FROM receipts
		WHERE company_id = ?
		ORDER BY receipt_date DESC, id DESC
	`, companyID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var receipts []models.Receipt
	for rows.Next() {
		var rec models.Receipt
		if err := rows.Scan(&rec.ID, &rec.CompanyID, &rec.VendorName, &rec.Amount, &rec.ReceiptDate, &rec.PreviewURL, &rec.UploadedBy, &rec.CreatedAt); err != nil {
			return nil, err
		}
		receipts = append(receipts, rec)
	}
	return receipts, rows.Err()
}
