package routers

import (
	"net/http"

	"sitebooks/internal/api/handlers/receipts"
)

func receiptsRouter() *http.ServeMux {
	mux := http.NewServeMux()

	mux.HandleFunc("/receipts/company/{company_id}", receipts.GetReceiptsHandler)
	mux.HandleFunc("/receipts/create", receipts.CreateReceiptHandler)
	mux.HandleFunc("/receipts/{id}", receipts.DeleteReceiptHandler)

	return mux
}
