package routers

import (
	"net/http"

	"sitebooks/internal/api/handlers/transactions"
)

func transactionsRouter() *http.ServeMux {
	mux := http.NewServeMux()

	mux.HandleFunc("/transactions/card/{card_id}", transactions.GetCardTransactionsHandler)
	mux.HandleFunc("/transactions/post", transactions.PostBatchHandler)
	mux.HandleFunc("/transactions/bulk", transactions.BulkDeleteTransactionsHandler)

	mux.HandleFunc("/transactions/{id}", transactions.GetTransactionByIdHandler)
	mux.HandleFunc("/transactions/{id}/coding", transactions.SaveCodingHandler)
	mux.HandleFunc("/transactions/{id}/match", transactions.ConfirmMatchHandler)
	mux.HandleFunc("/transactions/{id}/request-coding", transactions.RequestCodingHandler)
	mux.HandleFunc("/transactions/{id}/reconcile", transactions.SetReconciledHandler)

	return mux
}
