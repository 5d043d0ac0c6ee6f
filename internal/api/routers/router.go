package routers

import (
	"net/http"
)

func MainRouter() *http.ServeMux {

	mux := http.NewServeMux()

	uRouter := usersRouter()
	mux.Handle("/users/", uRouter)

	tRouter := transactionsRouter()
	mux.Handle("/transactions/", tRouter)

	rRouter := receiptsRouter()
	mux.Handle("/receipts/", rRouter)

	cRouter := costCodesRouter()
	mux.Handle("/costcodes/", cRouter)

	return mux
}
