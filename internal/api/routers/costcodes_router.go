package routers

import (
	"net/http"

	"sitebooks/internal/api/handlers/costcodes"
)

func costCodesRouter() *http.ServeMux {
	mux := http.NewServeMux()

	mux.HandleFunc("/costcodes/company/{company_id}", costcodes.GetCostCodeTemplatesHandler)
	mux.HandleFunc("/costcodes/create", costcodes.CreateCostCodeTemplateHandler)
	mux.HandleFunc("/costcodes/{id}", costcodes.UpdateCostCodeTemplateHandler)
	mux.HandleFunc("/costcodes/{id}/delete", costcodes.DeleteCostCodeTemplateHandler)

	return mux
}
