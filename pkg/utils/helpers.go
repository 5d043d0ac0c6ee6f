package utils

import (
	"fmt"
	"net/http"
	"strconv"
	"strings"
)

type ContextKey string

func GetPaginationParams(r *http.Request) (int, int) {
	page, err := strconv.Atoi(r.URL.Query().Get("page"))
	if err != nil || page < 1 {
		page = 1
	}
	limit, err := strconv.Atoi(r.URL.Query().Get("limit"))
	if err != nil || limit < 1 || limit > 100 {
		limit = 20
	}
	return page, limit
}

// AddSorting appends an ORDER BY clause from sortBy/sortOrder query params.
// Only whitelisted column names are accepted; anything else leaves the query
// untouched.
func AddSorting(r *http.Request, query string, allowedColumns ...string) string {
	sortBy := r.URL.Query().Get("sortBy")
	if sortBy == "" {
		return query
	}

	allowed := false
	for _, col := range allowedColumns {
		if col == sortBy {
			allowed = true
			break
		}
	}
	if !allowed {
		return query
	}

	order := "ASC"
	if strings.EqualFold(r.URL.Query().Get("sortOrder"), "desc") {
		order = "DESC"
	}

	return fmt.Sprintf("%s ORDER BY %s %s", query, sortBy, order)
}
