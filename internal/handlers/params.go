package handlers

import (
	"net/http"
	"strconv"
)

// pageParams reads page and limit query parameters. Values the composer
// considers out of range are normalised there, not here.
func pageParams(r *http.Request) (page, limit int) {
	page, _ = strconv.Atoi(r.URL.Query().Get("page"))
	limit, _ = strconv.Atoi(r.URL.Query().Get("limit"))
	return page, limit
}
