// Package pagination reads limit/offset query parameters for list endpoints.
package pagination

import (
	"errors"
	"net/http"
	"strconv"

	"carvex/internal/storage"
)

var ErrInvalidPage = errors.New("invalid pagination parameters")

// FromRequest parses ?limit=&offset=. Missing values fall back to defaults and
// limits above storage.MaxLimit are clamped.
func FromRequest(r *http.Request) (storage.Page, error) {
	page := storage.DefaultPage()
	q := r.URL.Query()

	if v := q.Get("limit"); v != "" {
		n, err := strconv.ParseInt(v, 10, 64)
		if err != nil || n <= 0 {
			return storage.Page{}, ErrInvalidPage
		}
		page.Limit = min(n, storage.MaxLimit)
	}

	if v := q.Get("offset"); v != "" {
		n, err := strconv.ParseInt(v, 10, 64)
		if err != nil || n < 0 {
			return storage.Page{}, ErrInvalidPage
		}
		page.Offset = n
	}

	return page, nil
}
