// internal/app/system/paging/paging.go
package paging

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/dalemusser/waffle/pantry/query"
	"go.mongodb.org/mongo-driver/bson"
)

// DefaultLimit is the page size when the client does not send one.
const DefaultLimit = 10

// MaxLimit caps client-requested page sizes.
const MaxLimit = 100

// Page is a 1-based page request.
type Page struct {
	Page  int
	Limit int
}

// Skip is the number of documents before this page.
func (p Page) Skip() int64 {
	return int64((p.Page - 1) * p.Limit)
}

// Parse reads ?page= and ?limit=. Bad or missing values fall back to page 1
// and DefaultLimit; limit is clamped to MaxLimit.
func Parse(r *http.Request) Page {
	return Page{
		Page:  atoiMin(query.Get(r, "page"), 1, 1),
		Limit: clamp(atoiMin(query.Get(r, "limit"), DefaultLimit, 1), MaxLimit),
	}
}

func atoiMin(s string, def, min int) int {
	if s == "" {
		return def
	}
	n, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil || n < min {
		return def
	}
	return n
}

func clamp(n, max int) int {
	if n > max {
		return max
	}
	return n
}

// Meta is the pagination block returned alongside list results.
type Meta struct {
	CurrentPage  int   `json:"currentPage"`
	TotalPages   int   `json:"totalPages"`
	TotalItems   int64 `json:"totalItems"`
	ItemsPerPage int   `json:"itemsPerPage"`
	HasNext      bool  `json:"hasNext"`
	HasPrev      bool  `json:"hasPrev"`
}

// NewMeta builds Meta for page p over total matching documents.
func NewMeta(p Page, total int64) Meta {
	pages := int((total + int64(p.Limit) - 1) / int64(p.Limit))
	return Meta{
		CurrentPage:  p.Page,
		TotalPages:   pages,
		TotalItems:   total,
		ItemsPerPage: p.Limit,
		HasNext:      p.Page < pages,
		HasPrev:      p.Page > 1,
	}
}

// Sort reads ?sortBy= and ?sortOrder=. allowed maps client field names to
// stored field names; unknown names use def. Order defaults to descending.
// _id is appended as a tiebreaker so pages are stable.
func Sort(r *http.Request, allowed map[string]string, def string) bson.D {
	field, ok := allowed[query.Get(r, "sortBy")]
	if !ok {
		field = def
	}
	dir := -1
	if strings.EqualFold(query.Get(r, "sortOrder"), "asc") {
		dir = 1
	}
	if field == "_id" {
		return bson.D{{Key: "_id", Value: dir}}
	}
	return bson.D{{Key: field, Value: dir}, {Key: "_id", Value: dir}}
}
