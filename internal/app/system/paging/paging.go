// internal/app/system/paging/paging.go
package paging

import (
	"math"
	"net/http"
	"strconv"

	"github.com/dalemusser/waffle/pantry/query"
)

// DefaultLimit is the page size used when the request does not name one.
const DefaultLimit = 10

// MaxLimit caps the page size. The admin reorder screen loads a whole
// category at once, so this stays generous.
const MaxLimit = 1000

// Request is a parsed page/limit pair. Both are always >= 1.
type Request struct {
	Page  int
	Limit int
}

// Parse reads "page" and "limit" from the query string. Missing,
// non-numeric or non-positive values fall back to 1 and DefaultLimit;
// a limit above MaxLimit is clamped.
func Parse(r *http.Request) Request {
	return Request{
		Page:  positiveInt(query.Get(r, "page"), 1),
		Limit: Clamp(positiveInt(query.Get(r, "limit"), DefaultLimit)),
	}
}

// Clamp bounds a limit to [1, MaxLimit].
func Clamp(limit int) int {
	if limit < 1 {
		return DefaultLimit
	}
	if limit > MaxLimit {
		return MaxLimit
	}
	return limit
}

// Skip is the number of documents before the first row of the page. A page
// too far out to count saturates at math.MaxInt64, which still reads as
// past the end.
func (p Request) Skip() int64 {
	if p.Page < 1 || p.Limit < 1 {
		return 0
	}
	before, limit := int64(p.Page-1), int64(p.Limit)
	if before > math.MaxInt64/limit {
		return math.MaxInt64
	}
	return before * limit
}

// Info is the pagination block returned alongside a page of rows.
type Info struct {
	Page       int   `json:"page"`
	Limit      int   `json:"limit"`
	Total      int64 `json:"total"`
	TotalPages int64 `json:"totalPages"`
}

// NewInfo computes TotalPages as ceil(total / limit).
func NewInfo(p Request, total int64) Info {
	return Info{
		Page:       p.Page,
		Limit:      p.Limit,
		Total:      total,
		TotalPages: TotalPages(total, p.Limit),
	}
}

// TotalPages returns ceil(total / limit), or 0 when either is non-positive.
func TotalPages(total int64, limit int) int64 {
	if total <= 0 || limit <= 0 {
		return 0
	}
	l := int64(limit)
	return (total + l - 1) / l
}

func positiveInt(s string, def int) int {
	if s == "" {
		return def
	}
	n, err := strconv.Atoi(s)
	if err != nil || n < 1 {
		return def
	}
	return n
}
