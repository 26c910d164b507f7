package domain

import (
	"math"
	"strings"
	"time"
)

// Pagination defaults for list endpoints.
const (
	DefaultPageSize = 10
	MaxPageSize     = 100
)

// TaskFilter narrows a task listing. Every set dimension must match; within
// Tags any single name is enough.
type TaskFilter struct {
	State          *string
	ExpirationDate *time.Time
	Tags           []string
	// NoMatch is set when a filter value can never match a stored task,
	// e.g. an expiration date that is not a date.
	NoMatch bool
}

// NewTaskFilter builds a filter from query-string values. Values are not
// validated: an unknown state simply matches nothing, and so does a
// malformed expiration date. Tag values may repeat and may be comma-separated.
func NewTaskFilter(state, expirationDate string, tags []string) TaskFilter {
	var f TaskFilter
	if state != "" {
		f.State = &state
	}
	if expirationDate != "" {
		date, err := time.Parse(DateLayout, expirationDate)
		if err != nil {
			f.NoMatch = true
		} else {
			f.ExpirationDate = &date
		}
	}
	seen := make(map[string]struct{})
	for _, value := range tags {
		for _, name := range strings.Split(value, ",") {
			name = strings.TrimSpace(name)
			if name == "" {
				continue
			}
			if _, dup := seen[name]; dup {
				continue
			}
			seen[name] = struct{}{}
			f.Tags = append(f.Tags, name)
		}
	}
	return f
}

// PageRequest selects one page of a listing. Page is 1-based.
type PageRequest struct {
	Page     int
	PageSize int
}

// NewPageRequest normalizes the page size: non-positive sizes fall back to
// DefaultPageSize and large ones are capped at MaxPageSize.
func NewPageRequest(page, pageSize int) PageRequest {
	if pageSize <= 0 {
		pageSize = DefaultPageSize
	}
	if pageSize > MaxPageSize {
		pageSize = MaxPageSize
	}
	return PageRequest{Page: page, PageSize: pageSize}
}

// Offset returns the number of rows preceding the page. Offsets too large
// for an int saturate at math.MaxInt.
func (p PageRequest) Offset() int {
	if p.Page < 1 || p.PageSize < 1 {
		return 0
	}
	if p.Page-1 > math.MaxInt/p.PageSize {
		return math.MaxInt
	}
	return (p.Page - 1) * p.PageSize
}

// pageCount returns the number of pages a listing of count items fills.
func (p PageRequest) pageCount(count int) int {
	if count <= 0 || p.PageSize < 1 {
		return 0
	}
	return (count-1)/p.PageSize + 1
}

// Valid reports whether the page exists for a listing of count items.
// Page 1 always exists, even for an empty listing.
func (p PageRequest) Valid(count int) bool {
	if p.Page < 1 {
		return false
	}
	return p.Page == 1 || p.Page <= p.pageCount(count)
}

// HasNext reports whether another page follows this one.
func (p PageRequest) HasNext(count int) bool {
	return p.Page >= 1 && p.Page < p.pageCount(count)
}

// TaskPage is one page of tasks plus the total number of matching tasks.
type TaskPage struct {
	Tasks []*Task
	Count int
	Page  PageRequest
}

// TagPage is one page of tags plus the total number of tags.
type TagPage struct {
	Tags  []*Tag
	Count int
	Page  PageRequest
}
