// Package page implements offset/limit pagination over fully fetched
// result sets, including next/previous link construction.
package page

import (
	"net/url"
	"strconv"
)

// Page is a bounded slice of a larger ordered result set plus links to
// the adjacent slices. NextPage and PreviousPage are nil when no such
// slice exists.
type Page[T any] struct {
	Items        []T     `json:"items"`
	Href         string  `json:"href"`
	NextPage     *string `json:"next_page"`
	PreviousPage *string `json:"previous_page"`
	Offset       int     `json:"offset"`
	Limit        int     `json:"limit"`
	Total        int     `json:"total"`
}

// Paginate slices items at [offset, offset+limit) and builds adjacent
// page links by substituting the offset and limit query parameters of
// u. Offset and limit must be non-negative. The function is pure: u is
// only read, never modified.
func Paginate[T any](items []T, offset, limit int, u *url.URL) Page[T] {
	total := len(items)

	sliced := []T{}
	if offset < total {
		end := offset + limit
		if end > total {
			end = total
		}
		sliced = items[offset:end]
	}

	return Page[T]{
		Items:        sliced,
		Href:         u.String(),
		NextPage:     nextPage(u, offset, limit, total),
		PreviousPage: previousPage(u, offset, limit),
		Offset:       offset,
		Limit:        limit,
		Total:        total,
	}
}

// Empty returns a zero-item page anchored at u with the given limit.
// Used when a freshly created parent has no children yet.
func Empty[T any](limit int, u *url.URL) Page[T] {
	return Paginate([]T{}, 0, limit, u)
}

func nextPage(u *url.URL, offset, limit, total int) *string {
	if total <= limit+offset {
		return nil
	}
	s := replaceQuery(u, offset+limit, limit)
	return &s
}

func previousPage(u *url.URL, offset, limit int) *string {
	if offset == 0 {
		return nil
	}
	var s string
	if offset >= limit {
		s = replaceQuery(u, offset-limit, limit)
	} else {
		// The previous page is sized to reach exactly back to the start.
		s = replaceQuery(u, 0, offset)
	}
	return &s
}

func replaceQuery(u *url.URL, offset, limit int) string {
	linked := *u
	q := linked.Query()
	q.Set("offset", strconv.Itoa(offset))
	q.Set("limit", strconv.Itoa(limit))
	linked.RawQuery = q.Encode()
	return linked.String()
}
