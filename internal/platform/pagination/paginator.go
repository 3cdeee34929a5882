package pagination

import (
	"net/url"
	"strconv"
)

// Page is one window of a sorted result set.
type Page[T any] struct {
	Items      []T
	NextCursor string
	PrevCursor string
	LinkHeader string
}

// Paginate returns the items following cursor, at most limit of them.
// items must already be in their final order; getID must be unique per item.
// baseURL and query build the Link header, query is copied and never mutated.
func Paginate[T any](
	items []T,
	cursor Cursor,
	limit int,
	cursorType string,
	getID func(T) string,
	baseURL string,
	query url.Values,
) (Page[T], error) {
	if limit <= 0 {
		limit = DefaultLimit
	}

	start := 0
	if cursor.Value != "" {
		idx := indexOf(items, cursor.Value, getID)
		if idx < 0 {
			return Page[T]{}, ErrCursorNotFound
		}
		start = idx + 1
	}
	end := min(start+limit, len(items))

	page := Page[T]{Items: items[start:end]}
	if end < len(items) && len(page.Items) > 0 {
		page.NextCursor = Cursor{Type: cursorType, Value: getID(page.Items[len(page.Items)-1])}.Encode()
	}
	switch {
	case start == 0:
	case start <= limit:
		page.PrevCursor = Cursor{Type: cursorType}.Encode()
	default:
		page.PrevCursor = Cursor{Type: cursorType, Value: getID(items[start-limit-1])}.Encode()
	}

	q := cloneValues(query)
	q.Set("limit", strconv.Itoa(limit))
	page.LinkHeader = BuildLinkHeader(baseURL, q, page.NextCursor, page.PrevCursor)
	return page, nil
}

func indexOf[T any](items []T, id string, getID func(T) string) int {
	for i, item := range items {
		if getID(item) == id {
			return i
		}
	}
	return -1
}
