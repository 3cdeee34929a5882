package pagination

import (
	"fmt"
	"net/url"
	"strings"
)

// BuildLinkHeader builds an RFC 8288 Link header with next and prev
// relations. Existing query parameters are preserved; cursor is replaced.
func BuildLinkHeader(baseURL string, query url.Values, nextCursor, prevCursor string) string {
	var links []string
	add := func(cursor, rel string) {
		if cursor == "" {
			return
		}
		q := cloneValues(query)
		q.Set("cursor", cursor)
		links = append(links, fmt.Sprintf("<%s?%s>; rel=%q", baseURL, q.Encode(), rel))
	}
	add(nextCursor, "next")
	add(prevCursor, "prev")
	return strings.Join(links, ", ")
}

func cloneValues(v url.Values) url.Values {
	out := make(url.Values, len(v))
	for k, vals := range v {
		out[k] = append([]string(nil), vals...)
	}
	return out
}
