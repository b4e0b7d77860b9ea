package github

import (
	"context"
	"regexp"
	"strings"
)

// PageFetcher loads one page addressed by cursor and returns its items plus
// the cursor of the next page ("" when exhausted).
type PageFetcher[T any] func(ctx context.Context, cursor string) (items []T, next string, err error)

// CollectPages walks a cursor-paginated listing from first until the fetcher
// reports no next cursor, and returns every item in listing order.
func CollectPages[T any](ctx context.Context, first string, fetch PageFetcher[T]) ([]T, error) {
	var all []T
	seen := make(map[string]struct{})
	cursor := first
	for cursor != "" {
		if _, dup := seen[cursor]; dup {
			break
		}
		seen[cursor] = struct{}{}

		items, next, err := fetch(ctx, cursor)
		if err != nil {
			return nil, err
		}
		all = append(all, items...)
		cursor = next
	}
	return all, nil
}

var linkTarget = regexp.MustCompile(`<([^>]+)>`)

// nextLink extracts the rel="next" target from an RFC 8288 Link header.
func nextLink(header string) string {
	if header == "" {
		return ""
	}
	for _, part := range strings.Split(header, ",") {
		if !strings.Contains(part, `rel="next"`) {
			continue
		}
		if m := linkTarget.FindStringSubmatch(part); m != nil {
			return m[1]
		}
	}
	return ""
}
