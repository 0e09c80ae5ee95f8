package search

import (
	"strings"

	"github.com/deal-drive/site/filter"
)

const sortSeparator = "/sort/"

// SortBy returns the sort_by expression for an ordering. Relevance is the
// index's own ranking and needs none.
func SortBy(s filter.Sort) string {
	switch s {
	case filter.Newest:
		return FieldTimestamp + ":desc"
	case filter.Oldest:
		return FieldTimestamp + ":asc"
	default:
		return ""
	}
}

// SortSelector names an index together with its ordering, either
// "{index}" or "{index}/sort/{field}:{asc|desc}".
func SortSelector(index string, s filter.Sort) string {
	if by := SortBy(s); by != "" {
		return index + sortSeparator + by
	}
	return index
}

// ParseSortSelector splits a selector into its index and sort_by parts.
func ParseSortSelector(selector string) (index, sortBy string) {
	index, sortBy, _ = strings.Cut(selector, sortSeparator)
	return index, sortBy
}

// SortFromSelector recovers the ordering named by a selector.
func SortFromSelector(selector string) filter.Sort {
	_, by := ParseSortSelector(selector)
	switch by {
	case FieldTimestamp + ":desc":
		return filter.Newest
	case FieldTimestamp + ":asc":
		return filter.Oldest
	default:
		return filter.Relevance
	}
}
