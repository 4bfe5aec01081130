package query

import (
	"strings"
)

const (
	SortAsc  = "ASC"
	SortDesc = "DESC"

	// DefaultSortColumn is used by dashboard listings
	DefaultSortColumn = "created_at"
	// PublicSortColumn is used by public listings
	PublicSortColumn = "publish_date"
)

// sortColumns maps allowed sort keys to their SQL column
var sortColumns = map[string]string{
	"created_at":   "a.created_at",
	"updated_at":   "a.updated_at",
	"publish_date": "a.publish_date",
	"views_count":  "a.views_count",
	"title":        "a.title",
	"status":       "a.status",
	"category":     "a.category",
	"region":       "a.region",
	"is_top_news":  "a.is_top_news",
}

// nullable columns sort their NULLs after every value in both directions
var nullableColumns = map[string]bool{
	"publish_date": true,
	"region":       true,
}

// Sort is a resolved, allow-listed ordering
type Sort struct {
	Column    string
	Direction string
}

// ResolveSort validates a requested column and direction. Unknown columns fall
// back to fallback (or created_at if fallback itself is unknown); anything but
// ASC/DESC falls back to DESC.
func ResolveSort(column, direction, fallback string) Sort {
	if _, ok := sortColumns[column]; !ok {
		column = fallback
		if _, ok := sortColumns[column]; !ok {
			column = DefaultSortColumn
		}
	}

	switch strings.ToUpper(strings.TrimSpace(direction)) {
	case SortAsc:
		direction = SortAsc
	default:
		direction = SortDesc
	}

	return Sort{Column: column, Direction: direction}
}

// OrderBy renders the ORDER BY list, with id descending as the tie-breaker
func (s Sort) OrderBy() string {
	col := sortColumns[s.Column]
	if col == "" {
		col = sortColumns[DefaultSortColumn]
	}
	clause := col + " " + s.Direction
	if nullableColumns[s.Column] {
		clause += " NULLS LAST"
	}
	return clause + ", a.id DESC"
}
