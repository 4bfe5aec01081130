package query

import (
	"strings"

	"github.com/newsdesk-api/internal/models"
)

// CompileFilters turns an article filter into a conjunction of predicates.
// Unset fields add nothing. Tags match when the article carries any of them.
func CompileFilters(f models.ArticleFilters) Predicates {
	var ps Predicates

	if f.Status != "" {
		ps = append(ps, Eq{Column: "a.status", Value: string(f.Status)})
	}
	if f.Category != "" {
		ps = append(ps, Eq{Column: "a.category", Value: f.Category})
	}
	if f.Region != "" {
		ps = append(ps, Eq{Column: "a.region", Value: f.Region})
	}
	if f.AuthorID != nil {
		ps = append(ps, Eq{Column: "a.author_id", Value: *f.AuthorID})
	}
	if f.IsTopNews != nil {
		ps = append(ps, Eq{Column: "a.is_top_news", Value: *f.IsTopNews})
	}
	if len(f.Tags) > 0 {
		ps = append(ps, ContainsAny{Column: "a.tags", Values: f.Tags})
	}
	if q := strings.TrimSpace(f.Search); q != "" {
		ps = append(ps, TextMatch{Query: q})
	}

	return ps
}
