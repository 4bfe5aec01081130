package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/newsdesk-api/internal/models"
	"github.com/newsdesk-api/internal/query"
)

type scanner interface {
	Scan(dest ...interface{}) error
}

// scanArticle reads one row in query.ArticleColumns order, followed by extra
func scanArticle(row scanner, extra ...interface{}) (models.ArticleWithAuthor, error) {
	var a models.ArticleWithAuthor
	var tagsJSON []byte
	var publishDate sql.NullTime

	dest := []interface{}{
		&a.ID, &a.AuthorID, &a.Title, &a.Description, &a.Content, &a.Category, &a.Region,
		&tagsJSON, &a.Image, &a.Status, &a.RejectionReason, &a.IsTopNews, &a.ViewsCount,
		&publishDate, &a.CreatedAt, &a.UpdatedAt,
		&a.AuthorName, &a.AuthorEmail,
	}
	if err := row.Scan(append(dest, extra...)...); err != nil {
		return a, err
	}

	if publishDate.Valid {
		a.PublishDate = &publishDate.Time
	}
	if err := decodeTags(tagsJSON, &a.Tags); err != nil {
		return a, fmt.Errorf("article %d: %w", a.ID, err)
	}
	return a, nil
}

// decodeTags reads the JSONB tag column; NULL and empty decode to []
func decodeTags(raw []byte, tags *[]string) error {
	*tags = []string{}
	if len(raw) == 0 {
		return nil
	}
	if err := json.Unmarshal(raw, tags); err != nil {
		return fmt.Errorf("decode tags: %w", err)
	}
	if *tags == nil {
		*tags = []string{}
	}
	return nil
}

// count runs the pre-pagination COUNT of a plan
func (r *articleRepo) count(ctx context.Context, plan query.Plan) (int, error) {
	var total int
	if err := r.db.QueryRowContext(ctx, plan.CountSQL, plan.CountArgs...).Scan(&total); err != nil {
		return 0, fmt.Errorf("count articles: %w", err)
	}
	return total, nil
}

// FindWithFilters returns one page of articles matching filters plus the
// pre-pagination total. The count and the page are separate round-trips and
// are not read from a shared snapshot.
func (r *articleRepo) FindWithFilters(ctx context.Context, filters models.ArticleFilters, fallbackSort string) (*models.ArticlePage, error) {
	plan := query.PlanFilters(filters, fallbackSort)

	total, err := r.count(ctx, plan)
	if err != nil {
		return nil, err
	}

	rows, err := r.db.QueryContext(ctx, plan.PageSQL, plan.PageArgs...)
	if err != nil {
		return nil, fmt.Errorf("fetch articles: %w", err)
	}
	defer rows.Close()

	articles := make([]models.ArticleWithAuthor, 0, plan.Limit)
	for rows.Next() {
		a, err := scanArticle(rows)
		if err != nil {
			return nil, err
		}
		articles = append(articles, a)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("fetch articles: %w", err)
	}

	return &models.ArticlePage{
		Articles:   articles,
		Pagination: models.CalculatePagination(plan.Page, plan.Limit, total),
	}, nil
}

// FindTrending ranks eligible articles by the formula's score as of now.
// The per-row diagnostics are logged at debug level and not returned.
func (r *articleRepo) FindTrending(ctx context.Context, formula query.Formula, now time.Time, authorID *int64, page, limit int) (*models.ArticlePage, error) {
	plan := query.PlanTrending(formula, now, authorID, page, limit)

	total, err := r.count(ctx, plan)
	if err != nil {
		return nil, err
	}

	rows, err := r.db.QueryContext(ctx, plan.PageSQL, plan.PageArgs...)
	if err != nil {
		return nil, fmt.Errorf("fetch trending articles: %w", err)
	}
	defer rows.Close()

	articles := make([]models.ArticleWithAuthor, 0, plan.Limit)
	for rows.Next() {
		var score, viewsPerHour, hoursSince float64
		a, err := scanArticle(rows, &score, &viewsPerHour, &hoursSince)
		if err != nil {
			return nil, err
		}
		r.log.Debug().
			Int64("article_id", a.ID).
			Str("timeframe", string(formula.Timeframe)).
			Float64("trending_score", score).
			Float64("views_per_hour", viewsPerHour).
			Float64("hours_since_publish", hoursSince).
			Msg("Trending candidate")
		articles = append(articles, a)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("fetch trending articles: %w", err)
	}

	return &models.ArticlePage{
		Articles:   articles,
		Pagination: models.CalculatePagination(plan.Page, plan.Limit, total),
	}, nil
}

// TrendingTags returns the most viewed tags among trending-eligible articles
func (r *articleRepo) TrendingTags(ctx context.Context, formula query.Formula, now time.Time, limit int) ([]models.TagCount, error) {
	q, args := query.PlanTrendingTags(formula, now, limit)

	rows, err := r.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, fmt.Errorf("fetch trending tags: %w", err)
	}
	defer rows.Close()

	result := []models.TagCount{}
	for rows.Next() {
		var tc models.TagCount
		if err := rows.Scan(&tc.Tag, &tc.Articles, &tc.Views); err != nil {
			return nil, err
		}
		result = append(result, tc)
	}
	return result, rows.Err()
}
