package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/lib/pq"
	"github.com/rs/zerolog"

	"github.com/newsdesk-api/internal/database"
	"github.com/newsdesk-api/internal/models"
	"github.com/newsdesk-api/internal/query"
)

// articleRepo is the concrete implementation of ArticleRepository
type articleRepo struct {
	db  *database.DB
	log zerolog.Logger
}

// NewArticleRepo creates a new article repository
func NewArticleRepo(db *database.DB, log zerolog.Logger) ArticleRepository {
	return &articleRepo{
		db:  db,
		log: log.With().Str("repository", "article").Logger(),
	}
}

// encodeTags turns a tag list into the JSONB column value; nil becomes []
func encodeTags(tags []string) ([]byte, error) {
	if tags == nil {
		tags = []string{}
	}
	return json.Marshal(tags)
}

// Create inserts a new article and fills in the generated id and timestamps
func (r *articleRepo) Create(ctx context.Context, article *models.Article) error {
	tagsJSON, err := encodeTags(article.Tags)
	if err != nil {
		return err
	}
	if article.Status == "" {
		article.Status = models.StatusDraft
	}

	query := `
		INSERT INTO articles (author_id, title, description, content, category, region, tags, image, status)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING id, created_at, updated_at
	`
	return r.db.QueryRowContext(ctx, query,
		article.AuthorID, article.Title, article.Description, article.Content,
		article.Category, article.Region, string(tagsJSON), article.Image, article.Status,
	).Scan(&article.ID, &article.CreatedAt, &article.UpdatedAt)
}

// GetByID retrieves an article with its author; a miss returns nil, nil
func (r *articleRepo) GetByID(ctx context.Context, id int64) (*models.ArticleWithAuthor, error) {
	q := "SELECT " + query.ArticleColumns + " FROM articles a JOIN authors au ON au.id = a.author_id WHERE a.id = $1"

	rows, err := r.db.QueryContext(ctx, q, id)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	if !rows.Next() {
		return nil, rows.Err()
	}
	article, err := scanArticle(rows)
	if err != nil {
		return nil, err
	}
	return &article, nil
}

// Update applies the non-nil fields of req. It reports false when no row has the id.
func (r *articleRepo) Update(ctx context.Context, id int64, req *models.UpdateArticleRequest) (bool, error) {
	args := &query.Args{}
	var sets []string

	set := func(column string, value interface{}) {
		sets = append(sets, column+" = "+args.Bind(value))
	}
	if req.Title != nil {
		set("title", *req.Title)
	}
	if req.Description != nil {
		set("description", nullable(*req.Description))
	}
	if req.Content != nil {
		set("content", *req.Content)
	}
	if req.Category != nil {
		set("category", *req.Category)
	}
	if req.Region != nil {
		set("region", nullable(*req.Region))
	}
	if req.Tags != nil {
		tagsJSON, err := encodeTags(*req.Tags)
		if err != nil {
			return false, err
		}
		set("tags", string(tagsJSON))
	}
	if req.Image != nil {
		set("image", nullable(*req.Image))
	}
	if len(sets) == 0 {
		return false, fmt.Errorf("update of article %d has no fields", id)
	}
	sets = append(sets, "updated_at = NOW()")

	q := "UPDATE articles SET " + strings.Join(sets, ", ") + " WHERE id = " + args.Bind(id)
	res, err := r.db.ExecContext(ctx, q, args.Values()...)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	return n > 0, err
}

// nullable maps an empty optional text field to NULL so it can be cleared
func nullable(s string) interface{} {
	if s == "" {
		return nil
	}
	return s
}

// Delete physically removes the articles with the given ids
func (r *articleRepo) Delete(ctx context.Context, ids []int64) (int64, error) {
	res, err := r.db.ExecContext(ctx, "DELETE FROM articles WHERE id = ANY($1)", pq.Array(ids))
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

// transitionSources lists the statuses from which to can be reached
func transitionSources(to models.ArticleStatus) []string {
	var from []string
	for _, s := range []models.ArticleStatus{models.StatusDraft, models.StatusPending, models.StatusApproved, models.StatusRejected} {
		if models.CanTransition(s, to) {
			from = append(from, string(s))
		}
	}
	return from
}

// Transition moves articles to status to. Rows whose current status cannot
// reach to are left alone. Approval sets publish_date the first time only;
// reason is stored as the rejection reason (nil clears it).
func (r *articleRepo) Transition(ctx context.Context, ids []int64, to models.ArticleStatus, reason *string, now time.Time) (int64, error) {
	publish := "publish_date"
	if to == models.StatusApproved {
		publish = "COALESCE(publish_date, $3)"
	}

	q := `
		UPDATE articles
		SET status = $1, rejection_reason = $2, publish_date = ` + publish + `, updated_at = $3
		WHERE id = ANY($4) AND status = ANY($5)
	`
	res, err := r.db.ExecContext(ctx, q, to, reason, now, pq.Array(ids), pq.Array(transitionSources(to)))
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

// SetTopNews flags or unflags articles. Only approved articles can be flagged;
// unflagging applies to any status.
func (r *articleRepo) SetTopNews(ctx context.Context, ids []int64, top bool) (int64, error) {
	q := "UPDATE articles SET is_top_news = $1, updated_at = NOW() WHERE id = ANY($2)"
	if top {
		q += " AND status = 'approved'"
	}
	res, err := r.db.ExecContext(ctx, q, top, pq.Array(ids))
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

// IncrementViews bumps the view counter of an approved article
func (r *articleRepo) IncrementViews(ctx context.Context, id int64) error {
	_, err := r.db.ExecContext(ctx,
		"UPDATE articles SET views_count = views_count + 1 WHERE id = $1 AND status = 'approved'", id)
	return err
}

// CountExisting returns how many of ids exist
func (r *articleRepo) CountExisting(ctx context.Context, ids []int64) (int, error) {
	var count int
	err := r.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM articles WHERE id = ANY($1)", pq.Array(ids)).Scan(&count)
	return count, err
}

// CountByStatus returns article counts per status, optionally for one author.
// Every status is present in the result.
func (r *articleRepo) CountByStatus(ctx context.Context, authorID *int64) (map[models.ArticleStatus]int, error) {
	q := "SELECT status, COUNT(*) FROM articles"
	var args []interface{}
	if authorID != nil {
		q += " WHERE author_id = $1"
		args = append(args, *authorID)
	}
	q += " GROUP BY status"

	rows, err := r.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	counts := make(map[models.ArticleStatus]int, len(models.ValidStatuses))
	for s := range models.ValidStatuses {
		counts[s] = 0
	}
	for rows.Next() {
		var status models.ArticleStatus
		var n int
		if err := rows.Scan(&status, &n); err != nil {
			return nil, err
		}
		counts[status] = n
	}
	return counts, rows.Err()
}
