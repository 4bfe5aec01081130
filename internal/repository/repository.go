package repository

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"github.com/newsdesk-api/internal/database"
	"github.com/newsdesk-api/internal/models"
	"github.com/newsdesk-api/internal/query"
)

// AuthorRepository defines the interface for author data operations
type AuthorRepository interface {
	Create(ctx context.Context, author *models.Author) error
	GetByID(ctx context.Context, id int64) (*models.Author, error)
	Count(ctx context.Context) (int, error)
}

// ArticleRepository defines the interface for article data operations.
// Bulk-capable writes take a list of ids and return the number of rows
// changed; status guards are part of the UPDATE so they hold under races.
type ArticleRepository interface {
	Create(ctx context.Context, article *models.Article) error
	GetByID(ctx context.Context, id int64) (*models.ArticleWithAuthor, error)
	Update(ctx context.Context, id int64, req *models.UpdateArticleRequest) (bool, error)
	Delete(ctx context.Context, ids []int64) (int64, error)
	Transition(ctx context.Context, ids []int64, to models.ArticleStatus, reason *string, now time.Time) (int64, error)
	SetTopNews(ctx context.Context, ids []int64, top bool) (int64, error)
	IncrementViews(ctx context.Context, id int64) error
	CountExisting(ctx context.Context, ids []int64) (int, error)
	CountByStatus(ctx context.Context, authorID *int64) (map[models.ArticleStatus]int, error)

	// Query engine
	FindWithFilters(ctx context.Context, filters models.ArticleFilters, fallbackSort string) (*models.ArticlePage, error)
	FindTrending(ctx context.Context, formula query.Formula, now time.Time, authorID *int64, page, limit int) (*models.ArticlePage, error)
	TrendingTags(ctx context.Context, formula query.Formula, now time.Time, limit int) ([]models.TagCount, error)
}

// Repositories holds all repository interfaces
type Repositories struct {
	Author  AuthorRepository
	Article ArticleRepository
}

// New creates all repositories with the given database connection
func New(db *database.DB, log zerolog.Logger) *Repositories {
	return &Repositories{
		Author:  NewAuthorRepo(db),
		Article: NewArticleRepo(db, log),
	}
}
