package service

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"github.com/newsdesk-api/internal/config"
	"github.com/newsdesk-api/internal/models"
	"github.com/newsdesk-api/internal/repository"
)

// ArticleService defines the article workflow and query operations.
// Dashboard operations take the authenticated caller; public ones do not.
type ArticleService interface {
	Create(ctx context.Context, p models.Principal, req *models.CreateArticleRequest) (*models.ArticleWithAuthor, error)
	Get(ctx context.Context, p models.Principal, id int64) (*models.ArticleWithAuthor, error)
	Update(ctx context.Context, p models.Principal, id int64, req *models.UpdateArticleRequest) (*models.ArticleWithAuthor, error)
	Delete(ctx context.Context, p models.Principal, id int64) error
	Submit(ctx context.Context, p models.Principal, id int64) (*models.ArticleWithAuthor, error)
	Approve(ctx context.Context, p models.Principal, id int64) (*models.ArticleWithAuthor, error)
	Reject(ctx context.Context, p models.Principal, id int64, reason string) (*models.ArticleWithAuthor, error)
	SetTopNews(ctx context.Context, p models.Principal, id int64, top bool) (*models.ArticleWithAuthor, error)
	Bulk(ctx context.Context, p models.Principal, req *models.BulkRequest) (*models.BulkResult, error)
	List(ctx context.Context, p models.Principal, filters models.ArticleFilters) (*models.ArticlePage, error)
	Search(ctx context.Context, p models.Principal, filters models.ArticleFilters) (*models.ArticlePage, error)
	Trending(ctx context.Context, p models.Principal, params models.TrendingParams) (*models.ArticlePage, error)
	Stats(ctx context.Context, p models.Principal) (*models.ArticleStats, error)
}

// PublicArticleService serves approved articles to anonymous readers
type PublicArticleService interface {
	GetPublished(ctx context.Context, id int64) (*models.ArticleWithAuthor, error)
	ListPublished(ctx context.Context, filters models.ArticleFilters) (*models.ArticlePage, error)
	SearchPublished(ctx context.Context, filters models.ArticleFilters) (*models.ArticlePage, error)
	TrendingPublished(ctx context.Context, params models.TrendingParams) (*models.ArticlePage, error)
	TrendingTags(ctx context.Context, timeframe string, limit int) ([]models.TagCount, error)
}

// Services holds all service interfaces
type Services struct {
	Articles ArticleService
	Public   PublicArticleService

	articles *articleService
}

// Wait blocks until background view updates have finished
func (s *Services) Wait() {
	if s.articles != nil {
		s.articles.Wait()
	}
}

// Option customizes service construction
type Option func(*articleService)

// WithClock replaces the wall clock used for trending and approvals
func WithClock(now func() time.Time) Option {
	return func(s *articleService) {
		s.now = now
	}
}

// NewServices creates all services
func NewServices(repos *repository.Repositories, cfg *config.Config, log zerolog.Logger, opts ...Option) *Services {
	articles := newArticleService(repos, cfg.Query, log)
	for _, opt := range opts {
		opt(articles)
	}

	return &Services{
		Articles: articles,
		Public:   articles,
		articles: articles,
	}
}
