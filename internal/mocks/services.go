package mocks

import (
	"context"

	"github.com/newsdesk-api/internal/models"
	"github.com/newsdesk-api/internal/service"
)

// Verify interface compliance
var (
	_ service.ArticleService       = (*MockArticleService)(nil)
	_ service.PublicArticleService = (*MockPublicService)(nil)
)

// MockArticleService is a mock implementation of ArticleService. Unset hooks
// return zero values; every call records the principal it was made with.
type MockArticleService struct {
	CreateFunc     func(ctx context.Context, p models.Principal, req *models.CreateArticleRequest) (*models.ArticleWithAuthor, error)
	GetFunc        func(ctx context.Context, p models.Principal, id int64) (*models.ArticleWithAuthor, error)
	UpdateFunc     func(ctx context.Context, p models.Principal, id int64, req *models.UpdateArticleRequest) (*models.ArticleWithAuthor, error)
	DeleteFunc     func(ctx context.Context, p models.Principal, id int64) error
	SubmitFunc     func(ctx context.Context, p models.Principal, id int64) (*models.ArticleWithAuthor, error)
	ApproveFunc    func(ctx context.Context, p models.Principal, id int64) (*models.ArticleWithAuthor, error)
	RejectFunc     func(ctx context.Context, p models.Principal, id int64, reason string) (*models.ArticleWithAuthor, error)
	SetTopNewsFunc func(ctx context.Context, p models.Principal, id int64, top bool) (*models.ArticleWithAuthor, error)
	BulkFunc       func(ctx context.Context, p models.Principal, req *models.BulkRequest) (*models.BulkResult, error)
	ListFunc       func(ctx context.Context, p models.Principal, filters models.ArticleFilters) (*models.ArticlePage, error)
	SearchFunc     func(ctx context.Context, p models.Principal, filters models.ArticleFilters) (*models.ArticlePage, error)
	TrendingFunc   func(ctx context.Context, p models.Principal, params models.TrendingParams) (*models.ArticlePage, error)
	StatsFunc      func(ctx context.Context, p models.Principal) (*models.ArticleStats, error)

	LastPrincipal models.Principal
}

func NewMockArticleService() *MockArticleService {
	return &MockArticleService{}
}

func emptyPage() *models.ArticlePage {
	return &models.ArticlePage{
		Articles:   []models.ArticleWithAuthor{},
		Pagination: models.CalculatePagination(1, models.DefaultPageSize, 0),
	}
}

func (m *MockArticleService) Create(ctx context.Context, p models.Principal, req *models.CreateArticleRequest) (*models.ArticleWithAuthor, error) {
	m.LastPrincipal = p
	if m.CreateFunc != nil {
		return m.CreateFunc(ctx, p, req)
	}
	return &models.ArticleWithAuthor{Article: models.Article{ID: 1, AuthorID: p.UserID, Title: req.Title, Status: models.StatusDraft}}, nil
}

func (m *MockArticleService) Get(ctx context.Context, p models.Principal, id int64) (*models.ArticleWithAuthor, error) {
	m.LastPrincipal = p
	if m.GetFunc != nil {
		return m.GetFunc(ctx, p, id)
	}
	return &models.ArticleWithAuthor{Article: models.Article{ID: id}}, nil
}

func (m *MockArticleService) Update(ctx context.Context, p models.Principal, id int64, req *models.UpdateArticleRequest) (*models.ArticleWithAuthor, error) {
	m.LastPrincipal = p
	if m.UpdateFunc != nil {
		return m.UpdateFunc(ctx, p, id, req)
	}
	return &models.ArticleWithAuthor{Article: models.Article{ID: id}}, nil
}

func (m *MockArticleService) Delete(ctx context.Context, p models.Principal, id int64) error {
	m.LastPrincipal = p
	if m.DeleteFunc != nil {
		return m.DeleteFunc(ctx, p, id)
	}
	return nil
}

func (m *MockArticleService) Submit(ctx context.Context, p models.Principal, id int64) (*models.ArticleWithAuthor, error) {
	m.LastPrincipal = p
	if m.SubmitFunc != nil {
		return m.SubmitFunc(ctx, p, id)
	}
	return &models.ArticleWithAuthor{Article: models.Article{ID: id, Status: models.StatusPending}}, nil
}

func (m *MockArticleService) Approve(ctx context.Context, p models.Principal, id int64) (*models.ArticleWithAuthor, error) {
	m.LastPrincipal = p
	if m.ApproveFunc != nil {
		return m.ApproveFunc(ctx, p, id)
	}
	return &models.ArticleWithAuthor{Article: models.Article{ID: id, Status: models.StatusApproved}}, nil
}

func (m *MockArticleService) Reject(ctx context.Context, p models.Principal, id int64, reason string) (*models.ArticleWithAuthor, error) {
	m.LastPrincipal = p
	if m.RejectFunc != nil {
		return m.RejectFunc(ctx, p, id, reason)
	}
	return &models.ArticleWithAuthor{Article: models.Article{ID: id, Status: models.StatusRejected, RejectionReason: &reason}}, nil
}

func (m *MockArticleService) SetTopNews(ctx context.Context, p models.Principal, id int64, top bool) (*models.ArticleWithAuthor, error) {
	m.LastPrincipal = p
	if m.SetTopNewsFunc != nil {
		return m.SetTopNewsFunc(ctx, p, id, top)
	}
	return &models.ArticleWithAuthor{Article: models.Article{ID: id, IsTopNews: top}}, nil
}

func (m *MockArticleService) Bulk(ctx context.Context, p models.Principal, req *models.BulkRequest) (*models.BulkResult, error) {
	m.LastPrincipal = p
	if m.BulkFunc != nil {
		return m.BulkFunc(ctx, p, req)
	}
	return &models.BulkResult{Requested: len(req.IDs), Found: len(req.IDs), Affected: int64(len(req.IDs))}, nil
}

func (m *MockArticleService) List(ctx context.Context, p models.Principal, filters models.ArticleFilters) (*models.ArticlePage, error) {
	m.LastPrincipal = p
	if m.ListFunc != nil {
		return m.ListFunc(ctx, p, filters)
	}
	return emptyPage(), nil
}

func (m *MockArticleService) Search(ctx context.Context, p models.Principal, filters models.ArticleFilters) (*models.ArticlePage, error) {
	m.LastPrincipal = p
	if m.SearchFunc != nil {
		return m.SearchFunc(ctx, p, filters)
	}
	return emptyPage(), nil
}

func (m *MockArticleService) Trending(ctx context.Context, p models.Principal, params models.TrendingParams) (*models.ArticlePage, error) {
	m.LastPrincipal = p
	if m.TrendingFunc != nil {
		return m.TrendingFunc(ctx, p, params)
	}
	return emptyPage(), nil
}

func (m *MockArticleService) Stats(ctx context.Context, p models.Principal) (*models.ArticleStats, error) {
	m.LastPrincipal = p
	if m.StatsFunc != nil {
		return m.StatsFunc(ctx, p)
	}
	return &models.ArticleStats{ByStatus: map[models.ArticleStatus]int{}}, nil
}

// MockPublicService is a mock implementation of PublicArticleService
type MockPublicService struct {
	GetPublishedFunc      func(ctx context.Context, id int64) (*models.ArticleWithAuthor, error)
	ListPublishedFunc     func(ctx context.Context, filters models.ArticleFilters) (*models.ArticlePage, error)
	SearchPublishedFunc   func(ctx context.Context, filters models.ArticleFilters) (*models.ArticlePage, error)
	TrendingPublishedFunc func(ctx context.Context, params models.TrendingParams) (*models.ArticlePage, error)
	TrendingTagsFunc      func(ctx context.Context, timeframe string, limit int) ([]models.TagCount, error)

	LastFilters models.ArticleFilters
	LastParams  models.TrendingParams
}

func NewMockPublicService() *MockPublicService {
	return &MockPublicService{}
}

func (m *MockPublicService) GetPublished(ctx context.Context, id int64) (*models.ArticleWithAuthor, error) {
	if m.GetPublishedFunc != nil {
		return m.GetPublishedFunc(ctx, id)
	}
	return &models.ArticleWithAuthor{Article: models.Article{ID: id, Status: models.StatusApproved}}, nil
}

func (m *MockPublicService) ListPublished(ctx context.Context, filters models.ArticleFilters) (*models.ArticlePage, error) {
	m.LastFilters = filters
	if m.ListPublishedFunc != nil {
		return m.ListPublishedFunc(ctx, filters)
	}
	return emptyPage(), nil
}

func (m *MockPublicService) SearchPublished(ctx context.Context, filters models.ArticleFilters) (*models.ArticlePage, error) {
	m.LastFilters = filters
	if m.SearchPublishedFunc != nil {
		return m.SearchPublishedFunc(ctx, filters)
	}
	return emptyPage(), nil
}

func (m *MockPublicService) TrendingPublished(ctx context.Context, params models.TrendingParams) (*models.ArticlePage, error) {
	m.LastParams = params
	if m.TrendingPublishedFunc != nil {
		return m.TrendingPublishedFunc(ctx, params)
	}
	return emptyPage(), nil
}

func (m *MockPublicService) TrendingTags(ctx context.Context, timeframe string, limit int) ([]models.TagCount, error) {
	m.LastParams = models.TrendingParams{Timeframe: timeframe, Limit: limit}
	if m.TrendingTagsFunc != nil {
		return m.TrendingTagsFunc(ctx, timeframe, limit)
	}
	return []models.TagCount{}, nil
}
