package mocks

import (
	"context"
	"sync"
	"time"

	"github.com/newsdesk-api/internal/models"
	"github.com/newsdesk-api/internal/query"
	"github.com/newsdesk-api/internal/repository"
)

// Verify interface compliance
var (
	_ repository.AuthorRepository  = (*MockAuthorRepository)(nil)
	_ repository.ArticleRepository = (*MockArticleRepository)(nil)
)

// MockAuthorRepository is a mock implementation of AuthorRepository
type MockAuthorRepository struct {
	Authors  map[int64]*models.Author
	GetError error
	nextID   int64
}

func NewMockAuthorRepository() *MockAuthorRepository {
	return &MockAuthorRepository{
		Authors: make(map[int64]*models.Author),
	}
}

func (m *MockAuthorRepository) Create(ctx context.Context, author *models.Author) error {
	m.nextID++
	author.ID = m.nextID
	author.CreatedAt = time.Now()
	m.Authors[author.ID] = author
	return nil
}

func (m *MockAuthorRepository) GetByID(ctx context.Context, id int64) (*models.Author, error) {
	if m.GetError != nil {
		return nil, m.GetError
	}
	return m.Authors[id], nil
}

func (m *MockAuthorRepository) Count(ctx context.Context) (int, error) {
	return len(m.Authors), nil
}

// MockArticleRepository keeps articles in memory. Writes follow the same
// status guards as the SQL store; the query methods are driven by the
// Func hooks and record the arguments they were called with.
type MockArticleRepository struct {
	mu       sync.Mutex
	Articles map[int64]*models.ArticleWithAuthor
	nextID   int64

	GetError   error
	WriteError error
	ViewError  error
	ViewCalls  []int64

	FindWithFiltersFunc func(ctx context.Context, filters models.ArticleFilters, fallbackSort string) (*models.ArticlePage, error)
	FindTrendingFunc    func(ctx context.Context, formula query.Formula, now time.Time, authorID *int64, page, limit int) (*models.ArticlePage, error)
	TrendingTagsFunc    func(ctx context.Context, formula query.Formula, now time.Time, limit int) ([]models.TagCount, error)

	LastFilters      models.ArticleFilters
	LastFallbackSort string
	LastFormula      query.Formula
	LastNow          time.Time
	LastAuthorID     *int64
	LastLimit        int
}

func NewMockArticleRepository() *MockArticleRepository {
	return &MockArticleRepository{
		Articles: make(map[int64]*models.ArticleWithAuthor),
	}
}

// Put stores an article as-is and returns it
func (m *MockArticleRepository) Put(a models.ArticleWithAuthor) *models.ArticleWithAuthor {
	m.mu.Lock()
	defer m.mu.Unlock()
	if a.ID == 0 {
		m.nextID++
		a.ID = m.nextID
	} else if a.ID > m.nextID {
		m.nextID = a.ID
	}
	stored := a
	m.Articles[a.ID] = &stored
	return &stored
}

func (m *MockArticleRepository) Create(ctx context.Context, article *models.Article) error {
	if m.WriteError != nil {
		return m.WriteError
	}
	if article.Status == "" {
		article.Status = models.StatusDraft
	}
	now := time.Now()
	article.CreatedAt, article.UpdatedAt = now, now
	stored := m.Put(models.ArticleWithAuthor{Article: *article})
	article.ID = stored.ID
	return nil
}

func (m *MockArticleRepository) GetByID(ctx context.Context, id int64) (*models.ArticleWithAuthor, error) {
	if m.GetError != nil {
		return nil, m.GetError
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	a, ok := m.Articles[id]
	if !ok {
		return nil, nil
	}
	copied := *a
	return &copied, nil
}

func (m *MockArticleRepository) Update(ctx context.Context, id int64, req *models.UpdateArticleRequest) (bool, error) {
	if m.WriteError != nil {
		return false, m.WriteError
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	a, ok := m.Articles[id]
	if !ok {
		return false, nil
	}
	if req.Title != nil {
		a.Title = *req.Title
	}
	if req.Description != nil {
		a.Description = req.Description
	}
	if req.Content != nil {
		a.Content = *req.Content
	}
	if req.Category != nil {
		a.Category = *req.Category
	}
	if req.Region != nil {
		a.Region = req.Region
	}
	if req.Tags != nil {
		a.Tags = *req.Tags
	}
	if req.Image != nil {
		a.Image = req.Image
	}
	a.UpdatedAt = time.Now()
	return true, nil
}

func (m *MockArticleRepository) Delete(ctx context.Context, ids []int64) (int64, error) {
	if m.WriteError != nil {
		return 0, m.WriteError
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	var n int64
	for _, id := range ids {
		if _, ok := m.Articles[id]; ok {
			delete(m.Articles, id)
			n++
		}
	}
	return n, nil
}

func (m *MockArticleRepository) Transition(ctx context.Context, ids []int64, to models.ArticleStatus, reason *string, now time.Time) (int64, error) {
	if m.WriteError != nil {
		return 0, m.WriteError
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	var n int64
	for _, id := range ids {
		a, ok := m.Articles[id]
		if !ok || !models.CanTransition(a.Status, to) {
			continue
		}
		a.Status = to
		a.RejectionReason = reason
		if to == models.StatusApproved && a.PublishDate == nil {
			published := now
			a.PublishDate = &published
		}
		a.UpdatedAt = now
		n++
	}
	return n, nil
}

func (m *MockArticleRepository) SetTopNews(ctx context.Context, ids []int64, top bool) (int64, error) {
	if m.WriteError != nil {
		return 0, m.WriteError
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	var n int64
	for _, id := range ids {
		a, ok := m.Articles[id]
		if !ok || (top && a.Status != models.StatusApproved) {
			continue
		}
		a.IsTopNews = top
		n++
	}
	return n, nil
}

func (m *MockArticleRepository) IncrementViews(ctx context.Context, id int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.ViewCalls = append(m.ViewCalls, id)
	if m.ViewError != nil {
		return m.ViewError
	}
	if a, ok := m.Articles[id]; ok && a.Status == models.StatusApproved {
		a.ViewsCount++
	}
	return nil
}

// Views returns the ids passed to IncrementViews so far
func (m *MockArticleRepository) Views() []int64 {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]int64(nil), m.ViewCalls...)
}

func (m *MockArticleRepository) CountExisting(ctx context.Context, ids []int64) (int, error) {
	if m.GetError != nil {
		return 0, m.GetError
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	n := 0
	for _, id := range ids {
		if _, ok := m.Articles[id]; ok {
			n++
		}
	}
	return n, nil
}

func (m *MockArticleRepository) CountByStatus(ctx context.Context, authorID *int64) (map[models.ArticleStatus]int, error) {
	if m.GetError != nil {
		return nil, m.GetError
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	counts := make(map[models.ArticleStatus]int, len(models.ValidStatuses))
	for status := range models.ValidStatuses {
		counts[status] = 0
	}
	for _, a := range m.Articles {
		if authorID != nil && a.AuthorID != *authorID {
			continue
		}
		counts[a.Status]++
	}
	return counts, nil
}

func (m *MockArticleRepository) FindWithFilters(ctx context.Context, filters models.ArticleFilters, fallbackSort string) (*models.ArticlePage, error) {
	m.LastFilters = filters
	m.LastFallbackSort = fallbackSort
	if m.FindWithFiltersFunc != nil {
		return m.FindWithFiltersFunc(ctx, filters, fallbackSort)
	}
	page, limit := models.NormalizePage(filters.Page, filters.Limit)
	return &models.ArticlePage{
		Articles:   []models.ArticleWithAuthor{},
		Pagination: models.CalculatePagination(page, limit, 0),
	}, nil
}

func (m *MockArticleRepository) FindTrending(ctx context.Context, formula query.Formula, now time.Time, authorID *int64, page, limit int) (*models.ArticlePage, error) {
	m.LastFormula = formula
	m.LastNow = now
	m.LastAuthorID = authorID
	if m.FindTrendingFunc != nil {
		return m.FindTrendingFunc(ctx, formula, now, authorID, page, limit)
	}
	page, limit = models.NormalizePage(page, limit)
	return &models.ArticlePage{
		Articles:   []models.ArticleWithAuthor{},
		Pagination: models.CalculatePagination(page, limit, 0),
	}, nil
}

func (m *MockArticleRepository) TrendingTags(ctx context.Context, formula query.Formula, now time.Time, limit int) ([]models.TagCount, error) {
	m.LastFormula = formula
	m.LastNow = now
	m.LastLimit = limit
	if m.TrendingTagsFunc != nil {
		return m.TrendingTagsFunc(ctx, formula, now, limit)
	}
	return []models.TagCount{}, nil
}
