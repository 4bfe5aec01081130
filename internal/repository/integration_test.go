package repository

import (
	"context"
	"database/sql"
	"path/filepath"
	"runtime"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"

	"github.com/newsdesk-api/internal/database"
	"github.com/newsdesk-api/internal/models"
	"github.com/newsdesk-api/internal/query"
)

// setupTestDB starts a PostgreSQL container, applies the migrations and
// returns the repositories bound to it
func setupTestDB(t *testing.T) (*Repositories, *database.DB) {
	t.Helper()
	if testing.Short() {
		t.Skip("skipping container test in short mode")
	}
	ctx := context.Background()

	_, currentFile, _, _ := runtime.Caller(0)
	migrationsPath := filepath.Join(filepath.Dir(currentFile), "..", "..", "migrations")

	pgContainer, err := postgres.Run(ctx,
		"postgres:16-alpine",
		postgres.WithDatabase("newsdesk"),
		postgres.WithUsername("testuser"),
		postgres.WithPassword("testpass"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(60*time.Second),
		),
	)
	require.NoError(t, err, "start postgres container")
	t.Cleanup(func() {
		if err := pgContainer.Terminate(context.Background()); err != nil {
			t.Logf("Warning: failed to terminate container: %v", err)
		}
	})

	connStr, err := pgContainer.ConnectionString(ctx, "sslmode=disable")
	require.NoError(t, err)

	sqlDB, err := sql.Open("postgres", connStr)
	require.NoError(t, err)
	t.Cleanup(func() { sqlDB.Close() })

	db := database.Wrap(sqlDB, zerolog.Nop())
	require.NoError(t, db.RunMigrations(migrationsPath))

	return New(db, zerolog.Nop()), db
}

type seeder struct {
	t     *testing.T
	repos *Repositories
	ctx   context.Context
}

func (s seeder) author(name, email string) int64 {
	a := &models.Author{Name: name, Email: email}
	require.NoError(s.t, s.repos.Author.Create(s.ctx, a))
	return a.ID
}

func (s seeder) article(authorID int64, title, category string, tags []string, status models.ArticleStatus) int64 {
	a := &models.Article{AuthorID: authorID, Title: title, Content: title + " body", Category: category, Tags: tags}
	require.NoError(s.t, s.repos.Article.Create(s.ctx, a))

	now := time.Now()
	if status == models.StatusPending || status == models.StatusApproved {
		_, err := s.repos.Article.Transition(s.ctx, []int64{a.ID}, models.StatusPending, nil, now)
		require.NoError(s.t, err)
	}
	if status == models.StatusApproved {
		_, err := s.repos.Article.Transition(s.ctx, []int64{a.ID}, models.StatusApproved, nil, now)
		require.NoError(s.t, err)
	}
	return a.ID
}

func TestIntegration_QueryEngine(t *testing.T) {
	repos, db := setupTestDB(t)
	ctx := context.Background()
	s := seeder{t: t, repos: repos, ctx: ctx}

	authorID := s.author("Asha Rawat", "asha@example.com")

	trek1 := s.article(authorID, "Kedarnath trail reopens", "Trekking & Hiking", []string{"trek", "snow"}, models.StatusApproved)
	s.article(authorID, "Valley of Flowers in bloom", "Trekking & Hiking", []string{"flowers"}, models.StatusApproved)
	s.article(authorID, "Roopkund permits", "Trekking & Hiking", nil, models.StatusApproved)
	s.article(authorID, "Draft one", "Trekking & Hiking", nil, models.StatusDraft)
	s.article(authorID, "Draft two", "Trekking & Hiking", nil, models.StatusDraft)
	food := s.article(authorID, "Kumaoni thali", "Food & Cuisine", []string{"food"}, models.StatusApproved)

	t.Run("category page with pre-pagination total", func(t *testing.T) {
		page, err := repos.Article.FindWithFilters(ctx, models.ArticleFilters{
			Status:   models.StatusApproved,
			Category: "Trekking & Hiking",
			Page:     1,
			Limit:    2,
		}, query.PublicSortColumn)
		require.NoError(t, err)

		assert.Len(t, page.Articles, 2)
		assert.Equal(t, 3, page.Pagination.Total)
		assert.Equal(t, 2, page.Pagination.TotalPages)
		assert.True(t, page.Pagination.HasNext)
		assert.False(t, page.Pagination.HasPrev)
		for _, a := range page.Articles {
			assert.Equal(t, "Asha Rawat", a.AuthorName)
			assert.Equal(t, models.StatusApproved, a.Status)
		}
	})

	t.Run("tag filter matches any requested tag", func(t *testing.T) {
		page, err := repos.Article.FindWithFilters(ctx, models.ArticleFilters{
			Status: models.StatusApproved,
			Tags:   []string{"trek", "himalaya"},
		}, query.PublicSortColumn)
		require.NoError(t, err)

		ids := make([]int64, 0, len(page.Articles))
		for _, a := range page.Articles {
			ids = append(ids, a.ID)
		}
		assert.Contains(t, ids, trek1)
		assert.NotContains(t, ids, food)
	})

	t.Run("page past the end is empty", func(t *testing.T) {
		page, err := repos.Article.FindWithFilters(ctx, models.ArticleFilters{
			Status:   models.StatusApproved,
			Category: "Trekking & Hiking",
			Page:     1000,
			Limit:    10,
		}, query.PublicSortColumn)
		require.NoError(t, err)

		assert.Empty(t, page.Articles)
		assert.Equal(t, 3, page.Pagination.Total)
		assert.False(t, page.Pagination.HasNext)
	})

	t.Run("full text search", func(t *testing.T) {
		page, err := repos.Article.FindWithFilters(ctx, models.ArticleFilters{
			Status: models.StatusApproved,
			Search: "kedarnath",
		}, query.PublicSortColumn)
		require.NoError(t, err)

		require.Len(t, page.Articles, 1)
		assert.Equal(t, trek1, page.Articles[0].ID)
	})

	t.Run("unviewed articles never trend", func(t *testing.T) {
		for i := 0; i < 3; i++ {
			require.NoError(t, repos.Article.IncrementViews(ctx, food))
		}

		page, err := repos.Article.FindTrending(ctx, query.FormulaFor(query.TimeframeWeek), time.Now(), nil, 1, 10)
		require.NoError(t, err)

		require.Len(t, page.Articles, 1)
		assert.Equal(t, food, page.Articles[0].ID)
		assert.Equal(t, int64(3), page.Articles[0].ViewsCount)
		assert.Equal(t, 1, page.Pagination.Total)
	})

	t.Run("more views rank higher", func(t *testing.T) {
		for i := 0; i < 5; i++ {
			require.NoError(t, repos.Article.IncrementViews(ctx, trek1))
		}

		page, err := repos.Article.FindTrending(ctx, query.FormulaFor(query.TimeframeDay), time.Now(), nil, 1, 10)
		require.NoError(t, err)

		require.Len(t, page.Articles, 2)
		assert.Equal(t, trek1, page.Articles[0].ID)
		assert.Equal(t, food, page.Articles[1].ID)
	})

	t.Run("trending tags", func(t *testing.T) {
		result, err := repos.Article.TrendingTags(ctx, query.FormulaFor(query.TimeframeWeek), time.Now(), 10)
		require.NoError(t, err)

		require.Len(t, result, 3)
		assert.Equal(t, models.TagCount{Tag: "snow", Articles: 1, Views: 5}, result[0])
		assert.Equal(t, models.TagCount{Tag: "trek", Articles: 1, Views: 5}, result[1])
		assert.Equal(t, models.TagCount{Tag: "food", Articles: 1, Views: 3}, result[2])
	})

	t.Run("drafts never receive views", func(t *testing.T) {
		draft := s.article(authorID, "Quiet draft", "Pilgrimage", nil, models.StatusDraft)
		require.NoError(t, repos.Article.IncrementViews(ctx, draft))

		a, err := repos.Article.GetByID(ctx, draft)
		require.NoError(t, err)
		require.NotNil(t, a)
		assert.Zero(t, a.ViewsCount)
		assert.Equal(t, []string{}, a.Tags)
	})

	t.Run("pool stats", func(t *testing.T) {
		assert.GreaterOrEqual(t, db.Stats().OpenConnections, 1)
	})
}
