package api_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/newsdesk-api/internal/api"
	"github.com/newsdesk-api/internal/config"
	"github.com/newsdesk-api/internal/mocks"
	"github.com/newsdesk-api/internal/models"
	"github.com/newsdesk-api/internal/query"
	"github.com/newsdesk-api/internal/service"
	"github.com/newsdesk-api/internal/validation"
)

const testSecret = "test-secret"

type fakeHealth struct{ err error }

func (f fakeHealth) HealthCheck(ctx context.Context) error { return f.err }

type testServer struct {
	router   *gin.Engine
	articles *mocks.MockArticleService
	public   *mocks.MockPublicService
}

func setupTestRouter(t *testing.T, health api.HealthChecker) testServer {
	t.Helper()
	return setupTestRouterWithLog(t, health, zerolog.Nop())
}

func setupTestRouterWithLog(t *testing.T, health api.HealthChecker, log zerolog.Logger) testServer {
	t.Helper()
	gin.SetMode(gin.TestMode)

	articles := mocks.NewMockArticleService()
	public := mocks.NewMockPublicService()
	services := &service.Services{Articles: articles, Public: public}

	cfg := config.Default()
	cfg.Auth.JWTSecret = testSecret

	router := api.NewRouter(services, health, cfg, log)
	return testServer{router: router, articles: articles, public: public}
}

func token(t *testing.T, sub int64, role models.Role, secret string) string {
	t.Helper()
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub":  strconv.FormatInt(sub, 10),
		"role": string(role),
		"exp":  time.Now().Add(time.Hour).Unix(),
	}).SignedString([]byte(secret))
	require.NoError(t, err)
	return signed
}

func (s testServer) do(method, path string, body interface{}, bearer string) *httptest.ResponseRecorder {
	var buf bytes.Buffer
	if body != nil {
		_ = json.NewEncoder(&buf).Encode(body)
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if bearer != "" {
		req.Header.Set("Authorization", "Bearer "+bearer)
	}
	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, req)
	return w
}

func decode(t *testing.T, w *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var out map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out))
	return out
}

func TestHealthEndpoint(t *testing.T) {
	s := setupTestRouter(t, fakeHealth{})

	w := s.do("GET", "/health", nil, "")
	require.Equal(t, http.StatusOK, w.Code)

	response := decode(t, w)
	assert.Equal(t, "healthy", response["status"])
	assert.Equal(t, "newsdesk-api", response["service"])
	assert.NotEmpty(t, w.Header().Get(api.RequestIDHeader))
}

func TestHealthEndpoint_DatabaseDown(t *testing.T) {
	s := setupTestRouter(t, fakeHealth{err: errors.New("connection refused")})

	w := s.do("GET", "/health", nil, "")
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
	assert.Equal(t, "down", decode(t, w)["database"])
}

func TestRequestIDIsEchoed(t *testing.T) {
	s := setupTestRouter(t, nil)

	req := httptest.NewRequest("GET", "/health", nil)
	req.Header.Set(api.RequestIDHeader, "req-42")
	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, req)

	assert.Equal(t, "req-42", w.Header().Get(api.RequestIDHeader))
}

func TestMetricsEndpoint(t *testing.T) {
	s := setupTestRouter(t, nil)
	s.do("GET", "/v1/public/articles", nil, "")

	w := s.do("GET", "/metrics", nil, "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "newsdesk_http_requests_total")
}

func TestPublicList_BindsFilters(t *testing.T) {
	s := setupTestRouter(t, nil)

	w := s.do("GET", "/v1/public/articles?category=Pilgrimage&tags=Trek,snow&tags=trek&is_top_news=true&page=2&limit=5&sortBy=views_count&sortOrder=asc", nil, "")
	require.Equal(t, http.StatusOK, w.Code)

	f := s.public.LastFilters
	assert.Equal(t, "Pilgrimage", f.Category)
	assert.Equal(t, []string{"trek", "snow"}, f.Tags)
	require.NotNil(t, f.IsTopNews)
	assert.True(t, *f.IsTopNews)
	assert.Equal(t, 2, f.Page)
	assert.Equal(t, 5, f.Limit)
	assert.Equal(t, "views_count", f.SortBy)
	assert.Equal(t, "asc", f.SortOrder)

	response := decode(t, w)
	assert.Contains(t, response, "articles")
	assert.Contains(t, response, "pagination")
}

func TestPublicList_BadParams(t *testing.T) {
	s := setupTestRouter(t, nil)

	assert.Equal(t, http.StatusBadRequest, s.do("GET", "/v1/public/articles?page=two", nil, "").Code)
	assert.Equal(t, http.StatusBadRequest, s.do("GET", "/v1/public/articles?is_top_news=maybe", nil, "").Code)
}

func TestPublicList_ValidationDetails(t *testing.T) {
	s := setupTestRouter(t, nil)
	s.public.ListPublishedFunc = func(ctx context.Context, f models.ArticleFilters) (*models.ArticlePage, error) {
		return nil, &service.Error{
			Kind:    service.ErrValidation,
			Op:      "public.list",
			Message: "invalid category",
			Details: []validation.ValidationError{{Field: "category", Message: "invalid category"}},
		}
	}

	w := s.do("GET", "/v1/public/articles?category=Sports", nil, "")
	require.Equal(t, http.StatusBadRequest, w.Code)

	response := decode(t, w)
	assert.Equal(t, "invalid category", response["error"])
	assert.Len(t, response["details"], 1)
}

func TestPublicList_QueryFailureIsOpaque(t *testing.T) {
	s := setupTestRouter(t, nil)
	s.public.ListPublishedFunc = func(ctx context.Context, f models.ArticleFilters) (*models.ArticlePage, error) {
		return nil, &service.Error{Kind: service.ErrQueryFailed, Op: "public.list"}
	}

	w := s.do("GET", "/v1/public/articles", nil, "")
	require.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Equal(t, "query failed", decode(t, w)["error"])
}

func TestHandlerLogsServerErrors(t *testing.T) {
	var logs bytes.Buffer
	s := setupTestRouterWithLog(t, nil, zerolog.New(&logs).Level(zerolog.InfoLevel))
	s.public.ListPublishedFunc = func(ctx context.Context, f models.ArticleFilters) (*models.ArticlePage, error) {
		return nil, &service.Error{Kind: service.ErrQueryFailed, Op: "public.list"}
	}

	req := httptest.NewRequest("GET", "/v1/public/articles", nil)
	req.Header.Set(api.RequestIDHeader, "req-500")
	s.router.ServeHTTP(httptest.NewRecorder(), req)

	out := logs.String()
	assert.Contains(t, out, `"handler":"public"`)
	assert.Contains(t, out, `"message":"Request failed"`)
	assert.Contains(t, out, `"status":500`)
	assert.Contains(t, out, `"request_id":"req-500"`)

	// client errors stay below info
	logs.Reset()
	s.public.ListPublishedFunc = func(ctx context.Context, f models.ArticleFilters) (*models.ArticlePage, error) {
		return nil, &service.Error{Kind: service.ErrNotFound, Op: "public.list"}
	}
	s.do("GET", "/v1/public/articles", nil, "")
	assert.NotContains(t, logs.String(), "Request failed")
}

func TestPublicCuratedListings(t *testing.T) {
	s := setupTestRouter(t, nil)

	tests := []struct {
		path  string
		check func(t *testing.T, f models.ArticleFilters)
	}{
		{"/v1/public/articles/top", func(t *testing.T, f models.ArticleFilters) {
			require.NotNil(t, f.IsTopNews)
			assert.True(t, *f.IsTopNews)
			assert.Equal(t, query.PublicSortColumn, f.SortBy)
		}},
		{"/v1/public/articles/featured", func(t *testing.T, f models.ArticleFilters) {
			require.NotNil(t, f.IsTopNews)
			assert.Equal(t, "views_count", f.SortBy)
		}},
		{"/v1/public/articles/more-stories", func(t *testing.T, f models.ArticleFilters) {
			assert.Equal(t, 6, f.Limit)
		}},
		{"/v1/public/articles/culture-heritage", func(t *testing.T, f models.ArticleFilters) {
			assert.Equal(t, models.CategoryCultureHeritage, f.Category)
		}},
		{"/v1/public/articles/category/Pilgrimage", func(t *testing.T, f models.ArticleFilters) {
			assert.Equal(t, "Pilgrimage", f.Category)
		}},
		{"/v1/public/articles/region/Chamoli", func(t *testing.T, f models.ArticleFilters) {
			assert.Equal(t, "Chamoli", f.Region)
		}},
		{"/v1/public/articles/from-districts", func(t *testing.T, f models.ArticleFilters) {
			assert.Equal(t, models.CategoryFromDistricts, f.Category)
			assert.Empty(t, f.Region)
		}},
		{"/v1/public/articles/from-districts/Almora", func(t *testing.T, f models.ArticleFilters) {
			assert.Equal(t, models.CategoryFromDistricts, f.Category)
			assert.Equal(t, "Almora", f.Region)
		}},
		{"/v1/public/articles/by-tags?tags=yatra", func(t *testing.T, f models.ArticleFilters) {
			assert.Equal(t, []string{"yatra"}, f.Tags)
		}},
	}

	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			w := s.do("GET", tt.path, nil, "")
			require.Equal(t, http.StatusOK, w.Code)
			tt.check(t, s.public.LastFilters)
		})
	}
}

func TestPublicByTags_RequiresTag(t *testing.T) {
	s := setupTestRouter(t, nil)
	assert.Equal(t, http.StatusBadRequest, s.do("GET", "/v1/public/articles/by-tags", nil, "").Code)
}

func TestPublicRecent(t *testing.T) {
	s := setupTestRouter(t, nil)

	w := s.do("GET", "/v1/public/articles/recent", nil, "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, 20, s.public.LastFilters.Limit)
	assert.Equal(t, 1, s.public.LastFilters.Page)

	response := decode(t, w)
	assert.Contains(t, response, "articles")
	assert.NotContains(t, response, "pagination")
}

func TestPublicTrending(t *testing.T) {
	s := setupTestRouter(t, nil)

	w := s.do("GET", "/v1/public/articles/trending?timeframe=day&page=2&limit=5", nil, "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, models.TrendingParams{Timeframe: "day", Page: 2, Limit: 5}, s.public.LastParams)
}

func TestPublicTrending_InvalidTimeframe(t *testing.T) {
	s := setupTestRouter(t, nil)
	s.public.TrendingPublishedFunc = func(ctx context.Context, p models.TrendingParams) (*models.ArticlePage, error) {
		return nil, &service.Error{Kind: service.ErrValidation, Op: "public.trending", Message: "invalid timeframe"}
	}

	w := s.do("GET", "/v1/public/articles/trending?timeframe=year", nil, "")
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestPublicTrendingTags(t *testing.T) {
	s := setupTestRouter(t, nil)
	s.public.TrendingTagsFunc = func(ctx context.Context, timeframe string, limit int) ([]models.TagCount, error) {
		return []models.TagCount{{Tag: "snow", Articles: 2, Views: 40}}, nil
	}

	w := s.do("GET", "/v1/public/articles/trending/tags?limit=3", nil, "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, 3, s.public.LastParams.Limit)

	response := decode(t, w)
	assert.Equal(t, "week", response["timeframe"])
	assert.Len(t, response["tags"], 1)
}

func TestPublicGet(t *testing.T) {
	s := setupTestRouter(t, nil)
	s.public.GetPublishedFunc = func(ctx context.Context, id int64) (*models.ArticleWithAuthor, error) {
		if id == 7 {
			return &models.ArticleWithAuthor{Article: models.Article{ID: 7, Status: models.StatusApproved}}, nil
		}
		return nil, &service.Error{Kind: service.ErrNotFound, Op: "public.get", Message: "article not found"}
	}

	assert.Equal(t, http.StatusOK, s.do("GET", "/v1/public/articles/7", nil, "").Code)
	assert.Equal(t, http.StatusNotFound, s.do("GET", "/v1/public/articles/8", nil, "").Code)
	assert.Equal(t, http.StatusBadRequest, s.do("GET", "/v1/public/articles/abc", nil, "").Code)
}

func TestAuthentication(t *testing.T) {
	s := setupTestRouter(t, nil)

	assert.Equal(t, http.StatusUnauthorized, s.do("GET", "/v1/articles", nil, "").Code)
	assert.Equal(t, http.StatusUnauthorized, s.do("GET", "/v1/articles", nil, "garbage").Code)
	assert.Equal(t, http.StatusUnauthorized, s.do("GET", "/v1/articles", nil, token(t, 2, models.RoleAuthor, "other-secret")).Code)
	assert.Equal(t, http.StatusUnauthorized, s.do("GET", "/v1/articles", nil, token(t, 2, "editor", testSecret)).Code)

	w := s.do("GET", "/v1/articles", nil, token(t, 2, models.RoleAuthor, testSecret))
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, models.Principal{UserID: 2, Role: models.RoleAuthor}, s.articles.LastPrincipal)
}

func TestAdminRoutesRequireAdmin(t *testing.T) {
	s := setupTestRouter(t, nil)
	author := token(t, 2, models.RoleAuthor, testSecret)
	admin := token(t, 1, models.RoleAdmin, testSecret)

	assert.Equal(t, http.StatusForbidden, s.do("POST", "/v1/admin/articles/5/approve", nil, author).Code)

	w := s.do("POST", "/v1/admin/articles/5/approve", nil, admin)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "approved", decode(t, w)["status"])
}

func TestCreateArticle(t *testing.T) {
	s := setupTestRouter(t, nil)
	author := token(t, 2, models.RoleAuthor, testSecret)

	var got *models.CreateArticleRequest
	s.articles.CreateFunc = func(ctx context.Context, p models.Principal, req *models.CreateArticleRequest) (*models.ArticleWithAuthor, error) {
		got = req
		return &models.ArticleWithAuthor{Article: models.Article{ID: 11, Title: req.Title, Status: models.StatusDraft}}, nil
	}

	w := s.do("POST", "/v1/articles", map[string]interface{}{
		"title":    "Auli ski festival",
		"content":  "Dates announced.",
		"category": "Local Festivals",
		"tags":     []string{"ski"},
		"image":    "https://cdn.example.com/ski.jpg",
	}, author)
	require.Equal(t, http.StatusCreated, w.Code)
	require.NotNil(t, got)
	assert.Equal(t, "Local Festivals", got.Category)
	assert.Equal(t, []string{"ski"}, got.Tags)

	assert.Equal(t, http.StatusBadRequest, s.do("POST", "/v1/articles", "not an object", author).Code)
}

func TestErrorKindsMapToStatus(t *testing.T) {
	s := setupTestRouter(t, nil)
	author := token(t, 2, models.RoleAuthor, testSecret)

	tests := []struct {
		kind error
		code int
	}{
		{service.ErrNotFound, http.StatusNotFound},
		{service.ErrValidation, http.StatusBadRequest},
		{service.ErrForbidden, http.StatusForbidden},
		{service.ErrInvalidTransition, http.StatusConflict},
		{service.ErrQueryFailed, http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.kind.Error(), func(t *testing.T) {
			s.articles.SubmitFunc = func(ctx context.Context, p models.Principal, id int64) (*models.ArticleWithAuthor, error) {
				return nil, &service.Error{Kind: tt.kind, Op: "article.submit"}
			}
			w := s.do("POST", "/v1/articles/3/submit", nil, author)
			assert.Equal(t, tt.code, w.Code)
			assert.Equal(t, tt.kind.Error(), decode(t, w)["error"])
		})
	}
}

func TestDashboardList_AuthorFilter(t *testing.T) {
	s := setupTestRouter(t, nil)
	admin := token(t, 1, models.RoleAdmin, testSecret)

	var got models.ArticleFilters
	s.articles.ListFunc = func(ctx context.Context, p models.Principal, f models.ArticleFilters) (*models.ArticlePage, error) {
		got = f
		return &models.ArticlePage{Articles: []models.ArticleWithAuthor{}}, nil
	}

	w := s.do("GET", "/v1/articles?author_id=3&status=pending", nil, admin)
	require.Equal(t, http.StatusOK, w.Code)
	require.NotNil(t, got.AuthorID)
	assert.Equal(t, int64(3), *got.AuthorID)
	assert.Equal(t, models.StatusPending, got.Status)

	assert.Equal(t, http.StatusBadRequest, s.do("GET", "/v1/articles?author_id=x", nil, admin).Code)
}

func TestReject(t *testing.T) {
	s := setupTestRouter(t, nil)
	admin := token(t, 1, models.RoleAdmin, testSecret)

	w := s.do("POST", "/v1/admin/articles/4/reject", map[string]string{"reason": "needs sources"}, admin)
	require.Equal(t, http.StatusOK, w.Code)

	response := decode(t, w)
	assert.Equal(t, "rejected", response["status"])
	assert.Equal(t, "needs sources", response["rejection_reason"])
}

func TestTopNewsRoutes(t *testing.T) {
	s := setupTestRouter(t, nil)
	admin := token(t, 1, models.RoleAdmin, testSecret)

	var calls []bool
	s.articles.SetTopNewsFunc = func(ctx context.Context, p models.Principal, id int64, top bool) (*models.ArticleWithAuthor, error) {
		calls = append(calls, top)
		return &models.ArticleWithAuthor{Article: models.Article{ID: id, IsTopNews: top}}, nil
	}

	assert.Equal(t, http.StatusOK, s.do("POST", "/v1/admin/articles/4/top-news", nil, admin).Code)
	assert.Equal(t, http.StatusOK, s.do("DELETE", "/v1/admin/articles/4/top-news", nil, admin).Code)
	assert.Equal(t, []bool{true, false}, calls)
}

func TestBulk(t *testing.T) {
	s := setupTestRouter(t, nil)
	admin := token(t, 1, models.RoleAdmin, testSecret)

	var got *models.BulkRequest
	s.articles.BulkFunc = func(ctx context.Context, p models.Principal, req *models.BulkRequest) (*models.BulkResult, error) {
		got = req
		return &models.BulkResult{Requested: len(req.IDs), Found: 2, Affected: 1}, nil
	}

	w := s.do("POST", "/v1/admin/articles/bulk/approve", map[string]interface{}{"ids": []int64{1, 2, 3}}, admin)
	require.Equal(t, http.StatusOK, w.Code)
	require.NotNil(t, got)
	assert.Equal(t, models.BulkApprove, got.Action)
	assert.Equal(t, []int64{1, 2, 3}, got.IDs)

	response := decode(t, w)
	assert.Equal(t, float64(3), response["requested"])
	assert.Equal(t, float64(1), response["affected"])
}

func TestStats(t *testing.T) {
	s := setupTestRouter(t, nil)
	author := token(t, 2, models.RoleAuthor, testSecret)
	s.articles.StatsFunc = func(ctx context.Context, p models.Principal) (*models.ArticleStats, error) {
		return &models.ArticleStats{ByStatus: map[models.ArticleStatus]int{models.StatusDraft: 2}, Total: 2}, nil
	}

	w := s.do("GET", "/v1/articles/stats", nil, author)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, float64(2), decode(t, w)["total"])
}

func TestCORSPreflight(t *testing.T) {
	s := setupTestRouter(t, nil)

	w := s.do("OPTIONS", "/v1/articles", nil, "")
	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Equal(t, "*", w.Header().Get("Access-Control-Allow-Origin"))
}
