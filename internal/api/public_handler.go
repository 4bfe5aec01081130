package api

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/newsdesk-api/internal/models"
	"github.com/newsdesk-api/internal/query"
	"github.com/newsdesk-api/internal/service"
)

const (
	recentLimit      = 20
	moreStoriesLimit = 6
)

// PublicHandler serves approved articles to the website
type PublicHandler struct {
	articles service.PublicArticleService
	log      zerolog.Logger
}

// NewPublicHandler creates a new PublicHandler
func NewPublicHandler(articles service.PublicArticleService, log zerolog.Logger) *PublicHandler {
	return &PublicHandler{
		articles: articles,
		log:      log.With().Str("handler", "public").Logger(),
	}
}

// newestFirst pins the listing to publish date, newest first
func newestFirst(f *models.ArticleFilters) {
	f.SortBy = query.PublicSortColumn
	f.SortOrder = query.SortDesc
}

func (h *PublicHandler) list(c *gin.Context, f models.ArticleFilters) {
	page, err := h.articles.ListPublished(c.Request.Context(), f)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, page)
}

// List handles GET /v1/public/articles
func (h *PublicHandler) List(c *gin.Context) {
	f, ok := bindFilters(c)
	if !ok {
		return
	}
	h.list(c, f)
}

// Recent handles GET /v1/public/articles/recent
// Returns the latest articles without pagination metadata.
func (h *PublicHandler) Recent(c *gin.Context) {
	f := models.ArticleFilters{Page: 1, Limit: recentLimit}
	if raw := c.Query("limit"); raw != "" {
		limit, err := strconv.Atoi(raw)
		if err != nil {
			badRequest(c, "invalid query parameters")
			return
		}
		f.Limit = limit
	}
	newestFirst(&f)

	page, err := h.articles.ListPublished(c.Request.Context(), f)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"articles": page.Articles})
}

// Search handles GET /v1/public/articles/search?query=
func (h *PublicHandler) Search(c *gin.Context) {
	f, ok := bindFilters(c)
	if !ok {
		return
	}
	page, err := h.articles.SearchPublished(c.Request.Context(), f)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, page)
}

// Trending handles GET /v1/public/articles/trending
func (h *PublicHandler) Trending(c *gin.Context) {
	params, ok := bindTrending(c)
	if !ok {
		return
	}
	page, err := h.articles.TrendingPublished(c.Request.Context(), params)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, page)
}

// TrendingTags handles GET /v1/public/articles/trending/tags
func (h *PublicHandler) TrendingTags(c *gin.Context) {
	limit := 0
	if raw := c.Query("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil {
			badRequest(c, "invalid query parameters")
			return
		}
		limit = n
	}

	timeframe := c.Query("timeframe")
	result, err := h.articles.TrendingTags(c.Request.Context(), timeframe, limit)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	if timeframe == "" {
		timeframe = string(query.DefaultTimeframe)
	}
	c.JSON(http.StatusOK, gin.H{"timeframe": timeframe, "tags": result})
}

// TopNews handles GET /v1/public/articles/top
func (h *PublicHandler) TopNews(c *gin.Context) {
	f, ok := bindFilters(c)
	if !ok {
		return
	}
	top := true
	f.IsTopNews = &top
	newestFirst(&f)
	h.list(c, f)
}

// Featured handles GET /v1/public/articles/featured
// Featured articles are top news ranked by views.
func (h *PublicHandler) Featured(c *gin.Context) {
	f, ok := bindFilters(c)
	if !ok {
		return
	}
	top := true
	f.IsTopNews = &top
	f.SortBy = "views_count"
	f.SortOrder = query.SortDesc
	h.list(c, f)
}

// MoreStories handles GET /v1/public/articles/more-stories
func (h *PublicHandler) MoreStories(c *gin.Context) {
	f, ok := bindFilters(c)
	if !ok {
		return
	}
	if f.Limit == 0 {
		f.Limit = moreStoriesLimit
	}
	newestFirst(&f)
	h.list(c, f)
}

// ByTags handles GET /v1/public/articles/by-tags?tags=a,b
func (h *PublicHandler) ByTags(c *gin.Context) {
	f, ok := bindFilters(c)
	if !ok {
		return
	}
	if len(f.Tags) == 0 {
		badRequest(c, "at least one tag is required")
		return
	}
	h.list(c, f)
}

// CultureHeritage handles GET /v1/public/articles/culture-heritage
func (h *PublicHandler) CultureHeritage(c *gin.Context) {
	f, ok := bindFilters(c)
	if !ok {
		return
	}
	f.Category = models.CategoryCultureHeritage
	newestFirst(&f)
	h.list(c, f)
}

// ByCategory handles GET /v1/public/articles/category/:category
func (h *PublicHandler) ByCategory(c *gin.Context) {
	f, ok := bindFilters(c)
	if !ok {
		return
	}
	f.Category = c.Param("category")
	newestFirst(&f)
	h.list(c, f)
}

// ByRegion handles GET /v1/public/articles/region/:region
func (h *PublicHandler) ByRegion(c *gin.Context) {
	f, ok := bindFilters(c)
	if !ok {
		return
	}
	f.Region = c.Param("region")
	newestFirst(&f)
	h.list(c, f)
}

// FromDistricts handles GET /v1/public/articles/from-districts[/:district]
func (h *PublicHandler) FromDistricts(c *gin.Context) {
	f, ok := bindFilters(c)
	if !ok {
		return
	}
	f.Category = models.CategoryFromDistricts
	if district := c.Param("district"); district != "" {
		f.Region = district
	}
	newestFirst(&f)
	h.list(c, f)
}

// Get handles GET /v1/public/articles/:id and counts a view
func (h *PublicHandler) Get(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	article, err := h.articles.GetPublished(c.Request.Context(), id)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, article)
}
