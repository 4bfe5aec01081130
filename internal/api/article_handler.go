package api

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/newsdesk-api/internal/models"
	"github.com/newsdesk-api/internal/service"
)

// ArticleHandler handles the author dashboard and editorial endpoints
type ArticleHandler struct {
	articles service.ArticleService
	log      zerolog.Logger
}

// NewArticleHandler creates a new ArticleHandler
func NewArticleHandler(articles service.ArticleService, log zerolog.Logger) *ArticleHandler {
	return &ArticleHandler{
		articles: articles,
		log:      log.With().Str("handler", "article").Logger(),
	}
}

func (h *ArticleHandler) respond(c *gin.Context, status int, article *models.ArticleWithAuthor, err error) {
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(status, article)
}

// Create handles POST /v1/articles
func (h *ArticleHandler) Create(c *gin.Context) {
	var req models.CreateArticleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "invalid request body")
		return
	}
	article, err := h.articles.Create(c.Request.Context(), principal(c), &req)
	h.respond(c, http.StatusCreated, article, err)
}

// Get handles GET /v1/articles/:id
func (h *ArticleHandler) Get(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	article, err := h.articles.Get(c.Request.Context(), principal(c), id)
	h.respond(c, http.StatusOK, article, err)
}

// Update handles PUT /v1/articles/:id
func (h *ArticleHandler) Update(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	var req models.UpdateArticleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "invalid request body")
		return
	}
	article, err := h.articles.Update(c.Request.Context(), principal(c), id, &req)
	h.respond(c, http.StatusOK, article, err)
}

// Delete handles DELETE /v1/articles/:id
func (h *ArticleHandler) Delete(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	if err := h.articles.Delete(c.Request.Context(), principal(c), id); err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "article deleted", "id": id})
}

// Submit handles POST /v1/articles/:id/submit
func (h *ArticleHandler) Submit(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	article, err := h.articles.Submit(c.Request.Context(), principal(c), id)
	h.respond(c, http.StatusOK, article, err)
}

// Approve handles POST /v1/admin/articles/:id/approve
func (h *ArticleHandler) Approve(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	article, err := h.articles.Approve(c.Request.Context(), principal(c), id)
	h.respond(c, http.StatusOK, article, err)
}

type rejectRequest struct {
	Reason string `json:"reason"`
}

// Reject handles POST /v1/admin/articles/:id/reject
func (h *ArticleHandler) Reject(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	var req rejectRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "invalid request body")
		return
	}
	article, err := h.articles.Reject(c.Request.Context(), principal(c), id, req.Reason)
	h.respond(c, http.StatusOK, article, err)
}

// MarkTopNews handles POST /v1/admin/articles/:id/top-news
func (h *ArticleHandler) MarkTopNews(c *gin.Context) {
	h.setTopNews(c, true)
}

// UnmarkTopNews handles DELETE /v1/admin/articles/:id/top-news
func (h *ArticleHandler) UnmarkTopNews(c *gin.Context) {
	h.setTopNews(c, false)
}

func (h *ArticleHandler) setTopNews(c *gin.Context, top bool) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	article, err := h.articles.SetTopNews(c.Request.Context(), principal(c), id, top)
	h.respond(c, http.StatusOK, article, err)
}

// Bulk handles POST /v1/admin/articles/bulk/:action
// action is one of delete, approve, reject, top-news, unmark-top-news.
func (h *ArticleHandler) Bulk(c *gin.Context) {
	var req models.BulkRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "invalid request body")
		return
	}
	req.Action = models.BulkAction(c.Param("action"))

	result, err := h.articles.Bulk(c.Request.Context(), principal(c), &req)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

// List handles GET /v1/articles. Admins may filter by author_id; authors
// always see their own articles.
func (h *ArticleHandler) List(c *gin.Context) {
	f, ok := h.dashboardFilters(c)
	if !ok {
		return
	}
	page, err := h.articles.List(c.Request.Context(), principal(c), f)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, page)
}

// Search handles GET /v1/articles/search?query=
func (h *ArticleHandler) Search(c *gin.Context) {
	f, ok := h.dashboardFilters(c)
	if !ok {
		return
	}
	page, err := h.articles.Search(c.Request.Context(), principal(c), f)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, page)
}

func (h *ArticleHandler) dashboardFilters(c *gin.Context) (models.ArticleFilters, bool) {
	f, ok := bindFilters(c)
	if !ok {
		return f, false
	}
	if raw := c.Query("author_id"); raw != "" {
		id, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			badRequest(c, "invalid author_id")
			return f, false
		}
		f.AuthorID = &id
	}
	return f, true
}

// Trending handles GET /v1/articles/trending
func (h *ArticleHandler) Trending(c *gin.Context) {
	params, ok := bindTrending(c)
	if !ok {
		return
	}
	page, err := h.articles.Trending(c.Request.Context(), principal(c), params)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, page)
}

// Stats handles GET /v1/articles/stats
func (h *ArticleHandler) Stats(c *gin.Context) {
	stats, err := h.articles.Stats(c.Request.Context(), principal(c))
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, stats)
}
