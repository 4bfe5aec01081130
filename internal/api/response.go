package api

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/newsdesk-api/internal/models"
	"github.com/newsdesk-api/internal/service"
	"github.com/newsdesk-api/internal/tags"
)

// statusFor maps a service error kind to an HTTP status
func statusFor(err error) int {
	switch {
	case errors.Is(err, service.ErrValidation):
		return http.StatusBadRequest
	case errors.Is(err, service.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, service.ErrForbidden):
		return http.StatusForbidden
	case errors.Is(err, service.ErrInvalidTransition):
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

// respondError writes err without exposing store details. Server-side
// failures are logged; client errors only at debug.
func respondError(c *gin.Context, log zerolog.Logger, err error) {
	status := statusFor(err)
	event := log.Debug()
	if status >= http.StatusInternalServerError {
		event = log.Error()
	}
	event.Err(err).
		Int("status", status).
		Str("path", c.FullPath()).
		Str("request_id", requestID(c)).
		Msg("Request failed")

	body := gin.H{"error": service.Message(err)}
	if details := service.Details(err); len(details) > 0 {
		body["details"] = details
	}
	c.JSON(status, body)
}

func badRequest(c *gin.Context, message string) {
	c.JSON(http.StatusBadRequest, gin.H{"error": message})
}

// pathID parses the :id path parameter
func pathID(c *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id < 1 {
		badRequest(c, "invalid article id")
		return 0, false
	}
	return id, true
}

// bindFilters reads listing filters from the query string. tags may repeat
// or be comma separated; is_top_news only filters when present.
func bindFilters(c *gin.Context) (models.ArticleFilters, bool) {
	var f models.ArticleFilters
	if err := c.ShouldBindQuery(&f); err != nil {
		badRequest(c, "invalid query parameters")
		return f, false
	}
	f.Tags = tags.ParseQuery(c.QueryArray("tags"))

	if raw, ok := c.GetQuery("is_top_news"); ok && raw != "" {
		top, err := strconv.ParseBool(raw)
		if err != nil {
			badRequest(c, "is_top_news must be true or false")
			return f, false
		}
		f.IsTopNews = &top
	}
	return f, true
}

func bindTrending(c *gin.Context) (models.TrendingParams, bool) {
	var params models.TrendingParams
	if err := c.ShouldBindQuery(&params); err != nil {
		badRequest(c, "invalid query parameters")
		return params, false
	}
	return params, true
}
