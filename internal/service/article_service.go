package service

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/newsdesk-api/internal/config"
	"github.com/newsdesk-api/internal/metrics"
	"github.com/newsdesk-api/internal/models"
	"github.com/newsdesk-api/internal/query"
	"github.com/newsdesk-api/internal/repository"
	"github.com/newsdesk-api/internal/tags"
	"github.com/newsdesk-api/internal/validation"
)

// articleService implements ArticleService and PublicArticleService
type articleService struct {
	articles repository.ArticleRepository
	authors  repository.AuthorRepository
	cfg      config.QueryConfig
	log      zerolog.Logger
	now      func() time.Time

	// views tracks detached view-count updates
	views sync.WaitGroup
}

func newArticleService(repos *repository.Repositories, cfg config.QueryConfig, log zerolog.Logger) *articleService {
	return &articleService{
		articles: repos.Article,
		authors:  repos.Author,
		cfg:      cfg,
		log:      log.With().Str("service", "article").Logger(),
		now:      time.Now,
	}
}

// storeError logs a store failure with full detail and returns the generic
// query failure that callers see
func (s *articleService) storeError(op string, err error) error {
	s.log.Error().Err(err).Str("op", op).Msg("Article store operation failed")
	return newError(ErrQueryFailed, op, "")
}

// load fetches an article or fails with NotFound
func (s *articleService) load(ctx context.Context, op string, id int64) (*models.ArticleWithAuthor, error) {
	article, err := s.articles.GetByID(ctx, id)
	if err != nil {
		return nil, s.storeError(op, err)
	}
	if article == nil {
		return nil, newError(ErrNotFound, op, "article not found")
	}
	return article, nil
}

// loadOwned fetches an article the caller owns, or any article for admins
func (s *articleService) loadOwned(ctx context.Context, op string, p models.Principal, id int64) (*models.ArticleWithAuthor, error) {
	article, err := s.load(ctx, op, id)
	if err != nil {
		return nil, err
	}
	if !p.IsAdmin() && article.AuthorID != p.UserID {
		return nil, newError(ErrForbidden, op, "you do not have access to this article")
	}
	return article, nil
}

func requireAdmin(op string, p models.Principal) error {
	if !p.IsAdmin() {
		return newError(ErrForbidden, op, "admin access required")
	}
	return nil
}

// Create stores a new draft owned by the caller
func (s *articleService) Create(ctx context.Context, p models.Principal, req *models.CreateArticleRequest) (*models.ArticleWithAuthor, error) {
	const op = "article.create"

	if errs := validation.ValidateCreate(req); len(errs) > 0 {
		return nil, invalid(op, errs)
	}

	author, err := s.authors.GetByID(ctx, p.UserID)
	if err != nil {
		return nil, s.storeError(op, err)
	}
	if author == nil {
		return nil, newError(ErrForbidden, op, "unknown author")
	}

	article := &models.Article{
		AuthorID:    p.UserID,
		Title:       strings.TrimSpace(req.Title),
		Description: req.Description,
		Content:     req.Content,
		Category:    req.Category,
		Region:      req.Region,
		Tags:        tags.Sanitize(req.Tags),
		Image:       req.Image,
		Status:      models.StatusDraft,
	}
	if err := s.articles.Create(ctx, article); err != nil {
		return nil, s.storeError(op, err)
	}

	s.log.Info().Int64("article_id", article.ID).Int64("author_id", p.UserID).Msg("Article created")
	return s.load(ctx, op, article.ID)
}

// Get returns an article to its owner or an admin
func (s *articleService) Get(ctx context.Context, p models.Principal, id int64) (*models.ArticleWithAuthor, error) {
	return s.loadOwned(ctx, "article.get", p, id)
}

// Update applies a partial update. Authors may edit their own drafts and
// rejected articles; admins may edit anything.
func (s *articleService) Update(ctx context.Context, p models.Principal, id int64, req *models.UpdateArticleRequest) (*models.ArticleWithAuthor, error) {
	const op = "article.update"

	if errs := validation.ValidateUpdate(req); len(errs) > 0 {
		return nil, invalid(op, errs)
	}

	article, err := s.loadOwned(ctx, op, p, id)
	if err != nil {
		return nil, err
	}
	if !p.IsAdmin() && !article.EditableByAuthor() {
		return nil, newError(ErrForbidden, op, "only draft or rejected articles can be edited")
	}

	if req.Tags != nil {
		sanitized := tags.Sanitize(*req.Tags)
		req.Tags = &sanitized
	}
	if req.Title != nil {
		title := strings.TrimSpace(*req.Title)
		req.Title = &title
	}

	ok, err := s.articles.Update(ctx, id, req)
	if err != nil {
		return nil, s.storeError(op, err)
	}
	if !ok {
		return nil, newError(ErrNotFound, op, "article not found")
	}
	return s.load(ctx, op, id)
}

// Delete removes an article. Authors may delete their own drafts and
// rejected articles; admins may delete anything.
func (s *articleService) Delete(ctx context.Context, p models.Principal, id int64) error {
	const op = "article.delete"

	article, err := s.loadOwned(ctx, op, p, id)
	if err != nil {
		return err
	}
	if !p.IsAdmin() && !article.EditableByAuthor() {
		return newError(ErrForbidden, op, "only draft or rejected articles can be deleted")
	}

	n, err := s.articles.Delete(ctx, []int64{id})
	if err != nil {
		return s.storeError(op, err)
	}
	if n == 0 {
		return newError(ErrNotFound, op, "article not found")
	}

	s.log.Info().Int64("article_id", id).Int64("by", p.UserID).Msg("Article deleted")
	return nil
}

// transition moves one article along the workflow after checking it is allowed
func (s *articleService) transition(ctx context.Context, op string, article *models.ArticleWithAuthor, to models.ArticleStatus, reason *string) (*models.ArticleWithAuthor, error) {
	if !models.CanTransition(article.Status, to) {
		return nil, newError(ErrInvalidTransition, op,
			"cannot move article from "+string(article.Status)+" to "+string(to))
	}

	n, err := s.articles.Transition(ctx, []int64{article.ID}, to, reason, s.now())
	if err != nil {
		return nil, s.storeError(op, err)
	}
	if n == 0 {
		// status changed between the read and the update
		return nil, newError(ErrInvalidTransition, op, "article status changed, retry")
	}

	s.log.Info().
		Int64("article_id", article.ID).
		Str("from", string(article.Status)).
		Str("to", string(to)).
		Msg("Article status changed")
	return s.load(ctx, op, article.ID)
}

// Submit sends a draft or rejected article for review
func (s *articleService) Submit(ctx context.Context, p models.Principal, id int64) (*models.ArticleWithAuthor, error) {
	const op = "article.submit"

	article, err := s.loadOwned(ctx, op, p, id)
	if err != nil {
		return nil, err
	}
	return s.transition(ctx, op, article, models.StatusPending, nil)
}

// Approve publishes a pending article
func (s *articleService) Approve(ctx context.Context, p models.Principal, id int64) (*models.ArticleWithAuthor, error) {
	const op = "article.approve"

	if err := requireAdmin(op, p); err != nil {
		return nil, err
	}
	article, err := s.load(ctx, op, id)
	if err != nil {
		return nil, err
	}
	return s.transition(ctx, op, article, models.StatusApproved, nil)
}

// Reject sends a pending article back to its author with a reason
func (s *articleService) Reject(ctx context.Context, p models.Principal, id int64, reason string) (*models.ArticleWithAuthor, error) {
	const op = "article.reject"

	if err := requireAdmin(op, p); err != nil {
		return nil, err
	}
	if errs := validation.ValidateReason(reason); len(errs) > 0 {
		return nil, invalid(op, errs)
	}
	article, err := s.load(ctx, op, id)
	if err != nil {
		return nil, err
	}
	reason = strings.TrimSpace(reason)
	return s.transition(ctx, op, article, models.StatusRejected, &reason)
}

// SetTopNews flags an approved article as top news, or clears the flag
func (s *articleService) SetTopNews(ctx context.Context, p models.Principal, id int64, top bool) (*models.ArticleWithAuthor, error) {
	const op = "article.top_news"

	if err := requireAdmin(op, p); err != nil {
		return nil, err
	}
	article, err := s.load(ctx, op, id)
	if err != nil {
		return nil, err
	}
	if top && article.Status != models.StatusApproved {
		return nil, newError(ErrInvalidTransition, op, "only approved articles can be top news")
	}

	n, err := s.articles.SetTopNews(ctx, []int64{id}, top)
	if err != nil {
		return nil, s.storeError(op, err)
	}
	if n == 0 && top {
		return nil, newError(ErrInvalidTransition, op, "article status changed, retry")
	}
	return s.load(ctx, op, id)
}

// Bulk applies an admin action to many articles. Rows whose status does not
// allow the action are skipped.
func (s *articleService) Bulk(ctx context.Context, p models.Principal, req *models.BulkRequest) (*models.BulkResult, error) {
	op := "article.bulk." + string(req.Action)

	if err := requireAdmin(op, p); err != nil {
		return nil, err
	}
	if errs := validation.ValidateBulk(req); len(errs) > 0 {
		return nil, invalid(op, errs)
	}

	ids := uniqueIDs(req.IDs)
	found, err := s.articles.CountExisting(ctx, ids)
	if err != nil {
		return nil, s.storeError(op, err)
	}
	if found == 0 {
		return nil, newError(ErrNotFound, op, "no articles found for the given ids")
	}

	var n int64
	switch req.Action {
	case models.BulkDelete:
		n, err = s.articles.Delete(ctx, ids)
	case models.BulkApprove:
		n, err = s.articles.Transition(ctx, ids, models.StatusApproved, nil, s.now())
	case models.BulkReject:
		reason := strings.TrimSpace(req.Reason)
		n, err = s.articles.Transition(ctx, ids, models.StatusRejected, &reason, s.now())
	case models.BulkMarkTopNews:
		n, err = s.articles.SetTopNews(ctx, ids, true)
	case models.BulkUnmarkTopNews:
		n, err = s.articles.SetTopNews(ctx, ids, false)
	}
	if err != nil {
		return nil, s.storeError(op, err)
	}

	s.log.Info().
		Str("action", string(req.Action)).
		Int("requested", len(ids)).
		Int("found", found).
		Int64("affected", n).
		Msg("Bulk operation applied")

	return &models.BulkResult{Requested: len(ids), Found: found, Affected: n}, nil
}

func uniqueIDs(ids []int64) []int64 {
	seen := make(map[int64]struct{}, len(ids))
	out := make([]int64, 0, len(ids))
	for _, id := range ids {
		if _, dup := seen[id]; dup {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}

// find validates filters and runs the filtered listing
func (s *articleService) find(ctx context.Context, op string, f models.ArticleFilters, fallbackSort string) (*models.ArticlePage, error) {
	f.Tags = tags.ParseQuery(f.Tags)
	f.Search = strings.TrimSpace(f.Search)
	if errs := validation.ValidateFilters(&f); len(errs) > 0 {
		return nil, invalid(op, errs)
	}

	kind := metrics.KindFilters
	if f.Search != "" {
		kind = metrics.KindSearch
	}

	start := time.Now()
	page, err := s.articles.FindWithFilters(ctx, f, fallbackSort)
	metrics.ObserveQuery(kind, start, err)
	if err != nil {
		return nil, s.storeError(op, err)
	}
	return page, nil
}

func requireSearch(op string, f models.ArticleFilters) error {
	if strings.TrimSpace(f.Search) == "" {
		return invalid(op, []validation.ValidationError{{Field: "query", Message: "search query is required"}})
	}
	return nil
}

// scope restricts a dashboard listing to the caller's articles unless admin
func scope(p models.Principal, f models.ArticleFilters) models.ArticleFilters {
	if !p.IsAdmin() {
		id := p.UserID
		f.AuthorID = &id
	}
	return f
}

// List is the dashboard listing
func (s *articleService) List(ctx context.Context, p models.Principal, filters models.ArticleFilters) (*models.ArticlePage, error) {
	return s.find(ctx, "article.list", scope(p, filters), query.DefaultSortColumn)
}

// Search is the dashboard full-text search
func (s *articleService) Search(ctx context.Context, p models.Principal, filters models.ArticleFilters) (*models.ArticlePage, error) {
	const op = "article.search"
	if err := requireSearch(op, filters); err != nil {
		return nil, err
	}
	return s.find(ctx, op, scope(p, filters), query.DefaultSortColumn)
}

// trending validates the timeframe and runs the ranking
func (s *articleService) trending(ctx context.Context, op string, params models.TrendingParams, authorID *int64) (*models.ArticlePage, error) {
	tf, err := query.ParseTimeframe(params.Timeframe)
	if err != nil {
		return nil, invalid(op, []validation.ValidationError{{Field: "timeframe", Message: "invalid timeframe, must be one of: day, week, month", Value: params.Timeframe}})
	}
	if errs := validation.ValidateTrending(&params); len(errs) > 0 {
		return nil, invalid(op, errs)
	}

	start := time.Now()
	page, err := s.articles.FindTrending(ctx, query.FormulaFor(tf), s.now(), authorID, params.Page, params.Limit)
	metrics.ObserveQuery(metrics.KindTrending, start, err)
	if err != nil {
		return nil, s.storeError(op, err)
	}
	return page, nil
}

// Trending ranks approved articles. AuthorOnly narrows it to the caller;
// admins may name any author, authors only themselves.
func (s *articleService) Trending(ctx context.Context, p models.Principal, params models.TrendingParams) (*models.ArticlePage, error) {
	const op = "article.trending"

	var authorID *int64
	switch {
	case params.AuthorID != nil:
		if !p.IsAdmin() && *params.AuthorID != p.UserID {
			return nil, newError(ErrForbidden, op, "authors can only view their own trending articles")
		}
		authorID = params.AuthorID
	case params.AuthorOnly:
		id := p.UserID
		authorID = &id
	}
	return s.trending(ctx, op, params, authorID)
}

// Stats summarizes article counts for the dashboard
func (s *articleService) Stats(ctx context.Context, p models.Principal) (*models.ArticleStats, error) {
	const op = "article.stats"

	var authorID *int64
	if !p.IsAdmin() {
		id := p.UserID
		authorID = &id
	}

	counts, err := s.articles.CountByStatus(ctx, authorID)
	if err != nil {
		return nil, s.storeError(op, err)
	}

	stats := &models.ArticleStats{ByStatus: counts}
	for _, n := range counts {
		stats.Total += n
	}

	if p.IsAdmin() {
		authors, err := s.authors.Count(ctx)
		if err != nil {
			return nil, s.storeError(op, err)
		}
		stats.Authors = &authors
	}
	return stats, nil
}

// GetPublished returns an approved article and records a view
func (s *articleService) GetPublished(ctx context.Context, id int64) (*models.ArticleWithAuthor, error) {
	const op = "public.get"

	article, err := s.load(ctx, op, id)
	if err != nil {
		return nil, err
	}
	if article.Status != models.StatusApproved {
		return nil, newError(ErrNotFound, op, "article not found")
	}

	s.recordView(id)
	return article, nil
}

// recordView bumps the view counter without blocking the caller. Failures
// are logged and counted, never retried.
func (s *articleService) recordView(id int64) {
	timeout := s.cfg.ViewTimeout
	if timeout <= 0 {
		timeout = 2 * time.Second
	}

	s.views.Add(1)
	go func() {
		defer s.views.Done()

		ctx, cancel := context.WithTimeout(context.Background(), timeout)
		defer cancel()

		if err := s.articles.IncrementViews(ctx, id); err != nil {
			metrics.ViewIncrementFailures.Inc()
			s.log.Warn().Err(err).Int64("article_id", id).Msg("Failed to record article view")
		}
	}()
}

// Wait blocks until detached view updates have finished; used on shutdown
func (s *articleService) Wait() {
	s.views.Wait()
}

func published(f models.ArticleFilters) models.ArticleFilters {
	f.Status = models.StatusApproved
	return f
}

// ListPublished lists approved articles, newest first by default
func (s *articleService) ListPublished(ctx context.Context, filters models.ArticleFilters) (*models.ArticlePage, error) {
	return s.find(ctx, "public.list", published(filters), query.PublicSortColumn)
}

// SearchPublished searches approved articles
func (s *articleService) SearchPublished(ctx context.Context, filters models.ArticleFilters) (*models.ArticlePage, error) {
	const op = "public.search"
	if err := requireSearch(op, filters); err != nil {
		return nil, err
	}
	return s.find(ctx, op, published(filters), query.PublicSortColumn)
}

// TrendingPublished ranks approved articles across all authors
func (s *articleService) TrendingPublished(ctx context.Context, params models.TrendingParams) (*models.ArticlePage, error) {
	return s.trending(ctx, "public.trending", params, nil)
}

// TrendingTags returns the most viewed tags in the timeframe
func (s *articleService) TrendingTags(ctx context.Context, timeframe string, limit int) ([]models.TagCount, error) {
	const op = "public.trending_tags"

	tf, err := query.ParseTimeframe(timeframe)
	if err != nil {
		return nil, invalid(op, []validation.ValidationError{{Field: "timeframe", Message: "invalid timeframe, must be one of: day, week, month", Value: timeframe}})
	}
	if limit < 0 || limit > models.MaxPageSize {
		return nil, invalid(op, []validation.ValidationError{{Field: "limit", Message: "limit must be between 1 and 100"}})
	}
	if limit == 0 {
		limit = s.cfg.TrendingTagsLimit
	}

	start := time.Now()
	result, err := s.articles.TrendingTags(ctx, query.FormulaFor(tf), s.now(), limit)
	metrics.ObserveQuery(metrics.KindTrendingTags, start, err)
	if err != nil {
		return nil, s.storeError(op, err)
	}
	return result, nil
}
