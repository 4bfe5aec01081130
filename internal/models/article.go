package models

import (
	"slices"
	"time"
)

// ArticleStatus is the workflow state of an article
type ArticleStatus string

const (
	StatusDraft    ArticleStatus = "draft"
	StatusPending  ArticleStatus = "pending"
	StatusApproved ArticleStatus = "approved"
	StatusRejected ArticleStatus = "rejected"
)

// Article represents a news article as stored in the articles table
type Article struct {
	ID              int64         `json:"id" db:"id"`
	AuthorID        int64         `json:"author_id" db:"author_id"`
	Title           string        `json:"title" db:"title"`
	Description     *string       `json:"description" db:"description"`
	Content         string        `json:"content" db:"content"`
	Category        string        `json:"category" db:"category"`
	Region          *string       `json:"region" db:"region"`
	Tags            []string      `json:"tags" db:"-"` // Stored as JSONB in DB
	Image           *string       `json:"image" db:"image"`
	Status          ArticleStatus `json:"status" db:"status"`
	RejectionReason *string       `json:"rejection_reason" db:"rejection_reason"`
	IsTopNews       bool          `json:"is_top_news" db:"is_top_news"`
	ViewsCount      int64         `json:"views_count" db:"views_count"`
	PublishDate     *time.Time    `json:"publish_date" db:"publish_date"`
	CreatedAt       time.Time     `json:"created_at" db:"created_at"`
	UpdatedAt       time.Time     `json:"updated_at" db:"updated_at"`
}

// ArticleWithAuthor is an article joined with its author's identity fields
type ArticleWithAuthor struct {
	Article
	AuthorName  string `json:"author_name" db:"author_name"`
	AuthorEmail string `json:"author_email" db:"author_email"`
}

// ArticleFilters describes a filtered, paginated article listing.
// Zero values mean "no filter"; IsTopNews and AuthorID are tri-state.
type ArticleFilters struct {
	Status    ArticleStatus `json:"status,omitempty" form:"status"`
	Category  string        `json:"category,omitempty" form:"category"`
	Region    string        `json:"region,omitempty" form:"region"`
	AuthorID  *int64        `json:"author_id,omitempty"`
	IsTopNews *bool         `json:"is_top_news,omitempty"`
	Tags      []string      `json:"tags,omitempty"`
	Search    string        `json:"search,omitempty" form:"query"`
	Page      int           `json:"page" form:"page"`
	Limit     int           `json:"limit" form:"limit"`
	SortBy    string        `json:"sort_by,omitempty" form:"sortBy"`
	SortOrder string        `json:"sort_order,omitempty" form:"sortOrder"`
}

// TrendingParams selects a trending timeframe and page. AuthorOnly and
// AuthorID narrow the ranking to one author's articles.
type TrendingParams struct {
	Timeframe  string `json:"timeframe" form:"timeframe"` // day, week, month
	Page       int    `json:"page" form:"page"`
	Limit      int    `json:"limit" form:"limit"`
	AuthorOnly bool   `json:"author_only,omitempty" form:"author_only"`
	AuthorID   *int64 `json:"author_id,omitempty" form:"author_id"`
}

// ArticlePage is one page of a query result
type ArticlePage struct {
	Articles   []ArticleWithAuthor `json:"articles"`
	Pagination Pagination          `json:"pagination"`
}

// TagCount is a tag ranked by the views of the articles carrying it
type TagCount struct {
	Tag      string `json:"tag"`
	Articles int    `json:"articles"`
	Views    int64  `json:"views"`
}

// BulkAction is an admin operation applied to many articles at once
type BulkAction string

const (
	BulkDelete        BulkAction = "delete"
	BulkApprove       BulkAction = "approve"
	BulkReject        BulkAction = "reject"
	BulkMarkTopNews   BulkAction = "top-news"
	BulkUnmarkTopNews BulkAction = "unmark-top-news"
)

// MaxBulkIDs caps the number of ids in one bulk request
const MaxBulkIDs = 100

// BulkRequest is the payload of a bulk operation
type BulkRequest struct {
	IDs    []int64    `json:"ids"`
	Action BulkAction `json:"-"`
	Reason string     `json:"reason,omitempty"`
}

// BulkResult reports how many of the requested articles were changed.
// Rows whose status does not allow the action are skipped, not failed.
type BulkResult struct {
	Requested int   `json:"requested"`
	Found     int   `json:"found"`
	Affected  int64 `json:"affected"`
}

// ArticleStats is the dashboard summary
type ArticleStats struct {
	ByStatus map[ArticleStatus]int `json:"by_status"`
	Total    int                   `json:"total"`
	Authors  *int                  `json:"authors,omitempty"`
}

// CreateArticleRequest is the payload for creating an article
type CreateArticleRequest struct {
	Title       string   `json:"title"`
	Description *string  `json:"description,omitempty"`
	Content     string   `json:"content"`
	Category    string   `json:"category"`
	Region      *string  `json:"region,omitempty"`
	Tags        []string `json:"tags,omitempty"`
	Image       *string  `json:"image,omitempty"`
}

// UpdateArticleRequest is a partial update; nil fields are left untouched.
// A non-nil empty Tags slice clears the tags.
type UpdateArticleRequest struct {
	Title       *string   `json:"title,omitempty"`
	Description *string   `json:"description,omitempty"`
	Content     *string   `json:"content,omitempty"`
	Category    *string   `json:"category,omitempty"`
	Region      *string   `json:"region,omitempty"`
	Tags        *[]string `json:"tags,omitempty"`
	Image       *string   `json:"image,omitempty"`
}

// HasChanges reports whether the update touches any field
func (r *UpdateArticleRequest) HasChanges() bool {
	return r.Title != nil || r.Description != nil || r.Content != nil ||
		r.Category != nil || r.Region != nil || r.Tags != nil || r.Image != nil
}

// ValidStatuses defines allowed article statuses
var ValidStatuses = map[ArticleStatus]bool{
	StatusDraft:    true,
	StatusPending:  true,
	StatusApproved: true,
	StatusRejected: true,
}

// statusTransitions is the workflow DAG. Approved is terminal.
var statusTransitions = map[ArticleStatus][]ArticleStatus{
	StatusDraft:    {StatusPending},
	StatusPending:  {StatusApproved, StatusRejected},
	StatusApproved: {},
	StatusRejected: {StatusPending},
}

// CanTransition reports whether an article may move from one status to another
func CanTransition(from, to ArticleStatus) bool {
	return slices.Contains(statusTransitions[from], to)
}

// EditableByAuthor reports whether the owning author may still modify the article
func (a *Article) EditableByAuthor() bool {
	return a.Status == StatusDraft || a.Status == StatusRejected
}

// Categories lists the allowed article categories
var Categories = []string{
	"Culture & Heritage",
	"Adventure Tourism",
	"Religious Tourism",
	"Hill Stations",
	"Wildlife & Nature",
	"Trekking & Hiking",
	"Pilgrimage",
	"Local Festivals",
	"Travel Guide",
	"Food & Cuisine",
	"Accommodation",
	"Transportation",
	"From Districts",
	"Breaking News",
	"Government Initiatives",
	"Seasonal Tourism",
}

// Regions lists the allowed article regions
var Regions = []string{
	"Dehradun",
	"Haridwar",
	"Rishikesh",
	"Mussoorie",
	"Nainital",
	"Almora",
	"Pithoragarh",
	"Chamoli",
	"Rudraprayag",
	"Tehri Garhwal",
	"Pauri Garhwal",
	"Uttarkashi",
	"Bageshwar",
	"Champawat",
	"Kumaon",
	"Garhwal",
	"Char Dham",
	"Valley of Flowers",
	"Jim Corbett",
	"Kedarnath",
	"Badrinath",
	"Gangotri",
	"Yamunotri",
}

const (
	CategoryCultureHeritage = "Culture & Heritage"
	CategoryFromDistricts   = "From Districts"
)
