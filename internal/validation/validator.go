package validation

import (
	"errors"
	"sort"
	"strings"

	ozzo "github.com/go-ozzo/ozzo-validation/v4"

	"github.com/newsdesk-api/internal/models"
	"github.com/newsdesk-api/internal/tags"
)

const (
	MaxTitleLength  = 255
	MaxSearchLength = 200
	MaxReasonLength = 500
)

// ValidationError represents a single validation error
type ValidationError struct {
	Field   string      `json:"field"`
	Message string      `json:"message"`
	Value   interface{} `json:"value,omitempty"`
}

func inStrings(values []string) []interface{} {
	out := make([]interface{}, len(values))
	for i, v := range values {
		out[i] = v
	}
	return out
}

var (
	categoryRule = ozzo.In(inStrings(models.Categories)...).Error("invalid category")
	regionRule   = ozzo.In(inStrings(models.Regions)...).Error("invalid region")
	statusRule   = ozzo.In(models.StatusDraft, models.StatusPending, models.StatusApproved, models.StatusRejected).
			Error("status must be one of: draft, pending, approved, rejected")
	tagsRule = ozzo.By(func(value interface{}) error {
		list, _ := value.([]string)
		return tags.Check(list)
	})
	titleRule = ozzo.By(func(value interface{}) error {
		title, isNil := ozzo.Indirect(value)
		if isNil {
			return nil
		}
		if s, _ := title.(string); strings.TrimSpace(s) == "" {
			return ozzo.NewError("title_blank", "title must not be blank")
		}
		return nil
	})
	idsRule = ozzo.By(func(value interface{}) error {
		ids, _ := value.([]int64)
		for _, id := range ids {
			if id < 1 {
				return ozzo.NewError("id_positive", "ids must be positive")
			}
		}
		return nil
	})
)

// ValidateCreate validates a new article
func ValidateCreate(req *models.CreateArticleRequest) []ValidationError {
	return convert(ozzo.ValidateStruct(req,
		ozzo.Field(&req.Title,
			ozzo.Required.Error("title is required"),
			titleRule,
			ozzo.RuneLength(1, MaxTitleLength).Error("title must be at most 255 characters"),
		),
		ozzo.Field(&req.Content, ozzo.Required.Error("content is required")),
		ozzo.Field(&req.Category, ozzo.Required.Error("category is required"), categoryRule),
		ozzo.Field(&req.Region, ozzo.NilOrNotEmpty.Error("region must not be empty"), regionRule),
		ozzo.Field(&req.Tags, tagsRule),
		ozzo.Field(&req.Image, ozzo.Required.Error("image is required")),
	))
}

// ValidateUpdate validates a partial update; only present fields are checked
func ValidateUpdate(req *models.UpdateArticleRequest) []ValidationError {
	if !req.HasChanges() {
		return []ValidationError{{Field: "body", Message: "no fields to update"}}
	}

	var tagList []string
	if req.Tags != nil {
		tagList = *req.Tags
	}

	errs := convert(ozzo.ValidateStruct(req,
		ozzo.Field(&req.Title,
			ozzo.NilOrNotEmpty.Error("title must not be empty"),
			titleRule,
			ozzo.RuneLength(1, MaxTitleLength).Error("title must be at most 255 characters"),
		),
		ozzo.Field(&req.Content, ozzo.NilOrNotEmpty.Error("content must not be empty")),
		ozzo.Field(&req.Category, ozzo.NilOrNotEmpty.Error("category must not be empty"), categoryRule),
		ozzo.Field(&req.Region, regionRule),
	))
	if err := tags.Check(tagList); err != nil {
		errs = append(errs, ValidationError{Field: "tags", Message: err.Error()})
	}
	return errs
}

// ValidateFilters validates a listing request before it reaches the store.
// Empty fields are open filters. Tag filters are only normalized, never
// rejected: a tag that could not have been stored simply matches nothing.
func ValidateFilters(f *models.ArticleFilters) []ValidationError {
	return convert(ozzo.ValidateStruct(f,
		ozzo.Field(&f.Status, statusRule),
		ozzo.Field(&f.Category, categoryRule),
		ozzo.Field(&f.Region, regionRule),
		ozzo.Field(&f.Search, ozzo.RuneLength(0, MaxSearchLength).Error("query must be at most 200 characters")),
	))
}

// ValidateTrending validates explicit paging of a trending request.
// Zero means "not given" and is filled with defaults later.
func ValidateTrending(p *models.TrendingParams) []ValidationError {
	return convert(ozzo.ValidateStruct(p,
		ozzo.Field(&p.Page, ozzo.Min(0).Error("page must be greater than 0")),
		ozzo.Field(&p.Limit, ozzo.Min(0).Error("limit must be between 1 and 100"), ozzo.Max(models.MaxPageSize).Error("limit must be between 1 and 100")),
	))
}

// ValidateBulk validates a bulk request
func ValidateBulk(req *models.BulkRequest) []ValidationError {
	errs := convert(ozzo.ValidateStruct(req,
		ozzo.Field(&req.IDs,
			ozzo.Required.Error("ids must not be empty"),
			ozzo.Length(1, models.MaxBulkIDs).Error("at most 100 ids are allowed"),
			idsRule,
		),
		ozzo.Field(&req.Action, ozzo.Required, ozzo.In(
			models.BulkDelete, models.BulkApprove, models.BulkReject,
			models.BulkMarkTopNews, models.BulkUnmarkTopNews,
		).Error("unknown bulk action")),
		ozzo.Field(&req.Reason, ozzo.RuneLength(0, MaxReasonLength).Error("reason must be at most 500 characters")),
	))
	if req.Action == models.BulkReject && strings.TrimSpace(req.Reason) == "" {
		errs = append(errs, ValidationError{Field: "reason", Message: "reason is required"})
	}
	return errs
}

// ValidateReason validates a rejection reason
func ValidateReason(reason string) []ValidationError {
	reason = strings.TrimSpace(reason)
	if reason == "" {
		return []ValidationError{{Field: "reason", Message: "reason is required"}}
	}
	if err := ozzo.Validate(reason, ozzo.RuneLength(1, MaxReasonLength)); err != nil {
		return []ValidationError{{Field: "reason", Message: "reason must be at most 500 characters"}}
	}
	return nil
}

// convert flattens ozzo errors into a list ordered by field name
func convert(err error) []ValidationError {
	if err == nil {
		return nil
	}

	var fieldErrs ozzo.Errors
	if !errors.As(err, &fieldErrs) {
		return []ValidationError{{Field: "unknown", Message: err.Error()}}
	}

	out := make([]ValidationError, 0, len(fieldErrs))
	for field, fieldErr := range fieldErrs {
		out = append(out, ValidationError{Field: field, Message: message(fieldErr)})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Field < out[j].Field })
	return out
}

// message unwraps nested Each errors to their first element message
func message(err error) string {
	var nested ozzo.Errors
	if errors.As(err, &nested) {
		keys := make([]string, 0, len(nested))
		for k := range nested {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		if len(keys) > 0 {
			return message(nested[keys[0]])
		}
	}
	return err.Error()
}
