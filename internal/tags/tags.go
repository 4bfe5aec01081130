// Package tags validates and normalizes article tag lists.
//
// Tags are stored lowercase. The same normalization is applied on write paths
// (Sanitize) and on read-path filters (ParseQuery), so filter matching against
// stored tags is effectively case-insensitive.
package tags

import (
	"regexp"
	"strings"
	"unicode/utf8"

	validation "github.com/go-ozzo/ozzo-validation/v4"
)

const (
	MaxTags      = 10
	MinTagLength = 2
	MaxTagLength = 30
)

var tagCharsRegex = regexp.MustCompile(`^[a-zA-Z0-9 _-]+$`)

var tagRule = validation.By(func(value interface{}) error {
	tag, ok := value.(string)
	if !ok {
		return validation.NewError("tag_type", "tag must be a string")
	}
	tag = strings.TrimSpace(tag)
	n := utf8.RuneCountInString(tag)
	if n < MinTagLength || n > MaxTagLength {
		return validation.NewError("tag_length", "tag must be 2-30 characters long")
	}
	if !tagCharsRegex.MatchString(tag) {
		return validation.NewError("tag_chars", "tag may only contain letters, numbers, spaces, hyphens and underscores")
	}
	return nil
})

// Check validates a tag list and returns the first failing rule.
// An empty or nil list is valid.
func Check(tags []string) error {
	return validation.Validate(tags,
		validation.Length(0, MaxTags).Error("at most 10 tags are allowed"),
		validation.Each(tagRule),
	)
}

// Validate reports whether every tag in the list is acceptable
func Validate(tags []string) bool {
	return Check(tags) == nil
}

// Sanitize trims and lowercases tags, removes duplicates keeping the first
// occurrence, drops tags outside the length bounds and keeps at most MaxTags.
// Sanitize(Sanitize(x)) == Sanitize(x).
func Sanitize(tags []string) []string {
	out := make([]string, 0, len(tags))
	seen := make(map[string]struct{}, len(tags))
	for _, tag := range tags {
		tag = strings.TrimSpace(strings.ToLower(tag))
		if _, dup := seen[tag]; dup {
			continue
		}
		seen[tag] = struct{}{}
		if n := utf8.RuneCountInString(tag); n < MinTagLength || n > MaxTagLength {
			continue
		}
		out = append(out, tag)
		if len(out) == MaxTags {
			break
		}
	}
	return out
}

// ParseQuery turns tag query parameters into a filter list. Each value may be
// a single tag or a comma-delimited list (?tags=a,b or ?tags=a&tags=b).
// Tags are trimmed, lowercased and de-duplicated; empty entries are dropped.
func ParseQuery(values []string) []string {
	var out []string
	seen := make(map[string]struct{})
	for _, value := range values {
		for _, tag := range strings.Split(value, ",") {
			tag = strings.ToLower(strings.TrimSpace(tag))
			if tag == "" {
				continue
			}
			if _, dup := seen[tag]; dup {
				continue
			}
			seen[tag] = struct{}{}
			out = append(out, tag)
		}
	}
	return out
}
