package domain

import (
	"fmt"
	"net/url"
	"strings"
	"unicode/utf8"
)

const (
	MaxBlogTitleLength    = 200
	MaxProjectTitleLength = 120
)

// FieldError is a single field-scoped validation failure.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// FieldErrors is returned by Validate; it is an error when non-empty.
type FieldErrors []FieldError

func (fe FieldErrors) Error() string {
	parts := make([]string, 0, len(fe))
	for _, e := range fe {
		parts = append(parts, e.Field+": "+e.Message)
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

// For returns the message attached to field, or "".
func (fe FieldErrors) For(field string) string {
	for _, e := range fe {
		if e.Field == field {
			return e.Message
		}
	}
	return ""
}

// Err returns fe as an error, or nil when there is nothing to report.
func (fe FieldErrors) Err() error {
	if len(fe) == 0 {
		return nil
	}
	return fe
}

func (fe *FieldErrors) add(field, msg string) {
	*fe = append(*fe, FieldError{Field: field, Message: msg})
}

// Validator is implemented by every draft.
type Validator interface {
	Validate() FieldErrors
}

// Validate checks a blog draft.
func (d BlogDraft) Validate() FieldErrors {
	var errs FieldErrors
	requireText(&errs, "title", d.Title, MaxBlogTitleLength)
	if strings.TrimSpace(PlainText(d.Content)) == "" {
		errs.add("content", "content is required")
	}
	optionalURL(&errs, "image", d.Image)
	return errs
}

// Validate checks a project draft.
func (d ProjectDraft) Validate() FieldErrors {
	var errs FieldErrors
	requireText(&errs, "title", d.Title, MaxProjectTitleLength)
	if strings.TrimSpace(d.Description) == "" {
		errs.add("description", "description is required")
	}

	if len(d.Technologies) == 0 {
		errs.add("technologies", "at least one technology is required")
	} else {
		seen := make(map[string]bool, len(d.Technologies))
		for _, tech := range d.Technologies {
			k := strings.ToLower(strings.TrimSpace(tech))
			if k == "" {
				errs.add("technologies", "technologies must not be blank")
				break
			}
			if seen[k] {
				errs.add("technologies", fmt.Sprintf("duplicate technology %q", tech))
				break
			}
			seen[k] = true
		}
	}

	optionalURL(&errs, "liveLink", d.LiveLink)
	optionalURL(&errs, "githubLink", d.GithubLink)
	optionalURL(&errs, "image", d.Image)

	if d.Category == "" {
		errs.add("category", "category is required")
	} else if !ValidCategories[d.Category] {
		errs.add("category", "invalid category, must be one of: web, mobile, desktop, api, library, tool, other")
	}
	if d.Status == "" {
		errs.add("status", "status is required")
	} else if !ValidStatuses[d.Status] {
		errs.add("status", "invalid status, must be one of: completed, development, planning, maintenance")
	}
	return errs
}

// Validate checks a skill draft.
func (d SkillDraft) Validate() FieldErrors {
	var errs FieldErrors
	requireText(&errs, "name", d.Name, MaxSkillNameLength)
	if !ValidSkillTypes[d.Type] {
		errs.add("type", "type must be one of: technical, soft")
	}
	if !ValidProficiencies[d.Proficiency] {
		errs.add("proficiency", "proficiency must be one of: beginner, intermediate, advanced, expert")
	}
	return errs
}

func requireText(errs *FieldErrors, field, value string, max int) {
	v := strings.TrimSpace(value)
	switch {
	case v == "":
		errs.add(field, field+" is required")
	case utf8.RuneCountInString(v) > max:
		errs.add(field, fmt.Sprintf("%s must be at most %d characters", field, max))
	}
}

// optionalURL accepts "" or an absolute http(s) URL with a host.
func optionalURL(errs *FieldErrors, field, value string) {
	if value == "" {
		return
	}
	if !IsValidURL(value) {
		errs.add(field, "must be a valid URL")
	}
}

// IsValidURL reports whether s parses as an absolute http or https URL.
func IsValidURL(s string) bool {
	u, err := url.Parse(strings.TrimSpace(s))
	if err != nil {
		return false
	}
	return (u.Scheme == "http" || u.Scheme == "https") && u.Host != ""
}
