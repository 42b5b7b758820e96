package domain

import (
	"encoding/json"
	"strings"
)

// Category classifies a project.
type Category string

const (
	CategoryWeb     Category = "web"
	CategoryMobile  Category = "mobile"
	CategoryDesktop Category = "desktop"
	CategoryAPI     Category = "api"
	CategoryLibrary Category = "library"
	CategoryTool    Category = "tool"
	CategoryOther   Category = "other"
)

// ValidCategories is the closed set of project categories.
var ValidCategories = map[Category]bool{
	CategoryWeb:     true,
	CategoryMobile:  true,
	CategoryDesktop: true,
	CategoryAPI:     true,
	CategoryLibrary: true,
	CategoryTool:    true,
	CategoryOther:   true,
}

// ProjectStatus is the lifecycle stage of a project.
type ProjectStatus string

const (
	StatusCompleted   ProjectStatus = "completed"
	StatusDevelopment ProjectStatus = "development"
	StatusPlanning    ProjectStatus = "planning"
	StatusMaintenance ProjectStatus = "maintenance"
)

// ValidStatuses is the closed set of project statuses.
var ValidStatuses = map[ProjectStatus]bool{
	StatusCompleted:   true,
	StatusDevelopment: true,
	StatusPlanning:    true,
	StatusMaintenance: true,
}

// Project is a portfolio entry.
type Project struct {
	ID           string        `json:"_id"`
	Title        string        `json:"title"`
	Description  string        `json:"description"`
	Technologies []string      `json:"technologies"`
	LiveLink     string        `json:"liveLink"`
	GithubLink   string        `json:"githubLink"`
	Image        string        `json:"image"`
	Category     Category      `json:"category"`
	Status       ProjectStatus `json:"status"`
	IsFeatured   bool          `json:"isFeatured"`
}

// Key implements Entity.
func (p Project) Key() string { return p.ID }

// MarshalJSON keeps technologies as [] rather than null.
func (p Project) MarshalJSON() ([]byte, error) {
	type alias Project
	a := alias(p)
	if a.Technologies == nil {
		a.Technologies = []string{}
	}
	return json.Marshal(a)
}

// ProjectDraft is the editable part of a Project.
// Update sends every field: the API receives the full entity, not a partial patch.
type ProjectDraft struct {
	Title        string        `json:"title"`
	Description  string        `json:"description"`
	Technologies []string      `json:"technologies"`
	LiveLink     string        `json:"liveLink"`
	GithubLink   string        `json:"githubLink"`
	Image        string        `json:"image"`
	Category     Category      `json:"category"`
	Status       ProjectStatus `json:"status"`
	IsFeatured   bool          `json:"isFeatured"`
}

// MarshalJSON keeps technologies as [] rather than null.
func (d ProjectDraft) MarshalJSON() ([]byte, error) {
	type alias ProjectDraft
	a := alias(d)
	if a.Technologies == nil {
		a.Technologies = []string{}
	}
	return json.Marshal(a)
}

// ProjectDraftFrom seeds a draft from an existing project.
// Technologies are copied so the draft never aliases the collection entry.
func ProjectDraftFrom(p Project) ProjectDraft {
	return ProjectDraft{
		Title:        p.Title,
		Description:  p.Description,
		Technologies: append([]string(nil), p.Technologies...),
		LiveLink:     p.LiveLink,
		GithubLink:   p.GithubLink,
		Image:        p.Image,
		Category:     p.Category,
		Status:       p.Status,
		IsFeatured:   p.IsFeatured,
	}
}

// Apply returns a copy of p carrying the draft's field values.
func (d ProjectDraft) Apply(p Project) Project {
	p.Title = d.Title
	p.Description = d.Description
	p.Technologies = append([]string(nil), d.Technologies...)
	p.LiveLink = d.LiveLink
	p.GithubLink = d.GithubLink
	p.Image = d.Image
	p.Category = d.Category
	p.Status = d.Status
	p.IsFeatured = d.IsFeatured
	return p
}

// ParseTechnologies splits the comma-separated technology input of the form.
// Blank entries are dropped and duplicates (case-insensitive) keep their first spelling.
// Example: "React, TypeScript, react" -> ["React", "TypeScript"]
func ParseTechnologies(input string) []string {
	seen := make(map[string]bool)
	techs := make([]string, 0, 4)
	for _, part := range strings.Split(input, ",") {
		tech := strings.TrimSpace(part)
		if tech == "" {
			continue
		}
		k := strings.ToLower(tech)
		if seen[k] {
			continue
		}
		seen[k] = true
		techs = append(techs, tech)
	}
	return techs
}

// AddTechnology appends tech unless it is already present.
func (d *ProjectDraft) AddTechnology(tech string) {
	tech = strings.TrimSpace(tech)
	if tech == "" {
		return
	}
	for _, t := range d.Technologies {
		if strings.EqualFold(t, tech) {
			return
		}
	}
	d.Technologies = append(d.Technologies, tech)
}

// RemoveTechnology drops tech, preserving the order of the others.
func (d *ProjectDraft) RemoveTechnology(tech string) {
	out := d.Technologies[:0:0]
	for _, t := range d.Technologies {
		if !strings.EqualFold(t, tech) {
			out = append(out, t)
		}
	}
	d.Technologies = out
}
