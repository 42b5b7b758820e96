package revalidate

import (
	"net/url"
	"sort"
	"strings"

	"github.com/MrSnakeDoc/folio/internal/domain"
)

const (
	HomePath         = "/"
	ResumeUploadPath = "/dashboard/resume/upload"
)

// ListingPath is the "all items" page of a resource: /dashboard/blog/all-blogs.
func ListingPath(res domain.Resource) string {
	return "/dashboard/" + string(res) + "/all-" + res.Plural()
}

// FormPath is the creation form of a resource: /dashboard/blog.
func FormPath(res domain.Resource) string {
	return "/dashboard/" + string(res)
}

// DetailPath is the edit page of one entity: /dashboard/blog/{id}.
func DetailPath(res domain.Resource, id string) string {
	return "/dashboard/" + string(res) + "/" + url.PathEscape(id)
}

// AfterCreate returns the pages made stale by creating an entity.
func AfterCreate(res domain.Resource) []string {
	return Normalize([]string{ListingPath(res), FormPath(res), HomePath})
}

// AfterUpdate returns the pages made stale by updating id.
func AfterUpdate(res domain.Resource, id string) []string {
	return Normalize([]string{ListingPath(res), DetailPath(res, id), HomePath})
}

// AfterDelete returns the pages made stale by deleting an entity.
func AfterDelete(res domain.Resource) []string {
	return Normalize([]string{ListingPath(res), HomePath})
}

// AfterResumeUpload returns the pages made stale by a new resume.
func AfterResumeUpload() []string {
	return []string{ResumeUploadPath}
}

// Normalize trims, drops blanks, forces a leading slash,
// removes duplicates and sorts.
func Normalize(paths []string) []string {
	seen := make(map[string]bool, len(paths))
	out := make([]string, 0, len(paths))
	for _, p := range paths {
		p = strings.TrimSpace(p)
		if p == "" {
			continue
		}
		if !strings.HasPrefix(p, "/") {
			p = "/" + p
		}
		if seen[p] {
			continue
		}
		seen[p] = true
		out = append(out, p)
	}
	sort.Strings(out)
	return out
}
