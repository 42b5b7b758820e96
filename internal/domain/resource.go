package domain

import "fmt"

// Resource names a server-persisted collection managed by the dashboard.
type Resource string

const (
	ResourceBlog    Resource = "blog"
	ResourceProject Resource = "project"
	ResourceSkill   Resource = "skills"
)

// Resources lists every managed resource in display order.
var Resources = []Resource{ResourceBlog, ResourceProject, ResourceSkill}

// ParseResource maps a path segment to a Resource.
// "skill" is accepted as an alias of "skills".
func ParseResource(s string) (Resource, error) {
	switch s {
	case "blog", "blogs":
		return ResourceBlog, nil
	case "project", "projects":
		return ResourceProject, nil
	case "skills", "skill":
		return ResourceSkill, nil
	default:
		return "", fmt.Errorf("unknown resource: %q", s)
	}
}

// Plural returns the word used in listing page paths (all-blogs, all-projects, all-skills).
func (r Resource) Plural() string {
	switch r {
	case ResourceBlog:
		return "blogs"
	case ResourceProject:
		return "projects"
	default:
		return "skills"
	}
}

// Singular returns the human-readable singular noun, used in notifications.
func (r Resource) Singular() string {
	switch r {
	case ResourceBlog:
		return "blog"
	case ResourceProject:
		return "project"
	default:
		return "skill"
	}
}

// Entity is anything stored in a resource collection.
// Key returns the server-assigned identifier.
type Entity interface {
	Key() string
}
