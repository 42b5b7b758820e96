package domain

import "strings"

// Filter is a pure predicate over collection entries.
type Filter[E any] func(E) bool

// normalizeTerm lowercases and trims a search term.
func normalizeTerm(term string) string {
	return strings.ToLower(strings.TrimSpace(term))
}

func containsFold(haystack, needle string) bool {
	return strings.Contains(strings.ToLower(haystack), needle)
}

// MatchBlog matches on title or the plain text of the content.
func MatchBlog(term string) Filter[BlogPost] {
	t := normalizeTerm(term)
	return func(b BlogPost) bool {
		if t == "" {
			return true
		}
		return containsFold(b.Title, t) || containsFold(PlainText(b.Content), t)
	}
}

// MatchProject matches on title, description or any technology.
func MatchProject(term string) Filter[Project] {
	t := normalizeTerm(term)
	return func(p Project) bool {
		if t == "" {
			return true
		}
		if containsFold(p.Title, t) || containsFold(p.Description, t) {
			return true
		}
		for _, tech := range p.Technologies {
			if containsFold(tech, t) {
				return true
			}
		}
		return false
	}
}

// MatchSkill matches on name, type or proficiency, restricted by the type filter.
func MatchSkill(term string, typ SkillTypeFilter) Filter[Skill] {
	t := normalizeTerm(term)
	return func(s Skill) bool {
		if typ != "" && typ != SkillFilterAll && SkillType(typ) != s.Type {
			return false
		}
		if t == "" {
			return true
		}
		return containsFold(s.Name, t) ||
			containsFold(string(s.Type), t) ||
			containsFold(string(s.Proficiency), t)
	}
}

// Apply returns the entries of items accepted by f, in their original order.
// items is never modified.
func (f Filter[E]) Apply(items []E) []E {
	out := make([]E, 0, len(items))
	for _, it := range items {
		if f == nil || f(it) {
			out = append(out, it)
		}
	}
	return out
}
