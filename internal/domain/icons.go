package domain

import (
	"strings"
	"unicode"
	"unicode/utf8"
)

// GlyphKind tells the renderer how to draw a Glyph.
type GlyphKind string

const (
	// GlyphIcon is a named icon from the dashboard icon set.
	GlyphIcon GlyphKind = "icon"
	// GlyphLetter is the initial-letter fallback.
	GlyphLetter GlyphKind = "letter"
)

// Glyph is the resolved visual for a skill.
type Glyph struct {
	Kind  GlyphKind `json:"kind"`
	Value string    `json:"value"`
}

// defaultIcons maps normalized symbolic names to icon-set names.
// Skill types are keys too, so a skill without an icon still gets one.
var defaultIcons = map[string]string{
	"technical":     "Code",
	"soft":          "Users",
	"code":          "Code",
	"atom":          "Atom",
	"react":         "Atom",
	"server":        "Server",
	"database":      "Database",
	"cloud":         "Cloud",
	"terminal":      "Terminal",
	"type":          "Type",
	"typescript":    "Type",
	"smartphone":    "Smartphone",
	"mobile":        "Smartphone",
	"palette":       "Palette",
	"design":        "Palette",
	"git":           "GitBranch",
	"gitbranch":     "GitBranch",
	"container":     "Container",
	"docker":        "Container",
	"brain":         "Brain",
	"lightbulb":     "Lightbulb",
	"users":         "Users",
	"message":       "MessageCircle",
	"messagecircle": "MessageCircle",
	"clock":         "Clock",
	"shield":        "Shield",
	"globe":         "Globe",
	"layout":        "Layout",
	"cpu":           "Cpu",
}

// IconTable resolves symbolic icon names. It is closed once built.
type IconTable struct {
	icons map[string]string
}

// NewIconTable returns the default table extended with extra entries.
// Keys of extra are normalized the same way lookups are.
func NewIconTable(extra map[string]string) *IconTable {
	icons := make(map[string]string, len(defaultIcons)+len(extra))
	for k, v := range defaultIcons {
		icons[k] = v
	}
	for k, v := range extra {
		if nk := normalizeIconName(k); nk != "" && strings.TrimSpace(v) != "" {
			icons[nk] = strings.TrimSpace(v)
		}
	}
	return &IconTable{icons: icons}
}

// Len returns the number of entries.
func (t *IconTable) Len() int { return len(t.icons) }

// Lookup resolves a single symbolic name.
func (t *IconTable) Lookup(name string) (string, bool) {
	v, ok := t.icons[normalizeIconName(name)]
	return v, ok
}

// Resolve picks the glyph for a skill: its icon name, then its type,
// then the upper-cased initial letter of its name ("?" for an empty name).
func (t *IconTable) Resolve(s Skill) Glyph {
	if s.Icon != "" {
		if v, ok := t.Lookup(s.Icon); ok {
			return Glyph{Kind: GlyphIcon, Value: v}
		}
	}
	if v, ok := t.Lookup(string(s.Type)); ok && s.Icon == "" {
		return Glyph{Kind: GlyphIcon, Value: v}
	}
	return Glyph{Kind: GlyphLetter, Value: initial(s.Name)}
}

func initial(name string) string {
	name = strings.TrimSpace(name)
	if name == "" {
		return "?"
	}
	r, _ := utf8.DecodeRuneInString(name)
	return string(unicode.ToUpper(r))
}

// normalizeIconName lowercases and drops separators: "Git-Branch" -> "gitbranch".
func normalizeIconName(s string) string {
	return strings.Map(func(r rune) rune {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			return unicode.ToLower(r)
		}
		return -1
	}, s)
}
