package domain

import (
	"strings"
	"time"

	"golang.org/x/net/html"
)

// BlogPost is a published or draft article written in the rich-text editor.
type BlogPost struct {
	// ─────────────────────────────
	// Identity (server-assigned, immutable)
	// ─────────────────────────────

	// ID is never reused once assigned.
	ID string `json:"_id"`

	// CreatedAt is set by the server on create.
	CreatedAt time.Time `json:"createdAt"`

	// ─────────────────────────────
	// Editable content
	// ─────────────────────────────

	Title string `json:"title"`

	// Content is the HTML produced by the editor.
	Content string `json:"content"`

	// Image is a cover image URL (may be empty).
	Image string `json:"image"`

	IsPublished bool `json:"isPublished"`
}

// Key implements Entity.
func (b BlogPost) Key() string { return b.ID }

// BlogDraft is the editable part of a BlogPost.
type BlogDraft struct {
	Title       string `json:"title"`
	Content     string `json:"content"`
	Image       string `json:"image"`
	IsPublished bool   `json:"isPublished"`
}

// BlogDraftFrom seeds a draft from an existing post.
func BlogDraftFrom(b BlogPost) BlogDraft {
	return BlogDraft{
		Title:       b.Title,
		Content:     b.Content,
		Image:       b.Image,
		IsPublished: b.IsPublished,
	}
}

// Apply returns a copy of b carrying the draft's field values.
func (d BlogDraft) Apply(b BlogPost) BlogPost {
	b.Title = d.Title
	b.Content = d.Content
	b.Image = d.Image
	b.IsPublished = d.IsPublished
	return b
}

// PlainText reduces editor HTML to its visible text so it can be searched
// and excerpted. Entities are decoded; script and style bodies are dropped.
func PlainText(content string) string {
	doc, err := html.Parse(strings.NewReader(content))
	if err != nil {
		return strings.Join(strings.Fields(content), " ")
	}

	var sb strings.Builder
	collectText(doc, &sb)
	return strings.Join(strings.Fields(sb.String()), " ")
}

func collectText(n *html.Node, sb *strings.Builder) {
	switch n.Type {
	case html.TextNode:
		sb.WriteString(n.Data)
		return
	case html.ElementNode:
		switch n.Data {
		case "script", "style", "noscript", "template":
			return
		}
	}

	block := n.Type == html.ElementNode && blockElements[n.Data]
	if block {
		sb.WriteByte(' ')
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		collectText(c, sb)
	}
	if block {
		sb.WriteByte(' ')
	}
}

// blockElements separate words; inline elements do not.
var blockElements = map[string]bool{
	"p": true, "div": true, "br": true, "li": true, "ul": true, "ol": true,
	"h1": true, "h2": true, "h3": true, "h4": true, "h5": true, "h6": true,
	"blockquote": true, "pre": true, "tr": true, "td": true, "th": true,
	"figure": true, "figcaption": true, "hr": true, "section": true, "article": true,
}

// Excerpt returns at most n runes of the post's plain text.
func (b BlogPost) Excerpt(n int) string {
	text := []rune(PlainText(b.Content))
	if len(text) <= n {
		return string(text)
	}
	return strings.TrimSpace(string(text[:n])) + "…"
}
