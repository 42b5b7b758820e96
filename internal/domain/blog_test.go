package domain

import "testing"

func TestPlainText(t *testing.T) {
	tests := []struct {
		name    string
		content string
		want    string
	}{
		{name: "plain", content: "Hello world", want: "Hello world"},
		{name: "inline markup joins", content: "<p>Hel<b>lo</b> there</p>", want: "Hello there"},
		{name: "blocks separate words", content: "<p>one</p><p>two</p><ul><li>three</li></ul>", want: "one two three"},
		{name: "named and numeric entities", content: "<p>caf&eacute; &#8217;s &amp; co</p>", want: "café ’s & co"},
		{name: "style and script dropped", content: "<style>p{color:red}</style><p>Hello</p><script>alert(1)</script>", want: "Hello"},
		{name: "quoted angle bracket in attribute", content: `<p title="a>b">Hi</p>`, want: "Hi"},
		{name: "nbsp only is empty", content: "<p>&nbsp;</p>", want: ""},
		{name: "empty", content: "", want: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := PlainText(tt.content); got != tt.want {
				t.Errorf("PlainText(%q) = %q, want %q", tt.content, got, tt.want)
			}
		})
	}
}

func TestMatchBlogDecodesEntities(t *testing.T) {
	posts := []BlogPost{{ID: "b1", Title: "Menu", Content: "<p>Le caf&eacute; du coin</p>"}}
	if got := MatchBlog("CAFÉ").Apply(posts); len(got) != 1 {
		t.Errorf("MatchBlog(CAFÉ) = %v, want b1", got)
	}
}

func TestExcerpt(t *testing.T) {
	b := BlogPost{Content: "<p>alpha beta</p><p>gamma</p>"}
	if got := b.Excerpt(100); got != "alpha beta gamma" {
		t.Errorf("Excerpt(100) = %q", got)
	}
	if got := b.Excerpt(5); got != "alpha…" {
		t.Errorf("Excerpt(5) = %q", got)
	}
}
