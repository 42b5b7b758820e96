package domain

import (
	"strings"
	"testing"
)

func validProjectDraft() ProjectDraft {
	return ProjectDraft{
		Title:        "Portfolio Site",
		Description:  "Personal site",
		Technologies: []string{"React", "TypeScript"},
		Category:     CategoryWeb,
		Status:       StatusCompleted,
	}
}

func TestProjectDraftValidate(t *testing.T) {
	tests := []struct {
		name      string
		mutate    func(d *ProjectDraft)
		wantField string
	}{
		{
			name:   "valid with empty links",
			mutate: func(d *ProjectDraft) {},
		},
		{
			name:      "missing title",
			mutate:    func(d *ProjectDraft) { d.Title = "  " },
			wantField: "title",
		},
		{
			name:      "title too long",
			mutate:    func(d *ProjectDraft) { d.Title = strings.Repeat("a", MaxProjectTitleLength+1) },
			wantField: "title",
		},
		{
			name:      "no technologies",
			mutate:    func(d *ProjectDraft) { d.Technologies = nil },
			wantField: "technologies",
		},
		{
			name:      "duplicate technologies",
			mutate:    func(d *ProjectDraft) { d.Technologies = []string{"Go", "go"} },
			wantField: "technologies",
		},
		{
			name:      "invalid live link",
			mutate:    func(d *ProjectDraft) { d.LiveLink = "not a url" },
			wantField: "liveLink",
		},
		{
			name:      "relative github link",
			mutate:    func(d *ProjectDraft) { d.GithubLink = "/user/repo" },
			wantField: "githubLink",
		},
		{
			name:      "unknown category",
			mutate:    func(d *ProjectDraft) { d.Category = "game" },
			wantField: "category",
		},
		{
			name:      "missing status",
			mutate:    func(d *ProjectDraft) { d.Status = "" },
			wantField: "status",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := validProjectDraft()
			tt.mutate(&d)
			errs := d.Validate()

			if tt.wantField == "" {
				if len(errs) != 0 {
					t.Fatalf("Validate() = %v, want no errors", errs)
				}
				return
			}
			if errs.For(tt.wantField) == "" {
				t.Errorf("Validate() = %v, want an error on %q", errs, tt.wantField)
			}
		})
	}
}

func TestSkillDraftValidate(t *testing.T) {
	tests := []struct {
		name      string
		draft     SkillDraft
		wantField string
	}{
		{
			name:  "valid",
			draft: SkillDraft{Name: "Go", Type: SkillTechnical, Proficiency: ProficiencyExpert},
		},
		{
			name:      "empty name",
			draft:     SkillDraft{Type: SkillSoft, Proficiency: ProficiencyBeginner},
			wantField: "name",
		},
		{
			name:      "name over 50 chars",
			draft:     SkillDraft{Name: strings.Repeat("x", 51), Type: SkillSoft, Proficiency: ProficiencyBeginner},
			wantField: "name",
		},
		{
			name:      "name of exactly 50 chars",
			draft:     SkillDraft{Name: strings.Repeat("x", 50), Type: SkillSoft, Proficiency: ProficiencyBeginner},
			wantField: "",
		},
		{
			name:      "bad proficiency",
			draft:     SkillDraft{Name: "Go", Type: SkillTechnical, Proficiency: "guru"},
			wantField: "proficiency",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			errs := tt.draft.Validate()
			if tt.wantField == "" && len(errs) != 0 {
				t.Fatalf("Validate() = %v, want no errors", errs)
			}
			if tt.wantField != "" && errs.For(tt.wantField) == "" {
				t.Errorf("Validate() = %v, want an error on %q", errs, tt.wantField)
			}
		})
	}
}

func TestBlogDraftValidate(t *testing.T) {
	d := BlogDraft{Title: "Hello", Content: "<p>&nbsp;</p>"}
	errs := d.Validate()
	if errs.For("content") == "" {
		t.Errorf("empty editor markup should fail content validation, got %v", errs)
	}

	d.Content = "<p>Body</p>"
	d.Image = "https://cdn.example.com/cover.png"
	if errs := d.Validate(); errs.Err() != nil {
		t.Errorf("Validate() = %v, want nil", errs)
	}
}

func TestParseTechnologies(t *testing.T) {
	tests := []struct {
		input    string
		expected []string
	}{
		{input: "React, TypeScript", expected: []string{"React", "TypeScript"}},
		{input: " React ,, react , Go ", expected: []string{"React", "Go"}},
		{input: "", expected: []string{}},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got := ParseTechnologies(tt.input)
			if !slicesEqual(got, tt.expected) {
				t.Errorf("ParseTechnologies(%q) = %v, want %v", tt.input, got, tt.expected)
			}
		})
	}
}

func TestProjectDraftFromDoesNotAlias(t *testing.T) {
	p := Project{ID: "p1", Technologies: []string{"Go"}}
	d := ProjectDraftFrom(p)
	d.Technologies[0] = "Rust"
	d.AddTechnology("Docker")

	if p.Technologies[0] != "Go" || len(p.Technologies) != 1 {
		t.Errorf("editing the draft changed the entity: %v", p.Technologies)
	}
}

func TestProjectMarshalKeepsEmptyValues(t *testing.T) {
	data, err := Project{ID: "p1", Title: "x"}.MarshalJSON()
	if err != nil {
		t.Fatalf("MarshalJSON() error = %v", err)
	}
	s := string(data)
	if !strings.Contains(s, `"technologies":[]`) {
		t.Errorf("technologies should marshal as [], got %s", s)
	}
	if !strings.Contains(s, `"liveLink":""`) {
		t.Errorf("liveLink should marshal as empty string, got %s", s)
	}
}

func slicesEqual(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
