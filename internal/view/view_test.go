package view

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MrSnakeDoc/folio/internal/apiclient"
	"github.com/MrSnakeDoc/folio/internal/domain"
)

type fakeSource[E domain.Entity] struct {
	items   []E
	listErr error
	gets    int
}

func (f *fakeSource[E]) List(context.Context) ([]E, error) {
	if f.listErr != nil {
		return nil, f.listErr
	}
	return append([]E{}, f.items...), nil
}

func (f *fakeSource[E]) Get(_ context.Context, id string) (*E, error) {
	f.gets++
	for _, it := range f.items {
		if it.Key() == id {
			return &it, nil
		}
	}
	return nil, nil
}

func skillsFixture() []domain.Skill {
	return []domain.Skill{
		{ID: "s1", Name: "Go", Type: domain.SkillTechnical, Proficiency: domain.ProficiencyExpert},
		{ID: "s2", Name: "Mentoring", Type: domain.SkillSoft, Proficiency: domain.ProficiencyAdvanced},
		{ID: "s3", Name: "Golang tooling", Type: domain.SkillTechnical, Proficiency: domain.ProficiencyBeginner},
	}
}

func newSkillView(t *testing.T) (*ListView[domain.Skill], *fakeSource[domain.Skill]) {
	t.Helper()
	src := &fakeSource[domain.Skill]{items: skillsFixture()}
	v := NewListView[domain.Skill](src, func(term string) domain.Filter[domain.Skill] {
		return domain.MatchSkill(term, domain.SkillFilterAll)
	})
	require.NoError(t, v.Load(context.Background()))
	return v, src
}

func ids[E domain.Entity](items []E) []string {
	out := make([]string, 0, len(items))
	for _, it := range items {
		out = append(out, it.Key())
	}
	return out
}

func TestFiltered(t *testing.T) {
	v, _ := newSkillView(t)

	assert.Equal(t, []string{"s1", "s2", "s3"}, ids(v.Filtered()))

	v.SetSearch("go")
	assert.Equal(t, []string{"s1", "s3"}, ids(v.Filtered()))

	v.SetFilter(domain.MatchSkill("", domain.SkillFilterAll))
	assert.Equal(t, []string{"s1", "s3"}, ids(v.Filtered()))

	v.SetSearch("")
	v.SetFilter(domain.MatchSkill("", domain.SkillTypeFilter(domain.SkillSoft)))
	assert.Equal(t, []string{"s2"}, ids(v.Filtered()))

	// Filtering never changes the collection.
	assert.Equal(t, 3, v.Len())
}

func TestSelectLeavesSearchState(t *testing.T) {
	v, _ := newSkillView(t)
	v.SetSearch("mentor")

	assert.Equal(t, []string{"s1", "s3"}, ids(v.Select("go", nil)))
	assert.Equal(t, "mentor", v.Search())
	assert.Equal(t, []string{"s2"}, ids(v.Filtered()))
}

func TestSplicesByID(t *testing.T) {
	v, _ := newSkillView(t)

	v.Append(domain.Skill{ID: "s4", Name: "Rust"})
	assert.Equal(t, []string{"s1", "s2", "s3", "s4"}, ids(v.Items()))

	before := v.Items()
	require.True(t, v.Replace(domain.Skill{ID: "s2", Name: "Coaching"}))
	after := v.Items()
	for i := range after {
		if after[i].ID == "s2" {
			assert.Equal(t, "Coaching", after[i].Name)
			continue
		}
		assert.Equal(t, before[i], after[i])
	}
	assert.Equal(t, "Mentoring", before[1].Name)

	assert.False(t, v.Replace(domain.Skill{ID: "missing"}))
	require.True(t, v.Remove("s1"))
	assert.False(t, v.Remove("s1"))
	assert.Equal(t, []string{"s2", "s3", "s4"}, ids(v.Items()))
}

func TestLoadFailureKeepsCollection(t *testing.T) {
	v, src := newSkillView(t)
	src.listErr = errors.New("down")
	require.Error(t, v.Load(context.Background()))
	assert.Equal(t, 3, v.Len())
	assert.True(t, v.Loaded())
}

func TestEditAlwaysFetches(t *testing.T) {
	v, src := newSkillView(t)

	got, err := v.Edit(context.Background(), "s1")
	require.NoError(t, err)
	assert.Equal(t, "Go", got.Name)
	assert.Equal(t, 1, src.gets)

	_, err = v.Edit(context.Background(), "nope")
	assert.ErrorIs(t, err, apiclient.ErrNotFound)
	assert.Equal(t, 2, src.gets)
}

func TestCreateFormResets(t *testing.T) {
	f := NewCreateForm[domain.Skill](domain.SkillDraft{Type: domain.SkillTechnical})
	f.Edit(func(d *domain.SkillDraft) { d.Name = "Go"; d.Proficiency = domain.ProficiencyExpert })
	assert.Equal(t, "Go", f.Draft().Name)

	f.Reset()
	assert.Equal(t, domain.SkillDraft{Type: domain.SkillTechnical}, f.Draft())
}

func TestSubmitValidatesFirst(t *testing.T) {
	f := NewCreateForm[domain.Skill](domain.SkillDraft{})
	called := false

	err := f.Submit(context.Background(), func(context.Context, domain.SkillDraft) error {
		called = true
		return nil
	})
	var fe domain.FieldErrors
	require.ErrorAs(t, err, &fe)
	assert.NotEmpty(t, fe.For("name"))
	assert.False(t, called)

	f.SetDraft(domain.SkillDraft{Name: "Go", Type: domain.SkillTechnical, Proficiency: domain.ProficiencyExpert})
	require.NoError(t, f.Submit(context.Background(), func(_ context.Context, d domain.SkillDraft) error {
		called = true
		assert.Equal(t, "Go", d.Name)
		return nil
	}))
	assert.True(t, called)
}

func TestUpdateFormSeeding(t *testing.T) {
	f := NewUpdateForm[domain.Project](domain.ProjectDraftFrom)
	p1 := domain.Project{ID: "p1", Title: "Portfolio Site", Technologies: []string{"Go"}}

	f.Seed(p1)
	f.Edit(func(d *domain.ProjectDraft) {
		d.Title = "Portfolio v2"
		d.Technologies[0] = "Rust"
	})
	assert.Equal(t, "Go", p1.Technologies[0])

	// Same id keeps edits.
	f.Seed(p1)
	assert.Equal(t, "Portfolio v2", f.Draft().Title)

	// A different id re-seeds.
	f.Seed(domain.Project{ID: "p2", Title: "CLI"})
	assert.Equal(t, "CLI", f.Draft().Title)
	assert.Equal(t, "p2", f.SeededID())

	// Reset never clears an update form.
	f.Reset()
	assert.Equal(t, "CLI", f.Draft().Title)
}
