package dashboard

import (
	"context"
	"fmt"

	"github.com/MrSnakeDoc/folio/internal/apiclient"
	"github.com/MrSnakeDoc/folio/internal/domain"
	"github.com/MrSnakeDoc/folio/internal/logger"
	"github.com/MrSnakeDoc/folio/internal/mutation"
)

type (
	BlogController    = Controller[domain.BlogPost, domain.BlogDraft]
	ProjectController = Controller[domain.Project, domain.ProjectDraft]
	SkillController   = Controller[domain.Skill, domain.SkillDraft]
)

// Set is every controller of one dashboard session.
type Set struct {
	Blogs    *BlogController
	Projects *ProjectController
	Skills   *SkillController
	Resume   *Resume
}

// NewSet wires controllers for c, which should already carry the session token.
func NewSet(c *apiclient.Client, orch *mutation.Orchestrator, log logger.Logger) *Set {
	return &Set{
		Blogs: NewController[domain.BlogPost, domain.BlogDraft](
			domain.ResourceBlog, apiclient.Blogs(c), domain.MatchBlog, orch, log),
		Projects: NewController[domain.Project, domain.ProjectDraft](
			domain.ResourceProject, apiclient.Projects(c), domain.MatchProject, orch, log),
		Skills: NewController[domain.Skill, domain.SkillDraft](
			domain.ResourceSkill, apiclient.Skills(c),
			func(term string) domain.Filter[domain.Skill] {
				return domain.MatchSkill(term, domain.SkillFilterAll)
			}, orch, log),
		Resume: NewResume(apiclient.NewResumes(c), orch),
	}
}

// Preload loads every listing, stopping at the first failure.
func (s *Set) Preload(ctx context.Context) error {
	for _, ensure := range []func(context.Context) error{s.Blogs.Ensure, s.Projects.Ensure, s.Skills.Ensure} {
		if err := ensure(ctx); err != nil {
			return fmt.Errorf("failed to preload dashboard: %w", err)
		}
	}
	return nil
}
