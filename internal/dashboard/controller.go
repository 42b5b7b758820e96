package dashboard

import (
	"context"
	"strings"

	"github.com/MrSnakeDoc/folio/internal/domain"
	"github.com/MrSnakeDoc/folio/internal/logger"
	"github.com/MrSnakeDoc/folio/internal/mutation"
	"github.com/MrSnakeDoc/folio/internal/revalidate"
	"github.com/MrSnakeDoc/folio/internal/view"
)

// Client is the full CRUD surface of one resource.
type Client[E domain.Entity, D any] interface {
	view.Source[E]
	Create(ctx context.Context, draft D) (*E, error)
	Update(ctx context.Context, id string, draft D) (*E, error)
	Delete(ctx context.Context, id string) error
}

// Draft is the editable half of an entity.
type Draft[E any] interface {
	domain.Validator
	Apply(E) E
}

// Controller binds a resource client, its list view and the orchestrator.
type Controller[E domain.Entity, D Draft[E]] struct {
	res    domain.Resource
	client Client[E, D]
	list   *view.ListView[E]
	orch   *mutation.Orchestrator
	logger logger.Logger
}

func NewController[E domain.Entity, D Draft[E]](
	res domain.Resource,
	client Client[E, D],
	match view.Matcher[E],
	orch *mutation.Orchestrator,
	log logger.Logger,
) *Controller[E, D] {
	if log == nil {
		log = logger.Nop()
	}
	return &Controller[E, D]{
		res:    res,
		client: client,
		list:   view.NewListView[E](client, match),
		orch:   orch,
		logger: log.With(logger.String("resource", string(res))),
	}
}

func (c *Controller[E, D]) Resource() domain.Resource { return c.res }

// List is the controller's own listing.
func (c *Controller[E, D]) List() *view.ListView[E] { return c.list }

// Ensure loads the listing on first use.
func (c *Controller[E, D]) Ensure(ctx context.Context) error {
	if c.list.Loaded() {
		return nil
	}
	return c.list.Load(ctx)
}

// Edit fetches id fresh from the server.
func (c *Controller[E, D]) Edit(ctx context.Context, id string) (*E, error) {
	return c.list.Edit(ctx, id)
}

// Create submits a create form. The entity enters the listing only
// after the server accepted it. The returned entity is nil when the
// server did not echo it; the listing is reloaded instead.
func (c *Controller[E, D]) Create(ctx context.Context, form *view.FormView[E, D]) (*E, mutation.Result, error) {
	var result mutation.Result
	var created *E
	err := form.Submit(ctx, func(ctx context.Context, d D) error {
		var err error
		result, err = c.orch.Run(ctx, mutation.Action{
			Key:   actionKey(c.res, mutation.KindCreate, ""),
			Kind:  mutation.KindCreate,
			Paths: revalidate.AfterCreate(c.res),
			Call: func(ctx context.Context) error {
				var err error
				created, err = c.client.Create(ctx, d)
				return err
			},
			Apply: func() {
				if created != nil {
					c.list.Append(*created)
					return
				}
				c.reload(ctx)
			},
			Reset:          form.Reset,
			SuccessMessage: successMessage(c.res, "created"),
		}, nil)
		return err
	})
	if err != nil {
		return nil, result, err
	}
	return created, result, nil
}

// Update submits the form for id. Only the entity with id changes in the listing.
func (c *Controller[E, D]) Update(ctx context.Context, id string, form *view.FormView[E, D]) (*E, mutation.Result, error) {
	var result mutation.Result
	var updated *E
	err := form.Submit(ctx, func(ctx context.Context, d D) error {
		var err error
		result, err = c.orch.Run(ctx, mutation.Action{
			Key:   actionKey(c.res, mutation.KindUpdate, id),
			Kind:  mutation.KindUpdate,
			Paths: revalidate.AfterUpdate(c.res, id),
			Call: func(ctx context.Context) error {
				var err error
				updated, err = c.client.Update(ctx, id, d)
				return err
			},
			Apply: func() {
				if updated != nil {
					c.list.Replace(*updated)
					return
				}
				// Server acknowledged without echoing: apply the draft locally.
				if cur, ok := c.list.Find(id); ok {
					applied := d.Apply(cur)
					updated = &applied
					c.list.Replace(applied)
					return
				}
				c.reload(ctx)
			},
			Reset:          form.Reset,
			SuccessMessage: successMessage(c.res, "updated"),
		}, nil)
		return err
	})
	if err != nil {
		return nil, result, err
	}
	return updated, result, nil
}

// Delete removes id once confirm approves it.
func (c *Controller[E, D]) Delete(ctx context.Context, id string, confirm mutation.Confirmer) (mutation.Result, error) {
	return c.orch.Run(ctx, mutation.Action{
		Key:   actionKey(c.res, mutation.KindDelete, id),
		Kind:  mutation.KindDelete,
		Paths: revalidate.AfterDelete(c.res),
		Call: func(ctx context.Context) error {
			return c.client.Delete(ctx, id)
		},
		Apply: func() {
			c.list.Remove(id)
		},
		Prompt:         DeletePrompt(c.res),
		SuccessMessage: successMessage(c.res, "deleted"),
	}, confirm)
}

func (c *Controller[E, D]) reload(ctx context.Context) {
	if err := c.list.Load(ctx); err != nil {
		c.logger.Warn("failed to reload listing", logger.Error(err))
	}
}

// DeletePrompt is the confirmation question for deleting an entity of res.
func DeletePrompt(res domain.Resource) string {
	return "Are you sure you want to delete this " + res.Singular() + "?"
}

func actionKey(res domain.Resource, kind mutation.Kind, target string) string {
	return string(res) + ":" + string(kind) + ":" + target
}

func successMessage(res domain.Resource, verb string) string {
	s := res.Singular()
	return strings.ToUpper(s[:1]) + s[1:] + " " + verb + " successfully"
}
