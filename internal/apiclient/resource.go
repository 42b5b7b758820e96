package apiclient

import (
	"context"
	"errors"
	"net/http"
	"net/url"

	"github.com/MrSnakeDoc/folio/internal/domain"
)

// Resource is the CRUD client of one REST collection.
//
//	create  POST   /{name}/create
//	list    GET    /{name}
//	get     GET    /{name}/{id}
//	update  PATCH  /{name}/{id}
//	delete  DELETE /{name}/{id}
type Resource[E domain.Entity, D any] struct {
	c   *Client
	res domain.Resource
}

// NewResource binds c to a collection.
func NewResource[E domain.Entity, D any](c *Client, res domain.Resource) *Resource[E, D] {
	return &Resource[E, D]{c: c, res: res}
}

// Blogs, Projects and Skills are the three collections of the portfolio API.
func Blogs(c *Client) *Resource[domain.BlogPost, domain.BlogDraft] {
	return NewResource[domain.BlogPost, domain.BlogDraft](c, domain.ResourceBlog)
}

func Projects(c *Client) *Resource[domain.Project, domain.ProjectDraft] {
	return NewResource[domain.Project, domain.ProjectDraft](c, domain.ResourceProject)
}

func Skills(c *Client) *Resource[domain.Skill, domain.SkillDraft] {
	return NewResource[domain.Skill, domain.SkillDraft](c, domain.ResourceSkill)
}

// Name returns the bound collection.
func (r *Resource[E, D]) Name() domain.Resource { return r.res }

func (r *Resource[E, D]) itemPath(id string) string {
	return "/" + string(r.res) + "/" + url.PathEscape(id)
}

func (r *Resource[E, D]) op(verb string) string {
	return verb + " " + r.res.Singular()
}

// Create posts a new draft. The returned entity is nil when the server
// acknowledged the write without echoing it back.
func (r *Resource[E, D]) Create(ctx context.Context, draft D) (*E, error) {
	op := r.op("create")
	req, err := jsonRequest(op, http.MethodPost, "/"+string(r.res)+"/create", draft)
	if err != nil {
		return nil, err
	}
	env, status, err := r.c.do(ctx, req)
	if err != nil {
		return nil, err
	}
	return decodeEntity[E](op, status, env)
}

// List fetches the whole collection. A null data field is an empty collection.
func (r *Resource[E, D]) List(ctx context.Context) ([]E, error) {
	op := "fetch " + r.res.Plural()
	env, status, err := r.c.do(ctx, request{op: op, method: http.MethodGet, path: "/" + string(r.res)})
	if err != nil {
		return nil, err
	}
	items := []E{}
	if _, err := decodeData(op, status, env, &items); err != nil {
		return nil, err
	}
	if items == nil {
		items = []E{}
	}
	return items, nil
}

// Get fetches one entity. (nil, nil) means the entity is absent: the
// server answered 404, or the envelope carried no data, including a 2xx
// success=false answer without data.
func (r *Resource[E, D]) Get(ctx context.Context, id string) (*E, error) {
	op := r.op("fetch")
	env, status, err := r.c.do(ctx, request{op: op, method: http.MethodGet, path: r.itemPath(id)})
	if err != nil {
		if isStatus(err, http.StatusNotFound) || rejectedWithoutData(err, env) {
			return nil, nil
		}
		return nil, err
	}
	return decodeEntity[E](op, status, env)
}

// Update sends the full draft for id. The returned entity is nil when
// the server did not echo the updated document.
func (r *Resource[E, D]) Update(ctx context.Context, id string, draft D) (*E, error) {
	op := r.op("update")
	req, err := jsonRequest(op, http.MethodPatch, r.itemPath(id), draft)
	if err != nil {
		return nil, err
	}
	env, status, err := r.c.do(ctx, req)
	if err != nil {
		return nil, err
	}
	return decodeEntity[E](op, status, env)
}

// Delete removes id.
func (r *Resource[E, D]) Delete(ctx context.Context, id string) error {
	_, _, err := r.c.do(ctx, request{op: r.op("delete"), method: http.MethodDelete, path: r.itemPath(id)})
	return err
}

// rejectedWithoutData reports a 2xx envelope with success=false and null data.
func rejectedWithoutData(err error, env rawEnvelope) bool {
	var te *TransportError
	if !errors.As(err, &te) || te.Err != nil {
		return false
	}
	return te.Status >= 200 && te.Status <= 299 && env.failed() && !env.hasData()
}

func decodeEntity[E any](op string, status int, env rawEnvelope) (*E, error) {
	var out E
	ok, err := decodeData(op, status, env, &out)
	if err != nil || !ok {
		return nil, err
	}
	return &out, nil
}
