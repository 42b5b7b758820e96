package handlers

import (
	"bytes"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/MrSnakeDoc/folio/internal/apiclient"
	"github.com/MrSnakeDoc/folio/internal/dashboard"
	"github.com/MrSnakeDoc/folio/internal/domain"
	"github.com/MrSnakeDoc/folio/internal/httpserver/deps"
	"github.com/MrSnakeDoc/folio/internal/httpserver/mw"
	"github.com/MrSnakeDoc/folio/internal/logger"
	"github.com/MrSnakeDoc/folio/internal/mutation"
	"github.com/MrSnakeDoc/folio/internal/revalidate"
	redisstore "github.com/MrSnakeDoc/folio/internal/store/redis"
	"github.com/MrSnakeDoc/folio/internal/utils"
	"github.com/MrSnakeDoc/folio/internal/view"
)

// CacheHeader reports whether a listing came from the page cache.
const CacheHeader = "X-Folio-Cache"

const excerptLength = 160

// ResourceHandlers is the HTTP surface of one dashboard resource.
type ResourceHandlers struct {
	Resource domain.Resource
	Listing  http.HandlerFunc
	Edit     http.HandlerFunc
	Create   http.HandlerFunc
	Update   http.HandlerFunc
	Delete   http.HandlerFunc
}

type listingResponse struct {
	Items  any    `json:"items"`
	Total  int    `json:"total"`
	Count  int    `json:"count"`
	Search string `json:"search,omitempty"`
	Type   string `json:"type,omitempty"`
}

type blogRow struct {
	domain.BlogPost
	Excerpt string `json:"excerpt"`
}

type skillRow struct {
	domain.Skill
	Glyph domain.Glyph `json:"glyph"`
}

// kit adapts one controller of the session's dashboard to HTTP.
type kit[E domain.Entity, D dashboard.Draft[E]] struct {
	res        domain.Resource
	controller func(*dashboard.Set) *dashboard.Controller[E, D]
	empty      D
	from       func(E) D
	// filter reads extra query filters; ok is false when none apply.
	filter    func(r *http.Request) (f domain.Filter[E], label string, ok bool)
	row       func(d deps.Deps, e E) any
	normalize func(d *D)
}

// Dashboard returns the handlers of every managed resource.
func Dashboard(d deps.Deps) []ResourceHandlers {
	return []ResourceHandlers{
		kit[domain.BlogPost, domain.BlogDraft]{
			res:        domain.ResourceBlog,
			controller: func(s *dashboard.Set) *dashboard.BlogController { return s.Blogs },
			from:       domain.BlogDraftFrom,
			row: func(_ deps.Deps, b domain.BlogPost) any {
				return blogRow{BlogPost: b, Excerpt: b.Excerpt(excerptLength)}
			},
		}.handlers(d),
		kit[domain.Project, domain.ProjectDraft]{
			res:        domain.ResourceProject,
			controller: func(s *dashboard.Set) *dashboard.ProjectController { return s.Projects },
			from:       domain.ProjectDraftFrom,
			row:        func(_ deps.Deps, p domain.Project) any { return p },
			normalize: func(p *domain.ProjectDraft) {
				p.Technologies = domain.ParseTechnologies(strings.Join(p.Technologies, ","))
			},
		}.handlers(d),
		kit[domain.Skill, domain.SkillDraft]{
			res:        domain.ResourceSkill,
			controller: func(s *dashboard.Set) *dashboard.SkillController { return s.Skills },
			from:       domain.SkillDraftFrom,
			filter: func(r *http.Request) (domain.Filter[domain.Skill], string, bool) {
				raw := r.URL.Query().Get("type")
				typ := domain.ParseSkillTypeFilter(raw)
				if typ == domain.SkillFilterAll {
					return nil, "", false
				}
				return domain.MatchSkill("", typ), string(typ), true
			},
			row: func(d deps.Deps, s domain.Skill) any {
				return skillRow{Skill: s, Glyph: iconTable(d).Resolve(s)}
			},
		}.handlers(d),
	}
}

func iconTable(d deps.Deps) *domain.IconTable {
	if d.Icons != nil {
		if t := d.Icons(); t != nil {
			return t
		}
	}
	return domain.NewIconTable(nil)
}

func (k kit[E, D]) handlers(d deps.Deps) ResourceHandlers {
	return ResourceHandlers{
		Resource: k.res,
		Listing:  k.listing(d),
		Edit:     k.edit(d),
		Create:   k.create(d),
		Update:   k.update(d),
		Delete:   k.delete(d),
	}
}

func (k kit[E, D]) rows(d deps.Deps, items []E) []any {
	out := make([]any, 0, len(items))
	for _, it := range items {
		out = append(out, k.row(d, it))
	}
	return out
}

func (k kit[E, D]) listing(d deps.Deps) http.HandlerFunc {
	path := revalidate.ListingPath(k.res)

	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		ctrl := k.controller(mw.Workspace(ctx).Dashboard)
		term := strings.TrimSpace(r.URL.Query().Get("q"))

		var (
			extra    domain.Filter[E]
			label    string
			filtered bool
		)
		if k.filter != nil {
			extra, label, filtered = k.filter(r)
		}

		// Filtered views derive from the session's own listing.
		if term != "" || filtered {
			if err := ctrl.Ensure(ctx); err != nil {
				writeError(w, d.Logger, err, nil)
				return
			}
			items := ctrl.List().Select(term, extra)
			writeJSON(w, http.StatusOK, listingResponse{
				Items:  k.rows(d, items),
				Total:  ctrl.List().Len(),
				Count:  len(items),
				Search: term,
				Type:   label,
			})
			return
		}

		if d.Pages != nil {
			page, err := d.Pages.GetCachedPage(ctx, path)
			if err != nil {
				d.Logger.Warn("page cache read failed", logger.String("path", path), logger.Error(err))
			}
			if page != nil {
				w.Header().Set("Content-Type", page.ContentType)
				w.Header().Set("Cache-Control", "no-store")
				w.Header().Set(CacheHeader, "HIT")
				w.WriteHeader(http.StatusOK)
				_, _ = w.Write(page.Body)
				return
			}
		}

		// Read before loading: a revalidation that lands while the page is
		// being built bumps it and the stale page is not stored.
		var gen int64
		cacheable := d.Pages != nil
		if cacheable {
			var err error
			if gen, err = d.Pages.Generation(ctx, path); err != nil {
				d.Logger.Warn("page generation read failed", logger.String("path", path), logger.Error(err))
				cacheable = false
			}
		}

		// Every unfiltered visit re-synchronises with the server.
		if err := ctrl.List().Load(ctx); err != nil {
			writeError(w, d.Logger, err, nil)
			return
		}
		items := ctrl.List().Items()

		var buf bytes.Buffer
		if err := json.NewEncoder(&buf).Encode(listingResponse{
			Items: k.rows(d, items),
			Total: len(items),
			Count: len(items),
		}); err != nil {
			writeError(w, d.Logger, err, nil)
			return
		}

		if cacheable {
			stored, err := d.Pages.CachePageIfCurrent(ctx, redisstore.Page{
				Path:        path,
				ContentType: "application/json",
				Body:        buf.Bytes(),
				CachedAt:    d.Now(),
			}, gen)
			switch {
			case err != nil:
				d.Logger.Warn("page cache write failed", logger.String("path", path), logger.Error(err))
			case !stored:
				d.Logger.Debug("page invalidated while building, not cached", logger.String("path", path))
			}
		}

		w.Header().Set("Content-Type", "application/json")
		w.Header().Set("Cache-Control", "no-store")
		w.Header().Set(CacheHeader, "MISS")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write(buf.Bytes())
	}
}

func (k kit[E, D]) notFound(w http.ResponseWriter) {
	writeMessage(w, http.StatusNotFound, k.res.Singular()+" not found")
}

func (k kit[E, D]) edit(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		ctrl := k.controller(mw.Workspace(ctx).Dashboard)

		e, err := ctrl.Edit(ctx, chi.URLParam(r, "id"))
		if errors.Is(err, apiclient.ErrNotFound) {
			k.notFound(w)
			return
		}
		if err != nil {
			writeError(w, d.Logger, err, nil)
			return
		}
		writeJSON(w, http.StatusOK, k.row(d, *e))
	}
}

func (k kit[E, D]) create(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		ctrl := k.controller(mw.Workspace(ctx).Dashboard)

		draft := k.empty
		if err := decodeBody(w, r, &draft); err != nil {
			writeMessage(w, http.StatusBadRequest, "invalid request body")
			return
		}
		if k.normalize != nil {
			k.normalize(&draft)
		}

		form := view.NewCreateForm[E](k.empty)
		form.SetDraft(draft)

		created, res, err := ctrl.Create(ctx, form)
		if err != nil {
			writeError(w, d.Logger, err, res.Notice)
			return
		}
		out := mutationResponse{Notice: res.Notice}
		if created != nil {
			out.Data = k.row(d, *created)
		}
		writeJSON(w, http.StatusCreated, out)
	}
}

// update seeds the form from the current entity and overlays the request
// body, so fields the client leaves out keep their value.
func (k kit[E, D]) update(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		ctrl := k.controller(mw.Workspace(ctx).Dashboard)
		id := chi.URLParam(r, "id")

		// The listing may predate another session's edit: seed from the server.
		cur, err := ctrl.Edit(ctx, id)
		if errors.Is(err, apiclient.ErrNotFound) {
			k.notFound(w)
			return
		}
		if err != nil {
			writeError(w, d.Logger, err, nil)
			return
		}

		form := view.NewUpdateForm[E](k.from)
		form.Seed(*cur)

		var decodeErr error
		form.Edit(func(draft *D) {
			decodeErr = decodeBody(w, r, draft)
			if decodeErr == nil && k.normalize != nil {
				k.normalize(draft)
			}
		})
		if decodeErr != nil {
			writeMessage(w, http.StatusBadRequest, "invalid request body")
			return
		}

		updated, res, err := ctrl.Update(ctx, id, form)
		if err != nil {
			writeError(w, d.Logger, err, res.Notice)
			return
		}
		out := mutationResponse{Notice: res.Notice}
		if updated != nil {
			out.Data = k.row(d, *updated)
		}
		writeJSON(w, http.StatusOK, out)
	}
}

func (k kit[E, D]) delete(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		ctrl := k.controller(mw.Workspace(ctx).Dashboard)
		confirmed, _ := strconv.ParseBool(r.URL.Query().Get("confirm"))

		res, err := ctrl.Delete(ctx, chi.URLParam(r, "id"), mutation.Always(confirmed))
		if errors.Is(err, mutation.ErrDeclined) {
			writeJSON(w, http.StatusConflict, confirmResponse{
				Message: dashboard.DeletePrompt(k.res),
				Confirm: "confirm=true",
			})
			return
		}
		if err != nil {
			writeError(w, d.Logger, err, res.Notice)
			return
		}
		writeJSON(w, http.StatusOK, mutationResponse{Notice: res.Notice})
	}
}

// maxResumeBytes bounds the multipart body of a resume upload.
const maxResumeBytes = 10 << 20

type resumeResponse struct {
	URL      string           `json:"url"`
	Filename string           `json:"filename,omitempty"`
	Notice   *mutation.Notice `json:"notice,omitempty"`
}

// ResumeUpload forwards the "file" part of a multipart form to the API.
func ResumeUpload(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		ws := mw.Workspace(ctx)

		r.Body = http.MaxBytesReader(w, r.Body, maxResumeBytes)
		file, header, err := r.FormFile("file")
		if err != nil {
			writeMessage(w, http.StatusBadRequest, "file is required")
			return
		}
		defer utils.CloseLogged(file, d.Logger, "resume upload")

		start := time.Now()
		up, res, err := ws.Dashboard.Resume.Upload(ctx, header.Filename, file)
		if err != nil {
			writeError(w, d.Logger, err, res.Notice)
			return
		}
		d.Logger.Info("resume uploaded",
			logger.String("filename", header.Filename),
			logger.Duration("duration", time.Since(start)))

		out := resumeResponse{Notice: res.Notice}
		if up != nil {
			out.URL, out.Filename = up.URL, up.Filename
		}
		writeJSON(w, http.StatusOK, out)
	}
}
