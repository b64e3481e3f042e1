package pages

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/marquee-cms/marquee/internal/activity"
	"github.com/marquee-cms/marquee/internal/authz"
	"github.com/marquee-cms/marquee/internal/platform/httpx"
	"github.com/marquee-cms/marquee/internal/shared"
)

// Handler manages page admin endpoints.
type Handler struct {
	logger    *slog.Logger
	service   *Service
	activity  *activity.Sink
	authz     authz.Middleware
	validator *validator.Validate
}

// NewHandler builds Handler instance.
func NewHandler(logger *slog.Logger, service *Service, sink *activity.Sink, authz authz.Middleware) *Handler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Handler{logger: logger, service: service, activity: sink, authz: authz, validator: validator.New()}
}

// MountRoutes registers page routes.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Group(func(r chi.Router) {
		r.Use(h.authz.Require(authz.PermPagesView))
		r.Get("/", h.listPages)
		r.Get("/{id}", h.getPage)
	})
	r.Group(func(r chi.Router) {
		r.Use(h.authz.Require(authz.PermPagesCreate))
		r.Post("/", h.createPage)
	})
	r.Group(func(r chi.Router) {
		r.Use(h.authz.Require(authz.PermPagesEdit))
		r.Put("/{id}", h.updatePage)
	})
	r.Group(func(r chi.Router) {
		r.Use(h.authz.Require(authz.PermPagesPublish))
		r.Post("/{id}/publish", h.publish)
	})
	r.Group(func(r chi.Router) {
		r.Use(h.authz.Require(authz.PermPagesDelete))
		r.Delete("/{id}", h.deletePage)
	})
}

type pagePayload struct {
	ID        int64     `json:"id"`
	Slug      string    `json:"slug"`
	Title     string    `json:"title"`
	Body      string    `json:"body,omitempty"`
	Status    string    `json:"status"`
	UpdatedAt time.Time `json:"updated_at"`
	CanEdit   bool      `json:"can_edit"`
	CanDelete bool      `json:"can_delete"`
}

func (h *Handler) listPages(w http.ResponseWriter, r *http.Request) {
	list, err := h.service.ListPages(r.Context())
	if err != nil {
		h.logger.Error("list pages", slog.Any("error", err))
		httpx.Problem(w, http.StatusInternalServerError, "Internal Error", "")
		return
	}
	canEdit := h.authz.Allowed(r.Context(), authz.PermPagesEdit)
	canDelete := h.authz.Allowed(r.Context(), authz.PermPagesDelete)
	payload := make([]pagePayload, 0, len(list))
	for _, p := range list {
		payload = append(payload, pagePayload{
			ID: p.ID, Slug: p.Slug, Title: p.Title, Status: p.Status,
			UpdatedAt: p.UpdatedAt, CanEdit: canEdit, CanDelete: canDelete,
		})
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"pages": payload})
}

func (h *Handler) getPage(w http.ResponseWriter, r *http.Request) {
	id, ok := h.pathID(w, r)
	if !ok {
		return
	}
	p, err := h.service.GetPage(r.Context(), id)
	if err != nil {
		h.respondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, pagePayload{
		ID: p.ID, Slug: p.Slug, Title: p.Title, Body: p.Body,
		Status: p.Status, UpdatedAt: p.UpdatedAt,
	})
}

type pageForm struct {
	Slug  string `json:"slug" validate:"required,max=120"`
	Title string `json:"title" validate:"required,max=200"`
	Body  string `json:"body"`
}

func (h *Handler) createPage(w http.ResponseWriter, r *http.Request) {
	var form pageForm
	if err := httpx.DecodeJSON(r, &form); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "invalid JSON body")
		return
	}
	if err := h.validator.Struct(form); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "slug and title are required")
		return
	}
	actor := authz.PrincipalFromContext(r.Context())
	var actorID int64
	if actor != nil {
		actorID = actor.ID
	}
	id, err := h.service.CreatePage(r.Context(), actorID, PageInput{Slug: form.Slug, Title: form.Title, Body: form.Body})
	if err != nil {
		h.respondError(w, err)
		return
	}
	h.record(r, activity.ActionPageCreated, id, map[string]any{"slug": form.Slug})
	httpx.JSON(w, http.StatusCreated, map[string]any{"id": id})
}

func (h *Handler) updatePage(w http.ResponseWriter, r *http.Request) {
	id, ok := h.pathID(w, r)
	if !ok {
		return
	}
	var form pageForm
	if err := httpx.DecodeJSON(r, &form); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "invalid JSON body")
		return
	}
	if err := h.validator.Struct(form); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "slug and title are required")
		return
	}
	if err := h.service.UpdatePage(r.Context(), id, PageInput{Slug: form.Slug, Title: form.Title, Body: form.Body}); err != nil {
		h.respondError(w, err)
		return
	}
	h.record(r, activity.ActionPageUpdated, id, nil)
	httpx.JSON(w, http.StatusOK, map[string]any{"status": "ok"})
}

func (h *Handler) publish(w http.ResponseWriter, r *http.Request) {
	id, ok := h.pathID(w, r)
	if !ok {
		return
	}
	if err := h.service.Publish(r.Context(), id); err != nil {
		h.respondError(w, err)
		return
	}
	h.record(r, activity.ActionPagePublished, id, nil)
	httpx.JSON(w, http.StatusOK, map[string]any{"status": StatusPublished})
}

func (h *Handler) deletePage(w http.ResponseWriter, r *http.Request) {
	id, ok := h.pathID(w, r)
	if !ok {
		return
	}
	if err := h.service.Delete(r.Context(), id); err != nil {
		h.respondError(w, err)
		return
	}
	h.record(r, activity.ActionPageDeleted, id, nil)
	httpx.JSON(w, http.StatusOK, map[string]any{"status": "ok"})
}

func (h *Handler) pathID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil || id <= 0 {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "invalid page id")
		return 0, false
	}
	return id, true
}

func (h *Handler) respondError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, shared.ErrNotFound):
		httpx.Problem(w, http.StatusNotFound, "Not Found", "page not found")
	case errors.Is(err, ErrInvalidInput):
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", err.Error())
	case errors.Is(err, ErrSlugTaken):
		httpx.Problem(w, http.StatusConflict, "Duplicate", err.Error())
	default:
		h.logger.Error("pages request failed", slog.Any("error", err))
		httpx.Problem(w, http.StatusInternalServerError, "Internal Error", "")
	}
}

func (h *Handler) record(r *http.Request, action string, targetID int64, details map[string]any) {
	actor := authz.PrincipalFromContext(r.Context())
	if actor == nil {
		return
	}
	h.activity.Record(r.Context(), activity.Entry{
		ActorID:    actor.ID,
		Action:     action,
		TargetType: "page",
		TargetID:   targetID,
		Details:    details,
		IP:         r.RemoteAddr,
		UserAgent:  r.UserAgent(),
	})
}
