package festivals

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

// Handler manages festival admin endpoints. Guards sit at the top of every
// route group so no state mutation can precede an authorization failure.
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

// MountRoutes registers festival routes.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Group(func(r chi.Router) {
		r.Use(h.authz.Require(authz.PermFestivalsView))
		r.Get("/", h.listFestivals)
		r.Get("/{id}", h.getFestival)
	})
	r.Group(func(r chi.Router) {
		r.Use(h.authz.Require(authz.PermFestivalsCreate))
		r.Post("/", h.createFestival)
	})
	r.Group(func(r chi.Router) {
		r.Use(h.authz.Require(authz.PermFestivalsEdit))
		r.Put("/{id}", h.updateFestival)
	})
	r.Group(func(r chi.Router) {
		r.Use(h.authz.Require(authz.PermFestivalsPublish))
		r.Post("/{id}/publish", h.publish)
		r.Post("/{id}/unpublish", h.unpublish)
	})
	r.Group(func(r chi.Router) {
		r.Use(h.authz.Require(authz.PermFestivalsDelete))
		r.Delete("/{id}", h.deleteFestival)
	})
}

type festivalPayload struct {
	ID          int64     `json:"id"`
	Name        string    `json:"name"`
	Year        int       `json:"year"`
	Location    string    `json:"location,omitempty"`
	Description string    `json:"description,omitempty"`
	Status      string    `json:"status"`
	StartsOn    time.Time `json:"starts_on,omitzero"`
	EndsOn      time.Time `json:"ends_on,omitzero"`
	CanEdit     bool      `json:"can_edit"`
	CanPublish  bool      `json:"can_publish"`
	CanDelete   bool      `json:"can_delete"`
}

func (h *Handler) listFestivals(w http.ResponseWriter, r *http.Request) {
	festivals, err := h.service.ListFestivals(r.Context())
	if err != nil {
		h.logger.Error("list festivals", slog.Any("error", err))
		httpx.Problem(w, http.StatusInternalServerError, "Internal Error", "")
		return
	}
	// Affordances are resolved once per request via the query form of the
	// gate; they decide which actions the UI offers, not whether the backing
	// routes enforce them.
	canEdit := h.authz.Allowed(r.Context(), authz.PermFestivalsEdit)
	canPublish := h.authz.Allowed(r.Context(), authz.PermFestivalsPublish)
	canDelete := h.authz.Allowed(r.Context(), authz.PermFestivalsDelete)
	payload := make([]festivalPayload, 0, len(festivals))
	for _, f := range festivals {
		p := toPayload(&f)
		p.CanEdit = canEdit
		p.CanPublish = canPublish
		p.CanDelete = canDelete
		payload = append(payload, p)
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"festivals": payload})
}

func (h *Handler) getFestival(w http.ResponseWriter, r *http.Request) {
	id, ok := h.pathID(w, r)
	if !ok {
		return
	}
	f, err := h.service.GetFestival(r.Context(), id)
	if err != nil {
		h.respondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, toPayload(f))
}

type festivalForm struct {
	Name        string `json:"name" validate:"required,max=200"`
	Year        int    `json:"year" validate:"required"`
	Location    string `json:"location" validate:"max=200"`
	Description string `json:"description"`
	StartsOn    string `json:"starts_on"`
	EndsOn      string `json:"ends_on"`
}

func (h *Handler) createFestival(w http.ResponseWriter, r *http.Request) {
	input, ok := h.decodeForm(w, r)
	if !ok {
		return
	}
	actor := authz.PrincipalFromContext(r.Context())
	var actorID int64
	if actor != nil {
		actorID = actor.ID
	}
	id, err := h.service.CreateFestival(r.Context(), actorID, input)
	if err != nil {
		h.respondError(w, err)
		return
	}
	h.record(r, activity.ActionFestivalCreated, id, map[string]any{"name": input.Name, "year": input.Year})
	httpx.JSON(w, http.StatusCreated, map[string]any{"id": id})
}

func (h *Handler) updateFestival(w http.ResponseWriter, r *http.Request) {
	id, ok := h.pathID(w, r)
	if !ok {
		return
	}
	input, ok := h.decodeForm(w, r)
	if !ok {
		return
	}
	if err := h.service.UpdateFestival(r.Context(), id, input); err != nil {
		h.respondError(w, err)
		return
	}
	h.record(r, activity.ActionFestivalUpdated, id, nil)
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
	h.record(r, activity.ActionFestivalPublished, id, nil)
	httpx.JSON(w, http.StatusOK, map[string]any{"status": StatusPublished})
}

func (h *Handler) unpublish(w http.ResponseWriter, r *http.Request) {
	id, ok := h.pathID(w, r)
	if !ok {
		return
	}
	if err := h.service.Unpublish(r.Context(), id); err != nil {
		h.respondError(w, err)
		return
	}
	h.record(r, activity.ActionFestivalUpdated, id, map[string]any{"status": StatusDraft})
	httpx.JSON(w, http.StatusOK, map[string]any{"status": StatusDraft})
}

func (h *Handler) deleteFestival(w http.ResponseWriter, r *http.Request) {
	id, ok := h.pathID(w, r)
	if !ok {
		return
	}
	if err := h.service.Delete(r.Context(), id); err != nil {
		h.respondError(w, err)
		return
	}
	h.record(r, activity.ActionFestivalDeleted, id, nil)
	httpx.JSON(w, http.StatusOK, map[string]any{"status": "ok"})
}

func (h *Handler) decodeForm(w http.ResponseWriter, r *http.Request) (FestivalInput, bool) {
	var form festivalForm
	if err := httpx.DecodeJSON(r, &form); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "invalid JSON body")
		return FestivalInput{}, false
	}
	if err := h.validator.Struct(form); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "name and year are required")
		return FestivalInput{}, false
	}
	input := FestivalInput{
		Name:        form.Name,
		Year:        form.Year,
		Location:    form.Location,
		Description: form.Description,
	}
	if form.StartsOn != "" {
		t, err := time.Parse("2006-01-02", form.StartsOn)
		if err != nil {
			httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "starts_on must be YYYY-MM-DD")
			return FestivalInput{}, false
		}
		input.StartsOn = t
	}
	if form.EndsOn != "" {
		t, err := time.Parse("2006-01-02", form.EndsOn)
		if err != nil {
			httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "ends_on must be YYYY-MM-DD")
			return FestivalInput{}, false
		}
		input.EndsOn = t
	}
	return input, true
}

func (h *Handler) pathID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil || id <= 0 {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "invalid festival id")
		return 0, false
	}
	return id, true
}

func (h *Handler) respondError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, shared.ErrNotFound):
		httpx.Problem(w, http.StatusNotFound, "Not Found", "festival not found")
	case errors.Is(err, ErrInvalidInput):
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", err.Error())
	default:
		h.logger.Error("festivals request failed", slog.Any("error", err))
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
		TargetType: "festival",
		TargetID:   targetID,
		Details:    details,
		IP:         r.RemoteAddr,
		UserAgent:  r.UserAgent(),
	})
}

func toPayload(f *Festival) festivalPayload {
	return festivalPayload{
		ID:          f.ID,
		Name:        f.Name,
		Year:        f.Year,
		Location:    f.Location,
		Description: f.Description,
		Status:      f.Status,
		StartsOn:    f.StartsOn,
		EndsOn:      f.EndsOn,
	}
}
