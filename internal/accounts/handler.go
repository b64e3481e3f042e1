package accounts

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

// Handler manages the staff account admin endpoints. Every route is guarded
// by the matching users.* permission before any mutation runs.
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
	return &Handler{
		logger:    logger,
		service:   service,
		activity:  sink,
		authz:     authz,
		validator: validator.New(),
	}
}

// MountRoutes registers account routes.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Group(func(r chi.Router) {
		r.Use(h.authz.Require(authz.PermUsersView))
		r.Get("/", h.listAccounts)
		r.Get("/{id}", h.getAccount)
	})
	r.Group(func(r chi.Router) {
		r.Use(h.authz.Require(authz.PermUsersCreate))
		r.Post("/", h.createAccount)
	})
	r.Group(func(r chi.Router) {
		r.Use(h.authz.Require(authz.PermUsersManageRoles))
		r.Put("/{id}/role", h.setRole)
		r.Put("/{id}/overrides", h.setOverrides)
	})
	r.Group(func(r chi.Router) {
		r.Use(h.authz.Require(authz.PermUsersEdit))
		r.Put("/{id}/status", h.setStatus)
		r.Post("/{id}/unlock", h.unlock)
	})
	r.Group(func(r chi.Router) {
		r.Use(h.authz.Require(authz.PermUsersDelete))
		r.Delete("/{id}", h.deleteAccount)
	})
}

type accountPayload struct {
	ID            int64     `json:"id"`
	Username      string    `json:"username"`
	Email         string    `json:"email"`
	FullName      string    `json:"full_name"`
	Role          string    `json:"role"`
	RoleLabel     string    `json:"role_label"`
	Overrides     []string  `json:"overrides"`
	Department    string    `json:"department,omitempty"`
	Phone         string    `json:"phone,omitempty"`
	IsActive      bool      `json:"is_active"`
	Locked        bool      `json:"locked"`
	LastLogin     time.Time `json:"last_login,omitzero"`
	CreatedAt     time.Time `json:"created_at"`
	CanEdit       bool      `json:"can_edit"`
	CanDelete     bool      `json:"can_delete"`
	CanManageRole bool      `json:"can_manage_role"`
}

func (h *Handler) listAccounts(w http.ResponseWriter, r *http.Request) {
	accounts, err := h.service.ListAccounts(r.Context())
	if err != nil {
		h.logger.Error("list accounts", slog.Any("error", err))
		httpx.Problem(w, http.StatusInternalServerError, "Internal Error", "")
		return
	}
	now := time.Now()
	actor := authz.PrincipalFromContext(r.Context())
	canEdit := h.authz.Allowed(r.Context(), authz.PermUsersEdit)
	canDelete := h.authz.Allowed(r.Context(), authz.PermUsersDelete)
	canManage := h.authz.Allowed(r.Context(), authz.PermUsersManageRoles)
	payload := make([]accountPayload, 0, len(accounts))
	for _, acc := range accounts {
		p := toPayload(&acc, now)
		self := actor != nil && actor.ID == acc.ID
		p.CanEdit = canEdit && !self
		p.CanDelete = canDelete && !self
		p.CanManageRole = canManage
		payload = append(payload, p)
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"accounts": payload})
}

func (h *Handler) getAccount(w http.ResponseWriter, r *http.Request) {
	id, ok := h.pathID(w, r)
	if !ok {
		return
	}
	acc, err := h.service.GetAccount(r.Context(), id)
	if err != nil {
		h.respondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, toPayload(acc, time.Now()))
}

type createAccountForm struct {
	Username   string `json:"username" validate:"required,min=3,max=50"`
	Email      string `json:"email" validate:"required,email"`
	FullName   string `json:"full_name" validate:"required,max=100"`
	Password   string `json:"password" validate:"required,min=10"`
	Role       string `json:"role" validate:"required"`
	Department string `json:"department" validate:"max=100"`
	Phone      string `json:"phone" validate:"max=20"`
}

func (h *Handler) createAccount(w http.ResponseWriter, r *http.Request) {
	var form createAccountForm
	if err := httpx.DecodeJSON(r, &form); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "invalid JSON body")
		return
	}
	if err := h.validator.Struct(form); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", validationDetail(err))
		return
	}
	actor := authz.PrincipalFromContext(r.Context())
	id, err := h.service.CreateAccount(r.Context(), actor, NewAccountInput{
		Username:   form.Username,
		Email:      form.Email,
		FullName:   form.FullName,
		Password:   form.Password,
		Role:       authz.Role(form.Role),
		Department: form.Department,
		Phone:      form.Phone,
	})
	if err != nil {
		h.respondError(w, err)
		return
	}
	h.record(r, activity.ActionUserCreated, id, map[string]any{"username": form.Username, "role": form.Role})
	httpx.JSON(w, http.StatusCreated, map[string]any{"id": id})
}

type setRoleForm struct {
	Role string `json:"role" validate:"required"`
}

func (h *Handler) setRole(w http.ResponseWriter, r *http.Request) {
	id, ok := h.pathID(w, r)
	if !ok {
		return
	}
	var form setRoleForm
	if err := httpx.DecodeJSON(r, &form); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "invalid JSON body")
		return
	}
	if err := h.validator.Struct(form); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", validationDetail(err))
		return
	}
	actor := authz.PrincipalFromContext(r.Context())
	if err := h.service.SetRole(r.Context(), actor, id, authz.Role(form.Role)); err != nil {
		h.respondError(w, err)
		return
	}
	h.record(r, activity.ActionUserRoleChanged, id, map[string]any{"role": form.Role})
	httpx.JSON(w, http.StatusOK, map[string]any{"status": "ok"})
}

type setOverridesForm struct {
	Permissions []string `json:"permissions"`
}

func (h *Handler) setOverrides(w http.ResponseWriter, r *http.Request) {
	id, ok := h.pathID(w, r)
	if !ok {
		return
	}
	var form setOverridesForm
	if err := httpx.DecodeJSON(r, &form); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "invalid JSON body")
		return
	}
	actor := authz.PrincipalFromContext(r.Context())
	if err := h.service.SetOverrides(r.Context(), actor, id, form.Permissions); err != nil {
		h.respondError(w, err)
		return
	}
	h.record(r, activity.ActionUserOverridesSet, id, map[string]any{"permissions": form.Permissions})
	httpx.JSON(w, http.StatusOK, map[string]any{"status": "ok"})
}

type setStatusForm struct {
	Active *bool `json:"active" validate:"required"`
}

func (h *Handler) setStatus(w http.ResponseWriter, r *http.Request) {
	id, ok := h.pathID(w, r)
	if !ok {
		return
	}
	var form setStatusForm
	if err := httpx.DecodeJSON(r, &form); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "invalid JSON body")
		return
	}
	if err := h.validator.Struct(form); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", validationDetail(err))
		return
	}
	actor := authz.PrincipalFromContext(r.Context())
	if err := h.service.SetActive(r.Context(), actor, id, *form.Active); err != nil {
		h.respondError(w, err)
		return
	}
	h.record(r, activity.ActionUserStatusToggled, id, map[string]any{"active": *form.Active})
	httpx.JSON(w, http.StatusOK, map[string]any{"status": "ok"})
}

func (h *Handler) unlock(w http.ResponseWriter, r *http.Request) {
	id, ok := h.pathID(w, r)
	if !ok {
		return
	}
	actor := authz.PrincipalFromContext(r.Context())
	if err := h.service.Unlock(r.Context(), actor, id); err != nil {
		h.respondError(w, err)
		return
	}
	h.record(r, activity.ActionUserUnlocked, id, nil)
	httpx.JSON(w, http.StatusOK, map[string]any{"status": "ok"})
}

func (h *Handler) deleteAccount(w http.ResponseWriter, r *http.Request) {
	id, ok := h.pathID(w, r)
	if !ok {
		return
	}
	actor := authz.PrincipalFromContext(r.Context())
	if err := h.service.Delete(r.Context(), actor, id); err != nil {
		h.respondError(w, err)
		return
	}
	h.record(r, activity.ActionUserDeleted, id, nil)
	httpx.JSON(w, http.StatusOK, map[string]any{"status": "ok"})
}

func (h *Handler) pathID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil || id <= 0 {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "invalid account id")
		return 0, false
	}
	return id, true
}

// respondError maps domain errors onto problem responses. Validation-class
// errors surface their detail; a super-admin escalation attempt is the one
// mutation error reported as forbidden.
func (h *Handler) respondError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, shared.ErrNotFound):
		httpx.Problem(w, http.StatusNotFound, "Not Found", "account not found")
	case errors.Is(err, ErrInvalidRole),
		errors.Is(err, ErrUnknownPermission),
		errors.Is(err, ErrSelfModificationForbidden):
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", err.Error())
	case errors.Is(err, ErrSuperAdminRequired):
		httpx.Problem(w, http.StatusForbidden, "Forbidden", err.Error())
	case errors.Is(err, ErrDuplicate):
		httpx.Problem(w, http.StatusConflict, "Duplicate", err.Error())
	default:
		h.logger.Error("accounts request failed", slog.Any("error", err))
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
		TargetType: "user",
		TargetID:   targetID,
		Details:    details,
		IP:         r.RemoteAddr,
		UserAgent:  r.UserAgent(),
	})
}

func toPayload(acc *Account, now time.Time) accountPayload {
	overrides := acc.Overrides
	if overrides == nil {
		overrides = []string{}
	}
	return accountPayload{
		ID:         acc.ID,
		Username:   acc.Username,
		Email:      acc.Email,
		FullName:   acc.FullName,
		Role:       string(acc.Role),
		RoleLabel:  acc.Role.Label(),
		Overrides:  overrides,
		Department: acc.Department,
		Phone:      acc.Phone,
		IsActive:   acc.IsActive,
		Locked:     acc.Locked(now),
		LastLogin:  acc.LastLogin,
		CreatedAt:  acc.CreatedAt,
	}
}

func validationDetail(err error) string {
	var fieldErrs validator.ValidationErrors
	if errors.As(err, &fieldErrs) && len(fieldErrs) > 0 {
		return "invalid field: " + fieldErrs[0].Field()
	}
	return "invalid request"
}
