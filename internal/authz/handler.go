package authz

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/marquee-cms/marquee/internal/platform/httpx"
)

// Handler exposes catalog and role-table introspection for role-assignment
// UIs. Both views are static configuration, so responses may be cached by
// clients until the next deploy.
type Handler struct {
	authz Middleware
}

// NewHandler builds a Handler instance.
func NewHandler(authz Middleware) *Handler {
	return &Handler{authz: authz}
}

// MountRoutes registers introspection routes.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Group(func(r chi.Router) {
		r.Use(h.authz.Require(PermSettingsView))
		r.Get("/permissions", h.listPermissions)
	})
	r.Group(func(r chi.Router) {
		r.Use(h.authz.Require(PermUsersManageRoles))
		r.Get("/roles", h.listRoles)
	})
}

type permissionPayload struct {
	ID    string `json:"id"`
	Label string `json:"label"`
}

func (h *Handler) listPermissions(w http.ResponseWriter, r *http.Request) {
	perms := AllPermissions()
	payload := make([]permissionPayload, 0, len(perms))
	for _, p := range perms {
		payload = append(payload, permissionPayload{ID: p.ID, Label: p.Label})
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"permissions": payload})
}

type rolePayload struct {
	Name        string   `json:"name"`
	Label       string   `json:"label"`
	All         bool     `json:"all"`
	Permissions []string `json:"permissions"`
}

func (h *Handler) listRoles(w http.ResponseWriter, r *http.Request) {
	roles := AllRoles()
	payload := make([]rolePayload, 0, len(roles))
	for _, role := range roles {
		perms, all := PermissionsFor(role)
		payload = append(payload, rolePayload{
			Name:        string(role),
			Label:       role.Label(),
			All:         all,
			Permissions: perms,
		})
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"roles": payload})
}
