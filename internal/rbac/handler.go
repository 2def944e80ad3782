package rbac

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/credisphere/credisphere/internal/platform/httpx"
	"github.com/credisphere/credisphere/internal/shared"
)

// Handler exposes the role registry read-only.
type Handler struct {
	logger   *slog.Logger
	registry *Registry
	rbac     Middleware
}

// NewHandler builds Handler instance.
func NewHandler(logger *slog.Logger, registry *Registry, rbac Middleware) *Handler {
	return &Handler{logger: logger, registry: registry, rbac: rbac}
}

// MountRoutes registers role routes.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Group(func(r chi.Router) {
		r.Use(h.rbac.Require(shared.PermRolesView))
		r.Get("/", h.listRoles)
		r.Get("/{name}", h.getRole)
	})
}

type rolesResponse struct {
	Roles map[RoleName][]string `json:"roles"`
}

func (h *Handler) listRoles(w http.ResponseWriter, r *http.Request) {
	httpx.JSON(w, http.StatusOK, rolesResponse{Roles: h.registry.Snapshot()})
}

func (h *Handler) getRole(w http.ResponseWriter, r *http.Request) {
	role, ok := h.registry.Role(RoleName(chi.URLParam(r, "name")))
	if !ok {
		httpx.RespondError(w, httpx.ErrNotFound)
		return
	}
	httpx.JSON(w, http.StatusOK, role)
}
