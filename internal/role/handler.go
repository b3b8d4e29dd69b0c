// AngelaMos | 2026
// handler.go

package role

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/angelamos/gatekeep/internal/core"
)

// PermissionAssigner manages the role-to-permission edges of the
// assignment graph. Implemented by the rbac assignment service.
type PermissionAssigner interface {
	AssignPermissionsToRole(
		ctx context.Context,
		roleID string,
		permissionIDs []string,
	) error
	UnassignPermissionFromRole(
		ctx context.Context,
		roleID, permissionID string,
	) error
}

type Handler struct {
	service   *Service
	assigner  PermissionAssigner
	validator *validator.Validate
}

func NewHandler(service *Service, assigner PermissionAssigner) *Handler {
	return &Handler{
		service:   service,
		assigner:  assigner,
		validator: validator.New(validator.WithRequiredStructEnabled()),
	}
}

func (h *Handler) RegisterRoutes(
	r chi.Router,
	authenticator, guard func(http.Handler) http.Handler,
) {
	r.Route("/admin/roles", func(r chi.Router) {
		r.Use(authenticator)
		r.Use(guard)

		r.Post("/", h.CreateRole)
		r.Get("/", h.ListRoles)
		r.Get("/{roleID}", h.GetRole)
		r.Put("/{roleID}", h.UpdateRole)
		r.Post("/{roleID}/suspend", h.SuspendRole)
		r.Post("/{roleID}/restore", h.RestoreRole)
		r.Delete("/{roleID}", h.DeleteRole)

		r.Post("/{roleID}/permissions", h.AssignPermissions)
		r.Delete(
			"/{roleID}/permissions/{permissionID}",
			h.UnassignPermission,
		)
	})
}

func (h *Handler) CreateRole(w http.ResponseWriter, r *http.Request) {
	var req CreateRoleRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		core.BadRequest(w, "invalid request body")
		return
	}

	if err := h.validator.Struct(req); err != nil {
		core.BadRequest(w, core.FormatValidationError(err))
		return
	}

	role, err := h.service.CreateRole(r.Context(), req)
	if err != nil {
		if errors.Is(err, core.ErrConflict) {
			core.JSONError(w, core.ConflictError("role name already exists"))
			return
		}
		core.InternalServerError(w, err)
		return
	}

	core.Created(w, ToRoleResponse(role))
}

func (h *Handler) ListRoles(w http.ResponseWriter, r *http.Request) {
	params := ListRolesParams{
		Page:     parseIntQuery(r, "page", 1),
		PageSize: parseIntQuery(r, "page_size", 20),
		Search:   r.URL.Query().Get("search"),
	}

	roles, total, err := h.service.ListRoles(r.Context(), params)
	if err != nil {
		core.InternalServerError(w, err)
		return
	}

	core.Paginated(
		w,
		ToRoleResponseList(roles),
		params.Page,
		params.PageSize,
		total,
	)
}

func (h *Handler) GetRole(w http.ResponseWriter, r *http.Request) {
	roleID := chi.URLParam(r, "roleID")

	resp, err := h.service.GetRoleResponse(r.Context(), roleID)
	if err != nil {
		if errors.Is(err, core.ErrNotFound) {
			core.NotFound(w, "role")
			return
		}
		core.InternalServerError(w, err)
		return
	}

	core.OK(w, resp)
}

func (h *Handler) UpdateRole(w http.ResponseWriter, r *http.Request) {
	roleID := chi.URLParam(r, "roleID")

	var req UpdateRoleRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		core.BadRequest(w, "invalid request body")
		return
	}

	if err := h.validator.Struct(req); err != nil {
		core.BadRequest(w, core.FormatValidationError(err))
		return
	}

	role, err := h.service.UpdateRole(r.Context(), roleID, req)
	if err != nil {
		if errors.Is(err, core.ErrNotFound) {
			core.NotFound(w, "role")
			return
		}
		if errors.Is(err, core.ErrConflict) {
			core.JSONError(w, core.ConflictError("role name already exists"))
			return
		}
		core.InternalServerError(w, err)
		return
	}

	core.OK(w, ToRoleResponse(role))
}

func (h *Handler) SuspendRole(w http.ResponseWriter, r *http.Request) {
	roleID := chi.URLParam(r, "roleID")

	if err := h.service.SuspendRole(r.Context(), roleID); err != nil {
		if errors.Is(err, core.ErrNotFound) {
			core.NotFound(w, "role")
			return
		}
		core.InternalServerError(w, err)
		return
	}

	core.NoContent(w)
}

func (h *Handler) RestoreRole(w http.ResponseWriter, r *http.Request) {
	roleID := chi.URLParam(r, "roleID")

	if err := h.service.RestoreRole(r.Context(), roleID); err != nil {
		if errors.Is(err, core.ErrNotFound) {
			core.NotFound(w, "role")
			return
		}
		if errors.Is(err, core.ErrConflict) {
			core.JSONError(w, core.ConflictError("role is not suspended"))
			return
		}
		core.InternalServerError(w, err)
		return
	}

	core.NoContent(w)
}

func (h *Handler) DeleteRole(w http.ResponseWriter, r *http.Request) {
	roleID := chi.URLParam(r, "roleID")

	if err := h.service.DeleteRole(r.Context(), roleID); err != nil {
		if errors.Is(err, core.ErrNotFound) {
			core.NotFound(w, "role")
			return
		}
		core.InternalServerError(w, err)
		return
	}

	core.NoContent(w)
}

func (h *Handler) AssignPermissions(w http.ResponseWriter, r *http.Request) {
	roleID := chi.URLParam(r, "roleID")

	var req AssignPermissionsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		core.BadRequest(w, "invalid request body")
		return
	}

	if err := h.validator.Struct(req); err != nil {
		core.BadRequest(w, core.FormatValidationError(err))
		return
	}

	err := h.assigner.AssignPermissionsToRole(
		r.Context(),
		roleID,
		req.PermissionIDs,
	)
	if err != nil {
		if errors.Is(err, core.ErrNotFound) {
			core.NotFound(w, "role or permission")
			return
		}
		if errors.Is(err, core.ErrConflict) {
			core.JSONError(
				w,
				core.ConflictError("permission already assigned"),
			)
			return
		}
		core.InternalServerError(w, err)
		return
	}

	core.NoContent(w)
}

func (h *Handler) UnassignPermission(w http.ResponseWriter, r *http.Request) {
	roleID := chi.URLParam(r, "roleID")
	permissionID := chi.URLParam(r, "permissionID")

	err := h.assigner.UnassignPermissionFromRole(
		r.Context(),
		roleID,
		permissionID,
	)
	if err != nil {
		if errors.Is(err, core.ErrNotFound) {
			core.NotFound(w, "permission assignment")
			return
		}
		core.InternalServerError(w, err)
		return
	}

	core.NoContent(w)
}

func parseIntQuery(r *http.Request, key string, defaultVal int) int {
	val := r.URL.Query().Get(key)
	if val == "" {
		return defaultVal
	}

	parsed, err := strconv.Atoi(val)
	if err != nil {
		return defaultVal
	}

	return parsed
}
