// AngelaMos | 2026
// handler.go

package permission

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/angelamos/gatekeep/internal/core"
)

type Handler struct {
	service   *Service
	validator *validator.Validate
}

func NewHandler(service *Service) *Handler {
	return &Handler{
		service:   service,
		validator: validator.New(validator.WithRequiredStructEnabled()),
	}
}

func (h *Handler) RegisterRoutes(
	r chi.Router,
	authenticator, guard func(http.Handler) http.Handler,
) {
	r.Route("/admin/permissions", func(r chi.Router) {
		r.Use(authenticator)
		r.Use(guard)

		r.Post("/", h.CreatePermission)
		r.Get("/", h.ListPermissions)
		r.Get("/{permissionID}", h.GetPermission)
		r.Put("/{permissionID}", h.UpdatePermission)
		r.Post("/{permissionID}/suspend", h.SuspendPermission)
		r.Post("/{permissionID}/restore", h.RestorePermission)
		r.Delete("/{permissionID}", h.DeletePermission)
	})
}

func (h *Handler) CreatePermission(w http.ResponseWriter, r *http.Request) {
	var req CreatePermissionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		core.BadRequest(w, "invalid request body")
		return
	}

	if err := h.validator.Struct(req); err != nil {
		core.BadRequest(w, core.FormatValidationError(err))
		return
	}

	perm, err := h.service.CreatePermission(r.Context(), req)
	if err != nil {
		if errors.Is(err, core.ErrConflict) {
			core.JSONError(
				w,
				core.ConflictError("permission name already exists"),
			)
			return
		}
		core.InternalServerError(w, err)
		return
	}

	core.Created(w, ToPermissionResponse(perm))
}

func (h *Handler) ListPermissions(w http.ResponseWriter, r *http.Request) {
	params := ListPermissionsParams{
		Page:     parseIntQuery(r, "page", 1),
		PageSize: parseIntQuery(r, "page_size", 20),
		Search:   r.URL.Query().Get("search"),
	}

	perms, total, err := h.service.ListPermissions(r.Context(), params)
	if err != nil {
		core.InternalServerError(w, err)
		return
	}

	core.Paginated(
		w,
		ToPermissionResponseList(perms),
		params.Page,
		params.PageSize,
		total,
	)
}

func (h *Handler) GetPermission(w http.ResponseWriter, r *http.Request) {
	permissionID := chi.URLParam(r, "permissionID")

	perm, err := h.service.GetPermission(r.Context(), permissionID)
	if err != nil {
		if errors.Is(err, core.ErrNotFound) {
			core.NotFound(w, "permission")
			return
		}
		core.InternalServerError(w, err)
		return
	}

	core.OK(w, ToPermissionResponse(perm))
}

func (h *Handler) UpdatePermission(w http.ResponseWriter, r *http.Request) {
	permissionID := chi.URLParam(r, "permissionID")

	var req UpdatePermissionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		core.BadRequest(w, "invalid request body")
		return
	}

	if err := h.validator.Struct(req); err != nil {
		core.BadRequest(w, core.FormatValidationError(err))
		return
	}

	perm, err := h.service.UpdatePermission(r.Context(), permissionID, req)
	if err != nil {
		if errors.Is(err, core.ErrNotFound) {
			core.NotFound(w, "permission")
			return
		}
		if errors.Is(err, core.ErrConflict) {
			core.JSONError(
				w,
				core.ConflictError("permission name already exists"),
			)
			return
		}
		core.InternalServerError(w, err)
		return
	}

	core.OK(w, ToPermissionResponse(perm))
}

func (h *Handler) SuspendPermission(w http.ResponseWriter, r *http.Request) {
	permissionID := chi.URLParam(r, "permissionID")

	if err := h.service.SuspendPermission(r.Context(), permissionID); err != nil {
		if errors.Is(err, core.ErrNotFound) {
			core.NotFound(w, "permission")
			return
		}
		core.InternalServerError(w, err)
		return
	}

	core.NoContent(w)
}

func (h *Handler) RestorePermission(w http.ResponseWriter, r *http.Request) {
	permissionID := chi.URLParam(r, "permissionID")

	if err := h.service.RestorePermission(r.Context(), permissionID); err != nil {
		if errors.Is(err, core.ErrNotFound) {
			core.NotFound(w, "permission")
			return
		}
		if errors.Is(err, core.ErrConflict) {
			core.JSONError(
				w,
				core.ConflictError("permission is not suspended"),
			)
			return
		}
		core.InternalServerError(w, err)
		return
	}

	core.NoContent(w)
}

func (h *Handler) DeletePermission(w http.ResponseWriter, r *http.Request) {
	permissionID := chi.URLParam(r, "permissionID")

	if err := h.service.DeletePermission(r.Context(), permissionID); err != nil {
		if errors.Is(err, core.ErrNotFound) {
			core.NotFound(w, "permission")
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
