package rbac

import (
	"fmt"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/talenttrack/talenttrack/internal/identity"
	"github.com/talenttrack/talenttrack/internal/platform/httpx"
)

// Handler exposes the RBAC administration endpoints.
type Handler struct {
	logger   *slog.Logger
	service  *Service
	users    UserDirectory
	validate *validator.Validate
}

// NewHandler builds Handler instance.
func NewHandler(logger *slog.Logger, service *Service, users UserDirectory) *Handler {
	return &Handler{
		logger:   logger,
		service:  service,
		users:    users,
		validate: validator.New(validator.WithRequiredStructEnabled()),
	}
}

// MountRoutes registers the admin routes.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Route("/permissions", func(r chi.Router) {
		r.Get("/", h.listPermissions)
		r.Post("/", h.createPermission)
		r.Get("/{permId}", h.getPermission)
		r.Put("/{permId}", h.updatePermission)
		r.Delete("/{permId}", h.deletePermission)
	})
	r.Route("/roles", func(r chi.Router) {
		r.Get("/", h.listRoles)
		r.Post("/", h.createRole)
		r.Get("/users/{userId}", h.rolesForUser)
		r.Get("/{roleId}", h.getRole)
		r.Put("/{roleId}", h.updateRole)
		r.Delete("/{roleId}", h.deleteRole)
		r.Post("/{roleId}/permissions/add/{permId}", h.addPermissionToRole)
		r.Post("/{roleId}/permissions/remove/{permId}", h.removePermissionFromRole)
		r.Post("/{roleId}/users/add/{userId}", h.addUserToRole)
		r.Post("/{roleId}/users/remove/{userId}", h.removeUserFromRole)
	})
	r.Route("/fieldpermissions", func(r chi.Router) {
		r.Get("/", h.listFieldPermissions)
		r.Post("/", h.createFieldPermission)
		r.Get("/byclass/{className}", h.fieldPermissionsByClass)
		r.Get("/bycurrentuser", h.fieldPermissionsForCurrentUser)
		r.Get("/{fieldPermId}", h.getFieldPermission)
		r.Put("/{fieldPermId}", h.updateFieldPermission)
		r.Delete("/{fieldPermId}", h.deleteFieldPermission)
	})
}

type permissionRequest struct {
	Description string `json:"description"`
	Endpoint    string `json:"endpoint" validate:"required"`
	Method      string `json:"method" validate:"required,oneof=GET POST PUT PATCH DELETE"`
}

type roleRequest struct {
	Name          string   `json:"name" validate:"required"`
	PermissionIDs []string `json:"permissionIds"`
	UserIDs       []string `json:"userIds"`
}

type fieldPermissionRequest struct {
	RoleName         string `json:"roleName"`
	UserName         string `json:"userName"`
	ClassName        string `json:"className" validate:"required"`
	PropertyName     string `json:"propertyName" validate:"required"`
	Action           string `json:"action" validate:"required,oneof=redact substitute"`
	SubstitutionText string `json:"substitutionText"`
}

func (h *Handler) listPermissions(w http.ResponseWriter, r *http.Request) {
	perms, err := h.service.ListPermissions(r.Context())
	if err != nil {
		h.respondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, perms)
}

func (h *Handler) getPermission(w http.ResponseWriter, r *http.Request) {
	perm, err := h.service.GetPermission(r.Context(), chi.URLParam(r, "permId"))
	if err != nil {
		h.respondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, perm)
}

func (h *Handler) createPermission(w http.ResponseWriter, r *http.Request) {
	req, ok := decodeValid(h, w, r, &permissionRequest{})
	if !ok {
		return
	}
	perm, err := h.service.CreatePermission(r.Context(), Permission{
		Description: req.Description,
		Endpoint:    req.Endpoint,
		Method:      req.Method,
	})
	if err != nil {
		h.respondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusCreated, perm)
}

func (h *Handler) updatePermission(w http.ResponseWriter, r *http.Request) {
	req, ok := decodeValid(h, w, r, &permissionRequest{})
	if !ok {
		return
	}
	perm, err := h.service.UpdatePermission(r.Context(), Permission{
		ID:          chi.URLParam(r, "permId"),
		Description: req.Description,
		Endpoint:    req.Endpoint,
		Method:      req.Method,
	})
	if err != nil {
		h.respondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, perm)
}

func (h *Handler) deletePermission(w http.ResponseWriter, r *http.Request) {
	if err := h.service.DeletePermission(r.Context(), chi.URLParam(r, "permId")); err != nil {
		h.respondError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) listRoles(w http.ResponseWriter, r *http.Request) {
	roles, err := h.service.ListRoles(r.Context())
	if err != nil {
		h.respondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, roles)
}

func (h *Handler) getRole(w http.ResponseWriter, r *http.Request) {
	role, err := h.service.GetRole(r.Context(), chi.URLParam(r, "roleId"))
	if err != nil {
		h.respondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, role)
}

func (h *Handler) rolesForUser(w http.ResponseWriter, r *http.Request) {
	roles, err := h.service.RolesForUser(r.Context(), chi.URLParam(r, "userId"))
	if err != nil {
		h.respondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, roles)
}

func (h *Handler) createRole(w http.ResponseWriter, r *http.Request) {
	req, ok := decodeValid(h, w, r, &roleRequest{})
	if !ok {
		return
	}
	role, err := h.service.CreateRole(r.Context(), Role{
		Name:          req.Name,
		PermissionIDs: req.PermissionIDs,
		UserIDs:       req.UserIDs,
	})
	if err != nil {
		h.respondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusCreated, role)
}

func (h *Handler) updateRole(w http.ResponseWriter, r *http.Request) {
	req, ok := decodeValid(h, w, r, &roleRequest{})
	if !ok {
		return
	}
	role, err := h.service.UpdateRole(r.Context(), Role{
		ID:            chi.URLParam(r, "roleId"),
		Name:          req.Name,
		PermissionIDs: req.PermissionIDs,
		UserIDs:       req.UserIDs,
	})
	if err != nil {
		h.respondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, role)
}

func (h *Handler) deleteRole(w http.ResponseWriter, r *http.Request) {
	if err := h.service.DeleteRole(r.Context(), chi.URLParam(r, "roleId")); err != nil {
		h.respondError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) addPermissionToRole(w http.ResponseWriter, r *http.Request) {
	role, err := h.service.AddPermissionToRole(r.Context(), chi.URLParam(r, "roleId"), chi.URLParam(r, "permId"))
	if err != nil {
		h.respondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, role)
}

func (h *Handler) removePermissionFromRole(w http.ResponseWriter, r *http.Request) {
	role, err := h.service.RemovePermissionFromRole(r.Context(), chi.URLParam(r, "roleId"), chi.URLParam(r, "permId"))
	if err != nil {
		h.respondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, role)
}

func (h *Handler) addUserToRole(w http.ResponseWriter, r *http.Request) {
	role, err := h.service.AddUserToRole(r.Context(), chi.URLParam(r, "roleId"), chi.URLParam(r, "userId"))
	if err != nil {
		h.respondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, role)
}

func (h *Handler) removeUserFromRole(w http.ResponseWriter, r *http.Request) {
	role, err := h.service.RemoveUserFromRole(r.Context(), chi.URLParam(r, "roleId"), chi.URLParam(r, "userId"))
	if err != nil {
		h.respondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, role)
}

func (h *Handler) listFieldPermissions(w http.ResponseWriter, r *http.Request) {
	perms, err := h.service.ListFieldPermissions(r.Context())
	if err != nil {
		h.respondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, perms)
}

func (h *Handler) getFieldPermission(w http.ResponseWriter, r *http.Request) {
	fp, err := h.service.GetFieldPermission(r.Context(), chi.URLParam(r, "fieldPermId"))
	if err != nil {
		h.respondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, fp)
}

func (h *Handler) fieldPermissionsByClass(w http.ResponseWriter, r *http.Request) {
	perms, err := h.service.FieldPermissionsByClass(r.Context(), chi.URLParam(r, "className"))
	if err != nil {
		h.respondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, perms)
}

func (h *Handler) fieldPermissionsForCurrentUser(w http.ResponseWriter, r *http.Request) {
	actor := identity.ActorFromContext(r.Context())
	if !actor.Authenticated {
		httpx.RespondError(w, fmt.Errorf("rbac: no acting user: %w", httpx.ErrUnauthorized))
		return
	}
	user, err := h.users.ByUsername(r.Context(), actor.Username)
	if err != nil {
		h.respondError(w, err)
		return
	}
	perms, err := h.service.FieldPermissionsForUser(r.Context(), user.ID, user.Username)
	if err != nil {
		h.respondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, perms)
}

func (h *Handler) createFieldPermission(w http.ResponseWriter, r *http.Request) {
	req, ok := decodeValid(h, w, r, &fieldPermissionRequest{})
	if !ok {
		return
	}
	fp, err := h.service.CreateFieldPermission(r.Context(), FieldPermission{
		RoleName:         req.RoleName,
		UserName:         req.UserName,
		ClassName:        req.ClassName,
		PropertyName:     req.PropertyName,
		Action:           FieldAction(req.Action),
		SubstitutionText: req.SubstitutionText,
	})
	if err != nil {
		h.respondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusCreated, fp)
}

func (h *Handler) updateFieldPermission(w http.ResponseWriter, r *http.Request) {
	req, ok := decodeValid(h, w, r, &fieldPermissionRequest{})
	if !ok {
		return
	}
	fp, err := h.service.UpdateFieldPermission(r.Context(), FieldPermission{
		ID:               chi.URLParam(r, "fieldPermId"),
		RoleName:         req.RoleName,
		UserName:         req.UserName,
		ClassName:        req.ClassName,
		PropertyName:     req.PropertyName,
		Action:           FieldAction(req.Action),
		SubstitutionText: req.SubstitutionText,
	})
	if err != nil {
		h.respondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, fp)
}

func (h *Handler) deleteFieldPermission(w http.ResponseWriter, r *http.Request) {
	if err := h.service.DeleteFieldPermission(r.Context(), chi.URLParam(r, "fieldPermId")); err != nil {
		h.respondError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// decodeValid parses and validates the request body into target.
func decodeValid[T any](h *Handler, w http.ResponseWriter, r *http.Request, target *T) (*T, bool) {
	if err := httpx.DecodeJSON(r, target); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Invalid Body", err.Error())
		return nil, false
	}
	if err := h.validate.Struct(target); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", err.Error())
		return nil, false
	}
	return target, true
}

func (h *Handler) respondError(w http.ResponseWriter, err error) {
	if h.logger != nil {
		h.logger.Error("rbac handler", slog.Any("error", err))
	}
	httpx.RespondError(w, err)
}
