package rbac

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/google/uuid"

	"github.com/talenttrack/talenttrack/internal/platform/httpx"
)

// Service orchestrates RBAC operations: permission and role administration
// plus role resolution for the authorization middleware.
type Service struct {
	perms  PermissionRepository
	roles  RoleRepository
	fields FieldPermissionRepository
	users  UserDirectory
	cache  *PermissionCache
	logger *slog.Logger
}

// NewService constructs a Service over the given ports.
func NewService(perms PermissionRepository, roles RoleRepository, fields FieldPermissionRepository, users UserDirectory, cache *PermissionCache, logger *slog.Logger) *Service {
	return &Service{perms: perms, roles: roles, fields: fields, users: users, cache: cache, logger: logger}
}

// ListPermissions returns every registered permission.
func (s *Service) ListPermissions(ctx context.Context) ([]Permission, error) {
	return s.perms.List(ctx)
}

// GetPermission fetches a permission by id.
func (s *Service) GetPermission(ctx context.Context, id string) (Permission, error) {
	return s.perms.Get(ctx, id)
}

// CreatePermission registers a new permission.
func (s *Service) CreatePermission(ctx context.Context, p Permission) (Permission, error) {
	p.Method = strings.ToUpper(strings.TrimSpace(p.Method))
	p.Endpoint = strings.TrimSpace(p.Endpoint)
	if p.Method == "" || p.Endpoint == "" {
		return Permission{}, fmt.Errorf("rbac: permission requires method and endpoint: %w", httpx.ErrValidation)
	}
	if p.ID == "" {
		p.ID = uuid.NewString()
	}
	return s.perms.Create(ctx, p)
}

// UpdatePermission replaces a registered permission.
func (s *Service) UpdatePermission(ctx context.Context, p Permission) (Permission, error) {
	p.Method = strings.ToUpper(strings.TrimSpace(p.Method))
	if p.Method == "" || p.Endpoint == "" {
		return Permission{}, fmt.Errorf("rbac: permission requires method and endpoint: %w", httpx.ErrValidation)
	}
	return s.perms.Update(ctx, p)
}

// DeletePermission removes a permission from the registry. Roles keep any
// dangling reference; resolution skips identifiers it cannot resolve.
func (s *Service) DeletePermission(ctx context.Context, id string) error {
	return s.perms.Delete(ctx, id)
}

// ListRoles returns every role.
func (s *Service) ListRoles(ctx context.Context) ([]Role, error) {
	return s.roles.List(ctx)
}

// GetRole fetches a role by id.
func (s *Service) GetRole(ctx context.Context, id string) (Role, error) {
	return s.roles.Get(ctx, id)
}

// CreateRole stores a new role.
func (s *Service) CreateRole(ctx context.Context, role Role) (Role, error) {
	role.Name = strings.TrimSpace(role.Name)
	if role.Name == "" {
		return Role{}, fmt.Errorf("rbac: role name required: %w", httpx.ErrValidation)
	}
	if role.ID == "" {
		role.ID = uuid.NewString()
	}
	if role.PermissionIDs == nil {
		role.PermissionIDs = []string{}
	}
	if role.UserIDs == nil {
		role.UserIDs = []string{}
	}
	return s.roles.Create(ctx, role)
}

// UpdateRole replaces a stored role.
func (s *Service) UpdateRole(ctx context.Context, role Role) (Role, error) {
	if strings.TrimSpace(role.Name) == "" {
		return Role{}, fmt.Errorf("rbac: role name required: %w", httpx.ErrValidation)
	}
	updated, err := s.roles.Update(ctx, role)
	if err != nil {
		return Role{}, err
	}
	s.invalidate(ctx, updated.UserIDs)
	return updated, nil
}

// DeleteRole removes a role. Permissions and users are never cascaded.
func (s *Service) DeleteRole(ctx context.Context, id string) error {
	role, err := s.roles.Get(ctx, id)
	if err != nil {
		return err
	}
	if err := s.roles.Delete(ctx, id); err != nil {
		return err
	}
	s.invalidate(ctx, role.UserIDs)
	return nil
}

// RolesForUser returns all roles whose membership includes the user.
func (s *Service) RolesForUser(ctx context.Context, userID string) ([]Role, error) {
	return s.roles.ByUser(ctx, userID)
}

// IsSuperUser reports whether any of the user's roles is the SuperUser role.
func (s *Service) IsSuperUser(ctx context.Context, userID string) (bool, error) {
	roles, err := s.roles.ByUser(ctx, userID)
	if err != nil {
		return false, err
	}
	for _, role := range roles {
		if role.Name == SuperUserRole {
			return true, nil
		}
	}
	return false, nil
}

// HasAnyRoles reports whether any role exists system-wide. The middleware
// fails open while the role table is empty.
func (s *Service) HasAnyRoles(ctx context.Context) (bool, error) {
	roles, err := s.roles.List(ctx)
	if err != nil {
		return false, err
	}
	return len(roles) > 0, nil
}

// PermissionsForUser returns the deduplicated union of permissions granted
// through every role the user belongs to. Dangling permission references
// are skipped silently.
func (s *Service) PermissionsForUser(ctx context.Context, userID string) ([]Permission, error) {
	if cached, ok := s.cache.Get(ctx, userID); ok {
		return cached, nil
	}

	roles, err := s.roles.ByUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	registry, err := s.perms.List(ctx)
	if err != nil {
		return nil, err
	}
	byID := make(map[string]Permission, len(registry))
	for _, p := range registry {
		byID[p.ID] = p
	}

	var granted []Permission
	seen := make(map[string]struct{})
	for _, role := range roles {
		for _, permID := range role.PermissionIDs {
			perm, ok := byID[permID]
			if !ok {
				if s.logger != nil {
					s.logger.Debug("skip dangling permission reference", slog.String("role", role.Name), slog.String("permission", permID))
				}
				continue
			}
			if _, dup := seen[permID]; dup {
				continue
			}
			seen[permID] = struct{}{}
			granted = append(granted, perm)
		}
	}

	s.cache.Set(ctx, userID, granted)
	return granted, nil
}

// AddPermissionToRole grants a permission to a role. Granting an already
// present permission is a no-op.
func (s *Service) AddPermissionToRole(ctx context.Context, roleID, permID string) (Role, error) {
	role, err := s.roles.Get(ctx, roleID)
	if err != nil {
		return Role{}, err
	}
	if _, err := s.perms.Get(ctx, permID); err != nil {
		return Role{}, err
	}
	if role.HasPermission(permID) {
		return role, nil
	}
	role.PermissionIDs = append(role.PermissionIDs, permID)
	updated, err := s.roles.Update(ctx, role)
	if err != nil {
		return Role{}, err
	}
	s.invalidate(ctx, updated.UserIDs)
	return updated, nil
}

// RemovePermissionFromRole revokes a permission from a role.
func (s *Service) RemovePermissionFromRole(ctx context.Context, roleID, permID string) (Role, error) {
	role, err := s.roles.Get(ctx, roleID)
	if err != nil {
		return Role{}, err
	}
	if !role.HasPermission(permID) {
		return Role{}, fmt.Errorf("rbac: role %s does not contain permission %s: %w", roleID, permID, httpx.ErrNotFound)
	}
	role.PermissionIDs = remove(role.PermissionIDs, permID)
	updated, err := s.roles.Update(ctx, role)
	if err != nil {
		return Role{}, err
	}
	s.invalidate(ctx, updated.UserIDs)
	return updated, nil
}

// AddUserToRole adds a user to a role's membership.
func (s *Service) AddUserToRole(ctx context.Context, roleID, userID string) (Role, error) {
	role, err := s.roles.Get(ctx, roleID)
	if err != nil {
		return Role{}, err
	}
	if s.users != nil {
		if _, err := s.users.ByID(ctx, userID); err != nil {
			return Role{}, err
		}
	}
	if role.HasUser(userID) {
		return Role{}, fmt.Errorf("rbac: role %s already contains user %s: %w", roleID, userID, httpx.ErrDuplicate)
	}
	role.UserIDs = append(role.UserIDs, userID)
	updated, err := s.roles.Update(ctx, role)
	if err != nil {
		return Role{}, err
	}
	s.invalidate(ctx, []string{userID})
	return updated, nil
}

// RemoveUserFromRole removes a user from a role's membership.
func (s *Service) RemoveUserFromRole(ctx context.Context, roleID, userID string) (Role, error) {
	role, err := s.roles.Get(ctx, roleID)
	if err != nil {
		return Role{}, err
	}
	if !role.HasUser(userID) {
		return Role{}, fmt.Errorf("rbac: role %s does not contain user %s: %w", roleID, userID, httpx.ErrNotFound)
	}
	role.UserIDs = remove(role.UserIDs, userID)
	updated, err := s.roles.Update(ctx, role)
	if err != nil {
		return Role{}, err
	}
	s.invalidate(ctx, []string{userID})
	return updated, nil
}

// ListFieldPermissions returns every field permission.
func (s *Service) ListFieldPermissions(ctx context.Context) ([]FieldPermission, error) {
	return s.fields.List(ctx)
}

// GetFieldPermission fetches a field permission by id.
func (s *Service) GetFieldPermission(ctx context.Context, id string) (FieldPermission, error) {
	return s.fields.Get(ctx, id)
}

// FieldPermissionsByClass returns field permissions targeting a class.
func (s *Service) FieldPermissionsByClass(ctx context.Context, className string) ([]FieldPermission, error) {
	return s.fields.ByClass(ctx, className)
}

// FieldPermissionsForUser returns the field permissions applicable to the
// given username through role or direct scoping.
func (s *Service) FieldPermissionsForUser(ctx context.Context, userID, username string) ([]FieldPermission, error) {
	roles, err := s.roles.ByUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	names := make([]string, len(roles))
	for i, role := range roles {
		names[i] = role.Name
	}
	return s.fields.ForActor(ctx, username, names, "")
}

// CreateFieldPermission stores a new field permission.
func (s *Service) CreateFieldPermission(ctx context.Context, fp FieldPermission) (FieldPermission, error) {
	if err := validateFieldPermission(fp); err != nil {
		return FieldPermission{}, err
	}
	if fp.ID == "" {
		fp.ID = uuid.NewString()
	}
	return s.fields.Create(ctx, fp)
}

// UpdateFieldPermission replaces a stored field permission.
func (s *Service) UpdateFieldPermission(ctx context.Context, fp FieldPermission) (FieldPermission, error) {
	if err := validateFieldPermission(fp); err != nil {
		return FieldPermission{}, err
	}
	return s.fields.Update(ctx, fp)
}

// DeleteFieldPermission removes a field permission by id.
func (s *Service) DeleteFieldPermission(ctx context.Context, id string) error {
	return s.fields.Delete(ctx, id)
}

func validateFieldPermission(fp FieldPermission) error {
	if fp.ClassName == "" || fp.PropertyName == "" {
		return fmt.Errorf("rbac: field permission requires class and property: %w", httpx.ErrValidation)
	}
	switch fp.Action {
	case FieldActionRedact, FieldActionSubstitute:
		return nil
	default:
		return fmt.Errorf("rbac: unknown field action %q: %w", fp.Action, httpx.ErrValidation)
	}
}

func (s *Service) invalidate(ctx context.Context, userIDs []string) {
	s.cache.Invalidate(ctx, userIDs...)
}

func remove(values []string, target string) []string {
	out := values[:0]
	for _, v := range values {
		if v != target {
			out = append(out, v)
		}
	}
	return out
}
