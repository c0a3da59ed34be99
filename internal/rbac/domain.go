// Package rbac implements role based access control: endpoint permissions,
// role resolution, request authorization and field level redaction.
package rbac

import (
	"context"

	"github.com/talenttrack/talenttrack/internal/users"
)

// SuperUserRole is the distinguished role name whose members bypass all
// permission and field checks. No other role name is privileged.
const SuperUserRole = "SuperUser"

// Permission gates one API capability by HTTP method and endpoint pattern.
// Patterns are segment based; segments with a leading colon are parameters,
// e.g. "api/permissions/:permId".
type Permission struct {
	ID          string `json:"id"`
	Description string `json:"description"`
	Endpoint    string `json:"endpoint"`
	Method      string `json:"method"`
}

// Role is a named group of permissions and user memberships. Deleting a
// role never cascades to its permissions or users.
type Role struct {
	ID            string   `json:"id"`
	Name          string   `json:"name"`
	PermissionIDs []string `json:"permissionIds"`
	UserIDs       []string `json:"userIds"`
}

// HasUser reports whether the role contains the user.
func (r Role) HasUser(userID string) bool {
	for _, id := range r.UserIDs {
		if id == userID {
			return true
		}
	}
	return false
}

// HasPermission reports whether the role references the permission.
func (r Role) HasPermission(permID string) bool {
	for _, id := range r.PermissionIDs {
		if id == permID {
			return true
		}
	}
	return false
}

// FieldAction says what happens to a hidden field value.
type FieldAction string

// Field actions.
const (
	FieldActionRedact     FieldAction = "redact"
	FieldActionSubstitute FieldAction = "substitute"
)

// FieldPermission restricts who may alter one property of one entity class.
// It applies to a write when its role name matches one of the actor's
// roles, its user name matches the actor, or it carries neither and is
// scoped purely by class name.
type FieldPermission struct {
	ID               string      `json:"id"`
	RoleName         string      `json:"roleName,omitempty"`
	UserName         string      `json:"userName,omitempty"`
	ClassName        string      `json:"className"`
	PropertyName     string      `json:"propertyName"`
	Action           FieldAction `json:"action"`
	SubstitutionText string      `json:"substitutionText,omitempty"`
}

// PermissionRepository is the persistence port for the permission registry.
type PermissionRepository interface {
	List(ctx context.Context) ([]Permission, error)
	Get(ctx context.Context, id string) (Permission, error)
	Create(ctx context.Context, p Permission) (Permission, error)
	Update(ctx context.Context, p Permission) (Permission, error)
	Delete(ctx context.Context, id string) error
}

// RoleRepository is the persistence port for the role store.
type RoleRepository interface {
	List(ctx context.Context) ([]Role, error)
	Get(ctx context.Context, id string) (Role, error)
	ByUser(ctx context.Context, userID string) ([]Role, error)
	Create(ctx context.Context, r Role) (Role, error)
	Update(ctx context.Context, r Role) (Role, error)
	Delete(ctx context.Context, id string) error
}

// FieldPermissionRepository is the persistence port for field permissions.
type FieldPermissionRepository interface {
	List(ctx context.Context) ([]FieldPermission, error)
	Get(ctx context.Context, id string) (FieldPermission, error)
	ByClass(ctx context.Context, className string) ([]FieldPermission, error)
	ForActor(ctx context.Context, username string, roleNames []string, className string) ([]FieldPermission, error)
	Create(ctx context.Context, fp FieldPermission) (FieldPermission, error)
	Update(ctx context.Context, fp FieldPermission) (FieldPermission, error)
	Delete(ctx context.Context, id string) error
}

// UserDirectory resolves acting users against the global user store.
type UserDirectory interface {
	ByID(ctx context.Context, id string) (users.User, error)
	ByUsername(ctx context.Context, username string) (users.User, error)
}
