package rbac

import (
	"context"
	"fmt"

	"github.com/talenttrack/talenttrack/internal/platform/httpx"
	"github.com/talenttrack/talenttrack/internal/users"
)

type memoryPerms struct {
	perms []Permission
}

func (m *memoryPerms) List(ctx context.Context) ([]Permission, error) {
	out := make([]Permission, len(m.perms))
	copy(out, m.perms)
	return out, nil
}

func (m *memoryPerms) Get(ctx context.Context, id string) (Permission, error) {
	for _, p := range m.perms {
		if p.ID == id {
			return p, nil
		}
	}
	return Permission{}, fmt.Errorf("permission %s: %w", id, httpx.ErrNotFound)
}

func (m *memoryPerms) Create(ctx context.Context, p Permission) (Permission, error) {
	m.perms = append(m.perms, p)
	return p, nil
}

func (m *memoryPerms) Update(ctx context.Context, p Permission) (Permission, error) {
	for i := range m.perms {
		if m.perms[i].ID == p.ID {
			m.perms[i] = p
			return p, nil
		}
	}
	return Permission{}, fmt.Errorf("permission %s: %w", p.ID, httpx.ErrNotFound)
}

func (m *memoryPerms) Delete(ctx context.Context, id string) error {
	for i := range m.perms {
		if m.perms[i].ID == id {
			m.perms = append(m.perms[:i], m.perms[i+1:]...)
			return nil
		}
	}
	return fmt.Errorf("permission %s: %w", id, httpx.ErrNotFound)
}

type memoryRoles struct {
	roles []Role
}

func (m *memoryRoles) List(ctx context.Context) ([]Role, error) {
	out := make([]Role, len(m.roles))
	copy(out, m.roles)
	return out, nil
}

func (m *memoryRoles) Get(ctx context.Context, id string) (Role, error) {
	for _, r := range m.roles {
		if r.ID == id {
			return r, nil
		}
	}
	return Role{}, fmt.Errorf("role %s: %w", id, httpx.ErrNotFound)
}

func (m *memoryRoles) ByUser(ctx context.Context, userID string) ([]Role, error) {
	var out []Role
	for _, r := range m.roles {
		if r.HasUser(userID) {
			out = append(out, r)
		}
	}
	return out, nil
}

func (m *memoryRoles) Create(ctx context.Context, r Role) (Role, error) {
	m.roles = append(m.roles, r)
	return r, nil
}

func (m *memoryRoles) Update(ctx context.Context, r Role) (Role, error) {
	for i := range m.roles {
		if m.roles[i].ID == r.ID {
			m.roles[i] = r
			return r, nil
		}
	}
	return Role{}, fmt.Errorf("role %s: %w", r.ID, httpx.ErrNotFound)
}

func (m *memoryRoles) Delete(ctx context.Context, id string) error {
	for i := range m.roles {
		if m.roles[i].ID == id {
			m.roles = append(m.roles[:i], m.roles[i+1:]...)
			return nil
		}
	}
	return fmt.Errorf("role %s: %w", id, httpx.ErrNotFound)
}

type memoryFields struct {
	fields []FieldPermission
}

func (m *memoryFields) List(ctx context.Context) ([]FieldPermission, error) {
	out := make([]FieldPermission, len(m.fields))
	copy(out, m.fields)
	return out, nil
}

func (m *memoryFields) Get(ctx context.Context, id string) (FieldPermission, error) {
	for _, fp := range m.fields {
		if fp.ID == id {
			return fp, nil
		}
	}
	return FieldPermission{}, fmt.Errorf("field permission %s: %w", id, httpx.ErrNotFound)
}

func (m *memoryFields) ByClass(ctx context.Context, className string) ([]FieldPermission, error) {
	var out []FieldPermission
	for _, fp := range m.fields {
		if fp.ClassName == className {
			out = append(out, fp)
		}
	}
	return out, nil
}

func (m *memoryFields) ForActor(ctx context.Context, username string, roleNames []string, className string) ([]FieldPermission, error) {
	inRoles := make(map[string]struct{}, len(roleNames))
	for _, name := range roleNames {
		inRoles[name] = struct{}{}
	}
	var out []FieldPermission
	for _, fp := range m.fields {
		switch {
		case fp.UserName != "":
			if fp.UserName == username {
				out = append(out, fp)
			}
		case fp.RoleName != "":
			if _, ok := inRoles[fp.RoleName]; ok {
				out = append(out, fp)
			}
		case fp.ClassName == className:
			out = append(out, fp)
		}
	}
	return out, nil
}

func (m *memoryFields) Create(ctx context.Context, fp FieldPermission) (FieldPermission, error) {
	m.fields = append(m.fields, fp)
	return fp, nil
}

func (m *memoryFields) Update(ctx context.Context, fp FieldPermission) (FieldPermission, error) {
	for i := range m.fields {
		if m.fields[i].ID == fp.ID {
			m.fields[i] = fp
			return fp, nil
		}
	}
	return FieldPermission{}, fmt.Errorf("field permission %s: %w", fp.ID, httpx.ErrNotFound)
}

func (m *memoryFields) Delete(ctx context.Context, id string) error {
	for i := range m.fields {
		if m.fields[i].ID == id {
			m.fields = append(m.fields[:i], m.fields[i+1:]...)
			return nil
		}
	}
	return fmt.Errorf("field permission %s: %w", id, httpx.ErrNotFound)
}

type memoryDirectory struct {
	users []users.User
}

func (m *memoryDirectory) ByID(ctx context.Context, id string) (users.User, error) {
	for _, u := range m.users {
		if u.ID == id {
			return u, nil
		}
	}
	return users.User{}, fmt.Errorf("user %s: %w", id, httpx.ErrNotFound)
}

func (m *memoryDirectory) ByUsername(ctx context.Context, username string) (users.User, error) {
	for _, u := range m.users {
		if u.Username == username {
			return u, nil
		}
	}
	return users.User{}, fmt.Errorf("user %s: %w", username, httpx.ErrNotFound)
}
