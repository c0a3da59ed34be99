package rbac

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/talenttrack/talenttrack/internal/platform/httpx"
	"github.com/talenttrack/talenttrack/internal/users"
)

func newTestService(perms *memoryPerms, roles *memoryRoles, fields *memoryFields, dir *memoryDirectory) *Service {
	if perms == nil {
		perms = &memoryPerms{}
	}
	if roles == nil {
		roles = &memoryRoles{}
	}
	if fields == nil {
		fields = &memoryFields{}
	}
	if dir == nil {
		dir = &memoryDirectory{}
	}
	return NewService(perms, roles, fields, dir, nil, nil)
}

func TestPermissionsForUserUnion(t *testing.T) {
	ctx := context.Background()
	perms := &memoryPerms{perms: []Permission{
		{ID: "p1", Endpoint: "api/skills", Method: "GET"},
		{ID: "p2", Endpoint: "api/skills", Method: "POST"},
		{ID: "p3", Endpoint: "api/roles", Method: "GET"},
	}}
	roles := &memoryRoles{roles: []Role{
		{ID: "a", Name: "A", PermissionIDs: []string{"p1", "p2"}, UserIDs: []string{"u1"}},
		{ID: "b", Name: "B", PermissionIDs: []string{"p2", "p3"}, UserIDs: []string{"u1"}},
	}}
	svc := newTestService(perms, roles, nil, nil)

	granted, err := svc.PermissionsForUser(ctx, "u1")
	require.NoError(t, err)

	ids := make([]string, len(granted))
	for i, p := range granted {
		ids[i] = p.ID
	}
	assert.ElementsMatch(t, []string{"p1", "p2", "p3"}, ids)
}

func TestPermissionsForUserSkipsDanglingReferences(t *testing.T) {
	ctx := context.Background()
	perms := &memoryPerms{perms: []Permission{{ID: "p1", Endpoint: "api/skills", Method: "GET"}}}
	roles := &memoryRoles{roles: []Role{
		{ID: "a", Name: "A", PermissionIDs: []string{"p1", "deleted"}, UserIDs: []string{"u1"}},
	}}
	svc := newTestService(perms, roles, nil, nil)

	granted, err := svc.PermissionsForUser(ctx, "u1")
	require.NoError(t, err)
	require.Len(t, granted, 1)
	assert.Equal(t, "p1", granted[0].ID)
}

func TestPermissionsForUserUsesCache(t *testing.T) {
	ctx := context.Background()
	srv := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: srv.Addr()})
	cache := NewPermissionCache(client, time.Minute)

	perms := &memoryPerms{perms: []Permission{{ID: "p1", Endpoint: "api/skills", Method: "GET"}}}
	roles := &memoryRoles{roles: []Role{
		{ID: "a", Name: "A", PermissionIDs: []string{"p1"}, UserIDs: []string{"u1"}},
	}}
	svc := NewService(perms, roles, &memoryFields{}, &memoryDirectory{}, cache, nil)

	first, err := svc.PermissionsForUser(ctx, "u1")
	require.NoError(t, err)
	require.Len(t, first, 1)

	// Drop the permission behind the cache; the cached set must survive.
	perms.perms = nil
	second, err := svc.PermissionsForUser(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, first, second)
}

func TestAddUserToRoleConflict(t *testing.T) {
	ctx := context.Background()
	roles := &memoryRoles{roles: []Role{
		{ID: "a", Name: "A", UserIDs: []string{"u1"}},
	}}
	dir := &memoryDirectory{users: []users.User{{ID: "u1", Username: "alice"}}}
	svc := newTestService(nil, roles, nil, dir)

	_, err := svc.AddUserToRole(ctx, "a", "u1")
	require.ErrorIs(t, err, httpx.ErrDuplicate)

	role, err := roles.Get(ctx, "a")
	require.NoError(t, err)
	assert.Equal(t, []string{"u1"}, role.UserIDs)
}

func TestAddUserToRoleUnknownUser(t *testing.T) {
	ctx := context.Background()
	roles := &memoryRoles{roles: []Role{{ID: "a", Name: "A"}}}
	svc := newTestService(nil, roles, nil, &memoryDirectory{})

	_, err := svc.AddUserToRole(ctx, "a", "ghost")
	require.ErrorIs(t, err, httpx.ErrNotFound)
}

func TestRemoveUserFromRoleAbsent(t *testing.T) {
	ctx := context.Background()
	roles := &memoryRoles{roles: []Role{{ID: "a", Name: "A", UserIDs: []string{"u1"}}}}
	svc := newTestService(nil, roles, nil, nil)

	_, err := svc.RemoveUserFromRole(ctx, "a", "u2")
	require.ErrorIs(t, err, httpx.ErrNotFound)
}

func TestAddPermissionToRoleIsIdempotent(t *testing.T) {
	ctx := context.Background()
	perms := &memoryPerms{perms: []Permission{{ID: "p1", Endpoint: "api/skills", Method: "GET"}}}
	roles := &memoryRoles{roles: []Role{{ID: "a", Name: "A", PermissionIDs: []string{"p1"}}}}
	svc := newTestService(perms, roles, nil, nil)

	role, err := svc.AddPermissionToRole(ctx, "a", "p1")
	require.NoError(t, err)
	assert.Equal(t, []string{"p1"}, role.PermissionIDs)
}

func TestRemovePermissionFromRoleAbsent(t *testing.T) {
	ctx := context.Background()
	roles := &memoryRoles{roles: []Role{{ID: "a", Name: "A"}}}
	svc := newTestService(nil, roles, nil, nil)

	_, err := svc.RemovePermissionFromRole(ctx, "a", "p9")
	require.ErrorIs(t, err, httpx.ErrNotFound)
}

func TestIsSuperUser(t *testing.T) {
	ctx := context.Background()
	roles := &memoryRoles{roles: []Role{
		{ID: "a", Name: SuperUserRole, UserIDs: []string{"u1"}},
		{ID: "b", Name: "Recruiters", UserIDs: []string{"u2"}},
	}}
	svc := newTestService(nil, roles, nil, nil)

	super, err := svc.IsSuperUser(ctx, "u1")
	require.NoError(t, err)
	assert.True(t, super)

	super, err = svc.IsSuperUser(ctx, "u2")
	require.NoError(t, err)
	assert.False(t, super)
}

func TestCreatePermissionValidation(t *testing.T) {
	ctx := context.Background()
	svc := newTestService(nil, nil, nil, nil)

	_, err := svc.CreatePermission(ctx, Permission{Endpoint: "api/skills"})
	require.ErrorIs(t, err, httpx.ErrValidation)

	created, err := svc.CreatePermission(ctx, Permission{Endpoint: "api/skills", Method: "get"})
	require.NoError(t, err)
	assert.Equal(t, "GET", created.Method)
	assert.NotEmpty(t, created.ID)
}

func TestCreateFieldPermissionValidation(t *testing.T) {
	ctx := context.Background()
	svc := newTestService(nil, nil, nil, nil)

	_, err := svc.CreateFieldPermission(ctx, FieldPermission{ClassName: "Candidate", PropertyName: "Name", Action: "obliterate"})
	require.ErrorIs(t, err, httpx.ErrValidation)

	fp, err := svc.CreateFieldPermission(ctx, FieldPermission{ClassName: "Candidate", PropertyName: "Name", Action: FieldActionRedact})
	require.NoError(t, err)
	assert.NotEmpty(t, fp.ID)
}
