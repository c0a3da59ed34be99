package rbac

import (
	"context"
	"fmt"

	"github.com/talenttrack/talenttrack/internal/docstore"
)

// Collection names in the global document store.
const (
	permissionsCollection      = "permissions"
	rolesCollection            = "customroles"
	fieldPermissionsCollection = "fieldpermissions"
)

// PermissionStore is the document store backed permission registry.
type PermissionStore struct {
	collection *docstore.Collection
}

// NewPermissionStore constructs the permission registry.
func NewPermissionStore(store *docstore.Store) *PermissionStore {
	return &PermissionStore{collection: store.Collection(permissionsCollection)}
}

// List returns every registered permission.
func (s *PermissionStore) List(ctx context.Context) ([]Permission, error) {
	docs, err := s.collection.All(ctx)
	if err != nil {
		return nil, err
	}
	return decodeAll[Permission](docs)
}

// Get fetches a permission by id.
func (s *PermissionStore) Get(ctx context.Context, id string) (Permission, error) {
	doc, err := s.collection.Get(ctx, id)
	if err != nil {
		return Permission{}, err
	}
	return decodeOne[Permission](doc)
}

// Create stores a new permission.
func (s *PermissionStore) Create(ctx context.Context, p Permission) (Permission, error) {
	doc, err := docstore.Marshal(p)
	if err != nil {
		return Permission{}, err
	}
	if err := s.collection.Insert(ctx, p.ID, doc); err != nil {
		return Permission{}, err
	}
	return p, nil
}

// Update replaces a stored permission.
func (s *PermissionStore) Update(ctx context.Context, p Permission) (Permission, error) {
	if _, err := s.collection.Get(ctx, p.ID); err != nil {
		return Permission{}, err
	}
	doc, err := docstore.Marshal(p)
	if err != nil {
		return Permission{}, err
	}
	if err := s.collection.Replace(ctx, p.ID, doc); err != nil {
		return Permission{}, err
	}
	return p, nil
}

// Delete removes a permission by id.
func (s *PermissionStore) Delete(ctx context.Context, id string) error {
	return s.collection.Delete(ctx, id)
}

// RoleStore is the document store backed role store.
type RoleStore struct {
	collection *docstore.Collection
}

// NewRoleStore constructs the role store.
func NewRoleStore(store *docstore.Store) *RoleStore {
	return &RoleStore{collection: store.Collection(rolesCollection)}
}

// List returns every role.
func (s *RoleStore) List(ctx context.Context) ([]Role, error) {
	docs, err := s.collection.All(ctx)
	if err != nil {
		return nil, err
	}
	return decodeAll[Role](docs)
}

// Get fetches a role by id.
func (s *RoleStore) Get(ctx context.Context, id string) (Role, error) {
	doc, err := s.collection.Get(ctx, id)
	if err != nil {
		return Role{}, err
	}
	return decodeOne[Role](doc)
}

// ByUser returns all roles whose membership includes the user.
func (s *RoleStore) ByUser(ctx context.Context, userID string) ([]Role, error) {
	docs, err := s.collection.FindContains(ctx, docstore.Document{"userIds": []any{userID}})
	if err != nil {
		return nil, err
	}
	return decodeAll[Role](docs)
}

// Create stores a new role.
func (s *RoleStore) Create(ctx context.Context, r Role) (Role, error) {
	doc, err := docstore.Marshal(r)
	if err != nil {
		return Role{}, err
	}
	if err := s.collection.Insert(ctx, r.ID, doc); err != nil {
		return Role{}, err
	}
	return r, nil
}

// Update replaces a stored role.
func (s *RoleStore) Update(ctx context.Context, r Role) (Role, error) {
	if _, err := s.collection.Get(ctx, r.ID); err != nil {
		return Role{}, err
	}
	doc, err := docstore.Marshal(r)
	if err != nil {
		return Role{}, err
	}
	if err := s.collection.Replace(ctx, r.ID, doc); err != nil {
		return Role{}, err
	}
	return r, nil
}

// Delete removes a role by id.
func (s *RoleStore) Delete(ctx context.Context, id string) error {
	return s.collection.Delete(ctx, id)
}

// FieldPermissionStore is the document store backed field permission store.
type FieldPermissionStore struct {
	collection *docstore.Collection
}

// NewFieldPermissionStore constructs the field permission store.
func NewFieldPermissionStore(store *docstore.Store) *FieldPermissionStore {
	return &FieldPermissionStore{collection: store.Collection(fieldPermissionsCollection)}
}

// List returns every field permission.
func (s *FieldPermissionStore) List(ctx context.Context) ([]FieldPermission, error) {
	docs, err := s.collection.All(ctx)
	if err != nil {
		return nil, err
	}
	return decodeAll[FieldPermission](docs)
}

// Get fetches a field permission by id.
func (s *FieldPermissionStore) Get(ctx context.Context, id string) (FieldPermission, error) {
	doc, err := s.collection.Get(ctx, id)
	if err != nil {
		return FieldPermission{}, err
	}
	return decodeOne[FieldPermission](doc)
}

// ByClass returns field permissions targeting the given class.
func (s *FieldPermissionStore) ByClass(ctx context.Context, className string) ([]FieldPermission, error) {
	docs, err := s.collection.FindContains(ctx, docstore.Document{"className": className})
	if err != nil {
		return nil, err
	}
	return decodeAll[FieldPermission](docs)
}

// ForActor returns the field permissions applicable to a write by the
// given user: scoped to one of their roles, to their username, or purely
// to the class being written.
func (s *FieldPermissionStore) ForActor(ctx context.Context, username string, roleNames []string, className string) ([]FieldPermission, error) {
	all, err := s.List(ctx)
	if err != nil {
		return nil, err
	}
	roles := make(map[string]struct{}, len(roleNames))
	for _, name := range roleNames {
		roles[name] = struct{}{}
	}
	var matched []FieldPermission
	for _, fp := range all {
		switch {
		case fp.UserName != "":
			if fp.UserName == username {
				matched = append(matched, fp)
			}
		case fp.RoleName != "":
			if _, ok := roles[fp.RoleName]; ok {
				matched = append(matched, fp)
			}
		case fp.ClassName == className:
			matched = append(matched, fp)
		}
	}
	return matched, nil
}

// Create stores a new field permission.
func (s *FieldPermissionStore) Create(ctx context.Context, fp FieldPermission) (FieldPermission, error) {
	doc, err := docstore.Marshal(fp)
	if err != nil {
		return FieldPermission{}, err
	}
	if err := s.collection.Insert(ctx, fp.ID, doc); err != nil {
		return FieldPermission{}, err
	}
	return fp, nil
}

// Update replaces a stored field permission.
func (s *FieldPermissionStore) Update(ctx context.Context, fp FieldPermission) (FieldPermission, error) {
	if _, err := s.collection.Get(ctx, fp.ID); err != nil {
		return FieldPermission{}, err
	}
	doc, err := docstore.Marshal(fp)
	if err != nil {
		return FieldPermission{}, err
	}
	if err := s.collection.Replace(ctx, fp.ID, doc); err != nil {
		return FieldPermission{}, err
	}
	return fp, nil
}

// Delete removes a field permission by id.
func (s *FieldPermissionStore) Delete(ctx context.Context, id string) error {
	return s.collection.Delete(ctx, id)
}

func decodeOne[T any](doc docstore.Document) (T, error) {
	var value T
	if err := docstore.Unmarshal(doc, &value); err != nil {
		return value, fmt.Errorf("rbac: decode: %w", err)
	}
	return value, nil
}

func decodeAll[T any](docs []docstore.Document) ([]T, error) {
	values := make([]T, 0, len(docs))
	for _, doc := range docs {
		value, err := decodeOne[T](doc)
		if err != nil {
			return nil, err
		}
		values = append(values, value)
	}
	return values, nil
}
