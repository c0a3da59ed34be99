package users

import (
	"context"
	"fmt"

	"github.com/talenttrack/talenttrack/internal/docstore"
	"github.com/talenttrack/talenttrack/internal/platform/httpx"
)

const collectionName = "users"

// Repository provides document store backed persistence for users.
type Repository struct {
	collection *docstore.Collection
}

// NewRepository constructs a repository over the global store.
func NewRepository(store *docstore.Store) *Repository {
	return &Repository{collection: store.Collection(collectionName)}
}

// ByID fetches a user by identifier.
func (r *Repository) ByID(ctx context.Context, id string) (User, error) {
	doc, err := r.collection.Get(ctx, id)
	if err != nil {
		return User{}, err
	}
	return decode(doc)
}

// ByUsername fetches a user by login name.
func (r *Repository) ByUsername(ctx context.Context, username string) (User, error) {
	docs, err := r.collection.FindContains(ctx, docstore.Document{"userName": username})
	if err != nil {
		return User{}, err
	}
	if len(docs) == 0 {
		return User{}, fmt.Errorf("users: %q: %w", username, httpx.ErrNotFound)
	}
	return decode(docs[0])
}

// List returns all users.
func (r *Repository) List(ctx context.Context) ([]User, error) {
	docs, err := r.collection.All(ctx)
	if err != nil {
		return nil, err
	}
	list := make([]User, 0, len(docs))
	for _, doc := range docs {
		user, err := decode(doc)
		if err != nil {
			return nil, err
		}
		list = append(list, user)
	}
	return list, nil
}

// Create stores a new user.
func (r *Repository) Create(ctx context.Context, user User) (User, error) {
	doc, err := docstore.Marshal(user)
	if err != nil {
		return User{}, err
	}
	if err := r.collection.Insert(ctx, user.ID, doc); err != nil {
		return User{}, err
	}
	return user, nil
}

func decode(doc docstore.Document) (User, error) {
	var user User
	if err := docstore.Unmarshal(doc, &user); err != nil {
		return User{}, fmt.Errorf("users: decode: %w", err)
	}
	return user, nil
}
