package rbac

import (
	"context"
	"encoding/json"
	"time"

	"github.com/redis/go-redis/v9"
)

// PermissionCache caches effective permissions per user in Redis. A nil
// cache is a no-op; lookup failures fall through to the store.
type PermissionCache struct {
	client *redis.Client
	ttl    time.Duration
}

// NewPermissionCache constructs a cache with the given entry lifetime.
func NewPermissionCache(client *redis.Client, ttl time.Duration) *PermissionCache {
	return &PermissionCache{client: client, ttl: ttl}
}

func (c *PermissionCache) key(userID string) string {
	return "rbac:perms:" + userID
}

// Get returns the cached permission set for a user, if present.
func (c *PermissionCache) Get(ctx context.Context, userID string) ([]Permission, bool) {
	if c == nil || c.client == nil {
		return nil, false
	}
	payload, err := c.client.Get(ctx, c.key(userID)).Bytes()
	if err != nil {
		return nil, false
	}
	var perms []Permission
	if err := json.Unmarshal(payload, &perms); err != nil {
		return nil, false
	}
	return perms, true
}

// Set stores the permission set for a user.
func (c *PermissionCache) Set(ctx context.Context, userID string, perms []Permission) {
	if c == nil || c.client == nil {
		return
	}
	payload, err := json.Marshal(perms)
	if err != nil {
		return
	}
	_ = c.client.Set(ctx, c.key(userID), payload, c.ttl).Err()
}

// Invalidate drops cached permissions for the given users.
func (c *PermissionCache) Invalidate(ctx context.Context, userIDs ...string) {
	if c == nil || c.client == nil || len(userIDs) == 0 {
		return
	}
	keys := make([]string, len(userIDs))
	for i, id := range userIDs {
		keys[i] = c.key(id)
	}
	_ = c.client.Del(ctx, keys...).Err()
}
