package cache

import (
	"time"

	gocache "github.com/patrickmn/go-cache"

	"github.com/isdelr/accounts-be/internal/models"
)

// UserCache holds recently loaded user details keyed by email so the
// authentication manager does not hit the database on every request.
// Entries expire after the configured TTL; removal is idempotent.
type UserCache struct {
	store *gocache.Cache
}

// NewUserCache creates a cache whose entries live for ttl.
func NewUserCache(ttl time.Duration) *UserCache {
	return &UserCache{store: gocache.New(ttl, 2*ttl)}
}

// Get returns the cached user for the email, if present.
func (c *UserCache) Get(email string) (models.User, bool) {
	v, ok := c.store.Get(email)
	if !ok {
		return models.User{}, false
	}
	user, ok := v.(models.User)
	return user, ok
}

// Put stores the user under its email.
func (c *UserCache) Put(user models.User) {
	c.store.SetDefault(user.Email, user)
}

// Remove drops the entry for the email. Removing a missing entry is a no-op.
func (c *UserCache) Remove(email string) {
	c.store.Delete(email)
}
