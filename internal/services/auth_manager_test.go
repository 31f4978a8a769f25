package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/isdelr/accounts-be/internal/models"
)

type fixedUserSource struct {
	UserServiceProvider
	user    models.User
	err     error
	lookups int
}

func (f *fixedUserSource) GetUserByEmail(_ context.Context, email string) (models.User, error) {
	f.lookups++
	if f.err != nil {
		return models.User{}, f.err
	}
	return f.user, nil
}

type mapCache struct {
	entries map[string]models.User
}

func newMapCache() *mapCache {
	return &mapCache{entries: make(map[string]models.User)}
}

func (c *mapCache) Get(email string) (models.User, bool) {
	user, ok := c.entries[email]
	return user, ok
}

func (c *mapCache) Put(user models.User) { c.entries[user.Email] = user }
func (c *mapCache) Remove(email string)  { delete(c.entries, email) }

func hashedUser(t *testing.T, email, password string) models.User {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	require.NoError(t, err)
	return models.User{ID: "u1", Email: email, PasswordHash: string(hash)}
}

func TestAuthManager_Authenticate(t *testing.T) {
	ctx := context.Background()

	t.Run("correct password", func(t *testing.T) {
		source := &fixedUserSource{user: hashedUser(t, "alice@example.com", "hunter22")}
		mgr := NewAuthManager(source, newMapCache())

		assert.NoError(t, mgr.Authenticate(ctx, "alice@example.com", "hunter22"))
	})

	t.Run("wrong password", func(t *testing.T) {
		source := &fixedUserSource{user: hashedUser(t, "alice@example.com", "hunter22")}
		mgr := NewAuthManager(source, newMapCache())

		err := mgr.Authenticate(ctx, "alice@example.com", "wrong")
		assert.ErrorIs(t, err, ErrInvalidCredentials)
	})

	t.Run("unknown email looks like bad credentials", func(t *testing.T) {
		source := &fixedUserSource{err: ErrUserNotFound}
		mgr := NewAuthManager(source, newMapCache())

		err := mgr.Authenticate(ctx, "ghost@example.com", "hunter22")
		assert.ErrorIs(t, err, ErrInvalidCredentials)
	})
}

func TestAuthManager_ReadsThroughCache(t *testing.T) {
	ctx := context.Background()
	source := &fixedUserSource{user: hashedUser(t, "alice@example.com", "hunter22")}
	cache := newMapCache()
	mgr := NewAuthManager(source, cache)

	// First call misses the cache and loads from the user service.
	require.NoError(t, mgr.Authenticate(ctx, "alice@example.com", "hunter22"))
	assert.Equal(t, 1, source.lookups)

	_, cached := cache.Get("alice@example.com")
	assert.True(t, cached)

	// Second call is served from the cache.
	require.NoError(t, mgr.Authenticate(ctx, "alice@example.com", "hunter22"))
	assert.Equal(t, 1, source.lookups)

	// Invalidation forces the next check back to the user service.
	cache.Remove("alice@example.com")
	require.NoError(t, mgr.Authenticate(ctx, "alice@example.com", "hunter22"))
	assert.Equal(t, 2, source.lookups)
}
