package cache

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/isdelr/accounts-be/internal/models"
)

func TestUserCache_PutGetRemove(t *testing.T) {
	c := NewUserCache(time.Minute)
	user := models.User{ID: "u1", Email: "alice@example.com"}

	_, ok := c.Get("alice@example.com")
	assert.False(t, ok)

	c.Put(user)
	got, ok := c.Get("alice@example.com")
	assert.True(t, ok)
	assert.Equal(t, user, got)

	c.Remove("alice@example.com")
	_, ok = c.Get("alice@example.com")
	assert.False(t, ok)

	// Removing again is a no-op.
	c.Remove("alice@example.com")
}

func TestUserCache_EntriesExpire(t *testing.T) {
	c := NewUserCache(20 * time.Millisecond)
	c.Put(models.User{ID: "u1", Email: "alice@example.com"})

	time.Sleep(60 * time.Millisecond)

	_, ok := c.Get("alice@example.com")
	assert.False(t, ok)
}
