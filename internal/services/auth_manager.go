package services

import (
	"context"
	"errors"

	"golang.org/x/crypto/bcrypt"

	"github.com/isdelr/accounts-be/internal/models"
)

// Authenticator verifies a user's credentials.
type Authenticator interface {
	Authenticate(ctx context.Context, email, password string) error
}

// UserDetailsCache is the cache the auth manager reads user details through.
type UserDetailsCache interface {
	Get(email string) (models.User, bool)
	Put(user models.User)
	Remove(email string)
}

// AuthManager checks credentials against stored password hashes. User details
// are read through the cache; a miss loads from the user service and populates
// the cache for subsequent requests.
type AuthManager struct {
	users UserServiceProvider
	cache UserDetailsCache
}

// NewAuthManager creates a new AuthManager.
func NewAuthManager(users UserServiceProvider, cache UserDetailsCache) *AuthManager {
	return &AuthManager{users: users, cache: cache}
}

// Authenticate verifies the password for the email. An unknown email and a
// wrong password both come back as ErrInvalidCredentials.
func (a *AuthManager) Authenticate(ctx context.Context, email, password string) error {
	user, ok := a.cache.Get(email)
	if !ok {
		loaded, err := a.users.GetUserByEmail(ctx, email)
		if err != nil {
			if errors.Is(err, ErrUserNotFound) {
				return ErrInvalidCredentials
			}
			return err
		}
		a.cache.Put(loaded)
		user = loaded
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return ErrInvalidCredentials
	}
	return nil
}
