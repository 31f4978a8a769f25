package api

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"

	"github.com/isdelr/accounts-be/internal/api/handlers"
	"github.com/isdelr/accounts-be/internal/auth"
	"github.com/isdelr/accounts-be/internal/i18n"
	"github.com/isdelr/accounts-be/internal/models"
	"github.com/isdelr/accounts-be/internal/services"
)

// recordingUserService counts lookups so tests can assert the middleware
// rejected a request before any service call.
type recordingUserService struct {
	lookups int
	user    models.User
}

func (s *recordingUserService) GetUserByEmail(_ context.Context, email string) (models.User, error) {
	s.lookups++
	return s.user, nil
}

func (s *recordingUserService) CreateUserAndSendEmail(context.Context, string, string) (models.User, error) {
	return models.User{}, nil
}
func (s *recordingUserService) UpdateEmailVerification(context.Context, string) error { return nil }
func (s *recordingUserService) UpdateUserPassword(context.Context, string, string, string) error {
	return nil
}
func (s *recordingUserService) UpdatePasswordResetTokenAndSendEmail(context.Context, string) error {
	return nil
}
func (s *recordingUserService) UpdateUserPasswordByResetToken(context.Context, string, string) (models.User, error) {
	return models.User{}, nil
}

type noopAuthenticator struct{}

func (noopAuthenticator) Authenticate(context.Context, string, string) error { return nil }

type noopCache struct{}

func (noopCache) Get(string) (models.User, bool) { return models.User{}, false }
func (noopCache) Put(models.User)                {}
func (noopCache) Remove(string)                  {}

func newTestRouter(t *testing.T, users services.UserServiceProvider, tokens *auth.TokenUtil) http.Handler {
	t.Helper()
	messages, err := i18n.New()
	require.NoError(t, err)

	googleOAuth := &oauth2.Config{
		ClientID:    "client-123",
		RedirectURL: "http://localhost:3000/oauth2/callback/google",
		Scopes:      []string{"openid", "email", "profile"},
		Endpoint:    google.Endpoint,
	}

	authHandler := handlers.NewAuthHandler(noopAuthenticator{}, users, tokens, noopCache{}, messages, googleOAuth)
	return NewRouter(authHandler, handlers.NewHealthHandler(), tokens)
}

func TestMe_WithoutTokenNeverInvokesLookup(t *testing.T) {
	users := &recordingUserService{}
	tokens := auth.NewTokenUtil("router-test-secret", time.Hour)
	router := newTestRouter(t, users, tokens)

	req := httptest.NewRequest(http.MethodGet, "/auth/me", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Zero(t, users.lookups)
}

func TestMe_WithGarbageTokenNeverInvokesLookup(t *testing.T) {
	users := &recordingUserService{}
	tokens := auth.NewTokenUtil("router-test-secret", time.Hour)
	router := newTestRouter(t, users, tokens)

	req := httptest.NewRequest(http.MethodGet, "/auth/me", nil)
	req.Header.Set("Authorization", "Bearer not.a.jwt")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Zero(t, users.lookups)
}

func TestMe_WithValidToken(t *testing.T) {
	users := &recordingUserService{
		user: models.User{ID: "u1", Email: "alice@example.com", EmailVerified: true},
	}
	tokens := auth.NewTokenUtil("router-test-secret", time.Hour)
	router := newTestRouter(t, users, tokens)

	token, err := tokens.Generate("alice@example.com")
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodGet, "/auth/me", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, 1, users.lookups)
	assert.Contains(t, w.Body.String(), `"email":"alice@example.com"`)
}

func TestPasswordUpdate_RequiresToken(t *testing.T) {
	users := &recordingUserService{}
	tokens := auth.NewTokenUtil("router-test-secret", time.Hour)
	router := newTestRouter(t, users, tokens)

	req := httptest.NewRequest(http.MethodPut, "/auth/password-update", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestHealthEndpoint(t *testing.T) {
	tokens := auth.NewTokenUtil("router-test-secret", time.Hour)
	router := newTestRouter(t, &recordingUserService{}, tokens)

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"status":"ok"`)
}
