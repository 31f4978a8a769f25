package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"golang.org/x/oauth2"

	"github.com/isdelr/accounts-be/internal/auth"
	"github.com/isdelr/accounts-be/internal/i18n"
	"github.com/isdelr/accounts-be/internal/services"
)

// TokenIssuer signs JWTs for authenticated emails.
type TokenIssuer interface {
	Generate(email string) (string, error)
}

// AuthHandler handles HTTP requests for the auth endpoints. It holds no state
// of its own; every operation is one delegated call plus response mapping.
type AuthHandler struct {
	authManager services.Authenticator
	users       services.UserServiceProvider
	tokens      TokenIssuer
	cache       services.UserDetailsCache
	messages    *i18n.Messages
	validate    *validator.Validate
	googleOAuth *oauth2.Config
}

// NewAuthHandler creates a new AuthHandler.
func NewAuthHandler(
	authManager services.Authenticator,
	users services.UserServiceProvider,
	tokens TokenIssuer,
	cache services.UserDetailsCache,
	messages *i18n.Messages,
	googleOAuth *oauth2.Config,
) *AuthHandler {
	return &AuthHandler{
		authManager: authManager,
		users:       users,
		tokens:      tokens,
		cache:       cache,
		messages:    messages,
		validate:    validator.New(),
		googleOAuth: googleOAuth,
	}
}

// AuthPayload defines the structure for login and signup requests.
type AuthPayload struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=6"`
}

// VerifyEmailPayload carries the email verification token.
type VerifyEmailPayload struct {
	Token string `json:"token" validate:"required"`
}

// UpdatePasswordPayload defines the structure for password change requests.
type UpdatePasswordPayload struct {
	CurrentPassword string `json:"currentPassword" validate:"required"`
	NewPassword     string `json:"newPassword" validate:"required,min=6"`
}

// SendEmailPayload defines the structure for password-reset email requests.
type SendEmailPayload struct {
	Email string `json:"email" validate:"required,email"`
}

// ResetPasswordPayload carries a reset token and the new password.
type ResetPasswordPayload struct {
	Token    string `json:"token" validate:"required"`
	Password string `json:"password" validate:"required,min=6"`
}

// decode parses and validates the request body into dst. It writes the error
// response itself and reports whether the handler should continue.
func (h *AuthHandler) decode(w http.ResponseWriter, r *http.Request, dst interface{}) bool {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return false
	}
	if err := h.validate.Struct(dst); err != nil {
		http.Error(w, "Validation failed: "+err.Error(), http.StatusBadRequest)
		return false
	}
	return true
}

// respondError maps known service error kinds to status + plain-text message.
// The email argument is interpolated into the user-not-found message; pass ""
// where no email is in play. Unknown errors become a generic 500.
func (h *AuthHandler) respondError(w http.ResponseWriter, r *http.Request, err error, email string) {
	lang := r.Header.Get("Accept-Language")
	switch {
	case errors.Is(err, services.ErrInvalidCredentials):
		http.Error(w, h.messages.Localize(lang, i18n.MsgInvalidCredentials, nil), http.StatusBadRequest)
	case errors.Is(err, services.ErrUserNotFound):
		msg := h.messages.Localize(lang, i18n.MsgUserByEmailNotFound, map[string]any{"Email": email})
		http.Error(w, msg, http.StatusBadRequest)
	case errors.Is(err, services.ErrTokenNotFound), errors.Is(err, services.ErrEmailTaken):
		http.Error(w, err.Error(), http.StatusBadRequest)
	case errors.Is(err, services.ErrMailDelivery):
		http.Error(w, err.Error(), http.StatusConflict)
	default:
		log.Error().Err(err).Str("path", r.URL.Path).Msg("Unhandled error in auth handler")
		http.Error(w, "Internal server error", http.StatusInternalServerError)
	}
}

func respondJSON(w http.ResponseWriter, status int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(body)
}

func respondToken(w http.ResponseWriter, token string) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.Write([]byte(token))
}

// GetMe returns the public view of the authenticated user.
func (h *AuthHandler) GetMe(w http.ResponseWriter, r *http.Request) {
	email, ok := auth.PrincipalFromContext(r.Context())
	if !ok {
		log.Error().Msg("Could not retrieve principal from context")
		http.Error(w, "Could not retrieve user from token", http.StatusInternalServerError)
		return
	}

	user, err := h.users.GetUserByEmail(r.Context(), email)
	if err != nil {
		h.respondError(w, r, err, email)
		return
	}

	respondJSON(w, http.StatusOK, user.View())
}

// SignInLocal handles email/password authentication and JWT generation. Any
// cached user-details entry for the email is dropped first so the credential
// check reads current state rather than a stale cache entry.
func (h *AuthHandler) SignInLocal(w http.ResponseWriter, r *http.Request) {
	var payload AuthPayload
	if !h.decode(w, r, &payload) {
		return
	}

	h.cache.Remove(payload.Email)

	if err := h.authManager.Authenticate(r.Context(), payload.Email, payload.Password); err != nil {
		log.Warn().Str("email", payload.Email).Msg("Failed authentication attempt")
		h.respondError(w, r, err, payload.Email)
		return
	}

	token, err := h.tokens.Generate(payload.Email)
	if err != nil {
		log.Error().Err(err).Str("email", payload.Email).Msg("Failed to generate JWT")
		http.Error(w, "Failed to generate token", http.StatusInternalServerError)
		return
	}

	respondToken(w, token)
}

// SignInGoogle redirects the client to Google's OAuth authorization endpoint.
// The callback is handled by the frontend, not by this service.
func (h *AuthHandler) SignInGoogle(w http.ResponseWriter, r *http.Request) {
	url := h.googleOAuth.AuthCodeURL(uuid.New().String())
	http.Redirect(w, r, url, http.StatusTemporaryRedirect)
}

// SignUp registers a new user, triggers the verification email, and returns
// a JWT for the new account.
func (h *AuthHandler) SignUp(w http.ResponseWriter, r *http.Request) {
	var payload AuthPayload
	if !h.decode(w, r, &payload) {
		return
	}

	if _, err := h.users.CreateUserAndSendEmail(r.Context(), payload.Email, payload.Password); err != nil {
		log.Warn().Err(err).Str("email", payload.Email).Msg("Failed to sign up user")
		h.respondError(w, r, err, payload.Email)
		return
	}

	token, err := h.tokens.Generate(payload.Email)
	if err != nil {
		log.Error().Err(err).Str("email", payload.Email).Msg("Failed to generate JWT")
		http.Error(w, "Failed to generate token", http.StatusInternalServerError)
		return
	}

	respondToken(w, token)
}

// VerifyEmail consumes an email verification token.
func (h *AuthHandler) VerifyEmail(w http.ResponseWriter, r *http.Request) {
	var payload VerifyEmailPayload
	if !h.decode(w, r, &payload) {
		return
	}

	if err := h.users.UpdateEmailVerification(r.Context(), payload.Token); err != nil {
		h.respondError(w, r, err, "")
		return
	}

	w.WriteHeader(http.StatusOK)
}

// UpdatePassword changes the authenticated user's password after checking the
// current one.
func (h *AuthHandler) UpdatePassword(w http.ResponseWriter, r *http.Request) {
	email, ok := auth.PrincipalFromContext(r.Context())
	if !ok {
		log.Error().Msg("Could not retrieve principal from context")
		http.Error(w, "Could not retrieve user from token", http.StatusInternalServerError)
		return
	}

	var payload UpdatePasswordPayload
	if !h.decode(w, r, &payload) {
		return
	}

	if err := h.users.UpdateUserPassword(r.Context(), email, payload.CurrentPassword, payload.NewPassword); err != nil {
		h.respondError(w, r, err, email)
		return
	}

	w.WriteHeader(http.StatusOK)
}

// SendPasswordResetEmail issues a reset token and mails it to the user.
func (h *AuthHandler) SendPasswordResetEmail(w http.ResponseWriter, r *http.Request) {
	var payload SendEmailPayload
	if !h.decode(w, r, &payload) {
		return
	}

	if _, err := h.users.GetUserByEmail(r.Context(), payload.Email); err != nil {
		h.respondError(w, r, err, payload.Email)
		return
	}

	if err := h.users.UpdatePasswordResetTokenAndSendEmail(r.Context(), payload.Email); err != nil {
		h.respondError(w, r, err, payload.Email)
		return
	}

	w.WriteHeader(http.StatusOK)
}

// ResetPassword consumes a reset token, sets the new password, and returns
// the public view of the user owning the token.
func (h *AuthHandler) ResetPassword(w http.ResponseWriter, r *http.Request) {
	var payload ResetPasswordPayload
	if !h.decode(w, r, &payload) {
		return
	}

	user, err := h.users.UpdateUserPasswordByResetToken(r.Context(), payload.Token, payload.Password)
	if err != nil {
		h.respondError(w, r, err, "")
		return
	}

	respondJSON(w, http.StatusOK, user.View())
}
