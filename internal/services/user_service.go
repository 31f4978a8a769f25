package services

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"golang.org/x/crypto/bcrypt"

	"github.com/isdelr/accounts-be/internal/models"
)

// Mailer dispatches the emails the user service triggers.
type Mailer interface {
	SendVerificationEmail(ctx context.Context, to, token string) error
	SendPasswordResetEmail(ctx context.Context, to, token string) error
}

// UserServiceProvider defines the interface for user services.
type UserServiceProvider interface {
	GetUserByEmail(ctx context.Context, email string) (models.User, error)
	CreateUserAndSendEmail(ctx context.Context, email, password string) (models.User, error)
	UpdateEmailVerification(ctx context.Context, token string) error
	UpdateUserPassword(ctx context.Context, email, currentPassword, newPassword string) error
	UpdatePasswordResetTokenAndSendEmail(ctx context.Context, email string) error
	UpdateUserPasswordByResetToken(ctx context.Context, token, newPassword string) (models.User, error)
}

// UserService provides business logic for user accounts: persistence,
// password hashing, and the verification/reset token lifecycle.
type UserService struct {
	db              *sql.DB
	mailer          Mailer
	verificationTTL time.Duration
	resetTTL        time.Duration
}

// NewUserService creates a new UserService.
func NewUserService(db *sql.DB, mailer Mailer, verificationTTL, resetTTL time.Duration) *UserService {
	return &UserService{
		db:              db,
		mailer:          mailer,
		verificationTTL: verificationTTL,
		resetTTL:        resetTTL,
	}
}

// GetUserByEmail retrieves a single user by their email, including the password hash.
func (s *UserService) GetUserByEmail(ctx context.Context, email string) (models.User, error) {
	var user models.User
	row := s.db.QueryRowContext(ctx,
		"SELECT id, email, password_hash, email_verified, created_at, updated_at FROM users WHERE email = ?", email)
	err := row.Scan(&user.ID, &user.Email, &user.PasswordHash, &user.EmailVerified, &user.CreatedAt, &user.UpdatedAt)
	if err != nil {
		if err == sql.ErrNoRows {
			return models.User{}, ErrUserNotFound
		}
		return models.User{}, err
	}
	return user, nil
}

// CreateUserAndSendEmail creates a new user with a hashed password, issues an
// email verification token, and dispatches the verification email. The user
// row is kept even when the email cannot be sent; callers see ErrMailDelivery
// and the client can request a new verification email later.
func (s *UserService) CreateUserAndSendEmail(ctx context.Context, email, password string) (models.User, error) {
	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return models.User{}, fmt.Errorf("failed to hash password: %w", err)
	}

	user := models.User{
		ID:           uuid.New().String(),
		Email:        email,
		PasswordHash: string(hashedPassword),
	}
	verificationToken := uuid.New().String()
	expiresAt := time.Now().Add(s.verificationTTL).Unix()

	var exists int
	if err := s.db.QueryRowContext(ctx,
		"SELECT COUNT(1) FROM users WHERE email = ?", email).Scan(&exists); err != nil {
		return models.User{}, err
	}
	if exists > 0 {
		return models.User{}, ErrEmailTaken
	}

	_, err = s.db.ExecContext(ctx,
		"INSERT INTO users(id, email, password_hash, email_verification_token, email_verification_expires_at) VALUES(?, ?, ?, ?, ?)",
		user.ID, user.Email, user.PasswordHash, verificationToken, expiresAt)
	if err != nil {
		return models.User{}, err
	}

	if err := s.mailer.SendVerificationEmail(ctx, email, verificationToken); err != nil {
		log.Error().Err(err).Str("email", email).Msg("Failed to send verification email")
		return user, fmt.Errorf("%w: %v", ErrMailDelivery, err)
	}

	return user, nil
}

// UpdateEmailVerification marks the user owning the token as verified and
// consumes the token. A second call with the same token fails.
func (s *UserService) UpdateEmailVerification(ctx context.Context, token string) error {
	res, err := s.db.ExecContext(ctx,
		`UPDATE users
		 SET email_verified = 1,
		     email_verification_token = NULL,
		     email_verification_expires_at = NULL,
		     updated_at = CURRENT_TIMESTAMP
		 WHERE email_verification_token = ? AND email_verification_expires_at > ?`,
		token, time.Now().Unix())
	if err != nil {
		return err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return fmt.Errorf("verification %w", ErrTokenNotFound)
	}
	return nil
}

// UpdateUserPassword verifies the current password, then hashes and sets a new one.
func (s *UserService) UpdateUserPassword(ctx context.Context, email, currentPassword, newPassword string) error {
	var hash string
	row := s.db.QueryRowContext(ctx, "SELECT password_hash FROM users WHERE email = ?", email)
	if err := row.Scan(&hash); err != nil {
		if err == sql.ErrNoRows {
			return ErrUserNotFound
		}
		return err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(currentPassword)); err != nil {
		return ErrInvalidCredentials
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(newPassword), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("failed to hash new password: %w", err)
	}

	_, err = s.db.ExecContext(ctx,
		"UPDATE users SET password_hash = ?, updated_at = CURRENT_TIMESTAMP WHERE email = ?",
		string(hashedPassword), email)
	return err
}

// UpdatePasswordResetTokenAndSendEmail issues a reset token for the user and
// dispatches the reset email. A new request replaces any outstanding token.
func (s *UserService) UpdatePasswordResetTokenAndSendEmail(ctx context.Context, email string) error {
	resetToken := uuid.New().String()
	expiresAt := time.Now().Add(s.resetTTL).Unix()

	res, err := s.db.ExecContext(ctx,
		"UPDATE users SET password_reset_token = ?, password_reset_expires_at = ?, updated_at = CURRENT_TIMESTAMP WHERE email = ?",
		resetToken, expiresAt, email)
	if err != nil {
		return err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return ErrUserNotFound
	}

	if err := s.mailer.SendPasswordResetEmail(ctx, email, resetToken); err != nil {
		log.Error().Err(err).Str("email", email).Msg("Failed to send password reset email")
		return fmt.Errorf("%w: %v", ErrMailDelivery, err)
	}
	return nil
}

// UpdateUserPasswordByResetToken sets a new password for the user owning the
// reset token, consumes the token, and returns the user.
func (s *UserService) UpdateUserPasswordByResetToken(ctx context.Context, token, newPassword string) (models.User, error) {
	var email string
	row := s.db.QueryRowContext(ctx,
		"SELECT email FROM users WHERE password_reset_token = ? AND password_reset_expires_at > ?",
		token, time.Now().Unix())
	if err := row.Scan(&email); err != nil {
		if err == sql.ErrNoRows {
			return models.User{}, fmt.Errorf("reset %w", ErrTokenNotFound)
		}
		return models.User{}, err
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(newPassword), bcrypt.DefaultCost)
	if err != nil {
		return models.User{}, fmt.Errorf("failed to hash new password: %w", err)
	}

	_, err = s.db.ExecContext(ctx,
		`UPDATE users
		 SET password_hash = ?,
		     password_reset_token = NULL,
		     password_reset_expires_at = NULL,
		     updated_at = CURRENT_TIMESTAMP
		 WHERE email = ?`,
		string(hashedPassword), email)
	if err != nil {
		return models.User{}, err
	}

	return s.GetUserByEmail(ctx, email)
}

// PurgeExpiredTokens clears verification and reset tokens past their expiry
// and returns how many rows were touched. Run periodically by the janitor.
func (s *UserService) PurgeExpiredTokens(ctx context.Context) (int64, error) {
	now := time.Now().Unix()
	res, err := s.db.ExecContext(ctx,
		`UPDATE users
		 SET email_verification_token = CASE WHEN email_verification_expires_at <= ? THEN NULL ELSE email_verification_token END,
		     email_verification_expires_at = CASE WHEN email_verification_expires_at <= ? THEN NULL ELSE email_verification_expires_at END,
		     password_reset_token = CASE WHEN password_reset_expires_at <= ? THEN NULL ELSE password_reset_token END,
		     password_reset_expires_at = CASE WHEN password_reset_expires_at <= ? THEN NULL ELSE password_reset_expires_at END
		 WHERE (email_verification_expires_at IS NOT NULL AND email_verification_expires_at <= ?)
		    OR (password_reset_expires_at IS NOT NULL AND password_reset_expires_at <= ?)`,
		now, now, now, now, now, now)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}
