package services

import "errors"

// Error kinds returned by the service layer. The API layer matches on these
// to pick a status code; everything else falls through to a generic 500.
var (
	// ErrInvalidCredentials covers both an unknown email and a wrong
	// password so callers cannot tell which field was off.
	ErrInvalidCredentials = errors.New("invalid credentials")

	// ErrUserNotFound is returned when a lookup by email matches no user.
	ErrUserNotFound = errors.New("user not found")

	// ErrTokenNotFound is returned when a verification or reset token is
	// unknown, already used, or expired.
	ErrTokenNotFound = errors.New("token not found or expired")

	// ErrMailDelivery is returned when an outgoing email could not be sent.
	ErrMailDelivery = errors.New("failed to send email")

	// ErrEmailTaken is returned on signup with an already registered email.
	ErrEmailTaken = errors.New("email is already registered")
)
