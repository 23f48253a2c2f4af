package authcore

import "errors"

var (
	// ErrInvalidCredentials is returned by Login and ChangePassword when the
	// email/password pair does not match. It deliberately does not
	// distinguish an unknown email from a wrong password.
	ErrInvalidCredentials = errors.New("invalid credentials")

	// ErrRefreshInvalid is returned by Refresh when the presented refresh
	// token is unknown, already rotated, or expired.
	ErrRefreshInvalid = errors.New("invalid refresh token")

	// ErrTokenInvalid is returned when an access token fails signature
	// verification, carries no token ID, or has been blacklisted.
	ErrTokenInvalid = errors.New("invalid token")

	// ErrCodeInvalid is returned when a verification code does not match the
	// stored code or was issued for a different purpose.
	ErrCodeInvalid = errors.New("invalid verification code")

	// ErrCodeExpired is returned when a verification code is past its
	// expiry. An expired code reports expiry even if it was also consumed.
	ErrCodeExpired = errors.New("verification code expired")

	// ErrCodeUsed is returned when a live verification code has already
	// been consumed.
	ErrCodeUsed = errors.New("verification code already used")

	// ErrDuplicateEmail is returned by Register when the email is taken.
	ErrDuplicateEmail = errors.New("email already registered")

	// ErrUserNotFound is the sentinel a UserProvider must return when no
	// principal matches. The engine translates it before it reaches a
	// caller; it is never part of a public result.
	ErrUserNotFound = errors.New("user not found")

	// ErrBackendUnavailable wraps infrastructure failures (Redis or user
	// store unreachable) so the boundary can answer with a 5xx instead of
	// an authentication failure.
	ErrBackendUnavailable = errors.New("auth backend unavailable")

	// ErrEngineNotReady is returned when an Engine method is called on a
	// nil or incompletely built engine.
	ErrEngineNotReady = errors.New("engine not initialized")
)
