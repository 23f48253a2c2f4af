package authcore

import (
	"context"
	"strings"
	"time"
)

// CodePurpose scopes a verification code to the flow it was issued for.
// A code issued for one purpose never redeems under another.
type CodePurpose string

const (
	// PurposeActivation marks codes issued for account activation.
	PurposeActivation CodePurpose = "activation"
	// PurposePasswordReset marks codes issued for password reset.
	PurposePasswordReset CodePurpose = "password_reset"
)

// VerificationCode is the single live code attached to a user record.
// Issuing a new code overwrites the previous one regardless of its
// consumed state.
type VerificationCode struct {
	Code      string
	ExpiresAt time.Time
	Used      bool
	Purpose   CodePurpose
}

// UserRecord is the principal as seen by the engine. It carries the
// credential hash, the role that rides in access tokens, the active
// flag, and the embedded verification code, if any.
type UserRecord struct {
	ID           string
	Email        string
	FirstName    string
	LastName     string
	Phone        string
	PasswordHash string
	Role         string
	Active       bool
	Code         *VerificationCode
}

// CreateUserInput is the input for [UserProvider.Create]. The engine
// pre-populates PasswordHash and the activation Code.
type CreateUserInput struct {
	Email        string
	FirstName    string
	LastName     string
	Phone        string
	PasswordHash string
	Role         string
	Code         VerificationCode
}

// RegisterInput carries the plaintext registration fields accepted by
// [Engine.Register].
type RegisterInput struct {
	Email     string
	Password  string
	FirstName string
	LastName  string
	Phone     string
}

// TokenPair is the result of login and refresh: a signed bearer access
// token and an opaque refresh token. The refresh token is intended for a
// same-site, http-only, secure cookie with the configured refresh TTL.
type TokenPair struct {
	AccessToken  string
	RefreshToken string
}

// AuthResult identifies the authenticated principal behind a validated
// access token.
type AuthResult struct {
	UserID string
	Email  string
	Role   string
}

// ActivationResult is returned by [Engine.Activate]. AlreadyActive is a
// non-error outcome: the code was consumed but the account needed no
// state change.
type ActivationResult struct {
	AlreadyActive bool
}

// UserProvider is the principal-lookup collaborator the engine is built
// with. Implementations must return [ErrUserNotFound] when no record
// matches; any other error is treated as an infrastructure failure.
type UserProvider interface {
	FindByEmail(ctx context.Context, email string) (*UserRecord, error)
	FindByID(ctx context.Context, id string) (*UserRecord, error)
	ExistsByEmail(ctx context.Context, email string) (bool, error)
	Create(ctx context.Context, input CreateUserInput) (*UserRecord, error)
	UpdatePasswordHash(ctx context.Context, id, hash string) error
	UpdateVerificationCode(ctx context.Context, id string, code VerificationCode) error
	UpdateActiveFlag(ctx context.Context, id string, active bool) error
}

// MailSender delivers verification codes out of band. Calls are
// fire-and-forget from the engine's point of view: a delivery failure
// never rolls back code issuance.
type MailSender interface {
	Send(to, template string, data map[string]string) error
}

// normalizeEmail canonicalizes an address before lookup or storage.
func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
