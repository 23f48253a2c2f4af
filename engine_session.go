package authcore

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"

	"github.com/lessonpath/authcore/revocation"
)

// Login verifies the email/password pair and issues a token pair. An
// unknown email and a wrong password are indistinguishable to the
// caller: both return [ErrInvalidCredentials].
func (e *Engine) Login(ctx context.Context, email, plaintext string) (TokenPair, error) {
	if e == nil || e.hasher == nil {
		return TokenPair{}, ErrEngineNotReady
	}
	if plaintext == "" {
		return TokenPair{}, ErrInvalidCredentials
	}

	user, err := e.userByEmail(ctx, email)
	switch {
	case errors.Is(err, ErrUserNotFound):
		return TokenPair{}, ErrInvalidCredentials
	case err != nil:
		return TokenPair{}, err
	}

	if !e.hasher.Verify(plaintext, user.PasswordHash) {
		return TokenPair{}, ErrInvalidCredentials
	}

	pair, err := e.issueTokenPair(ctx, user)
	if err != nil {
		return TokenPair{}, err
	}
	e.log.Info("login", zap.String("user_id", user.ID))
	return pair, nil
}

// Refresh rotates a refresh token: the presented token is consumed
// atomically and a brand-new pair is issued. The old token is
// permanently unusable from the moment of consumption, even if the new
// pair is never collected; refresh is not idempotent and a partial
// refresh must not be retried with the same token.
func (e *Engine) Refresh(ctx context.Context, refreshToken string) (TokenPair, error) {
	if e == nil || e.store == nil {
		return TokenPair{}, ErrEngineNotReady
	}

	userID, err := e.store.ConsumeRefresh(ctx, refreshToken)
	switch {
	case errors.Is(err, revocation.ErrNotFound):
		return TokenPair{}, ErrRefreshInvalid
	case err != nil:
		return TokenPair{}, e.backendFailure("refresh rotation", err)
	}

	// The owner row may be gone by now; that must look exactly like a bad
	// token to avoid leaking account state.
	user, err := e.userByID(ctx, userID)
	switch {
	case errors.Is(err, ErrUserNotFound):
		return TokenPair{}, ErrRefreshInvalid
	case err != nil:
		return TokenPair{}, err
	}

	pair, err := e.issueTokenPair(ctx, user)
	if err != nil {
		return TokenPair{}, err
	}
	e.log.Info("refresh rotated", zap.String("user_id", user.ID))
	return pair, nil
}

// Logout blacklists the access token's ID for its remaining lifetime.
// A well-formed token that already expired is a successful no-op; a
// token that fails signature verification or carries no ID returns
// [ErrTokenInvalid]. The refresh token is not touched here: clients drop
// it, and it ages out of the store on its own TTL.
func (e *Engine) Logout(ctx context.Context, accessToken string) error {
	if e == nil || e.tokens == nil {
		return ErrEngineNotReady
	}

	claims, err := e.tokens.ParseAccessAllowExpired(accessToken)
	if err != nil {
		return ErrTokenInvalid
	}
	if claims.ID == "" || claims.ExpiresAt == nil {
		return ErrTokenInvalid
	}

	remaining := time.Until(claims.ExpiresAt.Time)
	if remaining <= 0 {
		return nil
	}

	if err := e.store.Blacklist(ctx, claims.ID, remaining); err != nil {
		return e.backendFailure("token blacklist", err)
	}
	e.log.Info("logout", zap.String("user_id", claims.Subject))
	return nil
}
