package authcore

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/lessonpath/authcore/jwt"
	"github.com/lessonpath/authcore/password"
	"github.com/lessonpath/authcore/revocation"
)

// Engine orchestrates the credential and token lifecycle. Construct one
// through [Builder]; after Build it is immutable and safe for concurrent
// use. The engine holds no mutable in-process state: everything
// ephemeral lives in Redis, everything durable behind the UserProvider.
type Engine struct {
	config Config
	tokens *jwt.Manager
	hasher *password.Hasher
	store  *revocation.Store
	codes  *codeService
	users  UserProvider
	mail   MailSender
	log    *zap.Logger
}

// Validate verifies an access token and checks it against the
// blacklist. It runs on every authenticated request, which is how logout
// takes effect immediately instead of waiting for natural expiry.
func (e *Engine) Validate(ctx context.Context, accessToken string) (*AuthResult, error) {
	if e == nil || e.tokens == nil {
		return nil, ErrEngineNotReady
	}

	claims, err := e.tokens.ParseAccess(accessToken)
	if err != nil {
		return nil, ErrTokenInvalid
	}
	if claims.ID == "" {
		return nil, ErrTokenInvalid
	}

	blacklisted, err := e.store.IsBlacklisted(ctx, claims.ID)
	if err != nil {
		return nil, e.backendFailure("blacklist lookup", err)
	}
	if blacklisted {
		return nil, ErrTokenInvalid
	}

	return &AuthResult{
		UserID: claims.Subject,
		Email:  claims.Email,
		Role:   claims.Role,
	}, nil
}

// issueTokenPair mints a signed access token and an opaque refresh
// token for user. The access token's jti and the refresh jti are
// independent random IDs. Signing and refresh persistence touch disjoint
// state, so they run concurrently.
func (e *Engine) issueTokenPair(ctx context.Context, user *UserRecord) (TokenPair, error) {
	accessJTI := uuid.NewString()
	refreshJTI := uuid.NewString()

	var (
		access  string
		signErr error
	)
	done := make(chan struct{})
	go func() {
		defer close(done)
		access, signErr = e.tokens.CreateAccess(user.ID, user.Email, user.Role, accessJTI)
	}()

	storeErr := e.store.SaveRefresh(ctx, refreshJTI, user.ID, e.config.Token.RefreshTTL)
	<-done

	if signErr != nil {
		return TokenPair{}, fmt.Errorf("access token signing: %w", signErr)
	}
	if storeErr != nil {
		return TokenPair{}, e.backendFailure("refresh token persistence", storeErr)
	}

	return TokenPair{AccessToken: access, RefreshToken: refreshJTI}, nil
}

// backendFailure logs an infrastructure error and reclassifies it so
// callers can answer with a transient failure instead of an
// authentication failure.
func (e *Engine) backendFailure(op string, err error) error {
	e.log.Error("auth backend failure", zap.String("op", op), zap.Error(err))
	return fmt.Errorf("%w: %s", ErrBackendUnavailable, op)
}

// userByEmail looks a principal up by normalized email. Absence comes
// back as ErrUserNotFound for the caller to translate; any other
// provider error is a backend failure.
func (e *Engine) userByEmail(ctx context.Context, email string) (*UserRecord, error) {
	user, err := e.users.FindByEmail(ctx, normalizeEmail(email))
	switch {
	case errors.Is(err, ErrUserNotFound):
		return nil, ErrUserNotFound
	case err != nil:
		return nil, e.backendFailure("user lookup", err)
	}
	return user, nil
}

func (e *Engine) userByID(ctx context.Context, id string) (*UserRecord, error) {
	user, err := e.users.FindByID(ctx, id)
	switch {
	case errors.Is(err, ErrUserNotFound):
		return nil, ErrUserNotFound
	case err != nil:
		return nil, e.backendFailure("user lookup", err)
	}
	return user, nil
}
