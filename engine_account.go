package authcore

import (
	"context"
	"errors"

	"go.uber.org/zap"
)

// Register creates an inactive account with a pre-populated activation
// code and mails the code to the new address. Returns the new user ID.
func (e *Engine) Register(ctx context.Context, input RegisterInput) (string, error) {
	if e == nil || e.users == nil {
		return "", ErrEngineNotReady
	}
	if input.Email == "" || input.Password == "" {
		return "", ErrInvalidCredentials
	}

	email := normalizeEmail(input.Email)
	exists, err := e.users.ExistsByEmail(ctx, email)
	if err != nil {
		return "", e.backendFailure("email existence check", err)
	}
	if exists {
		return "", ErrDuplicateEmail
	}

	hash, err := e.hasher.Hash(input.Password)
	if err != nil {
		return "", e.backendFailure("password hashing", err)
	}

	code, err := e.codes.newRecord(PurposeActivation)
	if err != nil {
		return "", e.backendFailure("code generation", err)
	}

	user, err := e.users.Create(ctx, CreateUserInput{
		Email:        email,
		FirstName:    input.FirstName,
		LastName:     input.LastName,
		Phone:        input.Phone,
		PasswordHash: hash,
		Role:         e.config.DefaultRole,
		Code:         code,
	})
	switch {
	case errors.Is(err, ErrDuplicateEmail):
		return "", ErrDuplicateEmail
	case err != nil:
		return "", e.backendFailure("user creation", err)
	}

	e.deliverCode(user, code.Code, mailTemplateActivation)
	e.log.Info("account registered", zap.String("user_id", user.ID))
	return user.ID, nil
}

// ChangePassword replaces the stored hash after verifying the current
// password. A wrong current password, like an unknown principal, is
// [ErrInvalidCredentials].
func (e *Engine) ChangePassword(ctx context.Context, userID, current, next string) error {
	if e == nil || e.hasher == nil {
		return ErrEngineNotReady
	}
	if next == "" {
		return ErrInvalidCredentials
	}

	user, err := e.userByID(ctx, userID)
	switch {
	case errors.Is(err, ErrUserNotFound):
		return ErrInvalidCredentials
	case err != nil:
		return err
	}

	if !e.hasher.Verify(current, user.PasswordHash) {
		return ErrInvalidCredentials
	}

	hash, err := e.hasher.Hash(next)
	if err != nil {
		return e.backendFailure("password hashing", err)
	}
	if err := e.users.UpdatePasswordHash(ctx, user.ID, hash); err != nil {
		return e.backendFailure("password update", err)
	}
	e.log.Info("password changed", zap.String("user_id", user.ID))
	return nil
}
