package authcore

import (
	"context"
	"errors"
	"strconv"

	"go.uber.org/zap"
)

// Mail templates recognized by the MailSender.
const (
	mailTemplateActivation    = "register"
	mailTemplatePasswordReset = "password-reset"
)

// Activate redeems an activation code and flips the account active. An
// account that is already active still gets its pending code consumed
// and reports AlreadyActive without erroring, so repeated submissions of
// the same form are harmless.
func (e *Engine) Activate(ctx context.Context, userID, code string) (ActivationResult, error) {
	if e == nil || e.codes == nil {
		return ActivationResult{}, ErrEngineNotReady
	}

	user, err := e.userByID(ctx, userID)
	switch {
	case errors.Is(err, ErrUserNotFound):
		return ActivationResult{}, ErrCodeInvalid
	case err != nil:
		return ActivationResult{}, err
	}

	if err := e.codes.Redeem(ctx, user, code, PurposeActivation); err != nil {
		return ActivationResult{}, e.translateRedeemErr(err)
	}

	if user.Active {
		return ActivationResult{AlreadyActive: true}, nil
	}

	if err := e.users.UpdateActiveFlag(ctx, user.ID, true); err != nil {
		return ActivationResult{}, e.backendFailure("activation update", err)
	}
	e.log.Info("account activated", zap.String("user_id", user.ID))
	return ActivationResult{}, nil
}

// RequestCode issues a fresh code for the given purpose and mails it.
// An unknown email is a silent success: the response never reveals
// whether an account exists.
func (e *Engine) RequestCode(ctx context.Context, email string, purpose CodePurpose) error {
	if e == nil || e.codes == nil {
		return ErrEngineNotReady
	}
	if purpose != PurposeActivation && purpose != PurposePasswordReset {
		return ErrCodeInvalid
	}

	user, err := e.userByEmail(ctx, email)
	switch {
	case errors.Is(err, ErrUserNotFound):
		e.log.Info("code requested for unknown email", zap.String("purpose", string(purpose)))
		return nil
	case err != nil:
		return err
	}

	code, err := e.codes.Issue(ctx, user, purpose)
	if err != nil {
		return e.backendFailure("code issuance", err)
	}

	template := mailTemplateActivation
	if purpose == PurposePasswordReset {
		template = mailTemplatePasswordReset
	}
	e.deliverCode(user, code, template)
	e.log.Info("code issued", zap.String("user_id", user.ID), zap.String("purpose", string(purpose)))
	return nil
}

// ResetPassword redeems a password_reset code and stores a new hash. An
// unknown email reports [ErrCodeInvalid], the same failure as a wrong
// code, so the flow cannot be used for account enumeration.
func (e *Engine) ResetPassword(ctx context.Context, email, code, newPassword string) error {
	if e == nil || e.codes == nil {
		return ErrEngineNotReady
	}
	if newPassword == "" {
		return ErrCodeInvalid
	}

	user, err := e.userByEmail(ctx, email)
	switch {
	case errors.Is(err, ErrUserNotFound):
		return ErrCodeInvalid
	case err != nil:
		return err
	}

	if err := e.codes.Redeem(ctx, user, code, PurposePasswordReset); err != nil {
		return e.translateRedeemErr(err)
	}

	hash, err := e.hasher.Hash(newPassword)
	if err != nil {
		return e.backendFailure("password hashing", err)
	}
	if err := e.users.UpdatePasswordHash(ctx, user.ID, hash); err != nil {
		return e.backendFailure("password update", err)
	}
	e.log.Info("password reset", zap.String("user_id", user.ID))
	return nil
}

// translateRedeemErr keeps the code taxonomy as-is and reclassifies
// provider failures from the redeem path as backend failures.
func (e *Engine) translateRedeemErr(err error) error {
	switch {
	case errors.Is(err, ErrCodeInvalid), errors.Is(err, ErrCodeExpired), errors.Is(err, ErrCodeUsed):
		return err
	default:
		return e.backendFailure("code redemption", err)
	}
}

// deliverCode mails a code without blocking the calling flow. Delivery
// failure is logged and otherwise ignored; issuance has already been
// persisted and a resend will mint a new code.
func (e *Engine) deliverCode(user *UserRecord, code, template string) {
	if e.mail == nil {
		return
	}
	to := user.Email
	name := user.LastName
	ttl := strconv.Itoa(int(e.config.Code.TTL.Minutes()))
	go func() {
		err := e.mail.Send(to, template, map[string]string{
			"name": name,
			"code": code,
			"ttl":  ttl,
		})
		if err != nil {
			e.log.Warn("code mail delivery failed",
				zap.String("template", template),
				zap.Error(err))
		}
	}()
}
