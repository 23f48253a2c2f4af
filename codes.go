package authcore

import (
	"context"
	"crypto/subtle"
	"fmt"
	"time"

	"github.com/lessonpath/authcore/internal"
)

// codeService issues and redeems the purpose-scoped verification codes
// embedded in user records. A user has at most one live code; issuing
// overwrites whatever was there, consumed or not.
type codeService struct {
	users  UserProvider
	ttl    time.Duration
	digits int
	now    func() time.Time
}

func newCodeService(users UserProvider, cfg CodeConfig) *codeService {
	return &codeService{
		users:  users,
		ttl:    cfg.TTL,
		digits: cfg.Digits,
		now:    time.Now,
	}
}

// newRecord generates a fresh unconsumed code record without persisting
// it. Register embeds the record in the user row it creates.
func (s *codeService) newRecord(purpose CodePurpose) (VerificationCode, error) {
	code, err := internal.NewCode(s.digits)
	if err != nil {
		return VerificationCode{}, fmt.Errorf("code generation: %w", err)
	}
	return VerificationCode{
		Code:      code,
		ExpiresAt: s.now().Add(s.ttl),
		Purpose:   purpose,
	}, nil
}

// Issue attaches a new code to the user and returns the plaintext for
// out-of-band delivery.
func (s *codeService) Issue(ctx context.Context, user *UserRecord, purpose CodePurpose) (string, error) {
	record, err := s.newRecord(purpose)
	if err != nil {
		return "", err
	}
	if err := s.users.UpdateVerificationCode(ctx, user.ID, record); err != nil {
		return "", err
	}
	user.Code = &record
	return record.Code, nil
}

// Redeem consumes the user's live code. Checks run in a fixed order:
// match and purpose, then expiry, then consumed state, so an expired and
// already-used code reports expiry. On success the consumed flag is
// persisted before returning.
func (s *codeService) Redeem(ctx context.Context, user *UserRecord, supplied string, purpose CodePurpose) error {
	stored := user.Code
	if stored == nil || stored.Code == "" {
		return ErrCodeInvalid
	}
	if subtle.ConstantTimeCompare([]byte(stored.Code), []byte(supplied)) != 1 {
		return ErrCodeInvalid
	}
	if stored.Purpose != purpose {
		return ErrCodeInvalid
	}
	if !s.now().Before(stored.ExpiresAt) {
		return ErrCodeExpired
	}
	if stored.Used {
		return ErrCodeUsed
	}

	consumed := *stored
	consumed.Used = true
	if err := s.users.UpdateVerificationCode(ctx, user.ID, consumed); err != nil {
		return err
	}
	user.Code = &consumed
	return nil
}
