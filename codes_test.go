package authcore

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newCodeFixture(t *testing.T) (*codeService, *memoryUsers, *UserRecord, *time.Time) {
	t.Helper()

	users := newMemoryUsers()
	user, err := users.Create(context.Background(), CreateUserInput{
		Email: "john@example.com",
		Code:  VerificationCode{},
	})
	require.NoError(t, err)

	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	svc := newCodeService(users, CodeConfig{TTL: 30 * time.Minute, Digits: 6})
	svc.now = func() time.Time { return now }

	return svc, users, user, &now
}

func TestRedeemConsumesExactlyOnce(t *testing.T) {
	svc, _, user, _ := newCodeFixture(t)
	ctx := context.Background()

	code, err := svc.Issue(ctx, user, PurposeActivation)
	require.NoError(t, err)
	require.Len(t, code, 6)

	require.NoError(t, svc.Redeem(ctx, user, code, PurposeActivation))
	assert.True(t, user.Code.Used)

	err = svc.Redeem(ctx, user, code, PurposeActivation)
	assert.ErrorIs(t, err, ErrCodeUsed)
}

func TestRedeemExpiryAndMismatch(t *testing.T) {
	svc, _, user, now := newCodeFixture(t)
	ctx := context.Background()

	// Seed a known code issued at t=0 with a 30 minute TTL.
	record := VerificationCode{
		Code:      "482193",
		ExpiresAt: now.Add(30 * time.Minute),
		Purpose:   PurposeActivation,
	}
	require.NoError(t, svc.users.UpdateVerificationCode(ctx, user.ID, record))
	user.Code = &record

	// Wrong code at minute 1 is invalid, not expired.
	*now = now.Add(time.Minute)
	assert.ErrorIs(t, svc.Redeem(ctx, user, "000000", PurposeActivation), ErrCodeInvalid)

	// The right code at minute 31 is expired.
	*now = now.Add(30 * time.Minute)
	assert.ErrorIs(t, svc.Redeem(ctx, user, "482193", PurposeActivation), ErrCodeExpired)
}

func TestRedeemPurposeScoping(t *testing.T) {
	svc, _, user, _ := newCodeFixture(t)
	ctx := context.Background()

	code, err := svc.Issue(ctx, user, PurposeActivation)
	require.NoError(t, err)

	// Matching code string, wrong purpose.
	err = svc.Redeem(ctx, user, code, PurposePasswordReset)
	assert.ErrorIs(t, err, ErrCodeInvalid)

	// The code is still live for its own purpose.
	require.NoError(t, svc.Redeem(ctx, user, code, PurposeActivation))
}

func TestRedeemExpiredAndUsedReportsExpiry(t *testing.T) {
	svc, _, user, now := newCodeFixture(t)
	ctx := context.Background()

	code, err := svc.Issue(ctx, user, PurposePasswordReset)
	require.NoError(t, err)
	require.NoError(t, svc.Redeem(ctx, user, code, PurposePasswordReset))

	*now = now.Add(31 * time.Minute)
	err = svc.Redeem(ctx, user, code, PurposePasswordReset)
	assert.ErrorIs(t, err, ErrCodeExpired, "expiry is checked before consumed state")
}

func TestIssueOverwritesPriorCode(t *testing.T) {
	svc, _, user, _ := newCodeFixture(t)
	ctx := context.Background()

	first, err := svc.Issue(ctx, user, PurposeActivation)
	require.NoError(t, err)

	second, err := svc.Issue(ctx, user, PurposePasswordReset)
	require.NoError(t, err)

	// Only one live code per user: the first is gone even though it was
	// never consumed.
	if first != second {
		assert.ErrorIs(t, svc.Redeem(ctx, user, first, PurposeActivation), ErrCodeInvalid)
	}
	assert.False(t, user.Code.Used)
	assert.Equal(t, PurposePasswordReset, user.Code.Purpose)
	require.NoError(t, svc.Redeem(ctx, user, second, PurposePasswordReset))
}

func TestRedeemWithoutStoredCode(t *testing.T) {
	svc, _, user, _ := newCodeFixture(t)

	user.Code = nil
	assert.ErrorIs(t, svc.Redeem(context.Background(), user, "123456", PurposeActivation), ErrCodeInvalid)
}

func TestIssuePersistsThroughProvider(t *testing.T) {
	svc, users, user, _ := newCodeFixture(t)
	ctx := context.Background()

	code, err := svc.Issue(ctx, user, PurposeActivation)
	require.NoError(t, err)

	stored, err := users.FindByID(ctx, user.ID)
	require.NoError(t, err)
	require.NotNil(t, stored.Code)
	assert.Equal(t, code, stored.Code.Code)
	assert.False(t, stored.Code.Used)
	assert.Equal(t, PurposeActivation, stored.Code.Purpose)
}
