package service

import (
	"context"
	"testing"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/codecircle/recruit/internal/applicant/domain"
	"github.com/codecircle/recruit/internal/applicant/repository"
	"github.com/codecircle/recruit/internal/clock"
	"github.com/codecircle/recruit/internal/config"
	"github.com/codecircle/recruit/internal/providers/email"
	"github.com/codecircle/recruit/internal/token"
	"github.com/codecircle/recruit/pkg/db"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

func newTestService(t *testing.T, clk clock.Clock) (domain.Service, *gorm.DB) {
	t.Helper()

	conn, err := db.NewTest()
	require.NoError(t, err)
	require.NoError(t, conn.AutoMigrate(&domain.Applicant{}, &domain.Session{}))

	node, err := snowflake.NewNode(1)
	require.NoError(t, err)

	holder, err := config.NewPortalConfigHolder()
	require.NoError(t, err)

	svc := New(Params{
		DB:     conn,
		Log:    zap.NewNop(),
		GenID:  node,
		Clock:  clk,
		Repo:   repository.Provide(),
		Email:  &email.NoOpProvider{},
		Cfg:    config.Config{SessionTTLHours: 24, BaseURL: "http://localhost:8080"},
		Portal: holder,
	})
	return svc, conn
}

func register(t *testing.T, svc domain.Service, addr string) domain.Applicant {
	t.Helper()
	applicant, err := svc.Register(context.Background(), domain.RegisterRequest{
		Email:    addr,
		Name:     "Dana Miller",
		Phone:    "555-0101",
		Password: "correct-horse",
	})
	require.NoError(t, err)
	return applicant
}

func storedApplicant(t *testing.T, conn *gorm.DB, id snowflake.ID) domain.Applicant {
	t.Helper()
	var a domain.Applicant
	require.NoError(t, conn.First(&a, "id = ?", id).Error)
	return a
}

func TestRegisterAndVerifyEmail(t *testing.T) {
	clk := clock.NewFakeClock(time.Date(2024, 1, 1, 9, 0, 0, 0, time.UTC))
	svc, conn := newTestService(t, clk)
	ctx := context.Background()

	applicant := register(t, svc, "dana@example.com")
	assert.False(t, applicant.IsEmailVerified)

	stored := storedApplicant(t, conn, applicant.ID)
	require.Len(t, stored.VerificationCode, 6)

	err := svc.VerifyEmail(ctx, applicant.ID.String(), "000000")
	if stored.VerificationCode == "000000" {
		t.Skip("generated code collided with the guess")
	}
	assert.ErrorIs(t, err, token.ErrMismatch)

	require.NoError(t, svc.VerifyEmail(ctx, applicant.ID.String(), stored.VerificationCode))

	after := storedApplicant(t, conn, applicant.ID)
	assert.True(t, after.IsEmailVerified)
	assert.Empty(t, after.VerificationCode)
	assert.Nil(t, after.VerificationIssuedAt)

	err = svc.VerifyEmail(ctx, applicant.ID.String(), stored.VerificationCode)
	assert.ErrorIs(t, err, domain.ErrAlreadyVerified)
}

func TestVerificationCodeExpiry(t *testing.T) {
	clk := clock.NewFakeClock(time.Date(2024, 1, 1, 9, 0, 0, 0, time.UTC))
	svc, conn := newTestService(t, clk)
	ctx := context.Background()

	applicant := register(t, svc, "dana@example.com")
	stored := storedApplicant(t, conn, applicant.ID)

	// Valid exactly at the 30 minute boundary.
	clk.Advance(30 * time.Minute)
	require.NoError(t, svc.VerifyEmail(ctx, applicant.ID.String(), stored.VerificationCode))
}

func TestVerificationCodeExpired(t *testing.T) {
	clk := clock.NewFakeClock(time.Date(2024, 1, 1, 9, 0, 0, 0, time.UTC))
	svc, conn := newTestService(t, clk)
	ctx := context.Background()

	applicant := register(t, svc, "dana@example.com")
	stored := storedApplicant(t, conn, applicant.ID)

	clk.Advance(30*time.Minute + time.Second)
	err := svc.VerifyEmail(ctx, applicant.ID.String(), stored.VerificationCode)
	assert.ErrorIs(t, err, token.ErrExpired)
}

func TestRegisterDuplicateEmail(t *testing.T) {
	clk := clock.NewFakeClock(time.Date(2024, 1, 1, 9, 0, 0, 0, time.UTC))
	svc, _ := newTestService(t, clk)

	register(t, svc, "dana@example.com")
	_, err := svc.Register(context.Background(), domain.RegisterRequest{
		Email:    "Dana@Example.com",
		Name:     "Other Dana",
		Password: "another-pass",
	})
	assert.ErrorIs(t, err, domain.ErrEmailTaken)
}

func TestRegisterValidation(t *testing.T) {
	clk := clock.NewFakeClock(time.Date(2024, 1, 1, 9, 0, 0, 0, time.UTC))
	svc, _ := newTestService(t, clk)
	ctx := context.Background()

	_, err := svc.Register(ctx, domain.RegisterRequest{Email: "not-an-email", Name: "X", Password: "long-enough"})
	assert.ErrorIs(t, err, domain.ErrInvalidEmail)

	_, err = svc.Register(ctx, domain.RegisterRequest{Email: "a@example.com", Name: "  ", Password: "long-enough"})
	assert.ErrorIs(t, err, domain.ErrInvalidName)

	_, err = svc.Register(ctx, domain.RegisterRequest{Email: "a@example.com", Name: "A", Password: "short"})
	assert.ErrorIs(t, err, domain.ErrWeakPassword)
}

func TestLoginAndAuthenticate(t *testing.T) {
	clk := clock.NewFakeClock(time.Date(2024, 1, 1, 9, 0, 0, 0, time.UTC))
	svc, _ := newTestService(t, clk)
	ctx := context.Background()

	applicant := register(t, svc, "dana@example.com")

	_, err := svc.Login(ctx, "dana@example.com", "wrong-password")
	assert.ErrorIs(t, err, domain.ErrInvalidCredentials)

	_, err = svc.Login(ctx, "nobody@example.com", "correct-horse")
	assert.ErrorIs(t, err, domain.ErrInvalidCredentials)

	result, err := svc.Login(ctx, "dana@example.com", "correct-horse")
	require.NoError(t, err)
	assert.NotEmpty(t, result.Token)

	resolved, err := svc.Authenticate(ctx, result.Token)
	require.NoError(t, err)
	assert.Equal(t, applicant.ID, resolved.ID)

	require.NoError(t, svc.Logout(ctx, result.Token))
	_, err = svc.Authenticate(ctx, result.Token)
	assert.ErrorIs(t, err, domain.ErrSessionNotFound)
}

func TestSessionExpiry(t *testing.T) {
	clk := clock.NewFakeClock(time.Date(2024, 1, 1, 9, 0, 0, 0, time.UTC))
	svc, _ := newTestService(t, clk)
	ctx := context.Background()

	register(t, svc, "dana@example.com")
	result, err := svc.Login(ctx, "dana@example.com", "correct-horse")
	require.NoError(t, err)

	clk.Advance(24*time.Hour + time.Second)
	_, err = svc.Authenticate(ctx, result.Token)
	assert.ErrorIs(t, err, domain.ErrSessionExpired)
}

func TestResendVerificationReplacesCode(t *testing.T) {
	clk := clock.NewFakeClock(time.Date(2024, 1, 1, 9, 0, 0, 0, time.UTC))
	svc, conn := newTestService(t, clk)
	ctx := context.Background()

	applicant := register(t, svc, "dana@example.com")
	first := storedApplicant(t, conn, applicant.ID)

	clk.Advance(45 * time.Minute)
	require.NoError(t, svc.ResendVerification(ctx, applicant.ID.String()))

	second := storedApplicant(t, conn, applicant.ID)
	require.NotNil(t, second.VerificationIssuedAt)
	assert.True(t, second.VerificationIssuedAt.After(*first.VerificationIssuedAt))

	// The fresh code verifies even though the first one is expired.
	require.NoError(t, svc.VerifyEmail(ctx, applicant.ID.String(), second.VerificationCode))
}

func TestPasswordResetFlow(t *testing.T) {
	clk := clock.NewFakeClock(time.Date(2024, 1, 1, 9, 0, 0, 0, time.UTC))
	svc, conn := newTestService(t, clk)
	ctx := context.Background()

	applicant := register(t, svc, "dana@example.com")
	session, err := svc.Login(ctx, "dana@example.com", "correct-horse")
	require.NoError(t, err)

	// Unknown addresses do not error.
	require.NoError(t, svc.RequestPasswordReset(ctx, "nobody@example.com"))

	require.NoError(t, svc.RequestPasswordReset(ctx, "dana@example.com"))
	stored := storedApplicant(t, conn, applicant.ID)
	require.NotEmpty(t, stored.ResetToken)

	err = svc.ConfirmPasswordReset(ctx, "bogus-token", "new-password-1")
	assert.ErrorIs(t, err, token.ErrMismatch)

	require.NoError(t, svc.ConfirmPasswordReset(ctx, stored.ResetToken, "new-password-1"))

	// Old password no longer works and open sessions are revoked.
	_, err = svc.Login(ctx, "dana@example.com", "correct-horse")
	assert.ErrorIs(t, err, domain.ErrInvalidCredentials)
	_, err = svc.Authenticate(ctx, session.Token)
	assert.ErrorIs(t, err, domain.ErrSessionNotFound)

	_, err = svc.Login(ctx, "dana@example.com", "new-password-1")
	assert.NoError(t, err)
}

func TestPasswordResetTokenExpiry(t *testing.T) {
	clk := clock.NewFakeClock(time.Date(2024, 1, 1, 9, 0, 0, 0, time.UTC))
	svc, conn := newTestService(t, clk)
	ctx := context.Background()

	applicant := register(t, svc, "dana@example.com")
	require.NoError(t, svc.RequestPasswordReset(ctx, "dana@example.com"))
	stored := storedApplicant(t, conn, applicant.ID)

	// Valid exactly at the 24 hour boundary.
	clk.Advance(24 * time.Hour)
	require.NoError(t, svc.ConfirmPasswordReset(ctx, stored.ResetToken, "new-password-1"))

	require.NoError(t, svc.RequestPasswordReset(ctx, "dana@example.com"))
	stored = storedApplicant(t, conn, applicant.ID)

	clk.Advance(24*time.Hour + time.Second)
	err := svc.ConfirmPasswordReset(ctx, stored.ResetToken, "new-password-2")
	assert.ErrorIs(t, err, token.ErrExpired)
}
