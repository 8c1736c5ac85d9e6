// Package token issues and checks the short-lived single-use codes used
// for email verification and password resets. Validation is a pure
// decision; callers clear the stored token after a successful check.
package token

import (
	"crypto/rand"
	"errors"
	"fmt"
	"math/big"
	"time"

	"github.com/google/uuid"
)

const (
	// EmailVerificationTTL bounds the 6-digit email code.
	EmailVerificationTTL = 30 * time.Minute
	// PasswordResetTTL bounds the password-reset token.
	PasswordResetTTL = 24 * time.Hour
)

const (
	KindEmailVerification = "email_verification"
	KindPasswordReset     = "password_reset"
)

var (
	ErrNotIssued = errors.New("token_not_issued")
	ErrExpired   = errors.New("token_expired")
	ErrMismatch  = errors.New("token_mismatch")
)

const codeDigits = 6

// IssueCode generates a 6-decimal-digit verification code.
func IssueCode(now time.Time) (string, time.Time, error) {
	max := big.NewInt(1)
	for i := 0; i < codeDigits; i++ {
		max.Mul(max, big.NewInt(10))
	}
	n, err := rand.Int(rand.Reader, max)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("generate verification code: %w", err)
	}
	return fmt.Sprintf("%0*d", codeDigits, n), now.UTC(), nil
}

// IssueResetToken generates an opaque password-reset token.
func IssueResetToken(now time.Time) (string, time.Time) {
	return uuid.NewString(), now.UTC()
}

// Validate checks a submitted value against the stored token and its
// issuance time. A token is valid only while now <= issuedAt + ttl;
// both bounds are inclusive.
func Validate(submitted, stored string, issuedAt *time.Time, now time.Time, ttl time.Duration) error {
	if issuedAt == nil || stored == "" {
		return ErrNotIssued
	}
	if now.After(issuedAt.Add(ttl)) {
		return ErrExpired
	}
	if submitted != stored {
		return ErrMismatch
	}
	return nil
}
