package token

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIssueCodeFormat(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	code, issuedAt, err := IssueCode(now)
	require.NoError(t, err)
	assert.Len(t, code, 6)
	for _, r := range code {
		assert.True(t, r >= '0' && r <= '9', "code must be decimal digits, got %q", code)
	}
	assert.Equal(t, now, issuedAt)
}

func TestValidateNotIssued(t *testing.T) {
	now := time.Now().UTC()

	assert.ErrorIs(t, Validate("123456", "", nil, now, EmailVerificationTTL), ErrNotIssued)

	issuedAt := now.Add(-time.Minute)
	assert.ErrorIs(t, Validate("123456", "", &issuedAt, now, EmailVerificationTTL), ErrNotIssued)
}

func TestValidateExpiryBoundary(t *testing.T) {
	issuedAt := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	cases := []struct {
		name string
		now  time.Time
		ttl  time.Duration
		want error
	}{
		{"one second before expiry", issuedAt.Add(EmailVerificationTTL - time.Second), EmailVerificationTTL, nil},
		{"exactly at expiry", issuedAt.Add(EmailVerificationTTL), EmailVerificationTTL, nil},
		{"one second past expiry", issuedAt.Add(EmailVerificationTTL + time.Second), EmailVerificationTTL, ErrExpired},
		{"reset one second before expiry", issuedAt.Add(PasswordResetTTL - time.Second), PasswordResetTTL, nil},
		{"reset one second past expiry", issuedAt.Add(PasswordResetTTL + time.Second), PasswordResetTTL, ErrExpired},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			err := Validate("123456", "123456", &issuedAt, tc.now, tc.ttl)
			if tc.want == nil {
				assert.NoError(t, err)
			} else {
				assert.ErrorIs(t, err, tc.want)
			}
		})
	}
}

func TestValidateMismatch(t *testing.T) {
	issuedAt := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	now := issuedAt.Add(time.Minute)

	assert.ErrorIs(t, Validate("654321", "123456", &issuedAt, now, EmailVerificationTTL), ErrMismatch)
}

func TestValidateExpiryCheckedBeforeMismatch(t *testing.T) {
	issuedAt := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	now := issuedAt.Add(EmailVerificationTTL + time.Minute)

	assert.ErrorIs(t, Validate("654321", "123456", &issuedAt, now, EmailVerificationTTL), ErrExpired)
}
