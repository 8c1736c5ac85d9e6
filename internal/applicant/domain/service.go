package domain

import (
	"context"
	"errors"
	"time"
)

type RegisterRequest struct {
	Email    string
	Name     string
	Phone    string
	Password string
}

type LoginResult struct {
	Applicant Applicant
	// Token is the raw session token handed to the cookie. Only its
	// hash is persisted.
	Token     string
	ExpiresAt time.Time
}

type Service interface {
	// Register creates an unverified account and sends the
	// verification code to the given address.
	Register(ctx context.Context, req RegisterRequest) (Applicant, error)
	Login(ctx context.Context, email, password string) (LoginResult, error)
	// Authenticate resolves a raw session token to its account.
	Authenticate(ctx context.Context, tokenValue string) (Applicant, error)
	Logout(ctx context.Context, tokenValue string) error

	// VerifyEmail checks the submitted code and marks the account
	// verified, clearing the stored code on success.
	VerifyEmail(ctx context.Context, applicantID string, code string) error
	ResendVerification(ctx context.Context, applicantID string) error

	// RequestPasswordReset issues a reset token and mails the reset
	// link. Unknown addresses are not reported to the caller.
	RequestPasswordReset(ctx context.Context, email string) error
	ConfirmPasswordReset(ctx context.Context, tokenValue, newPassword string) error

	GetByID(ctx context.Context, id string) (Applicant, error)
}

var (
	ErrNotFound           = errors.New("applicant_not_found")
	ErrEmailTaken         = errors.New("email_taken")
	ErrInvalidEmail       = errors.New("invalid_email")
	ErrInvalidName        = errors.New("invalid_name")
	ErrWeakPassword       = errors.New("weak_password")
	ErrInvalidCredentials = errors.New("invalid_credentials")
	ErrSessionNotFound    = errors.New("session_not_found")
	ErrSessionExpired     = errors.New("session_expired")
	ErrAlreadyVerified    = errors.New("already_verified")
	ErrInvalidID          = errors.New("invalid_applicant_id")
)
