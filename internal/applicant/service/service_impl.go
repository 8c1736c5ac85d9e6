package service

import (
	"context"
	"fmt"
	"net/mail"
	"strings"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/codecircle/recruit/internal/applicant/domain"
	"github.com/codecircle/recruit/internal/auth/password"
	"github.com/codecircle/recruit/internal/auth/session"
	"github.com/codecircle/recruit/internal/clock"
	"github.com/codecircle/recruit/internal/config"
	"github.com/codecircle/recruit/internal/observability/metrics"
	"github.com/codecircle/recruit/internal/providers/email"
	"github.com/codecircle/recruit/internal/token"
	"github.com/codecircle/recruit/pkg/db"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

const minPasswordLen = 8

type Params struct {
	fx.In
	DB      *gorm.DB
	Log     *zap.Logger
	GenID   *snowflake.Node
	Clock   clock.Clock
	Repo    domain.Repository
	Email   email.Provider
	Cfg     config.Config
	Portal  *config.PortalConfigHolder
	Metrics *metrics.PortalMetrics `optional:"true"`
}

type service struct {
	db      *gorm.DB
	log     *zap.Logger
	genID   *snowflake.Node
	clock   clock.Clock
	repo    domain.Repository
	email   email.Provider
	cfg     config.Config
	portal  *config.PortalConfigHolder
	metrics *metrics.PortalMetrics
}

func New(p Params) domain.Service {
	return &service{
		db:      p.DB,
		log:     p.Log.Named("applicant.service"),
		genID:   p.GenID,
		clock:   p.Clock,
		repo:    p.Repo,
		email:   p.Email,
		cfg:     p.Cfg,
		portal:  p.Portal,
		metrics: p.Metrics,
	}
}

func (s *service) Register(ctx context.Context, req domain.RegisterRequest) (domain.Applicant, error) {
	addr := strings.ToLower(strings.TrimSpace(req.Email))
	if _, err := mail.ParseAddress(addr); err != nil {
		return domain.Applicant{}, domain.ErrInvalidEmail
	}
	name := strings.TrimSpace(req.Name)
	if name == "" {
		return domain.Applicant{}, domain.ErrInvalidName
	}
	if len(req.Password) < minPasswordLen {
		return domain.Applicant{}, domain.ErrWeakPassword
	}

	hash, err := password.Hash(req.Password)
	if err != nil {
		return domain.Applicant{}, fmt.Errorf("hash password: %w", err)
	}

	now := s.clock.Now()
	code, issuedAt, err := token.IssueCode(now)
	if err != nil {
		return domain.Applicant{}, err
	}

	applicant := &domain.Applicant{
		ID:                   s.genID.Generate(),
		Email:                addr,
		Name:                 name,
		Phone:                strings.TrimSpace(req.Phone),
		PasswordHash:         hash,
		Role:                 domain.RoleApplicant,
		VerificationCode:     code,
		VerificationIssuedAt: &issuedAt,
		CreatedAt:            now,
		UpdatedAt:            now,
	}

	if err := s.repo.Insert(ctx, s.db, applicant); err != nil {
		if db.IsDuplicateKeyErr(err) {
			return domain.Applicant{}, domain.ErrEmailTaken
		}
		return domain.Applicant{}, fmt.Errorf("insert applicant: %w", err)
	}

	s.sendVerificationCode(applicant, code)

	s.log.Info("applicant registered",
		zap.String("applicant_id", applicant.ID.String()),
	)
	return *applicant, nil
}

func (s *service) Login(ctx context.Context, emailAddr, pw string) (domain.LoginResult, error) {
	addr := strings.ToLower(strings.TrimSpace(emailAddr))

	applicant, err := s.repo.FindByEmail(ctx, s.db, addr)
	if err != nil {
		return domain.LoginResult{}, fmt.Errorf("find applicant: %w", err)
	}
	if applicant == nil || !password.Verify(pw, applicant.PasswordHash) {
		return domain.LoginResult{}, domain.ErrInvalidCredentials
	}

	tokenValue, tokenHash, err := session.NewToken()
	if err != nil {
		return domain.LoginResult{}, fmt.Errorf("issue session token: %w", err)
	}

	now := s.clock.Now()
	sess := &domain.Session{
		ID:          s.genID.Generate(),
		ApplicantID: applicant.ID,
		TokenHash:   tokenHash,
		ExpiresAt:   now.Add(time.Duration(s.cfg.SessionTTLHours) * time.Hour),
		CreatedAt:   now,
	}
	if err := s.repo.InsertSession(ctx, s.db, sess); err != nil {
		return domain.LoginResult{}, fmt.Errorf("insert session: %w", err)
	}

	// Opportunistic cleanup of stale sessions.
	if err := s.repo.DeleteExpiredSessions(ctx, s.db, now); err != nil {
		s.log.Warn("delete expired sessions", zap.Error(err))
	}

	s.log.Info("applicant logged in",
		zap.String("applicant_id", applicant.ID.String()),
	)
	return domain.LoginResult{
		Applicant: *applicant,
		Token:     tokenValue,
		ExpiresAt: sess.ExpiresAt,
	}, nil
}

func (s *service) Authenticate(ctx context.Context, tokenValue string) (domain.Applicant, error) {
	sess, err := s.repo.FindSessionByTokenHash(ctx, s.db, session.HashToken(tokenValue))
	if err != nil {
		return domain.Applicant{}, fmt.Errorf("find session: %w", err)
	}
	if sess == nil {
		return domain.Applicant{}, domain.ErrSessionNotFound
	}
	if s.clock.Now().After(sess.ExpiresAt) {
		return domain.Applicant{}, domain.ErrSessionExpired
	}

	applicant, err := s.repo.FindByID(ctx, s.db, sess.ApplicantID)
	if err != nil {
		return domain.Applicant{}, fmt.Errorf("find applicant: %w", err)
	}
	if applicant == nil {
		return domain.Applicant{}, domain.ErrNotFound
	}
	return *applicant, nil
}

func (s *service) Logout(ctx context.Context, tokenValue string) error {
	return s.repo.DeleteSession(ctx, s.db, session.HashToken(tokenValue))
}

func (s *service) VerifyEmail(ctx context.Context, applicantID string, code string) error {
	id, err := snowflake.ParseString(applicantID)
	if err != nil {
		return domain.ErrInvalidID
	}

	applicant, err := s.repo.FindByID(ctx, s.db, id)
	if err != nil {
		return fmt.Errorf("find applicant: %w", err)
	}
	if applicant == nil {
		return domain.ErrNotFound
	}
	if applicant.IsEmailVerified {
		return domain.ErrAlreadyVerified
	}

	err = token.Validate(code, applicant.VerificationCode, applicant.VerificationIssuedAt, s.clock.Now(), token.EmailVerificationTTL)
	s.metrics.RecordTokenValidation(token.KindEmailVerification, err)
	if err != nil {
		return err
	}

	applicant.IsEmailVerified = true
	applicant.VerificationCode = ""
	applicant.VerificationIssuedAt = nil
	applicant.UpdatedAt = s.clock.Now()
	if err := s.repo.Update(ctx, s.db, applicant); err != nil {
		return fmt.Errorf("update applicant: %w", err)
	}

	s.log.Info("email verified", zap.String("applicant_id", applicantID))
	return nil
}

func (s *service) ResendVerification(ctx context.Context, applicantID string) error {
	id, err := snowflake.ParseString(applicantID)
	if err != nil {
		return domain.ErrInvalidID
	}

	applicant, err := s.repo.FindByID(ctx, s.db, id)
	if err != nil {
		return fmt.Errorf("find applicant: %w", err)
	}
	if applicant == nil {
		return domain.ErrNotFound
	}
	if applicant.IsEmailVerified {
		return domain.ErrAlreadyVerified
	}

	code, issuedAt, err := token.IssueCode(s.clock.Now())
	if err != nil {
		return err
	}
	applicant.VerificationCode = code
	applicant.VerificationIssuedAt = &issuedAt
	applicant.UpdatedAt = s.clock.Now()
	if err := s.repo.Update(ctx, s.db, applicant); err != nil {
		return fmt.Errorf("update applicant: %w", err)
	}

	s.sendVerificationCode(applicant, code)
	return nil
}

func (s *service) RequestPasswordReset(ctx context.Context, emailAddr string) error {
	addr := strings.ToLower(strings.TrimSpace(emailAddr))

	applicant, err := s.repo.FindByEmail(ctx, s.db, addr)
	if err != nil {
		return fmt.Errorf("find applicant: %w", err)
	}
	if applicant == nil {
		// Do not reveal whether the address exists.
		return nil
	}

	resetToken, issuedAt := token.IssueResetToken(s.clock.Now())
	applicant.ResetToken = resetToken
	applicant.ResetIssuedAt = &issuedAt
	applicant.UpdatedAt = s.clock.Now()
	if err := s.repo.Update(ctx, s.db, applicant); err != nil {
		return fmt.Errorf("update applicant: %w", err)
	}

	portal := s.portal.Current()
	s.dispatchEmail(applicant.Email, email.TemplatePasswordReset, map[string]interface{}{
		"portal_title": portal.Title,
		"name":         applicant.Name,
		"reset_url":    fmt.Sprintf("%s/auth/reset?token=%s", s.cfg.BaseURL, resetToken),
	})
	return nil
}

func (s *service) ConfirmPasswordReset(ctx context.Context, tokenValue, newPassword string) error {
	if len(newPassword) < minPasswordLen {
		return domain.ErrWeakPassword
	}
	if tokenValue == "" {
		return token.ErrNotIssued
	}

	applicant, err := s.repo.FindByResetToken(ctx, s.db, tokenValue)
	if err != nil {
		return fmt.Errorf("find applicant: %w", err)
	}
	if applicant == nil {
		s.metrics.RecordTokenValidation(token.KindPasswordReset, token.ErrMismatch)
		return token.ErrMismatch
	}

	err = token.Validate(tokenValue, applicant.ResetToken, applicant.ResetIssuedAt, s.clock.Now(), token.PasswordResetTTL)
	s.metrics.RecordTokenValidation(token.KindPasswordReset, err)
	if err != nil {
		return err
	}

	hash, err := password.Hash(newPassword)
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}
	applicant.PasswordHash = hash
	applicant.ResetToken = ""
	applicant.ResetIssuedAt = nil
	applicant.UpdatedAt = s.clock.Now()
	if err := s.repo.Update(ctx, s.db, applicant); err != nil {
		return fmt.Errorf("update applicant: %w", err)
	}

	// A password change invalidates every open session.
	if err := s.repo.DeleteSessionsForApplicant(ctx, s.db, applicant.ID); err != nil {
		s.log.Warn("revoke sessions", zap.Error(err))
	}

	s.log.Info("password reset", zap.String("applicant_id", applicant.ID.String()))
	return nil
}

func (s *service) GetByID(ctx context.Context, id string) (domain.Applicant, error) {
	applicantID, err := snowflake.ParseString(id)
	if err != nil {
		return domain.Applicant{}, domain.ErrInvalidID
	}

	applicant, err := s.repo.FindByID(ctx, s.db, applicantID)
	if err != nil {
		return domain.Applicant{}, fmt.Errorf("find applicant: %w", err)
	}
	if applicant == nil {
		return domain.Applicant{}, domain.ErrNotFound
	}
	return *applicant, nil
}

func (s *service) sendVerificationCode(applicant *domain.Applicant, code string) {
	portal := s.portal.Current()
	s.dispatchEmail(applicant.Email, email.TemplateVerificationCode, map[string]interface{}{
		"portal_title": portal.Title,
		"name":         applicant.Name,
		"code":         code,
	})
}

// dispatchEmail sends in the background. Delivery failures are logged
// and never surface to the caller.
func (s *service) dispatchEmail(to, templateName string, data map[string]interface{}) {
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()

		err := s.email.SendTemplate(ctx, []string{to}, templateName, data)
		s.metrics.RecordEmailSent(templateName, err)
		if err != nil {
			s.log.Warn("send email",
				zap.String("template", templateName),
				zap.Error(err),
			)
		}
	}()
}
