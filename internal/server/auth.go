package server

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	applicantdomain "github.com/codecircle/recruit/internal/applicant/domain"
	auditdomain "github.com/codecircle/recruit/internal/audit/domain"
	"go.uber.org/zap"
)

type SignupRequest struct {
	Email    string `json:"email"`
	Name     string `json:"name"`
	Phone    string `json:"phone"`
	Password string `json:"password"`
}

type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type VerifyEmailRequest struct {
	Code string `json:"code"`
}

type ForgotPasswordRequest struct {
	Email string `json:"email"`
}

type ResetPasswordRequest struct {
	Token       string `json:"token"`
	NewPassword string `json:"new_password"`
}

func (s *Server) Signup(c *gin.Context) {
	var req SignupRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	applicant, err := s.applicantSvc.Register(c.Request.Context(), applicantdomain.RegisterRequest{
		Email:    strings.TrimSpace(req.Email),
		Name:     strings.TrimSpace(req.Name),
		Phone:    strings.TrimSpace(req.Phone),
		Password: req.Password,
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusCreated, applicant)
}

func (s *Server) Login(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	email := strings.ToLower(strings.TrimSpace(req.Email))
	if s.authLimiter.Enabled() {
		allowed, err := s.authLimiter.AllowLogin(c.Request.Context(), email)
		if err != nil {
			s.log.Warn("login rate limit check failed", zap.Error(err))
		} else if !allowed {
			AbortWithError(c, ErrRateLimited)
			return
		}
	}

	result, err := s.applicantSvc.Login(c.Request.Context(), email, req.Password)
	if err != nil {
		if s.auditSvc != nil {
			_ = s.auditSvc.Record(c.Request.Context(), auditdomain.ActorTypeApplicant, nil, "applicant.login_failed", "applicant", nil, map[string]any{
				"email": email,
			})
		}
		AbortWithError(c, err)
		return
	}

	s.sessions.Set(c, result.Token, result.ExpiresAt)

	if s.auditSvc != nil {
		actorID := result.Applicant.ID.String()
		_ = s.auditSvc.Record(c.Request.Context(), auditdomain.ActorTypeApplicant, &actorID, "applicant.login", "applicant", &actorID, map[string]any{
			"email": email,
		})
	}

	c.JSON(http.StatusOK, result.Applicant)
}

func (s *Server) Logout(c *gin.Context) {
	tokenValue, ok := s.sessions.ReadToken(c)
	if !ok {
		AbortWithError(c, ErrUnauthorized)
		return
	}

	if err := s.applicantSvc.Logout(c.Request.Context(), tokenValue); err != nil {
		AbortWithError(c, err)
		return
	}

	s.sessions.Clear(c)
	c.Status(http.StatusNoContent)
}

func (s *Server) Me(c *gin.Context) {
	applicant, ok := currentApplicant(c)
	if !ok {
		AbortWithError(c, ErrUnauthorized)
		return
	}
	c.JSON(http.StatusOK, applicant)
}

func (s *Server) VerifyEmail(c *gin.Context) {
	applicant, ok := currentApplicant(c)
	if !ok {
		AbortWithError(c, ErrUnauthorized)
		return
	}

	var req VerifyEmailRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}
	code := strings.TrimSpace(req.Code)
	if code == "" {
		AbortWithError(c, newValidationError("code", "required", "code is required"))
		return
	}

	if err := s.applicantSvc.VerifyEmail(c.Request.Context(), applicant.ID.String(), code); err != nil {
		AbortWithError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}

func (s *Server) ResendVerification(c *gin.Context) {
	applicant, ok := currentApplicant(c)
	if !ok {
		AbortWithError(c, ErrUnauthorized)
		return
	}

	if s.authLimiter.Enabled() {
		allowed, err := s.authLimiter.AllowResend(c.Request.Context(), applicant.ID.String())
		if err != nil {
			s.log.Warn("resend rate limit check failed", zap.Error(err))
		} else if !allowed {
			AbortWithError(c, ErrRateLimited)
			return
		}
	}

	if err := s.applicantSvc.ResendVerification(c.Request.Context(), applicant.ID.String()); err != nil {
		AbortWithError(c, err)
		return
	}

	c.Status(http.StatusAccepted)
}

// Forgot always answers 202 so the endpoint does not reveal whether an
// address is registered.
func (s *Server) Forgot(c *gin.Context) {
	var req ForgotPasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}
	email := strings.TrimSpace(req.Email)
	if email == "" {
		AbortWithError(c, newValidationError("email", "required", "email is required"))
		return
	}

	if err := s.applicantSvc.RequestPasswordReset(c.Request.Context(), email); err != nil {
		AbortWithError(c, err)
		return
	}

	c.Status(http.StatusAccepted)
}

func (s *Server) ResetPassword(c *gin.Context) {
	var req ResetPasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	if err := s.applicantSvc.ConfirmPasswordReset(c.Request.Context(), strings.TrimSpace(req.Token), req.NewPassword); err != nil {
		AbortWithError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}
