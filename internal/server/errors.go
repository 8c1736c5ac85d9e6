package server

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	applicantdomain "github.com/codecircle/recruit/internal/applicant/domain"
	applicationdomain "github.com/codecircle/recruit/internal/application/domain"
	"github.com/codecircle/recruit/internal/authorization"
	cycledomain "github.com/codecircle/recruit/internal/cycle/domain"
	"github.com/codecircle/recruit/internal/eligibility"
	"github.com/codecircle/recruit/internal/token"
	"gorm.io/gorm"
)

type ValidationError struct {
	Field   string `json:"field"`
	Code    string `json:"code"`
	Message string `json:"message"`
}

type ValidationErrors struct {
	Errors []ValidationError `json:"errors"`
}

func (v ValidationErrors) Error() string {
	return "validation error"
}

type errorPayload struct {
	Type    string            `json:"type"`
	Message string            `json:"message"`
	Errors  []ValidationError `json:"errors,omitempty"`
}

type errorResponse struct {
	Error errorPayload `json:"error"`
}

var (
	ErrUnauthorized   = errors.New("unauthorized")
	ErrForbidden      = errors.New("forbidden")
	ErrConflict       = errors.New("conflict")
	ErrInternal       = errors.New("internal_error")
	ErrNotFound       = errors.New("not_found")
	ErrInvalidRequest = errors.New("invalid_request")
	ErrRateLimited    = errors.New("rate_limited")
)

func ErrorHandlingMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		if c.Writer.Written() {
			return
		}

		lastErr := c.Errors.Last()
		if lastErr == nil {
			return
		}

		status, payload := mapError(lastErr.Err)
		c.Header("Content-Type", "application/json")
		c.AbortWithStatusJSON(status, errorResponse{Error: payload})
	}
}

func AbortWithError(c *gin.Context, err error) {
	if err == nil {
		return
	}
	_ = c.Error(err)
	c.Abort()
}

func invalidRequestError() error {
	return newValidationError("request", "invalid_request", "invalid request")
}

func newValidationError(field, code, message string) error {
	return &ValidationErrors{
		Errors: []ValidationError{
			{
				Field:   field,
				Code:    code,
				Message: message,
			},
		},
	}
}

func mapError(err error) (int, errorPayload) {
	if err == nil {
		return http.StatusInternalServerError, errorPayload{
			Type:    "internal_error",
			Message: "internal server error",
		}
	}

	if vErr := asValidationErrors(err); vErr != nil {
		return http.StatusBadRequest, errorPayload{
			Type:    "validation_error",
			Message: "validation error",
			Errors:  vErr.Errors,
		}
	}

	if isValidationError(err) {
		code := validationErrorCode(err)
		return http.StatusBadRequest, errorPayload{
			Type:    "validation_error",
			Message: "validation error",
			Errors: []ValidationError{
				{
					Field:   validationErrorField(code),
					Code:    code,
					Message: validationErrorMessage(code),
				},
			},
		}
	}

	switch {
	case errors.Is(err, ErrUnauthorized),
		errors.Is(err, applicantdomain.ErrInvalidCredentials),
		errors.Is(err, applicantdomain.ErrSessionNotFound),
		errors.Is(err, applicantdomain.ErrSessionExpired):
		return http.StatusUnauthorized, errorPayload{
			Type:    "unauthorized",
			Message: "unauthorized",
		}
	case errors.Is(err, ErrForbidden),
		errors.Is(err, authorization.ErrForbidden),
		errors.Is(err, eligibility.ErrForbidden),
		errors.Is(err, eligibility.ErrEmailNotVerified):
		return http.StatusForbidden, errorPayload{
			Type:    "forbidden",
			Message: forbiddenMessage(err),
		}
	case isConflictError(err):
		return http.StatusConflict, errorPayload{
			Type:    "conflict",
			Message: conflictMessage(err),
		}
	case isNotFoundError(err):
		return http.StatusNotFound, errorPayload{
			Type:    "not_found",
			Message: "not found",
		}
	case errors.Is(err, ErrRateLimited):
		return http.StatusTooManyRequests, errorPayload{
			Type:    "rate_limited",
			Message: "too many requests",
		}
	case errors.Is(err, ErrInternal):
		return http.StatusInternalServerError, errorPayload{
			Type:    "internal_error",
			Message: "internal server error",
		}
	default:
		return http.StatusInternalServerError, errorPayload{
			Type:    "internal_error",
			Message: "internal server error",
		}
	}
}

func asValidationErrors(err error) *ValidationErrors {
	var vErr *ValidationErrors
	if errors.As(err, &vErr) && vErr != nil {
		return vErr
	}
	return nil
}

func isValidationError(err error) bool {
	switch {
	case errors.Is(err, ErrInvalidRequest),
		errors.Is(err, applicantdomain.ErrInvalidEmail),
		errors.Is(err, applicantdomain.ErrInvalidName),
		errors.Is(err, applicantdomain.ErrWeakPassword),
		errors.Is(err, applicantdomain.ErrInvalidID),
		errors.Is(err, cycledomain.ErrInvalidTitle),
		errors.Is(err, cycledomain.ErrInvalidWindow),
		errors.Is(err, cycledomain.ErrInvalidQuestion),
		errors.Is(err, cycledomain.ErrInvalidID),
		errors.Is(err, applicationdomain.ErrInvalidID),
		errors.Is(err, applicationdomain.ErrInvalidSchedule),
		errors.Is(err, applicationdomain.ErrUnknownQuestion),
		errors.Is(err, applicationdomain.ErrAnswerTooLong),
		errors.Is(err, token.ErrNotIssued),
		errors.Is(err, token.ErrExpired),
		errors.Is(err, token.ErrMismatch):
		return true
	default:
		return false
	}
}

func isConflictError(err error) bool {
	switch {
	case errors.Is(err, ErrConflict),
		errors.Is(err, applicantdomain.ErrEmailTaken),
		errors.Is(err, applicantdomain.ErrAlreadyVerified),
		errors.Is(err, cycledomain.ErrAlreadyExists),
		errors.Is(err, cycledomain.ErrActiveCycleExists),
		errors.Is(err, applicationdomain.ErrAlreadyExists),
		errors.Is(err, applicationdomain.ErrAlreadySubmitted),
		errors.Is(err, applicationdomain.ErrNotDraft),
		errors.Is(err, applicationdomain.ErrIncompleteAnswers),
		errors.Is(err, applicationdomain.ErrNoInterviewPreference),
		errors.Is(err, applicationdomain.ErrWindowClosed),
		errors.Is(err, applicationdomain.ErrInvalidTransition):
		return true
	default:
		return false
	}
}

func isNotFoundError(err error) bool {
	switch {
	case errors.Is(err, ErrNotFound),
		errors.Is(err, applicantdomain.ErrNotFound),
		errors.Is(err, cycledomain.ErrNotFound),
		errors.Is(err, cycledomain.ErrQuestionNotFound),
		errors.Is(err, cycledomain.ErrNoActiveCycle),
		errors.Is(err, applicationdomain.ErrNotFound),
		errors.Is(err, eligibility.ErrNoDraft),
		errors.Is(err, gorm.ErrRecordNotFound):
		return true
	default:
		return false
	}
}

func validationErrorCode(err error) string {
	if errors.Is(err, ErrInvalidRequest) {
		return "invalid_request"
	}
	return err.Error()
}

func validationErrorField(code string) string {
	if code == "invalid_request" {
		return "request"
	}
	if strings.HasPrefix(code, "invalid_") {
		return strings.TrimPrefix(code, "invalid_")
	}
	switch code {
	case "token_not_issued", "token_expired", "token_mismatch":
		return "code"
	case "weak_password":
		return "password"
	case "answer_too_long", "unknown_question":
		return "answers"
	}
	return ""
}

func validationErrorMessage(code string) string {
	switch code {
	case "invalid_request":
		return "invalid request"
	case "token_expired":
		return "code has expired"
	case "token_mismatch", "token_not_issued":
		return "code is not valid"
	case "weak_password":
		return "password is too short"
	case "answer_too_long":
		return "answer exceeds the allowed length"
	default:
		return "invalid value"
	}
}

func forbiddenMessage(err error) string {
	if errors.Is(err, eligibility.ErrEmailNotVerified) {
		return "email address is not verified"
	}
	return "forbidden"
}

func conflictMessage(err error) string {
	switch {
	case errors.Is(err, applicantdomain.ErrEmailTaken):
		return "email address is already registered"
	case errors.Is(err, applicationdomain.ErrIncompleteAnswers):
		return "required questions are not answered"
	case errors.Is(err, applicationdomain.ErrNoInterviewPreference):
		return "no interview availability selected"
	case errors.Is(err, applicationdomain.ErrWindowClosed):
		return "the window is closed"
	case errors.Is(err, applicationdomain.ErrInvalidTransition):
		return "status transition is not allowed"
	default:
		return "conflict"
	}
}

// classifyErrorForLog feeds the request logger an error type and code
// without rendering anything to the client.
func classifyErrorForLog(err error) (string, string) {
	status, payload := mapError(err)
	switch {
	case status >= http.StatusInternalServerError:
		return "internal", payload.Type
	case status == http.StatusTooManyRequests:
		return "throttled", payload.Type
	default:
		return "client", payload.Type
	}
}
