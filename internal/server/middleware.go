package server

import (
	"github.com/gin-gonic/gin"
	applicantdomain "github.com/codecircle/recruit/internal/applicant/domain"
)

const contextApplicantKey = "applicant"

// AuthRequired resolves the session cookie to an account and stores it
// on the request context.
func (s *Server) AuthRequired() gin.HandlerFunc {
	return func(c *gin.Context) {
		tokenValue, ok := s.sessions.ReadToken(c)
		if !ok {
			AbortWithError(c, ErrUnauthorized)
			return
		}

		applicant, err := s.applicantSvc.Authenticate(c.Request.Context(), tokenValue)
		if err != nil {
			AbortWithError(c, err)
			return
		}

		c.Set(contextApplicantKey, applicant)
		c.Next()
	}
}

// RequireStaffAction gates a route on the casbin policy for the given
// object and action. Runs after AuthRequired.
func (s *Server) RequireStaffAction(object, action string) gin.HandlerFunc {
	return func(c *gin.Context) {
		applicant, ok := currentApplicant(c)
		if !ok {
			AbortWithError(c, ErrUnauthorized)
			return
		}

		actor := "user:" + applicant.ID.String()
		if err := s.authzSvc.Authorize(c.Request.Context(), actor, object, action); err != nil {
			AbortWithError(c, err)
			return
		}
		c.Next()
	}
}

func currentApplicant(c *gin.Context) (applicantdomain.Applicant, bool) {
	value, exists := c.Get(contextApplicantKey)
	if !exists {
		return applicantdomain.Applicant{}, false
	}
	applicant, ok := value.(applicantdomain.Applicant)
	return applicant, ok
}
