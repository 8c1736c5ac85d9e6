package server

import (
	"errors"
	"net/http"

	"github.com/bwmarrin/snowflake"
	"github.com/gin-gonic/gin"
	applicantdomain "github.com/codecircle/recruit/internal/applicant/domain"
	applicationdomain "github.com/codecircle/recruit/internal/application/domain"
)

type SaveDraftRequest struct {
	Answers     map[string]string                      `json:"answers"`
	Preferences applicationdomain.InterviewPreferences `json:"preferences"`
}

// ApplicationView bundles an application with its answers for the
// applicant-facing endpoints.
type ApplicationView struct {
	Application applicationdomain.Application `json:"application"`
	Answers     []applicationdomain.Answer    `json:"answers"`
}

// StartApplication opens a draft in the active cycle, or returns the
// existing draft when the applicant already started one.
func (s *Server) StartApplication(c *gin.Context) {
	applicant, ok := currentApplicant(c)
	if !ok {
		AbortWithError(c, ErrUnauthorized)
		return
	}

	if _, err := s.gate.CanStartApplication(c.Request.Context(), applicant.ID); err != nil {
		AbortWithError(c, err)
		return
	}

	cycle, err := s.cycleSvc.GetActive(c.Request.Context())
	if err != nil {
		AbortWithError(c, err)
		return
	}

	existing, err := s.applicationSvc.GetForApplicant(c.Request.Context(), applicant.ID.String(), cycle.ID.String())
	if err == nil {
		c.JSON(http.StatusOK, existing)
		return
	}
	if !errors.Is(err, applicationdomain.ErrNotFound) {
		AbortWithError(c, err)
		return
	}

	created, err := s.applicationSvc.Create(c.Request.Context(), applicant.ID.String(), cycle.ID.String())
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusCreated, created)
}

// GetCurrentApplication returns the applicant's application in the
// active cycle together with its answers.
func (s *Server) GetCurrentApplication(c *gin.Context) {
	applicant, ok := currentApplicant(c)
	if !ok {
		AbortWithError(c, ErrUnauthorized)
		return
	}

	cycle, err := s.cycleSvc.GetActive(c.Request.Context())
	if err != nil {
		AbortWithError(c, err)
		return
	}

	application, err := s.applicationSvc.GetForApplicant(c.Request.Context(), applicant.ID.String(), cycle.ID.String())
	if err != nil {
		AbortWithError(c, err)
		return
	}

	answers, err := s.applicationSvc.ListAnswers(c.Request.Context(), application.ID.String())
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, ApplicationView{Application: application, Answers: answers})
}

func (s *Server) SaveApplicationDraft(c *gin.Context) {
	applicant, applicationID, ok := s.ownedApplication(c)
	if !ok {
		return
	}

	if _, err := s.gate.CanAnswerQuestions(c.Request.Context(), applicant.ID); err != nil {
		AbortWithError(c, err)
		return
	}

	var req SaveDraftRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	updated, err := s.applicationSvc.SaveDraft(c.Request.Context(), applicationdomain.SaveDraftRequest{
		ApplicationID: applicationID.String(),
		Answers:       req.Answers,
		Preferences:   req.Preferences,
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, updated)
}

func (s *Server) SubmitApplication(c *gin.Context) {
	_, applicationID, ok := s.ownedApplication(c)
	if !ok {
		return
	}

	submitted, err := s.applicationSvc.Submit(c.Request.Context(), applicationID.String())
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, submitted)
}

func (s *Server) GetOwnApplication(c *gin.Context) {
	_, applicationID, ok := s.ownedApplication(c)
	if !ok {
		return
	}

	application, err := s.applicationSvc.GetByID(c.Request.Context(), applicationID.String())
	if err != nil {
		AbortWithError(c, err)
		return
	}

	answers, err := s.applicationSvc.ListAnswers(c.Request.Context(), application.ID.String())
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, ApplicationView{Application: application, Answers: answers})
}

// ownedApplication parses the :id param and verifies the caller owns
// that application. It aborts the request on failure.
func (s *Server) ownedApplication(c *gin.Context) (applicant applicantdomain.Applicant, applicationID snowflake.ID, ok bool) {
	account, exists := currentApplicant(c)
	if !exists {
		AbortWithError(c, ErrUnauthorized)
		return applicant, 0, false
	}

	parsed, err := snowflake.ParseString(c.Param("id"))
	if err != nil || parsed == 0 {
		AbortWithError(c, applicationdomain.ErrInvalidID)
		return applicant, 0, false
	}

	if _, err := s.gate.CanViewApplication(c.Request.Context(), account.ID, parsed); err != nil {
		AbortWithError(c, err)
		return applicant, 0, false
	}

	return account, parsed, true
}
