package server

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	cycledomain "github.com/codecircle/recruit/internal/cycle/domain"
)

type CreateCycleRequest struct {
	Title            string    `json:"title"`
	Notice           string    `json:"notice"`
	ApplyStartAt     time.Time `json:"apply_start_at"`
	ApplyEndAt       time.Time `json:"apply_end_at"`
	InterviewStartAt time.Time `json:"interview_start_at"`
	InterviewEndAt   time.Time `json:"interview_end_at"`
}

type QuestionRequest struct {
	Text       string `json:"text"`
	Position   int    `json:"position"`
	IsRequired *bool  `json:"is_required"`
	MaxLength  int    `json:"max_length"`
}

func (s *Server) ListCycles(c *gin.Context) {
	cycles, err := s.cycleSvc.List(c.Request.Context())
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"cycles": cycles})
}

func (s *Server) CreateCycle(c *gin.Context) {
	var req CreateCycleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	cycle, err := s.cycleSvc.Create(c.Request.Context(), cycledomain.CreateCycleRequest{
		Title:            req.Title,
		Notice:           req.Notice,
		ApplyStartAt:     req.ApplyStartAt,
		ApplyEndAt:       req.ApplyEndAt,
		InterviewStartAt: req.InterviewStartAt,
		InterviewEndAt:   req.InterviewEndAt,
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusCreated, cycle)
}

func (s *Server) GetCycleByID(c *gin.Context) {
	cycle, err := s.cycleSvc.GetByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, cycle)
}

func (s *Server) ActivateCycle(c *gin.Context) {
	if err := s.cycleSvc.Activate(c.Request.Context(), c.Param("id")); err != nil {
		AbortWithError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (s *Server) DeactivateCycle(c *gin.Context) {
	if err := s.cycleSvc.Deactivate(c.Request.Context(), c.Param("id")); err != nil {
		AbortWithError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (s *Server) ListCycleQuestions(c *gin.Context) {
	questions, err := s.cycleSvc.ListQuestions(c.Request.Context(), c.Param("id"))
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"questions": questions})
}

func (s *Server) AddCycleQuestion(c *gin.Context) {
	var req QuestionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	isRequired := true
	if req.IsRequired != nil {
		isRequired = *req.IsRequired
	}

	question, err := s.cycleSvc.AddQuestion(c.Request.Context(), cycledomain.AddQuestionRequest{
		CycleID:    c.Param("id"),
		Text:       req.Text,
		Position:   req.Position,
		IsRequired: isRequired,
		MaxLength:  req.MaxLength,
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusCreated, question)
}

func (s *Server) UpdateQuestion(c *gin.Context) {
	var req QuestionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	isRequired := true
	if req.IsRequired != nil {
		isRequired = *req.IsRequired
	}

	question, err := s.cycleSvc.UpdateQuestion(c.Request.Context(), cycledomain.UpdateQuestionRequest{
		QuestionID: c.Param("id"),
		Text:       req.Text,
		Position:   req.Position,
		IsRequired: isRequired,
		MaxLength:  req.MaxLength,
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, question)
}

func (s *Server) DeleteQuestion(c *gin.Context) {
	if err := s.cycleSvc.DeleteQuestion(c.Request.Context(), c.Param("id")); err != nil {
		AbortWithError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
