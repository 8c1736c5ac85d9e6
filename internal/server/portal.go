package server

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	cycledomain "github.com/codecircle/recruit/internal/cycle/domain"
)

// PortalHome is the public landing payload: portal presentation
// settings plus the active cycle and its questions when one is open.
type PortalHome struct {
	Title          string            `json:"title"`
	SupportEmail   string            `json:"support_email"`
	InterviewSlots map[string]string `json:"interview_slots"`

	Cycle     *cycledomain.RecruitmentCycle `json:"cycle,omitempty"`
	Questions []cycledomain.Question        `json:"questions,omitempty"`
	// AcceptingApplications reports whether the application window of
	// the active cycle contains the current time.
	AcceptingApplications bool `json:"accepting_applications"`
}

func (s *Server) GetPortalHome(c *gin.Context) {
	portal := s.portalCfg.Current()
	home := PortalHome{
		Title:          portal.Title,
		SupportEmail:   portal.SupportEmail,
		InterviewSlots: portal.InterviewSlots,
	}

	cycle, err := s.cycleSvc.GetActive(c.Request.Context())
	if err != nil {
		if errors.Is(err, cycledomain.ErrNoActiveCycle) {
			c.JSON(http.StatusOK, home)
			return
		}
		AbortWithError(c, err)
		return
	}

	questions, err := s.cycleSvc.ListQuestions(c.Request.Context(), cycle.ID.String())
	if err != nil {
		AbortWithError(c, err)
		return
	}

	home.Cycle = &cycle
	home.Questions = questions
	home.AcceptingApplications = cycle.ApplicationWindow().Contains(s.clock.Now())

	c.JSON(http.StatusOK, home)
}
