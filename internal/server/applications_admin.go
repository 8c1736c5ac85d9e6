package server

import (
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	applicationdomain "github.com/codecircle/recruit/internal/application/domain"
	"github.com/codecircle/recruit/internal/providers/pdf"
)

type listApplicationsQuery struct {
	CycleID   string `form:"cycle_id"`
	Status    string `form:"status"`
	PageToken string `form:"page_token"`
	PageSize  int    `form:"page_size"`
}

type AdvanceRequest struct {
	Target string `json:"target"`
}

type ScheduleInterviewRequest struct {
	Date      string `json:"date"`
	StartTime string `json:"start_time"`
	EndTime   string `json:"end_time"`
	Location  string `json:"location"`
}

func (s *Server) ListApplications(c *gin.Context) {
	var query listApplicationsQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	status := applicationdomain.Status(strings.TrimSpace(query.Status))
	if status != "" && !applicationdomain.IsValidStatus(status) {
		AbortWithError(c, newValidationError("status", "invalid_status", "unknown status"))
		return
	}

	result, err := s.applicationSvc.List(c.Request.Context(), applicationdomain.ListFilter{
		CycleID:   strings.TrimSpace(query.CycleID),
		Status:    status,
		PageToken: strings.TrimSpace(query.PageToken),
		PageSize:  query.PageSize,
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"applications":    result.Applications,
		"next_page_token": result.NextPageToken,
		"has_more":        result.HasMore,
	})
}

func (s *Server) GetApplicationByID(c *gin.Context) {
	application, err := s.applicationSvc.GetByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		AbortWithError(c, err)
		return
	}

	answers, err := s.applicationSvc.ListAnswers(c.Request.Context(), application.ID.String())
	if err != nil {
		AbortWithError(c, err)
		return
	}

	applicant, err := s.applicantSvc.GetByID(c.Request.Context(), application.ApplicantID.String())
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"application": application,
		"answers":     answers,
		"applicant":   applicant,
	})
}

func (s *Server) AdvanceApplication(c *gin.Context) {
	var req AdvanceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	target := applicationdomain.Status(strings.TrimSpace(req.Target))
	if !applicationdomain.IsValidStatus(target) {
		AbortWithError(c, newValidationError("target", "invalid_status", "unknown status"))
		return
	}

	application, err := s.applicationSvc.Advance(c.Request.Context(), c.Param("id"), target)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, application)
}

func (s *Server) ScheduleInterview(c *gin.Context) {
	var req ScheduleInterviewRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	date, err := time.Parse(dateOnlyLayout, strings.TrimSpace(req.Date))
	if err != nil {
		AbortWithError(c, newValidationError("date", "invalid_date", "date must be YYYY-MM-DD"))
		return
	}

	application, err := s.applicationSvc.ScheduleInterview(c.Request.Context(), applicationdomain.ScheduleInterviewRequest{
		ApplicationID: c.Param("id"),
		Date:          date,
		StartTime:     strings.TrimSpace(req.StartTime),
		EndTime:       strings.TrimSpace(req.EndTime),
		Location:      strings.TrimSpace(req.Location),
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, application)
}

// ExportApplication renders a PDF summary of one application.
func (s *Server) ExportApplication(c *gin.Context) {
	ctx := c.Request.Context()

	application, err := s.applicationSvc.GetByID(ctx, c.Param("id"))
	if err != nil {
		AbortWithError(c, err)
		return
	}

	applicant, err := s.applicantSvc.GetByID(ctx, application.ApplicantID.String())
	if err != nil {
		AbortWithError(c, err)
		return
	}

	cycle, err := s.cycleSvc.GetByID(ctx, application.CycleID.String())
	if err != nil {
		AbortWithError(c, err)
		return
	}

	questions, err := s.cycleSvc.ListQuestions(ctx, cycle.ID.String())
	if err != nil {
		AbortWithError(c, err)
		return
	}

	answers, err := s.applicationSvc.ListAnswers(ctx, application.ID.String())
	if err != nil {
		AbortWithError(c, err)
		return
	}

	answerByQuestion := make(map[string]string, len(answers))
	for _, answer := range answers {
		answerByQuestion[answer.QuestionID.String()] = answer.Content
	}

	qa := make([]pdf.QuestionAnswer, 0, len(questions))
	for _, question := range questions {
		qa = append(qa, pdf.QuestionAnswer{
			Question: question.Text,
			Answer:   answerByQuestion[question.ID.String()],
		})
	}

	portal := s.portalCfg.Current()
	data := pdf.ApplicationSummaryData{
		PortalTitle:    portal.Title,
		CycleTitle:     cycle.Title,
		ApplicantName:  applicant.Name,
		ApplicantEmail: applicant.Email,
		ApplicantPhone: applicant.Phone,
		Status:         string(application.Status),
		Availability:   availabilityLabels(application, portal.InterviewSlots),
		QA:             qa,
	}
	if application.SubmittedAt != nil {
		data.SubmittedAt = application.SubmittedAt.UTC().Format(time.RFC3339)
	}
	if application.InterviewDate != nil {
		data.InterviewDate = application.InterviewDate.Format(dateOnlyLayout)
		data.InterviewTime = application.InterviewStart + " - " + application.InterviewEnd
		data.InterviewLocation = application.InterviewLocation
	}

	reader, err := s.pdfProvider.GenerateApplicationSummary(ctx, data)
	if err != nil {
		AbortWithError(c, err)
		return
	}
	if reader == nil {
		AbortWithError(c, ErrInternal)
		return
	}

	body, err := io.ReadAll(reader)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	filename := fmt.Sprintf("application-%s.pdf", application.ID.String())
	c.Header("Content-Disposition", `attachment; filename="`+filename+`"`)
	c.Data(http.StatusOK, "application/pdf", body)
}

func availabilityLabels(application applicationdomain.Application, slots map[string]string) []string {
	labels := make([]string, 0, 4)
	add := func(chosen bool, key, fallback string) {
		if !chosen {
			return
		}
		if label, ok := slots[key]; ok && strings.TrimSpace(label) != "" {
			labels = append(labels, label)
			return
		}
		labels = append(labels, fallback)
	}
	add(application.InterviewSatMorning, "sat_morning", "Saturday morning")
	add(application.InterviewSatAfternoon, "sat_afternoon", "Saturday afternoon")
	add(application.InterviewSunMorning, "sun_morning", "Sunday morning")
	add(application.InterviewSunAfternoon, "sun_afternoon", "Sunday afternoon")
	return labels
}
