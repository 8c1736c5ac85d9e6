package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/bwmarrin/snowflake"
	applicantdomain "github.com/codecircle/recruit/internal/applicant/domain"
	"github.com/codecircle/recruit/internal/application/domain"
	auditdomain "github.com/codecircle/recruit/internal/audit/domain"
	"github.com/codecircle/recruit/internal/clock"
	"github.com/codecircle/recruit/internal/config"
	cycledomain "github.com/codecircle/recruit/internal/cycle/domain"
	"github.com/codecircle/recruit/internal/observability/metrics"
	"github.com/codecircle/recruit/internal/providers/email"
	"github.com/codecircle/recruit/pkg/db"
	"github.com/codecircle/recruit/pkg/db/pagination"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type Params struct {
	fx.In
	DB         *gorm.DB
	Log        *zap.Logger
	GenID      *snowflake.Node
	Clock      clock.Clock
	Repo       domain.Repository
	Cycles     cycledomain.Repository
	Applicants applicantdomain.Repository
	Audit      auditdomain.Service
	Email      email.Provider
	Portal     *config.PortalConfigHolder
	Metrics    *metrics.PortalMetrics `optional:"true"`
}

type service struct {
	db         *gorm.DB
	log        *zap.Logger
	genID      *snowflake.Node
	clock      clock.Clock
	repo       domain.Repository
	cycles     cycledomain.Repository
	applicants applicantdomain.Repository
	audit      auditdomain.Service
	email      email.Provider
	portal     *config.PortalConfigHolder
	metrics    *metrics.PortalMetrics
}

func New(p Params) domain.Service {
	return &service{
		db:         p.DB,
		log:        p.Log.Named("application.service"),
		genID:      p.GenID,
		clock:      p.Clock,
		repo:       p.Repo,
		cycles:     p.Cycles,
		applicants: p.Applicants,
		audit:      p.Audit,
		email:      p.Email,
		portal:     p.Portal,
		metrics:    p.Metrics,
	}
}

func (s *service) Create(ctx context.Context, applicantID, cycleID string) (domain.Application, error) {
	aID, err := parseID(applicantID)
	if err != nil {
		return domain.Application{}, domain.ErrInvalidID
	}
	cID, err := parseID(cycleID)
	if err != nil {
		return domain.Application{}, cycledomain.ErrInvalidID
	}

	cycle, err := s.cycles.FindByID(ctx, s.db, cID)
	if err != nil {
		return domain.Application{}, fmt.Errorf("find cycle: %w", err)
	}
	if cycle == nil {
		return domain.Application{}, cycledomain.ErrNotFound
	}

	now := s.clock.Now()
	application := &domain.Application{
		ID:          s.genID.Generate(),
		ApplicantID: aID,
		CycleID:     cID,
		Status:      domain.StatusDraft,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	// The unique index on (applicant_id, cycle_id) is the source of
	// truth for the one-application invariant.
	if err := s.repo.Insert(ctx, s.db, application); err != nil {
		if db.IsDuplicateKeyErr(err) {
			return domain.Application{}, domain.ErrAlreadyExists
		}
		return domain.Application{}, fmt.Errorf("insert application: %w", err)
	}

	s.metrics.RecordApplicationCreated()
	s.log.Info("application created",
		zap.String("application_id", application.ID.String()),
		zap.String("cycle_id", cycleID),
	)
	return *application, nil
}

func (s *service) SaveDraft(ctx context.Context, req domain.SaveDraftRequest) (domain.Application, error) {
	id, err := parseID(req.ApplicationID)
	if err != nil {
		return domain.Application{}, domain.ErrInvalidID
	}

	var saved *domain.Application
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		application, err := s.repo.FindByIDForUpdate(ctx, tx, id)
		if err != nil {
			return err
		}
		if application == nil {
			return domain.ErrNotFound
		}
		if application.Status != domain.StatusDraft {
			return domain.ErrNotDraft
		}

		questions, err := s.cycles.ListQuestions(ctx, tx, application.CycleID)
		if err != nil {
			return fmt.Errorf("list questions: %w", err)
		}
		byID := make(map[snowflake.ID]*cycledomain.Question, len(questions))
		for _, q := range questions {
			byID[q.ID] = q
		}

		now := s.clock.Now()
		for rawID, content := range req.Answers {
			qID, err := parseID(rawID)
			if err != nil {
				return domain.ErrUnknownQuestion
			}
			question, ok := byID[qID]
			if !ok {
				return domain.ErrUnknownQuestion
			}
			if len([]rune(content)) > question.MaxLength {
				return domain.ErrAnswerTooLong
			}
			answer := &domain.Answer{
				ID:            s.genID.Generate(),
				ApplicationID: application.ID,
				QuestionID:    qID,
				Content:       content,
				CreatedAt:     now,
				UpdatedAt:     now,
			}
			if err := s.repo.UpsertAnswer(ctx, tx, answer); err != nil {
				return fmt.Errorf("upsert answer: %w", err)
			}
		}

		application.InterviewSatMorning = req.Preferences.SatMorning
		application.InterviewSatAfternoon = req.Preferences.SatAfternoon
		application.InterviewSunMorning = req.Preferences.SunMorning
		application.InterviewSunAfternoon = req.Preferences.SunAfternoon
		application.UpdatedAt = now

		if err := s.repo.Update(ctx, tx, application); err != nil {
			return fmt.Errorf("update application: %w", err)
		}
		saved = application
		return nil
	})
	if err != nil {
		return domain.Application{}, err
	}
	return *saved, nil
}

func (s *service) Submit(ctx context.Context, applicationID string) (domain.Application, error) {
	id, err := parseID(applicationID)
	if err != nil {
		return domain.Application{}, domain.ErrInvalidID
	}

	var submitted *domain.Application
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		application, err := s.repo.FindByIDForUpdate(ctx, tx, id)
		if err != nil {
			return err
		}
		if application == nil {
			return domain.ErrNotFound
		}
		if application.Status != domain.StatusDraft {
			return domain.ErrAlreadySubmitted
		}

		cycle, err := s.cycles.FindByID(ctx, tx, application.CycleID)
		if err != nil {
			return fmt.Errorf("find cycle: %w", err)
		}
		if cycle == nil {
			return cycledomain.ErrNotFound
		}

		// Preconditions, in order: answers, preference, window.
		complete, err := s.requiredAnswersComplete(ctx, tx, application)
		if err != nil {
			return err
		}
		if !complete {
			return domain.ErrIncompleteAnswers
		}
		if !application.HasInterviewPreference() {
			return domain.ErrNoInterviewPreference
		}

		now := s.clock.Now()
		if !cycle.ApplicationWindow().Contains(now) {
			return domain.ErrWindowClosed
		}

		application.Status = domain.StatusSubmitted
		application.SubmittedAt = &now
		application.UpdatedAt = now

		if err := s.repo.Update(ctx, tx, application); err != nil {
			return fmt.Errorf("update application: %w", err)
		}
		submitted = application
		return nil
	})
	if err != nil {
		return domain.Application{}, err
	}

	s.metrics.RecordApplicationSubmitted()
	s.notifySubmission(submitted)
	s.recordAudit(ctx, auditdomain.ActorTypeApplicant, submitted.ApplicantID.String(), "application.submit", submitted, map[string]any{
		"status": string(submitted.Status),
	})

	s.log.Info("application submitted",
		zap.String("application_id", applicationID),
	)
	return *submitted, nil
}

func (s *service) Advance(ctx context.Context, applicationID string, target domain.Status) (domain.Application, error) {
	id, err := parseID(applicationID)
	if err != nil {
		return domain.Application{}, domain.ErrInvalidID
	}
	if !domain.IsValidStatus(target) {
		return domain.Application{}, domain.ErrInvalidTransition
	}
	// Submission and interview scheduling have their own entry points
	// with preconditions; neither is reachable through Advance.
	if target == domain.StatusSubmitted || target == domain.StatusInterviewScheduled {
		return domain.Application{}, domain.ErrInvalidTransition
	}

	var advanced *domain.Application
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		application, err := s.repo.FindByIDForUpdate(ctx, tx, id)
		if err != nil {
			return err
		}
		if application == nil {
			return domain.ErrNotFound
		}
		if application.Status == target {
			advanced = application
			return nil
		}
		if !domain.TransitionAllowed(application.Status, target) {
			return domain.ErrInvalidTransition
		}

		application.Status = target
		application.UpdatedAt = s.clock.Now()

		if err := s.repo.Update(ctx, tx, application); err != nil {
			return fmt.Errorf("update application: %w", err)
		}
		advanced = application
		return nil
	})
	if err != nil {
		return domain.Application{}, err
	}

	s.recordAudit(ctx, auditdomain.ActorTypeStaff, "", "application.advance", advanced, map[string]any{
		"status": string(advanced.Status),
	})
	if isDecision(advanced.Status) {
		s.notifyStatusChange(advanced)
	}

	s.log.Info("application advanced",
		zap.String("application_id", applicationID),
		zap.String("status", string(advanced.Status)),
	)
	return *advanced, nil
}

func (s *service) ScheduleInterview(ctx context.Context, req domain.ScheduleInterviewRequest) (domain.Application, error) {
	id, err := parseID(req.ApplicationID)
	if err != nil {
		return domain.Application{}, domain.ErrInvalidID
	}
	if req.Date.IsZero() || strings.TrimSpace(req.StartTime) == "" ||
		strings.TrimSpace(req.EndTime) == "" || strings.TrimSpace(req.Location) == "" {
		return domain.Application{}, domain.ErrInvalidSchedule
	}

	var scheduled *domain.Application
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		application, err := s.repo.FindByIDForUpdate(ctx, tx, id)
		if err != nil {
			return err
		}
		if application == nil {
			return domain.ErrNotFound
		}
		if application.Status != domain.StatusDocumentPassed {
			return domain.ErrInvalidTransition
		}

		cycle, err := s.cycles.FindByID(ctx, tx, application.CycleID)
		if err != nil {
			return fmt.Errorf("find cycle: %w", err)
		}
		if cycle == nil {
			return cycledomain.ErrNotFound
		}
		if !cycle.InterviewWindow().Contains(req.Date) {
			return domain.ErrWindowClosed
		}

		date := req.Date.UTC()
		application.Status = domain.StatusInterviewScheduled
		application.InterviewDate = &date
		application.InterviewStart = req.StartTime
		application.InterviewEnd = req.EndTime
		application.InterviewLocation = req.Location
		application.UpdatedAt = s.clock.Now()

		if err := s.repo.Update(ctx, tx, application); err != nil {
			return fmt.Errorf("update application: %w", err)
		}
		scheduled = application
		return nil
	})
	if err != nil {
		return domain.Application{}, err
	}

	s.recordAudit(ctx, auditdomain.ActorTypeStaff, "", "application.schedule_interview", scheduled, map[string]any{
		"date":     scheduled.InterviewDate.Format("2006-01-02"),
		"location": scheduled.InterviewLocation,
	})
	s.notifyInterview(scheduled)

	s.log.Info("interview scheduled",
		zap.String("application_id", req.ApplicationID),
	)
	return *scheduled, nil
}

func (s *service) GetByID(ctx context.Context, applicationID string) (domain.Application, error) {
	id, err := parseID(applicationID)
	if err != nil {
		return domain.Application{}, domain.ErrInvalidID
	}

	application, err := s.repo.FindByID(ctx, s.db, id)
	if err != nil {
		return domain.Application{}, fmt.Errorf("find application: %w", err)
	}
	if application == nil {
		return domain.Application{}, domain.ErrNotFound
	}
	return *application, nil
}

func (s *service) GetForApplicant(ctx context.Context, applicantID, cycleID string) (domain.Application, error) {
	aID, err := parseID(applicantID)
	if err != nil {
		return domain.Application{}, domain.ErrInvalidID
	}
	cID, err := parseID(cycleID)
	if err != nil {
		return domain.Application{}, cycledomain.ErrInvalidID
	}

	application, err := s.repo.FindByApplicantAndCycle(ctx, s.db, aID, cID)
	if err != nil {
		return domain.Application{}, fmt.Errorf("find application: %w", err)
	}
	if application == nil {
		return domain.Application{}, domain.ErrNotFound
	}
	return *application, nil
}

func (s *service) ListAnswers(ctx context.Context, applicationID string) ([]domain.Answer, error) {
	id, err := parseID(applicationID)
	if err != nil {
		return nil, domain.ErrInvalidID
	}

	answers, err := s.repo.ListAnswers(ctx, s.db, id)
	if err != nil {
		return nil, fmt.Errorf("list answers: %w", err)
	}

	out := make([]domain.Answer, 0, len(answers))
	for _, a := range answers {
		out = append(out, *a)
	}
	return out, nil
}

func (s *service) List(ctx context.Context, filter domain.ListFilter) (domain.ListResult, error) {
	var cycleID snowflake.ID
	if filter.CycleID != "" {
		id, err := parseID(filter.CycleID)
		if err != nil {
			return domain.ListResult{}, cycledomain.ErrInvalidID
		}
		cycleID = id
	}
	if filter.Status != "" && !domain.IsValidStatus(filter.Status) {
		return domain.ListResult{}, domain.ErrInvalidTransition
	}

	pageSize := filter.PageSize
	if pageSize <= 0 {
		pageSize = 20
	}

	items, err := s.repo.List(ctx, s.db, cycleID, filter.Status, pagination.Pagination{
		PageToken: filter.PageToken,
		PageSize:  pageSize,
	})
	if err != nil {
		return domain.ListResult{}, fmt.Errorf("list applications: %w", err)
	}

	pageInfo := pagination.BuildCursorPageInfo(items, pageSize, func(item *domain.Application) string {
		token, err := pagination.EncodeCursor(pagination.Cursor{ID: item.ID.String()})
		if err != nil {
			return ""
		}
		return token
	})
	if len(items) > pageSize {
		items = items[:pageSize]
	}

	result := domain.ListResult{Applications: make([]domain.Application, 0, len(items))}
	for _, item := range items {
		result.Applications = append(result.Applications, *item)
	}
	if pageInfo != nil {
		result.NextPageToken = pageInfo.NextPageToken
		result.HasMore = pageInfo.HasMore
	}
	return result, nil
}

func (s *service) requiredAnswersComplete(ctx context.Context, tx *gorm.DB, application *domain.Application) (bool, error) {
	questions, err := s.cycles.ListQuestions(ctx, tx, application.CycleID)
	if err != nil {
		return false, fmt.Errorf("list questions: %w", err)
	}
	answers, err := s.repo.ListAnswers(ctx, tx, application.ID)
	if err != nil {
		return false, fmt.Errorf("list answers: %w", err)
	}

	answered := make(map[snowflake.ID]bool, len(answers))
	for _, a := range answers {
		answered[a.QuestionID] = strings.TrimSpace(a.Content) != ""
	}
	for _, q := range questions {
		if q.IsRequired && !answered[q.ID] {
			return false, nil
		}
	}
	return true, nil
}

func isDecision(status domain.Status) bool {
	switch status {
	case domain.StatusDocumentPassed, domain.StatusDocumentFailed,
		domain.StatusFinalPassed, domain.StatusFinalFailed:
		return true
	}
	return false
}

func (s *service) recordAudit(ctx context.Context, actorType auditdomain.ActorType, actorID string, action string, application *domain.Application, metadata map[string]any) {
	targetID := application.ID.String()
	var actor *string
	if actorID != "" {
		actor = &actorID
	}
	if err := s.audit.Record(ctx, actorType, actor, action, "application", &targetID, metadata); err != nil {
		s.log.Warn("audit record", zap.String("action", action), zap.Error(err))
	}
}

// Notification helpers run after commit and never influence the result
// of the transition they describe.

func (s *service) notifySubmission(application *domain.Application) {
	applicant, cycle, ok := s.loadNotifyContext(application)
	if !ok {
		return
	}
	portal := s.portal.Current()
	s.dispatchEmail(applicant.Email, email.TemplateSubmissionReceipt, map[string]interface{}{
		"portal_title":  portal.Title,
		"support_email": portal.SupportEmail,
		"name":          applicant.Name,
		"cycle_title":   cycle.Title,
	})
}

func (s *service) notifyStatusChange(application *domain.Application) {
	applicant, cycle, ok := s.loadNotifyContext(application)
	if !ok {
		return
	}
	portal := s.portal.Current()
	s.dispatchEmail(applicant.Email, email.TemplateStatusUpdate, map[string]interface{}{
		"portal_title":  portal.Title,
		"support_email": portal.SupportEmail,
		"name":          applicant.Name,
		"cycle_title":   cycle.Title,
		"status":        string(application.Status),
	})
}

func (s *service) notifyInterview(application *domain.Application) {
	applicant, cycle, ok := s.loadNotifyContext(application)
	if !ok {
		return
	}
	portal := s.portal.Current()
	s.dispatchEmail(applicant.Email, email.TemplateInterviewNotice, map[string]interface{}{
		"portal_title":  portal.Title,
		"support_email": portal.SupportEmail,
		"name":          applicant.Name,
		"cycle_title":   cycle.Title,
		"date":          application.InterviewDate.Format("2006-01-02"),
		"start_time":    application.InterviewStart,
		"end_time":      application.InterviewEnd,
		"location":      application.InterviewLocation,
	})
}

func (s *service) loadNotifyContext(application *domain.Application) (*applicantdomain.Applicant, *cycledomain.RecruitmentCycle, bool) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	applicant, err := s.applicants.FindByID(ctx, s.db, application.ApplicantID)
	if err != nil || applicant == nil {
		s.log.Warn("load applicant for notification", zap.Error(err))
		return nil, nil, false
	}
	cycle, err := s.cycles.FindByID(ctx, s.db, application.CycleID)
	if err != nil || cycle == nil {
		s.log.Warn("load cycle for notification", zap.Error(err))
		return nil, nil, false
	}
	return applicant, cycle, true
}

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

func parseID(value string) (snowflake.ID, error) {
	id, err := snowflake.ParseString(strings.TrimSpace(value))
	if err != nil || id == 0 {
		return 0, fmt.Errorf("invalid id")
	}
	return id, nil
}
