package service

import (
	"context"
	"testing"
	"time"

	"github.com/bwmarrin/snowflake"
	applicantdomain "github.com/codecircle/recruit/internal/applicant/domain"
	applicantrepo "github.com/codecircle/recruit/internal/applicant/repository"
	"github.com/codecircle/recruit/internal/application/domain"
	"github.com/codecircle/recruit/internal/application/repository"
	auditdomain "github.com/codecircle/recruit/internal/audit/domain"
	auditrepo "github.com/codecircle/recruit/internal/audit/repository"
	auditservice "github.com/codecircle/recruit/internal/audit/service"
	"github.com/codecircle/recruit/internal/clock"
	"github.com/codecircle/recruit/internal/config"
	cycledomain "github.com/codecircle/recruit/internal/cycle/domain"
	cyclerepo "github.com/codecircle/recruit/internal/cycle/repository"
	"github.com/codecircle/recruit/internal/providers/email"
	"github.com/codecircle/recruit/pkg/db"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type fixture struct {
	svc       domain.Service
	db        *gorm.DB
	clock     *clock.FakeClock
	node      *snowflake.Node
	applicant applicantdomain.Applicant
	cycle     cycledomain.RecruitmentCycle
	required  []cycledomain.Question
	optional  cycledomain.Question
}

// newFixture seeds one applicant and one cycle whose application window
// is 2024-01-01T00:00Z through 2024-01-31T23:59Z, with two required
// questions and one optional. The clock starts mid-window.
func newFixture(t *testing.T) *fixture {
	t.Helper()

	conn, err := db.NewTest()
	require.NoError(t, err)
	require.NoError(t, conn.AutoMigrate(
		&applicantdomain.Applicant{},
		&cycledomain.RecruitmentCycle{},
		&cycledomain.Question{},
		&domain.Application{},
		&domain.Answer{},
		&auditdomain.AuditLog{},
	))

	node, err := snowflake.NewNode(1)
	require.NoError(t, err)

	clk := clock.NewFakeClock(time.Date(2024, 1, 15, 12, 0, 0, 0, time.UTC))

	holder, err := config.NewPortalConfigHolder()
	require.NoError(t, err)

	auditSvc := auditservice.NewService(auditservice.Params{
		DB:    conn,
		Log:   zap.NewNop(),
		GenID: node,
		Clock: clk,
		Repo:  auditrepo.Provide(),
	})

	svc := New(Params{
		DB:         conn,
		Log:        zap.NewNop(),
		GenID:      node,
		Clock:      clk,
		Repo:       repository.Provide(),
		Cycles:     cyclerepo.Provide(),
		Applicants: applicantrepo.Provide(),
		Audit:      auditSvc,
		Email:      &email.NoOpProvider{},
		Portal:     holder,
	})

	f := &fixture{svc: svc, db: conn, clock: clk, node: node}

	f.applicant = applicantdomain.Applicant{
		ID:              node.Generate(),
		Email:           "dana@example.com",
		Name:            "Dana Miller",
		PasswordHash:    "x",
		Role:            applicantdomain.RoleApplicant,
		IsEmailVerified: true,
	}
	require.NoError(t, conn.Create(&f.applicant).Error)

	f.cycle = cycledomain.RecruitmentCycle{
		ID:               node.Generate(),
		Title:            "Spring 2024",
		Slug:             "spring-2024",
		ApplyStartAt:     time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
		ApplyEndAt:       time.Date(2024, 1, 31, 23, 59, 0, 0, time.UTC),
		InterviewStartAt: time.Date(2024, 2, 10, 0, 0, 0, 0, time.UTC),
		InterviewEndAt:   time.Date(2024, 2, 20, 23, 59, 0, 0, time.UTC),
		IsActive:         true,
	}
	require.NoError(t, conn.Create(&f.cycle).Error)

	for i, text := range []string{"Why do you want to join?", "Tell us about a project."} {
		q := cycledomain.Question{
			ID:         node.Generate(),
			CycleID:    f.cycle.ID,
			Text:       text,
			Position:   i + 1,
			IsRequired: true,
			MaxLength:  500,
		}
		require.NoError(t, conn.Create(&q).Error)
		f.required = append(f.required, q)
	}
	f.optional = cycledomain.Question{
		ID:         node.Generate(),
		CycleID:    f.cycle.ID,
		Text:       "Anything else?",
		Position:   3,
		IsRequired: false,
		MaxLength:  200,
	}
	require.NoError(t, conn.Create(&f.optional).Error)

	return f
}

func (f *fixture) createApplication(t *testing.T) domain.Application {
	t.Helper()
	app, err := f.svc.Create(context.Background(), f.applicant.ID.String(), f.cycle.ID.String())
	require.NoError(t, err)
	return app
}

func (f *fixture) answerAll(t *testing.T, app domain.Application) {
	t.Helper()
	answers := map[string]string{}
	for _, q := range f.required {
		answers[q.ID.String()] = "A thoughtful answer."
	}
	_, err := f.svc.SaveDraft(context.Background(), domain.SaveDraftRequest{
		ApplicationID: app.ID.String(),
		Answers:       answers,
		Preferences:   domain.InterviewPreferences{SatMorning: true},
	})
	require.NoError(t, err)
}

func TestCreateApplication(t *testing.T) {
	f := newFixture(t)

	app := f.createApplication(t)
	assert.Equal(t, domain.StatusDraft, app.Status)
	assert.Nil(t, app.SubmittedAt)
}

func TestCreateDuplicateApplication(t *testing.T) {
	f := newFixture(t)

	f.createApplication(t)
	_, err := f.svc.Create(context.Background(), f.applicant.ID.String(), f.cycle.ID.String())
	assert.ErrorIs(t, err, domain.ErrAlreadyExists)
}

func TestSaveDraftUpsertsAnswers(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	app := f.createApplication(t)

	q := f.required[0]
	_, err := f.svc.SaveDraft(ctx, domain.SaveDraftRequest{
		ApplicationID: app.ID.String(),
		Answers:       map[string]string{q.ID.String(): "First draft."},
	})
	require.NoError(t, err)

	_, err = f.svc.SaveDraft(ctx, domain.SaveDraftRequest{
		ApplicationID: app.ID.String(),
		Answers:       map[string]string{q.ID.String(): "Second draft."},
	})
	require.NoError(t, err)

	answers, err := f.svc.ListAnswers(ctx, app.ID.String())
	require.NoError(t, err)
	require.Len(t, answers, 1)
	assert.Equal(t, "Second draft.", answers[0].Content)
}

func TestSaveDraftRejectsUnknownQuestion(t *testing.T) {
	f := newFixture(t)
	app := f.createApplication(t)

	_, err := f.svc.SaveDraft(context.Background(), domain.SaveDraftRequest{
		ApplicationID: app.ID.String(),
		Answers:       map[string]string{f.node.Generate().String(): "stray"},
	})
	assert.ErrorIs(t, err, domain.ErrUnknownQuestion)
}

func TestSaveDraftRejectsOverlongAnswer(t *testing.T) {
	f := newFixture(t)
	app := f.createApplication(t)

	long := make([]rune, f.optional.MaxLength+1)
	for i := range long {
		long[i] = 'a'
	}
	_, err := f.svc.SaveDraft(context.Background(), domain.SaveDraftRequest{
		ApplicationID: app.ID.String(),
		Answers:       map[string]string{f.optional.ID.String(): string(long)},
	})
	assert.ErrorIs(t, err, domain.ErrAnswerTooLong)
}

func TestSaveDraftOnlyWhileDraft(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	app := f.createApplication(t)
	f.answerAll(t, app)

	_, err := f.svc.Submit(ctx, app.ID.String())
	require.NoError(t, err)

	_, err = f.svc.SaveDraft(ctx, domain.SaveDraftRequest{
		ApplicationID: app.ID.String(),
		Answers:       map[string]string{f.required[0].ID.String(): "too late"},
	})
	assert.ErrorIs(t, err, domain.ErrNotDraft)
}

func TestSubmitPreconditionOrder(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	app := f.createApplication(t)

	// Everything is wrong: no answers, no preference, and the window
	// is over. Incomplete answers must win.
	f.clock.Set(time.Date(2024, 2, 5, 0, 0, 0, 0, time.UTC))
	_, err := f.svc.Submit(ctx, app.ID.String())
	assert.ErrorIs(t, err, domain.ErrIncompleteAnswers)

	// Answers present, still no preference and window closed.
	f.clock.Set(time.Date(2024, 1, 15, 12, 0, 0, 0, time.UTC))
	answers := map[string]string{}
	for _, q := range f.required {
		answers[q.ID.String()] = "Done."
	}
	_, err = f.svc.SaveDraft(ctx, domain.SaveDraftRequest{
		ApplicationID: app.ID.String(),
		Answers:       answers,
	})
	require.NoError(t, err)

	f.clock.Set(time.Date(2024, 2, 5, 0, 0, 0, 0, time.UTC))
	_, err = f.svc.Submit(ctx, app.ID.String())
	assert.ErrorIs(t, err, domain.ErrNoInterviewPreference)
}

func TestSubmitRequiresNonEmptyAnswers(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	app := f.createApplication(t)

	// Whitespace does not count as an answer.
	answers := map[string]string{
		f.required[0].ID.String(): "Real answer.",
		f.required[1].ID.String(): "   ",
	}
	_, err := f.svc.SaveDraft(ctx, domain.SaveDraftRequest{
		ApplicationID: app.ID.String(),
		Answers:       answers,
		Preferences:   domain.InterviewPreferences{SunAfternoon: true},
	})
	require.NoError(t, err)

	_, err = f.svc.Submit(ctx, app.ID.String())
	assert.ErrorIs(t, err, domain.ErrIncompleteAnswers)
}

func TestSubmitWindowClosed(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	app := f.createApplication(t)
	f.answerAll(t, app)

	// One minute past the window end.
	f.clock.Set(time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC))
	_, err := f.svc.Submit(ctx, app.ID.String())
	assert.ErrorIs(t, err, domain.ErrWindowClosed)

	got, err := f.svc.GetByID(ctx, app.ID.String())
	require.NoError(t, err)
	assert.Equal(t, domain.StatusDraft, got.Status)
	assert.Nil(t, got.SubmittedAt)
}

func TestSubmitAtWindowEnd(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	app := f.createApplication(t)
	f.answerAll(t, app)

	// The closing instant itself is still inside the window.
	f.clock.Set(f.cycle.ApplyEndAt)
	got, err := f.svc.Submit(ctx, app.ID.String())
	require.NoError(t, err)
	assert.Equal(t, domain.StatusSubmitted, got.Status)
}

func TestSubmitSetsSubmittedAt(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	app := f.createApplication(t)
	f.answerAll(t, app)

	at := time.Date(2024, 1, 20, 9, 30, 0, 0, time.UTC)
	f.clock.Set(at)
	got, err := f.svc.Submit(ctx, app.ID.String())
	require.NoError(t, err)
	require.NotNil(t, got.SubmittedAt)
	assert.Equal(t, at, got.SubmittedAt.UTC())
}

func TestSubmitTwice(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	app := f.createApplication(t)
	f.answerAll(t, app)

	first, err := f.svc.Submit(ctx, app.ID.String())
	require.NoError(t, err)

	f.clock.Advance(time.Hour)
	_, err = f.svc.Submit(ctx, app.ID.String())
	assert.ErrorIs(t, err, domain.ErrAlreadySubmitted)

	got, err := f.svc.GetByID(ctx, app.ID.String())
	require.NoError(t, err)
	assert.Equal(t, first.SubmittedAt.UTC(), got.SubmittedAt.UTC())
}

func TestAdvanceWalksForward(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	app := f.createApplication(t)
	f.answerAll(t, app)
	_, err := f.svc.Submit(ctx, app.ID.String())
	require.NoError(t, err)

	got, err := f.svc.Advance(ctx, app.ID.String(), domain.StatusDocumentScreening)
	require.NoError(t, err)
	assert.Equal(t, domain.StatusDocumentScreening, got.Status)

	got, err = f.svc.Advance(ctx, app.ID.String(), domain.StatusDocumentPassed)
	require.NoError(t, err)
	assert.Equal(t, domain.StatusDocumentPassed, got.Status)
}

func TestAdvanceRejectsOutOfOrder(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	app := f.createApplication(t)
	f.answerAll(t, app)
	_, err := f.svc.Submit(ctx, app.ID.String())
	require.NoError(t, err)

	_, err = f.svc.Advance(ctx, app.ID.String(), domain.StatusFinalPassed)
	assert.ErrorIs(t, err, domain.ErrInvalidTransition)

	// No backward transitions.
	_, err = f.svc.Advance(ctx, app.ID.String(), domain.StatusDraft)
	assert.ErrorIs(t, err, domain.ErrInvalidTransition)

	// Scheduling goes through its own operation, never Advance.
	_, err = f.svc.Advance(ctx, app.ID.String(), domain.StatusInterviewScheduled)
	assert.ErrorIs(t, err, domain.ErrInvalidTransition)
}

func TestAdvanceTerminalStatus(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	app := f.createApplication(t)
	f.answerAll(t, app)
	_, err := f.svc.Submit(ctx, app.ID.String())
	require.NoError(t, err)

	_, err = f.svc.Advance(ctx, app.ID.String(), domain.StatusDocumentScreening)
	require.NoError(t, err)
	_, err = f.svc.Advance(ctx, app.ID.String(), domain.StatusDocumentFailed)
	require.NoError(t, err)

	_, err = f.svc.Advance(ctx, app.ID.String(), domain.StatusDocumentPassed)
	assert.ErrorIs(t, err, domain.ErrInvalidTransition)
}

func (f *fixture) toDocumentPassed(t *testing.T) domain.Application {
	t.Helper()
	ctx := context.Background()
	app := f.createApplication(t)
	f.answerAll(t, app)
	_, err := f.svc.Submit(ctx, app.ID.String())
	require.NoError(t, err)
	_, err = f.svc.Advance(ctx, app.ID.String(), domain.StatusDocumentScreening)
	require.NoError(t, err)
	got, err := f.svc.Advance(ctx, app.ID.String(), domain.StatusDocumentPassed)
	require.NoError(t, err)
	return got
}

func TestScheduleInterview(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	app := f.toDocumentPassed(t)

	got, err := f.svc.ScheduleInterview(ctx, domain.ScheduleInterviewRequest{
		ApplicationID: app.ID.String(),
		Date:          time.Date(2024, 2, 15, 0, 0, 0, 0, time.UTC),
		StartTime:     "10:00",
		EndTime:       "10:30",
		Location:      "Room 2B",
	})
	require.NoError(t, err)
	assert.Equal(t, domain.StatusInterviewScheduled, got.Status)
	require.NotNil(t, got.InterviewDate)
	assert.Equal(t, "Room 2B", got.InterviewLocation)
}

func TestScheduleInterviewOutsideWindow(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	app := f.toDocumentPassed(t)

	_, err := f.svc.ScheduleInterview(ctx, domain.ScheduleInterviewRequest{
		ApplicationID: app.ID.String(),
		Date:          time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC),
		StartTime:     "10:00",
		EndTime:       "10:30",
		Location:      "Room 2B",
	})
	assert.ErrorIs(t, err, domain.ErrWindowClosed)

	got, err := f.svc.GetByID(ctx, app.ID.String())
	require.NoError(t, err)
	assert.Equal(t, domain.StatusDocumentPassed, got.Status)
	assert.Nil(t, got.InterviewDate)
}

func TestScheduleInterviewRequiresDocumentPassed(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	app := f.createApplication(t)

	_, err := f.svc.ScheduleInterview(ctx, domain.ScheduleInterviewRequest{
		ApplicationID: app.ID.String(),
		Date:          time.Date(2024, 2, 15, 0, 0, 0, 0, time.UTC),
		StartTime:     "10:00",
		EndTime:       "10:30",
		Location:      "Room 2B",
	})
	assert.ErrorIs(t, err, domain.ErrInvalidTransition)
}

func TestScheduleInterviewValidatesFields(t *testing.T) {
	f := newFixture(t)
	app := f.toDocumentPassed(t)

	_, err := f.svc.ScheduleInterview(context.Background(), domain.ScheduleInterviewRequest{
		ApplicationID: app.ID.String(),
		Date:          time.Date(2024, 2, 15, 0, 0, 0, 0, time.UTC),
		StartTime:     "10:00",
	})
	assert.ErrorIs(t, err, domain.ErrInvalidSchedule)
}

func TestStaffTransitionsAreAudited(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	app := f.createApplication(t)
	f.answerAll(t, app)
	_, err := f.svc.Submit(ctx, app.ID.String())
	require.NoError(t, err)
	_, err = f.svc.Advance(ctx, app.ID.String(), domain.StatusDocumentScreening)
	require.NoError(t, err)

	var count int64
	require.NoError(t, f.db.Model(&auditdomain.AuditLog{}).
		Where("action = ?", "application.advance").Count(&count).Error)
	assert.EqualValues(t, 1, count)
}

func TestListApplicationsByStatus(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	app := f.createApplication(t)
	f.answerAll(t, app)
	_, err := f.svc.Submit(ctx, app.ID.String())
	require.NoError(t, err)

	result, err := f.svc.List(ctx, domain.ListFilter{
		CycleID: f.cycle.ID.String(),
		Status:  domain.StatusSubmitted,
	})
	require.NoError(t, err)
	require.Len(t, result.Applications, 1)
	assert.False(t, result.HasMore)

	result, err = f.svc.List(ctx, domain.ListFilter{Status: domain.StatusDraft})
	require.NoError(t, err)
	assert.Empty(t, result.Applications)
}
