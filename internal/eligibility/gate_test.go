package eligibility

import (
	"context"
	"testing"
	"time"

	"github.com/bwmarrin/snowflake"
	applicantdomain "github.com/codecircle/recruit/internal/applicant/domain"
	applicantrepo "github.com/codecircle/recruit/internal/applicant/repository"
	applicationdomain "github.com/codecircle/recruit/internal/application/domain"
	applicationrepo "github.com/codecircle/recruit/internal/application/repository"
	"github.com/codecircle/recruit/internal/clock"
	cycledomain "github.com/codecircle/recruit/internal/cycle/domain"
	cyclerepo "github.com/codecircle/recruit/internal/cycle/repository"
	"github.com/codecircle/recruit/pkg/db"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type fixture struct {
	gate      *Gate
	db        *gorm.DB
	clock     *clock.FakeClock
	node      *snowflake.Node
	applicant applicantdomain.Applicant
	cycle     cycledomain.RecruitmentCycle
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	conn, err := db.NewTest()
	require.NoError(t, err)
	require.NoError(t, conn.AutoMigrate(
		&applicantdomain.Applicant{},
		&cycledomain.RecruitmentCycle{},
		&applicationdomain.Application{},
	))

	node, err := snowflake.NewNode(1)
	require.NoError(t, err)

	clk := clock.NewFakeClock(time.Date(2024, 1, 15, 12, 0, 0, 0, time.UTC))

	gate := NewGate(Params{
		DB:           conn,
		Log:          zap.NewNop(),
		Clock:        clk,
		Cycles:       cyclerepo.Provide(),
		Applications: applicationrepo.Provide(),
		Applicants:   applicantrepo.Provide(),
	})

	f := &fixture{gate: gate, db: conn, clock: clk, node: node}

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
		ID:           node.Generate(),
		Title:        "Spring 2024",
		Slug:         "spring-2024",
		ApplyStartAt: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
		ApplyEndAt:   time.Date(2024, 1, 31, 23, 59, 0, 0, time.UTC),
		IsActive:     true,
	}
	require.NoError(t, conn.Create(&f.cycle).Error)

	return f
}

func (f *fixture) insertApplication(t *testing.T, status applicationdomain.Status) applicationdomain.Application {
	t.Helper()
	app := applicationdomain.Application{
		ID:          f.node.Generate(),
		ApplicantID: f.applicant.ID,
		CycleID:     f.cycle.ID,
		Status:      status,
	}
	require.NoError(t, f.db.Create(&app).Error)
	return app
}

func TestCanStartApplication(t *testing.T) {
	f := newFixture(t)

	ok, err := f.gate.CanStartApplication(context.Background(), f.applicant.ID)
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestCanStartApplicationNoActiveCycle(t *testing.T) {
	f := newFixture(t)
	require.NoError(t, f.db.Model(&cycledomain.RecruitmentCycle{}).
		Where("id = ?", f.cycle.ID).Update("is_active", false).Error)

	ok, err := f.gate.CanStartApplication(context.Background(), f.applicant.ID)
	assert.False(t, ok)
	assert.ErrorIs(t, err, cycledomain.ErrNoActiveCycle)
}

func TestCanStartApplicationWindowClosed(t *testing.T) {
	f := newFixture(t)
	f.clock.Set(time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC))

	ok, err := f.gate.CanStartApplication(context.Background(), f.applicant.ID)
	assert.False(t, ok)
	assert.ErrorIs(t, err, applicationdomain.ErrWindowClosed)
}

func TestCanStartApplicationWithExistingDraft(t *testing.T) {
	f := newFixture(t)
	f.insertApplication(t, applicationdomain.StatusDraft)

	// A draft in progress does not block; the applicant resumes it.
	ok, err := f.gate.CanStartApplication(context.Background(), f.applicant.ID)
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestCanStartApplicationAlreadySubmitted(t *testing.T) {
	f := newFixture(t)
	f.insertApplication(t, applicationdomain.StatusSubmitted)

	ok, err := f.gate.CanStartApplication(context.Background(), f.applicant.ID)
	assert.False(t, ok)
	assert.ErrorIs(t, err, applicationdomain.ErrAlreadySubmitted)
}

func TestCanVerifyEmail(t *testing.T) {
	f := newFixture(t)

	ok, err := f.gate.CanVerifyEmail(context.Background(), f.applicant.ID)
	assert.False(t, ok)
	assert.ErrorIs(t, err, applicantdomain.ErrAlreadyVerified)

	require.NoError(t, f.db.Model(&applicantdomain.Applicant{}).
		Where("id = ?", f.applicant.ID).Update("is_email_verified", false).Error)
	ok, err = f.gate.CanVerifyEmail(context.Background(), f.applicant.ID)
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestCanAnswerQuestions(t *testing.T) {
	f := newFixture(t)

	ok, err := f.gate.CanAnswerQuestions(context.Background(), f.applicant.ID)
	assert.False(t, ok)
	assert.ErrorIs(t, err, ErrNoDraft)

	f.insertApplication(t, applicationdomain.StatusDraft)
	ok, err = f.gate.CanAnswerQuestions(context.Background(), f.applicant.ID)
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestCanAnswerQuestionsRequiresVerifiedEmail(t *testing.T) {
	f := newFixture(t)
	f.insertApplication(t, applicationdomain.StatusDraft)
	require.NoError(t, f.db.Model(&applicantdomain.Applicant{}).
		Where("id = ?", f.applicant.ID).Update("is_email_verified", false).Error)

	ok, err := f.gate.CanAnswerQuestions(context.Background(), f.applicant.ID)
	assert.False(t, ok)
	assert.ErrorIs(t, err, ErrEmailNotVerified)
}

func TestCanViewApplication(t *testing.T) {
	f := newFixture(t)
	app := f.insertApplication(t, applicationdomain.StatusSubmitted)

	ok, err := f.gate.CanViewApplication(context.Background(), f.applicant.ID, app.ID)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = f.gate.CanViewApplication(context.Background(), f.node.Generate(), app.ID)
	assert.False(t, ok)
	assert.ErrorIs(t, err, ErrForbidden)

	ok, err = f.gate.CanViewApplication(context.Background(), f.applicant.ID, f.node.Generate())
	assert.False(t, ok)
	assert.ErrorIs(t, err, applicationdomain.ErrNotFound)
}
