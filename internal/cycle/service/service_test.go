package service

import (
	"context"
	"testing"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/codecircle/recruit/internal/clock"
	"github.com/codecircle/recruit/internal/cycle/domain"
	"github.com/codecircle/recruit/internal/cycle/repository"
	"github.com/codecircle/recruit/pkg/db"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

func newTestService(t *testing.T, clk clock.Clock) (domain.Service, *gorm.DB) {
	t.Helper()

	conn, err := db.NewTest()
	require.NoError(t, err)
	require.NoError(t, conn.AutoMigrate(&domain.RecruitmentCycle{}, &domain.Question{}))

	node, err := snowflake.NewNode(1)
	require.NoError(t, err)

	svc := New(Params{
		DB:    conn,
		Log:   zap.NewNop(),
		GenID: node,
		Clock: clk,
		Repo:  repository.Provide(),
	})
	return svc, conn
}

func newCycleRequest(start, end time.Time) domain.CreateCycleRequest {
	return domain.CreateCycleRequest{
		Title:            "Spring 2024 Recruitment",
		Notice:           "Welcome to the spring round.",
		ApplyStartAt:     start,
		ApplyEndAt:       end,
		InterviewStartAt: end.Add(24 * time.Hour),
		InterviewEndAt:   end.Add(72 * time.Hour),
	}
}

func TestCreateCycle(t *testing.T) {
	clk := clock.NewFakeClock(time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC))
	svc, _ := newTestService(t, clk)

	start := time.Date(2024, 1, 10, 0, 0, 0, 0, time.UTC)
	end := time.Date(2024, 2, 1, 23, 59, 59, 0, time.UTC)
	cycle, err := svc.Create(context.Background(), newCycleRequest(start, end))
	require.NoError(t, err)

	assert.Equal(t, "spring-2024-recruitment", cycle.Slug)
	assert.False(t, cycle.IsActive)
	assert.Equal(t, start, cycle.ApplyStartAt)
}

func TestCreateCycleRejectsInvalidWindow(t *testing.T) {
	clk := clock.NewFakeClock(time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC))
	svc, _ := newTestService(t, clk)

	start := time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC)
	end := time.Date(2024, 1, 10, 0, 0, 0, 0, time.UTC)
	_, err := svc.Create(context.Background(), newCycleRequest(start, end))
	assert.ErrorIs(t, err, domain.ErrInvalidWindow)
}

func TestCreateCycleRejectsDuplicateSlug(t *testing.T) {
	clk := clock.NewFakeClock(time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC))
	svc, _ := newTestService(t, clk)

	start := time.Date(2024, 1, 10, 0, 0, 0, 0, time.UTC)
	end := time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC)
	_, err := svc.Create(context.Background(), newCycleRequest(start, end))
	require.NoError(t, err)

	_, err = svc.Create(context.Background(), newCycleRequest(start, end))
	assert.ErrorIs(t, err, domain.ErrAlreadyExists)
}

func TestActivateEnforcesSingleActiveCycle(t *testing.T) {
	clk := clock.NewFakeClock(time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC))
	svc, _ := newTestService(t, clk)

	ctx := context.Background()
	start := time.Date(2024, 1, 10, 0, 0, 0, 0, time.UTC)
	end := time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC)

	first, err := svc.Create(ctx, newCycleRequest(start, end))
	require.NoError(t, err)

	second := newCycleRequest(start.AddDate(0, 6, 0), end.AddDate(0, 6, 0))
	second.Title = "Fall 2024 Recruitment"
	other, err := svc.Create(ctx, second)
	require.NoError(t, err)

	require.NoError(t, svc.Activate(ctx, first.ID.String()))

	err = svc.Activate(ctx, other.ID.String())
	assert.ErrorIs(t, err, domain.ErrActiveCycleExists)

	// Re-activating the already-active cycle is a no-op.
	assert.NoError(t, svc.Activate(ctx, first.ID.String()))

	require.NoError(t, svc.Deactivate(ctx, first.ID.String()))
	assert.NoError(t, svc.Activate(ctx, other.ID.String()))
}

func TestGetActive(t *testing.T) {
	clk := clock.NewFakeClock(time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC))
	svc, _ := newTestService(t, clk)

	ctx := context.Background()
	_, err := svc.GetActive(ctx)
	assert.ErrorIs(t, err, domain.ErrNoActiveCycle)

	start := time.Date(2024, 1, 10, 0, 0, 0, 0, time.UTC)
	end := time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC)
	cycle, err := svc.Create(ctx, newCycleRequest(start, end))
	require.NoError(t, err)
	require.NoError(t, svc.Activate(ctx, cycle.ID.String()))

	active, err := svc.GetActive(ctx)
	require.NoError(t, err)
	assert.Equal(t, cycle.ID, active.ID)
}

func TestApplicationWindowBounds(t *testing.T) {
	start := time.Date(2024, 1, 10, 0, 0, 0, 0, time.UTC)
	end := time.Date(2024, 2, 1, 23, 59, 59, 0, time.UTC)
	w := domain.Window{StartAt: start, EndAt: end}

	tests := []struct {
		name string
		now  time.Time
		want bool
	}{
		{"before start", start.Add(-time.Second), false},
		{"at start", start, true},
		{"inside", start.Add(48 * time.Hour), true},
		{"at end", end, true},
		{"after end", end.Add(time.Second), false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, w.Contains(tt.now))
		})
	}
}

func TestInstantaneousWindow(t *testing.T) {
	at := time.Date(2024, 1, 10, 12, 0, 0, 0, time.UTC)
	w := domain.Window{StartAt: at, EndAt: at}

	assert.True(t, w.Contains(at))
	assert.False(t, w.Contains(at.Add(-time.Second)))
	assert.False(t, w.Contains(at.Add(time.Second)))
}

func TestQuestionOrdering(t *testing.T) {
	clk := clock.NewFakeClock(time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC))
	svc, _ := newTestService(t, clk)

	ctx := context.Background()
	start := time.Date(2024, 1, 10, 0, 0, 0, 0, time.UTC)
	end := time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC)
	cycle, err := svc.Create(ctx, newCycleRequest(start, end))
	require.NoError(t, err)

	// Two questions share position 1; insertion order must hold.
	q1, err := svc.AddQuestion(ctx, domain.AddQuestionRequest{
		CycleID: cycle.ID.String(), Text: "Why do you want to join?", Position: 2, IsRequired: true,
	})
	require.NoError(t, err)
	q2, err := svc.AddQuestion(ctx, domain.AddQuestionRequest{
		CycleID: cycle.ID.String(), Text: "Tell us about yourself.", Position: 1, IsRequired: true,
	})
	require.NoError(t, err)
	q3, err := svc.AddQuestion(ctx, domain.AddQuestionRequest{
		CycleID: cycle.ID.String(), Text: "What is your availability?", Position: 1, IsRequired: false,
	})
	require.NoError(t, err)

	questions, err := svc.ListQuestions(ctx, cycle.ID.String())
	require.NoError(t, err)
	require.Len(t, questions, 3)
	assert.Equal(t, q2.ID, questions[0].ID)
	assert.Equal(t, q3.ID, questions[1].ID)
	assert.Equal(t, q1.ID, questions[2].ID)
}

func TestAddQuestionDefaultsMaxLength(t *testing.T) {
	clk := clock.NewFakeClock(time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC))
	svc, _ := newTestService(t, clk)

	ctx := context.Background()
	start := time.Date(2024, 1, 10, 0, 0, 0, 0, time.UTC)
	end := time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC)
	cycle, err := svc.Create(ctx, newCycleRequest(start, end))
	require.NoError(t, err)

	q, err := svc.AddQuestion(ctx, domain.AddQuestionRequest{
		CycleID: cycle.ID.String(), Text: "Why us?", Position: 1, IsRequired: true,
	})
	require.NoError(t, err)
	assert.Equal(t, domain.DefaultAnswerMaxLength, q.MaxLength)
}

func TestUpdateAndDeleteQuestion(t *testing.T) {
	clk := clock.NewFakeClock(time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC))
	svc, _ := newTestService(t, clk)

	ctx := context.Background()
	start := time.Date(2024, 1, 10, 0, 0, 0, 0, time.UTC)
	end := time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC)
	cycle, err := svc.Create(ctx, newCycleRequest(start, end))
	require.NoError(t, err)

	q, err := svc.AddQuestion(ctx, domain.AddQuestionRequest{
		CycleID: cycle.ID.String(), Text: "Original", Position: 1, IsRequired: true,
	})
	require.NoError(t, err)

	updated, err := svc.UpdateQuestion(ctx, domain.UpdateQuestionRequest{
		QuestionID: q.ID.String(), Text: "Revised", Position: 3, IsRequired: false, MaxLength: 1000,
	})
	require.NoError(t, err)
	assert.Equal(t, "Revised", updated.Text)
	assert.Equal(t, 3, updated.Position)
	assert.Equal(t, 1000, updated.MaxLength)

	require.NoError(t, svc.DeleteQuestion(ctx, q.ID.String()))
	err = svc.DeleteQuestion(ctx, q.ID.String())
	assert.ErrorIs(t, err, domain.ErrQuestionNotFound)
}
