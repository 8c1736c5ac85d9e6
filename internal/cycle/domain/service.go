package domain

import (
	"context"
	"errors"
	"time"
)

type CreateCycleRequest struct {
	Title            string
	Notice           string
	ApplyStartAt     time.Time
	ApplyEndAt       time.Time
	InterviewStartAt time.Time
	InterviewEndAt   time.Time
}

type AddQuestionRequest struct {
	CycleID    string
	Text       string
	Position   int
	IsRequired bool
	MaxLength  int
}

type UpdateQuestionRequest struct {
	QuestionID string
	Text       string
	Position   int
	IsRequired bool
	MaxLength  int
}

type Service interface {
	Create(ctx context.Context, req CreateCycleRequest) (RecruitmentCycle, error)
	// Activate enforces the single-active-cycle invariant: activating a
	// cycle while a different one is active is rejected.
	Activate(ctx context.Context, id string) error
	Deactivate(ctx context.Context, id string) error
	GetByID(ctx context.Context, id string) (RecruitmentCycle, error)
	// GetActive returns the active cycle or ErrNoActiveCycle.
	GetActive(ctx context.Context) (RecruitmentCycle, error)
	List(ctx context.Context) ([]RecruitmentCycle, error)

	AddQuestion(ctx context.Context, req AddQuestionRequest) (Question, error)
	UpdateQuestion(ctx context.Context, req UpdateQuestionRequest) (Question, error)
	DeleteQuestion(ctx context.Context, questionID string) error
	// ListQuestions returns the cycle's questions ordered ascending by
	// position, ties broken by insertion order.
	ListQuestions(ctx context.Context, cycleID string) ([]Question, error)
}

var (
	ErrNotFound          = errors.New("cycle_not_found")
	ErrQuestionNotFound  = errors.New("question_not_found")
	ErrNoActiveCycle     = errors.New("no_active_cycle")
	ErrActiveCycleExists = errors.New("active_cycle_exists")
	ErrAlreadyExists     = errors.New("cycle_already_exists")
	ErrInvalidID         = errors.New("invalid_cycle_id")
	ErrInvalidTitle      = errors.New("invalid_title")
	ErrInvalidWindow     = errors.New("invalid_window")
	ErrInvalidQuestion   = errors.New("invalid_question")
)
