package domain

import (
	"context"
	"errors"
	"time"
)

// InterviewPreferences carries the four fixed availability flags.
type InterviewPreferences struct {
	SatMorning   bool `json:"sat_morning"`
	SatAfternoon bool `json:"sat_afternoon"`
	SunMorning   bool `json:"sun_morning"`
	SunAfternoon bool `json:"sun_afternoon"`
}

func (p InterviewPreferences) Any() bool {
	return p.SatMorning || p.SatAfternoon || p.SunMorning || p.SunAfternoon
}

// SaveDraftRequest upserts answers keyed by question and replaces the
// availability flags. Answers for questions outside the application's
// cycle are rejected.
type SaveDraftRequest struct {
	ApplicationID string
	// Answers maps question ID to answer text.
	Answers     map[string]string
	Preferences InterviewPreferences
}

type ScheduleInterviewRequest struct {
	ApplicationID string
	Date          time.Time
	StartTime     string
	EndTime       string
	Location      string
}

// ListFilter narrows the staff application listing.
type ListFilter struct {
	CycleID   string
	Status    Status
	PageToken string
	PageSize  int
}

type ListResult struct {
	Applications  []Application
	NextPageToken string
	HasMore       bool
}

type Service interface {
	// Create opens a draft for the applicant in the given cycle.
	Create(ctx context.Context, applicantID, cycleID string) (Application, error)
	SaveDraft(ctx context.Context, req SaveDraftRequest) (Application, error)
	// Submit finalizes a draft. Preconditions are checked in order:
	// required answers, interview preference, application window.
	Submit(ctx context.Context, applicationID string) (Application, error)

	// Advance performs a staff transition to the target status.
	Advance(ctx context.Context, applicationID string, target Status) (Application, error)
	// ScheduleInterview confirms a slot; the date must fall inside the
	// cycle's interview window.
	ScheduleInterview(ctx context.Context, req ScheduleInterviewRequest) (Application, error)

	GetByID(ctx context.Context, applicationID string) (Application, error)
	GetForApplicant(ctx context.Context, applicantID, cycleID string) (Application, error)
	ListAnswers(ctx context.Context, applicationID string) ([]Answer, error)
	List(ctx context.Context, filter ListFilter) (ListResult, error)
}

var (
	ErrNotFound              = errors.New("application_not_found")
	ErrAlreadyExists         = errors.New("application_already_exists")
	ErrNotDraft              = errors.New("application_not_draft")
	ErrAlreadySubmitted      = errors.New("application_already_submitted")
	ErrIncompleteAnswers     = errors.New("incomplete_answers")
	ErrNoInterviewPreference = errors.New("no_interview_preference")
	ErrWindowClosed          = errors.New("window_closed")
	ErrInvalidTransition     = errors.New("invalid_transition")
	ErrUnknownQuestion       = errors.New("unknown_question")
	ErrAnswerTooLong         = errors.New("answer_too_long")
	ErrInvalidID             = errors.New("invalid_application_id")
	ErrInvalidSchedule       = errors.New("invalid_schedule")
)
