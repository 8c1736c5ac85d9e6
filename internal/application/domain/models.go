// Package domain contains the application lifecycle models.
package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
)

// Status is the single lifecycle enumeration for an application. The
// applicant moves draft to submitted; every later stage is staff-only.
type Status string

const (
	StatusDraft              Status = "draft"
	StatusSubmitted          Status = "submitted"
	StatusDocumentScreening  Status = "document_screening"
	StatusDocumentPassed     Status = "document_passed"
	StatusDocumentFailed     Status = "document_failed"
	StatusInterviewScheduled Status = "interview_scheduled"
	StatusInterviewCompleted Status = "interview_completed"
	StatusFinalPassed        Status = "final_passed"
	StatusFinalFailed        Status = "final_failed"
)

func IsValidStatus(s Status) bool {
	switch s {
	case StatusDraft, StatusSubmitted, StatusDocumentScreening,
		StatusDocumentPassed, StatusDocumentFailed,
		StatusInterviewScheduled, StatusInterviewCompleted,
		StatusFinalPassed, StatusFinalFailed:
		return true
	}
	return false
}

// Terminal reports whether no further transition is allowed.
func (s Status) Terminal() bool {
	return s == StatusDocumentFailed || s == StatusFinalPassed || s == StatusFinalFailed
}

// Application is one applicant's submission within one cycle. At most
// one exists per (applicant, cycle) pair.
type Application struct {
	ID          snowflake.ID `gorm:"primaryKey" json:"id"`
	ApplicantID snowflake.ID `gorm:"not null;uniqueIndex:idx_applications_applicant_cycle" json:"applicant_id"`
	CycleID     snowflake.ID `gorm:"not null;uniqueIndex:idx_applications_applicant_cycle;index" json:"cycle_id"`
	Status      Status       `gorm:"type:text;not null;default:draft;index" json:"status"`

	// One flag per fixed interview slot.
	InterviewSatMorning   bool `gorm:"not null;default:false" json:"interview_sat_morning"`
	InterviewSatAfternoon bool `gorm:"not null;default:false" json:"interview_sat_afternoon"`
	InterviewSunMorning   bool `gorm:"not null;default:false" json:"interview_sun_morning"`
	InterviewSunAfternoon bool `gorm:"not null;default:false" json:"interview_sun_afternoon"`

	// Confirmed slot, set when the interview is scheduled.
	InterviewDate     *time.Time `json:"interview_date,omitempty"`
	InterviewStart    string     `gorm:"type:text" json:"interview_start,omitempty"`
	InterviewEnd      string     `gorm:"type:text" json:"interview_end,omitempty"`
	InterviewLocation string     `gorm:"type:text" json:"interview_location,omitempty"`

	SubmittedAt *time.Time `json:"submitted_at,omitempty"`
	CreatedAt   time.Time  `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
	UpdatedAt   time.Time  `gorm:"not null;default:CURRENT_TIMESTAMP" json:"updated_at"`
}

// TableName sets the database table name.
func (Application) TableName() string { return "applications" }

// HasInterviewPreference reports whether at least one slot is chosen.
func (a *Application) HasInterviewPreference() bool {
	return a.InterviewSatMorning || a.InterviewSatAfternoon ||
		a.InterviewSunMorning || a.InterviewSunAfternoon
}

// Answer holds one applicant's response to one question. At most one
// exists per (application, question) pair; saves overwrite in place.
type Answer struct {
	ID            snowflake.ID `gorm:"primaryKey" json:"id"`
	ApplicationID snowflake.ID `gorm:"not null;uniqueIndex:idx_answers_application_question" json:"application_id"`
	QuestionID    snowflake.ID `gorm:"not null;uniqueIndex:idx_answers_application_question" json:"question_id"`
	Content       string       `gorm:"type:text;not null" json:"content"`
	CreatedAt     time.Time    `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
	UpdatedAt     time.Time    `gorm:"not null;default:CURRENT_TIMESTAMP" json:"updated_at"`
}

// TableName sets the database table name.
func (Answer) TableName() string { return "answers" }
