// Package domain contains the recruitment cycle and question models.
package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
)

// RecruitmentCycle is a time-bounded admissions round with its own
// question set and interview window.
type RecruitmentCycle struct {
	ID               snowflake.ID `gorm:"primaryKey" json:"id"`
	Title            string       `gorm:"type:text;not null" json:"title"`
	Slug             string       `gorm:"type:text;not null;uniqueIndex" json:"slug"`
	Notice           string       `gorm:"type:text" json:"notice"`
	ApplyStartAt     time.Time    `gorm:"not null" json:"apply_start_at"`
	ApplyEndAt       time.Time    `gorm:"not null" json:"apply_end_at"`
	InterviewStartAt time.Time    `gorm:"not null" json:"interview_start_at"`
	InterviewEndAt   time.Time    `gorm:"not null" json:"interview_end_at"`
	IsActive         bool         `gorm:"not null;default:false;index" json:"is_active"`
	CreatedAt        time.Time    `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
	UpdatedAt        time.Time    `gorm:"not null;default:CURRENT_TIMESTAMP" json:"updated_at"`
}

// TableName sets the database table name.
func (RecruitmentCycle) TableName() string { return "recruitment_cycles" }

func (c *RecruitmentCycle) ApplicationWindow() Window {
	return Window{StartAt: c.ApplyStartAt, EndAt: c.ApplyEndAt}
}

func (c *RecruitmentCycle) InterviewWindow() Window {
	return Window{StartAt: c.InterviewStartAt, EndAt: c.InterviewEndAt}
}

// Window is a closed time interval. StartAt == EndAt is a valid
// instantaneous window.
type Window struct {
	StartAt time.Time
	EndAt   time.Time
}

// Contains reports whether now falls within the window, inclusive of
// both bounds.
func (w Window) Contains(now time.Time) bool {
	return !now.Before(w.StartAt) && !now.After(w.EndAt)
}

// DefaultAnswerMaxLength bounds an answer when a question does not set
// its own limit.
const DefaultAnswerMaxLength = 500

// Question belongs to exactly one cycle and drives one field of the
// dynamic answer form.
type Question struct {
	ID         snowflake.ID `gorm:"primaryKey" json:"id"`
	CycleID    snowflake.ID `gorm:"not null;index" json:"cycle_id"`
	Text       string       `gorm:"type:text;not null" json:"text"`
	Position   int          `gorm:"not null" json:"position"`
	IsRequired bool         `gorm:"not null;default:true" json:"is_required"`
	MaxLength  int          `gorm:"not null;default:500" json:"max_length"`
	CreatedAt  time.Time    `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
	UpdatedAt  time.Time    `gorm:"not null;default:CURRENT_TIMESTAMP" json:"updated_at"`
}

// TableName sets the database table name.
func (Question) TableName() string { return "questions" }
