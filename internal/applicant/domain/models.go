// Package domain contains the applicant account and session models.
package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
)

// Roles assigned to portal accounts. Staff accounts are provisioned
// out of band; self-service signup always yields an applicant.
const (
	RoleApplicant = "applicant"
	RoleStaff     = "staff"
)

type Applicant struct {
	ID           snowflake.ID `gorm:"primaryKey" json:"id"`
	Email        string       `gorm:"type:text;not null;uniqueIndex" json:"email"`
	Name         string       `gorm:"type:text;not null" json:"name"`
	Phone        string       `gorm:"type:text" json:"phone"`
	PasswordHash string       `gorm:"type:text;not null" json:"-"`
	Role         string       `gorm:"type:text;not null;default:applicant" json:"role"`

	IsEmailVerified      bool       `gorm:"not null;default:false" json:"is_email_verified"`
	VerificationCode     string     `gorm:"type:text" json:"-"`
	VerificationIssuedAt *time.Time `json:"-"`

	ResetToken    string     `gorm:"type:text;index" json:"-"`
	ResetIssuedAt *time.Time `json:"-"`

	CreatedAt time.Time `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
	UpdatedAt time.Time `gorm:"not null;default:CURRENT_TIMESTAMP" json:"updated_at"`
}

// TableName sets the database table name.
func (Applicant) TableName() string { return "applicants" }

func (a *Applicant) IsStaff() bool { return a.Role == RoleStaff }

// Session is a server-side login session. Only the hash of the cookie
// token is stored.
type Session struct {
	ID          snowflake.ID `gorm:"primaryKey" json:"id"`
	ApplicantID snowflake.ID `gorm:"not null;index" json:"applicant_id"`
	TokenHash   string       `gorm:"type:text;not null;uniqueIndex" json:"-"`
	ExpiresAt   time.Time    `gorm:"not null" json:"expires_at"`
	CreatedAt   time.Time    `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
}

// TableName sets the database table name.
func (Session) TableName() string { return "sessions" }
