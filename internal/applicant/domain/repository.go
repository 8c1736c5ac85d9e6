package domain

import (
	"context"
	"time"

	"github.com/bwmarrin/snowflake"
	"gorm.io/gorm"
)

type Repository interface {
	Insert(ctx context.Context, db *gorm.DB, applicant *Applicant) error
	FindByID(ctx context.Context, db *gorm.DB, id snowflake.ID) (*Applicant, error)
	FindByEmail(ctx context.Context, db *gorm.DB, email string) (*Applicant, error)
	FindByResetToken(ctx context.Context, db *gorm.DB, token string) (*Applicant, error)
	Update(ctx context.Context, db *gorm.DB, applicant *Applicant) error

	InsertSession(ctx context.Context, db *gorm.DB, session *Session) error
	FindSessionByTokenHash(ctx context.Context, db *gorm.DB, tokenHash string) (*Session, error)
	DeleteSession(ctx context.Context, db *gorm.DB, tokenHash string) error
	DeleteSessionsForApplicant(ctx context.Context, db *gorm.DB, applicantID snowflake.ID) error
	DeleteExpiredSessions(ctx context.Context, db *gorm.DB, before time.Time) error
}
