package repository

import (
	"context"
	"errors"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/codecircle/recruit/internal/applicant/domain"
	"gorm.io/gorm"
)

type repo struct{}

func Provide() domain.Repository {
	return &repo{}
}

func (r *repo) Insert(ctx context.Context, db *gorm.DB, applicant *domain.Applicant) error {
	return db.WithContext(ctx).Create(applicant).Error
}

func (r *repo) FindByID(ctx context.Context, db *gorm.DB, id snowflake.ID) (*domain.Applicant, error) {
	var applicant domain.Applicant
	err := db.WithContext(ctx).First(&applicant, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &applicant, nil
}

func (r *repo) FindByEmail(ctx context.Context, db *gorm.DB, email string) (*domain.Applicant, error) {
	var applicant domain.Applicant
	err := db.WithContext(ctx).First(&applicant, "email = ?", email).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &applicant, nil
}

func (r *repo) FindByResetToken(ctx context.Context, db *gorm.DB, token string) (*domain.Applicant, error) {
	var applicant domain.Applicant
	err := db.WithContext(ctx).First(&applicant, "reset_token = ?", token).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &applicant, nil
}

func (r *repo) Update(ctx context.Context, db *gorm.DB, applicant *domain.Applicant) error {
	return db.WithContext(ctx).Save(applicant).Error
}

func (r *repo) InsertSession(ctx context.Context, db *gorm.DB, session *domain.Session) error {
	return db.WithContext(ctx).Create(session).Error
}

func (r *repo) FindSessionByTokenHash(ctx context.Context, db *gorm.DB, tokenHash string) (*domain.Session, error) {
	var session domain.Session
	err := db.WithContext(ctx).First(&session, "token_hash = ?", tokenHash).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &session, nil
}

func (r *repo) DeleteSession(ctx context.Context, db *gorm.DB, tokenHash string) error {
	return db.WithContext(ctx).Delete(&domain.Session{}, "token_hash = ?", tokenHash).Error
}

func (r *repo) DeleteSessionsForApplicant(ctx context.Context, db *gorm.DB, applicantID snowflake.ID) error {
	return db.WithContext(ctx).Delete(&domain.Session{}, "applicant_id = ?", applicantID).Error
}

func (r *repo) DeleteExpiredSessions(ctx context.Context, db *gorm.DB, before time.Time) error {
	return db.WithContext(ctx).Delete(&domain.Session{}, "expires_at < ?", before).Error
}
