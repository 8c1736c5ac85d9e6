package repository

import (
	"context"
	"errors"

	"github.com/bwmarrin/snowflake"
	"github.com/codecircle/recruit/internal/application/domain"
	"github.com/codecircle/recruit/pkg/db/pagination"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type repo struct{}

func Provide() domain.Repository {
	return &repo{}
}

func (r *repo) Insert(ctx context.Context, db *gorm.DB, application *domain.Application) error {
	return db.WithContext(ctx).Create(application).Error
}

func (r *repo) FindByID(ctx context.Context, db *gorm.DB, id snowflake.ID) (*domain.Application, error) {
	var application domain.Application
	err := db.WithContext(ctx).First(&application, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &application, nil
}

func (r *repo) FindByIDForUpdate(ctx context.Context, db *gorm.DB, id snowflake.ID) (*domain.Application, error) {
	q := db.WithContext(ctx)
	// sqlite has no row locks; its writes serialize anyway.
	if db.Dialector.Name() == "postgres" {
		q = q.Clauses(clause.Locking{Strength: clause.LockingStrengthUpdate})
	}

	var application domain.Application
	err := q.First(&application, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &application, nil
}

func (r *repo) FindByApplicantAndCycle(ctx context.Context, db *gorm.DB, applicantID, cycleID snowflake.ID) (*domain.Application, error) {
	var application domain.Application
	err := db.WithContext(ctx).First(&application, "applicant_id = ? AND cycle_id = ?", applicantID, cycleID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &application, nil
}

func (r *repo) Update(ctx context.Context, db *gorm.DB, application *domain.Application) error {
	return db.WithContext(ctx).Save(application).Error
}

func (r *repo) List(ctx context.Context, db *gorm.DB, cycleID snowflake.ID, status domain.Status, p pagination.Pagination) ([]*domain.Application, error) {
	q := db.WithContext(ctx).Model(&domain.Application{})
	if cycleID != 0 {
		q = q.Where("cycle_id = ?", cycleID)
	}
	if status != "" {
		q = q.Where("status = ?", status)
	}

	if p.PageToken != "" {
		cursor, err := pagination.DecodeCursor(p.PageToken)
		if err != nil {
			return nil, err
		}
		if cursor.ID != "" {
			q = q.Where("id > ?", cursor.ID)
		}
	}

	pageSize := p.PageSize
	if pageSize <= 0 {
		pageSize = 20
	}

	var applications []*domain.Application
	// Over-fetch one row so the caller can derive has_more.
	err := q.Order("id asc").Limit(pageSize + 1).Find(&applications).Error
	if err != nil {
		return nil, err
	}
	return applications, nil
}

func (r *repo) UpsertAnswer(ctx context.Context, db *gorm.DB, answer *domain.Answer) error {
	return db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "application_id"}, {Name: "question_id"}},
		DoUpdates: clause.Assignments(map[string]interface{}{
			"content":    answer.Content,
			"updated_at": answer.UpdatedAt,
		}),
	}).Create(answer).Error
}

func (r *repo) ListAnswers(ctx context.Context, db *gorm.DB, applicationID snowflake.ID) ([]*domain.Answer, error) {
	var answers []*domain.Answer
	err := db.WithContext(ctx).
		Where("application_id = ?", applicationID).
		Order("question_id asc").
		Find(&answers).Error
	if err != nil {
		return nil, err
	}
	return answers, nil
}
