package repository

import (
	"context"
	"errors"

	"github.com/bwmarrin/snowflake"
	"github.com/codecircle/recruit/internal/cycle/domain"
	"gorm.io/gorm"
)

type repo struct{}

func Provide() domain.Repository {
	return &repo{}
}

func (r *repo) Insert(ctx context.Context, db *gorm.DB, cycle *domain.RecruitmentCycle) error {
	return db.WithContext(ctx).Create(cycle).Error
}

func (r *repo) FindByID(ctx context.Context, db *gorm.DB, id snowflake.ID) (*domain.RecruitmentCycle, error) {
	var cycle domain.RecruitmentCycle
	err := db.WithContext(ctx).First(&cycle, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &cycle, nil
}

func (r *repo) FindActive(ctx context.Context, db *gorm.DB) (*domain.RecruitmentCycle, error) {
	var cycle domain.RecruitmentCycle
	err := db.WithContext(ctx).First(&cycle, "is_active = ?", true).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &cycle, nil
}

func (r *repo) FindActiveOther(ctx context.Context, db *gorm.DB, id snowflake.ID) (*domain.RecruitmentCycle, error) {
	var cycle domain.RecruitmentCycle
	err := db.WithContext(ctx).First(&cycle, "is_active = ? AND id <> ?", true, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &cycle, nil
}

func (r *repo) List(ctx context.Context, db *gorm.DB) ([]*domain.RecruitmentCycle, error) {
	var cycles []*domain.RecruitmentCycle
	err := db.WithContext(ctx).
		Order("created_at desc, id desc").
		Find(&cycles).Error
	if err != nil {
		return nil, err
	}
	return cycles, nil
}

func (r *repo) SetActive(ctx context.Context, db *gorm.DB, id snowflake.ID, active bool) error {
	return db.WithContext(ctx).
		Model(&domain.RecruitmentCycle{}).
		Where("id = ?", id).
		Updates(map[string]any{"is_active": active, "updated_at": gorm.Expr("CURRENT_TIMESTAMP")}).Error
}

func (r *repo) InsertQuestion(ctx context.Context, db *gorm.DB, question *domain.Question) error {
	return db.WithContext(ctx).Create(question).Error
}

func (r *repo) FindQuestionByID(ctx context.Context, db *gorm.DB, id snowflake.ID) (*domain.Question, error) {
	var question domain.Question
	err := db.WithContext(ctx).First(&question, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &question, nil
}

func (r *repo) UpdateQuestion(ctx context.Context, db *gorm.DB, question *domain.Question) error {
	return db.WithContext(ctx).Save(question).Error
}

func (r *repo) DeleteQuestion(ctx context.Context, db *gorm.DB, id snowflake.ID) error {
	return db.WithContext(ctx).Delete(&domain.Question{}, "id = ?", id).Error
}

func (r *repo) ListQuestions(ctx context.Context, db *gorm.DB, cycleID snowflake.ID) ([]*domain.Question, error) {
	var questions []*domain.Question
	// Ties on position resolve by insertion order; snowflake IDs are
	// monotonic so id acts as the tiebreaker.
	err := db.WithContext(ctx).
		Where("cycle_id = ?", cycleID).
		Order("position asc, id asc").
		Find(&questions).Error
	if err != nil {
		return nil, err
	}
	return questions, nil
}
