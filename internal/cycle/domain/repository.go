package domain

import (
	"context"

	"github.com/bwmarrin/snowflake"
	"gorm.io/gorm"
)

type Repository interface {
	Insert(ctx context.Context, db *gorm.DB, cycle *RecruitmentCycle) error
	FindByID(ctx context.Context, db *gorm.DB, id snowflake.ID) (*RecruitmentCycle, error)
	FindActive(ctx context.Context, db *gorm.DB) (*RecruitmentCycle, error)
	// FindActiveOther returns an active cycle with a different ID, used
	// by the activation invariant check.
	FindActiveOther(ctx context.Context, db *gorm.DB, id snowflake.ID) (*RecruitmentCycle, error)
	List(ctx context.Context, db *gorm.DB) ([]*RecruitmentCycle, error)
	SetActive(ctx context.Context, db *gorm.DB, id snowflake.ID, active bool) error

	InsertQuestion(ctx context.Context, db *gorm.DB, question *Question) error
	FindQuestionByID(ctx context.Context, db *gorm.DB, id snowflake.ID) (*Question, error)
	UpdateQuestion(ctx context.Context, db *gorm.DB, question *Question) error
	DeleteQuestion(ctx context.Context, db *gorm.DB, id snowflake.ID) error
	ListQuestions(ctx context.Context, db *gorm.DB, cycleID snowflake.ID) ([]*Question, error)
}
