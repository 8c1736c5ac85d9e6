package domain

import (
	"context"

	"github.com/bwmarrin/snowflake"
	"github.com/codecircle/recruit/pkg/db/pagination"
	"gorm.io/gorm"
)

type Repository interface {
	Insert(ctx context.Context, db *gorm.DB, application *Application) error
	FindByID(ctx context.Context, db *gorm.DB, id snowflake.ID) (*Application, error)
	// FindByIDForUpdate locks the row for the enclosing transaction.
	FindByIDForUpdate(ctx context.Context, db *gorm.DB, id snowflake.ID) (*Application, error)
	FindByApplicantAndCycle(ctx context.Context, db *gorm.DB, applicantID, cycleID snowflake.ID) (*Application, error)
	Update(ctx context.Context, db *gorm.DB, application *Application) error
	List(ctx context.Context, db *gorm.DB, cycleID snowflake.ID, status Status, p pagination.Pagination) ([]*Application, error)

	UpsertAnswer(ctx context.Context, db *gorm.DB, answer *Answer) error
	ListAnswers(ctx context.Context, db *gorm.DB, applicationID snowflake.ID) ([]*Answer, error)
}
