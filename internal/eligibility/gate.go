// Package eligibility answers the boundary questions the handlers ask
// before letting an applicant act: can they start an application, verify
// email, answer questions, or view a given application. Each check
// returns a denial reason the caller can map to a user-facing message.
package eligibility

import (
	"context"
	"errors"
	"fmt"

	"github.com/bwmarrin/snowflake"
	applicantdomain "github.com/codecircle/recruit/internal/applicant/domain"
	applicationdomain "github.com/codecircle/recruit/internal/application/domain"
	"github.com/codecircle/recruit/internal/clock"
	cycledomain "github.com/codecircle/recruit/internal/cycle/domain"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

var (
	ErrEmailNotVerified = errors.New("email_not_verified")
	ErrForbidden        = errors.New("forbidden")
	ErrNoDraft          = errors.New("no_draft_application")
)

type Gate struct {
	db           *gorm.DB
	log          *zap.Logger
	clock        clock.Clock
	cycles       cycledomain.Repository
	applications applicationdomain.Repository
	applicants   applicantdomain.Repository
}

type Params struct {
	fx.In
	DB           *gorm.DB
	Log          *zap.Logger
	Clock        clock.Clock
	Cycles       cycledomain.Repository
	Applications applicationdomain.Repository
	Applicants   applicantdomain.Repository
}

func NewGate(p Params) *Gate {
	return &Gate{
		db:           p.DB,
		log:          p.Log.Named("eligibility.gate"),
		clock:        p.Clock,
		cycles:       p.Cycles,
		applications: p.Applications,
		applicants:   p.Applicants,
	}
}

// CanStartApplication requires an active cycle with an open application
// window and no existing non-draft application for that cycle. An
// existing draft is allowed; the applicant resumes it.
func (g *Gate) CanStartApplication(ctx context.Context, applicantID snowflake.ID) (bool, error) {
	cycle, err := g.cycles.FindActive(ctx, g.db)
	if err != nil {
		return false, fmt.Errorf("find active cycle: %w", err)
	}
	if cycle == nil {
		return false, cycledomain.ErrNoActiveCycle
	}
	if !cycle.ApplicationWindow().Contains(g.clock.Now()) {
		return false, applicationdomain.ErrWindowClosed
	}

	existing, err := g.applications.FindByApplicantAndCycle(ctx, g.db, applicantID, cycle.ID)
	if err != nil {
		return false, fmt.Errorf("find application: %w", err)
	}
	if existing != nil && existing.Status != applicationdomain.StatusDraft {
		return false, applicationdomain.ErrAlreadySubmitted
	}
	return true, nil
}

// CanVerifyEmail is false once the address is verified.
func (g *Gate) CanVerifyEmail(ctx context.Context, applicantID snowflake.ID) (bool, error) {
	applicant, err := g.applicants.FindByID(ctx, g.db, applicantID)
	if err != nil {
		return false, fmt.Errorf("find applicant: %w", err)
	}
	if applicant == nil {
		return false, applicantdomain.ErrNotFound
	}
	if applicant.IsEmailVerified {
		return false, applicantdomain.ErrAlreadyVerified
	}
	return true, nil
}

// CanAnswerQuestions requires a verified email and a draft application
// in the active cycle.
func (g *Gate) CanAnswerQuestions(ctx context.Context, applicantID snowflake.ID) (bool, error) {
	applicant, err := g.applicants.FindByID(ctx, g.db, applicantID)
	if err != nil {
		return false, fmt.Errorf("find applicant: %w", err)
	}
	if applicant == nil {
		return false, applicantdomain.ErrNotFound
	}
	if !applicant.IsEmailVerified {
		return false, ErrEmailNotVerified
	}

	cycle, err := g.cycles.FindActive(ctx, g.db)
	if err != nil {
		return false, fmt.Errorf("find active cycle: %w", err)
	}
	if cycle == nil {
		return false, cycledomain.ErrNoActiveCycle
	}

	application, err := g.applications.FindByApplicantAndCycle(ctx, g.db, applicantID, cycle.ID)
	if err != nil {
		return false, fmt.Errorf("find application: %w", err)
	}
	if application == nil || application.Status != applicationdomain.StatusDraft {
		return false, ErrNoDraft
	}
	return true, nil
}

// CanViewApplication is an ownership check. Staff bypass it at the
// authorization layer, not here.
func (g *Gate) CanViewApplication(ctx context.Context, applicantID, applicationID snowflake.ID) (bool, error) {
	application, err := g.applications.FindByID(ctx, g.db, applicationID)
	if err != nil {
		return false, fmt.Errorf("find application: %w", err)
	}
	if application == nil {
		return false, applicationdomain.ErrNotFound
	}
	if application.ApplicantID != applicantID {
		return false, ErrForbidden
	}
	return true, nil
}

var Module = fx.Module("eligibility",
	fx.Provide(NewGate),
)
