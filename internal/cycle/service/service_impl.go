package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/codecircle/recruit/internal/clock"
	"github.com/codecircle/recruit/internal/cycle/domain"
	"github.com/codecircle/recruit/pkg/db"
	"github.com/gosimple/slug"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type Params struct {
	fx.In
	DB    *gorm.DB
	Log   *zap.Logger
	GenID *snowflake.Node
	Clock clock.Clock
	Repo  domain.Repository
}

type service struct {
	db    *gorm.DB
	log   *zap.Logger
	genID *snowflake.Node
	clock clock.Clock
	repo  domain.Repository
}

func New(p Params) domain.Service {
	return &service{
		db:    p.DB,
		log:   p.Log.Named("cycle.service"),
		genID: p.GenID,
		clock: p.Clock,
		repo:  p.Repo,
	}
}

func (s *service) Create(ctx context.Context, req domain.CreateCycleRequest) (domain.RecruitmentCycle, error) {
	title := strings.TrimSpace(req.Title)
	if title == "" {
		return domain.RecruitmentCycle{}, domain.ErrInvalidTitle
	}
	if err := validateWindow(req.ApplyStartAt, req.ApplyEndAt); err != nil {
		return domain.RecruitmentCycle{}, err
	}
	if err := validateWindow(req.InterviewStartAt, req.InterviewEndAt); err != nil {
		return domain.RecruitmentCycle{}, err
	}

	now := s.clock.Now()
	cycle := &domain.RecruitmentCycle{
		ID:               s.genID.Generate(),
		Title:            title,
		Slug:             slug.Make(title),
		Notice:           req.Notice,
		ApplyStartAt:     req.ApplyStartAt.UTC(),
		ApplyEndAt:       req.ApplyEndAt.UTC(),
		InterviewStartAt: req.InterviewStartAt.UTC(),
		InterviewEndAt:   req.InterviewEndAt.UTC(),
		CreatedAt:        now,
		UpdatedAt:        now,
	}

	if err := s.repo.Insert(ctx, s.db, cycle); err != nil {
		if db.IsDuplicateKeyErr(err) {
			return domain.RecruitmentCycle{}, domain.ErrAlreadyExists
		}
		return domain.RecruitmentCycle{}, fmt.Errorf("insert cycle: %w", err)
	}

	s.log.Info("cycle created",
		zap.String("cycle_id", cycle.ID.String()),
		zap.String("slug", cycle.Slug),
	)
	return *cycle, nil
}

func (s *service) Activate(ctx context.Context, id string) error {
	cycleID, err := snowflake.ParseString(id)
	if err != nil {
		return domain.ErrInvalidID
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		cycle, err := s.repo.FindByID(ctx, tx, cycleID)
		if err != nil {
			return fmt.Errorf("find cycle: %w", err)
		}
		if cycle == nil {
			return domain.ErrNotFound
		}
		if cycle.IsActive {
			return nil
		}

		other, err := s.repo.FindActiveOther(ctx, tx, cycleID)
		if err != nil {
			return fmt.Errorf("find active cycle: %w", err)
		}
		if other != nil {
			return domain.ErrActiveCycleExists
		}

		return s.repo.SetActive(ctx, tx, cycleID, true)
	})
	if err != nil {
		return err
	}

	s.log.Info("cycle activated", zap.String("cycle_id", id))
	return nil
}

func (s *service) Deactivate(ctx context.Context, id string) error {
	cycleID, err := snowflake.ParseString(id)
	if err != nil {
		return domain.ErrInvalidID
	}

	cycle, err := s.repo.FindByID(ctx, s.db, cycleID)
	if err != nil {
		return fmt.Errorf("find cycle: %w", err)
	}
	if cycle == nil {
		return domain.ErrNotFound
	}
	if !cycle.IsActive {
		return nil
	}

	if err := s.repo.SetActive(ctx, s.db, cycleID, false); err != nil {
		return fmt.Errorf("deactivate cycle: %w", err)
	}

	s.log.Info("cycle deactivated", zap.String("cycle_id", id))
	return nil
}

func (s *service) GetByID(ctx context.Context, id string) (domain.RecruitmentCycle, error) {
	cycleID, err := snowflake.ParseString(id)
	if err != nil {
		return domain.RecruitmentCycle{}, domain.ErrInvalidID
	}

	cycle, err := s.repo.FindByID(ctx, s.db, cycleID)
	if err != nil {
		return domain.RecruitmentCycle{}, fmt.Errorf("find cycle: %w", err)
	}
	if cycle == nil {
		return domain.RecruitmentCycle{}, domain.ErrNotFound
	}
	return *cycle, nil
}

func (s *service) GetActive(ctx context.Context) (domain.RecruitmentCycle, error) {
	cycle, err := s.repo.FindActive(ctx, s.db)
	if err != nil {
		return domain.RecruitmentCycle{}, fmt.Errorf("find active cycle: %w", err)
	}
	if cycle == nil {
		return domain.RecruitmentCycle{}, domain.ErrNoActiveCycle
	}
	return *cycle, nil
}

func (s *service) List(ctx context.Context) ([]domain.RecruitmentCycle, error) {
	cycles, err := s.repo.List(ctx, s.db)
	if err != nil {
		return nil, fmt.Errorf("list cycles: %w", err)
	}

	out := make([]domain.RecruitmentCycle, 0, len(cycles))
	for _, c := range cycles {
		out = append(out, *c)
	}
	return out, nil
}

func (s *service) AddQuestion(ctx context.Context, req domain.AddQuestionRequest) (domain.Question, error) {
	cycleID, err := snowflake.ParseString(req.CycleID)
	if err != nil {
		return domain.Question{}, domain.ErrInvalidID
	}
	text := strings.TrimSpace(req.Text)
	if text == "" {
		return domain.Question{}, domain.ErrInvalidQuestion
	}

	cycle, err := s.repo.FindByID(ctx, s.db, cycleID)
	if err != nil {
		return domain.Question{}, fmt.Errorf("find cycle: %w", err)
	}
	if cycle == nil {
		return domain.Question{}, domain.ErrNotFound
	}

	maxLen := req.MaxLength
	if maxLen <= 0 {
		maxLen = domain.DefaultAnswerMaxLength
	}

	now := s.clock.Now()
	question := &domain.Question{
		ID:         s.genID.Generate(),
		CycleID:    cycleID,
		Text:       text,
		Position:   req.Position,
		IsRequired: req.IsRequired,
		MaxLength:  maxLen,
		CreatedAt:  now,
		UpdatedAt:  now,
	}

	if err := s.repo.InsertQuestion(ctx, s.db, question); err != nil {
		return domain.Question{}, fmt.Errorf("insert question: %w", err)
	}

	s.log.Info("question added",
		zap.String("cycle_id", req.CycleID),
		zap.String("question_id", question.ID.String()),
	)
	return *question, nil
}

func (s *service) UpdateQuestion(ctx context.Context, req domain.UpdateQuestionRequest) (domain.Question, error) {
	questionID, err := snowflake.ParseString(req.QuestionID)
	if err != nil {
		return domain.Question{}, domain.ErrInvalidID
	}
	text := strings.TrimSpace(req.Text)
	if text == "" {
		return domain.Question{}, domain.ErrInvalidQuestion
	}

	question, err := s.repo.FindQuestionByID(ctx, s.db, questionID)
	if err != nil {
		return domain.Question{}, fmt.Errorf("find question: %w", err)
	}
	if question == nil {
		return domain.Question{}, domain.ErrQuestionNotFound
	}

	question.Text = text
	question.Position = req.Position
	question.IsRequired = req.IsRequired
	if req.MaxLength > 0 {
		question.MaxLength = req.MaxLength
	}
	question.UpdatedAt = s.clock.Now()

	if err := s.repo.UpdateQuestion(ctx, s.db, question); err != nil {
		return domain.Question{}, fmt.Errorf("update question: %w", err)
	}
	return *question, nil
}

func (s *service) DeleteQuestion(ctx context.Context, questionID string) error {
	id, err := snowflake.ParseString(questionID)
	if err != nil {
		return domain.ErrInvalidID
	}

	question, err := s.repo.FindQuestionByID(ctx, s.db, id)
	if err != nil {
		return fmt.Errorf("find question: %w", err)
	}
	if question == nil {
		return domain.ErrQuestionNotFound
	}

	if err := s.repo.DeleteQuestion(ctx, s.db, id); err != nil {
		return fmt.Errorf("delete question: %w", err)
	}

	s.log.Info("question deleted", zap.String("question_id", questionID))
	return nil
}

func (s *service) ListQuestions(ctx context.Context, cycleID string) ([]domain.Question, error) {
	id, err := snowflake.ParseString(cycleID)
	if err != nil {
		return nil, domain.ErrInvalidID
	}

	questions, err := s.repo.ListQuestions(ctx, s.db, id)
	if err != nil {
		return nil, fmt.Errorf("list questions: %w", err)
	}

	out := make([]domain.Question, 0, len(questions))
	for _, q := range questions {
		out = append(out, *q)
	}
	return out, nil
}

func validateWindow(start, end time.Time) error {
	if start.IsZero() || end.IsZero() || end.Before(start) {
		return domain.ErrInvalidWindow
	}
	return nil
}
