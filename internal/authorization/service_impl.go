// Package authorization enforces role-based access for staff operations
// backed by casbin with policies persisted through gorm.
package authorization

import (
	"context"
	_ "embed"
	"errors"
	"fmt"
	"strings"

	"github.com/bwmarrin/snowflake"
	"github.com/casbin/casbin/v2"
	"github.com/casbin/casbin/v2/model"
	gormadapter "github.com/casbin/gorm-adapter/v3"
	applicantdomain "github.com/codecircle/recruit/internal/applicant/domain"
	auditdomain "github.com/codecircle/recruit/internal/audit/domain"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

//go:embed model.conf
var modelText string

const (
	ObjectCycle       = "cycle"
	ObjectQuestion    = "question"
	ObjectApplication = "application"
	ObjectAuditLog    = "audit_log"
)

const (
	ActionCycleView     = "cycle.view"
	ActionCycleCreate   = "cycle.create"
	ActionCycleUpdate   = "cycle.update"
	ActionCycleActivate = "cycle.activate"

	ActionQuestionView   = "question.view"
	ActionQuestionCreate = "question.create"
	ActionQuestionUpdate = "question.update"
	ActionQuestionDelete = "question.delete"

	ActionApplicationView     = "application.view"
	ActionApplicationAdvance  = "application.advance"
	ActionApplicationSchedule = "application.schedule"
	ActionApplicationExport   = "application.export"

	ActionAuditLogView = "audit_log.view"
)

var (
	ErrInvalidActor  = errors.New("invalid_actor")
	ErrInvalidObject = errors.New("invalid_object")
	ErrInvalidAction = errors.New("invalid_action")
	ErrForbidden     = errors.New("authorization_forbidden")
)

type Service interface {
	// Authorize checks that the actor may perform action on object.
	// Actor is "system" or "user:<applicant id>".
	Authorize(ctx context.Context, actor, object, action string) error
}

type Params struct {
	fx.In

	DB       *gorm.DB
	Log      *zap.Logger
	Enforcer *casbin.SyncedEnforcer
	AuditSvc auditdomain.Service `optional:"true"`
}

type ServiceImpl struct {
	db       *gorm.DB
	log      *zap.Logger
	enforcer *casbin.SyncedEnforcer
	auditSvc auditdomain.Service
}

func NewEnforcer(db *gorm.DB) (*casbin.SyncedEnforcer, error) {
	adapter, err := gormadapter.NewAdapterByDB(db)
	if err != nil {
		return nil, err
	}
	m, err := model.NewModelFromString(modelText)
	if err != nil {
		return nil, err
	}
	enforcer, err := casbin.NewSyncedEnforcer(m, adapter)
	if err != nil {
		return nil, err
	}
	enforcer.EnableAutoSave(true)
	enforcer.EnableAutoBuildRoleLinks(true)
	if err := enforcer.LoadPolicy(); err != nil {
		return nil, err
	}
	if err := seedPolicies(enforcer); err != nil {
		return nil, err
	}
	enforcer.BuildRoleLinks()
	return enforcer, nil
}

func NewService(p Params) Service {
	return &ServiceImpl{
		db:       p.DB,
		log:      p.Log.Named("authorization.service"),
		enforcer: p.Enforcer,
		auditSvc: p.AuditSvc,
	}
}

func (s *ServiceImpl) Authorize(ctx context.Context, actor, object, action string) error {
	actor = strings.TrimSpace(actor)
	if actor == "" {
		return ErrInvalidActor
	}
	object = strings.TrimSpace(object)
	if object == "" {
		return ErrInvalidObject
	}
	action = strings.TrimSpace(action)
	if action == "" {
		return ErrInvalidAction
	}

	subject, roleName, actorType, actorID, err := s.resolveActor(ctx, actor)
	if err != nil {
		s.auditDenied(ctx, actorType, actorID, object, action)
		return err
	}

	if err := s.ensureGrouping(subject, roleName); err != nil {
		return err
	}

	allowed, err := s.enforcer.Enforce(subject, object, action)
	if err != nil {
		return err
	}
	if !allowed {
		s.auditDenied(ctx, actorType, actorID, object, action)
		return ErrForbidden
	}
	return nil
}

func (s *ServiceImpl) resolveActor(ctx context.Context, actor string) (string, string, string, *string, error) {
	if actor == "system" {
		return actor, "role:system", "system", nil, nil
	}
	if strings.HasPrefix(actor, "user:") {
		raw := strings.TrimPrefix(actor, "user:")
		userID, err := snowflake.ParseString(raw)
		if err != nil || userID == 0 {
			return "", "", "", nil, ErrInvalidActor
		}
		userIDStr := userID.String()
		role, err := s.roleForApplicant(ctx, userID)
		if err != nil {
			return actor, "", "user", &userIDStr, err
		}
		return actor, fmt.Sprintf("role:%s", strings.ToLower(role)), "user", &userIDStr, nil
	}
	return "", "", "", nil, ErrInvalidActor
}

func (s *ServiceImpl) roleForApplicant(ctx context.Context, id snowflake.ID) (string, error) {
	var applicant applicantdomain.Applicant
	err := s.db.WithContext(ctx).
		Select("role").
		First(&applicant, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return "", ErrForbidden
	}
	if err != nil {
		return "", err
	}
	role := strings.TrimSpace(applicant.Role)
	if role == "" {
		return "", ErrForbidden
	}
	return role, nil
}

func (s *ServiceImpl) ensureGrouping(subject, roleName string) error {
	existing, err := s.enforcer.GetFilteredGroupingPolicy(0, subject)
	if err != nil {
		return err
	}
	for _, rule := range existing {
		if len(rule) < 2 {
			continue
		}
		if rule[1] != roleName {
			params := make([]interface{}, 0, len(rule))
			for _, value := range rule {
				params = append(params, value)
			}
			_, _ = s.enforcer.RemoveGroupingPolicy(params...)
		}
	}

	has, err := s.enforcer.HasGroupingPolicy(subject, roleName)
	if err != nil {
		return err
	}
	if has {
		return nil
	}
	_, err = s.enforcer.AddGroupingPolicy(subject, roleName)
	return err
}

func (s *ServiceImpl) auditDenied(ctx context.Context, actorType string, actorID *string, object, action string) {
	if s.auditSvc == nil {
		return
	}
	targetID := "capability"
	_ = s.auditSvc.Record(ctx, auditdomain.ActorType(actorType), actorID, "authorization.denied", "authorization", &targetID, map[string]any{
		"object": object,
		"action": action,
	})
}

func seedPolicies(enforcer *casbin.SyncedEnforcer) error {
	policies := [][]string{
		// Applicants only read the public cycle surface; everything
		// else they do is governed by ownership checks, not roles.
		{"role:applicant", ObjectCycle, ActionCycleView},
		{"role:applicant", ObjectQuestion, ActionQuestionView},

		{"role:staff", ObjectCycle, ActionCycleView},
		{"role:staff", ObjectCycle, ActionCycleCreate},
		{"role:staff", ObjectCycle, ActionCycleUpdate},
		{"role:staff", ObjectCycle, ActionCycleActivate},
		{"role:staff", ObjectQuestion, ActionQuestionView},
		{"role:staff", ObjectQuestion, ActionQuestionCreate},
		{"role:staff", ObjectQuestion, ActionQuestionUpdate},
		{"role:staff", ObjectQuestion, ActionQuestionDelete},
		{"role:staff", ObjectApplication, ActionApplicationView},
		{"role:staff", ObjectApplication, ActionApplicationAdvance},
		{"role:staff", ObjectApplication, ActionApplicationSchedule},
		{"role:staff", ObjectApplication, ActionApplicationExport},
		{"role:staff", ObjectAuditLog, ActionAuditLogView},
	}

	for _, policy := range policies {
		has, err := enforcer.HasPolicy(policy[0], policy[1], policy[2])
		if err != nil {
			return err
		}
		if has {
			continue
		}
		if _, err := enforcer.AddPolicy(policy[0], policy[1], policy[2]); err != nil {
			return err
		}
	}

	// The system role may do everything staff can.
	for _, policy := range policies {
		if !strings.HasPrefix(policy[0], "role:staff") {
			continue
		}
		has, err := enforcer.HasPolicy("role:system", policy[1], policy[2])
		if err != nil {
			return err
		}
		if has {
			continue
		}
		if _, err := enforcer.AddPolicy("role:system", policy[1], policy[2]); err != nil {
			return err
		}
	}
	return nil
}

var Module = fx.Module("authorization",
	fx.Provide(NewEnforcer),
	fx.Provide(NewService),
)
