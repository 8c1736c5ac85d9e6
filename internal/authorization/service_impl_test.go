package authorization

import (
	"context"
	"testing"

	"github.com/bwmarrin/snowflake"
	applicantdomain "github.com/codecircle/recruit/internal/applicant/domain"
	"github.com/codecircle/recruit/pkg/db"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newTestService(t *testing.T) (Service, *snowflake.Node, func(role string) string) {
	t.Helper()

	conn, err := db.NewTest()
	require.NoError(t, err)
	require.NoError(t, conn.AutoMigrate(&applicantdomain.Applicant{}))

	enforcer, err := NewEnforcer(conn)
	require.NoError(t, err)

	node, err := snowflake.NewNode(1)
	require.NoError(t, err)

	svc := NewService(Params{
		DB:       conn,
		Log:      zap.NewNop(),
		Enforcer: enforcer,
	})

	mkActor := func(role string) string {
		account := applicantdomain.Applicant{
			ID:           node.Generate(),
			Email:        role + "@example.com",
			Name:         "Account",
			PasswordHash: "x",
			Role:         role,
		}
		require.NoError(t, conn.Create(&account).Error)
		return "user:" + account.ID.String()
	}
	return svc, node, mkActor
}

func TestStaffMayAdvanceApplications(t *testing.T) {
	svc, _, mkActor := newTestService(t)
	staff := mkActor(applicantdomain.RoleStaff)

	assert.NoError(t, svc.Authorize(context.Background(), staff, ObjectApplication, ActionApplicationAdvance))
	assert.NoError(t, svc.Authorize(context.Background(), staff, ObjectCycle, ActionCycleActivate))
}

func TestApplicantDeniedStaffActions(t *testing.T) {
	svc, _, mkActor := newTestService(t)
	applicant := mkActor(applicantdomain.RoleApplicant)

	err := svc.Authorize(context.Background(), applicant, ObjectApplication, ActionApplicationAdvance)
	assert.ErrorIs(t, err, ErrForbidden)

	assert.NoError(t, svc.Authorize(context.Background(), applicant, ObjectCycle, ActionCycleView))
}

func TestUnknownActor(t *testing.T) {
	svc, node, _ := newTestService(t)

	err := svc.Authorize(context.Background(), "user:"+node.Generate().String(), ObjectCycle, ActionCycleView)
	assert.ErrorIs(t, err, ErrForbidden)

	err = svc.Authorize(context.Background(), "robot", ObjectCycle, ActionCycleView)
	assert.ErrorIs(t, err, ErrInvalidActor)

	assert.NoError(t, svc.Authorize(context.Background(), "system", ObjectApplication, ActionApplicationAdvance))
}
