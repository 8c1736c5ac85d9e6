package main

import (
	"github.com/bwmarrin/snowflake"
	"github.com/codecircle/recruit/internal/applicant"
	"github.com/codecircle/recruit/internal/application"
	"github.com/codecircle/recruit/internal/audit"
	"github.com/codecircle/recruit/internal/auth/session"
	"github.com/codecircle/recruit/internal/authorization"
	"github.com/codecircle/recruit/internal/clock"
	"github.com/codecircle/recruit/internal/config"
	"github.com/codecircle/recruit/internal/cycle"
	"github.com/codecircle/recruit/internal/eligibility"
	"github.com/codecircle/recruit/internal/migration"
	"github.com/codecircle/recruit/internal/observability"
	"github.com/codecircle/recruit/internal/providers"
	"github.com/codecircle/recruit/internal/ratelimit"
	"github.com/codecircle/recruit/internal/server"
	"github.com/codecircle/recruit/pkg/db"
	"go.uber.org/fx"
)

func main() {
	app := fx.New(
		// Core infrastructure
		config.Module,
		observability.Module,
		fx.Provide(RegisterSnowflake),
		db.Module,
		clock.Module,
		migration.Module,

		// Ambient services
		session.Module,
		providers.Module,
		ratelimit.Module,
		authorization.Module,
		audit.Module,

		// Portal domains
		applicant.Module,
		cycle.Module,
		application.Module,
		eligibility.Module,

		server.Module,
	)
	app.Run()
}

func RegisterSnowflake() *snowflake.Node {
	node, err := snowflake.NewNode(1)
	if err != nil {
		panic(err)
	}
	return node
}
