package migration

import (
	"github.com/bwmarrin/snowflake"
	"github.com/codecircle/recruit/internal/config"
	"github.com/codecircle/recruit/internal/seed"
	"go.uber.org/fx"
	"gorm.io/gorm"
)

var Module = fx.Module("migrations",
	fx.Invoke(func(conn *gorm.DB, cfg config.Config, node *snowflake.Node) error {
		sqlDB, err := conn.DB()
		if err != nil {
			return err
		}

		if err := RunMigrations(sqlDB); err != nil {
			return err
		}

		if cfg.BootstrapStaffEmail != "" {
			return seed.EnsureStaffAccount(conn, node,
				cfg.BootstrapStaffEmail,
				cfg.BootstrapStaffPassword,
				cfg.BootstrapStaffName,
			)
		}
		return nil
	}),
)
