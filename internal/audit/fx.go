package audit

import (
	"github.com/codecircle/recruit/internal/audit/repository"
	"github.com/codecircle/recruit/internal/audit/service"
	"go.uber.org/fx"
)

var Module = fx.Module("audit.service",
	fx.Provide(repository.Provide),
	fx.Provide(service.NewService),
)
