package cycle

import (
	"github.com/codecircle/recruit/internal/cycle/repository"
	"github.com/codecircle/recruit/internal/cycle/service"
	"go.uber.org/fx"
)

var Module = fx.Module("cycle.service",
	fx.Provide(repository.Provide),
	fx.Provide(service.New),
)
