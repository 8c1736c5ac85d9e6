package application

import (
	"github.com/codecircle/recruit/internal/application/repository"
	"github.com/codecircle/recruit/internal/application/service"
	"go.uber.org/fx"
)

var Module = fx.Module("application.service",
	fx.Provide(repository.Provide),
	fx.Provide(service.New),
)
