package applicant

import (
	"github.com/codecircle/recruit/internal/applicant/repository"
	"github.com/codecircle/recruit/internal/applicant/service"
	"go.uber.org/fx"
)

var Module = fx.Module("applicant.service",
	fx.Provide(repository.Provide),
	fx.Provide(service.New),
)
