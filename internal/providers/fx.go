package providers

import (
	"github.com/codecircle/recruit/internal/providers/email"
	"github.com/codecircle/recruit/internal/providers/pdf"
	"go.uber.org/fx"
)

var Module = fx.Module("providers",
	email.Module,
	pdf.Module,
)
