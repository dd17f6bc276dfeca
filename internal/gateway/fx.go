package gateway

import (
	"go.uber.org/fx"

	"github.com/devroom/checkout/internal/checkout/domain"
)

var Module = fx.Module("gateway",
	fx.Provide(
		fx.Annotate(NewClient, fx.As(new(domain.Gateway))),
	),
)
