package checkout

import (
	"context"
	"time"

	"go.uber.org/fx"

	"github.com/devroom/checkout/internal/checkout/service"
	"github.com/devroom/checkout/internal/checkout/sessionstore"
	"github.com/devroom/checkout/internal/config"
)

var Module = fx.Module("checkout.service",
	fx.Provide(provideSessionStore),
	fx.Provide(service.New),
)

func provideSessionStore(lc fx.Lifecycle, cfg config.Config) *sessionstore.Store {
	store := sessionstore.New(cfg.SessionTTL)

	lc.Append(fx.Hook{
		OnStart: func(context.Context) error {
			go store.RunJanitor(context.Background(), time.Minute)
			return nil
		},
		OnStop: func(context.Context) error {
			store.Close()
			return nil
		},
	})
	return store
}
