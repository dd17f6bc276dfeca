package credential

import (
	redis "github.com/redis/go-redis/v9"
	"go.uber.org/fx"
	"go.uber.org/zap"

	"github.com/devroom/checkout/internal/config"
)

var Module = fx.Module("credential",
	fx.Provide(NewStore),
)

// NewStore selects the token cache backend from configuration.
func NewStore(cfg config.Config, log *zap.Logger) Store {
	if cfg.RedisAddr == "" {
		return NewMemoryStore(cfg.TokenTTL)
	}

	client := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})
	log.Named("credential").Info("using redis token cache",
		zap.String("addr", cfg.RedisAddr),
	)
	return NewRedisStore(client, cfg.TokenTTL)
}
