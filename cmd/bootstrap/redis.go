package bootstrap

import (
	"context"

	"nazca360/internal/infra/sessionstore"
	"nazca360/internal/pkg/config"

	"github.com/redis/go-redis/v9"
	"go.uber.org/fx"
)

var RedisModule = fx.Module("redis",
	fx.Provide(
		NewRedisClient,
		NewSessionStore,
	),
)

func NewRedisClient(lc fx.Lifecycle, cfg config.Config) *redis.Client {
	client := sessionstore.NewClient(cfg.Redis)

	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			return client.Ping(ctx).Err()
		},
		OnStop: func(_ context.Context) error {
			return client.Close()
		},
	})
	return client
}

func NewSessionStore(client *redis.Client, cfg config.Config) *sessionstore.Store {
	return sessionstore.NewStore(client, cfg.Session)
}
