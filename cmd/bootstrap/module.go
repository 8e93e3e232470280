package bootstrap

import (
	"nazca360/cmd/bootstrap/components"

	"go.uber.org/fx"
)

var Module = fx.Options(
	ConfigModule,
	DBModule,
	RedisModule,
	JWTModule,
	ClientsModule,
	components.RepositoryModule,
	components.UseCaseModule,
	components.HandlerModule,
)
