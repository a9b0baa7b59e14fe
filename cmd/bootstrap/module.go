package bootstrap

import (
	"coupon-shop-bot/cmd/bootstrap/components"

	"go.uber.org/fx"
)

var Module = fx.Options(
	ConfigModule,
	StorageModule,
	components.RepositoryModule,
	components.UseCaseModule,
	components.BotModule,
	components.WorkerModule,
)
