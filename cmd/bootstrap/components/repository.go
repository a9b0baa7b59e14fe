package components

import (
	"coupon-shop-bot/internal/infra/repository"
	"coupon-shop-bot/internal/usecase/commands"
	"coupon-shop-bot/internal/usecase/queries"

	"go.uber.org/fx"
)

var RepositoryModule = fx.Module("repository",
	fx.Provide(
		fx.Annotate(
			repository.NewLedgerRepository,
			fx.As(new(commands.Ledger)),
			fx.As(new(queries.LedgerReader)),
		),
		fx.Annotate(
			repository.NewInventoryRepository,
			fx.As(new(commands.Inventory)),
			fx.As(new(queries.StockReader)),
		),
	),
)
