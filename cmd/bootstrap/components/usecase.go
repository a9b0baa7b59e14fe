package components

import (
	"log/slog"

	"coupon-shop-bot/internal/domain/catalog"
	"coupon-shop-bot/internal/pkg/clock"
	"coupon-shop-bot/internal/pkg/config"
	"coupon-shop-bot/internal/pkg/payment"
	"coupon-shop-bot/internal/usecase/commands"
	"coupon-shop-bot/internal/usecase/queries"

	"go.uber.org/fx"
)

var UseCaseModule = fx.Module("usecase",
	usecaseBaseOption,
	usecaseCommandsModule,
	usecaseQueriesModule,
)

var usecaseBaseOption = fx.Provide(
	clock.NewRealClock,
	catalog.DefaultCatalog,
	fx.Annotate(
		payment.NewQRRenderer,
		fx.As(new(commands.PaymentRenderer)),
	),
)

var usecaseCommandsModule = fx.Module("usecase/commands",
	fx.Provide(
		func(
			ledger commands.Ledger,
			inventory commands.Inventory,
			renderer commands.PaymentRenderer,
			cat *catalog.Catalog,
			cfg config.Config,
			clk clock.Clock,
		) commands.BuyerCommands {
			return commands.NewBuyerCommands(ledger, inventory, renderer, cat, cfg.Payment, clk)
		},
		func(
			ledger commands.Ledger,
			inventory commands.Inventory,
			cfg config.Config,
			logger *slog.Logger,
		) commands.AdminCommands {
			return commands.NewAdminCommands(ledger, inventory, cfg.Admin.ChatID, logger)
		},
	),
)

var usecaseQueriesModule = fx.Module("usecase/queries",
	fx.Provide(
		queries.NewRecoveryQueries,
		queries.NewStockQueries,
	),
)
