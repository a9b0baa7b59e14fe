package components

import (
	"log/slog"

	"coupon-shop-bot/internal/pkg/clock"
	"coupon-shop-bot/internal/pkg/config"
	"coupon-shop-bot/internal/usecase/commands"
	"coupon-shop-bot/internal/worker"

	"go.uber.org/fx"
)

var WorkerModule = fx.Module("worker",
	fx.Provide(
		func(ledger commands.Ledger, cfg config.Config, clk clock.Clock, logger *slog.Logger) *worker.Sweeper {
			return worker.NewSweeper(ledger, cfg.Bot.SweepInterval, cfg.Bot.PendingTTL, clk, logger)
		},
	),
)
