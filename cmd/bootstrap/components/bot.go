package components

import (
	"log/slog"

	"coupon-shop-bot/internal/bot"
	"coupon-shop-bot/internal/domain/catalog"
	"coupon-shop-bot/internal/pkg/clock"
	"coupon-shop-bot/internal/pkg/config"
	"coupon-shop-bot/internal/usecase/commands"
	"coupon-shop-bot/internal/usecase/queries"

	"go.uber.org/fx"
)

var BotModule = fx.Module("bot",
	fx.Provide(
		bot.NewMemorySessionStore,
		func(cfg config.Config, clk clock.Clock) *bot.Cooldown {
			return bot.NewCooldown(cfg.Bot.MessageCooldown, clk)
		},
		fx.Annotate(
			bot.NewLogMessenger,
			fx.As(new(bot.Messenger)),
		),
		func(
			buyer commands.BuyerCommands,
			admin commands.AdminCommands,
			recovery queries.RecoveryQueries,
			stock queries.StockQueries,
			cat *catalog.Catalog,
			sessions bot.SessionStore,
			cooldown *bot.Cooldown,
			messenger bot.Messenger,
			cfg config.Config,
			logger *slog.Logger,
		) *bot.Dispatcher {
			return bot.NewDispatcher(buyer, admin, recovery, stock, cat, sessions, cooldown, messenger, cfg.Admin.ChatID, logger)
		},
		// Transport adapters feed this channel with classified inbound events.
		func() chan bot.Event {
			return make(chan bot.Event, 64)
		},
	),
)
