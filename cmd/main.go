package main

import (
	"context"
	"log/slog"
	"os"

	"coupon-shop-bot/cmd/bootstrap"
	"coupon-shop-bot/internal/bot"
	"coupon-shop-bot/internal/handler"
	"coupon-shop-bot/internal/handler/middleware"
	"coupon-shop-bot/internal/pkg/config"
	"coupon-shop-bot/internal/worker"

	"github.com/gin-gonic/gin"
	"go.uber.org/fx"
)

func init() {
	// Fail safe: never expose debug details on a misconfigured deployment
	gin.SetMode(gin.ReleaseMode)

	if mode := os.Getenv("GIN_MODE"); mode != "" {
		gin.SetMode(mode)
	}
}

func startServer(lc fx.Lifecycle, engine *gin.Engine, cfg config.Config, logger *slog.Logger) {
	handler.NewRouter(engine, cfg)

	lc.Append(fx.Hook{
		OnStart: func(_ context.Context) error {
			listenAddr := ":" + cfg.Server.Port
			logger.Info("starting liveness server", "address", listenAddr, "mode", gin.Mode())
			go func() {
				if err := engine.Run(listenAddr); err != nil {
					logger.Error("liveness server failed", "error", err)
				}
			}()
			return nil
		},
		OnStop: func(_ context.Context) error {
			logger.Info("stopping liveness server")
			return nil
		},
	})
}

func startBot(lc fx.Lifecycle, dispatcher *bot.Dispatcher, events chan bot.Event, logger *slog.Logger) {
	runCtx, cancel := context.WithCancel(context.Background())

	lc.Append(fx.Hook{
		OnStart: func(_ context.Context) error {
			logger.Info("starting bot event loop")
			go dispatcher.Run(runCtx, events)
			return nil
		},
		OnStop: func(_ context.Context) error {
			logger.Info("stopping bot event loop")
			cancel()
			return nil
		},
	})
}

func startSweeper(lc fx.Lifecycle, sweeper *worker.Sweeper, logger *slog.Logger) {
	runCtx, cancel := context.WithCancel(context.Background())

	lc.Append(fx.Hook{
		OnStart: func(_ context.Context) error {
			logger.Info("starting expiry sweeper")
			go sweeper.Run(runCtx)
			return nil
		},
		OnStop: func(_ context.Context) error {
			logger.Info("stopping expiry sweeper")
			cancel()
			return nil
		},
	})
}

func main() {
	app := fx.New(
		bootstrap.Module,
		fx.Provide(
			func(cfg config.Config) *slog.Logger {
				logger := middleware.NewLogger(cfg.Log)
				return logger.GetSlogLogger()
			},
			func() *gin.Engine {
				return gin.New()
			},
		),
		fx.Invoke(
			startServer,
			startBot,
			startSweeper,
		),
	)

	if err := app.Start(context.Background()); err != nil {
		slog.Error("failed to start application", "error", err)
		os.Exit(1)
	}

	<-app.Done()

	if err := app.Stop(context.Background()); err != nil {
		slog.Error("failed to stop application cleanly", "error", err)
	}

	slog.Info("application stopped")
}
