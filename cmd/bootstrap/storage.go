package bootstrap

import (
	"context"

	"coupon-shop-bot/internal/infra/docstore"
	"coupon-shop-bot/internal/pkg/config"
	"coupon-shop-bot/internal/pkg/errs"

	"go.uber.org/fx"
)

var StorageModule = fx.Module("storage",
	fx.Provide(
		NewDocumentStore,
	),
)

func NewDocumentStore(lc fx.Lifecycle, cfg config.Config) (docstore.Store, error) {
	switch cfg.Storage.Driver {
	case "file", "":
		return docstore.NewFileStore(cfg.Storage.DataDir)

	case "postgres":
		pool, cleanup, err := docstore.Connect(context.Background(), cfg.Storage.BuildDSN())
		if err != nil {
			return nil, err
		}
		store, err := docstore.NewPostgresStore(context.Background(), pool)
		if err != nil {
			cleanup()
			return nil, err
		}
		lc.Append(fx.Hook{
			OnStop: func(_ context.Context) error {
				cleanup()
				return nil
			},
		})
		return store, nil

	default:
		return nil, errs.Newf("unknown storage driver: %q", cfg.Storage.Driver)
	}
}
