//go:build unit

package repository_test

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"coupon-shop-bot/internal/domain/order"
	"coupon-shop-bot/internal/infra"
	"coupon-shop-bot/internal/infra/docstore"
	"coupon-shop-bot/internal/infra/repository"
	"coupon-shop-bot/tests/common/builder"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newLedger(t *testing.T) *repository.LedgerRepository {
	t.Helper()
	store, err := docstore.NewFileStore(t.TempDir())
	require.NoError(t, err)
	return repository.NewLedgerRepository(store, testLogger())
}

func TestLedgerRepository_Create(t *testing.T) {
	ctx := context.Background()

	t.Run("created order can be read back", func(t *testing.T) {
		ledger := newLedger(t)
		o, err := builder.NewOrderBuilder().BuildDomain()
		require.NoError(t, err)

		require.NoError(t, ledger.Create(ctx, o))

		got, err := ledger.Get(ctx, o.ID())
		require.NoError(t, err)
		assert.Equal(t, o.ID(), got.ID())
		assert.Equal(t, o.BuyerID(), got.BuyerID())
		assert.Equal(t, o.TierKey(), got.TierKey())
		assert.Equal(t, o.Quantity(), got.Quantity())
		assert.Equal(t, o.Amount(), got.Amount())
		assert.Equal(t, order.StatusPending, got.Status())
		assert.True(t, o.CreatedAt().Equal(got.CreatedAt()))
	})

	t.Run("duplicate order id is rejected", func(t *testing.T) {
		ledger := newLedger(t)
		o, err := builder.NewOrderBuilder().BuildDomain()
		require.NoError(t, err)

		require.NoError(t, ledger.Create(ctx, o))
		err = ledger.Create(ctx, o)
		assert.True(t, infra.IsKind(err, infra.KindDuplicateKey))
	})
}

func TestLedgerRepository_Get(t *testing.T) {
	ctx := context.Background()

	t.Run("missing order is NOT_FOUND", func(t *testing.T) {
		ledger := newLedger(t)
		_, err := ledger.Get(ctx, "ORDMISSING")
		assert.True(t, infra.IsKind(err, infra.KindNotFound))
	})
}

func TestLedgerRepository_UpdateStatus(t *testing.T) {
	ctx := context.Background()

	t.Run("mutation is persisted", func(t *testing.T) {
		ledger := newLedger(t)
		o, err := builder.NewOrderBuilder().BuildDomain()
		require.NoError(t, err)
		require.NoError(t, ledger.Create(ctx, o))

		updated, err := ledger.UpdateStatus(ctx, o.ID(), func(o *order.Order) error {
			return o.SubmitProof()
		})
		require.NoError(t, err)
		assert.Equal(t, order.StatusWaitingAdmin, updated.Status())

		got, err := ledger.Get(ctx, o.ID())
		require.NoError(t, err)
		assert.Equal(t, order.StatusWaitingAdmin, got.Status())
	})

	t.Run("mutation failure writes nothing", func(t *testing.T) {
		ledger := newLedger(t)
		o, err := builder.NewOrderBuilder().BuildWaitingAdmin()
		require.NoError(t, err)
		require.NoError(t, ledger.Create(ctx, o))

		_, err = ledger.UpdateStatus(ctx, o.ID(), func(o *order.Order) error {
			return o.SubmitProof()
		})
		assert.ErrorIs(t, err, order.ErrNotPending)

		got, err := ledger.Get(ctx, o.ID())
		require.NoError(t, err)
		assert.Equal(t, order.StatusWaitingAdmin, got.Status())
	})

	t.Run("missing order is NOT_FOUND", func(t *testing.T) {
		ledger := newLedger(t)
		_, err := ledger.UpdateStatus(ctx, "ORDMISSING", func(*order.Order) error { return nil })
		assert.True(t, infra.IsKind(err, infra.KindNotFound))
	})

	t.Run("approved payload survives persistence", func(t *testing.T) {
		ledger := newLedger(t)
		o, err := builder.NewOrderBuilder().BuildWaitingAdmin()
		require.NoError(t, err)
		require.NoError(t, ledger.Create(ctx, o))

		_, err = ledger.UpdateStatus(ctx, o.ID(), func(o *order.Order) error {
			return o.Approve([]string{"c1", "c2"})
		})
		require.NoError(t, err)

		got, err := ledger.Get(ctx, o.ID())
		require.NoError(t, err)
		assert.Equal(t, order.StatusApproved, got.Status())
		assert.Equal(t, "c1\nc2", got.CouponPayload())
	})
}

func TestLedgerRepository_Delete(t *testing.T) {
	ctx := context.Background()

	t.Run("deleted order disappears", func(t *testing.T) {
		ledger := newLedger(t)
		o, err := builder.NewOrderBuilder().BuildDomain()
		require.NoError(t, err)
		require.NoError(t, ledger.Create(ctx, o))

		require.NoError(t, ledger.Delete(ctx, o.ID()))
		_, err = ledger.Get(ctx, o.ID())
		assert.True(t, infra.IsKind(err, infra.KindNotFound))
	})

	t.Run("deleting a missing order is a no-op", func(t *testing.T) {
		ledger := newLedger(t)
		assert.NoError(t, ledger.Delete(ctx, "ORDMISSING"))
	})
}

func TestLedgerRepository_Scan(t *testing.T) {
	ctx := context.Background()

	t.Run("empty ledger scans empty", func(t *testing.T) {
		ledger := newLedger(t)
		orders, err := ledger.Scan(ctx)
		require.NoError(t, err)
		assert.Empty(t, orders)
	})

	t.Run("scan returns every order", func(t *testing.T) {
		ledger := newLedger(t)
		for _, id := range []string{"ORDAAAAAA", "ORDBBBBBB", "ORDCCCCCC"} {
			o, err := builder.NewOrderBuilder().WithID(id).BuildDomain()
			require.NoError(t, err)
			require.NoError(t, ledger.Create(ctx, o))
		}

		orders, err := ledger.Scan(ctx)
		require.NoError(t, err)
		require.Len(t, orders, 3)
		assert.Equal(t, "ORDAAAAAA", orders[0].ID())
		assert.Equal(t, "ORDCCCCCC", orders[2].ID())
	})
}

func TestLedgerRepository_SweepPending(t *testing.T) {
	ctx := context.Background()
	base := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

	t.Run("sweeps only old pending orders", func(t *testing.T) {
		ledger := newLedger(t)

		oldPending, err := builder.NewOrderBuilder().WithID("ORDOLD111").WithCreatedAt(base.Add(-time.Hour)).BuildDomain()
		require.NoError(t, err)
		require.NoError(t, ledger.Create(ctx, oldPending))

		freshPending, err := builder.NewOrderBuilder().WithID("ORDNEW111").WithCreatedAt(base).BuildDomain()
		require.NoError(t, err)
		require.NoError(t, ledger.Create(ctx, freshPending))

		oldWaiting, err := builder.NewOrderBuilder().WithID("ORDWAIT11").WithCreatedAt(base.Add(-time.Hour)).BuildWaitingAdmin()
		require.NoError(t, err)
		require.NoError(t, ledger.Create(ctx, oldWaiting))

		removed, err := ledger.SweepPending(ctx, base, time.Minute)
		require.NoError(t, err)
		assert.Equal(t, []string{"ORDOLD111"}, removed)

		_, err = ledger.Get(ctx, "ORDOLD111")
		assert.True(t, infra.IsKind(err, infra.KindNotFound))

		for _, id := range []string{"ORDNEW111", "ORDWAIT11"} {
			_, err := ledger.Get(ctx, id)
			assert.NoError(t, err)
		}
	})

	t.Run("order exactly at the ttl is kept", func(t *testing.T) {
		ledger := newLedger(t)
		o, err := builder.NewOrderBuilder().WithID("ORDEDGE11").WithCreatedAt(base.Add(-10 * time.Minute)).BuildDomain()
		require.NoError(t, err)
		require.NoError(t, ledger.Create(ctx, o))

		removed, err := ledger.SweepPending(ctx, base, 10*time.Minute)
		require.NoError(t, err)
		assert.Empty(t, removed)

		_, err = ledger.Get(ctx, "ORDEDGE11")
		assert.NoError(t, err)
	})

	t.Run("nothing to sweep is not an error", func(t *testing.T) {
		ledger := newLedger(t)
		removed, err := ledger.SweepPending(ctx, base, time.Minute)
		require.NoError(t, err)
		assert.Empty(t, removed)
	})
}
