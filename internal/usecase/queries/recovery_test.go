//go:build unit

package queries_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"coupon-shop-bot/internal/domain/order"
	"coupon-shop-bot/internal/infra"
	"coupon-shop-bot/internal/usecase/queries"
	"coupon-shop-bot/tests/common/builder"
	portsmock "coupon-shop-bot/tests/mock/ports"
)

func TestLookup(t *testing.T) {
	ctx := context.Background()

	t.Run("normalizes buyer input before the ledger read", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		ledger := portsmock.NewMockLedger(ctrl)
		pending, err := builder.NewOrderBuilder().BuildDomain()
		require.NoError(t, err)

		ledger.EXPECT().Get(ctx, "ORDAB12CD").Return(pending, nil)

		view, err := queries.NewRecoveryQueries(ledger).Lookup(ctx, "  ordAb12cd ")

		require.NoError(t, err)
		assert.Equal(t, "ORDAB12CD", view.OrderID)
		assert.Equal(t, "1000 pe 500", view.ServiceName)
		assert.Equal(t, 2, view.Quantity)
		assert.Equal(t, int64(16), view.Amount)
		assert.Equal(t, order.StatusPending, view.Status)
	})

	t.Run("payload is hidden until the order is approved", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		ledger := portsmock.NewMockLedger(ctrl)
		waiting, err := builder.NewOrderBuilder().BuildWaitingAdmin()
		require.NoError(t, err)

		ledger.EXPECT().Get(ctx, waiting.ID()).Return(waiting, nil)

		view, err := queries.NewRecoveryQueries(ledger).Lookup(ctx, waiting.ID())

		require.NoError(t, err)
		assert.Equal(t, order.StatusWaitingAdmin, view.Status)
		assert.Empty(t, view.CouponPayload)
	})

	t.Run("payload is exposed once approved", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		ledger := portsmock.NewMockLedger(ctrl)
		approved, err := builder.NewOrderBuilder().BuildWaitingAdmin()
		require.NoError(t, err)
		require.NoError(t, approved.Approve([]string{"c1", "c2"}))

		ledger.EXPECT().Get(ctx, approved.ID()).Return(approved, nil)

		view, err := queries.NewRecoveryQueries(ledger).Lookup(ctx, approved.ID())

		require.NoError(t, err)
		assert.Equal(t, order.StatusApproved, view.Status)
		assert.Equal(t, "c1\nc2", view.CouponPayload)
	})

	t.Run("unknown id", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		ledger := portsmock.NewMockLedger(ctrl)

		ledger.EXPECT().Get(ctx, "ORDFFFFFF").
			Return(nil, infra.NewRepoErr(infra.KindNotFound, "order not found"))

		_, err := queries.NewRecoveryQueries(ledger).Lookup(ctx, "ordffffff")

		assert.ErrorIs(t, err, queries.ErrOrderNotFound)
	})

	t.Run("blank input never reaches the ledger", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		ledger := portsmock.NewMockLedger(ctrl)

		_, err := queries.NewRecoveryQueries(ledger).Lookup(ctx, "   ")

		assert.ErrorIs(t, err, queries.ErrOrderNotFound)
	})
}
