package queries

import (
	"context"

	"coupon-shop-bot/internal/domain/order"
	"coupon-shop-bot/internal/infra"
	"coupon-shop-bot/internal/pkg/errs"
	"coupon-shop-bot/internal/pkg/orderid"
)

var ErrOrderNotFound = errs.New("order not found")

// LedgerReader is the read-only slice of the order ledger used by lookups.
type LedgerReader interface {
	Get(ctx context.Context, orderID string) (*order.Order, error)
}

// OrderView is the buyer-facing projection of an order. CouponPayload is
// only populated for approved orders.
type OrderView struct {
	OrderID       string
	ServiceName   string
	Quantity      int
	Amount        int64
	Status        order.Status
	CouponPayload string
}

type RecoveryQueries interface {
	// Lookup resolves a buyer-supplied order id, trimmed and
	// case-insensitive, to its current state.
	Lookup(ctx context.Context, rawOrderID string) (*OrderView, error)
}

type recoveryQueriesImpl struct {
	ledger LedgerReader
}

func NewRecoveryQueries(ledger LedgerReader) RecoveryQueries {
	return &recoveryQueriesImpl{ledger: ledger}
}

func (q *recoveryQueriesImpl) Lookup(ctx context.Context, rawOrderID string) (*OrderView, error) {
	id := orderid.Normalize(rawOrderID)
	if id == "" {
		return nil, ErrOrderNotFound
	}

	o, err := q.ledger.Get(ctx, id)
	if err != nil {
		if infra.IsKind(err, infra.KindNotFound) {
			return nil, errs.Mark(err, ErrOrderNotFound)
		}
		return nil, err
	}

	view := &OrderView{
		OrderID:     o.ID(),
		ServiceName: o.ServiceName(),
		Quantity:    o.Quantity(),
		Amount:      o.Amount(),
		Status:      o.Status(),
	}
	if o.Status() == order.StatusApproved {
		view.CouponPayload = o.CouponPayload()
	}
	return view, nil
}
