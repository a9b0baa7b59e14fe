package commands

import (
	"context"
	"time"

	"coupon-shop-bot/internal/domain/order"
	"coupon-shop-bot/internal/pkg/payment"
)

// Ledger is the durable order ledger. Implementations persist the whole
// ledger snapshot before returning from any mutating call.
type Ledger interface {
	Create(ctx context.Context, o *order.Order) error
	Get(ctx context.Context, orderID string) (*order.Order, error)
	UpdateStatus(ctx context.Context, orderID string, mutate func(*order.Order) error) (*order.Order, error)
	Delete(ctx context.Context, orderID string) error
	Scan(ctx context.Context) ([]*order.Order, error)
	SweepPending(ctx context.Context, now time.Time, ttl time.Duration) ([]string, error)
}

// Inventory is the per-tier coupon pool. Withdraw is atomic per tier: the
// same code is never returned to two callers and a failed withdrawal leaves
// the pool untouched.
type Inventory interface {
	Count(ctx context.Context, tierKey string) (int, error)
	Withdraw(ctx context.Context, tierKey string, quantity int) ([]string, error)
}

// PaymentRenderer produces the scannable payment artifact shown to buyers.
type PaymentRenderer interface {
	Render(req payment.Request) ([]byte, error)
}
