package commands

import (
	"context"
	"errors"
	"log/slog"
	"sync"

	"coupon-shop-bot/internal/domain/order"
	"coupon-shop-bot/internal/infra"
	"coupon-shop-bot/internal/pkg/errs"
)

var (
	ErrUnauthorized        = errs.New("actor is not the administrator")
	ErrNotAwaitingDecision = errs.New("order is not awaiting an admin decision")
	ErrLedgerInconsistent  = errs.New("coupons withdrawn but ledger update failed")
)

// AdjudicationResult carries the adjudicated order so the caller can notify
// the buyer.
type AdjudicationResult struct {
	Order *order.Order
}

// AdminCommands adjudicates payment proofs. Every call is gated on an exact
// administrator identity match; anything else fails without mutation.
type AdminCommands interface {
	Approve(ctx context.Context, actorID int64, orderID string) (*AdjudicationResult, error)
	Reject(ctx context.Context, actorID int64, orderID string) (*AdjudicationResult, error)
}

type adminCommandsImpl struct {
	ledger    Ledger
	inventory Inventory
	adminID   int64
	logger    *slog.Logger

	// Adjudications are serialized so the waiting_admin check and the
	// paired withdraw + ledger write cannot interleave between two calls
	// on the same order.
	mu sync.Mutex
}

func NewAdminCommands(ledger Ledger, inventory Inventory, adminID int64, logger *slog.Logger) AdminCommands {
	return &adminCommandsImpl{
		ledger:    ledger,
		inventory: inventory,
		adminID:   adminID,
		logger:    logger,
	}
}

func (c *adminCommandsImpl) Approve(ctx context.Context, actorID int64, orderID string) (*AdjudicationResult, error) {
	if actorID != c.adminID {
		return nil, ErrUnauthorized
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	o, err := c.ledger.Get(ctx, orderID)
	if err != nil {
		if infra.IsKind(err, infra.KindNotFound) {
			return nil, errs.Mark(err, ErrOrderNotFound)
		}
		return nil, errs.Mark(err, ErrStorageFailure)
	}
	// Guarded no-op: approving an already adjudicated order must not
	// withdraw inventory a second time.
	if o.Status() != order.StatusWaitingAdmin {
		return nil, ErrNotAwaitingDecision
	}

	codes, err := c.inventory.Withdraw(ctx, o.TierKey(), o.Quantity())
	if err != nil {
		if infra.IsKind(err, infra.KindInsufficientStock) {
			return nil, errs.Mark(err, ErrInsufficientStock)
		}
		return nil, errs.Mark(err, ErrStorageFailure)
	}

	approved, err := c.ledger.UpdateStatus(ctx, orderID, func(o *order.Order) error {
		return o.Approve(codes)
	})
	if err != nil {
		// The withdrawal already persisted: stock and ledger have
		// diverged and need manual reconciliation.
		c.logger.Error("CRITICAL: coupons withdrawn but ledger update failed",
			slog.String("inconsistency", "stock_ledger_divergence"),
			slog.String("order_id", orderID),
			slog.String("tier_key", o.TierKey()),
			slog.Int("quantity", o.Quantity()),
			slog.String("error", err.Error()),
		)
		return nil, errs.Mark(err, ErrLedgerInconsistent)
	}

	return &AdjudicationResult{Order: approved}, nil
}

func (c *adminCommandsImpl) Reject(ctx context.Context, actorID int64, orderID string) (*AdjudicationResult, error) {
	if actorID != c.adminID {
		return nil, ErrUnauthorized
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	rejected, err := c.ledger.UpdateStatus(ctx, orderID, func(o *order.Order) error {
		return o.Reject()
	})
	if err != nil {
		switch {
		case infra.IsKind(err, infra.KindNotFound):
			return nil, errs.Mark(err, ErrOrderNotFound)
		case errors.Is(err, order.ErrNotWaitingAdmin):
			return nil, errs.Mark(err, ErrNotAwaitingDecision)
		default:
			return nil, errs.Mark(err, ErrStorageFailure)
		}
	}

	return &AdjudicationResult{Order: rejected}, nil
}
