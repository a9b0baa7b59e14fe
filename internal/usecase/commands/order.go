package commands

import (
	"context"
	"errors"

	"coupon-shop-bot/internal/domain/catalog"
	"coupon-shop-bot/internal/domain/order"
	"coupon-shop-bot/internal/infra"
	"coupon-shop-bot/internal/pkg/clock"
	"coupon-shop-bot/internal/pkg/config"
	"coupon-shop-bot/internal/pkg/errs"
	"coupon-shop-bot/internal/pkg/orderid"
	"coupon-shop-bot/internal/pkg/payment"
)

var (
	ErrUnknownTier       = errs.New("unknown service tier")
	ErrOutOfStock        = errs.New("tier is out of stock")
	ErrInsufficientStock = errs.New("insufficient stock for requested quantity")
	ErrDuplicateOrderID  = errs.New("duplicate order id")
	ErrOrderNotFound     = errs.New("order not found")
	ErrOrderNotPending   = errs.New("order is not pending")
	ErrStorageFailure    = errs.New("storage operation failed")
	ErrArtifactRendering = errs.New("failed to render payment artifact")
)

// Order id collisions are practically unreachable but the ledger checks for
// them anyway; a fresh id is generated on each attempt.
const maxOrderIDAttempts = 3

// PlacedOrder is the outcome of a confirmed quantity: a pending ledger entry
// plus the payment artifact to show the buyer.
type PlacedOrder struct {
	Order        *order.Order
	PaymentImage []byte
}

type BuyerCommands interface {
	// PlaceOrder validates quantity against live stock, creates a pending
	// ledger entry, and renders the payment artifact for it.
	PlaceOrder(ctx context.Context, buyerID int64, tierKey string, quantity int) (*PlacedOrder, error)

	// SubmitProof moves a pending order to waiting_admin after the buyer
	// uploaded a payment screenshot.
	SubmitProof(ctx context.Context, orderID string) (*order.Order, error)
}

type buyerCommandsImpl struct {
	ledger    Ledger
	inventory Inventory
	renderer  PaymentRenderer
	catalog   *catalog.Catalog
	payCfg    config.PaymentConfig
	clock     clock.Clock
}

func NewBuyerCommands(
	ledger Ledger,
	inventory Inventory,
	renderer PaymentRenderer,
	cat *catalog.Catalog,
	payCfg config.PaymentConfig,
	clk clock.Clock,
) BuyerCommands {
	return &buyerCommandsImpl{
		ledger:    ledger,
		inventory: inventory,
		renderer:  renderer,
		catalog:   cat,
		payCfg:    payCfg,
		clock:     clk,
	}
}

func (c *buyerCommandsImpl) PlaceOrder(ctx context.Context, buyerID int64, tierKey string, quantity int) (*PlacedOrder, error) {
	tier, err := c.catalog.Find(tierKey)
	if err != nil {
		return nil, errs.Mark(err, ErrUnknownTier)
	}
	if quantity <= 0 {
		return nil, order.ErrInvalidQuantity
	}

	// Stock may have drained between tier selection and quantity entry,
	// so the count is re-checked here against the live inventory.
	stock, err := c.inventory.Count(ctx, tierKey)
	if err != nil {
		return nil, errs.Mark(err, ErrStorageFailure)
	}
	if stock <= 0 {
		return nil, ErrOutOfStock
	}
	if quantity > stock {
		return nil, ErrInsufficientStock
	}

	o, err := c.createLedgerEntry(ctx, buyerID, tier, quantity)
	if err != nil {
		return nil, err
	}

	image, err := c.renderer.Render(payment.Request{
		PayeeID:   c.payCfg.PayeeID,
		PayeeName: c.payCfg.PayeeName,
		Amount:    o.Amount(),
		Currency:  c.payCfg.Currency,
	})
	if err != nil {
		// The pending entry stays in the ledger; the sweeper reclaims it.
		return nil, errs.Mark(err, ErrArtifactRendering)
	}

	return &PlacedOrder{Order: o, PaymentImage: image}, nil
}

func (c *buyerCommandsImpl) createLedgerEntry(ctx context.Context, buyerID int64, tier catalog.Tier, quantity int) (*order.Order, error) {
	var lastErr error
	for attempt := 0; attempt < maxOrderIDAttempts; attempt++ {
		o, err := order.NewOrder(orderid.New(), buyerID, tier, quantity, c.clock.Now())
		if err != nil {
			return nil, err
		}
		err = c.ledger.Create(ctx, o)
		if err == nil {
			return o, nil
		}
		if !infra.IsKind(err, infra.KindDuplicateKey) {
			return nil, errs.Mark(err, ErrStorageFailure)
		}
		lastErr = err
	}
	return nil, errs.Mark(lastErr, ErrDuplicateOrderID)
}

func (c *buyerCommandsImpl) SubmitProof(ctx context.Context, orderID string) (*order.Order, error) {
	o, err := c.ledger.UpdateStatus(ctx, orderID, func(o *order.Order) error {
		return o.SubmitProof()
	})
	if err != nil {
		switch {
		case infra.IsKind(err, infra.KindNotFound):
			return nil, errs.Mark(err, ErrOrderNotFound)
		case errors.Is(err, order.ErrNotPending):
			return nil, errs.Mark(err, ErrOrderNotPending)
		default:
			return nil, errs.Mark(err, ErrStorageFailure)
		}
	}
	return o, nil
}
