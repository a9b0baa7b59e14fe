package builder

import (
	"time"

	"coupon-shop-bot/internal/domain/catalog"
	"coupon-shop-bot/internal/domain/order"
)

// OrderBuilder builds domain orders for tests with sensible defaults.
type OrderBuilder struct {
	id        string
	buyerID   int64
	tier      catalog.Tier
	quantity  int
	createdAt time.Time
}

func NewOrderBuilder() *OrderBuilder {
	return &OrderBuilder{
		id:        "ORDAB12CD",
		buyerID:   100,
		tier:      catalog.NewTier("1000_500", "1000 pe 500", 8),
		quantity:  2,
		createdAt: time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC),
	}
}

func (b *OrderBuilder) WithID(id string) *OrderBuilder {
	b.id = id
	return b
}

func (b *OrderBuilder) WithBuyerID(buyerID int64) *OrderBuilder {
	b.buyerID = buyerID
	return b
}

func (b *OrderBuilder) WithTier(tier catalog.Tier) *OrderBuilder {
	b.tier = tier
	return b
}

func (b *OrderBuilder) WithQuantity(quantity int) *OrderBuilder {
	b.quantity = quantity
	return b
}

func (b *OrderBuilder) WithCreatedAt(t time.Time) *OrderBuilder {
	b.createdAt = t
	return b
}

func (b *OrderBuilder) BuildDomain() (*order.Order, error) {
	return order.NewOrder(b.id, b.buyerID, b.tier, b.quantity, b.createdAt)
}

// BuildWaitingAdmin builds an order that already has a submitted proof.
func (b *OrderBuilder) BuildWaitingAdmin() (*order.Order, error) {
	o, err := b.BuildDomain()
	if err != nil {
		return nil, err
	}
	if err := o.SubmitProof(); err != nil {
		return nil, err
	}
	return o, nil
}
