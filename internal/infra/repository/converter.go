package repository

import (
	"time"

	"coupon-shop-bot/internal/domain/order"
)

// orderRecord is the persisted shape of an order inside the ledger document.
type orderRecord struct {
	OrderID       string    `json:"order_id"`
	BuyerID       int64     `json:"buyer_id"`
	TierKey       string    `json:"tier_key"`
	ServiceName   string    `json:"service_name"`
	Quantity      int       `json:"quantity"`
	Amount        int64     `json:"amount"`
	Status        string    `json:"status"`
	CouponPayload string    `json:"coupon_payload,omitempty"`
	CreatedAt     time.Time `json:"created_at"`
}

func recordFromOrder(o *order.Order) orderRecord {
	return orderRecord{
		OrderID:       o.ID(),
		BuyerID:       o.BuyerID(),
		TierKey:       o.TierKey(),
		ServiceName:   o.ServiceName(),
		Quantity:      o.Quantity(),
		Amount:        o.Amount(),
		Status:        o.Status().String(),
		CouponPayload: o.CouponPayload(),
		CreatedAt:     o.CreatedAt(),
	}
}

func orderFromRecord(rec orderRecord) *order.Order {
	return order.ReconstructOrder(
		rec.OrderID,
		rec.BuyerID,
		rec.TierKey,
		rec.ServiceName,
		rec.Quantity,
		rec.Amount,
		order.Status(rec.Status),
		rec.CouponPayload,
		rec.CreatedAt,
	)
}
