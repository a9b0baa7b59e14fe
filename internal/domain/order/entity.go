package order

import (
	"errors"
	"strings"
	"time"

	"coupon-shop-bot/internal/domain/catalog"
)

var (
	ErrInvalidQuantity  = errors.New("quantity must be a positive integer")
	ErrNotPending       = errors.New("order is not pending")
	ErrNotWaitingAdmin  = errors.New("order is not awaiting adjudication")
	ErrPayloadSizeWrong = errors.New("coupon payload does not match quantity")
	ErrEmptyCouponCode  = errors.New("coupon code cannot be empty")
)

// Order is one buyer's purchase attempt across its full lifecycle. The
// coupon payload is set exactly once, on approval; every other transition
// leaves it empty so that a non-empty payload implies StatusApproved.
type Order struct {
	id            string
	buyerID       int64
	tierKey       string
	serviceName   string
	quantity      int
	amount        int64
	status        Status
	couponPayload string
	createdAt     time.Time
}

func NewOrder(id string, buyerID int64, tier catalog.Tier, quantity int, now time.Time) (*Order, error) {
	if quantity <= 0 {
		return nil, ErrInvalidQuantity
	}
	return &Order{
		id:          id,
		buyerID:     buyerID,
		tierKey:     tier.Key(),
		serviceName: tier.DisplayName(),
		quantity:    quantity,
		amount:      tier.UnitPrice() * int64(quantity),
		status:      StatusPending,
		createdAt:   now,
	}, nil
}

func ReconstructOrder(
	id string,
	buyerID int64,
	tierKey, serviceName string,
	quantity int,
	amount int64,
	status Status,
	couponPayload string,
	createdAt time.Time,
) *Order {
	return &Order{
		id:            id,
		buyerID:       buyerID,
		tierKey:       tierKey,
		serviceName:   serviceName,
		quantity:      quantity,
		amount:        amount,
		status:        status,
		couponPayload: couponPayload,
		createdAt:     createdAt,
	}
}

// SubmitProof records that the buyer uploaded a payment screenshot and the
// order now awaits the administrator's decision.
func (o *Order) SubmitProof() error {
	if o.status != StatusPending {
		return ErrNotPending
	}
	o.status = StatusWaitingAdmin
	return nil
}

// Approve fulfills the order with the withdrawn coupon codes. Approving an
// order that is not waiting_admin fails, which makes double-approval a
// guarded no-op for callers that treat ErrNotWaitingAdmin as such.
func (o *Order) Approve(codes []string) error {
	if o.status != StatusWaitingAdmin {
		return ErrNotWaitingAdmin
	}
	if len(codes) != o.quantity {
		return ErrPayloadSizeWrong
	}
	for _, c := range codes {
		if strings.TrimSpace(c) == "" {
			return ErrEmptyCouponCode
		}
	}
	o.status = StatusApproved
	o.couponPayload = strings.Join(codes, "\n")
	return nil
}

func (o *Order) Reject() error {
	if o.status != StatusWaitingAdmin {
		return ErrNotWaitingAdmin
	}
	o.status = StatusRejected
	return nil
}

// HasExpired reports whether the order is still pending past its TTL.
// Orders that left pending are never expired regardless of age.
func (o *Order) HasExpired(now time.Time, ttl time.Duration) bool {
	return o.status == StatusPending && now.Sub(o.createdAt) > ttl
}

func (o *Order) ID() string            { return o.id }
func (o *Order) BuyerID() int64        { return o.buyerID }
func (o *Order) TierKey() string       { return o.tierKey }
func (o *Order) ServiceName() string   { return o.serviceName }
func (o *Order) Quantity() int         { return o.quantity }
func (o *Order) Amount() int64         { return o.amount }
func (o *Order) Status() Status        { return o.status }
func (o *Order) CouponPayload() string { return o.couponPayload }
func (o *Order) CreatedAt() time.Time  { return o.createdAt }
