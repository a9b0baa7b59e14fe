package bot

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"strings"

	"coupon-shop-bot/internal/domain/catalog"
	"coupon-shop-bot/internal/usecase/commands"
	"coupon-shop-bot/internal/usecase/queries"
)

const (
	actionBuy      = "🛒 Buy Coupon"
	actionRecovery = "🔄 Recovery"

	callbackServicePrefix = "service_"
	callbackApprovePrefix = "approve_"
	callbackRejectPrefix  = "reject_"
	callbackCancelOrder   = "cancel_order"

	msgWelcome         = "👋 Welcome! Pick an action below."
	msgSelectService   = "💎 Select a Service"
	msgEnterQuantity   = "Enter quantity:"
	msgEnterOrderID    = "Enter Order ID:"
	msgInvalidQuantity = "❌ Enter valid quantity"
	msgOutOfStock      = "❌ Out of Stock"
	msgInvalidOrderID  = "❌ Invalid Order ID"
	msgOrderCancelled  = "Order cancelled."
	msgWaitingApproval = "🟠 Waiting for approval"
	msgOrderExpired    = "❌ This order has expired, please start again"
	msgInternalError   = "⚠️ Something went wrong, please try again"
	msgRejected        = "🔴 Payment Rejected"
	msgAdminNoStock    = "❌ Not enough coupons!"
	msgAdminOnly       = "❌ Admin Only"
)

// Dispatcher is the order state machine: it classifies each inbound event
// by the buyer's session step and drives the purchase flow. Events are
// consumed sequentially, so per-buyer ordering is the channel ordering.
type Dispatcher struct {
	buyer       commands.BuyerCommands
	admin       commands.AdminCommands
	recovery    queries.RecoveryQueries
	stock       queries.StockQueries
	catalog     *catalog.Catalog
	sessions    SessionStore
	cooldown    *Cooldown
	messenger   Messenger
	adminChatID int64
	logger      *slog.Logger
}

func NewDispatcher(
	buyer commands.BuyerCommands,
	admin commands.AdminCommands,
	recovery queries.RecoveryQueries,
	stock queries.StockQueries,
	cat *catalog.Catalog,
	sessions SessionStore,
	cooldown *Cooldown,
	messenger Messenger,
	adminChatID int64,
	logger *slog.Logger,
) *Dispatcher {
	return &Dispatcher{
		buyer:       buyer,
		admin:       admin,
		recovery:    recovery,
		stock:       stock,
		catalog:     cat,
		sessions:    sessions,
		cooldown:    cooldown,
		messenger:   messenger,
		adminChatID: adminChatID,
		logger:      logger,
	}
}

// Run consumes events until the context is canceled or the channel closes.
func (d *Dispatcher) Run(ctx context.Context, events <-chan Event) {
	for {
		select {
		case <-ctx.Done():
			return
		case ev, ok := <-events:
			if !ok {
				return
			}
			d.HandleEvent(ctx, ev)
		}
	}
}

func (d *Dispatcher) HandleEvent(ctx context.Context, ev Event) {
	switch ev.Kind {
	case EventButton:
		d.handleButton(ctx, ev)
	case EventText, EventPhoto:
		// Button presses are not rate limited; the cooldown guards the
		// message path against rapid duplicate sends.
		if !d.cooldown.Allow(ev.ChatID) {
			return
		}
		d.handleMessage(ctx, ev)
	}
}

func (d *Dispatcher) handleMessage(ctx context.Context, ev Event) {
	if ev.Kind == EventText {
		switch strings.TrimSpace(ev.Text) {
		case "/start":
			d.sessions.Clear(ev.ChatID)
			d.send(ctx, ev.ChatID, msgWelcome, []Button{
				{Label: actionBuy, Data: ""},
				{Label: actionRecovery, Data: ""},
			})
			return
		case actionBuy:
			d.sendTierMenu(ctx, ev.ChatID)
			return
		case actionRecovery:
			d.sessions.Set(ev.ChatID, Session{Step: StepRecovery})
			d.send(ctx, ev.ChatID, msgEnterOrderID)
			return
		}
	}

	sess, ok := d.sessions.Get(ev.ChatID)
	if !ok {
		// Idle buyers get no reply for unclassified input.
		return
	}

	switch sess.Step {
	case StepAwaitQuantity:
		if ev.Kind == EventText {
			d.handleQuantity(ctx, ev, sess)
		}
	case StepAwaitScreenshot:
		// Only a photo or the cancel button move this step; everything
		// else is ignored so stray input cannot corrupt the flow.
		if ev.Kind == EventPhoto {
			d.handleScreenshot(ctx, ev, sess)
		}
	case StepRecovery:
		if ev.Kind == EventText {
			d.handleRecovery(ctx, ev)
		}
	}
}

func (d *Dispatcher) sendTierMenu(ctx context.Context, chatID int64) {
	var rows [][]Button
	for _, tier := range d.catalog.All() {
		rows = append(rows, []Button{{
			Label: fmt.Sprintf("%s | ₹%d", tier.DisplayName(), tier.UnitPrice()),
			Data:  callbackServicePrefix + tier.Key(),
		}})
	}
	d.send(ctx, chatID, msgSelectService, rows...)
}

func (d *Dispatcher) handleQuantity(ctx context.Context, ev Event, sess Session) {
	qty, err := strconv.Atoi(strings.TrimSpace(ev.Text))
	if err != nil || qty <= 0 {
		d.send(ctx, ev.ChatID, msgInvalidQuantity)
		return
	}

	placed, err := d.buyer.PlaceOrder(ctx, ev.ChatID, sess.TierKey, qty)
	if err != nil {
		switch {
		case errors.Is(err, commands.ErrOutOfStock):
			d.sessions.Clear(ev.ChatID)
			d.send(ctx, ev.ChatID, msgOutOfStock)
		case errors.Is(err, commands.ErrInsufficientStock):
			stock, countErr := d.stock.Count(ctx, sess.TierKey)
			if countErr != nil {
				stock = 0
			}
			d.send(ctx, ev.ChatID, fmt.Sprintf("⚠️ Only %d coupons available", stock))
		default:
			d.logger.Error("failed to place order", "chat_id", ev.ChatID, "error", err)
			d.send(ctx, ev.ChatID, msgInternalError)
		}
		return
	}

	caption := fmt.Sprintf("🆔 Order ID: %s\n💰 Amount: ₹%d\n\nSend payment screenshot",
		placed.Order.ID(), placed.Order.Amount())
	err = d.messenger.SendPhoto(ctx, ev.ChatID, placed.PaymentImage, caption,
		[]Button{{Label: "❌ Cancel", Data: callbackCancelOrder}})
	if err != nil {
		d.logger.Error("failed to send payment artifact", "chat_id", ev.ChatID, "error", err)
		return
	}

	// The session advances only after the ledger entry and the payment
	// message both succeeded.
	d.sessions.Set(ev.ChatID, Session{Step: StepAwaitScreenshot, OrderID: placed.Order.ID()})
}

func (d *Dispatcher) handleScreenshot(ctx context.Context, ev Event, sess Session) {
	o, err := d.buyer.SubmitProof(ctx, sess.OrderID)
	if err != nil {
		switch {
		case errors.Is(err, commands.ErrOrderNotFound):
			// Swept while the buyer sat on the payment screen.
			d.sessions.Clear(ev.ChatID)
			d.send(ctx, ev.ChatID, msgOrderExpired)
		case errors.Is(err, commands.ErrOrderNotPending):
			d.sessions.Clear(ev.ChatID)
			d.send(ctx, ev.ChatID, msgWaitingApproval)
		default:
			d.logger.Error("failed to submit proof", "order_id", sess.OrderID, "error", err)
			d.send(ctx, ev.ChatID, msgInternalError)
		}
		return
	}

	if err := d.messenger.Forward(ctx, d.adminChatID, ev.ChatID, ev.MessageID); err != nil {
		d.logger.Error("failed to forward proof to admin", "order_id", o.ID(), "error", err)
	}
	d.send(ctx, d.adminChatID, fmt.Sprintf("📸 Payment Screenshot\nOrder: %s", o.ID()),
		[]Button{{Label: "✅ Approve", Data: callbackApprovePrefix + o.ID()}},
		[]Button{{Label: "❌ Reject", Data: callbackRejectPrefix + o.ID()}},
	)

	d.send(ctx, ev.ChatID, msgWaitingApproval)
	d.sessions.Clear(ev.ChatID)
}

func (d *Dispatcher) handleRecovery(ctx context.Context, ev Event) {
	// Recovery answers exactly one lookup, then reverts to idle whether or
	// not the id resolved.
	defer d.sessions.Clear(ev.ChatID)

	view, err := d.recovery.Lookup(ctx, ev.Text)
	if err != nil {
		if errors.Is(err, queries.ErrOrderNotFound) {
			d.send(ctx, ev.ChatID, msgInvalidOrderID)
			return
		}
		d.logger.Error("recovery lookup failed", "error", err)
		d.send(ctx, ev.ChatID, msgInternalError)
		return
	}

	text := fmt.Sprintf("📦 Order: %s\n📌 Status: %s", view.OrderID, view.Status)
	if view.CouponPayload != "" {
		text += "\n\n🎁 Coupons:\n" + view.CouponPayload
	}
	d.send(ctx, ev.ChatID, text)
}

func (d *Dispatcher) handleButton(ctx context.Context, ev Event) {
	data := ev.CallbackData

	switch {
	case data == callbackCancelOrder:
		// The pending ledger entry is left in place; the sweeper reclaims
		// it once it ages out.
		d.sessions.Clear(ev.ChatID)
		d.answer(ctx, ev.CallbackID, "Order Cancelled ❌", false)
		d.send(ctx, ev.ChatID, msgOrderCancelled)

	case strings.HasPrefix(data, callbackServicePrefix):
		d.handleTierSelection(ctx, ev, strings.TrimPrefix(data, callbackServicePrefix))

	case strings.HasPrefix(data, callbackApprovePrefix):
		d.handleApprove(ctx, ev, strings.TrimPrefix(data, callbackApprovePrefix))

	case strings.HasPrefix(data, callbackRejectPrefix):
		d.handleReject(ctx, ev, strings.TrimPrefix(data, callbackRejectPrefix))
	}
}

func (d *Dispatcher) handleTierSelection(ctx context.Context, ev Event, tierKey string) {
	if _, err := d.catalog.Find(tierKey); err != nil {
		d.answer(ctx, ev.CallbackID, "", false)
		return
	}

	stock, err := d.stock.Count(ctx, tierKey)
	if err != nil {
		d.logger.Error("failed to count stock", "tier_key", tierKey, "error", err)
		d.answer(ctx, ev.CallbackID, msgInternalError, true)
		return
	}
	if stock <= 0 {
		d.answer(ctx, ev.CallbackID, msgOutOfStock, true)
		return
	}

	d.sessions.Set(ev.ChatID, Session{Step: StepAwaitQuantity, TierKey: tierKey})
	d.answer(ctx, ev.CallbackID, "", false)
	d.send(ctx, ev.ChatID, msgEnterQuantity)
}

func (d *Dispatcher) handleApprove(ctx context.Context, ev Event, orderID string) {
	result, err := d.admin.Approve(ctx, ev.SenderID, orderID)
	if err != nil {
		d.handleAdjudicationError(ctx, ev, orderID, err)
		return
	}

	d.send(ctx, result.Order.BuyerID(),
		fmt.Sprintf("🟢 Payment Approved!\n\n🎁 Your Coupons:\n\n%s", result.Order.CouponPayload()))
	d.answer(ctx, ev.CallbackID, "Approved ✅", false)
}

func (d *Dispatcher) handleReject(ctx context.Context, ev Event, orderID string) {
	result, err := d.admin.Reject(ctx, ev.SenderID, orderID)
	if err != nil {
		d.handleAdjudicationError(ctx, ev, orderID, err)
		return
	}

	d.send(ctx, result.Order.BuyerID(), msgRejected)
	d.answer(ctx, ev.CallbackID, "Rejected ❌", false)
}

func (d *Dispatcher) handleAdjudicationError(ctx context.Context, ev Event, orderID string, err error) {
	switch {
	case errors.Is(err, commands.ErrUnauthorized):
		d.answer(ctx, ev.CallbackID, msgAdminOnly, true)
	case errors.Is(err, commands.ErrOrderNotFound):
		// Missing order (e.g. stale button) is a silent no-op.
		d.answer(ctx, ev.CallbackID, "", false)
	case errors.Is(err, commands.ErrNotAwaitingDecision):
		d.answer(ctx, ev.CallbackID, "Already processed", false)
	case errors.Is(err, commands.ErrInsufficientStock):
		// Recoverable: the order stays waiting_admin for a retry once
		// stock is replenished.
		d.answer(ctx, ev.CallbackID, "", false)
		d.send(ctx, d.adminChatID, msgAdminNoStock)
	default:
		d.logger.Error("adjudication failed", "order_id", orderID, "error", err)
		d.answer(ctx, ev.CallbackID, msgInternalError, true)
	}
}

func (d *Dispatcher) send(ctx context.Context, chatID int64, text string, buttons ...[]Button) {
	if err := d.messenger.SendText(ctx, chatID, text, buttons...); err != nil {
		d.logger.Error("failed to send message", "chat_id", chatID, "error", err)
	}
}

func (d *Dispatcher) answer(ctx context.Context, callbackID, notice string, alert bool) {
	if err := d.messenger.AnswerCallback(ctx, callbackID, notice, alert); err != nil {
		d.logger.Error("failed to answer callback", "error", err)
	}
}
