//go:build unit

package bot_test

import (
	"context"
	"io"
	"log/slog"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"coupon-shop-bot/internal/bot"
	"coupon-shop-bot/internal/domain/catalog"
	"coupon-shop-bot/internal/domain/order"
	"coupon-shop-bot/internal/infra/docstore"
	"coupon-shop-bot/internal/infra/repository"
	"coupon-shop-bot/internal/pkg/clock"
	"coupon-shop-bot/internal/pkg/config"
	"coupon-shop-bot/internal/pkg/payment"
	"coupon-shop-bot/internal/usecase/commands"
	"coupon-shop-bot/internal/usecase/queries"
	"coupon-shop-bot/internal/worker"
)

const (
	buyerChat int64 = 100
	adminChat int64 = 999
)

type sentText struct {
	chatID  int64
	text    string
	buttons [][]bot.Button
}

type sentPhoto struct {
	chatID  int64
	caption string
	buttons [][]bot.Button
}

type sentCallback struct {
	callbackID string
	notice     string
	alert      bool
}

// recordingMessenger captures all outbound traffic for assertions.
type recordingMessenger struct {
	texts     []sentText
	photos    []sentPhoto
	forwards  []int64
	callbacks []sentCallback
}

func (m *recordingMessenger) SendText(_ context.Context, chatID int64, text string, buttons ...[]bot.Button) error {
	m.texts = append(m.texts, sentText{chatID: chatID, text: text, buttons: buttons})
	return nil
}

func (m *recordingMessenger) SendPhoto(_ context.Context, chatID int64, _ []byte, caption string, buttons ...[]bot.Button) error {
	m.photos = append(m.photos, sentPhoto{chatID: chatID, caption: caption, buttons: buttons})
	return nil
}

func (m *recordingMessenger) Forward(_ context.Context, toChatID, _ int64, _ int) error {
	m.forwards = append(m.forwards, toChatID)
	return nil
}

func (m *recordingMessenger) AnswerCallback(_ context.Context, callbackID, notice string, alert bool) error {
	m.callbacks = append(m.callbacks, sentCallback{callbackID: callbackID, notice: notice, alert: alert})
	return nil
}

func (m *recordingMessenger) lastTextTo(chatID int64) (sentText, bool) {
	for i := len(m.texts) - 1; i >= 0; i-- {
		if m.texts[i].chatID == chatID {
			return m.texts[i], true
		}
	}
	return sentText{}, false
}

func (m *recordingMessenger) lastCallback() (sentCallback, bool) {
	if len(m.callbacks) == 0 {
		return sentCallback{}, false
	}
	return m.callbacks[len(m.callbacks)-1], true
}

// harness wires the dispatcher to real file-backed repositories so the
// scenarios below exercise the whole flow short of the chat transport.
type harness struct {
	dispatcher *bot.Dispatcher
	messenger  *recordingMessenger
	ledger     *repository.LedgerRepository
	inventory  *repository.InventoryRepository
	store      docstore.Store
	clock      *clock.MockClock
	sweeper    *worker.Sweeper
}

func newHarness(t *testing.T) *harness {
	t.Helper()

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	cfg := config.NewTestConfig()
	clk := clock.NewMockClock(time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC))

	store, err := docstore.NewFileStore(t.TempDir())
	require.NoError(t, err)
	ledger := repository.NewLedgerRepository(store, logger)
	inventory := repository.NewInventoryRepository(store, logger)
	cat := catalog.DefaultCatalog()

	buyer := commands.NewBuyerCommands(ledger, inventory, payment.NewQRRenderer(), cat, cfg.Payment, clk)
	admin := commands.NewAdminCommands(ledger, inventory, adminChat, logger)
	recovery := queries.NewRecoveryQueries(ledger)
	stock := queries.NewStockQueries(inventory)

	messenger := &recordingMessenger{}
	dispatcher := bot.NewDispatcher(
		buyer, admin, recovery, stock, cat,
		bot.NewMemorySessionStore(),
		bot.NewCooldown(cfg.Bot.MessageCooldown, clk),
		messenger, adminChat, logger,
	)

	return &harness{
		dispatcher: dispatcher,
		messenger:  messenger,
		ledger:     ledger,
		inventory:  inventory,
		store:      store,
		clock:      clk,
		sweeper:    worker.NewSweeper(ledger, cfg.Bot.SweepInterval, cfg.Bot.PendingTTL, clk, logger),
	}
}

func (h *harness) seedTier(t *testing.T, tierKey string, codes ...string) {
	t.Helper()
	err := h.store.Update(context.Background(), "coupons_"+tierKey+".txt", func([]byte) ([]byte, error) {
		return []byte(strings.Join(codes, "\n")), nil
	})
	require.NoError(t, err)
}

// text sends a buyer text message, stepping the clock past the cooldown
// first so consecutive sends are not dropped.
func (h *harness) text(chatID int64, text string) {
	h.clock.Add(3 * time.Second)
	h.dispatcher.HandleEvent(context.Background(), bot.Event{
		Kind: bot.EventText, ChatID: chatID, SenderID: chatID, Text: text,
	})
}

func (h *harness) photo(chatID int64) {
	h.clock.Add(3 * time.Second)
	h.dispatcher.HandleEvent(context.Background(), bot.Event{
		Kind: bot.EventPhoto, ChatID: chatID, SenderID: chatID, MessageID: 42,
	})
}

func (h *harness) button(chatID, senderID int64, data string) {
	h.dispatcher.HandleEvent(context.Background(), bot.Event{
		Kind: bot.EventButton, ChatID: chatID, SenderID: senderID,
		CallbackID: "cb-1", CallbackData: data,
	})
}

// placeOrder walks the buyer to the await_screenshot step and returns the
// order id parsed from the payment caption.
func (h *harness) placeOrder(t *testing.T, qty string) string {
	t.Helper()
	h.button(buyerChat, buyerChat, "service_1000_500")
	h.text(buyerChat, qty)
	require.NotEmpty(t, h.messenger.photos, "expected a payment artifact message")
	caption := h.messenger.photos[len(h.messenger.photos)-1].caption
	fields := strings.Fields(strings.Split(caption, "\n")[0])
	return fields[len(fields)-1]
}

func TestPurchaseFlow(t *testing.T) {
	ctx := context.Background()

	t.Run("full purchase through approval delivers the oldest coupons", func(t *testing.T) {
		h := newHarness(t)
		h.seedTier(t, "1000_500", "c1", "c2", "c3", "c4")

		orderID := h.placeOrder(t, "3")
		h.photo(buyerChat)
		h.button(adminChat, adminChat, "approve_"+orderID)

		// Buyer got the payload, oldest codes first.
		last, ok := h.messenger.lastTextTo(buyerChat)
		require.True(t, ok)
		assert.Contains(t, last.text, "🟢 Payment Approved!")
		assert.Contains(t, last.text, "c1\nc2\nc3")

		// Ledger and inventory agree with what was delivered.
		o, err := h.ledger.Get(ctx, orderID)
		require.NoError(t, err)
		assert.Equal(t, order.StatusApproved, o.Status())
		assert.Equal(t, "c1\nc2\nc3", o.CouponPayload())

		count, err := h.inventory.Count(ctx, "1000_500")
		require.NoError(t, err)
		assert.Equal(t, 1, count)
	})

	t.Run("screenshot forwards the proof to the admin with decision buttons", func(t *testing.T) {
		h := newHarness(t)
		h.seedTier(t, "1000_500", "c1", "c2")

		orderID := h.placeOrder(t, "1")
		h.photo(buyerChat)

		assert.Equal(t, []int64{adminChat}, h.messenger.forwards)
		adminMsg, ok := h.messenger.lastTextTo(adminChat)
		require.True(t, ok)
		assert.Contains(t, adminMsg.text, orderID)
		require.Len(t, adminMsg.buttons, 2)
		assert.Equal(t, "approve_"+orderID, adminMsg.buttons[0][0].Data)
		assert.Equal(t, "reject_"+orderID, adminMsg.buttons[1][0].Data)

		buyerMsg, ok := h.messenger.lastTextTo(buyerChat)
		require.True(t, ok)
		assert.Equal(t, "🟠 Waiting for approval", buyerMsg.text)
	})

	t.Run("rejection notifies the buyer and leaves inventory untouched", func(t *testing.T) {
		h := newHarness(t)
		h.seedTier(t, "1000_500", "c1", "c2")

		orderID := h.placeOrder(t, "1")
		h.photo(buyerChat)
		h.button(adminChat, adminChat, "reject_"+orderID)

		last, ok := h.messenger.lastTextTo(buyerChat)
		require.True(t, ok)
		assert.Equal(t, "🔴 Payment Rejected", last.text)

		o, err := h.ledger.Get(ctx, orderID)
		require.NoError(t, err)
		assert.Equal(t, order.StatusRejected, o.Status())

		count, err := h.inventory.Count(ctx, "1000_500")
		require.NoError(t, err)
		assert.Equal(t, 2, count)
	})

	t.Run("approval without enough stock keeps the order waiting", func(t *testing.T) {
		h := newHarness(t)
		h.seedTier(t, "1000_500", "c1", "c2", "c3")

		firstID := h.placeOrder(t, "2")
		h.photo(buyerChat)
		secondID := h.placeOrder(t, "2")
		h.photo(buyerChat)

		// First approval drains the pool down to one code.
		h.button(adminChat, adminChat, "approve_"+firstID)
		h.button(adminChat, adminChat, "approve_"+secondID)

		adminMsg, ok := h.messenger.lastTextTo(adminChat)
		require.True(t, ok)
		assert.Equal(t, "❌ Not enough coupons!", adminMsg.text)

		o, err := h.ledger.Get(ctx, secondID)
		require.NoError(t, err)
		assert.Equal(t, order.StatusWaitingAdmin, o.Status())

		count, err := h.inventory.Count(ctx, "1000_500")
		require.NoError(t, err)
		assert.Equal(t, 1, count)
	})

	t.Run("double approval never withdraws twice", func(t *testing.T) {
		h := newHarness(t)
		h.seedTier(t, "1000_500", "c1", "c2", "c3", "c4")

		orderID := h.placeOrder(t, "2")
		h.photo(buyerChat)
		h.button(adminChat, adminChat, "approve_"+orderID)
		h.button(adminChat, adminChat, "approve_"+orderID)

		cb, ok := h.messenger.lastCallback()
		require.True(t, ok)
		assert.Equal(t, "Already processed", cb.notice)

		count, err := h.inventory.Count(ctx, "1000_500")
		require.NoError(t, err)
		assert.Equal(t, 2, count)
	})

	t.Run("non-admin decision buttons are refused without mutation", func(t *testing.T) {
		h := newHarness(t)
		h.seedTier(t, "1000_500", "c1", "c2")

		orderID := h.placeOrder(t, "1")
		h.photo(buyerChat)
		h.button(buyerChat, buyerChat, "approve_"+orderID)

		cb, ok := h.messenger.lastCallback()
		require.True(t, ok)
		assert.Equal(t, "❌ Admin Only", cb.notice)
		assert.True(t, cb.alert)

		o, err := h.ledger.Get(ctx, orderID)
		require.NoError(t, err)
		assert.Equal(t, order.StatusWaitingAdmin, o.Status())
		count, err := h.inventory.Count(ctx, "1000_500")
		require.NoError(t, err)
		assert.Equal(t, 2, count)
	})
}

func TestQuantityStep(t *testing.T) {
	t.Run("tier menu lists every tier with its price", func(t *testing.T) {
		h := newHarness(t)

		h.text(buyerChat, "🛒 Buy Coupon")

		menu, ok := h.messenger.lastTextTo(buyerChat)
		require.True(t, ok)
		assert.Equal(t, "💎 Select a Service", menu.text)
		require.Len(t, menu.buttons, 5)
		assert.Equal(t, "1000 pe 500 | ₹8", menu.buttons[0][0].Label)
		assert.Equal(t, "service_1000_500", menu.buttons[0][0].Data)
	})

	t.Run("selecting a drained tier alerts out of stock", func(t *testing.T) {
		h := newHarness(t)

		h.button(buyerChat, buyerChat, "service_1000_500")

		cb, ok := h.messenger.lastCallback()
		require.True(t, ok)
		assert.Equal(t, "❌ Out of Stock", cb.notice)
		assert.True(t, cb.alert)
	})

	t.Run("garbage quantity input re-prompts", func(t *testing.T) {
		h := newHarness(t)
		h.seedTier(t, "1000_500", "c1")

		h.button(buyerChat, buyerChat, "service_1000_500")
		h.text(buyerChat, "lots please")

		last, ok := h.messenger.lastTextTo(buyerChat)
		require.True(t, ok)
		assert.Equal(t, "❌ Enter valid quantity", last.text)
	})

	t.Run("quantity above remaining stock reports the live count", func(t *testing.T) {
		h := newHarness(t)
		h.seedTier(t, "1000_500", "c1", "c2")

		h.button(buyerChat, buyerChat, "service_1000_500")
		h.text(buyerChat, "5")

		last, ok := h.messenger.lastTextTo(buyerChat)
		require.True(t, ok)
		assert.Equal(t, "⚠️ Only 2 coupons available", last.text)
	})
}

func TestCancelAndSweep(t *testing.T) {
	ctx := context.Background()

	t.Run("cancel clears the session but leaves the entry to the sweeper", func(t *testing.T) {
		h := newHarness(t)
		h.seedTier(t, "1000_500", "c1", "c2")

		orderID := h.placeOrder(t, "1")
		h.button(buyerChat, buyerChat, "cancel_order")

		// The pending entry survives the cancel.
		o, err := h.ledger.Get(ctx, orderID)
		require.NoError(t, err)
		assert.Equal(t, order.StatusPending, o.Status())

		// And ages out on the next sweep.
		h.clock.Add(11 * time.Minute)
		count, err := h.sweeper.SweepOnce(ctx)
		require.NoError(t, err)
		assert.Equal(t, 1, count)
	})

	t.Run("screenshot after a sweep tells the buyer to start over", func(t *testing.T) {
		h := newHarness(t)
		h.seedTier(t, "1000_500", "c1", "c2")

		h.placeOrder(t, "1")
		h.clock.Add(11 * time.Minute)
		_, err := h.sweeper.SweepOnce(ctx)
		require.NoError(t, err)

		h.photo(buyerChat)

		last, ok := h.messenger.lastTextTo(buyerChat)
		require.True(t, ok)
		assert.Equal(t, "❌ This order has expired, please start again", last.text)
	})
}

func TestSessionGuards(t *testing.T) {
	t.Run("stray text while awaiting a screenshot is ignored", func(t *testing.T) {
		h := newHarness(t)
		h.seedTier(t, "1000_500", "c1", "c2")

		h.placeOrder(t, "1")
		sent := len(h.messenger.texts)

		h.text(buyerChat, "did you get my payment?")

		assert.Len(t, h.messenger.texts, sent)
	})

	t.Run("idle buyers get no reply for unclassified input", func(t *testing.T) {
		h := newHarness(t)

		h.text(buyerChat, "hello?")

		assert.Empty(t, h.messenger.texts)
	})

	t.Run("rapid duplicate messages are dropped by the cooldown", func(t *testing.T) {
		h := newHarness(t)

		h.text(buyerChat, "/start")
		require.Len(t, h.messenger.texts, 1)

		// Within the cooldown window: no reply at all.
		h.dispatcher.HandleEvent(context.Background(), bot.Event{
			Kind: bot.EventText, ChatID: buyerChat, SenderID: buyerChat, Text: "/start",
		})
		assert.Len(t, h.messenger.texts, 1)
	})

	t.Run("start resets any in-flight session", func(t *testing.T) {
		h := newHarness(t)
		h.seedTier(t, "1000_500", "c1", "c2")

		h.placeOrder(t, "1")
		h.text(buyerChat, "/start")

		welcome, ok := h.messenger.lastTextTo(buyerChat)
		require.True(t, ok)
		assert.Equal(t, "👋 Welcome! Pick an action below.", welcome.text)

		// The buyer is idle again: free text draws no reply.
		sent := len(h.messenger.texts)
		h.text(buyerChat, "anything")
		assert.Len(t, h.messenger.texts, sent)
	})
}

func TestRecoveryFlow(t *testing.T) {
	t.Run("approved order lookup returns the coupons", func(t *testing.T) {
		h := newHarness(t)
		h.seedTier(t, "1000_500", "c1", "c2")

		orderID := h.placeOrder(t, "2")
		h.photo(buyerChat)
		h.button(adminChat, adminChat, "approve_"+orderID)

		h.text(buyerChat, "🔄 Recovery")
		h.text(buyerChat, "  "+strings.ToLower(orderID)+" ")

		last, ok := h.messenger.lastTextTo(buyerChat)
		require.True(t, ok)
		assert.Contains(t, last.text, orderID)
		assert.Contains(t, last.text, "approved")
		assert.Contains(t, last.text, "c1\nc2")
	})

	t.Run("lookup is one shot whether or not the id resolves", func(t *testing.T) {
		h := newHarness(t)

		h.text(buyerChat, "🔄 Recovery")
		h.text(buyerChat, "ORDFFFFFF")

		last, ok := h.messenger.lastTextTo(buyerChat)
		require.True(t, ok)
		assert.Equal(t, "❌ Invalid Order ID", last.text)

		// Back to idle: the next text is not treated as another lookup.
		sent := len(h.messenger.texts)
		h.text(buyerChat, "ORDFFFFFF")
		assert.Len(t, h.messenger.texts, sent)
	})
}
