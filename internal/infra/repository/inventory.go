package repository

import (
	"context"
	"log/slog"
	"strings"

	"coupon-shop-bot/internal/infra"
	"coupon-shop-bot/internal/infra/docstore"
)

// InventoryRepository keeps one newline-separated document of available
// coupon codes per tier. Withdrawal is FIFO: the oldest codes in the
// document are issued first. The document store serializes withdrawals per
// tier, so a code is never handed out twice.
type InventoryRepository struct {
	store  docstore.Store
	logger *slog.Logger
}

func NewInventoryRepository(store docstore.Store, logger *slog.Logger) *InventoryRepository {
	return &InventoryRepository{store: store, logger: logger}
}

// Count reports the currently available codes for a tier. A tier with no
// backing document simply has zero stock.
func (r *InventoryRepository) Count(ctx context.Context, tierKey string) (int, error) {
	body, err := r.store.Load(ctx, inventoryDocument(tierKey))
	if err != nil {
		return 0, infra.WrapRepoErr(r.logger, infra.KindStorageFailure, "failed to load inventory", err)
	}
	return len(parseCodes(body)), nil
}

// Withdraw removes and returns the first quantity codes of the tier. On
// insufficient stock nothing is mutated; on success the remaining sequence
// is persisted before returning.
func (r *InventoryRepository) Withdraw(ctx context.Context, tierKey string, quantity int) ([]string, error) {
	if quantity <= 0 {
		return nil, infra.NewRepoErr(infra.KindInsufficientStock, "withdraw quantity must be positive")
	}

	var withdrawn []string
	err := r.store.Update(ctx, inventoryDocument(tierKey), func(current []byte) ([]byte, error) {
		codes := parseCodes(current)
		if len(codes) < quantity {
			return nil, infra.NewRepoErr(infra.KindInsufficientStock, "not enough coupons in stock")
		}
		withdrawn = append([]string(nil), codes[:quantity]...)
		remaining := codes[quantity:]
		return []byte(strings.Join(remaining, "\n")), nil
	})
	if err != nil {
		return nil, err
	}
	return withdrawn, nil
}

func inventoryDocument(tierKey string) string {
	return "coupons_" + tierKey + ".txt"
}

func parseCodes(body []byte) []string {
	if len(body) == 0 {
		return nil
	}
	lines := strings.Split(string(body), "\n")
	codes := make([]string, 0, len(lines))
	for _, line := range lines {
		code := strings.TrimSpace(line)
		if code != "" {
			codes = append(codes, code)
		}
	}
	return codes
}
