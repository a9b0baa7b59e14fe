// Package worker hosts the background tasks that run alongside event
// handling.
package worker

import (
	"context"
	"log/slog"
	"time"

	"coupon-shop-bot/internal/pkg/clock"
	"coupon-shop-bot/internal/usecase/commands"
)

// Sweeper periodically reclaims orders that never left pending: a buyer who
// abandoned the flow before uploading proof. Orders in any other status are
// an audit trail and are never touched. Sweeping is best effort; a late
// sweep costs nothing because no inventory is withdrawn for pending orders.
type Sweeper struct {
	ledger   commands.Ledger
	interval time.Duration
	ttl      time.Duration
	clock    clock.Clock
	logger   *slog.Logger
}

func NewSweeper(ledger commands.Ledger, interval, ttl time.Duration, clk clock.Clock, logger *slog.Logger) *Sweeper {
	return &Sweeper{
		ledger:   ledger,
		interval: interval,
		ttl:      ttl,
		clock:    clk,
		logger:   logger,
	}
}

// Run sweeps on a fixed period until the context is canceled.
func (s *Sweeper) Run(ctx context.Context) {
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if _, err := s.SweepOnce(ctx); err != nil {
				s.logger.Error("sweep failed", "error", err)
			}
		}
	}
}

// SweepOnce deletes every pending order older than the TTL, batched into a
// single ledger persist. It returns the number of reclaimed orders.
func (s *Sweeper) SweepOnce(ctx context.Context) (int, error) {
	removed, err := s.ledger.SweepPending(ctx, s.clock.Now(), s.ttl)
	if err != nil {
		return 0, err
	}
	if len(removed) > 0 {
		s.logger.Info("reclaimed expired pending orders", "count", len(removed), "order_ids", removed)
	}
	return len(removed), nil
}
