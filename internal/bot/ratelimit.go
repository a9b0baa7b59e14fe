package bot

import (
	"sync"
	"time"

	"coupon-shop-bot/internal/pkg/clock"
)

// Cooldown drops messages arriving faster than one per interval from the
// same chat. Dropped messages get no reply, which keeps rapid duplicate
// taps from re-entering the state machine.
type Cooldown struct {
	interval time.Duration
	clock    clock.Clock

	mu   sync.Mutex
	last map[int64]time.Time
}

func NewCooldown(interval time.Duration, clk clock.Clock) *Cooldown {
	return &Cooldown{
		interval: interval,
		clock:    clk,
		last:     make(map[int64]time.Time),
	}
}

func (c *Cooldown) Allow(chatID int64) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := c.clock.Now()
	if last, ok := c.last[chatID]; ok && now.Sub(last) < c.interval {
		return false
	}
	c.last[chatID] = now
	return true
}
