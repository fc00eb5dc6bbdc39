package usecase

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// HealthTracker records connector failures and rate-limit cooldowns in
// redis so the middleware can skip paths that are known to be down.
// Tracking is best effort: a redis outage never fails an operation, it
// just disables the skip heuristic.
type HealthTracker struct {
	rdb *redis.Client

	failWindow time.Duration // failure counter TTL
	maxFails   int64         // consecutive failures before cooldown
	cooldown   time.Duration
}

func NewHealthTracker(rdb *redis.Client) *HealthTracker {
	return &HealthTracker{
		rdb:        rdb,
		failWindow: 5 * time.Minute,
		maxFails:   5,
		cooldown:   2 * time.Minute,
	}
}

func failKey(name string) string     { return fmt.Sprintf("connector:%s:fails", name) }
func cooldownKey(name string) string { return fmt.Sprintf("connector:%s:cooldown", name) }

// RecordFailure increments the failure counter; once maxFails is
// reached within the window the connector enters cooldown.
func (h *HealthTracker) RecordFailure(ctx context.Context, name string) {
	if h == nil || h.rdb == nil {
		return
	}
	n, err := h.rdb.Incr(ctx, failKey(name)).Result()
	if err != nil {
		return
	}
	h.rdb.Expire(ctx, failKey(name), h.failWindow)
	if n >= h.maxFails {
		h.rdb.Set(ctx, cooldownKey(name), "1", h.cooldown)
	}
}

// RecordSuccess resets the failure counter and clears any cooldown.
func (h *HealthTracker) RecordSuccess(ctx context.Context, name string) {
	if h == nil || h.rdb == nil {
		return
	}
	h.rdb.Del(ctx, failKey(name), cooldownKey(name))
}

// RecordRateLimit puts the connector in cooldown for the given delay.
func (h *HealthTracker) RecordRateLimit(ctx context.Context, name string, d time.Duration) {
	if h == nil || h.rdb == nil || d <= 0 {
		return
	}
	h.rdb.Set(ctx, cooldownKey(name), "1", d)
}

// InCooldown reports whether the connector should be skipped.
func (h *HealthTracker) InCooldown(ctx context.Context, name string) bool {
	if h == nil || h.rdb == nil {
		return false
	}
	n, err := h.rdb.Exists(ctx, cooldownKey(name)).Result()
	return err == nil && n > 0
}
