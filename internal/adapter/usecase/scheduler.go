package usecase

import (
	"context"
	"log/slog"
	"sync/atomic"
	"time"

	"skupilot/internal/config/configs"
	"skupilot/internal/core/port"
)

// Scheduler drives the intelligence engine across all active SKUs on a
// fixed cadence. Per-SKU failures are isolated: one failing SKU never
// stops the pass. A failure in the enumeration step itself switches to
// a shortened retry interval for faster recovery.
type Scheduler struct {
	engine port.IntelligenceUseCase
	skus   port.SKURepository
	log    *slog.Logger

	interval      time.Duration
	retryInterval time.Duration
	running       atomic.Bool
}

func NewScheduler(engine port.IntelligenceUseCase, skus port.SKURepository, cfg configs.Intelligence, log *slog.Logger) *Scheduler {
	return &Scheduler{
		engine:        engine,
		skus:          skus,
		log:           log,
		interval:      cfg.Interval,
		retryInterval: cfg.RetryInterval,
	}
}

// Start runs the optimization loop until Stop is called or the context
// is cancelled. Stop is cooperative: the flag is checked between SKUs,
// and in-flight SKU processing is allowed to finish.
func (s *Scheduler) Start(ctx context.Context) {
	s.running.Store(true)
	s.log.Info("intelligence scheduler started")

	for s.running.Load() && ctx.Err() == nil {
		if err := s.runPass(ctx); err != nil {
			s.log.Error("optimization pass failed", slog.Any("error", err))
			if !s.wait(ctx, s.retryInterval) {
				break
			}
			continue
		}
		if !s.wait(ctx, s.interval) {
			break
		}
	}
	s.log.Info("intelligence scheduler stopped")
}

// Stop requests a cooperative shutdown.
func (s *Scheduler) Stop() {
	s.running.Store(false)
}

// runPass processes every active SKU sequentially. Only enumeration
// failures are returned; per-SKU outcomes are logged and swallowed.
func (s *Scheduler) runPass(ctx context.Context) error {
	skus, err := s.skus.ListActive(ctx)
	if err != nil {
		return err
	}
	for _, sku := range skus {
		if !s.running.Load() || ctx.Err() != nil {
			return nil
		}
		outcome := s.engine.MakeHourlyDecisions(ctx, sku.ID)
		if outcome.Success {
			s.log.Info("decision cycle completed",
				slog.String("sku_id", sku.ID),
				slog.String("mode", string(outcome.Mode)),
				slog.Int("decisions", len(outcome.Decisions)))
		} else {
			s.log.Error("decision cycle failed",
				slog.String("sku_id", sku.ID),
				slog.String("message", outcome.Message))
		}
	}
	return nil
}

// wait sleeps for d, waking early on context cancellation or Stop. It
// reports whether the loop should continue.
func (s *Scheduler) wait(ctx context.Context, d time.Duration) bool {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-timer.C:
		return s.running.Load()
	}
}
