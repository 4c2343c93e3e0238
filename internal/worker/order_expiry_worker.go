package worker

import (
	"context"
	"time"

	"github.com/rs/zerolog/log"
)

// PendingOrderExpirer cancels orders left pending past a cutoff.
type PendingOrderExpirer interface {
	ExpirePendingOrders(ctx context.Context, cutoff time.Time, limit int) (int, error)
}

// OrderExpiryWorker periodically cancels orders still pending ttl after
// they were placed. Cancellation goes through the normal order path, which
// restores the stock the order decremented.
type OrderExpiryWorker struct {
	orders    PendingOrderExpirer
	ttl       time.Duration
	interval  time.Duration
	batchSize int
	now       func() time.Time
}

// NewOrderExpiryWorker constructs an OrderExpiryWorker.
func NewOrderExpiryWorker(orders PendingOrderExpirer, ttl, interval time.Duration, batchSize int) *OrderExpiryWorker {
	if batchSize <= 0 {
		batchSize = 100
	}
	return &OrderExpiryWorker{
		orders:    orders,
		ttl:       ttl,
		interval:  interval,
		batchSize: batchSize,
		now:       time.Now,
	}
}

// Start begins the periodic expiry loop until context is canceled.
func (w *OrderExpiryWorker) Start(ctx context.Context) {
	log.Info().Dur("interval", w.interval).Dur("ttl", w.ttl).Msg("Starting order expiry worker")

	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			w.run(ctx)
		case <-ctx.Done():
			log.Info().Msg("Order expiry worker stopped")
			return
		}
	}
}

// run drains stale orders one batch at a time. A short batch means the
// backlog is empty.
func (w *OrderExpiryWorker) run(ctx context.Context) {
	cutoff := w.now().Add(-w.ttl)
	total := 0
	for ctx.Err() == nil {
		n, err := w.orders.ExpirePendingOrders(ctx, cutoff, w.batchSize)
		if err != nil {
			log.Error().Err(err).Msg("Failed to expire pending orders")
			break
		}
		total += n
		if n < w.batchSize {
			break
		}
	}
	if total > 0 {
		log.Info().Int("count", total).Time("cutoff", cutoff).Msg("Expired pending orders")
	}
}
