// Package notify delivers notifications through an in-process queue. Delivery
// is best effort: a full queue drops the message and a failed insert is only
// logged.
package notify

import (
	"context"
	"errors"
	"log/slog"

	"github.com/vbonduro/lostfound/internal/domain"
	"github.com/vbonduro/lostfound/internal/metrics"
)

// ErrQueueFull is returned by Notify when the message was dropped.
var ErrQueueFull = errors.New("notification queue full")

// Store persists delivered notifications.
type Store interface {
	Create(ctx context.Context, n *domain.Notification) (*domain.Notification, error)
}

// Dispatcher consumes queued notifications and persists them.
type Dispatcher struct {
	store   Store
	inbox   chan *domain.Notification
	metrics *metrics.Metrics
	logger  *slog.Logger
}

func NewDispatcher(store Store, queueSize int, m *metrics.Metrics, logger *slog.Logger) *Dispatcher {
	if queueSize <= 0 {
		queueSize = 1
	}
	return &Dispatcher{
		store:   store,
		inbox:   make(chan *domain.Notification, queueSize),
		metrics: m,
		logger:  logger,
	}
}

// Notify enqueues n without blocking.
func (d *Dispatcher) Notify(_ context.Context, n *domain.Notification) error {
	select {
	case d.inbox <- n:
		return nil
	default:
		d.metrics.IncNotification("dropped")
		return ErrQueueFull
	}
}

// Run drains the queue until ctx is cancelled, then flushes what is already
// buffered and returns.
func (d *Dispatcher) Run(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			d.flush(context.WithoutCancel(ctx))
			return nil
		case n := <-d.inbox:
			d.deliver(ctx, n)
		}
	}
}

func (d *Dispatcher) flush(ctx context.Context) {
	for {
		select {
		case n := <-d.inbox:
			d.deliver(ctx, n)
		default:
			return
		}
	}
}

func (d *Dispatcher) deliver(ctx context.Context, n *domain.Notification) {
	if _, err := d.store.Create(ctx, n); err != nil {
		d.metrics.IncNotification("failed")
		d.logger.Warn("failed to deliver notification", "user_id", n.UserID, "type", n.Type, "error", err)
		return
	}
	d.metrics.IncNotification("dispatched")
	d.logger.Debug("notification delivered", "user_id", n.UserID, "type", n.Type)
}
