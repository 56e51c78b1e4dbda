package notification

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"talent-track/internal/metrics"
	"talent-track/internal/worker"

	"github.com/sony/gobreaker/v2"
	"go.uber.org/zap"
)

type Options struct {
	Workers     int
	QueueSize   int
	RatePerSec  float64
	Burst       int
	MaxAttempts int
	Timeout     time.Duration
	Backoff     time.Duration
	Breaker     BreakerOptions
}

type BreakerOptions struct {
	MaxRequests         uint32
	Interval            time.Duration
	Timeout             time.Duration
	ConsecutiveFailures uint32
}

// Dispatcher queues messages and sends them from a worker pool, guarded by a
// circuit breaker. Enqueue never blocks and failures never reach the caller.
type Dispatcher struct {
	notifier Notifier
	pool     *worker.Pool
	breaker  *gobreaker.CircuitBreaker[struct{}]
	opts     Options
	logger   *zap.Logger
	metrics  *metrics.Metrics

	startOnce sync.Once
	started   atomic.Bool
	done      chan struct{}
}

func NewDispatcher(n Notifier, opts Options, logger *zap.Logger, m *metrics.Metrics) *Dispatcher {
	if logger == nil {
		logger = zap.NewNop()
	}
	if opts.Workers < 1 {
		opts.Workers = 1
	}
	if opts.QueueSize < 1 {
		opts.QueueSize = 64
	}
	if opts.MaxAttempts < 1 {
		opts.MaxAttempts = 1
	}
	if opts.Backoff <= 0 {
		opts.Backoff = 250 * time.Millisecond
	}
	if opts.Breaker.ConsecutiveFailures == 0 {
		opts.Breaker.ConsecutiveFailures = 5
	}

	pool := worker.NewPool(opts.Workers, opts.QueueSize)
	pool.SetRateLimit(opts.RatePerSec, opts.Burst)

	threshold := opts.Breaker.ConsecutiveFailures
	settings := gobreaker.Settings{
		Name:        "notification-gateway",
		MaxRequests: opts.Breaker.MaxRequests,
		Interval:    opts.Breaker.Interval,
		Timeout:     opts.Breaker.Timeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= threshold
		},
		OnStateChange: func(name string, from gobreaker.State, to gobreaker.State) {
			logger.Warn("circuit breaker state changed",
				zap.String("name", name),
				zap.String("from", from.String()),
				zap.String("to", to.String()),
			)
		},
	}

	return &Dispatcher{
		notifier: n,
		pool:     pool,
		breaker:  gobreaker.NewCircuitBreaker[struct{}](settings),
		opts:     opts,
		logger:   logger,
		metrics:  m,
		done:     make(chan struct{}),
	}
}

// Start launches the workers. Cancelling ctx abandons queued messages; use
// Close for a draining shutdown.
func (d *Dispatcher) Start(ctx context.Context) {
	d.startOnce.Do(func() {
		d.started.Store(true)
		results := d.pool.Run(ctx)
		go func() {
			defer close(d.done)
			for r := range results {
				if r.Err != nil {
					d.logger.Warn("notification failed", zap.Error(r.Err))
				}
			}
		}()
	})
}

// Enqueue reports whether msg was queued. A full queue drops the message.
func (d *Dispatcher) Enqueue(msg Message) bool {
	if d == nil {
		return false
	}
	ok := d.pool.TrySubmit(func(ctx context.Context) error {
		defer d.metrics.NotificationQueue(d.pool.Pending())
		return d.deliver(ctx, msg)
	})
	if !ok {
		d.metrics.Notification(msg.TemplateType, metrics.OutcomeDropped)
		d.logger.Warn("notification dropped",
			zap.String("reason", "queue_full"),
			zap.String("to", msg.To),
			zap.String("template", msg.TemplateType),
		)
		return false
	}
	d.metrics.NotificationQueue(d.pool.Pending())
	return true
}

func (d *Dispatcher) deliver(ctx context.Context, msg Message) error {
	var err error
attempts:
	for attempt := 1; attempt <= d.opts.MaxAttempts; attempt++ {
		_, err = d.breaker.Execute(func() (struct{}, error) {
			sendCtx := ctx
			if d.opts.Timeout > 0 {
				var cancel context.CancelFunc
				sendCtx, cancel = context.WithTimeout(ctx, d.opts.Timeout)
				defer cancel()
			}
			return struct{}{}, d.notifier.Send(sendCtx, msg)
		})
		if err == nil {
			d.metrics.Notification(msg.TemplateType, metrics.OutcomeSent)
			d.logger.Debug("notification sent",
				zap.String("to", msg.To),
				zap.String("template", msg.TemplateType),
				zap.Int("attempt", attempt),
			)
			return nil
		}
		if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
			break
		}
		if attempt < d.opts.MaxAttempts {
			select {
			case <-ctx.Done():
				err = ctx.Err()
				break attempts
			case <-time.After(time.Duration(attempt) * d.opts.Backoff):
			}
		}
	}
	d.metrics.Notification(msg.TemplateType, metrics.OutcomeFailed)
	return fmt.Errorf("notify %s (%s): %w", msg.To, msg.TemplateType, err)
}

// Close stops accepting messages and waits for queued ones to finish or ctx
// to expire.
func (d *Dispatcher) Close(ctx context.Context) error {
	if d == nil {
		return nil
	}
	d.pool.Close()
	if !d.started.Load() {
		return nil
	}
	select {
	case <-d.done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
