package jobs

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/noah-isme/appointment-booking/pkg/events"
)

// ErrQueueFull is returned when the dispatch buffer has no room.
var ErrQueueFull = errors.New("event queue is full")

// DispatcherConfig configures the worker pool.
type DispatcherConfig struct {
	Workers        int
	BufferSize     int
	MaxRetries     int
	RetryDelay     time.Duration
	PublishTimeout time.Duration
	Logger         *zap.Logger
}

// Dispatcher publishes events from a small worker pool so request handlers never wait
// on the broker. Failed deliveries are retried with a fixed delay.
type Dispatcher struct {
	next events.Publisher

	maxRetries     int
	retryDelay     time.Duration
	publishTimeout time.Duration
	logger         *zap.Logger

	queue  chan events.Event
	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup

	mu     sync.RWMutex
	closed bool
}

// NewDispatcher starts the workers.
func NewDispatcher(next events.Publisher, cfg DispatcherConfig) *Dispatcher {
	if cfg.Workers <= 0 {
		cfg.Workers = 2
	}
	if cfg.BufferSize <= 0 {
		cfg.BufferSize = cfg.Workers * 32
	}
	if cfg.MaxRetries < 0 {
		cfg.MaxRetries = 0
	}
	if cfg.RetryDelay <= 0 {
		cfg.RetryDelay = 500 * time.Millisecond
	}
	if cfg.PublishTimeout <= 0 {
		cfg.PublishTimeout = 5 * time.Second
	}
	if cfg.Logger == nil {
		cfg.Logger = zap.NewNop()
	}

	ctx, cancel := context.WithCancel(context.Background())
	d := &Dispatcher{
		next:           next,
		maxRetries:     cfg.MaxRetries,
		retryDelay:     cfg.RetryDelay,
		publishTimeout: cfg.PublishTimeout,
		logger:         cfg.Logger,
		queue:          make(chan events.Event, cfg.BufferSize),
		ctx:            ctx,
		cancel:         cancel,
	}
	for i := 0; i < cfg.Workers; i++ {
		d.wg.Add(1)
		go d.worker()
	}
	return d
}

// Publish enqueues the event without blocking. The caller's context only bounds the
// enqueue; delivery uses the dispatcher's own timeout.
func (d *Dispatcher) Publish(_ context.Context, event events.Event) error {
	d.mu.RLock()
	defer d.mu.RUnlock()
	if d.closed {
		return events.ErrPublisherClosed
	}
	select {
	case d.queue <- event:
		return nil
	default:
		d.logger.Warn("event dropped", zap.String("type", event.Type), zap.String("key", event.Key))
		return ErrQueueFull
	}
}

// Close stops accepting events, drains the buffer, then closes the next publisher.
func (d *Dispatcher) Close() error {
	d.mu.Lock()
	if d.closed {
		d.mu.Unlock()
		return nil
	}
	d.closed = true
	close(d.queue)
	d.mu.Unlock()

	d.wg.Wait()
	d.cancel()
	return d.next.Close()
}

// Abort cancels pending retries before closing.
func (d *Dispatcher) Abort() error {
	d.cancel()
	return d.Close()
}

func (d *Dispatcher) worker() {
	defer d.wg.Done()
	for event := range d.queue {
		d.deliver(event)
	}
}

func (d *Dispatcher) deliver(event events.Event) {
	for attempt := 0; ; attempt++ {
		err := d.publishOnce(event)
		if err == nil {
			return
		}
		if attempt >= d.maxRetries {
			d.logger.Error("event delivery failed", zap.String("type", event.Type), zap.String("event_id", event.ID), zap.Int("attempts", attempt+1), zap.Error(err))
			return
		}
		d.logger.Warn("event delivery failed, retrying", zap.String("type", event.Type), zap.Int("attempt", attempt+1), zap.Error(err))

		timer := time.NewTimer(d.retryDelay)
		select {
		case <-d.ctx.Done():
			timer.Stop()
			return
		case <-timer.C:
		}
	}
}

func (d *Dispatcher) publishOnce(event events.Event) error {
	ctx, cancel := context.WithTimeout(d.ctx, d.publishTimeout)
	defer cancel()
	if err := d.next.Publish(ctx, event); err != nil {
		return fmt.Errorf("dispatch %s: %w", event.Type, err)
	}
	return nil
}
