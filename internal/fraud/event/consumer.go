package event

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/sentinelpay/fraudlog/internal/fraud/entity"
	"github.com/sentinelpay/fraudlog/internal/pkg/pkglog"
)

// Handler receives each alert exactly once per EventID (later duplicates are
// skipped).
type Handler interface {
	Handle(ctx context.Context, event entity.AlertEvent) error
}

type ConsumerConfig struct {
	Workers     int
	MaxRetries  int
	BaseBackoff time.Duration
}

// AlertConsumer drains the bus with a worker pool, deduplicates by event id
// and retries the handler with exponential backoff.
type AlertConsumer struct {
	bus         *Bus
	handler     Handler
	workers     int
	maxRetries  int
	baseBackoff time.Duration
	seen        sync.Map
	wg          sync.WaitGroup
}

func NewAlertConsumer(bus *Bus, handler Handler, cfg ConsumerConfig) *AlertConsumer {
	workers := cfg.Workers
	if workers < 1 {
		workers = 4
	}

	maxRetries := cfg.MaxRetries
	if maxRetries < 0 {
		maxRetries = 0
	}

	baseBackoff := cfg.BaseBackoff
	if baseBackoff <= 0 {
		baseBackoff = 100 * time.Millisecond
	}

	return &AlertConsumer{
		bus:         bus,
		handler:     handler,
		workers:     workers,
		maxRetries:  maxRetries,
		baseBackoff: baseBackoff,
	}
}

func (c *AlertConsumer) Start() {
	for i := 0; i < c.workers; i++ {
		c.wg.Add(1)
		go c.worker()
	}
}

func (c *AlertConsumer) Stop(ctx context.Context) error {
	if c.bus != nil {
		c.bus.Close()
	}

	done := make(chan struct{})
	go func() {
		c.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (c *AlertConsumer) worker() {
	defer c.wg.Done()

	for event := range c.bus.Subscribe() {
		c.bus.reportDepth()
		c.processEvent(event)
	}
}

func (c *AlertConsumer) processEvent(event entity.AlertEvent) {
	if c.handler == nil {
		return
	}

	// The alert carries the correlation id of the request that produced it,
	// so notification logs join the same trace.
	ctx := pkglog.OpenScope(context.Background(), pkglog.Fields{
		"correlation_id": event.CorrelationID,
		"transaction_id": event.TransactionID,
	})

	if event.EventID != "" {
		if _, loaded := c.seen.LoadOrStore(event.EventID, struct{}{}); loaded {
			slog.InfoContext(ctx, "skip duplicate alert event", "event_id", event.EventID, "rule_id", event.RuleID)
			return
		}
	}

	backoff := c.baseBackoff
	for attempt := 0; attempt <= c.maxRetries; attempt++ {
		err := c.handler.Handle(ctx, event)
		if err == nil {
			return
		}

		if attempt == c.maxRetries {
			slog.ErrorContext(ctx, "alert handling failed after retries",
				"event_id", event.EventID, "rule_id", event.RuleID, "error", err)
			return
		}

		if !sleepBackoff(backoff) {
			return
		}
		backoff *= 2
	}
}

func sleepBackoff(d time.Duration) bool {
	if d <= 0 {
		return false
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	<-timer.C
	return true
}
