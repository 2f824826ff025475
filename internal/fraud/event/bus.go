package event

import (
	"context"
	"errors"
	"sync"

	"github.com/sentinelpay/fraudlog/internal/fraud/entity"
)

var (
	ErrBusClosed = errors.New("alert bus is closed")
	ErrBusFull   = errors.New("alert bus is full")
)

// DepthGauge receives the number of waiting events after every publish and
// every drain.
type DepthGauge interface {
	SetAlertQueueDepth(n int)
}

// Bus is a bounded in-process channel of alert events between rule evaluation
// and notification dispatch.
type Bus struct {
	mu     sync.RWMutex
	closed bool
	ch     chan entity.AlertEvent
	gauge  DepthGauge
}

func NewBus(buffer int) *Bus {
	if buffer < 1 {
		buffer = 1
	}

	return &Bus{
		ch: make(chan entity.AlertEvent, buffer),
	}
}

// SetDepthGauge registers the queue-depth gauge. Call before any Publish or
// consumer start.
func (b *Bus) SetDepthGauge(g DepthGauge) {
	b.gauge = g
}

// Publish enqueues the event without blocking. A full bus returns ErrBusFull
// immediately so a stalled consumer never wedges the publisher; callers log
// the dropped alert and move on.
func (b *Bus) Publish(ctx context.Context, event entity.AlertEvent) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	b.mu.RLock()
	defer b.mu.RUnlock()

	if b.closed {
		return ErrBusClosed
	}

	select {
	case b.ch <- event:
		b.reportDepth()
		return nil
	default:
		return ErrBusFull
	}
}

func (b *Bus) Subscribe() <-chan entity.AlertEvent {
	return b.ch
}

// Depth reports how many events are waiting, for the queue-depth gauge.
func (b *Bus) Depth() int {
	return len(b.ch)
}

func (b *Bus) reportDepth() {
	if b.gauge != nil {
		b.gauge.SetAlertQueueDepth(len(b.ch))
	}
}

func (b *Bus) Close() {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.closed {
		return
	}

	b.closed = true
	close(b.ch)
}
