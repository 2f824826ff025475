package notify

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/sentinelpay/fraudlog/internal/fraud/entity"
	"github.com/sentinelpay/fraudlog/internal/pkg/pkglog"
)

type fakeChannel struct {
	name string
	mu   sync.Mutex
	sent []entity.AlertEvent
	// failures is the number of initial Send calls that error out.
	failures int
	calls    int
}

func (c *fakeChannel) Name() string {
	return c.name
}

func (c *fakeChannel) Recipient() string {
	return c.name + "-recipient"
}

func (c *fakeChannel) Send(_ context.Context, alert entity.AlertEvent) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.calls++
	if c.calls <= c.failures {
		return errors.New("channel down")
	}

	c.sent = append(c.sent, alert)
	return nil
}

type outcomeMetrics struct {
	mu       sync.Mutex
	outcomes map[string]int
}

func (m *outcomeMetrics) NotificationResult(channel, outcome string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.outcomes == nil {
		m.outcomes = make(map[string]int)
	}
	m.outcomes[channel+":"+outcome]++
}

type fixedID struct{}

func (fixedID) Generate() string { return "n-1" }

func newTestDispatcher(t *testing.T, channels []Channel, cfg DispatcherConfig) (*Dispatcher, *outcomeMetrics) {
	t.Helper()

	reg, err := pkglog.NewRegistry(pkglog.Config{Dir: t.TempDir(), MinLevel: pkglog.LevelDebug}, nil)
	if err != nil {
		t.Fatalf("NewRegistry: %v", err)
	}
	t.Cleanup(func() { reg.Close(context.Background()) })

	metrics := &outcomeMetrics{}

	return NewDispatcher(channels, fixedID{}, reg.Notification(), metrics, cfg), metrics
}

func TestDispatcherDeliversToAllChannels(t *testing.T) {
	a := &fakeChannel{name: "webhook"}
	b := &fakeChannel{name: "telegram"}
	d, metrics := newTestDispatcher(t, []Channel{a, b}, DispatcherConfig{})

	alert := entity.AlertEvent{EventID: "evt-1", TransactionID: "tx-1"}
	if err := d.Handle(context.Background(), alert); err != nil {
		t.Fatalf("Handle: %v", err)
	}

	if len(a.sent) != 1 || len(b.sent) != 1 {
		t.Fatalf("expected both channels to deliver, got %d and %d", len(a.sent), len(b.sent))
	}
	if metrics.outcomes["webhook:sent"] != 1 || metrics.outcomes["telegram:sent"] != 1 {
		t.Fatalf("unexpected metrics: %v", metrics.outcomes)
	}
}

func TestDispatcherRetriesThenSucceeds(t *testing.T) {
	ch := &fakeChannel{name: "webhook", failures: 2}
	d, metrics := newTestDispatcher(t, []Channel{ch}, DispatcherConfig{
		MaxRetries:  3,
		BaseBackoff: time.Millisecond,
	})

	if err := d.Handle(context.Background(), entity.AlertEvent{EventID: "evt-2"}); err != nil {
		t.Fatalf("Handle: %v", err)
	}

	if len(ch.sent) != 1 {
		t.Fatalf("expected delivery after retries, got %d", len(ch.sent))
	}
	if metrics.outcomes["webhook:retry"] != 2 {
		t.Fatalf("expected two retries, got %v", metrics.outcomes)
	}
	if metrics.outcomes["webhook:sent"] != 1 {
		t.Fatalf("expected one sent, got %v", metrics.outcomes)
	}
}

func TestDispatcherFailureDoesNotBlockOtherChannels(t *testing.T) {
	broken := &fakeChannel{name: "webhook", failures: 10}
	healthy := &fakeChannel{name: "telegram"}
	d, metrics := newTestDispatcher(t, []Channel{broken, healthy}, DispatcherConfig{
		MaxRetries:  1,
		BaseBackoff: time.Millisecond,
	})

	err := d.Handle(context.Background(), entity.AlertEvent{EventID: "evt-3"})
	if err == nil {
		t.Fatal("expected aggregated failure")
	}

	if len(healthy.sent) != 1 {
		t.Fatalf("healthy channel must still deliver, got %d", len(healthy.sent))
	}
	if metrics.outcomes["webhook:failed"] != 1 {
		t.Fatalf("expected webhook failure metric, got %v", metrics.outcomes)
	}
}
