package notify

import (
	"context"
	"errors"
	"time"

	"github.com/sentinelpay/fraudlog/internal/fraud/entity"
	"github.com/sentinelpay/fraudlog/internal/pkg/pkglog"
	"github.com/sentinelpay/fraudlog/internal/pkg/pkguid"
)

// Metrics is the notification slice of the metrics surface.
type Metrics interface {
	NotificationResult(channel, outcome string)
}

type DispatcherConfig struct {
	MaxRetries  int
	BaseBackoff time.Duration
}

// Dispatcher fans one alert out to every configured channel. Each channel gets
// its own notification id, retry loop and log records; one channel failing
// never blocks the others.
type Dispatcher struct {
	channels    []Channel
	id          pkguid.StringID
	log         *pkglog.NotificationLogger
	metrics     Metrics
	maxRetries  int
	baseBackoff time.Duration
}

func NewDispatcher(channels []Channel, id pkguid.StringID, log *pkglog.NotificationLogger, metrics Metrics, cfg DispatcherConfig) *Dispatcher {
	maxRetries := cfg.MaxRetries
	if maxRetries < 0 {
		maxRetries = 0
	}

	baseBackoff := cfg.BaseBackoff
	if baseBackoff <= 0 {
		baseBackoff = 200 * time.Millisecond
	}

	return &Dispatcher{
		channels:    channels,
		id:          id,
		log:         log,
		metrics:     metrics,
		maxRetries:  maxRetries,
		baseBackoff: baseBackoff,
	}
}

// Handle delivers the alert to every channel and reports the joined failures.
func (d *Dispatcher) Handle(ctx context.Context, alert entity.AlertEvent) error {
	var errs []error
	for _, ch := range d.channels {
		if err := d.deliver(ctx, ch, alert); err != nil {
			errs = append(errs, err)
		}
	}

	return errors.Join(errs...)
}

func (d *Dispatcher) deliver(ctx context.Context, ch Channel, alert entity.AlertEvent) error {
	notificationID := d.id.Generate()

	start := time.Now()
	backoff := d.baseBackoff

	for attempt := 0; ; attempt++ {
		err := ch.Send(ctx, alert)
		if err == nil {
			durationMS := float64(time.Since(start)) / float64(time.Millisecond)
			d.log.LogSent(ctx, notificationID, ch.Name(), ch.Recipient(), alert.TransactionID, durationMS)
			if d.metrics != nil {
				d.metrics.NotificationResult(ch.Name(), "sent")
			}
			return nil
		}

		if attempt == d.maxRetries {
			d.log.LogFailed(ctx, notificationID, ch.Name(), ch.Recipient(), alert.TransactionID, err.Error(), attempt)
			if d.metrics != nil {
				d.metrics.NotificationResult(ch.Name(), "failed")
			}
			return err
		}

		d.log.LogRetry(ctx, notificationID, ch.Name(), attempt+1)
		if d.metrics != nil {
			d.metrics.NotificationResult(ch.Name(), "retry")
		}

		select {
		case <-time.After(backoff):
		case <-ctx.Done():
			return ctx.Err()
		}
		backoff *= 2
	}
}
