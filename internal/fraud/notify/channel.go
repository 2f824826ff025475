// Package notify delivers fraud alerts to external channels. Each channel is
// a thin transport; retry, logging and metrics live in the Dispatcher.
package notify

import (
	"context"

	"github.com/sentinelpay/fraudlog/internal/fraud/entity"
)

type Channel interface {
	Name() string
	// Recipient identifies where this channel delivers to, for logging.
	Recipient() string
	Send(ctx context.Context, alert entity.AlertEvent) error
}
