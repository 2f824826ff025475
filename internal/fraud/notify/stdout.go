package notify

import (
	"context"
	"fmt"
	"io"
	"os"
	"sync"

	"github.com/sentinelpay/fraudlog/internal/fraud/entity"
)

// StdoutChannel prints alerts to a local stream. Used in development when no
// external channel is configured.
type StdoutChannel struct {
	mu  sync.Mutex
	out io.Writer
}

func NewStdoutChannel() *StdoutChannel {
	return &StdoutChannel{out: os.Stdout}
}

func (c *StdoutChannel) Name() string {
	return "stdout"
}

func (c *StdoutChannel) Recipient() string {
	return "stdout"
}

func (c *StdoutChannel) Send(_ context.Context, alert entity.AlertEvent) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	_, err := fmt.Fprintf(c.out, "ALERT rule=%q transaction=%s amount=%d reason=%q\n",
		alert.RuleName, alert.TransactionID, alert.Amount, alert.Reason)

	return err
}
