package app

import (
	"context"
	"log/slog"
	"os"

	"github.com/sentinelpay/fraudlog/internal/fraud"
)

func (a *App) initModules() {
	if a.config.GetBool("modules.fraud.enabled") {
		closer, err := fraud.New(fraud.Dependency{
			Config:    a.config,
			Router:    a.router,
			Goroutine: a.goroutine,
			Context:   a.ctx,
			ID:        a.uuid,
			Logs:      a.logs,
			Metrics:   a.metrics,
		})
		if err != nil {
			slog.Error("failed to init module fraud", "error", err)
			os.Exit(1)
		}
		if closer != nil {
			if a.closerFn == nil {
				a.closerFn = map[string]func(context.Context) error{}
			}
			a.closerFn["Fraud"] = closer
		}
	}
}
