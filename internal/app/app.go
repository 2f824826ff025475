package app

import (
	"context"
	"net/http"

	"github.com/sentinelpay/fraudlog/internal/pkg/pkgconfig"
	"github.com/sentinelpay/fraudlog/internal/pkg/pkglog"
	"github.com/sentinelpay/fraudlog/internal/pkg/pkgmetrics"
	"github.com/sentinelpay/fraudlog/internal/pkg/pkgrouter"
	"github.com/sentinelpay/fraudlog/internal/pkg/pkgroutine"
	"github.com/sentinelpay/fraudlog/internal/pkg/pkguid"
)

type App struct {
	ctx    context.Context
	cancel context.CancelFunc

	// configuration
	config pkgconfig.Config

	// libraries
	uuid      pkguid.StringID
	goroutine *pkgroutine.Manager
	logs      *pkglog.Registry
	metrics   *pkgmetrics.Metrics

	// server
	router     *pkgrouter.Router
	httpServer *http.Server

	//
	closerFn map[string]func(context.Context) error
}

func New() *App {
	ctx, cancel := context.WithCancel(context.Background())
	app := &App{
		ctx:    ctx,
		cancel: cancel,
	}

	app.initConfig()
	app.initLogging()
	app.initLibraries()
	app.initHTTPServer()
	app.initModules()
	app.initClosers()

	return app
}
