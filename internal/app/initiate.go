package app

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/cors"

	"github.com/sentinelpay/fraudlog/internal/pkg/pkgconfig"
	"github.com/sentinelpay/fraudlog/internal/pkg/pkglog"
	"github.com/sentinelpay/fraudlog/internal/pkg/pkgmetrics"
	"github.com/sentinelpay/fraudlog/internal/pkg/pkgrouter"
	"github.com/sentinelpay/fraudlog/internal/pkg/pkgroutine"
	"github.com/sentinelpay/fraudlog/internal/pkg/pkguid"
)

func (a *App) initConfig() {
	// A local .env can override the environment before Viper reads it.
	_ = godotenv.Load()

	path := "/config/config.yaml"
	if os.Getenv("LOCAL") == "true" {
		path = "./config/config.yaml"
	}

	cfg, err := pkgconfig.NewViper(path)
	if err != nil {
		slog.Error("failed to init config", "error", err)
		os.Exit(1)
	}

	//nolint:errcheck,gosec // ignore error
	os.Setenv("TZ", cfg.GetString("tz"))

	a.config = cfg
}

func (a *App) initLogging() {
	a.metrics = pkgmetrics.New()

	logs, err := pkglog.NewRegistry(pkglog.Config{
		Environment:    a.config.GetString("logging.environment"),
		Service:        a.config.GetString("logging.service"),
		Dir:            a.config.GetString("logging.dir"),
		MinLevel:       pkglog.ParseLevel(a.config.GetString("logging.min_level")),
		Console:        a.config.GetBool("logging.console"),
		MaxSizeMB:      int(a.config.GetInt("logging.max_size_mb")),
		MaxBackups:     int(a.config.GetInt("logging.max_backups")),
		QueueSize:      int(a.config.GetInt("logging.queue_size")),
		DebugPerSecond: a.config.GetFloat("logging.debug_per_second"),
	}, a.metrics)
	if err != nil {
		slog.Error("failed to init logging", "error", err)
		os.Exit(1)
	}

	a.logs = logs
	pkglog.InitSlog(logs)
}

func (a *App) initLibraries() {
	a.goroutine = pkgroutine.NewManager(100)
	a.uuid = pkguid.NewUUID()
}

func (a *App) initHTTPServer() {
	a.router = pkgrouter.NewRouter(a.uuid, a.logs.HTTP(), a.metrics)
	a.router.Handle(http.MethodGet, "/metrics", a.metrics.Handler())

	corsHandler := cors.New(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{
			http.MethodGet,
			http.MethodPost,
			http.MethodPut,
			http.MethodPatch,
			http.MethodDelete,
			http.MethodOptions,
		},
		AllowedHeaders:   []string{"*"},
		AllowCredentials: true,
	})

	a.httpServer = &http.Server{
		Addr:              a.config.GetString("server.address.http"),
		Handler:           corsHandler.Handler(a.router),
		ReadHeaderTimeout: 10 * time.Second,
	}
}

//nolint:unparam // is always nil
func (a *App) initClosers() {
	if a.closerFn == nil {
		a.closerFn = map[string]func(context.Context) error{}
	}

	a.closerFn["HTTP Server"] = func(ctx context.Context) error {
		return a.httpServer.Shutdown(ctx)
	}
	a.closerFn["Config"] = func(context.Context) error {
		return a.config.Close()
	}
	a.closerFn["Logging"] = func(ctx context.Context) error {
		return a.logs.Close(ctx)
	}
}
