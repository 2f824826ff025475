package pkglog

import (
	"context"
	"os"
	"path/filepath"
	"sync"

	"golang.org/x/time/rate"
)

// Config selects sink destinations and pipeline policy for a Registry.
type Config struct {
	// Environment is "production" or "development". Development lowers the
	// minimum level to DEBUG and always enables console output.
	Environment string
	// Service is the static service name stamped on every record.
	Service string
	// Dir is the directory holding the per-domain log files.
	Dir string
	// MinLevel is the minimum severity emitted (production default INFO).
	MinLevel Level
	// Console mirrors every record to stdout in addition to its file.
	Console bool
	// MaxSizeMB and MaxBackups are the rotation thresholds per file.
	MaxSizeMB  int
	MaxBackups int
	// QueueSize bounds each sink's in-flight queue.
	QueueSize int
	// DebugPerSecond, when positive, rate-limits DEBUG records. Zero keeps
	// every DEBUG record; this stays off unless configured.
	DebugPerSecond float64
}

// Registry owns the sinks and the pre-built domain loggers. One Registry is
// constructed at bootstrap and injected where loggers are needed; there are
// no package-level logger singletons.
type Registry struct {
	core  *core
	sinks []*asyncSink

	application  *Logger
	http         *Logger
	transaction  *TransactionLogger
	rule         *RuleLogger
	notification *NotificationLogger
	audit        *AuditLogger
	metrics      *MetricsLogger

	closeOnce sync.Once
	closeErr  error
}

// Log file per domain; collectors tail these paths.
const (
	fileApplication   = "application.json.log"
	fileErrors        = "errors.json.log"
	fileTransactions  = "transactions.json.log"
	fileRules         = "rules.json.log"
	fileNotifications = "notifications.json.log"
	fileAudit         = "audit.json.log"
	fileMetrics       = "metrics.json.log"
)

// NewRegistry builds the logging pipeline: one rotating file sink per domain
// behind a bounded async queue, an ERROR mirror file, and optionally a shared
// console sink.
func NewRegistry(cfg Config, obs Observer) (*Registry, error) {
	if cfg.Service == "" {
		cfg.Service = "fraud-detection"
	}
	if cfg.Dir == "" {
		cfg.Dir = "./logs"
	}
	if cfg.MaxSizeMB < 1 {
		cfg.MaxSizeMB = 100
	}
	if cfg.MaxBackups < 1 {
		cfg.MaxBackups = 10
	}

	minLevel := cfg.MinLevel
	console := cfg.Console
	if cfg.Environment == "development" {
		minLevel = LevelDebug
		console = true
	}

	hostname, err := os.Hostname()
	if err != nil {
		hostname = "localhost"
	}

	var sampler *rate.Limiter
	if cfg.DebugPerSecond > 0 {
		sampler = rate.NewLimiter(rate.Limit(cfg.DebugPerSecond), 1)
	}

	c := &core{
		service:  cfg.Service,
		hostname: hostname,
		pid:      os.Getpid(),
		process:  filepath.Base(os.Args[0]),
		minLevel: minLevel,
		sampler:  sampler,
		observer: obs,
	}

	r := &Registry{core: c}

	var consoleOut Sink
	if console {
		consoleOut = &consoleSink{mu: &sync.Mutex{}, out: os.Stdout}
	}

	errorsSink, err := r.openSink("errors", filepath.Join(cfg.Dir, fileErrors), cfg, nil)
	if err != nil {
		return nil, err
	}
	c.errors = errorsSink

	appSink, err := r.openSink("application", filepath.Join(cfg.Dir, fileApplication), cfg, consoleOut)
	if err != nil {
		return nil, err
	}
	txSink, err := r.openSink("transactions", filepath.Join(cfg.Dir, fileTransactions), cfg, consoleOut)
	if err != nil {
		return nil, err
	}
	ruleSink, err := r.openSink("rules", filepath.Join(cfg.Dir, fileRules), cfg, consoleOut)
	if err != nil {
		return nil, err
	}
	notifSink, err := r.openSink("notifications", filepath.Join(cfg.Dir, fileNotifications), cfg, consoleOut)
	if err != nil {
		return nil, err
	}
	// Audit and metrics stay file-only regardless of console settings.
	auditSink, err := r.openSink("audit", filepath.Join(cfg.Dir, fileAudit), cfg, nil)
	if err != nil {
		return nil, err
	}
	metricsSink, err := r.openSink("metrics", filepath.Join(cfg.Dir, fileMetrics), cfg, nil)
	if err != nil {
		return nil, err
	}

	r.application = &Logger{core: c, name: "application", component: "application", sink: appSink}
	r.http = &Logger{core: c, name: "http", component: "http", sink: appSink}
	r.transaction = &TransactionLogger{logger: &Logger{core: c, name: "transactions", component: "transactions", sink: txSink}}
	r.rule = &RuleLogger{logger: &Logger{core: c, name: "rules", component: "rules", sink: ruleSink}}
	r.notification = &NotificationLogger{logger: &Logger{core: c, name: "notifications", component: "notifications", sink: notifSink}}
	r.audit = &AuditLogger{logger: &Logger{core: c, name: "audit", component: "audit", sink: auditSink}}
	r.metrics = &MetricsLogger{logger: &Logger{core: c, name: "metrics", component: "metrics", sink: metricsSink}}

	return r, nil
}

func (r *Registry) openSink(component, path string, cfg Config, console Sink) (Sink, error) {
	file, err := newFileSink(path, cfg.MaxSizeMB, cfg.MaxBackups)
	if err != nil {
		return nil, err
	}

	var dst Sink = file
	if console != nil {
		dst = &teeSink{sinks: []Sink{file, console}}
	}

	// Each sink buffers its own failed lines so a replay never crosses into
	// another domain's file.
	async := newAsyncSink(component, dst, cfg.QueueSize, newFallbackBuffer(500), r.core.observer)
	r.sinks = append(r.sinks, async)

	return async, nil
}

func (r *Registry) Application() *Logger { return r.application }

func (r *Registry) HTTP() *Logger { return r.http }

func (r *Registry) Transaction() *TransactionLogger { return r.transaction }

func (r *Registry) Rule() *RuleLogger { return r.rule }

func (r *Registry) Notification() *NotificationLogger { return r.notification }

func (r *Registry) Audit() *AuditLogger { return r.audit }

func (r *Registry) Metrics() *MetricsLogger { return r.metrics }

// Recover replays any fallback-buffered lines into their sinks. Call when
// sink storage is known to be healthy again.
func (r *Registry) Recover() {
	for _, s := range r.sinks {
		s.Recover()
	}
}

// Close drains every queue and closes every file. Safe to call more than
// once; the context is accepted for interface symmetry with other closers.
func (r *Registry) Close(context.Context) error {
	r.closeOnce.Do(func() {
		for _, s := range r.sinks {
			if err := s.Close(); err != nil && r.closeErr == nil {
				r.closeErr = err
			}
		}
	})

	return r.closeErr
}
