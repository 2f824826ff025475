package fraud

import (
	"context"

	"github.com/sentinelpay/fraudlog/internal/fraud/entity"
	"github.com/sentinelpay/fraudlog/internal/fraud/event"
	"github.com/sentinelpay/fraudlog/internal/fraud/inbound"
	"github.com/sentinelpay/fraudlog/internal/fraud/notify"
	"github.com/sentinelpay/fraudlog/internal/fraud/store"
	"github.com/sentinelpay/fraudlog/internal/fraud/usecase"
	"github.com/sentinelpay/fraudlog/internal/pkg/pkgconfig"
	"github.com/sentinelpay/fraudlog/internal/pkg/pkglog"
	"github.com/sentinelpay/fraudlog/internal/pkg/pkgmetrics"
	"github.com/sentinelpay/fraudlog/internal/pkg/pkgrouter"
	"github.com/sentinelpay/fraudlog/internal/pkg/pkgroutine"
	"github.com/sentinelpay/fraudlog/internal/pkg/pkguid"
)

type Dependency struct {
	Config    pkgconfig.Config
	Goroutine *pkgroutine.Manager
	Router    *pkgrouter.Router
	Context   context.Context
	ID        pkguid.StringID
	Logs      *pkglog.Registry
	Metrics   *pkgmetrics.Metrics
}

func New(dep Dependency) (func(context.Context) error, error) {
	if dep.ID == nil {
		dep.ID = pkguid.NewUUID()
	}

	eventID, err := pkguid.NewSnowflake()
	if err != nil {
		return nil, err
	}

	storage := store.NewInMemoryStore()
	seedRules(dep.Context, storage, dep.Config)

	bus := event.NewBus(512)
	if dep.Metrics != nil {
		bus.SetDepthGauge(dep.Metrics)
	}

	dispatcher := notify.NewDispatcher(
		buildChannels(dep.Config),
		dep.ID,
		dep.Logs.Notification(),
		dep.Metrics,
		notify.DispatcherConfig{
			MaxRetries:  int(dep.Config.GetInt("modules.fraud.notifications.max_retries")),
			BaseBackoff: dep.Config.GetDuration("modules.fraud.notifications.base_backoff"),
		},
	)

	// The dispatcher owns per-channel retries, so the consumer does not retry
	// whole events (that would resend through channels that already succeeded).
	consumer := event.NewAlertConsumer(bus, dispatcher, event.ConsumerConfig{
		Workers:    4,
		MaxRetries: 0,
	})
	consumer.Start()

	uc := usecase.New(usecase.Dependency{
		Store:   storage,
		Alerts:  bus,
		Runner:  dep.Goroutine,
		ID:      dep.ID,
		EventID: eventID,
		Logs: usecase.Loggers{
			App:         dep.Logs.Application(),
			Transaction: dep.Logs.Transaction(),
			Rule:        dep.Logs.Rule(),
			Audit:       dep.Logs.Audit(),
		},
		Metrics: dep.Metrics,
		RootCtx: dep.Context,
	})

	inbound.RegisterHTTPEndpoint(dep.Router, uc)

	return consumer.Stop, nil
}

func buildChannels(cfg pkgconfig.Config) []notify.Channel {
	timeout := cfg.GetDuration("modules.fraud.notifications.timeout")

	var channels []notify.Channel
	if url := cfg.GetString("modules.fraud.notifications.webhook_url"); url != "" {
		channels = append(channels, notify.NewWebhookChannel(url, timeout))
	}
	if token := cfg.GetString("modules.fraud.notifications.telegram_token"); token != "" {
		chatID := cfg.GetString("modules.fraud.notifications.telegram_chat_id")
		channels = append(channels, notify.NewTelegramChannel(token, chatID, timeout))
	}
	if host := cfg.GetString("modules.fraud.notifications.email_smtp_host"); host != "" {
		channels = append(channels, notify.NewEmailChannel(
			host,
			int(cfg.GetInt("modules.fraud.notifications.email_smtp_port")),
			cfg.GetString("modules.fraud.notifications.email_from"),
			cfg.GetString("modules.fraud.notifications.email_password"),
			cfg.GetArray("modules.fraud.notifications.email_recipients"),
		))
	}
	if len(channels) == 0 {
		channels = append(channels, notify.NewStdoutChannel())
	}

	return channels
}

// seedRules installs the two built-in rules so a fresh instance flags obvious
// fraud without any operator action.
func seedRules(ctx context.Context, s *store.InMemoryStore, cfg pkgconfig.Config) {
	threshold := cfg.GetInt("modules.fraud.rules.amount_threshold")
	if threshold <= 0 {
		threshold = 1_000_000
	}

	window := cfg.GetInt("modules.fraud.rules.velocity_window_seconds")
	if window <= 0 {
		window = 60
	}
	maxCount := int(cfg.GetInt("modules.fraud.rules.velocity_max_count"))
	if maxCount <= 0 {
		maxCount = 10
	}

	_ = s.CreateRule(ctx, entity.Rule{
		ID:        "builtin-amount-threshold",
		Name:      "high-amount",
		Type:      entity.RuleTypeAmountThreshold,
		Enabled:   true,
		CreatedBy: "system",
		Threshold: threshold,
	})
	_ = s.CreateRule(ctx, entity.Rule{
		ID:            "builtin-velocity",
		Name:          "burst-activity",
		Type:          entity.RuleTypeVelocity,
		Enabled:       true,
		CreatedBy:     "system",
		WindowSeconds: window,
		MaxCount:      maxCount,
	})
}
