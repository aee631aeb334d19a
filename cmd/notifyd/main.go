package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	notificationapi "github.com/dmitrymomot/notifykit/modules/notification"
	"github.com/dmitrymomot/notifykit/pkg/config"
	"github.com/dmitrymomot/notifykit/pkg/email"
	"github.com/dmitrymomot/notifykit/pkg/httpserver"
	"github.com/dmitrymomot/notifykit/pkg/locker"
	"github.com/dmitrymomot/notifykit/pkg/logger"
	"github.com/dmitrymomot/notifykit/pkg/metrics"
	"github.com/dmitrymomot/notifykit/pkg/mongo"
	"github.com/dmitrymomot/notifykit/pkg/notification"
	"github.com/dmitrymomot/notifykit/pkg/redis"
	"github.com/dmitrymomot/notifykit/pkg/requestid"
	"github.com/dmitrymomot/notifykit/pkg/sms"
	"github.com/dmitrymomot/notifykit/pkg/webhook"
)

const (
	storageMemory = "memory"
	storageMongo  = "mongo"
)

type appConfig struct {
	Env             string        `env:"APP_ENV" envDefault:"development"`
	Name            string        `env:"APP_NAME" envDefault:"notifyd"`
	LogLevel        string        `env:"LOG_LEVEL"`
	StorageDriver   string        `env:"STORAGE_DRIVER" envDefault:"memory"`
	DispatchLockTTL time.Duration `env:"DISPATCH_LOCK_TTL" envDefault:"1m"`
	MetricsPrefix   string        `env:"METRICS_NAMESPACE" envDefault:"notifykit"`
	ReadyTimeout    time.Duration `env:"READY_CHECK_TIMEOUT" envDefault:"3s"`
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx); err != nil {
		slog.Error("notifyd stopped", logger.Error(err))
		os.Exit(1)
	}
}

func run(ctx context.Context) error {
	var (
		appCfg     appConfig
		httpCfg    httpserver.Config
		mongoCfg   mongo.Config
		redisCfg   redis.Config
		emailCfg   email.Config
		smsCfg     sms.Config
		webhookCfg webhook.Config
	)
	for _, load := range []func() error{
		func() error { return config.Load(&appCfg) },
		func() error { return config.Load(&httpCfg) },
		func() error { return config.Load(&mongoCfg) },
		func() error { return config.Load(&redisCfg) },
		func() error { return config.Load(&emailCfg) },
		func() error { return config.Load(&smsCfg) },
		func() error { return config.Load(&webhookCfg) },
	} {
		if err := load(); err != nil {
			return fmt.Errorf("load config: %w", err)
		}
	}

	logOpts := []logger.Option{
		logger.WithEnvironment(appCfg.Env, appCfg.Name),
		logger.WithContextExtractors(requestid.LoggerExtractor()),
	}
	if appCfg.LogLevel != "" {
		logOpts = append(logOpts, logger.WithLevelName(appCfg.LogLevel))
	}
	log := logger.New(logOpts...)
	slog.SetDefault(log)

	checks := map[string]httpserver.Check{}

	store, closeStore, err := newStorage(ctx, appCfg.StorageDriver, mongoCfg, checks)
	if err != nil {
		return err
	}
	defer closeStore()

	lock, closeLock, err := newLocker(ctx, redisCfg, checks, log)
	if err != nil {
		return err
	}
	defer closeLock()

	mailer, err := email.New(emailCfg)
	if err != nil {
		return fmt.Errorf("email transport: %w", err)
	}
	texter, err := sms.New(smsCfg, sms.WithDevLogger(log))
	if err != nil {
		return fmt.Errorf("sms transport: %w", err)
	}

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	svc := notification.NewService(store,
		notification.Senders{
			notification.TypeEmail:   notification.NewEmailChannel(mailer),
			notification.TypeSMS:     notification.NewSMSChannel(texter),
			notification.TypeWebhook: notification.NewWebhookChannel(webhook.NewFromConfig(webhookCfg)),
		},
		notification.WithLogger(log),
		notification.WithMetrics(metrics.NewPrometheus(reg, appCfg.MetricsPrefix)),
	)

	r := chi.NewRouter()
	r.Use(requestid.Middleware, middleware.RealIP, httpserver.AccessLog(log), middleware.Recoverer)

	r.Get("/health/live", httpserver.LivenessHandler())
	r.Get("/health/ready", httpserver.ReadinessHandler(log, appCfg.ReadyTimeout, checks))
	r.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{Registry: reg}))
	lockTTL := dispatchLockTTL(appCfg.DispatchLockTTL, webhookCfg.DeliveryBudget())
	if lockTTL != appCfg.DispatchLockTTL {
		log.WarnContext(ctx, "DISPATCH_LOCK_TTL raised to cover webhook retries",
			slog.Duration("configured", appCfg.DispatchLockTTL),
			slog.Duration("effective", lockTTL),
		)
	}
	r.Mount("/notifications", notificationapi.NewHandler(svc,
		notificationapi.WithLogger(log),
		notificationapi.WithLocker(lock, lockTTL),
	).Router())

	log.InfoContext(ctx, "notifyd starting",
		slog.String("storage", appCfg.StorageDriver),
		slog.String("email_driver", emailCfg.Driver),
		slog.String("sms_driver", smsCfg.Driver),
		slog.Bool("redis_locker", redisCfg.Enabled()),
	)

	return httpserver.New(httpCfg, httpserver.WithLogger(log)).Run(ctx, r)
}

// lockTTLMargin covers persisting the outcome after the last attempt.
const lockTTLMargin = 10 * time.Second

// dispatchLockTTL keeps the dispatch lease alive for the slowest possible send,
// so a second caller cannot take the lock while the record is still PENDING.
func dispatchLockTTL(configured, deliveryBudget time.Duration) time.Duration {
	return max(configured, deliveryBudget+lockTTLMargin)
}

func newStorage(ctx context.Context, driver string, cfg mongo.Config, checks map[string]httpserver.Check) (notification.Storage, func(), error) {
	switch driver {
	case storageMemory, "":
		return notification.NewMemoryStorage(), func() {}, nil
	case storageMongo:
		db, err := mongo.NewWithDatabase(ctx, cfg)
		if err != nil {
			return nil, nil, fmt.Errorf("mongo: %w", err)
		}
		closeFn := func() { _ = db.Client().Disconnect(context.Background()) }

		store := notification.NewMongoStorage(db, cfg.Collection)
		if err := store.EnsureIndexes(ctx); err != nil {
			closeFn()
			return nil, nil, fmt.Errorf("mongo indexes: %w", err)
		}
		checks["mongo"] = mongo.Healthcheck(db.Client())
		return store, closeFn, nil
	default:
		return nil, nil, errors.New("unknown STORAGE_DRIVER " + driver)
	}
}

// newLocker prefers Redis so dispatch locks hold across replicas.
func newLocker(ctx context.Context, cfg redis.Config, checks map[string]httpserver.Check, log *slog.Logger) (locker.Locker, func(), error) {
	if !cfg.Enabled() {
		log.WarnContext(ctx, "REDIS_URL not set, dispatch locks are process local")
		return locker.NewMemoryLocker(), func() {}, nil
	}

	client, err := redis.Connect(ctx, cfg)
	if err != nil {
		return nil, nil, fmt.Errorf("redis: %w", err)
	}
	checks["redis"] = redis.Healthcheck(client)
	return locker.NewRedisLocker(client, ""), func() { _ = client.Close() }, nil
}
