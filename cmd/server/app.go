package main

import (
	"context"
	"fmt"
	"net/http"

	goredis "github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/twmb/franz-go/pkg/kgo"

	httpAdapter "github.com/iho/ledger-es/internal/adapter/http"
	"github.com/iho/ledger-es/internal/adapter/http/handler"
	"github.com/iho/ledger-es/internal/adapter/http/middleware"
	kafkaAdapter "github.com/iho/ledger-es/internal/adapter/kafka"
	"github.com/iho/ledger-es/internal/adapter/repository/memory"
	postgresRepo "github.com/iho/ledger-es/internal/adapter/repository/postgres"
	redisRepo "github.com/iho/ledger-es/internal/adapter/repository/redis"
	"github.com/iho/ledger-es/internal/domain"
	"github.com/iho/ledger-es/internal/eventsourcing"
	"github.com/iho/ledger-es/internal/infrastructure/auth"
	"github.com/iho/ledger-es/internal/infrastructure/config"
	"github.com/iho/ledger-es/internal/infrastructure/kafka"
	"github.com/iho/ledger-es/internal/infrastructure/metrics"
	"github.com/iho/ledger-es/internal/infrastructure/notifier"
	"github.com/iho/ledger-es/internal/infrastructure/postgres"
	"github.com/iho/ledger-es/internal/infrastructure/redis"
	"github.com/iho/ledger-es/internal/projection"
	"github.com/iho/ledger-es/internal/usecase"
)

// storage is the event log and projection store for one driver.
type storage struct {
	log       eventsourcing.Log
	txManager usecase.TransactionManager
	ledgers   usecase.LedgerViewRepository
	dashboard usecase.DashboardRepository
	cursors   usecase.ProjectionCursorRepository
	retrier   usecase.Retrier
	checks    map[string]handler.Check
	close     func()
}

func openStorage(ctx context.Context, cfg *config.Config, logger zerolog.Logger) (*storage, error) {
	switch cfg.StorageDriver {
	case config.StorageMemory:
		logger.Warn().Msg("using in-memory storage, data is lost on exit")
		store := memory.NewStore()
		return &storage{
			log:       memory.NewEventLog(),
			txManager: store,
			ledgers:   store.Ledgers(),
			dashboard: store.Dashboard(),
			cursors:   store.Cursors(),
			checks:    map[string]handler.Check{},
			close:     func() {},
		}, nil

	case config.StoragePostgres:
		if cfg.MigrateOnStart {
			if err := postgres.RunMigrations(cfg.DatabaseURL, cfg.MigrationsPath, logger); err != nil {
				return nil, err
			}
		}

		connectCtx, cancel := context.WithTimeout(ctx, cfg.DatabaseTimeout)
		defer cancel()
		pool, err := postgres.NewPoolWithConfig(connectCtx, postgres.PoolConfig{
			DatabaseURL:     cfg.DatabaseURL,
			MaxConns:        cfg.DatabaseMaxConns,
			MinConns:        cfg.DatabaseMinConns,
			ApplicationName: cfg.OTelServiceName,
		})
		if err != nil {
			return nil, fmt.Errorf("connect to postgres: %w", err)
		}
		logger.Info().Msg("connected to postgres")

		return &storage{
			log: postgresRepo.NewEventLog(pool,
				postgresRepo.WithPollInterval(cfg.SubscriptionPollInterval),
				postgresRepo.WithEventLogLogger(logger)),
			txManager: postgresRepo.NewTxManager(pool),
			ledgers:   postgresRepo.NewLedgerViewRepository(pool),
			dashboard: postgresRepo.NewDashboardRepository(pool),
			cursors:   postgresRepo.NewProjectionCursorRepository(pool),
			retrier:   postgresRepo.NewRetrier(logger),
			checks: map[string]handler.Check{
				"postgres": pool.Ping,
			},
			close: pool.Close,
		}, nil
	}

	return nil, fmt.Errorf("unknown storage driver %q", cfg.StorageDriver)
}

// app is the wired process: HTTP handler plus projection engine.
type app struct {
	handler http.Handler
	engine  *projection.Engine
	limiter *middleware.RateLimiter
	closers []func()
}

// Close releases connections in reverse order of opening.
func (a *app) Close() {
	for i := len(a.closers) - 1; i >= 0; i-- {
		a.closers[i]()
	}
}

func newApp(ctx context.Context, cfg *config.Config, logger zerolog.Logger, m *metrics.Metrics) (_ *app, err error) {
	a := &app{}
	defer func() {
		if err != nil {
			a.Close()
		}
	}()

	store, err := openStorage(ctx, cfg, logger)
	if err != nil {
		return nil, err
	}
	a.closers = append(a.closers, store.close)
	checks := store.checks

	var redisClient *goredis.Client
	if cfg.RedisURL != "" {
		redisClient, err = redis.NewClient(ctx, cfg.RedisURL, redis.WithClientName(cfg.OTelServiceName))
		if err != nil {
			return nil, fmt.Errorf("connect to redis: %w", err)
		}
		a.closers = append(a.closers, func() { _ = redisClient.Close() })
		checks["redis"] = func(ctx context.Context) error { return redisClient.Ping(ctx).Err() }
		logger.Info().Msg("connected to redis")
	}

	var kafkaClient *kgo.Client
	if cfg.HasNotifier(config.NotifierKafka) {
		kafkaClient, err = kafka.NewClient(ctx, kafka.Config{
			Brokers:  cfg.KafkaBrokers,
			ClientID: cfg.KafkaClientID,
			Topic:    cfg.KafkaTopic,
		})
		if err != nil {
			return nil, fmt.Errorf("connect to kafka: %w", err)
		}
		a.closers = append(a.closers, kafkaClient.Close)
		logger.Info().Str("topic", cfg.KafkaTopic).Msg("connected to kafka")
	}

	registry, err := domain.NewEventRegistry()
	if err != nil {
		return nil, err
	}
	client := eventsourcing.NewClient(store.log, registry,
		eventsourcing.WithStreamNameFormat(domain.LedgerKind, domain.LedgerStreamFormat),
		eventsourcing.WithBatchSize(cfg.SubscriptionBatchSize),
		eventsourcing.WithLogger(logger),
	)

	var (
		cache       usecase.DashboardCache
		idempotency usecase.IdempotencyStore
	)
	var dashboardCache *redisRepo.DashboardCache
	if redisClient != nil {
		dashboardCache = redisRepo.NewDashboardCache(redisClient, cfg.DashboardCacheTTL)
		cache = dashboardCache
		idempotency = redisRepo.NewIdempotencyStore(redisClient)
	}

	dispatcher := notifier.NewDispatcher(notifier.Config{
		Publishers: buildPublishers(cfg, logger, redisClient, kafkaClient, dashboardCache),
		Recorder:   m,
		Logger:     logger,
	})

	a.engine = projection.NewEngine(projection.Config{
		Name:       cfg.ProjectionName,
		Subscriber: client,
		TxManager:  store.txManager,
		Cursors:    store.cursors,
		Updaters: []projection.Updater{
			projection.NewLedgerUpdater(store.ledgers, logger),
			projection.NewDashboardUpdater(store.dashboard, logger),
		},
		Notifier:        dispatcher,
		Retrier:         store.retrier,
		Observer:        m,
		Logger:          logger,
		InitialInterval: cfg.ResubscribeInitialInterval,
		MaxInterval:     cfg.ResubscribeMaxInterval,
	})

	commands := usecase.NewLedgerCommandUseCase(client, postgresRepo.NewULIDGenerator(), logger,
		usecase.WithCommandRecorder(m),
		usecase.WithCommandTimeout(cfg.CommandTimeout),
	)
	queries := usecase.NewLedgerQueryUseCase(client, store.ledgers, store.dashboard, store.cursors, cache, logger)

	if cfg.RateLimitRPS > 0 {
		a.limiter = middleware.NewRateLimiter(cfg.RateLimitRPS, cfg.RateLimitBurst)
	}

	var verifier middleware.TokenVerifier
	if cfg.AuthEnabled {
		verifier = auth.NewJWTManager(cfg.JWTSecret, cfg.JWTExpiration)
	}

	a.handler = httpAdapter.NewRouter(httpAdapter.RouterConfig{
		LedgerHandler:    handler.NewLedgerHandler(commands, queries),
		DashboardHandler: handler.NewDashboardHandler(queries, a.engine),
		HealthHandler:    handler.NewHealthHandler(checks),
		MetricsHandler:   m.Handler(),
		HTTPMetrics:      middleware.NewHTTPMetrics(m.Registerer()),
		IdempotencyStore: idempotency,
		IdempotencyTTL:   cfg.IdempotencyTTL,
		RateLimiter:      a.limiter,
		TokenVerifier:    verifier,
		Logger:           logger,
	})

	return a, nil
}

// buildPublishers maps NOTIFIERS onto publishers. A dashboard cache, when
// present, is always invalidated on dashboard changes.
func buildPublishers(
	cfg *config.Config,
	logger zerolog.Logger,
	redisClient *goredis.Client,
	kafkaClient *kgo.Client,
	cache *redisRepo.DashboardCache,
) map[string]notifier.Publisher {
	publishers := make(map[string]notifier.Publisher)

	for _, name := range cfg.Notifiers {
		switch name {
		case config.NotifierLog:
			publishers[name] = notifier.NewLogPublisher(logger)
		case config.NotifierRedis:
			if redisClient != nil {
				publishers[name] = redisRepo.NewNotifier(redisClient)
			}
		case config.NotifierKafka:
			if kafkaClient != nil {
				publishers[name] = kafkaAdapter.NewNotifier(kafkaClient, cfg.KafkaTopic)
			}
		}
	}

	if cache != nil {
		publishers["dashboard_cache"] = notifier.NewCacheInvalidator(cache)
	}

	return publishers
}
