package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"memberlink/internal/audit"
	"memberlink/internal/identity/directory"
	"memberlink/internal/identity/handler"
	"memberlink/internal/identity/mailer"
	"memberlink/internal/identity/migrate"
	"memberlink/internal/identity/principal"
	"memberlink/internal/identity/reconcile"
	"memberlink/internal/identity/registry"
	"memberlink/internal/identity/runlock"
	"memberlink/internal/platform/config"
	"memberlink/internal/platform/database"
	"memberlink/internal/platform/health"
	"memberlink/internal/platform/kafka"
	"memberlink/internal/platform/kafka/producer"
	"memberlink/internal/platform/metrics"
	"memberlink/internal/platform/middleware"
	"memberlink/internal/platform/redis"
	"memberlink/internal/platform/tracer"
	"memberlink/migrations"
)

const (
	redisStatsInterval = 15 * time.Second
	auditBufferSize    = 256
	kafkaCloseTimeout  = 5 * time.Second
	tokenLeeway        = 30 * time.Second
	authCallbackPath   = "/auth/callback"
	lockSlackAfterRun  = 5 * time.Second
)

// app owns the infrastructure of one server process.
type app struct {
	cfg     config.Server
	log     *slog.Logger
	metrics *metrics.Metrics
	health  *health.Handler
	sync    *handler.Handler

	db        *database.Pool
	redis     *redis.Client
	producer  *producer.Producer
	publisher *audit.Publisher
}

func newApp(ctx context.Context, cfg config.Server, log *slog.Logger) (_ *app, err error) {
	a := &app{
		cfg:     cfg,
		log:     log,
		metrics: metrics.New(),
		health:  health.New(cfg.Environment),
	}
	defer func() {
		if err != nil {
			a.Close()
		}
	}()

	t := tracer.NewOTel()

	members, history, auditStore, err := a.openStores(ctx)
	if err != nil {
		return nil, err
	}
	a.publisher = audit.NewPublisher(auditStore,
		audit.WithAsyncBuffer(auditBufferSize),
		audit.WithPublisherLogger(log),
	)

	locker, err := a.openLocker(ctx)
	if err != nil {
		return nil, err
	}

	dirClient := directory.NewClient(cfg.Directory.URL, cfg.Directory.ServiceKey)
	a.health.RegisterCheck("directory", dirClient.Ping)
	scanner := directory.NewScanner(dirClient,
		directory.WithPageSize(cfg.Directory.PageSize),
		directory.WithMaxPages(cfg.Directory.MaxPages),
		directory.WithLogger(log),
		directory.WithMetrics(a.metrics),
		directory.WithTracer(t),
	)

	mail, err := a.newMailService(history, t)
	if err != nil {
		return nil, err
	}

	redirect := ""
	if cfg.Sync.SiteURL != "" {
		redirect = cfg.Sync.SiteURL + authCallbackPath
	}

	reconciler, err := reconcile.New(scanner, registry.NewLoader(members, t), members, dirClient, mail,
		reconcile.WithConfig(reconcile.Config{
			DefaultRole: cfg.Sync.DefaultMemberRole,
			RedirectURL: redirect,
			RunTimeout:  cfg.Sync.RunTimeout,
		}),
		reconcile.WithAuditPublisher(a.publisher),
		reconcile.WithLogger(log),
		reconcile.WithMetrics(a.metrics),
		reconcile.WithTracer(t),
	)
	if err != nil {
		return nil, fmt.Errorf("build reconciler: %w", err)
	}

	migrator, err := migrate.New(scanner, dirClient, mail,
		migrate.WithConfig(migrate.Config{
			DefaultRole: cfg.Sync.DefaultMemberRole,
			RedirectURL: redirect,
			RunTimeout:  cfg.Sync.RunTimeout,
		}),
		migrate.WithRoster(migrate.FileRoster{Path: cfg.Sync.DefaultRosterPath}),
		migrate.WithAuditPublisher(a.publisher),
		migrate.WithLogger(log),
		migrate.WithMetrics(a.metrics),
		migrate.WithTracer(t),
	)
	if err != nil {
		return nil, fmt.Errorf("build migrator: %w", err)
	}

	secret, err := principal.NewMigrationSecret(cfg.Directory.MigrationSecretHash)
	if err != nil {
		return nil, fmt.Errorf("load migration secret: %w", err)
	}
	resolver := principal.NewResolver(
		principal.NewTokenVerifier(cfg.Directory.JWTSecret, principal.WithLeeway(tokenLeeway)),
		principal.WithMigrationSecret(secret),
		principal.WithLogger(log),
	)

	a.sync = handler.New(reconciler, migrator, resolver, locker,
		handler.WithLogger(log),
		handler.WithMetrics(a.metrics),
		handler.WithLockTTL(cfg.Sync.RunTimeout+lockSlackAfterRun),
	)
	return a, nil
}

// openStores picks Postgres when DATABASE_URL is set and in-memory stores otherwise.
// Audit events go to Kafka when brokers are configured.
func (a *app) openStores(ctx context.Context) (registry.Store, mailer.HistoryRecorder, audit.Store, error) {
	var (
		members    registry.Store         = registry.NewInMemory()
		history    mailer.HistoryRecorder = mailer.NewInMemoryHistory()
		auditStore audit.Store            = audit.NewInMemoryStore()
	)

	if a.cfg.DatabaseURL != "" {
		pool, err := database.New(ctx, database.DefaultConfig(a.cfg.DatabaseURL))
		if err != nil {
			return nil, nil, nil, err
		}
		a.db = pool
		if err := database.ApplyMigrations(ctx, pool.DB(), migrations.FS); err != nil {
			return nil, nil, nil, err
		}
		a.health.RegisterCheck("database", pool.Health)
		members = registry.NewPostgres(pool.DB())
		history = mailer.NewPostgresHistory(pool.DB())
		auditStore = audit.NewPostgresStore(pool.DB())
	} else {
		a.log.Warn("DATABASE_URL not set, using in-memory registry")
	}

	if a.cfg.Kafka.Brokers != "" {
		p, err := producer.New(kafka.DefaultProducerConfig(a.cfg.Kafka.Brokers), a.log)
		if err != nil {
			return nil, nil, nil, fmt.Errorf("kafka producer: %w", err)
		}
		a.producer = p
		a.health.RegisterCheck("kafka", p.Health)
		auditStore = audit.NewKafkaStore(p, a.cfg.Kafka.AuditTopic)
	}
	return members, history, auditStore, nil
}

func (a *app) openLocker(ctx context.Context) (runlock.Locker, error) {
	if a.cfg.Redis.URL == "" {
		a.log.Warn("REDIS_URL not set, sync lock is process-local")
		return runlock.NewInMemory(), nil
	}
	client, err := redis.New(ctx, a.cfg.Redis)
	if err != nil {
		return nil, err
	}
	a.redis = client
	a.health.RegisterCheck("redis", client.Health)
	return runlock.NewRedis(client.Client), nil
}

func (a *app) newMailService(history mailer.HistoryRecorder, t tracer.Tracer) (*mailer.Service, error) {
	templates, err := mailer.NewTemplates(a.cfg.Sync.Organization)
	if err != nil {
		return nil, err
	}

	graph := mailer.GraphConfig{
		TenantID:     a.cfg.Mail.TenantID,
		ClientID:     a.cfg.Mail.ClientID,
		ClientSecret: a.cfg.Mail.ClientSecret,
		Sender:       a.cfg.Mail.Sender,
	}
	var factory mailer.RelayFactory
	if graph.Enabled() {
		factory = mailer.NewGraphFactory(graph)
	} else {
		a.log.Warn("mail relay not configured, live invites will fail")
	}

	return mailer.NewService(factory, templates,
		mailer.WithHistory(history),
		mailer.WithSendDelay(a.cfg.Mail.SendDelay),
		mailer.WithLogger(a.log),
		mailer.WithMetrics(a.metrics),
		mailer.WithTracer(t),
	), nil
}

// Router mounts every route behind the shared middleware chain.
func (a *app) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Recovery(a.log))
	r.Use(middleware.RequestID)
	r.Use(middleware.Logger(a.log))
	r.Use(middleware.CORS(a.cfg.CORSAllowedOrigins))
	r.Use(middleware.Latency(a.metrics))

	a.health.Register(r)
	r.Handle("/metrics", promhttp.Handler())
	r.Group(func(r chi.Router) {
		r.Use(middleware.ContentTypeJSON)
		a.sync.Register(r)
	})
	return r
}

// RunBackground runs periodic work until ctx is done.
func (a *app) RunBackground(ctx context.Context) {
	if a.redis == nil {
		<-ctx.Done()
		return
	}
	a.redis.ReportPoolStats(ctx, redisStatsInterval)
}

func (a *app) Close() {
	if a.publisher != nil {
		a.publisher.Close()
	}
	if a.producer != nil {
		a.producer.Close(kafkaCloseTimeout)
	}
	if a.redis != nil {
		if err := a.redis.Close(); err != nil {
			a.log.Warn("failed to close redis", "error", err)
		}
	}
	if a.db != nil {
		if err := a.db.Close(); err != nil {
			a.log.Warn("failed to close database", "error", err)
		}
	}
}
