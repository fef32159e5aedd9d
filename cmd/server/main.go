package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"golang.org/x/sync/errgroup"

	accesshandler "credvault/internal/access/handler"
	accessmetrics "credvault/internal/access/metrics"
	accessservice "credvault/internal/access/service"
	accessstore "credvault/internal/access/store"
	dirhandler "credvault/internal/directory/handler"
	dirmetrics "credvault/internal/directory/metrics"
	dirservice "credvault/internal/directory/service"
	dirstore "credvault/internal/directory/store"
	jwttoken "credvault/internal/jwt_token"
	"credvault/internal/platform/config"
	"credvault/internal/platform/database"
	"credvault/internal/platform/health"
	"credvault/internal/platform/kafka/producer"
	"credvault/internal/platform/logger"
	redisclient "credvault/internal/platform/redis"
	reghandler "credvault/internal/registry/handler"
	regmetrics "credvault/internal/registry/metrics"
	regservice "credvault/internal/registry/service"
	regstore "credvault/internal/registry/store"
	"credvault/internal/seeder"
	httptransport "credvault/internal/transport/http"
	"credvault/internal/verification/cache"
	verifhandler "credvault/internal/verification/handler"
	verifmetrics "credvault/internal/verification/metrics"
	verifservice "credvault/internal/verification/service"
	"credvault/internal/verification/tracer"
	"credvault/pkg/platform/audit/outbox"
	outboxmetrics "credvault/pkg/platform/audit/outbox/metrics"
	outboxmemory "credvault/pkg/platform/audit/outbox/store/memory"
	outboxpostgres "credvault/pkg/platform/audit/outbox/store/postgres"
	"credvault/pkg/platform/audit/outbox/worker"
	"credvault/pkg/platform/audit/publisher"
	"credvault/pkg/platform/circuit"
	"credvault/pkg/platform/middleware/request"
)

const (
	shutdownTimeout   = 10 * time.Second
	poolStatsInterval = 15 * time.Second
)

// record stores selected at startup. Everything is in memory unless DATABASE_URL is set.
type stores struct {
	subjects     dirservice.Store
	certificates interface {
		regservice.Store
		accessservice.CertificateStoreReader
	}
	requests accessservice.Store
	outbox   outbox.Store
	tx       accessservice.StoreTx
}

// main wires dependencies, exposes the HTTP router, and owns the process
// lifecycle. Business logic lives in the internal service packages.
func main() {
	cfg := config.FromEnv()
	log := logger.New(cfg.LogLevel)

	if err := run(cfg, log); err != nil {
		log.Error("server exited with error", "error", err)
		os.Exit(1)
	}
	log.Info("server stopped")
}

func run(cfg config.Server, log *slog.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	log.Info("initializing credvault",
		"addr", cfg.Addr,
		"environment", cfg.Environment,
		"postgres", cfg.Database.URL != "",
		"redis", cfg.Redis.URL != "",
		"kafka", cfg.Kafka.Brokers != "",
	)

	checks := health.New(cfg.Environment)

	pool, err := database.New(cfg.Database)
	if err != nil {
		return err
	}
	if pool != nil {
		defer pool.Close() //nolint:errcheck // shutdown path
		checks.RegisterCheck("postgres", pool.Health)
	}
	st := buildStores(pool)

	rdb, err := redisclient.New(cfg.Redis)
	if err != nil {
		return err
	}
	var grantCache verifservice.GrantCache = cache.NewInMemoryCache(cfg.Redis.GrantCacheTTL)
	if rdb != nil {
		defer rdb.Close() //nolint:errcheck // shutdown path
		checks.RegisterCheck("redis", rdb.Health)
		grantCache = cache.NewRedisCache(rdb.Client, cfg.Redis.GrantCacheTTL)
	}

	prod, err := buildProducer(ctx, cfg.Kafka, log)
	if err != nil {
		return err
	}
	defer prod.Close() //nolint:errcheck // flushes buffered audit records
	if checker, ok := prod.(interface{ Health(context.Context) error }); ok {
		checks.RegisterCheck("kafka", checker.Health)
	}

	outboxMetrics := outboxmetrics.New()
	relay := worker.New(st.outbox, prod,
		worker.WithTopic(cfg.Kafka.AuditTopic),
		worker.WithBatchSize(cfg.Outbox.BatchSize),
		worker.WithPollInterval(cfg.Outbox.PollInterval),
		worker.WithMetrics(outboxMetrics),
		worker.WithLogger(log),
	)
	auditor := publisher.New(outbox.NewSink(st.outbox), publisher.WithLogger(log))

	tokens := jwttoken.NewJWTService(cfg.JWTSigningKey, cfg.TokenIssuer, cfg.TokenAudience, cfg.TokenTTL)

	directory := dirservice.NewService(st.subjects, auditor, log,
		dirservice.WithMetrics(dirmetrics.New()))
	registry := regservice.NewService(st.certificates, directory, auditor, log,
		regservice.WithMetrics(regmetrics.New()))
	accessOpts := []accessservice.Option{accessservice.WithMetrics(accessmetrics.New())}
	if st.tx != nil {
		accessOpts = append(accessOpts, accessservice.WithTx(st.tx))
	}
	access := accessservice.NewService(st.requests, st.certificates, directory, auditor, log, accessOpts...)
	verifier := verifservice.NewService(registry, access, auditor, log,
		verifservice.WithGrantCache(grantCache),
		verifservice.WithCacheBreaker(circuit.New("grant_cache",
			circuit.WithFailureThreshold(5),
			circuit.WithRetryInterval(cfg.Redis.DialTimeout),
		)),
		verifservice.WithTracer(tracer.NewOTel()),
		verifservice.WithMetrics(verifmetrics.New()),
	)

	if cfg.SeedDemo {
		if _, err := seeder.New(directory, registry, access, log).SeedAll(ctx); err != nil {
			return err
		}
	}

	directoryHandler := dirhandler.New(directory, tokens, log)
	router := httptransport.NewRouter(httptransport.Config{
		Logger:    log,
		Validator: jwttoken.NewValidatorAdapter(tokens),
		Metrics:   request.NewMetrics(),
		Health:    checks,
		Public:    []httptransport.PublicRegistrar{directoryHandler},
		Protected: []httptransport.RouteRegistrar{
			directoryHandler,
			reghandler.New(registry, directory, log),
			accesshandler.New(access, log),
			verifhandler.New(verifier, log),
		},
	})

	srv := &http.Server{
		Addr:              cfg.Addr,
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
	}

	relay.Start()

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		log.Info("starting http server", "addr", cfg.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		log.Info("shutting down server gracefully")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		srvErr := srv.Shutdown(shutdownCtx)
		relayErr := relay.Stop(shutdownCtx)
		return errors.Join(srvErr, relayErr)
	})
	g.Go(func() error {
		ticker := time.NewTicker(poolStatsInterval)
		defer ticker.Stop()
		for {
			select {
			case <-gctx.Done():
				return nil
			case <-ticker.C:
				if err := relay.UpdateMetrics(gctx); err != nil {
					log.Warn("failed to refresh outbox depth", "error", err)
				}
			}
		}
	})
	if rdb != nil {
		g.Go(func() error {
			return rdb.RunPoolStats(gctx, poolStatsInterval)
		})
	}

	return g.Wait()
}

func buildStores(pool *database.Pool) stores {
	if pool == nil {
		return stores{
			subjects:     dirstore.New(),
			certificates: regstore.New(),
			requests:     accessstore.New(),
			outbox:       outboxmemory.New(),
		}
	}
	db := pool.DB()
	return stores{
		subjects:     dirstore.NewPostgres(db),
		certificates: regstore.NewPostgres(db),
		requests:     accessstore.NewPostgres(db),
		outbox:       outboxpostgres.New(db),
		tx:           newAccessPostgresTx(db),
	}
}

type auditProducer interface {
	worker.Producer
	Close() error
}

func buildProducer(ctx context.Context, cfg config.KafkaConfig, log *slog.Logger) (auditProducer, error) {
	if cfg.Brokers == "" {
		return producer.NewNoopProducer(), nil
	}
	prod, err := producer.New(producer.DefaultConfig(cfg.Brokers), log)
	if err != nil {
		return nil, err
	}
	ensureCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	if err := prod.EnsureTopic(ensureCtx, cfg.AuditTopic, 3, 1); err != nil {
		log.Warn("could not ensure audit topic", "topic", cfg.AuditTopic, "error", err)
	}
	return prod, nil
}
