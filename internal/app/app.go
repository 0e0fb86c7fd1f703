package app

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	goredis "github.com/redis/go-redis/v9"

	"github.com/MrSnakeDoc/inframe/internal/config"
	"github.com/MrSnakeDoc/inframe/internal/connect"
	"github.com/MrSnakeDoc/inframe/internal/domain"
	"github.com/MrSnakeDoc/inframe/internal/httpserver"
	"github.com/MrSnakeDoc/inframe/internal/httpserver/deps"
	"github.com/MrSnakeDoc/inframe/internal/logger"
	"github.com/MrSnakeDoc/inframe/internal/postgres"
	"github.com/MrSnakeDoc/inframe/internal/ranking"
	"github.com/MrSnakeDoc/inframe/internal/redis"
	"github.com/MrSnakeDoc/inframe/internal/scheduler"
	"github.com/MrSnakeDoc/inframe/internal/sources/seed"
	"github.com/MrSnakeDoc/inframe/internal/store/memory"
	pgstore "github.com/MrSnakeDoc/inframe/internal/store/postgres"
	redisstore "github.com/MrSnakeDoc/inframe/internal/store/redis"
	"github.com/MrSnakeDoc/inframe/internal/version"
)

const (
	postgresPingTimeout   = 5 * time.Second
	postgresWarnThreshold = 3
	reconcileRunTimeout   = 5 * time.Minute
)

type App struct {
	cfg         *config.Config
	logger      logger.Logger
	server      *httpserver.Server
	redisClient *goredis.Client
	store       domain.Store
	refresher   *scheduler.Job
	reconciler  *scheduler.Job
}

func New() *App {
	cfg := config.Load()

	loggerClient := logger.New(cfg.LogLevel, cfg.PrettyLog)

	// Initialize Redis early - fail fast if unavailable
	loggerClient.Infof("Connecting to Redis at %s", cfg.RedisAddr)
	redisClient, err := redis.New(redis.ConnectOptions{
		Addr:         cfg.RedisAddr,
		User:         cfg.RedisUser,
		Password:     cfg.RedisPassword,
		RedisDB:      cfg.RedisDB,
		DialTimeout:  cfg.RedisDT,
		ReadTimeout:  cfg.RedisRT,
		WriteTimeout: cfg.RedisWT,
		PoolSize:     cfg.RedisPoolSize,
		Retry: connect.Policy{
			ConnectTimeout: cfg.RedisConnectTimeout,
			RetryInterval:  cfg.RedisRetryInterval,
			MaxWait:        cfg.RedisMaxWait,
			PingTimeout:    cfg.RedisPingTimeout,
			WarnThreshold:  cfg.RedisWarnThreshold,
		},
	}, loggerClient)
	if err != nil {
		loggerClient.Errorf("Failed to connect to Redis: %v", err)
		os.Exit(1)
	}
	loggerClient.Info("Redis initialized successfully")

	store, storeKind, err := openStore(cfg, loggerClient)
	if err != nil {
		loggerClient.Errorf("Failed to open durable store: %v", err)
		_ = redisClient.Close()
		os.Exit(1)
	}
	loggerClient.Info("durable store ready", logger.String("kind", storeKind))

	rs := redisstore.NewStore(redisClient)
	counter := ranking.NewGuardedCounter(rs, ranking.BreakerSettings{
		Name:        "popularity-counter",
		Failures:    uint32(max(cfg.BreakerFailures, 1)),
		OpenTimeout: cfg.BreakerOpenTimeout,
	}, loggerClient)

	refresher := scheduler.NewHotRefresher(
		ranking.NewSnapshotBuilder(counter, store, rs, loggerClient),
		cfg.HotRefreshInterval,
		cfg.HotRunTimeout,
		loggerClient,
	)

	var reconciler *scheduler.Job
	var reconcileJob deps.Job
	if cfg.ReconcileInterval > 0 {
		reconciler = scheduler.NewCounterReconciler(
			ranking.NewReconciler(store, counter, loggerClient),
			cfg.ReconcileInterval,
			reconcileRunTimeout,
			loggerClient,
		)
		reconcileJob = reconciler
	} else {
		loggerClient.Info("counter reconciliation disabled")
	}

	// Dependencies passed to routes (extend as needed).
	d := deps.Deps{
		Logger:       loggerClient,
		StartTime:    time.Now(),
		Version:      version.Version,
		Commit:       version.Commit,
		BuildDate:    version.BuildDate,
		GoVersion:    version.GoVersion,
		TimeNow:      time.Now,
		AllowedCIDRS: cfg.AllowedCIDRS,
		TrustProxy:   cfg.TrustProxy,
		RateBurst:    cfg.RateBurst,
		RatePerMin:   cfg.RatePerMin,
		Store:        store,
		StoreKind:    storeKind,
		Toggler:      ranking.NewToggler(store, counter, loggerClient, cfg.OpTimeout),
		HotList:      ranking.NewHotList(rs),
		Redis:        rs,
		Breaker:      counter,
		HotRefresh:   refresher,
		Reconcile:    reconcileJob,
	}

	server := httpserver.New(cfg, loggerClient, d)

	return &App{
		cfg:         cfg,
		logger:      loggerClient,
		server:      server,
		redisClient: redisClient,
		store:       store,
		refresher:   refresher,
		reconciler:  reconciler,
	}
}

// openStore picks Postgres when a database URL is configured, the seeded memory store otherwise.
func openStore(cfg *config.Config, log logger.Logger) (domain.Store, string, error) {
	if cfg.DatabaseURL == "" {
		store := memory.NewStore()
		if cfg.SeedFile != "" {
			f, err := seed.NewLoader(cfg.SeedFile).Load()
			if err != nil {
				return nil, "", err
			}
			f.Apply(store)
			log.Info("memory store seeded",
				logger.String("file", cfg.SeedFile),
				logger.Int("users", len(f.Users)),
				logger.Int("custom_frames", len(f.CustomFrames)),
				logger.Int("bookmarks", len(f.Bookmarks)))
		} else {
			log.Warn("no database url nor seed file configured, starting with an empty memory store")
		}
		return store, "memory", nil
	}

	pool, err := postgres.New(postgres.ConnectOptions{
		URL:      cfg.DatabaseURL,
		MaxConns: cfg.PostgresMaxConns,
		Retry: connect.Policy{
			ConnectTimeout: cfg.PostgresConnectTimeout,
			RetryInterval:  cfg.PostgresRetryInterval,
			MaxWait:        cfg.PostgresMaxWait,
			PingTimeout:    postgresPingTimeout,
			WarnThreshold:  postgresWarnThreshold,
		},
	}, log)
	if err != nil {
		return nil, "", err
	}

	if cfg.Migrate {
		if err := postgres.Migrate(cfg.DatabaseURL, log); err != nil {
			pool.Close()
			return nil, "", err
		}
	}

	store, err := pgstore.NewStore(pool)
	if err != nil {
		pool.Close()
		return nil, "", err
	}
	return store, "postgres", nil
}

func (a *App) Run() error {
	a.logger.Infof("🚀 Starting inframe v%s on %s", version.Version, a.cfg.ListenPort)
	a.logger.Info(version.String())

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if a.reconciler != nil {
		if err := a.reconciler.Start(ctx); err != nil {
			return fmt.Errorf("failed to start counter reconciler: %w", err)
		}
	}

	if err := a.refresher.Start(ctx); err != nil {
		return fmt.Errorf("failed to start hot refresher: %w", err)
	}

	errCh := make(chan error, 1)
	go func() {
		if err := a.server.Start(); err != nil {
			errCh <- fmt.Errorf("http server error: %w", err)
		}
	}()

	var runErr error
	select {
	case <-ctx.Done():
		a.logger.Info("⏳ Shutting down gracefully...")
	case runErr = <-errCh:
	}

	a.refresher.Stop()
	if a.reconciler != nil {
		a.reconciler.Stop()
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), a.cfg.ShutdownTimeout)
	defer cancel()
	if err := a.server.Stop(shutdownCtx); err != nil && runErr == nil {
		runErr = fmt.Errorf("failed to stop server: %w", err)
	}

	a.store.Close()

	if a.redisClient != nil {
		if err := a.redisClient.Close(); err != nil {
			a.logger.Warnf("failed to close redis: %v", err)
		} else {
			a.logger.Info("✅ Redis closed cleanly")
		}
	}

	if runErr != nil {
		return runErr
	}
	a.logger.Info("✅ inframe stopped cleanly")
	return nil
}
