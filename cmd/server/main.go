package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	goredis "github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	httpAdapter "github.com/iho/walletsettle/internal/adapter/http"
	"github.com/iho/walletsettle/internal/adapter/http/handler"
	"github.com/iho/walletsettle/internal/adapter/http/middleware"
	postgresRepo "github.com/iho/walletsettle/internal/adapter/repository/postgres"
	redisRepo "github.com/iho/walletsettle/internal/adapter/repository/redis"
	"github.com/iho/walletsettle/internal/infrastructure/config"
	"github.com/iho/walletsettle/internal/infrastructure/logger"
	"github.com/iho/walletsettle/internal/infrastructure/metrics"
	"github.com/iho/walletsettle/internal/infrastructure/postgres"
	"github.com/iho/walletsettle/internal/infrastructure/redis"
	"github.com/iho/walletsettle/internal/usecase"
)

const limiterIdleTimeout = time.Hour

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	log := logger.New(logger.Config{
		Level:   cfg.LogLevel,
		Format:  cfg.LogFormat,
		Service: "walletsettle",
	})

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, log); err != nil {
		log.Fatal().Err(err).Msg("server failed")
	}

	log.Info().Msg("server stopped")
}

func run(ctx context.Context, cfg *config.Config, log zerolog.Logger) error {
	if cfg.RunMigrations {
		if err := postgres.NewMigrator(cfg.DatabaseURL, cfg.MigrationsPath, log).Up(); err != nil {
			return fmt.Errorf("migrate: %w", err)
		}
	}

	connectCtx, cancel := context.WithTimeout(ctx, cfg.DatabaseTimeout)
	defer cancel()

	// Connect to PostgreSQL
	pool, err := postgres.NewPool(connectCtx, cfg.DatabaseURL, cfg.DatabaseMaxConns, cfg.DatabaseMinConns)
	if err != nil {
		return fmt.Errorf("connect to postgres: %w", err)
	}
	defer pool.Close()
	log.Info().Msg("connected to postgres")

	// Connect to Redis
	redisClient, err := redis.NewClient(connectCtx, cfg.RedisURL)
	if err != nil {
		return fmt.Errorf("connect to redis: %w", err)
	}
	defer redisClient.Close()
	log.Info().Msg("connected to redis")

	m := metrics.New()

	// Initialize repositories
	txManager := postgresRepo.NewTxManager(pool)
	walletRepo := postgresRepo.NewWalletRepository(pool)
	settlementRepo := postgresRepo.NewSettlementRepository(pool)
	idGen := postgresRepo.NewULIDGenerator()
	retryPolicy := postgresRepo.DefaultRetryPolicy()
	retryPolicy.MaxRetries = cfg.DatabaseMaxRetries
	retryPolicy.InitialInterval = cfg.DatabaseRetryInterval
	retrier := postgresRepo.NewRetrier(retryPolicy, log)
	idempotencyStore := redisRepo.NewIdempotencyStore(redisClient, m)
	lock := redisRepo.NewDistributedLock(redisClient, cfg.LockExpiry, log, m)

	// Initialize use cases
	walletService := usecase.NewWalletService(txManager, walletRepo, settlementRepo, idGen, retrier, log, m)
	executor := usecase.NewTransactionExecutor(lock, walletService, usecase.SystemClock{}, log, m)
	settlementUC := usecase.NewSettlementUseCase(executor, idGen, usecase.SystemClock{})

	var rateLimiter *middleware.RateLimiter
	if cfg.RateLimitRPS > 0 {
		rateLimiter = middleware.NewRateLimiter(cfg.RateLimitRPS, cfg.RateLimitBurst)
		go cleanupLimiters(ctx, rateLimiter, log)
	}

	router := httpAdapter.NewRouter(httpAdapter.RouterConfig{
		TransactionHandler: handler.NewTransactionHandler(settlementUC),
		WalletHandler:      handler.NewWalletHandler(walletService),
		HealthHandler:      handler.NewHealthHandler(postgresPinger(pool), redisPinger(redisClient)),
		IdempotencyStore:   idempotencyStore,
		IdempotencyTTL:     cfg.IdempotencyTTL,
		RateLimiter:        rateLimiter,
		Logger:             log,
	})

	return serve(ctx, newHTTPServer(cfg, router), cfg.HTTPShutdownTimeout, log)
}

func newHTTPServer(cfg *config.Config, h http.Handler) *http.Server {
	return &http.Server{
		Addr:         fmt.Sprintf(":%s", cfg.HTTPPort),
		Handler:      h,
		ReadTimeout:  cfg.HTTPReadTimeout,
		WriteTimeout: cfg.HTTPWriteTimeout,
		IdleTimeout:  cfg.HTTPIdleTimeout,
	}
}

// serve runs server until ctx is done, then shuts it down gracefully.
func serve(ctx context.Context, server *http.Server, shutdownTimeout time.Duration, log zerolog.Logger) error {
	errCh := make(chan error, 1)

	go func() {
		log.Info().Str("addr", server.Addr).Msg("starting server")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	log.Info().Msg("shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server forced to shutdown: %w", err)
	}

	return nil
}

func cleanupLimiters(ctx context.Context, rl *middleware.RateLimiter, log zerolog.Logger) {
	ticker := time.NewTicker(limiterIdleTimeout)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if n := rl.CleanupLimiters(limiterIdleTimeout); n > 0 {
				log.Debug().Int("removed", n).Msg("rate limiters cleaned up")
			}
		}
	}
}

func postgresPinger(pool *pgxpool.Pool) handler.Pinger {
	return handler.PingerFunc(pool.Ping)
}

func redisPinger(client *goredis.Client) handler.Pinger {
	return handler.PingerFunc(func(ctx context.Context) error {
		return client.Ping(ctx).Err()
	})
}
