package main

import (
	"context"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"

	"github.com/marketfront/cartstate/internal/config"
	httpapi "github.com/marketfront/cartstate/internal/http"
	"github.com/marketfront/cartstate/internal/manager"
	"github.com/marketfront/cartstate/internal/notify"
	"github.com/marketfront/cartstate/internal/port"
	"github.com/marketfront/cartstate/internal/store"
)

func main() {
	logger, err := zap.NewProduction()
	if err != nil {
		panic(err)
	}
	defer func() { _ = logger.Sync() }()

	if err := run(logger); err != nil {
		logger.Fatal("cartd failed", zap.Error(err))
	}
}

func run(logger *zap.Logger) error {
	cfg := config.Load()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	kv, cleanup, err := buildStore(ctx, cfg, logger)
	if err != nil {
		return fmt.Errorf("buildStore: %w", err)
	}
	defer cleanup()

	notifier, cleanupNotifier, err := buildNotifier(cfg, logger)
	if err != nil {
		return fmt.Errorf("buildNotifier: %w", err)
	}
	defer cleanupNotifier()

	sessions := manager.NewRegistry(kv, notifier, logger)
	router := httpapi.NewRouter(httpapi.NewHandler(sessions, logger))

	srv := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      router,
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("cartd listening", zap.String("port", cfg.Port), zap.String("store", cfg.StoreBackend))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	select {
	case <-ctx.Done():
		logger.Info("shutdown signal received")
	case err := <-errCh:
		return fmt.Errorf("srv.ListenAndServe: %w", err)
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Warn("graceful shutdown error", zap.Error(err))
	}

	return nil
}

func buildStore(ctx context.Context, cfg config.Config, logger *zap.Logger) (port.Store, func(), error) {
	switch cfg.StoreBackend {
	case "memory":
		return store.NewMemory(), func() {}, nil

	case "redis":
		rs, err := store.NewRedis(ctx, cfg.RedisURL)
		if err != nil {
			return nil, nil, fmt.Errorf("store.NewRedis: %w", err)
		}
		return rs, func() {
			if err := rs.Close(); err != nil {
				logger.Warn("redis close error", zap.Error(err))
			}
		}, nil

	case "postgres":
		pool, err := pgxpool.New(ctx, cfg.DatabaseURL)
		if err != nil {
			return nil, nil, fmt.Errorf("pgxpool.New: %w", err)
		}
		if err := store.EnsureSchema(ctx, pool); err != nil {
			pool.Close()
			return nil, nil, fmt.Errorf("store.EnsureSchema: %w", err)
		}
		ps, err := store.NewPostgres(pool)
		if err != nil {
			pool.Close()
			return nil, nil, fmt.Errorf("store.NewPostgres: %w", err)
		}
		return ps, pool.Close, nil

	default:
		return nil, nil, fmt.Errorf("unknown store backend %q", cfg.StoreBackend)
	}
}

func buildNotifier(cfg config.Config, logger *zap.Logger) (port.Notifier, func(), error) {
	switch cfg.Notifier {
	case "log":
		return notify.NewLog(logger), func() {}, nil

	case "rabbit":
		conn, err := notify.DialRabbit(cfg.RabbitURL)
		if err != nil {
			return nil, nil, fmt.Errorf("notify.DialRabbit: %w", err)
		}
		rn, err := notify.NewRabbit(conn, logger)
		if err != nil {
			_ = conn.Close()
			return nil, nil, fmt.Errorf("notify.NewRabbit: %w", err)
		}
		return rn, func() {
			if err := rn.Close(); err != nil {
				logger.Warn("rabbit channel close error", zap.Error(err))
			}
			if err := conn.Close(); err != nil {
				logger.Warn("rabbit connection close error", zap.Error(err))
			}
		}, nil

	default:
		return nil, nil, fmt.Errorf("unknown notifier %q", cfg.Notifier)
	}
}
