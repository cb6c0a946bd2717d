package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/joho/godotenv"
	"github.com/nikolayk812/rocketshoes-cart/internal/catalog"
	"github.com/nikolayk812/rocketshoes-cart/internal/engine"
	"github.com/nikolayk812/rocketshoes-cart/internal/httpapi"
	"github.com/nikolayk812/rocketshoes-cart/internal/notify"
	"github.com/nikolayk812/rocketshoes-cart/internal/port"
	"github.com/nikolayk812/rocketshoes-cart/internal/repository"
	"github.com/nikolayk812/rocketshoes-cart/internal/storefront"
	"github.com/nikolayk812/rocketshoes-cart/pkg/config"
	"github.com/nikolayk812/rocketshoes-cart/pkg/logger"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/redis/go-redis/v9"
	"go.uber.org/multierr"
	"golang.org/x/sync/errgroup"
)

const shutdownTimeout = 10 * time.Second

func main() {
	logg := logger.New(logger.Options{ServiceName: "storefront"})

	if err := godotenv.Load(); err != nil {
		logg.Warn(context.Background(), ".env file not found, relying on environment", nil)
	}

	cfg, err := config.Load()
	if err != nil {
		logg.Error(context.Background(), "failed to load config", err)
		os.Exit(1)
	}

	logg = logger.New(logger.Options{
		ServiceName: "storefront",
		Level:       logger.ParseLevel(cfg.App.LogLevel),
		Format:      cfg.App.LogFormat,
	})

	if err := run(cfg, logg); err != nil {
		logg.Error(context.Background(), "storefront stopped unexpectedly", err)
		os.Exit(1)
	}
}

func run(cfg *config.Config, logg *logger.Logger) (err error) {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	store, closer, err := openStore(ctx, cfg)
	if err != nil {
		return fmt.Errorf("openStore: %w", err)
	}
	defer func() {
		err = multierr.Append(err, closer.Close())
	}()

	client, err := catalog.NewClient(catalog.Options{
		StockBaseURL:    cfg.Services.StockBaseURL,
		CatalogBaseURL:  cfg.Services.CatalogBaseURL,
		Timeout:         cfg.Services.Timeout,
		BreakerFailures: cfg.Services.BreakerFailures,
		BreakerCooldown: cfg.Services.BreakerCooldown,
	})
	if err != nil {
		return fmt.Errorf("catalog.NewClient: %w", err)
	}

	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	notices := notify.NewRecorder()
	notifier := notify.Fanout{notify.NewLog(logg), notices}

	eng, err := engine.New(ctx, engine.Params{
		Store:    store,
		Stock:    client,
		Catalog:  client,
		Notifier: notifier,
		Logger:   logg,
		Metrics:  engine.NewMetrics(registry),
		Key:      cfg.Store.Key,
	})
	if err != nil {
		return fmt.Errorf("engine.New: %w", err)
	}

	catalogPage, err := storefront.NewCatalog(client, eng, notifier)
	if err != nil {
		return fmt.Errorf("storefront.NewCatalog: %w", err)
	}
	cartPage, err := storefront.NewCartPage(eng)
	if err != nil {
		return fmt.Errorf("storefront.NewCartPage: %w", err)
	}

	handler, err := httpapi.NewRouter(httpapi.RouterParams{
		Catalog:       catalogPage,
		Cart:          cartPage,
		Notifications: notices,
		Logger:        logg,
		Gatherer:      registry,
	})
	if err != nil {
		return fmt.Errorf("httpapi.NewRouter: %w", err)
	}

	server := &http.Server{
		Addr:              ":" + cfg.App.Port,
		Handler:           handler,
		ReadHeaderTimeout: 5 * time.Second,
	}

	logCtx := logg.WithFields(ctx, map[string]any{
		"env":          cfg.App.Env,
		"addr":         server.Addr,
		"store_driver": cfg.Store.Driver,
	})
	logg.Info(logCtx, "starting storefront")

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server.ListenAndServe: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		logg.Info(logCtx, "shutting down storefront")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()

		return multierr.Combine(
			server.Shutdown(shutdownCtx),
			eng.Flush(shutdownCtx),
		)
	})

	return g.Wait()
}

func openStore(ctx context.Context, cfg *config.Config) (port.CartStore, io.Closer, error) {
	switch cfg.Store.Driver {
	case config.StoreDriverPostgres:
		pool, err := pgxpool.New(ctx, cfg.Postgres.DSN)
		if err != nil {
			return nil, nil, fmt.Errorf("pgxpool.New: %w", err)
		}
		if err := pool.Ping(ctx); err != nil {
			pool.Close()
			return nil, nil, fmt.Errorf("pool.Ping: %w", err)
		}
		return repository.NewPostgresStore(pool), closerFunc(func() error {
			pool.Close()
			return nil
		}), nil

	case config.StoreDriverRedis:
		opts, err := redisOptions(cfg.Redis)
		if err != nil {
			return nil, nil, err
		}
		client := redis.NewClient(opts)
		if err := client.Ping(ctx).Err(); err != nil {
			return nil, nil, multierr.Append(fmt.Errorf("client.Ping: %w", err), client.Close())
		}
		return repository.NewRedisStore(client), client, nil

	case config.StoreDriverMemory:
		return repository.NewMemoryStore(), closerFunc(func() error { return nil }), nil

	default:
		store, err := repository.NewFileStore(cfg.Store.Dir)
		if err != nil {
			return nil, nil, fmt.Errorf("repository.NewFileStore: %w", err)
		}
		return store, closerFunc(func() error { return nil }), nil
	}
}

func redisOptions(cfg config.RedisConfig) (*redis.Options, error) {
	if cfg.URL != "" {
		opts, err := redis.ParseURL(cfg.URL)
		if err != nil {
			return nil, fmt.Errorf("redis.ParseURL: %w", err)
		}
		return opts, nil
	}
	return &redis.Options{
		Addr:     cfg.Address,
		Password: cfg.Password,
		DB:       cfg.DB,
	}, nil
}

type closerFunc func() error

func (f closerFunc) Close() error {
	return f()
}
