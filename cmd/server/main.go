// main wires high-level dependencies and keeps the server lifecycle small.
// Business logic lives in the internal packages.
package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "github.com/lib/pq"
	"golang.org/x/sync/errgroup"

	"passgate/internal/audit"
	"passgate/internal/catalog"
	cataloghandler "passgate/internal/catalog/handler"
	"passgate/internal/gateway"
	"passgate/internal/messenger"
	"passgate/internal/platform/config"
	"passgate/internal/platform/httpserver"
	"passgate/internal/platform/logger"
	platformredis "passgate/internal/platform/redis"
	"passgate/internal/purchase"
	"passgate/internal/roblox"
	httptransport "passgate/internal/transport/http"
	"passgate/internal/verify"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "passgate: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.FromEnv()
	if err != nil {
		return err
	}
	log := logger.New(cfg.LogLevel)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	store, cleanup, err := buildCatalogStore(ctx, cfg)
	if err != nil {
		return err
	}
	defer cleanup()

	trail := audit.NewMemoryStore()
	recorders := audit.Multi{trail}
	kafka, err := audit.NewKafkaPublisher(cfg.Kafka.Brokers, cfg.Kafka.Topic, log)
	if err != nil {
		return err
	}
	if kafka != nil {
		recorders = append(recorders, kafka)
		defer func() {
			flushCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			if err := kafka.Close(flushCtx); err != nil {
				log.Error("kafka close failed", "error", err)
			}
		}()
	}

	catalogSvc, err := catalog.New(store,
		catalog.WithLogger(log),
		catalog.WithAuditRecorder(recorders),
	)
	if err != nil {
		return err
	}

	client := roblox.New(cfg.Roblox.UsersBaseURL, cfg.Roblox.APIsBaseURL, cfg.Roblox.Timeout,
		roblox.WithLogger(log))

	hub := messenger.NewHub(messenger.WithLogger(log))

	manager, err := purchase.NewManager(catalogSvc, hub, client, client,
		purchase.WithPolicy(verify.Policy{
			Attempts: cfg.Verify.Attempts,
			Delay:    cfg.Verify.Delay,
			Logger:   log,
		}),
		purchase.WithConfig(purchase.Config{
			AccountNameWait: cfg.Sessions.AccountNameWait,
			MenuTTL:         cfg.Sessions.MenuTTL,
			SessionTTL:      cfg.Sessions.SessionTTL,
			ReapInterval:    cfg.Sessions.ReapInterval,
		}),
		purchase.WithAuditRecorder(recorders),
		purchase.WithLogger(log),
	)
	if err != nil {
		return err
	}
	defer manager.Close()

	router := httptransport.NewRouter(httptransport.Deps{
		Gateway:       gateway.New(manager, hub, log),
		Catalog:       cataloghandler.New(catalogSvc, log),
		JWTSigningKey: cfg.JWTSigningKey,
		Logger:        log,
	})
	srv := httpserver.New(cfg.Addr, router)

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		log.Info("starting passgate", "addr", cfg.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})

	g.Go(func() error {
		if err := manager.Run(gctx); err != nil && !errors.Is(err, context.Canceled) {
			return err
		}
		return nil
	})

	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		return err
	}
	log.Info("passgate stopped")
	return nil
}

// buildCatalogStore picks the store backend from config. The returned cleanup
// closes whatever connection the backend holds.
func buildCatalogStore(ctx context.Context, cfg config.Config) (catalog.Store, func(), error) {
	switch cfg.Catalog.Backend {
	case "", "memory":
		return catalog.NewMemoryStore(), func() {}, nil

	case "postgres":
		db, err := sql.Open("postgres", cfg.Catalog.PostgresDSN)
		if err != nil {
			return nil, nil, fmt.Errorf("open postgres: %w", err)
		}
		if err := db.PingContext(ctx); err != nil {
			db.Close()
			return nil, nil, fmt.Errorf("ping postgres: %w", err)
		}
		store := catalog.NewPostgresStore(db)
		if err := store.Migrate(ctx); err != nil {
			db.Close()
			return nil, nil, err
		}
		return store, func() { db.Close() }, nil

	case "redis":
		client, err := platformredis.New(cfg.Redis)
		if err != nil {
			return nil, nil, err
		}
		if client == nil {
			return nil, nil, fmt.Errorf("redis backend selected but PASSGATE_REDIS_URL is empty")
		}
		return catalog.NewRedisStore(client.Client), func() { client.Close() }, nil

	default:
		return nil, nil, fmt.Errorf("unknown catalog backend %q", cfg.Catalog.Backend)
	}
}
