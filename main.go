package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"github.com/mygads/genfity-order-main-sub002/internal/auth"
	"github.com/mygads/genfity-order-main-sub002/internal/cart"
	"github.com/mygads/genfity-order-main-sub002/internal/config"
	"github.com/mygads/genfity-order-main-sub002/internal/db"
	httpapi "github.com/mygads/genfity-order-main-sub002/internal/http"
	"github.com/mygads/genfity-order-main-sub002/internal/http/handlers"
	"github.com/mygads/genfity-order-main-sub002/internal/logger"
	"github.com/mygads/genfity-order-main-sub002/internal/queue"
	"github.com/mygads/genfity-order-main-sub002/internal/storage"
	"github.com/mygads/genfity-order-main-sub002/internal/upstream"
	"github.com/mygads/genfity-order-main-sub002/internal/ws"
)

func main() {
	_ = godotenv.Load()

	cfg := config.Load()
	log, err := logger.New(cfg.Env)
	if err != nil {
		panic(err)
	}
	defer log.Sync()

	ctx := context.Background()

	var carts cart.Store = cart.NewMemoryStore()
	if cfg.DatabaseURL != "" {
		pool, err := db.NewPool(ctx, cfg.DatabaseURL)
		if err != nil {
			if cfg.Env == "production" {
				log.Fatal("database connection failed", zap.Error(err))
			}
			log.Warn("database connection failed; carts held in memory", zap.Error(err))
		} else {
			defer pool.Close()
			carts = cart.NewPostgresStore(pool)
			log.Info("cart persistence enabled", zap.String("store", "postgres"))
		}
	} else {
		log.Info("cart persistence disabled (DATABASE_URL is empty); carts held in memory")
	}

	var queueClient *queue.Client
	if cfg.RabbitMQURL != "" {
		qc, err := queue.New(cfg.RabbitMQURL)
		if err != nil {
			if cfg.Env == "production" {
				log.Fatal("rabbitmq connection failed", zap.Error(err))
			}
			log.Warn("rabbitmq connection failed; continuing without events", zap.Error(err))
			qc = nil
		}
		if qc != nil {
			if err := qc.EnsureExchange(queue.EventsExchange); err != nil {
				if cfg.Env == "production" {
					log.Fatal("rabbitmq exchange failed", zap.Error(err))
				}
				log.Warn("rabbitmq exchange failed; continuing without events", zap.Error(err))
				_ = qc.Close()
				qc = nil
			}
		}
		queueClient = qc
		if qc != nil {
			defer qc.Close()
			log.Info("event publishing enabled", zap.String("exchange", queue.EventsExchange))
		}
	} else {
		log.Info("event publishing disabled (RABBITMQ_URL is empty)")
	}

	var archive *storage.ObjectStore
	if cfg.ObjectStoreEndpoint != "" {
		archive, err = storage.NewObjectStore(ctx, storage.Config{
			Endpoint:        cfg.ObjectStoreEndpoint,
			Region:          cfg.ObjectStoreRegion,
			AccessKeyID:     cfg.ObjectStoreAccessKeyID,
			SecretAccessKey: cfg.ObjectStoreSecretAccessKey,
			Bucket:          cfg.ObjectStoreBucket,
			PublicBaseURL:   cfg.ObjectStorePublicBaseURL,
			StorageClass:    cfg.ObjectStoreStorageClass,
		})
		if err != nil {
			if cfg.Env == "production" {
				log.Fatal("object store setup failed", zap.Error(err))
			}
			log.Warn("object store setup failed; uploads will not be archived", zap.Error(err))
			archive = nil
		}
	}

	upstreamClient := upstream.NewClient(cfg.UpstreamBaseURL, cfg.UpstreamTimeout, log)
	queries := upstream.NewQueries(upstreamClient, cfg.QueryCacheTTL)
	creds := auth.NewCredentialStore()

	h := &handlers.Handler{
		Upstream: upstreamClient,
		Queries:  queries,
		Carts:    carts,
		Logger:   log,
		Config:   cfg,
		Queue:    queueClient,
		Archive:  archive,
	}

	wsServer := ws.New(queries, creds, log, cfg)
	apiServer := &http.Server{
		Addr:         cfg.HTTPAddr,
		Handler:      httpapi.NewRouter(h, creds, log, wsServer),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Info("storefront api ready", zap.String("base", "/api"))
		log.Info("storefront ws ready", zap.String("base", "/ws"))
		log.Info("storefront gateway listening", zap.String("addr", cfg.HTTPAddr))
		if err := apiServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("http server failed", zap.Error(err))
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop

	ctxShutdown, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := apiServer.Shutdown(ctxShutdown); err != nil {
		log.Error("http server shutdown failed", zap.Error(err))
	}
}
