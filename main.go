package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"store-admin-service/internal/backend"
	"store-admin-service/internal/config"
	httpapi "store-admin-service/internal/http"
	"store-admin-service/internal/http/handlers"
	"store-admin-service/internal/logger"
	"store-admin-service/internal/queue"
	"store-admin-service/internal/storage"
	"store-admin-service/internal/ws"
)

func main() {
	_ = godotenv.Load()

	cfg := config.Load()
	log, err := logger.NewWithFile(cfg.Env, logger.FileOptions{
		Path:       cfg.LogFile,
		MaxSizeMB:  cfg.LogMaxSizeMB,
		MaxBackups: cfg.LogMaxBackups,
	})
	if err != nil {
		panic(err)
	}
	defer log.Sync()

	ctx, stopWorkers := context.WithCancel(context.Background())
	defer stopWorkers()

	backendClient, err := backend.New(cfg.BackendAPIURL, cfg.BackendAPIKey, cfg.BackendTimeout, log)
	if err != nil {
		log.Fatal("backend client init failed", zap.Error(err))
	}
	if cfg.JWTSecret == "" {
		log.Warn("JWT_SECRET is empty; admin routes are disabled")
	}

	hub := ws.NewHub(log)
	var qc *queue.Client
	relaying := cfg.RabbitMQWorkerMode == "daemon"

	switch {
	case cfg.RabbitMQURL == "":
		log.Info("rabbitmq disabled (RABBITMQ_URL is empty); broadcasting locally")
	case !relaying:
		log.Info("order event relay disabled; broadcasting locally", zap.String("mode", cfg.RabbitMQWorkerMode))
	default:
		client, queueName, err := connectQueue(cfg)
		if err != nil {
			if cfg.Env == "production" {
				log.Fatal("rabbitmq setup failed", zap.Error(err))
			}
			log.Warn("rabbitmq setup failed; broadcasting locally", zap.Error(err))
			break
		}
		qc = client
		defer qc.Close()
		log.Info("rabbitmq enabled", zap.String("exchange", queue.EventsExchange), zap.String("queue", queueName))
		go func() {
			if err := queue.RunDashboardRelay(ctx, qc, queueName, hub, log); err != nil && !errors.Is(err, context.Canceled) {
				log.Error("order event relay stopped", zap.Error(err))
			}
		}()
	}
	var notifier handlers.Notifier = queue.SelectNotifier(qc, relaying, hub)

	var summaries handlers.SummaryPublisher
	if cfg.ObjectStoreEnabled() {
		store, err := storage.NewObjectStore(ctx, storage.Config{
			Endpoint:        cfg.ObjectStoreEndpoint,
			Region:          cfg.ObjectStoreRegion,
			AccessKeyID:     cfg.ObjectStoreAccessKeyID,
			SecretAccessKey: cfg.ObjectStoreSecretAccessKey,
			Bucket:          cfg.ObjectStoreBucket,
			PublicBaseURL:   cfg.ObjectStorePublicBaseURL,
			StorageClass:    cfg.ObjectStoreStorageClass,
		})
		if err != nil {
			log.Warn("object store init failed; summary publishing disabled", zap.Error(err))
		} else {
			summaries = storage.NewSummaryPublisher(store)
		}
	}

	h := &handlers.Handler{
		Backend:   backendClient,
		Logger:    log,
		Config:    cfg,
		Notifier:  notifier,
		Summaries: summaries,
	}
	wsServer := ws.New(hub, log, cfg.JWTSecret, cfg.WSHeartbeatInterval, cfg.CorsAllowedOrigins)

	apiServer := &http.Server{
		Addr:         cfg.HTTPAddr,
		Handler:      httpapi.NewRouter(h, log, cfg, wsServer),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Info("admin api ready", zap.String("base", "/api/admin"), zap.String("backend", cfg.BackendAPIURL))
		log.Info("admin ws ready", zap.String("base", "/ws/admin"))
		log.Info("store admin service listening", zap.String("addr", cfg.HTTPAddr))
		if err := apiServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("http server failed", zap.Error(err))
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop
	stopWorkers()

	ctxShutdown, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := apiServer.Shutdown(ctxShutdown); err != nil {
		log.Error("http server shutdown failed", zap.Error(err))
	}
}

func connectQueue(cfg config.Config) (*queue.Client, string, error) {
	qc, err := queue.New(cfg.RabbitMQURL)
	if err != nil {
		return nil, "", err
	}
	instance, _ := os.Hostname()
	queueName, err := queue.EnsureDashboardTopology(qc, instance)
	if err != nil {
		_ = qc.Close()
		return nil, "", err
	}
	return qc, queueName, nil
}
