package main

import (
	"context"
	"errors"
	"flag"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"sync/atomic"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/mkrylova/go-profile-service/internal/cache"
	"github.com/mkrylova/go-profile-service/internal/cleanup"
	"github.com/mkrylova/go-profile-service/internal/config"
	"github.com/mkrylova/go-profile-service/internal/draft"
	"github.com/mkrylova/go-profile-service/internal/service"
	"github.com/mkrylova/go-profile-service/internal/storage/minio"
	"github.com/mkrylova/go-profile-service/internal/storage/postgres"
	transport "github.com/mkrylova/go-profile-service/internal/transport/http"
)

// Константы для определения окружения.
const (
	envLocal = "local"
	envDev   = "dev"
	envProd  = "prod"
)

func main() {
	var configPath string
	flag.StringVar(&configPath, "config", "", "path to config file (overrides CONFIG_PATH env)")
	flag.Parse()

	cfg := config.MustLoad(configPath)

	log := setupLogger(cfg.Env)
	slog.SetDefault(log)
	log.Info("starting profile-service", "env", cfg.Env)

	rootCtx, rootCancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)

	dbCtx, dbCancel := context.WithTimeout(rootCtx, 10*time.Second)
	profilesStore, err := postgres.New(dbCtx, cfg.Postgres.URL)
	dbCancel()
	if err != nil {
		log.Error("postgres_connect_failed", slog.String("err", err.Error()))
		rootCancel()
		os.Exit(1)
	}
	log.Info("postgres_connected")

	profileCache, err := cache.NewRedisCache(cfg.Redis.URL, cfg.Redis.KeyPrefix, cfg.Redis.TTL)
	if err != nil {
		log.Error("redis_connect_failed", slog.String("err", err.Error()))
		rootCancel()
		profilesStore.Close()
		os.Exit(1)
	}
	log.Info("redis_connected")

	// Blob Store Gateway инициализируется лениво: недоступный MinIO на старте
	// не валит сервис, операции с аватарами отвечают «not ready», пока
	// хранилище не поднимется.
	blobs := minio.NewLazy(cfg)

	s3Ctx, s3Cancel := context.WithTimeout(rootCtx, 10*time.Second)
	if _, err := blobs.Get(s3Ctx); err != nil {
		log.Warn("minio_not_ready", slog.String("err", err.Error()))
	} else {
		log.Info("minio_connected")
	}
	s3Cancel()

	cleanupQueue := cleanup.New(blobs.Get, cleanup.Options{
		QueueSize:   cfg.Cleanup.QueueSize,
		MaxAttempts: cfg.Cleanup.MaxAttempts,
		Backoff:     cfg.Cleanup.Backoff,
	}, log)

	cleanupCtx, cleanupCancel := context.WithCancel(context.Background())
	go cleanupQueue.Run(cleanupCtx)

	svc := service.New(profilesStore, profileCache, cleanupQueue, cfg)

	drafts := draft.NewManager(svc, blobs.Get, draft.Options{
		MaxUploadBytes: cfg.Avatar.MaxSizeBytes,
		Compress:       cfg.Avatar.Compress,
		MaxDimension:   cfg.Avatar.MaxDimension,
	})
	log.Info("service_initialized")

	var ready int32 // 0 — not ready; 1 — ready
	opsAddr := cfg.Ops.Addr()

	mux := http.NewServeMux()
	mux.HandleFunc("/livez", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	mux.HandleFunc("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		if atomic.LoadInt32(&ready) == 1 {
			w.WriteHeader(http.StatusOK)
			_, _ = w.Write([]byte("ok"))
			return
		}
		http.Error(w, "not ready", http.StatusServiceUnavailable)
	})

	mux.Handle("/metrics", promhttp.Handler())

	opsSrv := &http.Server{
		Addr:              opsAddr,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		log.Info("ops_listen_start", "addr", opsAddr)
		if err := opsSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("ops_serve_failed", slog.String("err", err.Error()))
		}
	}()

	router := transport.NewRouter(svc, drafts, transport.Options{
		Logger:    log,
		Timeout:   cfg.Timeouts.Service,
		BasePath:  "/v1",
		JWTSecret: cfg.Auth.JWTSecret,
		JWTIssuer: cfg.Auth.Issuer,
	})

	apiAddr := cfg.HTTP.Addr()
	apiSrv := &http.Server{
		Addr:              apiAddr,
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
	}

	serveErrCh := make(chan error, 1)
	go func() {
		log.Info("http_listen_start", slog.String("addr", apiAddr))
		if err := apiSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErrCh <- err
		}
		close(serveErrCh)
	}()

	atomic.StoreInt32(&ready, 1)

	select {
	case <-rootCtx.Done():
		log.Info("shutdown_requested")
	case err := <-serveErrCh:
		if err != nil {
			log.Error("http_serve_failed", slog.String("err", err.Error()))
		}
	}

	atomic.StoreInt32(&ready, 0)

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	if err := apiSrv.Shutdown(shutdownCtx); err != nil {
		log.Warn("http_force_stop", slog.String("err", err.Error()))
	}
	shutdownCancel()

	// Воркер очистки останавливаем после API: Commit уже не поступит,
	// недообработанные ключи остаются осиротевшими в бакете.
	cleanupCancel()
	cleanupQueue.Wait()

	_ = opsSrv.Shutdown(context.Background())

	rootCancel()
	_ = profileCache.Close()
	profilesStore.Close()

	log.Info("service_stopped")
	os.Exit(0)
}

// setupLogger настраивает slog по окружению.
func setupLogger(env string) *slog.Logger {
	var log *slog.Logger

	switch env {
	case envLocal:
		log = slog.New(
			slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelDebug}),
		)
	case envDev:
		log = slog.New(
			slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelDebug}),
		)
	case envProd:
		log = slog.New(
			slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}),
		)
	default:
		log = slog.New(
			slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}),
		)
	}

	return log
}
