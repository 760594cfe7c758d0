package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.uber.org/zap"

	"metacalc/config"
	"metacalc/internal/cache"
	"metacalc/internal/schema"
	"metacalc/internal/service"
	"metacalc/internal/storage"
	"metacalc/internal/store"
	"metacalc/internal/transport/rest"
)

func main() {
	logger, err := zap.NewProduction()
	if err != nil {
		panic(err)
	}
	defer logger.Sync()

	if err := schema.Validate(); err != nil {
		logger.Fatal("domain schema is invalid", zap.Error(err))
	}

	cfg := config.Load()
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	// Storage backend
	var kv storage.KV
	switch cfg.StorageBackend {
	case "mongo":
		client, err := mongo.Connect(ctx, options.Client().ApplyURI(cfg.MongoURI))
		if err != nil {
			logger.Fatal("mongo connect failed", zap.Error(err))
		}
		defer client.Disconnect(context.Background())
		if err := client.Ping(ctx, nil); err != nil {
			logger.Fatal("mongo ping failed", zap.Error(err))
		}
		kv = storage.NewMongo(client.Database("metacalc"))
		logger.Info("using mongo storage", zap.String("uri", cfg.MongoURI))
	case "memory":
		kv = storage.NewMemory()
		logger.Info("using in-memory storage; studies will not survive a restart")
	default:
		logger.Fatal("unknown storage backend", zap.String("backend", cfg.StorageBackend))
	}

	// Redis projection cache (optional)
	var charts cache.ProjectionCache
	if cfg.RedisAddr != "" {
		rdb := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})
		defer rdb.Close()
		if err := rdb.Ping(ctx).Err(); err != nil {
			logger.Warn("redis unavailable; serving charts uncached", zap.Error(err))
		} else {
			charts = cache.NewProjectionCache(rdb)
			logger.Info("chart cache enabled", zap.String("addr", cfg.RedisAddr))
		}
	}

	// Study store
	st := store.New(kv)
	if err := st.Load(ctx); err != nil {
		logger.Fatal("study store load failed", zap.Error(err))
	}
	logger.Info("study store loaded", zap.Int("studies", st.Count()))

	// Services and router
	container := &rest.Container{
		AuthService:       service.NewAuthService(cfg.Username, cfg.Password, cfg.JWTSecret),
		StudyService:      service.NewStudyService(st, charts, logger),
		AssessmentService: service.NewAssessmentService(st, charts, logger),
		ChartService:      service.NewChartService(st, charts, logger),
		StatsService:      service.NewStatsService(kv, logger),
	}

	srv := &http.Server{
		Addr:    ":" + cfg.HTTPPort,
		Handler: rest.NewRouter(container),
	}

	go func() {
		logger.Info("server starting", zap.String("port", cfg.HTTPPort))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("server failed", zap.Error(err))
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
	<-stop

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("shutdown failed", zap.Error(err))
	}
	logger.Info("server stopped")
}
