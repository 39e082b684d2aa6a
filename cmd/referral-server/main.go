package main

import (
	"context"
	"database/sql"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-redis/redis/v8"
	"go.uber.org/zap"

	"github.com/HappySolarCoder/happy-solar-referrals/internal/config"
	"github.com/HappySolarCoder/happy-solar-referrals/internal/database"
	httpapi "github.com/HappySolarCoder/happy-solar-referrals/internal/http"
	"github.com/HappySolarCoder/happy-solar-referrals/internal/logger"
	"github.com/HappySolarCoder/happy-solar-referrals/internal/repository"
	"github.com/HappySolarCoder/happy-solar-referrals/internal/service"
	"github.com/HappySolarCoder/happy-solar-referrals/internal/store"
)

func main() {
	cfg := config.Load()

	log, err := logger.New(cfg.Log.Level, cfg.Log.Format, "referral-server")
	if err != nil {
		panic(err)
	}
	defer log.Sync()

	var db *sql.DB
	var redisClient *redis.Client

	// Backend selection. A durable backend that cannot be reached at
	// startup logs a warning and falls back to memory so the form stays
	// up; records then do not survive a restart.
	var repo repository.ReferralsRepo
	switch cfg.Storage.Backend {
	case config.BackendFile:
		fileRepo, err := repository.NewFileReferralsRepo(cfg.Storage.File)
		if err != nil {
			log.Warn("file backend unavailable, falling back to memory",
				zap.String("path", cfg.Storage.File), zap.Error(err))
			repo = repository.NewMemoryReferralsRepo()
		} else {
			log.Info("using file backend", zap.String("path", cfg.Storage.File))
			repo = fileRepo
		}
	case config.BackendPostgres:
		d, err := database.NewPostgresDB(&cfg.Database)
		if err != nil {
			log.Warn("postgres unavailable, falling back to memory", zap.Error(err))
			repo = repository.NewMemoryReferralsRepo()
		} else {
			log.Info("using postgres backend", zap.String("db", cfg.Database.Database))
			db = d
			repo = repository.NewPostgresReferralsRepo(db)
		}
	case config.BackendRedis:
		redisClient = redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		if err := redisClient.Ping(context.Background()).Err(); err != nil {
			log.Warn("redis unavailable, falling back to memory", zap.Error(err))
			repo = repository.NewMemoryReferralsRepo()
		} else {
			log.Info("using redis backend", zap.String("addr", cfg.Redis.Addr))
			repo = repository.NewKVReferralsRepo(store.NewRedisKV(redisClient))
		}
	default:
		log.Info("using memory backend")
		repo = repository.NewMemoryReferralsRepo()
	}

	svc := service.NewReferralService(repo, log)
	handler := httpapi.NewReferralHandler(svc, log)
	router := httpapi.NewRouter(log)
	router.RegisterReferralRoutes(handler)

	srv := service.NewServer(cfg.HTTP.Addr, router, log)

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.Start()
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	select {
	case <-sigCh:
	case err := <-errCh:
		if err != nil {
			log.Error("server stopped", zap.Error(err))
		}
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()
	_ = srv.Stop(shutdownCtx)
	if redisClient != nil {
		_ = redisClient.Close()
	}
	if db != nil {
		_ = db.Close()
	}
}
