package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/listen-stream/catalog/internal/codec"
	"github.com/listen-stream/catalog/internal/cron"
	"github.com/listen-stream/catalog/internal/playback"
	"github.com/listen-stream/catalog/internal/repository"
	"github.com/listen-stream/catalog/internal/service"
	"github.com/listen-stream/catalog/pkg/config"
	"github.com/listen-stream/catalog/pkg/db"
	"github.com/listen-stream/catalog/pkg/logger"
	pkgredis "github.com/listen-stream/catalog/pkg/redis"
)

func main() {
	configPath := flag.String("config", os.Getenv("CATALOG_CONFIG"), "path to catalog.yaml")
	backupNow := flag.Bool("backup", false, "write one backup and exit")
	flag.Parse()

	cfg, err := config.NewFileLoader(*configPath).Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		os.Exit(1)
	}

	log, closeLog, err := initLogger(cfg.Log)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer closeLog()

	if err := run(cfg, log, *backupNow); err != nil {
		log.Error("catalogd exited with error", logger.Error(err))
		closeLog()
		os.Exit(1)
	}
}

func run(cfg *config.Config, log logger.Logger, backupNow bool) error {
	ctx := context.Background()

	store, closeStore, err := initStore(ctx, cfg)
	if err != nil {
		return fmt.Errorf("failed to initialize store: %w", err)
	}
	defer closeStore()

	svc := service.NewCatalogService(store, initEngine(cfg.Playback), log, service.Config{
		AllowEmpty: cfg.Storage.AllowEmpty,
		BackupDir:  cfg.Backup.Dir,
		Timeout:    cfg.Storage.Timeout,
	})
	if _, err := svc.Load(ctx); err != nil {
		return err
	}

	scheduler := cron.NewScheduler(svc, log, cron.Config{
		AutosaveSchedule: cfg.Autosave.Schedule,
		BackupSchedule:   cfg.Backup.Schedule,
		JobTimeout:       cfg.Storage.Timeout,
	})
	if backupNow {
		return scheduler.RunBackupNow(ctx)
	}
	if err := scheduler.Start(); err != nil {
		return err
	}

	log.Info("catalogd started", logger.String("backend", cfg.Storage.Backend))

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("Shutting down catalogd...")
	scheduler.Stop()

	shutdownCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()
	if _, err := svc.SaveIfDirty(shutdownCtx); err != nil {
		return err
	}
	log.Info("catalogd stopped")
	return nil
}

func initLogger(cfg config.LogConfig) (logger.Logger, func(), error) {
	level, err := logger.ParseLevel(cfg.Level)
	if err != nil {
		return nil, nil, err
	}

	var out io.Writer = os.Stdout
	closeFn := func() {}
	if cfg.File != "" {
		rotateCfg := logger.DefaultRotateConfig(cfg.File)
		if cfg.MaxSizeMB > 0 {
			rotateCfg.MaxSize = int64(cfg.MaxSizeMB) * 1024 * 1024
		}
		rotateCfg.MaxBackups = cfg.MaxBackups
		w, err := logger.NewRotateWriter(rotateCfg)
		if err != nil {
			return nil, nil, err
		}
		out = w
		closeFn = func() { _ = w.Close() }
	}

	return logger.New(&logger.Config{Level: level, Output: out, Caller: cfg.Caller}), closeFn, nil
}

func initStore(ctx context.Context, cfg *config.Config) (repository.Store, func(), error) {
	switch cfg.Storage.Backend {
	case config.BackendRedis:
		client, err := pkgredis.NewClient(ctx, &pkgredis.Config{
			Host:         cfg.Redis.Host,
			Port:         cfg.Redis.Port,
			Password:     cfg.Redis.Password,
			DB:           cfg.Redis.DB,
			PoolSize:     cfg.Redis.PoolSize,
			DialTimeout:  cfg.Redis.DialTimeout,
			ReadTimeout:  cfg.Redis.ReadTimeout,
			WriteTimeout: cfg.Redis.WriteTimeout,
		})
		if err != nil {
			return nil, nil, err
		}
		return repository.NewRedisStore(client, pkgredis.KeyNamespace), func() { _ = client.Close() }, nil

	case config.BackendPostgres:
		pool, err := db.NewPool(ctx, &db.PostgresConfig{
			Host:            cfg.Postgres.Host,
			Port:            cfg.Postgres.Port,
			User:            cfg.Postgres.User,
			Password:        cfg.Postgres.Password,
			Database:        cfg.Postgres.Database,
			SSLMode:         cfg.Postgres.SSLMode,
			MaxConns:        cfg.Postgres.MaxConns,
			MinConns:        cfg.Postgres.MinConns,
			MaxConnLifetime: cfg.Postgres.MaxConnLifetime,
		})
		if err != nil {
			return nil, nil, err
		}
		store := repository.NewPostgresStore(pool)
		if err := store.EnsureSchema(ctx); err != nil {
			pool.Close()
			return nil, nil, err
		}
		return store, pool.Close, nil

	default:
		layout, err := codec.ParseLayout(cfg.Storage.Layout)
		if err != nil {
			return nil, nil, err
		}
		return repository.NewFileStore(cfg.Storage.Path, layout), func() {}, nil
	}
}

func initEngine(cfg config.PlaybackConfig) *playback.Engine {
	if cfg.Seed != 0 {
		return playback.NewSeededEngine(cfg.Seed)
	}
	return playback.NewEngine(nil)
}
