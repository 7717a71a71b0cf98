// Package main is the entry point for the testkata API server.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/cenkalti/backoff/v4"
	"go.uber.org/zap"

	"github.com/samplecodes/testkata/internal/cache"
	"github.com/samplecodes/testkata/internal/config"
	"github.com/samplecodes/testkata/internal/database"
	"github.com/samplecodes/testkata/internal/display"
	"github.com/samplecodes/testkata/internal/handlers"
	"github.com/samplecodes/testkata/internal/profile"
	"github.com/samplecodes/testkata/internal/repository"
	"github.com/samplecodes/testkata/internal/server"
	"github.com/samplecodes/testkata/internal/users"
	"github.com/samplecodes/testkata/pkg/logger"
)

const (
	connectTimeout = 30 * time.Second
	nameKeyPrefix  = "testkata:name:"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	log := logger.New(os.Stdout, cfg.App.LogLevel)
	defer func() { _ = log.Sync() }()

	srv := server.New(cfg, log)
	health := srv.HealthHandler()

	fetcher := users.NewFetcher(cfg.Fetch)
	var names display.NameLookup = users.NewNameLookup(fetcher)

	if cfg.DatabaseEnabled() {
		pool, err := connectDatabase(cfg, log)
		if err != nil {
			return err
		}
		defer pool.Close()

		repo := repository.NewPostgresMemberRepository(pool)
		names = repo
		srv.SetMemberHandler(handlers.NewMemberHandler(users.NewManager(repo)))
		health.AddCheck("database", pool.HealthCheck)
	} else {
		log.Info("database not configured, member endpoints disabled")
	}

	if cfg.RedisEnabled() {
		redisCache, err := connectRedis(cfg, log)
		if err != nil {
			return err
		}
		defer func() { _ = redisCache.Close() }()

		names = cache.NewNameCache(names, redisCache, nameKeyPrefix, cfg.Redis.NameTTL, log)
		health.AddCheck("redis", redisCache.Ping)
	}

	srv.SetUserHandler(handlers.NewUserHandler(fetcher, display.NewFormatter(names), log))

	if cfg.APIEnabled() {
		client := profile.NewClient(cfg.API, nil, log)
		srv.SetProfileHandler(handlers.NewProfileHandler(profile.NewService(client)))
		log.Info("profile API configured", zap.String("base_url", cfg.API.BaseURL))
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.Start()
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-errCh:
		return err
	case sig := <-quit:
		log.Info("received signal", zap.String("signal", sig.String()))
	}

	ctx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()

	return srv.Shutdown(ctx)
}

func connectDatabase(cfg *config.Config, log *zap.Logger) (*database.Pool, error) {
	var pool *database.Pool
	connect := func() error {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		p, err := database.NewPool(ctx, &cfg.Database)
		if err != nil {
			log.Warn("database not reachable, retrying", zap.Error(err))
			return err
		}
		pool = p
		return nil
	}

	if err := backoff.Retry(connect, newBackOff()); err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	if err := database.RunMigrations(log, &cfg.Database); err != nil {
		pool.Close()
		return nil, err
	}

	log.Info("database connected",
		zap.String("host", cfg.Database.Host),
		zap.String("database", cfg.Database.DBName),
	)
	return pool, nil
}

func connectRedis(cfg *config.Config, log *zap.Logger) (*cache.RedisCache, error) {
	var c *cache.RedisCache
	connect := func() error {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		rc, err := cache.NewRedisCache(ctx, &cfg.Redis)
		if err != nil {
			log.Warn("redis not reachable, retrying", zap.Error(err))
			return err
		}
		c = rc
		return nil
	}

	if err := backoff.Retry(connect, newBackOff()); err != nil {
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}

	log.Info("redis connected", zap.String("host", cfg.Redis.Host))
	return c, nil
}

func newBackOff() backoff.BackOff {
	b := backoff.NewExponentialBackOff()
	b.MaxElapsedTime = connectTimeout
	return b
}
