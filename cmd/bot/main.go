package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"personality-bot/internal/api/personality"
	"personality-bot/internal/bot"
	"personality-bot/internal/bot/scheduler"
	"personality-bot/internal/config"
	"personality-bot/internal/logger"
	"personality-bot/internal/storage/postgres"
	"personality-bot/internal/storage/redis"
	"personality-bot/internal/workspace"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		os.Exit(1)
	}

	if err := cfg.Validate(); err != nil {
		fmt.Fprintf(os.Stderr, "Invalid config: %v\n", err)
		os.Exit(1)
	}

	log, err := logger.New(cfg.LogLevel)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to create logger: %v\n", err)
		os.Exit(1)
	}
	defer log.Sync()

	log.Info("starting personality bot",
		zap.String("log_level", cfg.LogLevel),
		zap.String("api_base_url", cfg.APIBaseURL),
		zap.Bool("notify_enabled", cfg.NotifyEnabled),
	)

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	log.Info("connecting to PostgreSQL...")
	store, err := postgres.New(cfg.PostgresDSN, log)
	if err != nil {
		log.Fatal("failed to connect to PostgreSQL", zap.Error(err))
	}
	defer store.Close()

	if err := store.Migrate(ctx); err != nil {
		log.Fatal("failed to apply migrations", zap.Error(err))
	}

	log.Info("PostgreSQL connected successfully")

	log.Info("connecting to Redis...")
	cache, err := redis.New(cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB, log)
	if err != nil {
		log.Fatal("failed to connect to Redis", zap.Error(err))
	}
	defer cache.Close()

	log.Info("Redis connected successfully")

	api := personality.New(cfg.APIBaseURL, cfg.APITimeout, log)

	ws := workspace.New(api, store, cache, log, workspace.Options{
		CandidatesLimit: cfg.CandidatesLimit,
		VacanciesLimit:  cfg.VacanciesLimit,
	})

	if res := ws.Health(ctx); res.Failed() {
		log.Warn("personality API is not reachable yet", zap.Error(res.Err))
	}

	log.Info("initializing Telegram bot...")
	tgBot, err := bot.New(cfg, ws, store, cache, log)
	if err != nil {
		log.Fatal("failed to create bot", zap.Error(err))
	}

	g, gctx := errgroup.WithContext(ctx)

	if cfg.NotifyEnabled {
		checker := scheduler.New(tgBot.GetBot(), store, api, cfg.NotifySchedule, cfg.VacanciesLimit, log)
		g.Go(func() error {
			return checker.Start(gctx)
		})
	}

	g.Go(func() error {
		return tgBot.Start(gctx)
	})

	log.Info("bot is running, press Ctrl+C to stop")

	if err := g.Wait(); err != nil {
		log.Error("stopped with error", zap.Error(err))
	}

	log.Info("bot stopped")
}
