// File: cmd/app/main.go
package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"inline-post-bot/internal/config"
	"inline-post-bot/internal/domain/ports/adapter"
	tele "inline-post-bot/internal/infra/adapters/telegram"
	"inline-post-bot/internal/infra/api"
	pg "inline-post-bot/internal/infra/db/postgres"
	"inline-post-bot/internal/infra/logging"
	"inline-post-bot/internal/infra/metrics"
	red "inline-post-bot/internal/infra/redis"
	"inline-post-bot/internal/infra/sched"
	"inline-post-bot/internal/usecase"
)

func main() {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("config: %v", err)
	}
	logger := logging.New(cfg.Log, cfg.Runtime.Dev)
	if cfg.Runtime.Dev {
		logger.Warn().Msg("developer mode enabled")
	}

	metrics.MustRegister()

	// ---- Postgres ----
	pool, err := pg.Connect(ctx, cfg.Database.URL)
	if err != nil {
		logger.Fatal().Err(err).Msg("postgres connect")
	}
	defer pool.Close()

	// ---- Redis ----
	redisClient, err := red.NewClient(ctx, &cfg.Redis)
	if err != nil {
		logger.Fatal().Err(err).Msg("redis connect")
	}
	rateLimiter := red.NewRateLimiter(redisClient)

	// ---- Repositories ----
	userRepo := pg.NewPostgresUserRepo(pool)
	channelRepo := pg.NewPostgresChannelRepo(pool)
	sessionRepo := pg.NewPostgresSessionRepo(pool)
	txManager := pg.NewTxManager(pool)

	// ---- Telegram adapter ----
	var bot adapter.TelegramBotAdapter
	if cfg.Runtime.Dev && cfg.Bot.Token == "" {
		logger.Warn().Msg("no bot token; using noop telegram adapter")
		bot = tele.NewNoopBotAdapter()
	} else {
		realBot, err := tele.NewRealTelegramBotAdapter(&cfg.Bot)
		if err != nil {
			logger.Fatal().Err(err).Msg("telegram adapter")
		}
		bot = realBot
	}

	// ---- Use cases ----
	userUC := usecase.NewUserUseCase(userRepo, sessionRepo, txManager, logger)
	sessionUC := usecase.NewSessionUseCase(sessionRepo, userRepo, txManager, logger)
	channelUC := usecase.NewChannelUseCase(channelRepo, txManager, bot, logger)

	// ---- Update router ----
	router := tele.NewRouter(bot, userUC, sessionUC, channelUC, rateLimiter, cfg.Limits.CommandsPerMinute, logger)

	// ---- Webhook registration ----
	if cfg.Bot.WebhookURL != "" {
		url := cfg.Bot.WebhookURL + "/api/webhook"
		if err := bot.SetWebhook(ctx, url, cfg.Bot.SecretToken, cfg.Bot.AllowedUpdates); err != nil {
			logger.Fatal().Err(err).Str("url", url).Msg("setWebhook")
		}
		logger.Info().Str("url", url).Msg("webhook registered")
	} else {
		logger.Warn().Msg("bot.webhook_url not set; skipping webhook registration")
	}

	// ---- HTTP servers ----
	webhookSrv := api.NewServer(&cfg.Bot, router, logger)
	go func() {
		if err := webhookSrv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error().Err(err).Msg("webhook server error")
		}
	}()

	adminSrv := api.NewAdminServer(cfg.Admin.Port, &cfg.Bot, bot, logger)
	go func() {
		if err := adminSrv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error().Err(err).Msg("admin server error")
		}
	}()

	// ---- Background workers ----
	sweeper := sched.NewSessionSweeper(cfg.Scheduler.SessionSweepInterval, sessionUC, logger)
	go func() { _ = sweeper.Run(ctx) }()

	claimWorker := sched.NewClaimExpiryWorker(cfg.Scheduler.ClaimExpiryInterval, channelUC, logger)
	go func() { _ = claimWorker.Run(ctx) }()

	// ---- Graceful shutdown ----
	sigc := make(chan os.Signal, 1)
	signal.Notify(sigc, syscall.SIGINT, syscall.SIGTERM)
	<-sigc
	logger.Info().Msg("shutdown requested")
	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	if err := webhookSrv.Shutdown(shutdownCtx); err != nil {
		logger.Error().Err(err).Msg("webhook server shutdown")
	}
	if err := adminSrv.Shutdown(shutdownCtx); err != nil {
		logger.Error().Err(err).Msg("admin server shutdown")
	}
}
