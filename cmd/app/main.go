// File: cmd/app/main.go
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"notegraph-ai/internal/config"
	"notegraph-ai/internal/domain/model"
	"notegraph-ai/internal/domain/ports/adapter"
	"notegraph-ai/internal/domain/ports/repository"
	aiAdapters "notegraph-ai/internal/infra/adapters/ai"
	"notegraph-ai/internal/infra/api"
	pg "notegraph-ai/internal/infra/db/postgres"
	"notegraph-ai/internal/infra/logging"
	"notegraph-ai/internal/infra/metrics"
	red "notegraph-ai/internal/infra/redis"
	"notegraph-ai/internal/infra/sched"
	"notegraph-ai/internal/infra/security"
	"notegraph-ai/internal/infra/worker"
	"notegraph-ai/internal/usecase"
)

func main() {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// ---- CLI flags ----
	cfgPath := flag.String("config", "config.yaml", "path to YAML config file")
	devMode := flag.Bool("dev", false, "enable developer mode (stub AI providers, header auth)")
	flag.Parse()

	cfg, err := config.LoadConfig(*cfgPath, *devMode)
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	logger := logging.New(cfg.Log, cfg.Runtime.Dev)
	if cfg.Runtime.Dev {
		logger.Warn().Msg("developer mode enabled")
	}

	metrics.MustRegister()

	// ---- Redis (workspace slot store) ----
	redisClient, err := red.NewClient(ctx, &cfg.Redis)
	if err != nil {
		logger.Fatal().Err(err).Msg("redis")
	}
	defer func() { _ = redisClient.Close() }()
	rateLimiter := red.NewRateLimiter(redisClient)

	// ---- Encryption ----
	encKey := cfg.Security.EncryptionKey
	if len(encKey) != 32 {
		logger.Warn().Msg("security.encryption_key not set or not 32 bytes; using dev key (INSECURE)")
		encKey = "0123456789abcdef0123456789abcdef"
	}
	cipher, err := security.NewCipher(encKey)
	if err != nil {
		logger.Fatal().Err(err).Msg("encryption")
	}

	slotStore := red.NewSlotStore(redisClient, cipher, cfg.Redis.TTL, logger)

	// ---- AI providers ----
	var dispatcher adapter.ChatDispatcher
	if cfg.Runtime.Dev {
		dispatcher = aiAdapters.NewDispatcher(
			aiAdapters.NewNoopProvider(model.ProviderOpenAI),
			aiAdapters.NewNoopProvider(model.ProviderGemini),
		)
		logger.Info().Msg("AI dispatch: stub providers (dev mode)")
	} else {
		dispatcher = aiAdapters.NewDispatcher(
			aiAdapters.NewOpenAIProvider(cfg.AI.DefaultOpenAIModel),
			aiAdapters.NewGeminiProvider(cfg.AI.DefaultGeminiModel, cfg.AI.GeminiURL),
		)
	}
	dispatcher = aiAdapters.NewLimitedDispatcher(dispatcher, cfg.AI.ConcurrentLimit)

	// ---- Use cases ----
	chatUC := usecase.NewChatUseCase(slotStore, dispatcher, rateLimiter, cfg.AI.RatePerMinute, time.Minute, logger)
	graphUC := usecase.NewGraphUseCase(slotStore, logger)
	serviceUC := usecase.NewServiceUseCase(slotStore, logger)
	settingsUC := usecase.NewSettingsUseCase(slotStore)

	// ---- Postgres autosave (optional) ----
	var snapshots repository.SnapshotRepository
	if cfg.Database.URL != "" {
		pool, err := pg.NewPgxPool(ctx, cfg.Database.URL, 10)
		if err != nil {
			logger.Fatal().Err(err).Msg("postgres")
		}
		defer pool.Close()

		repo := pg.NewSnapshotRepo(pool)
		if err := repo.EnsureSchema(ctx); err != nil {
			logger.Fatal().Err(err).Msg("snapshot schema")
		}
		snapshots = repo

		// An empty slot store (fresh Redis) picks up the last autosaved
		// state before serving.
		if _, err := slotStore.RestoreFrom(ctx, repo); err != nil {
			logger.Warn().Err(err).Msg("snapshot restore failed; starting from empty slots")
		}
	} else {
		logger.Warn().Msg("database.url not set; durable snapshots disabled")
	}

	// ---- Autosave worker ----
	if snapshots != nil {
		pool := worker.NewPool(4, logger)
		pool.Start(ctx)
		defer pool.Stop()

		autosave := sched.NewAutosaveWorker(cfg.Autosave.Interval, slotStore, snapshots, pool, logger)
		go func() { _ = autosave.Run(ctx) }()
	}

	// ---- HTTP API ----
	var auth *api.AuthManager
	if !cfg.Runtime.Dev {
		auth = api.NewAuthManager(cfg.Server.JWTSecret, cfg.Server.APIKey, 24*time.Hour)
	}
	srv := api.NewServer(chatUC, graphUC, serviceUC, settingsUC, auth, cfg.Runtime.Dev, logger)
	server := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:           srv.Router(),
		ReadHeaderTimeout: 10 * time.Second,
	}
	go func() {
		logger.Info().Str("addr", server.Addr).Msg("http api listening")
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error().Err(err).Msg("http server error")
		}
	}()

	// ---- Graceful shutdown ----
	sigc := make(chan os.Signal, 1)
	signal.Notify(sigc, syscall.SIGINT, syscall.SIGTERM)
	<-sigc
	logger.Info().Msg("shutdown requested")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	_ = server.Shutdown(shutdownCtx)
	cancel()
}
