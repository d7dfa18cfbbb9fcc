package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/ametelkin/tripline/internal/config"
	"github.com/ametelkin/tripline/internal/database"
	"github.com/ametelkin/tripline/internal/logger"
	"github.com/ametelkin/tripline/internal/repositories"
	"github.com/ametelkin/tripline/internal/server"
	"github.com/ametelkin/tripline/internal/services"
	"github.com/ametelkin/tripline/internal/telegram"
)

func main() {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	godotenv.Load()

	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	logg, err := logger.New(os.Getenv("LOG_MODE"))
	if err != nil {
		log.Fatalf("Failed to init logger: %v", err)
	}
	defer logg.Sync()

	// Storage
	postgresPool, err := database.NewPostgresPool(ctx, cfg.DatabaseURL)
	if err != nil {
		logg.Fatal("Failed to create postgres pool", "error", err)
	}
	defer postgresPool.Close()

	if err := repositories.EnsureSchema(ctx, postgresPool); err != nil {
		logg.Fatal("Failed to ensure schema", "error", err)
	}

	redisClient, err := database.NewRedisClient(ctx, cfg.RedisURL)
	if err != nil {
		logg.Fatal("Failed to create redis client", "error", err)
	}
	defer redisClient.Close()

	tripRepo := repositories.NewPostgresTripRepository(postgresPool)
	waypointRepo := repositories.NewRedisWaypointRepository(redisClient)

	// Telegram transport and interaction state
	tgClient := telegram.NewClient(logg, telegram.Config{
		Token:       cfg.BotToken,
		PollTimeout: cfg.PollTimeout,
	})
	state := telegram.NewState()

	// Domain services
	planner := services.NewPlanner(logg, tripRepo, waypointRepo)
	history := services.NewHistory(logg, tripRepo, waypointRepo, tgClient)
	helper := services.NewHelper(logg, tripRepo, waypointRepo, tgClient, cfg.VisitRadiusMeters)

	var llm services.LLMClient
	if cfg.OpenAIAPIKey != "" {
		llm = services.NewOpenAIClient(logg, cfg.OpenAIAPIKey)
	} else {
		logg.Warn("OPENAI_API_KEY not set, LLM suggestions disabled")
	}
	suggestions := services.NewSuggestions(logg, tripRepo, waypointRepo, tgClient, llm)
	reminder := services.NewReminder(logg, tripRepo, tgClient)

	// Ingestion loop
	dispatcher := telegram.NewDispatcher(logg, state, tgClient, planner, history, helper, suggestions)
	poller := telegram.NewPoller(logg, tgClient, dispatcher, cfg.PollInterval)

	if err := tgClient.DeleteWebhook(ctx); err != nil {
		logg.Warn("Failed to delete webhook, polling may conflict", "error", err)
	}

	go poller.Run(ctx)
	go reminder.Run(ctx)

	// Admin HTTP surface
	admin := server.NewAdmin(logg, cfg.AdminAPIKey, state, tgClient)
	httpServer := &http.Server{
		Addr:    fmt.Sprintf(":%s", cfg.ServerPort),
		Handler: admin.Router(),
	}

	// graceful shutdown
	go func() {
		sigChan := make(chan os.Signal, 1)
		signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
		<-sigChan

		logg.Info("Shutting down...")
		cancel()

		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer shutdownCancel()
		httpServer.Shutdown(shutdownCtx)
	}()

	logg.Info("Starting admin server", "port", cfg.ServerPort)
	if err := httpServer.ListenAndServe(); err != http.ErrServerClosed {
		logg.Fatal("Server error", "error", err)
	}

	logg.Info("Server stopped gracefully")
}
