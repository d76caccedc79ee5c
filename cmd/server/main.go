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

	"bookify-backend/internal/config"
	"bookify-backend/internal/database"
	"bookify-backend/internal/handlers"
	"bookify-backend/internal/repository"
	"bookify-backend/internal/router"
	"bookify-backend/internal/services"
	"bookify-backend/internal/worker"
)

func main() {
	log.Println("🚀 Starting Bookify Backend...")

	// ──── Step 1: Load Environment Variables ────
	cfg := config.Load()
	log.Printf("✓ Environment variables loaded (%s)", cfg.Env)
	if cfg.CompletionAPIKey == "" {
		log.Println("WARNING: GROQ_API_KEY is not set. Chat requests will fail upstream.")
	}

	// ──── Step 2: Load Inventory ────
	inventory := repository.NewInventoryRepo(cfg.DataFile)
	inventory.Reload()
	log.Println("✓ Inventory cache ready")

	// ──── Step 3: Initialize Completion Client ────
	completionClient := services.NewCompletionClient(
		cfg.CompletionAPIKey,
		cfg.CompletionBaseURL,
		services.WithTimeout(cfg.CompletionTimeout),
	)
	chatService := services.NewChatService(inventory, completionClient, cfg.CompletionModel)
	log.Printf("✓ Completion client initialized (model: %s)", cfg.CompletionModel)

	// ──── Step 4: Optional Redis Reload Listener ────
	var reloadListener *worker.ReloadListener
	if cfg.RedisURL != "" {
		redisClient, err := database.NewRedisClient(cfg.RedisURL)
		if err != nil {
			log.Printf("WARNING: Redis unavailable, hot reload disabled: %v", err)
		} else {
			defer redisClient.Close()
			reloadListener = worker.NewReloadListener(redisClient, cfg.ReloadChannel, inventory)
			reloadListener.Start()
			log.Println("✓ Redis reload listener started")
		}
	}

	// ──── Step 5: Start HTTP Server ────
	chatHandler := handlers.NewChatHandler(chatService)
	r := router.New(chatHandler, cfg.StaticDir)

	server := &http.Server{
		Addr:        fmt.Sprintf(":%s", cfg.Port),
		Handler:     r,
		ReadTimeout: 15 * time.Second,
		// Must outlast the completion timeout.
		WriteTimeout: cfg.CompletionTimeout + 15*time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Graceful shutdown
	go func() {
		sigChan := make(chan os.Signal, 1)
		signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
		<-sigChan

		log.Println("Shutting down.")
		if reloadListener != nil {
			reloadListener.Stop()
		}

		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		server.Shutdown(ctx)
	}()

	log.Printf("✓ Bookify Backend ready on http://localhost:%s", cfg.Port)
	log.Printf("  Chat: POST http://localhost:%s/chat", cfg.Port)

	if err := server.ListenAndServe(); err != http.ErrServerClosed {
		log.Fatalf("Server error: %v", err)
	}
}
