package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/arpejfinder/residence-notifier/internal/arpej"
	"github.com/arpejfinder/residence-notifier/internal/config"
	"github.com/arpejfinder/residence-notifier/internal/ledger"
	"github.com/arpejfinder/residence-notifier/internal/mailer"
	"github.com/arpejfinder/residence-notifier/internal/pipeline"
	"github.com/arpejfinder/residence-notifier/internal/server"
	"github.com/arpejfinder/residence-notifier/internal/storage"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatal("Failed to load configuration:", err)
	}

	// Create context for graceful shutdown
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Initialize the ledger store. Missing store credentials are permissive:
	// runs still complete, just without deduplication history.
	store, err := storage.NewStore(ctx, cfg.Storage)
	if err != nil {
		log.Printf("Ledger store unavailable, deduplication history is disabled: %v", err)
		store = storage.Disabled(err)
	}
	defer store.Close(context.Background())

	if err := store.Ping(ctx); err != nil {
		log.Printf("Ledger store ping failed: %v", err)
	} else {
		log.Println("Connected to ledger store")
	}

	// Wire the pipeline
	pipe := pipeline.New(
		cfg.Pipeline,
		arpej.NewClient(cfg.Arpej),
		ledger.New(store),
		mailer.New(cfg.SMTP),
	)

	// Initialize HTTP server for the trigger and health endpoints
	httpServer := server.NewServer(cfg.Server, pipe, store)

	// Handle graceful shutdown
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	// Start HTTP server
	go func() {
		log.Printf("Starting HTTP server on port %d", cfg.Server.Port)
		if err := httpServer.Start(); err != nil {
			log.Printf("HTTP server error: %v", err)
		}
	}()

	// Optional scheduled runner; by default runs are trigger-only
	if cfg.Pipeline.Interval > 0 {
		go func() {
			log.Printf("Starting scheduled runner every %s", cfg.Pipeline.Interval)
			ticker := time.NewTicker(cfg.Pipeline.Interval)
			defer ticker.Stop()

			for {
				select {
				case <-ctx.Done():
					return
				case <-ticker.C:
					if err := pipe.Run(ctx); err != nil {
						log.Printf("Scheduled pipeline run failed: %v", err)
					}
				}
			}
		}()
	}

	// Wait for shutdown signal
	<-sigChan
	log.Println("Shutdown signal received, gracefully shutting down...")

	// Create shutdown context with timeout
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		log.Printf("HTTP server shutdown error: %v", err)
	}

	cancel()
	log.Println("Shutdown complete")
}
