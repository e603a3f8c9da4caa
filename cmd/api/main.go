package main

import (
	"log"
	"time"

	"mirror/internal/api"
	"mirror/internal/config"
	"mirror/internal/database"
	"mirror/internal/events"
	"mirror/internal/logger"
	"mirror/internal/sync"
	"mirror/internal/woocommerce"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatal("Failed to load configuration:", err)
	}

	// Initialize logger
	logger := logger.New(cfg.LogLevel)

	// Initialize database
	db, err := database.New(cfg.DatabaseURL)
	if err != nil {
		logger.Fatal("Failed to connect to database: %v", err)
	}

	// Remote platform client
	client := woocommerce.NewClient(
		cfg.WooBaseURL,
		cfg.WooConsumerKey,
		cfg.WooConsumerSecret,
		time.Duration(cfg.WooTimeoutSeconds)*time.Second,
		logger,
	)

	// Change-event publisher
	publisher := events.NewPublisher(cfg.KafkaBrokers, logger)
	defer publisher.Close()

	// Sync engine
	syncService := sync.New(db.DB, client, logger, publisher)

	// Initialize API server
	server := api.New(cfg, logger, db, syncService)

	// Start server
	logger.Info("Starting API server on port " + cfg.APIPort)
	if err := server.Start(); err != nil {
		logger.Fatal("Failed to start server: %v", err)
	}
}
