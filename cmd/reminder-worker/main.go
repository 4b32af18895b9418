package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"paisa/internal/amqp"
	"paisa/internal/backend"
	"paisa/internal/config"
	applog "paisa/internal/log"
	"paisa/internal/reminder"
)

func main() {
	// Load .env file for local development (ignore errors in production/docker)
	_ = godotenv.Load()

	logger := applog.New(applog.Config{Component: applog.ComponentReminder})
	applog.SetDefault(logger)

	logger.Info("Starting reminder-worker")

	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		logger.Error("Configuration validation failed", "error", err)
		os.Exit(1)
	}

	backendCfg, err := backend.FromAppConfig(cfg)
	if err != nil {
		logger.Error("Invalid backend configuration", "error", err)
		os.Exit(1)
	}

	factory := backend.NewFactory(logger.Logger)
	result, err := factory.CreateBackend(context.Background(), backendCfg)
	if err != nil {
		logger.Error("Failed to initialize backend", "error", err, "backend", cfg.DataBackend)
		os.Exit(1)
	}
	if result.Cleanup != nil {
		defer func() {
			if err := result.Cleanup(); err != nil {
				logger.Error("Backend cleanup failed", "error", err)
			}
		}()
	}

	// AMQP is optional; without it notifications are stored but no event
	// reaches the delivery workers.
	var publisher reminder.Publisher
	if cfg.AMQPURL != "" {
		client, err := amqp.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue)
		if err != nil {
			logger.Warn("Failed to initialize AMQP client, continuing without events", "error", err)
		} else {
			defer client.Close()
			publisher = client
			logger.Info("AMQP client initialized", "exchange", cfg.AMQPExchange, "queue", cfg.AMQPQueue)
		}
	} else {
		logger.Info("AMQP disabled - notification events will not be published")
	}

	scheduler := reminder.NewScheduler(result.Backend, publisher)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	logger.Info("Reminder scheduler configured",
		"interval", cfg.ReminderInterval,
		"backend", cfg.DataBackend)

	ticker := time.NewTicker(cfg.ReminderInterval)
	defer ticker.Stop()

	logger.Info("Running initial reminder batch...")
	if stats, err := scheduler.Run(ctx, time.Now()); err != nil {
		logger.Error("Initial batch failed", "error", err)
	} else {
		logger.Info("Initial batch complete",
			"created", stats.Created,
			"duplicates", stats.Duplicates,
			"failed_owners", stats.FailedOwners)
	}

	go func() {
		for {
			select {
			case <-ctx.Done():
				return
			case now := <-ticker.C:
				logger.Info("Running reminder batch...")
				stats, err := scheduler.Run(ctx, now)
				if err != nil {
					logger.Error("Reminder batch failed", "error", err)
					continue
				}
				logger.Info("Reminder batch complete",
					"created", stats.Created,
					"duplicates", stats.Duplicates,
					"failed_owners", stats.FailedOwners,
					"next_check", now.Add(cfg.ReminderInterval).Format("15:04:05"))
			}
		}
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-sigChan:
		logger.Info("Shutdown signal received", "signal", sig.String())
	case <-ctx.Done():
		logger.Info("Context cancelled")
	}

	logger.Info("Reminder worker stopped gracefully")
}
