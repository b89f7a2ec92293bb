package main

import (
	"context"
	"database/sql"
	"errors"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "github.com/lib/pq"

	"library-rental-backend/internal/config"
	"library-rental-backend/internal/domain"
	"library-rental-backend/internal/jobs"
	"library-rental-backend/internal/logger"
	"library-rental-backend/internal/repository/postgres"
	"library-rental-backend/internal/scheduler"
	"library-rental-backend/internal/service"
)

const jobTimeout = 5 * time.Minute

func main() {
	// Parse command-line flags
	configPath := flag.String("config", "config/config.dev.yaml", "Path to configuration file")
	runOnce := flag.String("run-once", "", "Run a specific job once and exit (e.g., 'overdue-scan')")
	flag.Parse()

	// Load configuration
	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	// Initialize logger
	logger.Initialize(cfg.Log.Level, cfg.Log.Format)
	logger.Info("Starting Library Cronjob Runner...", "log_level", cfg.Log.Level)

	// Initialize Database
	logger.Info("Connecting to database...", "host", cfg.Database.Host, "port", cfg.Database.Port)
	db, err := sql.Open("postgres", cfg.GetDatabaseConnectionString())
	if err != nil {
		logger.Error("Failed to connect to database", "error", err)
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer db.Close()

	// Test database connection
	if err := db.Ping(); err != nil {
		logger.Error("Failed to ping database", "error", err)
		log.Fatalf("Failed to ping database: %v", err)
	}
	logger.Info("Database connection established")

	// Initialize Repositories
	store := postgres.NewStore(db)

	// Initialize the notification sink; every attempt is recorded
	sink, err := service.NewNotificationSink(cfg.Notification)
	if err != nil {
		logger.Error("Failed to initialize notification sink", "error", err)
		log.Fatalf("Failed to initialize notification sink: %v", err)
	}
	recording := service.NewRecordingSink(sink, domain.NotificationChannel(cfg.Notification.Channel), store.NotificationRepository)
	logger.Info("Notification sink configured", "channel", cfg.Notification.Channel)

	// Initialize Job Runner
	scanner := jobs.NewOverdueScanner(
		jobs.OverdueScanConfig{
			Destination: cfg.Notification.Destination,
			SendTimeout: time.Duration(cfg.Notification.SendTimeoutSeconds) * time.Second,
		},
		store.BorrowingRepository,
		recording,
	)
	jobRunner := jobs.NewJobRunner(jobTimeout, scanner)

	// Check if running a single job
	if *runOnce != "" {
		logger.Info("Running job once", "job", *runOnce)
		if err := jobRunner.RunOnce(context.Background(), *runOnce); err != nil {
			logger.Error("Job execution failed", "job", *runOnce, "error", err)
			if errors.Is(err, jobs.ErrUnknownJob) {
				fmt.Printf("Available jobs:\n")
				for _, name := range jobRunner.Names() {
					fmt.Printf("  - %s\n", name)
				}
			}
			os.Exit(1)
		}
		logger.Info("Job execution completed", "job", *runOnce)
		return
	}

	// Initialize Scheduler
	cronScheduler, err := scheduler.NewScheduler(jobRunner, map[string]string{
		jobs.OverdueScanJobName: cfg.Scheduler.OverdueScan,
	})
	if err != nil {
		logger.Error("Failed to initialize scheduler", "error", err)
		log.Fatalf("Failed to initialize scheduler: %v", err)
	}

	// Start scheduler
	cronScheduler.Start()
	logger.Info("Cronjob scheduler is running. Press Ctrl+C to stop.", "next_run", cronScheduler.NextRun())

	// Wait for interrupt signal
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	<-sigChan

	// Graceful shutdown
	logger.Info("Shutting down cronjob scheduler...")
	cronScheduler.Stop()
	logger.Info("Cronjob scheduler stopped. Goodbye!")
}
