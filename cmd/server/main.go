package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/mxfunds/nav-analytics-backend/internal/api"
	"github.com/mxfunds/nav-analytics-backend/internal/config"
	"github.com/mxfunds/nav-analytics-backend/internal/database"
	"github.com/mxfunds/nav-analytics-backend/internal/repository"
	"github.com/mxfunds/nav-analytics-backend/internal/scheduler"
	"github.com/mxfunds/nav-analytics-backend/internal/service"
	"github.com/mxfunds/nav-analytics-backend/internal/xbrl"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	// Open database connection
	db, err := database.Open(cfg.Database.Path)
	if err != nil {
		log.Fatalf("Failed to open database: %v", err)
	}
	defer db.Close()

	if err := database.Migrate(db); err != nil {
		log.Fatalf("Failed to run migrations: %v", err)
	}

	log.Printf("Connected to database: %s", cfg.Database.Path)

	// Create repositories
	reconRepo := repository.NewReconciliationRepository(db)
	flowRepo := repository.NewCashFlowRepository(db)

	// Create services
	systemService := service.NewSystemService(db)
	reconService := service.NewReconciliationService(
		xbrl.NewParser(nil),
		reconRepo,
		flowRepo,
	)
	perfService := service.NewPerformanceService(
		reconRepo,
		flowRepo,
	)

	// Start scheduler
	sched := scheduler.New(reconService, cfg)
	if err := sched.Start(); err != nil {
		log.Fatalf("Failed to start scheduler: %v", err)
	}
	defer sched.Stop()

	// Create router
	router := api.NewRouter(systemService, reconService, perfService, cfg)

	// Create HTTP server
	server := &http.Server{
		Addr:         cfg.Server.Addr,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Start server in a goroutine
	go func() {
		log.Printf("Starting server on %s", cfg.Server.Addr)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Server failed to start: %v", err)
		}
	}()

	// Wait for interrupt signal for graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("Shutting down server...")

	// Graceful shutdown with timeout
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		log.Fatalf("Server forced to shutdown: %v", err)
	}

	log.Println("Server exited")
}
