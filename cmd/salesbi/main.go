// main.go - salesbi question server
package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"salesbi/internal"
	"salesbi/internal/config"
)

const (
	defaultShutdownTimeout = 30 * time.Second
)

func main() {
	cfg := config.GetConfig()
	for _, line := range startupSummary(cfg) {
		log.Println(line)
	}

	app, err := internal.NewApp()
	if err != nil {
		log.Fatalf("Failed to create app: %v", err)
	}

	log.Println("Running database migrations...")
	if err := app.DBManager.MigrateDatabase(); err != nil {
		log.Fatalf("Failed to run migrations: %v", err)
	}
	log.Println("Migrations completed")

	log.Println("Starting question server...")
	if err := app.StartAsync(); err != nil {
		log.Fatalf("Failed to start application: %v", err)
	}
	log.Printf("Ask questions at http://localhost:%s/", cfg.GetPort())

	waitForShutdownSignal(app)
}

// waitForShutdownSignal sets up signal handling and performs graceful shutdown
func waitForShutdownSignal(app *internal.Application) {
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM, syscall.SIGHUP)

	sig := <-sigChan
	log.Printf("Received signal: %v", sig)

	ctx, cancel := context.WithTimeout(context.Background(), defaultShutdownTimeout)
	defer cancel()

	log.Println("Initiating graceful shutdown...")
	if err := app.Shutdown(ctx); err != nil {
		log.Printf("Error during shutdown: %v", err)
		os.Exit(1)
	}
	log.Println("Server shutdown complete")
}

// startupSummary describes the configuration the server is about to run with.
func startupSummary(cfg *config.Config) []string {
	lines := []string{
		fmt.Sprintf("salesbi starting: env=%s port=%s", cfg.Environment, cfg.GetPort()),
		fmt.Sprintf("Dataset: %s (top-N mode: %s)", cfg.DatasetPath, cfg.TopNMode),
	}
	if cfg.HistoryRetentionDays > 0 {
		lines = append(lines, fmt.Sprintf("Query history kept for %d days", cfg.HistoryRetentionDays))
	} else {
		lines = append(lines, "Query history kept forever")
	}
	if _, err := os.Stat(cfg.DatasetPath); err != nil {
		// Questions report the load error until the file appears.
		lines = append(lines, fmt.Sprintf("Warning: dataset not readable yet: %v", err))
	}
	return lines
}
