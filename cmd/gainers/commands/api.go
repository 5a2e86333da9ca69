package commands

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/wonny/gainers/internal/api"
	"github.com/wonny/gainers/internal/api/handlers"
	"github.com/wonny/gainers/pkg/config"
	"github.com/wonny/gainers/pkg/httputil"
	"github.com/wonny/gainers/pkg/logger"
)

// apiCmd represents the api command
var apiCmd = &cobra.Command{
	Use:   "api",
	Short: "Start the HTTP API server",
	Long: `Starts the gainers HTTP server.

Endpoints:
  GET  /health        - Health check
  GET  /              - Dashboard
  GET  /api/gainers   - Ranked gainers (apiKey, n, minutes, premarket, fast)

Example:
  go run ./cmd/gainers api
  go run ./cmd/gainers api --port 8080`,
	RunE: runAPIServer,
}

var apiPort string

func init() {
	rootCmd.AddCommand(apiCmd)

	apiCmd.Flags().StringVar(&apiPort, "port", "", "server port (default from PORT)")
}

func runAPIServer(cmd *cobra.Command, args []string) error {
	// 1. Load config
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	if apiPort != "" {
		cfg.Port = apiPort
	}

	// 2. Initialize logger
	log := logger.New(cfg)

	log.WithFields(map[string]interface{}{
		"port": cfg.Port,
		"env":  cfg.Env,
	}).Info("Initializing API server")

	// 3. Create shared HTTP client for outbound Polygon calls
	httpClient := httputil.New(cfg.Polygon.Timeout, log).
		WithRetry(cfg.Polygon.MaxRetries, time.Second).
		WithRateLimit(cfg.Polygon.RateLimit)

	// 4. Create handler and router
	gainersHandler := handlers.NewGainersHandler(cfg, httpClient, log)
	router := api.NewRouter(gainersHandler, log)

	// 5. Create server
	server := api.New(cfg, log, router)

	// 6. Start server with graceful shutdown
	go func() {
		if err := server.Start(); err != nil {
			log.WithError(err).Fatal("Failed to start server")
		}
	}()

	fmt.Printf("Server running on http://localhost:%s\n", cfg.Port)
	fmt.Println("Press Ctrl+C to stop")

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		return fmt.Errorf("server shutdown failed: %w", err)
	}

	log.Info("Server stopped")
	return nil
}
