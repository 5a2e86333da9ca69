package commands

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/wonny/gainers/internal/gainers"
	"github.com/wonny/gainers/internal/polygon"
	"github.com/wonny/gainers/pkg/config"
	"github.com/wonny/gainers/pkg/httputil"
	"github.com/wonny/gainers/pkg/logger"
)

// scanCmd represents the scan command
var scanCmd = &cobra.Command{
	Use:   "scan",
	Short: "Run one gainer scan and print the ranking table",
	Long: `Runs the ranking pipeline once and prints a fixed-width table.

Example:
  go run ./cmd/gainers scan --minutes 10 --top 20
  go run ./cmd/gainers scan --fast`,
	RunE: runScan,
}

var fastScan bool

func init() {
	rootCmd.AddCommand(scanCmd)

	scanCmd.Flags().BoolVar(&fastScan, "fast", false, "trust the provider's daily change instead of fetching bars")
}

func runScan(cmd *cobra.Command, args []string) error {
	log, engine, err := buildEngine()
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	var reports []gainers.Report
	if fastScan {
		reports, err = engine.TopGainersFast(ctx)
	} else {
		reports, err = engine.TopGainers(ctx)
	}
	if err != nil {
		return fmt.Errorf("scan: %w", err)
	}

	log.WithField("count", len(reports)).Info("Scan completed")
	fmt.Println(gainers.Format(reports, time.Now()))
	return nil
}

// buildEngine wires config, logger, HTTP client, Polygon client and engine
// for the one-shot and watch commands.
func buildEngine() (*logger.Logger, *gainers.Engine, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, nil, fmt.Errorf("load config: %w", err)
	}

	log := logger.New(cfg)

	apiKey := apiKeyFlag
	if apiKey == "" {
		apiKey = cfg.Polygon.APIKey
	}
	if apiKey == "" {
		return nil, nil, fmt.Errorf("polygon API key required (--api-key or POLYGON_API_KEY)")
	}

	httpClient := httputil.New(cfg.Polygon.Timeout, log).
		WithRetry(cfg.Polygon.MaxRetries, time.Second).
		WithRateLimit(cfg.Polygon.RateLimit)

	client := polygon.New(apiKey, cfg.Polygon.BaseURL, httpClient, log).
		WithConcurrency(cfg.Polygon.Concurrency)

	opts := gainers.Options{
		TopN:            cfg.Scan.TopN,
		LookbackMinutes: cfg.Scan.LookbackMinutes,
		Premarket:       cfg.Scan.Premarket || premarket,
	}
	if topNFlag > 0 {
		opts.TopN = topNFlag
	}
	if minutesFlag > 0 {
		opts.LookbackMinutes = minutesFlag
	}

	return log, gainers.New(client, opts, log), nil
}
