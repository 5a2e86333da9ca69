package commands

import (
	"github.com/spf13/cobra"
)

var (
	// Global flags
	apiKeyFlag  string
	topNFlag    int
	minutesFlag int
	premarket   bool
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "gainers",
	Short: "Short-window momentum scanner for US equities",
	Long: `gainers ranks US equities by short-window momentum.

Candidates are selected from Polygon's market snapshot by daily gain,
then re-ranked by a short look-back window of 1-minute bars.

Usage:
  go run ./cmd/gainers [command]

Examples:
  go run ./cmd/gainers scan --minutes 10
  go run ./cmd/gainers watch --every 60s
  go run ./cmd/gainers api --port 8080`,
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	// Global flags
	rootCmd.PersistentFlags().StringVar(&apiKeyFlag, "api-key", "", "Polygon API key (default from POLYGON_API_KEY)")
	rootCmd.PersistentFlags().IntVar(&topNFlag, "top", 0, "number of gainers to return (default from config)")
	rootCmd.PersistentFlags().IntVar(&minutesFlag, "minutes", 0, "look-back window in minutes, 1-30 (default from config)")
	rootCmd.PersistentFlags().BoolVar(&premarket, "premarket", false, "use extended-hours bar queries")
}
