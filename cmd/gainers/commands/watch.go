package commands

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/wonny/gainers/internal/gainers"
	"github.com/wonny/gainers/internal/scheduler"
)

// watchCmd represents the watch command
var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Re-scan on an interval and print each ranking table",
	Long: `Runs the ranking pipeline on a fixed interval until interrupted.

Example:
  go run ./cmd/gainers watch --every 60s --minutes 10`,
	RunE: runWatch,
}

var watchEvery time.Duration

func init() {
	rootCmd.AddCommand(watchCmd)

	watchCmd.Flags().DurationVar(&watchEvery, "every", 60*time.Second, "scan interval")
}

// scanJob adapts the engine to the scheduler's Job interface
type scanJob struct {
	engine   *gainers.Engine
	schedule string
}

func (j *scanJob) Name() string     { return "gainer-scan" }
func (j *scanJob) Schedule() string { return j.schedule }

func (j *scanJob) Run(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 2*time.Minute)
	defer cancel()

	reports, err := j.engine.TopGainers(ctx)
	if err != nil {
		return err
	}

	fmt.Println(gainers.Format(reports, time.Now()))
	return nil
}

func runWatch(cmd *cobra.Command, args []string) error {
	if watchEvery < 10*time.Second {
		return fmt.Errorf("--every must be at least 10s to respect the provider's rate budget")
	}

	log, engine, err := buildEngine()
	if err != nil {
		return err
	}

	sched := scheduler.New(log)
	job := &scanJob{
		engine:   engine,
		schedule: fmt.Sprintf("@every %s", watchEvery),
	}
	if err := sched.AddJob(job); err != nil {
		return fmt.Errorf("add scan job: %w", err)
	}

	sched.Start()
	log.WithField("interval", watchEvery).Info("Watching for gainers, Ctrl+C to stop")

	// Run once immediately rather than waiting a full interval
	if err := job.Run(context.Background()); err != nil {
		log.WithError(err).Error("Initial scan failed")
	}

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	sched.Stop()
	log.Info("Watch stopped")
	return nil
}
