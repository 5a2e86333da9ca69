package scheduler

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/wonny/gainers/pkg/logger"
)

// Job is a unit of scheduled work
type Job interface {
	Name() string
	Schedule() string // cron spec with seconds, or @every syntax
	Run(ctx context.Context) error
}

// JobHistory tracks the most recent outcome of a job
type JobHistory struct {
	LastRun             time.Time
	LastError           string
	RunCount            int
	ConsecutiveFailures int
}

// Scheduler manages scheduled jobs
// ⭐ SSOT: 스케줄 관리는 이 스케줄러에서만
type Scheduler struct {
	cron    *cron.Cron
	logger  *logger.Logger
	jobs    map[string]Job
	history map[string]*JobHistory
	mu      sync.RWMutex
}

// New creates a new scheduler
func New(log *logger.Logger) *Scheduler {
	return &Scheduler{
		cron:    cron.New(cron.WithSeconds()),
		logger:  log,
		jobs:    make(map[string]Job),
		history: make(map[string]*JobHistory),
	}
}

// AddJob adds a job to the scheduler
func (s *Scheduler) AddJob(job Job) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	jobName := job.Name()
	if _, exists := s.jobs[jobName]; exists {
		return fmt.Errorf("job %s already exists", jobName)
	}

	_, err := s.cron.AddFunc(job.Schedule(), func() {
		s.runJob(job)
	})
	if err != nil {
		return fmt.Errorf("failed to schedule job %s: %w", jobName, err)
	}

	s.jobs[jobName] = job
	s.history[jobName] = &JobHistory{}

	s.logger.WithFields(map[string]interface{}{
		"job":      jobName,
		"schedule": job.Schedule(),
	}).Info("Job added to scheduler")

	return nil
}

// runJob executes one job run and records its outcome
func (s *Scheduler) runJob(job Job) {
	start := time.Now()

	err := job.Run(context.Background())

	s.mu.Lock()
	h := s.history[job.Name()]
	h.LastRun = start
	h.RunCount++
	if err != nil {
		h.LastError = err.Error()
		h.ConsecutiveFailures++
	} else {
		h.LastError = ""
		h.ConsecutiveFailures = 0
	}
	s.mu.Unlock()

	if err != nil {
		s.logger.WithError(err).WithFields(map[string]interface{}{
			"job":      job.Name(),
			"duration": time.Since(start),
		}).Error("Job failed")
		return
	}

	s.logger.WithFields(map[string]interface{}{
		"job":      job.Name(),
		"duration": time.Since(start),
	}).Debug("Job completed")
}

// History returns a copy of a job's history
func (s *Scheduler) History(jobName string) (JobHistory, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	h, ok := s.history[jobName]
	if !ok {
		return JobHistory{}, false
	}
	return *h, true
}

// Start starts the scheduler
func (s *Scheduler) Start() {
	s.logger.WithField("jobs", len(s.jobs)).Info("Starting scheduler")
	s.cron.Start()
}

// Stop stops the scheduler and waits for running jobs
func (s *Scheduler) Stop() {
	s.logger.Info("Stopping scheduler")
	<-s.cron.Stop().Done()
}
