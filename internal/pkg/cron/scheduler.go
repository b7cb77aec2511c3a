package cron

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"
)

// Job is a function run on a fixed interval.
type Job struct {
	Name     string
	Interval time.Duration
	Fn       func(ctx context.Context) error
}

// Scheduler runs registered jobs on tickers until stopped.
type Scheduler struct {
	jobs    []Job
	ctx     context.Context
	cancel  context.CancelFunc
	wg      sync.WaitGroup
	mu      sync.Mutex
	started bool
}

func NewScheduler() *Scheduler {
	ctx, cancel := context.WithCancel(context.Background())
	return &Scheduler{
		ctx:    ctx,
		cancel: cancel,
	}
}

// AddJob registers a job. Jobs added after Start are not run.
func (s *Scheduler) AddJob(name string, interval time.Duration, fn func(ctx context.Context) error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if interval <= 0 {
		interval = time.Hour
	}

	s.jobs = append(s.jobs, Job{
		Name:     name,
		Interval: interval,
		Fn:       fn,
	})
	slog.Info("cron job registered", "name", name, "interval", interval.String())
}

// Jobs returns the registered job names.
func (s *Scheduler) Jobs() []string {
	s.mu.Lock()
	defer s.mu.Unlock()

	names := make([]string, 0, len(s.jobs))
	for _, job := range s.jobs {
		names = append(names, job.Name)
	}
	return names
}

// Start runs every job once and then on its interval.
func (s *Scheduler) Start() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.started {
		return
	}
	s.started = true

	for _, job := range s.jobs {
		s.wg.Add(1)
		go s.runJob(job)
	}

	slog.Info("cron scheduler started", "job_count", len(s.jobs))
}

// Stop cancels running jobs and waits for them to return.
func (s *Scheduler) Stop() {
	s.cancel()
	s.wg.Wait()
	slog.Info("cron scheduler stopped")
}

func (s *Scheduler) runJob(job Job) {
	defer s.wg.Done()

	ticker := time.NewTicker(job.Interval)
	defer ticker.Stop()

	s.executeJob(s.ctx, job)

	for {
		select {
		case <-s.ctx.Done():
			return
		case <-ticker.C:
			s.executeJob(s.ctx, job)
		}
	}
}

func (s *Scheduler) executeJob(ctx context.Context, job Job) {
	start := time.Now()

	err := safeRun(ctx, job.Fn)
	if err != nil {
		slog.Error("cron job failed", "name", job.Name, "error", err, "duration", time.Since(start))
		return
	}
	slog.Debug("cron job completed", "name", job.Name, "duration", time.Since(start))
}

func safeRun(ctx context.Context, fn func(ctx context.Context) error) (err error) {
	defer func() {
		if p := recover(); p != nil {
			err = fmt.Errorf("panic: %v", p)
		}
	}()
	return fn(ctx)
}

// RunOnce runs every job once, synchronously.
func (s *Scheduler) RunOnce(ctx context.Context) {
	s.mu.Lock()
	jobs := append([]Job(nil), s.jobs...)
	s.mu.Unlock()

	for _, job := range jobs {
		s.executeJob(ctx, job)
	}
}
