package cron

import (
	"context"
	"log/slog"
	"sync"
	"time"
)

// Job is a function run on a fixed interval.
type Job struct {
	Name     string
	Interval time.Duration
	Timeout  time.Duration
	Run      func(ctx context.Context) error
}

// JobStatus is the outcome of the last run of a job.
type JobStatus struct {
	Name      string    `json:"name"`
	Runs      int       `json:"runs"`
	Failures  int       `json:"failures"`
	LastRunAt time.Time `json:"last_run_at"`
	LastError string    `json:"last_error,omitempty"`
}

// Scheduler runs registered jobs in their own goroutines until Stop.
type Scheduler struct {
	jobs    []Job
	status  map[string]*JobStatus
	ctx     context.Context
	cancel  context.CancelFunc
	wg      sync.WaitGroup
	mu      sync.Mutex
	started bool
}

func NewScheduler() *Scheduler {
	ctx, cancel := context.WithCancel(context.Background())
	return &Scheduler{
		status: make(map[string]*JobStatus),
		ctx:    ctx,
		cancel: cancel,
	}
}

// AddJob registers a job. A zero timeout lets a run last as long as the interval.
func (s *Scheduler) AddJob(job Job) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if job.Timeout <= 0 {
		job.Timeout = job.Interval
	}
	s.jobs = append(s.jobs, job)
	s.status[job.Name] = &JobStatus{Name: job.Name}
	slog.Info("Cron job registered", "name", job.Name, "interval", job.Interval)
}

// Start launches every job once; further calls are no-ops.
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

	slog.Info("Cron scheduler started", "job_count", len(s.jobs))
}

// Stop cancels running jobs and waits for them to return.
func (s *Scheduler) Stop() {
	slog.Info("Stopping cron scheduler...")
	s.cancel()
	s.wg.Wait()
	slog.Info("Cron scheduler stopped")
}

func (s *Scheduler) runJob(job Job) {
	defer s.wg.Done()

	ticker := time.NewTicker(job.Interval)
	defer ticker.Stop()

	s.execute(s.ctx, job)

	for {
		select {
		case <-s.ctx.Done():
			slog.Info("Cron job stopping", "name", job.Name)
			return
		case <-ticker.C:
			s.execute(s.ctx, job)
		}
	}
}

func (s *Scheduler) execute(parent context.Context, job Job) {
	ctx, cancel := context.WithTimeout(parent, job.Timeout)
	defer cancel()

	start := time.Now()
	err := job.Run(ctx)

	s.mu.Lock()
	st := s.status[job.Name]
	st.Runs++
	st.LastRunAt = start
	st.LastError = ""
	if err != nil {
		st.Failures++
		st.LastError = err.Error()
	}
	s.mu.Unlock()

	if err != nil {
		slog.Error("Cron job failed", "name", job.Name, "error", err, "duration", time.Since(start))
		return
	}
	slog.Debug("Cron job completed", "name", job.Name, "duration", time.Since(start))
}

// RunOnce runs every job synchronously with ctx.
func (s *Scheduler) RunOnce(ctx context.Context) {
	s.mu.Lock()
	jobs := append([]Job(nil), s.jobs...)
	s.mu.Unlock()

	for _, job := range jobs {
		s.execute(ctx, job)
	}
}

// Status returns a snapshot of every job's last outcome in registration order.
func (s *Scheduler) Status() []JobStatus {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]JobStatus, 0, len(s.jobs))
	for _, job := range s.jobs {
		out = append(out, *s.status[job.Name])
	}
	return out
}
