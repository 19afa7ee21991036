// Package cron runs named maintenance jobs on fixed intervals.
package cron

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/cockroachdb/errors"
	"go.uber.org/zap"
)

type Status string

const (
	StatusIdle    Status = "idle"
	StatusRunning Status = "running"
	StatusOK      Status = "ok"
	StatusFailed  Status = "failed"
)

// ErrUnknownJob is returned by Trigger for names that were never registered.
var ErrUnknownJob = errors.New("unknown job")

type Job struct {
	Name        string
	Description string
	Interval    time.Duration
	Fn          func(ctx context.Context) error
}

// Snapshot is the reportable state of one job.
type Snapshot struct {
	Name        string     `json:"name"`
	Description string     `json:"description"`
	Status      Status     `json:"status"`
	Message     string     `json:"message,omitempty"`
	LastRunAt   *time.Time `json:"lastRunAt,omitempty"`
	NextRunAt   time.Time  `json:"nextRunAt"`
}

type entry struct {
	job Job

	mu      sync.Mutex
	status  Status
	message string
	lastRun *time.Time
	nextRun time.Time
}

type Scheduler struct {
	mu     sync.RWMutex
	jobs   map[string]*entry
	logger *zap.Logger
	now    func() time.Time
}

func New(logger *zap.Logger) *Scheduler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Scheduler{
		jobs:   make(map[string]*entry),
		logger: logger.Named("cron"),
		now:    time.Now,
	}
}

// Register adds a job. Jobs registered after Start are not scheduled.
func (s *Scheduler) Register(job Job) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.jobs[job.Name] = &entry{job: job, status: StatusIdle, nextRun: s.now().Add(job.Interval)}
}

// Start schedules every registered job until ctx is done.
func (s *Scheduler) Start(ctx context.Context) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, e := range s.jobs {
		go s.loop(ctx, e)
	}
}

func (s *Scheduler) loop(ctx context.Context, e *entry) {
	t := time.NewTicker(e.job.Interval)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-t.C:
			s.run(ctx, e)
		}
	}
}

// run executes e unless a previous run is still going.
func (s *Scheduler) run(ctx context.Context, e *entry) {
	e.mu.Lock()
	if e.status == StatusRunning {
		e.mu.Unlock()
		return
	}
	e.status = StatusRunning
	e.mu.Unlock()

	started := s.now()
	err := e.job.Fn(ctx)

	e.mu.Lock()
	defer e.mu.Unlock()
	e.lastRun = &started
	e.nextRun = s.now().Add(e.job.Interval)
	if err != nil {
		e.status, e.message = StatusFailed, err.Error()
		s.logger.Warn("job failed", zap.String("job", e.job.Name), zap.Error(err))
		return
	}
	e.status, e.message = StatusOK, ""
	s.logger.Debug("job finished", zap.String("job", e.job.Name), zap.Duration("took", s.now().Sub(started)))
}

// Trigger runs a job now in the background.
func (s *Scheduler) Trigger(ctx context.Context, name string) error {
	s.mu.RLock()
	e, ok := s.jobs[name]
	s.mu.RUnlock()
	if !ok {
		return errors.Wrapf(ErrUnknownJob, "%q", name)
	}
	go s.run(context.WithoutCancel(ctx), e)
	return nil
}

// List returns every job sorted by name.
func (s *Scheduler) List() []Snapshot {
	s.mu.RLock()
	out := make([]Snapshot, 0, len(s.jobs))
	for _, e := range s.jobs {
		e.mu.Lock()
		out = append(out, Snapshot{
			Name:        e.job.Name,
			Description: e.job.Description,
			Status:      e.status,
			Message:     e.message,
			LastRunAt:   e.lastRun,
			NextRunAt:   e.nextRun,
		})
		e.mu.Unlock()
	}
	s.mu.RUnlock()
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}
