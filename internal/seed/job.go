package seed

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/angelmondragon/storefront-backend/pkg/logger"
	"github.com/angelmondragon/storefront-backend/pkg/metrics"
)

// Job is a named seeding command.
type Job interface {
	Name() string
	Run(ctx context.Context) error
}

// Registry maps command names to jobs.
type Registry struct {
	jobs map[string]Job
}

// NewRegistry builds a registry preloaded with the provided jobs.
func NewRegistry(jobs ...Job) *Registry {
	registry := &Registry{jobs: map[string]Job{}}
	for _, job := range jobs {
		registry.Register(job)
	}
	return registry
}

// Register adds a job, replacing any job with the same name.
func (r *Registry) Register(job Job) {
	if job == nil {
		return
	}
	r.jobs[job.Name()] = job
}

// Lookup returns the job registered under name.
func (r *Registry) Lookup(name string) (Job, error) {
	job, ok := r.jobs[name]
	if !ok {
		return nil, fmt.Errorf("unknown seed command %q (available: %v)", name, r.Names())
	}
	return job, nil
}

// Names lists registered commands in sorted order.
func (r *Registry) Names() []string {
	names := make([]string, 0, len(r.jobs))
	for name := range r.jobs {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Runner executes jobs with logging and duration/outcome metrics.
type Runner struct {
	logg    *logger.Logger
	metrics *metrics.JobMetrics
}

func NewRunner(logg *logger.Logger, jobMetrics *metrics.JobMetrics) *Runner {
	if logg == nil {
		logg = logger.Nop()
	}
	return &Runner{logg: logg, metrics: jobMetrics}
}

// Run executes job once and returns its error.
func (r *Runner) Run(ctx context.Context, job Job) error {
	jobCtx := r.logg.WithField(ctx, "job", job.Name())
	jobCtx = r.logg.WithField(jobCtx, "event", "seed.job")
	r.logg.Info(jobCtx, "job start")
	start := time.Now()
	err := job.Run(jobCtx)
	duration := time.Since(start)
	r.metrics.ObserveDuration(job.Name(), duration)
	jobCtx = r.logg.WithField(jobCtx, "duration_ms", duration.Milliseconds())
	if err != nil {
		r.logg.Error(jobCtx, "job failed", err)
		r.metrics.IncFailure(job.Name())
		return err
	}
	r.logg.Info(jobCtx, "job completed")
	r.metrics.IncSuccess(job.Name())
	return nil
}
