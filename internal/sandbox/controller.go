package sandbox

import (
	"context"
	"path/filepath"
	"time"

	"github.com/google/uuid"

	"scriptsmith/internal/bundle"
	"scriptsmith/internal/errors"
	"scriptsmith/internal/log"
)

// Options bound the build and run phases.
type Options struct {
	BuildTimeout time.Duration
	RunTimeout   time.Duration
	PollInterval time.Duration

	// ServiceWarmup is how long a service container must stay up
	// before the run counts as succeeded.
	ServiceWarmup time.Duration

	// MemoryLimit and CPULimit are configured ceilings in docker
	// syntax ("512m", "0.5"). A bundle's estimated footprint is used
	// up to the ceiling, never past it.
	MemoryLimit string
	CPULimit    string

	// Network is the docker network mode for containers.
	Network string
}

// DefaultOptions returns the controller's standard timings and limits.
func DefaultOptions() Options {
	return Options{
		BuildTimeout:  5 * time.Minute,
		RunTimeout:    2 * time.Minute,
		PollInterval:  2 * time.Second,
		ServiceWarmup: 5 * time.Second,
		MemoryLimit:   "512m",
		CPULimit:      "0.5",
		Network:       "bridge",
	}
}

// Controller runs bundles through the staged/building/running
// lifecycle and classifies the outcome.
type Controller struct {
	runtime Runtime
	logger  *log.Logger
	opts    Options
}

// NewController creates a Controller.
func NewController(rt Runtime, logger *log.Logger, opts Options) *Controller {
	return &Controller{
		runtime: rt,
		logger:  logger.With("component", "sandbox"),
		opts:    opts,
	}
}

// Execute builds and runs a written bundle and returns the execution
// record. A record is returned even on failure so the caller can
// inspect the build output and captured logs.
//
// Classification comes from the container's inspected state alone: a
// program that exits zero succeeded, and a service that is still up
// after its warmup succeeded, no matter what either wrote to stderr.
func (c *Controller) Execute(ctx context.Context, b *bundle.Bundle) (*ExecutionRecord, error) {
	if b.Dir == "" {
		return nil, errors.New(errors.ErrCodeSandboxBuild, errors.StageExecution,
			"bundle has not been written to disk")
	}

	rec := &ExecutionRecord{
		ID:        uuid.NewString(),
		BundleDir: b.Dir,
		Image:     "scriptsmith/" + filepath.Base(b.Dir),
		Status:    StatusStaged,
		StartedAt: time.Now().UTC(),
	}

	c.logger.Info("execution staged",
		"execution_id", rec.ID, "bundle", b.Dir, "kind", b.Descriptor.Kind)

	if err := c.build(ctx, rec); err != nil {
		return rec, err
	}
	return rec, c.runAndWatch(ctx, b, rec)
}

func (c *Controller) build(ctx context.Context, rec *ExecutionRecord) error {
	rec.Status = StatusBuilding
	c.logger.Info("building image", "execution_id", rec.ID, "image", rec.Image)

	buildCtx, cancel := context.WithTimeout(ctx, c.opts.BuildTimeout)
	defer cancel()

	out, err := c.runtime.Build(buildCtx, rec.BundleDir, rec.Image)
	rec.BuildLog = out
	if err != nil {
		rec.Status = StatusFailed
		rec.EndedAt = time.Now().UTC()
		return errors.NewSandboxBuildFailure(err)
	}
	return nil
}

func (c *Controller) runAndWatch(ctx context.Context, b *bundle.Bundle, rec *ExecutionRecord) error {
	opts := StartOptions{
		Image:       rec.Image,
		Name:        "scriptsmith-" + rec.ID[:8],
		MemoryLimit: effectiveMemory(b.Descriptor.MemoryLimitMB, c.opts.MemoryLimit),
		CPULimit:    effectiveCPU(b.Descriptor.CPUCores, c.opts.CPULimit),
		Network:     c.opts.Network,
	}
	if b.Descriptor.Kind == bundle.KindService {
		opts.ServicePort = b.Descriptor.ServicePort
	}

	id, err := c.runtime.Start(ctx, opts)
	if err != nil {
		rec.Status = StatusFailed
		rec.EndedAt = time.Now().UTC()
		return errors.Wrap(errors.ErrCodeSandboxStart, errors.StageExecution,
			"container start failed", err)
	}

	rec.ContainerID = id
	rec.Status = StatusRunning
	c.logger.Info("container running", "execution_id", rec.ID, "container", id)

	deadline := time.Now().Add(c.opts.RunTimeout)
	launched := time.Now()

	for {
		state, err := c.runtime.Inspect(ctx, id)
		if err != nil {
			c.finish(ctx, rec, StatusFailed, 0)
			return errors.Wrap(errors.ErrCodeSandboxStart, errors.StageExecution,
				"container state unobservable", err)
		}

		if !state.Running {
			status := StatusFailed
			if state.ExitCode == 0 {
				status = StatusSucceeded
			}
			c.finish(ctx, rec, status, state.ExitCode)
			return nil
		}

		if b.Descriptor.Kind == bundle.KindService && time.Since(launched) >= c.opts.ServiceWarmup {
			// Still up past warmup: the service came up. It is left
			// running; only its logs so far are captured.
			if out, err := c.runtime.Logs(ctx, id); err == nil {
				rec.RawLog = out
			}
			rec.Status = StatusSucceeded
			rec.EndedAt = time.Now().UTC()
			c.logger.Info("service running, leaving container up",
				"execution_id", rec.ID, "container", id, "port", b.Descriptor.ServicePort)
			return nil
		}

		if time.Now().After(deadline) {
			c.stopContainer(ctx, id)
			c.finish(ctx, rec, StatusTimedOut, 0)
			return errors.NewSandboxTimeout(c.opts.RunTimeout.String())
		}

		select {
		case <-ctx.Done():
			// A caller interrupt is not a timeout; the run is recorded
			// as failed. Cleanup gets a fresh context so the stop and
			// removal still go through.
			cleanup := context.WithoutCancel(ctx)
			c.stopContainer(cleanup, rec.ContainerID)
			c.finish(cleanup, rec, StatusFailed, 0)
			return ctx.Err()
		case <-time.After(c.opts.PollInterval):
		}
	}
}

// finish captures the logs, records the terminal state, and removes
// the container. Log capture happens before removal or the output is
// gone.
func (c *Controller) finish(ctx context.Context, rec *ExecutionRecord, status Status, exitCode int) {
	if out, err := c.runtime.Logs(ctx, rec.ContainerID); err == nil {
		rec.RawLog = out
	} else {
		c.logger.Warn("could not capture container logs",
			"execution_id", rec.ID, "error", err)
	}

	if err := c.runtime.Remove(ctx, rec.ContainerID); err != nil {
		c.logger.Warn("could not remove container",
			"execution_id", rec.ID, "error", err)
	}

	rec.Status = status
	rec.ExitCode = exitCode
	rec.EndedAt = time.Now().UTC()

	c.logger.Info("execution finished",
		"execution_id", rec.ID,
		"status", status,
		"exit_code", exitCode,
		"duration", rec.Duration().Round(time.Millisecond))
}

func (c *Controller) stopContainer(ctx context.Context, id string) {
	if err := c.runtime.Stop(ctx, id); err != nil {
		c.logger.Warn("could not stop container", "container", id, "error", err)
	}
}
