// Package sandbox builds and runs packaged bundles in isolated
// containers and reports how each run ended. Success and failure are
// judged from the container's inspected state, never from what the
// program wrote to stderr.
package sandbox

import (
	"context"
	"time"
)

// Status is the lifecycle state of one execution.
type Status string

const (
	StatusStaged    Status = "STAGED"
	StatusBuilding  Status = "BUILDING"
	StatusRunning   Status = "RUNNING"
	StatusSucceeded Status = "SUCCEEDED"
	StatusFailed    Status = "FAILED"
	StatusTimedOut  Status = "TIMED_OUT"
)

// Terminal reports whether the status is an end state.
func (s Status) Terminal() bool {
	switch s {
	case StatusSucceeded, StatusFailed, StatusTimedOut:
		return true
	}
	return false
}

// StartOptions shape the container the runtime launches.
type StartOptions struct {
	Image       string
	Name        string
	MemoryLimit string
	CPULimit    string
	Network     string
	ServicePort int
}

// ContainerState is the inspected state of a running or exited
// container. ExitCode is meaningful only when Running is false.
type ContainerState struct {
	Running  bool
	ExitCode int
}

// Runtime abstracts the container engine. The production
// implementation shells out to the docker CLI; tests substitute a fake.
type Runtime interface {
	// Build builds the bundle directory into an image and returns the
	// build output.
	Build(ctx context.Context, dir, tag string) (string, error)

	// Start launches a detached container and returns its identifier.
	Start(ctx context.Context, opts StartOptions) (string, error)

	// Inspect reports the container's current state.
	Inspect(ctx context.Context, id string) (*ContainerState, error)

	// Logs returns the container's combined output so far.
	Logs(ctx context.Context, id string) (string, error)

	// Stop terminates the container. Used for service shutdown and
	// timeout cleanup.
	Stop(ctx context.Context, id string) error

	// Remove deletes the stopped container.
	Remove(ctx context.Context, id string) error
}

// ExecutionRecord is the full account of one sandbox run.
type ExecutionRecord struct {
	ID          string
	BundleDir   string
	Image       string
	ContainerID string
	Status      Status
	ExitCode    int
	BuildLog    string
	RawLog      string
	StartedAt   time.Time
	EndedAt     time.Time
}

// Duration is the wall-clock span of the run.
func (r *ExecutionRecord) Duration() time.Duration {
	if r.EndedAt.IsZero() || r.StartedAt.IsZero() {
		return 0
	}
	return r.EndedAt.Sub(r.StartedAt)
}
