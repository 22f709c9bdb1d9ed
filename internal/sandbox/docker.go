package sandbox

import (
	"bytes"
	"context"
	"fmt"
	"os/exec"
	"strconv"
	"strings"
)

// DockerRuntime drives the docker CLI. It is the production Runtime.
type DockerRuntime struct{}

// NewDockerRuntime creates a DockerRuntime.
func NewDockerRuntime() *DockerRuntime {
	return &DockerRuntime{}
}

// Available checks that the docker daemon answers.
func (d *DockerRuntime) Available(ctx context.Context) error {
	cmd := exec.CommandContext(ctx, "docker", "version", "--format", "{{.Server.Version}}")
	if err := cmd.Run(); err != nil {
		return fmt.Errorf("docker is not available: %w", err)
	}
	return nil
}

// Build builds the bundle directory into an image. BuildKit writes its
// progress and warnings to stderr even when the build succeeds, so both
// streams are captured into the returned build log.
func (d *DockerRuntime) Build(ctx context.Context, dir, tag string) (string, error) {
	cmd := exec.CommandContext(ctx, "docker", "build", "-t", tag, dir)

	var combined bytes.Buffer
	cmd.Stdout = &combined
	cmd.Stderr = &combined

	if err := cmd.Run(); err != nil {
		return combined.String(), fmt.Errorf("docker build failed: %w", err)
	}
	return combined.String(), nil
}

// Start launches a detached container with the bundle's resource
// limits and security constraints, and returns the container id.
func (d *DockerRuntime) Start(ctx context.Context, opts StartOptions) (string, error) {
	args := []string{"run", "-d"}

	if opts.Name != "" {
		args = append(args, "--name", opts.Name)
	}
	if opts.MemoryLimit != "" {
		args = append(args, "--memory", opts.MemoryLimit)
	}
	if opts.CPULimit != "" {
		args = append(args, "--cpus", opts.CPULimit)
	}
	if opts.Network != "" {
		args = append(args, "--network", opts.Network)
	}

	args = append(args,
		"--pids-limit", "256",
		"--cap-drop", "ALL",
	)

	if opts.ServicePort > 0 {
		args = append(args, "-p", fmt.Sprintf("%d:%d", opts.ServicePort, opts.ServicePort))
	}

	args = append(args, opts.Image)

	out, err := d.run(ctx, args...)
	if err != nil {
		return "", fmt.Errorf("docker run failed: %w", err)
	}
	return strings.TrimSpace(out), nil
}

// Inspect reads the container's state. Only the inspected state, not
// the container's output, determines how a run is classified.
func (d *DockerRuntime) Inspect(ctx context.Context, id string) (*ContainerState, error) {
	out, err := d.run(ctx, "inspect", "-f", "{{.State.Running}} {{.State.ExitCode}}", id)
	if err != nil {
		return nil, fmt.Errorf("docker inspect failed: %w", err)
	}

	fields := strings.Fields(strings.TrimSpace(out))
	if len(fields) != 2 {
		return nil, fmt.Errorf("unexpected inspect output: %q", out)
	}

	running := fields[0] == "true"
	exitCode, err := strconv.Atoi(fields[1])
	if err != nil {
		return nil, fmt.Errorf("unexpected exit code in inspect output: %q", out)
	}

	return &ContainerState{Running: running, ExitCode: exitCode}, nil
}

// Logs returns the combined stdout and stderr of the container.
func (d *DockerRuntime) Logs(ctx context.Context, id string) (string, error) {
	cmd := exec.CommandContext(ctx, "docker", "logs", id)

	var combined bytes.Buffer
	cmd.Stdout = &combined
	cmd.Stderr = &combined

	if err := cmd.Run(); err != nil {
		return combined.String(), fmt.Errorf("docker logs failed: %w", err)
	}
	return combined.String(), nil
}

// Stop terminates the container with a short grace period.
func (d *DockerRuntime) Stop(ctx context.Context, id string) error {
	if _, err := d.run(ctx, "stop", "-t", "2", id); err != nil {
		return fmt.Errorf("docker stop failed: %w", err)
	}
	return nil
}

// Remove deletes the container.
func (d *DockerRuntime) Remove(ctx context.Context, id string) error {
	if _, err := d.run(ctx, "rm", "-f", id); err != nil {
		return fmt.Errorf("docker rm failed: %w", err)
	}
	return nil
}

func (d *DockerRuntime) run(ctx context.Context, args ...string) (string, error) {
	cmd := exec.CommandContext(ctx, "docker", args...)

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		if stderr.Len() > 0 {
			return stdout.String(), fmt.Errorf("%s: %w", strings.TrimSpace(stderr.String()), err)
		}
		return stdout.String(), err
	}
	return stdout.String(), nil
}
