package sandbox

import (
	"context"
	"io"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"scriptsmith/internal/bundle"
	"scriptsmith/internal/errors"
	"scriptsmith/internal/log"
)

// fakeRuntime replays a scripted sequence of inspect states.
type fakeRuntime struct {
	buildErr error
	startErr error

	states []ContainerState
	polls  int

	logs string

	built   bool
	stopped bool
	removed bool
	started StartOptions
}

func (f *fakeRuntime) Build(_ context.Context, _, _ string) (string, error) {
	f.built = true
	if f.buildErr != nil {
		return "step 4/4 failed", f.buildErr
	}
	return "step 4/4 ok\nwarning: legacy builder is deprecated", nil
}

func (f *fakeRuntime) Start(_ context.Context, opts StartOptions) (string, error) {
	f.started = opts
	if f.startErr != nil {
		return "", f.startErr
	}
	return "container-1", nil
}

func (f *fakeRuntime) Inspect(_ context.Context, _ string) (*ContainerState, error) {
	idx := f.polls
	if idx >= len(f.states) {
		idx = len(f.states) - 1
	}
	f.polls++
	state := f.states[idx]
	return &state, nil
}

func (f *fakeRuntime) Logs(_ context.Context, _ string) (string, error) { return f.logs, nil }
func (f *fakeRuntime) Stop(_ context.Context, _ string) error           { f.stopped = true; return nil }
func (f *fakeRuntime) Remove(_ context.Context, _ string) error         { f.removed = true; return nil }

func testLogger() *log.Logger {
	return log.New(log.Config{Level: log.LevelError, Format: log.FormatText, Output: io.Discard})
}

func fastOptions() Options {
	return Options{
		BuildTimeout:  time.Second,
		RunTimeout:    200 * time.Millisecond,
		PollInterval:  5 * time.Millisecond,
		ServiceWarmup: 20 * time.Millisecond,
	}
}

func batchBundle() *bundle.Bundle {
	return &bundle.Bundle{
		Name: "ratio-calculation",
		Dir:  "/tmp/bundles/ratio-calculation-20260826-abcd1234",
		Manifest: &bundle.Manifest{
			Name:     "ratio_calculation",
			Checksum: "abcd1234",
		},
		Descriptor: &bundle.Descriptor{
			Kind:          bundle.KindBatch,
			MemoryLimitMB: 64,
			CPUCores:      0.25,
		},
	}
}

func serviceBundle() *bundle.Bundle {
	b := batchBundle()
	b.Descriptor.Kind = bundle.KindService
	b.Descriptor.ServicePort = 8080
	return b
}

func TestExecute_BatchExitZeroSucceeds(t *testing.T) {
	rt := &fakeRuntime{
		states: []ContainerState{
			{Running: true},
			{Running: false, ExitCode: 0},
		},
		logs: "=== BEGIN-RESULTS ===\nratio: 1.25\n=== END-RESULTS ===\n",
	}
	c := NewController(rt, testLogger(), fastOptions())

	rec, err := c.Execute(context.Background(), batchBundle())
	require.NoError(t, err)

	assert.Equal(t, StatusSucceeded, rec.Status)
	assert.Equal(t, 0, rec.ExitCode)
	assert.Contains(t, rec.RawLog, "ratio: 1.25")
	assert.True(t, rt.removed)
	assert.NotEmpty(t, rec.ID)
	assert.False(t, rec.EndedAt.IsZero())

	// Build output, warnings included, is kept even on success.
	assert.Contains(t, rec.BuildLog, "warning: legacy builder")
}

func TestExecute_StderrWarningsDoNotFailTheRun(t *testing.T) {
	// The program complained loudly on stderr but exited zero. The
	// inspected state wins.
	rt := &fakeRuntime{
		states: []ContainerState{{Running: false, ExitCode: 0}},
		logs:   "ERROR retrying connection\nWARN deprecated flag\nratio: 1.25\n",
	}
	c := NewController(rt, testLogger(), fastOptions())

	rec, err := c.Execute(context.Background(), batchBundle())
	require.NoError(t, err)
	assert.Equal(t, StatusSucceeded, rec.Status)
}

func TestExecute_NonZeroExitFails(t *testing.T) {
	rt := &fakeRuntime{
		states: []ContainerState{{Running: false, ExitCode: 2}},
		logs:   "panic: index out of range",
	}
	c := NewController(rt, testLogger(), fastOptions())

	rec, err := c.Execute(context.Background(), batchBundle())
	require.NoError(t, err)

	assert.Equal(t, StatusFailed, rec.Status)
	assert.Equal(t, 2, rec.ExitCode)
	assert.Contains(t, rec.RawLog, "panic")
	assert.True(t, rt.removed)
}

func TestExecute_BuildFailure(t *testing.T) {
	rt := &fakeRuntime{buildErr: assert.AnError}
	c := NewController(rt, testLogger(), fastOptions())

	rec, err := c.Execute(context.Background(), batchBundle())
	require.Error(t, err)

	var pe *errors.PipelineError
	require.ErrorAs(t, err, &pe)
	assert.Equal(t, errors.ErrCodeSandboxBuild, pe.Code)

	assert.Equal(t, StatusFailed, rec.Status)
	assert.Equal(t, "step 4/4 failed", rec.BuildLog)
}

func TestExecute_StartFailure(t *testing.T) {
	rt := &fakeRuntime{startErr: assert.AnError}
	c := NewController(rt, testLogger(), fastOptions())

	rec, err := c.Execute(context.Background(), batchBundle())
	require.Error(t, err)

	var pe *errors.PipelineError
	require.ErrorAs(t, err, &pe)
	assert.Equal(t, errors.ErrCodeSandboxStart, pe.Code)
	assert.Equal(t, StatusFailed, rec.Status)
}

func TestExecute_BatchTimeout(t *testing.T) {
	rt := &fakeRuntime{
		states: []ContainerState{{Running: true}},
		logs:   "INFO still working",
	}
	c := NewController(rt, testLogger(), fastOptions())

	rec, err := c.Execute(context.Background(), batchBundle())
	require.Error(t, err)

	var pe *errors.PipelineError
	require.ErrorAs(t, err, &pe)
	assert.Equal(t, errors.ErrCodeSandboxTimeout, pe.Code)

	assert.Equal(t, StatusTimedOut, rec.Status)
	assert.True(t, rt.stopped)
	assert.True(t, rt.removed)
	assert.Contains(t, rec.RawLog, "still working")
}

func TestExecute_ServiceUpPastWarmupSucceeds(t *testing.T) {
	rt := &fakeRuntime{
		states: []ContainerState{{Running: true}},
		logs:   "INFO listening on :8080",
	}
	c := NewController(rt, testLogger(), fastOptions())

	rec, err := c.Execute(context.Background(), serviceBundle())
	require.NoError(t, err)

	assert.Equal(t, StatusSucceeded, rec.Status)
	assert.Contains(t, rec.RawLog, "listening")
	// The service is left running for the caller to use.
	assert.False(t, rt.stopped)
	assert.False(t, rt.removed)
}

func TestExecute_ConfiguredCeilingCapsEstimate(t *testing.T) {
	rt := &fakeRuntime{
		states: []ContainerState{{Running: false, ExitCode: 0}},
	}
	opts := fastOptions()
	opts.MemoryLimit = "256m"
	opts.CPULimit = "0.5"
	opts.Network = "none"
	c := NewController(rt, testLogger(), opts)

	b := batchBundle()
	b.Descriptor.MemoryLimitMB = 512
	b.Descriptor.CPUCores = 1.0

	_, err := c.Execute(context.Background(), b)
	require.NoError(t, err)

	assert.Equal(t, "256m", rt.started.MemoryLimit)
	assert.Equal(t, "0.5", rt.started.CPULimit)
	assert.Equal(t, "none", rt.started.Network)
}

func TestExecute_EstimateWithinCeilingIsKept(t *testing.T) {
	rt := &fakeRuntime{
		states: []ContainerState{{Running: false, ExitCode: 0}},
	}
	opts := fastOptions()
	opts.MemoryLimit = "512m"
	opts.CPULimit = "0.5"
	opts.Network = "bridge"
	c := NewController(rt, testLogger(), opts)

	_, err := c.Execute(context.Background(), batchBundle())
	require.NoError(t, err)

	assert.Equal(t, "64m", rt.started.MemoryLimit)
	assert.Equal(t, "0.25", rt.started.CPULimit)
	assert.Equal(t, "bridge", rt.started.Network)
}

func TestExecute_CallerCancellationFailsNotTimesOut(t *testing.T) {
	rt := &fakeRuntime{
		states: []ContainerState{{Running: true}},
		logs:   "INFO still working",
	}
	opts := fastOptions()
	opts.RunTimeout = time.Minute
	c := NewController(rt, testLogger(), opts)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	rec, err := c.Execute(ctx, batchBundle())
	require.ErrorIs(t, err, context.Canceled)

	assert.Equal(t, StatusFailed, rec.Status)
	assert.True(t, rt.stopped)
	assert.True(t, rt.removed)
}

func TestExecute_ServiceCrashBeforeWarmupFails(t *testing.T) {
	rt := &fakeRuntime{
		states: []ContainerState{
			{Running: true},
			{Running: false, ExitCode: 1},
		},
		logs: "FATAL bind: address already in use",
	}
	c := NewController(rt, testLogger(), fastOptions())

	rec, err := c.Execute(context.Background(), serviceBundle())
	require.NoError(t, err)
	assert.Equal(t, StatusFailed, rec.Status)
	assert.Equal(t, 1, rec.ExitCode)
}

func TestExecute_UnwrittenBundleRejected(t *testing.T) {
	b := batchBundle()
	b.Dir = ""
	c := NewController(&fakeRuntime{}, testLogger(), fastOptions())

	_, err := c.Execute(context.Background(), b)
	require.Error(t, err)
}

func TestEffectiveMemory(t *testing.T) {
	tests := []struct {
		name       string
		estimateMB int
		configured string
		want       string
	}{
		{"estimate below ceiling", 64, "512m", "64m"},
		{"estimate above ceiling", 768, "512m", "512m"},
		{"gigabyte ceiling", 2048, "1g", "1g"},
		{"no ceiling", 64, "", "64m"},
		{"no estimate", 0, "512m", "512m"},
		{"neither", 0, "", ""},
		{"unparsable ceiling ignored", 64, "lots", "64m"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, effectiveMemory(tt.estimateMB, tt.configured))
		})
	}
}

func TestEffectiveCPU(t *testing.T) {
	assert.Equal(t, "0.25", effectiveCPU(0.25, "0.5"))
	assert.Equal(t, "0.5", effectiveCPU(1.0, "0.5"))
	assert.Equal(t, "1.00", effectiveCPU(1.0, ""))
	assert.Equal(t, "0.5", effectiveCPU(0, "0.5"))
	assert.Equal(t, "", effectiveCPU(0, ""))
}

func TestStatusTerminal(t *testing.T) {
	assert.True(t, StatusSucceeded.Terminal())
	assert.True(t, StatusFailed.Terminal())
	assert.True(t, StatusTimedOut.Terminal())
	assert.False(t, StatusRunning.Terminal())
	assert.False(t, StatusStaged.Terminal())
}
