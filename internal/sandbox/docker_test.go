package sandbox

import (
	"context"
	"os"
	"path/filepath"
	"runtime"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// stubDocker puts a shell script named docker first on PATH so the
// runtime's CLI calls hit the script instead of a real daemon.
func stubDocker(t *testing.T, script string) {
	t.Helper()
	if runtime.GOOS == "windows" {
		t.Skip("shell stub requires a POSIX shell")
	}

	dir := t.TempDir()
	path := filepath.Join(dir, "docker")
	require.NoError(t, os.WriteFile(path, []byte("#!/bin/sh\n"+script), 0o755))
	t.Setenv("PATH", dir+string(os.PathListSeparator)+os.Getenv("PATH"))
}

func TestBuild_KeepsStderrOnSuccess(t *testing.T) {
	// BuildKit reports progress and warnings on stderr even for a
	// successful build; the build log must keep both streams.
	stubDocker(t, `echo "step 1/1 : FROM golang"
echo "warning: legacy builder is deprecated" >&2
exit 0
`)

	out, err := NewDockerRuntime().Build(context.Background(), t.TempDir(), "scriptsmith/test")
	require.NoError(t, err)

	assert.Contains(t, out, "step 1/1")
	assert.Contains(t, out, "warning: legacy builder is deprecated")
}

func TestBuild_ReturnsOutputOnFailure(t *testing.T) {
	stubDocker(t, `echo "step 1/2 : FROM golang"
echo "step 2/2 failed: syntax error" >&2
exit 1
`)

	out, err := NewDockerRuntime().Build(context.Background(), t.TempDir(), "scriptsmith/test")
	require.Error(t, err)

	assert.Contains(t, out, "step 2/2 failed")
}
