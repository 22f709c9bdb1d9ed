package version

import (
	"runtime"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestGetInfo(t *testing.T) {
	info := GetInfo()

	assert.Equal(t, Version, info.Version)
	assert.Equal(t, Commit, info.Commit)
	assert.Equal(t, runtime.Version(), info.GoVersion)
	assert.Contains(t, info.Platform, runtime.GOOS)
}

func TestString_ShortensCommit(t *testing.T) {
	info := Info{
		Version:   "1.2.3",
		Commit:    "0123456789abcdef",
		Date:      "2026-08-26",
		GoVersion: "go1.24.0",
		Platform:  "linux/amd64",
	}

	s := info.String()
	assert.Contains(t, s, "scriptsmith 1.2.3")
	assert.Contains(t, s, "01234567")
	assert.NotContains(t, s, "0123456789abcdef")
}

func TestShort(t *testing.T) {
	assert.Equal(t, "1.2.3", Info{Version: "1.2.3"}.Short())
}
