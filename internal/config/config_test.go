package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	wd, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(t.TempDir()))
	t.Cleanup(func() { _ = os.Chdir(wd) })

	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, "anthropic", cfg.Oracle.Provider)
	assert.Equal(t, 0.2, cfg.Oracle.Temperature)
	assert.Equal(t, 4096, cfg.Oracle.MaxTokens)
	assert.Equal(t, "golang:1.24-alpine", cfg.Sandbox.BaseImage)
	assert.Equal(t, 5*time.Minute, cfg.Sandbox.BuildTimeout)
	assert.Equal(t, "generated_bundles", cfg.Workspace.BundleRoot)
}

func TestLoad_FileOverrides(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "scriptsmith.yaml")
	content := `
oracle:
  model: claude-haiku-4-5-20251001
  temperature: 0.7
  max_tokens: 2048
sandbox:
  memory_limit: 1g
  run_timeout: 30s
workspace:
  bundle_root: /tmp/bundles
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "claude-haiku-4-5-20251001", cfg.Oracle.Model)
	assert.Equal(t, 0.7, cfg.Oracle.Temperature)
	assert.Equal(t, 2048, cfg.Oracle.MaxTokens)
	assert.Equal(t, "1g", cfg.Sandbox.MemoryLimit)
	assert.Equal(t, 30*time.Second, cfg.Sandbox.RunTimeout)
	assert.Equal(t, "/tmp/bundles", cfg.Workspace.BundleRoot)
	// Untouched values keep defaults.
	assert.Equal(t, "0.5", cfg.Sandbox.CPULimit)
}

func TestValidate(t *testing.T) {
	base := func() Config {
		return Config{
			Oracle: OracleConfig{
				Provider:    "anthropic",
				Model:       "claude-sonnet-4-20250514",
				Temperature: 0.2,
				MaxTokens:   4096,
			},
			Sandbox: SandboxConfig{
				BaseImage:    "golang:1.24-alpine",
				BuildTimeout: time.Minute,
				RunTimeout:   time.Minute,
				PollInterval: time.Second,
			},
			Workspace: WorkspaceConfig{BundleRoot: "generated_bundles"},
		}
	}

	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{"valid", func(c *Config) {}, ""},
		{"missing model", func(c *Config) { c.Oracle.Model = "" }, "model"},
		{"temperature out of range", func(c *Config) { c.Oracle.Temperature = 3 }, "temperature"},
		{"non-positive tokens", func(c *Config) { c.Oracle.MaxTokens = 0 }, "max_tokens"},
		{"zero run timeout", func(c *Config) { c.Sandbox.RunTimeout = 0 }, "timeouts"},
		{"missing bundle root", func(c *Config) { c.Workspace.BundleRoot = "" }, "bundle_root"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := base()
			tt.mutate(&cfg)
			err := cfg.Validate()
			if tt.wantErr == "" {
				assert.NoError(t, err)
			} else {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.wantErr)
			}
		})
	}
}
