// Package config loads scriptsmith configuration from a config file and
// the environment. The result is an immutable Config value passed into
// component constructors; nothing reads configuration ambiently.
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	"scriptsmith/internal/errors"
)

// Config holds all configuration for a pipeline run.
type Config struct {
	Oracle    OracleConfig    `mapstructure:"oracle"`
	Sandbox   SandboxConfig   `mapstructure:"sandbox"`
	Workspace WorkspaceConfig `mapstructure:"workspace"`
	Log       LogConfig       `mapstructure:"log"`
}

// OracleConfig holds generation oracle settings.
type OracleConfig struct {
	// Provider selects the oracle backend ("anthropic").
	Provider string `mapstructure:"provider"`
	// Model is the model identifier passed to the backend.
	Model string `mapstructure:"model"`
	// APIKey authenticates against the backend. Falls back to the
	// provider's conventional environment variable when empty.
	APIKey string `mapstructure:"api_key"`
	// Temperature controls generation randomness.
	Temperature float64 `mapstructure:"temperature"`
	// MaxTokens is the response token ceiling per call.
	MaxTokens int `mapstructure:"max_tokens"`
}

// SandboxConfig holds sandbox runtime limits.
type SandboxConfig struct {
	// BaseImage is the builder image for generated programs.
	BaseImage string `mapstructure:"base_image"`
	// MemoryLimit caps container memory, docker syntax ("512m").
	MemoryLimit string `mapstructure:"memory_limit"`
	// CPULimit caps container CPU ("0.5").
	CPULimit string `mapstructure:"cpu_limit"`
	// Network is the docker network mode for service bundles.
	Network string `mapstructure:"network"`
	// BuildTimeout bounds the sandbox build step.
	BuildTimeout time.Duration `mapstructure:"build_timeout"`
	// RunTimeout bounds the wait for a terminal state after start.
	RunTimeout time.Duration `mapstructure:"run_timeout"`
	// PollInterval is the status inspection cadence while running.
	PollInterval time.Duration `mapstructure:"poll_interval"`
}

// WorkspaceConfig holds filesystem roots for persisted bundles.
type WorkspaceConfig struct {
	// BundleRoot is where bundle directories are materialized.
	BundleRoot string `mapstructure:"bundle_root"`
	// ArchiveRoot is where completed bundles are archived.
	ArchiveRoot string `mapstructure:"archive_root"`
}

// LogConfig holds logging settings.
type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

const envPrefix = "SCRIPTSMITH"

// Load reads configuration from an optional YAML file plus environment
// overrides. A .env file in the working directory is loaded first so
// local development matches container deployment.
func Load(path string) (Config, error) {
	// Best effort; a missing .env is the normal case.
	_ = godotenv.Load()

	v := viper.New()
	setDefaults(v)

	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return Config{}, errors.Wrap(errors.ErrCodeConfigInvalid, errors.StageAnalysis,
				fmt.Sprintf("read config file %s", path), err)
		}
	} else {
		v.SetConfigName("scriptsmith")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("$HOME/.scriptsmith")
		if err := v.ReadInConfig(); err != nil {
			if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
				return Config{}, errors.Wrap(errors.ErrCodeConfigInvalid, errors.StageAnalysis,
					"read config file", err)
			}
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, errors.Wrap(errors.ErrCodeConfigInvalid, errors.StageAnalysis,
			"unmarshal config", err)
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}

	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("oracle.provider", "anthropic")
	v.SetDefault("oracle.model", "claude-sonnet-4-20250514")
	v.SetDefault("oracle.temperature", 0.2)
	v.SetDefault("oracle.max_tokens", 4096)

	v.SetDefault("sandbox.base_image", "golang:1.24-alpine")
	v.SetDefault("sandbox.memory_limit", "512m")
	v.SetDefault("sandbox.cpu_limit", "0.5")
	v.SetDefault("sandbox.network", "bridge")
	v.SetDefault("sandbox.build_timeout", 5*time.Minute)
	v.SetDefault("sandbox.run_timeout", 2*time.Minute)
	v.SetDefault("sandbox.poll_interval", 2*time.Second)

	v.SetDefault("workspace.bundle_root", "generated_bundles")
	v.SetDefault("workspace.archive_root", "archives")

	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "text")
}

// Validate checks that the configuration is internally consistent.
func (c Config) Validate() error {
	if c.Oracle.Model == "" {
		return errors.New(errors.ErrCodeConfigInvalid, errors.StageAnalysis, "oracle model must be set")
	}
	if c.Oracle.Temperature < 0 || c.Oracle.Temperature > 2 {
		return errors.New(errors.ErrCodeConfigInvalid, errors.StageAnalysis,
			fmt.Sprintf("oracle temperature %.2f outside [0, 2]", c.Oracle.Temperature))
	}
	if c.Oracle.MaxTokens <= 0 {
		return errors.New(errors.ErrCodeConfigInvalid, errors.StageAnalysis, "oracle max_tokens must be positive")
	}
	if c.Sandbox.BuildTimeout <= 0 || c.Sandbox.RunTimeout <= 0 {
		return errors.New(errors.ErrCodeConfigInvalid, errors.StageAnalysis, "sandbox timeouts must be positive")
	}
	if c.Sandbox.PollInterval <= 0 {
		return errors.New(errors.ErrCodeConfigInvalid, errors.StageAnalysis, "sandbox poll_interval must be positive")
	}
	if c.Workspace.BundleRoot == "" {
		return errors.New(errors.ErrCodeConfigInvalid, errors.StageAnalysis, "workspace bundle_root must be set")
	}
	return nil
}
