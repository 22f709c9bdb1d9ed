// Package bundle assembles an accepted code artifact into a
// self-contained, buildable directory: source, dependency manifest,
// execution descriptor, and Dockerfile.
package bundle

import (
	"time"
)

// Kind distinguishes how the bundled program runs.
type Kind string

const (
	KindBatch   Kind = "batch"
	KindService Kind = "service"
)

// Manifest is the dependency manifest written as manifest.yaml. It is a
// pure function of the artifact and plan: packaging the same inputs
// twice yields byte-identical manifests.
type Manifest struct {
	Name         string   `yaml:"name"`
	GoVersion    string   `yaml:"go_version"`
	Entrypoint   string   `yaml:"entrypoint"`
	Checksum     string   `yaml:"checksum"`
	Dependencies []string `yaml:"dependencies"`
}

// Descriptor is the execution descriptor written as descriptor.yaml.
// The sandbox controller reads it to shape the container.
type Descriptor struct {
	Kind          Kind    `yaml:"kind"`
	ServicePort   int     `yaml:"service_port,omitempty"`
	MemoryLimitMB int     `yaml:"memory_limit_mb"`
	CPUCores      float64 `yaml:"cpu_cores"`
	SecurityScore float64 `yaml:"security_score"`
}

// Bundle is a packaged artifact ready to be written and handed to the
// sandbox. Dir is set once Write has placed it on disk.
type Bundle struct {
	Name       string
	Source     string
	Dir        string
	Manifest   *Manifest
	Descriptor *Descriptor
	CreatedAt  time.Time
}
