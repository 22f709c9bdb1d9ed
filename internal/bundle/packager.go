package bundle

import (
	"fmt"
	"go/parser"
	"go/token"
	"regexp"
	"sort"
	"strconv"
	"strings"

	"github.com/zeebo/blake3"
	"gopkg.in/yaml.v3"

	"scriptsmith/internal/analyze"
	"scriptsmith/internal/errors"
	"scriptsmith/internal/log"
	"scriptsmith/internal/plan"
	"scriptsmith/internal/synth"
)

// baselineDependencies ship with every bundle so the generated program
// always has structured logging and environment-based configuration
// available, whether or not the plan asked for them.
var baselineDependencies = []string{
	"github.com/joho/godotenv",
	"github.com/rs/zerolog",
}

const goVersion = "1.24"

// Packager turns artifacts into bundles. Packaging is deterministic:
// no clocks or randomness feed the manifest or descriptor contents.
type Packager struct {
	logger *log.Logger
}

// NewPackager creates a Packager.
func NewPackager(logger *log.Logger) *Packager {
	return &Packager{logger: logger.With("component", "packager")}
}

// Package assembles the manifest and descriptor for an accepted
// artifact. The dependency list is the union of the plan's declared
// dependencies, the modules the source actually imports, and the
// baseline set, deduplicated and sorted.
func (p *Packager) Package(spec *analyze.TaskSpecification, ep *plan.ExecutionPlan, artifact *synth.CodeArtifact) (*Bundle, error) {
	imported, err := externalImports(artifact.SourceText)
	if err != nil {
		return nil, errors.NewPackagingError("source import scan failed", err)
	}

	deps := mergeDependencies(artifact.DeclaredDependencies, imported, baselineDependencies)

	sum := blake3.Sum256([]byte(artifact.SourceText))
	manifest := &Manifest{
		Name:         ep.Name,
		GoVersion:    goVersion,
		Entrypoint:   "main.go",
		Checksum:     fmt.Sprintf("%x", sum[:]),
		Dependencies: deps,
	}

	descriptor := &Descriptor{
		Kind:          KindBatch,
		MemoryLimitMB: artifact.Report.ResourceEstimate.MemoryMB,
		CPUCores:      artifact.Report.ResourceEstimate.CPUCores,
		SecurityScore: artifact.Report.SecurityScore,
	}
	if spec.NeedsIsolatedService || ep.HasServiceStep() {
		descriptor.Kind = KindService
		descriptor.ServicePort = ep.ServicePort
	}

	p.logger.Info("bundle assembled",
		"name", manifest.Name,
		"dependencies", len(deps),
		"kind", descriptor.Kind)

	return &Bundle{
		Name:       ep.Name,
		Source:     artifact.SourceText,
		Manifest:   manifest,
		Descriptor: descriptor,
	}, nil
}

// externalImports parses the source and returns its third-party import
// paths. Standard-library paths have no dot in their first segment and
// are skipped.
func externalImports(source string) ([]string, error) {
	fset := token.NewFileSet()
	file, err := parser.ParseFile(fset, "main.go", source, parser.ImportsOnly)
	if err != nil {
		return nil, err
	}

	var out []string
	for _, imp := range file.Imports {
		path, err := strconv.Unquote(imp.Path.Value)
		if err != nil {
			continue
		}
		first := path
		if i := strings.IndexByte(path, '/'); i >= 0 {
			first = path[:i]
		}
		if strings.Contains(first, ".") {
			out = append(out, path)
		}
	}
	return out, nil
}

func mergeDependencies(lists ...[]string) []string {
	seen := make(map[string]bool)
	var out []string
	for _, list := range lists {
		for _, dep := range list {
			dep = strings.TrimSpace(dep)
			if dep == "" || seen[dep] {
				continue
			}
			seen[dep] = true
			out = append(out, dep)
		}
	}
	sort.Strings(out)
	return out
}

// envVarLookup finds the environment variables the source reads, for
// the generated env.example.
var envVarLookup = regexp.MustCompile(`os\.(?:Getenv|LookupEnv)\("([A-Z0-9_]+)"\)`)

func environmentVariables(source string) []string {
	seen := make(map[string]bool)
	var out []string
	for _, m := range envVarLookup.FindAllStringSubmatch(source, -1) {
		if !seen[m[1]] {
			seen[m[1]] = true
			out = append(out, m[1])
		}
	}
	sort.Strings(out)
	return out
}

func marshalYAML(v any) ([]byte, error) {
	var b strings.Builder
	enc := yaml.NewEncoder(&b)
	enc.SetIndent(2)
	if err := enc.Encode(v); err != nil {
		return nil, err
	}
	if err := enc.Close(); err != nil {
		return nil, err
	}
	return []byte(b.String()), nil
}
