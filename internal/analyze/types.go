package analyze

import (
	"fmt"
	"strings"
)

// Classification is the coarse kind of work a request asks for.
type Classification string

const (
	ClassificationCalculation    Classification = "calculation"
	ClassificationDataProcessing Classification = "data_processing"
	ClassificationReporting      Classification = "reporting"
	ClassificationAnalysis       Classification = "analysis"
	ClassificationService        Classification = "service"
)

var validClassifications = map[Classification]bool{
	ClassificationCalculation:    true,
	ClassificationDataProcessing: true,
	ClassificationReporting:      true,
	ClassificationAnalysis:       true,
	ClassificationService:        true,
}

// Complexity is the estimated implementation complexity of a task.
type Complexity string

const (
	ComplexityLow    Complexity = "LOW"
	ComplexityMedium Complexity = "MEDIUM"
	ComplexityHigh   Complexity = "HIGH"
)

var validComplexities = map[Complexity]bool{
	ComplexityLow:    true,
	ComplexityMedium: true,
	ComplexityHigh:   true,
}

// TaskSpecification is the structured form of a free-text request.
// Created once by the analyzer and immutable thereafter.
type TaskSpecification struct {
	// Goal is the primary objective in one sentence.
	Goal string `json:"goal"`

	// Classification is the task kind.
	Classification Classification `json:"classification"`

	// NeedsIsolatedService is true when the task asks for a long-running
	// service with an exposed endpoint rather than a run-to-completion job.
	NeedsIsolatedService bool `json:"needs_isolated_service"`

	// NeedsParameterSweep is true when the task asks for what-if
	// scenarios across varied inputs.
	NeedsParameterSweep bool `json:"needs_parameter_sweep"`

	// DataSources names external data the task depends on.
	DataSources []string `json:"data_sources"`

	// Complexity is the estimated implementation complexity.
	Complexity Complexity `json:"complexity"`
}

// Validate checks the specification against the fixed schema. The
// returned error message doubles as corrective feedback for the oracle.
func (s *TaskSpecification) Validate() error {
	var violations []string

	if strings.TrimSpace(s.Goal) == "" {
		violations = append(violations, "goal is required and must be non-empty")
	}
	if s.Classification == "" {
		violations = append(violations, "classification is required")
	} else if !validClassifications[s.Classification] {
		violations = append(violations, fmt.Sprintf(
			"classification %q is not one of calculation, data_processing, reporting, analysis, service",
			s.Classification))
	}
	if s.Complexity == "" {
		violations = append(violations, "complexity is required")
	} else if !validComplexities[s.Complexity] {
		violations = append(violations, fmt.Sprintf(
			"complexity %q is not one of LOW, MEDIUM, HIGH", s.Complexity))
	}

	if len(violations) > 0 {
		return fmt.Errorf("%s", strings.Join(violations, "; "))
	}
	return nil
}
