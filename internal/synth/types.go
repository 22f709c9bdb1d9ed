// Package synth turns an ExecutionPlan into compilable source via the
// generation oracle, cleaning the model's output and regenerating with
// corrective feedback until the code parses.
package synth

import (
	"time"

	"scriptsmith/internal/validate"
)

// CodeArtifact is the accepted output of a synthesis run.
type CodeArtifact struct {
	// SourceText is the cleaned, syntax-valid program source.
	SourceText string

	// DeclaredDependencies are the module paths the plan requested,
	// before the packager merges in what the source actually imports.
	DeclaredDependencies []string

	// GenerationAttempt records which attempt produced the accepted
	// source, starting at 1.
	GenerationAttempt int

	// Report is the validation report for the accepted source.
	Report *validate.Report

	GeneratedAt time.Time
}

// Attempt preserves one synthesis round for the audit trail. Rejected
// rounds are kept alongside the accepted one so a failed run can be
// diagnosed without re-querying the oracle.
type Attempt struct {
	Number int
	Source string
	Report *validate.Report
}
