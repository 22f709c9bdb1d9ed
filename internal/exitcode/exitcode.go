// Package exitcode maps pipeline outcomes to process exit codes.
package exitcode

import (
	stderrors "errors"
	"os"

	"scriptsmith/internal/errors"
)

// Exit codes for consistent error reporting across the CLI.
const (
	// Success indicates the bundle reached a SUCCEEDED terminal state
	Success = 0

	// GeneralError indicates an unclassified error condition
	GeneralError = 1

	// UsageError indicates invalid command usage
	UsageError = 2

	// AnalysisError indicates requirement analysis exhausted its retries
	AnalysisError = 3

	// PlanningError indicates execution planning exhausted its retries
	PlanningError = 4

	// SynthesisError indicates code synthesis exhausted its retries
	SynthesisError = 5

	// PackagingError indicates bundle assembly failed
	PackagingError = 6

	// SandboxError indicates the sandbox build or run failed
	SandboxError = 7

	// Timeout indicates the sandboxed run reached no observable state in time
	Timeout = 8

	// OracleError indicates the generation oracle was unavailable
	OracleError = 9

	// Interrupted indicates the user cancelled the run
	Interrupted = 130
)

// Exit terminates the process with the given code.
func Exit(code int) {
	os.Exit(code)
}

// ExitWithError exits with a code derived from the error type.
func ExitWithError(err error) {
	Exit(DetermineExitCode(err))
}

// DetermineExitCode analyzes an error and returns the appropriate exit code.
func DetermineExitCode(err error) int {
	if err == nil {
		return Success
	}

	var pe *errors.PipelineError
	if !stderrors.As(err, &pe) {
		return GeneralError
	}

	switch pe.Code {
	case errors.ErrCodeOracleUnavailable, errors.ErrCodeOracleEmpty:
		return OracleError
	case errors.ErrCodeAnalysisSchema, errors.ErrCodeAnalysisExhausted:
		return AnalysisError
	case errors.ErrCodePlanStructure, errors.ErrCodePlanExhausted:
		return PlanningError
	case errors.ErrCodeSynthSyntax, errors.ErrCodeSynthExhausted:
		return SynthesisError
	case errors.ErrCodeBundleManifest, errors.ErrCodeBundleWrite:
		return PackagingError
	case errors.ErrCodeSandboxUnavailable, errors.ErrCodeSandboxBuild, errors.ErrCodeSandboxStart:
		return SandboxError
	case errors.ErrCodeSandboxTimeout:
		return Timeout
	default:
		return GeneralError
	}
}
