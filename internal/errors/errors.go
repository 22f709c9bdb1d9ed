package errors

import (
	"fmt"
	"strings"
)

// ErrorCode is a unique, stable identifier for a failure class.
type ErrorCode string

const (
	// Requirement analysis (ANALYZE-001 to ANALYZE-099)
	ErrCodeAnalysisSchema    ErrorCode = "ANALYZE-001"
	ErrCodeAnalysisExhausted ErrorCode = "ANALYZE-002"

	// Execution planning (PLAN-001 to PLAN-099)
	ErrCodePlanStructure ErrorCode = "PLAN-001"
	ErrCodePlanExhausted ErrorCode = "PLAN-002"

	// Code synthesis (SYNTH-001 to SYNTH-099)
	ErrCodeSynthSyntax    ErrorCode = "SYNTH-001"
	ErrCodeSynthExhausted ErrorCode = "SYNTH-002"

	// Packaging (BUNDLE-001 to BUNDLE-099)
	ErrCodeBundleManifest ErrorCode = "BUNDLE-001"
	ErrCodeBundleWrite    ErrorCode = "BUNDLE-002"

	// Sandbox execution (SANDBOX-001 to SANDBOX-099)
	ErrCodeSandboxUnavailable ErrorCode = "SANDBOX-001"
	ErrCodeSandboxBuild       ErrorCode = "SANDBOX-002"
	ErrCodeSandboxStart       ErrorCode = "SANDBOX-003"
	ErrCodeSandboxTimeout     ErrorCode = "SANDBOX-004"

	// Generation oracle (ORACLE-001 to ORACLE-099)
	ErrCodeOracleUnavailable ErrorCode = "ORACLE-001"
	ErrCodeOracleEmpty       ErrorCode = "ORACLE-002"

	// Configuration (CONFIG-001 to CONFIG-099)
	ErrCodeConfigInvalid ErrorCode = "CONFIG-001"
)

// Stage names a pipeline stage for failure reporting.
type Stage string

const (
	StageAnalysis  Stage = "analysis"
	StagePlanning  Stage = "planning"
	StageSynthesis Stage = "synthesis"
	StagePackaging Stage = "packaging"
	StageExecution Stage = "execution"
)

// PipelineError is the typed failure surfaced to the driver. It carries
// enough context to diagnose without re-running: the stage that failed,
// how many attempts were spent, and the last corrective feedback that
// was given to the generation oracle.
type PipelineError struct {
	Code     ErrorCode
	Stage    Stage
	Message  string
	Attempts int
	Feedback string
	Cause    error
}

// Error implements the error interface.
func (e *PipelineError) Error() string {
	var b strings.Builder

	b.WriteString(fmt.Sprintf("[%s] %s stage: %s", e.Code, e.Stage, e.Message))

	if e.Attempts > 0 {
		b.WriteString(fmt.Sprintf(" (attempts: %d)", e.Attempts))
	}

	if e.Cause != nil {
		b.WriteString(fmt.Sprintf(": %v", e.Cause))
	}

	if e.Feedback != "" {
		b.WriteString(fmt.Sprintf("\nlast feedback: %s", e.Feedback))
	}

	return b.String()
}

// Unwrap supports errors.Is and errors.As.
func (e *PipelineError) Unwrap() error {
	return e.Cause
}

// New creates a PipelineError with a code, stage, and message.
func New(code ErrorCode, stage Stage, message string) *PipelineError {
	return &PipelineError{
		Code:    code,
		Stage:   stage,
		Message: message,
	}
}

// Wrap creates a PipelineError wrapping an underlying cause.
func Wrap(code ErrorCode, stage Stage, message string, cause error) *PipelineError {
	return &PipelineError{
		Code:    code,
		Stage:   stage,
		Message: message,
		Cause:   cause,
	}
}

// WithAttempts records the attempt count reached before failing.
func (e *PipelineError) WithAttempts(n int) *PipelineError {
	e.Attempts = n
	return e
}

// WithFeedback records the last corrective feedback given to the oracle.
func (e *PipelineError) WithFeedback(feedback string) *PipelineError {
	e.Feedback = feedback
	return e
}

// NewAnalysisFailure reports exhausted schema-violation retries during
// requirement analysis.
func NewAnalysisFailure(attempts int, lastViolation string) *PipelineError {
	return New(ErrCodeAnalysisExhausted, StageAnalysis,
		fmt.Sprintf("task specification schema invalid after %d attempts", attempts)).
		WithAttempts(attempts).
		WithFeedback(lastViolation)
}

// NewPlanningFailure reports exhausted structural-violation retries during
// execution planning.
func NewPlanningFailure(attempts int, lastViolation string) *PipelineError {
	return New(ErrCodePlanExhausted, StagePlanning,
		fmt.Sprintf("execution plan invalid after %d attempts", attempts)).
		WithAttempts(attempts).
		WithFeedback(lastViolation)
}

// NewSynthesisFailure reports exhausted syntax-validation retries during
// code synthesis.
func NewSynthesisFailure(attempts int, lastSyntaxError string) *PipelineError {
	return New(ErrCodeSynthExhausted, StageSynthesis,
		fmt.Sprintf("generated code failed syntax validation after %d attempts", attempts)).
		WithAttempts(attempts).
		WithFeedback(lastSyntaxError)
}

// NewPackagingError reports a fatal dependency or bundle assembly problem.
func NewPackagingError(message string, cause error) *PipelineError {
	return Wrap(ErrCodeBundleManifest, StagePackaging, message, cause)
}

// NewSandboxBuildFailure reports a fatal build failure for a bundle.
// There is no retry at this layer; callers may resynthesize instead.
func NewSandboxBuildFailure(cause error) *PipelineError {
	return Wrap(ErrCodeSandboxBuild, StageExecution, "sandbox build failed", cause)
}

// NewSandboxTimeout reports that the run reached no terminal state
// before the execution deadline.
func NewSandboxTimeout(deadline string) *PipelineError {
	return New(ErrCodeSandboxTimeout, StageExecution,
		fmt.Sprintf("sandboxed run exceeded the %s execution deadline", deadline))
}

// NewOracleUnavailable reports that the generation oracle cannot be
// reached. Fatal: there is no fallback generation path.
func NewOracleUnavailable(cause error) *PipelineError {
	return Wrap(ErrCodeOracleUnavailable, StageAnalysis, "generation oracle unavailable", cause)
}
