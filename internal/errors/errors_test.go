package errors

import (
	stderrors "errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPipelineError_Error(t *testing.T) {
	tests := []struct {
		name     string
		err      *PipelineError
		contains []string
	}{
		{
			name:     "code stage and message",
			err:      New(ErrCodePlanStructure, StagePlanning, "step indices not dense"),
			contains: []string{"[PLAN-001]", "planning stage", "step indices not dense"},
		},
		{
			name:     "attempts included",
			err:      NewSynthesisFailure(3, "syntax error at line 4"),
			contains: []string{"[SYNTH-002]", "attempts: 3", "syntax error at line 4"},
		},
		{
			name:     "cause included",
			err:      Wrap(ErrCodeOracleUnavailable, StageAnalysis, "oracle call failed", stderrors.New("connection refused")),
			contains: []string{"connection refused"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			msg := tt.err.Error()
			for _, want := range tt.contains {
				assert.Contains(t, msg, want)
			}
		})
	}
}

func TestPipelineError_Unwrap(t *testing.T) {
	cause := stderrors.New("boom")
	err := Wrap(ErrCodeSandboxBuild, StageExecution, "build failed", cause)

	require.ErrorIs(t, err, cause)

	var pe *PipelineError
	require.ErrorAs(t, error(err), &pe)
	assert.Equal(t, ErrCodeSandboxBuild, pe.Code)
	assert.Equal(t, StageExecution, pe.Stage)
}

func TestFailureConstructors(t *testing.T) {
	analysis := NewAnalysisFailure(3, "classification must be one of the allowed values")
	assert.Equal(t, ErrCodeAnalysisExhausted, analysis.Code)
	assert.Equal(t, StageAnalysis, analysis.Stage)
	assert.Equal(t, 3, analysis.Attempts)
	assert.Contains(t, analysis.Feedback, "classification")

	planning := NewPlanningFailure(3, "dependsOn references a later step")
	assert.Equal(t, ErrCodePlanExhausted, planning.Code)
	assert.Equal(t, StagePlanning, planning.Stage)

	oracle := NewOracleUnavailable(stderrors.New("dial tcp: timeout"))
	assert.Equal(t, ErrCodeOracleUnavailable, oracle.Code)
	assert.ErrorContains(t, oracle, "dial tcp")
}
