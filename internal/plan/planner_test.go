package plan

import (
	"context"
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"scriptsmith/internal/analyze"
	"scriptsmith/internal/errors"
	"scriptsmith/internal/log"
	"scriptsmith/internal/oracle/oracletest"
)

const validPlanJSON = `{
	"name": "ratio_calculation",
	"description": "compute the ratio of two fixed inputs",
	"steps": [
		{"index": 1, "name": "compute_ratio", "kind": "calculation",
		 "inputs": ["x", "y"], "outputs": ["ratio"], "depends_on": []}
	],
	"dependencies": []
}`

func testLogger() *log.Logger {
	return log.New(log.Config{Level: log.LevelError, Format: log.FormatText, Output: io.Discard})
}

func calcSpec() *analyze.TaskSpecification {
	return &analyze.TaskSpecification{
		Goal:           "compute ratio X/Y for fixed inputs 1000/800",
		Classification: analyze.ClassificationCalculation,
		Complexity:     analyze.ComplexityLow,
	}
}

func TestPlan_SingleStep(t *testing.T) {
	stub := oracletest.New(validPlanJSON)
	planner := NewPlanner(stub, testLogger())

	p, err := planner.Plan(context.Background(), calcSpec())
	require.NoError(t, err)

	assert.Equal(t, "ratio_calculation", p.Name)
	require.Len(t, p.Steps, 1)
	assert.Equal(t, 1, p.Steps[0].Index)
	assert.Equal(t, ActionCalculation, p.Steps[0].Kind)
}

func TestPlan_NormalizesFieldSynonyms(t *testing.T) {
	// The oracle used plan_name, step_number, and action instead of the
	// canonical field names.
	synonymPlan := `{
		"plan_name": "ratio_calculation",
		"steps": [
			{"step_number": 1, "name": "compute", "action": "calculation", "depends_on": []},
			{"step_number": 2, "name": "report", "action": "report", "deps": [1]}
		],
		"requirements": ["gopkg.in/yaml.v3"]
	}`
	stub := oracletest.New(synonymPlan)
	planner := NewPlanner(stub, testLogger())

	p, err := planner.Plan(context.Background(), calcSpec())
	require.NoError(t, err)

	assert.Equal(t, "ratio_calculation", p.Name)
	require.Len(t, p.Steps, 2)
	assert.Equal(t, 2, p.Steps[1].Index)
	assert.Equal(t, []int{1}, p.Steps[1].DependsOn)
	assert.Equal(t, []string{"gopkg.in/yaml.v3"}, p.Dependencies)
	assert.Equal(t, 1, stub.Calls())
}

func TestPlan_RetriesOnStructuralViolation(t *testing.T) {
	sparse := `{
		"name": "bad",
		"steps": [
			{"index": 1, "name": "a", "kind": "calculation"},
			{"index": 3, "name": "b", "kind": "report"}
		]
	}`
	stub := oracletest.New(sparse, validPlanJSON)
	planner := NewPlanner(stub, testLogger())

	p, err := planner.Plan(context.Background(), calcSpec())
	require.NoError(t, err)
	assert.Equal(t, "ratio_calculation", p.Name)
	require.Equal(t, 2, stub.Calls())
	assert.Contains(t, stub.Requests[1].Prompt, "dense")
}

func TestPlan_ExhaustsAtThreeAttempts(t *testing.T) {
	forward := `{
		"name": "bad",
		"steps": [{"index": 1, "name": "a", "kind": "calculation", "depends_on": [1]}]
	}`
	stub := oracletest.New(forward)
	planner := NewPlanner(stub, testLogger())

	_, err := planner.Plan(context.Background(), calcSpec())
	require.Error(t, err)
	assert.Equal(t, 3, stub.Calls())

	var pe *errors.PipelineError
	require.ErrorAs(t, err, &pe)
	assert.Equal(t, errors.ErrCodePlanExhausted, pe.Code)
	assert.Equal(t, 3, pe.Attempts)
}

func TestValidate_DenseIndicesAndDependencies(t *testing.T) {
	tests := []struct {
		name    string
		plan    ExecutionPlan
		wantErr string
	}{
		{
			name: "valid chain",
			plan: ExecutionPlan{Name: "p", Steps: []Step{
				{Index: 1, Name: "a", Kind: ActionDataQuery},
				{Index: 2, Name: "b", Kind: ActionCalculation, DependsOn: []int{1}},
				{Index: 3, Name: "c", Kind: ActionReport, DependsOn: []int{1, 2}},
			}},
		},
		{
			name:    "empty steps",
			plan:    ExecutionPlan{Name: "p"},
			wantErr: "at least one step",
		},
		{
			name: "indices not starting at 1",
			plan: ExecutionPlan{Name: "p", Steps: []Step{
				{Index: 2, Name: "a", Kind: ActionCalculation},
			}},
			wantErr: "dense",
		},
		{
			name: "forward dependency",
			plan: ExecutionPlan{Name: "p", Steps: []Step{
				{Index: 1, Name: "a", Kind: ActionCalculation, DependsOn: []int{2}},
				{Index: 2, Name: "b", Kind: ActionReport},
			}},
			wantErr: "forward",
		},
		{
			name: "dependency out of range",
			plan: ExecutionPlan{Name: "p", Steps: []Step{
				{Index: 1, Name: "a", Kind: ActionCalculation, DependsOn: []int{7}},
			}},
			wantErr: "does not exist",
		},
		{
			name:    "missing name",
			plan:    ExecutionPlan{Steps: []Step{{Index: 1, Name: "a", Kind: ActionCalculation}}},
			wantErr: "name is required",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := tt.plan.Validate()
			if tt.wantErr == "" {
				assert.NoError(t, err)
			} else {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.wantErr)
			}
		})
	}
}

func TestValidate_UnknownKindWarnsNotRejects(t *testing.T) {
	p := ExecutionPlan{Name: "p", Steps: []Step{
		{Index: 1, Name: "a", Kind: "quantum_annealing"},
	}}

	warnings, err := p.Validate()
	require.NoError(t, err)
	require.Len(t, warnings, 1)
	assert.Contains(t, warnings[0], "quantum_annealing")
}

func TestHasServiceStep(t *testing.T) {
	service := ExecutionPlan{Name: "p", Steps: []Step{
		{Index: 1, Name: "load", Kind: ActionDataQuery},
		{Index: 2, Name: "serve", Kind: ActionServe, DependsOn: []int{1}},
	}}
	batch := ExecutionPlan{Name: "p", Steps: []Step{
		{Index: 1, Name: "calc", Kind: ActionCalculation},
	}}

	assert.True(t, service.HasServiceStep())
	assert.False(t, batch.HasServiceStep())
}
