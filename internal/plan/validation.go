package plan

import (
	"fmt"
	"strings"
)

// Validate checks the plan's structure. It returns a structural error
// when the plan must be regenerated, and a list of warnings for
// conditions the pipeline proceeds past (unknown action kinds).
func (p *ExecutionPlan) Validate() ([]string, error) {
	var warnings []string

	if strings.TrimSpace(p.Name) == "" {
		return nil, fmt.Errorf("plan name is required")
	}
	if len(p.Steps) == 0 {
		return nil, fmt.Errorf("plan must have at least one step")
	}

	// Step indices must form a dense 1..N sequence.
	for i, step := range p.Steps {
		want := i + 1
		if step.Index != want {
			return nil, fmt.Errorf(
				"step indices must be a dense 1..%d sequence: position %d has index %d",
				len(p.Steps), want, step.Index)
		}
		if strings.TrimSpace(step.Name) == "" {
			return nil, fmt.Errorf("step %d has no name", step.Index)
		}
	}

	// Dependencies may only reference strictly earlier steps.
	for _, step := range p.Steps {
		for _, dep := range step.DependsOn {
			if dep < 1 || dep > len(p.Steps) {
				return nil, fmt.Errorf(
					"step %d depends on step %d, which does not exist", step.Index, dep)
			}
			if dep >= step.Index {
				return nil, fmt.Errorf(
					"step %d has forward or self dependency on step %d", step.Index, dep)
			}
		}
	}

	// Unknown action kinds warn but do not reject.
	for _, step := range p.Steps {
		if !knownKinds[step.Kind] {
			warnings = append(warnings, fmt.Sprintf(
				"step %d has unusual action kind %q (proceeding anyway)", step.Index, step.Kind))
		}
	}

	return warnings, nil
}

// HasServiceStep reports whether any step starts a long-running service.
func (p *ExecutionPlan) HasServiceStep() bool {
	for _, step := range p.Steps {
		if step.Kind == ActionServe {
			return true
		}
	}
	return false
}
