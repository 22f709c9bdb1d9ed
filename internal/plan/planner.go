// Package plan converts a TaskSpecification into an ordered ExecutionPlan
// via the generation oracle, normalizing common field-name mismatches and
// retrying with corrective feedback on structural violations.
package plan

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"scriptsmith/internal/analyze"
	"scriptsmith/internal/errors"
	"scriptsmith/internal/llmtext"
	"scriptsmith/internal/log"
	"scriptsmith/internal/oracle"
)

// maxAttempts is the fixed retry ceiling for structural violations.
const maxAttempts = 3

type state int

const (
	stateQuerying state = iota
	stateValidating
	stateAccepted
	stateRetrying
	stateFailed
)

const systemPrompt = `You are a software architect for an automated code factory.
Design an ordered execution plan for the given task.

Output ONLY a JSON object with exactly this structure:
{
  "name": "plan_name",
  "description": "what the plan does",
  "steps": [
    {
      "index": 1,
      "name": "step_name",
      "kind": "calculation|data_query|api_call|file_operation|report|serve",
      "description": "what this step does",
      "inputs": ["var"],
      "outputs": ["var"],
      "depends_on": []
    }
  ],
  "dependencies": ["go module paths the program will need"],
  "service_port": 8080
}

Rules:
- Step indices are a dense sequence starting at 1.
- depends_on lists only indices of strictly earlier steps.
- Include service_port and a "serve" step only for long-running services.
- No prose, no markdown, only the complete JSON object.`

// Planner drives the specification-to-plan conversion.
type Planner struct {
	oracle oracle.Client
	logger *log.Logger
}

// NewPlanner creates a Planner.
func NewPlanner(client oracle.Client, logger *log.Logger) *Planner {
	return &Planner{oracle: client, logger: logger.With("component", "planner")}
}

// Plan produces a validated ExecutionPlan for the specification. Field
// synonyms in the oracle's output are normalized before validation;
// structural violations trigger a retry with feedback, ceiling 3.
func (p *Planner) Plan(ctx context.Context, spec *analyze.TaskSpecification) (*ExecutionPlan, error) {
	prompt := buildPrompt(spec)

	var (
		result   *ExecutionPlan
		feedback string
		attempt  int
	)

	for st := stateQuerying; ; {
		switch st {
		case stateQuerying:
			attempt++
			p.logger.Debug("querying oracle", "attempt", attempt)

			fullPrompt := prompt
			if feedback != "" {
				fullPrompt += fmt.Sprintf(
					"\n\nYOUR PREVIOUS PLAN WAS INVALID: %s\nReturn a corrected, complete JSON plan.", feedback)
			}

			resp, err := p.oracle.Generate(ctx, &oracle.Request{
				Prompt:       fullPrompt,
				SystemPrompt: systemPrompt,
				Temperature:  0.2,
			})
			if err != nil {
				return nil, err
			}

			result, feedback = parsePlan(resp.Content)
			st = stateValidating

		case stateValidating:
			if feedback == "" {
				warnings, err := result.Validate()
				for _, w := range warnings {
					p.logger.Warn(w)
				}
				if err != nil {
					feedback = err.Error()
				}
			}
			if feedback == "" {
				st = stateAccepted
			} else if attempt < maxAttempts {
				st = stateRetrying
			} else {
				st = stateFailed
			}

		case stateRetrying:
			p.logger.Warn("plan invalid, retrying with feedback",
				"attempt", attempt, "violation", feedback)
			st = stateQuerying

		case stateAccepted:
			p.logger.Info("execution plan designed",
				"plan", result.Name,
				"steps", len(result.Steps),
				"dependencies", len(result.Dependencies))
			return result, nil

		case stateFailed:
			return nil, errors.NewPlanningFailure(attempt, feedback)
		}
	}
}

func buildPrompt(spec *analyze.TaskSpecification) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Design an execution plan for this task:\n\n")
	fmt.Fprintf(&b, "Goal: %s\n", spec.Goal)
	fmt.Fprintf(&b, "Classification: %s\n", spec.Classification)
	fmt.Fprintf(&b, "Complexity: %s\n", spec.Complexity)
	fmt.Fprintf(&b, "Long-running service: %t\n", spec.NeedsIsolatedService)
	fmt.Fprintf(&b, "Parameter sweep: %t\n", spec.NeedsParameterSweep)
	if len(spec.DataSources) > 0 {
		fmt.Fprintf(&b, "Data sources: %s\n", strings.Join(spec.DataSources, ", "))
	}
	b.WriteString("\nOutput ONLY the complete JSON plan.")
	return b.String()
}

// parsePlan extracts, normalizes, and decodes the plan JSON. It returns
// the plan, or a non-empty violation message on failure.
func parsePlan(content string) (*ExecutionPlan, string) {
	payload, err := llmtext.ExtractJSON(content)
	if err != nil {
		return nil, err.Error()
	}

	normalized, err := normalizePlanJSON([]byte(payload))
	if err != nil {
		return nil, fmt.Sprintf("response is not a JSON object: %v", err)
	}

	var p ExecutionPlan
	if err := json.Unmarshal(normalized, &p); err != nil {
		return nil, fmt.Sprintf("response does not match the plan schema: %v", err)
	}
	return &p, ""
}
