// Package analyze converts a free-text task request into a structured
// TaskSpecification via the generation oracle, retrying with corrective
// feedback when the extracted structure violates the schema.
package analyze

import (
	"context"
	"encoding/json"
	"fmt"

	"scriptsmith/internal/errors"
	"scriptsmith/internal/llmtext"
	"scriptsmith/internal/log"
	"scriptsmith/internal/oracle"
)

// maxAttempts is the fixed retry ceiling for schema violations.
const maxAttempts = 3

// state names a step of the analysis retry machine.
type state int

const (
	stateQuerying state = iota
	stateValidating
	stateAccepted
	stateRetrying
	stateFailed
)

const systemPrompt = `You are a requirements analyst for an automated code factory.
Extract the task structure from the user's request.

Output ONLY a JSON object with exactly these fields:
{
  "goal": "one-sentence primary objective",
  "classification": "calculation|data_processing|reporting|analysis|service",
  "needs_isolated_service": true|false,
  "needs_parameter_sweep": true|false,
  "data_sources": ["postgresql", "api", ...],
  "complexity": "LOW|MEDIUM|HIGH"
}

needs_isolated_service is true only for long-running servers, dashboards, or APIs.
needs_parameter_sweep is true only for what-if scenarios or comparisons across inputs.
No prose, no markdown, only the JSON object.`

// Analyzer drives the request-to-specification extraction.
type Analyzer struct {
	oracle oracle.Client
	logger *log.Logger
}

// NewAnalyzer creates an Analyzer.
func NewAnalyzer(client oracle.Client, logger *log.Logger) *Analyzer {
	return &Analyzer{oracle: client, logger: logger.With("component", "analyzer")}
}

// Analyze extracts a TaskSpecification from a request. On schema
// violations it retries the oracle with the violation appended as
// corrective feedback, up to the attempt ceiling.
func (a *Analyzer) Analyze(ctx context.Context, request string) (*TaskSpecification, error) {
	prompt := fmt.Sprintf("Analyze this task request and output the JSON structure:\n\n%s", request)

	var (
		spec     *TaskSpecification
		feedback string
		attempt  int
	)

	for st := stateQuerying; ; {
		switch st {
		case stateQuerying:
			attempt++
			a.logger.Debug("querying oracle", "attempt", attempt)

			fullPrompt := prompt
			if feedback != "" {
				fullPrompt += fmt.Sprintf(
					"\n\nYOUR PREVIOUS ANSWER WAS INVALID: %s\nReturn corrected JSON.", feedback)
			}

			resp, err := a.oracle.Generate(ctx, &oracle.Request{
				Prompt:       fullPrompt,
				SystemPrompt: systemPrompt,
				Temperature:  0.1,
			})
			if err != nil {
				return nil, err
			}

			spec, feedback = parseSpecification(resp.Content)
			st = stateValidating

		case stateValidating:
			if feedback == "" {
				if err := spec.Validate(); err != nil {
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
			a.logger.Warn("specification invalid, retrying with feedback",
				"attempt", attempt, "violation", feedback)
			st = stateQuerying

		case stateAccepted:
			a.logger.Info("task analyzed",
				"classification", spec.Classification,
				"complexity", spec.Complexity,
				"isolated_service", spec.NeedsIsolatedService)
			return spec, nil

		case stateFailed:
			return nil, errors.NewAnalysisFailure(attempt, feedback)
		}
	}
}

// parseSpecification extracts and decodes the JSON payload. It returns
// the specification, or a non-empty violation message on failure.
func parseSpecification(content string) (*TaskSpecification, string) {
	payload, err := llmtext.ExtractJSON(content)
	if err != nil {
		return nil, err.Error()
	}

	var spec TaskSpecification
	if err := json.Unmarshal([]byte(payload), &spec); err != nil {
		return nil, fmt.Sprintf("response is not valid JSON for the schema: %v", err)
	}
	return &spec, ""
}
