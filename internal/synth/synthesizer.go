package synth

import (
	"context"
	"fmt"
	"strings"
	"time"

	"scriptsmith/internal/analyze"
	"scriptsmith/internal/errors"
	"scriptsmith/internal/log"
	"scriptsmith/internal/oracle"
	"scriptsmith/internal/plan"
	"scriptsmith/internal/result"
	"scriptsmith/internal/validate"
)

// maxAttempts is the fixed regeneration ceiling for syntax failures.
const maxAttempts = 3

type state int

const (
	stateGenerating state = iota
	stateValidating
	stateAccepted
	stateRegenerating
	stateRejected
)

var systemPrompt = fmt.Sprintf(`You are an expert Go programmer generating a complete, self-contained program.

Rules:
- Output ONLY Go source code for a single main.go file. No markdown, no explanations.
- The program must compile with the standard "go build" toolchain.
- Read any secrets or configuration from environment variables, never hardcode them.
- Print the final results to stdout between these exact marker lines:
%s
<one result per line, e.g. "ratio: 1.25">
%s
- Log progress with the rs/zerolog logger; results go between the markers, not only to the log.`,
	result.BeginMarker, result.EndMarker)

// Synthesizer drives plan-to-code generation with validation feedback.
type Synthesizer struct {
	oracle oracle.Client
	logger *log.Logger
}

// NewSynthesizer creates a Synthesizer.
func NewSynthesizer(client oracle.Client, logger *log.Logger) *Synthesizer {
	return &Synthesizer{oracle: client, logger: logger.With("component", "synthesizer")}
}

// Synthesize generates source for the plan. Each round the raw output
// is cleaned and validated; a syntax failure feeds the parser's exact
// location and message back to the oracle for the next round, ceiling 3,
// with the round's security findings appended as advisory context.
// Security and resource findings on their own never block acceptance;
// the sandbox is the enforcement boundary for those.
// All attempts, rejected ones included, are returned for the audit
// trail.
func (s *Synthesizer) Synthesize(ctx context.Context, spec *analyze.TaskSpecification, p *plan.ExecutionPlan) (*CodeArtifact, []Attempt, error) {
	prompt := buildPrompt(spec, p)

	var (
		history  []Attempt
		feedback string
		attempt  int
		source   string
		report   *validate.Report
	)

	for st := stateGenerating; ; {
		switch st {
		case stateGenerating:
			attempt++
			s.logger.Debug("generating source", "attempt", attempt)

			fullPrompt := prompt
			if feedback != "" {
				fullPrompt += fmt.Sprintf(
					"\n\nYOUR PREVIOUS CODE FAILED SYNTAX VALIDATION:\n%s\nReturn the complete corrected program.", feedback)
			}

			resp, err := s.oracle.Generate(ctx, &oracle.Request{
				Prompt:       fullPrompt,
				SystemPrompt: systemPrompt,
				Temperature:  0.2,
			})
			if err != nil {
				return nil, history, err
			}

			source = cleanSource(resp.Content)
			st = stateValidating

		case stateValidating:
			report = validate.Check(source)
			history = append(history, Attempt{Number: attempt, Source: source, Report: report})

			for _, issue := range report.Issues {
				if issue.Category == validate.CategorySecurity {
					s.logger.Warn("security finding in generated code",
						"severity", issue.Severity, "line", issue.Line, "finding", issue.Message)
				}
			}

			if report.SyntaxValid {
				st = stateAccepted
			} else if attempt < maxAttempts {
				feedback = retryFeedback(report)
				st = stateRegenerating
			} else {
				feedback = retryFeedback(report)
				st = stateRejected
			}

		case stateRegenerating:
			s.logger.Warn("generated code does not parse, regenerating",
				"attempt", attempt, "syntax_error", feedback)
			st = stateGenerating

		case stateAccepted:
			s.logger.Info("source accepted",
				"attempt", attempt,
				"security_score", report.SecurityScore,
				"memory_mb", report.ResourceEstimate.MemoryMB)

			artifact := &CodeArtifact{
				SourceText:           source,
				DeclaredDependencies: p.Dependencies,
				GenerationAttempt:    attempt,
				Report:               report,
				GeneratedAt:          time.Now().UTC(),
			}
			return artifact, history, nil

		case stateRejected:
			return nil, history, errors.NewSynthesisFailure(attempt, feedback)
		}
	}
}

// retryFeedback assembles the feedback carried into the next round:
// the blocking syntax error first, then the round's security and
// resource findings as advisory context, so one round trip hands the
// oracle everything the validator saw.
func retryFeedback(report *validate.Report) string {
	var b strings.Builder
	b.WriteString(report.SyntaxError)

	var advisory []string
	for _, issue := range report.Issues {
		if issue.Category == validate.CategorySyntax {
			continue
		}
		if issue.Line > 0 {
			advisory = append(advisory, fmt.Sprintf("line %d: %s", issue.Line, issue.Message))
		} else {
			advisory = append(advisory, issue.Message)
		}
	}
	if len(advisory) > 0 {
		b.WriteString("\n\nAlso address these findings in the corrected program:\n")
		b.WriteString(strings.Join(advisory, "\n"))
	}
	return b.String()
}

func buildPrompt(spec *analyze.TaskSpecification, p *plan.ExecutionPlan) string {
	var b strings.Builder

	fmt.Fprintf(&b, "Write a complete Go program for this task.\n\n")
	fmt.Fprintf(&b, "Goal: %s\n", spec.Goal)
	fmt.Fprintf(&b, "Plan: %s\n", p.Name)
	if p.Description != "" {
		fmt.Fprintf(&b, "Approach: %s\n", p.Description)
	}

	b.WriteString("\nSteps:\n")
	for _, step := range p.Steps {
		fmt.Fprintf(&b, "%d. %s (%s)", step.Index, step.Name, step.Kind)
		if step.Description != "" {
			fmt.Fprintf(&b, ": %s", step.Description)
		}
		b.WriteString("\n")
	}

	if len(p.Dependencies) > 0 {
		fmt.Fprintf(&b, "\nUse these libraries: %s\n", strings.Join(p.Dependencies, ", "))
	}
	if p.HasServiceStep() && p.ServicePort > 0 {
		fmt.Fprintf(&b, "\nThe program is a long-running service listening on port %d.\n", p.ServicePort)
	}

	b.WriteString("\nOutput ONLY the Go source code.")
	return b.String()
}
