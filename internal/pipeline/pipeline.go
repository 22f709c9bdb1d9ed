// Package pipeline chains the factory stages: analyze the request,
// plan the work, synthesize the code, package it, run it in the
// sandbox, and extract the results.
package pipeline

import (
	"context"
	"time"

	"scriptsmith/internal/analyze"
	"scriptsmith/internal/bundle"
	"scriptsmith/internal/config"
	"scriptsmith/internal/log"
	"scriptsmith/internal/oracle"
	"scriptsmith/internal/plan"
	"scriptsmith/internal/result"
	"scriptsmith/internal/sandbox"
	"scriptsmith/internal/synth"
)

// RunReport collects everything a run produced, including the
// intermediate artifacts and the synthesis attempt history, so a
// failed run can be diagnosed from the report alone.
type RunReport struct {
	Request   string
	Spec      *analyze.TaskSpecification
	Plan      *plan.ExecutionPlan
	Artifact  *synth.CodeArtifact
	Attempts  []synth.Attempt
	Bundle    *bundle.Bundle
	Archive   string
	Execution *sandbox.ExecutionRecord
	Results   *result.ResultSet
	Started   time.Time
	Finished  time.Time
}

// Pipeline wires the stages together.
type Pipeline struct {
	analyzer    *analyze.Analyzer
	planner     *plan.Planner
	synthesizer *synth.Synthesizer
	packager    *bundle.Packager
	controller  *sandbox.Controller
	logger      *log.Logger

	bundleRoot  string
	archiveRoot string
	baseImage   string
	archive     bool
}

// New assembles a pipeline from its configuration, oracle client, and
// container runtime.
func New(cfg *config.Config, client oracle.Client, rt sandbox.Runtime, logger *log.Logger) *Pipeline {
	opts := sandbox.Options{
		BuildTimeout:  cfg.Sandbox.BuildTimeout,
		RunTimeout:    cfg.Sandbox.RunTimeout,
		PollInterval:  cfg.Sandbox.PollInterval,
		ServiceWarmup: 5 * time.Second,
		MemoryLimit:   cfg.Sandbox.MemoryLimit,
		CPULimit:      cfg.Sandbox.CPULimit,
		Network:       cfg.Sandbox.Network,
	}

	return &Pipeline{
		analyzer:    analyze.NewAnalyzer(client, logger),
		planner:     plan.NewPlanner(client, logger),
		synthesizer: synth.NewSynthesizer(client, logger),
		packager:    bundle.NewPackager(logger),
		controller:  sandbox.NewController(rt, logger, opts),
		logger:      logger.With("component", "pipeline"),
		bundleRoot:  cfg.Workspace.BundleRoot,
		archiveRoot: cfg.Workspace.ArchiveRoot,
		baseImage:   cfg.Sandbox.BaseImage,
	}
}

// WithArchiving enables bundle archiving after a run.
func (p *Pipeline) WithArchiving() *Pipeline {
	p.archive = true
	return p
}

// Run takes a natural-language request all the way to extracted
// results. The report is returned alongside the error whenever any
// stage produced something worth inspecting.
func (p *Pipeline) Run(ctx context.Context, request string) (*RunReport, error) {
	report := &RunReport{Request: request, Started: time.Now().UTC()}
	defer func() { report.Finished = time.Now().UTC() }()

	spec, err := p.analyzer.Analyze(ctx, request)
	if err != nil {
		return report, err
	}
	report.Spec = spec

	ep, err := p.planner.Plan(ctx, spec)
	if err != nil {
		return report, err
	}
	report.Plan = ep

	artifact, attempts, err := p.synthesizer.Synthesize(ctx, spec, ep)
	report.Attempts = attempts
	if err != nil {
		return report, err
	}
	report.Artifact = artifact

	b, err := p.packager.Package(spec, ep, artifact)
	if err != nil {
		return report, err
	}
	if err := p.packager.Write(b, p.bundleRoot, p.baseImage); err != nil {
		return report, err
	}
	report.Bundle = b

	rec, err := p.controller.Execute(ctx, b)
	report.Execution = rec
	if err != nil {
		return report, err
	}

	report.Results = result.Extract(rec.RawLog)

	if p.archive {
		if archivePath, err := p.packager.Archive(b, p.archiveRoot); err == nil {
			report.Archive = archivePath
		} else {
			p.logger.Warn("bundle archiving failed", "error", err)
		}
	}

	p.logger.Info("pipeline finished",
		"status", rec.Status,
		"result_lines", len(report.Results.Lines),
		"duration", time.Since(report.Started).Round(time.Millisecond))

	return report, nil
}
