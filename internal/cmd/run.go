package cmd

import (
	"fmt"
	"strings"
	"time"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"scriptsmith/internal/oracle"
	"scriptsmith/internal/pipeline"
	"scriptsmith/internal/sandbox"
)

var (
	runArchive  bool
	runShowCode bool
)

var runCmd = &cobra.Command{
	Use:   "run <request>",
	Short: "Generate, sandbox, and execute a program for a request",
	Long: `Run the full factory pipeline for a natural-language request:
analyze it into a task specification, design an execution plan,
synthesize Go source, package it into a buildable bundle, execute the
bundle in a Docker sandbox, and print the extracted results.

Examples:
  # Batch calculation
  scriptsmith run "what is the ratio of 1000 to 800?"

  # Keep an archive of the generated bundle
  scriptsmith run --archive "summarize sales.csv by region"
`,
	Args: cobra.MinimumNArgs(1),
	RunE: runRun,
}

func init() {
	runCmd.Flags().BoolVar(&runArchive, "archive", false, "archive the bundle after the run")
	runCmd.Flags().BoolVar(&runShowCode, "show-code", false, "print the generated source before executing")

	rootCmd.AddCommand(runCmd)
}

func runRun(cmd *cobra.Command, args []string) error {
	request := strings.Join(args, " ")

	client, err := oracle.New(cfg.Oracle)
	if err != nil {
		return err
	}

	rt := sandbox.NewDockerRuntime()
	if err := rt.Available(cmd.Context()); err != nil {
		return err
	}

	p := pipeline.New(&cfg, client, rt, logger)
	if runArchive {
		p = p.WithArchiving()
	}

	report, err := p.Run(cmd.Context(), request)
	printReport(report)
	if err != nil {
		return err
	}
	if report.Execution != nil && report.Execution.Status != sandbox.StatusSucceeded {
		return fmt.Errorf("execution finished %s (exit %d)",
			report.Execution.Status, report.Execution.ExitCode)
	}
	return nil
}

func printReport(report *pipeline.RunReport) {
	if report == nil {
		return
	}

	bold := color.New(color.Bold)
	green := color.New(color.FgGreen)
	yellow := color.New(color.FgYellow)
	red := color.New(color.FgRed)

	if report.Plan != nil {
		bold.Printf("Plan: %s", report.Plan.Name)
		fmt.Printf(" (%d steps)\n", len(report.Plan.Steps))
	}

	if runShowCode && report.Artifact != nil {
		bold.Println("\nGenerated source:")
		fmt.Println(report.Artifact.SourceText)
	}

	if report.Bundle != nil {
		fmt.Printf("Bundle: %s\n", report.Bundle.Dir)
	}
	if report.Archive != "" {
		fmt.Printf("Archive: %s\n", report.Archive)
	}

	if report.Execution != nil {
		switch report.Execution.Status {
		case sandbox.StatusSucceeded:
			green.Printf("Execution: %s", report.Execution.Status)
		case sandbox.StatusTimedOut:
			yellow.Printf("Execution: %s", report.Execution.Status)
		default:
			red.Printf("Execution: %s", report.Execution.Status)
		}
		fmt.Printf(" (exit %d, %s)\n",
			report.Execution.ExitCode, report.Execution.Duration().Round(10*time.Millisecond))
	}

	if report.Results != nil && !report.Results.Empty() {
		bold.Println("\nResults:")
		fmt.Println(report.Results.Text())
	} else if report.Execution != nil {
		yellow.Println("\nNo results could be extracted from the run output.")
	}
}
