package cmd

import (
	"fmt"
	"os"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"scriptsmith/internal/sandbox"
)

var doctorCmd = &cobra.Command{
	Use:   "doctor",
	Short: "Check that the factory's dependencies are in place",
	Long: `Check that everything a run needs is available:
  - the Docker daemon answers
  - an oracle API key is configured
  - the bundle root is writable

Exit status is non-zero when any check fails.`,
	RunE: runDoctor,
}

func init() {
	rootCmd.AddCommand(doctorCmd)
}

type check struct {
	name string
	run  func() error
}

func runDoctor(cmd *cobra.Command, args []string) error {
	checks := []check{
		{
			name: "docker daemon",
			run: func() error {
				return sandbox.NewDockerRuntime().Available(cmd.Context())
			},
		},
		{
			name: "oracle api key",
			run: func() error {
				if cfg.Oracle.APIKey != "" || os.Getenv("ANTHROPIC_API_KEY") != "" {
					return nil
				}
				return fmt.Errorf("set ANTHROPIC_API_KEY or oracle.api_key")
			},
		},
		{
			name: "bundle root",
			run: func() error {
				if err := os.MkdirAll(cfg.Workspace.BundleRoot, 0o755); err != nil {
					return err
				}
				probe, err := os.CreateTemp(cfg.Workspace.BundleRoot, ".doctor-*")
				if err != nil {
					return err
				}
				probe.Close()
				return os.Remove(probe.Name())
			},
		},
	}

	green := color.New(color.FgGreen)
	red := color.New(color.FgRed)

	failures := 0
	for _, c := range checks {
		if err := c.run(); err != nil {
			red.Printf("✗ %s", c.name)
			fmt.Printf(": %v\n", err)
			failures++
			continue
		}
		green.Printf("✓ %s\n", c.name)
	}

	if failures > 0 {
		return fmt.Errorf("%d of %d checks failed", failures, len(checks))
	}
	return nil
}
