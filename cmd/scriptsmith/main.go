package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"scriptsmith/internal/cmd"
	"scriptsmith/internal/exitcode"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	err := cmd.ExecuteContext(ctx)
	if err == nil {
		exitcode.Exit(exitcode.Success)
	}

	// SIGINT and SIGTERM surface as context cancellation; report those
	// as an interrupt, not a pipeline failure.
	if ctx.Err() != nil {
		fmt.Fprintln(os.Stderr, "interrupted")
		exitcode.Exit(exitcode.Interrupted)
	}

	fmt.Fprintf(os.Stderr, "Error: %v\n", err)
	exitcode.ExitWithError(err)
}
