// Command finboard runs the dashboard session API and manages the persisted
// session from the command line.
package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/dmitrymomot/finboard/internal/cli"
)

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	if err := cli.Run(ctx, os.Args[1:], os.Stdout, os.Stderr); err != nil {
		fmt.Fprintf(os.Stderr, "finboard: %v\n", err)
		cancel()
		os.Exit(exitCode(err))
	}
}

// exitCode maps a command error to the process exit status:
// 2 for usage errors, 1 for anything else.
func exitCode(err error) int {
	switch {
	case err == nil:
		return 0
	case errors.Is(err, cli.ErrUsage), errors.Is(err, cli.ErrUnknownCommand):
		return 2
	default:
		return 1
	}
}
