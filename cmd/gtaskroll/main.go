// Package main is the entry point for the gtaskroll CLI.
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"gtaskroll/internal/backend"
	"gtaskroll/internal/cli"
	"gtaskroll/internal/commands"
)

func main() {
	// Cancel on interrupt; the orchestrator still releases its lock.
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)

	dispatcher := cli.NewDispatcher(commands.DefaultRegistry, backend.Open)
	code := dispatcher.Run(ctx, os.Args[1:], os.Stdout, os.Stderr)

	stop()
	os.Exit(code)
}
