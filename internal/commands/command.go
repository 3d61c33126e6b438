// Package commands provides the command interface and implementations.
package commands

import (
	"context"
	"flag"
	"io"

	"gtaskroll/internal/config"
	"gtaskroll/internal/service"
)

// Command defines the interface for CLI commands.
type Command interface {
	// Name returns the primary command name.
	Name() string

	// Aliases returns alternative names for the command.
	Aliases() []string

	// Synopsis returns a short description for help output.
	Synopsis() string

	// Usage returns the usage string for help output.
	Usage() string

	// Needs names the backend collaborators the command uses.
	// Commands like help, version, login, logout return service.NeedNone.
	Needs() service.Needs

	// RegisterFlags registers command-specific flags.
	RegisterFlags(fs *flag.FlagSet)

	// Run executes the command.
	// cfg is always provided (config dir, paths, settings).
	// b holds the collaborators named by Needs and is nil when Needs is NeedNone.
	// args contains positional arguments after flag parsing.
	// The logger travels in ctx (zerolog.Ctx).
	// Returns exit code.
	Run(ctx context.Context, cfg *config.Config, b *service.Backend, args []string, out, errOut io.Writer) int
}
