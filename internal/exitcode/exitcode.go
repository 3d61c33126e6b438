// Package exitcode defines exit codes for the CLI.
package exitcode

const (
	// Success indicates successful completion, including a deferred run.
	Success = 0

	// UserError indicates a user error (bad args, unknown command).
	UserError = 1

	// AuthError indicates an auth/config error.
	AuthError = 2

	// BackendError indicates a backend/API/network error outside a run.
	BackendError = 3

	// RunFailed indicates a rollover run hit its fatal path.
	RunFailed = 4
)
