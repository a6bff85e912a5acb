// Package exitcode defines exit codes for the CLI.
package exitcode

import "todoctl/internal/service"

const (
	// Success indicates successful completion.
	Success = 0

	// UserError indicates a user error (bad args, rejected request).
	UserError = 1

	// AuthError indicates missing or rejected credentials.
	AuthError = 2

	// BackendError indicates a server, network or decode failure.
	BackendError = 3
)

// ForError maps a backend failure onto an exit code.
// 401/403 are auth errors, other 4xx are the user's, everything else is the backend's.
func ForError(err error) int {
	switch {
	case err == nil:
		return Success
	case service.IsAuth(err):
		return AuthError
	case service.IsClient(err):
		return UserError
	default:
		return BackendError
	}
}
