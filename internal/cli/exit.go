package cli

import (
	"context"
	"errors"

	gemerrors "github.com/matzehuels/gemindex/pkg/errors"
)

// Process exit codes of the gemindex binary.
const (
	ExitOK          = 0
	ExitFailure     = 1
	ExitUsage       = 2   // invalid flags, config or gem names
	ExitRegistry    = 3   // registry unreachable or rate limited
	ExitInterrupted = 130 // SIGINT, as shells report it
)

// ExitCode maps an error returned by the root command to an exit code.
func ExitCode(err error) int {
	if err == nil {
		return ExitOK
	}
	if errors.Is(err, context.Canceled) {
		return ExitInterrupted
	}
	switch gemerrors.GetCode(err) {
	case gemerrors.ErrCodeInvalidInput, gemerrors.ErrCodeInvalidPackage,
		gemerrors.ErrCodeInvalidConfig, gemerrors.ErrCodeInvalidFormat:
		return ExitUsage
	case gemerrors.ErrCodeNetwork, gemerrors.ErrCodeRateLimited:
		return ExitRegistry
	default:
		return ExitFailure
	}
}
