package cli

import (
	"errors"

	"github.com/poutila/tokenwarehouse/pkg/warehouse"
)

// Exit codes for tokenwarehouse.
const (
	// ExitSuccess indicates successful extraction.
	ExitSuccess = 0

	// ExitExtractionErrors indicates extraction completed but collectors
	// recorded errors (or strict mode failed the run).
	ExitExtractionErrors = 1

	// ExitUsageError indicates invalid command-line usage or configuration.
	ExitUsageError = 2

	// ExitLimitExceeded indicates a document was rejected by the resource guard.
	ExitLimitExceeded = 3
)

// ErrExtractionIssues is returned when collectors recorded errors.
// It exists to signal the exit code; the details are already reported.
var ErrExtractionIssues = errors.New("extraction issues found")

// ExitCodeFromError maps a command error to the process exit code.
func ExitCodeFromError(err error) int {
	switch {
	case err == nil:
		return ExitSuccess
	case errors.Is(err, ErrExtractionIssues):
		return ExitExtractionErrors
	case errors.Is(err, warehouse.ErrResourceLimit):
		return ExitLimitExceeded
	default:
		return ExitUsageError
	}
}
