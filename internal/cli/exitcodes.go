package cli

// Exit codes for sanitize. Every failure maps to ExitFailure.
const (
	// ExitSuccess indicates the output was written (or the dry run completed).
	ExitSuccess = 0

	// ExitFailure indicates a usage, configuration, read, or write failure.
	ExitFailure = 1
)

// ExitCode maps a command error onto a process exit code.
func ExitCode(err error) int {
	if err == nil {
		return ExitSuccess
	}
	return ExitFailure
}
