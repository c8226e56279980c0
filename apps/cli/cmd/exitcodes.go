package cmd

import (
	"errors"

	"github.com/spf13/cobra"

	"github.com/abdul-hamid-achik/hitsheet/packages/core/runner"
)

// Exit codes for hitsheet CLI
const (
	// ExitSuccess indicates all tests passed
	ExitSuccess = 0

	// ExitTestFailure indicates one or more tests failed, or another error occurred
	ExitTestFailure = 1

	// ExitConfigError indicates a configuration or authentication error
	ExitConfigError = 3

	// ExitRunnerError indicates the collection runner failed or left no report
	ExitRunnerError = 4

	// ExitUsageError indicates invalid CLI usage
	ExitUsageError = 64
)

// exitError carries an explicit exit code.
type exitError struct {
	code int
	err  error
}

func (e *exitError) Error() string {
	return e.err.Error()
}

func (e *exitError) Unwrap() error {
	return e.err
}

func withCode(code int, err error) error {
	return &exitError{code: code, err: err}
}

// errTestsFailed is returned when a run completes with failed rows.
var errTestsFailed = errors.New("one or more tests failed")

// exitCode maps a command error onto a process exit code.
func exitCode(err error) int {
	if err == nil {
		return ExitSuccess
	}
	var ee *exitError
	if errors.As(err, &ee) {
		return ee.code
	}
	switch {
	case runner.IsConfigError(err):
		return ExitConfigError
	case runner.IsRunnerError(err):
		return ExitRunnerError
	}
	return ExitTestFailure
}

// usageArgs marks argument validation failures as usage errors.
func usageArgs(fn cobra.PositionalArgs) cobra.PositionalArgs {
	return func(cmd *cobra.Command, args []string) error {
		if err := fn(cmd, args); err != nil {
			return withCode(ExitUsageError, err)
		}
		return nil
	}
}
