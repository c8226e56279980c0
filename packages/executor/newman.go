package executor

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/exec"
	"path/filepath"

	"github.com/abdul-hamid-achik/hitsheet/packages/logging"
)

// DefaultNewmanCommand is the newman binary looked up on PATH.
const DefaultNewmanCommand = "newman"

// Newman runs collections with the newman CLI.
type Newman struct {
	command    string
	args       []string
	keepReport bool
	stdout     io.Writer
	stderr     io.Writer
	logger     *logging.Logger
}

type NewmanOption func(*Newman)

// WithCommand sets the newman executable.
func WithCommand(command string) NewmanOption {
	return func(n *Newman) {
		if command != "" {
			n.command = command
		}
	}
}

// WithExtraArgs appends arguments to every newman invocation.
func WithExtraArgs(args ...string) NewmanOption {
	return func(n *Newman) {
		n.args = append(n.args, args...)
	}
}

// WithKeepReport keeps the JSON report after it has been parsed.
func WithKeepReport(keep bool) NewmanOption {
	return func(n *Newman) {
		n.keepReport = keep
	}
}

// WithOutput sets where newman's own console output goes.
func WithOutput(stdout, stderr io.Writer) NewmanOption {
	return func(n *Newman) {
		n.stdout = stdout
		n.stderr = stderr
	}
}

func WithNewmanLogger(l *logging.Logger) NewmanOption {
	return func(n *Newman) {
		n.logger = l
	}
}

func NewNewman(opts ...NewmanOption) *Newman {
	n := &Newman{command: DefaultNewmanCommand}
	for _, opt := range opts {
		opt(n)
	}
	n.logger = logging.OrDefault(n.logger).WithComponent("newman")
	return n
}

// Args returns the newman arguments for a job.
func (n *Newman) Args(job Job) []string {
	args := []string{
		"run", job.CollectionPath,
		"--reporters", "json",
		"--reporter-json-export", job.ReportPath,
	}
	return append(args, n.args...)
}

// Execute runs newman and waits for it. A non-zero exit means some tests
// failed and is tolerated as long as the report was written.
func (n *Newman) Execute(ctx context.Context, job Job) ([]Execution, error) {
	if job.CollectionPath == "" {
		return nil, fmt.Errorf("newman needs a collection file")
	}
	if job.ReportPath == "" {
		job.ReportPath = filepath.Join(filepath.Dir(job.CollectionPath), DefaultReportName)
	}
	// a stale report from an earlier run must not be mistaken for this one
	_ = os.Remove(job.ReportPath)

	cmd := exec.CommandContext(ctx, n.command, n.Args(job)...)
	cmd.Stdout = n.stdout
	cmd.Stderr = n.stderr

	n.logger.Info("running collection", "collection", job.CollectionPath)
	runErr := cmd.Run()
	if ctx.Err() != nil {
		return nil, ctx.Err()
	}
	if runErr != nil {
		if _, statErr := os.Stat(job.ReportPath); statErr != nil {
			return nil, fmt.Errorf("%w: %s (%v)", ErrNoReport, job.ReportPath, runErr)
		}
		n.logger.Warn("newman finished with failures", "error", runErr)
	}

	executions, err := ReadReport(job.ReportPath)
	if err != nil {
		return nil, err
	}
	n.logger.Info("collection run complete", "executions", len(executions))

	if !n.keepReport {
		if err := os.Remove(job.ReportPath); err != nil {
			n.logger.Debug("failed to remove runner report", "path", job.ReportPath, "error", err)
		}
	}
	return executions, nil
}
