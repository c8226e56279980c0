package cmd

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/abdul-hamid-achik/hitsheet/packages/core/runner"
	"github.com/abdul-hamid-achik/hitsheet/packages/logging"
	"github.com/abdul-hamid-achik/hitsheet/packages/output"
)

var runCmd = &cobra.Command{
	Use:   "run [workbook.xlsx]",
	Short: "Compile, execute and reconcile a test workbook",
	Long: `Compile the workbook into a Postman collection, execute it and write
ActualStatus and Status columns into <workbook>_results.xlsx.

The workbook argument overrides excel_path from the config file.

Examples:
  hitsheet run
  hitsheet run api_tests.xlsx
  hitsheet run api_tests.xlsx --executor native --rate 5
  hitsheet run --output junit --output-file results.xml
  hitsheet run --watch`,
	Args:        usageArgs(cobra.MaximumNArgs(1)),
	Annotations: map[string]string{workbookArg: ""},
	RunE:        runCommand,
}

var (
	watchFlag    bool
	insecureFlag bool
)

func init() {
	addCollectionFlags(runCmd)
	addOutputFlags(runCmd)
	addNotifyFlags(runCmd)

	// Execution flags
	runCmd.Flags().String("executor", "", "Collection runner: newman, native (env: HITSHEET_RUNNER_EXECUTOR)")
	runCmd.Flags().String("newman", "", "newman command (env: HITSHEET_RUNNER_COMMAND)")
	runCmd.Flags().Bool("keep-report", false, "Keep the runner JSON report next to the collection (env: HITSHEET_RUNNER_KEEP_REPORT)")
	runCmd.Flags().Float64("rate", 0, "Native executor requests per second, 0 for unlimited (env: HITSHEET_RUNNER_RATE)")
	runCmd.Flags().Int("timeout", 0, "Native executor request timeout in seconds (env: HITSHEET_RUNNER_TIMEOUT)")
	runCmd.Flags().String("proxy", "", "Proxy URL for native executor requests (env: HITSHEET_RUNNER_PROXY)")
	runCmd.Flags().BoolVarP(&insecureFlag, "insecure", "k", false, "Disable SSL certificate validation in the native executor")
	runCmd.Flags().Bool("strict", false, "Fail when the number of results differs from the number of rows (env: HITSHEET_RECONCILE_STRICT)")
	runCmd.Flags().BoolVarP(&watchFlag, "watch", "w", false, "Watch the workbook for changes and re-run")
}

// Flags shared by the commands that compile a workbook.
func addCollectionFlags(cmd *cobra.Command) {
	cmd.Flags().String("collection-name", "", "Collection name (env: HITSHEET_COLLECTION_NAME)")
	cmd.Flags().String("base-url", "", "Gateway base URL for rows without one (env: HITSHEET_GATEWAY_BASE_URL)")
	cmd.Flags().String("output-dir", "", "Directory for the collection file (default: the workbook's directory)")
}

func addOutputFlags(cmd *cobra.Command) {
	cmd.Flags().StringP("output", "o", "", "Output format: console, json, junit, xlsx (env: HITSHEET_OUTPUT_FORMAT)")
	cmd.Flags().String("output-file", "", "Write output to file (default: stdout) (env: HITSHEET_OUTPUT_FILE)")
	cmd.Flags().BoolP("verbose", "v", false, "Show request method and URL for every row")
	cmd.Flags().Bool("no-color", false, "Disable colored output (env: HITSHEET_OUTPUT_NO_COLOR)")
}

func addNotifyFlags(cmd *cobra.Command) {
	cmd.Flags().String("notify-on", "", "When to notify: always, failure, success, recovery (env: HITSHEET_NOTIFY_ON)")
	cmd.Flags().String("slack-webhook", "", "Slack webhook URL (env: HITSHEET_NOTIFY_SLACK_WEBHOOK)")
	cmd.Flags().String("slack-channel", "", "Slack channel override (env: HITSHEET_NOTIFY_SLACK_CHANNEL)")
	cmd.Flags().String("teams-webhook", "", "Microsoft Teams webhook URL (env: HITSHEET_NOTIFY_TEAMS_WEBHOOK)")
}

// signalContext is cancelled on SIGINT or SIGTERM.
func signalContext(parent context.Context) (context.Context, context.CancelFunc) {
	return signal.NotifyContext(parent, os.Interrupt, syscall.SIGTERM)
}

// newFormatter builds the configured formatter. The returned close func
// releases the output file, if any.
func newFormatter(cmd *cobra.Command) (output.Formatter, func() error, error) {
	var w io.Writer = cmd.OutOrStdout()
	closeFn := func() error { return nil }

	oc := cfg.Output
	if oc.File != "" && oc.Format != "xlsx" {
		f, err := os.Create(oc.File)
		if err != nil {
			return nil, nil, fmt.Errorf("cannot create output file: %w", err)
		}
		w = f
		closeFn = f.Close
	}

	formatter, err := output.New(oc.Format, w, oc.File, oc.Verbose, oc.NoColor)
	if err != nil {
		closeFn()
		return nil, nil, withCode(ExitUsageError, err)
	}
	return formatter, closeFn, nil
}

// report renders one result or error and flushes accumulating formatters.
func report(cmd *cobra.Command, res *runner.Result, runErr error, header bool) error {
	formatter, closeFn, err := newFormatter(cmd)
	if err != nil {
		return err
	}
	defer closeFn()

	if header {
		formatter.FormatHeader(version)
	}
	var duration time.Duration
	if runErr != nil {
		formatter.FormatError(runErr)
	} else {
		formatter.FormatResult(res)
		duration = res.Duration
	}
	if flushable, ok := formatter.(output.Flushable); ok {
		if err := flushable.Flush(duration); err != nil {
			return fmt.Errorf("error writing output: %w", err)
		}
	}
	return nil
}

// outcome turns a run into the command error.
func outcome(res *runner.Result, err error) error {
	if err != nil {
		return err
	}
	if !res.Passed() {
		return errTestsFailed
	}
	return nil
}

func runCommand(cmd *cobra.Command, args []string) error {
	ctx, cancel := signalContext(cmd.Context())
	defer cancel()

	logger := logging.Default()
	r, err := runner.New(cfg,
		runner.WithLogger(logger),
		runner.WithOutput(cmd.OutOrStdout(), cmd.ErrOrStderr()),
	)
	if err != nil {
		return err
	}

	res, runErr := r.Run(ctx)
	if err := report(cmd, res, runErr, true); err != nil {
		return err
	}
	if !watchFlag {
		return outcome(res, runErr)
	}

	fmt.Fprintf(cmd.OutOrStdout(), "\nWatching %s for changes. Press Ctrl+C to stop.\n", cfg.ExcelPath)
	err = runner.Watch(ctx, []string{cfg.ExcelPath}, runner.WatchDebounceDelay, func(path string) {
		fmt.Fprintf(cmd.OutOrStdout(), "\nChange detected in %s, re-running...\n", path)
		res, runErr := r.Run(ctx)
		if err := report(cmd, res, runErr, false); err != nil {
			logger.Error("failed to write output", "error", err)
		}
	})
	if err != nil && ctx.Err() == nil {
		return err
	}
	return nil
}
