package cmd

import (
	"github.com/spf13/cobra"

	"github.com/abdul-hamid-achik/hitsheet/packages/core/runner"
	"github.com/abdul-hamid-achik/hitsheet/packages/logging"
)

var reconcileCmd = &cobra.Command{
	Use:   "reconcile [workbook.xlsx] --report newman-report.json",
	Short: "Write the results of an existing runner report into the workbook",
	Long: `Compile the workbook again and write the results of a newman JSON
report into <workbook>_results.xlsx, without running anything.

Examples:
  hitsheet run --keep-report
  hitsheet reconcile api_tests.xlsx --report newman-report.json`,
	Args:        usageArgs(cobra.MaximumNArgs(1)),
	Annotations: map[string]string{workbookArg: ""},
	RunE:        reconcileCommand,
}

var reportFlag string

func init() {
	addCollectionFlags(reconcileCmd)
	addOutputFlags(reconcileCmd)
	addNotifyFlags(reconcileCmd)
	reconcileCmd.Flags().StringVar(&reportFlag, "report", "", "newman JSON report to reconcile")
	reconcileCmd.Flags().Bool("strict", false, "Fail when the number of results differs from the number of rows")
	_ = reconcileCmd.MarkFlagRequired("report")
}

func reconcileCommand(cmd *cobra.Command, args []string) error {
	ctx, cancel := signalContext(cmd.Context())
	defer cancel()

	r, err := runner.New(cfg,
		runner.WithLogger(logging.Default()),
		runner.WithOutput(cmd.OutOrStdout(), cmd.ErrOrStderr()),
	)
	if err != nil {
		return err
	}
	res, runErr := r.ReconcileReport(ctx, reportFlag)
	if err := report(cmd, res, runErr, true); err != nil {
		return err
	}
	return outcome(res, runErr)
}
