package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/abdul-hamid-achik/hitsheet/packages/core/runner"
	"github.com/abdul-hamid-achik/hitsheet/packages/logging"
)

var listCmd = &cobra.Command{
	Use:   "list [workbook.xlsx]",
	Short: "List the requests each sheet compiles to",
	Long: `List the requests compiled from every sheet, in execution order.

Examples:
  hitsheet list
  hitsheet list api_tests.xlsx`,
	Args:        usageArgs(cobra.MaximumNArgs(1)),
	Annotations: map[string]string{workbookArg: ""},
	RunE:        listCommand,
}

func init() {
	addCollectionFlags(listCmd)
}

func listCommand(cmd *cobra.Command, args []string) error {
	r, err := runner.New(cfg, runner.WithLogger(logging.Default()))
	if err != nil {
		return err
	}
	gen, err := r.Generate(cmd.Context(), false)
	if err != nil {
		return err
	}
	defer gen.Close()

	items := gen.Collection.Requests()
	out := cmd.OutOrStdout()
	sheet := ""
	for i, link := range gen.Linkage {
		if link.Sheet != sheet {
			sheet = link.Sheet
			fmt.Fprintf(out, "\n%s:\n", sheet)
		}
		fmt.Fprintf(out, "  - row %d: %s\n", link.Row, link.Name)
		if i < len(items) && items[i].Request != nil {
			fmt.Fprintf(out, "    %s %s\n", items[i].Request.Method, items[i].Request.URL.Raw)
		}
	}
	for _, name := range gen.Skipped {
		fmt.Fprintf(out, "\n%s: skipped (hidden or no header row)\n", name)
	}
	if gen.Dropped > 0 {
		fmt.Fprintf(out, "\n%d row(s) without method or URL dropped\n", gen.Dropped)
	}
	return nil
}
