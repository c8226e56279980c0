package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/abdul-hamid-achik/hitsheet/packages/core/runner"
	"github.com/abdul-hamid-achik/hitsheet/packages/logging"
)

var generateCmd = &cobra.Command{
	Use:   "generate [workbook.xlsx]",
	Short: "Compile a workbook into a Postman collection without running it",
	Long: `Compile the workbook into <collection_name>_postman_collection.json.

The auth token is fetched and embedded unless --no-auth is set.

Examples:
  hitsheet generate
  hitsheet generate api_tests.xlsx --no-auth
  hitsheet generate api_tests.xlsx --output-dir ./collections`,
	Args:        usageArgs(cobra.MaximumNArgs(1)),
	Annotations: map[string]string{workbookArg: ""},
	RunE:        generateCommand,
}

var noAuthFlag bool

func init() {
	addCollectionFlags(generateCmd)
	generateCmd.Flags().BoolVar(&noAuthFlag, "no-auth", false, "Do not fetch a token; the collection carries no auth")
}

func generateCommand(cmd *cobra.Command, args []string) error {
	ctx, cancel := signalContext(cmd.Context())
	defer cancel()

	r, err := runner.New(cfg, runner.WithLogger(logging.Default()))
	if err != nil {
		return err
	}
	gen, err := r.Generate(ctx, !noAuthFlag)
	if err != nil {
		return err
	}
	defer gen.Close()

	path, problems, err := r.WriteCollection(gen)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Collection: %s\n", path)
	fmt.Fprintf(out, "Requests:   %d\n", len(gen.Linkage))
	for _, name := range gen.Skipped {
		fmt.Fprintf(out, "Skipped sheet: %s\n", name)
	}
	for _, p := range problems {
		fmt.Fprintf(out, "Warning: %s\n", p)
	}
	return nil
}
