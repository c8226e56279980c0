package cmd

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/abdul-hamid-achik/hitsheet/packages/collection"
	"github.com/abdul-hamid-achik/hitsheet/packages/core/runner"
	"github.com/abdul-hamid-achik/hitsheet/packages/logging"
)

var validateCmd = &cobra.Command{
	Use:   "validate [workbook.xlsx]",
	Short: "Check the compiled collection without executing it",
	Long: `Compile the workbook and check the collection against the Postman v2.1
document schema without fetching a token or running anything.

Examples:
  hitsheet validate
  hitsheet validate api_tests.xlsx`,
	Args:        usageArgs(cobra.MaximumNArgs(1)),
	Annotations: map[string]string{workbookArg: ""},
	RunE:        validateCommand,
}

func init() {
	addCollectionFlags(validateCmd)
}

func validateCommand(cmd *cobra.Command, args []string) error {
	r, err := runner.New(cfg, runner.WithLogger(logging.Default()))
	if err != nil {
		return err
	}
	gen, err := r.Generate(cmd.Context(), false)
	if err != nil {
		return err
	}
	defer gen.Close()

	if err := collection.ValidateCollection(gen.Collection); err != nil {
		var verr *collection.ValidationError
		if !errors.As(err, &verr) {
			return err
		}
		for _, p := range verr.Problems {
			fmt.Fprintf(cmd.ErrOrStderr(), "Error in %s: %s\n", cfg.ExcelPath, p)
		}
		return fmt.Errorf("validation failed")
	}

	fmt.Fprintf(cmd.OutOrStdout(), "Valid: %s (%d requests)\n", cfg.ExcelPath, len(gen.Linkage))
	return nil
}
