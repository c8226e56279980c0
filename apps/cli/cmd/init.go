package cmd

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/abdul-hamid-achik/hitsheet/packages/core/config"
	"github.com/abdul-hamid-achik/hitsheet/packages/workbook"
)

var (
	forceInit    bool
	workbookInit string
)

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Initialize a new hitsheet project",
	Long: `Initialize a new hitsheet project in the current directory.

This creates:
  - services_config.yaml - Configuration file (auth, runner, email)
  - api_tests.xlsx       - Example workbook

Examples:
  hitsheet init
  hitsheet init --workbook smoke.xlsx --force`,
	Args: usageArgs(cobra.NoArgs),
	RunE: initCommand,
}

func init() {
	initCmd.Flags().BoolVarP(&forceInit, "force", "f", false, "Overwrite existing files")
	initCmd.Flags().StringVar(&workbookInit, "workbook", "api_tests.xlsx", "Name of the example workbook")
}

// sampleSheets is the example workbook: one visible test sheet and a hidden
// notes sheet that is never compiled.
func sampleSheets() []workbook.Sheet {
	return []workbook.Sheet{
		{
			Name:    "Posts",
			Visible: true,
			Rows: [][]string{
				{"ID", "Name", "Folder", "Method", "URL", "Headers", "Payload", "ExpectedStatus", "Assertions"},
				{"TC-001", "Get post", "Posts", "GET", "https://jsonplaceholder.typicode.com/posts/1", "", "", "200",
					`{"id": {"eq": 1}, "title": {"not_empty": true}}`},
				{"TC-002", "Create post", "Posts", "POST", "https://jsonplaceholder.typicode.com/posts",
					`{"Content-Type": "application/json"}`, `{"title": "hitsheet", "body": "example", "userId": 1}`, "201",
					`{"title": {"eq": "hitsheet"}}`},
				{"TC-003", "Missing post", "Errors", "GET", "https://jsonplaceholder.typicode.com/posts/0", "", "", "404", ""},
			},
		},
		{
			Name:    "Notes",
			Visible: false,
			Rows:    [][]string{{"Hidden sheets are not compiled."}},
		},
	}
}

func initCommand(cmd *cobra.Command, args []string) error {
	cwd, err := os.Getwd()
	if err != nil {
		return err
	}

	configFile := configFlag
	if configFile == "" {
		configFile = filepath.Join(cwd, config.ConfigFilenames[0])
	}
	workbookFile := filepath.Join(cwd, workbookInit)

	for _, f := range []string{configFile, workbookFile} {
		if _, err := os.Stat(f); err == nil {
			if !forceInit {
				return fmt.Errorf("file already exists: %s (use --force to overwrite)", f)
			}
			if err := os.Remove(f); err != nil {
				return err
			}
		}
	}

	if err := config.WriteSample(configFile, config.Sample(workbookInit)); err != nil {
		return fmt.Errorf("failed to create config file: %w", err)
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Created: %s\n", configFile)

	if err := workbook.Create(workbookFile, sampleSheets()...); err != nil {
		return fmt.Errorf("failed to create example workbook: %w", err)
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Created: %s\n", workbookFile)

	fmt.Fprintf(cmd.OutOrStdout(), "\nhitsheet project initialized!\n")
	fmt.Fprintf(cmd.OutOrStdout(), "Set API_USER and API_PASSWORD (or remove the auth section), then run 'hitsheet run'.\n")

	return nil
}
