package cmd

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/abdul-hamid-achik/hitsheet/packages/core/config"
	"github.com/abdul-hamid-achik/hitsheet/packages/core/env"
	"github.com/abdul-hamid-achik/hitsheet/packages/logging"
)

var (
	version   = "dev"
	buildTime = "unknown"
)

var (
	configFlag    string
	envFileFlag   string
	logLevelFlag  string
	logFormatFlag string
)

// flagKeys maps flag names onto config keys. Only flags of the executing
// command are bound, so commands can share flag names.
var flagKeys = map[string]string{
	"collection-name": "collection_name",
	"base-url":        "gateway_base_url",
	"output-dir":      "output_dir",
	"executor":        "runner.executor",
	"newman":          "runner.command",
	"keep-report":     "runner.keep_report",
	"rate":            "runner.rate",
	"timeout":         "runner.timeout",
	"proxy":           "runner.proxy",
	"strict":          "reconcile.strict",
	"output":          "output.format",
	"output-file":     "output.file",
	"verbose":         "output.verbose",
	"no-color":        "output.no_color",
	"notify-on":       "notify.on",
	"slack-webhook":   "notify.slack_webhook",
	"slack-channel":   "notify.slack_channel",
	"teams-webhook":   "notify.teams_webhook",
	"log-level":       "logging.level",
	"log-format":      "logging.format",
}

var rootCmd = &cobra.Command{
	Use:   "hitsheet",
	Short: "Spreadsheet API tests. No scripting.",
	Long: `hitsheet compiles a workbook of API test cases into a Postman collection,
runs it with newman (or natively), and writes each row's actual status and
PASSED/FAILED verdict into a results copy of the workbook.`,
	SilenceUsage:      true,
	SilenceErrors:     true,
	PersistentPreRunE: setup,
}

// workbookArg annotates commands whose optional argument overrides excel_path.
const workbookArg = "workbook-arg"

// cfg is the configuration of the executing command, set by setup.
var cfg *config.Config

func Execute(v, bt string) {
	version = v
	buildTime = bt
	err := rootCmd.Execute()
	if err != nil && !errors.Is(err, errTestsFailed) {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
	}
	os.Exit(exitCode(err))
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configFlag, "config", "c", "", "Path to config file (default: services_config.yaml in the working directory) (env: HITSHEET_CONFIG)")
	rootCmd.PersistentFlags().StringVar(&envFileFlag, "env-file", env.DefaultDotEnv, "Path to .env file loaded before the config is read")
	rootCmd.PersistentFlags().StringVar(&logLevelFlag, "log-level", "", "Log level: error, warn, info, debug")
	rootCmd.PersistentFlags().StringVar(&logFormatFlag, "log-format", "", "Log format: text, json")

	rootCmd.SetFlagErrorFunc(func(cmd *cobra.Command, err error) error {
		return withCode(ExitUsageError, err)
	})

	rootCmd.AddCommand(runCmd)
	rootCmd.AddCommand(generateCmd)
	rootCmd.AddCommand(reconcileCmd)
	rootCmd.AddCommand(validateCmd)
	rootCmd.AddCommand(listCmd)
	rootCmd.AddCommand(versionCmd)
	rootCmd.AddCommand(initCmd)
}

// setup loads the .env file, the configuration and the logger.
func setup(cmd *cobra.Command, args []string) error {
	explicitEnv := cmd.Flags().Changed("env-file")
	if _, err := env.LoadAndExportDotEnv(envFileFlag, !explicitEnv); err != nil {
		return withCode(ExitConfigError, err)
	}

	v := config.NewViper()
	if err := bindFlags(v, cmd); err != nil {
		return withCode(ExitConfigError, err)
	}
	if insecure := cmd.Flags().Lookup("insecure"); insecure != nil && insecure.Changed {
		v.Set("runner.validate_ssl", false)
	}

	path := configFlag
	if path == "" {
		path = os.Getenv(config.EnvPrefix + "_CONFIG")
	}
	loaded, err := config.Load(v, path)
	if err != nil {
		return withCode(ExitConfigError, err)
	}
	if _, ok := cmd.Annotations[workbookArg]; ok && len(args) > 0 && args[0] != "" {
		loaded.ExcelPath = args[0]
	}
	cfg = loaded

	logger := logging.New(cmd.ErrOrStderr(), logging.ParseLevel(cfg.Logging.Level), cfg.Logging.Format)
	logging.SetDefault(logger)
	return nil
}

func bindFlags(v *viper.Viper, cmd *cobra.Command) error {
	for name, key := range flagKeys {
		f := cmd.Flags().Lookup(name)
		if f == nil {
			continue
		}
		if err := v.BindPFlag(key, f); err != nil {
			return fmt.Errorf("failed to bind --%s: %w", name, err)
		}
	}
	return nil
}
