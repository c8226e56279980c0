package config

import (
	"github.com/spf13/viper"

	"github.com/abdul-hamid-achik/hitsheet/packages/generator"
)

const (
	// DefaultRequestTimeout is the native per-request timeout in seconds.
	DefaultRequestTimeout = 30
	DefaultExecutor       = "newman"
	DefaultNewmanCommand  = "newman"
)

// DefaultConfig returns a configuration with default values
func DefaultConfig() *Config {
	return &Config{
		CollectionName: generator.DefaultCollectionName,
		Runner: RunnerConfig{
			Executor: DefaultExecutor,
			Command:  DefaultNewmanCommand,
			Timeout:  DefaultRequestTimeout,
		},
		Notify:  NotifyConfig{On: "always"},
		Output:  OutputConfig{Format: "console"},
		Logging: LoggingConfig{Level: "info", Format: "text"},
	}
}

// setDefaults registers every defaulted key so environment overrides apply to it.
func setDefaults(v *viper.Viper) {
	d := DefaultConfig()
	v.SetDefault("excel_path", "")
	v.SetDefault("collection_name", d.CollectionName)
	v.SetDefault("gateway_base_url", "")
	v.SetDefault("output_dir", "")

	v.SetDefault("auth.base_url", "")
	v.SetDefault("auth.endpoint", "")
	v.SetDefault("auth.method", "")
	v.SetDefault("auth.token_path", "")
	v.SetDefault("auth.cache_ttl", "0s")

	v.SetDefault("email.recipients", []string{})
	v.SetDefault("email.subject", "")
	v.SetDefault("email.from", "")
	v.SetDefault("email.smtp.host", "")
	v.SetDefault("email.smtp.port", 0)
	v.SetDefault("email.smtp.username", "")
	v.SetDefault("email.smtp.password", "")

	v.SetDefault("notify.on", d.Notify.On)
	v.SetDefault("notify.slack_webhook", "")
	v.SetDefault("notify.slack_channel", "")
	v.SetDefault("notify.teams_webhook", "")

	v.SetDefault("runner.executor", d.Runner.Executor)
	v.SetDefault("runner.command", d.Runner.Command)
	v.SetDefault("runner.keep_report", false)
	v.SetDefault("runner.rate", 0.0)
	v.SetDefault("runner.timeout", d.Runner.Timeout)
	v.SetDefault("runner.proxy", "")
	v.SetDefault("runner.max_redirects", 0)

	v.SetDefault("reconcile.strict", false)

	v.SetDefault("output.format", d.Output.Format)
	v.SetDefault("output.file", "")
	v.SetDefault("output.verbose", false)
	v.SetDefault("output.no_color", false)

	v.SetDefault("logging.level", d.Logging.Level)
	v.SetDefault("logging.format", d.Logging.Format)
}
