package config

import (
	"errors"
	"path/filepath"
	"strings"
	"time"

	"github.com/abdul-hamid-achik/hitsheet/packages/auth"
	"github.com/abdul-hamid-achik/hitsheet/packages/notify"
)

// ErrMissingExcelPath is returned when no workbook is configured.
var ErrMissingExcelPath = errors.New("excel_path is not configured")

// Config represents the hitsheet configuration
type Config struct {
	ExcelPath      string `mapstructure:"excel_path" yaml:"excel_path"`
	CollectionName string `mapstructure:"collection_name" yaml:"collection_name"`
	// GatewayBaseURL replaces every row's host when set.
	GatewayBaseURL string `mapstructure:"gateway_base_url" yaml:"gateway_base_url,omitempty"`
	// OutputDir receives the collection. Empty means next to the workbook.
	OutputDir string `mapstructure:"output_dir" yaml:"output_dir,omitempty"`

	Auth      auth.Config        `mapstructure:"auth" yaml:"auth,omitempty"`
	Email     notify.EmailConfig `mapstructure:"email" yaml:"email,omitempty"`
	Notify    NotifyConfig       `mapstructure:"notify" yaml:"notify,omitempty"`
	Runner    RunnerConfig       `mapstructure:"runner" yaml:"runner"`
	Reconcile ReconcileConfig    `mapstructure:"reconcile" yaml:"reconcile,omitempty"`
	Output    OutputConfig       `mapstructure:"output" yaml:"output,omitempty"`
	Logging   LoggingConfig      `mapstructure:"logging" yaml:"logging,omitempty"`
}

type RunnerConfig struct {
	// Executor is "newman" or "native".
	Executor   string   `mapstructure:"executor" yaml:"executor"`
	Command    string   `mapstructure:"command" yaml:"command,omitempty"`
	Args       []string `mapstructure:"args" yaml:"args,omitempty"`
	KeepReport bool     `mapstructure:"keep_report" yaml:"keep_report,omitempty"`
	// Rate limits the native executor in requests per second. Zero is unlimited.
	Rate float64 `mapstructure:"rate" yaml:"rate,omitempty"`
	// Timeout is the native per-request timeout in seconds.
	Timeout     int    `mapstructure:"timeout" yaml:"timeout,omitempty"`
	ValidateSSL *bool  `mapstructure:"validate_ssl" yaml:"validate_ssl,omitempty"`
	Proxy       string `mapstructure:"proxy" yaml:"proxy,omitempty"`
	// FollowRedirects applies to both executors; MaxRedirects only to native.
	FollowRedirects *bool `mapstructure:"follow_redirects" yaml:"follow_redirects,omitempty"`
	MaxRedirects    int   `mapstructure:"max_redirects" yaml:"max_redirects,omitempty"`
}

type ReconcileConfig struct {
	Strict bool `mapstructure:"strict" yaml:"strict,omitempty"`
}

type NotifyConfig struct {
	On           string `mapstructure:"on" yaml:"on,omitempty"`
	SlackWebhook string `mapstructure:"slack_webhook" yaml:"slack_webhook,omitempty"`
	SlackChannel string `mapstructure:"slack_channel" yaml:"slack_channel,omitempty"`
	TeamsWebhook string `mapstructure:"teams_webhook" yaml:"teams_webhook,omitempty"`
}

type OutputConfig struct {
	// Format is console, json, junit or xlsx.
	Format  string `mapstructure:"format" yaml:"format,omitempty"`
	File    string `mapstructure:"file" yaml:"file,omitempty"`
	Verbose bool   `mapstructure:"verbose" yaml:"verbose,omitempty"`
	NoColor bool   `mapstructure:"no_color" yaml:"no_color,omitempty"`
}

type LoggingConfig struct {
	Level  string `mapstructure:"level" yaml:"level,omitempty"`   // error, warn, info, debug
	Format string `mapstructure:"format" yaml:"format,omitempty"` // text, json
}

func getBool(b *bool, defaultVal bool) bool {
	if b == nil {
		return defaultVal
	}
	return *b
}

// BoolPtr returns a pointer to b.
func BoolPtr(b bool) *bool {
	return &b
}

// GetValidateSSL returns the runner's TLS verification setting, defaulting to true
func (r RunnerConfig) GetValidateSSL() bool {
	return getBool(r.ValidateSSL, true)
}

// GetFollowRedirects reports whether redirects are followed, defaulting to true.
func (r RunnerConfig) GetFollowRedirects() bool {
	return getBool(r.FollowRedirects, true)
}

// RequestTimeout returns the native per-request timeout.
func (r RunnerConfig) RequestTimeout() time.Duration {
	if r.Timeout <= 0 {
		return DefaultRequestTimeout * time.Second
	}
	return time.Duration(r.Timeout) * time.Second
}

// Validate checks the settings every run needs.
func (c *Config) Validate() error {
	if strings.TrimSpace(c.ExcelPath) == "" {
		return ErrMissingExcelPath
	}
	return nil
}

// AuthBaseURL returns the base URL used for the token call: auth.base_url,
// else the gateway base URL.
func (c *Config) AuthBaseURL() string {
	if c.Auth.BaseURL != "" {
		return c.Auth.BaseURL
	}
	return c.GatewayBaseURL
}

// CollectionDir returns where the collection file is written.
func (c *Config) CollectionDir() string {
	if c.OutputDir != "" {
		return c.OutputDir
	}
	return filepath.Dir(c.ExcelPath)
}
