package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/abdul-hamid-achik/hitsheet/packages/auth"
	"github.com/abdul-hamid-achik/hitsheet/packages/notify"
)

// Sample returns the starter configuration written by hitsheet init.
func Sample(excelPath string) *Config {
	cfg := DefaultConfig()
	cfg.ExcelPath = excelPath
	cfg.GatewayBaseURL = "${GATEWAY_BASE_URL:-}"
	cfg.Auth = auth.Config{
		Endpoint:  "/auth/login",
		Body:      map[string]any{"username": "${API_USER}", "password": "${API_PASSWORD}"},
		TokenPath: "data.token",
		CacheTTL:  10 * time.Minute,
	}
	cfg.Email = notify.EmailConfig{
		Recipients: []string{},
		SMTP: notify.SMTPConfig{
			Host:     "${SMTP_HOST:-}",
			Port:     587,
			Username: "${SMTP_USERNAME:-}",
			Password: "${SMTP_PASSWORD:-}",
		},
	}
	return cfg
}

// WriteSample writes cfg as YAML, refusing to overwrite an existing file.
func WriteSample(path string, cfg *Config) error {
	if _, err := os.Stat(path); err == nil {
		return fmt.Errorf("%s already exists", path)
	}
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("failed to encode config: %w", err)
	}
	return os.WriteFile(path, data, 0o644)
}
