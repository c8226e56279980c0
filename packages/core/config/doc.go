// Package config loads hitsheet settings from services_config.yaml.
//
// Values come from, in increasing precedence: built-in defaults, the YAML file
// (after ${VAR} expansion), HITSHEET_* environment variables and bound CLI flags.
package config
