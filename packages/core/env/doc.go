// Package env loads .env files and expands ${VAR} references in configuration text.
//
// Expansion supports ${VAR} and ${VAR:-default}. An unset variable without a
// default expands to the empty string.
package env
