package env

import (
	"errors"
	"fmt"
	"io/fs"
	"os"

	"github.com/subosito/gotenv"
)

// DefaultDotEnv is loaded from the working directory when no file is given.
const DefaultDotEnv = ".env"

// LoadDotEnv parses a .env file and returns its key-value pairs without touching
// the process environment.
func LoadDotEnv(path string) (map[string]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("cannot open env file: %w", err)
	}
	defer f.Close()

	vars, err := gotenv.StrictParse(f)
	if err != nil {
		return nil, fmt.Errorf("reading env file %s: %w", path, err)
	}
	return vars, nil
}

// LoadAndExportDotEnv parses a .env file and exports its variables for ${VAR}
// expansion. Variables already set in the environment are left alone. A missing
// file is not an error when optional is true.
func LoadAndExportDotEnv(path string, optional bool) (map[string]string, error) {
	vars, err := LoadDotEnv(path)
	if err != nil {
		if optional && errors.Is(err, fs.ErrNotExist) {
			return nil, nil
		}
		return nil, err
	}

	for k, v := range vars {
		if _, set := os.LookupEnv(k); !set {
			_ = os.Setenv(k, v)
		}
	}
	return vars, nil
}
