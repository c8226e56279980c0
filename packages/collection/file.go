package collection

import (
	"bytes"
	_ "embed"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/xeipuuv/gojsonschema"
)

//go:embed schema.json
var documentSchema string

// FileName returns the file name a collection called name is written to.
// Path separators in name are replaced so the file stays in its directory.
func FileName(name string) string {
	safe := strings.Map(func(r rune) rune {
		if r == '/' || r == '\\' {
			return '_'
		}
		return r
	}, name)
	return safe + "_postman_collection.json"
}

// Marshal encodes the collection with two-space indentation.
func Marshal(c *Collection) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(c); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// Write writes the collection into dir and returns the file path.
func Write(c *Collection, dir string) (string, error) {
	data, err := Marshal(c)
	if err != nil {
		return "", fmt.Errorf("failed to encode collection: %w", err)
	}
	path := filepath.Join(dir, FileName(c.Info.Name))
	if err := os.WriteFile(path, data, 0644); err != nil {
		return "", fmt.Errorf("failed to write collection: %w", err)
	}
	return path, nil
}

// Load reads a collection document from path.
func Load(path string) (*Collection, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read collection: %w", err)
	}
	var c Collection
	if err := json.Unmarshal(data, &c); err != nil {
		return nil, fmt.Errorf("failed to parse collection: %w", err)
	}
	return &c, nil
}

// ValidationError lists the schema violations of a collection document.
type ValidationError struct {
	Problems []string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid collection: %s", strings.Join(e.Problems, "; "))
}

// Validate checks an encoded collection document against the v2.1 schema subset.
func Validate(document []byte) error {
	result, err := gojsonschema.Validate(
		gojsonschema.NewStringLoader(documentSchema),
		gojsonschema.NewBytesLoader(document),
	)
	if err != nil {
		return fmt.Errorf("schema validation error: %w", err)
	}
	if result.Valid() {
		return nil
	}
	problems := make([]string, 0, len(result.Errors()))
	for _, desc := range result.Errors() {
		problems = append(problems, desc.String())
	}
	return &ValidationError{Problems: problems}
}

// ValidateCollection encodes c and validates it.
func ValidateCollection(c *Collection) error {
	data, err := Marshal(c)
	if err != nil {
		return err
	}
	return Validate(data)
}
