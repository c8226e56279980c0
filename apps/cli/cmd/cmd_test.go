package cmd

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/abdul-hamid-achik/hitsheet/packages/auth"
	"github.com/abdul-hamid-achik/hitsheet/packages/core/config"
	"github.com/abdul-hamid-achik/hitsheet/packages/core/runner"
	"github.com/abdul-hamid-achik/hitsheet/packages/executor"
	"github.com/abdul-hamid-achik/hitsheet/packages/output"
	"github.com/abdul-hamid-achik/hitsheet/packages/workbook"
)

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&out)
	rootCmd.SetArgs(args)
	err := rootCmd.Execute()
	return out.String(), err
}

func TestExitCode(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"nil", nil, ExitSuccess},
		{"tests failed", errTestsFailed, ExitTestFailure},
		{"explicit", withCode(ExitUsageError, errors.New("bad flag")), ExitUsageError},
		{"missing excel path", &runner.StageError{Stage: runner.StageConfig, Err: config.ErrMissingExcelPath}, ExitConfigError},
		{"auth", &runner.StageError{Stage: runner.StageAuth, Err: &auth.Error{Message: "no token"}}, ExitConfigError},
		{"runner", &runner.StageError{Stage: runner.StageExecute, Err: executor.ErrNoReport}, ExitRunnerError},
		{"wrapped runner", fmt.Errorf("run: %w", &runner.StageError{Stage: runner.StageExecute, Err: errors.New("exit 2")}), ExitRunnerError},
		{"other", errors.New("disk full"), ExitTestFailure},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, exitCode(tt.err))
		})
	}
}

func TestUsageErrors(t *testing.T) {
	chdir(t, t.TempDir())

	_, err := execute(t, "list", "--bogus")
	require.Error(t, err)
	assert.Equal(t, ExitUsageError, exitCode(err))

	_, err = execute(t, "list", "a.xlsx", "b.xlsx")
	require.Error(t, err)
	assert.Equal(t, ExitUsageError, exitCode(err))
}

func TestVersion(t *testing.T) {
	out, err := execute(t, "version")
	require.NoError(t, err)
	assert.Contains(t, out, "hitsheet version dev")
}

func TestInitListValidateGenerate(t *testing.T) {
	dir := t.TempDir()
	chdir(t, dir)

	out, err := execute(t, "init")
	require.NoError(t, err)
	assert.Contains(t, out, "services_config.yaml")
	assert.FileExists(t, filepath.Join(dir, "services_config.yaml"))
	assert.FileExists(t, filepath.Join(dir, "api_tests.xlsx"))

	_, err = execute(t, "init")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "already exists")

	out, err = execute(t, "list")
	require.NoError(t, err)
	assert.Contains(t, out, "Posts:")
	assert.Contains(t, out, "row 2: Get post")
	assert.Contains(t, out, "GET https://jsonplaceholder.typicode.com/posts/1")
	assert.Contains(t, out, "Notes: skipped")

	out, err = execute(t, "validate")
	require.NoError(t, err)
	assert.Contains(t, out, "Valid: api_tests.xlsx (3 requests)")

	out, err = execute(t, "generate", "--no-auth")
	require.NoError(t, err)
	assert.Contains(t, out, "Requests:   3")

	matches, err := filepath.Glob(filepath.Join(dir, "*postman_collection.json"))
	require.NoError(t, err)
	assert.Len(t, matches, 1)
}

func TestListMissingWorkbook(t *testing.T) {
	chdir(t, t.TempDir())

	_, err := execute(t, "list")
	require.Error(t, err)
	assert.Equal(t, ExitConfigError, exitCode(err))
}

func TestRunNative(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		if r.URL.Path == "/missing" {
			w.WriteHeader(http.StatusNotFound)
		}
		_, _ = w.Write([]byte(`{"ok": true}`))
	}))
	defer server.Close()

	dir := t.TempDir()
	chdir(t, dir)
	require.NoError(t, workbook.Create(filepath.Join(dir, "smoke.xlsx"), workbook.Sheet{
		Name:    "Smoke",
		Visible: true,
		Rows: [][]string{
			{"ID", "Name", "Method", "URL", "ExpectedStatus"},
			{"S-1", "Ping", "GET", server.URL + "/ping", "200"},
			{"S-2", "Missing", "GET", server.URL + "/missing", "200"},
		},
	}))

	out, err := execute(t, "run", "smoke.xlsx", "--executor", "native", "--output", "json", "--log-level", "error")
	require.Error(t, err)
	assert.ErrorIs(t, err, errTestsFailed)
	assert.Equal(t, ExitTestFailure, exitCode(err))

	var doc output.JSONOutput
	start := bytes.IndexByte([]byte(out), '{')
	require.GreaterOrEqual(t, start, 0)
	require.NoError(t, json.Unmarshal([]byte(out[start:]), &doc))
	assert.Equal(t, 1, doc.Summary.Passed)
	assert.Equal(t, 1, doc.Summary.Failed)
	require.Len(t, doc.Collections, 1)
	assert.Equal(t, []string{"S-2"}, doc.Collections[0].FailedIDs)

	_, statErr := os.Stat(filepath.Join(dir, "smoke_results.xlsx"))
	assert.NoError(t, statErr)
}
