package workbook

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func createWorkbook(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "cases.xlsx")
	require.NoError(t, Create(path,
		Sheet{Name: "Users", Visible: true, Rows: [][]string{
			{"Name", "Method", "ExpectedStatus", "Notes"},
			{"Get user", "GET", "200", "first"},
			{"", "", "404"},
		}},
		Sheet{Name: "Drafts", Visible: false, Rows: [][]string{{"Name"}, {"x"}}},
	))
	return path
}

func TestResultsPath(t *testing.T) {
	assert.Equal(t, "dir/cases_results.xlsx", ResultsPath("dir/cases.xlsx"))
	assert.Equal(t, "cases_results", ResultsPath("cases"))
}

func TestSheets(t *testing.T) {
	wb, err := Open(createWorkbook(t))
	require.NoError(t, err)
	defer wb.Close()

	sheets, err := wb.Sheets()
	require.NoError(t, err)
	require.Len(t, sheets, 2)

	assert.Equal(t, "Users", sheets[0].Name)
	assert.True(t, sheets[0].Visible)
	assert.Equal(t, []string{"Name", "Method", "ExpectedStatus", "Notes"}, sheets[0].Header())
	assert.Equal(t, "404", sheets[0].Rows[2][2])

	assert.Equal(t, "Drafts", sheets[1].Name)
	assert.False(t, sheets[1].Visible)
}

func TestWorksheet_InsertAndWrite(t *testing.T) {
	src := createWorkbook(t)
	before, err := os.ReadFile(src)
	require.NoError(t, err)

	wb, err := Open(src)
	require.NoError(t, err)
	defer wb.Close()

	ws := wb.Worksheet("Users")
	require.NoError(t, ws.InsertColumns(3, 2))
	require.NoError(t, ws.SetCell(1, 3, "ActualStatus"))
	require.NoError(t, ws.SetCell(1, 4, "Status"))
	require.NoError(t, ws.SetCell(2, 3, 200))
	require.NoError(t, ws.SetCell(2, 4, "PASSED"))
	require.NoError(t, ws.SetFill(2, 4, FillPassed))
	require.NoError(t, ws.SetFill(3, 4, FillFailed))

	header, err := ws.Header()
	require.NoError(t, err)
	assert.Equal(t, []string{"Name", "Method", "ExpectedStatus", "ActualStatus", "Status", "Notes"}, header)

	max, err := ws.MaxColumn()
	require.NoError(t, err)
	assert.Equal(t, 6, max)

	v, err := ws.Cell(2, 5)
	require.NoError(t, err)
	assert.Equal(t, "first", v)

	out := ResultsPath(src)
	require.NoError(t, wb.SaveAs(out))
	assert.Error(t, wb.SaveAs(src), "source is never overwritten")

	after, err := os.ReadFile(src)
	require.NoError(t, err)
	assert.Equal(t, before, after)

	saved, err := Open(out)
	require.NoError(t, err)
	defer saved.Close()
	got, err := saved.Worksheet("Users").Cell(2, 3)
	require.NoError(t, err)
	assert.Equal(t, "200", got)
}
