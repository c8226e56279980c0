package schema

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalize(t *testing.T) {
	assert.Equal(t, "http method", Normalize("  Http   Method "))
	assert.Equal(t, "expectedstatus", Normalize("ExpectedStatus"))
	assert.Equal(t, "", Normalize("   "))
}

func TestResolve_SynonymsAreCaseInsensitive(t *testing.T) {
	a, ok := Resolve([]string{"Name", "Http Method", "Path"})
	require.True(t, ok)
	b, ok := Resolve([]string{"Name", "verb", "Path"})
	require.True(t, ok)

	ia, ok := a.Index(FieldMethod)
	require.True(t, ok)
	ib, ok := b.Index(FieldMethod)
	require.True(t, ok)
	assert.Equal(t, 1, ia)
	assert.Equal(t, ia, ib)
}

func TestResolve_FirstSynonymWins(t *testing.T) {
	// "status" and "expectedstatus" both map to expected_status; the earlier synonym wins.
	cols, ok := Resolve([]string{"Status", "Name", "ExpectedStatus"})
	require.True(t, ok)

	idx, ok := cols.Index(FieldExpectedStatus)
	require.True(t, ok)
	assert.Equal(t, 2, idx)
}

func TestResolve_EmptyHeader(t *testing.T) {
	_, ok := Resolve(nil)
	assert.False(t, ok)

	_, ok = Resolve([]string{"", "  "})
	assert.False(t, ok)
}

func TestResolve_Unresolved(t *testing.T) {
	cols, ok := Resolve([]string{"Name", "Notes"})
	require.True(t, ok)

	_, found := cols.Index(FieldURL)
	assert.False(t, found)
	assert.False(t, cols.Has(FieldURL))
	assert.Equal(t, []Field{FieldName}, cols.Resolved())
}

func TestResolve_CaseNameSharesColumn(t *testing.T) {
	cols, ok := Resolve([]string{"TestCaseName", "Endpoint"})
	require.True(t, ok)

	name, _ := cols.Index(FieldName)
	caseName, _ := cols.Index(FieldCaseName)
	path, _ := cols.Index(FieldPath)
	assert.Equal(t, 0, name)
	assert.Equal(t, 0, caseName)
	assert.Equal(t, 1, path)
}

func TestColumns_Cell(t *testing.T) {
	cols, ok := Resolve([]string{"Name", "Method", "URL"})
	require.True(t, ok)

	row := []string{" Get user ", "get"}
	assert.Equal(t, "Get user", cols.Cell(row, FieldName))
	assert.Equal(t, "get", cols.Cell(row, FieldMethod))
	assert.Equal(t, "", cols.Cell(row, FieldURL), "short row")
	assert.Equal(t, "", cols.Cell(row, FieldPayload), "unresolved field")
}

func TestHeaderMap_LastDuplicateWins(t *testing.T) {
	m := BuildHeaderMap([]string{"Path", "Notes", "path"})
	idx, ok := m.Lookup(FieldPath)
	require.True(t, ok)
	assert.Equal(t, 2, idx)
}

func TestFirstIndex(t *testing.T) {
	header := []string{"Status", "ActualStatus", "Status", "TCID"}

	idx, ok := FirstIndex(header, FieldExpectedStatus)
	require.True(t, ok)
	assert.Equal(t, 0, idx)

	idx, ok = FirstIndex(header, FieldID)
	require.True(t, ok)
	assert.Equal(t, 3, idx)

	_, ok = FirstIndex(header, FieldURL)
	assert.False(t, ok)
}
