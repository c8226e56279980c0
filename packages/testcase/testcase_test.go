package testcase

import (
	"testing"

	"github.com/abdul-hamid-achik/hitsheet/packages/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func normalizer(t *testing.T, header []string, override string) *Normalizer {
	t.Helper()
	cols, ok := schema.Resolve(header)
	require.True(t, ok)
	return NewNormalizer("Users", cols, override)
}

func TestStep_StickyMethod(t *testing.T) {
	n := normalizer(t, []string{"Method", "Path"}, "https://api.test")

	recs := n.Records([][]string{
		{"Method", "Path"},
		{"post", "/a"},
		{"", "/b"},
	})

	require.Len(t, recs, 2)
	assert.Equal(t, "POST", recs[0].Method)
	assert.Equal(t, "POST", recs[1].Method)
	assert.Equal(t, "https://api.test/b", recs[1].URL)
	assert.Equal(t, 3, recs[1].Row)
}

func TestStep_Defaults(t *testing.T) {
	n := normalizer(t, []string{"Path"}, "https://api.test")

	_, rec := n.Step(NewCarry("Users"), 2, []string{"/ping"})
	require.NotNil(t, rec)
	assert.Equal(t, DefaultMethod, rec.Method)
	assert.Equal(t, DefaultName, rec.Name)
	assert.Equal(t, "Users", rec.Folder)
	assert.Equal(t, "Users", rec.Sheet)
}

func TestStep_BlankRowKeepsState(t *testing.T) {
	n := normalizer(t, []string{"Name", "Method", "Path"}, "https://api.test")

	state, rec := n.Step(NewCarry("Users"), 2, []string{"List", "DELETE", "/x"})
	require.NotNil(t, rec)

	after, blank := n.Step(state, 3, []string{"", "  ", ""})
	assert.Nil(t, blank)
	assert.Equal(t, state, after)

	_, rec = n.Step(after, 4, []string{"", "", "/y"})
	require.NotNil(t, rec)
	assert.Equal(t, "List", rec.Name)
	assert.Equal(t, "DELETE", rec.Method)
}

func TestStep_StepDoesNotMutateInput(t *testing.T) {
	n := normalizer(t, []string{"Name", "Path"}, "https://api.test")

	prev := NewCarry("Users")
	next, _ := n.Step(prev, 2, []string{"Create", "/x"})

	assert.Equal(t, "", prev.Name)
	assert.Equal(t, "Create", next.Name)
}

func TestStep_NameFallsBackToCaseName(t *testing.T) {
	n := normalizer(t, []string{"Title", "TestCaseName", "URL"}, "")

	_, rec := n.Step(NewCarry("S"), 2, []string{"", "TC login", "https://x.test/login"})
	require.NotNil(t, rec)
	assert.Equal(t, "TC login", rec.Name)
}

func TestStep_URLPrecedence(t *testing.T) {
	header := []string{"URL", "BaseURL", "Path"}

	tests := []struct {
		name     string
		override string
		row      []string
		want     string
	}{
		{"override wins over url cell", "https://gw.example/", []string{"https://other/x", "https://base", "/users/1"}, "https://gw.example/users/1"},
		{"url cell verbatim", "", []string{" https://full.test/a?b=1 ", "https://base", "/p"}, "https://full.test/a?b=1"},
		{"base plus path", "", []string{"", "https://base/", "//p"}, "https://base/p"},
		{"path looks like url", "", []string{"", "", "HTTP://x.test/p"}, "HTTP://x.test/p"},
		{"override without path falls through", "https://gw", []string{"https://full.test", "", ""}, "https://full.test"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			n := normalizer(t, header, tt.override)
			_, rec := n.Step(NewCarry("S"), 2, tt.row)
			require.NotNil(t, rec)
			assert.Equal(t, tt.want, rec.URL)
		})
	}
}

func TestStep_UnresolvableRowDropped(t *testing.T) {
	n := normalizer(t, []string{"Name", "Path"}, "")

	state, rec := n.Step(NewCarry("S"), 2, []string{"Info", "/relative"})
	assert.Nil(t, rec)
	assert.Equal(t, "Info", state.Name, "dropped rows still update sticky fields")
}

func TestStep_FolderCarriesForward(t *testing.T) {
	n := normalizer(t, []string{"Group", "Path"}, "https://api.test")

	recs := n.Records([][]string{
		{"Group", "Path"},
		{"", "/a"},
		{"Orders", "/b"},
		{"", "/c"},
	})
	require.Len(t, recs, 3)
	assert.Equal(t, "Users", recs[0].Folder)
	assert.Equal(t, "Orders", recs[1].Folder)
	assert.Equal(t, "Orders", recs[2].Folder)
}

func TestStep_RawCells(t *testing.T) {
	header := []string{"Path", "Body", "ExpectedStatus", "ID", "Assertions", "Headers", "PathParams", "Query"}
	n := normalizer(t, header, "https://api.test")

	_, rec := n.Step(NewCarry("S"), 2, []string{"/a", " raw ", "201.0", "TC-1", `{"a":{"eq":1}}`, "X: 1", "id=1&b=2", "q: 1"})
	require.NotNil(t, rec)
	assert.Equal(t, " raw ", rec.Payload)
	assert.Equal(t, "201.0", rec.ExpectedStatus)
	assert.Equal(t, "TC-1", rec.ID)
	assert.Equal(t, `{"a":{"eq":1}}`, rec.Assertions)
	assert.Equal(t, "X: 1", rec.Headers)
	assert.Equal(t, "id=1&b=2", rec.PathParams)
	assert.Equal(t, "q: 1", rec.QueryParams)
}
