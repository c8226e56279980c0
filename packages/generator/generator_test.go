package generator

import (
	"strings"
	"testing"

	"github.com/abdul-hamid-achik/hitsheet/packages/assertions"
	"github.com/abdul-hamid-achik/hitsheet/packages/logging"
	"github.com/abdul-hamid-achik/hitsheet/packages/params"
	"github.com/abdul-hamid-achik/hitsheet/packages/workbook"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerate_TwoRowScenario(t *testing.T) {
	sheet := workbook.Sheet{Name: "Users", Visible: true, Rows: [][]string{
		{"Name", "Method", "Path", "ExpectedStatus"},
		{"Get user", "GET", "/users/1", "200"},
		{"", "", "/users/2", "404"},
	}}

	g := New("API Tests", WithBaseURL("https://api.test"), WithLogger(logging.Discard()))
	res := g.Generate([]workbook.Sheet{sheet})

	require.Len(t, res.Collection.Item, 1)
	folder := res.Collection.Item[0]
	assert.Equal(t, "Users", folder.Name)
	require.Len(t, folder.Item, 2)

	second := folder.Item[1]
	assert.Equal(t, "Get user", second.Name)
	assert.Equal(t, "GET", second.Request.Method)
	assert.Equal(t, "https://api.test/users/2", second.Request.URL.Raw)

	statusOf := func(stmts []assertions.Statement) int {
		for _, s := range stmts {
			if s.Kind == assertions.KindStatus {
				return s.Status
			}
		}
		return 0
	}
	assert.Equal(t, 200, statusOf(folder.Item[0].Tests))
	assert.Equal(t, 404, statusOf(second.Tests))

	require.Len(t, res.Linkage, 2)
	assert.Equal(t, 2, res.Linkage[0].Row)
	assert.Equal(t, 3, res.Linkage[1].Row)
	assert.Equal(t, "Users", res.Linkage[1].Sheet)
}

func TestGenerate_OverrideWithPathParams(t *testing.T) {
	sheet := workbook.Sheet{Name: "S", Visible: true, Rows: [][]string{
		{"Name", "URL", "BaseURL", "Path", "PathParams"},
		{"user", "https://ignored.test/x", "https://base.test", "/users/{id}", `{"id": 7}`},
	}}

	res := New("", WithBaseURL("https://gw.example"), WithLogger(logging.Discard())).Generate([]workbook.Sheet{sheet})

	reqs := res.Collection.Requests()
	require.Len(t, reqs, 1)
	assert.Equal(t, "https://gw.example/users/7", reqs[0].Request.URL.Raw)
	assert.Equal(t, DefaultCollectionName, res.Collection.Info.Name)
}

func TestGenerate_SkipsHiddenAndHeaderless(t *testing.T) {
	sheets := []workbook.Sheet{
		{Name: "Hidden", Visible: false, Rows: [][]string{{"URL"}, {"https://x.test"}}},
		{Name: "Empty", Visible: true},
		{Name: "Blank header", Visible: true, Rows: [][]string{{"", ""}, {"https://x.test"}}},
		{Name: "Live", Visible: true, Rows: [][]string{{"URL"}, {"https://x.test/a"}, {"not-a-url-row-is-kept"}}},
	}

	res := New("T", WithLogger(logging.Discard())).Generate(sheets)

	assert.Equal(t, []string{"Hidden", "Empty", "Blank header"}, res.Skipped)
	assert.Len(t, res.Linkage, 2)
}

func TestGenerate_DroppedRows(t *testing.T) {
	sheet := workbook.Sheet{Name: "S", Visible: true, Rows: [][]string{
		{"Name", "Path"},
		{"note", "/relative"},
		{},
		{"abs", "https://x.test/a"},
	}}

	res := New("T", WithLogger(logging.Discard())).Generate([]workbook.Sheet{sheet})
	assert.Len(t, res.Linkage, 1)
	assert.Equal(t, 1, res.Dropped)
}

func TestCompile_Request(t *testing.T) {
	sheet := workbook.Sheet{Name: "Orders", Visible: true, Rows: [][]string{
		{"Name", "Method", "URL", "Headers", "Query", "Body", "ExpectedStatus", "Assertions", "Folder"},
		{"Create", "post", "https://x.test/orders?src=a", "Authorization: old; X-Trace: 1", `{"page": 2}`, `{"qty":1}`, "201.0", `{"id": {"exists": true}, "qty": {"frobnicate": 1}}`, "Writes"},
	}}

	g := New("T",
		WithAuthHeaders(params.Pairs{{Key: "Authorization", Value: "Bearer tok"}}),
		WithBearerToken("tok"),
		WithLogger(logging.Discard()),
	)
	res := g.Generate([]workbook.Sheet{sheet})

	require.Len(t, res.Collection.Item, 1)
	assert.Equal(t, "Writes", res.Collection.Item[0].Name)
	item := res.Collection.Item[0].Item[0]

	assert.Equal(t, "POST", item.Request.Method)
	assert.Equal(t, params.Pairs{{Key: "Authorization", Value: "Bearer tok"}, {Key: "X-Trace", Value: "1"}}, item.Request.Header)
	assert.Equal(t, "https://x.test/orders?src=a&page=2", item.Request.URL.Raw)
	require.NotNil(t, item.Request.Body)
	assert.Equal(t, "{\n  \"qty\": 1\n}", item.Request.Body.Raw)
	assert.Equal(t, "tok", item.Request.Auth.Token())
	assert.Equal(t, "tok", res.Collection.Auth.Token())

	require.Len(t, item.Tests, 3)
	assert.Equal(t, "Response is valid JSON", item.Tests[0].Name)
	assert.Equal(t, "Status code is 201", item.Tests[1].Name)
	assert.Equal(t, "id exists", item.Tests[2].Name)

	require.Len(t, item.Event, 1)
	script := strings.Join(item.Event[0].Script.Exec, "\n")
	assert.Contains(t, script, "pm.response.to.have.status(201);")
}
