package reconcile

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/abdul-hamid-achik/hitsheet/packages/collection"
	"github.com/abdul-hamid-achik/hitsheet/packages/executor"
	"github.com/abdul-hamid-achik/hitsheet/packages/logging"
	"github.com/abdul-hamid-achik/hitsheet/packages/workbook"
)

type fakeSheet struct {
	name  string
	rows  [][]string
	fills map[[2]int]string
}

func newFakeSheet(name string, rows ...[]string) *fakeSheet {
	return &fakeSheet{name: name, rows: rows, fills: map[[2]int]string{}}
}

func (s *fakeSheet) Name() string { return s.name }

func (s *fakeSheet) Header() ([]string, error) {
	if len(s.rows) == 0 {
		return nil, nil
	}
	return append([]string(nil), s.rows[0]...), nil
}

func (s *fakeSheet) MaxColumn() (int, error) {
	max := 0
	for _, r := range s.rows {
		if len(r) > max {
			max = len(r)
		}
	}
	return max, nil
}

func (s *fakeSheet) InsertColumns(at, n int) error {
	for i, r := range s.rows {
		if len(r) <= at {
			continue
		}
		row := append([]string(nil), r[:at]...)
		row = append(row, make([]string, n)...)
		s.rows[i] = append(row, r[at:]...)
	}
	return nil
}

func (s *fakeSheet) Cell(row, col int) (string, error) {
	if row-1 < len(s.rows) && col < len(s.rows[row-1]) {
		return s.rows[row-1][col], nil
	}
	return "", nil
}

func (s *fakeSheet) SetCell(row, col int, value any) error {
	for len(s.rows) < row {
		s.rows = append(s.rows, nil)
	}
	for len(s.rows[row-1]) <= col {
		s.rows[row-1] = append(s.rows[row-1], "")
	}
	text := ""
	if value != nil {
		text = fmt.Sprint(value)
	}
	s.rows[row-1][col] = text
	return nil
}

func (s *fakeSheet) SetFill(row, col int, color string) error {
	s.fills[[2]int{row, col}] = color
	return nil
}

func usersSheet() *fakeSheet {
	return newFakeSheet("Users",
		[]string{"ID", "Name", "Method", "URL", "ExpectedStatus", "Payload"},
		[]string{"TC-1", "Get user", "GET", "http://api.test/users/1", "200", ""},
		[]string{"TC-2", "Create user", "POST", "http://api.test/users", "201", `{"name":"a"}`},
		[]string{"TC-3", "Delete user", "DELETE", "http://api.test/users/1", "204", ""},
	)
}

func usersLinkage() collection.Linkage {
	names := []string{"Get user", "Create user", "Delete user"}
	var l collection.Linkage
	for i, name := range names {
		row := i + 2
		l = append(l, collection.Link{ID: collection.ItemID("Users", row), Sheet: "Users", Row: row, Name: name})
	}
	return l
}

func code(c int) *int { return &c }

func execution(name string, status int, failed bool) executor.Execution {
	e := executor.Execution{Name: name, Code: code(status)}
	e.Assertions = []executor.Assertion{{Name: "Status code is " + fmt.Sprint(status), Failed: failed}}
	if failed {
		e.Assertions[0].Error = "expected response to have status code"
	}
	return e
}

func threeExecutions() []executor.Execution {
	return []executor.Execution{
		execution("Get user", 200, false),
		execution("Create user", 500, true),
		execution("Delete user", 204, false),
	}
}

func newReconciler(opts ...Option) *Reconciler {
	return New(append([]Option{WithLogger(logging.Discard())}, opts...)...)
}

func TestReconcileRoundTrip(t *testing.T) {
	sheet := usersSheet()

	report, err := newReconciler().Reconcile([]Sheet{sheet}, usersLinkage(), threeExecutions())
	require.NoError(t, err)

	assert.Equal(t, ByPosition, report.Strategy)
	assert.Equal(t, []string{"ID", "Name", "Method", "URL", "ExpectedStatus", "ActualStatus", "Status", "Payload"}, sheet.rows[0])
	assert.Equal(t, []string{"TC-1", "Get user", "GET", "http://api.test/users/1", "200", "200", "PASSED", ""}, sheet.rows[1])
	assert.Equal(t, "500", sheet.rows[2][5])
	assert.Equal(t, "FAILED", sheet.rows[2][6])
	assert.Equal(t, `{"name":"a"}`, sheet.rows[2][7])
	assert.Equal(t, "204", sheet.rows[3][5])
	assert.Equal(t, "PASSED", sheet.rows[3][6])

	assert.Equal(t, workbook.FillPassed, sheet.fills[[2]int{2, 6}])
	assert.Equal(t, workbook.FillFailed, sheet.fills[[2]int{3, 6}])

	require.Len(t, report.Rows, 3)
	assert.Equal(t, 2, report.Passed())
	assert.Equal(t, 1, report.Failed())
	assert.Equal(t, []string{"TC-2"}, report.FailedIDs)
	assert.Empty(t, report.Mismatches)
	assert.Empty(t, report.Unreconciled)
}

func TestReconcileIsIdempotent(t *testing.T) {
	sheet := usersSheet()
	r := newReconciler()

	_, err := r.Reconcile([]Sheet{sheet}, usersLinkage(), threeExecutions())
	require.NoError(t, err)
	first := append([]string(nil), sheet.rows[0]...)

	execs := threeExecutions()
	execs[1] = execution("Create user", 201, false)
	_, err = r.Reconcile([]Sheet{sheet}, usersLinkage(), execs)
	require.NoError(t, err)

	assert.Equal(t, first, sheet.rows[0])
	assert.Equal(t, "201", sheet.rows[2][5])
	assert.Equal(t, "PASSED", sheet.rows[2][6])
	assert.Equal(t, workbook.FillPassed, sheet.fills[[2]int{3, 6}])
}

func TestReconcileWithoutExpectedStatusColumn(t *testing.T) {
	sheet := newFakeSheet("Smoke",
		[]string{"Name", "URL"},
		[]string{"Ping", "http://api.test/ping"},
	)
	linkage := collection.Linkage{{ID: collection.ItemID("Smoke", 2), Sheet: "Smoke", Row: 2, Name: "Ping"}}
	execs := []executor.Execution{execution("Ping", 503, true)}

	r := newReconciler()
	report, err := r.Reconcile([]Sheet{sheet}, linkage, execs)
	require.NoError(t, err)
	assert.Equal(t, []string{"Name", "URL", "ActualStatus", "Status"}, sheet.rows[0])
	assert.Equal(t, []string{"Ping", "http://api.test/ping", "503", "FAILED"}, sheet.rows[1])
	assert.Equal(t, []string{"Ping"}, report.FailedIDs)

	_, err = r.Reconcile([]Sheet{sheet}, linkage, execs)
	require.NoError(t, err)
	assert.Len(t, sheet.rows[0], 4)
}

func TestReconcileDetectsSwappedOrder(t *testing.T) {
	sheet := usersSheet()
	execs := threeExecutions()
	execs[0], execs[1] = execs[1], execs[0]

	report, err := newReconciler().Reconcile([]Sheet{sheet}, usersLinkage(), execs)
	require.NoError(t, err)

	require.Len(t, report.Mismatches, 2)
	assert.Equal(t, Mismatch{Sheet: "Users", Row: 2, Expected: "Get user", Actual: "Create user"}, report.Mismatches[0])
	assert.Equal(t, Mismatch{Sheet: "Users", Row: 3, Expected: "Create user", Actual: "Get user"}, report.Mismatches[1])
}

func TestReconcileRoutesByItemID(t *testing.T) {
	sheet := usersSheet()
	linkage := usersLinkage()
	execs := threeExecutions()
	for i := range execs {
		execs[i].ItemID = linkage[i].ID
	}
	execs[0], execs[2] = execs[2], execs[0]

	report, err := newReconciler().Reconcile([]Sheet{sheet}, linkage, execs)
	require.NoError(t, err)

	assert.Equal(t, ByID, report.Strategy)
	assert.Empty(t, report.Mismatches)
	assert.Equal(t, "200", sheet.rows[1][5])
	assert.Equal(t, "500", sheet.rows[2][5])
	assert.Equal(t, "204", sheet.rows[3][5])
	require.Len(t, report.Rows, 3)
	assert.Equal(t, 2, report.Rows[0].Row)
	assert.Equal(t, 4, report.Rows[2].Row)
}

func TestReconcileShortExecutionList(t *testing.T) {
	sheet := usersSheet()
	execs := threeExecutions()[:2]

	report, err := newReconciler().Reconcile([]Sheet{sheet}, usersLinkage(), execs)
	require.NoError(t, err)

	assert.Len(t, report.Rows, 2)
	require.Len(t, report.Unreconciled, 1)
	assert.Equal(t, 4, report.Unreconciled[0].Row)
	assert.Equal(t, "", sheet.rows[3][5])
	assert.Equal(t, "", sheet.rows[3][6])
}

func TestReconcileStrictRejectsCountMismatch(t *testing.T) {
	sheet := usersSheet()
	before := append([]string(nil), sheet.rows[0]...)

	_, err := newReconciler(WithStrict(true)).Reconcile([]Sheet{sheet}, usersLinkage(), threeExecutions()[:2])
	require.ErrorIs(t, err, ErrCountMismatch)
	assert.Equal(t, before, sheet.rows[0])
}

func TestReconcileFailureIDFallsBackToName(t *testing.T) {
	sheet := usersSheet()
	sheet.rows[2][0] = "  "

	report, err := newReconciler().Reconcile([]Sheet{sheet}, usersLinkage(), threeExecutions())
	require.NoError(t, err)
	assert.Equal(t, []string{"Create user"}, report.FailedIDs)
}

func TestReconcileRequestErrorLeavesActualStatusBlank(t *testing.T) {
	sheet := usersSheet()
	execs := threeExecutions()
	execs[0] = executor.Execution{
		Name:         "Get user",
		RequestError: "connect ECONNREFUSED",
		Assertions:   []executor.Assertion{{Name: "Status code is 200", Failed: true, Error: "no response"}},
	}

	report, err := newReconciler().Reconcile([]Sheet{sheet}, usersLinkage(), execs)
	require.NoError(t, err)
	assert.Equal(t, "", sheet.rows[1][5])
	assert.Equal(t, "FAILED", sheet.rows[1][6])
	assert.Nil(t, report.Rows[0].ActualStatus)
	assert.Equal(t, []string{"TC-1", "TC-2"}, report.FailedIDs)
}

func TestReconcileMultipleSheets(t *testing.T) {
	users := usersSheet()
	orders := newFakeSheet("Orders",
		[]string{"Name", "URL", "Code"},
		[]string{"List orders", "http://api.test/orders", "200"},
	)
	linkage := append(usersLinkage(), collection.Link{ID: collection.ItemID("Orders", 2), Sheet: "Orders", Row: 2, Name: "List orders"})
	execs := append(threeExecutions(), execution("List orders", 404, true))

	report, err := newReconciler().Reconcile([]Sheet{users, orders}, linkage, execs)
	require.NoError(t, err)

	assert.Equal(t, []string{"Name", "URL", "Code", "ActualStatus", "Status"}, orders.rows[0])
	assert.Equal(t, []string{"List orders", "http://api.test/orders", "200", "404", "FAILED"}, orders.rows[1])
	assert.Equal(t, []string{"TC-2", "List orders"}, report.FailedIDs)
}
