package notify

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/abdul-hamid-achik/hitsheet/packages/collection"
	"github.com/abdul-hamid-achik/hitsheet/packages/logging"
	"github.com/abdul-hamid-achik/hitsheet/packages/reconcile"
)

type recordingNotifier struct {
	calls int
	err   error
}

func (r *recordingNotifier) Name() string { return "recording" }

func (r *recordingNotifier) Notify(ctx context.Context, summary *RunSummary) error {
	r.calls++
	return r.err
}

func summaryWith(failed ...string) *RunSummary {
	return &RunSummary{
		Collection:  "Users API",
		TotalTests:  3,
		PassedTests: 3 - len(failed),
		FailedTests: len(failed),
		Duration:    1500 * time.Millisecond,
		FailedIDs:   failed,
	}
}

func TestNewRunSummary(t *testing.T) {
	report := &reconcile.Report{
		Rows: []reconcile.RowResult{
			{Verdict: reconcile.Passed},
			{Verdict: reconcile.Failed, FailureID: "TC-2"},
		},
		FailedIDs:    []string{"TC-2"},
		Unreconciled: []collection.Link{{Sheet: "Users", Row: 4}},
	}

	s := NewRunSummary("Users API", report, time.Second, "a.json", "b.xlsx")
	assert.Equal(t, 2, s.TotalTests)
	assert.Equal(t, 1, s.PassedTests)
	assert.Equal(t, 1, s.FailedTests)
	assert.Equal(t, []string{"TC-2"}, s.FailedIDs)
	assert.Equal(t, 1, s.Unreconciled)
	assert.Equal(t, []string{"a.json", "b.xlsx"}, s.Attachments)
}

func TestFailedListText(t *testing.T) {
	assert.Equal(t, "Failed test case IDs (0):\n- None\n", summaryWith().FailedListText())
	assert.Equal(t, "Failed test case IDs (2):\n- TC-1\n- TC-9\n", summaryWith("TC-1", "TC-9").FailedListText())
}

func TestParseNotifyOn(t *testing.T) {
	assert.Equal(t, NotifyFailure, ParseNotifyOn(" Failure "))
	assert.Equal(t, NotifySuccess, ParseNotifyOn("success"))
	assert.Equal(t, NotifyRecovery, ParseNotifyOn("recovery"))
	assert.Equal(t, NotifyAlways, ParseNotifyOn(""))
	assert.Equal(t, NotifyAlways, ParseNotifyOn("sometimes"))
}

func TestManagerPolicy(t *testing.T) {
	tests := []struct {
		name     string
		notifyOn NotifyOn
		summary  *RunSummary
		want     bool
	}{
		{"always on success", NotifyAlways, summaryWith(), true},
		{"always on failure", NotifyAlways, summaryWith("TC-1"), true},
		{"failure on success", NotifyFailure, summaryWith(), false},
		{"failure on failure", NotifyFailure, summaryWith("TC-1"), true},
		{"success on success", NotifySuccess, summaryWith(), true},
		{"success on failure", NotifySuccess, summaryWith("TC-1"), false},
		{"recovery without prior failure", NotifyRecovery, summaryWith(), false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			n := &recordingNotifier{}
			m := NewManager(tt.notifyOn, logging.Discard(), n)
			assert.Equal(t, tt.want, m.Notify(context.Background(), tt.summary))
			if tt.want {
				assert.Equal(t, 1, n.calls)
			} else {
				assert.Zero(t, n.calls)
			}
		})
	}
}

func TestManagerRecovery(t *testing.T) {
	n := &recordingNotifier{}
	m := NewManager(NotifyRecovery, logging.Discard(), n)

	assert.True(t, m.Notify(context.Background(), summaryWith("TC-1")))
	recovered := summaryWith()
	assert.True(t, m.Notify(context.Background(), recovered))
	assert.True(t, recovered.IsRecovery)
	assert.False(t, m.Notify(context.Background(), summaryWith()))
	assert.Equal(t, 2, n.calls)
}

func TestManagerContainsErrors(t *testing.T) {
	failing := &recordingNotifier{err: errors.New("smtp down")}
	ok := &recordingNotifier{}
	m := NewManager(NotifyAlways, logging.Discard(), failing)
	m.AddNotifier(ok)

	assert.True(t, m.Notify(context.Background(), summaryWith("TC-1")))
	assert.Equal(t, 1, failing.calls)
	assert.Equal(t, 1, ok.calls)
	assert.Equal(t, 2, m.Len())
}

func TestSlackNotifier(t *testing.T) {
	var got slackMessage
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	s := NewSlackNotifier(server.URL, WithSlackChannel("#qa"))
	require.NoError(t, s.Notify(context.Background(), summaryWith("TC-7")))

	assert.Equal(t, "#qa", got.Channel)
	assert.Equal(t, "hitsheet", got.Username)
	require.Len(t, got.Attachments, 1)
	assert.Equal(t, "danger", got.Attachments[0].Color)
	assert.Contains(t, got.Attachments[0].Title, "Users API: 1 test(s) failed")
	assert.Contains(t, got.Attachments[0].Text, "`TC-7`")
}

func TestSlackNotifierStatusError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "invalid_token", http.StatusForbidden)
	}))
	defer server.Close()

	err := NewSlackNotifier(server.URL).Notify(context.Background(), summaryWith())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "403")
}

func TestTeamsNotifier(t *testing.T) {
	var got teamsMessage
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		w.WriteHeader(http.StatusAccepted)
	}))
	defer server.Close()

	require.NoError(t, NewTeamsNotifier(server.URL).Notify(context.Background(), summaryWith("TC-3")))

	require.Len(t, got.Attachments, 1)
	body := got.Attachments[0].Content.Body
	assert.Equal(t, "Users API: 1 test(s) failed", body[0].Text)
	assert.Equal(t, "attention", body[0].Color)

	var texts []string
	for _, b := range body {
		texts = append(texts, b.Text)
	}
	assert.Contains(t, texts, "- `TC-3`")
}
