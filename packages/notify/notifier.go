// Package notify delivers run results to email, Slack and Teams.
//
// Delivery failures never fail a run: the Manager logs them and moves on.
package notify

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/abdul-hamid-achik/hitsheet/packages/logging"
	"github.com/abdul-hamid-achik/hitsheet/packages/reconcile"
)

// NotifyOn specifies when to send notifications
type NotifyOn string

const (
	NotifyAlways  NotifyOn = "always"
	NotifyFailure NotifyOn = "failure"
	NotifySuccess NotifyOn = "success"
	// NotifyRecovery sends on failure and on the first passing run after a failure.
	NotifyRecovery NotifyOn = "recovery"
)

// ParseNotifyOn maps a config value onto a policy. Unknown values mean always.
func ParseNotifyOn(s string) NotifyOn {
	switch NotifyOn(strings.ToLower(strings.TrimSpace(s))) {
	case NotifyFailure:
		return NotifyFailure
	case NotifySuccess:
		return NotifySuccess
	case NotifyRecovery:
		return NotifyRecovery
	default:
		return NotifyAlways
	}
}

// RunSummary is what every notifier reports on.
type RunSummary struct {
	Collection  string        `json:"collection"`
	TotalTests  int           `json:"total_tests"`
	PassedTests int           `json:"passed_tests"`
	FailedTests int           `json:"failed_tests"`
	Duration    time.Duration `json:"duration"`
	FailedIDs   []string      `json:"failed_ids,omitempty"`
	// Unreconciled counts linked rows that received no result.
	Unreconciled int      `json:"unreconciled,omitempty"`
	Attachments  []string `json:"attachments,omitempty"`
	IsRecovery   bool     `json:"is_recovery,omitempty"`
}

// NewRunSummary summarises a reconciliation report.
func NewRunSummary(collection string, report *reconcile.Report, duration time.Duration, attachments ...string) *RunSummary {
	s := &RunSummary{
		Collection:  collection,
		Duration:    duration,
		Attachments: attachments,
	}
	if report != nil {
		s.TotalTests = len(report.Rows)
		s.PassedTests = report.Passed()
		s.FailedTests = report.Failed()
		s.FailedIDs = report.FailedIDs
		s.Unreconciled = len(report.Unreconciled)
	}
	return s
}

// FailedListText renders the failed identifiers as the email body does.
func (s *RunSummary) FailedListText() string {
	var b strings.Builder
	fmt.Fprintf(&b, "Failed test case IDs (%d):\n", len(s.FailedIDs))
	if len(s.FailedIDs) == 0 {
		b.WriteString("- None\n")
		return b.String()
	}
	for _, id := range s.FailedIDs {
		fmt.Fprintf(&b, "- %s\n", id)
	}
	return b.String()
}

// Notifier is the interface for notification services
type Notifier interface {
	Notify(ctx context.Context, summary *RunSummary) error
	Name() string
}

// Manager manages multiple notifiers
type Manager struct {
	notifiers []Notifier
	notifyOn  NotifyOn
	lastState bool
	logger    *logging.Logger
}

// NewManager creates a new notification manager
func NewManager(notifyOn NotifyOn, logger *logging.Logger, notifiers ...Notifier) *Manager {
	return &Manager{
		notifiers: notifiers,
		notifyOn:  notifyOn,
		lastState: true,
		logger:    logging.OrDefault(logger).WithComponent("notify"),
	}
}

// AddNotifier adds a notifier to the manager
func (m *Manager) AddNotifier(n Notifier) {
	m.notifiers = append(m.notifiers, n)
}

// Len returns the number of configured notifiers.
func (m *Manager) Len() int {
	return len(m.notifiers)
}

// Notify sends notifications based on the configured policy. It reports whether
// the policy selected this run; delivery errors are logged only.
func (m *Manager) Notify(ctx context.Context, summary *RunSummary) bool {
	shouldNotify := false
	currentSuccess := summary.FailedTests == 0

	switch m.notifyOn {
	case NotifyFailure:
		shouldNotify = !currentSuccess
	case NotifySuccess:
		shouldNotify = currentSuccess
	case NotifyRecovery:
		if !m.lastState && currentSuccess {
			shouldNotify = true
			summary.IsRecovery = true
		}
		if !currentSuccess {
			shouldNotify = true
		}
	default:
		shouldNotify = true
	}
	m.lastState = currentSuccess

	if !shouldNotify {
		m.logger.Debug("notification skipped by policy", "notify_on", m.notifyOn)
		return false
	}

	for _, n := range m.notifiers {
		if err := n.Notify(ctx, summary); err != nil {
			m.logger.Error("notification failed", "notifier", n.Name(), "error", err)
			continue
		}
		m.logger.Info("notification sent", "notifier", n.Name())
	}
	return true
}

func headline(summary *RunSummary) string {
	switch {
	case summary.FailedTests > 0:
		return fmt.Sprintf("%d test(s) failed", summary.FailedTests)
	case summary.IsRecovery:
		return "Tests recovered!"
	default:
		return "All tests passed!"
	}
}
