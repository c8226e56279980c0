package reconcile

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPlanColumns(t *testing.T) {
	tests := []struct {
		name       string
		header     []string
		maxColumn  int
		wantIns    []Insertion
		wantLabels []Label
		wantActual int
		wantStatus int
	}{
		{
			name:       "inserts both after expected status",
			header:     []string{"Name", "Method", "URL", "ExpectedStatus", "Payload"},
			maxColumn:  5,
			wantIns:    []Insertion{{At: 4, Count: 2}},
			wantLabels: []Label{{4, ActualStatusHeader}, {5, StatusHeader}},
			wantActual: 4,
			wantStatus: 5,
		},
		{
			name:       "already annotated",
			header:     []string{"Name", "Method", "URL", "ExpectedStatus", "ActualStatus", "Status", "Payload"},
			maxColumn:  7,
			wantActual: 4,
			wantStatus: 5,
		},
		{
			name:       "only actual status missing",
			header:     []string{"Name", "ExpectedStatus", "Status", "Payload"},
			maxColumn:  4,
			wantIns:    []Insertion{{At: 2, Count: 1}},
			wantLabels: []Label{{2, ActualStatusHeader}},
			wantActual: 2,
			wantStatus: 3,
		},
		{
			name:       "only verdict missing",
			header:     []string{"Name", "ExpectedStatus", "ActualStatus", "Payload"},
			maxColumn:  4,
			wantIns:    []Insertion{{At: 3, Count: 1}},
			wantLabels: []Label{{3, StatusHeader}},
			wantActual: 2,
			wantStatus: 3,
		},
		{
			name:       "no expected status appends at right edge",
			header:     []string{"Name", "URL"},
			maxColumn:  2,
			wantLabels: []Label{{2, ActualStatusHeader}, {3, StatusHeader}},
			wantActual: 2,
			wantStatus: 3,
		},
		{
			name:       "right edge follows widest row",
			header:     []string{"Name", "URL"},
			maxColumn:  4,
			wantLabels: []Label{{4, ActualStatusHeader}, {5, StatusHeader}},
			wantActual: 4,
			wantStatus: 5,
		},
		{
			name:       "appended columns are reused",
			header:     []string{"Name", "URL", "ActualStatus", "Status"},
			maxColumn:  4,
			wantActual: 2,
			wantStatus: 3,
		},
		{
			name:       "status header used as expected status",
			header:     []string{"Name", "URL", "Status"},
			maxColumn:  3,
			wantIns:    []Insertion{{At: 3, Count: 2}},
			wantLabels: []Label{{3, ActualStatusHeader}, {4, StatusHeader}},
			wantActual: 3,
			wantStatus: 4,
		},
		{
			name:       "status header as expected status after a run",
			header:     []string{"Name", "URL", "Status", "ActualStatus", "Status"},
			maxColumn:  5,
			wantActual: 3,
			wantStatus: 4,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := PlanColumns(tt.header, tt.maxColumn)
			assert.Equal(t, tt.wantIns, p.Inserts)
			assert.Equal(t, tt.wantLabels, p.Labels)
			assert.Equal(t, tt.wantActual, p.ActualCol)
			assert.Equal(t, tt.wantStatus, p.StatusCol)
			assert.Equal(t, len(tt.wantIns) == 0 && len(tt.wantLabels) == 0, p.Empty())
		})
	}
}
