package output

import (
	"time"

	"github.com/HdrHistogram/hdrhistogram-go"

	"github.com/abdul-hamid-achik/hitsheet/packages/executor"
)

// LatencySummary describes response times of the executions that got a response.
type LatencySummary struct {
	Count int           `json:"count"`
	Min   time.Duration `json:"min"`
	Mean  time.Duration `json:"mean"`
	P50   time.Duration `json:"p50"`
	P90   time.Duration `json:"p90"`
	P99   time.Duration `json:"p99"`
	Max   time.Duration `json:"max"`
}

// Latency summarises response times. It returns nil when no execution has one.
func Latency(execs []executor.Execution) *LatencySummary {
	// 1us to 60s, 3 significant digits
	h := hdrhistogram.New(1, 60_000_000, 3)
	for _, e := range execs {
		if e.Code == nil {
			continue
		}
		us := e.ResponseTime.Microseconds()
		if us < 1 {
			us = 1
		}
		_ = h.RecordValue(us)
	}
	if h.TotalCount() == 0 {
		return nil
	}

	us := func(v int64) time.Duration { return time.Duration(v) * time.Microsecond }
	return &LatencySummary{
		Count: int(h.TotalCount()),
		Min:   us(h.Min()),
		Mean:  us(int64(h.Mean())),
		P50:   us(h.ValueAtQuantile(50)),
		P90:   us(h.ValueAtQuantile(90)),
		P99:   us(h.ValueAtQuantile(99)),
		Max:   us(h.Max()),
	}
}
