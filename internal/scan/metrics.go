package scan

import (
	"sync/atomic"
	"time"

	"github.com/goliatone/go-texmark/pkg/interfaces"
)

// NoOpMetrics returns a metrics recorder that drops every observation.
func NoOpMetrics() interfaces.MathMetrics {
	return noopMetrics{}
}

type noopMetrics struct{}

func (noopMetrics) ObserveScanDuration(time.Duration) {}

func (noopMetrics) IncrementRegions(bool, int) {}

func (noopMetrics) IncrementUnterminated(int) {}

// CounterMetrics keeps running totals in memory.
type CounterMetrics struct {
	scans        atomic.Int64
	elapsed      atomic.Int64
	display      atomic.Int64
	inline       atomic.Int64
	unterminated atomic.Int64
}

var _ interfaces.MathMetrics = (*CounterMetrics)(nil)

func (m *CounterMetrics) ObserveScanDuration(d time.Duration) {
	m.scans.Add(1)
	m.elapsed.Add(int64(d))
}

func (m *CounterMetrics) IncrementRegions(display bool, count int) {
	if display {
		m.display.Add(int64(count))
		return
	}
	m.inline.Add(int64(count))
}

func (m *CounterMetrics) IncrementUnterminated(count int) {
	m.unterminated.Add(int64(count))
}

// Snapshot returns scans, display regions, inline regions and unterminated
// markers observed so far.
func (m *CounterMetrics) Snapshot() (scans, display, inline, unterminated int64) {
	return m.scans.Load(), m.display.Load(), m.inline.Load(), m.unterminated.Load()
}

// Elapsed returns the accumulated scan time.
func (m *CounterMetrics) Elapsed() time.Duration {
	return time.Duration(m.elapsed.Load())
}
