package utils

import (
	"sort"
	"sync"
	"time"
)

// LatencyTracker keeps a bounded window of recent analysis durations so the
// service can report percentiles without unbounded growth. Once the window is
// full, new observations overwrite the oldest.
type LatencyTracker struct {
	mu     sync.Mutex
	window []time.Duration
	next   int
	full   bool
}

// NewLatencyTracker creates a tracker holding up to maxSize samples.
func NewLatencyTracker(maxSize int) *LatencyTracker {
	if maxSize <= 0 {
		maxSize = 512
	}
	return &LatencyTracker{window: make([]time.Duration, maxSize)}
}

// Observe records a new duration.
func (l *LatencyTracker) Observe(d time.Duration) {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.window[l.next] = d
	l.next++
	if l.next == len(l.window) {
		l.next = 0
		l.full = true
	}
}

// Percentile returns the duration at percentile p (0-100) over the current
// window, zero when nothing has been observed. 0 and 100 map to the window
// minimum and maximum.
func (l *LatencyTracker) Percentile(p float64) time.Duration {
	sorted := l.snapshot()
	if len(sorted) == 0 {
		return 0
	}
	sort.Slice(sorted, func(i, j int) bool { return sorted[i] < sorted[j] })

	if p <= 0 {
		return sorted[0]
	}
	if p >= 100 {
		return sorted[len(sorted)-1]
	}
	index := int((p / 100.0) * float64(len(sorted)-1))
	return sorted[index]
}

// Count returns the number of samples currently held.
func (l *LatencyTracker) Count() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.full {
		return len(l.window)
	}
	return l.next
}

func (l *LatencyTracker) snapshot() []time.Duration {
	l.mu.Lock()
	defer l.mu.Unlock()
	n := l.next
	if l.full {
		n = len(l.window)
	}
	return append([]time.Duration(nil), l.window[:n]...)
}
