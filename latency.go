package fastpath

import (
	"sort"
	"sync"
	"time"
)

// CycleLatencyTracker watches the cost of the decision cycles themselves.
// The kernel's value is a predictably cheap decision: a flat tail means
// callers can budget for it, a diverging tail means the harness is being
// preempted or saturated and the decision cost can no longer be trusted.
//
// THE DOMINATED AVERAGE PROBLEM:
//
// In a stable harness the mean cycle cost is meaningful (P99 ≈ 3 × mean).
// Under saturation the tail dominates and the mean becomes a lie. Watch
// JitterRatio(), not Mean(), to decide whether the fast path still pays
// for itself.
//
// Example:
//
//	tracker := NewCycleLatencyTracker(1000) // Keep last 1000 samples
//
//	start := time.Now()
//	decision, err := kernel.ProcessIOCycle(window)
//	tracker.Record(time.Since(start))
//
//	if tracker.JitterRatio() > 10.0 {
//	    // P99 is 10x the median: cycle cost is no longer predictable.
//	}
//
// Record sits off the kernel hot path: sample around ProcessIOCycle calls
// from the harness, never inside the kernel.
type CycleLatencyTracker struct {
	mu         sync.RWMutex
	samples    []time.Duration // Ring buffer of recent cycle costs
	maxSamples int             // Buffer size
	writeIndex int             // Next write position
	recorded   int64           // Total samples recorded (monotonic)

	// Percentiles are cached until the next write.
	cachedP50  time.Duration
	cachedP99  time.Duration
	cachedP999 time.Duration
	cacheValid bool
}

// NewCycleLatencyTracker creates a tracker with a fixed-size ring buffer.
//
// The buffer size determines the time window for percentile calculation:
//   - 100 samples: low-rate streams
//   - 1000 samples: medium rate (default)
//   - 10000 samples: high rate
//
// Trade-off: larger buffers smooth out noise but react slower to a
// degrading tail.
func NewCycleLatencyTracker(maxSamples int) *CycleLatencyTracker {
	if maxSamples <= 0 {
		maxSamples = 1000
	}
	return &CycleLatencyTracker{
		samples:    make([]time.Duration, maxSamples),
		maxSamples: maxSamples,
	}
}

// Record adds one cycle cost sample, overwriting the oldest when full.
func (t *CycleLatencyTracker) Record(d time.Duration) {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.samples[t.writeIndex] = d
	t.writeIndex = (t.writeIndex + 1) % t.maxSamples
	t.recorded++
	t.cacheValid = false
}

// P50 returns the median cycle cost.
func (t *CycleLatencyTracker) P50() time.Duration {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.refreshLocked()
	return t.cachedP50
}

// P99 returns the 99th percentile cycle cost.
func (t *CycleLatencyTracker) P99() time.Duration {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.refreshLocked()
	return t.cachedP99
}

// P999 returns the 99.9th percentile cycle cost.
func (t *CycleLatencyTracker) P999() time.Duration {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.refreshLocked()
	return t.cachedP999
}

// Mean returns the average cycle cost (CAUTION: meaningless once the tail
// diverges; check JitterRatio first).
func (t *CycleLatencyTracker) Mean() time.Duration {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.meanLocked()
}

// meanLocked averages the live window. Callers must hold at least the read
// lock.
func (t *CycleLatencyTracker) meanLocked() time.Duration {
	n := t.window()
	if n == 0 {
		return 0
	}
	var sum int64
	for i := 0; i < n; i++ {
		sum += int64(t.samples[i])
	}
	return time.Duration(sum / int64(n))
}

// Jitter returns P99 - P50, the absolute spread of the tail.
func (t *CycleLatencyTracker) Jitter() time.Duration {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.refreshLocked()
	return t.cachedP99 - t.cachedP50
}

// JitterRatio returns P99/P50, the tail divergence of cycle cost.
//
// Interpretation:
//   - Ratio < 3:   stable (cycle cost predictable)
//   - Ratio 3-10:  warning zone (scheduler preemption showing up)
//   - Ratio > 10:  saturated (cycle cost no longer budgetable)
//
// Returns 1.0 when there are not enough samples to judge.
func (t *CycleLatencyTracker) JitterRatio() float64 {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.refreshLocked()

	if t.cachedP50 == 0 {
		return 1.0
	}
	return float64(t.cachedP99) / float64(t.cachedP50)
}

// Reset discards all samples.
func (t *CycleLatencyTracker) Reset() {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.writeIndex = 0
	t.recorded = 0
	t.cacheValid = false
}

// LatencyStats is a point-in-time summary of cycle cost.
type LatencyStats struct {
	Samples     int64
	Mean        time.Duration
	P50         time.Duration
	P99         time.Duration
	P999        time.Duration
	Jitter      time.Duration
	JitterRatio float64
}

// Stats returns a summary taken under one lock, so every field describes
// the same window.
func (t *CycleLatencyTracker) Stats() LatencyStats {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.refreshLocked()

	ratio := 1.0
	if t.cachedP50 != 0 {
		ratio = float64(t.cachedP99) / float64(t.cachedP50)
	}
	return LatencyStats{
		Samples:     t.recorded,
		Mean:        t.meanLocked(),
		P50:         t.cachedP50,
		P99:         t.cachedP99,
		P999:        t.cachedP999,
		Jitter:      t.cachedP99 - t.cachedP50,
		JitterRatio: ratio,
	}
}

// refreshLocked recomputes the cached percentiles when stale. Callers must
// hold the write lock.
func (t *CycleLatencyTracker) refreshLocked() {
	if t.cacheValid {
		return
	}

	n := t.window()
	if n == 0 {
		t.cachedP50, t.cachedP99, t.cachedP999 = 0, 0, 0
		t.cacheValid = true
		return
	}

	sorted := make([]time.Duration, n)
	copy(sorted, t.samples[:n])
	sort.Slice(sorted, func(i, j int) bool {
		return sorted[i] < sorted[j]
	})

	t.cachedP50 = sorted[percentileRank(n, 0.50)]
	t.cachedP99 = sorted[percentileRank(n, 0.99)]
	t.cachedP999 = sorted[percentileRank(n, 0.999)]
	t.cacheValid = true
}

// window returns the number of live samples in the buffer.
func (t *CycleLatencyTracker) window() int {
	if t.recorded < int64(t.maxSamples) {
		return int(t.recorded)
	}
	return t.maxSamples
}

// percentileRank maps p in (0, 1) to a sorted-slice index.
func percentileRank(n int, p float64) int {
	idx := int(float64(n-1) * p)
	if idx < 0 {
		idx = 0
	}
	if idx >= n {
		idx = n - 1
	}
	return idx
}
