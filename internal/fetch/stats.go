package fetch

import (
	"slices"
	"sync"
	"time"
)

type observation struct {
	at      time.Time
	latency time.Duration
	failed  bool
}

// StatsSnapshot aggregates the fetches seen within the window. Latency
// figures cover successful fetches only.
type StatsSnapshot struct {
	Count    int     `json:"count"`
	Failures int     `json:"failures"`
	MinMs    int64   `json:"min_ms"`
	MaxMs    int64   `json:"max_ms"`
	AvgMs    float64 `json:"avg_ms"`
	P50Ms    float64 `json:"p50_ms"`
	P95Ms    float64 `json:"p95_ms"`
	P99Ms    float64 `json:"p99_ms"`
}

// Stats keeps a rolling window of menu fetch outcomes.
type Stats struct {
	mu     sync.Mutex
	obs    []observation
	window time.Duration
	now    func() time.Time
}

func NewStats(window time.Duration) *Stats {
	if window <= 0 {
		window = time.Hour
	}
	return &Stats{window: window, now: time.Now}
}

// Record adds a successful fetch.
func (s *Stats) Record(latency time.Duration) {
	s.add(observation{latency: max(latency, 0)})
}

// RecordFailure adds a failed fetch.
func (s *Stats) RecordFailure() {
	s.add(observation{failed: true})
}

func (s *Stats) add(o observation) {
	s.mu.Lock()
	defer s.mu.Unlock()
	o.at = s.now()
	s.pruneLocked(o.at)
	s.obs = append(s.obs, o)
}

func (s *Stats) Snapshot() StatsSnapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.pruneLocked(s.now())

	var snap StatsSnapshot
	var ms []int64
	var sum int64
	for _, o := range s.obs {
		if o.failed {
			snap.Failures++
			continue
		}
		v := o.latency.Milliseconds()
		ms = append(ms, v)
		sum += v
	}
	snap.Count = len(ms)
	if len(ms) == 0 {
		return snap
	}

	slices.Sort(ms)
	snap.MinMs = ms[0]
	snap.MaxMs = ms[len(ms)-1]
	snap.AvgMs = float64(sum) / float64(len(ms))
	snap.P50Ms = percentile(ms, 50)
	snap.P95Ms = percentile(ms, 95)
	snap.P99Ms = percentile(ms, 99)
	return snap
}

func (s *Stats) pruneLocked(now time.Time) {
	cutoff := now.Add(-s.window)
	s.obs = slices.DeleteFunc(s.obs, func(o observation) bool {
		return o.at.Before(cutoff)
	})
}

// percentile interpolates linearly between the two nearest ranks.
func percentile(sorted []int64, pct float64) float64 {
	if len(sorted) == 1 || pct <= 0 {
		return float64(sorted[0])
	}
	if pct >= 100 {
		return float64(sorted[len(sorted)-1])
	}
	pos := float64(len(sorted)-1) * pct / 100
	lo := int(pos)
	if lo+1 >= len(sorted) {
		return float64(sorted[lo])
	}
	frac := pos - float64(lo)
	return float64(sorted[lo]) + (float64(sorted[lo+1])-float64(sorted[lo]))*frac
}
