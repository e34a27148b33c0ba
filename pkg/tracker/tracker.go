// Package tracker counts optimizer outcomes per search kind.
package tracker

import (
	"sort"
	"sync"
	"sync/atomic"
)

// Search kinds recorded by the task manager.
const (
	KindTarget = "target"
	KindRange  = "range"
)

// Tracker tracks outcome counters per search kind. It is safe for
// concurrent use so a reporting goroutine can snapshot a running flight.
type Tracker struct {
	mu    sync.RWMutex
	stats map[string]*SearchStats
}

// SearchStats holds the counters of one search kind.
// Fields are accessed atomically.
type SearchStats struct {
	Solved     int64 // search returned a usable value
	Infeasible int64 // search ran but no trial produced a valid glide
	Skipped    int64 // nothing to search, e.g. a degenerate isoline
}

// Runs returns the number of recorded outcomes.
func (s SearchStats) Runs() int64 {
	return s.Solved + s.Infeasible + s.Skipped
}

// New creates a new Tracker.
func New() *Tracker {
	return &Tracker{
		stats: make(map[string]*SearchStats),
	}
}

// getStats returns the stats object for a kind, creating it if needed.
func (t *Tracker) getStats(kind string) *SearchStats {
	t.mu.RLock()
	s, ok := t.stats[kind]
	t.mu.RUnlock()
	if ok {
		return s
	}

	t.mu.Lock()
	defer t.mu.Unlock()
	if s, ok = t.stats[kind]; ok {
		return s
	}
	s = &SearchStats{}
	t.stats[kind] = s
	return s
}

// TrackSolved counts a search that produced a value.
func (t *Tracker) TrackSolved(kind string) {
	atomic.AddInt64(&t.getStats(kind).Solved, 1)
}

// TrackInfeasible counts a search with no valid trial.
func (t *Tracker) TrackInfeasible(kind string) {
	atomic.AddInt64(&t.getStats(kind).Infeasible, 1)
}

// TrackSkipped counts a search that had nothing to do.
func (t *Tracker) TrackSkipped(kind string) {
	atomic.AddInt64(&t.getStats(kind).Skipped, 1)
}

// Snapshot returns a copy of the current stats.
func (t *Tracker) Snapshot() map[string]SearchStats {
	t.mu.RLock()
	defer t.mu.RUnlock()

	result := make(map[string]SearchStats, len(t.stats))
	for k, v := range t.stats {
		result[k] = SearchStats{
			Solved:     atomic.LoadInt64(&v.Solved),
			Infeasible: atomic.LoadInt64(&v.Infeasible),
			Skipped:    atomic.LoadInt64(&v.Skipped),
		}
	}
	return result
}

// Kinds returns the recorded kinds in name order.
func (t *Tracker) Kinds() []string {
	t.mu.RLock()
	defer t.mu.RUnlock()
	kinds := make([]string, 0, len(t.stats))
	for k := range t.stats {
		kinds = append(kinds, k)
	}
	sort.Strings(kinds)
	return kinds
}

// Reset zeroes every counter and keeps the known kinds.
func (t *Tracker) Reset() {
	t.mu.RLock()
	defer t.mu.RUnlock()
	for _, v := range t.stats {
		atomic.StoreInt64(&v.Solved, 0)
		atomic.StoreInt64(&v.Infeasible, 0)
		atomic.StoreInt64(&v.Skipped, 0)
	}
}
