// Package observability tracks per-run generation statistics: operation
// counts by kind, bytes written, and wall time, keyed by a unique run ID.
package observability

import (
	"sync"
	"time"

	"github.com/google/uuid"
)

// OpKind identifies one operation kind in the emitted stream.
type OpKind string

const (
	OpInsert          OpKind = "insert"
	OpUpdate          OpKind = "update"
	OpDelete          OpKind = "delete"
	OpPointQuery      OpKind = "point_query"
	OpEmptyPointQuery OpKind = "empty_point_query"
	OpRangeQuery      OpKind = "range_query"
)

// RunStats accumulates statistics for one generation run. Safe for
// concurrent use so parallel per-section workers can share one instance.
type RunStats struct {
	mu      sync.Mutex
	runID   string
	started time.Time
	counts  map[OpKind]int64
	bytes   int64
}

// Summary is an immutable snapshot of a finished run.
type Summary struct {
	RunID      string
	Operations int64
	ByKind     map[OpKind]int64
	Bytes      int64
	Duration   time.Duration
}

// NewRunStats creates a tracker with a fresh run ID and start time.
func NewRunStats() *RunStats {
	return &RunStats{
		runID:   uuid.NewString(),
		started: time.Now(),
		counts:  make(map[OpKind]int64),
	}
}

// RunID returns the unique identifier of this run.
func (s *RunStats) RunID() string {
	return s.runID
}

// Record counts one emitted operation of the given kind.
func (s *RunStats) Record(kind OpKind) {
	s.mu.Lock()
	s.counts[kind]++
	s.mu.Unlock()
}

// AddBytes counts output bytes written.
func (s *RunStats) AddBytes(n int64) {
	s.mu.Lock()
	s.bytes += n
	s.mu.Unlock()
}

// Summarize returns a snapshot of the run so far.
func (s *RunStats) Summarize() Summary {
	s.mu.Lock()
	defer s.mu.Unlock()

	byKind := make(map[OpKind]int64, len(s.counts))
	var total int64
	for k, v := range s.counts {
		byKind[k] = v
		total += v
	}
	return Summary{
		RunID:      s.runID,
		Operations: total,
		ByKind:     byKind,
		Bytes:      s.bytes,
		Duration:   time.Since(s.started),
	}
}
