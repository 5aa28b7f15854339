package index

import (
	"sync/atomic"
	"time"
)

// Statistics accumulates counters for one indexing run. Fields are
// updated concurrently by worker goroutines via atomic adds, grounded on
// other_examples ivoronin-dupedog's atomic.Int64 stats fields.
type Statistics struct {
	TotalProcessed    atomic.Int64
	ExcludedPathCount atomic.Int64
	SymlinkCount      atomic.Int64
	RebuiltCount      atomic.Int64

	start time.Time
}

// NewStatistics starts a fresh run clock.
func NewStatistics() *Statistics {
	return &Statistics{start: time.Now()}
}

// Rate returns processed-items-per-second since the run started.
func (s *Statistics) Rate() float64 {
	elapsed := time.Since(s.start).Seconds()
	if elapsed <= 0 {
		return 0
	}
	return float64(s.TotalProcessed.Load()) / elapsed
}

// Snapshot is an immutable copy of Statistics for reporting.
type Snapshot struct {
	TotalProcessed    int64
	ExcludedPathCount int64
	SymlinkCount      int64
	RebuiltCount      int64
	RatePerSecond     float64
}

// Snapshot captures the current counter values.
func (s *Statistics) Snapshot() Snapshot {
	return Snapshot{
		TotalProcessed:    s.TotalProcessed.Load(),
		ExcludedPathCount: s.ExcludedPathCount.Load(),
		SymlinkCount:      s.SymlinkCount.Load(),
		RebuiltCount:      s.RebuiltCount.Load(),
		RatePerSecond:     s.Rate(),
	}
}
