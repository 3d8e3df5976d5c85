package binvec

import (
	"sync/atomic"
	"time"
)

// MetricsCollector defines an interface for collecting operational metrics.
// Implement this interface to integrate with monitoring systems like Prometheus.
type MetricsCollector interface {
	// RecordAdd is called after each add, add-with-ids or add-sa-codes call.
	// n is the number of codes in the batch.
	RecordAdd(n int, duration time.Duration, err error)

	// RecordSearch is called after each k-NN search over n queries.
	RecordSearch(n, k int, duration time.Duration, err error)

	// RecordRangeSearch is called after each range search; hits is the
	// number of results appended.
	RecordRangeSearch(n, hits int, duration time.Duration, err error)

	// RecordRemove is called after each remove; removed is the number of
	// entries erased.
	RecordRemove(removed int, duration time.Duration, err error)

	// RecordMerge is called after each merge; moved is the number of
	// entries transferred.
	RecordMerge(moved int64, duration time.Duration, err error)
}

// NoopMetricsCollector is a no-op implementation of MetricsCollector.
type NoopMetricsCollector struct{}

func (NoopMetricsCollector) RecordAdd(int, time.Duration, error)              {}
func (NoopMetricsCollector) RecordSearch(int, int, time.Duration, error)      {}
func (NoopMetricsCollector) RecordRangeSearch(int, int, time.Duration, error) {}
func (NoopMetricsCollector) RecordRemove(int, time.Duration, error)           {}
func (NoopMetricsCollector) RecordMerge(int64, time.Duration, error)          {}

// BasicMetricsCollector provides simple in-memory metrics collection.
// Useful for debugging and basic monitoring without external dependencies.
type BasicMetricsCollector struct {
	AddCount         atomic.Int64
	AddCodes         atomic.Int64
	AddErrors        atomic.Int64
	SearchCount      atomic.Int64
	SearchQueries    atomic.Int64
	SearchErrors     atomic.Int64
	SearchTotalNanos atomic.Int64
	RangeCount       atomic.Int64
	RangeHits        atomic.Int64
	RangeErrors      atomic.Int64
	RemoveCount      atomic.Int64
	RemovedEntries   atomic.Int64
	RemoveErrors     atomic.Int64
	MergeCount       atomic.Int64
	MergedEntries    atomic.Int64
	MergeErrors      atomic.Int64
}

// RecordAdd implements MetricsCollector.
func (b *BasicMetricsCollector) RecordAdd(n int, _ time.Duration, err error) {
	b.AddCount.Add(1)
	if err != nil {
		b.AddErrors.Add(1)
		return
	}
	b.AddCodes.Add(int64(n))
}

// RecordSearch implements MetricsCollector.
func (b *BasicMetricsCollector) RecordSearch(n, _ int, duration time.Duration, err error) {
	b.SearchCount.Add(1)
	b.SearchTotalNanos.Add(duration.Nanoseconds())
	if err != nil {
		b.SearchErrors.Add(1)
		return
	}
	b.SearchQueries.Add(int64(n))
}

// RecordRangeSearch implements MetricsCollector.
func (b *BasicMetricsCollector) RecordRangeSearch(_ int, hits int, _ time.Duration, err error) {
	b.RangeCount.Add(1)
	if err != nil {
		b.RangeErrors.Add(1)
		return
	}
	b.RangeHits.Add(int64(hits))
}

// RecordRemove implements MetricsCollector.
func (b *BasicMetricsCollector) RecordRemove(removed int, _ time.Duration, err error) {
	b.RemoveCount.Add(1)
	if err != nil {
		b.RemoveErrors.Add(1)
		return
	}
	b.RemovedEntries.Add(int64(removed))
}

// RecordMerge implements MetricsCollector.
func (b *BasicMetricsCollector) RecordMerge(moved int64, _ time.Duration, err error) {
	b.MergeCount.Add(1)
	if err != nil {
		b.MergeErrors.Add(1)
		return
	}
	b.MergedEntries.Add(moved)
}

// MetricsSnapshot is a point-in-time copy of BasicMetricsCollector counters.
type MetricsSnapshot struct {
	AddCount          int64
	AddCodes          int64
	AddErrors         int64
	SearchCount       int64
	SearchQueries     int64
	SearchErrors      int64
	AvgSearchDuration time.Duration
	RangeCount        int64
	RangeHits         int64
	RangeErrors       int64
	RemoveCount       int64
	RemovedEntries    int64
	RemoveErrors      int64
	MergeCount        int64
	MergedEntries     int64
	MergeErrors       int64
}

// Snapshot returns the current counter values.
func (b *BasicMetricsCollector) Snapshot() MetricsSnapshot {
	s := MetricsSnapshot{
		AddCount:       b.AddCount.Load(),
		AddCodes:       b.AddCodes.Load(),
		AddErrors:      b.AddErrors.Load(),
		SearchCount:    b.SearchCount.Load(),
		SearchQueries:  b.SearchQueries.Load(),
		SearchErrors:   b.SearchErrors.Load(),
		RangeCount:     b.RangeCount.Load(),
		RangeHits:      b.RangeHits.Load(),
		RangeErrors:    b.RangeErrors.Load(),
		RemoveCount:    b.RemoveCount.Load(),
		RemovedEntries: b.RemovedEntries.Load(),
		RemoveErrors:   b.RemoveErrors.Load(),
		MergeCount:     b.MergeCount.Load(),
		MergedEntries:  b.MergedEntries.Load(),
		MergeErrors:    b.MergeErrors.Load(),
	}
	if s.SearchCount > 0 {
		s.AvgSearchDuration = time.Duration(b.SearchTotalNanos.Load() / s.SearchCount)
	}
	return s
}
