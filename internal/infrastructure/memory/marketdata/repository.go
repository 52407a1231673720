package marketdata

import (
	"context"
	"sort"
	"sync"
	"time"

	marketdatav1 "github.com/propshare/exchange/internal/domain/marketdata/v1"
)

// SnapshotRepository is an in-memory snapshot store with one record per
// instrument.
type SnapshotRepository struct {
	mu        sync.RWMutex
	snapshots map[string]*marketdatav1.Snapshot
}

// NewSnapshotRepository creates a new in-memory snapshot repository.
func NewSnapshotRepository() *SnapshotRepository {
	return &SnapshotRepository{
		snapshots: make(map[string]*marketdatav1.Snapshot),
	}
}

// Upsert overwrites the instrument's snapshot.
func (r *SnapshotRepository) Upsert(ctx context.Context, snapshot *marketdatav1.Snapshot) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	cp := *snapshot
	r.snapshots[snapshot.InstrumentID] = &cp
	return nil
}

// Get returns the instrument's snapshot, or nil if no fill has occurred yet.
func (r *SnapshotRepository) Get(ctx context.Context, instrumentID string) (*marketdatav1.Snapshot, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	snapshot, ok := r.snapshots[instrumentID]
	if !ok {
		return nil, nil
	}
	cp := *snapshot
	return &cp, nil
}

// HistoryRepository is an in-memory price history store. Points are kept
// sorted by timestamp per instrument.
type HistoryRepository struct {
	mu     sync.RWMutex
	series map[string][]marketdatav1.PricePoint
}

// NewHistoryRepository creates a new in-memory history repository.
func NewHistoryRepository() *HistoryRepository {
	return &HistoryRepository{
		series: make(map[string][]marketdatav1.PricePoint),
	}
}

// Append adds a point to the instrument's series.
func (r *HistoryRepository) Append(ctx context.Context, instrumentID string, point marketdatav1.PricePoint) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	points := append(r.series[instrumentID], point)
	// Fills arrive in time order during live trading, but fixture loads
	// may append out of order.
	if n := len(points); n > 1 && points[n-1].Timestamp.Before(points[n-2].Timestamp) {
		sort.Slice(points, func(i, j int) bool {
			return points[i].Timestamp.Before(points[j].Timestamp)
		})
	}
	r.series[instrumentID] = points
	return nil
}

// Range returns points with from <= timestamp <= to, oldest first.
func (r *HistoryRepository) Range(ctx context.Context, instrumentID string, from, to time.Time) ([]marketdatav1.PricePoint, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var points []marketdatav1.PricePoint
	for _, point := range r.series[instrumentID] {
		if point.Timestamp.Before(from) || point.Timestamp.After(to) {
			continue
		}
		points = append(points, point)
	}
	return points, nil
}

// PruneBefore drops points older than the cutoff.
func (r *HistoryRepository) PruneBefore(ctx context.Context, instrumentID string, cutoff time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	points := r.series[instrumentID]
	kept := points[:0]
	for _, point := range points {
		if !point.Timestamp.Before(cutoff) {
			kept = append(kept, point)
		}
	}
	r.series[instrumentID] = kept
	return nil
}
