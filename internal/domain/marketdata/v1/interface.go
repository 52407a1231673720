package marketdatav1

import (
	"context"
	"time"
)

// SnapshotRepository holds one market data record per instrument.
//
//go:generate mockgen -source interface.go -destination=mock/interface_mock.go -package=marketdatav1_mock
type SnapshotRepository interface {
	// Upsert overwrites the instrument's snapshot.
	Upsert(ctx context.Context, snapshot *Snapshot) error
	// Get returns the instrument's snapshot, or nil if no fill has occurred yet.
	Get(ctx context.Context, instrumentID string) (*Snapshot, error)
}

// HistoryRepository holds the capped price history series per instrument.
type HistoryRepository interface {
	// Append adds a point to the instrument's series.
	Append(ctx context.Context, instrumentID string, point PricePoint) error
	// Range returns points with from <= timestamp <= to, oldest first.
	Range(ctx context.Context, instrumentID string, from, to time.Time) ([]PricePoint, error)
	// PruneBefore drops points older than the cutoff.
	PruneBefore(ctx context.Context, instrumentID string, cutoff time.Time) error
}
