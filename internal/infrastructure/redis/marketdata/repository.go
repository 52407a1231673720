package marketdata

import (
	"context"
	"encoding/json"

	marketdatav1 "github.com/propshare/exchange/internal/domain/marketdata/v1"
	"github.com/propshare/exchange/pkg/errors"
	"github.com/propshare/exchange/pkg/redis"
)

const snapshotKeyPrefix = "marketdata:snapshot:"

// SnapshotRepository caches per-instrument market data snapshots in Redis
// so read traffic stays off the engine. Snapshots are fully re-derived on
// each fill, so a stale or evicted cache entry heals on the next trade.
type SnapshotRepository struct {
	client redis.Client
}

// NewSnapshotRepository creates a new Redis-backed snapshot repository.
func NewSnapshotRepository(client redis.Client) *SnapshotRepository {
	return &SnapshotRepository{client: client}
}

// Upsert overwrites the instrument's snapshot.
func (r *SnapshotRepository) Upsert(ctx context.Context, snapshot *marketdatav1.Snapshot) error {
	payload, err := json.Marshal(snapshot)
	if err != nil {
		return errors.TracerFromError(err)
	}

	return r.client.Set(ctx, snapshotKeyPrefix+snapshot.InstrumentID, payload, 0)
}

// Get returns the instrument's snapshot, or nil if no fill has occurred yet.
func (r *SnapshotRepository) Get(ctx context.Context, instrumentID string) (*marketdatav1.Snapshot, error) {
	payload, err := r.client.Get(ctx, snapshotKeyPrefix+instrumentID)
	if err != nil {
		return nil, err
	}
	if payload == "" {
		return nil, nil
	}

	snapshot := &marketdatav1.Snapshot{}
	if err := json.Unmarshal([]byte(payload), snapshot); err != nil {
		return nil, errors.TracerFromError(err)
	}

	return snapshot, nil
}
