package settings

import (
	"context"
	"sync"
	"time"
)

type InMemSnapshotRepo struct {
	mu   sync.Mutex
	snap *Snapshot

	writes int // number of successful writes, for tests
}

func NewInMemSnapshotRepo() *InMemSnapshotRepo {
	return &InMemSnapshotRepo{}
}

func (r *InMemSnapshotRepo) ReadSnapshot(ctx context.Context) (Snapshot, bool, error) {
	if err := ctx.Err(); err != nil {
		return Snapshot{}, false, err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.snap == nil {
		return Snapshot{}, false, nil
	}
	return *r.snap, true, nil
}

func (r *InMemSnapshotRepo) CreateSnapshot(ctx context.Context, s Snapshot) (Snapshot, bool, error) {
	if err := ctx.Err(); err != nil {
		return Snapshot{}, false, err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.snap != nil {
		return *r.snap, false, nil
	}
	r.snap = &s
	r.writes++
	return s, true, nil
}

func (r *InMemSnapshotRepo) UpdateIntervalState(ctx context.Context, state IntervalState) (Snapshot, bool, error) {
	if err := ctx.Err(); err != nil {
		return Snapshot{}, false, err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.snap == nil {
		return Snapshot{}, false, ErrSnapshotNotFound
	}
	if r.snap.State() == state {
		return *r.snap, false, nil
	}
	r.snap.CurrentInterval = state.CurrentInterval
	r.snap.IsSubmissionsOpen = state.IsSubmissionsOpen
	r.snap.UpdatedAt = time.Now()
	r.writes++
	return *r.snap, true, nil
}

func (r *InMemSnapshotRepo) SetMaxSubmissions(ctx context.Context, max int) (Snapshot, error) {
	if err := ctx.Err(); err != nil {
		return Snapshot{}, err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.snap == nil {
		return Snapshot{}, ErrSnapshotNotFound
	}
	r.snap.MaxSubmissionsPerInterval = max
	r.snap.UpdatedAt = time.Now()
	r.writes++
	return *r.snap, nil
}

// Writes returns how many writes changed the stored snapshot.
func (r *InMemSnapshotRepo) Writes() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.writes
}
