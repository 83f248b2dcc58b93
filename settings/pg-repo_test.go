package settings_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/programme-lv/contest/pgtest"
	"github.com/programme-lv/contest/settings"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPgSnapshotRepo_CreateReadUpdate(t *testing.T) {
	t.Parallel()
	repo := settings.NewPgSnapshotRepo(pgtest.NewDB(t))
	ctx := context.Background()

	_, found, err := repo.ReadSnapshot(ctx)
	require.NoError(t, err)
	assert.False(t, found)

	created, ok, err := repo.CreateSnapshot(ctx, settings.Snapshot{
		CurrentInterval:           1,
		IsSubmissionsOpen:         true,
		MaxSubmissionsPerInterval: 3,
		UpdatedAt:                 time.Now(),
	})
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, 1, created.CurrentInterval)

	again, ok, err := repo.CreateSnapshot(ctx, settings.Snapshot{
		CurrentInterval:           9,
		MaxSubmissionsPerInterval: 9,
		UpdatedAt:                 time.Now(),
	})
	require.NoError(t, err)
	assert.False(t, ok, "second create must not overwrite")
	assert.Equal(t, 1, again.CurrentInterval)
	assert.Equal(t, 3, again.MaxSubmissionsPerInterval)

	_, written, err := repo.UpdateIntervalState(ctx, settings.IntervalState{CurrentInterval: 1, IsSubmissionsOpen: true})
	require.NoError(t, err)
	assert.False(t, written, "equal state must not be written")

	updated, written, err := repo.UpdateIntervalState(ctx, settings.IntervalState{CurrentInterval: 2, IsSubmissionsOpen: false})
	require.NoError(t, err)
	assert.True(t, written)
	assert.Equal(t, 2, updated.CurrentInterval)
	assert.False(t, updated.IsSubmissionsOpen)
	assert.Equal(t, 3, updated.MaxSubmissionsPerInterval)

	withQuota, err := repo.SetMaxSubmissions(ctx, 5)
	require.NoError(t, err)
	assert.Equal(t, 5, withQuota.MaxSubmissionsPerInterval)
	assert.Equal(t, 2, withQuota.CurrentInterval)
}

func TestPgSnapshotRepo_SetQuotaWithoutSnapshot(t *testing.T) {
	t.Parallel()
	repo := settings.NewPgSnapshotRepo(pgtest.NewDB(t))

	_, err := repo.SetMaxSubmissions(context.Background(), 5)
	require.ErrorIs(t, err, settings.ErrSnapshotNotFound)
}

func TestPgSnapshotRepo_ConcurrentSyncWritesOnce(t *testing.T) {
	t.Parallel()
	repo := settings.NewPgSnapshotRepo(pgtest.NewDB(t))
	s := settings.NewSynchronizer(newTimeline(t), repo, 3)
	ctx := context.Background()

	_, err := s.Sync(ctx, nov(5))
	require.NoError(t, err)

	var wg sync.WaitGroup
	var mu sync.Mutex
	updated := 0
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			res, err := s.Sync(ctx, nov(13))
			assert.NoError(t, err)
			if res.Updated {
				mu.Lock()
				updated++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()
	assert.Equal(t, 1, updated)

	snap, found, err := repo.ReadSnapshot(ctx)
	require.NoError(t, err)
	require.True(t, found)
	assert.Equal(t, 3, snap.CurrentInterval)
	assert.True(t, snap.IsSubmissionsOpen)
}
