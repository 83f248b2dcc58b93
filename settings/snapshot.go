package settings

import (
	"context"
	"errors"
	"time"

	"github.com/programme-lv/contest/timeline"
)

// Snapshot is the persisted administrative projection of the timeline. The
// two interval fields are a cache of what the timeline computes; only the
// quota is owned by administrators.
type Snapshot struct {
	CurrentInterval           int
	IsSubmissionsOpen         bool
	MaxSubmissionsPerInterval int
	UpdatedAt                 time.Time
}

func (s Snapshot) State() IntervalState {
	return IntervalState{
		CurrentInterval:   s.CurrentInterval,
		IsSubmissionsOpen: s.IsSubmissionsOpen,
	}
}

// IntervalState holds the time-derived snapshot fields.
type IntervalState struct {
	CurrentInterval   int
	IsSubmissionsOpen bool
}

// StateAt computes what the snapshot should hold at now.
func StateAt(tl timeline.Timeline, now time.Time) IntervalState {
	return IntervalState{
		CurrentInterval:   tl.MirrorIntervalNumber(now),
		IsSubmissionsOpen: tl.AreSubmissionsOpen(now),
	}
}

var ErrSnapshotNotFound = errors.New("settings snapshot not found")

type SnapshotRepo interface {
	// ReadSnapshot reports false when no snapshot has been created yet.
	ReadSnapshot(ctx context.Context) (Snapshot, bool, error)

	// CreateSnapshot inserts s unless a snapshot already exists, in which
	// case the existing one is returned with created == false.
	CreateSnapshot(ctx context.Context, s Snapshot) (res Snapshot, created bool, err error)

	// UpdateIntervalState writes only the time-derived fields and only if
	// they differ from state. written is false when nothing changed.
	UpdateIntervalState(ctx context.Context, state IntervalState) (res Snapshot, written bool, err error)

	// SetMaxSubmissions writes only the quota field.
	SetMaxSubmissions(ctx context.Context, max int) (Snapshot, error)
}
