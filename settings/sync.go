package settings

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/programme-lv/contest/logger"
	"github.com/programme-lv/contest/timeline"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
)

var tracer = otel.Tracer("github.com/programme-lv/contest/settings")

type Change string

const (
	ChangeCreated         Change = "created"
	ChangeIntervalChanged Change = "interval_changed"
	ChangeOpenChanged     Change = "open_changed"
)

type SyncResult struct {
	Updated  bool
	Changes  []Change
	Previous IntervalState // zero when the snapshot was just created
	Snapshot Snapshot
}

// Message describes the outcome for an administrator.
func (r SyncResult) Message() string {
	if !r.Updated {
		return "settings already in sync"
	}
	parts := make([]string, 0, len(r.Changes))
	for _, c := range r.Changes {
		switch c {
		case ChangeCreated:
			parts = append(parts, fmt.Sprintf(
				"settings created with interval %d", r.Snapshot.CurrentInterval))
		case ChangeIntervalChanged:
			parts = append(parts, fmt.Sprintf(
				"current interval changed from %d to %d",
				r.Previous.CurrentInterval, r.Snapshot.CurrentInterval))
		case ChangeOpenChanged:
			if r.Snapshot.IsSubmissionsOpen {
				parts = append(parts, "submissions opened")
			} else {
				parts = append(parts, "submissions closed")
			}
		}
	}
	return strings.Join(parts, ", ")
}

// Synchronizer keeps the persisted snapshot equal to what the timeline
// computes. It never writes the quota, except when creating the snapshot.
type Synchronizer struct {
	tl         timeline.Timeline
	repo       SnapshotRepo
	defaultMax int
}

func NewSynchronizer(tl timeline.Timeline, repo SnapshotRepo, defaultMaxSubmissions int) *Synchronizer {
	return &Synchronizer{
		tl:         tl,
		repo:       repo,
		defaultMax: defaultMaxSubmissions,
	}
}

func (s *Synchronizer) Sync(ctx context.Context, now time.Time) (res SyncResult, err error) {
	ctx, span := tracer.Start(ctx, "settings.Sync")
	defer func() {
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
		}
		span.SetAttributes(attribute.Bool("settings.updated", res.Updated))
		span.End()
	}()

	want := StateAt(s.tl, now)

	snap, found, err := s.repo.ReadSnapshot(ctx)
	if err != nil {
		return SyncResult{}, newErrStorage("failed to read snapshot: %w", err)
	}

	if !found {
		snap, created, err := s.repo.CreateSnapshot(ctx, Snapshot{
			CurrentInterval:           want.CurrentInterval,
			IsSubmissionsOpen:         want.IsSubmissionsOpen,
			MaxSubmissionsPerInterval: s.defaultMax,
			UpdatedAt:                 now,
		})
		if err != nil {
			return SyncResult{}, newErrStorage("failed to create snapshot: %w", err)
		}
		if created {
			logger.FromContext(ctx).Info("settings snapshot created",
				"current_interval", snap.CurrentInterval,
				"is_submissions_open", snap.IsSubmissionsOpen)
			return SyncResult{
				Updated:  true,
				Changes:  []Change{ChangeCreated},
				Snapshot: snap,
			}, nil
		}
		// lost the creation race, reconcile against the winner's row
		return s.reconcile(ctx, snap, want)
	}

	return s.reconcile(ctx, snap, want)
}

func (s *Synchronizer) reconcile(ctx context.Context, snap Snapshot, want IntervalState) (SyncResult, error) {
	prev := snap.State()
	changes := diff(prev, want)
	if len(changes) == 0 {
		return SyncResult{Updated: false, Previous: prev, Snapshot: snap}, nil
	}

	updated, written, err := s.repo.UpdateIntervalState(ctx, want)
	if err != nil {
		return SyncResult{}, newErrStorage("failed to update snapshot: %w", err)
	}
	if !written {
		// a concurrent sync already wrote the same state
		current, _, err := s.repo.ReadSnapshot(ctx)
		if err != nil {
			return SyncResult{}, newErrStorage("failed to reread snapshot: %w", err)
		}
		return SyncResult{Updated: false, Previous: prev, Snapshot: current}, nil
	}

	res := SyncResult{Updated: true, Changes: changes, Previous: prev, Snapshot: updated}
	logger.FromContext(ctx).Info("settings snapshot updated", "changes", res.Message())
	return res, nil
}

func diff(have, want IntervalState) []Change {
	var changes []Change
	if have.CurrentInterval != want.CurrentInterval {
		changes = append(changes, ChangeIntervalChanged)
	}
	if have.IsSubmissionsOpen != want.IsSubmissionsOpen {
		changes = append(changes, ChangeOpenChanged)
	}
	return changes
}

// Snapshot syncs and returns the resulting snapshot. Submission creation
// calls it to read the quota.
func (s *Synchronizer) Snapshot(ctx context.Context, now time.Time) (Snapshot, error) {
	res, err := s.Sync(ctx, now)
	if err != nil {
		return Snapshot{}, err
	}
	return res.Snapshot, nil
}

func (s *Synchronizer) SetQuota(ctx context.Context, now time.Time, max int) (Snapshot, error) {
	if max < 1 {
		return Snapshot{}, newErrInvalidQuota(max)
	}
	if _, err := s.Sync(ctx, now); err != nil {
		return Snapshot{}, err
	}
	snap, err := s.repo.SetMaxSubmissions(ctx, max)
	if err != nil {
		return Snapshot{}, newErrStorage("failed to set quota: %w", err)
	}
	logger.FromContext(ctx).Info("submission quota set", "max_submissions_per_interval", max)
	return snap, nil
}

func (s *Synchronizer) Timeline() timeline.Timeline {
	return s.tl
}
