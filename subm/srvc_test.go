package subm_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/programme-lv/contest/settings"
	"github.com/programme-lv/contest/srvcerror"
	"github.com/programme-lv/contest/subm"
	"github.com/programme-lv/contest/timeline"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const competitionID = "winter"

func nov(day int) time.Time {
	return time.Date(2025, time.November, day, 0, 0, 0, 0, timeline.IST)
}

func newTimeline(t *testing.T) timeline.Timeline {
	t.Helper()
	tl, err := timeline.New(competitionID, []timeline.Interval{
		{ID: 1, Title: "Week 1", Start: nov(1), End: nov(10), AcceptsSubmissions: true},
		{ID: 2, Title: "Evaluation", Start: nov(10), End: nov(12)},
		{ID: 3, Title: "Week 2", Start: nov(12), End: nov(20), AcceptsSubmissions: true},
	})
	require.NoError(t, err)
	return tl
}

type recordingPublisher struct {
	mu     sync.Mutex
	events []subm.SubmCreated
	err    error
}

func (p *recordingPublisher) PublishSubmCreated(ctx context.Context, ev subm.SubmCreated) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, ev)
	return p.err
}

type fixture struct {
	srvc     *subm.SubmSrvc
	sync     *settings.Synchronizer
	repo     subm.SubmRepo
	payloads *subm.InMemPayloadStore
	events   *recordingPublisher
}

func newFixture(t *testing.T, now time.Time, quota int) fixture {
	t.Helper()
	tl := newTimeline(t)
	synchronizer := settings.NewSynchronizer(tl, settings.NewInMemSnapshotRepo(), quota)
	f := fixture{
		sync:     synchronizer,
		repo:     subm.NewInMemSubmRepo(),
		payloads: subm.NewInMemPayloadStore(),
		events:   &recordingPublisher{},
	}
	f.srvc = subm.NewSubmSrvc(tl, synchronizer, f.repo, f.payloads, f.events, func() time.Time { return now })
	return f
}

func linkParams(author uuid.UUID) subm.SubmitParams {
	return subm.SubmitParams{
		AuthorUUID:    author,
		CompetitionID: competitionID,
		Kind:          subm.KindLink,
		Link:          "https://github.com/example/solution",
	}
}

func TestAttemptSubmission_ScenarioD_QuotaExceeded(t *testing.T) {
	f := newFixture(t, nov(5), 3)

	d, err := f.srvc.AttemptSubmission(context.Background(), uuid.New(), competitionID, 3, nov(5))
	require.NoError(t, err)
	assert.False(t, d.Allowed)
	assert.Equal(t, subm.ReasonQuotaExceeded, d.Reason)
	assert.Equal(t, 1, d.IntervalID)
	assert.Equal(t, 3, d.Quota)
}

func TestAttemptSubmission_AllowedBelowQuota(t *testing.T) {
	f := newFixture(t, nov(5), 3)

	d, err := f.srvc.AttemptSubmission(context.Background(), uuid.New(), competitionID, 2, nov(5))
	require.NoError(t, err)
	assert.True(t, d.Allowed)
	assert.Equal(t, subm.ReasonNone, d.Reason)
	assert.Equal(t, 1, d.IntervalID)
}

func TestAttemptSubmission_ClosedDuringBreak(t *testing.T) {
	f := newFixture(t, nov(11), 3)

	d, err := f.srvc.AttemptSubmission(context.Background(), uuid.New(), competitionID, 0, nov(11))
	require.NoError(t, err)
	assert.False(t, d.Allowed)
	assert.Equal(t, subm.ReasonSubmissionsClosed, d.Reason)
	assert.Equal(t, 0, d.IntervalID, "a closed window carries no interval")
	require.NotNil(t, d.NextWindow)
	assert.Equal(t, 3, d.NextWindow.ID)
}

func TestAttemptSubmission_ReadsQuotaFromSnapshot(t *testing.T) {
	f := newFixture(t, nov(5), 3)
	ctx := context.Background()
	_, err := f.sync.SetQuota(ctx, nov(5), 5)
	require.NoError(t, err)

	d, err := f.srvc.AttemptSubmission(ctx, uuid.New(), competitionID, 3, nov(5))
	require.NoError(t, err)
	assert.True(t, d.Allowed)
	assert.Equal(t, 5, d.Quota)
}

func TestSubmitSol_StampsOpenInterval(t *testing.T) {
	f := newFixture(t, nov(13), 3)
	author := uuid.New()

	s, err := f.srvc.SubmitSol(context.Background(), linkParams(author))
	require.NoError(t, err)
	assert.Equal(t, 3, s.IntervalID)
	assert.Equal(t, subm.KindLink, s.Kind)
	assert.Equal(t, author, s.AuthorUUID)

	require.Len(t, f.events.events, 1)
	assert.Equal(t, s.UUID, f.events.events[0].SubmUUID)

	list, err := f.srvc.ListSubms(context.Background(), author, competitionID)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, s.UUID, list[0].UUID)
}

func TestSubmitSol_QuotaEnforced(t *testing.T) {
	f := newFixture(t, nov(5), 3)
	author := uuid.New()
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		_, err := f.srvc.SubmitSol(ctx, linkParams(author))
		require.NoError(t, err)
	}

	_, err := f.srvc.SubmitSol(ctx, linkParams(author))
	require.Error(t, err)
	assert.True(t, srvcerror.HasCode(err, subm.ErrCodeQuotaExceeded))
	assert.False(t, srvcerror.IsRetryable(err))
	assert.Contains(t, err.Error(), "3 of 3")
	assert.Contains(t, err.Error(), "interval 1")

	// another author is unaffected
	_, err = f.srvc.SubmitSol(ctx, linkParams(uuid.New()))
	require.NoError(t, err)
}

func TestSubmitSol_ClosedWindow(t *testing.T) {
	f := newFixture(t, nov(11), 3)

	_, err := f.srvc.SubmitSol(context.Background(), linkParams(uuid.New()))
	require.Error(t, err)
	assert.True(t, srvcerror.HasCode(err, subm.ErrCodeSubmissionsClosed))
	assert.Contains(t, err.Error(), "Week 2")

	concluded := newFixture(t, nov(25), 3)
	_, err = concluded.srvc.SubmitSol(context.Background(), linkParams(uuid.New()))
	require.Error(t, err)
	assert.True(t, srvcerror.HasCode(err, subm.ErrCodeSubmissionsClosed))
	assert.Contains(t, err.Error(), "concluded")
}

func TestSubmitSol_ConcurrentRequestsNeverExceedQuota(t *testing.T) {
	const quota = 3
	f := newFixture(t, nov(5), quota)
	author := uuid.New()
	ctx := context.Background()

	var wg sync.WaitGroup
	var mu sync.Mutex
	allowed, refused := 0, 0
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := f.srvc.SubmitSol(ctx, linkParams(author))
			mu.Lock()
			defer mu.Unlock()
			if err == nil {
				allowed++
				return
			}
			assert.True(t, srvcerror.HasCode(err, subm.ErrCodeQuotaExceeded), "unexpected error: %v", err)
			refused++
		}()
	}
	wg.Wait()

	assert.Equal(t, quota, allowed)
	assert.Equal(t, 20-quota, refused)

	count, err := f.repo.CountSubms(ctx, author, competitionID, 1)
	require.NoError(t, err)
	assert.Equal(t, quota, count)
}

func TestSubmitSol_FilePayloadStored(t *testing.T) {
	f := newFixture(t, nov(5), 3)
	content := []byte("%PDF-1.4\n1 0 obj\n<<>>\nendobj\n")

	s, err := f.srvc.SubmitSol(context.Background(), subm.SubmitParams{
		AuthorUUID:    uuid.New(),
		CompetitionID: competitionID,
		Kind:          subm.KindFile,
		Filename:      "report.pdf",
		Content:       content,
	})
	require.NoError(t, err)
	assert.Equal(t, "application/pdf", s.MediaType)
	assert.Equal(t, int64(len(content)), s.SizeBytes)
	assert.Contains(t, s.S3Key, "submissions/winter/1/")

	stored, ok := f.payloads.File(s.S3Key)
	require.True(t, ok)
	assert.Equal(t, content, stored)
}

func TestSubmitSol_InvalidPayloads(t *testing.T) {
	f := newFixture(t, nov(5), 3)
	ctx := context.Background()

	cases := map[string]subm.SubmitParams{
		"relative link": {CompetitionID: competitionID, Kind: subm.KindLink, Link: "/solution"},
		"ftp link":      {CompetitionID: competitionID, Kind: subm.KindLink, Link: "ftp://example.com/x"},
		"empty file":    {CompetitionID: competitionID, Kind: subm.KindFile, Filename: "a.txt"},
		"no filename":   {CompetitionID: competitionID, Kind: subm.KindFile, Content: []byte("x")},
		"unknown kind":  {CompetitionID: competitionID, Kind: "video"},
	}
	for name, p := range cases {
		t.Run(name, func(t *testing.T) {
			p.AuthorUUID = uuid.New()
			_, err := f.srvc.SubmitSol(ctx, p)
			require.Error(t, err)
			assert.True(t, srvcerror.HasCode(err, subm.ErrCodeInvalidSubmission))
		})
	}
}

func TestSubmitSol_UnknownCompetition(t *testing.T) {
	f := newFixture(t, nov(5), 3)
	p := linkParams(uuid.New())
	p.CompetitionID = "summer"

	_, err := f.srvc.SubmitSol(context.Background(), p)
	require.Error(t, err)
	assert.True(t, srvcerror.HasCode(err, subm.ErrCodeCompetitionNotFound))
}

func TestSubmitSol_PublishFailureDoesNotFailSubmission(t *testing.T) {
	f := newFixture(t, nov(5), 3)
	f.events.err = errors.New("queue unavailable")

	_, err := f.srvc.SubmitSol(context.Background(), linkParams(uuid.New()))
	require.NoError(t, err)
}

type failingSettings struct{}

func (failingSettings) Snapshot(ctx context.Context, now time.Time) (settings.Snapshot, error) {
	return settings.Snapshot{}, srvcerror.ErrStorageUnavailable(context.DeadlineExceeded)
}

type failingRepo struct {
	subm.SubmRepo
}

func (failingRepo) CountSubms(ctx context.Context, a uuid.UUID, c string, i int) (int, error) {
	return 0, errors.New("connection reset")
}

func TestSubmitSol_StorageFailuresAreTransient(t *testing.T) {
	tl := newTimeline(t)
	clock := func() time.Time { return nov(5) }

	srvc := subm.NewSubmSrvc(tl, failingSettings{}, subm.NewInMemSubmRepo(),
		subm.NewInMemPayloadStore(), &recordingPublisher{}, clock)
	_, err := srvc.SubmitSol(context.Background(), linkParams(uuid.New()))
	require.Error(t, err)
	assert.True(t, srvcerror.IsRetryable(err))
	assert.False(t, srvcerror.HasCode(err, subm.ErrCodeSubmissionsClosed))
	assert.False(t, srvcerror.HasCode(err, subm.ErrCodeQuotaExceeded))

	synchronizer := settings.NewSynchronizer(tl, settings.NewInMemSnapshotRepo(), 3)
	srvc = subm.NewSubmSrvc(tl, synchronizer, failingRepo{}, subm.NewInMemPayloadStore(), &recordingPublisher{}, clock)
	_, err = srvc.SubmitSol(context.Background(), linkParams(uuid.New()))
	require.Error(t, err)
	assert.True(t, srvcerror.IsRetryable(err))
	assert.True(t, srvcerror.HasCode(err, srvcerror.ErrCodeStorageUnavailable))
}

func TestSubmitSol_SyncsSnapshotBeforeSubmission(t *testing.T) {
	f := newFixture(t, nov(13), 3)
	ctx := context.Background()

	// snapshot created during week 1, stale by the time week 2 is open
	_, err := f.sync.Sync(ctx, nov(5))
	require.NoError(t, err)

	_, err = f.srvc.SubmitSol(ctx, linkParams(uuid.New()))
	require.NoError(t, err)

	res, err := f.sync.Sync(ctx, nov(13))
	require.NoError(t, err)
	assert.False(t, res.Updated, "submission path already reconciled the snapshot")
	assert.Equal(t, 3, res.Snapshot.CurrentInterval)
}

func TestSubmitSol_ClosedInFinalBreakNamesDeadline(t *testing.T) {
	tl, err := timeline.New(competitionID, []timeline.Interval{
		{ID: 1, Title: "Week 1", Start: nov(1), End: nov(10), AcceptsSubmissions: true},
		{ID: 2, Title: "Final evaluation", Start: nov(10), End: nov(15)},
	})
	require.NoError(t, err)
	synchronizer := settings.NewSynchronizer(tl, settings.NewInMemSnapshotRepo(), 3)
	srvc := subm.NewSubmSrvc(tl, synchronizer, subm.NewInMemSubmRepo(), subm.NewInMemPayloadStore(),
		&recordingPublisher{}, func() time.Time { return nov(12) })

	d, err := srvc.AttemptSubmission(context.Background(), uuid.New(), competitionID, 0, nov(12))
	require.NoError(t, err)
	assert.False(t, d.Allowed)
	assert.Nil(t, d.NextWindow)
	require.NotNil(t, d.NextDeadline)
	assert.Equal(t, nov(15), d.NextDeadline.At)

	_, err = srvc.SubmitSol(context.Background(), linkParams(uuid.New()))
	require.Error(t, err)
	assert.True(t, srvcerror.HasCode(err, subm.ErrCodeSubmissionsClosed))
	assert.NotContains(t, err.Error(), "concluded")
	assert.Contains(t, err.Error(), `"Final evaluation" ends at 2025-11-15 00:00 IST`)

	// once the timeline is over there is nothing left to name
	d, err = srvc.AttemptSubmission(context.Background(), uuid.New(), competitionID, 0, nov(16))
	require.NoError(t, err)
	assert.Nil(t, d.NextWindow)
	assert.Nil(t, d.NextDeadline)
}

func TestSubmitSol_QuotaMessageShowsHeldCount(t *testing.T) {
	f := newFixture(t, nov(5), 3)
	author := uuid.New()
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		_, err := f.srvc.SubmitSol(ctx, linkParams(author))
		require.NoError(t, err)
	}
	_, err := f.sync.SetQuota(ctx, nov(5), 1)
	require.NoError(t, err)

	_, err = f.srvc.SubmitSol(ctx, linkParams(author))
	require.Error(t, err)
	assert.True(t, srvcerror.HasCode(err, subm.ErrCodeQuotaExceeded))
	assert.Contains(t, err.Error(), "3 of 1")
}

// racingRepo sees an empty interval when counting but loses the insert.
type racingRepo struct {
	subm.SubmRepo
	insertErr error
}

func (racingRepo) CountSubms(ctx context.Context, a uuid.UUID, c string, i int) (int, error) {
	return 0, nil
}

func (r racingRepo) InsertWithinQuota(ctx context.Context, s subm.Subm, quota int) error {
	return r.insertErr
}

func fileParams(author uuid.UUID) subm.SubmitParams {
	return subm.SubmitParams{
		AuthorUUID:    author,
		CompetitionID: competitionID,
		Kind:          subm.KindFile,
		Filename:      "report.pdf",
		Content:       []byte("%PDF-1.4\n1 0 obj\n<<>>\nendobj\n"),
	}
}

func TestSubmitSol_RefusedInsertDeletesStoredFile(t *testing.T) {
	tl := newTimeline(t)
	clock := func() time.Time { return nov(5) }

	cases := map[string]struct {
		insertErr error
		check     func(t *testing.T, err error)
	}{
		"lost quota race": {
			insertErr: &subm.QuotaReachedError{Count: 3},
			check: func(t *testing.T, err error) {
				assert.True(t, srvcerror.HasCode(err, subm.ErrCodeQuotaExceeded))
				assert.Contains(t, err.Error(), "3 of 3")
			},
		},
		"insert failed": {
			insertErr: errors.New("connection reset"),
			check: func(t *testing.T, err error) {
				assert.True(t, srvcerror.IsRetryable(err))
			},
		},
	}
	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			payloads := subm.NewInMemPayloadStore()
			synchronizer := settings.NewSynchronizer(tl, settings.NewInMemSnapshotRepo(), 3)
			srvc := subm.NewSubmSrvc(tl, synchronizer, racingRepo{insertErr: tc.insertErr}, payloads,
				&recordingPublisher{}, clock)

			_, err := srvc.SubmitSol(context.Background(), fileParams(uuid.New()))
			require.Error(t, err)
			tc.check(t, err)
			assert.Empty(t, payloads.Keys())
		})
	}
}
