package timeline_test

import (
	"testing"
	"time"

	"github.com/programme-lv/contest/timeline"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func nov(day int) time.Time {
	return time.Date(2025, time.November, day, 0, 0, 0, 0, timeline.IST)
}

// two back-to-back submission weeks: [Nov 1, Nov 10) and [Nov 10, Nov 20)
func newTwoWeekTimeline(t *testing.T) timeline.Timeline {
	t.Helper()
	tl, err := timeline.New("winter", []timeline.Interval{
		{ID: 1, Title: "Week 1", Start: nov(1), End: nov(10), AcceptsSubmissions: true},
		{ID: 2, Title: "Week 2", Start: nov(10), End: nov(20), AcceptsSubmissions: true},
	})
	require.NoError(t, err)
	return tl
}

// week 1, a break on [Nov 10, Nov 12), week 2 on [Nov 12, Nov 20)
func newTimelineWithBreak(t *testing.T) timeline.Timeline {
	t.Helper()
	tl, err := timeline.New("winter", []timeline.Interval{
		{ID: 1, Title: "Week 1", Start: nov(1), End: nov(10), AcceptsSubmissions: true},
		{ID: 2, Title: "Evaluation", Start: nov(10), End: nov(12), AcceptsSubmissions: false},
		{ID: 3, Title: "Week 2", Start: nov(12), End: nov(20), AcceptsSubmissions: true},
	})
	require.NoError(t, err)
	return tl
}

func TestBeforeFirstInterval(t *testing.T) {
	tl := newTwoWeekTimeline(t)
	for _, now := range []time.Time{nov(1).Add(-time.Nanosecond), nov(1).Add(-48 * time.Hour)} {
		assert.False(t, tl.AreSubmissionsOpen(now))
		assert.Equal(t, 0.0, tl.ProgressPercent(now))
		_, ok := tl.CurrentSubmissionInterval(now)
		assert.False(t, ok)
		for _, ri := range tl.ResolveAll(now) {
			assert.Equal(t, timeline.StatusUpcoming, ri.Status)
		}
		assert.Equal(t, "Week 1", tl.CurrentWeekLabel(now))
		assert.Equal(t, 0, tl.MirrorIntervalNumber(now))
	}
}

func TestAtOrAfterLastEnd(t *testing.T) {
	tl := newTwoWeekTimeline(t)
	for _, now := range []time.Time{nov(20), nov(25)} {
		assert.False(t, tl.AreSubmissionsOpen(now))
		assert.Equal(t, 100.0, tl.ProgressPercent(now))
		for _, ri := range tl.ResolveAll(now) {
			assert.Equal(t, timeline.StatusCompleted, ri.Status)
		}
		_, ok := tl.NextDeadline(now)
		assert.False(t, ok, "a concluded timeline has no next deadline")
		assert.Equal(t, timeline.LabelConcluded, tl.CurrentWeekLabel(now))
		assert.True(t, tl.Concluded(now))
		assert.Equal(t, 2, tl.MirrorIntervalNumber(now))
	}
}

func TestExactlyOneCurrentInsideInterval(t *testing.T) {
	tl := newTimelineWithBreak(t)
	cases := []struct {
		now  time.Time
		want int
	}{
		{nov(1), 1},
		{nov(10).Add(-time.Nanosecond), 1},
		{nov(10), 2},
		{nov(11), 2},
		{nov(12), 3},
		{nov(20).Add(-time.Second), 3},
	}
	for _, c := range cases {
		var current []int
		for _, ri := range tl.ResolveAll(c.now) {
			if ri.Status == timeline.StatusCurrent {
				current = append(current, ri.ID)
			}
		}
		assert.Equal(t, []int{c.want}, current, "at %s", c.now)
	}
}

func TestScenarioA_InsideFirstWeek(t *testing.T) {
	tl := newTwoWeekTimeline(t)
	now := nov(5)

	id, ok := tl.CurrentSubmissionInterval(now)
	require.True(t, ok)
	assert.Equal(t, 1, id)
	assert.True(t, tl.AreSubmissionsOpen(now))
	// 4 days into the 19 day span from Nov 1 to Nov 20
	assert.InDelta(t, 400.0/19.0, tl.ProgressPercent(now), 1e-9)
	assert.Equal(t, "Week 1", tl.CurrentWeekLabel(now))

	d, ok := tl.NextDeadline(now)
	require.True(t, ok)
	assert.True(t, d.At.Equal(nov(10)))
	assert.Equal(t, 1, d.IntervalID)
	assert.Equal(t, timeline.DeadlineEnds, d.Kind)
}

func TestScenarioB_PastBothWeeks(t *testing.T) {
	tl := newTwoWeekTimeline(t)
	now := nov(25)

	_, ok := tl.CurrentSubmissionInterval(now)
	assert.False(t, ok)
	assert.False(t, tl.AreSubmissionsOpen(now))
	assert.Equal(t, 100.0, tl.ProgressPercent(now))
}

func TestScenarioC_BreakClosesSubmissions(t *testing.T) {
	tl := newTimelineWithBreak(t)
	now := nov(11)

	_, ok := tl.CurrentSubmissionInterval(now)
	assert.False(t, ok)
	assert.False(t, tl.AreSubmissionsOpen(now))
	assert.Greater(t, tl.ProgressPercent(now), 0.0)
	assert.Less(t, tl.ProgressPercent(now), 100.0)
	assert.Equal(t, "Evaluation", tl.CurrentWeekLabel(now))
	assert.Equal(t, 1, tl.MirrorIntervalNumber(now))

	next, ok := tl.NextSubmissionWindow(now)
	require.True(t, ok)
	assert.Equal(t, 3, next.ID)
}

func TestGapWithoutBreakInterval(t *testing.T) {
	tl, err := timeline.New("winter", []timeline.Interval{
		{ID: 1, Title: "Week 1", Start: nov(1), End: nov(10), AcceptsSubmissions: true},
		{ID: 2, Title: "Week 2", Start: nov(12), End: nov(20), AcceptsSubmissions: true},
	})
	require.NoError(t, err)
	now := nov(11)

	statuses := tl.ResolveAll(now)
	assert.Equal(t, timeline.StatusCompleted, statuses[0].Status)
	assert.Equal(t, timeline.StatusUpcoming, statuses[1].Status)
	assert.False(t, tl.AreSubmissionsOpen(now))
	assert.Equal(t, "Week 2", tl.CurrentWeekLabel(now))

	d, ok := tl.NextDeadline(now)
	require.True(t, ok)
	assert.True(t, d.At.Equal(nov(12)))
	assert.Equal(t, timeline.DeadlineStarts, d.Kind)
}

func TestPhaseUsesSingleInstant(t *testing.T) {
	tl := newTwoWeekTimeline(t)
	now := nov(10).Add(-time.Nanosecond).UTC()

	p := tl.Phase(now)
	assert.Equal(t, timeline.IST, p.Now.Location())
	assert.True(t, p.SubmissionsOpen)
	assert.Equal(t, 1, p.SubmissionID)
	assert.Equal(t, "Week 1", p.WeekLabel)
	require.NotNil(t, p.NextDeadline)
	assert.Equal(t, 1, p.NextDeadline.IntervalID)
	assert.Equal(t, timeline.StatusCurrent, p.Intervals[0].Status)
	assert.Equal(t, timeline.StatusUpcoming, p.Intervals[1].Status)

	done := tl.Phase(nov(30))
	assert.Nil(t, done.NextDeadline)
	assert.True(t, done.Concluded)
}

func TestHostTimezoneDoesNotMatter(t *testing.T) {
	tl := newTwoWeekTimeline(t)
	// 18:29:59 UTC on Nov 9 is 23:59:59 IST, still week 1
	now := time.Date(2025, time.November, 9, 18, 29, 59, 0, time.UTC)
	id, ok := tl.CurrentSubmissionInterval(now)
	require.True(t, ok)
	assert.Equal(t, 1, id)

	// 18:30 UTC is midnight IST, week 2 starts
	id, ok = tl.CurrentSubmissionInterval(now.Add(time.Second))
	require.True(t, ok)
	assert.Equal(t, 2, id)
}
