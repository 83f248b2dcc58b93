package timeline

import "time"

type Status string

const (
	StatusCompleted Status = "completed"
	StatusCurrent   Status = "current"
	StatusUpcoming  Status = "upcoming"
)

const (
	LabelLoading   = "Loading"
	LabelConcluded = "Concluded"
)

type ResolvedInterval struct {
	Interval
	Status Status
}

type DeadlineKind string

const (
	DeadlineEnds   DeadlineKind = "ends"   // the current interval closes
	DeadlineStarts DeadlineKind = "starts" // the next interval opens
)

type Deadline struct {
	At         time.Time
	Title      string
	IntervalID int
	Kind       DeadlineKind
}

func statusAt(iv Interval, now time.Time) Status {
	switch {
	case !now.Before(iv.End):
		return StatusCompleted
	case !now.Before(iv.Start):
		return StatusCurrent
	default:
		return StatusUpcoming
	}
}

// ResolveAll returns every interval with its status at now, in timeline order.
func (t Timeline) ResolveAll(now time.Time) []ResolvedInterval {
	res := make([]ResolvedInterval, len(t.intervals))
	for i, iv := range t.intervals {
		res[i] = ResolvedInterval{Interval: iv, Status: statusAt(iv, now)}
	}
	return res
}

func (t Timeline) current(now time.Time) (Interval, bool) {
	for _, iv := range t.intervals {
		if iv.contains(now) {
			return iv, true
		}
	}
	return Interval{}, false
}

func (t Timeline) nextUpcoming(now time.Time) (Interval, bool) {
	for _, iv := range t.intervals {
		if now.Before(iv.Start) {
			return iv, true
		}
	}
	return Interval{}, false
}

// CurrentSubmissionInterval returns the id of the interval that is current
// and accepts submissions. The second result is false before the first
// interval, inside a gap, during a break interval and after the end.
func (t Timeline) CurrentSubmissionInterval(now time.Time) (int, bool) {
	iv, ok := t.current(now)
	if !ok || !iv.AcceptsSubmissions {
		return 0, false
	}
	return iv.ID, true
}

func (t Timeline) AreSubmissionsOpen(now time.Time) bool {
	_, ok := t.CurrentSubmissionInterval(now)
	return ok
}

// ProgressPercent interpolates linearly between the start of the first
// interval and the end of the last one, breaks included.
func (t Timeline) ProgressPercent(now time.Time) float64 {
	if len(t.intervals) == 0 {
		return 0
	}
	begin := t.intervals[0].Start
	end := t.intervals[len(t.intervals)-1].End

	span := end.Sub(begin)
	if span <= 0 {
		if now.Before(end) {
			return 0
		}
		return 100
	}

	switch {
	case now.Before(begin):
		return 0
	case !now.Before(end):
		return 100
	}
	return float64(now.Sub(begin)) / float64(span) * 100
}

func (t Timeline) CurrentWeekLabel(now time.Time) string {
	if len(t.intervals) == 0 {
		return LabelLoading
	}
	if iv, ok := t.current(now); ok {
		return iv.Title
	}
	if iv, ok := t.nextUpcoming(now); ok {
		return iv.Title
	}
	return LabelConcluded
}

// NextDeadline is the end of the current interval, or the start of the
// nearest upcoming one. It reports false once the whole timeline is over.
func (t Timeline) NextDeadline(now time.Time) (Deadline, bool) {
	if iv, ok := t.current(now); ok {
		return Deadline{At: iv.End, Title: iv.Title, IntervalID: iv.ID, Kind: DeadlineEnds}, true
	}
	if iv, ok := t.nextUpcoming(now); ok {
		return Deadline{At: iv.Start, Title: iv.Title, IntervalID: iv.ID, Kind: DeadlineStarts}, true
	}
	return Deadline{}, false
}

// NextSubmissionWindow returns the nearest submission-accepting interval
// that has not started yet.
func (t Timeline) NextSubmissionWindow(now time.Time) (Interval, bool) {
	for _, iv := range t.intervals {
		if iv.AcceptsSubmissions && now.Before(iv.Start) {
			return iv, true
		}
	}
	return Interval{}, false
}

// MirrorIntervalNumber is the interval number an administrative snapshot
// shows at now: the open submission interval, otherwise the latest
// submission interval that has already started, otherwise 0.
func (t Timeline) MirrorIntervalNumber(now time.Time) int {
	if id, ok := t.CurrentSubmissionInterval(now); ok {
		return id
	}
	last := 0
	for _, iv := range t.intervals {
		if iv.AcceptsSubmissions && !now.Before(iv.Start) {
			last = iv.ID
		}
	}
	return last
}

func (t Timeline) Concluded(now time.Time) bool {
	if len(t.intervals) == 0 {
		return false
	}
	return !now.Before(t.intervals[len(t.intervals)-1].End)
}
