package timeline

import "time"

// Phase bundles every value derived from one sampled instant, so a caller
// rendering several of them never mixes two different "now"s.
type Phase struct {
	Now              time.Time
	Intervals        []ResolvedInterval
	SubmissionID     int
	SubmissionsOpen  bool
	ProgressPercent  float64
	WeekLabel        string
	NextDeadline     *Deadline
	Concluded        bool
	MirroredInterval int
}

func (t Timeline) Phase(now time.Time) Phase {
	now = now.In(IST)
	id, open := t.CurrentSubmissionInterval(now)
	p := Phase{
		Now:              now,
		Intervals:        t.ResolveAll(now),
		SubmissionID:     id,
		SubmissionsOpen:  open,
		ProgressPercent:  t.ProgressPercent(now),
		WeekLabel:        t.CurrentWeekLabel(now),
		Concluded:        t.Concluded(now),
		MirroredInterval: t.MirrorIntervalNumber(now),
	}
	if d, ok := t.NextDeadline(now); ok {
		p.NextDeadline = &d
	}
	return p
}

// Clock returns the current instant in IST. Services take a func() time.Time
// so tests can pin the instant.
func Clock() time.Time {
	return time.Now().In(IST)
}
