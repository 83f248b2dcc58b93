package timeline

import (
	"errors"
	"fmt"
	"time"
)

// IST is the civil zone every competition instant is anchored to.
var IST = time.FixedZone("IST", 5*60*60+30*60)

var ErrMalformedTimeline = errors.New("malformed timeline")

type Interval struct {
	ID                 int
	Title              string
	Start              time.Time // inclusive
	End                time.Time // exclusive
	AcceptsSubmissions bool
}

func (i Interval) contains(now time.Time) bool {
	return !now.Before(i.Start) && now.Before(i.End)
}

// Timeline is an ordered, validated list of intervals. It is built once at
// process start and passed by value to whoever needs to resolve it.
type Timeline struct {
	competitionID string
	intervals     []Interval
}

// New validates the intervals and returns an immutable timeline.
func New(competitionID string, intervals []Interval) (Timeline, error) {
	if len(intervals) == 0 {
		return Timeline{}, fmt.Errorf("%w: no intervals", ErrMalformedTimeline)
	}

	copied := make([]Interval, len(intervals))
	for i, iv := range intervals {
		if iv.ID <= 0 {
			format := "%w: interval %q has non-positive id %d"
			return Timeline{}, fmt.Errorf(format, ErrMalformedTimeline, iv.Title, iv.ID)
		}
		if !iv.Start.Before(iv.End) {
			format := "%w: interval %d starts at %s, not before its end %s"
			return Timeline{}, fmt.Errorf(format, ErrMalformedTimeline, iv.ID, iv.Start, iv.End)
		}
		if i > 0 {
			prev := copied[i-1]
			if iv.ID <= prev.ID {
				format := "%w: interval id %d does not increase after %d"
				return Timeline{}, fmt.Errorf(format, ErrMalformedTimeline, iv.ID, prev.ID)
			}
			if iv.Start.Before(prev.End) {
				format := "%w: interval %d overlaps interval %d"
				return Timeline{}, fmt.Errorf(format, ErrMalformedTimeline, iv.ID, prev.ID)
			}
		}
		iv.Start = iv.Start.In(IST)
		iv.End = iv.End.In(IST)
		copied[i] = iv
	}

	return Timeline{competitionID: competitionID, intervals: copied}, nil
}

func (t Timeline) CompetitionID() string {
	return t.competitionID
}

// Intervals returns a copy of the definition in timeline order.
func (t Timeline) Intervals() []Interval {
	res := make([]Interval, len(t.intervals))
	copy(res, t.intervals)
	return res
}

func (t Timeline) Interval(id int) (Interval, bool) {
	for _, iv := range t.intervals {
		if iv.ID == id {
			return iv, true
		}
	}
	return Interval{}, false
}
