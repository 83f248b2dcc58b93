package timeline

import (
	"fmt"
	"os"
	"time"

	"github.com/pelletier/go-toml/v2"
)

// Load reads a timeline definition such as
//
//	competition_id = "winter-2025"
//
//	[[intervals]]
//	id = 1
//	title = "Week 1"
//	start = 2025-11-01T00:00:00+05:30
//	end = 2025-11-10T00:00:00+05:30
//	accepts_submissions = true
func Load(path string) (Timeline, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return Timeline{}, fmt.Errorf("failed to read timeline file: %w", err)
	}
	return Parse(content)
}

func Parse(content []byte) (Timeline, error) {
	x := struct {
		CompetitionID string `toml:"competition_id"`
		Intervals     []struct {
			ID                 int       `toml:"id"`
			Title              string    `toml:"title"`
			Start              time.Time `toml:"start"`
			End                time.Time `toml:"end"`
			AcceptsSubmissions bool      `toml:"accepts_submissions"`
		} `toml:"intervals"`
	}{}

	err := toml.Unmarshal(content, &x)
	if err != nil {
		format := "failed to unmarshal the timeline: %w"
		return Timeline{}, fmt.Errorf(format, err)
	}

	if x.CompetitionID == "" {
		return Timeline{}, fmt.Errorf("%w: competition_id is empty", ErrMalformedTimeline)
	}

	intervals := make([]Interval, 0, len(x.Intervals))
	for _, iv := range x.Intervals {
		intervals = append(intervals, Interval{
			ID:                 iv.ID,
			Title:              iv.Title,
			Start:              iv.Start,
			End:                iv.End,
			AcceptsSubmissions: iv.AcceptsSubmissions,
		})
	}

	return New(x.CompetitionID, intervals)
}
