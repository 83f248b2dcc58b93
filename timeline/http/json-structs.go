package http

import (
	"math"
	"time"

	"github.com/programme-lv/contest/timeline"
)

type IntervalView struct {
	ID                 int       `json:"id"`
	Title              string    `json:"title"`
	Start              time.Time `json:"start"`
	End                time.Time `json:"end"`
	AcceptsSubmissions bool      `json:"accepts_submissions"`
	Status             string    `json:"status"`
}

type DeadlineView struct {
	At         time.Time `json:"at"`
	Title      string    `json:"title"`
	IntervalID int       `json:"interval_id"`
	Kind       string    `json:"kind"`
}

type TimelineView struct {
	CompetitionID     string         `json:"competition_id"`
	Now               time.Time      `json:"now"`
	Intervals         []IntervalView `json:"intervals"`
	CurrentIntervalID *int           `json:"current_interval_id"`
	SubmissionsOpen   bool           `json:"submissions_open"`
	ProgressPercent   float64        `json:"progress_percent"`
	WeekLabel         string         `json:"week_label"`
	NextDeadline      *DeadlineView  `json:"next_deadline"`
	Concluded         bool           `json:"concluded"`
}

func mapPhase(competitionID string, p timeline.Phase) TimelineView {
	intervals := make([]IntervalView, len(p.Intervals))
	for i, iv := range p.Intervals {
		intervals[i] = IntervalView{
			ID:                 iv.ID,
			Title:              iv.Title,
			Start:              iv.Start,
			End:                iv.End,
			AcceptsSubmissions: iv.AcceptsSubmissions,
			Status:             string(iv.Status),
		}
	}

	var current *int
	if p.SubmissionsOpen {
		id := p.SubmissionID
		current = &id
	}

	var deadline *DeadlineView
	if p.NextDeadline != nil {
		deadline = &DeadlineView{
			At:         p.NextDeadline.At,
			Title:      p.NextDeadline.Title,
			IntervalID: p.NextDeadline.IntervalID,
			Kind:       string(p.NextDeadline.Kind),
		}
	}

	return TimelineView{
		CompetitionID:     competitionID,
		Now:               p.Now,
		Intervals:         intervals,
		CurrentIntervalID: current,
		SubmissionsOpen:   p.SubmissionsOpen,
		ProgressPercent:   math.Round(p.ProgressPercent*100) / 100,
		WeekLabel:         p.WeekLabel,
		NextDeadline:      deadline,
		Concluded:         p.Concluded,
	}
}
