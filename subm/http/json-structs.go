package http

import (
	"time"

	"github.com/programme-lv/contest/subm"
	"github.com/programme-lv/contest/timeline"
)

type SubmView struct {
	UUID          string    `json:"uuid"`
	AuthorUUID    string    `json:"author_uuid"`
	CompetitionID string    `json:"competition_id"`
	IntervalID    int       `json:"interval_id"`
	IntervalTitle string    `json:"interval_title"`
	Kind          string    `json:"kind"`
	Link          string    `json:"link,omitempty"`
	Filename      string    `json:"filename,omitempty"`
	MediaType     string    `json:"media_type,omitempty"`
	SizeBytes     int64     `json:"size_bytes,omitempty"`
	CreatedAt     time.Time `json:"created_at"`
}

func mapSubm(tl timeline.Timeline, s subm.Subm) SubmView {
	iv, _ := tl.Interval(s.IntervalID)
	return SubmView{
		UUID:          s.UUID.String(),
		AuthorUUID:    s.AuthorUUID.String(),
		CompetitionID: s.CompetitionID,
		IntervalID:    s.IntervalID,
		IntervalTitle: iv.Title,
		Kind:          string(s.Kind),
		Link:          s.Link,
		Filename:      s.Filename,
		MediaType:     s.MediaType,
		SizeBytes:     s.SizeBytes,
		CreatedAt:     s.CreatedAt.In(timeline.IST),
	}
}

func mapSubmList(tl timeline.Timeline, subms []subm.Subm) []SubmView {
	res := make([]SubmView, len(subms))
	for i, s := range subms {
		res[i] = mapSubm(tl, s)
	}
	return res
}
