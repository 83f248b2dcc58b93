package http

import (
	"time"

	"github.com/programme-lv/contest/settings"
	"github.com/programme-lv/contest/timeline"
)

type SettingsView struct {
	CurrentInterval           int       `json:"current_interval"`
	IsSubmissionsOpen         bool      `json:"is_submissions_open"`
	MaxSubmissionsPerInterval int       `json:"max_submissions_per_interval"`
	UpdatedAt                 time.Time `json:"updated_at"`
}

type SyncView struct {
	Updated  bool         `json:"updated"`
	Changes  []string     `json:"changes"`
	Message  string       `json:"message"`
	Snapshot SettingsView `json:"snapshot"`
}

func mapSnapshot(s settings.Snapshot) SettingsView {
	return SettingsView{
		CurrentInterval:           s.CurrentInterval,
		IsSubmissionsOpen:         s.IsSubmissionsOpen,
		MaxSubmissionsPerInterval: s.MaxSubmissionsPerInterval,
		UpdatedAt:                 s.UpdatedAt.In(timeline.IST),
	}
}

func mapSyncResult(r settings.SyncResult) SyncView {
	changes := make([]string, len(r.Changes))
	for i, c := range r.Changes {
		changes[i] = string(c)
	}
	return SyncView{
		Updated:  r.Updated,
		Changes:  changes,
		Message:  r.Message(),
		Snapshot: mapSnapshot(r.Snapshot),
	}
}
