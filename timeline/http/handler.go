package http

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/programme-lv/contest/httpjson"
	"github.com/programme-lv/contest/timeline"
)

type TimelineHttpHandler struct {
	tl  timeline.Timeline
	now func() time.Time
}

func NewTimelineHttpHandler(tl timeline.Timeline, now func() time.Time) *TimelineHttpHandler {
	if now == nil {
		now = timeline.Clock
	}
	return &TimelineHttpHandler{tl: tl, now: now}
}

func (h *TimelineHttpHandler) RegisterRoutes(r *chi.Mux) {
	r.Get("/timeline", h.GetTimeline)
}

// GetTimeline resolves the whole timeline against a single sampled instant.
func (h *TimelineHttpHandler) GetTimeline(w http.ResponseWriter, r *http.Request) {
	phase := h.tl.Phase(h.now())
	httpjson.WriteSuccessJson(w, mapPhase(h.tl.CompetitionID(), phase))
}
