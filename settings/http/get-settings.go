package http

import (
	"context"
	"net/http"

	"github.com/programme-lv/contest/httpjson"
	"github.com/programme-lv/contest/logger"
)

// GetSettings returns the reconciled settings snapshot.
func (h *SettingsHttpHandler) GetSettings(w http.ResponseWriter, r *http.Request) {
	if cached, found := h.cache.Get(settingsCacheKey); found {
		if view, ok := cached.(SettingsView); ok {
			httpjson.WriteSuccessJson(w, view)
			return
		}
	}

	// concurrent admin page loads share one sync round-trip
	result, err, _ := h.sfGroup.Do(settingsCacheKey, func() (interface{}, error) {
		if cached, found := h.cache.Get(settingsCacheKey); found {
			if view, ok := cached.(SettingsView); ok {
				return view, nil
			}
		}

		// shared by every waiting request, so it must outlive the first one
		snap, err := h.synchronizer.Snapshot(context.WithoutCancel(r.Context()), h.now())
		if err != nil {
			return nil, err
		}

		view := mapSnapshot(snap)
		h.cache.SetDefault(settingsCacheKey, view)
		return view, nil
	})
	if err != nil {
		httpjson.HandleError(logger.FromContext(r.Context()), w, err)
		return
	}

	httpjson.WriteSuccessJson(w, result.(SettingsView))
}
