package http

import (
	"net/http"

	"github.com/programme-lv/contest/httpjson"
	"github.com/programme-lv/contest/logger"
)

// SyncSettings reconciles the snapshot with the timeline and reports what
// changed.
func (h *SettingsHttpHandler) SyncSettings(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContext(r.Context())

	res, err := h.synchronizer.Sync(r.Context(), h.now())
	if err != nil {
		httpjson.HandleError(log, w, err)
		return
	}
	h.cache.Delete(settingsCacheKey)

	log.Info("admin settings sync", "updated", res.Updated, "message", res.Message())
	httpjson.WriteSuccessJson(w, mapSyncResult(res))
}
