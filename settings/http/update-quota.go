package http

import (
	"encoding/json"
	"net/http"

	"github.com/programme-lv/contest/httpjson"
	"github.com/programme-lv/contest/logger"
	"github.com/programme-lv/contest/srvcerror"
)

func (h *SettingsHttpHandler) UpdateQuota(w http.ResponseWriter, r *http.Request) {
	type updateQuotaRequest struct {
		MaxSubmissionsPerInterval int `json:"max_submissions_per_interval"`
	}

	log := logger.FromContext(r.Context())

	var request updateQuotaRequest
	if err := json.NewDecoder(r.Body).Decode(&request); err != nil {
		httpjson.HandleError(log, w, srvcerror.ErrInvalidRequest("invalid request body").SetDebug(err))
		return
	}

	snap, err := h.synchronizer.SetQuota(r.Context(), h.now(), request.MaxSubmissionsPerInterval)
	if err != nil {
		httpjson.HandleError(log, w, err)
		return
	}
	h.cache.Delete(settingsCacheKey)

	log.Info("submission quota updated", "max_submissions_per_interval", snap.MaxSubmissionsPerInterval)
	httpjson.WriteSuccessJson(w, mapSnapshot(snap))
}
