package http

import (
	"net/http"

	"github.com/programme-lv/contest/auth"
	"github.com/programme-lv/contest/httpjson"
	"github.com/programme-lv/contest/logger"
	"github.com/programme-lv/contest/srvcerror"
)

// ListSubms returns the caller's own submissions, newest first.
func (h *SubmHttpHandler) ListSubms(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContext(r.Context())

	authorUUID, ok := auth.UserUUID(r.Context())
	if !ok {
		httpjson.WriteErrorJson(w, "authentication required", http.StatusUnauthorized, "unauthorized")
		return
	}

	competitionID := r.URL.Query().Get("competition_id")
	if competitionID == "" {
		httpjson.HandleError(log, w, srvcerror.ErrInvalidRequest("competition_id query parameter is required"))
		return
	}

	subms, err := h.submSrvc.ListSubms(r.Context(), authorUUID, competitionID)
	if err != nil {
		httpjson.HandleError(log, w, err)
		return
	}

	httpjson.WriteSuccessJson(w, mapSubmList(h.submSrvc.Timeline(), subms))
}
