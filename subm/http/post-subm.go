package http

import (
	"encoding/base64"
	"encoding/json"
	"net/http"

	"github.com/programme-lv/contest/auth"
	"github.com/programme-lv/contest/httpjson"
	"github.com/programme-lv/contest/logger"
	"github.com/programme-lv/contest/srvcerror"
	"github.com/programme-lv/contest/subm"
)

func (h *SubmHttpHandler) PostSubm(w http.ResponseWriter, r *http.Request) {
	type createSubmissionRequest struct {
		CompetitionID string `json:"competition_id"`
		Kind          string `json:"kind"`
		Link          string `json:"link"`
		Filename      string `json:"filename"`
		FileBase64    string `json:"file_base64"`
	}

	log := logger.FromContext(r.Context())

	authorUUID, ok := auth.UserUUID(r.Context())
	if !ok {
		httpjson.WriteErrorJson(w, "authentication required", http.StatusUnauthorized, "unauthorized")
		return
	}

	var request createSubmissionRequest
	body := http.MaxBytesReader(w, r.Body, maxRequestBytes)
	if err := json.NewDecoder(body).Decode(&request); err != nil {
		httpjson.HandleError(log, w, srvcerror.ErrInvalidRequest("invalid request body").SetDebug(err))
		return
	}

	var content []byte
	if request.FileBase64 != "" {
		var err error
		content, err = base64.StdEncoding.DecodeString(request.FileBase64)
		if err != nil {
			httpjson.HandleError(log, w, srvcerror.ErrInvalidRequest("file_base64 is not valid base64").SetDebug(err))
			return
		}
	}

	log.Info("post submission request",
		"author_uuid", authorUUID,
		"competition_id", request.CompetitionID,
		"kind", request.Kind)

	created, err := h.submSrvc.SubmitSol(r.Context(), subm.SubmitParams{
		AuthorUUID:    authorUUID,
		CompetitionID: request.CompetitionID,
		Kind:          subm.Kind(request.Kind),
		Link:          request.Link,
		Filename:      request.Filename,
		Content:       content,
	})
	if err != nil {
		httpjson.HandleError(log, w, err)
		return
	}

	httpjson.WriteCreatedJson(w, mapSubm(h.submSrvc.Timeline(), created))
}
