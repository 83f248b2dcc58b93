package httpjson

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/programme-lv/contest/srvcerror"
)

type JsonResponse struct {
	Status    string `json:"status"` // "success" or "error"
	Data      any    `json:"data,omitempty"`
	ErrCode   string `json:"code,omitempty"`
	ErrMsg    string `json:"message,omitempty"`
	Retryable bool   `json:"retryable,omitempty"`
}

func WriteSuccessJson(w http.ResponseWriter, data any) {
	writeSuccessJson(w, http.StatusOK, data)
}

func WriteCreatedJson(w http.ResponseWriter, data any) {
	writeSuccessJson(w, http.StatusCreated, data)
}

func writeSuccessJson(w http.ResponseWriter, statusCode int, data any) {
	resp := JsonResponse{
		Status: "success",
		Data:   data,
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	json.NewEncoder(w).Encode(resp)
}

func WriteErrorJson(w http.ResponseWriter, errMsg string, statusCode int, errCode string) {
	writeErrorJson(w, JsonResponse{
		Status:  "error",
		ErrMsg:  errMsg,
		ErrCode: errCode,
	}, statusCode)
}

func writeErrorJson(w http.ResponseWriter, resp JsonResponse, statusCode int) {
	w.Header().Set("Content-Type", "application/json")
	if resp.Retryable {
		w.Header().Set("Retry-After", "1")
	}
	w.WriteHeader(statusCode)
	json.NewEncoder(w).Encode(resp)
}

func writeInternalErrorJson(w http.ResponseWriter) {
	internal := srvcerror.ErrInternalSE()
	WriteErrorJson(w, internal.Error(), internal.HttpStatusCode(), internal.ErrorCode())
}

func HandleError(logger *slog.Logger, w http.ResponseWriter, err error) {
	srvcErr := &srvcerror.Error{}
	if errors.As(err, &srvcErr) {
		if srvcErr.DebugInfo() != nil {
			logger.Warn("service error", "error", err, "debug", srvcErr.DebugInfo())
		} else {
			logger.Warn("service error", "error", err)
		}
		if srvcErr.HttpStatusCode() == http.StatusInternalServerError {
			logger.Error("internal server error", "error", err)
		}
		writeErrorJson(w, JsonResponse{
			Status:    "error",
			ErrMsg:    srvcErr.Error(),
			ErrCode:   srvcErr.ErrorCode(),
			Retryable: srvcErr.Retryable(),
		}, srvcErr.HttpStatusCode())
		return
	} else {
		logger.Error("internal server error", "error", err)
		writeInternalErrorJson(w)
	}
}
