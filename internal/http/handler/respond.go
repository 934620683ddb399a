package handler

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"bloom/internal/media"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"
)

type errorBody struct {
	Message string `json:"message"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, errorBody{Message: msg})
}

// serverError logs err and answers with an opaque 500.
func serverError(w http.ResponseWriter, r *http.Request, log *zap.Logger, msg string, err error) {
	log.Error(msg,
		zap.String("request_id", chimw.GetReqID(r.Context())),
		zap.String("path", r.URL.Path),
		zap.Error(err))
	writeError(w, http.StatusInternalServerError, msg)
}

// writeMediaError maps the media error taxonomy onto HTTP statuses.
func writeMediaError(w http.ResponseWriter, r *http.Request, log *zap.Logger, err error) {
	var verr *media.ValidationError
	switch {
	case errors.As(err, &verr):
		writeError(w, http.StatusBadRequest, verr.Error())
	case errors.Is(err, media.ErrNotFound):
		writeError(w, http.StatusNotFound, "media not found")
	case errors.Is(err, media.ErrForbidden):
		writeError(w, http.StatusForbidden, "unauthorized access to media")
	case errors.Is(err, media.ErrStorage):
		serverError(w, r, log, "failed to store media", err)
	default:
		serverError(w, r, log, "failed to fetch media", err)
	}
}

func uintParam(r *http.Request, name string) (uint64, bool) {
	v, err := strconv.ParseUint(chi.URLParam(r, name), 10, 64)
	return v, err == nil
}

func intParam(r *http.Request, name string) (int, bool) {
	v, err := strconv.Atoi(chi.URLParam(r, name))
	return v, err == nil
}
