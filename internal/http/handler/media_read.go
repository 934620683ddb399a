package handler

import (
	"net/http"
	"strconv"
	"strings"

	"bloom/internal/auth"
	"bloom/internal/media"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

type MediaReadHandler struct {
	Svc *media.Service
	Log *zap.Logger
}

func (h *MediaReadHandler) List(w http.ResponseWriter, r *http.Request) {
	uid, _ := auth.UserIDFromContext(r.Context())
	rows, err := h.Svc.ListAll(r.Context(), uid)
	h.writeList(w, r, rows, err)
}

func (h *MediaReadHandler) Recent(w http.ResponseWriter, r *http.Request) {
	uid, _ := auth.UserIDFromContext(r.Context())

	limit := 0
	if v := strings.TrimSpace(r.URL.Query().Get("limit")); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n <= 0 {
			writeError(w, http.StatusBadRequest, "limit must be a positive number")
			return
		}
		limit = n
	}

	rows, err := h.Svc.ListRecent(r.Context(), uid, limit)
	h.writeList(w, r, rows, err)
}

func (h *MediaReadHandler) ByMonth(w http.ResponseWriter, r *http.Request) {
	uid, _ := auth.UserIDFromContext(r.Context())

	month, ok := intParam(r, "month")
	if !ok {
		writeError(w, http.StatusBadRequest, "month must be a number between 1 and 9")
		return
	}

	rows, err := h.Svc.ListByMonth(r.Context(), uid, month)
	h.writeList(w, r, rows, err)
}

func (h *MediaReadHandler) ByMonthAndEmotion(w http.ResponseWriter, r *http.Request) {
	uid, _ := auth.UserIDFromContext(r.Context())

	month, ok := intParam(r, "month")
	if !ok {
		writeError(w, http.StatusBadRequest, "month must be a number between 1 and 9")
		return
	}

	rows, err := h.Svc.ListByMonthAndEmotion(r.Context(), uid, month, chi.URLParam(r, "emotion"))
	h.writeList(w, r, rows, err)
}

func (h *MediaReadHandler) ByEmotion(w http.ResponseWriter, r *http.Request) {
	uid, _ := auth.UserIDFromContext(r.Context())
	rows, err := h.Svc.ListByEmotion(r.Context(), uid, chi.URLParam(r, "emotion"))
	h.writeList(w, r, rows, err)
}

func (h *MediaReadHandler) Get(w http.ResponseWriter, r *http.Request) {
	uid, _ := auth.UserIDFromContext(r.Context())

	id, ok := uintParam(r, "id")
	if !ok {
		writeError(w, http.StatusBadRequest, "invalid id")
		return
	}

	rec, err := h.Svc.GetByID(r.Context(), id, uid)
	if err != nil {
		writeMediaError(w, r, h.Log, err)
		return
	}
	writeJSON(w, http.StatusOK, rec)
}

func (h *MediaReadHandler) writeList(w http.ResponseWriter, r *http.Request, rows []media.Record, err error) {
	if err != nil {
		writeMediaError(w, r, h.Log, err)
		return
	}
	writeJSON(w, http.StatusOK, rows)
}
