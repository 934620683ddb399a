package handler

import (
	"errors"
	"fmt"
	"mime/multipart"
	"net/http"
	"strconv"
	"strings"

	"bloom/internal/auth"
	"bloom/internal/media"

	"go.uber.org/zap"
)

// room for the non-file fields and multipart framing
const formOverhead = 1 << 20

type UploadHandler struct {
	Intake   *media.Intake
	MaxBytes int64
	Log      *zap.Logger
}

func (h *UploadHandler) Create(w http.ResponseWriter, r *http.Request) {
	uid, _ := auth.UserIDFromContext(r.Context())

	r.Body = http.MaxBytesReader(w, r.Body, h.MaxBytes+formOverhead)
	if err := r.ParseMultipartForm(formOverhead); err != nil {
		var tooBig *http.MaxBytesError
		if errors.As(err, &tooBig) {
			writeError(w, http.StatusBadRequest, fmt.Sprintf("file must not exceed %d bytes", h.MaxBytes))
			return
		}
		writeError(w, http.StatusBadRequest, "expected a multipart form")
		return
	}
	defer func() { _ = r.MultipartForm.RemoveAll() }()

	up, err := uploadFromForm(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	file, header, err := r.FormFile("file")
	switch {
	case errors.Is(err, http.ErrMissingFile):
	case err != nil:
		writeError(w, http.StatusBadRequest, "unreadable file part")
		return
	default:
		defer file.Close()
		up.File = file
		up.ContentType = partContentType(header)
		up.Size = header.Size
	}

	rec, err := h.Intake.Ingest(r.Context(), uid, up)
	if err != nil {
		writeMediaError(w, r, h.Log, err)
		return
	}

	h.Log.Info("media uploaded",
		zap.Uint64("user_id", uid),
		zap.Uint64("media_id", rec.ID),
		zap.String("media_type", rec.MediaType),
		zap.Int64("size", up.Size))
	writeJSON(w, http.StatusCreated, rec)
}

func uploadFromForm(r *http.Request) (media.Upload, error) {
	up := media.Upload{
		MediaType:  r.FormValue("mediaType"),
		EmotionTag: r.FormValue("emotionTag"),
	}

	month, err := strconv.Atoi(strings.TrimSpace(r.FormValue("month")))
	if err != nil {
		return up, &media.ValidationError{Field: "month", Message: "must be a number between 1 and 9"}
	}
	up.Month = month

	if raw := strings.TrimSpace(r.FormValue("week")); raw != "" {
		week, err := strconv.Atoi(raw)
		if err != nil {
			return up, &media.ValidationError{Field: "week", Message: "must be a number"}
		}
		up.Week = &week
	}

	if vals, ok := r.MultipartForm.Value["notes"]; ok && len(vals) > 0 {
		notes := vals[0]
		up.Notes = &notes
	}
	return up, nil
}

func partContentType(h *multipart.FileHeader) string {
	if ct := h.Header.Get("Content-Type"); ct != "" {
		return ct
	}
	return "application/octet-stream"
}
