package handler

import (
	"errors"
	"net/http"
	"os"

	"bloom/internal/auth"
	"bloom/internal/media"
	"bloom/internal/storage"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

// FileHandler serves stored binaries to the user who uploaded them.
type FileHandler struct {
	Media *media.Service
	Files *storage.Disk
	Log   *zap.Logger
}

func (h *FileHandler) Serve(w http.ResponseWriter, r *http.Request) {
	uid, _ := auth.UserIDFromContext(r.Context())
	ref := h.Files.URLPrefix + "/" + chi.URLParam(r, "name")

	path, err := h.Files.Path(ref)
	if err != nil {
		writeError(w, http.StatusNotFound, "media not found")
		return
	}
	if _, err := h.Media.GetByURL(r.Context(), ref, uid); err != nil {
		writeMediaError(w, r, h.Log, err)
		return
	}

	f, err := os.Open(path)
	if errors.Is(err, os.ErrNotExist) {
		writeError(w, http.StatusNotFound, "media not found")
		return
	}
	if err != nil {
		serverError(w, r, h.Log, "failed to open media", err)
		return
	}
	defer f.Close()

	st, err := f.Stat()
	if err != nil {
		serverError(w, r, h.Log, "failed to open media", err)
		return
	}
	w.Header().Set("Cache-Control", "private, max-age=3600")
	http.ServeContent(w, r, st.Name(), st.ModTime(), f)
}
