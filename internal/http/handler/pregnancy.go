package handler

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"bloom/internal/auth"
	"bloom/internal/config"
	"bloom/internal/gestation"
	"bloom/internal/profile"

	"go.uber.org/zap"
)

type PregnancyHandler struct {
	Profiles    *profile.Service
	GrowthBasis string
	Log         *zap.Logger
	Now         func() time.Time
}

type pregnancyResp struct {
	gestation.Snapshot
	Development gestation.DevelopmentFact `json:"development"`
}

func (h *PregnancyHandler) Current(w http.ResponseWriter, r *http.Request) {
	uid, _ := auth.UserIDFromContext(r.Context())

	due, err := h.Profiles.DueDate(r.Context(), uid)
	if err != nil {
		serverError(w, r, h.Log, "failed to load due date", err)
		return
	}

	snap := gestation.Compute(due, h.Now())
	month := snap.Month
	if h.GrowthBasis == config.GrowthByWeek {
		month = snap.WeekBasedMonth
	}

	writeJSON(w, http.StatusOK, pregnancyResp{
		Snapshot:    snap,
		Development: gestation.DevelopmentFactFor(month),
	})
}

// Milestones lists the reference milestones, optionally only those reached
// by week upTo.
func (h *PregnancyHandler) Milestones(w http.ResponseWriter, r *http.Request) {
	raw := strings.TrimSpace(r.URL.Query().Get("upTo"))
	if raw == "" {
		writeJSON(w, http.StatusOK, gestation.Milestones())
		return
	}
	week, err := strconv.Atoi(raw)
	if err != nil || week < 0 {
		writeError(w, http.StatusBadRequest, "upTo must be a non-negative week number")
		return
	}
	writeJSON(w, http.StatusOK, gestation.MilestonesUpTo(week))
}

// Development answers with the fact for {month}; out-of-range months are
// clamped into 1..9.
func (h *PregnancyHandler) Development(w http.ResponseWriter, r *http.Request) {
	month, ok := intParam(r, "month")
	if !ok {
		writeError(w, http.StatusBadRequest, "invalid month")
		return
	}
	writeJSON(w, http.StatusOK, gestation.DevelopmentFactFor(month))
}
