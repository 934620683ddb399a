package handler

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"bloom/internal/auth"
	"bloom/internal/gestation"
	"bloom/internal/profile"

	"go.uber.org/zap"
)

type ProfileHandler struct {
	Svc *profile.Service
	Log *zap.Logger
	Now func() time.Time
}

type userDTO struct {
	ID        uint64             `json:"id"`
	Email     string             `json:"email"`
	FullName  string             `json:"full_name"`
	Country   string             `json:"country"`
	DueDate   *string            `json:"due_date"`
	CreatedAt time.Time          `json:"created_at"`
	Pregnancy gestation.Snapshot `json:"pregnancy"`
}

type babyInfoDTO struct {
	Name       string  `json:"name"`
	DueDate    *string `json:"due_date"`
	Gender     string  `json:"gender"`
	DoctorName string  `json:"doctor_name"`
}

func formatDate(t *time.Time) *string {
	if t == nil {
		return nil
	}
	s := t.Format(profile.DateLayout)
	return &s
}

// Me answers GET /api/user.
func (h *ProfileHandler) Me(w http.ResponseWriter, r *http.Request) {
	uid, _ := auth.UserIDFromContext(r.Context())
	h.writeUser(w, r, uid)
}

type updateProfileReq struct {
	FullName *string `json:"full_name"`
	Country  *string `json:"country"`
	DueDate  *string `json:"due_date"`
}

func (h *ProfileHandler) UpdateProfile(w http.ResponseWriter, r *http.Request) {
	uid, _ := auth.UserIDFromContext(r.Context())

	var req updateProfileReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "bad json")
		return
	}

	_, err := h.Svc.Update(r.Context(), uid, profile.ProfileUpdate{
		FullName: req.FullName,
		Country:  req.Country,
		DueDate:  req.DueDate,
	})
	if err != nil {
		h.writeProfileError(w, r, err)
		return
	}
	h.writeUser(w, r, uid)
}

func (h *ProfileHandler) BabyInfo(w http.ResponseWriter, r *http.Request) {
	uid, _ := auth.UserIDFromContext(r.Context())

	info, err := h.Svc.GetBabyInfo(r.Context(), uid)
	if err != nil {
		serverError(w, r, h.Log, "failed to load baby info", err)
		return
	}
	writeJSON(w, http.StatusOK, toBabyInfoDTO(info))
}

func (h *ProfileHandler) SaveBabyInfo(w http.ResponseWriter, r *http.Request) {
	uid, _ := auth.UserIDFromContext(r.Context())

	var req babyInfoDTO
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "bad json")
		return
	}

	info, err := h.Svc.UpsertBabyInfo(r.Context(), uid, profile.BabyUpdate{
		Name:       &req.Name,
		DueDate:    req.DueDate,
		Gender:     &req.Gender,
		DoctorName: &req.DoctorName,
	})
	if err != nil {
		h.writeProfileError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toBabyInfoDTO(info))
}

func (h *ProfileHandler) writeUser(w http.ResponseWriter, r *http.Request, uid uint64) {
	u, err := h.Svc.Get(r.Context(), uid)
	if err != nil {
		h.writeProfileError(w, r, err)
		return
	}
	due, err := h.Svc.DueDate(r.Context(), uid)
	if err != nil {
		serverError(w, r, h.Log, "failed to load due date", err)
		return
	}

	writeJSON(w, http.StatusOK, userDTO{
		ID:        u.ID,
		Email:     u.Email,
		FullName:  u.FullName,
		Country:   u.Country,
		DueDate:   formatDate(u.DueDate),
		CreatedAt: u.CreatedAt,
		Pregnancy: gestation.Compute(due, h.Now()),
	})
}

func (h *ProfileHandler) writeProfileError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, profile.ErrInvalidDate):
		writeError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, profile.ErrUserNotFound):
		writeError(w, http.StatusNotFound, "user not found")
	default:
		serverError(w, r, h.Log, "failed to update profile", err)
	}
}

func toBabyInfoDTO(info profile.BabyInfo) babyInfoDTO {
	return babyInfoDTO{
		Name:       info.Name,
		DueDate:    formatDate(info.DueDate),
		Gender:     info.Gender,
		DoctorName: info.DoctorName,
	}
}
