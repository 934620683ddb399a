package handler

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"bloom/internal/auth"
	"bloom/internal/profile"

	"go.uber.org/zap"
)

type AuthHandler struct {
	Svc *auth.Service
	Log *zap.Logger
}

type credentialsReq struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type registerReq struct {
	credentialsReq
	FullName string  `json:"full_name"`
	Country  string  `json:"country"`
	DueDate  *string `json:"due_date"`
}

type tokenResp struct {
	Token string `json:"token"`
}

func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req registerReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "bad json")
		return
	}

	var due *time.Time
	if req.DueDate != nil {
		d, err := profile.ParseDate(*req.DueDate)
		if err != nil {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		due = d
	}

	token, err := h.Svc.Register(r.Context(), auth.Registration{
		Email:    req.Email,
		Password: req.Password,
		FullName: req.FullName,
		Country:  req.Country,
		DueDate:  due,
	})
	switch {
	case errors.Is(err, auth.ErrInvalidInput):
		writeError(w, http.StatusBadRequest, "a valid email and a password of at least 8 characters are required")
	case errors.Is(err, auth.ErrEmailTaken):
		writeError(w, http.StatusConflict, "email already used")
	case err != nil:
		serverError(w, r, h.Log, "registration failed", err)
	default:
		writeJSON(w, http.StatusCreated, tokenResp{Token: token})
	}
}

func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req credentialsReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "bad json")
		return
	}

	token, err := h.Svc.Login(r.Context(), req.Email, req.Password)
	switch {
	case errors.Is(err, auth.ErrInvalidInput):
		writeError(w, http.StatusBadRequest, "invalid input")
	case errors.Is(err, auth.ErrInvalidCredentials):
		writeError(w, http.StatusUnauthorized, "invalid credentials")
	case err != nil:
		serverError(w, r, h.Log, "login failed", err)
	default:
		writeJSON(w, http.StatusOK, tokenResp{Token: token})
	}
}

// Logout has nothing to revoke; tokens are stateless and the client drops its
// copy.
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusNoContent)
}
