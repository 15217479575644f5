package authhandler

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"peopledesk/internal/apperror"
	"peopledesk/internal/domain/auth"
	"peopledesk/internal/transport/http/api"
	"peopledesk/internal/transport/http/middleware"
)

type Handler struct {
	Service *auth.Service
}

func NewHandler(service *auth.Service) *Handler {
	return &Handler{Service: service}
}

func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Route("/auth", func(r chi.Router) {
		r.Post("/login", h.handleLogin)
		r.Post("/logout", h.handleLogout)
		r.Post("/mfa/setup", h.handleMFASetup)
		r.Post("/mfa/verify", h.handleMFAVerify)
	})
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	MFACode  string `json:"mfaCode"`
}

func (h *Handler) handleLogin(w http.ResponseWriter, r *http.Request) {
	var payload loginRequest
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		api.Fail(w, http.StatusBadRequest, apperror.CodeValidation, "invalid request payload", middleware.GetRequestID(r.Context()))
		return
	}
	email := strings.TrimSpace(strings.ToLower(payload.Email))
	if email == "" || payload.Password == "" {
		api.Fail(w, http.StatusBadRequest, apperror.CodeValidation, "email and password required", middleware.GetRequestID(r.Context()))
		return
	}

	result, err := h.Service.Login(r.Context(), email, payload.Password, payload.MFACode)
	if err != nil {
		api.FromError(w, err, middleware.GetRequestID(r.Context()))
		return
	}
	api.Success(w, result, middleware.GetRequestID(r.Context()))
}

func (h *Handler) handleLogout(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.GetUser(r.Context())
	if !ok {
		api.Fail(w, http.StatusUnauthorized, apperror.CodeUnauthorized, "authentication required", middleware.GetRequestID(r.Context()))
		return
	}
	if err := h.Service.Logout(r.Context(), user.UserID, user.Token); err != nil {
		api.FromError(w, err, middleware.GetRequestID(r.Context()))
		return
	}
	api.Success(w, map[string]string{"status": "logged_out"}, middleware.GetRequestID(r.Context()))
}

func (h *Handler) handleMFASetup(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.GetUser(r.Context())
	if !ok {
		api.Fail(w, http.StatusUnauthorized, apperror.CodeUnauthorized, "authentication required", middleware.GetRequestID(r.Context()))
		return
	}

	var payload struct {
		Email string `json:"email"`
	}
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		api.Fail(w, http.StatusBadRequest, apperror.CodeValidation, "invalid request payload", middleware.GetRequestID(r.Context()))
		return
	}

	result, err := h.Service.MFASetup(r.Context(), user.UserID, strings.TrimSpace(payload.Email))
	if err != nil {
		api.FromError(w, err, middleware.GetRequestID(r.Context()))
		return
	}
	api.Success(w, result, middleware.GetRequestID(r.Context()))
}

func (h *Handler) handleMFAVerify(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.GetUser(r.Context())
	if !ok {
		api.Fail(w, http.StatusUnauthorized, apperror.CodeUnauthorized, "authentication required", middleware.GetRequestID(r.Context()))
		return
	}

	var payload struct {
		Email string `json:"email"`
		Code  string `json:"code"`
	}
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		api.Fail(w, http.StatusBadRequest, apperror.CodeValidation, "invalid request payload", middleware.GetRequestID(r.Context()))
		return
	}
	if payload.Code == "" {
		api.Fail(w, http.StatusBadRequest, apperror.CodeValidation, "code required", middleware.GetRequestID(r.Context()))
		return
	}

	if err := h.Service.MFAVerify(r.Context(), user.UserID, strings.TrimSpace(payload.Email), payload.Code); err != nil {
		api.FromError(w, err, middleware.GetRequestID(r.Context()))
		return
	}
	api.Success(w, map[string]string{"status": "mfa_enabled"}, middleware.GetRequestID(r.Context()))
}
