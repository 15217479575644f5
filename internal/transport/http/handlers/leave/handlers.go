package leavehandler

import (
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"peopledesk/internal/apperror"
	"peopledesk/internal/domain/auth"
	"peopledesk/internal/domain/leave"
	"peopledesk/internal/transport/http/api"
	"peopledesk/internal/transport/http/middleware"
	"peopledesk/internal/transport/http/shared"
)

const maxSubmitPayloadBytes = 64 * 1024

type Handler struct {
	Service  *leave.Service
	Idem     *middleware.IdempotencyStore
	validate *validator.Validate
}

func NewHandler(service *leave.Service, idem *middleware.IdempotencyStore) *Handler {
	return &Handler{Service: service, Idem: idem, validate: validator.New()}
}

func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Route("/leave", func(r chi.Router) {
		r.With(middleware.RequirePermission(auth.PermLeaveWrite)).Post("/requests", h.handleSubmit)
		r.With(middleware.RequirePermission(auth.PermLeaveRead)).Get("/requests", h.handleMyRequests)
		r.With(middleware.RequirePermission(auth.PermLeaveApprove)).Get("/requests/team", h.handleTeamRequests)
		r.With(middleware.RequirePermission(auth.PermLeaveApprove)).Post("/requests/{requestID}/approve", h.handleApprove)
		r.With(middleware.RequirePermission(auth.PermLeaveApprove)).Post("/requests/{requestID}/reject", h.handleReject)
		r.With(middleware.RequirePermission(auth.PermLeaveRead)).Get("/balance", h.handleBalance)
	})
}

type submitRequest struct {
	LeaveType string `json:"leaveType" validate:"required,oneof=annual sick unpaid other"`
	StartDate string `json:"startDate" validate:"required,datetime=2006-01-02"`
	EndDate   string `json:"endDate" validate:"required,datetime=2006-01-02"`
	Reason    string `json:"reason" validate:"required"`
}

func (h *Handler) handleSubmit(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.GetUser(r.Context())
	if !ok {
		api.Fail(w, http.StatusUnauthorized, apperror.CodeUnauthorized, "authentication required", middleware.GetRequestID(r.Context()))
		return
	}
	if user.EmployeeID == "" {
		api.Fail(w, http.StatusForbidden, apperror.CodeForbidden, "no employee record linked to this account", middleware.GetRequestID(r.Context()))
		return
	}

	raw, err := io.ReadAll(io.LimitReader(r.Body, maxSubmitPayloadBytes))
	if err != nil {
		api.Fail(w, http.StatusBadRequest, apperror.CodeValidation, "failed to read request body", middleware.GetRequestID(r.Context()))
		return
	}

	idemKey := strings.TrimSpace(r.Header.Get("Idempotency-Key"))
	requestHash := middleware.RequestHash(raw)
	if idemKey != "" {
		stored, found, err := h.Idem.Check(r.Context(), user.UserID, "leave.submit", idemKey, requestHash)
		if errors.Is(err, middleware.ErrIdempotencyConflict) {
			api.Fail(w, http.StatusConflict, apperror.CodeConflict, "idempotency key was used with a different payload", middleware.GetRequestID(r.Context()))
			return
		}
		if err != nil {
			slog.Warn("idempotency check failed", "err", err)
		}
		if found {
			var replay leave.LeaveRequest
			if err := json.Unmarshal(stored, &replay); err == nil {
				api.Created(w, replay, middleware.GetRequestID(r.Context()))
				return
			}
		}
	}

	var payload submitRequest
	if err := json.Unmarshal(raw, &payload); err != nil {
		api.Fail(w, http.StatusBadRequest, apperror.CodeValidation, "invalid request payload", middleware.GetRequestID(r.Context()))
		return
	}
	payload.LeaveType = strings.ToLower(strings.TrimSpace(payload.LeaveType))
	payload.StartDate = strings.TrimSpace(payload.StartDate)
	payload.EndDate = strings.TrimSpace(payload.EndDate)
	if shared.CheckStruct(w, h.validate, payload, middleware.GetRequestID(r.Context())) {
		return
	}
	startDate, _ := shared.ParseDate(payload.StartDate)
	endDate, _ := shared.ParseDate(payload.EndDate)

	req, err := h.Service.Submit(r.Context(), leave.Candidate{
		EmployeeID: user.EmployeeID,
		LeaveType:  payload.LeaveType,
		StartDate:  startDate,
		EndDate:    endDate,
		Reason:     payload.Reason,
	})
	if err != nil {
		api.FromError(w, err, middleware.GetRequestID(r.Context()))
		return
	}

	if idemKey != "" {
		if encoded, err := json.Marshal(req); err == nil {
			if err := h.Idem.Save(r.Context(), user.UserID, "leave.submit", idemKey, requestHash, encoded); err != nil {
				slog.Warn("idempotency save failed", "requestId", req.ID, "err", err)
			}
		}
	}
	api.Created(w, req, middleware.GetRequestID(r.Context()))
}

func (h *Handler) handleMyRequests(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.GetUser(r.Context())
	if !ok || user.EmployeeID == "" {
		api.Fail(w, http.StatusUnauthorized, apperror.CodeUnauthorized, "authentication required", middleware.GetRequestID(r.Context()))
		return
	}

	page := shared.ParsePagination(r, 50, 200)
	reqs, err := h.Service.MyRequests(r.Context(), user.EmployeeID, page.Limit, page.Offset)
	if err != nil {
		api.FromError(w, err, middleware.GetRequestID(r.Context()))
		return
	}
	if reqs == nil {
		reqs = []leave.LeaveRequest{}
	}
	api.Success(w, reqs, middleware.GetRequestID(r.Context()))
}

func (h *Handler) handleTeamRequests(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.GetUser(r.Context())
	if !ok || user.EmployeeID == "" {
		api.Fail(w, http.StatusUnauthorized, apperror.CodeUnauthorized, "authentication required", middleware.GetRequestID(r.Context()))
		return
	}

	reqs, err := h.Service.TeamRequests(r.Context(), user.EmployeeID)
	if err != nil {
		api.FromError(w, err, middleware.GetRequestID(r.Context()))
		return
	}
	if reqs == nil {
		reqs = []leave.TeamRequest{}
	}
	api.Success(w, reqs, middleware.GetRequestID(r.Context()))
}

func (h *Handler) handleApprove(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.GetUser(r.Context())
	if !ok || user.EmployeeID == "" {
		api.Fail(w, http.StatusUnauthorized, apperror.CodeUnauthorized, "authentication required", middleware.GetRequestID(r.Context()))
		return
	}

	requestID := chi.URLParam(r, "requestID")
	req, err := h.Service.Approve(r.Context(), requestID, user.EmployeeID)
	if err != nil {
		api.FromError(w, err, middleware.GetRequestID(r.Context()))
		return
	}
	api.Success(w, req, middleware.GetRequestID(r.Context()))
}

type rejectRequest struct {
	Reason string `json:"reason"`
}

func (h *Handler) handleReject(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.GetUser(r.Context())
	if !ok || user.EmployeeID == "" {
		api.Fail(w, http.StatusUnauthorized, apperror.CodeUnauthorized, "authentication required", middleware.GetRequestID(r.Context()))
		return
	}

	var payload rejectRequest
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		api.Fail(w, http.StatusBadRequest, apperror.CodeValidation, "invalid request payload", middleware.GetRequestID(r.Context()))
		return
	}

	requestID := chi.URLParam(r, "requestID")
	req, err := h.Service.Reject(r.Context(), requestID, user.EmployeeID, strings.TrimSpace(payload.Reason))
	if err != nil {
		api.FromError(w, err, middleware.GetRequestID(r.Context()))
		return
	}
	api.Success(w, req, middleware.GetRequestID(r.Context()))
}

func (h *Handler) handleBalance(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.GetUser(r.Context())
	if !ok || user.EmployeeID == "" {
		api.Fail(w, http.StatusUnauthorized, apperror.CodeUnauthorized, "authentication required", middleware.GetRequestID(r.Context()))
		return
	}

	year := time.Now().Year()
	if raw := r.URL.Query().Get("year"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 2000 || parsed > 2100 {
			api.Fail(w, http.StatusBadRequest, apperror.CodeValidation, "invalid year", middleware.GetRequestID(r.Context()))
			return
		}
		year = parsed
	}

	summary, err := h.Service.Balance(r.Context(), user.EmployeeID, year)
	if err != nil {
		api.FromError(w, err, middleware.GetRequestID(r.Context()))
		return
	}
	api.Success(w, summary, middleware.GetRequestID(r.Context()))
}
