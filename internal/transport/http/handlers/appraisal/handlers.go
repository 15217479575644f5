package appraisalhandler

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"peopledesk/internal/apperror"
	"peopledesk/internal/domain/appraisal"
	"peopledesk/internal/domain/auth"
	"peopledesk/internal/transport/http/api"
	"peopledesk/internal/transport/http/middleware"
	"peopledesk/internal/transport/http/shared"
)

type Handler struct {
	Service  *appraisal.Service
	validate *validator.Validate
}

func NewHandler(service *appraisal.Service) *Handler {
	return &Handler{Service: service, validate: validator.New()}
}

func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Route("/appraisals", func(r chi.Router) {
		r.With(middleware.RequirePermission(auth.PermAppraisalsRead)).Get("/{appraisalID}", h.handleGet)
		r.With(middleware.RequirePermission(auth.PermAppraisalsRead)).Get("/employee/{employeeID}", h.handleListByEmployee)
		r.With(middleware.RequirePermission(auth.PermAppraisalsWrite)).Post("/", h.handleCreate)
	})
}

func (h *Handler) handleGet(w http.ResponseWriter, r *http.Request) {
	a, err := h.Service.Get(r.Context(), chi.URLParam(r, "appraisalID"))
	if err != nil {
		api.FromError(w, err, middleware.GetRequestID(r.Context()))
		return
	}
	api.Success(w, a, middleware.GetRequestID(r.Context()))
}

func (h *Handler) handleListByEmployee(w http.ResponseWriter, r *http.Request) {
	items, err := h.Service.ListByEmployee(r.Context(), chi.URLParam(r, "employeeID"))
	if err != nil {
		api.FromError(w, err, middleware.GetRequestID(r.Context()))
		return
	}
	if items == nil {
		items = []appraisal.Appraisal{}
	}
	api.Success(w, items, middleware.GetRequestID(r.Context()))
}

func (h *Handler) handleCreate(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.GetUser(r.Context())
	if !ok || user.EmployeeID == "" {
		api.Fail(w, http.StatusUnauthorized, apperror.CodeUnauthorized, "authentication required", middleware.GetRequestID(r.Context()))
		return
	}

	var in appraisal.AppraisalInput
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		api.Fail(w, http.StatusBadRequest, apperror.CodeValidation, "invalid request payload", middleware.GetRequestID(r.Context()))
		return
	}
	if shared.CheckStruct(w, h.validate, in, middleware.GetRequestID(r.Context())) {
		return
	}

	a, err := h.Service.Create(r.Context(), user.EmployeeID, in)
	if err != nil {
		api.FromError(w, err, middleware.GetRequestID(r.Context()))
		return
	}
	api.Created(w, a, middleware.GetRequestID(r.Context()))
}
