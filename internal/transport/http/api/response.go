package api

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"peopledesk/internal/apperror"
)

type Error struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Details any    `json:"details,omitempty"`
}

type Envelope struct {
	Success   bool   `json:"success"`
	Data      any    `json:"data,omitempty"`
	Error     *Error `json:"error,omitempty"`
	RequestID string `json:"requestId,omitempty"`
}

func WriteJSON(w http.ResponseWriter, status int, payload Envelope) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		slog.Warn("write json failed", "err", err)
	}
}

func Success(w http.ResponseWriter, data any, requestID string) {
	WriteJSON(w, http.StatusOK, Envelope{Success: true, Data: data, RequestID: requestID})
}

func Created(w http.ResponseWriter, data any, requestID string) {
	WriteJSON(w, http.StatusCreated, Envelope{Success: true, Data: data, RequestID: requestID})
}

func Fail(w http.ResponseWriter, status int, code, message, requestID string) {
	WriteJSON(w, status, Envelope{Success: false, Error: &Error{Code: code, Message: message}, RequestID: requestID})
}

func FailWithDetails(w http.ResponseWriter, status int, code, message string, details any, requestID string) {
	WriteJSON(w, status, Envelope{
		Success:   false,
		Error:     &Error{Code: code, Message: message, Details: details},
		RequestID: requestID,
	})
}

// FailureDetail is one entry of a validation error's details list.
type FailureDetail struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// FromError maps a domain error onto the response envelope. Aggregated
// validation failures become a 400 with every failure listed; tagged errors
// use their own status and code; anything else is a 500 with the cause kept
// out of the response body.
func FromError(w http.ResponseWriter, err error, requestID string) {
	var verrs *apperror.ValidationErrors
	if errors.As(err, &verrs) {
		details := make([]FailureDetail, 0, len(verrs.Failures))
		for _, f := range verrs.Failures {
			details = append(details, FailureDetail{Code: f.Code, Message: f.Message})
		}
		FailWithDetails(w, http.StatusBadRequest, apperror.CodeValidation, "request validation failed", details, requestID)
		return
	}

	var appErr *apperror.Error
	if errors.As(err, &appErr) {
		Fail(w, appErr.HTTPStatus, appErr.Code, appErr.Message, requestID)
		return
	}

	slog.Error("unhandled error", "err", err, "requestId", requestID)
	Fail(w, http.StatusInternalServerError, apperror.CodeInternal, "internal error", requestID)
}
