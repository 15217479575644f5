package leave

import (
	"net/http"

	"peopledesk/internal/apperror"
)

var (
	ErrRequestNotFound = apperror.New(
		apperror.CodeNotFound,
		"leave request not found",
		http.StatusNotFound,
	)
	ErrBalanceNotFound = apperror.New(
		apperror.CodeNotFound,
		"leave balance not found for employee and year",
		http.StatusNotFound,
	)
	ErrInvalidTransition = apperror.New(
		apperror.CodeConflict,
		"invalid transition: request is not pending",
		http.StatusConflict,
	)
	ErrInsufficientBalance = apperror.New(
		apperror.CodeInsufficientBalance,
		"insufficient balance",
		http.StatusConflict,
	)
	ErrOverlapsApproved = apperror.New(
		apperror.CodeOverlappingRequest,
		"an approved leave request already covers part of this period",
		http.StatusConflict,
	)
	ErrNotManager = apperror.New(
		apperror.CodeForbidden,
		"only the employee's current manager may decide this request",
		http.StatusForbidden,
	)
	ErrReasonRequired = apperror.New(
		apperror.CodeValidation,
		"rejection reason is required",
		http.StatusBadRequest,
	)
)
