package apperror

import "net/http"

var (
	ErrNotFound = New(
		CodeNotFound,
		"resource not found",
		http.StatusNotFound,
	)

	ErrForbidden = New(
		CodeForbidden,
		"you do not have permission to perform this action",
		http.StatusForbidden,
	)

	ErrUnauthorized = New(
		CodeUnauthorized,
		"authentication required",
		http.StatusUnauthorized,
	)

	ErrInternal = New(
		CodeInternal,
		"an unexpected error occurred",
		http.StatusInternalServerError,
	)

	ErrStoreUnavailable = New(
		CodeTransient,
		"storage temporarily unavailable",
		http.StatusServiceUnavailable,
	)
)
