package apperror

const (
	CodeValidation          = "VALIDATION_ERROR"
	CodeOverlappingRequest  = "OVERLAPPING_REQUEST"
	CodeInsufficientBalance = "INSUFFICIENT_BALANCE"
	CodeNotFound            = "NOT_FOUND"
	CodeConflict            = "CONFLICT"
	CodeUnauthorized        = "UNAUTHORIZED"
	CodeForbidden           = "FORBIDDEN"
	CodeRateLimited         = "RATE_LIMITED"
	CodeTransient           = "TRANSIENT_ERROR"
	CodeInternal            = "INTERNAL_ERROR"
)
