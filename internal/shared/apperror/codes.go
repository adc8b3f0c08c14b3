package apperror

const (
	// Client errors (4xx)
	CodeInvalidInput   = "INVALID_INPUT"
	CodeUnauthorized   = "UNAUTHORIZED"
	CodeForbidden      = "FORBIDDEN"
	CodeNotFound       = "NOT_FOUND"
	CodeConflict       = "CONFLICT"
	CodePeriodConflict = "PERIOD_CONFLICT"
	CodeBusinessRule   = "BUSINESS_RULE"
	CodeInvalidState   = "INVALID_STATE"

	// Server errors (5xx)
	CodePersistence        = "PERSISTENCE_ERROR"
	CodeInternalError      = "INTERNAL_ERROR"
	CodeServiceUnavailable = "SERVICE_UNAVAILABLE"
)
