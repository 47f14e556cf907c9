// Package apperrors describes the error payload returned by the grouping backend.
package apperrors

type ErrorCode string

// Error codes the backend may set alongside the detail message.
// Older backends only send detail, see client.GetStudentGroup.
const (
	ErrCodeResultsNotVisible ErrorCode = "results_not_visible"
	ErrCodeNotAssigned       ErrorCode = "not_assigned"
	ErrCodeResourceNotFound  ErrorCode = "resource_not_found"
	ErrCodeInvalidPassword   ErrorCode = "invalid_password"
	ErrCodeInvalidRequest    ErrorCode = "invalid_request"
	ErrCodeMalformedBody     ErrorCode = "malformed_body"
	ErrCodeInternalError     ErrorCode = "internal_error"
)

// ErrorResponse is the JSON body of every non-2xx backend response
type ErrorResponse struct {
	Detail    string    `json:"detail"`
	ErrorCode ErrorCode `json:"error_code,omitempty"`
}
