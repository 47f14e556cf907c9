package client

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/information-sharing-networks/talimbot/internal/apperrors"
	"github.com/information-sharing-networks/talimbot/internal/locale"
	"golang.org/x/text/message"
)

// defaultFallback is the message used when a failed response carries no detail
const defaultFallback = "API request failed"

// maxErrorBodySize caps how much of an error response is read
const maxErrorBodySize = 64 * 1024

// APIError is returned by every client operation that fails.
// StatusCode 0 = network/internal error, >0 = HTTP response received.
//
// Error() is exactly the backend detail message (or the operation fallback) so that callers
// can show it verbatim; UserMessage gives a localized end user text instead.
type APIError struct {
	StatusCode int
	ErrorCode  apperrors.ErrorCode
	Message    string
	Err        error

	userKey string // locale key, empty = Message is already fit for end users
}

func (e *APIError) Error() string {
	return e.Message
}

func (e *APIError) Unwrap() error {
	return e.Err
}

// UserMessage returns the message to show to the end user
func (e *APIError) UserMessage(p *message.Printer) string {
	if e.userKey == "" {
		return e.Message
	}
	return p.Sprintf(e.userKey)
}

// NewConnectionError creates an APIError for network/connection issues
func NewConnectionError(err error) *APIError {
	return &APIError{
		StatusCode: 0,
		Message:    fmt.Sprintf("network error: %v", err),
		Err:        err,
		userKey:    locale.MsgConnection,
	}
}

// NewInternalError creates an APIError for failures on the client side, supply the error and an explanation of what was being done when it occurred
func NewInternalError(err error, while string) *APIError {
	return &APIError{
		StatusCode: 0,
		Message:    fmt.Sprintf("internal error: %v while %v", err, while),
		Err:        err,
		userKey:    locale.MsgGeneric,
	}
}

// NewResponseError creates an APIError from a non-2xx backend response.
// The detail field of the JSON body becomes the error message, fallback is used when there is none.
func NewResponseError(res *http.Response, fallback string) *APIError {
	var serverErr apperrors.ErrorResponse

	if res.Body != nil {
		// the body may not be JSON (proxies, crashed backends): ignore decode failures
		_ = json.NewDecoder(io.LimitReader(res.Body, maxErrorBodySize)).Decode(&serverErr)
	}

	msg := serverErr.Detail
	if msg == "" {
		msg = fallback
	}

	var userKey string
	switch res.StatusCode {
	case http.StatusUnauthorized:
		userKey = locale.MsgUnauthorized
	case http.StatusForbidden:
		userKey = locale.MsgForbidden
	case http.StatusNotFound:
		userKey = locale.MsgNotFound
	case http.StatusBadRequest, http.StatusUnprocessableEntity:
		// validation failures are worded for users by the backend
		if serverErr.Detail == "" {
			userKey = locale.MsgInvalidRequest
		}
	case http.StatusInternalServerError, http.StatusBadGateway, http.StatusServiceUnavailable, http.StatusGatewayTimeout:
		userKey = locale.MsgUnavailable
	default:
		userKey = locale.MsgGeneric
	}

	return &APIError{
		StatusCode: res.StatusCode,
		ErrorCode:  serverErr.ErrorCode,
		Message:    msg,
		userKey:    userKey,
	}
}

// StatusCode returns the HTTP status of a failed request, 0 when err is not an APIError with a response
func StatusCode(err error) int {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.StatusCode
	}
	return 0
}
