package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
)

// Error is a guardian backend API error.
type Error struct {
	// Detail is the backend's error description.
	Detail string `json:"detail"`

	// HTTPStatus is the response status code.
	HTTPStatus int `json:"-"`
}

func (e *Error) Error() string {
	return fmt.Sprintf("api: %s (http_status=%d)", e.Detail, e.HTTPStatus)
}

// IsNotFound reports an unknown session or patient.
func (e *Error) IsNotFound() bool {
	return e.HTTPStatus == http.StatusNotFound
}

// IsInvalidParam reports a rejected request payload.
func (e *Error) IsInvalidParam() bool {
	return e.HTTPStatus == http.StatusBadRequest || e.HTTPStatus == http.StatusUnprocessableEntity
}

// IsServerError reports a backend-side failure.
func (e *Error) IsServerError() bool {
	return e.HTTPStatus >= http.StatusInternalServerError
}

// AsError extracts an *Error from an error chain.
func AsError(err error) (*Error, bool) {
	var e *Error
	if errors.As(err, &e) {
		return e, true
	}
	return nil, false
}

func parseError(status int, body []byte) error {
	apiErr := &Error{HTTPStatus: status}
	if err := json.Unmarshal(body, apiErr); err != nil || apiErr.Detail == "" {
		apiErr.Detail = http.StatusText(status)
		if len(body) > 0 && len(body) < 256 {
			apiErr.Detail = string(body)
		}
	}
	return apiErr
}
