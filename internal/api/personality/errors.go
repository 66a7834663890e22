package personality

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
)

var (
	ErrUnauthorized = errors.New("unauthorized")
	ErrNotFound     = errors.New("not found")
	ErrBadRequest   = errors.New("bad request")
	ErrUnavailable  = errors.New("backend unavailable")
)

// APIError is a failed backend call. It unwraps to one of the sentinel errors.
type APIError struct {
	Status int
	Detail string
	kind   error
}

func (e *APIError) Error() string {
	if e.Status == 0 {
		return fmt.Sprintf("%s: %s", e.kind, e.Detail)
	}
	if e.Detail == "" {
		return fmt.Sprintf("%s (status %d)", e.kind, e.Status)
	}
	return fmt.Sprintf("%s (status %d): %s", e.kind, e.Status, e.Detail)
}

func (e *APIError) Unwrap() error {
	return e.kind
}

// ErrorResponse is the backend error body; detail is either a string or a
// list of validation errors.
type ErrorResponse struct {
	Detail json.RawMessage `json:"detail"`
}

type validationError struct {
	Loc []interface{} `json:"loc"`
	Msg string        `json:"msg"`
}

// NewAPIError builds the error for a non-2xx response with the given detail.
func NewAPIError(status int, detail string) *APIError {
	return &APIError{
		Status: status,
		Detail: detail,
		kind:   kindForStatus(status),
	}
}

func newAPIError(status int, body []byte) *APIError {
	return NewAPIError(status, parseDetail(body))
}

func kindForStatus(status int) error {
	switch {
	case status == http.StatusUnauthorized, status == http.StatusForbidden:
		return ErrUnauthorized
	case status == http.StatusNotFound:
		return ErrNotFound
	case status >= 500, status == http.StatusTooManyRequests:
		return ErrUnavailable
	default:
		return ErrBadRequest
	}
}

func parseDetail(body []byte) string {
	var resp ErrorResponse
	if err := json.Unmarshal(body, &resp); err != nil || len(resp.Detail) == 0 {
		return strings.TrimSpace(string(body))
	}

	var text string
	if err := json.Unmarshal(resp.Detail, &text); err == nil {
		return text
	}

	var list []validationError
	if err := json.Unmarshal(resp.Detail, &list); err == nil {
		msgs := make([]string, 0, len(list))
		for _, v := range list {
			msgs = append(msgs, v.Msg)
		}
		return strings.Join(msgs, "; ")
	}

	return string(resp.Detail)
}
