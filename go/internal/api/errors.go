package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
)

// ErrRoomNotFound is returned when the backend reports no such room.
var ErrRoomNotFound = errors.New("room not found")

// Error is a non-2xx backend response. Message is the backend's own
// `error` body field when present.
type Error struct {
	StatusCode int
	Message    string
}

func (e *Error) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("backend returned %d: %s", e.StatusCode, e.Message)
	}
	return fmt.Sprintf("backend returned %d", e.StatusCode)
}

func newError(statusCode int, body []byte) error {
	var payload struct {
		Error string `json:"error"`
	}
	// Best effort; some error responses have no JSON body.
	_ = json.Unmarshal(body, &payload)

	apiErr := &Error{StatusCode: statusCode, Message: payload.Error}
	if statusCode == http.StatusNotFound {
		return fmt.Errorf("%w: %s", ErrRoomNotFound, apiErr.Error())
	}
	return apiErr
}

// IsNotFound reports whether err marks a room that is missing or deleted.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrRoomNotFound)
}
