package polygon

import (
	"encoding/json"
	"fmt"
	"net/http"
)

// Error is a provider-level failure: a non-2xx response from Polygon.
type Error struct {
	Status  int
	Message string
}

func (e *Error) Error() string {
	return fmt.Sprintf("polygon: status %d: %s", e.Status, e.Message)
}

// newAPIError builds an Error from a response body, which Polygon returns as
// {"status":"ERROR","error":"..."} or {"status":"...","message":"..."}
func newAPIError(status int, body []byte) *Error {
	var payload struct {
		ErrorMsg string `json:"error"`
		Message  string `json:"message"`
	}

	msg := http.StatusText(status)
	if err := json.Unmarshal(body, &payload); err == nil {
		if payload.ErrorMsg != "" {
			msg = payload.ErrorMsg
		} else if payload.Message != "" {
			msg = payload.Message
		}
	}

	return &Error{Status: status, Message: msg}
}
