package api

import (
	"encoding/json"
	"fmt"
	"strings"
)

// genericMessage is reported when the backend does not supply one.
const genericMessage = "la operación no pudo completarse"

// Error is a failed backend call. Message carries the server-provided text
// verbatim when present so the user sees exactly what the backend said.
type Error struct {
	StatusCode int
	Message    string
}

func (e *Error) Error() string {
	return fmt.Sprintf("api: status %d: %s", e.StatusCode, e.Message)
}

func newAPIError(status int, raw []byte) *Error {
	msg := genericMessage
	var body struct {
		Message string `json:"message"`
		Error   string `json:"error"`
	}
	if err := json.Unmarshal(raw, &body); err == nil {
		switch {
		case strings.TrimSpace(body.Message) != "":
			msg = body.Message
		case strings.TrimSpace(body.Error) != "":
			msg = body.Error
		}
	}
	return &Error{StatusCode: status, Message: msg}
}
