package backend

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
)

// Error is a failed upstream call. StatusCode is zero when the backend could
// not be reached at all.
type Error struct {
	Method     string
	Path       string
	StatusCode int
	Message    string
	Body       []byte
	Err        error
}

func (e *Error) Error() string {
	if e.StatusCode == 0 {
		return fmt.Sprintf("backend %s %s: %v", e.Method, e.Path, e.Err)
	}
	if e.Message != "" {
		return fmt.Sprintf("backend %s %s: %d %s", e.Method, e.Path, e.StatusCode, e.Message)
	}
	return fmt.Sprintf("backend %s %s: %d", e.Method, e.Path, e.StatusCode)
}

func (e *Error) Unwrap() error {
	return e.Err
}

func (e *Error) Unreachable() bool {
	return e.StatusCode == 0
}

// AsError extracts a backend error from a wrapped chain.
func AsError(err error) (*Error, bool) {
	var be *Error
	if errors.As(err, &be) {
		return be, true
	}
	return nil, false
}

func IsNotFound(err error) bool {
	be, ok := AsError(err)
	return ok && be.StatusCode == http.StatusNotFound
}

const maxPlainMessage = 300

// messageFromBody picks the most useful human message from an error body:
// message, then title (ASP.NET problem details), then a bare string.
func messageFromBody(body []byte) string {
	trimmed := strings.TrimSpace(string(body))
	if trimmed == "" {
		return ""
	}

	var obj map[string]any
	if err := json.Unmarshal(body, &obj); err == nil {
		for _, key := range []string{"message", "title"} {
			if s, ok := obj[key].(string); ok && strings.TrimSpace(s) != "" {
				return strings.TrimSpace(s)
			}
		}
		return ""
	}

	var s string
	if err := json.Unmarshal(body, &s); err == nil {
		return strings.TrimSpace(s)
	}

	if len(trimmed) > maxPlainMessage {
		trimmed = trimmed[:maxPlainMessage]
	}
	return trimmed
}
