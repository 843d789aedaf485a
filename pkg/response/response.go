package response

import (
	"encoding/json"
	"net/http"
	"strings"

	"store-admin-service/internal/backend"
)

func JSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

func Success(w http.ResponseWriter, data any) {
	JSON(w, http.StatusOK, map[string]any{
		"success": true,
		"data":    data,
	})
}

func Created(w http.ResponseWriter, data any) {
	JSON(w, http.StatusCreated, map[string]any{
		"success": true,
		"data":    data,
	})
}

// List is Success with paging metadata next to the data.
func List(w http.ResponseWriter, data any, meta any) {
	JSON(w, http.StatusOK, map[string]any{
		"success": true,
		"data":    data,
		"meta":    meta,
	})
}

func Error(w http.ResponseWriter, status int, code string, message string) {
	JSON(w, status, map[string]any{
		"success": false,
		"error":   code,
		"message": message,
	})
}

var upstreamCodes = map[int]string{
	http.StatusBadRequest:          "UPSTREAM_BAD_REQUEST",
	http.StatusUnauthorized:        "UPSTREAM_UNAUTHORIZED",
	http.StatusForbidden:           "UPSTREAM_FORBIDDEN",
	http.StatusNotFound:            "NOT_FOUND",
	http.StatusMethodNotAllowed:    "UPSTREAM_METHOD_NOT_ALLOWED",
	http.StatusConflict:            "CONFLICT",
	http.StatusUnprocessableEntity: "VALIDATION_ERROR",
}

// Upstream writes a failed backend call. Client errors keep their status so
// the dashboard can show the backend's message; anything else is a 502.
func Upstream(w http.ResponseWriter, err error, fallback string) {
	be, ok := backend.AsError(err)
	if !ok {
		Error(w, http.StatusInternalServerError, "INTERNAL_ERROR", fallback)
		return
	}
	if be.Unreachable() {
		Error(w, http.StatusBadGateway, "UPSTREAM_UNAVAILABLE", "Backend is unreachable")
		return
	}

	message := strings.TrimSpace(be.Message)
	if message == "" {
		message = fallback
	}
	if be.StatusCode >= 400 && be.StatusCode < 500 {
		code, ok := upstreamCodes[be.StatusCode]
		if !ok {
			code = "UPSTREAM_ERROR"
		}
		Error(w, be.StatusCode, code, message)
		return
	}
	Error(w, http.StatusBadGateway, "UPSTREAM_ERROR", message)
}
