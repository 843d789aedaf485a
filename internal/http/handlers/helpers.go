package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"store-admin-service/internal/catalog"
	"store-admin-service/pkg/response"
)

const maxJSONBody = 1 << 20

func zapError(err error) zap.Field {
	return zap.Error(err)
}

func readPathString(r *http.Request, key string) string {
	return chi.URLParam(r, key)
}

func readPathInt64(r *http.Request, key string) (int64, error) {
	value := strings.TrimSpace(readPathString(r, key))
	if value == "" {
		return 0, errMissingParam
	}
	return strconv.ParseInt(value, 10, 64)
}

var errMissingParam = errors.New("missing param")

// pathID reads a positive integer path parameter, writing a 400 on failure.
func pathID(w http.ResponseWriter, r *http.Request, key string) (int64, bool) {
	id, err := readPathInt64(r, key)
	if err != nil || id <= 0 {
		response.Error(w, http.StatusBadRequest, "VALIDATION_ERROR", fmt.Sprintf("Invalid %s", key))
		return 0, false
	}
	return id, true
}

func decodeJSON(r *http.Request, dst any) error {
	dec := json.NewDecoder(io.LimitReader(r.Body, maxJSONBody))
	if err := dec.Decode(dst); err != nil {
		return fmt.Errorf("decode body: %w", err)
	}
	return nil
}

// writeInvalid reports a decode or validation failure as 400.
func writeInvalid(w http.ResponseWriter, err error) {
	var fields catalog.FieldErrors
	if errors.As(err, &fields) {
		response.JSON(w, http.StatusBadRequest, map[string]any{
			"success": false,
			"error":   "VALIDATION_ERROR",
			"message": "Invalid request",
			"fields":  fields,
		})
		return
	}
	response.Error(w, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid request body")
}

// upstreamFailed logs and writes a failed backend call.
func (h *Handler) upstreamFailed(w http.ResponseWriter, r *http.Request, err error, message string) {
	h.Logger.Warn(message,
		zap.String("path", r.URL.Path),
		zap.String("requestId", r.Header.Get("X-Request-Id")),
		zapError(err),
	)
	response.Upstream(w, err, message)
}

// writeRaw forwards an already-unwrapped backend payload inside the envelope.
func writeRaw(w http.ResponseWriter, status int, payload json.RawMessage) {
	if len(payload) == 0 {
		payload = json.RawMessage("null")
	}
	response.JSON(w, status, map[string]any{
		"success": true,
		"data":    payload,
	})
}

func queryInt(r *http.Request, key string, fallback int) int {
	value := strings.TrimSpace(r.URL.Query().Get(key))
	if value == "" {
		return fallback
	}
	parsed, err := strconv.Atoi(value)
	if err != nil {
		return fallback
	}
	return parsed
}
