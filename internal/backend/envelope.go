package backend

import (
	"bytes"
	"encoding/json"
	"strings"
)

// Unwrap returns the payload of a `{ "data": X }` envelope, or the body
// itself when it is not enveloped or the data field is empty.
func Unwrap(body json.RawMessage) json.RawMessage {
	trimmed := bytes.TrimSpace(body)
	if len(trimmed) == 0 || trimmed[0] != '{' {
		return trimmed
	}
	var env map[string]json.RawMessage
	if err := json.Unmarshal(trimmed, &env); err != nil {
		return trimmed
	}
	data, ok := env["data"]
	if !ok || isFalsyJSON(data) {
		return trimmed
	}
	return bytes.TrimSpace(data)
}

func isFalsyJSON(value json.RawMessage) bool {
	switch strings.TrimSpace(string(value)) {
	case "", "null", "false", "0", `""`:
		return true
	}
	return false
}

// Page describes the paging fields some list endpoints return next to items.
type Page struct {
	TotalPages *int `json:"totalPages,omitempty"`
	TotalCount *int `json:"totalCount,omitempty"`
}

// Items extracts list entries from an unwrapped payload that is either a bare
// array or an object with an items array. Anything else is an empty list.
func Items(payload json.RawMessage) ([]json.RawMessage, Page) {
	trimmed := bytes.TrimSpace(payload)
	if len(trimmed) == 0 {
		return []json.RawMessage{}, Page{}
	}

	var arr []json.RawMessage
	if trimmed[0] == '[' {
		if err := json.Unmarshal(trimmed, &arr); err != nil {
			return []json.RawMessage{}, Page{}
		}
		return arr, Page{}
	}

	var obj struct {
		Items      json.RawMessage `json:"items"`
		TotalPages *int            `json:"totalPages"`
		TotalCount *int            `json:"totalCount"`
	}
	if trimmed[0] != '{' || json.Unmarshal(trimmed, &obj) != nil {
		return []json.RawMessage{}, Page{}
	}
	page := Page{TotalPages: obj.TotalPages, TotalCount: obj.TotalCount}
	if err := json.Unmarshal(obj.Items, &arr); err != nil || arr == nil {
		return []json.RawMessage{}, page
	}
	return arr, page
}

// CreatedID reads the id of a newly created resource from an unwrapped
// payload: a bare number or string, or an object's id field.
func CreatedID(payload json.RawMessage) (string, bool) {
	trimmed := bytes.TrimSpace(payload)
	if len(trimmed) == 0 {
		return "", false
	}

	dec := json.NewDecoder(bytes.NewReader(trimmed))
	dec.UseNumber()
	var value any
	if err := dec.Decode(&value); err != nil {
		return "", false
	}

	if obj, ok := value.(map[string]any); ok {
		value = obj["id"]
	}
	switch v := value.(type) {
	case json.Number:
		return v.String(), true
	case string:
		if strings.TrimSpace(v) == "" {
			return "", false
		}
		return strings.TrimSpace(v), true
	}
	return "", false
}

// IDs reads the id field of every object in a list payload.
func IDs(payload json.RawMessage) []int64 {
	items, _ := Items(payload)
	out := make([]int64, 0, len(items))
	for _, item := range items {
		var entry struct {
			ID *json.Number `json:"id"`
		}
		if err := json.Unmarshal(item, &entry); err != nil || entry.ID == nil {
			continue
		}
		if id, err := entry.ID.Int64(); err == nil {
			out = append(out, id)
		}
	}
	return out
}
