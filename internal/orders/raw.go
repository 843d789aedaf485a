package orders

import (
	"bytes"
	"encoding/json"
	"strings"

	"github.com/shopspring/decimal"
)

// RawOrder is an order record exactly as the backend returned it. Numbers are
// kept as json.Number so that nothing is lost on passthrough.
type RawOrder map[string]any

// DecodeRawOrder decodes one unwrapped order object.
func DecodeRawOrder(data []byte) (RawOrder, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	var raw RawOrder
	if err := dec.Decode(&raw); err != nil {
		return nil, err
	}
	if raw == nil {
		raw = RawOrder{}
	}
	return raw, nil
}

func (r RawOrder) get(key string) (any, bool) {
	if r == nil {
		return nil, false
	}
	v, ok := r[key]
	if !ok || v == nil {
		return nil, false
	}
	return v, true
}

func (r RawOrder) object(key string) (map[string]any, bool) {
	v, ok := r.get(key)
	if !ok {
		return nil, false
	}
	m, ok := v.(map[string]any)
	return m, ok
}

func (r RawOrder) array(key string) ([]any, bool) {
	v, ok := r.get(key)
	if !ok {
		return nil, false
	}
	arr, ok := v.([]any)
	return arr, ok
}

func (r RawOrder) String(key string) string {
	v, _ := r.get(key)
	return stringValue(v)
}

// Int64 reads an integer field; ok is false when the field is missing or not
// an integer.
func (r RawOrder) Int64(key string) (int64, bool) {
	v, ok := r.get(key)
	if !ok {
		return 0, false
	}
	d, ok := decimalValue(v)
	if !ok || !d.IsInteger() {
		return 0, false
	}
	return d.IntPart(), true
}

func (r RawOrder) Decimal(key string) (decimal.Decimal, bool) {
	v, ok := r.get(key)
	if !ok {
		return decimal.Zero, false
	}
	return decimalValue(v)
}

// Objects returns the map entries of an array field, skipping anything that
// is not an object.
func (r RawOrder) Objects(key string) []map[string]any {
	arr, ok := r.array(key)
	if !ok {
		return nil
	}
	out := make([]map[string]any, 0, len(arr))
	for _, item := range arr {
		if m, ok := item.(map[string]any); ok {
			out = append(out, m)
		}
	}
	return out
}

func stringValue(v any) string {
	switch t := v.(type) {
	case string:
		return t
	case json.Number:
		return t.String()
	default:
		return ""
	}
}

func boolValue(v any) (bool, bool) {
	b, ok := v.(bool)
	return b, ok
}

func decimalValue(v any) (decimal.Decimal, bool) {
	switch t := v.(type) {
	case json.Number:
		d, err := decimal.NewFromString(t.String())
		return d, err == nil
	case float64:
		return decimal.NewFromFloat(t), true
	case int:
		return decimal.NewFromInt(int64(t)), true
	case int64:
		return decimal.NewFromInt(t), true
	case string:
		d, err := decimal.NewFromString(strings.TrimSpace(t))
		return d, err == nil
	default:
		return decimal.Zero, false
	}
}

// Field reads a nested value from a generic JSON object, for passthrough
// fields such as order items.
func Field(m map[string]any, path ...string) any {
	var cur any = m
	for _, key := range path {
		obj, ok := cur.(map[string]any)
		if !ok {
			return nil
		}
		cur = obj[key]
	}
	return cur
}

func FieldString(m map[string]any, path ...string) string {
	return stringValue(Field(m, path...))
}

func FieldDecimal(m map[string]any, path ...string) (decimal.Decimal, bool) {
	v := Field(m, path...)
	if v == nil {
		return decimal.Zero, false
	}
	return decimalValue(v)
}
