package orders

import "encoding/json"

type nameAccessor func(raw RawOrder) string

func topLevelName(key string) nameAccessor {
	return func(raw RawOrder) string {
		v, _ := raw.get(key)
		return nameValue(v)
	}
}

func nestedName(parent, key string) nameAccessor {
	return func(raw RawOrder) string {
		obj, ok := raw.object(parent)
		if !ok {
			return ""
		}
		return nameValue(obj[key])
	}
}

// nameValue treats a numeric zero as no name, like an empty string.
func nameValue(v any) string {
	if n, ok := v.(json.Number); ok {
		if f, err := n.Float64(); err == nil && f == 0 {
			return ""
		}
	}
	return stringValue(v)
}

// customerNameAccessors is the lookup order for the customer's display name.
// The backend has used every one of these keys at some point.
var customerNameAccessors = []nameAccessor{
	topLevelName("customerName"),
	topLevelName("name"),
	topLevelName("Name"),
	topLevelName("userName"),
	topLevelName("UserName"),
	topLevelName("clientName"),
	topLevelName("recipientName"),
	topLevelName("fullName"),
	nestedName("user", "name"),
	nestedName("user", "Name"),
	nestedName("shippingAddress", "name"),
}

// CustomerName returns the first non-empty name, or nil when the order
// carries none.
func CustomerName(raw RawOrder) *string {
	for _, accessor := range customerNameAccessors {
		if name := accessor(raw); name != "" {
			return &name
		}
	}
	return nil
}
