package catalog

import (
	"strings"
	"time"
)

// DiscountInput is what the dashboard submits for a discount.
type DiscountInput struct {
	DiscountPercentage float64 `json:"discountPercentage" validate:"gte=0,lte=100"`
	StartDate          string  `json:"startDate" validate:"required"`
	EndDate            string  `json:"endDate" validate:"required"`
}

// DiscountPayload is the body sent upstream.
type DiscountPayload struct {
	ID                 *int64  `json:"id,omitempty"`
	DiscountPercentage float64 `json:"discountPercentage"`
	StartDate          string  `json:"startDate"`
	EndDate            string  `json:"endDate"`
}

// Form inputs without an offset (datetime-local) are read in the caller's zone.
var discountDateLayouts = []string{
	"2006-01-02T15:04",
	"2006-01-02T15:04:05",
	"2006-01-02 15:04",
	"2006-01-02",
}

func parseDiscountDate(value string, loc *time.Location) (time.Time, bool) {
	value = strings.TrimSpace(value)
	if t, err := time.Parse(time.RFC3339Nano, value); err == nil {
		return t, true
	}
	if loc == nil {
		loc = time.UTC
	}
	for _, layout := range discountDateLayouts {
		if t, err := time.ParseInLocation(layout, value, loc); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// NormalizeDiscount validates the input and returns the upstream payload.
// id is set for updates.
func NormalizeDiscount(in DiscountInput, id *int64, loc *time.Location) (DiscountPayload, error) {
	if err := Validate(in); err != nil {
		return DiscountPayload{}, err
	}
	start, ok := parseDiscountDate(in.StartDate, loc)
	if !ok {
		return DiscountPayload{}, FieldErrors{"startDate": "is not a valid date"}
	}
	end, ok := parseDiscountDate(in.EndDate, loc)
	if !ok {
		return DiscountPayload{}, FieldErrors{"endDate": "is not a valid date"}
	}
	if !end.After(start) {
		return DiscountPayload{}, FieldErrors{"endDate": "must be after startDate"}
	}
	return DiscountPayload{
		ID:                 id,
		DiscountPercentage: in.DiscountPercentage,
		StartDate:          start.UTC().Format(time.RFC3339),
		EndDate:            end.UTC().Format(time.RFC3339),
	}, nil
}
