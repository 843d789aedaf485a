package catalog

import (
	"encoding/json"
	"strings"

	"github.com/shopspring/decimal"
)

type ProductInput struct {
	EnName        string          `json:"enName" validate:"required"`
	ArName        string          `json:"arName" validate:"required"`
	EnDescription string          `json:"enDescription"`
	ArDescription string          `json:"arDescription"`
	Price         json.RawMessage `json:"price"`
}

// ProductPayload carries the price under both casings the backend has accepted.
type ProductPayload struct {
	ID            *int64      `json:"id,omitempty"`
	EnName        string      `json:"enName"`
	ArName        string      `json:"arName"`
	EnDescription string      `json:"enDescription"`
	ArDescription string      `json:"arDescription"`
	Price         json.Number `json:"price"`
	PriceAlias    json.Number `json:"Price"`
}

type CollectionInput struct {
	EnName        string `json:"enName" validate:"required"`
	ArName        string `json:"arName"`
	EnDescription string `json:"enDescription"`
	ArDescription string `json:"arDescription"`
}

type CollectionPayload struct {
	ID            *int64 `json:"id,omitempty"`
	EnName        string `json:"enName"`
	ArName        string `json:"arName"`
	EnDescription string `json:"enDescription"`
	ArDescription string `json:"arDescription"`
}

// CleanPrice keeps digits and dots from a price typed as text or number.
// Anything unparseable becomes zero.
func CleanPrice(raw json.RawMessage) decimal.Decimal {
	text := strings.TrimSpace(string(raw))
	if text == "" || text == "null" {
		return decimal.Zero
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		text = s
	}
	var b strings.Builder
	for _, r := range text {
		if (r >= '0' && r <= '9') || r == '.' {
			b.WriteRune(r)
		}
	}
	d, err := decimal.NewFromString(b.String())
	if err != nil {
		return decimal.Zero
	}
	return d
}

func NormalizeProduct(in ProductInput, id *int64) (ProductPayload, error) {
	in.EnName = strings.TrimSpace(in.EnName)
	in.ArName = strings.TrimSpace(in.ArName)
	if err := Validate(in); err != nil {
		return ProductPayload{}, err
	}
	price := json.Number(CleanPrice(in.Price).String())
	return ProductPayload{
		ID:            id,
		EnName:        in.EnName,
		ArName:        in.ArName,
		EnDescription: in.EnDescription,
		ArDescription: in.ArDescription,
		Price:         price,
		PriceAlias:    price,
	}, nil
}

func NormalizeCollection(in CollectionInput, id *int64) (CollectionPayload, error) {
	in.EnName = strings.TrimSpace(in.EnName)
	if err := Validate(in); err != nil {
		return CollectionPayload{}, err
	}
	return CollectionPayload{
		ID:            id,
		EnName:        in.EnName,
		ArName:        strings.TrimSpace(in.ArName),
		EnDescription: in.EnDescription,
		ArDescription: in.ArDescription,
	}, nil
}
