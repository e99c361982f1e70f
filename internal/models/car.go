package models

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"
)

// Server-owned car keys.
const (
	KeyID           = "_id"
	KeyImages       = "images"
	KeyBookingCount = "bookingCount"
	KeyCreatedAt    = "createdAt"
)

// Client-supplied car keys the service reads.
const (
	FieldModel     = "carModel"
	FieldDailyRate = "dailyRentalPrice"
	FieldEmail     = "email"
)

// Car is a listing. Apart from the server-owned attributes its shape is
// whatever the client sent, kept in Fields and flattened on the wire.
type Car struct {
	ID           string
	Fields       map[string]any
	Images       []string
	BookingCount int
	CreatedAt    time.Time
}

func (c Car) MarshalJSON() ([]byte, error) {
	doc := make(map[string]any, len(c.Fields)+4)
	for k, v := range c.Fields {
		doc[k] = v
	}

	images := c.Images
	if images == nil {
		images = []string{}
	}

	doc[KeyID] = c.ID
	doc[KeyImages] = images
	doc[KeyBookingCount] = c.BookingCount
	doc[KeyCreatedAt] = c.CreatedAt

	return json.Marshal(doc)
}

func (c *Car) UnmarshalJSON(data []byte) error {
	var doc map[string]json.RawMessage
	if err := json.Unmarshal(data, &doc); err != nil {
		return err
	}

	*c = Car{Fields: make(map[string]any, len(doc))}

	for k, raw := range doc {
		var err error

		switch k {
		case KeyID:
			err = json.Unmarshal(raw, &c.ID)
		case KeyImages:
			err = json.Unmarshal(raw, &c.Images)
		case KeyBookingCount:
			err = json.Unmarshal(raw, &c.BookingCount)
		case KeyCreatedAt:
			err = json.Unmarshal(raw, &c.CreatedAt)
		default:
			var v any
			err = json.Unmarshal(raw, &v)
			c.Fields[k] = v
		}

		if err != nil {
			return fmt.Errorf("car field %q: %w", k, err)
		}
	}

	return nil
}

func (c Car) Model() string {
	s, _ := c.Fields[FieldModel].(string)

	return s
}

func (c Car) Email() string {
	s, _ := c.Fields[FieldEmail].(string)

	return s
}

// DailyRate coerces the daily rental price to a number. Form uploads store it
// as a string; a missing or non-numeric value prices at zero.
func (c Car) DailyRate() float64 {
	return ToFloat(c.Fields[FieldDailyRate])
}

func ToFloat(v any) float64 {
	switch n := v.(type) {
	case float64:
		return n
	case float32:
		return float64(n)
	case int:
		return float64(n)
	case int32:
		return float64(n)
	case int64:
		return float64(n)
	case json.Number:
		f, _ := n.Float64()
		return f
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(n), 64)
		if err != nil {
			return 0
		}
		return f
	default:
		return 0
	}
}

// CarUpdate strips server-owned keys from a partial update. Images stay
// updatable as long as they are a list of strings.
func CarUpdate(in map[string]any) map[string]any {
	out := make(map[string]any, len(in))

	for k, v := range in {
		switch k {
		case KeyID, KeyBookingCount, KeyCreatedAt:
			continue
		case KeyImages:
			images, ok := toStrings(v)
			if !ok {
				continue
			}
			out[k] = images
		default:
			out[k] = v
		}
	}

	return out
}

func toStrings(v any) ([]string, bool) {
	switch s := v.(type) {
	case []string:
		return s, true
	case []any:
		out := make([]string, 0, len(s))
		for _, e := range s {
			str, ok := e.(string)
			if !ok {
				return nil, false
			}
			out = append(out, str)
		}
		return out, true
	default:
		return nil, false
	}
}
