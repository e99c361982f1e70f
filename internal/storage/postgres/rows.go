package postgres

import (
	"encoding/json"
	"fmt"

	"carvex/internal/models"
)

func carToRow(car models.Car) (carRow, error) {
	fields := make(map[string]any, len(car.Fields))
	for k, v := range car.Fields {
		switch k {
		case models.KeyID, models.KeyImages, models.KeyBookingCount, models.KeyCreatedAt:
			continue
		}
		fields[k] = v
	}

	raw, err := json.Marshal(fields)
	if err != nil {
		return carRow{}, fmt.Errorf("failed to encode car fields: %w", err)
	}

	images := car.Images
	if images == nil {
		images = []string{}
	}

	return carRow{
		ID:           car.ID,
		Fields:       raw,
		Images:       images,
		BookingCount: car.BookingCount,
		CreatedAt:    car.CreatedAt,
	}, nil
}

func (r carRow) toModel() (models.Car, error) {
	fields := map[string]any{}
	if len(r.Fields) > 0 {
		if err := json.Unmarshal(r.Fields, &fields); err != nil {
			return models.Car{}, fmt.Errorf("failed to decode car %s fields: %w", r.ID, err)
		}
	}

	images := []string(r.Images)
	if images == nil {
		images = []string{}
	}

	return models.Car{
		ID:           r.ID,
		Fields:       fields,
		Images:       images,
		BookingCount: r.BookingCount,
		CreatedAt:    r.CreatedAt.UTC(),
	}, nil
}

func bookingToRow(b models.Booking) bookingRow {
	return bookingRow{
		ID:         b.ID,
		CarID:      b.CarID,
		CarModel:   b.CarModel,
		UserEmail:  b.UserEmail,
		StartDate:  b.StartDate,
		EndDate:    b.EndDate,
		Status:     b.Status,
		TotalPrice: b.TotalPrice,
		CreatedAt:  b.CreatedAt,
	}
}

func (r bookingRow) toModel() models.Booking {
	return models.Booking{
		ID:         r.ID,
		CarID:      r.CarID,
		CarModel:   r.CarModel,
		UserEmail:  r.UserEmail,
		StartDate:  r.StartDate.UTC(),
		EndDate:    r.EndDate.UTC(),
		Status:     r.Status,
		TotalPrice: r.TotalPrice,
		CreatedAt:  r.CreatedAt.UTC(),
	}
}
