package mongo

import (
	"fmt"
	"time"

	"carvex/internal/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// carToDoc flattens a car into the schema-less document stored in the cars
// collection. The _id is left for the caller to assign.
func carToDoc(car models.Car) (bson.M, error) {
	doc := make(bson.M, len(car.Fields)+3)
	for k, v := range car.Fields {
		if k == models.KeyID {
			continue
		}
		doc[k] = v
	}

	images := car.Images
	if images == nil {
		images = []string{}
	}

	doc[models.KeyImages] = images
	doc[models.KeyBookingCount] = car.BookingCount
	doc[models.KeyCreatedAt] = car.CreatedAt

	if car.BookingCount < 0 {
		return nil, fmt.Errorf("negative booking count %d", car.BookingCount)
	}

	return doc, nil
}

func carFromDoc(doc bson.M) (models.Car, error) {
	car := models.Car{Fields: make(map[string]any, len(doc))}

	for k, v := range doc {
		switch k {
		case models.KeyID:
			oid, ok := v.(primitive.ObjectID)
			if !ok {
				return models.Car{}, fmt.Errorf("unexpected car id type %T", v)
			}
			car.ID = oid.Hex()
		case models.KeyImages:
			images, err := toStrings(v)
			if err != nil {
				return models.Car{}, err
			}
			car.Images = images
		case models.KeyBookingCount:
			car.BookingCount = int(models.ToFloat(v))
		case models.KeyCreatedAt:
			car.CreatedAt = toTime(v)
		default:
			car.Fields[k] = v
		}
	}

	if car.Images == nil {
		car.Images = []string{}
	}

	return car, nil
}

func toStrings(v any) ([]string, error) {
	switch a := v.(type) {
	case nil:
		return []string{}, nil
	case []string:
		return a, nil
	case bson.A:
		out := make([]string, 0, len(a))
		for _, e := range a {
			s, ok := e.(string)
			if !ok {
				return nil, fmt.Errorf("unexpected image path type %T", e)
			}
			out = append(out, s)
		}
		return out, nil
	default:
		return nil, fmt.Errorf("unexpected images type %T", v)
	}
}

func toTime(v any) time.Time {
	switch t := v.(type) {
	case primitive.DateTime:
		return t.Time().UTC()
	case time.Time:
		return t.UTC()
	default:
		return time.Time{}
	}
}

func bookingToDoc(b models.Booking) bookingDoc {
	return bookingDoc{
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

func (d bookingDoc) toModel() models.Booking {
	return models.Booking{
		ID:         d.ID.Hex(),
		CarID:      d.CarID,
		CarModel:   d.CarModel,
		UserEmail:  d.UserEmail,
		StartDate:  d.StartDate.UTC(),
		EndDate:    d.EndDate.UTC(),
		Status:     d.Status,
		TotalPrice: d.TotalPrice,
		CreatedAt:  d.CreatedAt.UTC(),
	}
}
