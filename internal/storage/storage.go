package storage

import (
	"context"
	"errors"

	"carvex/internal/models"
)

var (
	ErrCarNotFound     = errors.New("car not found")
	ErrBookingNotFound = errors.New("booking not found")
)

const (
	DefaultLimit = 50
	MaxLimit     = 200
)

// Page bounds a list query.
type Page struct {
	Limit  int64
	Offset int64
}

// DefaultPage is the first page with the default size.
func DefaultPage() Page {
	return Page{Limit: DefaultLimit}
}

// UpdateResult separates "nothing matched" from "matched but unchanged".
type UpdateResult struct {
	Matched  int64
	Modified int64
}

// Backend is the full set of operations a storage implementation provides.
type Backend interface {
	SaveCar(ctx context.Context, car models.Car) (string, error)
	GetCars(ctx context.Context, page Page) ([]models.Car, error)
	GetCarsByOwner(ctx context.Context, email string, page Page) ([]models.Car, error)
	GetCar(ctx context.Context, id string) (*models.Car, error)
	UpdateCar(ctx context.Context, id string, fields map[string]any) (UpdateResult, error)
	DeleteCar(ctx context.Context, id string) error
	IncrementBookingCount(ctx context.Context, id string) error

	CreateBooking(ctx context.Context, booking models.Booking) (models.Booking, error)
	GetBookingsByUser(ctx context.Context, email string, page Page) ([]models.Booking, error)
	UpdateBookingStatus(ctx context.Context, id, status string) (UpdateResult, error)
	DeleteBooking(ctx context.Context, id string) (*models.Booking, error)

	ReconcileBookingCounts(ctx context.Context) (int64, error)
	Close(ctx context.Context) error
}
