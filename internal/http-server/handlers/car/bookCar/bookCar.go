package bookCar

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"carvex/internal/lib/api/identifier"
	"carvex/internal/lib/api/response"
	"carvex/internal/lib/logger/sl"
	"carvex/internal/storage"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"
)

//go:generate go run github.com/vektra/mockery/v2@v2.51.1 --name=CarBooker
type CarBooker interface {
	IncrementBookingCount(ctx context.Context, id string) error
}

// New bumps the booking counter without recording a booking. Kept for older
// clients; new clients post to /bookings.
func New(log *slog.Logger, carBooker CarBooker) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.car.bookCar.New"

		log := log.With(slog.String("op", op))

		id := chi.URLParam(r, "id")
		if !identifier.Valid(id) {
			log.Error("invalid car id format", slog.String("id", id))
			render.Status(r, http.StatusBadRequest)
			render.JSON(w, r, response.Message("Invalid Car ID"))
			return
		}

		log = log.With(slog.String("car_id", id))

		if err := carBooker.IncrementBookingCount(r.Context(), id); err != nil {
			if errors.Is(err, storage.ErrCarNotFound) {
				log.Info("car not found")
				render.Status(r, http.StatusNotFound)
				render.JSON(w, r, response.Message("Car not found"))
				return
			}

			log.Error("failed to book car", sl.Err(err))
			render.Status(r, http.StatusInternalServerError)
			render.JSON(w, r, response.Message("Error booking car"))
			return
		}

		log.Info("car booked")

		render.JSON(w, r, response.Message("Car booked successfully!"))
	}
}
