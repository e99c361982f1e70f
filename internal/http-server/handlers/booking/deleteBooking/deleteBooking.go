package deleteBooking

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"carvex/internal/lib/api/identifier"
	"carvex/internal/lib/api/response"
	"carvex/internal/lib/logger/sl"
	"carvex/internal/models"
	"carvex/internal/storage"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"
)

//go:generate go run github.com/vektra/mockery/v2@v2.51.1 --name=BookingDeleter
type BookingDeleter interface {
	DeleteBooking(ctx context.Context, id string) (*models.Booking, error)
}

func New(log *slog.Logger, bookingDeleter BookingDeleter) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.booking.deleteBooking.New"

		log := log.With(slog.String("op", op))

		id := chi.URLParam(r, "id")
		if !identifier.Valid(id) {
			log.Error("invalid booking id format", slog.String("id", id))
			render.Status(r, http.StatusBadRequest)
			render.JSON(w, r, response.Message("Invalid Booking ID"))
			return
		}

		log = log.With(slog.String("booking_id", id))

		deleted, err := bookingDeleter.DeleteBooking(r.Context(), id)
		if err != nil {
			if errors.Is(err, storage.ErrBookingNotFound) {
				log.Info("booking not found")
				render.Status(r, http.StatusNotFound)
				render.JSON(w, r, response.Message("Booking not found"))
				return
			}

			log.Error("failed to delete booking", sl.Err(err))
			render.Status(r, http.StatusInternalServerError)
			render.JSON(w, r, response.Message("Error deleting booking"))
			return
		}

		log.Info("booking deleted", slog.String("car_id", deleted.CarID))

		render.JSON(w, r, response.Message("Booking deleted successfully!"))
	}
}
