package updateBooking

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
	"github.com/go-playground/validator/v10"
)

// StatusRequest carries the new status. Any non-empty value is stored as given.
type StatusRequest struct {
	Status string `json:"status" validate:"required"`
}

//go:generate go run github.com/vektra/mockery/v2@v2.51.1 --name=BookingUpdater
type BookingUpdater interface {
	UpdateBookingStatus(ctx context.Context, id, status string) (storage.UpdateResult, error)
}

func New(log *slog.Logger, bookingUpdater BookingUpdater) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.booking.updateBooking.New"

		log := log.With(slog.String("op", op))

		id := chi.URLParam(r, "id")
		if !identifier.Valid(id) {
			log.Error("invalid booking id format", slog.String("id", id))
			render.Status(r, http.StatusBadRequest)
			render.JSON(w, r, response.Message("Invalid Booking ID"))
			return
		}

		log = log.With(slog.String("booking_id", id))

		var req StatusRequest

		err := render.DecodeJSON(r.Body, &req)
		if err != nil {
			log.Error("failed to decode request body", sl.Err(err))
			render.Status(r, http.StatusBadRequest)
			render.JSON(w, r, response.Message("failed to decode request"))
			return
		}

		if err = validator.New().Struct(req); err != nil {
			var validateErr validator.ValidationErrors
			if errors.As(err, &validateErr) {
				log.Error("invalid request", sl.Err(err))
				render.Status(r, http.StatusBadRequest)
				render.JSON(w, r, response.ValidationError(validateErr))
				return
			}
		}

		res, err := bookingUpdater.UpdateBookingStatus(r.Context(), id, req.Status)
		if err != nil {
			log.Error("failed to update booking", sl.Err(err))
			render.Status(r, http.StatusInternalServerError)
			render.JSON(w, r, response.Message("Error updating booking"))
			return
		}

		switch {
		case res.Matched == 0:
			log.Info("booking not found")
			render.Status(r, http.StatusNotFound)
			render.JSON(w, r, response.Message("Booking not found"))
		case res.Modified == 0:
			log.Info("booking status unchanged", slog.String("status", req.Status))
			render.JSON(w, r, response.Message("No changes made"))
		default:
			log.Info("booking status updated", slog.String("status", req.Status))
			render.JSON(w, r, response.Message("Booking updated successfully!"))
		}
	}
}
