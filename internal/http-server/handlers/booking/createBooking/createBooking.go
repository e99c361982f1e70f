package createBooking

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"carvex/internal/lib/api/identifier"
	"carvex/internal/lib/api/response"
	"carvex/internal/lib/logger/sl"
	"carvex/internal/models"
	"carvex/internal/storage"

	"github.com/go-chi/render"
	"github.com/go-playground/validator/v10"
)

var dateLayouts = []string{time.RFC3339, "2006-01-02"}

type BookingRequest struct {
	UserEmail string `json:"userEmail" validate:"required"`
	CarID     string `json:"carId" validate:"required"`
	StartDate string `json:"startDate" validate:"required"`
	EndDate   string `json:"endDate" validate:"required"`
}

type BookingResponse struct {
	response.Response
	Booking *models.Booking `json:"booking,omitempty"`
}

//go:generate go run github.com/vektra/mockery/v2@v2.51.1 --name=BookingCreator
type BookingCreator interface {
	GetCar(ctx context.Context, id string) (*models.Car, error)
	CreateBooking(ctx context.Context, booking models.Booking) (models.Booking, error)
}

func New(log *slog.Logger, bookings BookingCreator) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.booking.createBooking.New"

		log := log.With(slog.String("op", op))

		var req BookingRequest

		err := render.DecodeJSON(r.Body, &req)
		if err != nil {
			log.Error("failed to decode request body", sl.Err(err))
			render.Status(r, http.StatusBadRequest)
			render.JSON(w, r, response.Message("failed to decode request"))
			return
		}

		log.Info("request body decoded", slog.Any("request", req))

		if err = validator.New().Struct(req); err != nil {
			var validateErr validator.ValidationErrors
			if errors.As(err, &validateErr) {
				log.Error("invalid request", sl.Err(err))
				render.Status(r, http.StatusBadRequest)
				render.JSON(w, r, response.ValidationError(validateErr))
				return
			}
		}

		if !identifier.Valid(req.CarID) {
			log.Error("invalid car id format", slog.String("car_id", req.CarID))
			render.Status(r, http.StatusBadRequest)
			render.JSON(w, r, response.Message("Invalid Car ID"))
			return
		}

		start, err := parseDate(req.StartDate)
		if err != nil {
			log.Error("invalid start date", sl.Err(err))
			render.Status(r, http.StatusBadRequest)
			render.JSON(w, r, response.Message("invalid startDate format"))
			return
		}

		end, err := parseDate(req.EndDate)
		if err != nil {
			log.Error("invalid end date", sl.Err(err))
			render.Status(r, http.StatusBadRequest)
			render.JSON(w, r, response.Message("invalid endDate format"))
			return
		}

		log = log.With(slog.String("car_id", req.CarID))

		car, err := bookings.GetCar(r.Context(), req.CarID)
		if err != nil {
			responseStoreError(w, r, log, err)
			return
		}

		booking, err := bookings.CreateBooking(r.Context(), models.NewBooking(*car, req.UserEmail, start, end, time.Now().UTC()))
		if err != nil {
			responseStoreError(w, r, log, err)
			return
		}

		log.Info("booking created",
			slog.String("booking_id", booking.ID),
			slog.Float64("total_price", booking.TotalPrice),
		)

		render.Status(r, http.StatusCreated)
		render.JSON(w, r, BookingResponse{
			Response: response.Message("Booking created successfully!"),
			Booking:  &booking,
		})
	}
}

func responseStoreError(w http.ResponseWriter, r *http.Request, log *slog.Logger, err error) {
	if errors.Is(err, storage.ErrCarNotFound) {
		log.Info("car not found")
		render.Status(r, http.StatusNotFound)
		render.JSON(w, r, response.Message("Car not found"))
		return
	}

	log.Error("failed to create booking", sl.Err(err))
	render.Status(r, http.StatusInternalServerError)
	render.JSON(w, r, response.Message("Error creating booking"))
}

func parseDate(s string) (time.Time, error) {
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t.UTC(), nil
		}
	}

	return time.Time{}, fmt.Errorf("unsupported date %q", s)
}
