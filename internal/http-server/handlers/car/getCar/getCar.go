package getCar

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

//go:generate go run github.com/vektra/mockery/v2@v2.51.1 --name=CarGetter
type CarGetter interface {
	GetCar(ctx context.Context, id string) (*models.Car, error)
}

func New(log *slog.Logger, carGetter CarGetter) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.car.getCar.New"

		log := log.With(slog.String("op", op))

		id := chi.URLParam(r, "id")
		if !identifier.Valid(id) {
			log.Error("invalid car id format", slog.String("id", id))
			render.Status(r, http.StatusBadRequest)
			render.JSON(w, r, response.Error("Invalid Car ID"))
			return
		}

		log = log.With(slog.String("car_id", id))

		car, err := carGetter.GetCar(r.Context(), id)
		if err != nil {
			if errors.Is(err, storage.ErrCarNotFound) {
				log.Info("car not found")
				render.Status(r, http.StatusNotFound)
				render.JSON(w, r, response.Error("Car not found"))
				return
			}

			log.Error("failed to fetch car details", sl.Err(err))
			render.Status(r, http.StatusInternalServerError)
			render.JSON(w, r, response.Error("Failed to fetch car details"))
			return
		}

		log.Info("car retrieved successfully")

		render.JSON(w, r, car)
	}
}
