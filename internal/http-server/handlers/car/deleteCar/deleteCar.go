package deleteCar

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

//go:generate go run github.com/vektra/mockery/v2@v2.51.1 --name=CarDeleter
type CarDeleter interface {
	DeleteCar(ctx context.Context, id string) error
}

// New removes a car. Bookings that reference it are left in place.
func New(log *slog.Logger, carDeleter CarDeleter) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.car.deleteCar.New"

		log := log.With(slog.String("op", op))

		id := chi.URLParam(r, "id")
		if !identifier.Valid(id) {
			log.Error("invalid car id format", slog.String("id", id))
			render.Status(r, http.StatusBadRequest)
			render.JSON(w, r, response.Message("Invalid Car ID"))
			return
		}

		log = log.With(slog.String("car_id", id))

		if err := carDeleter.DeleteCar(r.Context(), id); err != nil {
			if errors.Is(err, storage.ErrCarNotFound) {
				log.Info("car not found")
				render.Status(r, http.StatusNotFound)
				render.JSON(w, r, response.Message("Car not found"))
				return
			}

			log.Error("failed to delete car", sl.Err(err))
			render.Status(r, http.StatusInternalServerError)
			render.JSON(w, r, response.Message("Error deleting car"))
			return
		}

		log.Info("car deleted")

		render.JSON(w, r, response.Message("Car deleted successfully!"))
	}
}
