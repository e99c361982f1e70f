package updateCar

import (
	"context"
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

//go:generate go run github.com/vektra/mockery/v2@v2.51.1 --name=CarUpdater
type CarUpdater interface {
	UpdateCar(ctx context.Context, id string, fields map[string]interface{}) (storage.UpdateResult, error)
}

// New applies a partial update. A car that exists but ends up unchanged is
// reported with 200, only a missing car gives 404.
func New(log *slog.Logger, carUpdater CarUpdater) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.car.updateCar.New"

		log := log.With(slog.String("op", op))

		id := chi.URLParam(r, "id")
		if !identifier.Valid(id) {
			log.Error("invalid car id format", slog.String("id", id))
			render.Status(r, http.StatusBadRequest)
			render.JSON(w, r, response.Message("Invalid Car ID"))
			return
		}

		log = log.With(slog.String("car_id", id))

		var req map[string]interface{}

		if err := render.DecodeJSON(r.Body, &req); err != nil {
			log.Error("failed to decode request body", sl.Err(err))
			render.Status(r, http.StatusBadRequest)
			render.JSON(w, r, response.Message("failed to decode request"))
			return
		}

		fields := models.CarUpdate(req)
		if len(fields) == 0 {
			log.Error("no updatable fields in request")
			render.Status(r, http.StatusBadRequest)
			render.JSON(w, r, response.Message("no fields to update"))
			return
		}

		res, err := carUpdater.UpdateCar(r.Context(), id, fields)
		if err != nil {
			log.Error("failed to update car", sl.Err(err))
			render.Status(r, http.StatusInternalServerError)
			render.JSON(w, r, response.Message("Error updating car"))
			return
		}

		switch {
		case res.Matched == 0:
			log.Info("car not found")
			render.Status(r, http.StatusNotFound)
			render.JSON(w, r, response.Message("Car not found"))
		case res.Modified == 0:
			log.Info("car unchanged")
			render.JSON(w, r, response.Message("No changes made"))
		default:
			log.Info("car updated", slog.Int("fields", len(fields)))
			render.JSON(w, r, response.Message("Car updated successfully!"))
		}
	}
}
