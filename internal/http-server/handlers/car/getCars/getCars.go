package getCars

import (
	"context"
	"log/slog"
	"net/http"

	"carvex/internal/lib/api/pagination"
	"carvex/internal/lib/api/response"
	"carvex/internal/lib/logger/sl"
	"carvex/internal/models"
	"carvex/internal/storage"

	"github.com/go-chi/render"
)

//go:generate go run github.com/vektra/mockery/v2@v2.51.1 --name=CarsGetter
type CarsGetter interface {
	GetCars(ctx context.Context, page storage.Page) ([]models.Car, error)
}

func New(log *slog.Logger, carsGetter CarsGetter) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.car.getCars.New"

		log := log.With(slog.String("op", op))

		page, err := pagination.FromRequest(r)
		if err != nil {
			log.Error("invalid pagination", sl.Err(err))
			render.Status(r, http.StatusBadRequest)
			render.JSON(w, r, response.Message(err.Error()))
			return
		}

		cars, err := carsGetter.GetCars(r.Context(), page)
		if err != nil {
			log.Error("failed to get cars", sl.Err(err))
			render.Status(r, http.StatusInternalServerError)
			render.JSON(w, r, response.Message("Error fetching cars"))
			return
		}

		log.Info("cars retrieved successfully", slog.Int("count", len(cars)))

		responseOK(w, r, cars)
	}
}

func responseOK(w http.ResponseWriter, r *http.Request, cars []models.Car) {
	if cars == nil {
		cars = []models.Car{}
	}

	render.JSON(w, r, cars)
}
