package getCarsByOwner

import (
	"context"
	"log/slog"
	"net/http"
	"net/url"

	"carvex/internal/lib/api/pagination"
	"carvex/internal/lib/api/response"
	"carvex/internal/lib/logger/sl"
	"carvex/internal/models"
	"carvex/internal/storage"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"
)

//go:generate go run github.com/vektra/mockery/v2@v2.51.1 --name=OwnerCarsGetter
type OwnerCarsGetter interface {
	GetCarsByOwner(ctx context.Context, email string, page storage.Page) ([]models.Car, error)
}

func New(log *slog.Logger, carsGetter OwnerCarsGetter) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.car.getCarsByOwner.New"

		log := log.With(slog.String("op", op))

		// chi routes on RawPath when it is set, leaving the param escaped.
		email := chi.URLParam(r, "email")
		if r.URL.RawPath != "" {
			if unescaped, err := url.PathUnescape(email); err == nil {
				email = unescaped
			}
		}

		if email == "" {
			log.Error("email is required")
			render.Status(r, http.StatusBadRequest)
			render.JSON(w, r, response.Error("email is required"))
			return
		}

		page, err := pagination.FromRequest(r)
		if err != nil {
			log.Error("invalid pagination", sl.Err(err))
			render.Status(r, http.StatusBadRequest)
			render.JSON(w, r, response.Error(err.Error()))
			return
		}

		cars, err := carsGetter.GetCarsByOwner(r.Context(), email, page)
		if err != nil {
			log.Error("failed to fetch user's cars", sl.Err(err))
			render.Status(r, http.StatusInternalServerError)
			render.JSON(w, r, response.Error("Failed to fetch cars"))
			return
		}

		log.Info("owner cars retrieved", slog.Int("count", len(cars)))

		if cars == nil {
			cars = []models.Car{}
		}

		render.JSON(w, r, cars)
	}
}
