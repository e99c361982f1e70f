package createCar

import (
	"context"
	"log/slog"
	"mime"
	"net/http"
	"time"

	"carvex/internal/http-server/middleware/upload"
	"carvex/internal/lib/api/response"
	"carvex/internal/lib/logger/sl"
	"carvex/internal/models"

	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/render"
)

//go:generate go run github.com/vektra/mockery/v2@v2.51.1 --name=CarSaver
type CarSaver interface {
	SaveCar(ctx context.Context, car models.Car) (string, error)
}

//go:generate go run github.com/vektra/mockery/v2@v2.51.1 --name=ImageRemover
type ImageRemover interface {
	Remove(paths []string) error
}

// New creates a car from form fields (or a JSON object) plus the image paths
// left in the context by the upload middleware.
func New(log *slog.Logger, carSaver CarSaver, images ImageRemover) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.car.createCar.New"

		log := log.With(
			slog.String("op", op),
			slog.String("request_id", middleware.GetReqID(r.Context())),
		)

		fields, err := decodeFields(r)
		if err != nil {
			log.Error("failed to decode request body", sl.Err(err))
			render.Status(r, http.StatusBadRequest)
			render.JSON(w, r, response.Message("failed to decode request"))
			return
		}

		paths := upload.PathsFromContext(r.Context())
		if paths == nil {
			paths = []string{}
		}

		car := models.Car{
			Fields:       fields,
			Images:       paths,
			BookingCount: 0,
			CreatedAt:    time.Now().UTC(),
		}

		id, err := carSaver.SaveCar(r.Context(), car)
		if err != nil {
			log.Error("failed to add car", sl.Err(err))

			if rmErr := images.Remove(paths); rmErr != nil {
				log.Error("failed to remove uploaded images", sl.Err(rmErr))
			}

			render.Status(r, http.StatusInternalServerError)
			render.JSON(w, r, response.Message("Error adding car"))
			return
		}

		log.Info("car added", slog.String("id", id), slog.Int("images", len(paths)))

		render.Status(r, http.StatusCreated)
		render.JSON(w, r, response.Message("Car added successfully!"))
	}
}

func decodeFields(r *http.Request) (map[string]any, error) {
	fields := make(map[string]any)

	mediaType, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))
	if mediaType == "application/json" {
		if err := render.DecodeJSON(r.Body, &fields); err != nil {
			return nil, err
		}
	} else {
		if err := r.ParseForm(); err != nil {
			return nil, err
		}

		for k, v := range r.PostForm {
			if len(v) > 0 {
				fields[k] = v[0]
			}
		}
	}

	for _, k := range []string{models.KeyID, models.KeyImages, models.KeyBookingCount, models.KeyCreatedAt} {
		delete(fields, k)
	}

	return fields, nil
}
