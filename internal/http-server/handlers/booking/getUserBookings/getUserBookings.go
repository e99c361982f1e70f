package getUserBookings

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

//go:generate go run github.com/vektra/mockery/v2@v2.51.1 --name=BookingsGetter
type BookingsGetter interface {
	GetBookingsByUser(ctx context.Context, email string, page storage.Page) ([]models.Booking, error)
}

func New(log *slog.Logger, bookingsGetter BookingsGetter) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.booking.getUserBookings.New"

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
			render.JSON(w, r, response.Message("email is required"))
			return
		}

		page, err := pagination.FromRequest(r)
		if err != nil {
			log.Error("invalid pagination", sl.Err(err))
			render.Status(r, http.StatusBadRequest)
			render.JSON(w, r, response.Message(err.Error()))
			return
		}

		bookings, err := bookingsGetter.GetBookingsByUser(r.Context(), email, page)
		if err != nil {
			log.Error("failed to get bookings", sl.Err(err))
			render.Status(r, http.StatusInternalServerError)
			render.JSON(w, r, response.Message("Error fetching bookings"))
			return
		}

		log.Info("bookings retrieved successfully", slog.Int("count", len(bookings)))

		if bookings == nil {
			bookings = []models.Booking{}
		}

		render.JSON(w, r, bookings)
	}
}
