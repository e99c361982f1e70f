package router

import (
	"log/slog"
	"net/http"
	"strings"

	"carvex/internal/config"
	"carvex/internal/http-server/handlers/booking/createBooking"
	"carvex/internal/http-server/handlers/booking/deleteBooking"
	"carvex/internal/http-server/handlers/booking/getUserBookings"
	"carvex/internal/http-server/handlers/booking/updateBooking"
	"carvex/internal/http-server/handlers/car/bookCar"
	"carvex/internal/http-server/handlers/car/createCar"
	"carvex/internal/http-server/handlers/car/deleteCar"
	"carvex/internal/http-server/handlers/car/getCar"
	"carvex/internal/http-server/handlers/car/getCars"
	"carvex/internal/http-server/handlers/car/getCarsByOwner"
	"carvex/internal/http-server/handlers/car/updateCar"
	"carvex/internal/http-server/middleware/mwlogger"
	"carvex/internal/http-server/middleware/upload"
	"carvex/internal/storage"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
)

// New builds the HTTP route table. Everything it needs is passed in.
func New(log *slog.Logger, cfg config.Uploads, store storage.Backend, uploads *upload.Store) http.Handler {
	router := chi.NewRouter()

	router.Use(middleware.RequestID)
	router.Use(mwlogger.New(log))
	router.Use(middleware.Recoverer)
	router.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders: []string{"*"},
	}))

	router.Get("/", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		_, _ = w.Write([]byte("Server is running..."))
	})

	prefix := "/" + strings.Trim(cfg.URLPrefix, "/")
	fs := http.FileServer(http.Dir(uploads.Dir()))
	router.With(middleware.SetHeader("X-Content-Type-Options", "nosniff")).
		Handle(prefix+"/*", http.StripPrefix(prefix+"/", fs))

	router.Route("/cars", func(r chi.Router) {
		r.With(upload.New(log, uploads, cfg)).Post("/", createCar.New(log, store, uploads))
		r.Get("/", getCars.New(log, store))
		r.Get("/user/{email}", getCarsByOwner.New(log, store))
		r.Get("/{id}", getCar.New(log, store))
		r.Put("/{id}", updateCar.New(log, store))
		r.Delete("/{id}", deleteCar.New(log, store))
		r.Post("/{id}/book", bookCar.New(log, store))
	})

	router.Route("/bookings", func(r chi.Router) {
		r.Post("/", createBooking.New(log, store))
		r.Get("/user/{email}", getUserBookings.New(log, store))
		r.Put("/{id}", updateBooking.New(log, store))
		r.Delete("/{id}", deleteBooking.New(log, store))
	})

	return router
}
