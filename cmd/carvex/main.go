package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"carvex/internal/config"
	"carvex/internal/http-server/middleware/upload"
	"carvex/internal/http-server/router"
	"carvex/internal/lib/logger/handlers/slogpretty"
	"carvex/internal/lib/logger/sl"
	"carvex/internal/storage"
	"carvex/internal/storage/mongo"
	"carvex/internal/storage/postgres"

	"github.com/natefinch/lumberjack"
)

const (
	envLocal = "local"
	envDev   = "dev"
	envProd  = "prod"
)

const shutdownTimeout = 10 * time.Second

func main() {
	cfg := config.MustLoad()

	log := setupLogger(cfg.Env, cfg.Log)

	log.Info("Starting carvex", slog.String("env", cfg.Env), slog.String("storage", cfg.Storage.Driver))
	log.Debug("Debug messages are enabled")

	store, err := openStorage(cfg)
	if err != nil {
		log.Error("failed to init storage", sl.Err(err))
		os.Exit(1)
	}

	uploads, err := upload.NewStore(cfg.Uploads.Dir, cfg.Uploads.URLPrefix)
	if err != nil {
		log.Error("failed to init upload dir", sl.Err(err))
		os.Exit(1)
	}

	address := cfg.ListenAddress()

	log.Info("starting server", slog.String("address", address))

	srv := &http.Server{
		Addr:         address,
		Handler:      router.New(log, cfg.Uploads, store, uploads),
		ReadTimeout:  cfg.HTTPServer.Timeout,
		WriteTimeout: cfg.HTTPServer.Timeout,
		IdleTimeout:  cfg.HTTPServer.IdleTimeout,
	}

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGTERM, syscall.SIGINT)

	reconcileCtx, cancelReconcile := context.WithCancel(context.Background())
	reconcileDone := make(chan struct{})

	go func() {
		defer close(reconcileDone)
		reconcileBookingCounts(reconcileCtx, log, store, cfg.ReconcileInterval)
	}()

	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("failed to start server", sl.Err(err))
			stop <- syscall.SIGTERM
		}
	}()

	sign := <-stop

	log.Info("application stopping", slog.String("signal", sign.String()))

	cancelReconcile()
	<-reconcileDone

	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err = srv.Shutdown(ctx); err != nil {
		log.Error("failed to shutdown server", sl.Err(err))
	}

	log.Info("application stopped")

	if err = store.Close(ctx); err != nil {
		log.Error("failed to close storage", sl.Err(err))
	}

	log.Info("storage connection closed")
}

func openStorage(cfg *config.Config) (storage.Backend, error) {
	switch cfg.Storage.Driver {
	case config.DriverMongo:
		ctx, cancel := context.WithTimeout(context.Background(), cfg.Storage.Mongo.Timeout)
		defer cancel()

		return mongo.New(ctx, &cfg.Storage.Mongo)
	case config.DriverPostgres:
		return postgres.InitDB(&cfg.Storage.Database)
	default:
		return nil, fmt.Errorf("unknown storage driver %q", cfg.Storage.Driver)
	}
}

// reconcileBookingCounts periodically rewrites every car's counter from its bookings.
func reconcileBookingCounts(ctx context.Context, log *slog.Logger, store storage.Backend, interval time.Duration) {
	if interval <= 0 {
		log.Info("booking counter reconciler disabled")
		return
	}

	log = log.With(slog.String("component", "reconciler"))

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			fixed, err := store.ReconcileBookingCounts(ctx)
			if err != nil {
				log.Error("failed to reconcile booking counts", sl.Err(err))
				continue
			}
			if fixed > 0 {
				log.Info("booking counts repaired", slog.Int64("cars", fixed))
			}
		case <-ctx.Done():
			return
		}
	}
}

func setupLogger(env string, logCfg config.Log) *slog.Logger {
	var out io.Writer = os.Stdout

	if logCfg.File != "" {
		out = io.MultiWriter(os.Stdout, &lumberjack.Logger{
			Filename:   logCfg.File,
			MaxSize:    logCfg.MaxSize,
			MaxBackups: logCfg.MaxBackups,
			MaxAge:     logCfg.MaxAge,
			Compress:   logCfg.Compress,
		})
	}

	var log *slog.Logger

	switch env {
	case envLocal:
		log = setupPrettySlog(out)
	case envDev:
		log = slog.New(slog.NewJSONHandler(out, &slog.HandlerOptions{Level: slog.LevelDebug}))
	case envProd:
		log = slog.New(slog.NewJSONHandler(out, &slog.HandlerOptions{Level: slog.LevelInfo}))
	default:
		log = slog.New(slog.NewJSONHandler(out, &slog.HandlerOptions{Level: slog.LevelInfo}))
	}

	return log
}

func setupPrettySlog(out io.Writer) *slog.Logger {
	opts := slogpretty.PrettyHandlerOptions{
		SlogOpts: &slog.HandlerOptions{
			Level: slog.LevelDebug,
		},
	}

	h := opts.NewPrettyHandler(out)

	return slog.New(h)
}
