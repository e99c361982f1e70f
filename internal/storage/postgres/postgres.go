package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"carvex/internal/config"
	"carvex/internal/lib/api/identifier"
	"carvex/internal/models"
	"carvex/internal/storage"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
)

type Storage struct {
	DB *sqlx.DB
}

var _ storage.Backend = (*Storage)(nil)

const schema = `
	CREATE TABLE IF NOT EXISTS cars (
		id            TEXT PRIMARY KEY,
		fields        JSONB NOT NULL DEFAULT '{}'::jsonb,
		images        TEXT[] NOT NULL DEFAULT '{}',
		booking_count INTEGER NOT NULL DEFAULT 0,
		created_at    TIMESTAMPTZ NOT NULL DEFAULT NOW()
	);
	CREATE INDEX IF NOT EXISTS idx_cars_created_at ON cars (created_at DESC);
	CREATE INDEX IF NOT EXISTS idx_cars_email ON cars ((fields->>'email'), created_at DESC);

	CREATE TABLE IF NOT EXISTS bookings (
		id          TEXT PRIMARY KEY,
		car_id      TEXT NOT NULL,
		car_model   TEXT NOT NULL DEFAULT '',
		user_email  TEXT NOT NULL,
		start_date  TIMESTAMPTZ NOT NULL,
		end_date    TIMESTAMPTZ NOT NULL,
		status      TEXT NOT NULL,
		total_price DOUBLE PRECISION NOT NULL,
		created_at  TIMESTAMPTZ NOT NULL DEFAULT NOW()
	);
	CREATE INDEX IF NOT EXISTS idx_bookings_user ON bookings (user_email, created_at DESC);
	CREATE INDEX IF NOT EXISTS idx_bookings_car ON bookings (car_id);`

type carRow struct {
	ID           string         `db:"id"`
	Fields       []byte         `db:"fields"`
	Images       pq.StringArray `db:"images"`
	BookingCount int            `db:"booking_count"`
	CreatedAt    time.Time      `db:"created_at"`
}

type bookingRow struct {
	ID         string    `db:"id"`
	CarID      string    `db:"car_id"`
	CarModel   string    `db:"car_model"`
	UserEmail  string    `db:"user_email"`
	StartDate  time.Time `db:"start_date"`
	EndDate    time.Time `db:"end_date"`
	Status     string    `db:"status"`
	TotalPrice float64   `db:"total_price"`
	CreatedAt  time.Time `db:"created_at"`
}

type updateCounts struct {
	Matched  int64 `db:"matched"`
	Modified int64 `db:"modified"`
}

func InitDB(dbCfg *config.Database) (*Storage, error) {
	connStr := fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		dbCfg.Host,
		dbCfg.Port,
		dbCfg.User,
		dbCfg.Password,
		dbCfg.DBName,
		dbCfg.SSLMode,
	)

	db, err := sqlx.Open("postgres", connStr)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to the database: %w", err)
	}

	if err = db.Ping(); err != nil {
		return nil, fmt.Errorf("failed to connect to the database: %w", err)
	}

	if _, err = db.Exec(schema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to ensure schema: %w", err)
	}

	return &Storage{DB: db}, nil
}

func (s *Storage) Close(_ context.Context) error {
	return s.DB.Close()
}

func (s *Storage) SaveCar(ctx context.Context, car models.Car) (string, error) {
	const op = "storage.postgres.SaveCar"

	row, err := carToRow(car)
	if err != nil {
		return "", fmt.Errorf("%s: %w", op, err)
	}
	row.ID = identifier.New()

	query := `
		INSERT INTO cars (id, fields, images, booking_count, created_at)
		VALUES (:id, :fields, :images, :booking_count, :created_at)`

	if _, err = s.DB.NamedExecContext(ctx, query, row); err != nil {
		return "", fmt.Errorf("%s: failed to insert car: %w", op, err)
	}

	return row.ID, nil
}

func (s *Storage) GetCars(ctx context.Context, page storage.Page) ([]models.Car, error) {
	const op = "storage.postgres.GetCars"

	query := `
		SELECT id, fields, images, booking_count, created_at
		FROM cars
		ORDER BY created_at DESC
		LIMIT $1 OFFSET $2`

	cars, err := s.selectCars(ctx, query, page.Limit, page.Offset)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return cars, nil
}

func (s *Storage) GetCarsByOwner(ctx context.Context, email string, page storage.Page) ([]models.Car, error) {
	const op = "storage.postgres.GetCarsByOwner"

	query := `
		SELECT id, fields, images, booking_count, created_at
		FROM cars
		WHERE fields->>'email' = $1
		ORDER BY created_at DESC
		LIMIT $2 OFFSET $3`

	cars, err := s.selectCars(ctx, query, email, page.Limit, page.Offset)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return cars, nil
}

func (s *Storage) selectCars(ctx context.Context, query string, args ...any) ([]models.Car, error) {
	var rows []carRow
	if err := s.DB.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("failed to get cars: %w", err)
	}

	cars := make([]models.Car, 0, len(rows))
	for _, row := range rows {
		car, err := row.toModel()
		if err != nil {
			return nil, err
		}
		cars = append(cars, car)
	}

	return cars, nil
}

func (s *Storage) GetCar(ctx context.Context, id string) (*models.Car, error) {
	const op = "storage.postgres.GetCar"

	query := `
		SELECT id, fields, images, booking_count, created_at
		FROM cars
		WHERE id = $1`

	var row carRow
	if err := s.DB.GetContext(ctx, &row, query, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("%s: %w", op, storage.ErrCarNotFound)
		}
		return nil, fmt.Errorf("%s: failed to get car: %w", op, err)
	}

	car, err := row.toModel()
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return &car, nil
}

// UpdateCar merges fields into the stored JSONB document. Images live in their
// own column and are replaced when present in fields.
func (s *Storage) UpdateCar(ctx context.Context, id string, fields map[string]any) (storage.UpdateResult, error) {
	const op = "storage.postgres.UpdateCar"

	var images pq.StringArray
	rest := make(map[string]any, len(fields))
	for k, v := range fields {
		if k == models.KeyImages {
			if paths, ok := v.([]string); ok {
				images = paths
			}
			continue
		}
		rest[k] = v
	}

	patch, err := json.Marshal(rest)
	if err != nil {
		return storage.UpdateResult{}, fmt.Errorf("%s: failed to encode fields: %w", op, err)
	}

	query := `
		WITH target AS (
			SELECT id FROM cars WHERE id = $1 FOR UPDATE
		), upd AS (
			UPDATE cars
			SET fields = cars.fields || $2::jsonb,
			    images = COALESCE($3::text[], cars.images)
			WHERE cars.id IN (SELECT id FROM target)
			  AND (cars.fields IS DISTINCT FROM cars.fields || $2::jsonb
			       OR cars.images IS DISTINCT FROM COALESCE($3::text[], cars.images))
			RETURNING 1
		)
		SELECT (SELECT COUNT(*) FROM target) AS matched,
		       (SELECT COUNT(*) FROM upd) AS modified`

	var counts updateCounts
	if err = s.DB.GetContext(ctx, &counts, query, id, string(patch), images); err != nil {
		return storage.UpdateResult{}, fmt.Errorf("%s: failed to update car: %w", op, err)
	}

	return storage.UpdateResult{Matched: counts.Matched, Modified: counts.Modified}, nil
}

func (s *Storage) DeleteCar(ctx context.Context, id string) error {
	const op = "storage.postgres.DeleteCar"

	result, err := s.DB.ExecContext(ctx, `DELETE FROM cars WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("%s: failed to delete car: %w", op, err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	if rowsAffected == 0 {
		return fmt.Errorf("%s: %w", op, storage.ErrCarNotFound)
	}

	return nil
}

func (s *Storage) IncrementBookingCount(ctx context.Context, id string) error {
	const op = "storage.postgres.IncrementBookingCount"

	if err := incrementBookingCount(ctx, s.DB, id); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	return nil
}

func (s *Storage) CreateBooking(ctx context.Context, booking models.Booking) (models.Booking, error) {
	const op = "storage.postgres.CreateBooking"

	tx, err := s.DB.BeginTxx(ctx, nil)
	if err != nil {
		return models.Booking{}, fmt.Errorf("%s: failed to begin transaction: %w", op, err)
	}
	defer tx.Rollback()

	row := bookingToRow(booking)
	row.ID = identifier.New()

	insertQuery := `
		INSERT INTO bookings (id, car_id, car_model, user_email, start_date, end_date, status, total_price, created_at)
		VALUES (:id, :car_id, :car_model, :user_email, :start_date, :end_date, :status, :total_price, :created_at)`

	if _, err = tx.NamedExecContext(ctx, insertQuery, row); err != nil {
		return models.Booking{}, fmt.Errorf("%s: failed to create booking: %w", op, err)
	}

	if err = incrementBookingCount(ctx, tx, booking.CarID); err != nil {
		return models.Booking{}, fmt.Errorf("%s: %w", op, err)
	}

	if err = tx.Commit(); err != nil {
		return models.Booking{}, fmt.Errorf("%s: failed to commit: %w", op, err)
	}

	return row.toModel(), nil
}

func (s *Storage) GetBookingsByUser(ctx context.Context, email string, page storage.Page) ([]models.Booking, error) {
	const op = "storage.postgres.GetBookingsByUser"

	query := `
		SELECT id, car_id, car_model, user_email, start_date, end_date, status, total_price, created_at
		FROM bookings
		WHERE user_email = $1
		ORDER BY created_at DESC
		LIMIT $2 OFFSET $3`

	var rows []bookingRow
	if err := s.DB.SelectContext(ctx, &rows, query, email, page.Limit, page.Offset); err != nil {
		return nil, fmt.Errorf("%s: failed to get bookings: %w", op, err)
	}

	bookings := make([]models.Booking, 0, len(rows))
	for _, row := range rows {
		bookings = append(bookings, row.toModel())
	}

	return bookings, nil
}

func (s *Storage) UpdateBookingStatus(ctx context.Context, id, status string) (storage.UpdateResult, error) {
	const op = "storage.postgres.UpdateBookingStatus"

	query := `
		WITH target AS (
			SELECT id FROM bookings WHERE id = $1 FOR UPDATE
		), upd AS (
			UPDATE bookings
			SET status = $2
			WHERE id IN (SELECT id FROM target) AND status <> $2
			RETURNING 1
		)
		SELECT (SELECT COUNT(*) FROM target) AS matched,
		       (SELECT COUNT(*) FROM upd) AS modified`

	var counts updateCounts
	if err := s.DB.GetContext(ctx, &counts, query, id, status); err != nil {
		return storage.UpdateResult{}, fmt.Errorf("%s: failed to update booking: %w", op, err)
	}

	return storage.UpdateResult{Matched: counts.Matched, Modified: counts.Modified}, nil
}

func (s *Storage) DeleteBooking(ctx context.Context, id string) (*models.Booking, error) {
	const op = "storage.postgres.DeleteBooking"

	tx, err := s.DB.BeginTxx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("%s: failed to begin transaction: %w", op, err)
	}
	defer tx.Rollback()

	deleteQuery := `
		DELETE FROM bookings
		WHERE id = $1
		RETURNING id, car_id, car_model, user_email, start_date, end_date, status, total_price, created_at`

	var row bookingRow
	if err = tx.GetContext(ctx, &row, deleteQuery, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("%s: %w", op, storage.ErrBookingNotFound)
		}
		return nil, fmt.Errorf("%s: failed to delete booking: %w", op, err)
	}

	decrementQuery := `
		UPDATE cars
		SET booking_count = booking_count - 1
		WHERE id = $1 AND booking_count > 0`

	if _, err = tx.ExecContext(ctx, decrementQuery, row.CarID); err != nil {
		return nil, fmt.Errorf("%s: failed to decrement booking count: %w", op, err)
	}

	if err = tx.Commit(); err != nil {
		return nil, fmt.Errorf("%s: failed to commit: %w", op, err)
	}

	booking := row.toModel()

	return &booking, nil
}

// ReconcileBookingCounts rewrites every car's counter from the bookings table.
// The SHARE lock waits for in-flight booking writes and blocks new ones until commit.
func (s *Storage) ReconcileBookingCounts(ctx context.Context) (int64, error) {
	const op = "storage.postgres.ReconcileBookingCounts"

	tx, err := s.DB.BeginTxx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("%s: failed to begin transaction: %w", op, err)
	}
	defer tx.Rollback()

	if _, err = tx.ExecContext(ctx, `LOCK TABLE bookings IN SHARE MODE`); err != nil {
		return 0, fmt.Errorf("%s: failed to lock bookings: %w", op, err)
	}

	query := `
		UPDATE cars c
		SET booking_count = COALESCE(b.cnt, 0)
		FROM cars c2
		LEFT JOIN (
			SELECT car_id, COUNT(*) AS cnt
			FROM bookings
			GROUP BY car_id
		) b ON b.car_id = c2.id
		WHERE c.id = c2.id AND c.booking_count <> COALESCE(b.cnt, 0)`

	result, err := tx.ExecContext(ctx, query)
	if err != nil {
		return 0, fmt.Errorf("%s: failed to reconcile booking counts: %w", op, err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}

	if err = tx.Commit(); err != nil {
		return 0, fmt.Errorf("%s: failed to commit: %w", op, err)
	}

	return rowsAffected, nil
}

func incrementBookingCount(ctx context.Context, db sqlx.ExecerContext, id string) error {
	result, err := db.ExecContext(ctx, `UPDATE cars SET booking_count = booking_count + 1 WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to increment booking count: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return err
	}

	if rowsAffected == 0 {
		return storage.ErrCarNotFound
	}

	return nil
}
