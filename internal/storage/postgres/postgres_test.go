package postgres

import (
	"context"
	"regexp"
	"testing"
	"time"

	"carvex/internal/models"
	"carvex/internal/storage"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	carID     = "65a1b2c3d4e5f60718293a4b"
	bookingID = "65a1b2c3d4e5f60718293a4c"
)

var bookingColumns = []string{
	"id", "car_id", "car_model", "user_email", "start_date", "end_date", "status", "total_price", "created_at",
}

func newMockStorage(t *testing.T) (*Storage, sqlmock.Sqlmock) {
	t.Helper()

	db, mock, err := sqlmock.New()
	require.NoError(t, err)

	t.Cleanup(func() {
		assert.NoError(t, mock.ExpectationsWereMet())
		_ = db.Close()
	})

	return &Storage{DB: sqlx.NewDb(db, "postgres")}, mock
}

func TestGetCarsNewestFirst(t *testing.T) {
	t.Parallel()

	s, mock := newMockStorage(t)

	created := time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC)
	rows := sqlmock.NewRows([]string{"id", "fields", "images", "booking_count", "created_at"}).
		AddRow("65a1b2c3d4e5f60718293a4d", []byte(`{"carModel":"Golf"}`), "{/uploads/a.png}", 1, created).
		AddRow(carID, []byte(`{"carModel":"Civic"}`), "{}", 0, created.Add(-time.Hour))

	mock.ExpectQuery(regexp.QuoteMeta("ORDER BY created_at DESC")).
		WithArgs(int64(10), int64(20)).
		WillReturnRows(rows)

	cars, err := s.GetCars(context.Background(), storage.Page{Limit: 10, Offset: 20})
	require.NoError(t, err)
	require.Len(t, cars, 2)
	assert.Equal(t, "Golf", cars[0].Model())
	assert.Equal(t, []string{"/uploads/a.png"}, cars[0].Images)
	assert.Equal(t, carID, cars[1].ID)
}

func TestCreateBooking(t *testing.T) {
	t.Parallel()

	booking := models.Booking{
		CarID:     carID,
		UserEmail: "u@example.com",
		StartDate: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
		EndDate:   time.Date(2024, 1, 3, 0, 0, 0, 0, time.UTC),
		Status:    models.StatusPending,
	}

	t.Run("Commits insert and increment", func(t *testing.T) {
		t.Parallel()

		s, mock := newMockStorage(t)

		mock.ExpectBegin()
		mock.ExpectExec(regexp.QuoteMeta("INSERT INTO bookings")).WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectExec(regexp.QuoteMeta("UPDATE cars SET booking_count = booking_count + 1 WHERE id = $1")).
			WithArgs(carID).
			WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectCommit()

		created, err := s.CreateBooking(context.Background(), booking)
		require.NoError(t, err)
		assert.Len(t, created.ID, 24)
		assert.Equal(t, carID, created.CarID)
	})

	t.Run("Missing car rolls back the insert", func(t *testing.T) {
		t.Parallel()

		s, mock := newMockStorage(t)

		mock.ExpectBegin()
		mock.ExpectExec(regexp.QuoteMeta("INSERT INTO bookings")).WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectExec(regexp.QuoteMeta("UPDATE cars SET booking_count = booking_count + 1 WHERE id = $1")).
			WithArgs(carID).
			WillReturnResult(sqlmock.NewResult(0, 0))
		mock.ExpectRollback()

		_, err := s.CreateBooking(context.Background(), booking)
		require.ErrorIs(t, err, storage.ErrCarNotFound)
	})
}

func TestDeleteBooking(t *testing.T) {
	t.Parallel()

	t.Run("Decrements the captured car with a floor", func(t *testing.T) {
		t.Parallel()

		s, mock := newMockStorage(t)
		now := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

		mock.ExpectBegin()
		mock.ExpectQuery(regexp.QuoteMeta("DELETE FROM bookings")).
			WithArgs(bookingID).
			WillReturnRows(sqlmock.NewRows(bookingColumns).
				AddRow(bookingID, carID, "Civic", "u@example.com", now, now.Add(48*time.Hour), models.StatusPending, 200.0, now))
		mock.ExpectExec(regexp.QuoteMeta("WHERE id = $1 AND booking_count > 0")).
			WithArgs(carID).
			WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectCommit()

		deleted, err := s.DeleteBooking(context.Background(), bookingID)
		require.NoError(t, err)
		assert.Equal(t, carID, deleted.CarID)
		assert.Equal(t, 200.0, deleted.TotalPrice)
	})

	t.Run("Car already gone", func(t *testing.T) {
		t.Parallel()

		s, mock := newMockStorage(t)
		now := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

		mock.ExpectBegin()
		mock.ExpectQuery(regexp.QuoteMeta("DELETE FROM bookings")).
			WithArgs(bookingID).
			WillReturnRows(sqlmock.NewRows(bookingColumns).
				AddRow(bookingID, carID, "Civic", "u@example.com", now, now, models.StatusPending, 0.0, now))
		mock.ExpectExec(regexp.QuoteMeta("WHERE id = $1 AND booking_count > 0")).
			WithArgs(carID).
			WillReturnResult(sqlmock.NewResult(0, 0))
		mock.ExpectCommit()

		_, err := s.DeleteBooking(context.Background(), bookingID)
		require.NoError(t, err)
	})

	t.Run("Not found", func(t *testing.T) {
		t.Parallel()

		s, mock := newMockStorage(t)

		mock.ExpectBegin()
		mock.ExpectQuery(regexp.QuoteMeta("DELETE FROM bookings")).
			WithArgs(bookingID).
			WillReturnRows(sqlmock.NewRows(bookingColumns))
		mock.ExpectRollback()

		_, err := s.DeleteBooking(context.Background(), bookingID)
		require.ErrorIs(t, err, storage.ErrBookingNotFound)
	})
}

func TestDeleteCarLeavesBookings(t *testing.T) {
	t.Parallel()

	t.Run("Deleted", func(t *testing.T) {
		t.Parallel()

		s, mock := newMockStorage(t)

		mock.ExpectExec(regexp.QuoteMeta("DELETE FROM cars WHERE id = $1")).
			WithArgs(carID).
			WillReturnResult(sqlmock.NewResult(0, 1))

		require.NoError(t, s.DeleteCar(context.Background(), carID))
	})

	t.Run("Not found", func(t *testing.T) {
		t.Parallel()

		s, mock := newMockStorage(t)

		mock.ExpectExec(regexp.QuoteMeta("DELETE FROM cars WHERE id = $1")).
			WithArgs(carID).
			WillReturnResult(sqlmock.NewResult(0, 0))

		require.ErrorIs(t, s.DeleteCar(context.Background(), carID), storage.ErrCarNotFound)
	})
}

func TestReconcileBookingCountsLocksBookings(t *testing.T) {
	t.Parallel()

	s, mock := newMockStorage(t)

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta("LOCK TABLE bookings IN SHARE MODE")).WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectExec(regexp.QuoteMeta("UPDATE cars c")).WillReturnResult(sqlmock.NewResult(0, 2))
	mock.ExpectCommit()

	fixed, err := s.ReconcileBookingCounts(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(2), fixed)
}
